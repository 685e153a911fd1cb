package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"chat-relay/internal/broadcast"
	"chat-relay/internal/config"
	"chat-relay/internal/dispatch"
	"chat-relay/internal/history"
	"chat-relay/internal/llm"
	"chat-relay/internal/prompt"
	"chat-relay/internal/storage"
	"chat-relay/internal/subscribers"
	"chat-relay/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	llmClient, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	var subRepo subscribers.Repository
	if cfg.SubscribersFilePath != "" {
		fr, err := subscribers.NewFileRepository(cfg.SubscribersFilePath)
		if err != nil {
			log.Printf("failed to init subscribers repo: %v", err)
		} else {
			subRepo = fr
		}
	}
	registry, err := subscribers.NewRegistry(subRepo)
	if err != nil {
		log.Printf("failed to load subscribers, starting empty: %v", err)
		registry, _ = subscribers.NewRegistry(nil)
	}

	dispatcher := dispatch.New(
		history.NewManager(cfg.HistoryMaxTurns),
		prompt.NewComposer(cfg.ReplyWordLimit),
		llmClient,
		rec,
		cfg.LLMRequestTimeout,
	)

	bot, err := telegram.New(cfg.TelegramBotToken, dispatcher, registry)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	loc, err := time.LoadLocation(cfg.BroadcastTZ)
	if err != nil {
		log.Fatalf("invalid broadcast time zone %q: %v", cfg.BroadcastTZ, err)
	}
	caster := broadcast.New(registry, bot.SendTo, cfg.BroadcastText)
	sched, err := broadcast.NewScheduler(cfg.BroadcastTime, loc, func(ctx context.Context) {
		caster.Run(ctx)
	})
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	log.Printf("Bot is running...")
	bot.Start(context.Background())
}
