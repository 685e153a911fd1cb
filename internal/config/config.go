package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// LLM settings
	LLMProvider       LLMProvider   `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	OpenAIModel       string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken  string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID    string        `env:"YANDEX_FOLDER_ID"`
	LLMRequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"60s"`

	// Prompt composition
	ReplyWordLimit  int `env:"REPLY_WORD_LIMIT" envDefault:"150"`
	HistoryMaxTurns int `env:"HISTORY_MAX_TURNS" envDefault:"200"`

	// Storage
	LogFilePath         string `env:"LOG_FILE_PATH" envDefault:"logs/interactions.jsonl"`
	SubscribersFilePath string `env:"SUBSCRIBERS_FILE_PATH" envDefault:"data/subscribers.json"`

	// Daily broadcast
	BroadcastTime string `env:"BROADCAST_TIME" envDefault:"09:00"`
	BroadcastTZ   string `env:"BROADCAST_TZ" envDefault:"Local"`
	BroadcastText string `env:"BROADCAST_TEXT" envDefault:"Your daily scheduled update."`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
