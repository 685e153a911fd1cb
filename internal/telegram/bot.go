package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-relay/internal/dispatch"
	"chat-relay/internal/subscribers"
)

const (
	subscribedReply = "You're subscribed for daily updates. Ask me anything."
	failureReply    = "Sorry, something went wrong. Please try again."
	unknownCmdReply = "Unknown command. Send /start to subscribe, or just ask me anything."
)

type Bot struct {
	api        *tgbotapi.BotAPI
	s          sender
	dispatcher *dispatch.Dispatcher
	registry   *subscribers.Registry

	// phones holds numbers from contact shares, attached to the user's
	// later exchanges (contact messages themselves carry no text).
	mu     sync.RWMutex
	phones map[int64]string
}

func New(botToken string, dispatcher *dispatch.Dispatcher, registry *subscribers.Registry) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:        api,
		s:          botAPISender{api: api},
		dispatcher: dispatcher,
		registry:   registry,
		phones:     make(map[int64]string),
	}, nil
}

// Start runs the long-poll loop until the updates channel closes. Each
// message is handled on its own goroutine; the dispatcher and stores are
// internally synchronized.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		go b.handleIncomingMessage(ctx, update.Message)
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}
	if msg.Contact != nil {
		b.rememberPhone(msg.From.ID, msg.Contact.PhoneNumber)
	}
	if msg.Text == "" {
		if msg.Contact != nil {
			// Contact share carries no text: nothing to dispatch, acknowledge.
			b.sendMessage(msg.Chat.ID, "Thanks, got your contact.")
		}
		return
	}

	log.Printf("Incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	meta := metaFrom(msg)
	if meta.PhoneNumber == "" {
		meta.PhoneNumber = b.phoneFor(msg.From.ID)
	}
	reply, err := b.dispatcher.Handle(ctx, msg.From.ID, msg.Text, meta)
	if err != nil {
		log.Printf("failed to handle message from %d: %v", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, failureReply)
		return
	}
	b.sendMessage(msg.Chat.ID, reply)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		added, err := b.registry.Subscribe(msg.From.ID)
		if err != nil {
			log.Printf("subscribe %d: %v", msg.From.ID, err)
		}
		if added {
			log.Printf("user %d (@%s) subscribed to daily updates", msg.From.ID, msg.From.UserName)
		}
		b.sendMessage(msg.Chat.ID, subscribedReply)
	default:
		b.sendMessage(msg.Chat.ID, unknownCmdReply)
	}
}

// SendTo adapts the bot to the broadcaster's send function.
func (b *Bot) SendTo(userID int64, text string) error {
	if _, err := b.s.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		return fmt.Errorf("send to %d: %w", userID, err)
	}
	return nil
}

func (b *Bot) rememberPhone(userID int64, phone string) {
	if phone == "" {
		return
	}
	b.mu.Lock()
	b.phones[userID] = phone
	b.mu.Unlock()
}

func (b *Bot) phoneFor(userID int64) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.phones[userID]
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func metaFrom(msg *tgbotapi.Message) dispatch.Meta {
	m := dispatch.Meta{}
	if msg.From != nil {
		m.DisplayName = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
		if m.DisplayName == "" {
			m.DisplayName = msg.From.UserName
		}
	}
	if msg.Contact != nil {
		m.PhoneNumber = msg.Contact.PhoneNumber
	}
	return m
}
