package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-relay/internal/dispatch"
	"chat-relay/internal/history"
	"chat-relay/internal/llm"
	"chat-relay/internal/prompt"
	"chat-relay/internal/storage"
	"chat-relay/internal/subscribers"
)

type fakeSender struct {
	sent    []string
	chatIDs []int64
	err     error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	mc := c.(tgbotapi.MessageConfig)
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, mc.Text)
	f.chatIDs = append(f.chatIDs, mc.ChatID)
	return tgbotapi.Message{}, nil
}

type fakeLLM struct {
	resp llm.Response
	err  error
}

func (f fakeLLM) Generate(ctx context.Context, prompt string) (llm.Response, error) {
	return f.resp, f.err
}

type captureRecorder struct {
	mu     sync.Mutex
	events []storage.Event
}

func (r *captureRecorder) AppendInteraction(ev storage.Event) error {
	r.mu.Lock()
	ev.Timestamp = time.Now()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *captureRecorder) LoadInteractions() ([]storage.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]storage.Event(nil), r.events...), nil
}

func newTestBot(t *testing.T, client llm.Client, rec storage.Recorder) (*Bot, *fakeSender) {
	t.Helper()
	reg, err := subscribers.NewRegistry(nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	fs := &fakeSender{}
	d := dispatch.New(history.NewManager(0), prompt.NewComposer(150), client, rec, time.Second)
	return &Bot{s: fs, dispatcher: d, registry: reg, phones: make(map[int64]string)}, fs
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "u"},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func commandMessage(userID, chatID int64, cmd string) *tgbotapi.Message {
	msg := textMessage(userID, chatID, "/"+cmd)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}}
	return msg
}

func TestStartCommandSubscribes(t *testing.T) {
	b, fs := newTestBot(t, fakeLLM{}, nil)

	b.handleIncomingMessage(context.Background(), commandMessage(42, 100, "start"))
	if !b.registry.Contains(42) {
		t.Fatalf("user not subscribed")
	}
	if len(fs.sent) != 1 || fs.sent[0] != subscribedReply {
		t.Fatalf("unexpected replies: %+v", fs.sent)
	}

	// second /start is a no-op for membership but still confirms
	b.handleIncomingMessage(context.Background(), commandMessage(42, 100, "start"))
	if b.registry.Len() != 1 {
		t.Fatalf("re-subscribe changed membership: %d", b.registry.Len())
	}
	if len(fs.sent) != 2 {
		t.Fatalf("confirmation not resent: %+v", fs.sent)
	}
}

func TestUnknownCommandGetsHint(t *testing.T) {
	b, fs := newTestBot(t, fakeLLM{}, nil)
	b.handleIncomingMessage(context.Background(), commandMessage(1, 5, "help"))
	if len(fs.sent) != 1 || fs.sent[0] != unknownCmdReply {
		t.Fatalf("unexpected replies: %+v", fs.sent)
	}
	if b.registry.Len() != 0 {
		t.Fatalf("non-start command must not subscribe")
	}
}

func TestTextMessageDispatchesAndReplies(t *testing.T) {
	b, fs := newTestBot(t, fakeLLM{resp: llm.Response{Content: "Hi there!", Model: "m"}}, nil)

	b.handleIncomingMessage(context.Background(), textMessage(1, 7, "Hello"))
	if len(fs.sent) != 1 || fs.sent[0] != "Hi there!" {
		t.Fatalf("unexpected replies: %+v", fs.sent)
	}
	if fs.chatIDs[0] != 7 {
		t.Fatalf("reply sent to wrong chat: %d", fs.chatIDs[0])
	}
	// chat flow must not subscribe anyone
	if b.registry.Len() != 0 {
		t.Fatalf("plain text subscribed the user")
	}
}

func TestBackendFailureSendsVisibleApology(t *testing.T) {
	b, fs := newTestBot(t, fakeLLM{err: errors.New("down")}, nil)

	b.handleIncomingMessage(context.Background(), textMessage(1, 7, "Hello"))
	if len(fs.sent) != 1 || fs.sent[0] != failureReply {
		t.Fatalf("unexpected replies: %+v", fs.sent)
	}
}

func TestSendToReturnsTransportError(t *testing.T) {
	b, fs := newTestBot(t, fakeLLM{}, nil)
	fs.err = errors.New("blocked")
	if err := b.SendTo(9, "daily"); err == nil {
		t.Fatalf("expected send error")
	}
	fs.err = nil
	if err := b.SendTo(9, "daily"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "daily" || fs.chatIDs[0] != 9 {
		t.Fatalf("unexpected send: %+v %+v", fs.sent, fs.chatIDs)
	}
}

func TestContactShareReachesNextExchangeRecord(t *testing.T) {
	rec := &captureRecorder{}
	b, fs := newTestBot(t, fakeLLM{resp: llm.Response{Content: "Hi!"}}, rec)

	// contact share carries no text, only the acknowledgement goes out
	contact := textMessage(1, 7, "")
	contact.Contact = &tgbotapi.Contact{PhoneNumber: "+100"}
	b.handleIncomingMessage(context.Background(), contact)
	if len(fs.sent) != 1 {
		t.Fatalf("contact share not acknowledged: %+v", fs.sent)
	}
	if events, _ := rec.LoadInteractions(); len(events) != 0 {
		t.Fatalf("contact share must not be dispatched: %+v", events)
	}

	b.handleIncomingMessage(context.Background(), textMessage(1, 7, "Hello"))
	events, _ := rec.LoadInteractions()
	if len(events) != 1 {
		t.Fatalf("want 1 record, got %d", len(events))
	}
	if events[0].PhoneNumber != "+100" {
		t.Fatalf("shared phone missing from record: %+v", events[0])
	}
}

func TestMetaFromCapturesNameAndContact(t *testing.T) {
	msg := textMessage(1, 1, "hi")
	msg.From.FirstName = "Ada"
	msg.From.LastName = "L"
	msg.Contact = &tgbotapi.Contact{PhoneNumber: "+100"}

	m := metaFrom(msg)
	if m.DisplayName != "Ada L" || m.PhoneNumber != "+100" {
		t.Fatalf("unexpected meta: %+v", m)
	}

	msg.From.FirstName = ""
	msg.From.LastName = ""
	if metaFrom(msg).DisplayName != "u" {
		t.Fatalf("username fallback broken: %+v", metaFrom(msg))
	}
}
