// Package dispatch orchestrates one inbound message: transcript lookup,
// prompt composition, the generative call, history fold and the best-effort
// interaction record.
package dispatch

import (
	"context"
	"log"
	"strings"
	"time"

	"chat-relay/internal/history"
	"chat-relay/internal/llm"
	"chat-relay/internal/prompt"
	"chat-relay/internal/storage"
)

// Meta is optional user metadata supplied by the transport, carried into the
// interaction record.
type Meta struct {
	DisplayName string
	PhoneNumber string
}

type Dispatcher struct {
	history  *history.Manager
	composer prompt.Composer
	client   llm.Client
	recorder storage.Recorder
	timeout  time.Duration
}

// New creates a dispatcher. recorder may be nil to disable interaction
// logging; timeout bounds every generative call.
func New(h *history.Manager, composer prompt.Composer, client llm.Client, recorder storage.Recorder, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		history:  h,
		composer: composer,
		client:   client,
		recorder: recorder,
		timeout:  timeout,
	}
}

// Handle processes one message and returns the reply text. A failed or
// timed-out generative call returns a *BackendError and leaves the transcript
// untouched. A failed record write is logged and never blocks the reply.
func (d *Dispatcher) Handle(ctx context.Context, userID int64, userText string, meta Meta) (string, error) {
	transcript := d.history.Get(userID)
	composed := d.composer.Compose(transcript, userText)

	genCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	resp, err := d.client.Generate(genCtx, composed)
	if err != nil {
		return "", &BackendError{Err: err}
	}
	reply := strings.TrimSpace(resp.Content)

	log.Printf("LLM response for %d [model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		userID, resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)

	d.history.Append(userID, userText, reply)

	if d.recorder != nil {
		// The recorder stamps the timestamp under its own lock.
		ev := storage.Event{
			UserID:      userID,
			UserText:    userText,
			FullPrompt:  composed,
			AIResponse:  reply,
			DisplayName: meta.DisplayName,
			PhoneNumber: meta.PhoneNumber,
			Model:       resp.Model,
		}
		if err := d.recorder.AppendInteraction(ev); err != nil {
			perr := &PersistenceError{Err: err}
			log.Printf("failed to record interaction for %d: %v", userID, perr)
		}
	}

	return reply, nil
}
