// Package broadcast delivers the daily notification to every subscriber.
package broadcast

import (
	"context"
	"log"

	"chat-relay/internal/subscribers"
)

// SendFunc delivers one message to one user via the transport.
type SendFunc func(userID int64, text string) error

type Broadcaster struct {
	registry *subscribers.Registry
	send     SendFunc
	text     string
}

func New(registry *subscribers.Registry, send SendFunc, text string) *Broadcaster {
	return &Broadcaster{registry: registry, send: send, text: text}
}

// Run performs one broadcast pass over a snapshot of the registry. A failed
// send for one subscriber is logged and does not abort delivery to the rest.
func (b *Broadcaster) Run(ctx context.Context) (sent, failed int) {
	members := b.registry.Snapshot()
	log.Printf("broadcast pass starting for %d subscribers", len(members))
	for _, id := range members {
		select {
		case <-ctx.Done():
			log.Printf("broadcast pass cancelled: sent=%d failed=%d remaining=%d",
				sent, failed, len(members)-sent-failed)
			return sent, failed
		default:
		}
		if err := b.send(id, b.text); err != nil {
			failed++
			log.Printf("broadcast send to %d failed: %v", id, err)
			continue
		}
		sent++
	}
	log.Printf("broadcast pass done: sent=%d failed=%d", sent, failed)
	return sent, failed
}
