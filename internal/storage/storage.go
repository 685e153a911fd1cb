package storage

import "time"

// Event is one durable record of a user/bot exchange: the raw user text, the
// fully composed prompt, the backend's reply and optional transport metadata.
// Events are immutable and appended in chronological order.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	UserID      int64     `json:"user_id"`
	UserText    string    `json:"user_text"`
	FullPrompt  string    `json:"full_prompt"`
	AIResponse  string    `json:"ai_response"`
	DisplayName string    `json:"display_name,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Model       string    `json:"model,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// Implementations can be file-based, database, etc.
// LoadInteractions should return events in chronological order.
// AppendInteraction stamps the event's timestamp and atomically appends it,
// so durable timestamps are non-decreasing in write order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
