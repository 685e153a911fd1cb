package history

import (
	"sync"

	"chat-relay/internal/llm"
)

// Manager holds one in-memory transcript per user for the lifetime of the
// process. Transcripts are ordered strictly by arrival; an unseen user has an
// empty transcript.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64][]llm.Message
	maxTurns int
}

// NewManager creates a transcript store. maxTurns caps how many messages are
// retained per user, oldest dropped first; 0 disables trimming.
func NewManager(maxTurns int) *Manager {
	return &Manager{sessions: make(map[int64][]llm.Message), maxTurns: maxTurns}
}

// Get returns a copy of the user's transcript, empty for unseen users.
func (m *Manager) Get(userID int64) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	es := m.sessions[userID]
	out := make([]llm.Message, len(es))
	copy(out, es)
	return out
}

// Append folds one (user, bot) exchange into the transcript in that order and
// returns a copy of the new transcript. Appends for the same user are
// serialized by the manager lock, so concurrent exchanges never lose turns.
func (m *Manager) Append(userID int64, userText, botText string) []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := append(m.sessions[userID],
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleAssistant, Content: botText},
	)
	if m.maxTurns > 0 && len(s) > m.maxTurns {
		trimmed := make([]llm.Message, m.maxTurns)
		copy(trimmed, s[len(s)-m.maxTurns:])
		s = trimmed
	}
	m.sessions[userID] = s

	out := make([]llm.Message, len(s))
	copy(out, s)
	return out
}

// Reset drops the user's transcript.
func (m *Manager) Reset(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len reports the number of retained messages for a user.
func (m *Manager) Len(userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[userID])
}
