// Package chat keeps the ongoing conversations of one account.
package chat

import (
	"sync"
	"time"

	"mellium.im/xmpp/jid"

	"github.com/meszmate/sessionroster/internal/domain"
)

// Message represents a chat message
type Message struct {
	ID        string
	From      jid.JID
	To        jid.JID
	Body      string
	Type      string // chat, groupchat, headline, normal, error
	Timestamp time.Time
}

// Session represents a chat session with a contact
type Session struct {
	JID      jid.JID
	Messages []Message
	Unread   int
	LastRead time.Time
	LastAt   time.Time
}

// Manager manages chat sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	// history is the number of messages kept per session
	history int
}

// NewManager creates a new chat manager keeping up to history messages per
// session
func NewManager(history int) *Manager {
	if history <= 0 {
		history = 100
	}
	return &Manager{
		sessions: make(map[string]*Session),
		history:  history,
	}
}

func (m *Manager) session(j jid.JID) *Session {
	bare := j.Bare().String()
	if s, ok := m.sessions[bare]; ok {
		return s
	}
	s := &Session{JID: j.Bare()}
	m.sessions[bare] = s
	return s
}

// AddMessage adds an incoming message to the session of its sender
func (m *Manager) AddMessage(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(msg.From)
	s.Messages = append(s.Messages, msg)
	if len(s.Messages) > m.history {
		s.Messages = s.Messages[len(s.Messages)-m.history:]
	}
	s.Unread++
	if msg.Timestamp.After(s.LastAt) {
		s.LastAt = msg.Timestamp
	}
}

// MarkRead marks all messages as read
func (m *Manager) MarkRead(j jid.JID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[j.Bare().String()]; ok {
		s.Unread = 0
		s.LastRead = time.Now()
	}
}

// GetHistory returns the message history for a JID
func (m *Manager) GetHistory(j jid.JID, limit int) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[j.Bare().String()]
	if !ok {
		return nil
	}

	messages := s.Messages
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return append([]Message(nil), messages...)
}

// GetUnreadCount returns the total unread count
func (m *Manager) GetUnreadCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, s := range m.sessions {
		count += s.Unread
	}
	return count
}

// DeleteSession deletes a session
func (m *Manager) DeleteSession(j jid.JID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, j.Bare().String())
}

// Snapshot returns a summary of every session
func (m *Manager) Snapshot() map[domain.AccountID]domain.ActiveChat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[domain.AccountID]domain.ActiveChat, len(m.sessions))
	for bare, s := range m.sessions {
		id := domain.AccountID(bare)
		out[id] = domain.ActiveChat{
			JID:                    id,
			NumberOfUnreadMessages: s.Unread,
			LastMessageAt:          s.LastAt,
		}
	}
	return out
}
