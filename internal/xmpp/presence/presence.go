// Package presence tracks the presence of an account's contacts per resource.
package presence

import (
	"sync"

	"mellium.im/xmpp/jid"

	"github.com/meszmate/sessionroster/internal/domain"
)

// Show represents the presence show state
type Show string

const (
	ShowOnline Show = ""
	ShowAway   Show = "away"
	ShowChat   Show = "chat"
	ShowDND    Show = "dnd"
	ShowXA     Show = "xa"
)

// Status represents a presence status
type Status struct {
	JID      jid.JID
	Show     Show
	Status   string
	Priority int
}

// Manager manages presence information
type Manager struct {
	mu       sync.RWMutex
	statuses map[string]map[string]*Status // bare JID -> resource -> status
}

// NewManager creates a new presence manager
func NewManager() *Manager {
	return &Manager{
		statuses: make(map[string]map[string]*Status),
	}
}

// Set sets the presence for a JID
func (m *Manager) Set(status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bare := status.JID.Bare().String()
	resource := status.JID.Resourcepart()

	if m.statuses[bare] == nil {
		m.statuses[bare] = make(map[string]*Status)
	}
	m.statuses[bare][resource] = &status
}

// Remove removes presence for a JID (all resources or specific resource)
func (m *Manager) Remove(j jid.JID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bare := j.Bare().String()
	resource := j.Resourcepart()

	if resource == "" {
		delete(m.statuses, bare)
	} else if m.statuses[bare] != nil {
		delete(m.statuses[bare], resource)
		if len(m.statuses[bare]) == 0 {
			delete(m.statuses, bare)
		}
	}
}

// Get returns the highest priority presence for a bare JID
func (m *Manager) Get(j jid.JID) *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return best(m.statuses[j.Bare().String()])
}

func best(resources map[string]*Status) *Status {
	var b *Status
	for _, status := range resources {
		if b == nil || status.Priority > b.Priority ||
			(status.Priority == b.Priority && status.JID.Resourcepart() < b.JID.Resourcepart()) {
			b = status
		}
	}
	return b
}

// Clear clears all presence information
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = make(map[string]map[string]*Status)
}

// Snapshot returns the presence of every contact with an online resource,
// using the highest priority resource. Contacts without one are absent.
func (m *Manager) Snapshot() map[domain.AccountID]domain.Presence {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[domain.AccountID]domain.Presence, len(m.statuses))
	for bare, resources := range m.statuses {
		s := best(resources)
		if s == nil {
			continue
		}
		out[domain.AccountID(bare)] = domain.Presence{
			Kind:   domain.PresenceAvailable,
			Show:   string(s.Show),
			Status: s.Status,
		}
	}
	return out
}

// ShowFor returns the show value advertised for an availability
func ShowFor(a domain.Availability) Show {
	switch a {
	case domain.Away:
		return ShowAway
	case domain.DoNotDisturb:
		return ShowDND
	default:
		return ShowOnline
	}
}

// ShowToString converts a Show value to a human-readable string
func ShowToString(show Show) string {
	switch show {
	case ShowOnline:
		return "online"
	case ShowAway:
		return "away"
	case ShowChat:
		return "chat"
	case ShowDND:
		return "dnd"
	case ShowXA:
		return "xa"
	default:
		return "unknown"
	}
}
