// Package roster keeps the contact list of one account.
package roster

import (
	"sort"
	"sync"

	"mellium.im/xmpp/jid"

	"github.com/meszmate/sessionroster/internal/domain"
)

// Subscription represents the subscription state
type Subscription string

const (
	SubscriptionNone   Subscription = "none"
	SubscriptionTo     Subscription = "to"
	SubscriptionFrom   Subscription = "from"
	SubscriptionBoth   Subscription = "both"
	SubscriptionRemove Subscription = "remove"
)

// DefaultGroup holds the contacts that are not in any group
const DefaultGroup = "Contacts"

// Item represents a roster item
type Item struct {
	JID          jid.JID
	Name         string
	Subscription Subscription
	Groups       []string
	Ask          string
}

// Manager manages the roster
type Manager struct {
	mu    sync.RWMutex
	items map[string]*Item
}

// NewManager creates a new roster manager
func NewManager() *Manager {
	return &Manager{
		items: make(map[string]*Item),
	}
}

// Set sets or updates a roster item. Items with the remove subscription are
// dropped.
func (m *Manager) Set(item Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bare := item.JID.Bare().String()
	if item.Subscription == SubscriptionRemove {
		delete(m.items, bare)
		return
	}
	m.items[bare] = &item
}

// Replace replaces the whole roster, as after a roster request
func (m *Manager) Replace(items []Item) {
	m.mu.Lock()
	m.items = make(map[string]*Item, len(items))
	m.mu.Unlock()

	for _, item := range items {
		m.Set(item)
	}
}

// Get returns a roster item by JID
func (m *Manager) Get(j jid.JID) *Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[j.Bare().String()]
}

// Remove removes a roster item
func (m *Manager) Remove(j jid.JID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, j.Bare().String())
}

// Clear removes all roster items
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*Item)
}

// Count returns the number of roster items
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Names returns the display name of every contact that has one
func (m *Manager) Names() map[domain.AccountID]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make(map[domain.AccountID]string)
	for bare, item := range m.items {
		if item.Name != "" {
			names[domain.AccountID(bare)] = item.Name
		}
	}
	return names
}

// Snapshot returns the roster grouped by group name. Groups and the contacts
// inside them are sorted; a contact in several groups appears in each.
func (m *Manager) Snapshot() domain.Roster {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byGroup := make(map[string][]domain.RosterItem)
	for bare, item := range m.items {
		groups := item.Groups
		if len(groups) == 0 {
			groups = []string{DefaultGroup}
		}
		for _, g := range groups {
			byGroup[g] = append(byGroup[g], domain.RosterItem{
				JID:          domain.AccountID(bare),
				Subscription: string(item.Subscription),
			})
		}
	}

	names := make([]string, 0, len(byGroup))
	for g := range byGroup {
		names = append(names, g)
	}
	sort.Strings(names)

	r := domain.Roster{Groups: make([]domain.RosterGroup, 0, len(names))}
	for _, g := range names {
		items := byGroup[g]
		sort.Slice(items, func(i, j int) bool { return items[i].JID < items[j].JID })
		r.Groups = append(r.Groups, domain.RosterGroup{Name: g, Items: items})
	}
	return r
}
