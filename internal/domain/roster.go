package domain

import "time"

// Roster is the grouped contact list of an account
type Roster struct {
	Groups []RosterGroup
}

// RosterGroup is a named group of roster items
type RosterGroup struct {
	Name  string
	Items []RosterItem
}

// RosterItem is a single contact in a roster group
type RosterItem struct {
	JID          AccountID
	Subscription string
}

// JIDs returns the deduplicated contact ids of the roster in first-seen order
func (r Roster) JIDs() []AccountID {
	seen := make(map[AccountID]bool)
	var ids []AccountID
	for _, g := range r.Groups {
		for _, item := range g.Items {
			if seen[item.JID] {
				continue
			}
			seen[item.JID] = true
			ids = append(ids, item.JID)
		}
	}
	return ids
}

// PresenceKind is the availability reported by a presence
type PresenceKind int

const (
	PresenceUnavailable PresenceKind = iota
	PresenceAvailable
)

// Presence is the last known presence of a contact
type Presence struct {
	Kind   PresenceKind
	Show   string // "", away, chat, dnd, xa
	Status string
}

// OnlineStatus is the coarse online state shown in the sidebar
type OnlineStatus int

const (
	Offline OnlineStatus = iota
	Online
)

// String returns the string representation of the status
func (s OnlineStatus) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// OnlineStatus maps the presence to the sidebar status
func (p Presence) OnlineStatus() OnlineStatus {
	if p.Kind == PresenceUnavailable {
		return Offline
	}
	return Online
}

// ActiveChat summarizes an ongoing conversation
type ActiveChat struct {
	JID                    AccountID
	NumberOfUnreadMessages int
	LastMessageAt          time.Time
}

// UserInfo is the profile and avatar data of a contact
type UserInfo struct {
	JID      AccountID
	FullName string
	Nickname string
	Avatar   string
}

// Message is an inbound chat message
type Message struct {
	ID        string
	From      AccountID
	To        AccountID
	Body      string
	Timestamp time.Time
}

// Connectivity is the network state of the client
type Connectivity int

const (
	ConnectivityOnline Connectivity = iota
	ConnectivityOffline
)

// String returns the string representation of the connectivity
func (c Connectivity) String() string {
	if c == ConnectivityOffline {
		return "offline"
	}
	return "online"
}

// Availability is the status a user advertises to contacts
type Availability int

const (
	Available Availability = iota
	Away
	DoNotDisturb
)

// String returns the string representation of the availability
func (a Availability) String() string {
	switch a {
	case Away:
		return "away"
	case DoNotDisturb:
		return "dnd"
	default:
		return "available"
	}
}
