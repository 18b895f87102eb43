package sidebar

import (
	"github.com/meszmate/sessionroster/internal/domain"
)

// RosterState holds the four feeds the sidebar is built from. Each one is
// replaced wholesale by the latest emission of its feed.
type RosterState struct {
	Roster       domain.Roster
	UnreadCounts map[domain.AccountID]int
	Presences    map[domain.AccountID]domain.Presence
	UserInfos    map[domain.AccountID]domain.UserInfo
}

// View is the display-ready roster
type View struct {
	Groups []Group
}

// Group is a named group of the View
type Group struct {
	Name  string
	Items []Item
}

// Item is one contact of the View. Avatar is empty when none is known.
type Item struct {
	JID    domain.AccountID
	Avatar string
	Unread int
	Status domain.OnlineStatus
}

// SetRoster replaces the roster groups
func (s *RosterState) SetRoster(r domain.Roster) {
	s.Roster = r
}

// SetPresences replaces the presence map
func (s *RosterState) SetPresences(presences map[domain.AccountID]domain.Presence) {
	s.Presences = presences
}

// SetActiveChats replaces the unread counts with the ones of chats
func (s *RosterState) SetActiveChats(chats map[domain.AccountID]domain.ActiveChat) {
	counts := make(map[domain.AccountID]int, len(chats))
	for id, chat := range chats {
		counts[id] = chat.NumberOfUnreadMessages
	}
	s.UnreadCounts = counts
}

// SetUserInfos replaces the profile and avatar map
func (s *RosterState) SetUserInfos(infos map[domain.AccountID]domain.UserInfo) {
	s.UserInfos = infos
}

// View joins the roster groups with the other feeds. Contacts missing from a
// feed have no avatar, no unread messages and are offline.
func (s RosterState) View() View {
	groups := make([]Group, 0, len(s.Roster.Groups))
	for _, g := range s.Roster.Groups {
		items := make([]Item, 0, len(g.Items))
		for _, contact := range g.Items {
			item := Item{
				JID:    contact.JID,
				Unread: s.UnreadCounts[contact.JID],
				Status: domain.Offline,
			}
			if p, ok := s.Presences[contact.JID]; ok {
				item.Status = p.OnlineStatus()
			}
			if info, ok := s.UserInfos[contact.JID]; ok {
				item.Avatar = info.Avatar
			}
			items = append(items, item)
		}
		groups = append(groups, Group{Name: g.Name, Items: items})
	}
	return View{Groups: groups}
}

// Len returns the number of items in the view
func (v View) Len() int {
	n := 0
	for _, g := range v.Groups {
		n += len(g.Items)
	}
	return n
}

// At returns the i-th item counting across groups
func (v View) At(i int) (Item, bool) {
	for _, g := range v.Groups {
		if i < len(g.Items) {
			return g.Items[i], true
		}
		i -= len(g.Items)
	}
	return Item{}, false
}
