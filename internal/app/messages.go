package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meszmate/sessionroster/internal/domain"
)

// OnAppear is sent when the main window appears. The first one bootstraps
// the application.
type OnAppear struct{}

// OnDisappear is sent when the main window goes away. Every subscription is
// cancelled.
type OnDisappear struct{}

// DidReceiveMessage schedules a notification for an inbound message
type DidReceiveMessage struct {
	Message domain.Message
	From    domain.UserInfo
}

// DismissAuthentication closes the login screen. The application quits if
// no account is left.
type DismissAuthentication struct{}

// ProfileFetched stores the profile of an account
type ProfileFetched struct {
	JID     domain.AccountID
	Profile domain.Profile
}

// AvatarFetched stores the avatar of an account
type AvatarFetched struct {
	JID    domain.AccountID
	Avatar string
}

// ContactsChanged stores the contacts of an account
type ContactsChanged struct {
	JID      domain.AccountID
	Contacts []domain.Contact
}

// AuthMsg wraps a message of the login screen
type AuthMsg struct{ Msg tea.Msg }

// SidebarMsg wraps a message of the sidebar
type SidebarMsg struct{ Msg tea.Msg }

// ConversationMsg wraps a message of the open conversation
type ConversationMsg struct{ Msg tea.Msg }

func (m AuthMsg) Unwrap() tea.Msg         { return m.Msg }
func (m SidebarMsg) Unwrap() tea.Msg      { return m.Msg }
func (m ConversationMsg) Unwrap() tea.Msg { return m.Msg }
