// Package footer implements the bar below the sidebar: the current account,
// its availability and the sheets opened from it.
package footer

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meszmate/sessionroster/internal/auth"
	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/session"
	"github.com/meszmate/sessionroster/internal/subscription"
)

// State is the footer state
type State struct {
	Route         Route
	Availability  domain.Availability
	StatusMessage string
}

// SetRoute opens the sheet identified by Tag. RouteAuth is opened from the
// account switcher only.
type SetRoute struct{ Tag RouteTag }

// Dismiss closes the sheet identified by Tag if it is the one open
type Dismiss struct{ Tag RouteTag }

// AccountSettingsMenuMsg wraps a message of the settings menu
type AccountSettingsMenuMsg struct{ Msg tea.Msg }

// AccountSwitcherMenuMsg wraps a message of the account switcher
type AccountSwitcherMenuMsg struct{ Msg tea.Msg }

// AuthMsg wraps a message of the login form
type AuthMsg struct{ Msg tea.Msg }

// EditProfileMsg wraps a message of the profile form
type EditProfileMsg struct{ Msg tea.Msg }

func (m AccountSettingsMenuMsg) Unwrap() tea.Msg { return m.Msg }
func (m AccountSwitcherMenuMsg) Unwrap() tea.Msg { return m.Msg }
func (m AuthMsg) Unwrap() tea.Msg                { return m.Msg }
func (m EditProfileMsg) Unwrap() tea.Msg         { return m.Msg }

// Settings menu messages
type (
	ChangeAvailability struct{ Availability domain.Availability }
	EditProfileTapped  struct{}
	SignOutTapped      struct{}
)

// Account switcher messages
type (
	AccountSelected      struct{ JID domain.AccountID }
	MoveHighlight        struct{ Delta int }
	ConnectAccountTapped struct{}
)

// Profile form messages
type (
	SetFullName  struct{ Value string }
	SetNickname  struct{ Value string }
	CancelTapped struct{}
	SaveTapped   struct{}
)

// ProfileSaved is emitted when the profile form is saved. The application
// stores the profile in the account's record.
type ProfileSaved struct {
	JID     domain.AccountID
	Profile domain.Profile
}

// Reducer handles footer messages
type Reducer struct {
	accounts client.AccountsClient
	auth     *auth.Reducer
	logger   *logging.Logger
}

// NewReducer creates a footer reducer
func NewReducer(accounts client.AccountsClient, authReducer *auth.Reducer, logger *logging.Logger) *Reducer {
	return &Reducer{
		accounts: accounts,
		auth:     authReducer,
		logger:   logger.With("footer"),
	}
}

// Reduce applies msg to s
func (r *Reducer) Reduce(s *session.State[State], msg tea.Msg) []subscription.Effect {
	switch msg := msg.(type) {
	case SetRoute:
		r.setRoute(s, msg.Tag)
	case Dismiss:
		s.Modify(func(st *State) {
			if st.Route.Tag() == msg.Tag {
				st.Route = Route{}
			}
		})
	case AccountSettingsMenuMsg:
		return r.reduceSettingsMenu(s, msg.Msg)
	case AccountSwitcherMenuMsg:
		return r.reduceSwitcherMenu(s, msg.Msg)
	case AuthMsg:
		return r.reduceAuth(s, msg.Msg)
	case EditProfileMsg:
		return r.reduceEditProfile(s, msg.Msg)
	}
	return nil
}

func (r *Reducer) setRoute(s *session.State[State], tag RouteTag) {
	selected := s.SelectedAccount()
	s.Modify(func(st *State) {
		switch tag {
		case RouteAccountSettingsMenu:
			st.Route = AccountSettingsMenuRoute(AccountSettingsMenuState{
				JID:          selected.JID,
				FullName:     selected.Username(),
				Avatar:       selected.Avatar,
				Availability: st.Availability,
			})
		case RouteAccountSwitcherMenu:
			st.Route = AccountSwitcherMenuRoute(AccountSwitcherMenuState{})
		case RouteEditProfile:
			st.Route = EditProfileRoute(editProfileState(selected))
		case RouteNone:
			st.Route = Route{}
		}
	})
}

func editProfileState(account domain.Account) EditProfileState {
	s := EditProfileState{JID: account.JID}
	if account.Profile != nil {
		s.FullName = account.Profile.FullName
		s.Nickname = account.Profile.Nickname
	}
	return s
}

func (r *Reducer) reduceSettingsMenu(s *session.State[State], msg tea.Msg) []subscription.Effect {
	effects := scopeCase(s, accountSettingsMenuCase, func(cs *session.State[AccountSettingsMenuState]) []subscription.Effect {
		switch msg := msg.(type) {
		case ChangeAvailability:
			cs.Modify(func(m *AccountSettingsMenuState) { m.Availability = msg.Availability })
			return []subscription.Effect{subscription.Run(r.setAvailability(cs.CurrentUser(), msg.Availability))}
		case SignOutTapped:
			account := cs.SelectedAccount()
			account.Status = domain.StatusDisconnected
			cs.SetSelectedAccount(account)
			return []subscription.Effect{subscription.Run(r.disconnect(account.JID))}
		}
		return nil
	})

	switch msg := msg.(type) {
	case ChangeAvailability:
		s.Modify(func(st *State) { st.Availability = msg.Availability })
	case EditProfileTapped:
		r.setRoute(s, RouteEditProfile)
	case SignOutTapped:
		s.Modify(func(st *State) { st.Route = Route{} })
	}
	return subscription.MapAll(effects, func(m tea.Msg) tea.Msg { return AccountSettingsMenuMsg{Msg: m} })
}

func (r *Reducer) reduceSwitcherMenu(s *session.State[State], msg tea.Msg) []subscription.Effect {
	scopeCase(s, accountSwitcherMenuCase, func(cs *session.State[AccountSwitcherMenuState]) []subscription.Effect {
		if move, ok := msg.(MoveHighlight); ok {
			n := cs.Accounts().Len()
			cs.Modify(func(m *AccountSwitcherMenuState) {
				if n == 0 {
					m.Highlighted = 0
					return
				}
				m.Highlighted = ((m.Highlighted+move.Delta)%n + n) % n
			})
		}
		return nil
	})

	switch msg := msg.(type) {
	case AccountSelected:
		if !s.Accounts().Contains(msg.JID) {
			r.logger.Warn("Ignoring selection of unknown account %s", msg.JID)
			return nil
		}
		s.Modify(func(st *State) { st.Route = Route{} })
		s.SetCurrentUser(msg.JID)
	case ConnectAccountTapped:
		s.Modify(func(st *State) { st.Route = AuthRoute(auth.State{}) })
	}
	return nil
}

func (r *Reducer) reduceAuth(s *session.State[State], msg tea.Msg) []subscription.Effect {
	effects := scopeCase(s, authCase, func(cs *session.State[auth.State]) []subscription.Effect {
		var effects []subscription.Effect
		cs.Modify(func(a *auth.State) { effects = r.auth.Reduce(a, msg) })
		return effects
	})

	if login, ok := msg.(auth.DidLogIn); ok {
		s.Modify(func(st *State) { st.Route = Route{} })
		if s.Accounts().Contains(login.JID) {
			s.SetCurrentUser(login.JID)
		} else {
			r.logger.Warn("Logged in account %s is not available yet", login.JID)
		}
	}
	return subscription.MapAll(effects, func(m tea.Msg) tea.Msg { return AuthMsg{Msg: m} })
}

func (r *Reducer) reduceEditProfile(s *session.State[State], msg tea.Msg) []subscription.Effect {
	var saved *ProfileSaved
	scopeCase(s, editProfileCase, func(cs *session.State[EditProfileState]) []subscription.Effect {
		cs.Modify(func(form *EditProfileState) {
			switch msg := msg.(type) {
			case SetFullName:
				form.FullName = msg.Value
			case SetNickname:
				form.Nickname = msg.Value
			case SaveTapped:
				saved = &ProfileSaved{
					JID:     form.JID,
					Profile: domain.Profile{FullName: form.FullName, Nickname: form.Nickname},
				}
			}
		})
		return nil
	})

	switch msg.(type) {
	case CancelTapped:
		s.Modify(func(st *State) { st.Route = Route{} })
	case SaveTapped:
		s.Modify(func(st *State) { st.Route = Route{} })
		if saved != nil {
			out := EditProfileMsg{Msg: *saved}
			return []subscription.Effect{subscription.Run(func() tea.Msg { return out })}
		}
	}
	return nil
}

func (r *Reducer) disconnect(id domain.AccountID) tea.Cmd {
	return func() tea.Msg {
		if err := r.accounts.Disconnect(id); err != nil {
			r.logger.Error("Could not disconnect %s: %v", id, err)
		}
		return nil
	}
}

func (r *Reducer) setAvailability(id domain.AccountID, availability domain.Availability) tea.Cmd {
	return func() tea.Msg {
		if err := r.accounts.SetAvailability(id, availability); err != nil {
			r.logger.Error("Could not set availability of %s to %s: %v", id, availability, err)
		}
		return nil
	}
}

// scopeCase runs fn on the open sheet if it is the variant selected by p
func scopeCase[U any](s *session.State[State], p session.Prism[Route, U], fn func(*session.State[U]) []subscription.Effect) []subscription.Effect {
	return session.Scope(s, routeLens, func(rs *session.State[Route]) []subscription.Effect {
		effects, _ := session.ScopeCase(rs, p, fn)
		return effects
	})
}
