// Package sidebar implements the roster sidebar of the current account.
//
// On OnAppear the sidebar subscribes to the roster, presence, active chats
// and user infos of the current account and folds every emission into a
// RosterState. Failed emissions are logged and leave the last known value in
// place; the event source is responsible for reconnecting.
package sidebar

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/footer"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/session"
	"github.com/meszmate/sessionroster/internal/subscription"
)

// Feeds are the subscriptions owned by the sidebar
var Feeds = []subscription.Name{
	subscription.Roster,
	subscription.Presence,
	subscription.ActiveChats,
	subscription.UserInfos,
}

// State is the sidebar state
type State struct {
	// Account is the account the roster belongs to
	Account    domain.AccountID
	Subscribed bool
	Roster     RosterState
	View       View
	Selection  domain.AccountID
	Footer     footer.State
}

// OnAppear subscribes to the feeds of the current account
type OnAppear struct{}

// OnDisappear cancels the feeds
type OnDisappear struct{}

// Select opens the conversation with a contact
type Select struct{ JID domain.AccountID }

// FooterMsg wraps a footer message
type FooterMsg struct{ Msg tea.Msg }

func (m FooterMsg) Unwrap() tea.Msg { return m.Msg }

var footerLens = session.Lens[State, footer.State]{
	Get: func(s State) footer.State { return s.Footer },
	Set: func(s *State, f footer.State) { s.Footer = f },
}

// Reducer handles sidebar messages
type Reducer struct {
	source client.EventSource
	footer *footer.Reducer
	logger *logging.Logger
}

// NewReducer creates a sidebar reducer
func NewReducer(source client.EventSource, footerReducer *footer.Reducer, logger *logging.Logger) *Reducer {
	return &Reducer{
		source: source,
		footer: footerReducer,
		logger: logger.With("sidebar"),
	}
}

// Reduce applies msg to s
func (r *Reducer) Reduce(s *session.State[State], msg tea.Msg) []subscription.Effect {
	switch msg := msg.(type) {
	case OnAppear:
		return r.appear(s)
	case OnDisappear:
		var effects []subscription.Effect
		s.Modify(func(st *State) { effects = Disappear(st) })
		return effects
	case Select:
		s.Modify(func(st *State) { st.Selection = msg.JID })
	case FooterMsg:
		effects := session.Scope(s, footerLens, func(fs *session.State[footer.State]) []subscription.Effect {
			return r.footer.Reduce(fs, msg.Msg)
		})
		return subscription.MapAll(effects, func(m tea.Msg) tea.Msg { return FooterMsg{Msg: m} })

	case subscription.Delivery[domain.Roster]:
		if msg.Err != nil {
			r.logger.Error("Could not load roster. %v", msg.Err)
			return nil
		}
		var contacts []domain.AccountID
		s.Modify(func(st *State) {
			st.Roster.SetRoster(msg.Value)
			st.View = st.Roster.View()
			contacts = msg.Value.JIDs()
		})
		return []subscription.Effect{
			subscription.Subscribe(subscription.UserInfos, r.userInfos(s.CurrentUser(), contacts)),
		}
	case subscription.Delivery[map[domain.AccountID]domain.Presence]:
		if msg.Err != nil {
			r.logger.Error("Could not load presences. %v", msg.Err)
			return nil
		}
		s.Modify(func(st *State) {
			st.Roster.SetPresences(msg.Value)
			st.View = st.Roster.View()
		})
	case subscription.Delivery[map[domain.AccountID]domain.ActiveChat]:
		if msg.Err != nil {
			r.logger.Error("Could not load active chats. %v", msg.Err)
			return nil
		}
		s.Modify(func(st *State) {
			st.Roster.SetActiveChats(msg.Value)
			st.View = st.Roster.View()
		})
	case subscription.Delivery[map[domain.AccountID]domain.UserInfo]:
		if msg.Err != nil {
			r.logger.Error("Could not load user infos. %v", msg.Err)
			return nil
		}
		s.Modify(func(st *State) {
			st.Roster.SetUserInfos(msg.Value)
			st.View = st.Roster.View()
		})
	}
	return nil
}

// appear (re)starts all four feeds. Switching to another account drops the
// roster of the previous one first.
func (r *Reducer) appear(s *session.State[State]) []subscription.Effect {
	account := s.CurrentUser()
	var contacts []domain.AccountID
	s.Modify(func(st *State) {
		if st.Account != account {
			st.Account = account
			st.Roster = RosterState{}
			st.View = View{}
			st.Selection = ""
		}
		st.Subscribed = true
		contacts = st.Roster.Roster.JIDs()
	})

	return []subscription.Effect{
		subscription.Subscribe(subscription.Roster, func(ctx context.Context) <-chan subscription.Result[domain.Roster] {
			return r.source.Roster(ctx, account)
		}),
		subscription.Subscribe(subscription.Presence, func(ctx context.Context) <-chan subscription.Result[map[domain.AccountID]domain.Presence] {
			return r.source.Presence(ctx, account)
		}),
		subscription.Subscribe(subscription.ActiveChats, func(ctx context.Context) <-chan subscription.Result[map[domain.AccountID]domain.ActiveChat] {
			return r.source.ActiveChats(ctx, account)
		}),
		subscription.Subscribe(subscription.UserInfos, r.userInfos(account, contacts)),
	}
}

func (r *Reducer) userInfos(account domain.AccountID, contacts []domain.AccountID) subscription.Stream[map[domain.AccountID]domain.UserInfo] {
	return subscription.Once(func(ctx context.Context) (map[domain.AccountID]domain.UserInfo, error) {
		return r.source.UserInfos(ctx, account, contacts)
	})
}

// Disappear marks the sidebar idle and returns the effects cancelling its
// feeds. It does not need the current account, so it can run after the
// account was removed.
func Disappear(st *State) []subscription.Effect {
	st.Subscribed = false
	effects := make([]subscription.Effect, len(Feeds))
	for i, name := range Feeds {
		effects[i] = subscription.Cancel(name)
	}
	return effects
}
