// Package conversation implements the toolbar of an open chat.
package conversation

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/session"
	"github.com/meszmate/sessionroster/internal/subscription"
)

// State is an open conversation
type State struct {
	Chat          domain.AccountID
	IsShowingInfo bool
}

// New opens a conversation with chat
func New(chat domain.AccountID) State {
	return State{Chat: chat}
}

// ToggleInfo shows or hides the contact info panel
type ToggleInfo struct{}

// StartVideoCallTapped is sent by the call button
type StartVideoCallTapped struct{}

// Reducer handles conversation messages
type Reducer struct {
	logger *logging.Logger
}

// NewReducer creates a conversation reducer
func NewReducer(logger *logging.Logger) *Reducer {
	return &Reducer{logger: logger.With("conversation")}
}

// Reduce applies msg to s
func (r *Reducer) Reduce(s *session.State[State], msg tea.Msg) []subscription.Effect {
	switch msg.(type) {
	case ToggleInfo:
		s.Modify(func(st *State) { st.IsShowingInfo = !st.IsShowingInfo })
	case StartVideoCallTapped:
		// Calls are not supported yet
		r.logger.Info("Start video call with %s from %s tapped", s.Child().Chat, s.CurrentUser())
	}
	return nil
}
