// Package session provides State, a view of one feature's state scoped to
// the current account.
//
// A feature never sees the full application state. The orchestrator hands it
// a State[Own] derived with Project, ProjectOptional or ProjectCase and writes
// the result back with the matching Merge function. Merging propagates the
// current user and the selected account's status, nothing else.
package session

import (
	"fmt"

	"github.com/meszmate/sessionroster/internal/accounts"
	"github.com/meszmate/sessionroster/internal/domain"
)

// State pairs a child state with the current account and a snapshot of all
// accounts.
//
// The accounts snapshot is copy-on-write: State never mutates a store it did
// not clone itself, so copies of a State can be handed out freely.
type State[T any] struct {
	currentUser domain.AccountID
	accounts    *accounts.Store
	child       T
}

// New creates a State. It panics if currentUser is empty or accts is nil.
func New[T any](currentUser domain.AccountID, accts *accounts.Store, child T) State[T] {
	if currentUser == "" {
		panic("session: state requires a current user")
	}
	if accts == nil {
		panic("session: state requires an accounts snapshot")
	}
	return State[T]{
		currentUser: currentUser,
		accounts:    accts,
		child:       child,
	}
}

// CurrentUser returns the id of the account the state is scoped to
func (s State[T]) CurrentUser() domain.AccountID {
	return s.currentUser
}

// SetCurrentUser switches the state to another account
func (s *State[T]) SetCurrentUser(id domain.AccountID) {
	s.currentUser = id
}

// Accounts returns the accounts snapshot. Callers must treat it as read-only.
func (s State[T]) Accounts() *accounts.Store {
	return s.accounts
}

// Child returns the child state
func (s State[T]) Child() T {
	return s.child
}

// SetChild replaces the child state
func (s *State[T]) SetChild(child T) {
	s.child = child
}

// Modify applies fn to the child state in place
func (s *State[T]) Modify(fn func(*T)) {
	fn(&s.child)
}

// SelectedAccount returns the record of the current user.
//
// It panics if the current user is not part of the accounts snapshot. That
// can only happen when the orchestrator let a removed account id survive into
// a live State.
func (s State[T]) SelectedAccount() domain.Account {
	return selectedAccount(s.accounts, s.currentUser)
}

// SetSelectedAccount writes the status of account to the current user's
// record. All other fields of account are ignored.
func (s *State[T]) SetSelectedAccount(account domain.Account) {
	current, ok := s.accounts.Get(s.currentUser)
	if !ok || current.Status == account.Status {
		return
	}
	s.accounts = s.accounts.Clone()
	s.accounts.SetAvailability(s.currentUser, account.Status)
}

func selectedAccount(accts *accounts.Store, id domain.AccountID) domain.Account {
	a, ok := accts.Get(id)
	if !ok {
		panic(fmt.Sprintf("session: selected account %s could not be found in available accounts", id))
	}
	return a
}

// adopt takes over the current user and selected account status of child
func (s *State[T]) adopt(currentUser domain.AccountID, childAccounts *accounts.Store) {
	s.currentUser = currentUser
	s.SetSelectedAccount(selectedAccount(childAccounts, currentUser))
}
