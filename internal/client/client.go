// Package client declares the external collaborators of the application.
//
// The orchestrator and the feature reducers only depend on these interfaces;
// internal/xmpp, internal/keyring, internal/config and internal/notify provide
// the implementations wired in cmd/sessionroster.
package client

import (
	"context"
	"errors"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/subscription"
)

// EventSource delivers the per-account feeds the sidebar is built from.
// Every feed may fail with an error result without affecting the others, and
// must close its channel once ctx is done.
type EventSource interface {
	// Roster emits the grouped roster of account whenever it changes
	Roster(ctx context.Context, account domain.AccountID) <-chan subscription.Result[domain.Roster]

	// Presence emits the presence of every known contact whenever one changes
	Presence(ctx context.Context, account domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.Presence]

	// ActiveChats emits the ongoing conversations of account
	ActiveChats(ctx context.Context, account domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.ActiveChat]

	// UserInfos looks up profile and avatar data for contacts once
	UserInfos(ctx context.Context, account domain.AccountID, contacts []domain.AccountID) (map[domain.AccountID]domain.UserInfo, error)
}

// AccountsClient manages the connections of all accounts
type AccountsClient interface {
	// AvailableAccounts emits the accounts the client knows about, with their
	// connection status, whenever the set or a status changes
	AvailableAccounts(ctx context.Context) <-chan subscription.Result[[]domain.Account]

	// ConnectAccounts registers every account and starts connecting them in
	// the background. The feeds of the accounts are available on return.
	ConnectAccounts(credentials []domain.Credentials)

	// Login connects a single account and returns once it is connected
	Login(ctx context.Context, credentials domain.Credentials) error

	// Disconnect closes the connection of account
	Disconnect(account domain.AccountID) error

	// SetAvailability broadcasts the availability of account to its contacts
	SetAvailability(account domain.AccountID, availability domain.Availability) error
}

// ConnectivityClient reports whether the client can reach the network
type ConnectivityClient interface {
	Connectivity(ctx context.Context) <-chan subscription.Result[domain.Connectivity]
}

// BookmarksLoader returns the ids of the accounts saved by the user, in order
type BookmarksLoader interface {
	LoadBookmarks() ([]domain.AccountID, error)
}

// ErrNoCredentials is returned by a CredentialsLoader that has nothing stored
// for an account
var ErrNoCredentials = errors.New("no stored credentials")

// CredentialsLoader returns the stored secrets of an account
type CredentialsLoader interface {
	LoadCredentials(account domain.AccountID) (domain.Credentials, error)
	SaveCredentials(credentials domain.Credentials) error
}

// Notifier schedules user notifications. Calls are fire-and-forget.
type Notifier interface {
	PromptForPushNotifications()
	ScheduleLocalNotification(ctx context.Context, msg domain.Message, from domain.UserInfo) error
}
