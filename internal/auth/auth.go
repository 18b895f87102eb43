// Package auth implements the login form used to add an account.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/subscription"
)

// LoginTimeout bounds a single login attempt
const LoginTimeout = 30 * time.Second

var (
	errMissingPassword = errors.New("password is required")
)

// State is the login form
type State struct {
	JID         string
	Password    string
	Server      string
	Port        int
	IsLoggingIn bool
	Error       string
}

// SetJID updates the address field
type SetJID struct{ Value string }

// SetPassword updates the password field
type SetPassword struct{ Value string }

// SetServer overrides the server host, empty means SRV lookup
type SetServer struct {
	Host string
	Port int
}

// SubmitTapped starts a login attempt
type SubmitTapped struct{}

// DidLogIn is sent once an account is connected. Parents use it to close the
// login form and select the account.
type DidLogIn struct {
	JID domain.AccountID
}

// LoginFailed is sent when a login attempt did not succeed
type LoginFailed struct {
	Err error
}

// Reducer handles the login form
type Reducer struct {
	accounts    client.AccountsClient
	credentials client.CredentialsLoader
	logger      *logging.Logger
}

// NewReducer creates a login reducer. credentials may be nil, in which case
// successful logins are not remembered.
func NewReducer(accounts client.AccountsClient, credentials client.CredentialsLoader, logger *logging.Logger) *Reducer {
	return &Reducer{
		accounts:    accounts,
		credentials: credentials,
		logger:      logger.With("auth"),
	}
}

// Reduce applies msg to s
func (r *Reducer) Reduce(s *State, msg tea.Msg) []subscription.Effect {
	switch msg := msg.(type) {
	case SetJID:
		s.JID = msg.Value
		s.Error = ""
	case SetPassword:
		s.Password = msg.Value
		s.Error = ""
	case SetServer:
		s.Server = strings.TrimSpace(msg.Host)
		s.Port = msg.Port
	case SubmitTapped:
		if s.IsLoggingIn {
			return nil
		}
		creds, err := s.credentials()
		if err != nil {
			s.Error = err.Error()
			return nil
		}
		s.IsLoggingIn = true
		s.Error = ""
		return []subscription.Effect{subscription.Run(r.login(creds))}
	case DidLogIn:
		s.IsLoggingIn = false
		s.Password = ""
	case LoginFailed:
		s.IsLoggingIn = false
		s.Error = msg.Err.Error()
	}
	return nil
}

func (s State) credentials() (domain.Credentials, error) {
	id, err := domain.ParseAccountID(s.JID)
	if err != nil {
		return domain.Credentials{}, err
	}
	if s.Password == "" {
		return domain.Credentials{}, errMissingPassword
	}
	return domain.Credentials{
		JID:      id,
		Password: s.Password,
		Server:   s.Server,
		Port:     s.Port,
	}, nil
}

func (r *Reducer) login(creds domain.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), LoginTimeout)
		defer cancel()

		if err := r.accounts.Login(ctx, creds); err != nil {
			r.logger.Warn("Login of %s failed: %v", creds.JID, err)
			return LoginFailed{Err: fmt.Errorf("could not log in as %s: %w", creds.JID, err)}
		}
		if r.credentials != nil {
			if err := r.credentials.SaveCredentials(creds); err != nil {
				r.logger.Error("Could not save credentials of %s: %v", creds.JID, err)
			}
		}
		r.logger.Info("Logged in as %s", creds.JID)
		return DidLogIn{JID: creds.JID}
	}
}
