// Package keyring stores account passwords in the OS keyring, falling back
// to accounts.toml when no keyring is available.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/config"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
)

// Service is the keyring service passwords are stored under
const Service = "sessionroster"

// ErrNoCredentials is returned for accounts without a stored password
var ErrNoCredentials = client.ErrNoCredentials

// Store loads and saves account credentials
type Store struct {
	bookmarks *config.Bookmarks
	logger    *logging.Logger
}

// New creates a credential store over the saved accounts
func New(bookmarks *config.Bookmarks, logger *logging.Logger) *Store {
	return &Store{
		bookmarks: bookmarks,
		logger:    logger.With("keyring"),
	}
}

// LoadCredentials returns the credentials of account
func (s *Store) LoadCredentials(account domain.AccountID) (domain.Credentials, error) {
	acc, err := s.bookmarks.Lookup(account)
	if errors.Is(err, config.ErrAccountNotFound) {
		return domain.Credentials{}, fmt.Errorf("%w: %s", ErrNoCredentials, account)
	}
	if err != nil {
		return domain.Credentials{}, err
	}

	creds := domain.Credentials{
		JID:      account,
		Password: acc.Password,
		Server:   acc.Server,
		Port:     acc.Port,
		Resource: acc.Resource,
	}

	if acc.UseKeyring {
		password, err := gokeyring.Get(Service, account.String())
		switch {
		case errors.Is(err, gokeyring.ErrNotFound):
			if creds.Password == "" {
				return domain.Credentials{}, fmt.Errorf("%w: %s", ErrNoCredentials, account)
			}
			s.logger.Warn("No keyring entry for %s, using the saved password", account)
		case err != nil:
			return domain.Credentials{}, fmt.Errorf("failed to read keyring: %w", err)
		default:
			creds.Password = password
		}
	}

	if creds.Password == "" {
		return domain.Credentials{}, fmt.Errorf("%w: %s", ErrNoCredentials, account)
	}
	return creds, nil
}

// SaveCredentials bookmarks the account and stores its password in the
// keyring, or in accounts.toml if the keyring is unavailable
func (s *Store) SaveCredentials(creds domain.Credentials) error {
	acc := config.Account{
		JID:         creds.JID.String(),
		AutoConnect: true,
		UseKeyring:  true,
		Server:      creds.Server,
		Port:        creds.Port,
		Resource:    creds.Resource,
	}

	if err := gokeyring.Set(Service, creds.JID.String(), creds.Password); err != nil {
		s.logger.Warn("Keyring unavailable, saving the password of %s to the accounts file. %v", creds.JID, err)
		acc.UseKeyring = false
		acc.Password = creds.Password
	}

	if err := s.bookmarks.Upsert(acc); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}
