package domain

import (
	"fmt"
	"strings"
	"unicode"

	"mellium.im/xmpp/jid"
)

// AccountID identifies an account or a contact by its normalized bare JID.
type AccountID string

// ParseAccountID parses s as a JID and normalizes it to its bare form
func ParseAccountID(s string) (AccountID, error) {
	j, err := jid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid JID %q: %w", s, err)
	}
	return AccountID(j.Bare().String()), nil
}

// MustParseAccountID is like ParseAccountID but panics on error. Meant for
// constants and tests.
func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the bare JID
func (id AccountID) String() string {
	return string(id)
}

// Node returns the localpart of the JID, or "" for domain-only JIDs
func (id AccountID) Node() string {
	if i := strings.IndexByte(string(id), '@'); i >= 0 {
		return string(id)[:i]
	}
	return ""
}

// Domain returns the domainpart of the JID
func (id AccountID) Domain() string {
	if i := strings.IndexByte(string(id), '@'); i >= 0 {
		return string(id)[i+1:]
	}
	return string(id)
}

// ConnectionStatus is the connection state of an account
type ConnectionStatus int

const (
	StatusOffline ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusDisconnected
)

// String returns the string representation of the status
func (s ConnectionStatus) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Profile is the user-visible profile of an account
type Profile struct {
	FullName string
	Nickname string
}

// Contact is an entry of the account's contact list
type Contact struct {
	JID    AccountID
	Name   string
	Groups []string
}

// Account is the record kept per account in the account store
type Account struct {
	JID      AccountID
	Status   ConnectionStatus
	Profile  *Profile
	Contacts []Contact
	Avatar   string
}

// NewAccount creates an account record with no profile, contacts or avatar
func NewAccount(id AccountID, status ConnectionStatus) Account {
	return Account{JID: id, Status: status}
}

// Username returns the name to display for the account
func (a Account) Username() string {
	if a.Profile != nil {
		if a.Profile.FullName != "" {
			return a.Profile.FullName
		}
		if a.Profile.Nickname != "" {
			return a.Profile.Nickname
		}
	}

	base := a.JID.Node()
	if base == "" {
		base = a.JID.Domain()
	}

	parts := strings.FieldsFunc(base, func(r rune) bool { return r == '.' })
	for i, p := range parts {
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

// Clone returns a deep copy of the account
func (a Account) Clone() Account {
	c := a
	if a.Profile != nil {
		p := *a.Profile
		c.Profile = &p
	}
	if a.Contacts != nil {
		c.Contacts = make([]Contact, len(a.Contacts))
		for i, contact := range a.Contacts {
			contact.Groups = append([]string(nil), contact.Groups...)
			c.Contacts[i] = contact
		}
	}
	return c
}

// Credentials are the stored secrets of an account
type Credentials struct {
	JID      AccountID
	Password string
	Server   string
	Port     int
	Resource string
}
