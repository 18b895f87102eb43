package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAccountIDNormalizesToBare(t *testing.T) {
	id, err := ParseAccountID("  alice@example.org/phone ")
	require.NoError(t, err)
	require.Equal(t, AccountID("alice@example.org"), id)
	require.Equal(t, "alice", id.Node())
	require.Equal(t, "example.org", id.Domain())
}

func TestParseAccountIDRejectsInvalid(t *testing.T) {
	_, err := ParseAccountID("")
	require.Error(t, err)
}

func TestUsernamePrefersProfile(t *testing.T) {
	a := NewAccount("valerian@crisp.chat", StatusConnected)
	require.Equal(t, "Valerian", a.Username())

	a.Profile = &Profile{Nickname: "val"}
	require.Equal(t, "val", a.Username())

	a.Profile.FullName = "Valerian Saliou"
	require.Equal(t, "Valerian Saliou", a.Username())
}

func TestUsernameSplitsDottedNode(t *testing.T) {
	a := NewAccount("john.doe@x.org", StatusOffline)
	require.Equal(t, "John Doe", a.Username())

	d := NewAccount("prose.org", StatusOffline)
	require.Equal(t, "Prose Org", d.Username())
}

func TestCloneDoesNotAlias(t *testing.T) {
	a := Account{
		JID:      "a@x.org",
		Profile:  &Profile{FullName: "A"},
		Contacts: []Contact{{JID: "b@x.org", Groups: []string{"Team"}}},
	}
	c := a.Clone()
	c.Profile.FullName = "changed"
	c.Contacts[0].Groups[0] = "changed"

	require.Equal(t, "A", a.Profile.FullName)
	require.Equal(t, "Team", a.Contacts[0].Groups[0])
}

func TestRosterJIDsDeduplicates(t *testing.T) {
	r := Roster{Groups: []RosterGroup{
		{Name: "Team", Items: []RosterItem{{JID: "b@x.org"}, {JID: "c@x.org"}}},
		{Name: "Friends", Items: []RosterItem{{JID: "b@x.org"}, {JID: "d@x.org"}}},
	}}
	require.Equal(t, []AccountID{"b@x.org", "c@x.org", "d@x.org"}, r.JIDs())
}
