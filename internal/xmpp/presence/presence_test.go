package presence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"mellium.im/xmpp/jid"

	"github.com/meszmate/sessionroster/internal/domain"
)

func TestSnapshotUsesHighestPriorityResource(t *testing.T) {
	m := NewManager()
	m.Set(Status{JID: jid.MustParse("bob@example.org/phone"), Show: ShowAway, Priority: 0})
	m.Set(Status{JID: jid.MustParse("bob@example.org/desk"), Show: ShowOnline, Status: "working", Priority: 5})

	snap := m.Snapshot()
	require.Equal(t, domain.Presence{Kind: domain.PresenceAvailable, Status: "working"}, snap["bob@example.org"])
}

func TestRemoveResource(t *testing.T) {
	m := NewManager()
	phone := jid.MustParse("bob@example.org/phone")
	desk := jid.MustParse("bob@example.org/desk")
	m.Set(Status{JID: phone, Show: ShowDND})
	m.Set(Status{JID: desk, Show: ShowAway, Priority: 1})

	m.Remove(desk)
	require.Equal(t, ShowDND, m.Get(phone.Bare()).Show)

	m.Remove(phone)
	require.Nil(t, m.Get(phone.Bare()))
	_, ok := m.Snapshot()["bob@example.org"]
	require.False(t, ok)
}

func TestShowFor(t *testing.T) {
	require.Equal(t, ShowOnline, ShowFor(domain.Available))
	require.Equal(t, ShowAway, ShowFor(domain.Away))
	require.Equal(t, ShowDND, ShowFor(domain.DoNotDisturb))
	require.Equal(t, "dnd", ShowToString(ShowDND))
}
