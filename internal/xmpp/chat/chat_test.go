package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"mellium.im/xmpp/jid"

	"github.com/meszmate/sessionroster/internal/domain"
)

func TestUnreadCountsPerSession(t *testing.T) {
	m := NewManager(10)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.AddMessage(Message{From: jid.MustParse("bob@example.org/phone"), Body: "hi", Timestamp: at})
	m.AddMessage(Message{From: jid.MustParse("bob@example.org/desk"), Body: "there", Timestamp: at.Add(time.Minute)})
	m.AddMessage(Message{From: jid.MustParse("carol@example.org"), Body: "yo", Timestamp: at})

	snap := m.Snapshot()
	require.Equal(t, domain.ActiveChat{
		JID:                    "bob@example.org",
		NumberOfUnreadMessages: 2,
		LastMessageAt:          at.Add(time.Minute),
	}, snap["bob@example.org"])
	require.Equal(t, 3, m.GetUnreadCount())

	m.MarkRead(jid.MustParse("bob@example.org"))
	require.Zero(t, m.Snapshot()["bob@example.org"].NumberOfUnreadMessages)
	require.Equal(t, 1, m.GetUnreadCount())
}

func TestHistoryIsBounded(t *testing.T) {
	m := NewManager(2)
	bob := jid.MustParse("bob@example.org")
	for _, body := range []string{"a", "b", "c"} {
		m.AddMessage(Message{From: bob, Body: body})
	}

	history := m.GetHistory(bob, 0)
	require.Len(t, history, 2)
	require.Equal(t, "b", history[0].Body)
	require.Equal(t, "c", m.GetHistory(bob, 1)[0].Body)

	m.DeleteSession(bob)
	require.Nil(t, m.GetHistory(bob, 0))
}
