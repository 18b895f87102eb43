package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"mellium.im/xmpp/jid"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/xmpp"
	"github.com/meszmate/sessionroster/internal/xmpp/roster"
)

type hubConn struct{}

func (hubConn) SetAvailability(context.Context, domain.Availability) error { return nil }
func (hubConn) Close() error                                                { return nil }

// newHubHarness wires the application to a real hub whose dialer hands the
// server events of every connection to dialed
func newHubHarness(t *testing.T, bookmarks fakeBookmarks, creds fakeCredentials) (*harness, chan xmpp.Events) {
	dialed := make(chan xmpp.Events, 4)
	dial := func(_ context.Context, _ domain.Credentials, events xmpp.Events) (xmpp.Conn, error) {
		dialed <- events
		return hubConn{}, nil
	}
	hub := xmpp.NewHub(dial, 10, logging.Discard())
	t.Cleanup(hub.Close)

	h := &harness{
		t:        t,
		out:      make(chanSender, 64),
		notifier: &fakeNotifier{},
	}
	h.app = New(Dependencies{
		Source:       hub,
		Accounts:     hub,
		Connectivity: hub,
		Bookmarks:    bookmarks,
		Credentials:  creds,
		Notifier:     h.notifier,
		Logger:       logging.Discard(),
	})
	h.app.SetSender(h.out)
	t.Cleanup(h.app.Close)
	return h, dialed
}

// pumpUntil reduces deliveries until cond holds
func (h *harness) pumpUntil(cond func(State) bool) {
	h.t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond(h.app.State()) {
		select {
		case msg := <-h.out:
			h.dispatch(msg)
		case <-deadline:
			h.t.Fatalf("timed out waiting for state")
		}
	}
}

func TestBootstrapReceivesRosterFromHub(t *testing.T) {
	h, dialed := newHubHarness(t, fakeBookmarks{ids: []domain.AccountID{alice}}, fakeCredentials{
		alice: {JID: alice, Password: "a"},
	})
	h.run(h.app.Init())
	require.True(t, h.app.State().Main.Sidebar.Subscribed)

	var events xmpp.Events
	select {
	case events = <-dialed:
	case <-time.After(2 * time.Second):
		t.Fatalf("account was never dialed")
	}

	events.OnRoster([]roster.Item{
		{JID: jid.MustParse("bob@example.org"), Subscription: roster.SubscriptionBoth, Groups: []string{"Team"}},
	}, true)

	h.pumpUntil(func(st State) bool {
		return len(st.Main.Sidebar.Roster.Roster.Groups) > 0
	})
	groups := h.app.State().Main.Sidebar.Roster.Roster.Groups
	require.Len(t, groups, 1)
	require.Equal(t, "Team", groups[0].Name)
	require.Equal(t, bob, groups[0].Items[0].JID)

	h.pumpUntil(func(st State) bool {
		acc, ok := st.Accounts.Get(alice)
		return ok && acc.Status == domain.StatusConnected
	})
	require.Equal(t, alice, h.app.State().CurrentUser)
}
