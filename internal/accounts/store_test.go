package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meszmate/sessionroster/internal/domain"
)

func TestUpsertAppendsAndReplacesInPlace(t *testing.T) {
	s := NewStore()
	s.Upsert(domain.NewAccount("a@x.org", domain.StatusConnecting))
	s.Upsert(domain.NewAccount("b@x.org", domain.StatusConnecting))
	s.Upsert(domain.NewAccount("c@x.org", domain.StatusConnecting))

	s.Upsert(domain.Account{JID: "a@x.org", Status: domain.StatusConnected, Avatar: "file:///a.png"})

	require.Equal(t, []domain.AccountID{"a@x.org", "b@x.org", "c@x.org"}, s.IDs())
	a, ok := s.Get("a@x.org")
	require.True(t, ok)
	require.Equal(t, domain.StatusConnected, a.Status)
	require.Equal(t, "file:///a.png", a.Avatar)
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := NewStore()
	rec := domain.NewAccount("a@x.org", domain.StatusConnected)
	s.Upsert(rec)
	s.Upsert(rec)
	require.Equal(t, 1, s.Len())
}

func TestRemove(t *testing.T) {
	s := NewStore(
		domain.NewAccount("a@x.org", domain.StatusConnected),
		domain.NewAccount("b@x.org", domain.StatusConnected),
		domain.NewAccount("c@x.org", domain.StatusConnected),
	)
	s.Remove("b@x.org")
	s.Remove("ghost@x.org")

	require.Equal(t, []domain.AccountID{"a@x.org", "c@x.org"}, s.IDs())
	require.False(t, s.Contains("b@x.org"))

	s.Upsert(domain.NewAccount("b@x.org", domain.StatusOffline))
	require.Equal(t, []domain.AccountID{"a@x.org", "c@x.org", "b@x.org"}, s.IDs())
}

func TestSetAvailabilityOnlyTouchesStatus(t *testing.T) {
	s := NewStore(domain.Account{
		JID:     "a@x.org",
		Status:  domain.StatusConnecting,
		Profile: &domain.Profile{FullName: "Alice"},
		Avatar:  "file:///a.png",
	})
	s.SetAvailability("a@x.org", domain.StatusConnected)

	a, _ := s.Get("a@x.org")
	require.Equal(t, domain.StatusConnected, a.Status)
	require.Equal(t, "Alice", a.Profile.FullName)
	require.Equal(t, "file:///a.png", a.Avatar)
}

func TestSetAvailabilityUnknownIsNoop(t *testing.T) {
	s := NewStore(domain.NewAccount("a@x.org", domain.StatusConnected))
	before := s.Clone()

	s.SetAvailability("ghost@x.org", domain.StatusConnected)

	require.False(t, s.Contains("ghost@x.org"))
	require.True(t, s.Equal(before))
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore(domain.Account{JID: "a@x.org", Profile: &domain.Profile{FullName: "Alice"}})
	a, _ := s.Get("a@x.org")
	a.Profile.FullName = "Mallory"

	again, _ := s.Get("a@x.org")
	require.Equal(t, "Alice", again.Profile.FullName)
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewStore(domain.NewAccount("a@x.org", domain.StatusConnected))
	c := s.Clone()
	c.SetAvailability("a@x.org", domain.StatusDisconnected)
	c.Upsert(domain.NewAccount("b@x.org", domain.StatusConnected))

	a, _ := s.Get("a@x.org")
	require.Equal(t, domain.StatusConnected, a.Status)
	require.Equal(t, 1, s.Len())
	require.False(t, s.Equal(c))
}
