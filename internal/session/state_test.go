package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meszmate/sessionroster/internal/accounts"
	"github.com/meszmate/sessionroster/internal/domain"
)

type parent struct {
	Counter int
	Name    string
	Detail  *detail
	Mode    mode
}

type detail struct {
	Notes string
}

// mode is a small tagged union used to exercise the case projections
type mode struct {
	tag     int
	editing editing
}

type editing struct {
	Draft string
}

const (
	modeIdle = iota
	modeEditing
)

var editingCase = Prism[mode, editing]{
	Extract: func(m mode) (editing, bool) {
		if m.tag != modeEditing {
			return editing{}, false
		}
		return m.editing, true
	},
	Embed: func(e editing) mode { return mode{tag: modeEditing, editing: e} },
}

var counterLens = Lens[parent, int]{
	Get: func(p parent) int { return p.Counter },
	Set: func(p *parent, v int) { p.Counter = v },
}

var modeLens = Lens[parent, mode]{
	Get: func(p parent) mode { return p.Mode },
	Set: func(p *parent, m mode) { p.Mode = m },
}

func newStore() *accounts.Store {
	return accounts.NewStore(
		domain.Account{JID: "a@x.org", Status: domain.StatusConnected, Profile: &domain.Profile{FullName: "A"}},
		domain.Account{JID: "b@x.org", Status: domain.StatusConnecting},
	)
}

func requireSameState[T any](t *testing.T, want, got State[T]) {
	t.Helper()
	require.Equal(t, want.CurrentUser(), got.CurrentUser())
	require.Equal(t, want.Child(), got.Child())
	require.True(t, want.Accounts().Equal(got.Accounts()), "accounts differ")
}

func TestNewRequiresCurrentUser(t *testing.T) {
	require.Panics(t, func() { New("", newStore(), parent{}) })
	require.Panics(t, func() { New[parent]("a@x.org", nil, parent{}) })
}

func TestSelectedAccountReadsCurrentUser(t *testing.T) {
	s := New("b@x.org", newStore(), parent{})
	require.Equal(t, domain.AccountID("b@x.org"), s.SelectedAccount().JID)
	require.Equal(t, domain.StatusConnecting, s.SelectedAccount().Status)
}

func TestSelectedAccountMissingIsFatal(t *testing.T) {
	s := New("ghost@x.org", newStore(), parent{})
	require.Panics(t, func() { s.SelectedAccount() })
}

func TestSetSelectedAccountWritesStatusOnly(t *testing.T) {
	store := newStore()
	s := New("a@x.org", store, parent{})

	acc := s.SelectedAccount()
	acc.Status = domain.StatusDisconnected
	acc.Profile = &domain.Profile{FullName: "Mallory"}
	acc.Avatar = "file:///evil.png"
	s.SetSelectedAccount(acc)

	got := s.SelectedAccount()
	require.Equal(t, domain.StatusDisconnected, got.Status)
	require.Equal(t, "A", got.Profile.FullName)
	require.Empty(t, got.Avatar)

	// the store the state was created from is untouched
	orig, _ := store.Get("a@x.org")
	require.Equal(t, domain.StatusConnected, orig.Status)
}

func TestProjectThenMergeIsIdentity(t *testing.T) {
	s := New("a@x.org", newStore(), parent{Counter: 3, Name: "n", Mode: mode{tag: modeEditing, editing: editing{Draft: "d"}}})
	before := s

	child := Project(s, counterLens.Get)
	Merge(&s, counterLens.Set, child)
	requireSameState(t, before, s)

	m := Project(s, modeLens.Get)
	e, ok := ProjectCase(m, editingCase)
	require.True(t, ok)
	MergeCase(&m, editingCase, e, ok)
	Merge(&s, modeLens.Set, m)
	requireSameState(t, before, s)
}

func TestMergeWritesChildBack(t *testing.T) {
	s := New("a@x.org", newStore(), parent{Counter: 1, Name: "keep"})
	child := Project(s, counterLens.Get)
	child.SetChild(child.Child() + 41)
	Merge(&s, counterLens.Set, child)

	require.Equal(t, 42, s.Child().Counter)
	require.Equal(t, "keep", s.Child().Name)
}

func TestMergePropagatesCurrentUserAndStatus(t *testing.T) {
	s := New("a@x.org", newStore(), parent{})
	child := Project(s, counterLens.Get)

	child.SetCurrentUser("b@x.org")
	acc := child.SelectedAccount()
	acc.Status = domain.StatusConnected
	child.SetSelectedAccount(acc)
	Merge(&s, counterLens.Set, child)

	require.Equal(t, domain.AccountID("b@x.org"), s.CurrentUser())
	require.Equal(t, domain.StatusConnected, s.SelectedAccount().Status)
	// the previously selected account keeps its status
	a, _ := s.Accounts().Get("a@x.org")
	require.Equal(t, domain.StatusConnected, a.Status)
}

func TestSequenceOfMergesLosesNoUpdate(t *testing.T) {
	s := New("a@x.org", newStore(), parent{})
	statuses := []domain.ConnectionStatus{
		domain.StatusDisconnected,
		domain.StatusConnecting,
		domain.StatusConnected,
		domain.StatusOffline,
	}
	for _, status := range statuses {
		Scope(&s, counterLens, func(c *State[int]) struct{} {
			acc := c.SelectedAccount()
			acc.Status = status
			c.SetSelectedAccount(acc)
			c.SetChild(c.Child() + 1)
			return struct{}{}
		})
		require.Equal(t, status, s.SelectedAccount().Status)
	}
	require.Equal(t, len(statuses), s.Child().Counter)
}

func TestProjectOptionalAbsent(t *testing.T) {
	s := New("a@x.org", newStore(), parent{})
	get := func(p parent) (detail, bool) {
		if p.Detail == nil {
			return detail{}, false
		}
		return *p.Detail, true
	}
	set := func(p *parent, d detail) { p.Detail = &d }

	child, ok := ProjectOptional(s, get)
	require.False(t, ok)
	MergeOptional(&s, set, child, ok)
	require.Nil(t, s.Child().Detail)

	s.Modify(func(p *parent) { p.Detail = &detail{Notes: "x"} })
	child, ok = ProjectOptional(s, get)
	require.True(t, ok)
	child.Modify(func(d *detail) { d.Notes = "y" })
	MergeOptional(&s, set, child, ok)
	require.Equal(t, "y", s.Child().Detail.Notes)
}

func TestProjectCaseOtherVariant(t *testing.T) {
	s := New("a@x.org", newStore(), mode{tag: modeIdle})
	_, ok := ProjectCase(s, editingCase)
	require.False(t, ok)

	called := false
	_, ran := ScopeCase(&s, editingCase, func(*State[editing]) int {
		called = true
		return 0
	})
	require.False(t, ran)
	require.False(t, called)
	require.Equal(t, modeIdle, s.Child().tag)
}

func TestScopeCaseWritesVariantBack(t *testing.T) {
	s := New("a@x.org", newStore(), mode{tag: modeEditing})
	n, ok := ScopeCase(&s, editingCase, func(e *State[editing]) int {
		e.Modify(func(ed *editing) { ed.Draft = "hello" })
		return len(e.Child().Draft)
	})
	require.True(t, ok)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", s.Child().editing.Draft)
}
