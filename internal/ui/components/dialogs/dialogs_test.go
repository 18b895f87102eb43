package dialogs

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/meszmate/sessionroster/internal/auth"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/ui/theme"
)

func TestEdit(t *testing.T) {
	v, ok := Edit("al", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ice")})
	require.True(t, ok)
	require.Equal(t, "alice", v)

	v, ok = Edit("héé", tea.KeyMsg{Type: tea.KeyBackspace})
	require.True(t, ok)
	require.Equal(t, "hé", v)

	_, ok = Edit("x", tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, ok)
}

func TestLoginMasksPassword(t *testing.T) {
	r := New(theme.NewManager().Styles())
	out := r.Login(auth.State{JID: "alice@example.org", Password: "secret", Error: "bad credentials"}, 0, false)

	require.Contains(t, out, "alice@example.org")
	require.Contains(t, out, "******")
	require.NotContains(t, out, "secret")
	require.Contains(t, out, "bad credentials")
}

func TestSwitcherListsAccounts(t *testing.T) {
	r := New(theme.NewManager().Styles())
	out := r.Switcher([]domain.Account{
		domain.NewAccount("alice@example.org", domain.StatusConnected),
		domain.NewAccount("bob@example.org", domain.StatusConnecting),
	}, "alice@example.org", 1)

	require.Contains(t, out, "Alice")
	require.Contains(t, out, "Bob")
	require.Contains(t, out, "connecting")
}
