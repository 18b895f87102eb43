package action

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type outer struct{ msg tea.Msg }

func (o outer) Unwrap() tea.Msg { return o.msg }

type inner struct{ msg tea.Msg }

func (i inner) Unwrap() tea.Msg { return i.msg }

type loggedIn struct{ id string }

func TestFindWalksWrappers(t *testing.T) {
	msg := outer{inner{loggedIn{"a@x.org"}}}

	got, ok := Find[loggedIn](msg)
	require.True(t, ok)
	require.Equal(t, "a@x.org", got.id)

	i, ok := Find[inner](msg)
	require.True(t, ok)
	require.Equal(t, loggedIn{"a@x.org"}, i.msg)
}

func TestFindMissing(t *testing.T) {
	_, ok := Find[loggedIn](outer{inner{"other"}})
	require.False(t, ok)

	_, ok = Find[loggedIn](nil)
	require.False(t, ok)
}
