package roster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/sidebar"
	"github.com/meszmate/sessionroster/internal/ui/theme"
)

func testView() sidebar.View {
	return sidebar.View{Groups: []sidebar.Group{
		{Name: "Team", Items: []sidebar.Item{
			{JID: "b@x.org", Unread: 3},
			{JID: "c@x.org", Status: domain.Online},
		}},
		{Name: "Family", Items: []sidebar.Item{{JID: "d@x.org"}}},
	}}
}

func TestCursorMovesAcrossGroups(t *testing.T) {
	m := New(theme.NewManager().Styles()).SetSize(40, 10).SetView(testView())
	require.Equal(t, domain.AccountID("b@x.org"), m.SelectedJID())

	m = m.MoveDown().MoveDown()
	require.Equal(t, domain.AccountID("d@x.org"), m.SelectedJID())

	m = m.MoveDown()
	require.Equal(t, domain.AccountID("d@x.org"), m.SelectedJID())

	m = m.MoveUp().MoveUp().MoveUp()
	require.Equal(t, domain.AccountID("b@x.org"), m.SelectedJID())
}

func TestSetViewClampsCursor(t *testing.T) {
	m := New(theme.NewManager().Styles()).SetView(testView()).MoveDown().MoveDown()

	m = m.SetView(sidebar.View{Groups: []sidebar.Group{{Name: "Team", Items: []sidebar.Item{{JID: "b@x.org"}}}}})
	require.Equal(t, domain.AccountID("b@x.org"), m.SelectedJID())

	m = m.SetView(sidebar.View{})
	require.Empty(t, m.SelectedJID())
}

func TestViewRendersGroupsAndUnread(t *testing.T) {
	m := New(theme.NewManager().Styles()).SetSize(40, 10).SetView(testView())
	out := m.View()

	require.Contains(t, out, "Team")
	require.Contains(t, out, "Family")
	require.Contains(t, out, "b@x.org")
	require.Contains(t, out, "(3)")
}

func TestHidingOfflineKeepsUnread(t *testing.T) {
	m := New(theme.NewManager().Styles()).SetShowOffline(false).SetView(testView())

	require.Equal(t, domain.AccountID("b@x.org"), m.SelectedJID())
	m = m.MoveDown()
	require.Equal(t, domain.AccountID("c@x.org"), m.SelectedJID())
	m = m.MoveDown()
	require.Equal(t, domain.AccountID("c@x.org"), m.SelectedJID())

	out := m.SetSize(40, 10).View()
	require.NotContains(t, out, "Family")
}
