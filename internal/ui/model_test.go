package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/meszmate/sessionroster/internal/app"
	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/footer"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/subscription"
)

type idle struct{}

func (idle) Roster(context.Context, domain.AccountID) <-chan subscription.Result[domain.Roster] {
	return nil
}

func (idle) Presence(context.Context, domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.Presence] {
	return nil
}

func (idle) ActiveChats(context.Context, domain.AccountID) <-chan subscription.Result[map[domain.AccountID]domain.ActiveChat] {
	return nil
}

func (idle) UserInfos(context.Context, domain.AccountID, []domain.AccountID) (map[domain.AccountID]domain.UserInfo, error) {
	return nil, nil
}

func (idle) AvailableAccounts(context.Context) <-chan subscription.Result[[]domain.Account] {
	return nil
}

func (idle) ConnectAccounts([]domain.Credentials) {}

func (idle) Login(context.Context, domain.Credentials) error { return nil }

func (idle) Disconnect(domain.AccountID) error { return nil }

func (idle) SetAvailability(domain.AccountID, domain.Availability) error { return nil }

func (idle) Connectivity(context.Context) <-chan subscription.Result[domain.Connectivity] {
	return nil
}

func (idle) PromptForPushNotifications() {}

func (idle) ScheduleLocalNotification(context.Context, domain.Message, domain.UserInfo) error {
	return nil
}

type saved []domain.AccountID

func (s saved) LoadBookmarks() ([]domain.AccountID, error) { return s, nil }

func (s saved) LoadCredentials(id domain.AccountID) (domain.Credentials, error) {
	for _, known := range s {
		if known == id {
			return domain.Credentials{JID: id, Password: "secret"}, nil
		}
	}
	return domain.Credentials{}, client.ErrNoCredentials
}

func (saved) SaveCredentials(domain.Credentials) error { return nil }

func newModel(t *testing.T, accounts ...domain.AccountID) Model {
	t.Helper()
	a := app.New(app.Dependencies{
		Source:       idle{},
		Accounts:     idle{},
		Connectivity: idle{},
		Bookmarks:    saved(accounts),
		Credentials:  saved(accounts),
		Notifier:     idle{},
		Logger:       logging.Discard(),
	})
	t.Cleanup(a.Close)

	m := NewModel(a, Options{RosterWidth: 30})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, m, app.OnAppear{})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoginScreenWithoutSavedAccounts(t *testing.T) {
	m := newModel(t)
	require.NotNil(t, m.app.State().Auth)
	require.Contains(t, m.View(), "Add account")

	m = update(t, m, keys("alice@example.org"))
	require.Equal(t, "alice@example.org", m.app.State().Auth.JID)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, keys("pw"))
	require.Equal(t, "pw", m.app.State().Auth.Password)
	require.Equal(t, "alice@example.org", m.app.State().Auth.JID)
}

func TestDismissingLoginWithoutAccountsQuits(t *testing.T) {
	m := newModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTypingQDoesNotQuitInForms(t *testing.T) {
	m := newModel(t)

	next, _ := m.Update(keys("q"))
	m = next.(Model)
	require.False(t, m.quitting)
	require.Equal(t, "q", m.app.State().Auth.JID)
}

func TestMainScreenWithSavedAccount(t *testing.T) {
	alice := domain.AccountID("alice@example.org")
	m := newModel(t, alice)

	require.True(t, m.app.MainScreenEnabled())
	require.Equal(t, alice, m.app.State().CurrentUser)
	require.ElementsMatch(t, []subscription.Name{
		subscription.Roster,
		subscription.Presence,
		subscription.ActiveChats,
		subscription.UserInfos,
		subscription.AvailableAccounts,
		subscription.Connectivity,
	}, m.app.Subscriptions())
	require.Contains(t, m.View(), "No conversation")
}

func TestSettingsMenuKeys(t *testing.T) {
	m := newModel(t, "alice@example.org")

	m = update(t, m, keys("s"))
	require.Equal(t, footer.RouteAccountSettingsMenu, m.app.State().Main.Sidebar.Footer.Route.Tag())
	require.Contains(t, m.View(), "Sign out")

	m = update(t, m, keys("2"))
	require.Equal(t, domain.Away, m.app.State().Main.Sidebar.Footer.Availability)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, footer.RouteNone, m.app.State().Main.Sidebar.Footer.Route.Tag())
}

func TestSwitcherSelectsHighlightedAccount(t *testing.T) {
	alice := domain.AccountID("alice@example.org")
	bob := domain.AccountID("bob@example.org")
	m := newModel(t, alice, bob)
	require.Equal(t, alice, m.app.State().CurrentUser)

	m = update(t, m, keys("a"))
	require.Equal(t, footer.RouteAccountSwitcherMenu, m.app.State().Main.Sidebar.Footer.Route.Tag())

	m = update(t, m, keys("j"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, bob, m.app.State().CurrentUser)
	require.Equal(t, footer.RouteNone, m.app.State().Main.Sidebar.Footer.Route.Tag())
	require.Equal(t, bob, m.app.State().Main.Sidebar.Account)
}
