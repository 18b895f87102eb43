package footer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meszmate/sessionroster/internal/accounts"
	"github.com/meszmate/sessionroster/internal/auth"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/session"
	"github.com/meszmate/sessionroster/internal/subscription"
)

const (
	alice domain.AccountID = "alice@example.org"
	bob   domain.AccountID = "bob@example.org"
)

type fakeAccounts struct {
	disconnected []domain.AccountID
	availability map[domain.AccountID]domain.Availability
}

func (f *fakeAccounts) AvailableAccounts(context.Context) <-chan subscription.Result[[]domain.Account] {
	return nil
}

func (f *fakeAccounts) ConnectAccounts([]domain.Credentials) {}

func (f *fakeAccounts) Login(context.Context, domain.Credentials) error { return nil }

func (f *fakeAccounts) Disconnect(id domain.AccountID) error {
	f.disconnected = append(f.disconnected, id)
	return nil
}

func (f *fakeAccounts) SetAvailability(id domain.AccountID, a domain.Availability) error {
	if f.availability == nil {
		f.availability = make(map[domain.AccountID]domain.Availability)
	}
	f.availability[id] = a
	return nil
}

func newFixture() (*Reducer, *fakeAccounts, session.State[State]) {
	fake := &fakeAccounts{}
	logger := logging.Discard()
	r := NewReducer(fake, auth.NewReducer(fake, nil, logger), logger)

	a := domain.NewAccount(alice, domain.StatusConnected)
	a.Profile = &domain.Profile{FullName: "Alice Liddell", Nickname: "al"}
	store := accounts.NewStore(a, domain.NewAccount(bob, domain.StatusConnecting))
	return r, fake, session.New(alice, store, State{})
}

func runAll(t *testing.T, effects []subscription.Effect) []any {
	t.Helper()
	var out []any
	for _, e := range effects {
		require.Equal(t, subscription.EffectRun, e.Kind)
		if msg := e.Cmd()(); msg != nil {
			out = append(out, msg)
		}
	}
	return out
}

func TestOpenSettingsMenu(t *testing.T) {
	r, _, s := newFixture()

	r.Reduce(&s, SetRoute{Tag: RouteAccountSettingsMenu})

	menu, ok := s.Child().Route.AccountSettingsMenu()
	require.True(t, ok)
	require.Equal(t, alice, menu.JID)
	require.Equal(t, "Alice Liddell", menu.FullName)
	require.Equal(t, RouteAccountSettingsMenu, s.Child().Route.Tag())
}

func TestDismissOnlyClosesMatchingRoute(t *testing.T) {
	r, _, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteAccountSwitcherMenu})

	r.Reduce(&s, Dismiss{Tag: RouteAccountSettingsMenu})
	require.Equal(t, RouteAccountSwitcherMenu, s.Child().Route.Tag())

	r.Reduce(&s, Dismiss{Tag: RouteAccountSwitcherMenu})
	require.Equal(t, RouteNone, s.Child().Route.Tag())
}

func TestSignOutDisconnectsSelectedAccount(t *testing.T) {
	r, fake, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteAccountSettingsMenu})

	effects := r.Reduce(&s, AccountSettingsMenuMsg{Msg: SignOutTapped{}})

	require.Equal(t, domain.StatusDisconnected, s.SelectedAccount().Status)
	require.Equal(t, RouteNone, s.Child().Route.Tag())
	require.Empty(t, runAll(t, effects))
	require.Equal(t, []domain.AccountID{alice}, fake.disconnected)

	other, _ := s.Accounts().Get(bob)
	require.Equal(t, domain.StatusConnecting, other.Status)
}

func TestChangeAvailability(t *testing.T) {
	r, fake, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteAccountSettingsMenu})

	effects := r.Reduce(&s, AccountSettingsMenuMsg{Msg: ChangeAvailability{Availability: domain.Away}})
	runAll(t, effects)

	require.Equal(t, domain.Away, s.Child().Availability)
	menu, _ := s.Child().Route.AccountSettingsMenu()
	require.Equal(t, domain.Away, menu.Availability)
	require.Equal(t, domain.Away, fake.availability[alice])
}

func TestSettingsMessagesIgnoredWhenMenuClosed(t *testing.T) {
	r, fake, s := newFixture()

	effects := r.Reduce(&s, AccountSettingsMenuMsg{Msg: SignOutTapped{}})

	require.Empty(t, effects)
	require.Equal(t, domain.StatusConnected, s.SelectedAccount().Status)
	require.Empty(t, fake.disconnected)
}

func TestSwitchAccount(t *testing.T) {
	r, _, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteAccountSwitcherMenu})

	r.Reduce(&s, AccountSwitcherMenuMsg{Msg: AccountSelected{JID: "carol@example.org"}})
	require.Equal(t, alice, s.CurrentUser())
	require.Equal(t, RouteAccountSwitcherMenu, s.Child().Route.Tag())

	r.Reduce(&s, AccountSwitcherMenuMsg{Msg: AccountSelected{JID: bob}})
	require.Equal(t, bob, s.CurrentUser())
	require.Equal(t, RouteNone, s.Child().Route.Tag())
}

func TestMoveHighlightWraps(t *testing.T) {
	r, _, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteAccountSwitcherMenu})

	r.Reduce(&s, AccountSwitcherMenuMsg{Msg: MoveHighlight{Delta: -1}})
	menu, _ := s.Child().Route.AccountSwitcherMenu()
	require.Equal(t, 1, menu.Highlighted)

	r.Reduce(&s, AccountSwitcherMenuMsg{Msg: MoveHighlight{Delta: 1}})
	menu, _ = s.Child().Route.AccountSwitcherMenu()
	require.Zero(t, menu.Highlighted)
}

func TestConnectAccountOpensLoginAndSelectsOnSuccess(t *testing.T) {
	r, _, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteAccountSwitcherMenu})
	r.Reduce(&s, AccountSwitcherMenuMsg{Msg: ConnectAccountTapped{}})

	_, ok := s.Child().Route.Auth()
	require.True(t, ok)

	r.Reduce(&s, AuthMsg{Msg: auth.SetJID{Value: "bob@example.org"}})
	r.Reduce(&s, AuthMsg{Msg: auth.SetPassword{Value: "secret"}})
	effects := r.Reduce(&s, AuthMsg{Msg: auth.SubmitTapped{}})

	form, _ := s.Child().Route.Auth()
	require.True(t, form.IsLoggingIn)

	msgs := runAll(t, effects)
	require.Equal(t, []any{AuthMsg{Msg: auth.DidLogIn{JID: bob}}}, msgs)

	r.Reduce(&s, msgs[0])
	require.Equal(t, RouteNone, s.Child().Route.Tag())
	require.Equal(t, bob, s.CurrentUser())
}

func TestEditProfileSave(t *testing.T) {
	r, _, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteAccountSettingsMenu})
	r.Reduce(&s, AccountSettingsMenuMsg{Msg: EditProfileTapped{}})

	form, ok := s.Child().Route.EditProfile()
	require.True(t, ok)
	require.Equal(t, "al", form.Nickname)

	r.Reduce(&s, EditProfileMsg{Msg: SetFullName{Value: "Alice L."}})
	effects := r.Reduce(&s, EditProfileMsg{Msg: SaveTapped{}})
	require.Equal(t, RouteNone, s.Child().Route.Tag())

	msgs := runAll(t, effects)
	require.Equal(t, []any{EditProfileMsg{Msg: ProfileSaved{
		JID:     alice,
		Profile: domain.Profile{FullName: "Alice L.", Nickname: "al"},
	}}}, msgs)
}

func TestEditProfileCancel(t *testing.T) {
	r, _, s := newFixture()
	r.Reduce(&s, SetRoute{Tag: RouteEditProfile})
	require.Empty(t, r.Reduce(&s, EditProfileMsg{Msg: CancelTapped{}}))
	require.Equal(t, RouteNone, s.Child().Route.Tag())
}
