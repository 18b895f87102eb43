package footer

import (
	"github.com/meszmate/sessionroster/internal/auth"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/session"
)

// RouteTag identifies the sheet shown above the footer
type RouteTag int

const (
	RouteNone RouteTag = iota
	RouteAccountSettingsMenu
	RouteAccountSwitcherMenu
	RouteAuth
	RouteEditProfile
)

// String returns the string representation of the tag
func (t RouteTag) String() string {
	switch t {
	case RouteAccountSettingsMenu:
		return "account-settings-menu"
	case RouteAccountSwitcherMenu:
		return "account-switcher-menu"
	case RouteAuth:
		return "auth"
	case RouteEditProfile:
		return "edit-profile"
	default:
		return "none"
	}
}

// AccountSettingsMenuState is the menu opened from the current account
type AccountSettingsMenuState struct {
	JID          domain.AccountID
	FullName     string
	Avatar       string
	Availability domain.Availability
}

// AccountSwitcherMenuState is the menu listing every account
type AccountSwitcherMenuState struct {
	Highlighted int
}

// EditProfileState is the profile form of the current account
type EditProfileState struct {
	JID      domain.AccountID
	FullName string
	Nickname string
}

// Route holds at most one open sheet. The zero value is RouteNone.
type Route struct {
	tag         RouteTag
	settings    AccountSettingsMenuState
	switcher    AccountSwitcherMenuState
	auth        auth.State
	editProfile EditProfileState
}

// Tag returns the variant held by the route
func (r Route) Tag() RouteTag {
	return r.tag
}

// AccountSettingsMenu returns the settings menu variant
func (r Route) AccountSettingsMenu() (AccountSettingsMenuState, bool) {
	return r.settings, r.tag == RouteAccountSettingsMenu
}

// AccountSwitcherMenu returns the switcher variant
func (r Route) AccountSwitcherMenu() (AccountSwitcherMenuState, bool) {
	return r.switcher, r.tag == RouteAccountSwitcherMenu
}

// Auth returns the login form variant
func (r Route) Auth() (auth.State, bool) {
	return r.auth, r.tag == RouteAuth
}

// EditProfile returns the edit profile variant
func (r Route) EditProfile() (EditProfileState, bool) {
	return r.editProfile, r.tag == RouteEditProfile
}

// AccountSettingsMenuRoute opens the settings menu
func AccountSettingsMenuRoute(s AccountSettingsMenuState) Route {
	return Route{tag: RouteAccountSettingsMenu, settings: s}
}

// AccountSwitcherMenuRoute opens the account switcher
func AccountSwitcherMenuRoute(s AccountSwitcherMenuState) Route {
	return Route{tag: RouteAccountSwitcherMenu, switcher: s}
}

// AuthRoute opens the login form
func AuthRoute(s auth.State) Route {
	return Route{tag: RouteAuth, auth: s}
}

// EditProfileRoute opens the profile form
func EditProfileRoute(s EditProfileState) Route {
	return Route{tag: RouteEditProfile, editProfile: s}
}

var (
	accountSettingsMenuCase = session.Prism[Route, AccountSettingsMenuState]{
		Extract: Route.AccountSettingsMenu,
		Embed:   AccountSettingsMenuRoute,
	}
	accountSwitcherMenuCase = session.Prism[Route, AccountSwitcherMenuState]{
		Extract: Route.AccountSwitcherMenu,
		Embed:   AccountSwitcherMenuRoute,
	}
	authCase = session.Prism[Route, auth.State]{
		Extract: Route.Auth,
		Embed:   AuthRoute,
	}
	editProfileCase = session.Prism[Route, EditProfileState]{
		Extract: Route.EditProfile,
		Embed:   EditProfileRoute,
	}

	routeLens = session.Lens[State, Route]{
		Get: func(s State) Route { return s.Route },
		Set: func(s *State, r Route) { s.Route = r },
	}
)
