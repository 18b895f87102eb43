// Package ui renders the application state and turns key presses into
// application messages.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/meszmate/sessionroster/internal/app"
	"github.com/meszmate/sessionroster/internal/auth"
	"github.com/meszmate/sessionroster/internal/conversation"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/footer"
	"github.com/meszmate/sessionroster/internal/sidebar"
	"github.com/meszmate/sessionroster/internal/ui/components/chat"
	"github.com/meszmate/sessionroster/internal/ui/components/dialogs"
	"github.com/meszmate/sessionroster/internal/ui/components/roster"
	"github.com/meszmate/sessionroster/internal/ui/components/statusbar"
	"github.com/meszmate/sessionroster/internal/ui/keybindings"
	"github.com/meszmate/sessionroster/internal/ui/theme"
)

// Options configures the root model
type Options struct {
	Theme       string
	ThemeDirs   []string
	RosterWidth int
	ShowOffline bool
}

// Model is the root Bubble Tea model
type Model struct {
	app      *app.App
	width    int
	height   int
	ready    bool
	quitting bool

	// focused field of the open form
	focus       int
	rosterWidth int

	roster    roster.Model
	chat      chat.Model
	statusbar statusbar.Model
	dialogs   dialogs.Renderer

	keys   keybindings.KeyMap
	themes *theme.Manager
}

// NewModel creates a new root model
func NewModel(application *app.App, opts Options) Model {
	themeManager := theme.NewManager(opts.ThemeDirs...)
	if opts.Theme != "" {
		// Unknown themes keep the default one
		_ = themeManager.SetTheme(opts.Theme)
	}
	width := opts.RosterWidth
	if width <= 0 {
		width = 30
	}

	styles := themeManager.Styles()
	return Model{
		app:         application,
		rosterWidth: width,
		roster:      roster.New(styles).SetShowOffline(opts.ShowOffline),
		chat:        chat.New(styles),
		statusbar:   statusbar.New(styles),
		dialogs:     dialogs.New(styles),
		keys:        keybindings.DefaultKeyMap(),
		themes:      themeManager,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.app.Init(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateComponentSizes()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (msg.Type == tea.KeyCtrlC || m.mode() == keybindings.ModeNormal) {
			m.quitting = true
			return m, tea.Quit
		}
		if out := m.handleKey(msg); out != nil {
			cmd = m.app.Update(out)
		}
	default:
		cmd = m.app.Update(msg)
	}

	m.syncComponents()
	return m, cmd
}

func footerMsg(msg tea.Msg) tea.Msg {
	return app.SidebarMsg{Msg: sidebar.FooterMsg{Msg: msg}}
}

// mode derives the input mode from what is on screen
func (m Model) mode() keybindings.Mode {
	st := m.app.State()
	if st.Auth != nil {
		return keybindings.ModeInsert
	}
	switch st.Main.Sidebar.Footer.Route.Tag() {
	case footer.RouteAuth, footer.RouteEditProfile:
		return keybindings.ModeInsert
	case footer.RouteAccountSettingsMenu, footer.RouteAccountSwitcherMenu:
		return keybindings.ModeMenu
	}
	return keybindings.ModeNormal
}

// handleKey turns a key press into an application message
func (m *Model) handleKey(msg tea.KeyMsg) tea.Msg {
	st := m.app.State()

	if st.Auth != nil {
		if key.Matches(msg, m.keys.Back) {
			return app.DismissAuthentication{}
		}
		return m.handleLoginKey(*st.Auth, msg, func(out tea.Msg) tea.Msg { return app.AuthMsg{Msg: out} })
	}
	if !m.app.MainScreenEnabled() {
		return nil
	}

	route := st.Main.Sidebar.Footer.Route
	switch route.Tag() {
	case footer.RouteAccountSettingsMenu:
		return m.handleSettingsKey(msg)
	case footer.RouteAccountSwitcherMenu:
		menu, _ := route.AccountSwitcherMenu()
		return m.handleSwitcherKey(menu, st, msg)
	case footer.RouteAuth:
		if key.Matches(msg, m.keys.Back) {
			return footerMsg(footer.Dismiss{Tag: footer.RouteAuth})
		}
		form, _ := route.Auth()
		return m.handleLoginKey(form, msg, func(out tea.Msg) tea.Msg { return footerMsg(footer.AuthMsg{Msg: out}) })
	case footer.RouteEditProfile:
		form, _ := route.EditProfile()
		return m.handleEditProfileKey(form, msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.roster = m.roster.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.roster = m.roster.MoveDown()
	case key.Matches(msg, m.keys.Open):
		if jid := m.roster.SelectedJID(); jid != "" {
			return app.SidebarMsg{Msg: sidebar.Select{JID: jid}}
		}
	case key.Matches(msg, m.keys.Settings):
		return footerMsg(footer.SetRoute{Tag: footer.RouteAccountSettingsMenu})
	case key.Matches(msg, m.keys.Switcher):
		return footerMsg(footer.SetRoute{Tag: footer.RouteAccountSwitcherMenu})
	case key.Matches(msg, m.keys.ToggleInfo):
		return app.ConversationMsg{Msg: conversation.ToggleInfo{}}
	case key.Matches(msg, m.keys.VideoCall):
		return app.ConversationMsg{Msg: conversation.StartVideoCallTapped{}}
	}
	return nil
}

func (m *Model) handleLoginKey(form auth.State, msg tea.KeyMsg, wrap func(tea.Msg) tea.Msg) tea.Msg {
	switch {
	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		m.focus = (m.focus + 1) % 2
		return nil
	case key.Matches(msg, m.keys.Submit):
		return wrap(auth.SubmitTapped{})
	}

	if m.focus == 0 {
		if v, ok := dialogs.Edit(form.JID, msg); ok {
			return wrap(auth.SetJID{Value: v})
		}
		return nil
	}
	if v, ok := dialogs.Edit(form.Password, msg); ok {
		return wrap(auth.SetPassword{Value: v})
	}
	return nil
}

func (m *Model) handleEditProfileKey(form footer.EditProfileState, msg tea.KeyMsg) tea.Msg {
	wrap := func(out tea.Msg) tea.Msg { return footerMsg(footer.EditProfileMsg{Msg: out}) }
	switch {
	case key.Matches(msg, m.keys.Back):
		return wrap(footer.CancelTapped{})
	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		m.focus = (m.focus + 1) % 2
		return nil
	case key.Matches(msg, m.keys.Submit):
		return wrap(footer.SaveTapped{})
	}

	if m.focus == 0 {
		if v, ok := dialogs.Edit(form.FullName, msg); ok {
			return wrap(footer.SetFullName{Value: v})
		}
		return nil
	}
	if v, ok := dialogs.Edit(form.Nickname, msg); ok {
		return wrap(footer.SetNickname{Value: v})
	}
	return nil
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) tea.Msg {
	wrap := func(out tea.Msg) tea.Msg { return footerMsg(footer.AccountSettingsMenuMsg{Msg: out}) }
	switch {
	case key.Matches(msg, m.keys.Back):
		return footerMsg(footer.Dismiss{Tag: footer.RouteAccountSettingsMenu})
	case key.Matches(msg, m.keys.Available):
		return wrap(footer.ChangeAvailability{Availability: domain.Available})
	case key.Matches(msg, m.keys.Away):
		return wrap(footer.ChangeAvailability{Availability: domain.Away})
	case key.Matches(msg, m.keys.DoNotDisturb):
		return wrap(footer.ChangeAvailability{Availability: domain.DoNotDisturb})
	case key.Matches(msg, m.keys.EditProfile):
		m.focus = 0
		return wrap(footer.EditProfileTapped{})
	case key.Matches(msg, m.keys.SignOut):
		return wrap(footer.SignOutTapped{})
	}
	return nil
}

func (m *Model) handleSwitcherKey(menu footer.AccountSwitcherMenuState, st app.State, msg tea.KeyMsg) tea.Msg {
	wrap := func(out tea.Msg) tea.Msg { return footerMsg(footer.AccountSwitcherMenuMsg{Msg: out}) }
	switch {
	case key.Matches(msg, m.keys.Back):
		return footerMsg(footer.Dismiss{Tag: footer.RouteAccountSwitcherMenu})
	case key.Matches(msg, m.keys.Up):
		return wrap(footer.MoveHighlight{Delta: -1})
	case key.Matches(msg, m.keys.Down):
		return wrap(footer.MoveHighlight{Delta: 1})
	case key.Matches(msg, m.keys.Open):
		ids := st.Accounts.IDs()
		if menu.Highlighted < len(ids) {
			return wrap(footer.AccountSelected{JID: ids[menu.Highlighted]})
		}
	case key.Matches(msg, m.keys.Connect):
		m.focus = 0
		return wrap(footer.ConnectAccountTapped{})
	}
	return nil
}

// syncComponents copies the application state into the components
func (m *Model) syncComponents() {
	st := m.app.State()
	m.roster = m.roster.SetView(st.Main.Sidebar.View)

	var current *domain.Account
	if acc, ok := st.Accounts.Get(st.CurrentUser); ok {
		current = &acc
	}
	m.statusbar = m.statusbar.
		SetMode(m.mode()).
		SetAccount(current).
		SetAvailability(st.Main.Sidebar.Footer.Availability).
		SetConnectivity(st.Connectivity).
		SetHelp(m.keys.ShortHelp(m.mode()))
}

func (m *Model) updateComponentSizes() {
	mainHeight := m.height - 2
	m.roster = m.roster.SetSize(m.rosterWidth-2, mainHeight-2)
	m.chat = m.chat.SetSize(m.width-m.rosterWidth-2, mainHeight-2)
	m.statusbar = m.statusbar.SetWidth(m.width)
}

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.quitting {
		return "Goodbye!\n"
	}

	st := m.app.State()
	if st.Auth != nil {
		sheet := m.dialogs.Login(*st.Auth, m.focus, st.Accounts.Len() > 0)
		return m.place(sheet)
	}
	if !m.app.MainScreenEnabled() {
		return m.place("Connecting...")
	}

	styles := m.themes.Styles()
	mainHeight := m.height - 2
	if banner := m.statusbar.Banner(); banner != "" {
		mainHeight--
	}

	rosterView := styles.Border.Width(m.rosterWidth - 2).Height(mainHeight - 2).Render(m.roster.View())
	chatView := styles.Border.Width(m.width - m.rosterWidth - 2).Height(mainHeight - 2).
		Render(m.chat.View(st.Main.Conversation, contactOf(st)))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, rosterView, chatView)

	if sheet := m.sheet(st); sheet != "" {
		mainView = lipgloss.Place(m.width, mainHeight,
			lipgloss.Center, lipgloss.Center,
			sheet,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
		)
	}

	parts := []string{mainView}
	if banner := m.statusbar.Banner(); banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, m.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// sheet renders the sheet opened from the footer
func (m Model) sheet(st app.State) string {
	route := st.Main.Sidebar.Footer.Route
	switch route.Tag() {
	case footer.RouteAccountSettingsMenu:
		menu, _ := route.AccountSettingsMenu()
		return m.dialogs.SettingsMenu(menu)
	case footer.RouteAccountSwitcherMenu:
		menu, _ := route.AccountSwitcherMenu()
		return m.dialogs.Switcher(st.Accounts.All(), st.CurrentUser, menu.Highlighted)
	case footer.RouteAuth:
		form, _ := route.Auth()
		return m.dialogs.Login(form, m.focus, true)
	case footer.RouteEditProfile:
		form, _ := route.EditProfile()
		return m.dialogs.EditProfile(form, m.focus)
	}
	return ""
}

func (m Model) place(content string) string {
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
	)
}

// contactOf collects what the sidebar knows about the open conversation
func contactOf(st app.State) chat.Contact {
	conv := st.Main.Conversation
	if conv == nil {
		return chat.Contact{}
	}
	r := st.Main.Sidebar.Roster
	return chat.Contact{
		Info:     r.UserInfos[conv.Chat],
		Presence: r.Presences[conv.Chat],
		Unread:   r.UnreadCounts[conv.Chat],
	}
}
