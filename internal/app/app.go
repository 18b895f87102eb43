// Package app owns the application state and runs every reduction.
//
// App is driven by the bubbletea loop: each message is reduced serially, the
// resulting effects are executed by the subscription registry and their
// outputs come back as messages. Features only ever see a session.State of
// their own shape; App projects it before and merges it back after each
// reduction.
package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meszmate/sessionroster/internal/accounts"
	"github.com/meszmate/sessionroster/internal/action"
	"github.com/meszmate/sessionroster/internal/auth"
	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/conversation"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/footer"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/session"
	"github.com/meszmate/sessionroster/internal/sidebar"
	"github.com/meszmate/sessionroster/internal/subscription"
)

// Dependencies are the collaborators of the application
type Dependencies struct {
	Source       client.EventSource
	Accounts     client.AccountsClient
	Connectivity client.ConnectivityClient
	Bookmarks    client.BookmarksLoader
	Credentials  client.CredentialsLoader
	Notifier     client.Notifier
	Logger       *logging.Logger
}

// MainState is the state of the main screen
type MainState struct {
	Sidebar      sidebar.State
	Conversation *conversation.State
}

// State is the application state
type State struct {
	Initialized  bool
	Connectivity domain.Connectivity
	CurrentUser  domain.AccountID
	Accounts     *accounts.Store
	Main         MainState
	Auth         *auth.State
}

var (
	sidebarLens = session.Lens[MainState, sidebar.State]{
		Get: func(m MainState) sidebar.State { return m.Sidebar },
		Set: func(m *MainState, s sidebar.State) { m.Sidebar = s },
	}
	conversationLens = func(m MainState) (conversation.State, bool) {
		if m.Conversation == nil {
			return conversation.State{}, false
		}
		return *m.Conversation, true
	}
	setConversation = func(m *MainState, c conversation.State) {
		m.Conversation = &c
	}
)

// App is the application
type App struct {
	deps   Dependencies
	logger *logging.Logger
	subs   *subscription.Registry

	auth         *auth.Reducer
	sidebar      *sidebar.Reducer
	conversation *conversation.Reducer

	state   State
	visible bool
	// reported holds the accounts last reported by the accounts client
	reported map[domain.AccountID]bool
}

// New creates the application. Call SetSender before the first Update.
func New(deps Dependencies) *App {
	logger := deps.Logger.With("app")
	authReducer := auth.NewReducer(deps.Accounts, deps.Credentials, deps.Logger)
	footerReducer := footer.NewReducer(deps.Accounts, authReducer, deps.Logger)

	return &App{
		deps:         deps,
		logger:       logger,
		subs:         subscription.NewRegistry(nil),
		auth:         authReducer,
		sidebar:      sidebar.NewReducer(deps.Source, footerReducer, deps.Logger),
		conversation: conversation.NewReducer(deps.Logger),
		state: State{
			Connectivity: domain.ConnectivityOnline,
			Accounts:     accounts.NewStore(),
		},
		reported: make(map[domain.AccountID]bool),
	}
}

// SetSender sets where subscription deliveries go, usually the tea.Program
func (a *App) SetSender(s subscription.Sender) {
	a.subs.SetSender(s)
}

// Init returns the command bootstrapping the application
func (a *App) Init() tea.Cmd {
	return func() tea.Msg { return OnAppear{} }
}

// State returns the application state. The accounts store must not be
// modified.
func (a *App) State() State {
	return a.state
}

// Subscriptions returns the names of the running subscriptions
func (a *App) Subscriptions() []subscription.Name {
	return a.subs.Active()
}

// MainScreenEnabled reports whether the main screen can be shown: no login
// screen is open and the current user is a known account.
func (a *App) MainScreenEnabled() bool {
	return a.state.Auth == nil && a.state.CurrentUser != "" && a.state.Accounts.Contains(a.state.CurrentUser)
}

// Main returns the main screen state scoped to the current user
func (a *App) Main() (session.State[MainState], bool) {
	if !a.MainScreenEnabled() {
		return session.State[MainState]{}, false
	}
	return session.New(a.state.CurrentUser, a.state.Accounts, a.state.Main), true
}

// Close cancels every subscription and waits for them to stop
func (a *App) Close() {
	a.subs.Close()
}

// Update reduces msg and returns the commands of the resulting effects.
// Deliveries of replaced or cancelled subscriptions are dropped.
func (a *App) Update(msg tea.Msg) tea.Cmd {
	if d, ok := msg.(subscription.Tagged); ok && !a.subs.Current(d.SubscriptionToken()) {
		a.logger.Debug("Dropping stale %s delivery", d.SubscriptionToken().Name)
		return nil
	}

	effects := a.reduce(msg)
	effects = append(effects, a.syncMainScreen()...)
	return a.subs.Execute(effects...)
}

func (a *App) reduce(msg tea.Msg) []subscription.Effect {
	switch msg := msg.(type) {
	case OnAppear:
		return a.appear()
	case OnDisappear:
		a.visible = false
		a.state.Main.Sidebar.Subscribed = false
		return []subscription.Effect{subscription.CancelAll()}

	case subscription.Delivery[[]domain.Account]:
		if msg.Err != nil {
			a.logger.Error("Could not load available accounts. %v", msg.Err)
			return nil
		}
		a.availableAccountsChanged(msg.Value)
	case subscription.Delivery[domain.Connectivity]:
		if msg.Err != nil {
			a.logger.Error("Could not observe connectivity. %v", msg.Err)
			return nil
		}
		a.state.Connectivity = msg.Value

	case DidReceiveMessage:
		return []subscription.Effect{subscription.Run(a.notify(msg))}
	case DismissAuthentication:
		if a.state.Accounts.Len() == 0 {
			return []subscription.Effect{subscription.Run(tea.Quit)}
		}
		a.state.Auth = nil
		a.ensureCurrentUser()

	case ProfileFetched:
		a.updateAccount(msg.JID, func(acc *domain.Account) {
			p := msg.Profile
			acc.Profile = &p
		})
	case AvatarFetched:
		a.updateAccount(msg.JID, func(acc *domain.Account) { acc.Avatar = msg.Avatar })
	case ContactsChanged:
		a.updateAccount(msg.JID, func(acc *domain.Account) { acc.Contacts = msg.Contacts })

	case AuthMsg:
		return a.reduceAuth(msg.Msg)
	case SidebarMsg, ConversationMsg:
		return a.reduceMain(msg)
	case subscription.Tagged:
		return a.reduceMain(SidebarMsg{Msg: msg})
	}
	return nil
}

// appear (re)starts the application level subscriptions. The first call also
// restores the saved accounts or opens the login screen.
func (a *App) appear() []subscription.Effect {
	a.visible = true
	effects := []subscription.Effect{
		subscription.Subscribe(subscription.AvailableAccounts, a.deps.Accounts.AvailableAccounts),
		subscription.Subscribe(subscription.Connectivity, a.deps.Connectivity.Connectivity),
	}
	if a.state.Initialized {
		return effects
	}
	a.state.Initialized = true

	effects = append(effects, subscription.Run(func() tea.Msg {
		a.deps.Notifier.PromptForPushNotifications()
		return nil
	}))

	creds, err := a.loadSavedCredentials()
	if err != nil {
		a.logger.Error("Could not load saved credentials. %v", err)
		a.proceedToLogin()
		return effects
	}
	if len(creds) == 0 {
		a.proceedToLogin()
		return effects
	}

	for _, c := range creds {
		if !a.state.Accounts.Contains(c.JID) {
			a.state.Accounts.Upsert(domain.NewAccount(c.JID, domain.StatusConnecting))
		}
	}
	a.state.CurrentUser = creds[0].JID

	// The accounts client must know the accounts before the sidebar
	// subscribes to their feeds right after this reduction.
	a.deps.Accounts.ConnectAccounts(creds)
	return effects
}

// loadSavedCredentials returns the credentials of every bookmarked account.
// Bookmarks without stored credentials are skipped; any other failure fails
// the whole load.
func (a *App) loadSavedCredentials() ([]domain.Credentials, error) {
	ids, err := a.deps.Bookmarks.LoadBookmarks()
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	creds := make([]domain.Credentials, 0, len(ids))
	for _, id := range ids {
		c, err := a.deps.Credentials.LoadCredentials(id)
		if errors.Is(err, client.ErrNoCredentials) {
			a.logger.Warn("No credentials stored for %s", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load credentials of %s: %w", id, err)
		}
		creds = append(creds, c)
	}
	return creds, nil
}

func (a *App) proceedToLogin() {
	if a.state.Auth == nil {
		a.state.Auth = &auth.State{}
	}
}

// availableAccountsChanged reconciles the store with the accounts reported by
// the accounts client. Accounts added locally and not reported yet are kept.
func (a *App) availableAccountsChanged(list []domain.Account) {
	seen := make(map[domain.AccountID]bool, len(list))
	for _, acc := range list {
		seen[acc.JID] = true
		if a.state.Accounts.Contains(acc.JID) {
			a.state.Accounts.SetAvailability(acc.JID, acc.Status)
		} else {
			a.state.Accounts.Upsert(acc)
		}
	}
	for _, id := range a.state.Accounts.IDs() {
		if a.reported[id] && !seen[id] {
			a.logger.Info("Account %s is no longer available", id)
			a.state.Accounts.Remove(id)
		}
	}
	a.reported = seen
	a.ensureCurrentUser()
}

// ensureCurrentUser keeps the current user pointing at a known account. It
// selects the first account if the current one went away, or opens the login
// screen if none is left.
func (a *App) ensureCurrentUser() {
	if a.state.CurrentUser != "" && a.state.Accounts.Contains(a.state.CurrentUser) {
		return
	}
	if ids := a.state.Accounts.IDs(); len(ids) > 0 {
		a.state.CurrentUser = ids[0]
		return
	}
	a.state.CurrentUser = ""
	a.proceedToLogin()
}

func (a *App) updateAccount(id domain.AccountID, fn func(*domain.Account)) {
	acc, ok := a.state.Accounts.Get(id)
	if !ok {
		a.logger.Debug("Ignoring update of unknown account %s", id)
		return
	}
	fn(&acc)
	a.state.Accounts.Upsert(acc)
}

// loggedIn adds a freshly logged in account so that it can be selected
func (a *App) loggedIn(id domain.AccountID) {
	if !a.state.Accounts.Contains(id) {
		a.state.Accounts.Upsert(domain.NewAccount(id, domain.StatusConnected))
	}
}

func (a *App) reduceAuth(msg tea.Msg) []subscription.Effect {
	if a.state.Auth == nil {
		return nil
	}
	effects := a.auth.Reduce(a.state.Auth, msg)
	if login, ok := msg.(auth.DidLogIn); ok {
		a.loggedIn(login.JID)
		a.state.CurrentUser = login.JID
		a.state.Auth = nil
	}
	return subscription.MapAll(effects, func(m tea.Msg) tea.Msg { return AuthMsg{Msg: m} })
}

// reduceMain runs msg through the main screen features on a state scoped to
// the current user, then writes the result back into the store.
func (a *App) reduceMain(msg tea.Msg) []subscription.Effect {
	if login, ok := action.Find[auth.DidLogIn](msg); ok {
		a.loggedIn(login.JID)
	}
	if saved, ok := action.Find[footer.ProfileSaved](msg); ok {
		a.updateAccount(saved.JID, func(acc *domain.Account) {
			p := saved.Profile
			acc.Profile = &p
		})
	}

	scope, ok := a.Main()
	if !ok {
		a.logger.Debug("Main screen is not enabled, dropping %T", msg)
		return nil
	}

	var effects []subscription.Effect
	switch msg := msg.(type) {
	case SidebarMsg:
		effects = session.Scope(&scope, sidebarLens, func(s *session.State[sidebar.State]) []subscription.Effect {
			return a.sidebar.Reduce(s, msg.Msg)
		})
		effects = subscription.MapAll(effects, func(m tea.Msg) tea.Msg { return SidebarMsg{Msg: m} })
		if _, selected := msg.Msg.(sidebar.Select); selected {
			scope.Modify(openSelection)
		}
	case ConversationMsg:
		conv, ok := session.ProjectOptional(scope, conversationLens)
		if ok {
			effects = a.conversation.Reduce(&conv, msg.Msg)
			effects = subscription.MapAll(effects, func(m tea.Msg) tea.Msg { return ConversationMsg{Msg: m} })
		}
		session.MergeOptional(&scope, setConversation, conv, ok)
	}

	a.adopt(scope)
	return effects
}

// openSelection opens the conversation selected in the sidebar
func openSelection(m *MainState) {
	sel := m.Sidebar.Selection
	if sel == "" {
		return
	}
	if m.Conversation == nil || m.Conversation.Chat != sel {
		c := conversation.New(sel)
		m.Conversation = &c
	}
}

// adopt writes a reduced main state back. The store only takes over the
// status of the selected account.
func (a *App) adopt(scope session.State[MainState]) {
	a.state.Main = scope.Child()
	a.state.CurrentUser = scope.CurrentUser()
	selected := scope.SelectedAccount()
	a.state.Accounts.SetAvailability(selected.JID, selected.Status)
}

// syncMainScreen starts the sidebar feeds when the main screen becomes
// visible or the current user changes, and stops them when it goes away.
func (a *App) syncMainScreen() []subscription.Effect {
	st := &a.state.Main.Sidebar
	enabled := a.visible && a.MainScreenEnabled()

	switch {
	case enabled && (!st.Subscribed || st.Account != a.state.CurrentUser):
		if st.Account != a.state.CurrentUser {
			a.state.Main.Conversation = nil
		}
		return a.reduceMain(SidebarMsg{Msg: sidebar.OnAppear{}})
	case !enabled && st.Subscribed:
		return sidebar.Disappear(st)
	}
	return nil
}

func (a *App) notify(msg DidReceiveMessage) tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Notifier.ScheduleLocalNotification(context.Background(), msg.Message, msg.From); err != nil {
			a.logger.Error("Could not schedule notification. %v", err)
		}
		return nil
	}
}
