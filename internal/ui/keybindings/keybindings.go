package keybindings

import (
	"github.com/charmbracelet/bubbles/key"
)

// Mode represents the current input mode
type Mode int

const (
	// ModeNormal navigates the sidebar
	ModeNormal Mode = iota
	// ModeMenu navigates an open menu
	ModeMenu
	// ModeInsert edits a form
	ModeInsert
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeMenu:
		return "MENU"
	case ModeInsert:
		return "INSERT"
	default:
		return "UNKNOWN"
	}
}

// KeyMap holds every key binding of the application
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Open         key.Binding
	Back         key.Binding
	Settings     key.Binding
	Switcher     key.Binding
	EditProfile  key.Binding
	SignOut      key.Binding
	Available    key.Binding
	Away         key.Binding
	DoNotDisturb key.Binding
	Connect      key.Binding
	ToggleInfo   key.Binding
	VideoCall    key.Binding
	NextField    key.Binding
	PrevField    key.Binding
	Submit       key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "l"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "account settings"),
		),
		Switcher: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "switch account"),
		),
		EditProfile: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit profile"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sign out"),
		),
		Available: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "available"),
		),
		Away: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "away"),
		),
		DoNotDisturb: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "do not disturb"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect account"),
		),
		ToggleInfo: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "contact info"),
		),
		VideoCall: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "video call"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer for mode
func (k KeyMap) ShortHelp(mode Mode) []key.Binding {
	switch mode {
	case ModeMenu:
		return []key.Binding{k.Up, k.Down, k.Open, k.Back}
	case ModeInsert:
		return []key.Binding{k.NextField, k.Submit, k.Back}
	default:
		return []key.Binding{k.Open, k.Settings, k.Switcher, k.ToggleInfo, k.Quit}
	}
}
