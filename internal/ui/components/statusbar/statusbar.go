package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/ui/keybindings"
	"github.com/meszmate/sessionroster/internal/ui/theme"
)

// Model represents the footer bar: the current account, its availability and
// the connectivity banner
type Model struct {
	width        int
	mode         keybindings.Mode
	account      *domain.Account
	availability domain.Availability
	connectivity domain.Connectivity
	help         []key.Binding
	styles       *theme.Styles
}

// New creates a new status bar model
func New(styles *theme.Styles) Model {
	return Model{
		styles:       styles,
		mode:         keybindings.ModeNormal,
		connectivity: domain.ConnectivityOnline,
	}
}

// SetWidth sets the status bar width
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// SetMode sets the current mode
func (m Model) SetMode(mode keybindings.Mode) Model {
	m.mode = mode
	return m
}

// SetAccount sets the current account, nil when none is selected
func (m Model) SetAccount(account *domain.Account) Model {
	m.account = account
	return m
}

// SetAvailability sets the advertised availability
func (m Model) SetAvailability(a domain.Availability) Model {
	m.availability = a
	return m
}

// SetConnectivity sets the network state
func (m Model) SetConnectivity(c domain.Connectivity) Model {
	m.connectivity = c
	return m
}

// SetHelp sets the key bindings shown on the right
func (m Model) SetHelp(bindings []key.Binding) Model {
	m.help = bindings
	return m
}

// Banner renders the connectivity banner, empty while online
func (m Model) Banner() string {
	if m.connectivity == domain.ConnectivityOnline || m.width == 0 {
		return ""
	}
	return m.styles.Banner.Width(m.width).Render("Offline: data may be out of date")
}

// View renders the status bar
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	modeText := m.styles.SidebarHeader.Render(m.mode.String())

	var accountSection string
	if m.account != nil {
		var connStatus, statusText string
		switch m.account.Status {
		case domain.StatusConnected:
			connStatus = m.availabilityIndicator()
		case domain.StatusConnecting:
			connStatus = m.styles.PresenceAway.Render("◐")
			statusText = m.styles.PresenceAway.Render(" [connecting...]")
		case domain.StatusDisconnected:
			connStatus = m.styles.PresenceDND.Render("✗")
			statusText = m.styles.PresenceDND.Render(" [disconnected]")
		default:
			connStatus = m.styles.PresenceOffline.Render("○")
		}
		name := m.styles.FooterAccount.Render(m.account.Username())
		accountSection = fmt.Sprintf(" %s %s%s", connStatus, name, statusText)
	}

	var parts []string
	for _, b := range m.help {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	right := m.styles.Muted.Render(strings.Join(parts, " • ")) + " "

	left := fmt.Sprintf(" %s%s", modeText, accountSection)
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return m.styles.Footer.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m Model) availabilityIndicator() string {
	switch m.availability {
	case domain.Away:
		return m.styles.PresenceAway.Render("◐")
	case domain.DoNotDisturb:
		return m.styles.PresenceDND.Render("⊘")
	default:
		return m.styles.PresenceOnline.Render("●")
	}
}
