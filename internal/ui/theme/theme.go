package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a complete UI theme
type Theme struct {
	Name        string        `toml:"name"`
	Description string        `toml:"description"`
	Colors      ColorsConfig  `toml:"colors"`
	Sidebar     SidebarConfig `toml:"sidebar"`
	Footer      FooterConfig  `toml:"footer"`
	Sheets      SheetsConfig  `toml:"sheets"`
}

// ColorsConfig contains the base color palette
type ColorsConfig struct {
	Primary    string `toml:"primary"`
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Muted      string `toml:"muted"`
	Border     string `toml:"border"`
	Error      string `toml:"error"`
	Warning    string `toml:"warning"`
	Online     string `toml:"online"`
	Away       string `toml:"away"`
	DND        string `toml:"dnd"`
	Offline    string `toml:"offline"`
}

// SidebarConfig contains sidebar-specific styles
type SidebarConfig struct {
	HeaderFg   string `toml:"header_fg"`
	HeaderBg   string `toml:"header_bg"`
	SelectedFg string `toml:"selected_fg"`
	SelectedBg string `toml:"selected_bg"`
	ContactFg  string `toml:"contact_fg"`
	GroupFg    string `toml:"group_fg"`
	UnreadFg   string `toml:"unread_fg"`
}

// FooterConfig contains footer styles
type FooterConfig struct {
	Fg        string `toml:"fg"`
	Bg        string `toml:"bg"`
	AccountFg string `toml:"account_fg"`
	BannerFg  string `toml:"banner_fg"`
	BannerBg  string `toml:"banner_bg"`
}

// SheetsConfig contains the styles of menus and forms
type SheetsConfig struct {
	BorderFg       string `toml:"border_fg"`
	TitleFg        string `toml:"title_fg"`
	ContentFg      string `toml:"content_fg"`
	ButtonFg       string `toml:"button_fg"`
	ButtonBg       string `toml:"button_bg"`
	ButtonActiveFg string `toml:"button_active_fg"`
	ButtonActiveBg string `toml:"button_active_bg"`
}

// Styles contains the compiled lipgloss styles for a theme
type Styles struct {
	Base   lipgloss.Style
	Border lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style

	// Sidebar styles
	SidebarHeader   lipgloss.Style
	SidebarSelected lipgloss.Style
	SidebarContact  lipgloss.Style
	SidebarGroup    lipgloss.Style
	SidebarUnread   lipgloss.Style

	// Presence styles
	PresenceOnline  lipgloss.Style
	PresenceAway    lipgloss.Style
	PresenceDND     lipgloss.Style
	PresenceOffline lipgloss.Style

	// Footer styles
	Footer        lipgloss.Style
	FooterAccount lipgloss.Style
	Banner        lipgloss.Style

	// Sheet styles
	SheetBorder       lipgloss.Style
	SheetTitle        lipgloss.Style
	SheetContent      lipgloss.Style
	SheetButton       lipgloss.Style
	SheetButtonActive lipgloss.Style

	// Input styles
	InputNormal  lipgloss.Style
	InputFocused lipgloss.Style
}

// Manager handles theme loading and switching
type Manager struct {
	themes      map[string]*Theme
	current     *Theme
	currentName string
	styles      *Styles
	themeDirs   []string
}

// NewManager creates a new theme manager
func NewManager(themeDirs ...string) *Manager {
	m := &Manager{
		themes:    make(map[string]*Theme),
		themeDirs: themeDirs,
	}

	m.themes["nord"] = NordTheme()
	m.themes["gruvbox"] = GruvboxTheme()

	m.current = m.themes["nord"]
	m.currentName = "nord"
	m.styles = m.compileStyles(m.current)

	return m
}

// NordTheme is the default theme
func NordTheme() *Theme {
	return &Theme{
		Name:        "nord",
		Description: "Arctic, north-bluish color palette",
		Colors: ColorsConfig{
			Primary:    "#88C0D0",
			Background: "#2E3440",
			Foreground: "#D8DEE9",
			Muted:      "#4C566A",
			Border:     "#434C5E",
			Error:      "#BF616A",
			Warning:    "#EBCB8B",
			Online:     "#A3BE8C",
			Away:       "#EBCB8B",
			DND:        "#BF616A",
			Offline:    "#4C566A",
		},
		Sidebar: SidebarConfig{
			HeaderFg:   "#2E3440",
			HeaderBg:   "#88C0D0",
			SelectedFg: "#2E3440",
			SelectedBg: "#81A1C1",
			ContactFg:  "#D8DEE9",
			GroupFg:    "#B48EAD",
			UnreadFg:   "#EBCB8B",
		},
		Footer: FooterConfig{
			Fg:        "#D8DEE9",
			Bg:        "#3B4252",
			AccountFg: "#88C0D0",
			BannerFg:  "#2E3440",
			BannerBg:  "#EBCB8B",
		},
		Sheets: SheetsConfig{
			BorderFg:       "#88C0D0",
			TitleFg:        "#88C0D0",
			ContentFg:      "#D8DEE9",
			ButtonFg:       "#D8DEE9",
			ButtonBg:       "#434C5E",
			ButtonActiveFg: "#2E3440",
			ButtonActiveBg: "#88C0D0",
		},
	}
}

// GruvboxTheme is a warm retro theme
func GruvboxTheme() *Theme {
	return &Theme{
		Name:        "gruvbox",
		Description: "Retro groove color scheme",
		Colors: ColorsConfig{
			Primary:    "#FABD2F",
			Background: "#282828",
			Foreground: "#EBDBB2",
			Muted:      "#928374",
			Border:     "#504945",
			Error:      "#FB4934",
			Warning:    "#FE8019",
			Online:     "#B8BB26",
			Away:       "#FABD2F",
			DND:        "#FB4934",
			Offline:    "#928374",
		},
		Sidebar: SidebarConfig{
			HeaderFg:   "#282828",
			HeaderBg:   "#FABD2F",
			SelectedFg: "#282828",
			SelectedBg: "#83A598",
			ContactFg:  "#EBDBB2",
			GroupFg:    "#D3869B",
			UnreadFg:   "#FE8019",
		},
		Footer: FooterConfig{
			Fg:        "#EBDBB2",
			Bg:        "#3C3836",
			AccountFg: "#FABD2F",
			BannerFg:  "#282828",
			BannerBg:  "#FE8019",
		},
		Sheets: SheetsConfig{
			BorderFg:       "#FABD2F",
			TitleFg:        "#FABD2F",
			ContentFg:      "#EBDBB2",
			ButtonFg:       "#EBDBB2",
			ButtonBg:       "#504945",
			ButtonActiveFg: "#282828",
			ButtonActiveBg: "#FABD2F",
		},
	}
}

// LoadTheme loads a theme from a TOML file
func (m *Manager) LoadTheme(name string) error {
	for _, dir := range m.themeDirs {
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			theme := *NordTheme()
			if _, err := toml.DecodeFile(path, &theme); err != nil {
				return fmt.Errorf("failed to parse theme file %s: %w", path, err)
			}
			theme.Name = name
			m.themes[name] = &theme
			return nil
		}
	}
	return fmt.Errorf("theme %s not found", name)
}

// SetTheme switches to a different theme
func (m *Manager) SetTheme(name string) error {
	theme, ok := m.themes[name]
	if !ok {
		if err := m.LoadTheme(name); err != nil {
			return err
		}
		theme = m.themes[name]
	}
	m.current = theme
	m.currentName = name
	m.styles = m.compileStyles(theme)
	return nil
}

// Current returns the current theme
func (m *Manager) Current() *Theme {
	return m.current
}

// CurrentName returns the current theme name
func (m *Manager) CurrentName() string {
	return m.currentName
}

// Styles returns the compiled styles for the current theme
func (m *Manager) Styles() *Styles {
	return m.styles
}

// AvailableThemes returns the sorted names of the loaded themes
func (m *Manager) AvailableThemes() []string {
	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// compileStyles compiles a theme into lipgloss styles
func (m *Manager) compileStyles(t *Theme) *Styles {
	s := &Styles{}

	s.Base = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Colors.Foreground))

	s.Border = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Colors.Border))

	s.Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Colors.Muted))

	s.Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Colors.Error))

	// Sidebar styles
	s.SidebarHeader = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sidebar.HeaderFg)).
		Background(lipgloss.Color(t.Sidebar.HeaderBg)).
		Bold(true).
		Padding(0, 1)

	s.SidebarSelected = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sidebar.SelectedFg)).
		Background(lipgloss.Color(t.Sidebar.SelectedBg)).
		Bold(true)

	s.SidebarContact = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sidebar.ContactFg))

	s.SidebarGroup = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sidebar.GroupFg)).
		Bold(true)

	s.SidebarUnread = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sidebar.UnreadFg)).
		Bold(true)

	// Presence styles
	s.PresenceOnline = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Colors.Online))

	s.PresenceAway = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Colors.Away))

	s.PresenceDND = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Colors.DND))

	s.PresenceOffline = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Colors.Offline))

	// Footer styles
	s.Footer = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Footer.Fg)).
		Background(lipgloss.Color(t.Footer.Bg))

	s.FooterAccount = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Footer.AccountFg)).
		Background(lipgloss.Color(t.Footer.Bg)).
		Bold(true)

	s.Banner = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Footer.BannerFg)).
		Background(lipgloss.Color(t.Footer.BannerBg)).
		Bold(true).
		Padding(0, 1)

	// Sheet styles
	s.SheetBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Sheets.BorderFg))

	s.SheetTitle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sheets.TitleFg)).
		Bold(true)

	s.SheetContent = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sheets.ContentFg))

	s.SheetButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sheets.ButtonFg)).
		Background(lipgloss.Color(t.Sheets.ButtonBg)).
		Padding(0, 2)

	s.SheetButtonActive = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Sheets.ButtonActiveFg)).
		Background(lipgloss.Color(t.Sheets.ButtonActiveBg)).
		Bold(true).
		Padding(0, 2)

	// Input styles
	s.InputNormal = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(t.Colors.Border)).
		Padding(0, 1)

	s.InputFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(t.Colors.Primary)).
		Padding(0, 1)

	return s
}
