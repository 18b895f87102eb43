package roster

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/sidebar"
	"github.com/meszmate/sessionroster/internal/ui/theme"
)

// Model renders the sidebar roster with a selection cursor
type Model struct {
	view        sidebar.View
	selected    int
	width       int
	height      int
	hideOffline bool
	styles      *theme.Styles
}

// New creates a new roster model
func New(styles *theme.Styles) Model {
	return Model{styles: styles}
}

// SetShowOffline sets whether offline contacts without unread messages are
// listed. Takes effect on the next SetView.
func (m Model) SetShowOffline(show bool) Model {
	m.hideOffline = !show
	return m
}

// SetView replaces the rendered roster, keeping the cursor in range
func (m Model) SetView(v sidebar.View) Model {
	if m.hideOffline {
		v = onlineOnly(v)
	}
	m.view = v
	if n := v.Len(); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return m
}

func onlineOnly(v sidebar.View) sidebar.View {
	var out sidebar.View
	for _, g := range v.Groups {
		var items []sidebar.Item
		for _, item := range g.Items {
			if item.Status == domain.Online || item.Unread > 0 {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			out.Groups = append(out.Groups, sidebar.Group{Name: g.Name, Items: items})
		}
	}
	return out
}

// SetSize sets the component size
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// MoveUp moves the selection up
func (m Model) MoveUp() Model {
	if m.selected > 0 {
		m.selected--
	}
	return m
}

// MoveDown moves the selection down
func (m Model) MoveDown() Model {
	if m.selected < m.view.Len()-1 {
		m.selected++
	}
	return m
}

// SelectedJID returns the JID of the selected contact
func (m Model) SelectedJID() domain.AccountID {
	item, ok := m.view.At(m.selected)
	if !ok {
		return ""
	}
	return item.JID
}

// lines lays the roster out as group headers followed by their items and
// returns the line of the selected item
func (m Model) lines() ([]string, int) {
	var out []string
	cursor := 0
	index := 0
	for _, g := range m.view.Groups {
		name := g.Name
		if name == "" {
			name = "Ungrouped"
		}
		out = append(out, m.styles.SidebarGroup.Render(" "+name))
		for _, item := range g.Items {
			if index == m.selected {
				cursor = len(out)
			}
			out = append(out, m.renderItem(item, index == m.selected))
			index++
		}
	}
	return out, cursor
}

// View renders the roster
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.SidebarHeader.Width(m.width - 2).Render("Roster"))
	b.WriteString("\n")

	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}

	lines, cursor := m.lines()
	if len(lines) == 0 {
		lines = []string{
			"",
			m.styles.SidebarContact.Render(" No contacts yet"),
		}
	}

	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}

	for i := offset; i < len(lines) && i < offset+visible; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	for i := len(lines) - offset; i < visible; i++ {
		b.WriteString("\n")
	}

	return b.String()
}

// renderItem renders a single contact line
func (m Model) renderItem(item sidebar.Item, selected bool) string {
	var indicator string
	var presenceStyle lipgloss.Style
	if item.Status == domain.Online {
		indicator = "●"
		presenceStyle = m.styles.PresenceOnline
	} else {
		indicator = "○"
		presenceStyle = m.styles.PresenceOffline
	}
	presence := presenceStyle.Render(indicator)

	name := item.JID.String()
	maxWidth := m.width - 10
	if len(name) > maxWidth && maxWidth > 0 {
		name = name[:maxWidth-1] + "…"
	}

	unread := ""
	if item.Unread > 0 {
		unread = m.styles.SidebarUnread.Render(fmt.Sprintf(" (%d)", item.Unread))
	}

	style := m.styles.SidebarContact
	if selected {
		style = m.styles.SidebarSelected
	}

	content := fmt.Sprintf("   %s %s%s", presence, name, unread)
	return style.Width(m.width - 2).Render(content)
}
