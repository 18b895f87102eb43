package chat

import (
	"fmt"
	"strings"

	"github.com/meszmate/sessionroster/internal/conversation"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/ui/theme"
)

// Contact is what the conversation panel knows about the chat partner
type Contact struct {
	Info     domain.UserInfo
	Presence domain.Presence
	Unread   int
}

// Model renders the open conversation: its toolbar and the info panel
type Model struct {
	width  int
	height int
	styles *theme.Styles
}

// New creates a new conversation panel
func New(styles *theme.Styles) Model {
	return Model{styles: styles}
}

// SetSize sets the component size
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders conv, or a placeholder when no conversation is open
func (m Model) View(conv *conversation.State, contact Contact) string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	if conv == nil {
		b.WriteString(m.styles.SidebarHeader.Width(m.width - 2).Render("No conversation"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render(" Select a contact to start chatting"))
		return b.String()
	}

	title := conv.Chat.String()
	if contact.Info.FullName != "" {
		title = contact.Info.FullName
	}
	b.WriteString(m.styles.SidebarHeader.Width(m.width - 2).Render(title))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(" [i] info  [v] video call"))
	b.WriteString("\n\n")

	if conv.IsShowingInfo {
		b.WriteString(m.info(conv.Chat, contact))
	}
	return b.String()
}

func (m Model) info(jid domain.AccountID, c Contact) string {
	rows := [][2]string{
		{"JID", jid.String()},
		{"Name", orDash(c.Info.FullName)},
		{"Nickname", orDash(c.Info.Nickname)},
		{"Status", c.Presence.OnlineStatus().String()},
		{"Message", orDash(c.Presence.Status)},
		{"Unread", fmt.Sprintf("%d", c.Unread)},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf(" %-9s %s\n", r[0]+":", r[1]))
	}
	return m.styles.Border.Width(m.width - 4).Render(b.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
