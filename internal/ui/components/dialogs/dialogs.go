package dialogs

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/meszmate/sessionroster/internal/auth"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/footer"
	"github.com/meszmate/sessionroster/internal/ui/theme"
)

// Field is an input of a form. Its value is owned by the reducer state, the
// dialog only renders it.
type Field struct {
	Label    string
	Value    string
	Password bool
}

// Edit applies a key press to value. It reports false for keys that do not
// edit text.
func Edit(value string, msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyBackspace:
		if value == "" {
			return value, true
		}
		r := []rune(value)
		return string(r[:len(r)-1]), true
	case tea.KeyRunes:
		return value + string(msg.Runes), true
	case tea.KeySpace:
		return value + " ", true
	}
	return value, false
}

// Renderer renders the sheets opened from the footer and the login screen
type Renderer struct {
	styles *theme.Styles
}

// New creates a renderer
func New(styles *theme.Styles) Renderer {
	return Renderer{styles: styles}
}

// Login renders the login form
func (r Renderer) Login(form auth.State, focus int, dismissable bool) string {
	fields := []Field{
		{Label: "JID", Value: form.JID},
		{Label: "Password", Value: form.Password, Password: true},
	}
	message := ""
	switch {
	case form.IsLoggingIn:
		message = "Logging in..."
	case form.Error != "":
		message = r.styles.Error.Render(form.Error)
	}
	buttons := []string{"Log in"}
	if dismissable {
		buttons = append(buttons, "Cancel")
	}
	return r.sheet("Add account", message, fields, focus, buttons)
}

// EditProfile renders the profile form
func (r Renderer) EditProfile(form footer.EditProfileState, focus int) string {
	fields := []Field{
		{Label: "Full name", Value: form.FullName},
		{Label: "Nickname", Value: form.Nickname},
	}
	return r.sheet("Edit profile", form.JID.String(), fields, focus, []string{"Save", "Cancel"})
}

// SettingsMenu renders the account settings menu
func (r Renderer) SettingsMenu(menu footer.AccountSettingsMenuState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s\n%s\n\n", menu.FullName, r.styles.Muted.Render(menu.JID.String())))
	for _, a := range []domain.Availability{domain.Available, domain.Away, domain.DoNotDisturb} {
		marker := "  "
		if a == menu.Availability {
			marker = "✓ "
		}
		b.WriteString(fmt.Sprintf("%s%d  %s\n", marker, int(a)+1, a))
	}
	b.WriteString("\n   e  Edit profile\n   o  Sign out")
	return r.sheet("Account", b.String(), nil, 0, nil)
}

// Switcher renders the account switcher
func (r Renderer) Switcher(accounts []domain.Account, current domain.AccountID, highlighted int) string {
	var b strings.Builder
	for i, acc := range accounts {
		marker := "  "
		if acc.JID == current {
			marker = "✓ "
		}
		line := fmt.Sprintf("%s%s  %s", marker, acc.Username(), r.styles.Muted.Render(acc.Status.String()))
		if i == highlighted {
			line = r.styles.SidebarSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n   c  Connect another account")
	return r.sheet("Switch account", b.String(), nil, 0, nil)
}

func (r Renderer) sheet(title, message string, fields []Field, focus int, buttons []string) string {
	var b strings.Builder

	b.WriteString(r.styles.SheetTitle.Render(title))
	b.WriteString("\n\n")

	if message != "" {
		b.WriteString(r.styles.SheetContent.Render(message))
		b.WriteString("\n\n")
	}

	for i, f := range fields {
		value := f.Value
		if f.Password {
			value = strings.Repeat("*", len([]rune(value)))
		}
		label := f.Label + ": "
		if i == focus {
			cursor := lipgloss.NewStyle().Reverse(true).Render(" ")
			b.WriteString(r.styles.InputFocused.Render(label + value + cursor))
		} else {
			b.WriteString(r.styles.InputNormal.Render(label + value))
		}
		b.WriteString("\n")
	}
	if len(fields) > 0 {
		b.WriteString("\n")
	}

	var rendered []string
	for i, btn := range buttons {
		style := r.styles.SheetButton
		if i == 0 {
			style = r.styles.SheetButtonActive
		}
		rendered = append(rendered, style.Render(btn))
	}
	b.WriteString(strings.Join(rendered, "  "))

	return r.styles.SheetBorder.
		Width(50).
		Padding(1, 2).
		Render(b.String())
}
