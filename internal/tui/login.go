package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/routes"
	"github.com/squarehq/square/internal/session"
	"github.com/squarehq/square/internal/validate"
	"github.com/squarehq/square/pkg/client"
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
	numLoginFields
)

// loginDoneMsg carries the login mutation result. profileErr is set when the
// token was stored but the profile fetch failed; the login still stands.
type loginDoneMsg struct {
	err        error
	profileErr error
}

type loginModel struct {
	deps       *deps
	fields     [numLoginFields]string
	focus      loginField
	submitting bool
}

func newLoginModel(d *deps) loginModel {
	return loginModel{deps: d}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			return m, toastCmd(client.Message(msg.err, "Login failed"), true)
		}
		if msg.profileErr != nil {
			// Token acquisition succeeded; profile enrichment can lag.
			return m, tea.Batch(
				toastCmd("Failed to fetch user detail", true),
				navCmd(routes.PathHome),
			)
		}
		return m, tea.Batch(toastCmd("Login success", false), navCmd(routes.PathHome))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m loginModel) handleKey(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % numLoginFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
	case "enter":
		if m.focus == loginFieldPassword {
			return m.submit()
		}
		m.focus++
	case "ctrl+r":
		return m, navCmd(routes.PathRegister)
	case "backspace":
		m.fields[m.focus] = editRune(m.fields[m.focus], "backspace")
	default:
		key := msg.String()
		if m.focus == loginFieldEmail {
			key = strings.ToLower(key)
		}
		m.fields[m.focus] = editRune(m.fields[m.focus], key)
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	in := validate.LoginInput{
		Email:    strings.TrimSpace(m.fields[loginFieldEmail]),
		Password: m.fields[loginFieldPassword],
	}
	if err := in.Validate(); err != nil {
		return m, toastCmd(err.Error(), true)
	}

	m.submitting = true
	d := m.deps
	return m, func() tea.Msg {
		ctx := context.Background()
		token, err := d.api.Login(ctx, in.Email, in.Password)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		if err := d.store.Login(token); err != nil {
			return loginDoneMsg{err: err}
		}
		userID, err := session.UserIDFromToken(token)
		if err != nil {
			return loginDoneMsg{profileErr: err}
		}
		user, err := d.api.UserProfile(ctx, userID)
		if err != nil {
			return loginDoneMsg{profileErr: err}
		}
		d.store.SetUser(user)
		return loginDoneMsg{}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render("Sign In") + "\n")
	b.WriteString(" " + dimStyle.Render("Just sign in if you have an account here. Enjoy Square.") + "\n\n")

	b.WriteString(renderFormField("Your Email", m.fields[loginFieldEmail], m.focus == loginFieldEmail, false))
	b.WriteString(renderFormField("Enter Password", m.fields[loginFieldPassword], m.focus == loginFieldPassword, true))

	if m.submitting {
		b.WriteString("\n " + dimStyle.Render("signing in...") + "\n")
	}
	b.WriteString("\n " + dimStyle.Render("No account yet? ctrl+r to register") + "\n")
	return b.String()
}

func (m loginModel) helpKeys() string {
	return helpEntry("tab", "next field") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("ctrl+r", "register") + "  " + helpEntry("ctrl+c", "quit")
}

// renderFormField renders one labelled form line with a block cursor when
// focused.
func renderFormField(label, value string, focused, masked bool) string {
	shown := value
	if masked {
		shown = maskRunes(value)
	}
	marker := "  "
	if focused {
		marker = accentStyle.Render("▸ ")
	}
	line := " " + marker + metaStyle.Render(label+": ")
	if shown == "" && !focused {
		line += inputPlaceholderStyle.Render(label)
	} else {
		line += normalStyle.Render(shown)
	}
	if focused {
		line += accentStyle.Render("█")
	}
	return line + "\n"
}
