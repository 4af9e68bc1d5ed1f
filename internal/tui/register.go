package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/routes"
	"github.com/squarehq/square/internal/validate"
	"github.com/squarehq/square/pkg/client"
)

type registerField int

const (
	regFieldName registerField = iota
	regFieldEmail
	regFieldPassword
	regFieldConfirm
	numRegisterFields
)

var registerLabels = [numRegisterFields]string{
	"Name", "Your Email", "Password", "Confirm Password",
}

type registerDoneMsg struct {
	err error
}

type registerModel struct {
	deps       *deps
	fields     [numRegisterFields]string
	focus      registerField
	submitting bool
}

func newRegisterModel(d *deps) registerModel {
	return registerModel{deps: d}
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		m.submitting = false
		if msg.err != nil {
			return m, toastCmd(client.Message(msg.err, "Registration failed"), true)
		}
		return m, tea.Batch(
			toastCmd("Account created, please sign in", false),
			navCmd(routes.PathLogin),
		)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m registerModel) handleKey(msg tea.KeyMsg) (registerModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % numRegisterFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numRegisterFields) % numRegisterFields
	case "enter":
		if m.focus == regFieldConfirm {
			return m.submit()
		}
		m.focus++
	case "esc":
		return m, navCmd(routes.PathLogin)
	case "backspace":
		m.fields[m.focus] = editRune(m.fields[m.focus], "backspace")
	default:
		key := msg.String()
		if m.focus == regFieldEmail {
			key = strings.ToLower(key)
		}
		m.fields[m.focus] = editRune(m.fields[m.focus], key)
	}
	return m, nil
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	in := validate.RegisterInput{
		Name:            strings.TrimSpace(m.fields[regFieldName]),
		Email:           strings.TrimSpace(m.fields[regFieldEmail]),
		Password:        m.fields[regFieldPassword],
		ConfirmPassword: m.fields[regFieldConfirm],
	}
	if err := in.Validate(); err != nil {
		return m, toastCmd(err.Error(), true)
	}

	m.submitting = true
	d := m.deps
	return m, func() tea.Msg {
		err := d.api.Register(context.Background(), client.RegisterRequest{
			Email:           in.Email,
			Name:            in.Name,
			Password:        in.Password,
			ConfirmPassword: in.ConfirmPassword,
		})
		return registerDoneMsg{err: err}
	}
}

func (m registerModel) View() string {
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render("Create Account") + "\n\n")
	for f := regFieldName; f < numRegisterFields; f++ {
		masked := f == regFieldPassword || f == regFieldConfirm
		b.WriteString(renderFormField(registerLabels[f], m.fields[f], m.focus == f, masked))
	}
	if m.submitting {
		b.WriteString("\n " + dimStyle.Render("creating account...") + "\n")
	}
	return b.String()
}

func (m registerModel) helpKeys() string {
	return helpEntry("tab", "next field") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("esc", "back to login") + "  " + helpEntry("ctrl+c", "quit")
}
