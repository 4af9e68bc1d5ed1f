package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/internal/validate"
	"github.com/squarehq/square/pkg/client"
	"github.com/squarehq/square/pkg/domain"
)

type taskField int

const (
	taskFieldTitle taskField = iota
	taskFieldDescription
	taskFieldAssignee
	taskFieldStatus
	numTaskFields
)

type usersLoadedMsg struct {
	users []domain.User
	err   error
}

type taskCreatedMsg struct {
	err error
}

// addTaskModel is the add-task dialog shown over the board, one task per
// submit like the web dialog.
type addTaskModel struct {
	deps      *deps
	projectID string

	title       string
	description string
	status      domain.Status
	users       []domain.User
	userIdx     int
	usersErr    string

	focus      taskField
	submitting bool
}

func newAddTaskModel(d *deps, projectID string, defaultStatus domain.Status) addTaskModel {
	return addTaskModel{
		deps:      d,
		projectID: projectID,
		status:    defaultStatus,
	}
}

// loadUsers fills the assignee picker through the cache.
func (m *addTaskModel) loadUsers() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		data, err := d.cache.Query(context.Background(), cache.UsersKey, projectStaleTime,
			func(ctx context.Context) (any, error) {
				return d.api.ListUsers(ctx)
			})
		users, _ := data.([]domain.User)
		return usersLoadedMsg{users: users, err: err}
	}
}

func (m *addTaskModel) setUsers(users []domain.User, err error) {
	if err != nil {
		m.usersErr = client.Message(err, "Failed to load users")
		return
	}
	m.users = users
	m.usersErr = ""
	if m.userIdx >= len(users) {
		m.userIdx = 0
	}
}

// handleKey processes one keystroke. done reports that the dialog closed
// without submitting.
func (m *addTaskModel) handleKey(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	if m.submitting {
		return false, nil
	}
	switch msg.String() {
	case "esc":
		return true, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % numTaskFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numTaskFields) % numTaskFields
	case "ctrl+s":
		return false, m.submit()
	case "enter":
		if m.focus == taskFieldDescription {
			m.description += "\n"
		} else if m.focus == numTaskFields-1 {
			return false, m.submit()
		} else {
			m.focus++
		}
	case "backspace":
		switch m.focus {
		case taskFieldTitle:
			m.title = editRune(m.title, "backspace")
		case taskFieldDescription:
			m.description = editRune(m.description, "backspace")
		}
	default:
		key := msg.String()
		switch m.focus {
		case taskFieldTitle:
			m.title = editRune(m.title, key)
		case taskFieldDescription:
			m.description = editRune(m.description, key)
		case taskFieldAssignee, taskFieldStatus:
			switch key {
			case "h", "left":
				m.cycle(-1)
			case "l", "right":
				m.cycle(1)
			}
		}
	}
	return false, nil
}

// cycle steps the assignee or status selection.
func (m *addTaskModel) cycle(dir int) {
	switch m.focus {
	case taskFieldAssignee:
		if len(m.users) > 0 {
			m.userIdx = (m.userIdx + dir + len(m.users)) % len(m.users)
		}
	case taskFieldStatus:
		n := len(domain.StatusOrder)
		for i, s := range domain.StatusOrder {
			if s == m.status {
				m.status = domain.StatusOrder[(i+dir+n)%n]
				return
			}
		}
	}
}

func (m *addTaskModel) submit() tea.Cmd {
	assigneeID := ""
	if len(m.users) > 0 && m.userIdx < len(m.users) {
		assigneeID = m.users[m.userIdx].ID
	}
	in := validate.TaskInput{
		Title:       strings.TrimSpace(m.title),
		Description: strings.TrimSpace(m.description),
		AssigneeID:  assigneeID,
		Status:      m.status,
	}
	if err := in.Validate(); err != nil {
		return toastCmd(err.Error(), true)
	}

	m.submitting = true
	d := m.deps
	projectID := m.projectID
	return func() tea.Msg {
		err := d.api.CreateTasks(context.Background(), client.CreateTasksRequest{
			ProjectID: projectID,
			Tasks: []client.NewTask{{
				Title:       in.Title,
				Description: in.Description,
				Status:      in.Status,
				AssigneeID:  in.AssigneeID,
			}},
		})
		return taskCreatedMsg{err: err}
	}
}

func (m *addTaskModel) View() string {
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render("Add Task") + "\n\n")

	b.WriteString(renderFormField("Title", m.title, m.focus == taskFieldTitle, false))

	desc := strings.ReplaceAll(m.description, "\n", " ")
	b.WriteString(renderFormField("Description", truncStr(desc, 60), m.focus == taskFieldDescription, false))

	assignee := "none"
	if len(m.users) > 0 && m.userIdx < len(m.users) {
		u := m.users[m.userIdx]
		assignee = u.Name + " <" + u.Email + ">"
	} else if m.usersErr != "" {
		assignee = m.usersErr
	}
	b.WriteString(renderPickField("Assignee", assignee, m.focus == taskFieldAssignee))
	b.WriteString(renderPickField("Status", m.status.Label(), m.focus == taskFieldStatus))

	if m.submitting {
		b.WriteString("\n " + dimStyle.Render("creating...") + "\n")
	}
	return b.String()
}

// renderPickField renders a cycling selection line.
func renderPickField(label, value string, focused bool) string {
	marker := "  "
	if focused {
		marker = accentStyle.Render("▸ ")
	}
	line := " " + marker + metaStyle.Render(label+": ")
	if focused {
		line += accentStyle.Render("‹ ") + selectedStyle.Render(value) + accentStyle.Render(" ›")
	} else {
		line += normalStyle.Render(value)
	}
	return line + "\n"
}

func (m *addTaskModel) helpKeys() string {
	return helpEntry("tab", "next field") + "  " + helpEntry("h/l", "pick") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
}
