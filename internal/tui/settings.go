package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/internal/routes"
	"github.com/squarehq/square/internal/validate"
	"github.com/squarehq/square/pkg/client"
	"github.com/squarehq/square/pkg/domain"
)

// -- messages --

type settingsLoadedMsg struct {
	projectID string
	detail    *domain.ProjectDetail
	err       error
}

type candidatesLoadedMsg struct {
	projectID string
	users     []domain.User
	err       error
}

type projectSavedMsg struct {
	projectID string
	err       error
}

type projectDeletedMsg struct {
	err error
}

type settingsField int

const (
	settingsFieldName settingsField = iota
	settingsFieldMembers
	numSettingsFields
)

// settingsModel renames a project, adds members, and deletes the project.
// New members are staged locally and only sent on save.
type settingsModel struct {
	deps      *deps
	projectID string
	detail    *domain.ProjectDetail

	name       string
	candidates []domain.User
	candIdx    int
	newMembers []domain.User

	focus      settingsField
	confirming bool
	submitting bool

	loading bool
	err     string
	width   int
	height  int
}

func newSettingsModel(d *deps) settingsModel {
	return settingsModel{deps: d}
}

// open resets the screen for a project and loads its detail plus the
// addable-member candidates.
func (m *settingsModel) open(projectID string) tea.Cmd {
	*m = settingsModel{deps: m.deps, projectID: projectID, loading: true, width: m.width, height: m.height}
	return tea.Batch(m.load(), m.loadCandidates())
}

func (m settingsModel) load() tea.Cmd {
	d := m.deps
	projectID := m.projectID
	return func() tea.Msg {
		data, err := d.cache.Query(context.Background(), cache.ProjectKey(projectID), projectStaleTime,
			func(ctx context.Context) (any, error) {
				return d.api.GetProject(ctx, projectID)
			})
		detail, _ := data.(*domain.ProjectDetail)
		return settingsLoadedMsg{projectID: projectID, detail: detail, err: err}
	}
}

// loadCandidates fills the add-member picker from the user list, the same
// cached query the add-task assignee picker uses. Users who are already
// members stay in the list and are rejected on stage.
func (m settingsModel) loadCandidates() tea.Cmd {
	d := m.deps
	projectID := m.projectID
	return func() tea.Msg {
		data, err := d.cache.Query(context.Background(), cache.UsersKey, projectStaleTime,
			func(ctx context.Context) (any, error) {
				return d.api.ListUsers(ctx)
			})
		users, _ := data.([]domain.User)
		return candidatesLoadedMsg{projectID: projectID, users: users, err: err}
	}
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case settingsLoadedMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err, "Failed to load project")
		} else {
			m.err = ""
			m.detail = msg.detail
			m.name = msg.detail.Name
		}

	case candidatesLoadedMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		if msg.err == nil {
			m.candidates = msg.users
			if m.candIdx >= len(m.candidates) {
				m.candIdx = 0
			}
		}

	case projectSavedMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			return m, toastCmd(client.Message(msg.err, "Failed to update project"), true)
		}
		m.deps.cache.Invalidate(cache.ProjectKey(m.projectID))
		m.deps.cache.InvalidatePrefix(cache.ProjectListPrefix)
		m.newMembers = nil
		return m, tea.Batch(toastCmd("Project updated successfully", false), m.load(), m.loadCandidates())

	case projectDeletedMsg:
		m.submitting = false
		if msg.err != nil {
			return m, toastCmd(client.Message(msg.err, "Failed to delete project"), true)
		}
		m.deps.cache.Invalidate(cache.ProjectKey(m.projectID))
		m.deps.cache.InvalidatePrefix(cache.ProjectListPrefix)
		return m, tea.Batch(toastCmd("Project deleted", false), navCmd(routes.PathHome))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m settingsModel) handleKey(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if m.confirming {
		switch msg.String() {
		case "y":
			m.confirming = false
			m.submitting = true
			return m, m.deleteProject()
		case "n", "esc":
			m.confirming = false
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, navCmd("/projects/" + m.projectID)
	case "tab", "down", "j":
		if m.focus == settingsFieldName && msg.String() == "j" {
			break // j types into the name field
		}
		m.focus = (m.focus + 1) % numSettingsFields
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numSettingsFields) % numSettingsFields
		return m, nil
	case "ctrl+s":
		return m.save()
	case "ctrl+d":
		m.confirming = true
		return m, nil
	case "enter":
		if m.focus == settingsFieldMembers {
			m.stageMember()
			return m, nil
		}
		return m.save()
	case "backspace":
		if m.focus == settingsFieldName {
			m.name = editRune(m.name, "backspace")
			return m, nil
		}
		if len(m.newMembers) > 0 {
			m.newMembers = m.newMembers[:len(m.newMembers)-1]
		}
		return m, nil
	}

	switch m.focus {
	case settingsFieldName:
		m.name = editRune(m.name, msg.String())
	case settingsFieldMembers:
		switch msg.String() {
		case "h", "left":
			if len(m.candidates) > 0 {
				m.candIdx = (m.candIdx - 1 + len(m.candidates)) % len(m.candidates)
			}
		case "l", "right":
			if len(m.candidates) > 0 {
				m.candIdx = (m.candIdx + 1) % len(m.candidates)
			}
		}
	}
	return m, nil
}

// stageMember queues the highlighted candidate for the next save. Existing
// and already-staged members are rejected.
func (m *settingsModel) stageMember() {
	if len(m.candidates) == 0 || m.candIdx >= len(m.candidates) {
		return
	}
	u := m.candidates[m.candIdx]
	if m.detail != nil {
		for _, mem := range m.detail.Memberships {
			if mem.ID == u.ID {
				m.err = "Member already exists"
				return
			}
		}
	}
	for _, staged := range m.newMembers {
		if staged.ID == u.ID {
			m.err = "Member already exists"
			return
		}
	}
	m.err = ""
	m.newMembers = append(m.newMembers, u)
}

func (m settingsModel) save() (settingsModel, tea.Cmd) {
	in := validate.ProjectInput{Title: strings.TrimSpace(m.name)}
	if err := in.Validate(); err != nil {
		return m, toastCmd(err.Error(), true)
	}

	ids := make([]string, 0, len(m.newMembers))
	for _, u := range m.newMembers {
		ids = append(ids, u.ID)
	}
	m.submitting = true
	d := m.deps
	projectID := m.projectID
	return m, func() tea.Msg {
		err := d.api.UpdateProject(context.Background(), client.UpdateProjectRequest{
			ProjectID:  projectID,
			Title:      in.Title,
			NewMembers: ids,
		})
		return projectSavedMsg{projectID: projectID, err: err}
	}
}

func (m settingsModel) deleteProject() tea.Cmd {
	d := m.deps
	projectID := m.projectID
	return func() tea.Msg {
		err := d.api.DeleteProject(context.Background(), projectID)
		return projectDeletedMsg{err: err}
	}
}

func (m settingsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render("Project Settings") + "\n\n")

	if m.loading && m.detail == nil {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}

	b.WriteString(renderFormField("Name", m.name, m.focus == settingsFieldName, false))

	candidate := "no users to add"
	if len(m.candidates) > 0 && m.candIdx < len(m.candidates) {
		u := m.candidates[m.candIdx]
		candidate = u.Name + " <" + u.Email + ">"
	}
	b.WriteString(renderPickField("Add member", candidate, m.focus == settingsFieldMembers))

	if m.detail != nil && len(m.detail.Memberships) > 0 {
		b.WriteString("\n " + metaStyle.Render("Members") + "\n")
		for _, mem := range m.detail.Memberships {
			label := mem.Name + " <" + mem.Email + ">"
			if mem.IsOwner {
				label += " (owner)"
			}
			b.WriteString("   " + normalStyle.Render(label) + "\n")
		}
	}
	if len(m.newMembers) > 0 {
		b.WriteString("\n " + metaStyle.Render("To be added") + "\n")
		for _, u := range m.newMembers {
			b.WriteString("   " + okStyle.Render(u.Name+" <"+u.Email+">") + "\n")
		}
	}

	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	if m.confirming {
		b.WriteString("\n " + errStyle.Render("Delete this project? (y/n)") + "\n")
	}
	if m.submitting {
		b.WriteString("\n " + dimStyle.Render("saving...") + "\n")
	}
	return b.String()
}

func (m settingsModel) helpKeys() string {
	if m.confirming {
		return helpEntry("y", "delete") + "  " + helpEntry("n", "keep")
	}
	return helpEntry("tab", "next field") + "  " + helpEntry("enter", "stage member") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("ctrl+d", "delete project") + "  " + helpEntry("esc", "back")
}
