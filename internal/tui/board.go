package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/squarehq/square/internal/board"
	"github.com/squarehq/square/internal/browser"
	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/internal/routes"
	"github.com/squarehq/square/pkg/client"
	"github.com/squarehq/square/pkg/domain"
)

// -- messages --

type boardLoadedMsg struct {
	projectID string
	detail    *domain.ProjectDetail
	err       error
}

type dropSettledMsg struct {
	projectID string
	err       error
}

// -- model --

type boardModel struct {
	deps      *deps
	projectID string
	detail    *domain.ProjectDetail

	col int // index into domain.StatusOrder
	row int

	grabbed     bool
	grabbedCol  int
	grabbedRow  int
	grabbedTask string

	peek    *domain.Task
	addTask *addTaskModel

	loading bool
	err     string
	width   int
	height  int
}

func newBoardModel(d *deps) boardModel {
	return boardModel{deps: d}
}

// open resets the screen for a project and starts loading it.
func (m *boardModel) open(projectID string) tea.Cmd {
	m.projectID = projectID
	m.detail = nil
	m.col, m.row = 0, 0
	m.grabbed = false
	m.peek = nil
	m.addTask = nil
	m.err = ""
	m.loading = true
	return m.load()
}

func (m boardModel) load() tea.Cmd {
	d := m.deps
	projectID := m.projectID
	return func() tea.Msg {
		data, err := d.cache.Query(context.Background(), cache.ProjectKey(projectID), projectStaleTime,
			func(ctx context.Context) (any, error) {
				return d.api.GetProject(ctx, projectID)
			})
		detail, _ := data.(*domain.ProjectDetail)
		return boardLoadedMsg{projectID: projectID, detail: detail, err: err}
	}
}

// refreshFromCache re-reads the project from the cache: after a drop settles
// it holds either the kept optimistic state or the restored snapshot.
func (m *boardModel) refreshFromCache() {
	if data, ok := m.deps.cache.Peek(cache.ProjectKey(m.projectID)); ok {
		if detail, ok := data.(*domain.ProjectDetail); ok {
			m.detail = detail
		}
	}
}

func (m boardModel) columns() map[domain.Status][]domain.Task {
	if m.detail == nil {
		return board.Columns(nil)
	}
	return board.Columns(m.detail.Tasks)
}

func (m boardModel) Update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case boardLoadedMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err, "Failed to load project")
		} else {
			m.err = ""
			m.detail = msg.detail
			m.clampCursor()
		}

	case dropSettledMsg:
		if msg.projectID != m.projectID {
			return m, nil
		}
		m.refreshFromCache()
		m.clampCursor()
		if msg.err != nil {
			return m, toastCmd(client.Message(msg.err, "Failed to move task"), true)
		}
		return m, nil

	case taskCreatedMsg:
		m.addTask = nil
		if msg.err != nil {
			return m, toastCmd(client.Message(msg.err, "Failed to create task"), true)
		}
		m.deps.cache.Invalidate(cache.ProjectKey(m.projectID))
		m.loading = true
		return m, tea.Batch(toastCmd("Task created", false), m.load())

	case usersLoadedMsg:
		if m.addTask != nil {
			m.addTask.setUsers(msg.users, msg.err)
		}

	case tea.KeyMsg:
		if m.addTask != nil {
			done, cmd := m.addTask.handleKey(msg)
			if done {
				m.addTask = nil
			}
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *boardModel) clampCursor() {
	cols := m.columns()
	if m.col >= len(domain.StatusOrder) {
		m.col = 0
	}
	n := len(cols[domain.StatusOrder[m.col]])
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m boardModel) handleKey(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	cols := m.columns()
	curTasks := cols[domain.StatusOrder[m.col]]

	if m.peek != nil {
		switch msg.String() {
		case "esc", "p", "q":
			m.peek = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if !m.grabbed && m.row < len(curTasks)-1 {
			m.row++
		}
	case "k", "up":
		if !m.grabbed && m.row > 0 {
			m.row--
		}
	case "h", "left":
		if m.col > 0 {
			m.col--
			if !m.grabbed {
				m.clampCursor()
			}
		}
	case "l", "right":
		if m.col < len(domain.StatusOrder)-1 {
			m.col++
			if !m.grabbed {
				m.clampCursor()
			}
		}
	case " ", "enter":
		if m.grabbed {
			return m.drop()
		}
		if len(curTasks) > 0 && m.row < len(curTasks) {
			m.grabbed = true
			m.grabbedCol = m.col
			m.grabbedRow = m.row
			m.grabbedTask = curTasks[m.row].ID
		}
	case "esc":
		if m.grabbed {
			m.grabbed = false
			m.col = m.grabbedCol
			m.row = m.grabbedRow
			return m, nil
		}
		return m, navCmd(routes.PathHome)
	case "p":
		if !m.grabbed && len(curTasks) > 0 && m.row < len(curTasks) {
			t := curTasks[m.row]
			m.peek = &t
		}
	case "a":
		at := newAddTaskModel(m.deps, m.projectID, domain.StatusOrder[m.col])
		m.addTask = &at
		return m, m.addTask.loadUsers()
	case "e":
		return m, navCmd("/projects/" + m.projectID + "/settings")
	case "o":
		url := m.deps.appURL + "/projects/" + m.projectID
		return m, func() tea.Msg {
			if err := browser.Open(url); err != nil {
				return toastMsg{text: "Failed to open browser", isErr: true}
			}
			return nil
		}
	case "y":
		if !m.grabbed && len(curTasks) > 0 && m.row < len(curTasks) {
			if err := clipboard.WriteAll(curTasks[m.row].ID); err != nil {
				return m, toastCmd("Clipboard unavailable", true)
			}
			return m, toastCmd("Task id copied", false)
		}
	case "r":
		m.deps.cache.Invalidate(cache.ProjectKey(m.projectID))
		m.loading = true
		return m, m.load()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// drop settles a grabbed card into the column under the cursor. The intent is
// captured synchronously; the cache write and the PATCH run in a command.
func (m boardModel) drop() (boardModel, tea.Cmd) {
	m.grabbed = false

	from := domain.StatusOrder[m.grabbedCol]
	to := domain.StatusOrder[m.col]
	toIndex := m.grabbedRow
	if from != to {
		toIndex = len(m.columns()[to])
	}
	intent := board.DropIntent{
		TaskID:    m.grabbedTask,
		From:      from,
		To:        to,
		FromIndex: m.grabbedRow,
		ToIndex:   toIndex,
	}
	if intent.NoOp() {
		return m, nil
	}

	// Mirror the optimistic rewrite locally so the move renders this
	// frame; the cache copy is written by the reconciler before the
	// network call goes out.
	if m.detail != nil {
		next := m.detail.Clone()
		for i := range next.Tasks {
			if next.Tasks[i].ID == intent.TaskID {
				next.Tasks[i].Status = intent.To
			}
		}
		m.detail = next
	}
	m.row = toIndex
	m.clampCursor()

	d := m.deps
	projectID := m.projectID
	return m, func() tea.Msg {
		err := d.rec.Drop(context.Background(), projectID, intent)
		return dropSettledMsg{projectID: projectID, err: err}
	}
}

func (m boardModel) View() string {
	if m.addTask != nil {
		return m.addTask.View()
	}

	var b strings.Builder
	name := ""
	if m.detail != nil {
		name = m.detail.Name
	}
	b.WriteString(" " + selectedStyle.Render(name))
	if m.detail != nil {
		b.WriteString("  " + metaStyle.Render("created "+formatDate(m.detail.CreatedAt)))
	}
	b.WriteString("\n\n")

	if m.loading && m.detail == nil {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}

	cols := m.columns()
	colWidth := 28
	if m.width > 0 {
		if w := m.width/len(domain.StatusOrder) - 4; w > 16 && w < colWidth {
			colWidth = w
		}
	}

	rendered := make([]string, 0, len(domain.StatusOrder))
	for ci, status := range domain.StatusOrder {
		tasks := cols[status]
		var col strings.Builder
		col.WriteString(statusStyle(status).Render(status.Label()) + dimStyle.Render(fmt.Sprintf(" %d", len(tasks))) + "\n")
		if len(tasks) == 0 {
			col.WriteString(dimStyle.Render("No tasks") + "\n")
		}
		for ri, t := range tasks {
			isCursor := ci == m.col && ri == m.row
			marker := "  "
			title := normalStyle.Render(truncStr(t.Title, colWidth-4))
			if isCursor {
				marker = accentStyle.Render("▸ ")
				title = selectedStyle.Render(truncStr(t.Title, colWidth-4))
			}
			if m.grabbed && t.ID == m.grabbedTask {
				marker = accentStyle.Render("◆ ")
			}
			col.WriteString(marker + title + "\n")
			if t.Assignee != nil {
				col.WriteString("  " + metaStyle.Render(truncStr(t.Assignee.Email, colWidth-4)) + "\n")
			}
		}
		if m.grabbed && ci == m.col && m.grabbedCol != m.col {
			col.WriteString(accentStyle.Render("◆ ") + dimStyle.Render("drop here") + "\n")
		}

		style := columnStyle
		if ci == m.col {
			style = activeColumnStyle
		}
		rendered = append(rendered, style.Width(colWidth).Render(col.String()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n")

	if m.peek != nil {
		b.WriteString("\n" + m.renderPeek() + "\n")
	} else if m.detail != nil && len(m.detail.Memberships) > 0 {
		b.WriteString("\n " + metaStyle.Render("Members: "))
		parts := make([]string, 0, len(m.detail.Memberships))
		for _, mem := range m.detail.Memberships {
			label := mem.Name
			if mem.IsOwner {
				label += " (owner)"
			}
			parts = append(parts, dimStyle.Render(label))
		}
		b.WriteString(strings.Join(parts, dimStyle.Render(" · ")) + "\n")
	}

	return b.String()
}

// renderPeek shows the selected task's full detail in an overlay box.
func (m boardModel) renderPeek() string {
	t := m.peek
	var b strings.Builder
	b.WriteString(selectedStyle.Render(t.Title) + "\n")
	b.WriteString(statusStyle(t.Status).Render(t.Status.Label()) + "\n")
	if t.Description != "" {
		b.WriteString(normalStyle.Render(t.Description) + "\n")
	}
	if t.Assignee != nil {
		b.WriteString(metaStyle.Render("Assigned to: "+t.Assignee.Name+" <"+t.Assignee.Email+">") + "\n")
	}
	return overlayStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m boardModel) helpKeys() string {
	if m.addTask != nil {
		return m.addTask.helpKeys()
	}
	if m.grabbed {
		return helpEntry("h/l", "move") + "  " + helpEntry("space", "drop") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("h/j/k/l", "nav") + "  " + helpEntry("space", "grab") + "  " + helpEntry("p", "peek") + "  " + helpEntry("a", "add task") + "  " + helpEntry("e", "settings") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("esc", "back") + "  " + helpEntry("q", "quit")
}
