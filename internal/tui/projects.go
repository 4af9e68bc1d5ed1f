package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/browser"
	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/internal/routes"
	"github.com/squarehq/square/internal/validate"
	"github.com/squarehq/square/pkg/client"
	"github.com/squarehq/square/pkg/domain"
)

// searchDebounce is how long typing must pause before a search fires,
// matching the web app's 500ms debounce.
const searchDebounce = 500 * time.Millisecond

// projectStaleTime mirrors the web client's 5-minute staleTime for lists and
// detail payloads.
const projectStaleTime = 5 * time.Minute

// -- messages --

type projectsLoadedMsg struct {
	query    string
	projects []domain.Project
	err      error
}

type searchDebounceMsg struct {
	seq int
}

type projectCreatedMsg struct {
	err error
}

// -- model --

type projectsModel struct {
	deps *deps

	projects []domain.Project
	cursor   int
	loading  bool
	err      string

	searching   bool
	searchInput string
	searchSeq   int
	query       string

	naming    bool
	nameInput string

	width  int
	height int
}

func newProjectsModel(d *deps) projectsModel {
	return projectsModel{deps: d}
}

// load fetches the project list for the current query through the cache.
// Results for superseded queries are dropped on arrival.
func (m projectsModel) load() tea.Cmd {
	d := m.deps
	query := m.query
	return func() tea.Msg {
		data, err := d.cache.Query(context.Background(), cache.ProjectListKey(query), projectStaleTime,
			func(ctx context.Context) (any, error) {
				return d.api.ListProjects(ctx, query, 1, listLimit)
			})
		projects, _ := data.([]domain.Project)
		return projectsLoadedMsg{query: query, projects: projects, err: err}
	}
}

// filtered applies the local case-insensitive name filter on top of the
// server search, like the web list does.
func (m projectsModel) filtered() []domain.Project {
	q := strings.ToLower(strings.TrimSpace(m.query))
	if q == "" {
		return m.projects
	}
	var out []domain.Project
	for _, p := range m.projects {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

func (m projectsModel) Update(msg tea.Msg) (projectsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case projectsLoadedMsg:
		if msg.query != m.query {
			// A newer query is the latest for this screen; drop this one.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err, "Failed to load projects")
		} else {
			m.err = ""
			m.projects = msg.projects
			if m.cursor >= len(m.projects) {
				m.cursor = 0
			}
		}

	case searchDebounceMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.query = m.searchInput
		m.cursor = 0
		m.loading = true
		return m, m.load()

	case projectCreatedMsg:
		if msg.err != nil {
			return m, toastCmd(client.Message(msg.err, "Failed to create project"), true)
		}
		m.deps.cache.InvalidatePrefix(cache.ProjectListPrefix)
		m.loading = true
		return m, tea.Batch(toastCmd("Project created", false), m.load())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m projectsModel) handleKey(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	key := msg.String()

	if m.searching {
		switch key {
		case "esc":
			m.searching = false
			return m, nil
		case "enter":
			m.searching = false
			m.searchSeq++
			m.query = m.searchInput
			m.cursor = 0
			m.loading = true
			return m, m.load()
		default:
			m.searchInput = editRune(m.searchInput, key)
			m.searchSeq++
			seq := m.searchSeq
			return m, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
				return searchDebounceMsg{seq: seq}
			})
		}
	}

	if m.naming {
		switch key {
		case "esc":
			m.naming = false
			return m, nil
		case "enter":
			return m.submitCreate()
		default:
			m.nameInput = editRune(m.nameInput, key)
			return m, nil
		}
	}

	visible := m.filtered()
	switch key {
	case "j", "down":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "n":
		m.naming = true
		m.nameInput = ""
	case "enter":
		if p, ok := m.selected(visible); ok {
			return m, navCmd("/projects/" + p.ID)
		}
	case "e":
		if p, ok := m.selected(visible); ok {
			return m, navCmd("/projects/" + p.ID + "/settings")
		}
	case "o":
		if p, ok := m.selected(visible); ok {
			url := m.deps.appURL + "/projects/" + p.ID
			return m, func() tea.Msg {
				if err := browser.Open(url); err != nil {
					return toastMsg{text: "Failed to open browser", isErr: true}
				}
				return nil
			}
		}
	case "y":
		if p, ok := m.selected(visible); ok {
			if err := clipboard.WriteAll(p.ID); err != nil {
				return m, toastCmd("Clipboard unavailable", true)
			}
			return m, toastCmd("Project id copied", false)
		}
	case "r":
		m.deps.cache.Invalidate(cache.ProjectListKey(m.query))
		m.loading = true
		return m, m.load()
	case "ctrl+l":
		d := m.deps
		return m, func() tea.Msg {
			d.store.Logout(context.Background())
			return navigateMsg{path: routes.PathLogin}
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m projectsModel) selected(visible []domain.Project) (domain.Project, bool) {
	if len(visible) == 0 || m.cursor >= len(visible) {
		return domain.Project{}, false
	}
	return visible[m.cursor], true
}

func (m projectsModel) submitCreate() (projectsModel, tea.Cmd) {
	in := validate.ProjectInput{Title: strings.TrimSpace(m.nameInput)}
	if err := in.Validate(); err != nil {
		return m, toastCmd(err.Error(), true)
	}
	m.naming = false
	d := m.deps
	return m, func() tea.Msg {
		return projectCreatedMsg{err: d.api.CreateProject(context.Background(), in.Title)}
	}
}

func (m projectsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render("My Projects") + "\n")

	if m.searching || m.searchInput != "" {
		line := " " + metaStyle.Render("search: ")
		if m.searchInput == "" {
			line += inputPlaceholderStyle.Render("type to search")
		} else {
			line += normalStyle.Render(m.searchInput)
		}
		if m.searching {
			line += accentStyle.Render("█")
		}
		b.WriteString(line + "\n")
	}
	if m.naming {
		b.WriteString(" " + metaStyle.Render("new project: ") + normalStyle.Render(m.nameInput) + accentStyle.Render("█") + "\n")
	}
	b.WriteString("\n")

	visible := m.filtered()
	switch {
	case m.loading && len(visible) == 0:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case m.err != "":
		b.WriteString(" " + errStyle.Render("error: "+m.err) + "\n")
	case len(visible) == 0:
		b.WriteString(" " + dimStyle.Render("No projects found.") + "\n")
	default:
		for i, p := range visible {
			cursor := " "
			name := normalStyle.Render(truncStr(p.Name, 40))
			if i == m.cursor {
				cursor = accentStyle.Render("▸")
				name = selectedStyle.Render(truncStr(p.Name, 40))
			}
			b.WriteString(" " + cursor + " " + name + "  " + metaStyle.Render("created "+formatDate(p.CreatedAt)) + "\n")
		}
	}
	return b.String()
}

func (m projectsModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("/", "search") + "  " + helpEntry("n", "new") + "  " + helpEntry("e", "settings") + "  " + helpEntry("o", "web") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("ctrl+l", "logout") + "  " + helpEntry("q", "quit")
}
