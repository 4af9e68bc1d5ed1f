// Package tui is the terminal front-end: a bubbletea app with login,
// register, project list, kanban board, and project settings views. Every
// view change passes through the route guard first.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/squarehq/square/internal/board"
	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/internal/routes"
	"github.com/squarehq/square/internal/session"
	"github.com/squarehq/square/pkg/client"
)

type view int

const (
	viewLogin view = iota
	viewRegister
	viewProjects
	viewBoard
	viewSettings
)

// SessionExpiredMsg is sent from the gateway's unauthorized hook. The session
// is already cleared when it arrives; the app silently returns to login.
type SessionExpiredMsg struct{}

// navigateMsg requests a view change by path. The route guard decides the
// final destination.
type navigateMsg struct {
	path string
}

func navCmd(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// toastMsg shows a transient notification line.
type toastMsg struct {
	text  string
	isErr bool
}

func toastCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, isErr: isErr} }
}

type toastClearMsg struct {
	seq int
}

// shimmerTickMsg drives the logo animation.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// deps are the shared collaborators every view reads from.
type deps struct {
	api    *client.Client
	store  *session.Store
	cache  *cache.Cache
	rec    *board.Reconciler
	appURL string
}

// App is the root bubbletea model.
type App struct {
	deps *deps

	view     view
	login    loginModel
	register registerModel
	projects projectsModel
	board    boardModel
	settings settingsModel

	toast    string
	toastErr bool
	toastSeq int

	version string
	width   int
	height  int
	frame   int
}

// NewApp wires the TUI over an already-hydrated session.
func NewApp(api *client.Client, store *session.Store, c *cache.Cache, appURL, version string) App {
	d := &deps{
		api:    api,
		store:  store,
		cache:  c,
		rec:    board.NewReconciler(c, api),
		appURL: appURL,
	}
	return App{
		deps:     d,
		login:    newLoginModel(d),
		register: newRegisterModel(d),
		projects: newProjectsModel(d),
		board:    newBoardModel(d),
		settings: newSettingsModel(d),
		version:  version,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(navCmd(routes.PathHome), shimmerTickCmd())
}

// parseProjectPath splits "/projects/{id}" and "/projects/{id}/settings".
func parseProjectPath(path string) (id string, settings bool, ok bool) {
	rest, found := strings.CutPrefix(path, "/projects/")
	if !found || rest == "" {
		return "", false, false
	}
	if base, isSettings := strings.CutSuffix(rest, "/settings"); isSettings {
		return base, true, base != ""
	}
	return rest, false, true
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + toast(1) + help(1)
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.projects, _ = a.projects.Update(bodyMsg)
		a.board, _ = a.board.Update(bodyMsg)
		a.settings, _ = a.settings.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case SessionExpiredMsg:
		// Session expiry is a navigation event, not an error: no toast.
		return a.navigate(routes.PathLogin)

	case navigateMsg:
		return a.navigate(msg.path)

	case toastMsg:
		a.toast = msg.text
		a.toastErr = msg.isErr
		a.toastSeq++
		seq := a.toastSeq
		return a, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return toastClearMsg{seq: seq}
		})

	case toastClearMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateActive(msg)
	}

	// Async results are routed to every view; each ignores messages it
	// does not own. A result arriving after the user navigated away still
	// settles into its owning view's state.
	return a.updateAll(msg)
}

// navigate runs the route guard and switches views. The guard sees only
// token presence, never profile data.
func (a App) navigate(path string) (tea.Model, tea.Cmd) {
	dec := routes.Decide(path, a.deps.store.IsAuthenticated())
	if !dec.Allowed() {
		path = dec.Target
	}

	switch path {
	case routes.PathLogin:
		a.view = viewLogin
		a.login = newLoginModel(a.deps)
		return a, nil
	case routes.PathRegister:
		a.view = viewRegister
		a.register = newRegisterModel(a.deps)
		return a, nil
	case routes.PathHome, routes.PathProjects:
		a.view = viewProjects
		return a, a.projects.load()
	}

	if id, isSettings, ok := parseProjectPath(path); ok {
		if isSettings {
			a.view = viewSettings
			a.settings = newSettingsModel(a.deps)
			return a, a.settings.open(id)
		}
		a.view = viewBoard
		return a, a.board.open(id)
	}

	// Unclassified paths are allowed but unknown to the TUI; land home.
	a.view = viewProjects
	return a, a.projects.load()
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.Update(msg)
	case viewBoard:
		a.board, cmd = a.board.Update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.Update(msg)
	}
	return a, cmd
}

func (a App) updateAll(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.login, cmd = a.login.Update(msg)
	cmds = append(cmds, cmd)
	a.register, cmd = a.register.Update(msg)
	cmds = append(cmds, cmd)
	a.projects, cmd = a.projects.Update(msg)
	cmds = append(cmds, cmd)
	a.board, cmd = a.board.Update(msg)
	cmds = append(cmds, cmd)
	a.settings, cmd = a.settings.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) View() string {
	var b strings.Builder

	// Header: logo left, identity right
	identity := ""
	if u := a.deps.store.User(); u != nil {
		identity = dimStyle.Render(u.Name)
	} else if a.deps.store.IsAuthenticated() {
		identity = dimStyle.Render("signed in")
	}
	logo := " " + renderShimmerLogo(a.frame)
	gap := a.width - lipgloss.Width(logo) - lipgloss.Width(identity) - 1
	if gap < 1 {
		gap = 1
	}
	b.WriteString(logo + strings.Repeat(" ", gap) + identity + "\n\n")

	var body, help string
	switch a.view {
	case viewLogin:
		body, help = a.login.View(), a.login.helpKeys()
	case viewRegister:
		body, help = a.register.View(), a.register.helpKeys()
	case viewProjects:
		body, help = a.projects.View(), a.projects.helpKeys()
	case viewBoard:
		body, help = a.board.View(), a.board.helpKeys()
	case viewSettings:
		body, help = a.settings.View(), a.settings.helpKeys()
	}
	if a.height > 4 {
		body = truncateToHeight(body, a.height-4)
	}
	b.WriteString(body)

	b.WriteString("\n")
	if a.toast != "" {
		if a.toastErr {
			b.WriteString(" " + errStyle.Render(a.toast))
		} else {
			b.WriteString(" " + okStyle.Render(a.toast))
		}
	}
	b.WriteString("\n " + help + "\n")
	return b.String()
}
