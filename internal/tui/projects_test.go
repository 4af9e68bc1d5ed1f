package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/pkg/domain"
)

func newTestProjects() projectsModel {
	m := newProjectsModel(&deps{cache: cache.New()})
	m.width = 80
	m.height = 30
	return m
}

func testProjects() []domain.Project {
	return []domain.Project{
		{ID: "p1", Name: "Roadmap", CreatedAt: time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)},
		{ID: "p2", Name: "Website"},
	}
}

func TestProjectsRendersList(t *testing.T) {
	m := newTestProjects()
	m, _ = m.Update(projectsLoadedMsg{projects: testProjects()})
	view := m.View()
	if !strings.Contains(view, "Roadmap") || !strings.Contains(view, "Website") {
		t.Errorf("expected project names in view, got:\n%s", view)
	}
	if !strings.Contains(view, "02 Jan 2026") {
		t.Errorf("expected formatted creation date, got:\n%s", view)
	}
}

func TestProjectsEmptyState(t *testing.T) {
	m := newTestProjects()
	m, _ = m.Update(projectsLoadedMsg{})
	if !strings.Contains(m.View(), "No projects found") {
		t.Errorf("expected empty state, got:\n%s", m.View())
	}
}

func TestProjectsStaleQueryDropped(t *testing.T) {
	m := newTestProjects()
	m.query = "web"
	m, _ = m.Update(projectsLoadedMsg{query: "", projects: testProjects()})
	if len(m.projects) != 0 {
		t.Error("result for a superseded query must be dropped")
	}
	m, _ = m.Update(projectsLoadedMsg{query: "web", projects: testProjects()})
	if len(m.projects) != 2 {
		t.Error("result for the current query must land")
	}
}

func TestProjectsSearchDebounce(t *testing.T) {
	m := newTestProjects()
	m, _ = m.Update(keyRunes("/"))
	if !m.searching {
		t.Fatal("slash should enter search mode")
	}

	m, cmd := m.Update(keyRunes("r"))
	if cmd == nil {
		t.Fatal("typing should arm the debounce timer")
	}
	staleSeq := m.searchSeq
	m, _ = m.Update(keyRunes("o"))

	// The first timer fires with a superseded seq; nothing happens.
	m, cmd = m.Update(searchDebounceMsg{seq: staleSeq})
	if cmd != nil || m.query != "" {
		t.Errorf("stale debounce fired a search, query = %q", m.query)
	}

	// The live timer commits the full input.
	m, cmd = m.Update(searchDebounceMsg{seq: m.searchSeq})
	if m.query != "ro" {
		t.Errorf("query = %q, want ro", m.query)
	}
	if cmd == nil {
		t.Error("expected a load command for the committed search")
	}
}

func TestProjectsLocalFilter(t *testing.T) {
	m := newTestProjects()
	m.projects = testProjects()
	m.query = "road"
	visible := m.filtered()
	if len(visible) != 1 || visible[0].ID != "p1" {
		t.Errorf("filtered = %+v, want just Roadmap", visible)
	}
}

func TestProjectsCreateValidation(t *testing.T) {
	m := newTestProjects()
	m, _ = m.Update(keyRunes("n"))
	if !m.naming {
		t.Fatal("n should enter naming mode")
	}
	m, _ = m.Update(keyRunes("a"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a toast command")
	}
	toast, ok := cmd().(toastMsg)
	if !ok || !toast.isErr {
		t.Fatalf("cmd() = %#v, want error toast", toast)
	}
	if !strings.Contains(toast.text, "at least 3 characters") {
		t.Errorf("toast = %q, want title length message", toast.text)
	}
}

func TestProjectsOpenSelected(t *testing.T) {
	m := newTestProjects()
	m, _ = m.Update(projectsLoadedMsg{projects: testProjects()})
	m, _ = m.Update(keyRunes("j"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.path != "/projects/p2" {
		t.Errorf("cmd() = %#v, want navigate to /projects/p2", nav)
	}
}
