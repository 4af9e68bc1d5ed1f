package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/internal/board"
	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/pkg/domain"
)

// recordingMover counts status updates and can be told to fail.
type recordingMover struct {
	calls int
	err   error
}

func (r *recordingMover) UpdateTaskStatus(_ context.Context, _, _ string, _ domain.Status) error {
	r.calls++
	return r.err
}

func newTestBoard(mover board.TaskMover) (boardModel, *cache.Cache) {
	c := cache.New()
	d := &deps{cache: c, rec: board.NewReconciler(c, mover)}
	m := newBoardModel(d)
	m.width = 100
	m.height = 30
	return m, c
}

func testDetail() *domain.ProjectDetail {
	return &domain.ProjectDetail{
		ID:   "p1",
		Name: "Roadmap",
		Tasks: []domain.Task{
			{ID: "t1", Title: "Design", Status: domain.StatusTodo, Description: "Sketch the flows"},
			{ID: "t2", Title: "Build", Status: domain.StatusTodo},
			{ID: "t3", Title: "Review", Status: domain.StatusInProgress},
		},
		Memberships: []domain.Membership{{ID: "u1", Name: "Ada", IsOwner: true}},
	}
}

func loadedBoard(t *testing.T, mover board.TaskMover) (boardModel, *cache.Cache) {
	t.Helper()
	m, c := newTestBoard(mover)
	detail := testDetail()
	c.Put(cache.ProjectKey("p1"), detail)
	m.projectID = "p1"
	m, _ = m.Update(boardLoadedMsg{projectID: "p1", detail: detail})
	return m, c
}

func TestBoardRendersColumns(t *testing.T) {
	m, _ := loadedBoard(t, &recordingMover{})
	view := m.View()
	for _, want := range []string{"Roadmap", "To Do", "In Progress", "Done", "Design", "Review", "Ada"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in board view, got:\n%s", want, view)
		}
	}
	if !strings.Contains(view, "No tasks") {
		t.Errorf("empty done column should render placeholder, got:\n%s", view)
	}
}

func TestBoardGrabMoveDrop(t *testing.T) {
	mover := &recordingMover{}
	m, c := loadedBoard(t, mover)

	m, _ = m.Update(keyRunes(" ")) // grab t1
	if !m.grabbed || m.grabbedTask != "t1" {
		t.Fatalf("grabbed = %v task = %q, want t1 grabbed", m.grabbed, m.grabbedTask)
	}

	m, _ = m.Update(keyRunes("l")) // carry to in-progress
	m, cmd := m.Update(keyRunes(" "))
	if m.grabbed {
		t.Error("still grabbed after drop")
	}
	if cmd == nil {
		t.Fatal("expected a reconcile command")
	}

	// The local mirror moves the card before the network settles.
	col, _, ok := board.Locate(m.detail.Tasks, "t1")
	if !ok || col != domain.StatusInProgress {
		t.Errorf("t1 in %q before settle, want in-progress", col)
	}

	// Run the command; the drop settles into the cache.
	msg := cmd()
	settled, ok := msg.(dropSettledMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want dropSettledMsg", msg)
	}
	if settled.err != nil {
		t.Fatalf("drop error: %v", settled.err)
	}
	if mover.calls != 1 {
		t.Errorf("network calls = %d, want 1", mover.calls)
	}

	m, _ = m.Update(settled)
	data, _ := c.Peek(cache.ProjectKey("p1"))
	col, _, _ = board.Locate(data.(*domain.ProjectDetail).Tasks, "t1")
	if col != domain.StatusInProgress {
		t.Errorf("cached t1 in %q after settle, want in-progress", col)
	}
	_ = m
}

func TestBoardDropInPlaceIsNoOp(t *testing.T) {
	mover := &recordingMover{}
	m, _ := loadedBoard(t, mover)

	m, _ = m.Update(keyRunes(" "))
	m, cmd := m.Update(keyRunes(" "))
	if cmd != nil {
		t.Error("drop onto own position should produce no command")
	}
	if mover.calls != 0 {
		t.Errorf("network calls = %d, want 0", mover.calls)
	}
	_ = m
}

func TestBoardDropRollback(t *testing.T) {
	mover := &recordingMover{err: errors.New("server said no")}
	m, c := loadedBoard(t, mover)

	m, _ = m.Update(keyRunes(" "))
	m, _ = m.Update(keyRunes("l"))
	m, cmd := m.Update(keyRunes(" "))
	if cmd == nil {
		t.Fatal("expected a reconcile command")
	}

	settled := cmd().(dropSettledMsg)
	if settled.err == nil {
		t.Fatal("expected commit failure")
	}
	m, toast := m.Update(settled)
	if toast == nil {
		t.Error("expected an error toast after rollback")
	}

	// The screen re-reads the cache, which holds the restored snapshot.
	col, idx, ok := board.Locate(m.detail.Tasks, "t1")
	if !ok || col != domain.StatusTodo || idx != 0 {
		t.Errorf("t1 at %q[%d] after rollback, want todo[0]", col, idx)
	}
	data, _ := c.Peek(cache.ProjectKey("p1"))
	if col, _, _ := board.Locate(data.(*domain.ProjectDetail).Tasks, "t1"); col != domain.StatusTodo {
		t.Errorf("cached t1 in %q after rollback, want todo", col)
	}
}

func TestBoardEscCancelsGrab(t *testing.T) {
	m, _ := loadedBoard(t, &recordingMover{})
	m, _ = m.Update(keyRunes(" "))
	m, _ = m.Update(keyRunes("l"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.grabbed {
		t.Error("esc should cancel the grab")
	}
	if cmd != nil {
		t.Error("cancelling a grab should not navigate")
	}
	if m.col != 0 || m.row != 0 {
		t.Errorf("cursor at (%d,%d), want back at the grabbed card", m.col, m.row)
	}
}

func TestBoardPeekOverlay(t *testing.T) {
	m, _ := loadedBoard(t, &recordingMover{})
	m, _ = m.Update(keyRunes("p"))
	if m.peek == nil {
		t.Fatal("peek overlay not open")
	}
	view := m.View()
	if !strings.Contains(view, "Sketch the flows") {
		t.Errorf("expected task description in peek, got:\n%s", view)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.peek != nil {
		t.Error("esc should close the peek overlay")
	}
}

func TestBoardStaleLoadDropped(t *testing.T) {
	m, _ := loadedBoard(t, &recordingMover{})
	other := &domain.ProjectDetail{ID: "p2", Name: "Other"}
	m, _ = m.Update(boardLoadedMsg{projectID: "p2", detail: other})
	if m.detail.ID != "p1" {
		t.Error("load result for another project overwrote the screen")
	}
}

func TestBoardAddTaskOverlay(t *testing.T) {
	m, _ := loadedBoard(t, &recordingMover{})
	m, cmd := m.Update(keyRunes("a"))
	if m.addTask == nil {
		t.Fatal("add-task dialog not open")
	}
	if cmd == nil {
		t.Error("expected a users load command")
	}
	if m.addTask.status != domain.StatusTodo {
		t.Errorf("default status = %q, want the cursor's column", m.addTask.status)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.addTask != nil {
		t.Error("esc should close the dialog")
	}
}
