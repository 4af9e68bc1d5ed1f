package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/squarehq/square/pkg/domain"
)

func newTestAddTask() *addTaskModel {
	m := newAddTaskModel(&deps{}, "p1", domain.StatusInProgress)
	return &m
}

func TestAddTaskDefaultStatus(t *testing.T) {
	m := newTestAddTask()
	if m.status != domain.StatusInProgress {
		t.Errorf("status = %q, want the originating column", m.status)
	}
}

func TestAddTaskStatusCycle(t *testing.T) {
	m := newTestAddTask()
	m.focus = taskFieldStatus
	m.handleKey(keyRunes("l"))
	if m.status != domain.StatusDone {
		t.Errorf("status = %q, want done after cycling right", m.status)
	}
	m.handleKey(keyRunes("l"))
	if m.status != domain.StatusTodo {
		t.Errorf("status = %q, want wrap to todo", m.status)
	}
	m.handleKey(keyRunes("h"))
	if m.status != domain.StatusDone {
		t.Errorf("status = %q, want done after cycling left", m.status)
	}
}

func TestAddTaskAssigneeCycle(t *testing.T) {
	m := newTestAddTask()
	m.setUsers([]domain.User{
		{ID: "u1", Name: "Ada"},
		{ID: "u2", Name: "Grace"},
	}, nil)
	m.focus = taskFieldAssignee
	m.handleKey(keyRunes("l"))
	if m.userIdx != 1 {
		t.Errorf("userIdx = %d, want 1", m.userIdx)
	}
	m.handleKey(keyRunes("l"))
	if m.userIdx != 0 {
		t.Errorf("userIdx = %d, want wrap to 0", m.userIdx)
	}
}

func TestAddTaskSetUsersError(t *testing.T) {
	m := newTestAddTask()
	m.setUsers(nil, errors.New("boom"))
	if m.usersErr == "" {
		t.Error("expected a users error message")
	}
	if !strings.Contains(m.View(), m.usersErr) {
		t.Error("users error not rendered")
	}
}

func TestAddTaskValidationToast(t *testing.T) {
	m := newTestAddTask()
	done, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlS})
	if done {
		t.Error("validation failure must not close the dialog")
	}
	if m.submitting {
		t.Error("invalid form must not start submitting")
	}
	if cmd == nil {
		t.Fatal("expected a toast command")
	}
	toast, ok := cmd().(toastMsg)
	if !ok || !toast.isErr {
		t.Fatalf("cmd() = %#v, want error toast", toast)
	}
	if !strings.Contains(toast.text, "Title") {
		t.Errorf("toast = %q, want the title message first", toast.text)
	}
}

func TestAddTaskEscCloses(t *testing.T) {
	m := newTestAddTask()
	done, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if !done {
		t.Error("esc should close the dialog")
	}
}

func TestAddTaskTyping(t *testing.T) {
	m := newTestAddTask()
	for _, r := range "Ship it" {
		m.handleKey(keyRunes(string(r)))
	}
	if m.title != "Ship it" {
		t.Errorf("title = %q, want typed text", m.title)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.title != "Ship i" {
		t.Errorf("title = %q after backspace", m.title)
	}
}
