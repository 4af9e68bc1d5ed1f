// Package board implements the kanban drop flow: synchronous intent capture
// from UI events, then the optimistic cache write and its commit or rollback.
// The decision logic is plain values so it tests without a terminal.
package board

import (
	"context"
	"fmt"

	"github.com/squarehq/square/internal/cache"
	"github.com/squarehq/square/pkg/domain"
)

// DropIntent is one card move captured from the UI. To is empty when the
// drag was cancelled without a destination.
type DropIntent struct {
	TaskID    string
	From      domain.Status
	To        domain.Status
	FromIndex int
	ToIndex   int
}

// NoOp reports whether the drop requires no work: cancelled drags and drops
// onto the card's own position.
func (d DropIntent) NoOp() bool {
	if d.To == "" {
		return true
	}
	return d.From == d.To && d.FromIndex == d.ToIndex
}

// TaskMover persists a task's new status. Satisfied by *client.Client.
type TaskMover interface {
	UpdateTaskStatus(ctx context.Context, projectID, taskID string, status domain.Status) error
}

// Reconciler executes drop intents against the query cache and the API.
type Reconciler struct {
	cache *cache.Cache
	api   TaskMover
}

// NewReconciler creates a reconciler over the shared cache.
func NewReconciler(c *cache.Cache, api TaskMover) *Reconciler {
	return &Reconciler{cache: c, api: api}
}

// Drop applies a drop intent: the task's status is rewritten in the cached
// project before the PATCH is issued, and the whole previous project payload
// is restored if the PATCH fails. Only column membership is persisted; order
// within a column is not.
func (r *Reconciler) Drop(ctx context.Context, projectID string, intent DropIntent) error {
	if intent.NoOp() {
		return nil
	}
	if !intent.To.Valid() {
		return fmt.Errorf("board: unknown column %q", intent.To)
	}

	key := cache.ProjectKey(projectID)
	return r.cache.Mutate(ctx, key,
		func(current any) any {
			detail, ok := current.(*domain.ProjectDetail)
			if !ok || detail == nil {
				return current
			}
			next := detail.Clone()
			for i := range next.Tasks {
				if next.Tasks[i].ID == intent.TaskID {
					next.Tasks[i].Status = intent.To
				}
			}
			return next
		},
		func(ctx context.Context) error {
			return r.api.UpdateTaskStatus(ctx, projectID, intent.TaskID, intent.To)
		},
	)
}

// Columns buckets tasks by status in the fixed board column order. Within a
// column, server-provided task order is preserved.
func Columns(tasks []domain.Task) map[domain.Status][]domain.Task {
	out := make(map[domain.Status][]domain.Task, len(domain.StatusOrder))
	for _, s := range domain.StatusOrder {
		out[s] = nil
	}
	for _, t := range tasks {
		out[t.Status] = append(out[t.Status], t)
	}
	return out
}

// Locate returns a task's column and its index within that column, or false
// when the task is not on the board.
func Locate(tasks []domain.Task, taskID string) (domain.Status, int, bool) {
	cols := Columns(tasks)
	for _, s := range domain.StatusOrder {
		for i, t := range cols[s] {
			if t.ID == taskID {
				return s, i, true
			}
		}
	}
	return "", 0, false
}
