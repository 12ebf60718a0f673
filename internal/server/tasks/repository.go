// Package tasks implements per-user task management: creation, filtered
// listing, partial updates, archiving, and soft deletion.
package tasks

import (
	"context"
	"time"
)

// ListFilter narrows and orders a task listing. Nil pointer fields mean
// "don't filter on this". SortBy must be one of the whitelisted column
// names; anything else falls back to the default ordering.
type ListFilter struct {
	Status    *string
	Priority  *string
	Archived  *bool
	Search    *string
	DueAfter  *time.Time
	DueBefore *time.Time
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// Repository defines persistence operations for tasks. Every operation is
// scoped to the owning user and never returns soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, t *Task) (*Task, error)

	// GetByID returns common.ErrorNotFound for absent, deleted, or
	// foreign-owned tasks alike.
	GetByID(ctx context.Context, userID, id string) (*Task, error)

	List(ctx context.Context, userID string, filter ListFilter) ([]*Task, error)

	// Update persists every mutable field of t. The completion timestamp
	// is write-once at the storage layer: once set it is never replaced.
	Update(ctx context.Context, t *Task) (*Task, error)

	// SoftDelete stamps the deletion timestamp. Returns
	// common.ErrorNotFound when the task is absent or already deleted.
	SoftDelete(ctx context.Context, userID, id string) error
}
