package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gestortareas/internal/common"
)

// CreateParams carries the fields of a new task. Status, Priority, and
// OrderNumber fall back to their defaults when nil.
type CreateParams struct {
	Title        string
	Description  string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ReminderDate *time.Time
	OrderNumber  *int
}

// UpdateParams carries the optional fields of a partial update; nil means
// "leave unchanged".
type UpdateParams struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ReminderDate *time.Time
	OrderNumber  *int
	IsArchived   *bool
}

// Service implements task operations for a single authenticated user.
// Ownership is enforced on every call; a task belonging to someone else is
// indistinguishable from a missing one.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new task. Omitted fields default to the pending state,
// medium priority, and order number zero. A task created directly in the
// completed state gets its completion timestamp stamped immediately.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Task, error) {

	task := &Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Status:      StatusPending,
		Priority:    PriorityMedium,
	}

	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.OrderNumber != nil {
		task.OrderNumber = *params.OrderNumber
	}
	task.DueDate = params.DueDate
	task.ReminderDate = params.ReminderDate

	if task.Status == StatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}

	task, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return task, nil
}

// List returns the user's tasks narrowed by filter.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]*Task, error) {
	tasks, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return tasks, nil
}

// GetByID returns one task of the user, or common.ErrorNotFound.
func (s *Service) GetByID(ctx context.Context, userID, id string) (*Task, error) {
	task, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return task, nil
}

// Update applies the supplied fields only. The first transition into the
// completed state stamps the completion timestamp; later transitions leave
// it untouched.
func (s *Service) Update(ctx context.Context, userID, id string, params UpdateParams) (*Task, error) {

	task, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	if params.ReminderDate != nil {
		task.ReminderDate = params.ReminderDate
	}
	if params.OrderNumber != nil {
		task.OrderNumber = *params.OrderNumber
	}
	if params.IsArchived != nil {
		task.IsArchived = *params.IsArchived
	}

	if task.Status == StatusCompleted && task.CompletedAt == nil {
		now := time.Now()
		task.CompletedAt = &now
	}

	task, err = s.repo.Update(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return task, nil
}

// Delete soft-deletes a task. A deleted task disappears from every read
// path but stays in storage.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.repo.SoftDelete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// ToggleArchive flips the archived flag and returns the updated task.
// Archiving is independent of state: a task in any state can be archived.
func (s *Service) ToggleArchive(ctx context.Context, userID, id string) (*Task, error) {

	task, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	task.IsArchived = !task.IsArchived

	task, err = s.repo.Update(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return task, nil
}
