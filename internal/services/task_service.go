// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskshield/internal/models"
	"taskshield/internal/repositories"
)

// CreateTaskInput is the caller-supplied part of a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uuid.UUID
}

// TaskUpdate carries partial-update fields; nil means keep the current value.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	DueDate     *time.Time
	ClearDue    bool
}

type TaskService interface {
	Create(ctx context.Context, creator *models.User, input CreateTaskInput) (*models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, update TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error

	ChangeStatus(ctx context.Context, actor *models.User, id uuid.UUID, to models.TaskStatus) (*models.Task, error)
	Assign(ctx context.Context, actor *models.User, id, assigneeID uuid.UUID) (*models.Task, error)
	Unassign(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Task, error)
	ListOverdue(ctx context.Context, limit int) ([]models.Task, error)
}

type taskService struct {
	repo     repositories.TaskRepository
	users    repositories.UserRepository
	audit    AuditService
	telegram *TelegramService
	log      *logrus.Logger
	now      func() time.Time
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(
	repo repositories.TaskRepository,
	users repositories.UserRepository,
	audit AuditService,
	telegram *TelegramService,
	log *logrus.Logger,
) TaskService {
	return &taskService{
		repo:     repo,
		users:    users,
		audit:    audit,
		telegram: telegram,
		log:      log,
		now:      time.Now,
	}
}

func (s *taskService) Create(ctx context.Context, creator *models.User, input CreateTaskInput) (*models.Task, error) {
	const op = "services.Task.Create"

	task, err := models.NewTask(input.Title, input.Description, creator, s.now())
	if err != nil {
		return nil, err
	}
	if input.Priority != "" {
		if !input.Priority.Valid() {
			return nil, &models.ValidationError{Field: "priority", Reason: "unknown priority: " + string(input.Priority)}
		}
		task.Priority = input.Priority
	}
	task.DueDate = input.DueDate

	if input.AssigneeID != nil {
		assignee, err := s.users.GetByID(*input.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("load assignee: %w", err)
		}
		if err := task.AssignTo(assignee); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Actor: creator, Action: models.ActionTaskCreated,
		ResourceType: "task", ResourceID: &task.ID,
		Details: task.Title,
	})
	if task.Assignee != nil {
		s.telegram.NotifyTaskAssigned(task.Title, task.Assignee.FullName())
	}
	s.log.WithField("operation", op).WithField("task_id", task.ID).Info("task created")
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

// loadForEdit fetches the task and enforces the edit policy for actor.
func (s *taskService) loadForEdit(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.CanBeEditedBy(actor) {
		return nil, ErrForbidden
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, actor *models.User, id uuid.UUID, update TaskUpdate) (*models.Task, error) {
	task, err := s.loadForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, &models.ValidationError{Field: "title", Reason: "cannot be blank"}
		}
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, &models.ValidationError{Field: "priority", Reason: "unknown priority: " + string(*update.Priority)}
		}
		task.Priority = *update.Priority
	}
	if update.ClearDue {
		task.DueDate = nil
	} else if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	task.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEvent{
		Actor: actor, Action: models.ActionTaskUpdated,
		ResourceType: "task", ResourceID: &task.ID,
	})
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if _, err := s.loadForEdit(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEvent{
		Actor: actor, Action: models.ActionTaskDeleted,
		ResourceType: "task", ResourceID: &id,
	})
	return nil
}

func (s *taskService) ChangeStatus(ctx context.Context, actor *models.User, id uuid.UUID, to models.TaskStatus) (*models.Task, error) {
	const op = "services.Task.ChangeStatus"

	task, err := s.loadForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	from := task.Status
	if err := task.ChangeStatus(to, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, task); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		Actor: actor, Action: models.ActionTaskStatus,
		ResourceType: "task", ResourceID: &task.ID,
		Details: fmt.Sprintf("%s to %s", from, to),
	})
	s.telegram.NotifyStatusChanged(task.Title, string(from), string(to))
	s.log.WithField("operation", op).
		WithField("task_id", task.ID).
		WithField("from", from).
		WithField("to", to).
		Info("task status changed")
	return task, nil
}

func (s *taskService) Assign(ctx context.Context, actor *models.User, id, assigneeID uuid.UUID) (*models.Task, error) {
	task, err := s.loadForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	assignee, err := s.users.GetByID(assigneeID)
	if err != nil {
		return nil, fmt.Errorf("load assignee: %w", err)
	}
	if err := task.AssignTo(assignee); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAssignee(ctx, task.ID, task.AssigneeID); err != nil {
		return nil, err
	}

	details := "assigned to " + assignee.Email
	if active, err := s.repo.CountActiveByAssignee(ctx, assignee.ID); err == nil {
		details = fmt.Sprintf("%s (%d active tasks)", details, active)
	}
	s.audit.Record(ctx, AuditEvent{
		Actor: actor, Action: models.ActionTaskAssigned,
		ResourceType: "task", ResourceID: &task.ID,
		Details: details,
	})
	s.telegram.NotifyTaskAssigned(task.Title, assignee.FullName())
	return task, nil
}

func (s *taskService) Unassign(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Task, error) {
	task, err := s.loadForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	task.Unassign()
	if err := s.repo.UpdateAssignee(ctx, task.ID, nil); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEvent{
		Actor: actor, Action: models.ActionTaskAssigned,
		ResourceType: "task", ResourceID: &task.ID,
		Details: "unassigned",
	})
	return task, nil
}

func (s *taskService) ListOverdue(ctx context.Context, limit int) ([]models.Task, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListOverdue(ctx, limit)
}
