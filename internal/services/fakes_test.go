package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskshield/internal/models"
	"taskshield/internal/repositories"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		copied := *u
		r.users[u.ID] = &copied
	}
	return r
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (r *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeUserRepo) GetCount() (int, error) { return len(r.users), nil }

func (r *fakeUserRepo) GetCountByRole(role models.UserRole) (int, error) {
	count := 0
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) UpdateRefresh(userID uuid.UUID, token string, expiresAt time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.RefreshToken = &token
	u.RefreshExpiresAt = &expiresAt
	u.RefreshRevoked = false
	return nil
}

func (r *fakeUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && !u.RefreshRevoked {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &newExpiresAt
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ClearRefresh(userID uuid.UUID) error {
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.RefreshToken = nil
	u.RefreshExpiresAt = nil
	u.RefreshRevoked = true
	return nil
}

func (r *fakeUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// fakeTaskRepo is an in-memory TaskRepository.
type fakeTaskRepo struct {
	tasks map[uuid.UUID]*models.Task
}

func newFakeTaskRepo(tasks ...*models.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: map[uuid.UUID]*models.Task{}}
	for _, t := range tasks {
		copied := *t
		r.tasks[t.ID] = &copied
	}
	return r
}

func (r *fakeTaskRepo) Store(ctx context.Context, task *models.Task) error {
	if err := task.ValidateNew(); err != nil {
		return err
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if err := task.ValidateNew(); err != nil {
		return err
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(ctx context.Context, task *models.Task) error {
	stored, ok := r.tasks[task.ID]
	if !ok {
		return fmt.Errorf("task not found")
	}
	stored.Status = task.Status
	stored.CompletedAt = task.CompletedAt
	stored.UpdatedAt = task.UpdatedAt
	return nil
}

func (r *fakeTaskRepo) UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error {
	stored, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task not found")
	}
	stored.AssigneeID = assigneeID
	return nil
}

func (r *fakeTaskRepo) ListOverdue(ctx context.Context, limit int) ([]models.Task, error) {
	return nil, nil
}

func (r *fakeTaskRepo) CountActiveByAssignee(ctx context.Context, assigneeID uuid.UUID) (int64, error) {
	var count int64
	for _, t := range r.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == assigneeID &&
			t.Status != models.StatusDone && t.Status != models.StatusCancelled {
			count++
		}
	}
	return count, nil
}

// recordingAudit captures audit events instead of storing them.
type recordingAudit struct {
	events []AuditEvent
}

func (a *recordingAudit) Record(ctx context.Context, event AuditEvent) {
	a.events = append(a.events, event)
}

func (a *recordingAudit) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	return nil, nil
}

func (a *recordingAudit) ResourceHistory(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]models.AuditLog, error) {
	return nil, nil
}

func (a *recordingAudit) SecurityEvents(ctx context.Context, since time.Time) ([]models.AuditLog, error) {
	return nil, nil
}

func (a *recordingAudit) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

func (a *recordingAudit) actions() []string {
	var out []string
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}
