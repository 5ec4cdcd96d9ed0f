package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskshield/internal/models"
	"taskshield/internal/repositories"
)

var taskNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func roleUser(role models.UserRole) *models.User {
	u := models.NewUser("someone@example.com", "hash", "Some", "One", taskNow)
	u.Role = role
	return u
}

func newTaskFixture(t *testing.T) (*taskService, *fakeTaskRepo, *fakeUserRepo, *recordingAudit, *models.User) {
	t.Helper()
	creator := models.NewUser("creator@example.com", "hash", "Cora", "Creator", taskNow)
	users := newFakeUserRepo(creator)
	tasks := newFakeTaskRepo()
	audit := &recordingAudit{}

	svc := NewTaskService(tasks, users, audit, nil, quietLogger()).(*taskService)
	svc.now = func() time.Time { return taskNow }
	return svc, tasks, users, audit, creator
}

func TestTaskCreate_Defaults(t *testing.T) {
	svc, _, _, audit, creator := newTaskFixture(t)

	task, err := svc.Create(context.Background(), creator, CreateTaskInput{Title: "Ship release"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, creator.ID, task.CreatorID)
	assert.Contains(t, audit.actions(), models.ActionTaskCreated)
}

func TestTaskCreate_BlankTitle(t *testing.T) {
	svc, _, _, _, creator := newTaskFixture(t)

	for _, title := range []string{"", "   ", " \t "} {
		_, err := svc.Create(context.Background(), creator, CreateTaskInput{Title: title})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr, "title %q", title)
		assert.Equal(t, "title", verr.Field)
	}
}

func TestTaskUpdate_BlankTitleRejected(t *testing.T) {
	svc, repo, _, _, creator := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, creator, CreateTaskInput{Title: "Ship release"})
	require.NoError(t, err)

	blank := "   "
	_, err = svc.Update(ctx, creator, task.ID, TaskUpdate{Title: &blank})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	stored, _ := repo.FindByID(ctx, task.ID)
	assert.Equal(t, "Ship release", stored.Title)
}

func TestTaskCreate_UnknownPriority(t *testing.T) {
	svc, _, _, _, creator := newTaskFixture(t)

	_, err := svc.Create(context.Background(), creator, CreateTaskInput{
		Title:    "Ship release",
		Priority: models.TaskPriority("blocker"),
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "priority", verr.Field)
}

func TestTaskChangeStatus_LegalAndStamped(t *testing.T) {
	svc, repo, _, audit, creator := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, creator, CreateTaskInput{Title: "Ship release"})
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(ctx, creator, task.ID, models.StatusDone)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, taskNow, *updated.CompletedAt)

	stored, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, stored.Status)
	assert.Contains(t, audit.actions(), models.ActionTaskStatus)
}

func TestTaskChangeStatus_IllegalRejected(t *testing.T) {
	svc, repo, _, _, creator := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, creator, CreateTaskInput{Title: "Ship release"})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, creator, task.ID, models.StatusCancelled)
	require.NoError(t, err)

	// cancelled is terminal
	for _, to := range []models.TaskStatus{models.StatusTodo, models.StatusInProgress, models.StatusReview, models.StatusDone, models.StatusCancelled} {
		_, err := svc.ChangeStatus(ctx, creator, task.ID, to)
		var terr *models.TransitionError
		require.ErrorAs(t, err, &terr, "cancelled -> %s must fail", to)
		assert.Equal(t, models.StatusCancelled, terr.From)
	}

	stored, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestTaskChangeStatus_DoneOnlyCancellable(t *testing.T) {
	svc, _, _, _, creator := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, creator, CreateTaskInput{Title: "Ship release"})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, creator, task.ID, models.StatusDone)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, creator, task.ID, models.StatusInProgress)
	var terr *models.TransitionError
	require.ErrorAs(t, err, &terr)

	_, err = svc.ChangeStatus(ctx, creator, task.ID, models.StatusCancelled)
	assert.NoError(t, err)
}

func TestTaskEditPolicy(t *testing.T) {
	svc, _, users, _, creator := newTaskFixture(t)
	ctx := context.Background()

	assignee := roleUser(models.RoleUser)
	require.NoError(t, users.Create(assignee))

	task, err := svc.Create(ctx, creator, CreateTaskInput{Title: "Ship release", AssigneeID: &assignee.ID})
	require.NoError(t, err)

	// stranger with plain role is rejected
	stranger := roleUser(models.RoleUser)
	_, err = svc.ChangeStatus(ctx, stranger, task.ID, models.StatusInProgress)
	assert.ErrorIs(t, err, ErrForbidden)

	// assignee, manager and auditor all pass
	for _, actor := range []*models.User{assignee, roleUser(models.RoleManager), roleUser(models.RoleAuditor)} {
		_, err = svc.ChangeStatus(ctx, actor, task.ID, models.StatusInProgress)
		assert.NoError(t, err, "role %s", actor.Role)
	}

	_, err = svc.Update(ctx, stranger, task.ID, TaskUpdate{})
	assert.ErrorIs(t, err, ErrForbidden)
	err = svc.Delete(ctx, stranger, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTaskOperations_MissingTask(t *testing.T) {
	svc, _, _, _, creator := newTaskFixture(t)
	ctx := context.Background()
	missing := uuid.New()

	_, err := svc.Update(ctx, creator, missing, TaskUpdate{})
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
	_, err = svc.ChangeStatus(ctx, creator, missing, models.StatusDone)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
	err = svc.Delete(ctx, creator, missing)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
}

func TestTaskAssignUnassign(t *testing.T) {
	svc, repo, users, audit, creator := newTaskFixture(t)
	ctx := context.Background()

	assignee := roleUser(models.RoleUser)
	require.NoError(t, users.Create(assignee))

	task, err := svc.Create(ctx, creator, CreateTaskInput{Title: "Ship release"})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, creator, task.ID, assignee.ID)
	require.NoError(t, err)
	stored, _ := repo.FindByID(ctx, task.ID)
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, assignee.ID, *stored.AssigneeID)
	assert.Contains(t, audit.actions(), models.ActionTaskAssigned)

	_, err = svc.Unassign(ctx, creator, task.ID)
	require.NoError(t, err)
	stored, _ = repo.FindByID(ctx, task.ID)
	assert.Nil(t, stored.AssigneeID)
}

func TestTaskUpdate_Partial(t *testing.T) {
	svc, repo, _, _, creator := newTaskFixture(t)
	ctx := context.Background()

	due := taskNow.Add(48 * time.Hour)
	task, err := svc.Create(ctx, creator, CreateTaskInput{Title: "Ship release", DueDate: &due})
	require.NoError(t, err)

	newTitle := "Ship hotfix"
	prio := models.PriorityUrgent
	_, err = svc.Update(ctx, creator, task.ID, TaskUpdate{Title: &newTitle, Priority: &prio})
	require.NoError(t, err)

	stored, _ := repo.FindByID(ctx, task.ID)
	assert.Equal(t, "Ship hotfix", stored.Title)
	assert.Equal(t, models.PriorityUrgent, stored.Priority)
	require.NotNil(t, stored.DueDate, "untouched fields keep their values")

	_, err = svc.Update(ctx, creator, task.ID, TaskUpdate{ClearDue: true})
	require.NoError(t, err)
	stored, _ = repo.FindByID(ctx, task.ID)
	assert.Nil(t, stored.DueDate)
}
