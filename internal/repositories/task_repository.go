package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskshield/internal/models"
)

// ErrTaskNotFound is returned when a task id matches no stored row.
var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, task *models.Task) error
	UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error
	ListOverdue(ctx context.Context, limit int) ([]models.Task, error)
	CountActiveByAssignee(ctx context.Context, assigneeID uuid.UUID) (int64, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, status, priority, due_date,
       creator_id, assignee_id, created_at, updated_at, completed_at`

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	if err := task.ValidateNew(); err != nil {
		return err
	}
	const q = `
		INSERT INTO tasks (
			id, title, description, status, priority, due_date,
			creator_id, assignee_id, created_at, updated_at, completed_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.db.ExecContext(ctx, q,
		task.ID, task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		task.CreatorID, task.AssigneeID, task.CreatedAt, task.UpdatedAt, task.CompletedAt,
	)
	return err
}

func scanTask(scan func(dest ...interface{}) error) (*models.Task, error) {
	t := &models.Task{}
	var (
		due       sql.NullTime
		assignee  sql.NullString
		completed sql.NullTime
	)
	if err := scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due,
		&t.CreatorID, &assignee, &t.CreatedAt, &t.UpdatedAt, &completed,
	); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if assignee.Valid {
		id, err := uuid.Parse(assignee.String)
		if err != nil {
			return nil, fmt.Errorf("bad assignee_id: %w", err)
		}
		t.AssigneeID = &id
	}
	if completed.Valid {
		c := completed.Time
		t.CompletedAt = &c
	}
	return t, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	baseQuery := `SELECT ` + taskColumns + ` FROM tasks`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.CreatorID != nil {
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", argID))
		args = append(args, *filter.CreatorID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, fmt.Sprintf("due_date IS NOT NULL AND due_date < $%d", argID))
		args = append(args, *filter.DueBefore)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := task.ValidateNew(); err != nil {
		return err
	}
	const q = `
		UPDATE tasks SET
			title=$1, description=$2, status=$3, priority=$4, due_date=$5,
			assignee_id=$6, updated_at=$7, completed_at=$8
		WHERE id=$9`
	_, err := r.db.ExecContext(ctx, q,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		task.AssigneeID, task.UpdatedAt, task.CompletedAt, task.ID,
	)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// UpdateStatus persists the status fields after a checked transition was
// applied to the entity.
func (r *taskRepository) UpdateStatus(ctx context.Context, task *models.Task) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status=$1, completed_at=$2, updated_at=$3 WHERE id=$4`,
		task.Status, task.CompletedAt, task.UpdatedAt, task.ID)
	return err
}

func (r *taskRepository) UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET assignee_id=$1, updated_at=NOW() WHERE id=$2`, assigneeID, id)
	return err
}

func (r *taskRepository) ListOverdue(ctx context.Context, limit int) ([]models.Task, error) {
	q := `
SELECT ` + taskColumns + `
FROM tasks
WHERE due_date IS NOT NULL
  AND due_date < NOW()
  AND status NOT IN ('done','cancelled')
ORDER BY due_date ASC
LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *taskRepository) CountActiveByAssignee(ctx context.Context, assigneeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE assignee_id = $1 AND status NOT IN ('done','cancelled')`,
		assigneeID).Scan(&count)
	return count, err
}
