// internal/models/task.go
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// Допустимые переходы статусов задачи. The workflow is soft-ordered:
// todo/in_progress/review move freely (backward and self included), done
// can only be cancelled, cancelled is final.
var taskTransitions = map[TaskStatus]map[TaskStatus]bool{
	StatusTodo:       {StatusTodo: true, StatusInProgress: true, StatusReview: true, StatusDone: true, StatusCancelled: true},
	StatusInProgress: {StatusTodo: true, StatusInProgress: true, StatusReview: true, StatusDone: true, StatusCancelled: true},
	StatusReview:     {StatusTodo: true, StatusInProgress: true, StatusReview: true, StatusDone: true, StatusCancelled: true},
	StatusDone:       {StatusCancelled: true},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether the status change is legal.
func (s TaskStatus) CanTransitionTo(to TaskStatus) bool {
	nexts, ok := taskTransitions[s]
	if !ok {
		return false
	}
	return nexts[to]
}

// Valid reports whether the status is one of the enumerated set.
func (s TaskStatus) Valid() bool {
	_, ok := taskTransitions[s]
	return ok
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

var priorityLevels = map[TaskPriority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// Level returns the priority's numeric level, 0 if unknown.
func (p TaskPriority) Level() int {
	return priorityLevels[p]
}

func (p TaskPriority) Valid() bool {
	_, ok := priorityLevels[p]
	return ok
}

// IsHigherThan reports whether p outranks other.
func (p TaskPriority) IsHigherThan(other TaskPriority) bool {
	return p.Level() > other.Level()
}

// Task represents the structure of a task in the system.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`

	CreatorID  uuid.UUID  `json:"creator_id"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`

	// Read-only views of the related users, populated by callers that
	// loaded them from storage. The IDs are the source of truth.
	Creator  *User `json:"creator,omitempty"`
	Assignee *User `json:"assignee,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTask builds a task owned by creator with the default status and priority.
func NewTask(title, description string, creator *User, now time.Time) (*Task, error) {
	t := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		Priority:    PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if creator != nil {
		t.CreatorID = creator.ID
		t.Creator = creator
	}
	if err := t.ValidateNew(); err != nil {
		return nil, err
	}
	return t, nil
}

// ChangeStatus applies a legality-checked status transition. Entering done
// for the first time stamps the completion time. On rejection nothing is
// mutated.
func (t *Task) ChangeStatus(to TaskStatus, now time.Time) error {
	if !t.Status.CanTransitionTo(to) {
		return &TransitionError{From: t.Status, To: to}
	}
	t.Status = to
	if to == StatusDone && t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	t.UpdatedAt = now
	return nil
}

// IsOverdue reports whether the task has an elapsed due date. Done and
// cancelled tasks are never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone || t.Status == StatusCancelled {
		return false
	}
	return now.After(*t.DueDate)
}

// AssignTo assigns the task to user.
func (t *Task) AssignTo(user *User) error {
	if user == nil {
		return ErrNilAssignee
	}
	t.AssigneeID = &user.ID
	t.Assignee = user
	return nil
}

func (t *Task) Unassign() {
	t.AssigneeID = nil
	t.Assignee = nil
}

// CanBeEditedBy decides edit permission: the creator and the assignee may
// always edit; anyone else needs at least the manager role. Auditors pass
// that check through the role ranking (see roleRanks).
func (t *Task) CanBeEditedBy(user *User) bool {
	if user == nil {
		return false
	}
	if user.ID == t.CreatorID {
		return true
	}
	if t.AssigneeID != nil && user.ID == *t.AssigneeID {
		return true
	}
	return user.Role.HasPermission(RoleManager)
}

// ValidateNew checks the invariants required at creation time.
func (t *Task) ValidateNew() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "cannot be blank"}
	}
	if t.CreatorID == uuid.Nil {
		return &ValidationError{Field: "creator_id", Reason: "task must have a creator"}
	}
	return nil
}

// Validate checks the full set of persistence invariants. It additionally
// requires a completion timestamp, so a task passes only once it has
// reached done at least once. Create paths use ValidateNew.
func (t *Task) Validate() error {
	if err := t.ValidateNew(); err != nil {
		return err
	}
	if t.CompletedAt == nil {
		return &ValidationError{Field: "completed_at", Reason: "task must have a completed date"}
	}
	return nil
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	AssigneeID *uuid.UUID
	CreatorID  *uuid.UUID
	Status     *TaskStatus
	DueBefore  *time.Time
}
