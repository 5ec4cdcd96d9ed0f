package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskshield/internal/models"
)

// Validation must run before any row is touched, so an invalid entity never
// reaches the database. A nil handle proves no query is attempted.
func TestTaskRepository_ValidatesBeforeWrite(t *testing.T) {
	repo := NewTaskRepository(nil)
	ctx := context.Background()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	invalid := &models.Task{
		ID:        uuid.New(),
		Title:     "   ",
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
		CreatorID: uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var verr *models.ValidationError

	err := repo.Store(ctx, invalid)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	err = repo.Update(ctx, invalid)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	invalid.Title = "valid title"
	invalid.CreatorID = uuid.Nil
	err = repo.Update(ctx, invalid)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "creator_id", verr.Field)
}
