package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"taskshield/internal/models"
	"taskshield/internal/repositories"
	"taskshield/internal/services"
)

func TestWriteTaskError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"task not found", repositories.ErrTaskNotFound, http.StatusNotFound},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"illegal transition", &models.TransitionError{From: models.StatusCancelled, To: models.StatusTodo}, http.StatusConflict},
		{"validation", &models.ValidationError{Field: "title", Reason: "cannot be blank"}, http.StatusBadRequest},
		{"nil assignee", models.ErrNilAssignee, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeTaskError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
