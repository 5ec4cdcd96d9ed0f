package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Audit action labels recorded around core operations.
const (
	ActionUserLogin       = "USER_LOGIN"
	ActionUserLoginFailed = "USER_LOGIN_FAILED"
	ActionUserLocked      = "USER_LOCKED"
	ActionUserCreated     = "USER_CREATED"
	ActionUserUpdated     = "USER_UPDATED"
	ActionUserDeleted     = "USER_DELETED"
	ActionTaskCreated     = "TASK_CREATED"
	ActionTaskUpdated     = "TASK_UPDATED"
	ActionTaskDeleted     = "TASK_DELETED"
	ActionTaskStatus      = "TASK_STATUS_CHANGED"
	ActionTaskAssigned    = "TASK_ASSIGNED"
)

// AuditLog is a structured record of a system activity.
type AuditLog struct {
	ID           uuid.UUID  `json:"id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	UserEmail    string     `json:"user_email,omitempty"`
	Action       string     `json:"action"`
	ResourceType string     `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID `json:"resource_id,omitempty"`
	IPAddress    string     `json:"ip_address,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
	Details      string     `json:"details,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Description builds the human-readable audit line.
func (a *AuditLog) Description() string {
	var sb strings.Builder

	if a.UserEmail != "" {
		sb.WriteString("User: ")
		sb.WriteString(a.UserEmail)
		sb.WriteString(" ")
	} else {
		sb.WriteString("System ")
	}

	sb.WriteString("performed action: ")
	sb.WriteString(a.Action)

	if a.ResourceType != "" {
		sb.WriteString(" on ")
		sb.WriteString(a.ResourceType)
		if a.ResourceID != nil {
			sb.WriteString(" (ID: ")
			sb.WriteString(a.ResourceID.String())
			sb.WriteString(")")
		}
	}

	sb.WriteString(" at ")
	sb.WriteString(a.CreatedAt.Format(time.RFC3339))

	if a.IPAddress != "" {
		sb.WriteString(" from IP: ")
		sb.WriteString(a.IPAddress)
	}

	return sb.String()
}

// AuditFilter defines the available parameters for querying the audit trail.
type AuditFilter struct {
	UserID       *uuid.UUID
	Action       *string
	ResourceType *string
	ResourceID   *uuid.UUID
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}
