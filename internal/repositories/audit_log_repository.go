package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskshield/internal/models"
)

// securityActions are the audit actions surfaced by FindSecurityEvents.
var securityActions = []string{
	models.ActionUserLogin,
	models.ActionUserLoginFailed,
	models.ActionUserLocked,
}

type AuditLogRepository interface {
	Store(ctx context.Context, entry *models.AuditLog) error
	FindAll(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
	FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]models.AuditLog, error)
	FindSecurityEvents(ctx context.Context, since time.Time) ([]models.AuditLog, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

const auditColumns = `id, user_id, user_email, action, resource_type, resource_id,
       ip_address, user_agent, details, created_at`

func (r *auditLogRepository) Store(ctx context.Context, entry *models.AuditLog) error {
	const q = `
		INSERT INTO audit_logs (
			id, user_id, user_email, action, resource_type, resource_id,
			ip_address, user_agent, details, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.db.ExecContext(ctx, q,
		entry.ID, entry.UserID, entry.UserEmail, entry.Action, entry.ResourceType,
		entry.ResourceID, entry.IPAddress, entry.UserAgent, entry.Details, entry.CreatedAt,
	)
	return err
}

func scanAuditRows(rows *sql.Rows) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for rows.Next() {
		var (
			a      models.AuditLog
			userID sql.NullString
			resID  sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &userID, &a.UserEmail, &a.Action, &a.ResourceType, &resID,
			&a.IPAddress, &a.UserAgent, &a.Details, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		if userID.Valid {
			id, err := uuid.Parse(userID.String)
			if err != nil {
				return nil, fmt.Errorf("bad user_id: %w", err)
			}
			a.UserID = &id
		}
		if resID.Valid {
			id, err := uuid.Parse(resID.String)
			if err != nil {
				return nil, fmt.Errorf("bad resource_id: %w", err)
			}
			a.ResourceID = &id
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *auditLogRepository) FindAll(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	baseQuery := `SELECT ` + auditColumns + ` FROM audit_logs`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argID))
		args = append(args, *filter.UserID)
		argID++
	}
	if filter.Action != nil {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argID))
		args = append(args, *filter.Action)
		argID++
	}
	if filter.ResourceType != nil {
		conditions = append(conditions, fmt.Sprintf("resource_type = $%d", argID))
		args = append(args, *filter.ResourceType)
		argID++
	}
	if filter.ResourceID != nil {
		conditions = append(conditions, fmt.Sprintf("resource_id = $%d", argID))
		args = append(args, *filter.ResourceID)
		argID++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argID))
		args = append(args, *filter.From)
		argID++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argID))
		args = append(args, *filter.To)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		baseQuery += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *auditLogRepository) FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]models.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs
		 WHERE resource_type = $1 AND resource_id = $2
		 ORDER BY created_at DESC`,
		resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *auditLogRepository) FindSecurityEvents(ctx context.Context, since time.Time) ([]models.AuditLog, error) {
	placeholders := make([]string, len(securityActions))
	args := make([]interface{}, 0, len(securityActions)+1)
	for i, action := range securityActions {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, action)
	}
	args = append(args, since)

	q := fmt.Sprintf(
		`SELECT %s FROM audit_logs WHERE action IN (%s) AND created_at >= $%d ORDER BY created_at DESC`,
		auditColumns, strings.Join(placeholders, ","), len(securityActions)+1,
	)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *auditLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
