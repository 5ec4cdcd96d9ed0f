package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskshield/internal/models"
	"taskshield/internal/repositories"
)

// AuditEvent carries everything the caller knows about one activity.
type AuditEvent struct {
	Actor        *models.User
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	IPAddress    string
	UserAgent    string
	Details      string
}

type AuditService interface {
	// Record writes one audit entry. Failures are logged, never propagated:
	// an audit miss must not roll back the operation it describes.
	Record(ctx context.Context, event AuditEvent)
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
	ResourceHistory(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]models.AuditLog, error)
	SecurityEvents(ctx context.Context, since time.Time) ([]models.AuditLog, error)
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type auditService struct {
	repo repositories.AuditLogRepository
	log  *logrus.Logger
	now  func() time.Time
}

func NewAuditService(repo repositories.AuditLogRepository, log *logrus.Logger) AuditService {
	return &auditService{repo: repo, log: log, now: time.Now}
}

func (s *auditService) Record(ctx context.Context, event AuditEvent) {
	const op = "services.Audit.Record"

	entry := &models.AuditLog{
		ID:           uuid.New(),
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		UserAgent:    event.UserAgent,
		Details:      event.Details,
		CreatedAt:    s.now(),
	}
	if event.Actor != nil {
		entry.UserID = &event.Actor.ID
		entry.UserEmail = event.Actor.Email
	}

	if err := s.repo.Store(ctx, entry); err != nil {
		s.log.WithField("operation", op).WithError(err).
			WithField("action", event.Action).Warn("failed to store audit entry")
		return
	}
	s.log.WithField("operation", op).Debug(entry.Description())
}

func (s *auditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *auditService) ResourceHistory(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]models.AuditLog, error) {
	return s.repo.FindByResource(ctx, resourceType, resourceID)
}

func (s *auditService) SecurityEvents(ctx context.Context, since time.Time) ([]models.AuditLog, error) {
	return s.repo.FindSecurityEvents(ctx, since)
}

func (s *auditService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteBefore(ctx, s.now().Add(-retention))
}
