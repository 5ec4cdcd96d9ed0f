package services

import (
	"context"
	"fmt"
	"time"

	"taskshield/internal/models"
	"taskshield/internal/pdf"
)

// ReportService turns the audit trail into downloadable PDF reports.
type ReportService struct {
	audit AuditService
	gen   pdf.Generator
	now   func() time.Time
}

func NewReportService(audit AuditService, gen pdf.Generator) *ReportService {
	return &ReportService{audit: audit, gen: gen, now: time.Now}
}

// GenerateAuditReport renders all audit entries in [from, to] and returns
// the path of the written PDF.
func (s *ReportService) GenerateAuditReport(ctx context.Context, from, to time.Time) (string, error) {
	entries, err := s.audit.List(ctx, models.AuditFilter{
		From:  &from,
		To:    &to,
		Limit: 5000,
	})
	if err != nil {
		return "", fmt.Errorf("load audit entries: %w", err)
	}

	return s.gen.GenerateAuditReport(pdf.AuditReportData{
		Title:     "Compliance audit trail",
		From:      from,
		To:        to,
		Entries:   entries,
		CreatedAt: s.now(),
	})
}

// GenerateSecurityReport renders the security-relevant events since the
// given time (logins, failures, lockouts).
func (s *ReportService) GenerateSecurityReport(ctx context.Context, since time.Time) (string, error) {
	entries, err := s.audit.SecurityEvents(ctx, since)
	if err != nil {
		return "", fmt.Errorf("load security events: %w", err)
	}

	now := s.now()
	return s.gen.GenerateAuditReport(pdf.AuditReportData{
		Title:     "Security events",
		From:      since,
		To:        now,
		Entries:   entries,
		CreatedAt: now,
		Filename:  fmt.Sprintf("security_report_%s.pdf", now.Format("20060102_150405")),
	})
}
