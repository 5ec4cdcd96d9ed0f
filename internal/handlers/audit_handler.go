package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskshield/internal/models"
	"taskshield/internal/services"
)

type AuditHandler struct {
	audit   services.AuditService
	reports *services.ReportService
	log     *logrus.Logger
}

func NewAuditHandler(audit services.AuditService, reports *services.ReportService, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, reports: reports, log: log}
}

// GET /audit
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.AuditFilter

	if v, ok := c.GetQuery("user_id"); ok {
		if id, err := uuid.Parse(v); err == nil {
			filter.UserID = &id
		}
	}
	if v, ok := c.GetQuery("action"); ok {
		filter.Action = &v
	}
	if v, ok := c.GetQuery("resource_type"); ok {
		filter.ResourceType = &v
	}
	if v, ok := c.GetQuery("from"); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v, ok := c.GetQuery("to"); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}

	entries, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query audit trail"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /audit/resource/:type/:id
func (h *AuditHandler) ResourceHistory(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	entries, err := h.audit.ResourceHistory(c.Request.Context(), c.Param("type"), resourceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query audit trail"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /audit/security
func (h *AuditHandler) SecurityEvents(c *gin.Context) {
	since := time.Now().Add(-24 * time.Hour)
	if v, ok := c.GetQuery("since"); ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since (RFC3339)"})
			return
		}
		since = t
	}
	entries, err := h.audit.SecurityEvents(c.Request.Context(), since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query security events"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /audit/report?from=...&to=...
func (h *AuditHandler) DownloadReport(c *gin.Context) {
	const op = "handlers.Audit.DownloadReport"
	log := h.log.WithField("operation", op)

	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if v, ok := c.GetQuery("from"); ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from (RFC3339)"})
			return
		}
		from = t
	}
	if v, ok := c.GetQuery("to"); ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to (RFC3339)"})
			return
		}
		to = t
	}

	path, err := h.reports.GenerateAuditReport(c.Request.Context(), from, to)
	if err != nil {
		log.WithError(err).Error("report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}
	c.FileAttachment(path, "audit_report.pdf")
}

// GET /audit/report/security?since=...
func (h *AuditHandler) DownloadSecurityReport(c *gin.Context) {
	const op = "handlers.Audit.DownloadSecurityReport"
	log := h.log.WithField("operation", op)

	since := time.Now().AddDate(0, 0, -7)
	if v, ok := c.GetQuery("since"); ok {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since (RFC3339)"})
			return
		}
		since = t
	}

	path, err := h.reports.GenerateSecurityReport(c.Request.Context(), since)
	if err != nil {
		log.WithError(err).Error("report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}
	c.FileAttachment(path, "security_report.pdf")
}
