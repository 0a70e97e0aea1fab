package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-authgate/authbridge/internal/models"
	"github.com/go-authgate/authbridge/internal/services"
	"github.com/go-authgate/authbridge/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	// queryValueTrue represents the string "true" used in query parameters
	queryValueTrue = "true"

	// exportLimit caps the number of rows in a CSV export.
	exportLimit = 10000
)

// AuditHandler handles audit log operations
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// parseAuditFilters reads the filter query parameters shared by list and export.
func parseAuditFilters(c *gin.Context) store.AuditLogFilters {
	filters := store.AuditLogFilters{
		EventType: models.EventType(c.Query("event_type")),
		Username:  c.Query("username"),
		Method:    c.Query("method"),
		Reason:    c.Query("reason"),
		ClientIP:  c.Query("client_ip"),
		Search:    c.Query("search"),
	}

	if successStr := c.Query("success"); successStr != "" {
		success := successStr == queryValueTrue
		filters.Success = &success
	}

	filters.StartTime, filters.EndTime = parseTimeRange(c)
	return filters
}

func parseTimeRange(c *gin.Context) (start, end time.Time) {
	if s := c.Query("start_time"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			start = t
		}
	}
	if s := c.Query("end_time"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			end = t
		}
	}
	return start, end
}

// ListAuditLogs retrieves audit logs with pagination and filtering
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := store.NewPaginationParams(page, pageSize, c.Query("search"))

	logs, pagination, err := h.auditService.GetAuditLogs(
		c.Request.Context(), params, parseAuditFilters(c),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":       logs,
		"pagination": pagination,
	})
}

// GetAuditLogStats returns statistics about audit logs
func (h *AuditHandler) GetAuditLogStats(c *gin.Context) {
	startTime, endTime := parseTimeRange(c)

	// Default to last 30 days if no time range specified
	if startTime.IsZero() && endTime.IsZero() {
		endTime = time.Now()
		startTime = endTime.Add(-30 * 24 * time.Hour)
	}

	stats, err := h.auditService.GetAuditLogStats(c.Request.Context(), startTime, endTime)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "Failed to retrieve audit log statistics"},
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":      stats,
		"start_time": startTime,
		"end_time":   endTime,
	})
}

// ExportAuditLogs exports audit logs as CSV
func (h *AuditHandler) ExportAuditLogs(c *gin.Context) {
	params := store.PaginationParams{Page: 1, PageSize: exportLimit}

	logs, _, err := h.auditService.GetAuditLogs(c.Request.Context(), params, parseAuditFilters(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(
		"attachment; filename=audit_logs_%s.csv",
		time.Now().Format("2006-01-02"),
	))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Event Time",
		"Event Type",
		"Severity",
		"Method",
		"Username",
		"Success",
		"Stage",
		"Reason",
		"Duration (ms)",
		"Client IP",
		"Request ID",
		"Error Message",
	}); err != nil {
		return
	}

	for _, log := range logs {
		successStr := "Yes"
		if !log.Success {
			successStr = "No"
		}

		if err := writer.Write([]string{
			log.EventTime.Format(time.RFC3339),
			string(log.EventType),
			string(log.Severity),
			log.Method,
			log.Username,
			successStr,
			log.Stage,
			log.Reason,
			strconv.FormatInt(log.DurationMs, 10),
			log.ClientIP,
			log.RequestID,
			log.ErrorMessage,
		}); err != nil {
			return
		}
	}
}
