package store

import (
	"time"

	"github.com/go-authgate/authbridge/internal/models"
)

// AuditLogFilters contains filter criteria for querying audit logs
type AuditLogFilters struct {
	EventType models.EventType `json:"event_type,omitempty"`
	Username  string           `json:"username,omitempty"`
	Method    string           `json:"method,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Success   *bool            `json:"success,omitempty"`
	StartTime time.Time        `json:"start_time,omitzero"`
	EndTime   time.Time        `json:"end_time,omitzero"`
	ClientIP  string           `json:"client_ip,omitempty"`
	Search    string           `json:"search,omitempty"` // Search in username and error_message
}

// AuditLogStats contains statistics about audit logs
type AuditLogStats struct {
	TotalEvents    int64                      `json:"total_events"`
	EventsByType   map[models.EventType]int64 `json:"events_by_type"`
	EventsByReason map[string]int64           `json:"events_by_reason"`
	SuccessCount   int64                      `json:"success_count"`
	FailureCount   int64                      `json:"failure_count"`
}
