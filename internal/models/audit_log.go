package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of audit event
type EventType string

const (
	// Login events
	EventLoginSucceeded EventType = "LOGIN_SUCCEEDED"
	EventLoginFailed    EventType = "LOGIN_FAILED"

	// Certificate lifecycle events
	EventCertificateReloaded     EventType = "CERTIFICATE_RELOADED"
	EventCertificateReloadFailed EventType = "CERTIFICATE_RELOAD_FAILED"

	// Security events
	EventRateLimitExceeded EventType = "RATE_LIMIT_EXCEEDED"
)

// EventSeverity represents the severity level of an audit event
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "INFO"
	SeverityWarning  EventSeverity = "WARNING"
	SeverityError    EventSeverity = "ERROR"
	SeverityCritical EventSeverity = "CRITICAL"
)

// AuditDetails stores additional event-specific information as JSON
type AuditDetails map[string]any

// Value implements the driver.Valuer interface for database storage
func (a AuditDetails) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL, which is valid here
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface for database retrieval
func (a *AuditDetails) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal AuditDetails value: %v", value)
	}

	result := make(AuditDetails)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*a = result
	return nil
}

// AuditLog is one recorded login or admin event. Passwords and tokens are
// never stored.
type AuditLog struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	// Event information
	EventType EventType     `gorm:"type:varchar(50);index;not null" json:"event_type"`
	EventTime time.Time     `gorm:"index;not null"                  json:"event_time"`
	Severity  EventSeverity `gorm:"type:varchar(20);not null"       json:"severity"`

	// Login information
	Method     string `gorm:"type:varchar(20);index" json:"method,omitempty"`
	Username   string `gorm:"type:varchar(255);index" json:"username,omitempty"`
	Success    bool   `gorm:"index;not null"         json:"success"`
	Stage      string `gorm:"type:varchar(20)"       json:"stage,omitempty"`
	Reason     string `gorm:"type:varchar(50);index" json:"reason,omitempty"`
	DurationMs int64  `gorm:"not null;default:0"     json:"duration_ms"`

	// Federated identity (non-secret)
	FederatedArn string `gorm:"type:varchar(255)" json:"federated_arn,omitempty"`

	ErrorMessage string       `gorm:"type:text" json:"error_message,omitempty"`
	Details      AuditDetails `gorm:"type:json" json:"details,omitempty"`

	// Request metadata
	ClientIP  string `gorm:"type:varchar(45);index" json:"client_ip"` // Support IPv6
	UserAgent string `gorm:"type:varchar(500)"      json:"user_agent,omitempty"`
	RequestID string `gorm:"type:varchar(64);index" json:"request_id,omitempty"`

	// Timestamps (no UpdatedAt - immutable logs)
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}
