package auditlog

import (
	"time"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// AuditLog is one recorded admin-visible action.
type AuditLog struct {
	ID             string                 `json:"id"`
	Action         string                 `json:"action"`
	RegistrationID string                 `json:"registrationId,omitempty"`
	Details        map[string]interface{} `json:"details"`
	IPAddress      string                 `json:"ipAddress"`
	Status         string                 `json:"status"` // success/failure
	CreatedAt      time.Time              `json:"createdAt"`
}

// AuditLogFilter represents filters for querying audit logs
type AuditLogFilter struct {
	Action         string
	Status         string
	RegistrationID string
	Page           int
	Limit          int
}

// PaginatedAuditLogs represents paginated audit log response
type PaginatedAuditLogs struct {
	Data       []AuditLog `json:"data"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}
