package auditlog

import (
	"context"
	"math"
	"time"
)

type Service interface {
	LogAction(ctx context.Context, action, registrationID string, details map[string]interface{}, ip, status string) error
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// LogAction creates a new audit log entry
func (s *service) LogAction(ctx context.Context, action, registrationID string, details map[string]interface{}, ip, status string) error {
	if details == nil {
		details = make(map[string]interface{})
	}
	if status == "" {
		status = StatusSuccess
	}

	return s.repo.Create(ctx, &AuditLog{
		Action:         action,
		RegistrationID: registrationID,
		Details:        details,
		IPAddress:      ip,
		Status:         status,
		CreatedAt:      s.now().UTC(),
	})
}

// GetAuditLogs retrieves paginated audit logs with filters
func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}
