package auditlog

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// auditRow represents the audit_logs table
type auditRow struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"`
	Action         string         `gorm:"size:100;not null;index"`
	RegistrationID string         `gorm:"size:64;index"`
	Details        datatypes.JSON `gorm:"type:jsonb"`
	IPAddress      string         `gorm:"size:45"`
	Status         string         `gorm:"size:20;not null;index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (auditRow) TableName() string {
	return "audit_logs"
}

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&auditRow{})
}

func (r *gormRepository) Create(ctx context.Context, log *AuditLog) error {
	details, err := json.Marshal(log.Details)
	if err != nil {
		details = []byte("{}")
	}
	row := auditRow{
		Action:         log.Action,
		RegistrationID: log.RegistrationID,
		Details:        datatypes.JSON(details),
		IPAddress:      log.IPAddress,
		Status:         log.Status,
		CreatedAt:      log.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	log.ID = strconv.FormatUint(uint64(row.ID), 10)
	return nil
}

func (r *gormRepository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&auditRow{})
	if filter.Action != "" {
		query = query.Where("action ILIKE ?", "%"+filter.Action+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RegistrationID != "" {
		query = query.Where("registration_id = ?", filter.RegistrationID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []auditRow
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	logs := make([]AuditLog, 0, len(rows))
	for _, row := range rows {
		details := map[string]interface{}{}
		_ = json.Unmarshal(row.Details, &details)
		logs = append(logs, AuditLog{
			ID:             strconv.FormatUint(uint64(row.ID), 10),
			Action:         row.Action,
			RegistrationID: row.RegistrationID,
			Details:        details,
			IPAddress:      row.IPAddress,
			Status:         row.Status,
			CreatedAt:      row.CreatedAt,
		})
	}
	return logs, total, nil
}
