package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
)

// registrationRow is the SQL table shape used by the postgres backend.
type registrationRow struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index:idx_registrations_created_at,sort:desc"`
	UpdatedAt time.Time `gorm:"not null"`

	StartDateTime time.Time `gorm:"not null;index"`
	EndDateTime   time.Time `gorm:"not null"`

	Occasion   string `gorm:"size:32;not null"`
	Experience string `gorm:"size:32;not null"`
	Dining     string `gorm:"size:32;not null"`

	DietVeg       bool   `gorm:"not null;default:false"`
	DietHalal     bool   `gorm:"not null;default:false"`
	DietAllergies string `gorm:"type:text"`

	Flowers bool `gorm:"not null;default:false"`
	Cake    bool `gorm:"not null;default:false"`

	Budget       string `gorm:"size:16;not null"`
	PersonalNote string `gorm:"type:text"`

	Name             string `gorm:"size:255;not null"`
	Phone            string `gorm:"size:64;not null"`
	Email            string `gorm:"size:255;not null"`
	EmergencyContact string `gorm:"size:255"`

	PaymentConfirmed bool `gorm:"not null;default:false;index"`
}

func (registrationRow) TableName() string {
	return "yojana_registrations"
}

// gormColumns maps JSON field names to SQL columns.
var gormColumns = map[string]string{
	"createdAt":        "created_at",
	"startDateTime":    "start_date_time",
	"name":             "name",
	"email":            "email",
	"phone":            "phone",
	"emergencyContact": "emergency_contact",
	"occasion":         "occasion",
	"experience":       "experience",
	"dining":           "dining",
	"budget":           "budget",
	"dietAllergies":    "diet_allergies",
	"personalNote":     "personal_note",
}

func rowFrom(r *Registration) registrationRow {
	return registrationRow{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		StartDateTime:    r.StartDateTime,
		EndDateTime:      r.EndDateTime,
		Occasion:         string(r.Occasion),
		Experience:       string(r.Experience),
		Dining:           string(r.Dining),
		DietVeg:          r.DietVeg,
		DietHalal:        r.DietHalal,
		DietAllergies:    r.DietAllergies,
		Flowers:          r.Flowers,
		Cake:             r.Cake,
		Budget:           string(r.Budget),
		PersonalNote:     r.PersonalNote,
		Name:             r.Name,
		Phone:            r.Phone,
		Email:            r.Email,
		EmergencyContact: r.EmergencyContact,
		PaymentConfirmed: r.PaymentConfirmed,
	}
}

func (row registrationRow) toRegistration() Registration {
	return Registration{
		ID:               row.ID,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		StartDateTime:    row.StartDateTime,
		EndDateTime:      row.EndDateTime,
		Occasion:         Occasion(row.Occasion),
		Experience:       Experience(row.Experience),
		Dining:           Dining(row.Dining),
		DietVeg:          row.DietVeg,
		DietHalal:        row.DietHalal,
		DietAllergies:    row.DietAllergies,
		Flowers:          row.Flowers,
		Cake:             row.Cake,
		Budget:           Budget(row.Budget),
		PersonalNote:     row.PersonalNote,
		Name:             row.Name,
		Phone:            row.Phone,
		Email:            row.Email,
		EmergencyContact: row.EmergencyContact,
		PaymentConfirmed: row.PaymentConfirmed,
	}
}

type gormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db, now: time.Now}
}

// AutoMigrate creates or updates the registrations table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&registrationRow{})
}

// ===========================
// 🎯 Create
func (r *gormRepository) Create(ctx context.Context, reg *Registration) error {
	now := r.now().UTC().Truncate(time.Microsecond)
	reg.ID = uuid.NewString()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	row := rowFrom(reg)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperror.Transport("insert registration", err)
	}
	return nil
}

// ===========================
// 🔍 Get By ID
func (r *gormRepository) GetByID(ctx context.Context, id string) (*Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errNotFound
	}

	var row registrationRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperror.Transport("find registration", err)
	}
	reg := row.toRegistration()
	return &reg, nil
}

// ===========================
// 📄 List With Pagination & Search
func (r *gormRepository) List(ctx context.Context, q ListQuery) ([]Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&registrationRow{})

	switch q.Payment {
	case PaymentPaid:
		query = query.Where("payment_confirmed = ?", true)
	case PaymentPending:
		query = query.Where("payment_confirmed = ?", false)
	}
	if q.Q != "" {
		clause, args := buildSearchClause(q.Q)
		query = query.Where(clause, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperror.Transport("count registrations", err)
	}

	var rows []registrationRow
	err := query.
		Order(buildOrderClause(q)).
		Limit(q.PageSize).
		Offset(q.Skip()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperror.Transport("list registrations", err)
	}
	return toRegistrations(rows), total, nil
}

func (r *gormRepository) ListAll(ctx context.Context) ([]Registration, error) {
	var rows []registrationRow
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, apperror.Transport("list registrations", err)
	}
	return toRegistrations(rows), nil
}

// ===========================
// 🔄 Update
func (r *gormRepository) Update(ctx context.Context, id string, p *Patch) (*Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errNotFound
	}

	var out *Registration
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row registrationRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		reg := row.toRegistration()
		p.Apply(&reg)
		reg.UpdatedAt = r.now().UTC().Truncate(time.Microsecond)

		updated := rowFrom(&reg)
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		out = &reg
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, apperror.Transport("update registration", err)
	}
	return out, nil
}

// ===========================
// 🗑️ Delete
func (r *gormRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errNotFound
	}
	res := r.db.WithContext(ctx).Delete(&registrationRow{}, "id = ?", id)
	if res.Error != nil {
		return apperror.Transport("delete registration", res.Error)
	}
	if res.RowsAffected == 0 {
		return errNotFound
	}
	return nil
}

func toRegistrations(rows []registrationRow) []Registration {
	out := make([]Registration, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRegistration())
	}
	return out
}

// escapeLike makes user text literal inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildSearchClause(text string) (string, []interface{}) {
	pattern := "%" + escapeLike(text) + "%"
	parts := make([]string, 0, len(SearchFields))
	args := make([]interface{}, 0, len(SearchFields))
	for _, f := range SearchFields {
		parts = append(parts, gormColumns[f]+" ILIKE ?")
		args = append(args, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func buildOrderClause(q ListQuery) string {
	dir := "DESC"
	if q.Asc {
		dir = "ASC"
	}
	col := gormColumns[string(q.SortBy)]
	if col == "" {
		col = "created_at"
	}
	if q.SortBy == SortByName {
		col = "LOWER(name)"
	}
	return col + " " + dir + ", id " + dir
}
