package registration

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
)

const (
	ActionCreated = "REGISTRATION_CREATED"
	ActionUpdated = "REGISTRATION_UPDATED"
	ActionDeleted = "REGISTRATION_DELETED"
)

// AuditLogger records admin-visible actions. Failures are logged and never
// fail the operation that triggered them.
type AuditLogger interface {
	LogAction(ctx context.Context, action, registrationID string, details map[string]interface{}, ip, status string) error
}

type Service struct {
	Repo  Repository
	audit AuditLogger
	loc   *time.Location
	log   zerolog.Logger
}

func NewService(repo Repository, audit AuditLogger, loc *time.Location, log zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{Repo: repo, audit: audit, loc: loc, log: log}
}

// Location is the zone used to read zone-less timestamps.
func (s *Service) Location() *time.Location {
	return s.loc
}

// ===========================
// 🎯 Create
func (s *Service) Create(ctx context.Context, raw map[string]any, ip string) (*Registration, error) {
	reg, err := Normalize(raw, s.loc)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, reg); err != nil {
		s.fail(err, "create", "")
		return nil, err
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Str("occasion", string(reg.Occasion)).
		Msg("registration created")
	s.record(ctx, ActionCreated, reg.ID, map[string]interface{}{
		"name":  reg.Name,
		"email": reg.Email,
	}, ip)
	return reg, nil
}

// ===========================
// 🔍 Get
func (s *Service) Get(ctx context.Context, id string) (*Registration, error) {
	reg, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		s.fail(err, "get", id)
		return nil, err
	}
	return reg, nil
}

// ===========================
// 📄 List
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	items, total, err := s.Repo.List(ctx, q)
	if err != nil {
		s.fail(err, "list", "")
		return nil, err
	}
	if items == nil {
		items = []Registration{}
	}
	return &ListResult{Data: items, Page: q.Page, PageSize: q.PageSize, Total: total}, nil
}

// ListAll returns the full snapshot the admin dashboard computes from.
func (s *Service) ListAll(ctx context.Context) ([]Registration, error) {
	items, err := s.Repo.ListAll(ctx)
	if err != nil {
		s.fail(err, "list all", "")
		return nil, err
	}
	return items, nil
}

// ===========================
// 🔄 Update
func (s *Service) Update(ctx context.Context, id string, raw map[string]any, ip string) (*Registration, error) {
	patch, err := NormalizePatch(raw, s.loc)
	if err != nil {
		return nil, err
	}

	if patch.TouchesDates() {
		current, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			s.fail(err, "update", id)
			return nil, err
		}
		merged := *current
		patch.Apply(&merged)
		if err := CheckWindow(merged.StartDateTime, merged.EndDateTime); err != nil {
			return nil, err
		}
	}

	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		s.fail(err, "update", id)
		return nil, err
	}

	fields := make([]string, 0, len(raw))
	for k := range raw {
		fields = append(fields, k)
	}
	s.record(ctx, ActionUpdated, id, map[string]interface{}{"fields": fields}, ip)
	return updated, nil
}

// ===========================
// 🗑️ Delete
func (s *Service) Delete(ctx context.Context, id string, ip string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		s.fail(err, "delete", id)
		return err
	}
	s.log.Info().Str("registration_id", id).Msg("registration deleted")
	s.record(ctx, ActionDeleted, id, nil, ip)
	return nil
}

func (s *Service) record(ctx context.Context, action, id string, details map[string]interface{}, ip string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAction(ctx, action, id, details, ip, "success"); err != nil {
		s.log.Warn().Err(err).Str("action", action).Str("registration_id", id).Msg("audit log write failed")
	}
}

func (s *Service) fail(err error, op, id string) {
	var te *apperror.TransportError
	if !errors.As(err, &te) {
		return
	}
	s.log.Error().Err(err).Str("op", op).Str("registration_id", id).Msg("registration store failure")
}
