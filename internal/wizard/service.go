package wizard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/internal/registration"
)

// Submitter persists a finished draft. registration.Service satisfies it.
type Submitter interface {
	Create(ctx context.Context, raw map[string]any, ip string) (*registration.Registration, error)
}

// View is what clients see of a session.
type View struct {
	ID             string `json:"id"`
	Step           Step   `json:"step"`
	Draft          Draft  `json:"draft"`
	CanNext        bool   `json:"canNext"`
	CanBack        bool   `json:"canBack"`
	Submitting     bool   `json:"submitting"`
	Submitted      bool   `json:"submitted"`
	RegistrationID string `json:"registrationId,omitempty"`
	LastError      string `json:"lastError,omitempty"`
}

type Service struct {
	store     SessionStore
	submitter Submitter
	loc       *time.Location
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(store SessionStore, submitter Submitter, loc *time.Location, log zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, submitter: submitter, loc: loc, log: log, now: time.Now}
}

// machine builds the state machine for one request. attempted, when not
// nil, is set once a submit has been tried.
func (s *Service) machine(ip string, attempted *bool) Machine {
	return Machine{
		Location: s.loc,
		Submit: func(ctx context.Context, payload map[string]any) (string, error) {
			if attempted != nil {
				*attempted = true
			}
			reg, err := s.submitter.Create(ctx, payload, ip)
			if err != nil {
				return "", err
			}
			return reg.ID, nil
		},
	}
}

func (s *Service) view(sess *Session) *View {
	m := s.machine("", nil)
	st := &sess.State
	return &View{
		ID:             sess.ID,
		Step:           st.Step,
		Draft:          st.Draft,
		CanNext:        m.CanNext(st),
		CanBack:        m.CanBack(st),
		Submitting:     st.Submitting,
		Submitted:      st.Submitted,
		RegistrationID: st.RegistrationID,
		LastError:      st.LastError,
	}
}

// ===========================
// 🚀 Start
func (s *Service) Start(ctx context.Context) (*View, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		State:     State{Step: StepIntro},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.log.Debug().Str("session_id", sess.ID).Msg("wizard session started")
	return s.view(sess), nil
}

// ===========================
// 🔍 Get
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// ===========================
// ✏️ Update Draft
func (s *Service) UpdateDraft(ctx context.Context, id string, u DraftUpdate) (*View, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State.Submitted {
		return nil, ErrAlreadySubmitted
	}
	if sess.State.Submitting {
		return nil, ErrSubmissionInFlight
	}

	sess.State.Draft.Merge(u)
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Discard drops a session the visitor abandoned or finished with.
func (s *Service) Discard(ctx context.Context, id string) error {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Next advances one step. From the payment step it submits the draft; when
// that fails the returned view carries LastError alongside the error.
func (s *Service) Next(ctx context.Context, id, ip string) (*View, error) {
	return s.advance(ctx, id, ActionNext, ip)
}

// Back returns to the previous step.
func (s *Service) Back(ctx context.Context, id string) (*View, error) {
	return s.advance(ctx, id, ActionBack, "")
}

func (s *Service) advance(ctx context.Context, id string, a Action, ip string) (*View, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	from := sess.State.Step
	attempted := false
	if err := s.machine(ip, &attempted).Advance(ctx, &sess.State, a); err != nil {
		if !attempted {
			return nil, err
		}
		// Submit failed: keep the error on the session so a reload shows it.
		sess.UpdatedAt = s.now()
		if saveErr := s.store.Save(ctx, sess); saveErr != nil {
			s.log.Warn().Err(saveErr).Str("session_id", id).Msg("wizard session save failed")
		}
		return s.view(sess), err
	}

	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	if sess.State.Submitted {
		s.log.Info().
			Str("session_id", id).
			Str("registration_id", sess.State.RegistrationID).
			Msg("wizard submitted")
	} else {
		s.log.Debug().Str("session_id", id).Stringer("from", from).Stringer("to", sess.State.Step).Msg("wizard step")
	}
	return s.view(sess), nil
}
