package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
)

func completeDraft() Draft {
	return Draft{
		StartDateTime:    "2026-12-24T18:00",
		EndDateTime:      "2026-12-24T22:00",
		Occasion:         "birthday",
		Experience:       "romantic-escape",
		Dining:           "italian",
		Budget:           "5k",
		Name:             "Asha Rai",
		Email:            "asha@example.com",
		Phone:            "+977 980-000-0000",
		PaymentConfirmed: true,
	}
}

func okSubmit(id string, calls *int) SubmitFunc {
	return func(context.Context, map[string]any) (string, error) {
		*calls++
		return id, nil
	}
}

func TestAdvanceWalksEveryStepToSummary(t *testing.T) {
	calls := 0
	m := Machine{Location: time.UTC, Submit: okSubmit("reg-1", &calls)}
	s := &State{Step: StepIntro, Draft: completeDraft()}

	want := []Step{
		StepDateTime, StepOccasion, StepExperience, StepDining, StepDiet, StepTouches,
		StepBudget, StepNote, StepContact, StepPayment, StepSummary,
	}
	for _, step := range want {
		if err := m.Advance(context.Background(), s, ActionNext); err != nil {
			t.Fatalf("next into %s: %v", step, err)
		}
		if s.Step != step {
			t.Fatalf("step = %s, want %s", s.Step, step)
		}
	}

	if !s.Submitted || s.RegistrationID != "reg-1" {
		t.Fatalf("state after submit = %+v", s)
	}
	if calls != 1 {
		t.Fatalf("submit called %d times, want 1", calls)
	}
	if m.CanNext(s) || m.CanBack(s) {
		t.Fatal("summary after submit should disable both directions")
	}
	if err := m.Advance(context.Background(), s, ActionBack); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("back after submit: %v", err)
	}
}

func TestNextBlockedUntilStepComplete(t *testing.T) {
	m := Machine{Location: time.UTC}

	tests := []struct {
		name  string
		step  Step
		draft Draft
	}{
		{"empty dates", StepDateTime, Draft{}},
		{"reversed dates", StepDateTime, Draft{StartDateTime: "2026-12-24T22:00", EndDateTime: "2026-12-24T18:00"}},
		{"equal dates", StepDateTime, Draft{StartDateTime: "2026-12-24T18:00", EndDateTime: "2026-12-24T18:00"}},
		{"no occasion", StepOccasion, Draft{}},
		{"no experience", StepExperience, Draft{}},
		{"no dining", StepDining, Draft{}},
		{"no budget", StepBudget, Draft{}},
		{"short name", StepContact, Draft{Name: "A", Email: "a@b.co", Phone: "1234567"}},
		{"bad email", StepContact, Draft{Name: "Asha", Email: "asha", Phone: "1234567"}},
		{"short phone", StepContact, Draft{Name: "Asha", Email: "a@b.co", Phone: "12-34"}},
		{"payment unconfirmed", StepPayment, Draft{}},
		{"summary has no next", StepSummary, completeDraft()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &State{Step: tt.step, Draft: tt.draft}
			if m.CanNext(s) {
				t.Fatal("CanNext = true")
			}
			err := m.Advance(context.Background(), s, ActionNext)
			if !errors.Is(err, ErrStepIncomplete) {
				t.Fatalf("err = %v, want ErrStepIncomplete", err)
			}
			if s.Step != tt.step {
				t.Fatalf("step moved to %s", s.Step)
			}
		})
	}
}

func TestOptionalStepsAlwaysAdvance(t *testing.T) {
	m := Machine{Location: time.UTC}
	for _, step := range []Step{StepIntro, StepDiet, StepTouches, StepNote} {
		if !m.CanNext(&State{Step: step}) {
			t.Errorf("%s should advance with an empty draft", step)
		}
	}
}

func TestBackTransitions(t *testing.T) {
	m := Machine{Location: time.UTC}

	for _, step := range []Step{StepIntro, StepDateTime} {
		s := &State{Step: step}
		if m.CanBack(s) {
			t.Errorf("%s: CanBack = true", step)
		}
		if err := m.Advance(context.Background(), s, ActionBack); !errors.Is(err, ErrBackUnavailable) {
			t.Errorf("%s: err = %v", step, err)
		}
	}

	s := &State{Step: StepPayment, LastError: "Valid phone is required"}
	if err := m.Advance(context.Background(), s, ActionBack); err != nil {
		t.Fatal(err)
	}
	if s.Step != StepContact || s.LastError != "" {
		t.Fatalf("state = %+v", s)
	}
}

func TestSubmitFailureKeepsDraftOnPayment(t *testing.T) {
	m := Machine{
		Location: time.UTC,
		Submit: func(context.Context, map[string]any) (string, error) {
			return "", apperror.Invalid("phone", "Valid phone is required")
		},
	}
	draft := completeDraft()
	s := &State{Step: StepPayment, Draft: draft}

	err := m.Advance(context.Background(), s, ActionNext)
	if err == nil {
		t.Fatal("expected error")
	}
	if s.Step != StepPayment || s.Submitted || s.Submitting {
		t.Fatalf("state = %+v", s)
	}
	if s.LastError != "Valid phone is required" {
		t.Fatalf("lastError = %q", s.LastError)
	}
	if s.Draft != draft {
		t.Fatal("draft changed after failed submit")
	}
	if !m.CanNext(s) {
		t.Fatal("retry should be allowed")
	}
}

func TestSubmitTransportFailureHidesCause(t *testing.T) {
	m := Machine{
		Location: time.UTC,
		Submit: func(context.Context, map[string]any) (string, error) {
			return "", apperror.Transport("insert registration", errors.New("connection refused"))
		},
	}
	s := &State{Step: StepPayment, Draft: completeDraft()}
	_ = m.Advance(context.Background(), s, ActionNext)
	if s.LastError != "Server error" {
		t.Fatalf("lastError = %q", s.LastError)
	}
}

func TestAdvanceRejectedWhileSubmitting(t *testing.T) {
	m := Machine{Location: time.UTC}
	s := &State{Step: StepPayment, Draft: completeDraft(), Submitting: true}

	if m.CanNext(s) || m.CanBack(s) {
		t.Fatal("controls should be disabled while submitting")
	}
	if err := m.Advance(context.Background(), s, ActionNext); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("err = %v", err)
	}
}

func TestPayloadCarriesEveryField(t *testing.T) {
	p := completeDraft().Payload()
	if len(p) != 17 {
		t.Fatalf("payload has %d keys", len(p))
	}
	if p["name"] != "Asha Rai" || p["paymentConfirmed"] != true {
		t.Fatalf("payload = %v", p)
	}
}

func TestStepTextRoundTrip(t *testing.T) {
	var s Step
	if err := s.UnmarshalText([]byte("Contact")); err != nil {
		t.Fatal(err)
	}
	if s != StepContact {
		t.Fatalf("step = %s", s)
	}
	if err := s.UnmarshalText([]byte("checkout")); err == nil {
		t.Fatal("expected error for unknown step")
	}
}
