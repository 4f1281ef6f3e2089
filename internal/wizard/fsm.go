// Package wizard drives the intake questionnaire as an explicit state
// machine. Drafts live in a session store until the final submit creates a
// registration.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
	"github.com/yojana-dates/yojana-backend/internal/registration"
)

type Step int

const (
	StepIntro Step = iota
	StepDateTime
	StepOccasion
	StepExperience
	StepDining
	StepDiet
	StepTouches
	StepBudget
	StepNote
	StepContact
	StepPayment
	StepSummary
)

var stepNames = [...]string{
	StepIntro:      "intro",
	StepDateTime:   "datetime",
	StepOccasion:   "occasion",
	StepExperience: "experience",
	StepDining:     "dining",
	StepDiet:       "diet",
	StepTouches:    "touches",
	StepBudget:     "budget",
	StepNote:       "note",
	StepContact:    "contact",
	StepPayment:    "payment",
	StepSummary:    "summary",
}

func (s Step) String() string {
	if s < StepIntro || s > StepSummary {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for i, n := range stepNames {
		if n == name {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown wizard step %q", name)
}

type Action int

const (
	ActionNext Action = iota
	ActionBack
)

var (
	ErrStepIncomplete     = apperror.Invalid("step", "Please complete this step before continuing")
	ErrBackUnavailable    = apperror.Invalid("step", "Cannot go back from this step")
	ErrSubmissionInFlight = apperror.Conflict("Submission already in progress")
	ErrAlreadySubmitted   = apperror.Conflict("This plan has already been submitted")
)

// State is everything the wizard remembers between requests.
type State struct {
	Step           Step   `json:"step"`
	Draft          Draft  `json:"draft"`
	Submitting     bool   `json:"submitting"`
	Submitted      bool   `json:"submitted"`
	RegistrationID string `json:"registrationId,omitempty"`
	LastError      string `json:"lastError,omitempty"`
}

// SubmitFunc validates and stores the draft payload, returning the new
// registration id.
type SubmitFunc func(ctx context.Context, payload map[string]any) (string, error)

type transition struct {
	next    Step
	prev    Step
	hasNext bool
	hasPrev bool
	ready   func(d Draft, loc *time.Location) bool
}

func always(Draft, *time.Location) bool { return true }
func never(Draft, *time.Location) bool  { return false }

func chosen(field func(Draft) string) func(Draft, *time.Location) bool {
	return func(d Draft, _ *time.Location) bool { return strings.TrimSpace(field(d)) != "" }
}

// transitions is keyed by the current step. Intro and DateTime have no
// previous step; Summary has no next.
var transitions = map[Step]transition{
	StepIntro:      {next: StepDateTime, hasNext: true, ready: always},
	StepDateTime:   {next: StepOccasion, hasNext: true, ready: dateTimeComplete},
	StepOccasion:   {next: StepExperience, prev: StepDateTime, hasNext: true, hasPrev: true, ready: chosen(func(d Draft) string { return d.Occasion })},
	StepExperience: {next: StepDining, prev: StepOccasion, hasNext: true, hasPrev: true, ready: chosen(func(d Draft) string { return d.Experience })},
	StepDining:     {next: StepDiet, prev: StepExperience, hasNext: true, hasPrev: true, ready: chosen(func(d Draft) string { return d.Dining })},
	StepDiet:       {next: StepTouches, prev: StepDining, hasNext: true, hasPrev: true, ready: always},
	StepTouches:    {next: StepBudget, prev: StepDiet, hasNext: true, hasPrev: true, ready: always},
	StepBudget:     {next: StepNote, prev: StepTouches, hasNext: true, hasPrev: true, ready: chosen(func(d Draft) string { return d.Budget })},
	StepNote:       {next: StepContact, prev: StepBudget, hasNext: true, hasPrev: true, ready: always},
	StepContact:    {next: StepPayment, prev: StepNote, hasNext: true, hasPrev: true, ready: contactComplete},
	StepPayment:    {next: StepSummary, prev: StepContact, hasNext: true, hasPrev: true, ready: func(d Draft, _ *time.Location) bool { return d.PaymentConfirmed }},
	StepSummary:    {prev: StepPayment, hasPrev: true, ready: never},
}

func dateTimeComplete(d Draft, loc *time.Location) bool {
	start, ok := registration.ParseTime(d.StartDateTime, loc)
	if !ok {
		return false
	}
	end, ok := registration.ParseTime(d.EndDateTime, loc)
	return ok && end.After(start)
}

func contactComplete(d Draft, _ *time.Location) bool {
	return registration.ValidName(d.Name) &&
		registration.ValidEmail(d.Email) &&
		registration.ValidPhone(d.Phone)
}

// Machine holds what the transitions need besides the state itself.
type Machine struct {
	Location *time.Location
	Submit   SubmitFunc
}

// CanNext reports whether Next is enabled for s.
func (m Machine) CanNext(s *State) bool {
	if s.Submitting || s.Submitted {
		return false
	}
	t, ok := transitions[s.Step]
	return ok && t.hasNext && t.ready(s.Draft, m.Location)
}

// CanBack reports whether Back is enabled for s.
func (m Machine) CanBack(s *State) bool {
	if s.Submitting || s.Submitted {
		return false
	}
	t, ok := transitions[s.Step]
	return ok && t.hasPrev
}

// Advance applies one action. It is the only place the step changes. Next
// from Payment submits the draft; on failure the state stays on Payment with
// the draft intact and LastError set.
func (m Machine) Advance(ctx context.Context, s *State, a Action) error {
	if s.Submitting {
		return ErrSubmissionInFlight
	}
	if s.Submitted {
		return ErrAlreadySubmitted
	}
	t, ok := transitions[s.Step]
	if !ok {
		return fmt.Errorf("wizard: no transition for %s", s.Step)
	}

	switch a {
	case ActionBack:
		if !t.hasPrev {
			return ErrBackUnavailable
		}
		s.Step = t.prev
		s.LastError = ""
		return nil

	case ActionNext:
		if !t.hasNext || !t.ready(s.Draft, m.Location) {
			return ErrStepIncomplete
		}
		if s.Step == StepPayment {
			return m.submit(ctx, s, t.next)
		}
		s.Step = t.next
		s.LastError = ""
		return nil

	default:
		return fmt.Errorf("wizard: unknown action %d", a)
	}
}

func (m Machine) submit(ctx context.Context, s *State, next Step) error {
	if m.Submit == nil {
		return fmt.Errorf("wizard: no submit function configured")
	}

	s.Submitting = true
	id, err := m.Submit(ctx, s.Draft.Payload())
	s.Submitting = false

	if err != nil {
		s.LastError = apperror.PublicMessage(err)
		return err
	}

	s.Submitted = true
	s.RegistrationID = id
	s.LastError = ""
	s.Step = next
	return nil
}
