package notification

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
	"github.com/yojana-dates/yojana-backend/internal/registration"
)

const (
	ConfirmationSubject = "We received your Yojana form"
	ActionConfirmation  = "CONFIRMATION_EMAIL_SENT"

	sendTimeout = 30 * time.Second
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(
	`<div style="font-family:Inter,system-ui,Segoe UI,Arial; color:#111; line-height:1.55">
  <p>Hi {{.Name}},</p>
  <p>Thanks for submitting your <b>Yojana</b> date request. This is a quick confirmation that we’ve received your form.</p>
  <p><b>Requested time window:</b><br/>{{.Start}} → {{.End}}</p>
  <p style="margin-top:16px">— Yojana Team</p>
</div>`))

// ConfirmationHTML renders the confirmation body. The name is HTML-escaped.
func ConfirmationHTML(name string, start, end time.Time, loc *time.Location) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "there"
	}

	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, map[string]string{
		"Name":  name,
		"Start": registration.FormatDisplay(start, loc),
		"End":   registration.FormatDisplay(end, loc),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

type RegistrationGetter interface {
	Get(ctx context.Context, id string) (*registration.Registration, error)
}

type AuditLogger interface {
	LogAction(ctx context.Context, action, registrationID string, details map[string]interface{}, ip, status string) error
}

// Confirmer sends the "we received your form" email for a stored
// registration. Concurrent requests for the same registration share one
// delivery and its result.
type Confirmer struct {
	sender Sender
	regs   RegistrationGetter
	audit  AuditLogger
	loc    *time.Location
	log    zerolog.Logger

	inflight singleflight.Group
}

func NewConfirmer(sender Sender, regs RegistrationGetter, audit AuditLogger, loc *time.Location, log zerolog.Logger) *Confirmer {
	return &Confirmer{sender: sender, regs: regs, audit: audit, loc: loc, log: log}
}

// SendConfirmation returns the delivery id of the confirmation email. The
// delivery outlives the caller that started it, since joined callers wait on
// the same result.
func (c *Confirmer) SendConfirmation(ctx context.Context, id, ip string) (string, error) {
	v, err, shared := c.inflight.Do(id, func() (interface{}, error) {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		return c.send(sendCtx, id, ip)
	})
	if shared {
		c.log.Debug().Str("registration_id", id).Msg("confirmation send joined an in-flight delivery")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Confirmer) send(ctx context.Context, id, ip string) (string, error) {
	reg, err := c.regs.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reg.Email) == "" {
		return "", apperror.Invalid("email", "This entry has no email address.")
	}

	html, err := ConfirmationHTML(reg.Name, reg.StartDateTime, reg.EndDateTime, c.loc)
	if err != nil {
		return "", err
	}

	msgID, err := c.sender.Send(ctx, reg.Email, ConfirmationSubject, html)
	if err != nil {
		c.log.Error().Err(err).Str("registration_id", id).Msg("confirmation email failed")
		c.record(ctx, id, reg.Email, ip, "failure")
		return "", err
	}

	c.log.Info().Str("registration_id", id).Str("message_id", msgID).Msg("confirmation email sent")
	c.record(ctx, id, reg.Email, ip, "success")
	return msgID, nil
}

func (c *Confirmer) record(ctx context.Context, id, to, ip, status string) {
	if c.audit == nil {
		return
	}
	if err := c.audit.LogAction(ctx, ActionConfirmation, id, map[string]interface{}{"to": to}, ip, status); err != nil {
		c.log.Warn().Err(err).Str("registration_id", id).Msg("audit log write failed")
	}
}
