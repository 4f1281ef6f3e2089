package notification

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
	"github.com/yojana-dates/yojana-backend/middleware"
)

type Handler struct {
	sender    Sender
	confirmer *Confirmer
	log       zerolog.Logger
}

func NewHandler(sender Sender, confirmer *Confirmer, log zerolog.Logger) *Handler {
	return &Handler{sender: sender, confirmer: confirmer, log: log}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// ===========================
// 📧 Send Email - POST /email
func (h *Handler) SendEmail(c *gin.Context) {
	var req emailRequest
	_ = c.ShouldBindJSON(&req)

	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.HTML) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Missing 'to', 'subject' or 'html'."})
		return
	}

	id, err := h.sender.Send(c.Request.Context(), strings.TrimSpace(req.To), req.Subject, req.HTML)
	if err != nil {
		h.log.Error().Err(err).Str("to", req.To).Msg("email send failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Email delivery failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
}

// ===========================
// 💌 Resend Confirmation - POST /admin/registrations/:id/confirmation
func (h *Handler) SendConfirmation(c *gin.Context) {
	id, err := h.confirmer.SendConfirmation(c.Request.Context(), c.Param("id"), middleware.GetIPFromContext(c))
	if err != nil {
		msg := apperror.PublicMessage(err)
		if apperror.Status(err) == http.StatusInternalServerError {
			msg = "Email delivery failed"
		}
		c.JSON(apperror.Status(err), gin.H{"ok": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
}
