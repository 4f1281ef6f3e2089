package auditlog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/utils"
)

type Handler struct {
	service Service
	log     zerolog.Logger
}

func NewHandler(service Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetAuditLogs handles GET /admin/audit-logs
// Query: action (partial match), status, registrationId, page, limit.
func (h *Handler) GetAuditLogs(c *gin.Context) {
	filter := AuditLogFilter{
		Action:         c.Query("action"),
		Status:         c.Query("status"),
		RegistrationID: c.Query("registrationId"),
		Page:           1,
		Limit:          20,
	}
	if p, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = l
	}

	result, err := h.service.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load audit logs")
		utils.JSONError(c, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}
