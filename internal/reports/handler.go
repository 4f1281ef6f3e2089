package reports

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/internal/adminview"
	"github.com/yojana-dates/yojana-backend/internal/apperror"
	"github.com/yojana-dates/yojana-backend/internal/auditlog"
	"github.com/yojana-dates/yojana-backend/middleware"
	"github.com/yojana-dates/yojana-backend/utils"
)

const ActionExported = "REGISTRATIONS_EXPORTED"

// Handler serves the admin export. It reads the same snapshot and filter
// pipeline as the dashboard, without pagination.
type Handler struct {
	source   adminview.Snapshotter
	exporter Exporter
	auditSvc auditlog.Service
	loc      *time.Location
	log      zerolog.Logger
	now      func() time.Time
}

func NewHandler(source adminview.Snapshotter, exporter Exporter, auditSvc auditlog.Service, loc *time.Location, log zerolog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		source:   source,
		exporter: exporter,
		auditSvc: auditSvc,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

// ===========================
// 📥 Export - GET /admin/export?format=csv|xlsx|pdf
func (h *Handler) Export(c *gin.Context) {
	format, err := ParseFormat(c.Query("format"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, apperror.PublicMessage(err))
		return
	}

	all, err := h.source.ListAll(c.Request.Context())
	if err != nil {
		utils.JSONError(c, apperror.Status(err), apperror.PublicMessage(err))
		return
	}

	rows := adminview.Filter(all, adminview.ParseControls(c.Query), h.loc)
	data, filename, mime, err := h.exporter.Export(format, rows, h.now())
	if err != nil {
		h.log.Error().Err(err).Str("format", format).Msg("export failed")
		utils.JSONError(c, http.StatusInternalServerError, "Server error")
		return
	}

	h.record(c.Request.Context(), format, len(rows), middleware.GetIPFromContext(c))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mime, data)
}

func (h *Handler) record(ctx context.Context, format string, n int, ip string) {
	if h.auditSvc == nil {
		return
	}
	details := map[string]interface{}{"format": format, "rows": n}
	if err := h.auditSvc.LogAction(ctx, ActionExported, "", details, ip, auditlog.StatusSuccess); err != nil {
		h.log.Warn().Err(err).Msg("audit log write failed")
	}
}
