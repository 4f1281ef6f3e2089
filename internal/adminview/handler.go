package adminview

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
	"github.com/yojana-dates/yojana-backend/internal/registration"
	"github.com/yojana-dates/yojana-backend/utils"
)

// Snapshotter returns every stored registration.
type Snapshotter interface {
	ListAll(ctx context.Context) ([]registration.Registration, error)
}

type Handler struct {
	source Snapshotter
	loc    *time.Location
	now    func() time.Time
}

func NewHandler(source Snapshotter, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{source: source, loc: loc, now: time.Now}
}

// ===========================
// 📊 Dashboard - GET /admin/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	all, err := h.source.ListAll(c.Request.Context())
	if err != nil {
		utils.JSONError(c, apperror.Status(err), apperror.PublicMessage(err))
		return
	}

	view := Apply(all, ParseControls(c.Query), h.now(), h.loc)
	utils.JSONSuccess(c, http.StatusOK, view)
}
