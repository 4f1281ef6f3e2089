package wizard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yojana-dates/yojana-backend/internal/apperror"
	"github.com/yojana-dates/yojana-backend/middleware"
	"github.com/yojana-dates/yojana-backend/utils"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 🚀 Start Wizard - POST /wizard
func (h *Handler) Start(c *gin.Context) {
	v, err := h.Service.Start(c.Request.Context())
	if err != nil {
		writeError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, v)
}

// ===========================
// 🔍 Get Wizard - GET /wizard/:id
func (h *Handler) Get(c *gin.Context) {
	v, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, v)
}

// ===========================
// ✏️ Update Draft - PATCH /wizard/:id/draft
func (h *Handler) UpdateDraft(c *gin.Context) {
	var u DraftUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.BindErrorMessage(err))
		return
	}

	v, err := h.Service.UpdateDraft(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		writeError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, v)
}

// ===========================
// ➡️ Next Step - POST /wizard/:id/next
func (h *Handler) Next(c *gin.Context) {
	v, err := h.Service.Next(c.Request.Context(), c.Param("id"), middleware.GetIPFromContext(c))
	if err != nil {
		writeError(c, err, v)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, v)
}

// ===========================
// ⬅️ Previous Step - POST /wizard/:id/back
func (h *Handler) Back(c *gin.Context) {
	v, err := h.Service.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, v)
}

// ===========================
// 🗑️ Discard Wizard - DELETE /wizard/:id
func (h *Handler) Discard(c *gin.Context) {
	if err := h.Service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, nil)
		return
	}
	utils.JSONOK(c, http.StatusOK)
}

// writeError includes the session view when there is one, so a failed
// submit still hands the client its draft and lastError.
func writeError(c *gin.Context, err error, v *View) {
	body := gin.H{"success": false, "error": apperror.PublicMessage(err)}
	if v != nil {
		body["data"] = v
	}
	c.JSON(apperror.Status(err), body)
}
