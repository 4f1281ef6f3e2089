package registration

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
// 📄 List Registrations - GET /registrations
func (h *Handler) ListRegistrations(c *gin.Context) {
	q := ParseListQuery(c.Query)

	res, err := h.Service.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     res.Data,
		"page":     res.Page,
		"pageSize": res.PageSize,
		"total":    res.Total,
	})
}

// ===========================
// 🎯 Create Registration - POST /registrations
func (h *Handler) CreateRegistration(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	reg, err := h.Service.Create(c.Request.Context(), raw, middleware.GetIPFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, reg)
}

// ===========================
// 🔍 Get Registration - GET /registrations/:id
func (h *Handler) GetRegistration(c *gin.Context) {
	reg, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reg)
}

// ===========================
// 🔄 Update Registration - PATCH /registrations/:id
func (h *Handler) UpdateRegistration(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	reg, err := h.Service.Update(c.Request.Context(), c.Param("id"), raw, middleware.GetIPFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reg)
}

// ===========================
// 🗑️ Delete Registration - DELETE /registrations/:id
func (h *Handler) DeleteRegistration(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id"), middleware.GetIPFromContext(c)); err != nil {
		writeError(c, err)
		return
	}
	utils.JSONOK(c, http.StatusOK)
}

func writeError(c *gin.Context, err error) {
	utils.JSONError(c, apperror.Status(err), apperror.PublicMessage(err))
}
