package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yojana-dates/yojana-backend/middleware"
	"github.com/yojana-dates/yojana-backend/utils"
)

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

// Login handles POST /admin/login
func (h *Handler) Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	tok, err := h.service.Login(c.Request.Context(), in, middleware.GetIPFromContext(c))
	if errors.Is(err, ErrInvalidCredentials) {
		utils.JSONError(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, tok)
}
