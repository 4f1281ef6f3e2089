package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/config"
	"github.com/yojana-dates/yojana-backend/internal/adminview"
	"github.com/yojana-dates/yojana-backend/internal/auditlog"
	"github.com/yojana-dates/yojana-backend/internal/auth"
	"github.com/yojana-dates/yojana-backend/internal/notification"
	"github.com/yojana-dates/yojana-backend/internal/registration"
	"github.com/yojana-dates/yojana-backend/internal/reports"
	"github.com/yojana-dates/yojana-backend/internal/wizard"
	"github.com/yojana-dates/yojana-backend/middleware"
	"github.com/yojana-dates/yojana-backend/utils"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Config        *config.Config
	Log           zerolog.Logger
	Redis         *redis.Client
	Registrations *registration.Service
	Wizard        *wizard.Service
	Audit         auditlog.Service
	Auth          auth.Service
	Sender        notification.Sender
	Confirmer     *notification.Confirmer
	Exporter      reports.Exporter
	Ping          func(ctx context.Context) error
}

// RegisterBindingRules teaches gin's validator the registration tags and
// makes its errors use json field names.
func RegisterBindingRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}
	if err := registration.RegisterRules(v); err != nil {
		return err
	}
	utils.UseJSONFieldNames(v)
	return nil
}

func Setup(r *gin.Engine, d Deps) error {
	if err := RegisterBindingRules(); err != nil {
		return err
	}

	r.GET("/healthz", func(c *gin.Context) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				d.Log.Warn().Err(err).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter, err := middleware.RateLimiter(d.Config.RateLimitPerMinute, d.Redis)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	api := r.Group("/api/v1")
	api.Use(limiter)
	api.Use(middleware.AuditMiddleware())

	secret := ""
	if d.Config.AdminAuthEnabled() {
		secret = d.Config.JWTSecret
	} else {
		d.Log.Warn().Msg("⚠️ admin auth disabled: ADMIN_PASSWORD_HASH or JWT_SECRET not set")
	}
	adminAuth := middleware.AdminAuth(secret)

	// ========== Registrations ==========
	// Creating is public for the intake form; reading and changing rows is admin only.
	regHandler := registration.NewHandler(d.Registrations)
	regs := api.Group("/registrations")
	{
		regs.POST("", regHandler.CreateRegistration)
		regs.GET("", adminAuth, regHandler.ListRegistrations)
		regs.GET("/:id", adminAuth, regHandler.GetRegistration)
		regs.PATCH("/:id", adminAuth, regHandler.UpdateRegistration)
		regs.DELETE("/:id", adminAuth, regHandler.DeleteRegistration)
	}

	// ========== Email ==========
	notifyHandler := notification.NewHandler(d.Sender, d.Confirmer, d.Log)
	api.POST("/email", adminAuth, notifyHandler.SendEmail)

	// ========== Wizard ==========
	wizHandler := wizard.NewHandler(d.Wizard)
	wiz := api.Group("/wizard")
	{
		wiz.POST("", wizHandler.Start)
		wiz.GET("/:id", wizHandler.Get)
		wiz.PATCH("/:id/draft", wizHandler.UpdateDraft)
		wiz.POST("/:id/next", wizHandler.Next)
		wiz.POST("/:id/back", wizHandler.Back)
		wiz.DELETE("/:id", wizHandler.Discard)
	}

	// ========== Admin ==========
	authHandler := auth.NewHandler(d.Auth)
	api.POST("/admin/login", authHandler.Login)

	loc := d.Registrations.Location()
	dashboard := adminview.NewHandler(d.Registrations, loc)
	exportHandler := reports.NewHandler(d.Registrations, d.Exporter, d.Audit, loc, d.Log)
	auditHandler := auditlog.NewHandler(d.Audit, d.Log)

	admin := api.Group("/admin")
	admin.Use(adminAuth)
	{
		admin.GET("/dashboard", dashboard.Dashboard)
		admin.GET("/export", exportHandler.Export)
		admin.POST("/registrations/:id/confirmation", notifyHandler.SendConfirmation)
		admin.GET("/audit-logs", auditHandler.GetAuditLogs)
	}

	return nil
}
