package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yojana-dates/yojana-backend/config"
	"github.com/yojana-dates/yojana-backend/database"
	"github.com/yojana-dates/yojana-backend/internal/auditlog"
	"github.com/yojana-dates/yojana-backend/internal/auth"
	"github.com/yojana-dates/yojana-backend/internal/notification"
	"github.com/yojana-dates/yojana-backend/internal/registration"
	"github.com/yojana-dates/yojana-backend/internal/reports"
	"github.com/yojana-dates/yojana-backend/internal/wizard"
	"github.com/yojana-dates/yojana-backend/logger"
	"github.com/yojana-dates/yojana-backend/middleware"
	"github.com/yojana-dates/yojana-backend/routes"
	"github.com/yojana-dates/yojana-backend/utils"
)

// stores is the storage backend picked by DB_DRIVER.
type stores struct {
	registrations registration.Repository
	audit         auditlog.Repository
	ping          func(ctx context.Context) error
	close         func(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.LogPretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("❌ invalid configuration")
	}
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	st, err := openStores(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("❌ database init failed")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("✅ database connected")

	// Init Redis (optional)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = utils.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Redis init failed")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("✅ Redis connected")
	}

	// Init services
	auditSvc := auditlog.NewService(st.audit)
	regSvc := registration.NewService(st.registrations, auditSvc, cfg.Location, logger.Component(log, "registration"))

	var sessions wizard.SessionStore
	if rdb != nil {
		sessions = wizard.NewRedisStore(rdb, cfg.WizardSessionTTL)
	} else {
		sessions = wizard.NewMemoryStore(cfg.WizardSessionTTL)
	}
	wizSvc := wizard.NewService(sessions, regSvc, cfg.Location, logger.Component(log, "wizard"))

	sender := newSender(cfg)
	confirmer := notification.NewConfirmer(sender, regSvc, auditSvc, cfg.Location, logger.Component(log, "notification"))

	authSvc := auth.NewService(
		cfg.AdminUsername,
		cfg.AdminPasswordHash,
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTLHours)*time.Hour,
		auditSvc,
	)

	// Setup Gin router
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Component(log, "http")))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	err = routes.Setup(router, routes.Deps{
		Config:        cfg,
		Log:           log,
		Redis:         rdb,
		Registrations: regSvc,
		Wizard:        wizSvc,
		Audit:         auditSvc,
		Auth:          authSvc,
		Sender:        sender,
		Confirmer:     confirmer,
		Exporter:      reports.NewExporter(cfg.Location),
		Ping:          st.ping,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ route setup failed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("🚀 server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("⚠️ shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ server forced to shutdown")
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("database close failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("✅ server stopped gracefully")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		p := database.NewMongoProvider(cfg.MongoURI, cfg.MongoDatabase, logger.Component(log, "mongo"))
		db, err := p.Database(ctx)
		if err != nil {
			return nil, err
		}
		if err := registration.EnsureMongoIndexes(ctx, db); err != nil {
			return nil, fmt.Errorf("registration indexes: %w", err)
		}
		return &stores{
			registrations: registration.NewMongoRepository(db),
			audit:         auditlog.NewMongoRepository(db),
			ping:          p.Ping,
			close:         p.Close,
		}, nil

	case config.DriverPostgres:
		p := database.NewPostgresProvider(cfg.PostgresDSN(), logger.Component(log, "postgres"))
		db, err := p.DB()
		if err != nil {
			return nil, err
		}
		if err := registration.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("registration migrate: %w", err)
		}
		if err := auditlog.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("audit log migrate: %w", err)
		}
		return &stores{
			registrations: registration.NewGormRepository(db),
			audit:         auditlog.NewGormRepository(db),
			ping:          p.Ping,
			close:         p.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func newSender(cfg *config.Config) notification.Sender {
	if cfg.MailProvider == config.MailProviderMailerSend {
		return notification.NewMailerSendSender(cfg.MailerSendAPIKey, cfg.SMTPFromName, cfg.SMTPFromEmail)
	}
	return notification.NewEmailSender(cfg)
}
