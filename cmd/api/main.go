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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/calendar"
	"github.com/jwalitptl/dental-api/internal/config"
	appointmentHandler "github.com/jwalitptl/dental-api/internal/handler/appointment"
	auditHandler "github.com/jwalitptl/dental-api/internal/handler/audit"
	authHandler "github.com/jwalitptl/dental-api/internal/handler/auth"
	billingHandler "github.com/jwalitptl/dental-api/internal/handler/billing"
	consentHandler "github.com/jwalitptl/dental-api/internal/handler/consent"
	dashboardHandler "github.com/jwalitptl/dental-api/internal/handler/dashboard"
	"github.com/jwalitptl/dental-api/internal/handler/health"
	inventoryHandler "github.com/jwalitptl/dental-api/internal/handler/inventory"
	patientHandler "github.com/jwalitptl/dental-api/internal/handler/patient"
	userHandler "github.com/jwalitptl/dental-api/internal/handler/user"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-api/internal/router"
	appointmentService "github.com/jwalitptl/dental-api/internal/service/appointment"
	auditService "github.com/jwalitptl/dental-api/internal/service/audit"
	authService "github.com/jwalitptl/dental-api/internal/service/auth"
	billingService "github.com/jwalitptl/dental-api/internal/service/billing"
	consentService "github.com/jwalitptl/dental-api/internal/service/consent"
	dashboardService "github.com/jwalitptl/dental-api/internal/service/dashboard"
	eventService "github.com/jwalitptl/dental-api/internal/service/event"
	inventoryService "github.com/jwalitptl/dental-api/internal/service/inventory"
	patientService "github.com/jwalitptl/dental-api/internal/service/patient"
	userService "github.com/jwalitptl/dental-api/internal/service/user"
	"github.com/jwalitptl/dental-api/internal/session"
	"github.com/jwalitptl/dental-api/internal/storage"
	"github.com/jwalitptl/dental-api/pkg/auth"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	"github.com/jwalitptl/dental-api/pkg/security"
)

const revocationCleanup = 10 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	})

	if err := middleware.RegisterValidators(); err != nil {
		appLog.Fatal(err, "failed to register validators")
	}

	loc, err := cfg.Clinic.Location()
	if err != nil {
		appLog.Fatal(err, "failed to load clinic time zone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLog.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry, "dental_api")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	consentRepo := postgres.NewConsentRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Shared collaborators
	events := eventService.NewEventService(outboxRepo, appLog)
	auditSvc := auditService.NewService(auditRepo)
	auditor := auditService.NewAuditLogger(auditSvc, appLog)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	revocations := session.NewRevocations(revocationCleanup)

	var tokens security.Encryptor
	if cfg.Security.EncryptionKey != "" {
		tokens, err = security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
		if err != nil {
			appLog.Fatal(err, "failed to initialize token encryption")
		}
	} else {
		appLog.Warn("no encryption key configured, calendar integration is disabled")
	}

	store, err := storage.NewS3Store(context.Background(), cfg.Storage, m)
	if err != nil {
		appLog.Fatal(err, "failed to initialize object storage")
	}

	// Services
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, userRepo, events, auditor, appLog, m,
		appointmentService.Config{Location: loc},
	)
	if tokens != nil {
		appointmentSvc.WithCalendar(calendar.NewClient(cfg.Calendar, m), tokens)
	}
	patientSvc := patientService.NewService(patientRepo, appointmentSvc, paymentRepo, events, auditor, appLog)
	inventorySvc := inventoryService.NewService(inventoryRepo, events, auditor, appLog)
	billingSvc := billingService.NewService(paymentRepo, patientRepo, events, auditor, appLog, loc)
	consentSvc := consentService.NewService(consentRepo, patientRepo, store, events, auditor, appLog, cfg.Clinic.Name, loc)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher, revocations, auditor, appLog)
	userSvc := userService.NewService(userRepo, hasher, tokens, auditor, appLog)
	dashboardSvc := dashboardService.NewService(patientRepo, appointmentSvc, inventorySvc, appLog, loc)

	// Handlers
	authH := authHandler.NewHandler(authSvc)
	r := router.NewRouter(router.Config{
		Server:    cfg.Server,
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
	}, authSvc, router.Handlers{
		Health: health.NewHandler(db, registry),
		Public: []router.PublicHandler{authH},
		Protected: []router.Handler{
			authH,
			dashboardHandler.NewHandler(dashboardSvc),
			patientHandler.NewHandler(patientSvc),
			appointmentHandler.NewHandler(appointmentSvc, loc),
			inventoryHandler.NewHandler(inventorySvc),
			billingHandler.NewHandler(billingSvc, loc),
			consentHandler.NewHandler(consentSvc),
			userHandler.NewHandler(userSvc),
			auditHandler.NewHandler(auditSvc),
		},
	}, appLog, m)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		appLog.Info("starting server", "port", cfg.Server.Port, "clinic", cfg.Clinic.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error(err, "server forced to shutdown")
	}
	appLog.Info("server exited")
}
