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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/email"
	"github.com/jwalitptl/dental-api/internal/handler/health"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	appointmentService "github.com/jwalitptl/dental-api/internal/service/appointment"
	auditService "github.com/jwalitptl/dental-api/internal/service/audit"
	eventService "github.com/jwalitptl/dental-api/internal/service/event"
	"github.com/jwalitptl/dental-api/internal/worker"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/messaging"
	"github.com/jwalitptl/dental-api/pkg/messaging/kafka"
	"github.com/jwalitptl/dental-api/pkg/messaging/redis"
	"github.com/jwalitptl/dental-api/pkg/metrics"
	pkgworker "github.com/jwalitptl/dental-api/pkg/worker"
)

const outboxCleanupInterval = time.Hour

func newBroker(cfg config.BrokerConfig, log *logger.Logger) (messaging.Broker, error) {
	switch cfg.Driver {
	case "kafka":
		return kafka.NewKafkaBroker(cfg.Kafka.ToBrokerConfig(), log)
	case "redis":
		return redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), log)
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Driver)
	}
}

func healthServer(port int, h *health.Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	h.RegisterRoutes(engine)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	}).WithFields(map[string]interface{}{"component": "worker"})

	loc, err := cfg.Clinic.Location()
	if err != nil {
		appLog.Fatal(err, "failed to load clinic time zone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLog.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := newBroker(cfg.Broker, appLog)
	if err != nil {
		appLog.Fatal(err, "failed to connect to message broker", "driver", cfg.Broker.Driver)
	}
	defer broker.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry, "dental_worker")

	patientRepo := postgres.NewPatientRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	events := eventService.NewEventService(outboxRepo, appLog)
	auditSvc := auditService.NewService(postgres.NewAuditRepository(db))
	auditor := auditService.NewAuditLogger(auditSvc, appLog)
	appointmentSvc := appointmentService.NewService(
		postgres.NewAppointmentRepository(db), patientRepo, postgres.NewUserRepository(db),
		events, auditor, appLog, m, appointmentService.Config{Location: loc},
	)

	processor, err := pkgworker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), appLog, m)
	if err != nil {
		appLog.Fatal(err, "failed to create outbox processor")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() { processor.Start(ctx) })

	if cfg.Outbox.Retention > 0 {
		outboxCleanup := worker.NewRetentionWorker("outbox_events", worker.CleanerFunc(events.CleanupProcessedEvents),
			cfg.Outbox.Retention, outboxCleanupInterval, appLog)
		wg.Go(func() { outboxCleanup.Start(ctx) })
	}

	if cfg.Audit.RetentionDays > 0 && cfg.Audit.CleanupInterval > 0 {
		retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
		auditCleanup := worker.NewRetentionWorker("audit_logs", auditSvc, retention, cfg.Audit.CleanupInterval, appLog)
		wg.Go(func() { auditCleanup.Start(ctx) })
	}

	if cfg.Lifecycle.SweepInterval > 0 {
		sweeper := worker.NewStatusSweeper(appointmentSvc, cfg.Lifecycle.SweepInterval, appLog)
		wg.Go(func() { sweeper.Start(ctx) })
	}

	if cfg.Reminders.Enabled {
		if cfg.SMTP.Host == "" {
			appLog.Warn("reminders are enabled but no SMTP host is configured, skipping")
		} else {
			reminders := worker.NewReminderWorker(appointmentSvc, patientRepo,
				email.NewSMTPService(cfg.SMTP, cfg.Clinic.Name), cfg.Reminders.Interval, loc, appLog)
			wg.Go(func() { reminders.Start(ctx) })
		}
	}

	srv := healthServer(cfg.Worker.HealthPort, health.NewHandler(db, registry))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error(err, "health check server failed")
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	appLog.Info("shutting down")

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(err, "failed to stop health check server")
	}
	wg.Wait()
	appLog.Info("worker exited")
}
