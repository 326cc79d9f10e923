package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"docspace/docs"
	"docspace/internal/blobref"
	"docspace/internal/config"
	"docspace/internal/database"
	"docspace/internal/database/migration"
	"docspace/internal/dragdrop"
	"docspace/internal/events"
	handlers "docspace/internal/http/handler"
	"docspace/internal/http/middleware"
	"docspace/internal/ingest"
	"docspace/internal/logger"
	"docspace/internal/metrics"
	"docspace/internal/notifier"
	"docspace/internal/otel"
	"docspace/internal/repository/postgres"
	"docspace/internal/service"
	"docspace/internal/storage"
	"docspace/internal/workspace"
)

// @title Document Workspace API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	wsMetrics, err := metrics.NewWorkspace(reg)
	if err != nil {
		log.Fatal("failed to register workspace metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	bus := events.NewBus(log)

	// The upload endpoint needs both PostgreSQL and object storage; without them the
	// workspace still runs and /upload is not served.
	var (
		db        *sql.DB
		uploadSvc service.UploadService
	)
	if cfg.UploadsEnabled() {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}

		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
		uploadSvc = service.NewUploadService(objStore, postgres.NewUploadPostgres(db))
	}

	refs := blobref.New(
		blobref.WithLimit(cfg.Workspace.MaxObjectReferences),
		blobref.WithLogger(log),
		blobref.WithMetrics(wsMetrics),
	)

	ingestOpts := []ingest.Option{
		ingest.WithNoticeHandler(bus.UploadNotice),
		ingest.WithConcurrency(cfg.Workspace.IngestConcurrency),
		ingest.WithNotifyTimeout(cfg.Workspace.UploadTimeout()),
		ingest.WithLogger(log),
		ingest.WithMetrics(wsMetrics),
	}
	switch {
	case cfg.Workspace.UploadURL != "":
		ingestOpts = append(ingestOpts, ingest.WithNotifier(notifier.NewHTTP(cfg.Workspace.UploadURL, cfg.Workspace.UploadTimeout())))
	case uploadSvc != nil:
		ingestOpts = append(ingestOpts, ingest.WithNotifier(notifier.NewService(uploadSvc)))
	default:
		log.Info("upload_notifications_disabled")
	}
	pipeline := ingest.New(refs, ingestOpts...)

	store := workspace.NewStore(refs,
		workspace.WithObserver(bus),
		workspace.WithLogger(log),
		workspace.WithMetrics(wsMetrics),
	)

	wsSvc := service.NewWorkspaceService(refs, pipeline, store, log,
		dragdrop.WithClaimTTL(cfg.Workspace.DropClaimTTL()),
		dragdrop.WithLogger(log),
		dragdrop.WithMetrics(wsMetrics),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Workspace.MaxUploadBytes,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	deps := handlers.Dependencies{
		Workspace: wsSvc,
		Uploads:   uploadSvc,
		Bus:       bus,
		Gatherer:  reg,
		Logger:    log,
	}
	// A nil *sql.DB must not reach the interface field.
	if db != nil {
		deps.DB = db
	}
	handlers.RegisterRoutes(app, deps)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutdown_started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Warn("http_shutdown_failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server_stopped", zap.Error(err))
	}

	// Drain in-flight uploads before the bus stops delivering their notices.
	wsSvc.Close()
	if err := bus.Close(); err != nil {
		log.Warn("event_bus_close_failed", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Warn("tracing_shutdown_failed", zap.Error(err))
	}
}
