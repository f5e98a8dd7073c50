package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"student-management/internal/config"
	"student-management/internal/db"
	"student-management/internal/health"
	"student-management/internal/logger"
	"student-management/internal/messaging"
	"student-management/internal/metrics"
	"student-management/internal/middleware"
	"student-management/internal/student"
	"student-management/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	database      *bun.DB
	producer      *messaging.Producer
	meterProvider *sdkmetric.MeterProvider
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	ctx := context.Background()

	meterProvider, err := telemetry.InitMeterProvider(ctx, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize telemetry", "error", err)
	}
	app.meterProvider = meterProvider

	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		log.Fatalf("failed to create metrics: %v", err)
	}

	app.database = db.New(cfg.Database)
	if err := db.RunMigrations(ctx, app.database, (*student.Student)(nil)); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	// NATS producer is optional: the service runs without a broker
	var events student.EventSink
	if cfg.NATS.URL != "" {
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			app.producer = producer
			events = producer
		}
	}

	// Apply CORS middleware globally
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Student endpoints
	studentRepo := student.NewRepository(app.database)
	studentService := student.NewService(studentRepo, events, slogLogger)
	studentHandler := student.NewHandler(studentService, slogLogger, m)

	app.router.Route("/api", func(r chi.Router) {
		studentHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.producer != nil {
		a.producer.Close()
	}
	if err := telemetry.Shutdown(ctx, a.meterProvider); err != nil {
		a.logger.Warn("failed to shut down telemetry", "error", err)
	}
	db.Close(a.database)

	return a.server.Shutdown(ctx)
}
