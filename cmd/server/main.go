// Command server runs the stock scanning HTTP API.
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

	"github.com/erp/stockscan/docs"
	appscan "github.com/erp/stockscan/internal/application/scanning"
	"github.com/erp/stockscan/internal/domain/scanning"
	"github.com/erp/stockscan/internal/infrastructure/auth"
	"github.com/erp/stockscan/internal/infrastructure/cache"
	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/erp/stockscan/internal/infrastructure/event"
	"github.com/erp/stockscan/internal/infrastructure/logger"
	"github.com/erp/stockscan/internal/infrastructure/persistence"
	"github.com/erp/stockscan/internal/infrastructure/persistence/memory"
	"github.com/erp/stockscan/internal/infrastructure/telemetry"
	"github.com/erp/stockscan/internal/interfaces/http/handler"
	"github.com/erp/stockscan/internal/interfaces/http/middleware"
	"github.com/erp/stockscan/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

//	@title			Stock Scan API
//	@version		1.0
//	@description	Barcode scan reconciliation for shipment move lines: matching, lot resolution and line splitting.

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("tracer provider: %w", err)
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("meter provider: %w", err)
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("logger provider: %w", err)
	}
	defer shutdownTelemetry(log, tp, mp, lp)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		ProfileTypes:      cfg.Profiling.ProfileTypes,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
	}, log)
	if err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	defer func() { _ = profiler.Stop() }()
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	log = telemetry.NewBridgedLogger(log, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: lp,
		Level:          logger.ParseLevel(cfg.Log.Level),
	}))

	log.Info("Starting stockscan",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	meter := mp.Meter("stockscan")
	system := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version)

	var (
		txScope appscan.TransactionScope
		pending telemetry.PendingMetricsProvider
	)
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("Using the in-memory store; data is lost on restart")
		txScope = memory.NewTransactionScope(memory.NewStore())
	} else {
		db, err := openDatabase(cfg, log, meter, mp.IsEnabled())
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		txScope = persistence.NewGormTransactionScope(db.DB)
		pending = telemetry.NewGormPendingMetricsProvider(db.DB)
		system.AddCheck("database", db)
	}

	idempotency, err := cache.NewIdempotencyStore(ctx, cfg.Scanner, cfg.Redis, cache.StoreOptions{Logger: log})
	if err != nil {
		return err
	}
	defer func() { _ = idempotency.Close() }()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewScanJournal(log))
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	service := appscan.NewScanService(txScope, log)
	service.SetEventPublisher(bus)
	service.SetIdempotencyStore(idempotency, cfg.Scanner.IdempotencyTTL)
	service.SetLotNumberer(scanning.NewDateLotNumberer(cfg.Scanner.LotNumberLayout))

	if mp.IsEnabled() {
		scanMetrics, err := telemetry.NewScanMetrics(telemetry.ScanMetricsConfig{
			Meter:           meter,
			Logger:          log,
			CollectInterval: cfg.Scanner.PendingMetrics,
			PendingProvider: pending,
		})
		if err != nil {
			return fmt.Errorf("scan metrics: %w", err)
		}
		service.SetRecorder(scanMetrics)
		if pending != nil {
			scanMetrics.StartCollector(ctx, cfg.Scanner.PendingMetrics)
		}
		defer scanMetrics.Stop()
	}

	if err := seedConfiguration(ctx, service, cfg.Scanner.LotCreation, log); err != nil {
		return err
	}

	var jwtService *auth.JWTService
	if cfg.Auth.Enabled {
		jwtService = auth.NewJWTService(cfg.Auth)
		log.Info("Bearer token authentication enabled", zap.String("issuer", cfg.Auth.Issuer))
	} else {
		log.Warn("Authentication disabled; the API is open to the network")
	}

	docs.SwaggerInfo.Version = cfg.App.Version
	// empty host makes the UI call the origin serving it
	docs.SwaggerInfo.Host = ""
	engine, err := router.NewEngine(router.EngineConfig{
		HTTP: cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Meter:       meter,
		Logger:      log,
		ReleaseMode: cfg.App.Env == "production",
		Auth:        jwtService,
		Profiling:   profiler.IsEnabled(),
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, router.Handlers{
		Scan:          handler.NewScanHandler(service),
		Configuration: handler.NewConfigurationHandler(service),
		System:        system,
	})
	if err != nil {
		return fmt.Errorf("http engine: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit:
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

// openDatabase connects to PostgreSQL or SQLite. SQLite schemas come from
// the models; PostgreSQL is expected to be migrated with cmd/migrate.
func openDatabase(cfg *config.Config, log *zap.Logger, meter metric.Meter, metricsEnabled bool) (*persistence.Database, error) {
	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if metricsEnabled {
		if err := tracing.WithMeter(meter); err != nil {
			return nil, fmt.Errorf("database metrics: %w", err)
		}
	}

	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         logger.GormLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithTracing(tracing),
	)
	if err != nil {
		return nil, err
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}
	return db, nil
}

// seedConfiguration applies the configured lot creation policy at startup.
// Later PUT /api/v1/scanner/configuration calls override it until restart.
func seedConfiguration(ctx context.Context, service *appscan.ScanService, policy string, log *zap.Logger) error {
	if policy == "" {
		return nil
	}
	current, err := service.GetConfiguration(ctx)
	if err != nil {
		return fmt.Errorf("failed to read scanner configuration: %w", err)
	}
	if current.LotCreation == policy {
		return nil
	}
	if _, err := service.UpdateConfiguration(ctx, appscan.UpdateConfigurationRequest{LotCreation: policy}); err != nil {
		return fmt.Errorf("failed to seed scanner configuration: %w", err)
	}
	log.Info("Scanner configuration seeded", zap.String("lot_creation", policy))
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(log *zap.Logger, providers ...shutdowner) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
