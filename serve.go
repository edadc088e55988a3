package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mrops-br/marketplace-ops-api/internal/app/service"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/auth"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/config"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/lock"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/messaging"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/messaging/kafka"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/repository/postgres"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "marketplace-ops-api"

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// repositories is the storage the managers run on
type repositories struct {
	requests   domain.SellerRequestRepository
	sellers    domain.SellerRepository
	links      domain.SellerProductLinkRepository
	warranties domain.WarrantyRepository
	claims     domain.WarrantyClaimRepository
	reviews    domain.ReviewRepository
}

func memoryRepositories(tracer trace.Tracer, logger *slog.Logger) repositories {
	return repositories{
		requests:   memory.NewSellerRequestRepository(tracer, logger),
		sellers:    memory.NewSellerRepository(tracer, logger),
		links:      memory.NewSellerProductLinkRepository(tracer, logger),
		warranties: memory.NewWarrantyRepository(tracer, logger),
		claims:     memory.NewWarrantyClaimRepository(tracer, logger),
		reviews:    memory.NewReviewRepository(tracer, logger),
	}
}

func postgresRepositories(db *sqlx.DB, tracer trace.Tracer, logger *slog.Logger) repositories {
	return repositories{
		requests:   postgres.NewSellerRequestRepository(db, tracer, logger),
		sellers:    postgres.NewSellerRepository(db, tracer, logger),
		links:      postgres.NewSellerProductLinkRepository(db, tracer, logger),
		warranties: postgres.NewWarrantyRepository(db, tracer, logger),
		claims:     postgres.NewWarrantyClaimRepository(db, tracer, logger),
		reviews:    postgres.NewReviewRepository(db, tracer, logger),
	}
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	if !cfg.OTLP.Enabled {
		return telemetry.NewNoOpTelemetry(&cfg.OTLP), nil
	}
	return telemetry.NewTelemetry(ctx, &cfg.OTLP)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry
	telem, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	// Ensure telemetry is shutdown on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = telem.Shutdown(shutdownCtx)
	}()

	// Get tracer, meter, and logger instances
	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.Info("Starting Marketplace Ops API",
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("kafka", cfg.Kafka.Enabled()),
		slog.Bool("redis_locks", cfg.Redis.Enabled()),
	)

	// Storage
	var repos repositories
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, postgres.Config{URL: cfg.Storage.DatabaseURL, MaxOpenConns: cfg.Storage.MaxOpenConns})
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Storage.MigrateOnStartup {
			if err := postgres.Migrate(ctx, db, postgres.MigrationConfig{}, logger); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
		}
		repos = postgresRepositories(db, tracer, logger)
	default:
		repos = memoryRepositories(tracer, logger)
	}

	// Domain events
	var publisher domain.EventPublisher = messaging.NewLogPublisher(logger)
	if cfg.Kafka.Enabled() {
		kp := kafka.NewPublisher(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, tracer, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("Failed to close kafka publisher", slog.String("error", err.Error()))
			}
		}()
		publisher = kp
	}

	// Keyed locks
	var locker domain.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, lock.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, logger, "marketplace:lock:", cfg.Redis.LockTTL, 2*cfg.Redis.LockTTL)
	}

	// Managers
	sellerService := service.NewSellerService(repos.sellers, locker, publisher, tracer, meter, logger)
	provisioner := service.NewProvisioner(repos.requests, sellerService,
		service.ProvisionerConfig{Workers: cfg.Provision.Workers, QueueSize: cfg.Provision.QueueSize},
		publisher, tracer, meter, logger)
	provisioner.Start(ctx)
	defer provisioner.Close()

	onboardingService := service.NewOnboardingService(repos.requests, provisioner, publisher, tracer, meter, logger)
	associationService := service.NewAssociationService(repos.links, locker, publisher, tracer, meter, logger)
	warrantyService := service.NewWarrantyService(repos.warranties, repos.claims, publisher, tracer, meter, logger)
	reviewService := service.NewReviewService(repos.reviews, publisher, tracer, meter, logger)

	// HTTP
	validate := handler.NewValidator()
	server := http.NewServer(&cfg.Server, http.Handlers{
		SellerRequests: handler.NewSellerRequestHandler(onboardingService, validate, logger),
		Sellers:        handler.NewSellerHandler(sellerService, associationService, validate, logger),
		Warranties:     handler.NewWarrantyHandler(warrantyService, validate, logger),
		Reviews:        handler.NewReviewHandler(reviewService, validate, logger),
		Metrics:        telem.MetricsHandler(),
	}, auth.NewAuthenticator(cfg.Auth.JWTSecret), telem.MeterProvider, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server gracefully", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
