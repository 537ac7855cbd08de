package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/beacon-marketplace/internal/api/http"
	"github.com/spec-kit/beacon-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/beacon-marketplace/internal/auth"
	"github.com/spec-kit/beacon-marketplace/internal/config"
	"github.com/spec-kit/beacon-marketplace/internal/events"
	"github.com/spec-kit/beacon-marketplace/internal/observability"
	"github.com/spec-kit/beacon-marketplace/internal/persistence"
	"github.com/spec-kit/beacon-marketplace/internal/repository"
	"github.com/spec-kit/beacon-marketplace/internal/service"
	"github.com/spec-kit/beacon-marketplace/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	organizationRepo := repository.NewOrganizationRepository(pool)
	venueRepo := repository.NewVenueRepository(pool)
	integrationRepo := repository.NewIntegrationRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	checkInRepo := repository.NewCheckInRepository(pool)
	deviceRepo := repository.NewCachedDeviceRepository(
		repository.NewDeviceRepository(pool),
		redis.Client,
		cfg.Redis.DeviceCacheTTL(),
		logger,
	)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
	})
	bindingService := service.NewBindingService(service.BindingDependencies{
		SessionRepo:      sessionRepo,
		MembershipRepo:   membershipRepo,
		OrganizationRepo: organizationRepo,
		VenueRepo:        venueRepo,
		IntegrationRepo:  integrationRepo,
		Dispatcher:       dispatcher,
	})
	checkInService := service.NewCheckInService(service.CheckInDependencies{
		CheckInRepo: checkInRepo,
		DeviceRepo:  deviceRepo,
		Dispatcher:  dispatcher,
	})
	searchService := service.NewVenueSearchService(venueRepo, cfg.Geo)
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		OrganizationRepo: organizationRepo,
		VenueRepo:        venueRepo,
		IntegrationRepo:  integrationRepo,
		MembershipRepo:   membershipRepo,
		DeviceRepo:       deviceRepo,
		Dispatcher:       dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, sessionRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Bindings:       handlers.NewBindingsHandler(bindingService),
		CheckIns:       handlers.NewCheckInsHandler(checkInService),
		Venues:         handlers.NewVenuesHandler(directoryService, searchService),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
