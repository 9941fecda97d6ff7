package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/neurodesk/helpdesk-service/internal/api/http"
	"github.com/neurodesk/helpdesk-service/internal/api/http/handlers"
	"github.com/neurodesk/helpdesk-service/internal/auth"
	"github.com/neurodesk/helpdesk-service/internal/config"
	"github.com/neurodesk/helpdesk-service/internal/events"
	"github.com/neurodesk/helpdesk-service/internal/observability"
	"github.com/neurodesk/helpdesk-service/internal/oracle"
	"github.com/neurodesk/helpdesk-service/internal/persistence"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/internal/service"
	"github.com/neurodesk/helpdesk-service/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	skillRepo := repository.NewSkillRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	identity := auth.NewIdentityMiddleware(tokenManager)

	oracleClient := oracle.NewClient(cfg.AI, logger)
	directory := service.NewDirectoryService(userRepo, technicianRepo, redis.ClientHandle(), logger)
	assignment := service.NewAssignmentService(oracleClient, directory, metrics, logger)
	ticketService := service.NewTicketService(ticketRepo, directory, assignment, oracleClient, dispatcher, cfg.Ticket, logger)
	authService := service.NewAuthService(userRepo, tokenManager, cfg.Auth.BcryptCost, logger)
	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	technicianService := service.NewTechnicianService(technicianRepo, userRepo, skillRepo)
	skillService := service.NewSkillService(skillRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, identity, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:        handlers.NewAuthHandler(authService),
		Tickets:     handlers.NewTicketsHandler(ticketService),
		Users:       handlers.NewUsersHandler(userService, authService),
		Technicians: handlers.NewTechniciansHandler(technicianService),
		Skills:      handlers.NewSkillsHandler(skillService),
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
