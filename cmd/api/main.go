package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/web"
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

	userRepo := repository.NewUserRepository(persistence.NewJSONStore(cfg.Store.DataDir, "users.json"))
	ticketRepo := repository.NewTicketRepository(persistence.NewJSONStore(cfg.Store.DataDir, "tickets.json"))

	var sessionStorage fiber.Storage
	if cfg.Redis.Addr != "" {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		sessionStorage = redis.SessionStorage()
	}
	sessions := auth.NewSessionManager(cfg.Session, sessionStorage)

	authService, err := service.NewAuthService(*cfg, userRepo, logger)
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	ticketService := service.NewTicketService(ticketRepo)

	authMiddleware := auth.NewMiddleware(sessions, authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		Views:       web.Engine(),
		ViewsLayout: "layouts/main",
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:      logger,
		Metrics:     metrics,
		Development: cfg.App.Development(),
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Pages:          handlers.NewPagesHandler(sessions, ticketService),
		Auth:           handlers.NewAuthHandler(authService, sessions),
		Tickets:        handlers.NewTicketsHandler(ticketService, sessions),
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.DataDir),
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
