package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/enrichment"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/notifier"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
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
	ticketRepo := repository.NewTicketRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)

	inbox := cache.NewInboxCache(redis.Client, 15*time.Second)
	dispatcher := events.NewInMemoryDispatcher()

	rewriter := enrichment.NewGateway(cfg.Enrichment.WebhookURL,
		enrichment.WithHTTPClient(&http.Client{Timeout: cfg.Enrichment.Timeout()}))

	emailOpts := []notifier.EmailOption{}
	if cfg.Email.Endpoint != "" {
		emailOpts = append(emailOpts, notifier.WithEndpoint(cfg.Email.Endpoint))
	}
	emails := notifier.NewEmailClient(cfg.Email.PlunkAPIKey, emailOpts...)

	conversationService := service.NewConversationService(service.ConversationDependencies{
		TicketRepo: ticketRepo,
		Rewriter:   rewriter,
		Emails:     emails,
		Inbox:      inbox,
		Dispatcher: dispatcher,
		App:        cfg.App,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Inbox:      inbox,
		Dispatcher: dispatcher,
	})
	authService := service.NewAuthService(cfg.Auth, agentRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Ops)
	worker.StartNotificationWorker(notificationService)

	agentMiddleware := auth.NewAgentMiddleware(authService.TokenManager(), agentRepo)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:         handlers.NewTicketsHandler(ticketService, conversationService),
		Support:         handlers.NewSupportHandler(ticketService, conversationService),
		Agents:          handlers.NewAgentsHandler(authService),
		AgentMiddleware: agentMiddleware,
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
