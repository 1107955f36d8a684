package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apihttp "github.com/helpdeskops/helpdesk-engine/internal/api/http"
	"github.com/helpdeskops/helpdesk-engine/internal/api/http/handlers"
	"github.com/helpdeskops/helpdesk-engine/internal/auth"
	"github.com/helpdeskops/helpdesk-engine/internal/config"
	"github.com/helpdeskops/helpdesk-engine/internal/escalation"
	"github.com/helpdeskops/helpdesk-engine/internal/events"
	"github.com/helpdeskops/helpdesk-engine/internal/feedback"
	"github.com/helpdeskops/helpdesk-engine/internal/observability"
	"github.com/helpdeskops/helpdesk-engine/internal/persistence"
	"github.com/helpdeskops/helpdesk-engine/internal/repository"
	"github.com/helpdeskops/helpdesk-engine/internal/service"
	"github.com/helpdeskops/helpdesk-engine/internal/sla"
	"github.com/helpdeskops/helpdesk-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(rootCtx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(rootCtx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	rd := persistence.NewRedis(cfg.Redis, logger)
	defer rd.Close()

	var tickets repository.TicketRepository
	if pg.PoolHandle() != nil {
		tickets = repository.NewTicketRepository(pg.PoolHandle())
	} else {
		tickets = repository.NewMemoryTicketRepository()
	}

	var alertStates sla.StateStore
	if rd.Available(rootCtx) {
		alertStates = repository.NewRedisAlertStateStore(rd.Client,
			time.Duration(cfg.Monitor.AlertStateTTLHours)*time.Hour)
	} else {
		alertStates = repository.NewMemoryAlertStateStore()
	}

	dispatcher := events.NewQueueDispatcher(256, logger)
	go dispatcher.Run(rootCtx)

	metrics := observability.NewMetrics()

	engine := escalation.NewEngine(escalation.DefaultRouting(), escalation.Rules{
		MaxFailedAttempts: cfg.Escalation.MaxFailedAttempts,
		BreachRatio:       cfg.Escalation.BreachRatio,
	}, nil)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    tickets,
		Dispatcher:    dispatcher,
		Calculator:    sla.NewCalculator(sla.DefaultPolicy()),
		Engine:        engine,
		Routing:       escalation.DefaultRouting(),
		Classifier:    feedback.NewKeywordClassifier(),
		Logger:        logger,
		MinConfidence: cfg.Escalation.MinConfidence,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	monitor := sla.NewMonitor(sla.MonitorDependencies{
		Source:     tickets,
		States:     alertStates,
		Escalator:  ticketService,
		Dispatcher: dispatcher,
		Thresholds: sla.Thresholds{
			Warning:  cfg.Monitor.WarningRatio,
			Critical: cfg.Monitor.CriticalRatio,
		},
		Logger: logger,
	})
	slaWorker := worker.NewSLAWorker(worker.SLAWorkerDependencies{
		Monitor:        monitor,
		Closer:         ticketService,
		Interval:       cfg.Monitor.ScanInterval(),
		AutoCloseAfter: cfg.Monitor.AutoCloseAfter(),
		Metrics:        metrics,
		Logger:         logger,
	})
	go slaWorker.Run(rootCtx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	guard := auth.NewAuthMiddleware(tokens, cfg.Auth.APIKeyHash)
	if !guard.Enabled() {
		logger.Warn("AUTH_API_KEY_HASH not set; collaborator auth disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})

	apihttp.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Tickets: handlers.NewTicketsHandler(ticketService),
		Auth:    handlers.NewAuthHandler(guard),
		Health:  handlers.NewHealthHandler(cfg.App.Version, pg, rd),
		Guard:   guard,
	})

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
