package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/alonebown/crewdesk/internal/api/http"
	"github.com/alonebown/crewdesk/internal/api/http/handlers"
	"github.com/alonebown/crewdesk/internal/bot"
	"github.com/alonebown/crewdesk/internal/config"
	"github.com/alonebown/crewdesk/internal/events"
	"github.com/alonebown/crewdesk/internal/observability"
	"github.com/alonebown/crewdesk/internal/persistence"
	"github.com/alonebown/crewdesk/internal/repository"
	"github.com/alonebown/crewdesk/internal/service"
	"github.com/alonebown/crewdesk/internal/telegram"
	"github.com/alonebown/crewdesk/internal/worker"
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

	sheetsClient, err := persistence.NewSheets(ctx, cfg.Sheets, logger)
	if err != nil {
		logger.Fatal("failed to init sheets client", zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	ticketLedger := repository.NewTicketLedger(sheetsClient, cfg.Sheets.TicketsWorksheet)
	rosterLedger := repository.NewRosterLedger(sheetsClient, cfg.Sheets.RosterWorksheet)
	documents := repository.NewDocumentStore(cfg.Storage.TicketsDir)

	ticketRepo := repository.NewTicketRepository(ticketLedger, documents, cfg.Bot.Location(), logger)
	rosterRepo := repository.NewRosterRepository(rosterLedger)
	attachmentRepo := repository.NewAttachmentRepository(cfg.Storage.AttachmentsDir)

	gateway, err := telegram.NewGateway(cfg.Bot.Token, logger)
	if err != nil {
		logger.Fatal("failed to init telegram gateway", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	assignmentService := service.NewAssignmentService(gateway, cfg.Bot.ModeratorRoleTitle, cfg.Bot.SelectCapacity)
	lifecycleService := service.NewLifecycleService(cfg.Bot, service.LifecycleDependencies{
		Tickets:     ticketRepo,
		Attachments: attachmentRepo,
		Assignment:  assignmentService,
		Messenger:   gateway,
		Downloader:  gateway,
		Dispatcher:  dispatcher,
		Guard:       redis,
		Metrics:     metrics,
		Logger:      logger,
	})
	browserService := service.NewBrowserService(ticketRepo, cfg.Bot.PanelPageSize)
	rosterService := service.NewRosterService(rosterRepo, gateway, cfg.Bot.ReviewChatID, cfg.Bot.PrivilegedRoles)
	notificationService := service.NewNotificationService(dispatcher, gateway, metrics, logger)

	worker.StartNotificationWorker(notificationService)

	router := bot.NewRouter(cfg.Bot, bot.RouterDependencies{
		Lifecycle:  lifecycleService,
		Assignment: assignmentService,
		Browser:    browserService,
		Roster:     rosterService,
		Messenger:  gateway,
		Metrics:    metrics,
		Logger:     logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 10*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis),
		Tickets: handlers.NewTicketsHandler(browserService),
		Metrics: handlers.NewMetricsHandler(metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	go func() {
		if err := gateway.Run(ctx, router); err != nil && ctx.Err() == nil {
			logger.Fatal("telegram update loop", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
