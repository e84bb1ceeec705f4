package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/bot"
	"github.com/spec-kit/ticket-bot/internal/commands"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/extension"
	"github.com/spec-kit/ticket-bot/internal/manage"
	"github.com/spec-kit/ticket-bot/internal/messages"
	"github.com/spec-kit/ticket-bot/internal/notice"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/session"
	"github.com/spec-kit/ticket-bot/internal/steptype"
	"github.com/spec-kit/ticket-bot/internal/store"
	"github.com/spec-kit/ticket-bot/internal/transport"
	"github.com/spec-kit/ticket-bot/internal/wizard"
)

// application holds every long-lived component of a running bot.
type application struct {
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	sessions   *session.Manager
	store      *store.Manager
	tickets    *service.TicketService
	catalog    *service.CatalogService
	bot        *bot.Bot
	backend    store.Backend
	logger     *zap.Logger
}

// buildRegistry returns the built-in step types merged with the enabled extensions.
func buildRegistry(cfg *config.Config, logger *zap.Logger) (*steptype.Registry, error) {
	registry := steptype.NewBuiltinRegistry()
	defs, err := extension.Install(registry, extension.Options{
		Dir:      cfg.Extensions.Dir,
		Disabled: cfg.Extensions.Disabled,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load extensions: %w", err)
	}
	for _, def := range defs {
		logger.Info("extension step type loaded",
			zap.String("id", def.ID),
			zap.String("base", def.Base),
			zap.String("version", def.Version))
	}
	return registry, nil
}

func newTransport(cfg *config.Config, logger *zap.Logger) (transport.Transport, error) {
	if cfg.Gateway.BaseURL == "" {
		logger.Warn("GATEWAY_BASE_URL not set, using the in-memory transport")
		return transport.NewMemory(), nil
	}
	return transport.NewGateway(transport.GatewayOptions{
		BaseURL: cfg.Gateway.BaseURL,
		Token:   cfg.Gateway.Token,
		Timeout: cfg.Gateway.Timeout(),
		Logger:  logger,
	})
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	msgs, err := messages.Load(cfg.Bot.MessagesFile)
	if err != nil {
		return nil, err
	}
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ticketRepo := repository.NewTicketRepository()
	typeRepo := repository.NewTicketTypeRepository()
	storeManager := store.NewManager(store.ManagerDependencies{
		Backend:    backend,
		Registry:   registry,
		TicketRepo: ticketRepo,
		TypeRepo:   typeRepo,
		Logger:     logger,
	})
	if _, err := storeManager.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("load document: %w", err)
	}

	chat, err := newTransport(cfg, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	sessions := session.NewManager(logger)
	notifier := notice.New(chat, msgs, cfg.Bot.ErrorDeleteDelay(), logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	catalog := service.NewCatalogService(service.CatalogDependencies{
		TypeRepo:   typeRepo,
		Registry:   registry,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
	})
	service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Transport:  chat,
		Messages:   msgs,
		TicketRepo: ticketRepo,
		StepName:   catalog.StepTypeName,
		Logger:     logger,
	}).RegisterHandlers()

	router := commands.NewRouter(commands.Dependencies{
		Bot:    cfg.Bot,
		Policy: auth.ManagerPolicy{Role: cfg.Bot.ManagerRole, Owner: domain.UserID(cfg.Bot.OwnerID)},
		Wizard: wizard.Dependencies{
			Sessions:       sessions,
			Catalog:        catalog,
			Tickets:        ticketService,
			Transport:      chat,
			Messages:       msgs,
			Notifier:       notifier,
			Metrics:        metrics,
			Logger:         logger,
			TitleMaxLength: cfg.Bot.TitleMaxLength,
			AutoDelete:     cfg.Bot.DeleteMessages,
		},
		Manage: manage.Dependencies{
			Sessions:    sessions,
			Tickets:     ticketService,
			Assignments: assignments,
			Catalog:     catalog,
			Transport:   chat,
			Messages:    msgs,
			Notifier:    notifier,
			Metrics:     metrics,
			Logger:      logger,
		},
		Tickets:   ticketService,
		Transport: chat,
		Messages:  msgs,
		Notifier:  notifier,
		Logger:    logger,
	})

	return &application{
		metrics:    metrics,
		dispatcher: dispatcher,
		sessions:   sessions,
		store:      storeManager,
		tickets:    ticketService,
		catalog:    catalog,
		bot: bot.New(bot.Dependencies{
			Sessions:  sessions,
			Commands:  router,
			Transport: chat,
			Logger:    logger,
		}),
		backend: backend,
		logger:  logger,
	}, nil
}

func (a *application) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
}
