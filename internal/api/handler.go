package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/domain"
	"github.com/shaiso/jira-worklog/internal/mq"
	"github.com/shaiso/jira-worklog/internal/repo"
	"github.com/shaiso/jira-worklog/internal/steps"
	"github.com/shaiso/jira-worklog/internal/worker"
)

// InvocationStore — хранилище вызовов (реализация: repo.InvocationRepo).
type InvocationStore interface {
	worker.InvocationStore
	List(ctx context.Context, filter repo.InvocationFilter) ([]domain.Invocation, error)
}

// InvokePublisher публикует асинхронные вызовы (реализация: mq.Publisher).
type InvokePublisher interface {
	PublishInvoke(ctx context.Context, payload mq.InvokePayload) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	executor  *worker.Executor
	store     InvocationStore
	publisher InvokePublisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	// Registry — реестр шагов (если nil — steps.DefaultRegistry()).
	Registry *steps.Registry

	// Env — окружение шагов для синхронных вызовов.
	Env config.Environment

	// Store — хранилище (опционально; без него GET /invocations отвечают 503).
	Store InvocationStore

	// Publisher — очередь для async вызовов (опционально).
	Publisher InvokePublisher

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	registry := cfg.Registry
	if registry == nil {
		registry = steps.DefaultRegistry()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var store worker.InvocationStore
	if cfg.Store != nil {
		store = cfg.Store
	}

	return &Handler{
		executor:  worker.NewExecutor(registry, cfg.Env, store),
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    logger,
	}
}
