package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/mq"
	"github.com/shaiso/jira-worklog/internal/steps"
)

// defaultPrefetch — сообщений в обработке одновременно.
const defaultPrefetch = 5

// ResultPublisher публикует исходы вызовов (реализация: mq.Publisher).
type ResultPublisher interface {
	PublishResult(ctx context.Context, payload mq.ResultPayload) error
}

// Worker выполняет вызовы шагов из очереди steps.invoke.
//
// Worker — stateless компонент:
//   - Получает step.invoke из RabbitMQ
//   - Выполняет шаг через Executor (статусы пишутся в хранилище)
//   - Публикует step.result
//
// Несколько экземпляров могут потреблять из одной очереди.
type Worker struct {
	executor  *Executor
	publisher ResultPublisher
	conn      *mq.Connection
	consumer  *mq.Consumer
	prefetch  int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Worker.
type Config struct {
	// Store — хранилище вызовов (опционально).
	Store InvocationStore

	// Publisher — публикация step.result (опционально).
	Publisher ResultPublisher

	// Conn — соединение для consumer.
	Conn *mq.Connection

	// Registry — реестр шагов (если nil — steps.DefaultRegistry()).
	Registry *steps.Registry

	// Env — окружение шагов.
	Env config.Environment

	// Prefetch — параллельность обработки (default: 5).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = steps.DefaultRegistry()
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	return &Worker{
		executor:  NewExecutor(registry, cfg.Env, cfg.Store),
		publisher: cfg.Publisher,
		conn:      cfg.Conn,
		prefetch:  prefetch,
		logger:    logger,
	}
}

// Start запускает consumer очереди steps.invoke.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"prefetch", w.prefetch,
		"step_types", w.executor.Registry().Types(),
	)

	w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:    mq.QueueStepsInvoke,
		Handler:  w.handleInvoke,
		Prefetch: w.prefetch,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("invoke consumer error", "error", err)
		}
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и ждёт завершения обработчиков.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()
	w.logger.Info("worker stopped")
}
