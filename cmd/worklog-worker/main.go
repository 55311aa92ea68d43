// worklog-worker — выполняет асинхронные вызовы шагов.
//
// Worker:
//   - Получает step.invoke из очереди steps.invoke
//   - Выполняет шаг (jira.worklog.update)
//   - Сохраняет вызов в PostgreSQL, если БД доступна
//   - Публикует step.result
//
// Шаги не повторяются: неудачное сообщение уходит в DLQ.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/mq"
	"github.com/shaiso/jira-worklog/internal/repo"
	"github.com/shaiso/jira-worklog/internal/telemetry"
	"github.com/shaiso/jira-worklog/internal/worker"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting worklog-worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	osEnv := config.OSEnv()

	// Окружение шагов (jira_*): файл перечитывается при изменении
	env := osEnv
	if path := os.Getenv("WORKLOG_ENV_FILE"); path != "" {
		fileEnv, err := config.NewReloadable(path, env, logger)
		if err != nil {
			logger.Error("failed to load step environment", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := fileEnv.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("env file watch stopped", "error", err)
			}
		}()
		env = fileEnv
	}

	cfg := worker.Config{
		Env:      env,
		Prefetch: config.GetInt(osEnv, "WORKER_PREFETCH", 0),
		Logger:   logger,
	}

	// PostgreSQL
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Warn("database not available, invocation history disabled", "error", err)
	} else {
		defer pool.Close()

		invocations := repo.NewInvocationRepo(pool)
		if err := invocations.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		cfg.Store = invocations
		logger.Info("database connected")
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(config.Get(osEnv, "RABBITMQ_URL", mq.DefaultURL()), "worklog-worker", logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	cfg.Conn = mqConn
	cfg.Publisher = mq.NewPublisher(mqConn, logger)

	w := worker.New(cfg)
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		if !mqConn.IsConnected() {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_, _ = rw.Write([]byte("rabbitmq disconnected"))
			return
		}
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + config.Get(osEnv, "WORKER_PORT", "8082")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	w.Stop()
	logger.Info("worklog-worker stopped")
}
