// worklog-api — HTTP API для вызова шагов jira.worklog.update.
//
// Синхронные вызовы выполняются в процессе API, асинхронные
// публикуются в RabbitMQ и выполняются worklog-worker.
// PostgreSQL и RabbitMQ опциональны: без них API работает
// в синхронном режиме без истории вызовов.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/jira-worklog/internal/api"
	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/mq"
	"github.com/shaiso/jira-worklog/internal/repo"
	"github.com/shaiso/jira-worklog/internal/telemetry"
)

var (
	startTime = time.Now()
	healthz   = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worklog_api_healthz_requests_total",
		Help: "Total /healthz requests handled by worklog-api",
	})
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting worklog-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Окружение шагов (jira_*): файл перечитывается при изменении
	env := config.OSEnv()
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

	cfg := api.Config{
		Env:    env,
		Logger: logger,
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
		logger.Info("connected to database")
	}

	// RabbitMQ
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, "worklog-api", logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, async invocations disabled", "error", err)
	} else {
		defer mqConn.Close()

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		cfg.Publisher = mq.NewPublisher(mqConn, logger)
		logger.Info("RabbitMQ connected")
	}

	handler := api.NewHandler(cfg)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		healthz.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(mux)

	addr := ":" + config.Get(config.OSEnv(), "API_PORT", "8080")

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
