// Package telemetry обеспечивает наблюдаемость сервиса.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики шагов и запросов к Jira
//
// API и worker используют единый формат логирования
// и экспортируют метрики на /metrics endpoint.
package telemetry
