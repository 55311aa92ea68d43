package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы выполнения шага.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

var (
	stepInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklog_step_invocations_total",
		Help: "Total step invocations by step type, outcome and error kind",
	}, []string{"step_type", "outcome", "error_kind"})

	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worklog_step_duration_seconds",
		Help:    "Step invocation duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"step_type", "outcome"})

	jiraRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worklog_jira_request_duration_seconds",
		Help:    "Duration of outbound Jira REST requests by method and status code",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// ObserveStep записывает исход выполнения шага.
// errorKind пустой для успешного выполнения.
func ObserveStep(stepType, outcome, errorKind string, elapsed time.Duration) {
	stepInvocations.WithLabelValues(stepType, outcome, errorKind).Inc()
	stepDuration.WithLabelValues(stepType, outcome).Observe(elapsed.Seconds())
}

// ObserveJiraRequest записывает длительность запроса к Jira.
// status == 0 — транспортная ошибка.
func ObserveJiraRequest(method string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	jiraRequestDuration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}
