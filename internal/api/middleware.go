package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/jira-worklog/internal/telemetry"
)

// HeaderRequestID — заголовок с ID запроса (входящий сохраняется, иначе генерируется).
const HeaderRequestID = "X-Request-ID"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklog_api_http_requests_total",
		Help: "Total HTTP requests handled by worklog-api",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worklog_api_http_request_duration_seconds",
		Help:    "Duration of HTTP requests handled by worklog-api",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Middleware оборачивает http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain(m1, m2)(h) == m1(m2(h)): первый middleware внешний.
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Logging кладёт в контекст логгер запроса с request_id и пишет
// одну запись на запрос. Логгер из контекста подхватывают executor и шаг.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, requestID)

			reqLogger := logger.With("request_id", requestID)
			rec := record(w)

			next.ServeHTTP(rec, r.WithContext(telemetry.WithLogger(r.Context(), reqLogger)))

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			reqLogger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// Metrics считает запросы по шаблону маршрута (r.Pattern), а не по пути:
// ID вызовов не попадают в метки.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			httpRequests.WithLabelValues(r.Method, r.Pattern, strconv.Itoa(rec.status)).Inc()
			httpDuration.WithLabelValues(r.Method, r.Pattern).Observe(time.Since(start).Seconds())
		})
	}
}

// Recovery превращает панику обработчика в 500.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("panic recovered",
						"panic", p,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					writeError(w, logger, nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder запоминает код ответа.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// record оборачивает w один раз на всю цепочку.
func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}
