package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/jira-worklog/internal/repo"
	"github.com/shaiso/jira-worklog/internal/steps"
)

// ErrorCode — машиночитаемый код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Error — ошибка, которую можно отдать клиенту как есть.
//
//	{"error": {"code": "NOT_FOUND", "message": "invocation not found"}}
type Error struct {
	Status  int       `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func badRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: msg}
}

func unavailable(msg string) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: ErrCodeServiceUnavailable, Message: msg}
}

var (
	errNoStore  = unavailable("invocation store is not configured")
	errNoQueue  = unavailable("async invocations require a message queue")
	errInternal = &Error{Status: http.StatusInternalServerError, Code: ErrCodeInternalError, Message: "internal server error"}
)

// toAPIError сопоставляет ошибку ответу. Всё, что не распознано, — 500
// без деталей: текст ошибки остаётся только в логе.
func toAPIError(err error) *Error {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, repo.ErrNotFound):
		return notFound("invocation not found")
	case errors.Is(err, steps.ErrStepNotFound):
		return notFound(err.Error())
	default:
		return errInternal
	}
}

// writeError пишет ошибку; 5xx логируются.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError && err != nil {
		logger.Error("request failed", "error", err, "code", apiErr.Code)
	}
	writeJSON(w, apiErr.Status, struct {
		Error *Error `json:"error"`
	}{apiErr})
}

// writeData — {"data": ...}.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, struct {
		Data any `json:"data"`
	}{data})
}

// writeList — {"data": [...], "total": n}.
func writeList[T any](w http.ResponseWriter, items []T) {
	writeJSON(w, http.StatusOK, struct {
		Data  []T `json:"data"`
		Total int `json:"total"`
	}{items, len(items)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
