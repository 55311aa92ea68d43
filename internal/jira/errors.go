package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Ошибки клиента Jira.
var (
	// ErrConfiguration — не заданы обязательные параметры окружения.
	ErrConfiguration = errors.New("jira configuration is incomplete")

	// ErrTransport — сетевая ошибка при выполнении запроса.
	ErrTransport = errors.New("jira transport error")

	// ErrInvalidInput — Jira ответила 400.
	ErrInvalidInput = errors.New("jira rejected the input")

	// ErrForbidden — Jira ответила 403.
	ErrForbidden = errors.New("jira denied access")

	// ErrUnexpectedStatus — любой другой код ответа, кроме 200.
	ErrUnexpectedStatus = errors.New("jira returned unexpected status")
)

// Метки видов ошибок (error_kind).
const (
	KindConfiguration    = "configuration"
	KindInput            = "input"
	KindTransport        = "transport"
	KindClient           = "client"
	KindAuthorization    = "authorization"
	KindUnexpectedStatus = "unexpected_status"
	KindInternal         = "internal"
)

// ConfigMessage — сообщение об ошибке конфигурации.
const ConfigMessage = "A [jira_protocol, jira_port, jira_apiVers, *jira_host, *jira_user, *jira_password] environment has this module (* - required)."

// Сообщения для кодов ответа.
const (
	msgBadRequest = "Returned if the input is invalid (e.g. missing required fields, invalid values, and so forth)."
	msgForbidden  = "Returned if the calling user does not have permission to update the worklog"
	msgOther      = "Something is happened."
)

// StatusError — ответ Jira с кодом, отличным от 200.
type StatusError struct {
	StatusCode int
	Message    string
	kind       error
}

// NewStatusError классифицирует код ответа.
func NewStatusError(code int) *StatusError {
	switch code {
	case http.StatusBadRequest:
		return &StatusError{StatusCode: code, Message: msgBadRequest, kind: ErrInvalidInput}
	case http.StatusForbidden:
		return &StatusError{StatusCode: code, Message: msgForbidden, kind: ErrForbidden}
	default:
		return &StatusError{StatusCode: code, Message: msgOther, kind: ErrUnexpectedStatus}
	}
}

// Error реализует интерфейс error. Сообщение начинается с кода ответа.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Unwrap возвращает sentinel-ошибку вида.
func (e *StatusError) Unwrap() error {
	return e.kind
}

// Kind возвращает метку вида ошибки. Для nil — пустая строка.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrInvalidInput):
		return KindClient
	case errors.Is(err, ErrForbidden):
		return KindAuthorization
	case errors.Is(err, ErrUnexpectedStatus):
		return KindUnexpectedStatus
	case errors.Is(err, ErrTransport), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	default:
		return KindInternal
	}
}

// ConfigError — не заданы обязательные ключи окружения.
type ConfigError struct {
	// Missing — отсутствующие ключи в порядке проверки.
	Missing []string
}

// Error реализует интерфейс error.
func (e *ConfigError) Error() string {
	return ConfigMessage
}

// Unwrap возвращает ErrConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
