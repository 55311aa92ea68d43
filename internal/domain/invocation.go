package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invocation — один вызов шага.
//
// Invocation создаётся когда:
// - API принимает POST /api/v1/steps/{type}/invocations
// - Worker получает сообщение step.invoke
// - CLI выполняет шаг локально (без хранилища)
type Invocation struct {
	// ID — уникальный идентификатор вызова.
	ID uuid.UUID `json:"id"`

	// StepType — тип шага (например, "jira.worklog.update").
	StepType string `json:"step_type"`

	// Inputs — входы шага, каждое значение — коллекция.
	Inputs map[string][]any `json:"inputs,omitempty"`

	// Status — текущий статус.
	Status InvocationStatus `json:"status"`

	// Result — результат complete. Nil, если проекция пуста или вызов не завершён.
	Result any `json:"result,omitempty"`

	// Error — сообщение fail.
	Error string `json:"error,omitempty"`

	// ErrorKind — вид ошибки (configuration, input, transport, ...).
	ErrorKind string `json:"error_kind,omitempty"`

	// StartedAt — время перехода в RUNNING.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// NewInvocation создаёт вызов в статусе PENDING.
func NewInvocation(stepType string, inputs map[string][]any) *Invocation {
	return &Invocation{
		ID:        uuid.New(),
		StepType:  stepType,
		Inputs:    inputs,
		Status:    InvocationStatusPending,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если вызов ещё не завершён.
func (i *Invocation) Duration() time.Duration {
	if i.StartedAt == nil || i.FinishedAt == nil {
		return 0
	}
	return i.FinishedAt.Sub(*i.StartedAt)
}

// IsFinished возвращает true, если вызов завершён.
func (i *Invocation) IsFinished() bool {
	return i.Status.IsTerminal()
}

// MarkRunning переводит вызов в статус RUNNING.
func (i *Invocation) MarkRunning() {
	now := time.Now()
	i.Status = InvocationStatusRunning
	i.StartedAt = &now
}

// MarkSucceeded переводит вызов в статус SUCCEEDED с результатом.
func (i *Invocation) MarkSucceeded(result any) {
	now := time.Now()
	i.Status = InvocationStatusSucceeded
	i.FinishedAt = &now
	i.Result = result
}

// MarkFailed переводит вызов в статус FAILED.
func (i *Invocation) MarkFailed(err, kind string) {
	now := time.Now()
	i.Status = InvocationStatusFailed
	i.FinishedAt = &now
	i.Error = err
	i.ErrorKind = kind
}
