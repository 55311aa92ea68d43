package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/jira-worklog/internal/domain"
	"github.com/shaiso/jira-worklog/internal/steps"
)

// CreateInvocationRequest — запрос на вызов шага.
//
// Значение входа — скаляр или массив; скаляр становится коллекцией из одного элемента.
//
//	{"inputs": {"issue": "PRJ-1", "worklogId": ["100"]}, "async": false}
type CreateInvocationRequest struct {
	Inputs map[string]any `json:"inputs"`
	Async  bool           `json:"async,omitempty"`
}

// NormalizeInputs приводит входы к коллекциям.
func NormalizeInputs(in map[string]any) map[string][]any {
	out := make(map[string][]any, len(in))
	for k, v := range in {
		switch vv := v.(type) {
		case []any:
			out[k] = vv
		case nil:
			out[k] = nil
		default:
			out[k] = []any{vv}
		}
	}
	return out
}

// InvocationResponse — ответ с вызовом.
type InvocationResponse struct {
	ID         uuid.UUID        `json:"id"`
	StepType   string           `json:"step_type"`
	Status     string           `json:"status"`
	Inputs     map[string][]any `json:"inputs,omitempty"`
	Result     any              `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrorKind  string           `json:"error_kind,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	DurationMs int64            `json:"duration_ms,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// InvocationFromDomain конвертирует domain.Invocation в InvocationResponse.
func InvocationFromDomain(inv domain.Invocation) InvocationResponse {
	return InvocationResponse{
		ID:         inv.ID,
		StepType:   inv.StepType,
		Status:     string(inv.Status),
		Inputs:     inv.Inputs,
		Result:     inv.Result,
		Error:      inv.Error,
		ErrorKind:  inv.ErrorKind,
		StartedAt:  inv.StartedAt,
		FinishedAt: inv.FinishedAt,
		DurationMs: inv.Duration().Milliseconds(),
		CreatedAt:  inv.CreatedAt,
	}
}

// StepResponse — описание зарегистрированного шага.
type StepResponse struct {
	Type     string   `json:"type"`
	Inputs   []string `json:"inputs,omitempty"`
	Required []string `json:"required,omitempty"`
	Env      []string `json:"env,omitempty"`
}

// StepFromInfo конвертирует steps.Info в StepResponse.
func StepFromInfo(info steps.Info) StepResponse {
	return StepResponse{
		Type:     info.Type,
		Inputs:   info.Inputs,
		Required: info.Required,
		Env:      info.Env,
	}
}
