package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/domain"
	"github.com/shaiso/jira-worklog/internal/steps"
	"github.com/shaiso/jira-worklog/internal/worker"
)

// RunLocal выполняет шаг в процессе, без API и хранилища.
func RunLocal(ctx context.Context, env config.Environment, stepType string, inputs map[string][]any) (*InvocationResponse, error) {
	registry := steps.DefaultRegistry()
	if !registry.Has(stepType) {
		return nil, fmt.Errorf("%w: %s", steps.ErrStepNotFound, stepType)
	}

	inv := domain.NewInvocation(stepType, inputs)
	if err := worker.NewExecutor(registry, env, nil).Execute(ctx, inv); err != nil {
		return nil, err
	}

	return localResponse(inv), nil
}

// localResponse конвертирует вызов в формат ответа API.
func localResponse(inv *domain.Invocation) *InvocationResponse {
	resp := &InvocationResponse{
		ID:         inv.ID.String(),
		StepType:   inv.StepType,
		Status:     string(inv.Status),
		Inputs:     inv.Inputs,
		Result:     inv.Result,
		Error:      inv.Error,
		ErrorKind:  inv.ErrorKind,
		DurationMs: inv.Duration().Milliseconds(),
		CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.StartedAt != nil {
		resp.StartedAt = inv.StartedAt.Format(time.RFC3339)
	}
	if inv.FinishedAt != nil {
		resp.FinishedAt = inv.FinishedAt.Format(time.RFC3339)
	}
	return resp
}
