package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/jira-worklog/internal/domain"
	"github.com/shaiso/jira-worklog/internal/mq"
)

// handleInvoke обрабатывает сообщение step.invoke из очереди steps.invoke.
func (w *Worker) handleInvoke(ctx context.Context, delivery *mq.Delivery) error {
	if delivery.Message.Type != mq.MessageTypeStepInvoke {
		return fmt.Errorf("unexpected message type %q", delivery.Message.Type)
	}

	payload, err := mq.ParsePayload[mq.InvokePayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse step.invoke payload", "error", err)
		return err
	}

	if _, err := w.Process(ctx, payload); err != nil {
		// повторная доставка уже выполненного вызова — подтверждаем
		if errors.Is(err, ErrAlreadyFinished) {
			w.logger.Debug("invocation skipped", "invocation_id", payload.InvocationID, "reason", err)
			return nil
		}
		return err
	}

	return nil
}

// Process выполняет вызов из сообщения и публикует step.result.
func (w *Worker) Process(ctx context.Context, payload mq.InvokePayload) (*domain.Invocation, error) {
	inv, err := w.executor.Load(ctx, payload.InvocationID)
	if err != nil {
		return nil, err
	}

	if inv == nil {
		// вызов опубликован не через API — создаём запись
		inv = domain.NewInvocation(payload.StepType, payload.Inputs)
		inv.ID = payload.InvocationID
		if err := w.executor.Create(ctx, inv); err != nil {
			return nil, err
		}
	}

	if inv.IsFinished() {
		return inv, fmt.Errorf("%w: %s is %s", ErrAlreadyFinished, inv.ID, inv.Status)
	}

	w.logger.Info("invocation started",
		"invocation_id", inv.ID,
		"step_type", inv.StepType,
	)

	if err := w.executor.Execute(ctx, inv); err != nil {
		return inv, err
	}

	w.logger.Info("invocation finished",
		"invocation_id", inv.ID,
		"status", inv.Status,
		"error_kind", inv.ErrorKind,
		"duration_ms", inv.Duration().Milliseconds(),
	)

	w.publishResult(ctx, inv)
	return inv, nil
}

// publishResult публикует step.result.
func (w *Worker) publishResult(ctx context.Context, inv *domain.Invocation) {
	if w.publisher == nil {
		w.logger.Warn("publisher not available, skipping step.result publish",
			"invocation_id", inv.ID,
		)
		return
	}

	payload := mq.ResultPayload{
		InvocationID: inv.ID,
		StepType:     inv.StepType,
		Status:       string(inv.Status),
		Result:       inv.Result,
		Error:        inv.Error,
		ErrorKind:    inv.ErrorKind,
	}

	if err := w.publisher.PublishResult(ctx, payload); err != nil {
		// исход уже сохранён, сообщение не отклоняем
		w.logger.Warn("failed to publish step.result",
			"invocation_id", inv.ID,
			"error", err,
		)
	}
}
