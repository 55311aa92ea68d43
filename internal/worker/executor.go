package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/domain"
	"github.com/shaiso/jira-worklog/internal/repo"
	"github.com/shaiso/jira-worklog/internal/steps"
	"github.com/shaiso/jira-worklog/internal/telemetry"
)

// saveTimeout ограничивает запись статуса, отвязанную от отмены вызывающего.
const saveTimeout = 10 * time.Second

// InvocationStore — хранилище вызовов (реализация: repo.InvocationRepo).
type InvocationStore interface {
	Create(ctx context.Context, inv *domain.Invocation) error
	Update(ctx context.Context, inv *domain.Invocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invocation, error)
}

// Executor выполняет вызов шага и сохраняет переходы статуса.
//
// Используется воркером (асинхронные вызовы) и API (синхронные).
// Store опционален: без него вызов живёт только в памяти.
type Executor struct {
	registry *steps.Registry
	env      config.Environment
	store    InvocationStore
}

// NewExecutor создаёт Executor.
func NewExecutor(registry *steps.Registry, env config.Environment, store InvocationStore) *Executor {
	return &Executor{
		registry: registry,
		env:      env,
		store:    store,
	}
}

// Registry возвращает реестр шагов.
func (e *Executor) Registry() *steps.Registry {
	return e.registry
}

// Store возвращает хранилище (может быть nil).
func (e *Executor) Store() InvocationStore {
	return e.store
}

// Execute переводит вызов в RUNNING, выполняет шаг и фиксирует исход.
//
// Исход шага (complete/fail) записывается в inv, а не возвращается ошибкой.
// Ошибка возвращается только при сбое хранилища.
func (e *Executor) Execute(ctx context.Context, inv *domain.Invocation) error {
	logger := telemetry.WithInvocationID(telemetry.FromContext(ctx), inv.ID.String())
	ctx = telemetry.WithLogger(ctx, logger)

	inv.MarkRunning()
	if err := e.save(ctx, inv); err != nil {
		return err
	}

	step, err := e.registry.Get(inv.StepType)
	if err != nil {
		inv.MarkFailed(err.Error(), steps.Kind(err))
		logger.Warn("unknown step type", "step_type", inv.StepType)
		return e.save(ctx, inv)
	}

	req := steps.NewRequest(inv.ID.String(), inv.Inputs, e.env)
	_ = steps.Run(ctx, step, req, steps.Callbacks{
		Complete: func(result any) {
			inv.MarkSucceeded(result)
		},
		Fail: func(err error) {
			inv.MarkFailed(err.Error(), steps.Kind(err))
		},
	})

	return e.save(ctx, inv)
}

// Create сохраняет новый вызов, если есть хранилище.
func (e *Executor) Create(ctx context.Context, inv *domain.Invocation) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Create(ctx, inv); err != nil {
		return fmt.Errorf("%w: create: %v", ErrStore, err)
	}
	return nil
}

// Load возвращает вызов по ID или nil, если его нет (или нет хранилища).
func (e *Executor) Load(ctx context.Context, id uuid.UUID) (*domain.Invocation, error) {
	if e.store == nil {
		return nil, nil
	}
	inv, err := e.store.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrStore, err)
	}
	return inv, nil
}

// save обновляет вызов в хранилище.
// Отмена ctx (клиент отключился) не должна оставлять вызов в RUNNING,
// поэтому запись идёт в контексте без отмены, но с таймаутом.
func (e *Executor) save(ctx context.Context, inv *domain.Invocation) error {
	if e.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := e.store.Update(ctx, inv); err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrStore, inv.Status, err)
	}
	return nil
}
