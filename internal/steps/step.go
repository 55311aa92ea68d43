package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shaiso/jira-worklog/internal/config"
	"github.com/shaiso/jira-worklog/internal/jira"
	"github.com/shaiso/jira-worklog/internal/telemetry"
)

// Ошибки шагов.
var (
	// ErrStepNotFound — тип шага не найден в реестре.
	ErrStepNotFound = errors.New("step type not found")

	// ErrInput — не хватает входных данных шага.
	ErrInput = errors.New("invalid step input")
)

// Kind возвращает метку вида ошибки шага: input для ErrInput,
// остальное классифицирует jira.Kind.
func Kind(err error) string {
	if errors.Is(err, ErrInput) {
		return jira.KindInput
	}
	return jira.Kind(err)
}

// Step — интерфейс для типов шагов.
type Step interface {
	// Type возвращает тип шага.
	Type() string

	// Execute выполняет шаг и возвращает результат.
	// Шаг должен проверять ctx.Done() для graceful shutdown.
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Inputs — входы шага. Каждый вход — коллекция значений, шаг берёт первое.
type Inputs map[string][]any

// First возвращает первое значение входа name.
func (in Inputs) First(name string) (any, bool) {
	values := in[name]
	if len(values) == 0 {
		return nil, false
	}
	return values[0], true
}

// String возвращает первое значение входа строкой.
// Отсутствующее значение и nil дают пустую строку.
func (in Inputs) String(name string) string {
	v, ok := in.First(name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Request — входные данные для выполнения шага.
type Request struct {
	// StepID — идентификатор вызова (для логов).
	StepID string

	// Inputs — входы шага.
	Inputs Inputs

	// Env — окружение шага (учётные данные, адреса).
	Env config.Environment
}

// Response — результат выполнения шага.
type Response struct {
	// Result — результат шага. nil, если проекция пуста.
	Result any
}

// NewRequest создаёт новый Request.
func NewRequest(stepID string, inputs Inputs, env config.Environment) *Request {
	if inputs == nil {
		inputs = make(Inputs)
	}
	return &Request{
		StepID: stepID,
		Inputs: inputs,
		Env:    env,
	}
}

// Callbacks — каналы завершения вызова. Ровно один из них вызывается на вызов.
type Callbacks struct {
	Complete func(result any)
	Fail     func(err error)
}

// Run выполняет шаг и сообщает исход через callbacks.
// Записывает метрики шага и возвращает ошибку выполнения (или nil).
func Run(ctx context.Context, step Step, req *Request, cb Callbacks) error {
	logger := telemetry.WithStepType(telemetry.FromContext(ctx), step.Type())
	if req.StepID != "" {
		logger = telemetry.WithInvocationID(logger, req.StepID)
	}
	ctx = telemetry.WithLogger(ctx, logger)

	start := time.Now()
	resp, err := step.Execute(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		kind := Kind(err)
		telemetry.ObserveStep(step.Type(), telemetry.OutcomeFailed, kind, elapsed)
		logger.Warn("step failed", "error", err, "error_kind", kind, "duration_ms", elapsed.Milliseconds())
		if cb.Fail != nil {
			cb.Fail(err)
		}
		return err
	}

	var result any
	if resp != nil {
		result = resp.Result
	}

	telemetry.ObserveStep(step.Type(), telemetry.OutcomeCompleted, "", elapsed)
	logger.Info("step completed", "duration_ms", elapsed.Milliseconds())
	if cb.Complete != nil {
		cb.Complete(result)
	}
	return nil
}
