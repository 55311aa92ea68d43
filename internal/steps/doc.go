// Package steps содержит шаги, которые хост (API, worker, CLI) выполняет по типу.
//
// # Интерфейс Step
//
//	type Step interface {
//	    Type() string
//	    Execute(ctx context.Context, req *Request) (*Response, error)
//	}
//
// Request содержит:
//   - StepID — идентификатор вызова
//   - Inputs — входы (коллекции значений, шаг берёт первое)
//   - Env — окружение шага (config.Environment)
//
// Response содержит Result — результат шага (nil, если проекция пуста).
//
// # Callbacks
//
// Run связывает Execute с парой complete/fail:
//
//	steps.Run(ctx, step, req, steps.Callbacks{
//	    Complete: func(result any) { ... },
//	    Fail:     func(err error) { ... },
//	})
//
// # jira.worklog.update
//
// WorklogUpdateStep обновляет worklog в Jira одним PUT и возвращает
// ответ, спроецированный через WorklogTemplate. Порядок проверок:
// окружение (jira.ConfigError), затем входы (InputError, только если
// нет и issue, и worklogId). Запрос не отправляется, если проверка не прошла.
//
// Ошибки терминальные, повторов нет. Вид ошибки — Kind(err).
package steps
