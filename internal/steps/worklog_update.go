package steps

import (
	"context"
	"log/slog"

	"github.com/shaiso/jira-worklog/internal/jira"
	"github.com/shaiso/jira-worklog/internal/pick"
	"github.com/shaiso/jira-worklog/internal/telemetry"
)

// StepTypeWorklogUpdate — тип шага обновления worklog.
const StepTypeWorklogUpdate = "jira.worklog.update"

// Имена входов.
const (
	InputIssue          = "issue"
	InputWorklogID      = "worklogId"
	InputAdjustEstimate = "adjustEstimate"
	InputNewEstimate    = "newEstimate"
)

// InputMessage — сообщение об ошибке входов.
const InputMessage = "A [issue, worklogId] input need for this module."

// worklogTemplate — поля ответа Jira, которые попадают в результат.
var worklogTemplate = pick.Obj(
	pick.F("id", pick.P("id")),
	pick.F("self", pick.P("self")),
	pick.F("author", pick.P("author.name")),
	pick.F("comment", pick.P("comment")),
	pick.F("started", pick.P("started")),
	pick.F("timeSpent", pick.P("timeSpent")),
)

// WorklogTemplate возвращает шаблон результата шага.
func WorklogTemplate() pick.Node {
	return worklogTemplate
}

// InputError — не заданы обязательные входы.
type InputError struct {
	Missing []string
}

// Error реализует интерфейс error.
func (e *InputError) Error() string {
	return InputMessage
}

// Unwrap возвращает ErrInput.
func (e *InputError) Unwrap() error {
	return ErrInput
}

// WorklogUpdateStep — шаг обновления worklog в Jira.
//
// Входы: issue, worklogId, adjustEstimate, newEstimate.
// Окружение: jira_protocol, jira_host, jira_port, jira_user, jira_password,
// jira_apiVers, jira_strictSSL.
//
// Результат — ответ Jira, спроецированный через WorklogTemplate:
//
//	{"id": "100", "self": "...", "author": "bob", "comment": "...",
//	 "started": "...", "timeSpent": "1h"}
type WorklogUpdateStep struct {
	template   pick.Node
	clientOpts []jira.Option
}

// WorklogOption — опция шага.
type WorklogOption func(*WorklogUpdateStep)

// WithClientOptions передаёт опции в jira.Client.
func WithClientOptions(opts ...jira.Option) WorklogOption {
	return func(s *WorklogUpdateStep) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// NewWorklogUpdateStep создаёт шаг.
func NewWorklogUpdateStep(opts ...WorklogOption) *WorklogUpdateStep {
	s := &WorklogUpdateStep{template: worklogTemplate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Type возвращает тип шага.
func (s *WorklogUpdateStep) Type() string {
	return StepTypeWorklogUpdate
}

// Describe описывает входы и окружение шага.
func (s *WorklogUpdateStep) Describe() Info {
	return Info{
		Type:     StepTypeWorklogUpdate,
		Inputs:   []string{InputIssue, InputWorklogID, InputAdjustEstimate, InputNewEstimate},
		Required: []string{InputIssue, InputWorklogID},
		Env: []string{
			jira.EnvProtocol, jira.EnvHost, jira.EnvPort, jira.EnvUser,
			jira.EnvPassword, jira.EnvAPIVersion, jira.EnvStrictSSL,
		},
	}
}

// Execute проверяет окружение и входы, выполняет PUT и проецирует ответ.
// До отправки запроса проверяется сначала окружение, затем входы.
func (s *WorklogUpdateStep) Execute(ctx context.Context, req *Request) (*Response, error) {
	logger := telemetry.FromContext(ctx)

	auth, err := jira.AuthFromEnv(req.Env)
	if err != nil {
		return nil, err
	}

	update := jira.WorklogUpdate{
		Issue:          req.Inputs.String(InputIssue),
		WorklogID:      req.Inputs.String(InputWorklogID),
		AdjustEstimate: req.Inputs.String(InputAdjustEstimate),
		NewEstimate:    req.Inputs.String(InputNewEstimate),
	}

	// ошибка только если нет обоих входов
	if update.Issue == "" && update.WorklogID == "" {
		return nil, &InputError{Missing: []string{InputIssue, InputWorklogID}}
	}

	logger.Debug("updating worklog",
		slog.String("issue", update.Issue),
		slog.String("worklog_id", update.WorklogID),
	)

	body, err := jira.NewClient(auth, s.clientOpts...).UpdateWorklog(ctx, update)
	if err != nil {
		return nil, err
	}

	result, ok := pick.Project(body, s.template)
	if !ok {
		return &Response{}, nil
	}
	return &Response{Result: result}, nil
}
