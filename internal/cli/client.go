package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, клиент не зависит от internal/api) ---

// InvocationResponse — вызов шага из API.
type InvocationResponse struct {
	ID         string           `json:"id"`
	StepType   string           `json:"step_type"`
	Status     string           `json:"status"`
	Inputs     map[string][]any `json:"inputs,omitempty"`
	Result     any              `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrorKind  string           `json:"error_kind,omitempty"`
	StartedAt  string           `json:"started_at,omitempty"`
	FinishedAt string           `json:"finished_at,omitempty"`
	DurationMs int64            `json:"duration_ms,omitempty"`
	CreatedAt  string           `json:"created_at"`
}

// StepResponse — зарегистрированный шаг.
type StepResponse struct {
	Type     string   `json:"type"`
	Inputs   []string `json:"inputs,omitempty"`
	Required []string `json:"required,omitempty"`
	Env      []string `json:"env,omitempty"`
}

// --- Request types ---

// CreateInvocationRequest — вызов шага.
type CreateInvocationRequest struct {
	Inputs map[string]any `json:"inputs"`
	Async  bool           `json:"async,omitempty"`
}

// ListInvocationsOpts — параметры фильтрации вызовов.
type ListInvocationsOpts struct {
	StepType string
	Status   string
	Limit    int
}

// envelope — общий вид ответа API: data (+total) или error.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для worklog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Invoke вызывает шаг.
func (c *Client) Invoke(stepType string, req CreateInvocationRequest) (*InvocationResponse, error) {
	var inv InvocationResponse
	err := c.call(http.MethodPost, "/api/v1/steps/"+url.PathEscape(stepType)+"/invocations", req, &inv)
	return &inv, err
}

// ListSteps возвращает зарегистрированные шаги.
func (c *Client) ListSteps() ([]StepResponse, error) {
	var steps []StepResponse
	err := c.call(http.MethodGet, "/api/v1/steps", nil, &steps)
	return steps, err
}

// ListInvocations возвращает вызовы с фильтрацией.
func (c *Client) ListInvocations(opts ListInvocationsOpts) ([]InvocationResponse, error) {
	params := url.Values{}
	if opts.StepType != "" {
		params.Set("step_type", opts.StepType)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/api/v1/invocations"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var invocations []InvocationResponse
	err := c.call(http.MethodGet, path, nil, &invocations)
	return invocations, err
}

// GetInvocation возвращает вызов по ID.
func (c *Client) GetInvocation(id string) (*InvocationResponse, error) {
	var inv InvocationResponse
	err := c.call(http.MethodGet, "/api/v1/invocations/"+url.PathEscape(id), nil, &inv)
	return &inv, err
}

// call выполняет запрос и раскладывает data в out.
// Ответ с кодом >= 400 превращается в ошибку "CODE: message".
func (c *Client) call(method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest {
		if decodeErr != nil || env.Error == nil {
			return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
