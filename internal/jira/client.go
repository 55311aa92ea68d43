package jira

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shaiso/jira-worklog/internal/telemetry"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 10 * 1024 * 1024 // 10 MB
)

// WorklogUpdate — параметры обновления worklog.
type WorklogUpdate struct {
	Issue     string
	WorklogID string

	// AdjustEstimate и NewEstimate передаются как есть, без проверки.
	AdjustEstimate string
	NewEstimate    string
}

// Client — клиент Jira REST API.
type Client struct {
	auth   Auth
	client *http.Client
}

// Option — опция клиента.
type Option func(*Client)

// WithHTTPClient задаёт HTTP клиент (для тестов).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// Общие HTTP-клиенты процесса: по одному на режим проверки TLS.
// Client создаётся на каждый вызов, а соединения к Jira переиспользуются.
var (
	strictHTTPClient   = newHTTPClient(true)
	insecureHTTPClient = newHTTPClient(false)
)

func newHTTPClient(strictSSL bool) *http.Client {
	return &http.Client{
		Timeout: defaultTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: !strictSSL}, //nolint:gosec // jira_strictSSL=false
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// HTTPClient возвращает общий HTTP-клиент для режима проверки TLS.
func HTTPClient(strictSSL bool) *http.Client {
	if strictSSL {
		return strictHTTPClient
	}
	return insecureHTTPClient
}

// NewClient создаёт клиент поверх общего HTTP-клиента.
// Редиректы следуют по умолчанию, проверка TLS — по Auth.StrictSSL.
func NewClient(auth Auth, opts ...Option) *Client {
	c := &Client{
		auth:   auth,
		client: HTTPClient(auth.StrictSSL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MakeURI строит полный URL ресурса по относительному пути.
func (c *Client) MakeURI(path string) string {
	return c.auth.BaseURL() + path
}

// WorklogURI возвращает URL worklog с query-параметрами.
// issue и worklogId экранируются как сегменты пути.
// adjustEstimate и newEstimate добавляются только непустыми и именно в этом порядке.
func (c *Client) WorklogURI(u WorklogUpdate) string {
	uri := c.MakeURI("/issue/" + url.PathEscape(u.Issue) + "/worklog/" + url.PathEscape(u.WorklogID))

	var query []string
	if u.AdjustEstimate != "" {
		query = append(query, "adjustEstimate="+url.QueryEscape(u.AdjustEstimate))
	}
	if u.NewEstimate != "" {
		query = append(query, "newEstimate="+url.QueryEscape(u.NewEstimate))
	}
	if len(query) > 0 {
		uri += "?" + strings.Join(query, "&")
	}
	return uri
}

// UpdateWorklog выполняет PUT с пустым JSON телом.
//
// На 200 возвращает разобранное тело: JSON-значение, либо строку,
// если тело не JSON. Остальные коды — *StatusError.
func (c *Client) UpdateWorklog(ctx context.Context, u WorklogUpdate) (any, error) {
	uri := c.WorklogURI(u)
	logger := telemetry.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uri, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.SetBasicAuth(c.auth.User, c.auth.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.Debug("jira request", "method", req.Method, "url", uri)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		telemetry.ObserveJiraRequest(req.Method, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	telemetry.ObserveJiraRequest(req.Method, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		// тело ошибки не нужно, но дочитываем для переиспользования соединения
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		logger.Warn("jira request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("issue", u.Issue),
			slog.String("worklog_id", u.WorklogID),
		)
		return nil, NewStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrTransport, err)
	}

	return decodeBody(body), nil
}

// decodeBody разбирает JSON; если не удалось — возвращает тело строкой.
func decodeBody(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}
