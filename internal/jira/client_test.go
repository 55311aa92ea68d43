package jira

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/jira-worklog/internal/config"
)

// authFor возвращает Auth, указывающий на тестовый сервер.
func authFor(t *testing.T, srv *httptest.Server) Auth {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return Auth{
		Protocol:   u.Scheme,
		Host:       u.Hostname(),
		Port:       u.Port(),
		User:       "bob",
		Password:   "secret",
		APIVersion: "2",
		StrictSSL:  true,
	}
}

func TestAuthFromEnv_Defaults(t *testing.T) {
	auth, err := AuthFromEnv(config.MapEnv{
		EnvHost:     "jira.example.com",
		EnvUser:     "bob",
		EnvPassword: "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "https", auth.Protocol)
	assert.Equal(t, "443", auth.Port)
	assert.Equal(t, "2", auth.APIVersion)
	assert.True(t, auth.StrictSSL)
	assert.Equal(t, "https://jira.example.com:443/rest/api/2", auth.BaseURL())
}

func TestAuthFromEnv_Overrides(t *testing.T) {
	auth, err := AuthFromEnv(config.MapEnv{
		EnvProtocol:   "http",
		EnvHost:       "localhost",
		EnvPort:       "8080",
		EnvUser:       "bob",
		EnvPassword:   "secret",
		EnvAPIVersion: "latest",
		EnvStrictSSL:  "false",
	})
	require.NoError(t, err)

	assert.False(t, auth.StrictSSL)
	assert.Equal(t, "http://localhost:8080/rest/api/latest", auth.BaseURL())
}

func TestAuthFromEnv_Missing(t *testing.T) {
	tests := []struct {
		name    string
		env     config.MapEnv
		missing []string
	}{
		{"empty", config.MapEnv{}, []string{EnvHost, EnvUser, EnvPassword}},
		{"no host", config.MapEnv{EnvUser: "u", EnvPassword: "p"}, []string{EnvHost}},
		{"blank password", config.MapEnv{EnvHost: "h", EnvUser: "u", EnvPassword: ""}, []string{EnvPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AuthFromEnv(tt.env)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Equal(t, ConfigMessage, err.Error())

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.missing, cfgErr.Missing)
		})
	}
}

func TestWorklogURI(t *testing.T) {
	c := NewClient(Auth{Protocol: "https", Host: "jira", Port: "443", APIVersion: "2"})

	tests := []struct {
		name string
		in   WorklogUpdate
		want string
	}{
		{
			name: "no query",
			in:   WorklogUpdate{Issue: "PRJ-1", WorklogID: "100"},
			want: "https://jira:443/rest/api/2/issue/PRJ-1/worklog/100",
		},
		{
			name: "both estimates in order",
			in:   WorklogUpdate{Issue: "PRJ-1", WorklogID: "100", AdjustEstimate: "new", NewEstimate: "2d 4h"},
			want: "https://jira:443/rest/api/2/issue/PRJ-1/worklog/100?adjustEstimate=new&newEstimate=2d+4h",
		},
		{
			name: "only new estimate",
			in:   WorklogUpdate{Issue: "PRJ-1", WorklogID: "100", NewEstimate: "1h"},
			want: "https://jira:443/rest/api/2/issue/PRJ-1/worklog/100?newEstimate=1h",
		},
		{
			name: "missing worklog id keeps empty segment",
			in:   WorklogUpdate{Issue: "PRJ-1"},
			want: "https://jira:443/rest/api/2/issue/PRJ-1/worklog/",
		},
		{
			name: "path segments are escaped",
			in:   WorklogUpdate{Issue: "PRJ-1/../x?y", WorklogID: "1#2"},
			want: "https://jira:443/rest/api/2/issue/PRJ-1%2F..%2Fx%3Fy/worklog/1%232",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.WorklogURI(tt.in))
		})
	}
}

func TestUpdateWorklog_EscapedTarget(t *testing.T) {
	var path, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(authFor(t, srv)).UpdateWorklog(context.Background(),
		WorklogUpdate{Issue: "A/1?admin=1", WorklogID: "7#frag", AdjustEstimate: "leave"})
	require.NoError(t, err)

	assert.Equal(t, "/rest/api/2/issue/A%2F1%3Fadmin=1/worklog/7%23frag", path)
	assert.Equal(t, "adjustEstimate=leave", query)
}

func TestNewClient_SharesHTTPClient(t *testing.T) {
	strict := NewClient(Auth{StrictSSL: true})
	again := NewClient(Auth{StrictSSL: true})
	insecure := NewClient(Auth{StrictSSL: false})

	assert.Same(t, strict.client, again.client)
	assert.Same(t, HTTPClient(true), strict.client)
	assert.Same(t, HTTPClient(false), insecure.client)
	assert.NotSame(t, strict.client, insecure.client)

	tr, ok := insecure.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)

	tr, ok = strict.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.False(t, tr.TLSClientConfig.InsecureSkipVerify)
}

func TestUpdateWorklog_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/rest/api/2/issue/PRJ-1/worklog/100", r.URL.Path)
		assert.Equal(t, "auto", r.URL.Query().Get("adjustEstimate"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bob", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"100","author":{"name":"bob"}}`))
	}))
	defer srv.Close()

	c := NewClient(authFor(t, srv))
	body, err := c.UpdateWorklog(context.Background(), WorklogUpdate{
		Issue: "PRJ-1", WorklogID: "100", AdjustEstimate: "auto",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":     "100",
		"author": map[string]any{"name": "bob"},
	}, body)
}

func TestUpdateWorklog_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("updated"))
	}))
	defer srv.Close()

	body, err := NewClient(authFor(t, srv)).UpdateWorklog(context.Background(), WorklogUpdate{Issue: "A-1", WorklogID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "updated", body)
}

func TestUpdateWorklog_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/issue/A-1/worklog/1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/moved", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	body, err := NewClient(authFor(t, srv)).UpdateWorklog(context.Background(), WorklogUpdate{Issue: "A-1", WorklogID: "1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1"}, body)
}

func TestUpdateWorklog_Statuses(t *testing.T) {
	tests := []struct {
		status  int
		want    error
		kind    string
		message string
	}{
		{http.StatusBadRequest, ErrInvalidInput, KindClient,
			"400: Returned if the input is invalid (e.g. missing required fields, invalid values, and so forth)."},
		{http.StatusForbidden, ErrForbidden, KindAuthorization,
			"403: Returned if the calling user does not have permission to update the worklog"},
		{http.StatusInternalServerError, ErrUnexpectedStatus, KindUnexpectedStatus,
			"500: Something is happened."},
		{http.StatusNotFound, ErrUnexpectedStatus, KindUnexpectedStatus,
			"404: Something is happened."},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"errorMessages":["nope"]}`))
			}))
			defer srv.Close()

			body, err := NewClient(authFor(t, srv)).UpdateWorklog(context.Background(), WorklogUpdate{Issue: "A-1", WorklogID: "1"})
			require.Error(t, err)
			assert.Nil(t, body)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, tt.kind, Kind(err))

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
		})
	}
}

func TestUpdateWorklog_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	auth := authFor(t, srv)
	srv.Close()

	_, err := NewClient(auth).UpdateWorklog(context.Background(), WorklogUpdate{Issue: "A-1", WorklogID: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, KindTransport, Kind(err))
}

func TestUpdateWorklog_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(authFor(t, srv)).UpdateWorklog(ctx, WorklogUpdate{Issue: "A-1", WorklogID: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, KindConfiguration, Kind(&ConfigError{}))
	assert.Equal(t, KindTransport, Kind(context.DeadlineExceeded))
	assert.Equal(t, KindInternal, Kind(errors.New("boom")))
}
