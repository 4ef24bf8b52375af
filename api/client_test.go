package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/verdant/api"
)

// staticTokens is a TokenSource with a fixed credential.
type staticTokens struct {
	token   string
	present bool
}

func (s staticTokens) Token() (string, bool, error) {
	return s.token, s.present, nil
}

// fastRetry keeps backoff out of test runtime.
func fastRetry(attempts int) api.RetryConfig {
	return api.RetryConfig{
		MaxAttempts:       attempts,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func TestClient_Do_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/plants/my-uploads", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := api.New(server.URL)

	body, err := client.Do(context.Background(), api.Call{
		Op:     "list plants",
		Method: http.MethodGet,
		Path:   "/plants/my-uploads",
		Query:  map[string][]string{"page": {"0"}},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClient_Do_BearerHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := api.New(server.URL, api.WithTokenSource(staticTokens{token: "abc123", present: true}))

	_, err := client.Do(context.Background(), api.Call{
		Op:            "get user info",
		Method:        http.MethodGet,
		Path:          "/user/myInfo",
		Authenticated: true,
	})
	require.NoError(t, err)
}

func TestClient_Do_NoSessionSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := api.New(server.URL, api.WithTokenSource(staticTokens{present: false}))

	_, err := client.Do(context.Background(), api.Call{
		Op:            "get user info",
		Method:        http.MethodGet,
		Path:          "/user/myInfo",
		Authenticated: true,
	})

	require.ErrorIs(t, err, api.ErrNoSession)
	assert.Equal(t, int32(0), hits.Load(), "no request should reach the server without a session")
}

func TestClient_Do_RetriesTransientThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"recovered":true}`))
	}))
	defer server.Close()

	client := api.New(server.URL, api.WithRetryConfig(fastRetry(3)))

	body, err := client.Do(context.Background(), api.Call{
		Op:     "unread count",
		Method: http.MethodGet,
		Path:   "/notifications/count/unread",
		Retry:  true,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"recovered":true}`, string(body))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_Do_RetryBudgetExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := api.New(server.URL, api.WithRetryConfig(fastRetry(3)))

	_, err := client.Do(context.Background(), api.Call{
		Op:     "unread count",
		Method: http.MethodGet,
		Path:   "/notifications/count/unread",
		Retry:  true,
	})

	require.Error(t, err)
	assert.True(t, api.IsTransient(err))
	assert.Equal(t, int32(3), attempts.Load(), "attempts must stop at the configured bound")
}

func TestClient_Do_ClientErrorNeverRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":404,"message":"plant not found"}`))
	}))
	defer server.Close()

	client := api.New(server.URL, api.WithRetryConfig(fastRetry(5)))

	_, err := client.Do(context.Background(), api.Call{
		Op:     "plant details",
		Method: http.MethodGet,
		Path:   "/plants/latest",
		Retry:  true,
	})

	require.Error(t, err)
	assert.True(t, api.IsFatal(err))
	assert.Equal(t, int32(1), attempts.Load(), "4xx must not be retried")

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.Status)
	assert.Equal(t, "plant not found", serverErr.Message)
}

func TestClient_Do_TooManyRequestsIsTransient(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := api.New(server.URL, api.WithRetryConfig(fastRetry(2)))

	_, err := client.Do(context.Background(), api.Call{
		Op:     "list plants",
		Method: http.MethodGet,
		Path:   "/plants/my-uploads",
		Retry:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_Do_NoRetryFlagSingleAttempt(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := api.New(server.URL, api.WithRetryConfig(fastRetry(5)))

	_, err := client.Do(context.Background(), api.Call{
		Op:     "login",
		Method: http.MethodPost,
		Path:   "/auth/login",
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load(), "calls without Retry must be single-attempt")
}

func TestClient_Do_FallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := api.New(server.URL)

	_, err := client.Do(context.Background(), api.Call{
		Op:       "login",
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Fallback: "invalid credentials",
	})

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "invalid credentials", serverErr.Message)
}

func TestDecodeEnvelope_Success(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"code":   200,
		"result": map[string]string{"token": "abc"},
	})
	require.NoError(t, err)

	result, err := api.DecodeEnvelope[struct {
		Token string `json:"token"`
	}]("login", data, "failed")

	require.NoError(t, err)
	assert.Equal(t, "abc", result.Token)
}

func TestDecodeEnvelope_RejectionOnHTTP200(t *testing.T) {
	data := []byte(`{"code":401,"message":"bad token"}`)

	_, err := api.DecodeEnvelope[struct{}]("login", data, "failed")

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, 401, serverErr.Status)
	assert.Equal(t, "bad token", serverErr.Message)
}

func TestDecodeEnvelope_MalformedBody(t *testing.T) {
	_, err := api.DecodeEnvelope[struct{}]("login", []byte(`not json`), "failed")

	var parseErr *api.ParseError
	require.ErrorAs(t, err, &parseErr)
}
