package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *HTTPClient {
	c := NewHTTPClient("test", 5*time.Second, retries)
	c.retryDelay = time.Millisecond
	return c
}

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "value", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(3).GetJSON(context.Background(), "test", srv.URL, map[string]string{"key": "value"}, &out)
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
}

func TestGetJSON_RetriesServerErrorThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(3).GetJSON(context.Background(), "test", srv.URL, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGetJSON_RetriesRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(3).GetJSON(context.Background(), "test", srv.URL, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetJSON_NotFoundIsPermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(3).GetJSON(context.Background(), "test", srv.URL, nil, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls, "404 must not be retried")
}

func TestGetJSON_OtherClientErrorsArePermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("denied"))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(3).GetJSON(context.Background(), "test", srv.URL, nil, &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestGetJSON_NonJSONContentTypeIsPermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(3).GetJSON(context.Background(), "test", srv.URL, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-JSON")
	assert.Equal(t, 1, calls)
}

func TestGetJSON_ExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(2).GetJSON(context.Background(), "test", srv.URL, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestGetJSON_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient("test", 5*time.Second, 3)
	c.retryDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	var out map[string]any
	err := c.GetJSON(ctx, "test", srv.URL, nil, &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNCAABuildQuery(t *testing.T) {
	q, err := buildQuery("SomeQuery_web", "abc123", map[string]any{"contestId": "6400000"})
	require.NoError(t, err)

	assert.Equal(t, "SomeQuery_web", q.Get("meta"))
	assert.Contains(t, q.Get("extensions"), `"sha256Hash":"abc123"`)
	assert.Contains(t, q.Get("extensions"), `"version":1`)
	assert.Contains(t, q.Get("variables"), `"contestId":"6400000"`)
}
