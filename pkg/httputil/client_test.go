package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(nil)
	require.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.logger)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.Nil(t, client.limiter)

	client.WithTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestRetryConfig(t *testing.T) {
	client := New(logger.Nop()).WithRetry(5, 2*time.Second)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)
	assert.True(t, client.retryConfig.Enabled)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	var out map[string]string
	require.NoError(t, New(logger.Nop()).GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestPostJSONInto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int{"doubled": in["n"] * 2})
	}))
	defer server.Close()

	var out map[string]int
	err := New(logger.Nop()).PostJSONInto(context.Background(), server.URL, map[string]int{"n": 21}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out["doubled"])
}

func TestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such date", http.StatusNotFound)
	}))
	defer server.Close()

	err := New(logger.Nop()).GetJSON(context.Background(), server.URL, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "no such date", se.Body)
}

func TestRetryOn5xx(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "v", body["k"], "body is replayed on every attempt")

		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.PostJSON(context.Background(), server.URL, map[string]string{"k": "v"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetry_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(logger.Nop()).WithRetry(5, time.Hour).Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := New(logger.Nop()).DisableRetry().WithRateLimit(20, 1)
	require.NotNil(t, client.limiter)

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	// burst 1 at 20 rps: two waits of ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)

	assert.Nil(t, client.WithRateLimit(0, 0).limiter)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{201, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.statusCode))
		})
	}
}
