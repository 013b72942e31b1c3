package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryStrategy(t *testing.T) {
	tests := []struct {
		status int
		want   RetryStrategy
	}{
		{http.StatusTooManyRequests, SmartRetry},
		{http.StatusServiceUnavailable, SmartRetry},
		{http.StatusInternalServerError, ConservativeRetry},
		{http.StatusBadGateway, ConservativeRetry},
		{http.StatusGatewayTimeout, ConservativeRetry},
		{http.StatusRequestTimeout, ConservativeRetry},
		{http.StatusBadRequest, NoRetry},
		{http.StatusUnauthorized, NoRetry},
		{http.StatusNotFound, NoRetry},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRetryStrategy(tt.status))
		})
	}
}

func TestClient_Do_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "oi-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New(WithUserAgent("oi-test"))
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_Do_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New().Get(context.Background(), server.URL)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "invalid api key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Do_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithBaseDelay(time.Millisecond), WithMaxRetries(5))
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Do_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(WithBaseDelay(time.Millisecond), WithMaxRetries(2))
	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)

	var retryErr *RetryableError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, http.StatusServiceUnavailable, retryErr.StatusCode)
	assert.True(t, retryErr.IsRetryable())

	var httpErr *HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Do_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(WithHeaderParser(ParseOpenAIHeaders))
	start := time.Now()
	_, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_calculateDelay(t *testing.T) {
	client := New(WithBaseDelay(time.Second))

	assert.Equal(t, 7*time.Second, client.calculateDelay(SmartRetry, 0, RateLimitInfo{RetryAfter: 7 * time.Second}))
	assert.Equal(t, 3*time.Second, client.calculateDelay(SmartRetry, 0, RateLimitInfo{ResetAfter: 3 * time.Second}))
	assert.Equal(t, 4400*time.Millisecond, client.calculateDelay(SmartRetry, 2, RateLimitInfo{}))
	assert.Equal(t, 2*time.Second, client.calculateDelay(ConservativeRetry, 0, RateLimitInfo{}))
	assert.Equal(t, 3*time.Second, client.calculateDelay(ConservativeRetry, 1, RateLimitInfo{}))
	assert.Zero(t, client.calculateDelay(ConservativeRetry, 2, RateLimitInfo{}))
	assert.Zero(t, client.calculateDelay(NoRetry, 0, RateLimitInfo{}))
}

func TestParseOpenAIHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Retry-After", "12")
	headers.Set("x-ratelimit-reset-requests", "6m0s")
	headers.Set("x-ratelimit-remaining-requests", "59")
	headers.Set("x-ratelimit-remaining-tokens", "1500")

	info := ParseOpenAIHeaders(headers)
	assert.Equal(t, 12*time.Second, info.RetryAfter)
	assert.Equal(t, 6*time.Minute, info.ResetAfter)
	assert.Equal(t, 59, info.RequestsRemaining)
	assert.Equal(t, 1500, info.TokensRemaining)
}

func TestParseRetryAfter(t *testing.T) {
	headers := http.Header{}
	assert.Zero(t, ParseRetryAfter(headers))

	headers.Set("Retry-After", "soon")
	assert.Zero(t, ParseRetryAfter(headers))

	headers.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	d := ParseRetryAfter(headers)
	assert.Greater(t, d, 59*time.Minute)
}

func TestConfigureTLS(t *testing.T) {
	transport, err := ConfigureTLS(nil)
	require.NoError(t, err)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)

	transport, err = ConfigureTLS(&TLSConfig{InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)

	_, err = ConfigureTLS(&TLSConfig{CACertificate: "/does/not/exist.pem"})
	assert.Error(t, err)
}

func TestTLSConfigFromEnv(t *testing.T) {
	t.Setenv(EnvCACert, "")
	t.Setenv(EnvInsecureSkipVerify, "")
	assert.Nil(t, TLSConfigFromEnv())

	t.Setenv(EnvInsecureSkipVerify, "true")
	cfg := TLSConfigFromEnv()
	require.NotNil(t, cfg)
	assert.True(t, cfg.InsecureSkipVerify)
}
