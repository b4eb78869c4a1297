package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestGeminiProvider_Complete_RateLimitIsRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	provider, err := NewProvider(Config{
		Provider:   "gemini",
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Timeout:    5,
		MaxRetries: 2,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), Request{Prompt: "classify this"})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "quota exceeded", statusErr.Message)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int32(3), requests.Load())
}

func TestGeminiProvider_Complete_BadRequestNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad prompt","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	provider, err := NewProvider(Config{
		Provider:   "gemini",
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Timeout:    5,
		MaxRetries: 2,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), Request{Prompt: "classify this"})
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, int32(1), requests.Load())
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	_, err := NewGeminiProvider(Config{})
	assert.Error(t, err)
}
