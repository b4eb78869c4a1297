package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/metrics"
	"go.uber.org/zap"
)

// StatusError is a non-2xx reply from a provider API
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// retrySleepFunc waits between attempts (injectable for tests)
var retrySleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryingProvider retries transient failures with exponential backoff and records metrics
type retryingProvider struct {
	Provider
	maxRetries int
	logger     *zap.Logger
}

// WithRetry wraps p so 429, 5xx and network timeouts are retried up to maxRetries times
func WithRetry(p Provider, maxRetries int, l *zap.Logger) Provider {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryingProvider{Provider: p, maxRetries: maxRetries, logger: logger.OrNop(l)}
}

func (r *retryingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		start := time.Now()
		resp, err := r.Provider.Complete(ctx, req)
		metrics.LLMCallDuration.WithLabelValues(r.Name()).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.LLMCalls.WithLabelValues(r.Name(), "ok").Inc()
			return resp, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == r.maxRetries {
			metrics.LLMCalls.WithLabelValues(r.Name(), "error").Inc()
			break
		}
		metrics.LLMCalls.WithLabelValues(r.Name(), "retry").Inc()

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		r.logger.Warn("retrying model call",
			zap.String("provider", r.Name()),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		if err := retrySleepFunc(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// IsRetryable reports whether err looks like a transient upstream failure
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == 429 || statusErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") || strings.Contains(s, "connection reset")
}
