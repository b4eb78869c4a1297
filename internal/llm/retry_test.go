package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	retrySleepFunc = func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}
}

type flakyProvider struct {
	errs  []error
	calls int
}

func (f *flakyProvider) Name() string                     { return "flaky" }
func (f *flakyProvider) IsAvailable(context.Context) bool { return true }

func (f *flakyProvider) Complete(_ context.Context, _ Request) (*Response, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return &Response{Text: "ok"}, nil
}

func TestWithRetry_RecoversFromTransientErrors(t *testing.T) {
	base := &flakyProvider{errs: []error{
		&StatusError{StatusCode: 429, Message: "slow down"},
		&StatusError{StatusCode: 503, Message: "overloaded"},
	}}

	p := WithRetry(base, 2, zaptest.NewLogger(t))
	resp, err := p.Complete(context.Background(), Request{Prompt: "x"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 3, base.calls)
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	transient := &StatusError{StatusCode: 500, Message: "boom"}
	base := &flakyProvider{errs: []error{transient, transient, transient, transient}}

	p := WithRetry(base, 2, nil)
	_, err := p.Complete(context.Background(), Request{})

	require.Error(t, err)
	assert.Equal(t, 3, base.calls)
}

func TestWithRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	base := &flakyProvider{errs: []error{&StatusError{StatusCode: 401, Message: "bad key"}}}

	p := WithRetry(base, 5, nil)
	_, err := p.Complete(context.Background(), Request{})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 401, statusErr.StatusCode)
	assert.Equal(t, 1, base.calls)
}

func TestWithRetry_StopsOnCancelledContext(t *testing.T) {
	base := &flakyProvider{errs: []error{&StatusError{StatusCode: 429}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(base, 3, nil).Complete(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, base.calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &StatusError{StatusCode: 429}, true},
		{"server error", fmt.Errorf("wrap: %w", &StatusError{StatusCode: 502}), true},
		{"bad request", &StatusError{StatusCode: 400}, false},
		{"canceled", context.Canceled, false},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"other", errors.New("unmarshal response: bad"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
