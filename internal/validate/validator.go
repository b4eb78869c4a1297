// Package validate grades the sources an analysis relied on.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/metrics"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/util"
	"github.com/ppiankov/pitchcheck/internal/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const validateMaxAttempts = 3

// validateSleepFunc waits between attempts (injectable for tests)
var validateSleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Validator classifies evidence URLs and, when liveness checks are on,
// probes them with HEAD requests that respect robots.txt
type Validator struct {
	httpClient *http.Client
	workers    int
	authority  *AuthorityClassifier
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	checkLive  bool
	logger     *zap.Logger
}

// NewValidator builds a validator from the HTTP, concurrency, authority and pipeline settings
func NewValidator(cfg *model.Config, l *zap.Logger) *Validator {
	client := util.NewHTTPClient(cfg.HTTP)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	workers := cfg.Concurrency.ValidationWorkers
	if workers <= 0 {
		workers = 10
	}

	return &Validator{
		httpClient: client,
		workers:    workers,
		authority:  NewAuthorityClassifier(&cfg.Authority),
		robots:     util.NewRobotsChecker(client, cfg.HTTP.UserAgent),
		limiter:    worker.NewLimiter(2, 2),
		checkLive:  cfg.Pipeline.ValidateSources,
		logger:     logger.OrNop(l),
	}
}

// Validate returns one result per evidence item, in input order
func (v *Validator) Validate(ctx context.Context, evidence []model.Evidence) ([]model.ValidationResult, error) {
	results := make([]model.ValidationResult, len(evidence))
	if len(evidence) == 0 {
		return results, nil
	}

	if !v.checkLive {
		for i, ev := range evidence {
			results[i] = v.classify(ev)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, ev := range evidence {
		g.Go(func() error {
			results[i] = v.check(gctx, ev)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

func (v *Validator) classify(ev model.Evidence) model.ValidationResult {
	return model.ValidationResult{
		URL:       ev.URL,
		Stage:     ev.Stage,
		Authority: v.authority.Classify(ev.URL),
	}
}

// check probes one URL, retrying transient failures with exponential backoff
func (v *Validator) check(ctx context.Context, ev model.Evidence) model.ValidationResult {
	base := v.classify(ev)

	allowed, delay, err := v.robots.CanFetch(ctx, ev.URL)
	if err != nil {
		base.Error = err.Error()
		metrics.SourceChecks.WithLabelValues("error").Inc()
		return base
	}
	if !allowed {
		base.Skipped = "disallowed by robots.txt"
		metrics.SourceChecks.WithLabelValues("skipped").Inc()
		return base
	}
	host := worker.HostKey(ev.URL)
	v.limiter.SetDelay(host, delay)

	result := base
	for attempt := 0; attempt < validateMaxAttempts; attempt++ {
		if err := v.limiter.Wait(ctx, host); err != nil {
			result.Error = err.Error()
			break
		}

		result = v.probe(ctx, base)
		if !isRetryable(result) || attempt == validateMaxAttempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		v.logger.Debug("retrying source check",
			zap.String("url", ev.URL),
			zap.Int("status", result.StatusCode),
			zap.Duration("backoff", backoff))
		if err := validateSleepFunc(ctx, backoff); err != nil {
			result.Error = err.Error()
			break
		}
	}

	switch {
	case result.IsAccessible:
		metrics.SourceChecks.WithLabelValues("live").Inc()
	case result.IsDead:
		metrics.SourceChecks.WithLabelValues("dead").Inc()
	default:
		metrics.SourceChecks.WithLabelValues("error").Inc()
	}
	return result
}

// probe sends HEAD, falling back to GET for servers that reject HEAD
func (v *Validator) probe(ctx context.Context, base model.ValidationResult) model.ValidationResult {
	result := base
	result.Checked = true

	resp, err := v.do(ctx, http.MethodHead, base.URL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = v.do(ctx, http.MethodGet, base.URL)
	}
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.IsDead = true
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.IsAccessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.IsDead = true
	}

	if final := resp.Request.URL.String(); final != base.URL {
		result.RedirectURL = final
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			result.LastModified = &t
		}
	}
	return result
}

func (v *Validator) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return v.httpClient.Do(req)
}

func isRetryable(r model.ValidationResult) bool {
	if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
		return true
	}
	return r.Error != "" && isTransientError(r.Error)
}

func isTransientError(msg string) bool {
	s := strings.ToLower(msg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
