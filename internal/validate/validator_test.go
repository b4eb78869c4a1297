package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/pitchcheck/internal/model"
	"go.uber.org/zap/zaptest"
)

func init() {
	// Disable retry sleep in all tests for fast execution
	validateSleepFunc = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
}

func testConfig(live bool) *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Pipeline.ValidateSources = live
	return cfg
}

func TestValidator_ClassifyOnly(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	v := NewValidator(testConfig(false), nil)
	results, err := v.Validate(context.Background(), []model.Evidence{
		{URL: server.URL + "/a", Stage: "market"},
		{URL: "https://www.sec.gov/x", Stage: "competitors"},
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Checked || results[1].Checked {
		t.Error("no request should be made when liveness checks are off")
	}
	if results[1].Authority != model.TierPrimary || results[1].Stage != "competitors" {
		t.Errorf("unexpected result: %+v", results[1])
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("expected no HTTP traffic, got %d requests", hits)
	}
}

func TestValidator_LiveCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
		case "/ok":
			if r.Method != http.MethodHead {
				t.Errorf("Expected HEAD request, got %s", r.Method)
			}
			w.Header().Set("Last-Modified", "Mon, 02 Jan 2023 15:04:05 GMT")
			w.WriteHeader(http.StatusOK)
		case "/head-not-allowed":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	v := NewValidator(testConfig(true), zaptest.NewLogger(t))
	results, err := v.Validate(context.Background(), []model.Evidence{
		{URL: server.URL + "/ok"},
		{URL: server.URL + "/gone"},
		{URL: server.URL + "/private/report"},
		{URL: server.URL + "/head-not-allowed"},
		{URL: server.URL + "/moved"},
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	ok := results[0]
	if !ok.Checked || !ok.IsAccessible || ok.StatusCode != http.StatusOK || ok.LastModified == nil {
		t.Errorf("unexpected live result: %+v", ok)
	}
	if gone := results[1]; !gone.IsDead || gone.StatusCode != http.StatusNotFound {
		t.Errorf("expected dead link, got %+v", gone)
	}
	if private := results[2]; private.Checked || private.Skipped == "" {
		t.Errorf("robots.txt disallowed URL should be skipped, got %+v", private)
	}
	if fallback := results[3]; !fallback.IsAccessible {
		t.Errorf("expected GET fallback to succeed, got %+v", fallback)
	}
	if moved := results[4]; moved.RedirectURL != server.URL+"/ok" {
		t.Errorf("expected redirect to be recorded, got %+v", moved)
	}
}

func TestValidator_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v := NewValidator(testConfig(true), nil)
	results, err := v.Validate(context.Background(), []model.Evidence{{URL: server.URL + "/flaky"}})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !results[0].IsAccessible {
		t.Errorf("expected success after retry, got %+v", results[0])
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestValidator_Empty(t *testing.T) {
	v := NewValidator(testConfig(true), nil)
	results, err := v.Validate(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Errorf("expected empty results, got %v, %v", results, err)
	}
}
