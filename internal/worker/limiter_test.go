package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("search") {
			t.Fatalf("request %d denied by unlimited limiter", i)
		}
	}
}

func TestLimiter_WaitPerKey(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.WaitURL(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	// Different host has its own bucket
	if !limiter.Allow("crunchbase.com") {
		t.Error("expected fresh key to be allowed")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("search") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("search") {
		t.Error("second immediate request should be limited")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "search"); err == nil {
		t.Error("expected wait to fail before the next token")
	}
}

func TestLimiter_SetDelay(t *testing.T) {
	limiter := NewLimiter(100, 5)
	limiter.SetDelay("slow.example", 10*time.Second)

	if !limiter.Allow("slow.example") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("slow.example") {
		t.Error("crawl delay should block the second request")
	}
}

func TestHostKey(t *testing.T) {
	if got := HostKey("https://www.sec.gov/cgi-bin/browse"); got != "www.sec.gov" {
		t.Errorf("unexpected host: %s", got)
	}
	if got := HostKey("search"); got != "search" {
		t.Errorf("plain keys should pass through, got %s", got)
	}
}
