package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewPool(t *testing.T) {
	pool := NewPool[int](context.Background(), 0)
	if pool.workers != 1 {
		t.Errorf("expected 1 worker for non-positive count, got %d", pool.workers)
	}
	pool.Start()
	pool.Shutdown()
}

func TestPool_OrderedResults(t *testing.T) {
	pool := NewPool[int](context.Background(), 3)
	pool.Start()

	count := 40
	for i := 0; i < count; i++ {
		i := i
		pool.Submit(func(ctx context.Context) int {
			// Later tasks finish first
			time.Sleep(time.Duration(count-i) * 100 * time.Microsecond)
			return i * i
		})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("result %d: expected %d, got %d", i, i*i, r)
		}
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 4
	pool := NewPool[struct{}](context.Background(), workers)
	pool.Start()

	var current, completed int32
	var maxConcurrent int32
	var mu sync.Mutex

	totalTasks := 30
	for i := 0; i < totalTasks; i++ {
		pool.Submit(func(ctx context.Context) struct{} {
			curr := atomic.AddInt32(&current, 1)
			mu.Lock()
			if curr > maxConcurrent {
				maxConcurrent = curr
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			atomic.AddInt32(&completed, 1)
			return struct{}{}
		})
	}
	pool.Wait()

	if got := atomic.LoadInt32(&completed); got != int32(totalTasks) {
		t.Errorf("expected %d completed tasks, got %d", totalTasks, got)
	}
	mu.Lock()
	defer mu.Unlock()
	if maxConcurrent > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", maxConcurrent, workers)
	}
}

func TestPool_SubmitAfterWait(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()
	pool.Wait()

	if pool.Submit(func(ctx context.Context) int { return 1 }) {
		t.Error("expected Submit to refuse work after Wait")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(func(ctx context.Context) int { return 1 })
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected Submit to refuse work after Shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ShutdownCancelsRunningTask(t *testing.T) {
	pool := NewPool[error](context.Background(), 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestPool_CancelledContextSkipsQueuedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[int](ctx, 1)
	pool.Start()

	started := make(chan struct{})
	release := make(chan struct{})
	pool.Submit(func(ctx context.Context) int {
		close(started)
		<-release
		return 1
	})
	pool.Submit(func(ctx context.Context) int { return 2 })

	<-started
	cancel()
	close(release)

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0] != 1 {
		t.Errorf("expected running task to finish with 1, got %d", results[0])
	}
	if results[1] != 0 {
		t.Errorf("expected queued task to be skipped, got %d", results[1])
	}
}
