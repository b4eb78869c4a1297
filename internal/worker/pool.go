package worker

import (
	"context"
	"sync"
)

// Task is one unit of pool work
type Task[T any] func(ctx context.Context) T

type queued[T any] struct {
	index int
	task  Task[T]
}

type finished[T any] struct {
	index int
	value T
}

// Pool runs tasks on a fixed number of workers. Wait returns results in
// submission order.
type Pool[T any] struct {
	workers   int
	tasks     chan queued[T]
	results   chan finished[T]
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	submitted int
	closed    bool
	closeOnce sync.Once
	collected map[int]T
	done      chan struct{}
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops queued tasks
// from starting.
func NewPool[T any](ctx context.Context, workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Pool[T]{
		workers:   workers,
		tasks:     make(chan queued[T], workers*2),
		results:   make(chan finished[T], workers*2),
		ctx:       ctx,
		cancel:    cancel,
		collected: make(map[int]T),
		done:      make(chan struct{}),
	}
}

// Start launches the workers
func (p *Pool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
	go func() {
		defer close(p.done)
		for r := range p.results {
			p.collected[r.index] = r.value
		}
	}()
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for q := range p.tasks {
		var value T
		if p.ctx.Err() == nil {
			value = q.task(p.ctx)
		}
		p.results <- finished[T]{index: q.index, value: value}
	}
}

// Submit queues a task. It returns false once the pool is closed or its
// context is done.
func (p *Pool[T]) Submit(task Task[T]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}

	q := queued[T]{index: p.submitted, task: task}
	select {
	case p.tasks <- q:
		p.submitted++
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Wait closes the queue and collects every result. Tasks that never ran
// because the context ended yield the zero value.
func (p *Pool[T]) Wait() []T {
	p.close()

	p.mu.Lock()
	n := p.submitted
	p.mu.Unlock()

	<-p.done
	out := make([]T, n)
	for i := range out {
		out[i] = p.collected[i]
	}
	p.cancel()
	return out
}

// Shutdown cancels running tasks and drains the pool
func (p *Pool[T]) Shutdown() {
	p.cancel()
	p.close()
	<-p.done
}

func (p *Pool[T]) close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.tasks)
	})
}
