package search

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestPoolRunsEverySubmittedTask(t *testing.T) {
	p := NewPool(4, nil, nil)
	var count int32
	const n = 200
	for i := 0; i < n; i++ {
		if err := p.Submit(func(*WorkerContext) {
			atomic.AddInt32(&count, 1)
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	p.Close()
	if got := atomic.LoadInt32(&count); got != n {
		t.Errorf("ran %d tasks, want %d", got, n)
	}
}

func TestPoolRejectsSubmitAfterClose(t *testing.T) {
	p := NewPool(2, nil, nil)
	p.Close()
	if err := p.Submit(func(*WorkerContext) {}); err == nil {
		t.Error("expected Submit to fail after Close")
	}
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	p := NewPool(2, nil, nil)
	var ran int32
	if err := p.Submit(func(*WorkerContext) { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	if err := p.Submit(func(*WorkerContext) { atomic.AddInt32(&ran, 1) }); err != nil {
		t.Fatal(err)
	}
	p.Close()
	if atomic.LoadInt32(&ran) != 1 {
		t.Error("a panicking task should not prevent later tasks from running")
	}
}

func TestPoolGivesEachWorkerItsOwnMatcherCopy(t *testing.T) {
	template, err := NewMatcher(CaseInsensitive, "needle")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPool(8, template, nil)

	var mu sync.Mutex
	seen := map[Matcher]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		_ = p.Submit(func(ctx *WorkerContext) {
			defer wg.Done()
			mu.Lock()
			seen[ctx.Matcher] = true
			mu.Unlock()
		})
	}
	wg.Wait()
	p.Close()

	if len(seen) < 2 {
		t.Skip("scheduling did not spread work across enough workers to observe distinct copies")
	}
}
