package search

import (
	"sync"

	log "gopkg.in/inconshreveable/log15.v2"
)

// poolState is the pool's lifecycle, per spec §4.9.
type poolState int

const (
	poolAccepting poolState = iota
	poolDraining
	poolJoined
)

// Pool runs submitted closures on a fixed set of worker goroutines. Unlike
// the teacher's concurrentFind, which hands each worker a channel of *zip.File
// and lets Go's channel runtime do the scheduling, Pool implements the
// explicit FIFO-queue-plus-condition-variable model spec §5 and §9 require:
// one mutex-guarded slice queue, workers blocking on a sync.Cond when it is
// empty. This is the "worker pool" re-architecture spec §9 calls for in place
// of channel-based fan-out.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func(*WorkerContext)
	state   poolState
	matcher Matcher // template; each worker takes its own Copy()

	wg        sync.WaitGroup
	log       log.Logger
	panicOnce sync.Once // the first task panic is logged, later ones are not
}

// WorkerContext bundles the resources exclusively owned by one worker and
// reused across every file it services: its scratch Buffer (spec §3, §9)
// and its private Matcher copy (needed because literalMatcher and
// regexMatcher keep small per-scan scratch state, the same reason the
// teacher's readerGrep.Copy exists before handing a matcher to a goroutine).
type WorkerContext struct {
	Buf     *Buffer
	Matcher Matcher
}

// NewPool starts n workers, each with a private Buffer and Matcher copy,
// draining the shared queue. n must be >= 1.
func NewPool(n int, matcher Matcher, logger log.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if logger == nil {
		logger = log.New()
	}
	p := &Pool{state: poolAccepting, matcher: matcher, log: logger}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task for execution. Submit never blocks the caller beyond
// the brief queue-mutex critical section (spec §4.5: "the simple
// implementation uses an unbounded FIFO"). Calling Submit after Close has
// begun draining is a programming error; it is reported rather than
// silently dropped, per spec §4.9, and the task is not run.
func (p *Pool) Submit(task func(*WorkerContext)) error {
	p.mu.Lock()
	if p.state != poolAccepting {
		p.mu.Unlock()
		return errPoolClosed
	}
	p.queue = append(p.queue, task)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// worker dequeues and executes tasks until the pool starts draining and the
// queue is empty. A task that panics is caught here so one bad task cannot
// poison the pool, per spec §4.5's failure contract and §7's "internal
// worker failure" kind.
func (p *Pool) worker() {
	defer p.wg.Done()
	ctx := &WorkerContext{Buf: &Buffer{}}
	if p.matcher != nil {
		ctx.Matcher = p.matcher.Copy()
	}
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && p.state == poolAccepting {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.runTask(task, ctx)
	}
}

func (p *Pool) runTask(task func(*WorkerContext), ctx *WorkerContext) {
	defer func() {
		if r := recover(); r != nil {
			p.panicOnce.Do(func() {
				p.log.Error("search: internal worker failure, continuing", "panic", r)
			})
		}
	}()
	task(ctx)
}

// Close signals workers to stop accepting new work, lets them drain the
// queue, and waits for them to exit. It never deadlocks provided tasks do
// not themselves call Submit and block on its result, per spec §4.5.
func (p *Pool) Close() {
	p.mu.Lock()
	p.state = poolDraining
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
	p.mu.Lock()
	p.state = poolJoined
	p.mu.Unlock()
}

var errPoolClosed = poolClosedError{}

type poolClosedError struct{}

func (poolClosedError) Error() string { return "search: pool is no longer accepting tasks" }
