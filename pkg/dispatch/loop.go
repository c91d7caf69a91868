// Package dispatch provides ready-made dispatchers for routing signal
// observers onto other execution contexts.
//
// Loop is a serial event loop: closures posted with Dispatch run one at a
// time, in posting order, on whichever goroutine calls Run. Traced wraps
// any dispatcher with OpenTelemetry spans around the deferred invocations.
package dispatch

import (
	"context"
	"sync"
)

// Loop is a FIFO event loop. Posting is non-blocking and fire-and-forget;
// queued closures run serially on the goroutine driving Run.
//
// Loop.Dispatch satisfies observe.Dispatcher, so routing a connection
// through a loop is:
//
//	loop := dispatch.NewLoop()
//	go loop.Run(context.Background())
//	conn.DispatchVia(loop.Dispatch)
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
}

// NewLoop creates a new, unstarted loop.
func NewLoop() *Loop {
	l := &Loop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Dispatch enqueues fn to run on the loop goroutine. It never blocks
// waiting for the loop to make progress. Closures posted after Stop are
// dropped; nil closures are ignored.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if !l.stopped {
		l.queue = append(l.queue, fn)
		l.cond.Signal()
	}
	l.mu.Unlock()
}

// Run drains the queue until Stop is called or ctx is done, then returns.
// Closures already queued when Stop is called are still run; a panicking
// closure propagates to Run's caller with the loop left stopped.
func (l *Loop) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, l.Stop)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			l.Stop()
			panic(r)
		}
	}()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if len(l.queue) == 0 && l.stopped {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}

// Stop requests the loop to exit once the queue is drained and causes
// subsequent Dispatch calls to drop their closures. Safe to call from a
// closure running on the loop, from other goroutines, and repeatedly.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.cond.Broadcast()
	l.mu.Unlock()
}

// Pending reports the number of queued closures not yet run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
