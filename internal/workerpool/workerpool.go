// Package workerpool implements the per-stage barrier scheduler: one
// main thread (the caller of RunStage) plus N-1 long-lived goroutines,
// each gated by a pair of counting semaphores, transliterated from apf's
// WorkerThread/WorkerThreadFunction (mimoprocessor.h) and wired through
// golang.org/x/sync/semaphore in place of apf's thread_policy::Semaphore.
package workerpool

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/dudk/mimo/internal/rtlist"
)

// PriorityHint elevates the calling goroutine to the host's real-time
// scheduling class. The default is a no-op, matching spec §4.3's
// "default is no change"; a host may supply a platform-specific hook via
// SetPriorityHint.
type PriorityHint func()

func noopPriorityHint() {}

// ItemFailureHandler is invoked when an Item's Process returns a
// Recoverable error, at the slice boundary, so a failure in one item
// never aborts its neighbors' slice or the cycle (spec §4.3/§7: "caught
// at the slice boundary, logged out-of-band, the cycle continues").
type ItemFailureHandler func(position int, item rtlist.Item, err error)

func noopFailureHandler(int, rtlist.Item, error) {}

// Severity classifies an item-level error for the slice-boundary policy
// decision, mirroring spec §9's Fatal/Recoverable split of the source's
// exception-based control flow: Recoverable is caught, logged and
// skipped; Fatal means a programmer-contract violation was observed and
// the audio thread aborts rather than risk running with corrupted state.
type Severity int

const (
	// Recoverable errors are caught at the slice boundary and logged;
	// the cycle continues. The zero value, so an error type that never
	// declares a Severity is treated as Recoverable.
	Recoverable Severity = iota
	// Fatal errors abort the current stage rather than being routed to
	// the failure handler.
	Fatal
)

// SeverityError is optionally implemented by an error returned from
// Item.Process to declare its Severity. An error that doesn't implement
// it is treated as Recoverable, matching the exception-free default of
// "log and continue".
type SeverityError interface {
	error
	Severity() Severity
}

func severityOf(err error) Severity {
	if se, ok := err.(SeverityError); ok {
		return se.Severity()
	}
	return Recoverable
}

// Named is optionally implemented by an Item to supply a precomputed,
// allocation-free label for failure reports. processSlice runs on the
// audio thread, so it never formats one from scratch; an Item that
// doesn't implement Named is reported under the tag "item".
type Named interface {
	Name() string
}

type worker struct {
	number  int
	cont    *semaphore.Weighted
	done    *semaphore.Weighted
	quit    chan struct{}
	pool    *Pool
}

func newWorker(number int, pool *Pool) *worker {
	w := &worker{
		number: number,
		cont:   semaphore.NewWeighted(1),
		done:   semaphore.NewWeighted(1),
		quit:   make(chan struct{}),
		pool:   pool,
	}
	w.cont.Acquire(context.Background(), 1)
	w.done.Acquire(context.Background(), 1)
	return w
}

func (w *worker) run() {
	ctx := context.Background()
	for {
		if err := w.cont.Acquire(ctx, 1); err != nil {
			return
		}
		select {
		case <-w.quit:
			return
		default:
		}
		w.pool.processSlice(w.number)
		w.done.Release(1)
	}
}

// Pool owns N-1 worker goroutines that participate in per-stage barriers
// alongside the caller's own goroutine, which always processes slice 0.
type Pool struct {
	n             int
	workers       []*worker
	priorityHint  PriorityHint
	onFailure     ItemFailureHandler
	currentList   *rtlist.List
}

// New starts a Pool sized for n total threads (n-1 background workers
// plus the caller). n must be >= 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		n:            n,
		priorityHint: noopPriorityHint,
		onFailure:    noopFailureHandler,
	}
	p.workers = make([]*worker, n-1)
	for i := range p.workers {
		w := newWorker(i+1, p)
		p.workers[i] = w
		go func() {
			p.priorityHint()
			w.run()
		}()
	}
	return p
}

// SetPriorityHint installs the hook used to elevate worker goroutines to
// the host's real-time scheduling class. Must be called before New
// starts any workers to take effect on them; existing workers are
// unaffected by a later call.
func (p *Pool) SetPriorityHint(hint PriorityHint) {
	if hint == nil {
		hint = noopPriorityHint
	}
	p.priorityHint = hint
}

// SetFailureHandler installs the callback invoked when an Item's
// Process returns an error.
func (p *Pool) SetFailureHandler(handler ItemFailureHandler) {
	if handler == nil {
		handler = noopFailureHandler
	}
	p.onFailure = handler
}

// N returns the total thread count (main plus workers).
func (p *Pool) N() int { return p.n }

// RunStage runs one per-stage barrier over l on the calling goroutine:
// if l is empty it returns immediately (spec §4.3 step 1), otherwise it
// wakes every worker, runs slice 0 on the caller, then waits for every
// worker's completion.
func (p *Pool) RunStage(l *rtlist.List) {
	if l.Len() == 0 {
		return
	}
	p.currentList = l

	for _, w := range p.workers {
		w.cont.Release(1)
	}

	p.processSlice(0)

	ctx := context.Background()
	for _, w := range p.workers {
		w.done.Acquire(ctx, 1)
	}
}

// processSlice runs every item whose zero-based position in the current
// list satisfies position mod N == threadNumber. A Fatal error aborts
// the stage immediately (spec §9); a Recoverable one (the default for
// any error that doesn't declare a Severity) is routed to onFailure and
// the slice continues.
func (p *Pool) processSlice(threadNumber int) {
	l := p.currentList
	l.Each(func(position int, item rtlist.Item) {
		if position%p.n != threadNumber {
			return
		}
		if err := item.Process(); err != nil {
			if severityOf(err) == Fatal {
				panic(err)
			}
			p.onFailure(position, item, err)
		}
	})
}

// Close stops every worker goroutine. Must be called from the control
// thread after the processor is deactivated.
func (p *Pool) Close() {
	for _, w := range p.workers {
		close(w.quit)
		w.cont.Release(1)
	}
}
