package queue

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// State identifies one of the three states a Queue can be in, mirroring
// the state machine of state/state.go generalized from the teacher's
// ready/running/paused/stopped pipe lifecycle to the queue's
// active/deactivating/inactive one.
type State int32

const (
	// Active queues run Push asynchronously through the inbound ring.
	Active State = iota
	// Deactivating is a transient state entered by Deactivate while it
	// waits for the audio thread to acknowledge the transition.
	Deactivating
	// Inactive queues run Push synchronously on the caller, which is the
	// mechanism used for allocation-heavy non-realtime setup.
	Inactive
)

func (s State) String() string {
	switch s {
	case Active:
		return "queue.Active"
	case Deactivating:
		return "queue.Deactivating"
	case Inactive:
		return "queue.Inactive"
	default:
		return "queue.Unknown"
	}
}

// ErrFull is panicked from Push when the inbound ring is full for longer
// than the bounded spin-wait budget. Per the queue's contract, a full
// ring is a configuration bug, not a runtime condition to recover from.
type ErrFull struct {
	Capacity int
}

func (e ErrFull) Error() string {
	return fmt.Sprintf("queue: ring of capacity %d is full, sizing bug", e.Capacity)
}

// maxSpin bounds how long Push spins on a full inbound ring before
// treating it as the fatal misconfiguration the contract says it is.
const maxSpin = 1 << 20

// Queue is the bounded SPSC command queue described by the command queue
// component: an inbound ring from control thread to audio thread and an
// outbound ring carrying executed commands back for cleanup.
type Queue struct {
	inbound  *ring
	outbound *ring
	state    atomic.Int32
	ack      chan struct{}
}

// New creates a Queue with the given ring capacity. The queue starts
// Inactive, matching apf::MimoProcessor's constructor which deactivates
// its FIFO immediately so construction-time Add calls can run inline.
func New(capacity int) *Queue {
	q := &Queue{
		inbound:  newRing(capacity),
		outbound: newRing(capacity),
		ack:      make(chan struct{}, 1),
	}
	q.state.Store(int32(Inactive))
	return q
}

// State returns the queue's current state.
func (q *Queue) State() State {
	return State(q.state.Load())
}

// Push submits cmd for execution. On an Active queue, cmd is enqueued for
// the audio thread to run on its next ProcessCommands call. On an
// Inactive queue, Execute and Cleanup run synchronously on the calling
// goroutine, which is how non-realtime construction shares its code path
// with realtime mutation.
func (q *Queue) Push(cmd Command) {
	if State(q.state.Load()) == Inactive {
		cmd.Execute()
		cmd.Cleanup()
		return
	}
	spins := 0
	for !q.inbound.tryPush(cmd) {
		spins++
		if spins > maxSpin {
			panic(ErrFull{Capacity: q.inbound.capacity()})
		}
		runtime.Gosched()
	}
}

// ProcessCommands drains every command currently visible in the inbound
// ring, executes each on the calling (audio) thread, and forwards it to
// the outbound ring for later cleanup. It must be called exactly once per
// cycle and never allocates.
func (q *Queue) ProcessCommands() {
	for {
		cmd, ok := q.inbound.tryPop()
		if !ok {
			break
		}
		cmd.Execute()
		spins := 0
		for !q.outbound.tryPush(cmd) {
			spins++
			if spins > maxSpin {
				panic(ErrFull{Capacity: q.outbound.capacity()})
			}
			runtime.Gosched()
		}
	}
	if State(q.state.Load()) == Deactivating {
		select {
		case q.ack <- struct{}{}:
		default:
		}
	}
}

// CleanupCommands drains the outbound ring on the control thread, running
// Cleanup on each command and letting it be garbage collected.
func (q *Queue) CleanupCommands() {
	for {
		cmd, ok := q.outbound.tryPop()
		if !ok {
			return
		}
		cmd.Cleanup()
	}
}

// CommandsAvailable is a cheap non-blocking check of the outbound ring,
// used by the control thread to know whether CleanupCommands still has
// work to do.
func (q *Queue) CommandsAvailable() bool {
	return !q.outbound.empty()
}

// Deactivate flips the queue from Active to Deactivating and blocks until
// the audio thread has observed the transition inside ProcessCommands.
// It returns true (and finishes the transition to Inactive) only if both
// rings are empty at that point; otherwise it reverts to Active so the
// caller can drain the remaining commands and retry.
func (q *Queue) Deactivate() bool {
	if !q.state.CompareAndSwap(int32(Active), int32(Deactivating)) {
		// Already Inactive (or a concurrent Deactivate is in flight,
		// which would itself be a caller bug for this SPSC contract).
		return State(q.state.Load()) == Inactive
	}
	<-q.ack
	empty := q.inbound.empty() && q.outbound.empty()
	if empty {
		q.state.Store(int32(Inactive))
	} else {
		q.state.Store(int32(Active))
	}
	return empty
}

// Reactivate flips the queue back to Active, allowing Push to enqueue
// asynchronously again.
func (q *Queue) Reactivate() {
	q.state.Store(int32(Active))
}

// Wait blocks the calling (control) thread until the audio thread has run
// ProcessCommands at least once past the moment of the call. It is
// implemented by pushing a sentinel command whose Execute releases a
// semaphore token, mirroring the counting-semaphore handshake the
// worker-pool scheduler uses between its main and worker threads.
func (q *Queue) Wait(ctx context.Context) error {
	sem := semaphore.NewWeighted(1)
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	q.Push(Func{ExecuteFunc: func() {
		sem.Release(1)
	}})
	return sem.Acquire(ctx, 1)
}
