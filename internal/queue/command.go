// Package queue implements the lock-free single-producer/single-consumer
// command queue that carries structural mutations from the control thread
// into the audio thread and completion receipts back.
package queue

// Command carries a two-phase mutation across the queue. Execute runs on
// the audio thread and must not allocate, block or panic for a reason
// other than a genuine programmer-contract violation. Cleanup runs on the
// control thread once the command has made the round trip and may
// allocate or deallocate freely.
type Command interface {
	Execute()
	Cleanup()
}

// Func adapts a pair of closures to the Command interface, generalizing
// mutable.MutatorFunc (mutable/mutable.go) from a single control-thread
// mutator into the two-phase execute/cleanup shape the queue requires.
type Func struct {
	ExecuteFunc func()
	CleanupFunc func()
}

// Execute runs the execute-phase closure, if any.
func (f Func) Execute() {
	if f.ExecuteFunc != nil {
		f.ExecuteFunc()
	}
}

// Cleanup runs the cleanup-phase closure, if any.
func (f Func) Cleanup() {
	if f.CleanupFunc != nil {
		f.CleanupFunc()
	}
}
