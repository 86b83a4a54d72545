// Package mimo implements a multi-threaded, multiple-input/
// multiple-output real-time audio processing core: a lock-free SPSC
// command queue, an owning real-time list mutated only through
// commands, a channel-combining kernel, a crossfade window, a
// worker-pool scheduler, and the Processor orchestrator tying them
// together, grounded throughout on apf's MimoProcessor (mimoprocessor.h)
// and on the lifecycle/option idioms of pipelined-pipe's Pipe (pipe.go,
// options.go).
package mimo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dudk/mimo/internal/queue"
	"github.com/dudk/mimo/internal/rtlist"
	"github.com/dudk/mimo/internal/rtlog"
	"github.com/dudk/mimo/internal/workerpool"
)

// ListKind selects which of a Processor's two lists an ItemSpec belongs
// to.
type ListKind int

const (
	// InputList items are run in the input barrier stage, before the
	// middle pass.
	InputList ListKind = iota
	// OutputList items are run in the output barrier stage, after the
	// middle pass.
	OutputList
)

// ItemSpec describes one item to Add: its implementation and which list
// it should join.
type ItemSpec struct {
	Item Item
	List ListKind
}

type handleEntry struct {
	node *rtlist.Node
	list *rtlist.List
}

// Processor is the root entity (spec §3): it owns the input list, the
// output list, the command queue(s), the worker pool and the parameter
// map, and exposes the lifecycle and per-cycle entry points a host
// policy calls.
type Processor struct {
	params    *ParamMap
	blockSize int
	threads   int

	mainQueue  *queue.Queue
	queryQueue *queue.Queue
	pool       *workerpool.Pool
	log        *rtlog.Logger

	inputs  *rtlist.List
	outputs *rtlist.List

	handles map[ItemHandle]handleEntry

	middlePass func() error
}

// NewProcessor validates opts into a ParamMap (spec §7 "Configuration
// error" on failure) and constructs a Processor in its initial,
// deactivated state — queues start Inactive so construction-time Add
// calls may allocate freely, matching apf's MimoProcessor constructor
// (mimoprocessor.h: "deactivate FIFO for non-realtime initializations").
func NewProcessor(opts ...Option) (*Processor, error) {
	pm := newParamMap(opts...)
	if err := pm.validate(); err != nil {
		return nil, err
	}

	blockSize, _ := pm.Int("block_size")
	threads := pm.intOr("threads", 1)
	fifoSize := pm.intOr("fifo_size", 1024)

	p := &Processor{
		params:     pm,
		blockSize:  blockSize,
		threads:    threads,
		mainQueue:  queue.New(fifoSize),
		queryQueue: queue.New(fifoSize),
		pool:       workerpool.New(threads),
		log:        rtlog.New(256),
		inputs:     rtlist.New(),
		outputs:    rtlist.New(),
		handles:    make(map[ItemHandle]handleEntry),
	}
	p.pool.SetFailureHandler(func(position int, item rtlist.Item, err error) {
		name := "item"
		if n, ok := item.(workerpool.Named); ok {
			name = n.Name()
		}
		p.log.ReportItemFailure(position, name, err)
	})
	return p, nil
}

// namedItem wraps an Item added via Add with a label precomputed once,
// on the control thread, so the failure handler installed above never
// formats one on the audio thread (workerpool.Named).
type namedItem struct {
	Item
	name string
}

func (n *namedItem) Name() string { return n.name }

// BlockSize returns the configured samples-per-cycle.
func (p *Processor) BlockSize() int { return p.blockSize }

// Threads returns the configured total thread count (main plus
// workers).
func (p *Processor) Threads() int { return p.threads }

// Params returns the validated parameter map passed at construction.
func (p *Processor) Params() *ParamMap { return p.params }

// Logger returns the out-of-band logger collecting per-item failures,
// for a host that wants to attach formatters/hooks to its backend.
func (p *Processor) Logger() *rtlog.Logger { return p.log }

// SetMiddlePass installs the single user hook run on the main thread
// between the input and output barrier stages (spec §4.4 step 3).
// Passing nil removes it.
func (p *Processor) SetMiddlePass(fn func() error) {
	p.middlePass = fn
}

// NewInput is a convenience constructor sizing the block to the
// Processor's configured block_size.
func (p *Processor) NewInput(fetch Fetcher) *Input {
	return NewInput(p.blockSize, fetch)
}

// NewOutput is a convenience constructor sizing the block to the
// Processor's configured block_size.
func (p *Processor) NewOutput(publish Publisher) *Output {
	return NewOutput(p.blockSize, publish)
}

// Activate flips both command queues to Active, making the Processor
// ready to accept process() calls from the host (spec §6
// "activate() → bool").
func (p *Processor) Activate() bool {
	p.mainQueue.Reactivate()
	p.queryQueue.Reactivate()
	return true
}

// Deactivate drains both queues and leaves them Inactive, per
// spec §3: "deactivate() stops callbacks, then drains the queue by
// alternating process_commands/cleanup_commands until empty, then
// deactivates the queue". A host calls this only after it has already
// stopped invoking Process — matching apf::MimoProcessor::deactivate(),
// whose control thread drives process_commands itself once the real
// audio callback has stopped (mimoprocessor.h). Deactivate therefore
// supplies both halves of the alternation itself: an internal goroutine
// stands in for the now-silent audio thread, repeatedly calling
// ProcessCommands, while this goroutine supplies the control-thread
// half, CleanupCommands, and retries the queue-level handshake until
// both rings are observed empty. The caller does not need to keep
// calling Process concurrently. Deactivate does not stop the host's
// callbacks and does not disable Process: a Process call made after it
// still runs a full cycle. Idempotent.
func (p *Processor) Deactivate() bool {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				p.mainQueue.ProcessCommands()
				p.queryQueue.ProcessCommands()
				runtime.Gosched()
			}
		}
	}()

	for {
		p.mainQueue.CleanupCommands()
		mainOK := p.mainQueue.Deactivate()
		p.queryQueue.CleanupCommands()
		queryOK := p.queryQueue.Deactivate()
		if mainOK && queryOK {
			return true
		}
		if !mainOK {
			p.mainQueue.Reactivate()
		}
		if !queryOK {
			p.queryQueue.Reactivate()
		}
	}
}

// Add installs spec.Item into the chosen list. The item becomes visible
// to process() starting with the next full cycle after this call
// returns (spec §6 "add(ItemSpec) → ItemHandle"). While the Processor is
// Inactive, the install happens synchronously (queue.Push's inline
// path); while Active, it is deferred to the next cycle's
// process_commands.
func (p *Processor) Add(spec ItemSpec) ItemHandle {
	var list *rtlist.List
	switch spec.List {
	case InputList:
		list = p.inputs
	case OutputList:
		list = p.outputs
	default:
		panic(&FatalError{Cause: fmt.Errorf("mimo: unknown ListKind %d", spec.List)})
	}

	wrapped := &namedItem{Item: spec.Item, name: fmt.Sprintf("%T", spec.Item)}
	node, cmd := list.Add(wrapped)
	handle := newItemHandle()
	p.handles[handle] = handleEntry{node: node, list: list}
	p.mainQueue.Push(cmd)
	return handle
}

// Remove uninstalls the item behind handle. Returns a *StructuralError
// if handle is not currently registered (spec §7 "Structural error:
// removing a handle not present"). The item's Process will be called
// zero or one more times (implementation-defined, spec §8 S5) depending
// on whether the matching RemoveCommand's Execute has already run by
// the time the current cycle starts.
func (p *Processor) Remove(handle ItemHandle) error {
	entry, ok := p.handles[handle]
	if !ok {
		return &StructuralError{Message: fmt.Sprintf("remove: unknown handle %s", handle)}
	}
	delete(p.handles, handle)
	p.mainQueue.Push(entry.list.Remove(entry.node))
	return nil
}

// WaitForRTThread blocks the calling (control) thread until the audio
// thread has completed at least one full cycle past this call, per spec
// §4.1 "wait()"/§6 "wait_for_rt_thread()".
func (p *Processor) WaitForRTThread(ctx context.Context) error {
	return p.mainQueue.Wait(ctx)
}

// DrainCleanup runs the control-thread half of both command queues
// (Cleanup on every completed command) and flushes any buffered
// per-item failure log entries. A host should call this periodically
// from its control thread — not from the audio thread.
func (p *Processor) DrainCleanup() {
	p.mainQueue.CleanupCommands()
	p.queryQueue.CleanupCommands()
	p.log.Drain()
}

// QueryQueue returns the optional second command queue for asynchronous
// parameter-query completions (spec §4.4 step 5, §9 open question);
// a Processor that never uses it behaves exactly as if it were absent.
func (p *Processor) QueryQueue() *queue.Queue { return p.queryQueue }

// Close stops the worker pool's background goroutines. Call once after
// a final, successful Deactivate.
func (p *Processor) Close() {
	p.pool.Close()
}

// Process is the per-cycle entry point invoked by the host policy on
// the audio thread (spec §4.4): it drains pending structural mutations,
// runs the input barrier, the middle pass, the output barrier, then
// drains the query queue. It never allocates on its own account and
// never returns an error to the host — per-item failures are isolated
// at the slice boundary and logged out-of-band (spec §7 policy).
func (p *Processor) Process() {
	p.mainQueue.ProcessCommands()
	p.pool.RunStage(p.inputs)
	if p.middlePass != nil {
		if err := p.middlePass(); err != nil {
			p.log.ReportItemFailure(-1, "middlePass", err)
		}
	}
	p.pool.RunStage(p.outputs)
	p.queryQueue.ProcessCommands()
}
