package mimo

import (
	"github.com/rs/xid"

	"github.com/dudk/mimo/internal/buffer"
)

// ItemHandle is an opaque, comparable reference to an item added via
// Processor.Add, generalizing phono.Pipe's newUID()/componentID
// bookkeeping (pipe.go) into a first-class handle type so Remove never
// needs to reflect over the live item's pointer.
type ItemHandle struct {
	id xid.ID
}

func newItemHandle() ItemHandle {
	return ItemHandle{id: xid.New()}
}

// String renders the handle's underlying id, for logging.
func (h ItemHandle) String() string { return h.id.String() }

// Item is the polymorphic unit of work the spec names: any node that can
// be asked to run one cycle's worth of work. Input, Output and
// ProcessItem below are the three concrete variants named in spec §3;
// a host may also supply its own Item implementation directly.
type Item interface {
	// Process performs one cycle of work on the audio thread. It must
	// return promptly: no blocking I/O, no unbounded work.
	Process() error
}

// Fetcher pulls one block's worth of samples from the host into dst,
// the half of the host boundary an Input needs.
type Fetcher func(dst buffer.Buffer) error

// Publisher pushes one block's worth of samples from src to the host,
// the half of the host boundary an Output needs.
type Publisher func(src buffer.Buffer) error

// Input is an Item that reads one block from the host into its own
// buffer via Fetch, then (optionally) runs a user transform over it.
type Input struct {
	block     buffer.Buffer
	Fetch     Fetcher
	Transform func(buffer.Buffer) error
}

// NewInput allocates an Input of the given block size. Fetch must be
// set before the Input is added to a Processor.
func NewInput(blockSize int, fetch Fetcher) *Input {
	return &Input{block: buffer.New(blockSize), Fetch: fetch}
}

// Buffer returns the block last filled by Process, satisfying
// combine.Source.
func (in *Input) Buffer() buffer.Buffer { return in.block }

// Process fetches one block from the host, then runs Transform over it
// if set.
func (in *Input) Process() error {
	if err := in.Fetch(in.block); err != nil {
		return err
	}
	if in.Transform != nil {
		return in.Transform(in.block)
	}
	return nil
}

// Output is an Item that is filled by the middle pass (typically via a
// combine.* reduction into Buffer()) and then publishes its block to the
// host via Publish.
type Output struct {
	block   buffer.Buffer
	Publish Publisher
}

// NewOutput allocates an Output of the given block size. Publish must
// be set before the Output is added to a Processor.
func NewOutput(blockSize int, publish Publisher) *Output {
	return &Output{block: buffer.New(blockSize), Publish: publish}
}

// Buffer returns the block the combining kernel should write into
// before Process is called, satisfying combine.Source.
func (out *Output) Buffer() buffer.Buffer { return out.block }

// Process publishes the current block to the host.
func (out *Output) Process() error {
	return out.Publish(out.block)
}

// ProcessItem is an arbitrary user node: any Item implementation is
// already a valid ProcessItem, this type exists only to give a
// constructor the same shape as NewInput/NewOutput for a plain
// func()-backed node, grounded on apf's ProcessItem<Derived> CRTP
// helper (mimoprocessor.h), generalized to a function field.
type ProcessItem struct {
	Fn func() error
}

// NewProcessItem wraps fn as an Item.
func NewProcessItem(fn func() error) *ProcessItem {
	return &ProcessItem{Fn: fn}
}

// Process invokes Fn.
func (p *ProcessItem) Process() error {
	return p.Fn()
}
