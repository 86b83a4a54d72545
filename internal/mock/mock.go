// Package mock provides mock Items used to exercise the processor and
// worker pool in tests without a real host binding, generalizing
// phono's mock.Pump/mock.Processor/mock.Sink (counter/Hooks pattern)
// from the multi-method Pump/Processor/Sink/Reset/Flush/Interrupt
// interface trio down to the single Process() error method rtlist.Item
// requires.
package mock

import (
	"sync"

	"github.com/dudk/mimo/internal/buffer"
)

// counter counts Process calls, generalizing phono's counter
// (messages/samples) to a single call tally guarded by a mutex since
// tests read it from the control thread while the audio thread advances
// it.
type counter struct {
	mu    sync.Mutex
	calls int
}

func (c *counter) advance() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

// Count returns the number of completed Process calls.
func (c *counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Source is a mock input Item: every Process call fills its own block
// with a constant Value, generalizing mock.Pump's constant-fill loop
// from a streaming io.EOF-terminated pump to one fixed per-cycle block.
type Source struct {
	counter
	Value       buffer.Sample
	ErrorOnCall error
	block       buffer.Buffer
}

// NewSource allocates a Source with the given block size, initially
// silent.
func NewSource(blockSize int) *Source {
	return &Source{block: buffer.New(blockSize)}
}

// Buffer returns the current block, satisfying combine.Source.
func (s *Source) Buffer() buffer.Buffer { return s.block }

// Process fills the block with Value, or returns ErrorOnCall if set.
func (s *Source) Process() error {
	if s.ErrorOnCall != nil {
		return s.ErrorOnCall
	}
	for i := range s.block {
		s.block[i] = s.Value
	}
	s.advance()
	return nil
}

// Update is a no-op: Buffer already reflects Value as of the last
// Process call, so Source trivially satisfies combine.Updatable for
// crossfade-kernel tests.
func (s *Source) Update() {}

// Sink is a mock output Item: every Process call appends its current
// block to an in-memory history, generalizing mock.Sink's
// signal.Float64.Append accumulation.
type Sink struct {
	counter
	Discard     bool
	ErrorOnCall error
	block       buffer.Buffer
	history     []buffer.Sample
}

// NewSink allocates a Sink with the given block size.
func NewSink(blockSize int) *Sink {
	return &Sink{block: buffer.New(blockSize)}
}

// Buffer returns the block the combining kernel should write into
// before Process is called.
func (s *Sink) Buffer() buffer.Buffer { return s.block }

// Process appends the current block to History, unless Discard is set,
// or returns ErrorOnCall if set.
func (s *Sink) Process() error {
	if s.ErrorOnCall != nil {
		return s.ErrorOnCall
	}
	if !s.Discard {
		s.history = append(s.history, s.block...)
	}
	s.advance()
	return nil
}

// History returns every sample appended across all Process calls so
// far. Not safe to call concurrently with Process.
func (s *Sink) History() []buffer.Sample { return s.history }

// Failing is a mock Item whose Process always fails, used to exercise
// the worker pool's per-slice failure isolation (spec §4.3/§7).
type Failing struct {
	counter
	Err error
}

// Process advances the call counter and returns Err.
func (f *Failing) Process() error {
	f.advance()
	return f.Err
}
