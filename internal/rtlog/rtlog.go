// Package rtlog implements out-of-band logging for the audio thread:
// per-item failures are pushed into a lock-free ring (reusing
// internal/queue's SPSC ring design) instead of being logged
// synchronously, and drained by the control thread onto a
// github.com/sirupsen/logrus logger, grounded on log.GetLogger
// (log/log.go) and its PHONO_DEBUG env toggle, generalized to
// MIMO_DEBUG.
package rtlog

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

func debugEnabled() bool {
	v, err := strconv.ParseBool(os.Getenv("MIMO_DEBUG"))
	if err != nil {
		return false
	}
	return v
}

// Entry records one item failure captured on the audio thread. It is a
// plain value so pushing one onto the ring never allocates.
type Entry struct {
	Position int
	Item     string
	Err      error
}

// ring is a bounded SPSC queue of Entry values, structurally identical
// to queue.ring but specialized to Entry to avoid an interface-boxing
// allocation on every push.
type ring struct {
	buf  []Entry
	mask uint64
	head atomic.Uint64
	tail atomic.Uint64
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &ring{buf: make([]Entry, size), mask: uint64(size - 1)}
}

func (r *ring) tryPush(e Entry) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail-head > r.mask {
		return false
	}
	r.buf[tail&r.mask] = e
	r.tail.Store(tail + 1)
	return true
}

func (r *ring) tryPop() (Entry, bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head == tail {
		return Entry{}, false
	}
	e := r.buf[head&r.mask]
	r.buf[head&r.mask] = Entry{}
	r.head.Store(head + 1)
	return e, true
}

// Logger buffers item failures reported from the audio thread and drains
// them onto a logrus.Logger from the control thread.
type Logger struct {
	entries *ring
	dropped atomic.Uint64
	backend *logrus.Logger
}

// New returns a Logger whose ring holds up to capacity pending entries.
func New(capacity int) *Logger {
	backend := logrus.New()
	if debugEnabled() {
		backend.SetLevel(logrus.DebugLevel)
	}
	return &Logger{
		entries: newRing(capacity),
		backend: backend,
	}
}

// Backend returns the underlying logrus.Logger, for host code that wants
// to attach formatters or hooks.
func (l *Logger) Backend() *logrus.Logger { return l.backend }

// ReportItemFailure is called from the audio thread at a slice boundary
// when an Item's Process returns an error. It never blocks or allocates;
// if the ring is full the entry is dropped and counted.
func (l *Logger) ReportItemFailure(position int, itemName string, err error) {
	if !l.entries.tryPush(Entry{Position: position, Item: itemName, Err: err}) {
		l.dropped.Add(1)
	}
}

// Dropped returns the number of entries lost to a full ring since
// construction.
func (l *Logger) Dropped() uint64 { return l.dropped.Load() }

// Drain is called from the control thread to flush every pending entry
// onto the backend logger. Safe to call on a timer or after every cycle.
func (l *Logger) Drain() {
	for {
		e, ok := l.entries.tryPop()
		if !ok {
			break
		}
		l.backend.WithFields(logrus.Fields{
			"position": e.Position,
			"item":     e.Item,
		}).WithError(e.Err).Warn("item process failed")
	}
	if dropped := l.dropped.Swap(0); dropped > 0 {
		l.backend.WithField("dropped", dropped).Warn("rtlog ring overflowed")
	}
}
