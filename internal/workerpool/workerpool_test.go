package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/dudk/mimo/internal/rtlist"
	"github.com/dudk/mimo/internal/workerpool"
)

type sumItem struct {
	value   int
	total   *int64
	mu      *sync.Mutex
	touched *int32
}

func (s *sumItem) Process() error {
	if s.touched != nil {
		atomic.AddInt32(s.touched, 1)
	}
	s.mu.Lock()
	*s.total += int64(s.value)
	s.mu.Unlock()
	return nil
}

func buildList(values []int, total *int64, mu *sync.Mutex) *rtlist.List {
	l := rtlist.New()
	for _, v := range values {
		_, cmd := l.Add(&sumItem{value: v, total: total, mu: mu})
		cmd.Execute()
	}
	return l
}

// S2: three inputs summing with N=2 and N=4 workers give the same total.
func TestRunStageSumIsIndependentOfWorkerCount(t *testing.T) {
	defer goleak.VerifyNone(t)

	values := []int{1, 2, 3}
	for _, n := range []int{1, 2, 4} {
		var total int64
		var mu sync.Mutex
		list := buildList(values, &total, &mu)

		pool := workerpool.New(n)
		pool.RunStage(list)
		pool.Close()

		assert.EqualValues(t, 6, total, "n=%d", n)
	}
}

func TestRunStageSkipsEmptyList(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := workerpool.New(3)
	defer pool.Close()
	empty := rtlist.New()
	assert.NotPanics(t, func() { pool.RunStage(empty) })
}

func TestRunStageInvokesFailureHandlerAndContinues(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := rtlist.New()
	var processed int32
	for i := 0; i < 4; i++ {
		i := i
		_, cmd := l.Add(rtlist.Item(failingAt{index: i, shouldFail: i == 1, processed: &processed}))
		cmd.Execute()
	}

	var failedPositions []int
	var mu sync.Mutex
	pool := workerpool.New(2)
	pool.SetFailureHandler(func(position int, item rtlist.Item, err error) {
		mu.Lock()
		failedPositions = append(failedPositions, position)
		mu.Unlock()
	})
	pool.RunStage(l)
	pool.Close()

	assert.EqualValues(t, 4, processed)
	assert.Equal(t, []int{1}, failedPositions)
}

type failingAt struct {
	index      int
	shouldFail bool
	processed  *int32
}

func (f failingAt) Process() error {
	atomic.AddInt32(f.processed, 1)
	if f.shouldFail {
		return assert.AnError
	}
	return nil
}

// fatalErr implements workerpool.SeverityError as Fatal.
type fatalErr struct{}

func (fatalErr) Error() string             { return "fatal item error" }
func (fatalErr) Severity() workerpool.Severity { return workerpool.Fatal }

type fatalItem struct{}

func (fatalItem) Process() error { return fatalErr{} }

// A Fatal item error aborts the stage instead of being routed to the
// failure handler.
func TestRunStagePanicsOnFatalSeverity(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := rtlist.New()
	_, cmd := l.Add(rtlist.Item(fatalItem{}))
	cmd.Execute()

	var calledHandler bool
	pool := workerpool.New(1)
	defer pool.Close()
	pool.SetFailureHandler(func(position int, item rtlist.Item, err error) {
		calledHandler = true
	})

	assert.Panics(t, func() { pool.RunStage(l) })
	assert.False(t, calledHandler)
}

type namedItem struct{ name string }

func (namedItem) Process() error   { return assert.AnError }
func (n namedItem) Name() string   { return n.name }

// An Item implementing Named surfaces its precomputed label to the
// failure handler unchanged.
func TestRunStagePassesNamedItemThrough(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := rtlist.New()
	_, cmd := l.Add(rtlist.Item(namedItem{name: "mock.Source"}))
	cmd.Execute()

	var gotName string
	pool := workerpool.New(1)
	defer pool.Close()
	pool.SetFailureHandler(func(position int, item rtlist.Item, err error) {
		if n, ok := item.(workerpool.Named); ok {
			gotName = n.Name()
		}
	})
	pool.RunStage(l)

	assert.Equal(t, "mock.Source", gotName)
}
