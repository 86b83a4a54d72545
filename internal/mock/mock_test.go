package mock_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/mimo/internal/mock"
)

func TestSourceFillsBlockWithValue(t *testing.T) {
	s := mock.NewSource(4)
	s.Value = 3
	err := s.Process()
	assert.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 3, 3}, []float64(s.Buffer()))
	assert.Equal(t, 1, s.Count())
}

func TestSourceReturnsConfiguredError(t *testing.T) {
	s := mock.NewSource(2)
	s.ErrorOnCall = errors.New("host underrun")
	err := s.Process()
	assert.EqualError(t, err, "host underrun")
	assert.Equal(t, 0, s.Count())
}

func TestSinkAccumulatesHistoryAcrossCycles(t *testing.T) {
	s := mock.NewSink(2)
	copy(s.Buffer(), []float64{1, 2})
	assert.NoError(t, s.Process())
	copy(s.Buffer(), []float64{3, 4})
	assert.NoError(t, s.Process())

	assert.Equal(t, []float64{1, 2, 3, 4}, []float64(s.History()))
	assert.Equal(t, 2, s.Count())
}

func TestSinkDiscardSkipsHistory(t *testing.T) {
	s := mock.NewSink(2)
	s.Discard = true
	copy(s.Buffer(), []float64{9, 9})
	assert.NoError(t, s.Process())
	assert.Empty(t, s.History())
	assert.Equal(t, 1, s.Count())
}

func TestFailingAlwaysErrors(t *testing.T) {
	f := &mock.Failing{Err: errors.New("boom")}
	assert.EqualError(t, f.Process(), "boom")
	assert.Equal(t, 1, f.Count())
}
