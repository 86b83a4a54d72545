package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/mimo/internal/buffer"
)

func TestAccumulateFrom(t *testing.T) {
	dst := buffer.Buffer{1, 2, 3, 4}
	src := buffer.Buffer{1, 1, 1, 1}
	dst.AccumulateFrom(src)
	assert.Equal(t, buffer.Buffer{2, 3, 4, 5}, dst)
}

func TestTransformFrom(t *testing.T) {
	dst := buffer.New(4)
	src := buffer.Buffer{2, 2, 2, 2}
	dst.TransformFrom(src, func(s buffer.Sample) buffer.Sample { return s * 0.5 })
	assert.Equal(t, buffer.Buffer{1, 1, 1, 1}, dst)
}

func TestZero(t *testing.T) {
	b := buffer.Buffer{1, 2, 3}
	b.Zero()
	assert.Equal(t, buffer.Buffer{0, 0, 0}, b)
}

func TestMultiplyAccumulate(t *testing.T) {
	dst := buffer.Buffer{1, 1, 1}
	src := buffer.Buffer{2, 2, 2}
	factor := buffer.Buffer{0.5, 1, 2}
	dst.MultiplyAccumulate(src, factor)
	assert.Equal(t, buffer.Buffer{2, 3, 5}, dst)
}

func TestStride(t *testing.T) {
	interleaved := buffer.Buffer{0, 10, 1, 11, 2, 12, 3, 13}
	left := buffer.Stride(interleaved, 0, 2)
	right := buffer.Stride(interleaved, 1, 2)
	assert.Equal(t, buffer.Buffer{0, 1, 2, 3}, left)
	assert.Equal(t, buffer.Buffer{10, 11, 12, 13}, right)
}
