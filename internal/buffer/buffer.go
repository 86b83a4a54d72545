// Package buffer provides the contiguous sample buffers and the small
// family of cursor adapters (accumulating, stride, index, transform) that
// the channel-combining kernel fuses into single-pass inner loops. It
// generalizes phono.Samples/signal.Float64 (phono.go, signal/signal.go)
// from a two-dimensional, host-facing sample container into the
// single-channel buffer type the combining kernel operates on per item.
package buffer

// Sample is the concrete sample representation used throughout the core.
// The host is responsible for converting to and from whatever wire format
// its device binding requires before/after a cycle.
type Sample = float64

// Buffer is a contiguous, fixed-length sequence of samples sized to the
// block size of the owning Item.
type Buffer []Sample

// New allocates a Buffer of the given block size, zeroed.
func New(blockSize int) Buffer {
	return make(Buffer, blockSize)
}

// Zero fills the buffer with the zero value in a single pass.
func (b Buffer) Zero() {
	for i := range b {
		b[i] = 0
	}
}

// CopyFrom overwrites b with src. Panics if the lengths differ, mirroring
// the fixed block-size invariant enforced at construction.
func (b Buffer) CopyFrom(src Buffer) {
	if len(b) != len(src) {
		panic("buffer: length mismatch in CopyFrom")
	}
	copy(b, src)
}

// AccumulateFrom adds src into b sample-by-sample, the "accumulating
// writer" from spec §2: a cursor that adds into its destination instead
// of overwriting it.
func (b Buffer) AccumulateFrom(src Buffer) {
	if len(b) != len(src) {
		panic("buffer: length mismatch in AccumulateFrom")
	}
	for i := range b {
		b[i] += src[i]
	}
}

// TransformFrom writes f(src[i]) into b[i] for every i.
func (b Buffer) TransformFrom(src Buffer, f func(Sample) Sample) {
	if len(b) != len(src) {
		panic("buffer: length mismatch in TransformFrom")
	}
	for i := range b {
		b[i] = f(src[i])
	}
}

// AccumulateTransformFrom adds f(src[i]) into b[i] for every i.
func (b Buffer) AccumulateTransformFrom(src Buffer, f func(Sample) Sample) {
	if len(b) != len(src) {
		panic("buffer: length mismatch in AccumulateTransformFrom")
	}
	for i := range b {
		b[i] += f(src[i])
	}
}

// TransformIndexedFrom writes f(src[i], i) into b[i] for every i — the
// "index iterator" adapter (a virtual sequence 0,1,2,...) fused with a
// transform, used by the interpolate combiner.
func (b Buffer) TransformIndexedFrom(src Buffer, f func(Sample, int) Sample) {
	if len(b) != len(src) {
		panic("buffer: length mismatch in TransformIndexedFrom")
	}
	for i := range b {
		b[i] = f(src[i], i)
	}
}

// AccumulateTransformIndexedFrom adds f(src[i], i) into b[i] for every i.
func (b Buffer) AccumulateTransformIndexedFrom(src Buffer, f func(Sample, int) Sample) {
	if len(b) != len(src) {
		panic("buffer: length mismatch in AccumulateTransformIndexedFrom")
	}
	for i := range b {
		b[i] += f(src[i], i)
	}
}

// MultiplyAccumulate performs b[i] += src[i] * factor[i] for every i, the
// one-multiply-add-per-sample inner loop the crossfade combiner uses to
// apply a ramp.
func (b Buffer) MultiplyAccumulate(src, factor Buffer) {
	if len(b) != len(src) || len(b) != len(factor) {
		panic("buffer: length mismatch in MultiplyAccumulate")
	}
	for i := range b {
		b[i] += src[i] * factor[i]
	}
}

// MultiplyInto writes src[i] * factor[i] into b[i] for every i.
func (b Buffer) MultiplyInto(src, factor Buffer) {
	if len(b) != len(src) || len(b) != len(factor) {
		panic("buffer: length mismatch in MultiplyInto")
	}
	for i := range b {
		b[i] = src[i] * factor[i]
	}
}

// Stride returns every k-th element of b starting at offset, the "walk
// every k-th element" adapter used when a source buffer represents
// interleaved channels.
func Stride(b Buffer, offset, k int) Buffer {
	if k <= 0 {
		panic("buffer: stride must be positive")
	}
	out := make(Buffer, 0, (len(b)-offset+k-1)/k)
	for i := offset; i < len(b); i += k {
		out = append(out, b[i])
	}
	return out
}
