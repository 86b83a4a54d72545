// Package crossfade precomputes the raised-cosine ramp pair used to blend
// a source's pre- and post-update state over one block, grounded on apf's
// raised_cosine_fade (combine_channels.h).
package crossfade

import (
	"math"

	"github.com/dudk/mimo/internal/buffer"
)

// Window holds a fade-out ramp and a fade-in ramp, each of length
// blockSize, sampled from a single raised cosine over [0, pi] such that
// FadeOut[n] + FadeIn[n] == 1 for every n.
type Window struct {
	FadeOut buffer.Buffer
	FadeIn  buffer.Buffer
}

// New precomputes a Window for the given block size. w(n) = 0.5*(1 -
// cos(pi*n/blockSize)) is sampled for n = 0..blockSize; FadeOut walks it
// forward, FadeIn walks it in reverse.
func New(blockSize int) Window {
	raised := make([]float64, blockSize+1)
	for n := range raised {
		raised[n] = 0.5 * (1 - math.Cos(math.Pi*float64(n)/float64(blockSize)))
	}

	fadeOut := make(buffer.Buffer, blockSize)
	fadeIn := make(buffer.Buffer, blockSize)
	for n := 0; n < blockSize; n++ {
		fadeOut[n] = raised[n]
		fadeIn[n] = raised[blockSize-n]
	}
	return Window{FadeOut: fadeOut, FadeIn: fadeIn}
}

// Size returns the block size this window was built for.
func (w Window) Size() int {
	return len(w.FadeOut)
}
