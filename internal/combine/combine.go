// Package combine implements the channel-combining kernel: four
// parameterized policies that reduce a list of source items into one
// destination buffer, transliterated from apf::CombineChannels* in
// combine_channels.h and generalizing the teacher's ad hoc
// channel-summing mixer.Mixer.Pump (mixer.go, the (*buffer).sum method)
// into a predicate-driven, lazily-zeroed reduction. Copy, Transform and
// Interpolate are plain functions; Crossfade is a method on Crossfader
// because it needs preallocated scratch buffers that must survive across
// calls on the audio thread.
package combine

import (
	"fmt"

	"github.com/dudk/mimo/internal/buffer"
	"github.com/dudk/mimo/internal/crossfade"
)

// Selection is the result of classifying one source for the current
// cycle: Skip drops it, Use takes its current block, Transition takes it
// through an interpolation or crossfade depending on the kernel variant.
type Selection int

const (
	Skip Selection = iota
	Use
	Transition
)

// Source is a single item the kernel can read a buffer from.
type Source interface {
	Buffer() buffer.Buffer
}

// Updatable is a Source whose contents change when Update is called, used
// by the crossfade variant to capture a source's pre- and post-update
// state within a single cycle.
type Updatable interface {
	Source
	Update()
}

// Selector classifies a source for the current cycle. Any value outside
// {Skip, Use, Transition} is a programmer-contract violation and the
// kernel panics with BadSelection.
type Selector func(Source) Selection

// BadSelection is panicked when a Selector returns a value outside
// {Skip, Use, Transition}.
type BadSelection struct {
	Value Selection
}

func (e BadSelection) Error() string {
	return fmt.Sprintf("combine: selector must return Skip, Use or Transition, got %d", e.Value)
}

// zeroIfSilent fills dst with zero unless accumulated is true, realizing
// the hot-path optimization described in the spec: silent outputs cost
// one zeroing pass, busy outputs cost zero.
func zeroIfSilent(dst buffer.Buffer, accumulated bool) {
	if !accumulated {
		dst.Zero()
	}
}

// Copy reduces sources into dst by plain accumulation: the first
// contributing source overwrites dst, every subsequent one adds into it.
// Transition is not implemented for this variant, matching
// apf::CombineChannelsCopy.
func Copy(dst buffer.Buffer, sources []Source, selector Selector) {
	accumulated := false
	for _, s := range sources {
		sel := selector(s)
		switch sel {
		case Skip:
			continue
		case Use:
			if accumulated {
				dst.AccumulateFrom(s.Buffer())
			} else {
				dst.CopyFrom(s.Buffer())
				accumulated = true
			}
		case Transition:
			panic("combine: Copy does not support Transition selections")
		default:
			panic(BadSelection{Value: sel})
		}
	}
	zeroIfSilent(dst, accumulated)
}

// Transform reduces sources into dst by applying f to every sample before
// accumulating, matching apf::CombineChannels. Transition is not
// implemented for this variant.
func Transform(dst buffer.Buffer, sources []Source, f func(buffer.Sample) buffer.Sample, selector Selector) {
	accumulated := false
	for _, s := range sources {
		sel := selector(s)
		switch sel {
		case Skip:
			continue
		case Use:
			if accumulated {
				dst.AccumulateTransformFrom(s.Buffer(), f)
			} else {
				dst.TransformFrom(s.Buffer(), f)
				accumulated = true
			}
		case Transition:
			panic("combine: Transform does not support Transition selections")
		default:
			panic(BadSelection{Value: sel})
		}
	}
	zeroIfSilent(dst, accumulated)
}

// Interpolate reduces sources into dst applying f(sample, index) on both
// Use and Transition selections, matching
// apf::CombineChannelsInterpolation: a moving source that is
// interpolated every cycle, whether or not it just changed state.
func Interpolate(dst buffer.Buffer, sources []Source, f func(buffer.Sample, int) buffer.Sample, selector Selector) {
	accumulated := false
	for _, s := range sources {
		sel := selector(s)
		if sel == Skip {
			continue
		}
		if sel != Use && sel != Transition {
			panic(BadSelection{Value: sel})
		}
		if accumulated {
			dst.AccumulateTransformIndexedFrom(s.Buffer(), f)
		} else {
			dst.TransformIndexedFrom(s.Buffer(), f)
			accumulated = true
		}
	}
	zeroIfSilent(dst, accumulated)
}

// Crossfader holds the fade-out/fade-in scratch buffers Crossfade needs
// to blend a source's pre- and post-update state, preallocated once and
// reused on every call, matching apf::CombineChannelsCrossfadeBase's
// _fade_out_buffer/_fade_in_buffer (combine_channels.h), which are sized
// in the constructor and never reallocated on process(). Crossfade is
// invoked from the audio thread, so unlike Copy/Transform/Interpolate it
// cannot allocate its scratch space on every call.
type Crossfader struct {
	fadeOut buffer.Buffer
	fadeIn  buffer.Buffer
}

// NewCrossfader preallocates scratch buffers sized for blockSize. Call
// once per item/middle-pass site during setup, not per cycle.
func NewCrossfader(blockSize int) *Crossfader {
	return &Crossfader{
		fadeOut: buffer.New(blockSize),
		fadeIn:  buffer.New(blockSize),
	}
}

// Crossfade reduces sources into dst applying f then accumulating on Use,
// and blending old/new state through window on Transition, matching
// apf::CombineChannelsCrossfade. On Transition, the source's pre-Update
// buffer is captured into the fade-out accumulator, Update is called,
// then the post-Update buffer is captured into the fade-in accumulator —
// the kernel therefore observes the source in both its pre- and
// post-update form within one cycle, which is the mechanism used to
// realize a one-block crossfade across a discontinuous parameter change.
func (c *Crossfader) Crossfade(dst buffer.Buffer, sources []Updatable, f func(buffer.Sample) buffer.Sample, window crossfade.Window, selector Selector) {
	accumulated := false
	accumulatedFade := false
	fadeOutBuf := c.fadeOut
	fadeInBuf := c.fadeIn

	for _, s := range sources {
		sel := selector(s)
		switch sel {
		case Skip:
			continue
		case Use:
			if accumulated {
				dst.AccumulateTransformFrom(s.Buffer(), f)
			} else {
				dst.TransformFrom(s.Buffer(), f)
				accumulated = true
			}
		case Transition:
			if accumulatedFade {
				fadeOutBuf.AccumulateTransformFrom(s.Buffer(), f)
				s.Update()
				fadeInBuf.AccumulateTransformFrom(s.Buffer(), f)
			} else {
				fadeOutBuf.TransformFrom(s.Buffer(), f)
				s.Update()
				fadeInBuf.TransformFrom(s.Buffer(), f)
			}
			accumulatedFade = true
		default:
			panic(BadSelection{Value: sel})
		}
	}

	if accumulatedFade {
		if accumulated {
			dst.MultiplyAccumulate(fadeOutBuf, window.FadeOut)
		} else {
			dst.MultiplyInto(fadeOutBuf, window.FadeOut)
			accumulated = true
		}
		dst.MultiplyAccumulate(fadeInBuf, window.FadeIn)
	}

	zeroIfSilent(dst, accumulated)
}
