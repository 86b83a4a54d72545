// Package demo wires a synthetic in-process host boundary — a sine-wave
// tone source and a recording sink, as a Fetcher/Publisher pair — into a
// mimo.Processor, grounded on cmd/phono/main.go's command structure. It
// is not a real device binding (those remain out of scope, per the
// core's scope); it only exercises the engine against generated test
// tones for local smoke-testing.
package demo

import (
	"math"

	"github.com/dudk/mimo"
	"github.com/dudk/mimo/internal/buffer"
	"github.com/dudk/mimo/internal/combine"
)

// ToneSource is a synthetic host input: each Fetch call writes the next
// blockSize samples of a sine wave at Freq Hz, continuing the phase
// across calls.
type ToneSource struct {
	Freq       float64
	SampleRate int
	phase      float64
}

// Fetch implements mimo.Fetcher.
func (t *ToneSource) Fetch(dst buffer.Buffer) error {
	step := 2 * math.Pi * t.Freq / float64(t.SampleRate)
	for i := range dst {
		dst[i] = math.Sin(t.phase)
		t.phase += step
	}
	return nil
}

// Recorder is a synthetic host output: each Publish call appends the
// block to History. Not safe to read History while the processor is
// running.
type Recorder struct {
	History []buffer.Sample
}

// Publish implements mimo.Publisher.
func (r *Recorder) Publish(src buffer.Buffer) error {
	r.History = append(r.History, src...)
	return nil
}

// Host bundles a Processor with one ToneSource input and one Recorder
// output, joined by a plain-copy middle pass.
type Host struct {
	Processor *mimo.Processor
	Tone      *ToneSource
	Recorder  *Recorder

	input  *mimo.Input
	output *mimo.Output
}

// New constructs a Host. freq is the tone frequency in Hz; opts
// configures the underlying Processor (block_size and sample_rate are
// required, per spec §6).
func New(freq float64, opts ...mimo.Option) (*Host, error) {
	p, err := mimo.NewProcessor(opts...)
	if err != nil {
		return nil, err
	}
	sampleRate, _ := p.Params().Int("sample_rate")

	h := &Host{
		Processor: p,
		Tone:      &ToneSource{Freq: freq, SampleRate: sampleRate},
		Recorder:  &Recorder{},
	}
	h.input = p.NewInput(h.Tone.Fetch)
	h.output = p.NewOutput(h.Recorder.Publish)
	p.Add(mimo.ItemSpec{Item: h.input, List: mimo.InputList})
	p.Add(mimo.ItemSpec{Item: h.output, List: mimo.OutputList})
	p.SetMiddlePass(func() error {
		combine.Copy(h.output.Buffer(), []combine.Source{h.input}, func(combine.Source) combine.Selection {
			return combine.Use
		})
		return nil
	})
	return h, nil
}

// Run activates the processor, runs n cycles on this goroutine, then
// stops calling Process and deactivates. Processor.Deactivate drives its
// own drain internally, so the host does not need to keep supplying
// Process calls concurrently (spec §4.1 "deactivate()").
func (h *Host) Run(n int) error {
	p := h.Processor
	p.Activate()
	for i := 0; i < n; i++ {
		p.Process()
	}
	p.DrainCleanup()

	ok := p.Deactivate()
	p.DrainCleanup()
	p.Close()
	if !ok {
		return &mimo.DrainError{}
	}
	return nil
}
