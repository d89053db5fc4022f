package tts

import (
	"context"
)

// Request is one synthesis call: text spoken with a reference voice
type Request struct {
	Text      string `json:"text"`
	VoicePath string `json:"voice_path"`
	Language  string `json:"language"`
}

// Result is a mono waveform with samples in [-1, 1]
type Result struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the length of the waveform in seconds
func (r *Result) Duration() float64 {
	if r == nil || r.SampleRate <= 0 {
		return 0
	}
	return float64(len(r.Samples)) / float64(r.SampleRate)
}

// Synthesizer turns text into speech. Implementations fail with an opaque
// error that callers do not retry.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
}

// Exclusive is a Synthesizer whose backend admits one caller at a time.
// Acquire returns the backend to call while the slot is held.
type Exclusive interface {
	Synthesizer
	Acquire(ctx context.Context) (next Synthesizer, release func(), err error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface
type SynthesizerFunc func(ctx context.Context, req Request) (*Result, error)

// Synthesize calls f
func (f SynthesizerFunc) Synthesize(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}
