package tts

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	defaultToneSampleRate = 24000
	toneSecondsPerRune    = 0.06
	toneMinSeconds        = 0.25
	toneAmplitude         = 0.3
)

// ToneSynth renders a sine tone whose length follows the text length. It
// needs no model and is used for development and tests.
type ToneSynth struct {
	sampleRate int
}

// NewToneSynth returns a tone synthesizer producing sampleRate Hz audio
func NewToneSynth(sampleRate int) *ToneSynth {
	if sampleRate <= 0 {
		sampleRate = defaultToneSampleRate
	}
	return &ToneSynth{sampleRate: sampleRate}
}

// Synthesize returns a deterministic tone for req
func (t *ToneSynth) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	seconds := math.Max(toneMinSeconds, float64(utf8.RuneCountInString(text))*toneSecondsPerRune)
	n := int(seconds * float64(t.sampleRate))
	freq := toneFrequency(req.Language)

	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(toneAmplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(t.sampleRate)))
	}

	return &Result{Samples: samples, SampleRate: t.sampleRate}, nil
}

func toneFrequency(language string) float64 {
	switch language {
	case "zh":
		return 330
	default:
		return 220
	}
}
