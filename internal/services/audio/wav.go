package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for data that is not a readable PCM WAV stream
var ErrInvalidWAV = errors.New("invalid wav data")

// EncodeWAV writes samples in [-1, 1] as a 16-bit mono PCM WAV stream
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = floatToPCM16(s)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}

// DecodeWAV reads a PCM WAV stream into mono samples in [-1, 1]. Multi
// channel input is averaged down to one channel.
func DecodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels < 1 {
		return nil, 0, ErrInvalidWAV
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	scale := float32(math.Pow(2, float64(buf.SourceBitDepth-1)))
	samples := make([]float32, frames)

	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			v := buf.Data[i*channels+ch]
			if buf.SourceBitDepth == 8 {
				// 8-bit PCM is unsigned
				v -= 128
			}
			sum += float32(v) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return samples, buf.Format.SampleRate, nil
}

// WAVDuration returns the playback length in seconds from the WAV header
// and the size of its data chunk
func WAVDuration(r io.ReadSeeker) (float64, error) {
	dec := wav.NewDecoder(r)
	if err := dec.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if err := dec.Err(); err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if dec.PCMChunk == nil || dec.SampleRate == 0 || dec.NumChans == 0 || dec.BitDepth < 8 {
		return 0, ErrInvalidWAV
	}

	bytesPerFrame := int(dec.NumChans) * (int(dec.BitDepth-1)/8 + 1)
	frames := dec.PCMSize / bytesPerFrame
	return float64(frames) / float64(dec.SampleRate), nil
}

func floatToPCM16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(math.Round(float64(s) * math.MaxInt16))
}
