package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// maxResponseBytes caps the WAV body read from the server
const maxResponseBytes = 256 << 20

// StatusError is returned when the synthesis server answers with a non-200
// status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tts server returned %d: %s", e.StatusCode, e.Body)
}

// httpRequest is the JSON body understood by XTTS style servers
type httpRequest struct {
	Text       string `json:"text"`
	SpeakerWAV string `json:"speaker_wav"`
	Language   string `json:"language"`
}

// HTTPSynth posts requests to a synthesis server that answers with WAV.
// Calls go through a circuit breaker so a dead server fails fast.
type HTTPSynth struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPSynth returns a synthesizer for the server at cfg.URL
func NewHTTPSynth(cfg config.HTTPBackendConfig) (*HTTPSynth, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("tts http url is empty")
	}

	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tts-http",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A rejected request says nothing about server health
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.StdLogger().Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	})

	return &HTTPSynth{
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
	}, nil
}

// Synthesize posts req and decodes the WAV response
func (h *HTTPSynth) Synthesize(ctx context.Context, req Request) (*Result, error) {
	out, err := h.breaker.Execute(func() (interface{}, error) {
		return h.post(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}

func (h *HTTPSynth) post(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(httpRequest{
		Text:       req.Text,
		SpeakerWAV: req.VoicePath,
		Language:   req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(data)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: msg}
	}

	samples, rate, err := audio.DecodeWAV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode tts response: %w", err)
	}

	return &Result{Samples: samples, SampleRate: rate}, nil
}
