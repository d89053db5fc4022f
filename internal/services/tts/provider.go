package tts

import (
	"fmt"
	"sync"
	"time"

	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// Factory builds a synthesizer
type Factory func() (Synthesizer, error)

// Provider lazily builds one shared synthesizer. The first Get runs the
// factory; later calls return the same instance or the same error. There is
// no teardown.
type Provider struct {
	name    string
	factory Factory

	once  sync.Once
	synth Synthesizer
	err   error
}

// NewProvider returns a provider for the backend called name
func NewProvider(name string, factory Factory) *Provider {
	return &Provider{name: name, factory: factory}
}

// Name returns the backend name
func (p *Provider) Name() string {
	return p.name
}

// Get returns the shared synthesizer, building it on first use
func (p *Provider) Get() (Synthesizer, error) {
	p.once.Do(func() {
		start := time.Now()
		p.synth, p.err = p.factory()
		if p.err != nil {
			p.err = fmt.Errorf("initialize %s tts backend: %w", p.name, p.err)
			return
		}
		logger.StdLogger().Infof("TTS backend %q ready in %s", p.name, time.Since(start).Round(time.Millisecond))
	})
	return p.synth, p.err
}

// ProviderFromConfig returns a provider for the configured backend. The
// backend is wrapped in Serialized when cfg.Serialize is set.
func ProviderFromConfig(cfg config.TTSConfig) (*Provider, error) {
	var factory Factory

	switch cfg.Backend {
	case "tone", "":
		factory = func() (Synthesizer, error) {
			return NewToneSynth(cfg.SampleRate), nil
		}
	case "exec":
		factory = func() (Synthesizer, error) {
			return NewExecSynth(cfg.Exec.Command, cfg.Exec.Timeout)
		}
	case "http":
		factory = func() (Synthesizer, error) {
			return NewHTTPSynth(cfg.HTTP)
		}
	default:
		return nil, fmt.Errorf("unknown tts backend: %q", cfg.Backend)
	}

	name := cfg.Backend
	if name == "" {
		name = "tone"
	}

	if cfg.Serialize {
		inner := factory
		factory = func() (Synthesizer, error) {
			synth, err := inner()
			if err != nil {
				return nil, err
			}
			return Serialize(synth), nil
		}
	}

	return NewProvider(name, factory), nil
}
