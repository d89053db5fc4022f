package tts

import (
	"context"
	"sync"
)

// backendSlot admits one backend call at a time across the process
var backendSlot = make(chan struct{}, 1)

// Serialized runs at most one Synthesize call at a time across every
// Serialized synthesizer in the process. It serializes backend calls, not
// stories.
type Serialized struct {
	next Synthesizer
	slot chan struct{}
}

var _ Exclusive = (*Serialized)(nil)

// Serialize wraps next with the process-wide backend lock
func Serialize(next Synthesizer) *Serialized {
	return &Serialized{next: next, slot: backendSlot}
}

// Acquire waits for the backend slot, honoring ctx while waiting. The
// returned synthesizer may be used until release is called.
func (s *Serialized) Acquire(ctx context.Context) (Synthesizer, func(), error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	var once sync.Once
	return s.next, func() { once.Do(func() { <-s.slot }) }, nil
}

// Synthesize runs next while holding the backend slot
func (s *Serialized) Synthesize(ctx context.Context, req Request) (*Result, error) {
	next, release, err := s.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return next.Synthesize(ctx, req)
}
