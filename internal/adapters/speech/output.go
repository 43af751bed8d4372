package speech

import (
	"context"
	"sync"

	"github.com/dishalabs/disha-agent/internal/domain"
	"github.com/dishalabs/disha-agent/internal/observability"
)

// OutputSession is the speech output state machine: idle, speaking, idle.
// At most one utterance is active; a new Speak cancels the previous
// utterance before starting, so audio never overlaps.
type OutputSession struct {
	engine domain.SynthesisEngine

	mu     sync.Mutex
	state  domain.SynthesisState
	rate   float64
	muted  bool
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOutputSession(engine domain.SynthesisEngine, rate float64, muted bool) *OutputSession {
	if rate <= 0 {
		rate = 1.0
	}
	return &OutputSession{
		engine: engine,
		state:  domain.SynthesisIdle,
		rate:   rate,
		muted:  muted,
	}
}

// State returns the current synthesis state.
func (s *OutputSession) State() domain.SynthesisState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetRate sets the rate multiplier for the NEXT utterance. An utterance
// already playing keeps the rate it started with.
func (s *OutputSession) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
}

// SetMuted toggles output. Muting cancels any utterance in progress and
// suppresses future Speak calls until unmuted.
func (s *OutputSession) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()

	if muted {
		s.cancelCurrent()
	}
}

// Speak starts speaking text, cancelling any in-flight utterance first. It
// returns immediately; synthesis runs in the background.
func (s *OutputSession) Speak(text string) {
	s.mu.Lock()
	if s.muted || s.engine == nil || text == "" {
		s.mu.Unlock()
		return
	}
	rate := s.rate
	s.mu.Unlock()

	s.cancelCurrent()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.state = domain.SynthesisSpeaking
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := s.engine.Speak(ctx, text, rate); err != nil && ctx.Err() == nil {
			observability.Logger().Warn("speech synthesis failed", "error", err)
		}

		s.mu.Lock()
		if s.done == done {
			s.cancel = nil
			s.done = nil
			s.state = domain.SynthesisIdle
		}
		s.mu.Unlock()
	}()
}

// Close is teardown: any in-flight utterance is cancelled and the machine
// returns to idle.
func (s *OutputSession) Close() {
	s.cancelCurrent()
}

func (s *OutputSession) cancelCurrent() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.state = domain.SynthesisIdle
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
