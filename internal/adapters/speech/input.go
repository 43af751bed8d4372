// Package speech holds the voice input and output session state machines.
// Each wraps a process-wide engine (one microphone, one synthesizer) and
// enforces single activation itself, without external locking.
package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/dishalabs/disha-agent/internal/domain"
	"github.com/dishalabs/disha-agent/internal/observability"
)

// Handlers receive the output of one listening session. Interim transcripts
// are for live display only; exactly one final transcript is delivered and
// ends the session.
type Handlers struct {
	Interim func(text string)
	Final   func(text string)
	Notice  func(text string)
}

// InputSession is the speech input state machine: idle, listening, then back
// to idle, with classified errors also settling on idle.
type InputSession struct {
	engine domain.RecognitionEngine
	cfg    domain.RecognitionConfig

	mu      sync.Mutex
	state   domain.RecognitionState
	stream  domain.RecognitionStream
	cancel  context.CancelFunc
	done    chan struct{}
	sawText bool
}

func NewInputSession(engine domain.RecognitionEngine, cfg domain.RecognitionConfig) *InputSession {
	return &InputSession{
		engine: engine,
		cfg:    cfg,
		state:  domain.RecognitionIdle,
	}
}

// State returns the current recognition state.
func (s *InputSession) State() domain.RecognitionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins listening. It is a no-op while already listening. When no
// engine is configured the failure is delivered as a user-visible notice and
// a classified error, never a panic.
func (s *InputSession) Start(ctx context.Context, h Handlers) error {
	s.mu.Lock()
	if s.state == domain.RecognitionListening {
		s.mu.Unlock()
		return nil
	}

	if s.engine == nil {
		s.mu.Unlock()
		rerr := &domain.RecognitionError{Kind: domain.RecognitionUnsupported, Detail: "no recognition engine configured"}
		notify(h, rerr.UserMessage())
		return rerr
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := s.engine.Start(sessionCtx, s.cfg)
	if err != nil {
		s.mu.Unlock()
		cancel()
		rerr := classifyStartError(err)
		notify(h, rerr.UserMessage())
		return rerr
	}

	done := make(chan struct{})
	s.stream = stream
	s.cancel = cancel
	s.done = done
	s.sawText = false
	s.state = domain.RecognitionListening
	s.mu.Unlock()

	go s.consume(stream, h, done)
	return nil
}

// SendAudio forwards captured audio to the active stream.
func (s *InputSession) SendAudio(chunk []byte) error {
	s.mu.Lock()
	stream := s.stream
	listening := s.state == domain.RecognitionListening
	s.mu.Unlock()

	if !listening || stream == nil {
		return nil
	}
	return stream.SendAudio(chunk)
}

// Stop ends listening. Safe to call from any state, any number of times.
func (s *InputSession) Stop() {
	s.mu.Lock()
	stream := s.stream
	cancel := s.cancel
	done := s.done
	s.stream = nil
	s.cancel = nil
	s.done = nil
	s.state = domain.RecognitionIdle
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		_ = stream.Close()
	}
	if done != nil {
		<-done
	}
}

// Close is teardown; equivalent to Stop.
func (s *InputSession) Close() {
	s.Stop()
}

func (s *InputSession) consume(stream domain.RecognitionStream, h Handlers, done chan struct{}) {
	defer close(done)

	for event := range stream.Events() {
		switch event.Kind {
		case domain.TranscriptPartial:
			s.mu.Lock()
			s.sawText = true
			s.mu.Unlock()
			if h.Interim != nil && strings.TrimSpace(event.Text) != "" {
				h.Interim(event.Text)
			}

		case domain.TranscriptFinal:
			text := strings.TrimSpace(event.Text)
			s.finish(stream, domain.RecognitionIdle)
			if text == "" {
				rerr := &domain.RecognitionError{Kind: domain.RecognitionNoSpeech, Detail: "final transcript was empty"}
				notify(h, rerr.UserMessage())
				return
			}
			if h.Final != nil {
				h.Final(text)
			}
			return

		case domain.TranscriptError:
			rerr := event.Err
			if rerr == nil {
				rerr = &domain.RecognitionError{Kind: domain.RecognitionOther, Detail: "recognition stream failed"}
			}
			observability.Logger().Warn("speech recognition error", "kind", rerr.Kind, "detail", rerr.Detail)
			// The error state is transient: it is reported, then the machine
			// settles back to idle so a new Start can succeed.
			s.finish(stream, domain.RecognitionErrored)
			s.setState(domain.RecognitionIdle)
			notify(h, rerr.UserMessage())
			return
		}
	}

	// Stream ended without a final transcript.
	s.mu.Lock()
	saw := s.sawText
	stillOurs := s.stream == stream
	s.mu.Unlock()
	if !stillOurs {
		return
	}
	s.finish(stream, domain.RecognitionIdle)
	if !saw {
		rerr := &domain.RecognitionError{Kind: domain.RecognitionNoSpeech, Detail: "no speech detected"}
		notify(h, rerr.UserMessage())
	}
}

// finish detaches the given stream and settles the state machine, but only
// if the stream is still the active one (Stop may have raced ahead).
func (s *InputSession) finish(stream domain.RecognitionStream, state domain.RecognitionState) {
	s.mu.Lock()
	if s.stream != stream {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.stream = nil
	s.cancel = nil
	s.done = nil
	s.state = state
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	_ = stream.Close()
}

func (s *InputSession) setState(state domain.RecognitionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func notify(h Handlers, text string) {
	if h.Notice != nil {
		h.Notice(text)
	}
}

func classifyStartError(err error) *domain.RecognitionError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"), strings.Contains(msg, "unauthorized"), strings.Contains(msg, "forbidden"):
		return &domain.RecognitionError{Kind: domain.RecognitionPermissionDenied, Detail: err.Error()}
	case strings.Contains(msg, "dial"), strings.Contains(msg, "connect"), strings.Contains(msg, "timeout"), strings.Contains(msg, "dns"):
		return &domain.RecognitionError{Kind: domain.RecognitionNetwork, Detail: err.Error()}
	default:
		return &domain.RecognitionError{Kind: domain.RecognitionOther, Detail: err.Error()}
	}
}
