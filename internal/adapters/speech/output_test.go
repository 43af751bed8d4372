package speech

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dishalabs/disha-agent/internal/domain"
)

// fakeSynth blocks each utterance until its context is cancelled or the test
// releases it, and records which utterances ran to completion.
type fakeSynth struct {
	mu        sync.Mutex
	started   []string
	completed []string
	rates     []float64
	release   chan struct{}
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{release: make(chan struct{})}
}

func (f *fakeSynth) Speak(ctx context.Context, text string, rate float64) error {
	f.mu.Lock()
	f.started = append(f.started, text)
	f.rates = append(f.rates, rate)
	release := f.release
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-release:
	}

	f.mu.Lock()
	f.completed = append(f.completed, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeSynth) waitStarted(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		got := len(f.started)
		f.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("utterance %d never started", n)
}

func waitSynthState(t *testing.T, s *OutputSession, want domain.SynthesisState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("synthesis state never reached %s, still %s", want, s.State())
}

func TestOutputSecondSpeakCancelsFirst(t *testing.T) {
	t.Parallel()

	synth := newFakeSynth()
	session := NewOutputSession(synth, 1.0, false)

	session.Speak("first answer")
	synth.waitStarted(t, 1)

	session.Speak("second answer")
	synth.waitStarted(t, 2)

	close(synth.release)
	waitSynthState(t, session, domain.SynthesisIdle)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.completed) != 1 || synth.completed[0] != "second answer" {
		t.Fatalf("expected only the second utterance to play out, got %v", synth.completed)
	}
}

func TestOutputRateSnapshotPerUtterance(t *testing.T) {
	t.Parallel()

	synth := newFakeSynth()
	session := NewOutputSession(synth, 1.0, false)

	session.Speak("hello")
	synth.waitStarted(t, 1)

	// A rate change applies to the next utterance, not the one in flight.
	session.SetRate(1.5)

	close(synth.release)
	waitSynthState(t, session, domain.SynthesisIdle)

	session.Speak("again")
	waitSynthState(t, session, domain.SynthesisIdle)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.rates) != 2 || synth.rates[0] != 1.0 || synth.rates[1] != 1.5 {
		t.Fatalf("unexpected rates %v", synth.rates)
	}
}

func TestOutputMuteCancelsAndSuppresses(t *testing.T) {
	t.Parallel()

	synth := newFakeSynth()
	session := NewOutputSession(synth, 1.0, false)

	session.Speak("long explanation")
	synth.waitStarted(t, 1)

	session.SetMuted(true)
	if session.State() != domain.SynthesisIdle {
		t.Fatalf("expected idle after mute, got %s", session.State())
	}

	session.Speak("suppressed while muted")

	session.SetMuted(false)
	session.Speak("audible again")
	synth.waitStarted(t, 2)
	close(synth.release)
	waitSynthState(t, session, domain.SynthesisIdle)

	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.started) != 2 || synth.started[1] != "audible again" {
		t.Fatalf("unexpected utterances %v", synth.started)
	}
	if len(synth.completed) != 1 || synth.completed[0] != "audible again" {
		t.Fatalf("expected only the unmuted utterance to finish, got %v", synth.completed)
	}
}

func TestOutputNilEngineAndEmptyTextAreNoOps(t *testing.T) {
	t.Parallel()

	session := NewOutputSession(nil, 1.0, false)
	session.Speak("no engine wired")
	if session.State() != domain.SynthesisIdle {
		t.Fatalf("expected idle, got %s", session.State())
	}

	synth := newFakeSynth()
	withEngine := NewOutputSession(synth, 1.0, false)
	withEngine.Speak("")
	if withEngine.State() != domain.SynthesisIdle {
		t.Fatalf("expected idle for empty text, got %s", withEngine.State())
	}
	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.started) != 0 {
		t.Fatalf("empty text must not reach the engine, got %v", synth.started)
	}
}

func TestOutputCloseCancelsInFlight(t *testing.T) {
	t.Parallel()

	synth := newFakeSynth()
	session := NewOutputSession(synth, 1.0, false)

	session.Speak("interrupted by shutdown")
	synth.waitStarted(t, 1)
	session.Close()

	if session.State() != domain.SynthesisIdle {
		t.Fatalf("expected idle after close, got %s", session.State())
	}
	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.completed) != 0 {
		t.Fatalf("cancelled utterance must not complete, got %v", synth.completed)
	}
}
