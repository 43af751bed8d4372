package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dishalabs/disha-agent/internal/domain"
)

type fakeStream struct {
	events chan domain.TranscriptEvent

	mu     sync.Mutex
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan domain.TranscriptEvent, 16)}
}

func (f *fakeStream) SendAudio(chunk []byte) error { return nil }
func (f *fakeStream) CloseSend() error             { return nil }

func (f *fakeStream) Events() <-chan domain.TranscriptEvent { return f.events }

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

type fakeEngine struct {
	mu      sync.Mutex
	streams []*fakeStream
	starts  int
	err     error
}

func (f *fakeEngine) Start(ctx context.Context, cfg domain.RecognitionConfig) (domain.RecognitionStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.starts++
	stream := newFakeStream()
	f.streams = append(f.streams, stream)
	return stream, nil
}

type recorder struct {
	mu       sync.Mutex
	interims []string
	finals   []string
	notices  []string
	finalCh  chan string
	noticeCh chan string
}

func newRecorder() *recorder {
	return &recorder{
		finalCh:  make(chan string, 4),
		noticeCh: make(chan string, 4),
	}
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		Interim: func(text string) {
			r.mu.Lock()
			r.interims = append(r.interims, text)
			r.mu.Unlock()
		},
		Final: func(text string) {
			r.mu.Lock()
			r.finals = append(r.finals, text)
			r.mu.Unlock()
			r.finalCh <- text
		},
		Notice: func(text string) {
			r.mu.Lock()
			r.notices = append(r.notices, text)
			r.mu.Unlock()
			r.noticeCh <- text
		},
	}
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return ""
	}
}

func waitForState(t *testing.T, s *InputSession, want domain.RecognitionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state never reached %s, still %s", want, s.State())
}

func TestInputStartIsIdempotent(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	session := NewInputSession(engine, domain.RecognitionConfig{})
	rec := newRecorder()

	if err := session.Start(context.Background(), rec.handlers()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := session.Start(context.Background(), rec.handlers()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}

	engine.mu.Lock()
	starts := engine.starts
	engine.mu.Unlock()
	if starts != 1 {
		t.Fatalf("expected exactly one engine start, got %d", starts)
	}
	if session.State() != domain.RecognitionListening {
		t.Fatalf("expected listening, got %s", session.State())
	}

	session.Stop()
}

func TestInputFinalTranscriptDeliversAndReturnsToIdle(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	session := NewInputSession(engine, domain.RecognitionConfig{})
	rec := newRecorder()

	if err := session.Start(context.Background(), rec.handlers()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	stream := engine.streams[0]
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptPartial, Text: "what is"}
	stream.events <- domain.TranscriptEvent{Kind: domain.TranscriptFinal, Text: "what is the gate syllabus"}

	if got := waitFor(t, rec.finalCh); got != "what is the gate syllabus" {
		t.Fatalf("unexpected final transcript %q", got)
	}
	waitForState(t, session, domain.RecognitionIdle)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.interims) != 1 || rec.interims[0] != "what is" {
		t.Fatalf("expected one interim, got %v", rec.interims)
	}
	if len(rec.finals) != 1 {
		t.Fatalf("expected exactly one final delivery, got %v", rec.finals)
	}
}

func TestInputNoSpeechErrorGoesIdleNotListening(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	session := NewInputSession(engine, domain.RecognitionConfig{})
	rec := newRecorder()

	if err := session.Start(context.Background(), rec.handlers()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	engine.streams[0].events <- domain.TranscriptEvent{
		Kind: domain.TranscriptError,
		Err:  &domain.RecognitionError{Kind: domain.RecognitionNoSpeech, Detail: "silence"},
	}

	notice := waitFor(t, rec.noticeCh)
	if notice == "" {
		t.Fatal("expected a user-visible notice")
	}
	waitForState(t, session, domain.RecognitionIdle)

	// A new start must succeed after the error settled.
	if err := session.Start(context.Background(), rec.handlers()); err != nil {
		t.Fatalf("restart after error failed: %v", err)
	}
	session.Stop()
}

func TestInputDistinctMessagesPerErrorKind(t *testing.T) {
	t.Parallel()

	kinds := []domain.RecognitionErrorKind{
		domain.RecognitionPermissionDenied,
		domain.RecognitionNetwork,
		domain.RecognitionNoSpeech,
		domain.RecognitionOther,
	}

	seen := map[string]bool{}
	for _, kind := range kinds {
		msg := (&domain.RecognitionError{Kind: kind}).UserMessage()
		if seen[msg] {
			t.Fatalf("error kinds share the message %q", msg)
		}
		seen[msg] = true
	}
}

func TestInputStopSafeFromAnyState(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	session := NewInputSession(engine, domain.RecognitionConfig{})

	// Stop before any start.
	session.Stop()
	session.Stop()

	rec := newRecorder()
	if err := session.Start(context.Background(), rec.handlers()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	session.Stop()
	session.Stop()

	if session.State() != domain.RecognitionIdle {
		t.Fatalf("expected idle after stop, got %s", session.State())
	}
}

func TestInputNoEngineIsNoticedNotPanicked(t *testing.T) {
	t.Parallel()

	session := NewInputSession(nil, domain.RecognitionConfig{})
	rec := newRecorder()

	err := session.Start(context.Background(), rec.handlers())
	if err == nil {
		t.Fatal("expected a capability error")
	}

	var rerr *domain.RecognitionError
	if !errors.As(err, &rerr) || rerr.Kind != domain.RecognitionUnsupported {
		t.Fatalf("expected unsupported recognition error, got %v", err)
	}

	if got := waitFor(t, rec.noticeCh); got == "" {
		t.Fatal("expected a user-visible notice")
	}
	if session.State() != domain.RecognitionIdle {
		t.Fatalf("expected idle, got %s", session.State())
	}
}
