// Package deepgram provides Deepgram-backed speech engines: a websocket
// streaming recognizer and an HTTP text-to-speech synthesizer.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dishalabs/disha-agent/internal/domain"
)

// Config controls Deepgram API settings shared by both engines.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	SpeakModel  string
	SmartFormat bool
}

// Recognizer implements domain.RecognitionEngine over the Deepgram
// streaming websocket.
type Recognizer struct {
	cfg Config
}

func NewRecognizer(cfg Config) *Recognizer {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	return &Recognizer{cfg: cfg}
}

func (r *Recognizer) Start(ctx context.Context, cfg domain.RecognitionConfig) (domain.RecognitionStream, error) {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		return nil, errors.New("deepgram api key is not configured")
	}

	wsURL, err := buildListenURL(r.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to deepgram websocket: %w", err)
	}

	stream := &recognitionStream{
		conn:   conn,
		events: make(chan domain.TranscriptEvent, 64),
		audio:  make(chan []byte, 32),
		done:   make(chan struct{}),
	}

	stream.wg.Add(2)
	go stream.readLoop()
	go stream.writeLoop()
	go func() {
		stream.wg.Wait()
		close(stream.events)
		close(stream.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = stream.Close()
	}()

	return stream, nil
}

type recognitionStream struct {
	conn *websocket.Conn

	events chan domain.TranscriptEvent
	audio  chan []byte
	done   chan struct{}

	wg sync.WaitGroup

	closeSendOnce sync.Once
	closeOnce     sync.Once
	sendMu        sync.RWMutex
	sendClosed    bool
}

func (s *recognitionStream) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	// Hold the read lock across the send so CloseSend cannot close the
	// channel underneath us. The write loop keeps draining, so CloseSend
	// waits at most one buffered chunk.
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.sendClosed {
		return errors.New("audio stream is already closed")
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.done:
		return errors.New("session closed")
	}
}

func (s *recognitionStream) CloseSend() error {
	s.closeSendOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.audio)
		s.sendMu.Unlock()
	})
	return nil
}

func (s *recognitionStream) Events() <-chan domain.TranscriptEvent {
	return s.events
}

func (s *recognitionStream) Close() error {
	s.closeOnce.Do(func() {
		_ = s.CloseSend()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

func (s *recognitionStream) writeLoop() {
	defer s.wg.Done()

	for chunk := range s.audio {
		if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			s.emit(domain.TranscriptEvent{Kind: domain.TranscriptError, Err: classifyStreamError(err)})
			return
		}
	}

	_ = s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
}

func (s *recognitionStream) readLoop() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if !isNormalClose(err) {
				s.emit(domain.TranscriptEvent{Kind: domain.TranscriptError, Err: classifyStreamError(err)})
			}
			return
		}

		var response deepgramResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			detail := strings.TrimSpace(response.Message)
			if detail == "" {
				detail = "deepgram returned an unknown error"
			}
			s.emit(domain.TranscriptEvent{
				Kind: domain.TranscriptError,
				Err:  &domain.RecognitionError{Kind: domain.RecognitionOther, Detail: detail},
			})
			return
		}

		transcript := extractTranscript(response)
		if transcript == "" {
			continue
		}

		event := domain.TranscriptEvent{Text: transcript}
		if response.IsFinal || response.SpeechFinal {
			event.Kind = domain.TranscriptFinal
		} else {
			event.Kind = domain.TranscriptPartial
		}
		s.emit(event)
	}
}

func (s *recognitionStream) emit(event domain.TranscriptEvent) {
	select {
	case s.events <- event:
	case <-s.done:
	default:
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

func classifyStreamError(err error) *domain.RecognitionError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return &domain.RecognitionError{Kind: domain.RecognitionPermissionDenied, Detail: err.Error()}
	case strings.Contains(msg, "dial"), strings.Contains(msg, "broken pipe"), strings.Contains(msg, "reset"), strings.Contains(msg, "timeout"):
		return &domain.RecognitionError{Kind: domain.RecognitionNetwork, Detail: err.Error()}
	default:
		return &domain.RecognitionError{Kind: domain.RecognitionOther, Detail: err.Error()}
	}
}

type deepgramResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func extractTranscript(response deepgramResponse) string {
	if len(response.Channel.Alternatives) > 0 {
		return strings.TrimSpace(response.Channel.Alternatives[0].Transcript)
	}
	return ""
}

func buildListenURL(providerCfg Config, streamCfg domain.RecognitionConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid deepgram api base url: %w", err)
	}

	if streamCfg.Encoding == "" {
		streamCfg.Encoding = "linear16"
	}
	if streamCfg.SampleRate <= 0 {
		streamCfg.SampleRate = 16000
	}
	if streamCfg.Channels <= 0 {
		streamCfg.Channels = 1
	}

	query := listenURL.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", streamCfg.Encoding)
	query.Set("sample_rate", fmt.Sprintf("%d", streamCfg.SampleRate))
	query.Set("channels", fmt.Sprintf("%d", streamCfg.Channels))
	query.Set("interim_results", fmt.Sprintf("%t", streamCfg.InterimResults))
	query.Set("smart_format", fmt.Sprintf("%t", providerCfg.SmartFormat))
	if streamCfg.Language != "" {
		query.Set("language", streamCfg.Language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
