package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Synthesizer implements domain.SynthesisEngine over the Deepgram speak
// endpoint. The synthesized audio is streamed into sink; callers plug in a
// player process or io.Discard.
type Synthesizer struct {
	cfg        Config
	sink       io.Writer
	httpClient *http.Client
}

func NewSynthesizer(cfg Config, sink io.Writer) *Synthesizer {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.SpeakModel == "" {
		cfg.SpeakModel = "aura-asteria-en"
	}
	if sink == nil {
		sink = io.Discard
	}
	return &Synthesizer{
		cfg:        cfg,
		sink:       sink,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Speak synthesizes text and blocks until the audio is fully received or
// ctx is cancelled. The rate multiplier maps onto the provider's speed knob.
func (s *Synthesizer) Speak(ctx context.Context, text string, rate float64) error {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return errors.New("deepgram api key is not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	speakURL, err := url.Parse(strings.TrimRight(s.cfg.APIBaseURL, "/") + "/speak")
	if err != nil {
		return fmt.Errorf("invalid deepgram api base url: %w", err)
	}
	query := speakURL.Query()
	query.Set("model", s.cfg.SpeakModel)
	if rate > 0 && rate != 1.0 {
		query.Set("speed", fmt.Sprintf("%.2f", rate))
	}
	speakURL.RawQuery = query.Encode()

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode speak payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speakURL.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create speak request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deepgram speak request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("deepgram speak error: status %d body %s", resp.StatusCode, string(body))
	}

	if _, err := io.Copy(s.sink, resp.Body); err != nil {
		return fmt.Errorf("stream synthesized audio: %w", err)
	}
	return nil
}
