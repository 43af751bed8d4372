package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dishalabs/disha-agent/internal/domain"
)

// ChatCompletionsClient implements domain.InferenceClient against a
// chat-completion style HTTP endpoint. The credential is read per call so a
// key supplied or removed mid-session takes effect on the next turn.
type ChatCompletionsClient struct {
	endpoint    string
	model       string
	creds       domain.CredentialStore
	timeout     time.Duration
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

type ChatConfig struct {
	Endpoint    string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

func NewChatCompletionsClient(cfg ChatConfig, creds domain.CredentialStore) *ChatCompletionsClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &ChatCompletionsClient{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		creds:       creds,
		timeout:     cfg.Timeout,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateReply sends one turn to the remote endpoint. It returns
// domain.ErrNoCredential before any I/O when no key is configured, a
// *domain.ServiceError for transport failures, timeouts and non-2xx
// statuses, and a *domain.ProtocolError when the payload signals an
// application-level failure.
func (c *ChatCompletionsClient) GenerateReply(ctx context.Context, userText string, convCtx domain.ConversationContext) (string, error) {
	key, err := c.creds.Credential()
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", domain.ErrNoCredential
	}

	payload := chatRequest{
		Model:       c.model,
		Messages:    BuildMessages(userText, convCtx),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode chat payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, buf)
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport failures both trigger the local fallback.
		return "", &domain.ServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.ServiceError{Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &domain.ProtocolError{Reason: "undecodable response payload"}
	}

	if parsed.Error != nil {
		return "", &domain.ProtocolError{Reason: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &domain.ProtocolError{Reason: "response contained no candidates"}
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", &domain.ProtocolError{Reason: "first candidate was empty"}
	}

	return text, nil
}
