package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dishalabs/disha-agent/internal/domain"
)

type staticCreds struct {
	key string
}

func (s staticCreds) Credential() (string, error) { return s.key, nil }
func (s staticCreds) SetCredential(string) error  { return nil }
func (s staticCreds) ClearCredential() error      { return nil }

func newTestClient(endpoint string) *ChatCompletionsClient {
	return NewChatCompletionsClient(ChatConfig{
		Endpoint:  endpoint,
		Model:     "test-model",
		Timeout:   5 * time.Second,
		MaxTokens: 256,
	}, staticCreds{key: "sk-test"})
}

func conversationWith(history ...domain.Message) domain.ConversationContext {
	msgs := make([]*domain.Message, len(history))
	for i := range history {
		msgs[i] = &history[i]
	}
	return domain.ConversationContext{SessionID: "s1", History: msgs}
}

func TestGenerateReplySuccess(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  GATE CSE covers algorithms and operating systems.  "}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reply, err := client.GenerateReply(t.Context(), "what does gate cse cover", conversationWith(
		domain.Message{Author: domain.RoleUser, Text: "hi"},
		domain.Message{Author: domain.RoleAssistant, Text: "hello"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "GATE CSE covers algorithms and operating systems." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody.Model != "test-model" {
		t.Fatalf("unexpected model %q", gotBody.Model)
	}
	// System persona, two history turns, then the current user turn.
	if len(gotBody.Messages) != 4 {
		t.Fatalf("expected 4 wire messages, got %d", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" {
		t.Fatalf("first message must be the system prompt, got role %q", gotBody.Messages[0].Role)
	}
	if last := gotBody.Messages[len(gotBody.Messages)-1]; last.Role != "user" || last.Content != "what does gate cse cover" {
		t.Fatalf("unexpected trailing message %+v", last)
	}
}

func TestGenerateReplyNoCredentialSkipsNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := NewChatCompletionsClient(ChatConfig{Endpoint: server.URL, Model: "m"}, staticCreds{key: "   "})
	_, err := client.GenerateReply(t.Context(), "hello", conversationWith())
	if !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("request must not reach the network without a credential")
	}
}

func TestGenerateReplyServerErrorIsServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GenerateReply(t.Context(), "hello", conversationWith())

	var serr *domain.ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", serr.Status)
	}
}

func TestGenerateReplyTransportFailureIsServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(server.URL)
	_, err := client.GenerateReply(t.Context(), "hello", conversationWith())

	var serr *domain.ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serr.Status != 0 {
		t.Fatalf("transport failure must carry no HTTP status, got %d", serr.Status)
	}
}

func TestGenerateReplyErrorPayloadIsProtocolError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model is deprecated", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GenerateReply(t.Context(), "hello", conversationWith())

	var perr *domain.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if perr.Reason != "model is deprecated" {
		t.Fatalf("unexpected reason %q", perr.Reason)
	}
}

func TestGenerateReplyNoCandidatesIsProtocolError(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty choices":   `{"choices":[]}`,
		"blank candidate": `{"choices":[{"message":{"content":"   "}}]}`,
		"not json":        `<html>gateway timeout</html>`,
	}

	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.GenerateReply(t.Context(), "hello", conversationWith())

			var perr *domain.ProtocolError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProtocolError, got %v", err)
			}
		})
	}
}
