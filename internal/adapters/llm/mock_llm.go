package llm

import (
	"context"
	"fmt"

	"github.com/dishalabs/disha-agent/internal/domain"
)

// MockClient is a deterministic inference backend for local development.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GenerateReply(ctx context.Context, userText string, convCtx domain.ConversationContext) (string, error) {
	return fmt.Sprintf("You asked: %q. Let's work through it step by step.", userText), nil
}
