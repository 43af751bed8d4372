package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dishalabs/disha-agent/internal/domain"
)

// GeminiClient is an alternative inference backend on the Gemini API. It is
// selected by configuration; the chat-completions client remains the default.
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	maxTokens   int32
	temperature float32
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, maxTokens int, temperature float64) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrNoCredential
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		modelName:   modelName,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
	}, nil
}

// GenerateReply implements domain.InferenceClient using the Gemini API.
func (g *GeminiClient) GenerateReply(ctx context.Context, userText string, convCtx domain.ConversationContext) (string, error) {
	var contents []*genai.Content
	for _, m := range convCtx.History {
		role := genai.Role(genai.RoleUser)
		if m.Author == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(userText, genai.RoleUser))

	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(strings.TrimSpace(systemPrompt), genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   g.maxTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", &domain.ServiceError{Err: fmt.Errorf("gemini generate content: %w", err)}
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", &domain.ProtocolError{Reason: "gemini returned empty text"}
	}

	return text, nil
}
