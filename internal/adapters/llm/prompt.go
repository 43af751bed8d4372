package llm

import (
	"strings"

	"github.com/dishalabs/disha-agent/internal/domain"
)

const systemPrompt = `
You are "Disha", an AI study mentor for students preparing for competitive
examinations and academic courses.

Your role:
- You answer questions about exams (GATE, CAT, UGC-NET, UPSC, GRE, GMAT),
  their syllabi, preparation strategy, and study materials.
- You explain academic concepts in engineering, computer science, management,
  humanities and research methodology.
- You stay within education and exam preparation. For anything else, politely
  redirect the student back to study topics.

General style guidelines:
- Be concise: a few short paragraphs or bullet points at most.
- Be encouraging but concrete; prefer a specific next step over generic advice.
- When you mention a video, document or article, include its full link so the
  student can open it directly.
- Never invent exam dates, cut-offs or official rules; say when something
  should be verified on the official site.
`

// BuildMessages flattens the system prompt, rolling history and the new user
// turn into role/content pairs for a chat-completion request.
func BuildMessages(userText string, convCtx domain.ConversationContext) []ChatMessage {
	msgs := []ChatMessage{{Role: "system", Content: strings.TrimSpace(systemPrompt)}}

	for _, m := range convCtx.History {
		role := "user"
		if m.Author == domain.RoleAssistant {
			role = "assistant"
		}
		msgs = append(msgs, ChatMessage{Role: role, Content: m.Text})
	}

	return append(msgs, ChatMessage{Role: "user", Content: userText})
}

// ChatMessage is one turn in a chat-completion request body.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
