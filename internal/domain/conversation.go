package domain

// Resource is a structured pointer to external learning material. It is a
// value type: two resources with the same fields are the same resource.
type Resource struct {
	Kind        ResourceKind `json:"kind"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description,omitempty"`
}

// Message is one entry in a session timeline. Messages are immutable once
// appended; ids are strictly increasing within a session.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Author    Role
	Text      string
	CreatedAt Timestamp

	// Resources attached at creation, fixed for the message's lifetime.
	Resources []Resource
}

// Settings holds the per-session interaction knobs: whether replies are
// spoken aloud and at what rate.
type Settings struct {
	Muted      bool
	SpeechRate float64
}

// Session is one user's conversation with the assistant. History lives only
// for the lifetime of the session.
type Session struct {
	ID        SessionID
	CreatedAt Timestamp
	UpdatedAt Timestamp

	Title    string
	Settings Settings
}

// ConversationContext gives an inference backend the rolling context of the
// conversation: the last N messages plus session identity.
type ConversationContext struct {
	SessionID SessionID
	History   []*Message
}
