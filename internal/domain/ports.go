package domain

import "context"

// InferenceClient defines how the application talks to a remote
// text-generation backend.
type InferenceClient interface {
	GenerateReply(ctx context.Context, userText string, convCtx ConversationContext) (string, error)
}

// SessionStore defines session persistence for the lifetime of the process.
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	DeleteSession(id SessionID) error
}

// MessageStore defines message persistence for the lifetime of the process.
type MessageStore interface {
	AppendMessage(msg *Message) error
	MessagesBySession(sessionID SessionID, limit int) ([]*Message, error)
	ClearSession(sessionID SessionID) error
}

// CredentialStore holds the remote inference credential. An empty credential
// with a nil error means the remote path is simply not configured.
type CredentialStore interface {
	Credential() (string, error)
	SetCredential(value string) error
	ClearCredential() error
}

// RecognitionConfig describes engine-agnostic speech recognition settings.
type RecognitionConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	Language       string
	InterimResults bool
}

// RecognitionStream is a live speech recognition session.
type RecognitionStream interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan TranscriptEvent
	Close() error
}

// RecognitionEngine starts speech recognition streams. There is one physical
// microphone: the input session, not the engine, enforces single activation.
type RecognitionEngine interface {
	Start(ctx context.Context, cfg RecognitionConfig) (RecognitionStream, error)
}

// SynthesisEngine turns text into audible speech. Speak blocks until the
// utterance finishes or ctx is cancelled.
type SynthesisEngine interface {
	Speak(ctx context.Context, text string, rate float64) error
}
