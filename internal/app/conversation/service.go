// Package conversation orchestrates a tutoring turn: remote inference when a
// credential is configured, the local composer otherwise, with the answer
// appended to history and optionally spoken aloud.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dishalabs/disha-agent/internal/app/classify"
	"github.com/dishalabs/disha-agent/internal/app/compose"
	"github.com/dishalabs/disha-agent/internal/app/extract"
	"github.com/dishalabs/disha-agent/internal/domain"
	"github.com/dishalabs/disha-agent/internal/observability"
)

const welcomeText = "Hi, I'm Disha, your study mentor. Ask me about any exam " +
	"(GATE, CAT, UGC-NET, UPSC, GRE, GMAT), its syllabus, preparation strategy or study material."

// fallbackNotice is shown once when a remote answer failed and the built-in
// composer answered instead. Absence of a credential is an expected mode and
// produces no notice.
const fallbackNotice = "The online assistant is unreachable right now, so I answered from my built-in study guide."

// Speaker is the voice output surface the controller drives. Implementations
// must be safe to call from the turn goroutine.
type Speaker interface {
	Speak(text string)
	SetRate(rate float64)
	SetMuted(muted bool)
}

// Service is the conversation controller.
type Service struct {
	gateway  domain.InferenceClient
	composer *compose.Composer
	sessions domain.SessionStore
	messages domain.MessageStore
	speaker  Speaker
	now      func() time.Time

	historyWindow int
	thinkDelay    time.Duration

	mu       sync.Mutex
	seq      map[domain.SessionID]domain.MessageID
	inFlight map[domain.SessionID]bool
}

// Options tune turn handling.
type Options struct {
	// HistoryWindow bounds how many messages are replayed to the gateway and
	// how many user turns the classifier sees.
	HistoryWindow int
	// ThinkDelay simulates composer latency on the local path. Zero in tests.
	ThinkDelay time.Duration
}

func NewService(
	gateway domain.InferenceClient,
	composer *compose.Composer,
	sessions domain.SessionStore,
	messages domain.MessageStore,
	speaker Speaker,
	opts Options,
) *Service {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 20
	}
	return &Service{
		gateway:       gateway,
		composer:      composer,
		sessions:      sessions,
		messages:      messages,
		speaker:       speaker,
		now:           time.Now,
		historyWindow: opts.HistoryWindow,
		thinkDelay:    opts.ThinkDelay,
		seq:           make(map[domain.SessionID]domain.MessageID),
		inFlight:      make(map[domain.SessionID]bool),
	}
}

type StartSessionInput struct {
	Title    string
	Settings domain.Settings
}

type StartSessionOutput struct {
	Session *domain.Session
	Welcome *domain.Message
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	if in.Settings.SpeechRate <= 0 {
		in.Settings.SpeechRate = 1.0
	}

	session := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     in.Title,
		Settings:  in.Settings,
	}

	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)
	log.Info("starting new session")

	if err := s.sessions.CreateSession(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	welcome := &domain.Message{
		ID:        s.nextMessageID(session.ID),
		SessionID: session.ID,
		Author:    domain.RoleAssistant,
		Text:      welcomeText,
		CreatedAt: now,
	}

	if err := s.messages.AppendMessage(welcome); err != nil {
		log.Error("failed to append welcome message", "error", err)
		return nil, err
	}

	log.Info("session started")

	return &StartSessionOutput{Session: session, Welcome: welcome}, nil
}

type SubmitInput struct {
	SessionID domain.SessionID
	Text      string
}

type SubmitOutput struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message

	// Notice is a non-blocking user-visible warning, set at most once per
	// turn (remote failure fallback). Empty on the happy path.
	Notice string
}

// Submit handles one turn. Whitespace-only input is rejected with
// ErrEmptyInput and leaves no trace; a second Submit for the same session
// while one is in flight fails with ErrTurnInFlight so answers never
// interleave. A turn is answered by exactly one of the remote and local
// paths, never a blend.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrEmptyInput
	}

	session, err := s.sessions.GetSession(in.SessionID)
	if err != nil {
		return nil, err
	}

	if !s.acquireTurn(session.ID) {
		return nil, domain.ErrTurnInFlight
	}
	defer s.releaseTurn(session.ID)

	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)
	log.Info("turn accepted", "text", text)

	history, err := s.messages.MessagesBySession(session.ID, s.historyWindow)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	userMsg := &domain.Message{
		ID:        s.nextMessageID(session.ID),
		SessionID: session.ID,
		Author:    domain.RoleUser,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.messages.AppendMessage(userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	answerText, resources, notice, err := s.answer(ctx, session.ID, text, history, log)
	if err != nil {
		return nil, err
	}

	assistantMsg := &domain.Message{
		ID:        s.nextMessageID(session.ID),
		SessionID: session.ID,
		Author:    domain.RoleAssistant,
		Text:      answerText,
		CreatedAt: s.now(),
		Resources: resources,
	}
	if err := s.messages.AppendMessage(assistantMsg); err != nil {
		log.Error("failed to append assistant message", "error", err)
		return nil, err
	}

	session.UpdatedAt = s.now()
	if err := s.sessions.UpdateSession(session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	if !session.Settings.Muted && s.speaker != nil {
		s.speaker.Speak(answerText)
	}

	log.Info("turn completed", "resources", len(resources), "fallback", notice != "")

	return &SubmitOutput{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Notice:           notice,
	}, nil
}

// answer resolves one turn through exactly one path: the remote gateway when
// it succeeds, the classifier+composer otherwise.
func (s *Service) answer(ctx context.Context, sessionID domain.SessionID, text string, history []*domain.Message, log *slog.Logger) (string, []domain.Resource, string, error) {
	if s.gateway != nil {
		convCtx := domain.ConversationContext{
			SessionID: sessionID,
			History:   history,
		}
		reply, err := s.gateway.GenerateReply(ctx, text, convCtx)
		if err == nil {
			return reply, extract.Extract(reply), "", nil
		}

		if errors.Is(err, domain.ErrNoCredential) {
			log.Info("no credential configured, using local composer")
		} else {
			// Abandoned turns (caller went away) are not an answerable state.
			if ctx.Err() != nil {
				return "", nil, "", ctx.Err()
			}
			log.Warn("gateway failed, falling back to local composer", "error", err)
			return s.composeLocal(ctx, text, history, fallbackNotice)
		}
	}

	return s.composeLocal(ctx, text, history, "")
}

func (s *Service) composeLocal(ctx context.Context, text string, history []*domain.Message, notice string) (string, []domain.Resource, string, error) {
	if s.thinkDelay > 0 {
		timer := time.NewTimer(s.thinkDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", nil, "", ctx.Err()
		}
	}

	result := classify.Classify(text, userTurns(history))
	reply := s.composer.Compose(result)
	return reply.Text, reply.Resources, notice, nil
}

// Timeline returns the session and its messages in append order.
func (s *Service) Timeline(ctx context.Context, sessionID domain.SessionID, limit int) (*domain.Session, []*domain.Message, error) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := s.messages.MessagesBySession(sessionID, limit)
	if err != nil {
		return nil, nil, err
	}

	return session, msgs, nil
}

// UpdateSettings changes the session's mute flag and speech rate and applies
// them to the live speaker. Muting cancels any utterance in progress.
func (s *Service) UpdateSettings(ctx context.Context, sessionID domain.SessionID, settings domain.Settings) (*domain.Session, error) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if settings.SpeechRate <= 0 {
		settings.SpeechRate = session.Settings.SpeechRate
	}

	session.Settings = settings
	session.UpdatedAt = s.now()
	if err := s.sessions.UpdateSession(session); err != nil {
		return nil, err
	}

	if s.speaker != nil {
		s.speaker.SetRate(settings.SpeechRate)
		s.speaker.SetMuted(settings.Muted)
	}

	return session, nil
}

// ResetSession clears the session's history and starts the id sequence over.
func (s *Service) ResetSession(ctx context.Context, sessionID domain.SessionID) error {
	if _, err := s.sessions.GetSession(sessionID); err != nil {
		return err
	}

	if err := s.messages.ClearSession(sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	s.seq[sessionID] = 0
	s.mu.Unlock()
	return nil
}

func (s *Service) acquireTurn(id domain.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *Service) releaseTurn(id domain.SessionID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func (s *Service) nextMessageID(id domain.SessionID) domain.MessageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[id]++
	return s.seq[id]
}

// userTurns extracts the user's prior inputs for the classifier's follow-up
// heuristic.
func userTurns(history []*domain.Message) []string {
	var out []string
	for _, m := range history {
		if m.Author == domain.RoleUser {
			out = append(out, m.Text)
		}
	}
	return out
}
