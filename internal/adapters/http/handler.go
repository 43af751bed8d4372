package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dishalabs/disha-agent/internal/adapters/speech"
	"github.com/dishalabs/disha-agent/internal/app/conversation"
	"github.com/dishalabs/disha-agent/internal/domain"
	"github.com/dishalabs/disha-agent/internal/observability"
)

type Server struct {
	svc   *conversation.Service
	creds domain.CredentialStore
	voice *speech.InputSession

	voiceMu     sync.Mutex
	lastInterim string
	lastNotice  string
}

// NewServer builds the HTTP surface. voice may be nil when no recognition
// engine is configured; the voice routes then answer with a notice.
func NewServer(svc *conversation.Service, creds domain.CredentialStore, voice *speech.InputSession) http.Handler {
	s := &Server{svc: svc, creds: creds, voice: voice}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionWithID)
	mux.HandleFunc("/credential", s.handleCredential)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	Title      string   `json:"title,omitempty"`
	Muted      bool     `json:"muted,omitempty"`
	SpeechRate *float64 `json:"speech_rate,omitempty"`
}

type sessionResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Muted      bool      `json:"muted"`
	SpeechRate float64   `json:"speech_rate"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type resourceResponse struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type messageResponse struct {
	ID        uint64             `json:"id"`
	SessionID string             `json:"session_id"`
	Author    string             `json:"author"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
	Resources []resourceResponse `json:"resources,omitempty"`
}

type createSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Welcome *messageResponse `json:"welcome_message,omitempty"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
	Notice           string          `json:"notice,omitempty"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type settingsRequest struct {
	Muted      *bool    `json:"muted,omitempty"`
	SpeechRate *float64 `json:"speech_rate,omitempty"`
}

type credentialRequest struct {
	Credential string `json:"credential"`
}

type voiceStatusResponse struct {
	State   string `json:"state"`
	Interim string `json:"interim,omitempty"`
	Notice  string `json:"notice,omitempty"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}[/messages|/settings|/reset|/voice|/voice/start|/voice/stop]
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := domain.SessionID(parts[0])

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetSession(w, r, id)

	case len(parts) == 2 && parts[1] == "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSendMessage(w, r, id)

	case len(parts) == 2 && parts[1] == "settings":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		s.handleUpdateSettings(w, r, id)

	case len(parts) == 2 && parts[1] == "reset":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleResetSession(w, r, id)

	case len(parts) == 2 && parts[1] == "voice":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleVoiceStatus(w, r)

	case len(parts) == 3 && parts[1] == "voice" && parts[2] == "start":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleVoiceStart(w, r, id)

	case len(parts) == 3 && parts[1] == "voice" && parts[2] == "stop":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleVoiceStop(w, r)

	default:
		http.NotFound(w, r)
	}
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	settings := domain.Settings{Muted: req.Muted, SpeechRate: 1.0}
	if req.SpeechRate != nil {
		settings.SpeechRate = *req.SpeechRate
	}

	out, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{
		Title:    req.Title,
		Settings: settings,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	resp := createSessionResponse{Session: toSessionResponse(out.Session)}
	if out.Welcome != nil {
		m := toMessageResponse(out.Welcome)
		resp.Welcome = &m
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, msgs, err := s.svc.Timeline(r.Context(), id, 0)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.Submit(r.Context(), conversation.SubmitInput{
		SessionID: id,
		Text:      req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyInput):
			badRequest(w, "text is required")
		case errors.Is(err, domain.ErrSessionNotFound):
			http.NotFound(w, r)
		case errors.Is(err, domain.ErrTurnInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a previous message is still being answered"})
		default:
			internalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:      toMessageResponse(out.UserMessage),
		AssistantMessage: toMessageResponse(out.AssistantMessage),
		Notice:           out.Notice,
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	session, _, err := s.svc.Timeline(r.Context(), id, 1)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	settings := session.Settings
	if req.Muted != nil {
		settings.Muted = *req.Muted
	}
	if req.SpeechRate != nil {
		settings.SpeechRate = *req.SpeechRate
	}

	updated, err := s.svc.UpdateSettings(r.Context(), id, settings)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(updated))
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.svc.ResetSession(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// /credential
func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		var req credentialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Credential) == "" {
			badRequest(w, "credential is required")
			return
		}
		if err := s.creds.SetCredential(req.Credential); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := s.creds.ClearCredential(); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// ─────────────────────────────────────────────
// Voice handlers
// ─────────────────────────────────────────────

func (s *Server) handleVoiceStart(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if s.voice == nil {
		writeJSON(w, http.StatusOK, voiceStatusResponse{
			State:  string(domain.RecognitionIdle),
			Notice: "Voice input is not available here. You can keep typing instead.",
		})
		return
	}

	s.voiceMu.Lock()
	s.lastInterim = ""
	s.lastNotice = ""
	s.voiceMu.Unlock()

	// The final transcript outlives the start request: submit it with a
	// fresh context so an answered voice turn lands in the timeline even
	// after this handler returns.
	err := s.voice.Start(context.Background(), speech.Handlers{
		Interim: func(text string) {
			s.voiceMu.Lock()
			s.lastInterim = text
			s.voiceMu.Unlock()
		},
		Final: func(text string) {
			if _, err := s.svc.Submit(context.Background(), conversation.SubmitInput{
				SessionID: id,
				Text:      text,
			}); err != nil {
				observability.Logger().Warn("voice turn failed", "error", err)
			}
		},
		Notice: func(text string) {
			s.voiceMu.Lock()
			s.lastNotice = text
			s.voiceMu.Unlock()
		},
	})
	if err != nil {
		// Already surfaced through the notice handler.
		s.voiceStatus(w)
		return
	}

	s.voiceStatus(w)
}

func (s *Server) handleVoiceStop(w http.ResponseWriter, r *http.Request) {
	if s.voice != nil {
		s.voice.Stop()
	}
	s.voiceStatus(w)
}

func (s *Server) handleVoiceStatus(w http.ResponseWriter, r *http.Request) {
	s.voiceStatus(w)
}

func (s *Server) voiceStatus(w http.ResponseWriter) {
	state := domain.RecognitionIdle
	if s.voice != nil {
		state = s.voice.State()
	}

	s.voiceMu.Lock()
	resp := voiceStatusResponse{
		State:   string(state),
		Interim: s.lastInterim,
		Notice:  s.lastNotice,
	}
	s.voiceMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// ─────────────────────────────────────────────
// Response helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:         string(s.ID),
		Title:      s.Title,
		Muted:      s.Settings.Muted,
		SpeechRate: s.Settings.SpeechRate,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	resp := messageResponse{
		ID:        uint64(m.ID),
		SessionID: string(m.SessionID),
		Author:    string(m.Author),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
	for _, res := range m.Resources {
		resp.Resources = append(resp.Resources, resourceResponse{
			Kind:        string(res.Kind),
			Title:       res.Title,
			URL:         res.URL,
			Description: res.Description,
		})
	}
	return resp
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
