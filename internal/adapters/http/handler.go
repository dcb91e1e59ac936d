package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lingua-labs/lingua-agent/internal/app/session"
	"github.com/lingua-labs/lingua-agent/internal/domain"
)

type Server struct {
	sessions *session.Manager
}

func NewServer(sessions *session.Manager) http.Handler {
	s := &Server{sessions: sessions}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /languages → the practice catalog (GET)
	mux.HandleFunc("/languages", s.handleLanguages)

	// /conversations → create (POST) or list by owner (GET)
	mux.HandleFunc("/conversations", s.handleConversations)

	// /conversations/{id}          →  GET: snapshot (resumes if not live)
	// /conversations/{id}/messages → POST: submit a message
	mux.HandleFunc("/conversations/", s.handleConversationWithID)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createConversationRequest struct {
	UserID           string `json:"user_id"`
	LanguageCode     string `json:"language_code"`
	ProficiencyLevel string `json:"proficiency_level,omitempty"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type conversationResponse struct {
	ID               string    `json:"id"`
	Owner            string    `json:"owner"`
	Title            string    `json:"title"`
	LanguageCode     string    `json:"language_code"`
	ProficiencyLevel string    `json:"proficiency_level"`
	TurnCount        int       `json:"turn_count"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivity     time.Time `json:"last_activity"`
}

type turnResponse struct {
	ID          string    `json:"id"`
	Speaker     string    `json:"speaker"`
	Text        string    `json:"text"`
	Translation string    `json:"translation,omitempty"`
	Tip         string    `json:"tip,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type languageResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

type snapshotResponse struct {
	Conversation  conversationResponse `json:"conversation"`
	Language      languageResponse     `json:"language"`
	Turns         []turnResponse       `json:"turns"`
	AwaitingReply bool                 `json:"awaiting_reply"`
}

type listConversationsResponse struct {
	Conversations []conversationResponse `json:"conversations"`
}

type listLanguagesResponse struct {
	Languages []languageResponse `json:"languages"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	var out []languageResponse
	for _, l := range domain.Languages() {
		out = append(out, toLanguageResponse(l))
	}
	writeJSON(w, http.StatusOK, listLanguagesResponse{Languages: out})
}

// /conversations
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateConversation(w, r)
	case http.MethodGet:
		s.handleListConversations(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /conversations/{id} or /conversations/{id}/messages
func (s *Server) handleConversationWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetConversation(w, r, domain.ConversationID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "messages" {
		switch r.Method {
		case http.MethodPost:
			s.handleSendMessage(w, r, domain.ConversationID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}
	if req.LanguageCode == "" {
		badRequest(w, "language_code is required")
		return
	}

	level := domain.ParseProficiencyLevel(req.ProficiencyLevel)

	sess, err := s.sessions.Open(r.Context(), domain.UserID(req.UserID), req.LanguageCode, level)
	if err != nil {
		if errors.Is(err, session.ErrUnknownLanguage) {
			badRequest(w, "unknown language_code")
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSnapshotResponse(sess.Snapshot()))
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}

	convs, err := s.sessions.ListByOwner(r.Context(), domain.UserID(userID), 50)
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]conversationResponse, 0, len(convs))
	for _, c := range convs {
		out = append(out, toConversationResponse(*c))
	}
	writeJSON(w, http.StatusOK, listConversationsResponse{Conversations: out})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request, id domain.ConversationID) {
	sess, err := s.sessions.Resume(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(sess.Snapshot()))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.ConversationID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	sess, err := s.sessions.Resume(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	// A duplicate submit while an exchange is in flight is dropped by the
	// session; the caller still gets the current snapshot back.
	sess.Submit(r.Context(), req.Text)

	writeJSON(w, http.StatusOK, toSnapshotResponse(sess.Snapshot()))
}

// ─────────────────────────────────────────────
// Conversion Helpers
// ─────────────────────────────────────────────

func toConversationResponse(c domain.Conversation) conversationResponse {
	return conversationResponse{
		ID:               string(c.ID),
		Owner:            string(c.Owner),
		Title:            c.Title,
		LanguageCode:     c.LanguageCode,
		ProficiencyLevel: string(c.Difficulty),
		TurnCount:        c.TurnCount,
		CreatedAt:        c.CreatedAt,
		LastActivity:     c.LastActivity,
	}
}

func toLanguageResponse(l domain.Language) languageResponse {
	return languageResponse{
		Code: l.Code,
		Name: l.Name,
		Flag: l.Flag,
	}
}

func toSnapshotResponse(snap session.Snapshot) snapshotResponse {
	turns := make([]turnResponse, 0, len(snap.Turns))
	for _, t := range snap.Turns {
		turns = append(turns, turnResponse{
			ID:          string(t.ID),
			Speaker:     string(t.Speaker),
			Text:        t.Text,
			Translation: t.Translation,
			Tip:         t.Tip,
			CreatedAt:   t.CreatedAt,
		})
	}

	return snapshotResponse{
		Conversation:  toConversationResponse(snap.Conversation),
		Language:      toLanguageResponse(snap.Language),
		Turns:         turns,
		AwaitingReply: snap.AwaitingReply,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
