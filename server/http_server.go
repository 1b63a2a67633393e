package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/room4-2/TableTalk/config"
	"github.com/room4-2/TableTalk/dialogue"
	"github.com/room4-2/TableTalk/knowledge"
	"github.com/room4-2/TableTalk/session"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const maxChatBody = 64 * 1024

// ChatRequest is the transport-boundary input: a session id and one
// message. A missing session id starts a new session.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse carries the rendered reply plus the session stage for
// observability.
type ChatResponse struct {
	SessionID   string            `json:"sessionId"`
	Response    string            `json:"response"`
	Stage       string            `json:"stage"`
	Kind        string            `json:"kind"`
	Reservation ReservationStatus `json:"reservation"`
}

// ReservationStatus summarizes the booking slots for API clients.
type ReservationStatus struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize string `json:"partySize"`
	Complete  bool   `json:"complete"`
}

// Server is the HTTP chat transport.
type Server struct {
	httpServer     *http.Server
	sessionManager *session.Manager
	kb             *knowledge.Base
	config         *config.Config
}

func NewServerHTTP(cfg *config.Config, sessionManager *session.Manager, kb *knowledge.Base) *Server {
	s := &Server{
		sessionManager: sessionManager,
		kb:             kb,
		config:         cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /session/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /session/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /knowledge", s.handleKnowledge)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start begins listening for connections
func (s *Server) Start() error {
	log.Printf("🚀 HTTP server starting on port %d", s.config.Port)
	log.Printf("📡 Chat endpoint: http://localhost:%d/chat", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "TableTalk reservation assistant",
		"endpoints": map[string]string{
			"POST /chat":           "send one message, get the assistant reply",
			"GET /session/{id}":    "inspect a session",
			"DELETE /session/{id}": "clear a session",
			"GET /knowledge":       "list the factual knowledge base",
			"GET /health":          "liveness and session count",
		},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxChatBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var req ChatRequest
	if err := sonic.Unmarshal(body, &req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "expected JSON body with a non-empty 'message'")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	result, err := s.sessionManager.Turn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		// Never a stack trace: upstream trouble surfaces as a generic
		// try-again failure and the session state is untouched.
		switch {
		case errors.Is(err, session.ErrTooManySessions):
			writeError(w, http.StatusServiceUnavailable, "too many active sessions, please try again later")
		default:
			log.Printf("❌ [%s] Turn failed: %v", shortID(req.SessionID), err)
			writeError(w, http.StatusBadGateway, "something went wrong, please try again")
		}
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID:   result.SessionID,
		Response:    result.Text,
		Stage:       string(result.Decision.Stage),
		Kind:        string(result.Decision.Kind),
		Reservation: reservationStatus(result.Decision.Stage, result.Decision.Slots),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.sessionManager.Snapshot(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":   id,
		"stage":       rec.Stage,
		"reservation": reservationStatus(rec.Stage, rec.Slots),
		"slots":       rec.Slots,
		"violations":  rec.Violations,
		"turns":       len(rec.History),
		"interrupted": len(rec.PendingTopics) > 0,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessionManager.Delete(r.Context(), id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "session " + id + " cleared"})
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	entries := s.kb.Entries()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_entries":  len(entries),
		"knowledge_base": entries,
		"note":           "general world knowledge, answered as digressions from the booking flow",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, s.sessionManager.Count())
}

func reservationStatus(stage dialogue.Stage, slots dialogue.Slots) ReservationStatus {
	return ReservationStatus{
		Date:      slots.Date.String(),
		Time:      slots.Time.String(),
		PartySize: slots.PartySize.String(),
		Complete:  stage == dialogue.StageCompleted,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
