package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/room4-2/TableTalk/config"
	"github.com/room4-2/TableTalk/dialogue"
	"github.com/room4-2/TableTalk/knowledge"
	"github.com/room4-2/TableTalk/respond"
	"github.com/room4-2/TableTalk/session"

	"github.com/bytedance/sonic"
)

func newTestServer(t *testing.T, maxSessions int) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:           0,
		RedisURL:       "127.0.0.1:1",
		MaxSessions:    maxSessions,
		SessionTimeout: time.Minute,
		MaxViolations:  3,
	}
	kb := knowledge.NewBase()
	engine := dialogue.NewEngine(dialogue.NewLexiconFilter(), dialogue.NewRuleExtractor(), kb, cfg.MaxViolations)
	manager, err := session.NewManager(cfg, engine, respond.NewTemplateRenderer())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return NewServerHTTP(cfg, manager, kb)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func chat(t *testing.T, s *Server, sessionID, message string) ChatResponse {
	t.Helper()
	body, _ := sonic.Marshal(ChatRequest{SessionID: sessionID, Message: message})
	w := doRequest(t, s, http.MethodPost, "/chat", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("chat(%q) status = %d, body = %s", message, w.Code, w.Body.String())
	}
	var resp ChatResponse
	if err := sonic.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestChatBookingFlow(t *testing.T) {
	s := newTestServer(t, 8)

	resp := chat(t, s, "", "this weekend")
	if resp.SessionID == "" {
		t.Fatal("server did not assign a session id")
	}
	if resp.Stage != string(dialogue.StageCollectingDate) || resp.Kind != string(dialogue.DecisionClarify) {
		t.Fatalf("turn 1: stage=%s kind=%s", resp.Stage, resp.Kind)
	}
	if !strings.Contains(resp.Response, "Saturday") {
		t.Fatalf("clarify prompt missing candidates: %q", resp.Response)
	}
	id := resp.SessionID

	resp = chat(t, s, id, "Sunday")
	if resp.Stage != string(dialogue.StageCollectingTime) || resp.Reservation.Date != "Sunday" {
		t.Fatalf("turn 2: stage=%s reservation=%+v", resp.Stage, resp.Reservation)
	}

	chat(t, s, id, "4pm")
	resp = chat(t, s, id, "20")
	if resp.Stage != string(dialogue.StageAwaitingConfirmation) {
		t.Fatalf("turn 4: stage=%s", resp.Stage)
	}
	if !strings.Contains(resp.Response, "Persons: 20") {
		t.Fatalf("confirmation summary missing details: %q", resp.Response)
	}

	resp = chat(t, s, id, "yes please confirm")
	if resp.Stage != string(dialogue.StageCompleted) || !resp.Reservation.Complete {
		t.Fatalf("turn 5: stage=%s reservation=%+v", resp.Stage, resp.Reservation)
	}
}

func TestChatBadRequests(t *testing.T) {
	s := newTestServer(t, 8)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "hello"},
		{"missing message", `{"sessionId":"s1"}`},
		{"empty message", `{"message":""}`},
	}
	for _, tt := range tests {
		if w := doRequest(t, s, http.MethodPost, "/chat", tt.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, w.Code)
		}
	}

	if w := doRequest(t, s, http.MethodGet, "/chat", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /chat status = %d, want 405", w.Code)
	}
}

func TestChatSessionCap(t *testing.T) {
	s := newTestServer(t, 1)

	chat(t, s, "s1", "hello")

	body, _ := sonic.Marshal(ChatRequest{SessionID: "s2", Message: "hello"})
	w := doRequest(t, s, http.MethodPost, "/chat", string(body))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestGetSession(t *testing.T) {
	s := newTestServer(t, 8)

	if w := doRequest(t, s, http.MethodGet, "/session/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown session status = %d, want 404", w.Code)
	}

	chat(t, s, "s1", "Sunday")
	w := doRequest(t, s, http.MethodGet, "/session/s1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got struct {
		SessionID   string            `json:"sessionId"`
		Stage       string            `json:"stage"`
		Reservation ReservationStatus `json:"reservation"`
		Turns       int               `json:"turns"`
	}
	if err := sonic.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stage != string(dialogue.StageCollectingTime) || got.Reservation.Date != "Sunday" || got.Turns != 1 {
		t.Fatalf("session view = %+v", got)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, 8)
	chat(t, s, "s1", "hello")

	if w := doRequest(t, s, http.MethodDelete, "/session/s1", ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := doRequest(t, s, http.MethodDelete, "/session/s1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
	if w := doRequest(t, s, http.MethodGet, "/session/s1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("deleted session still served: %d", w.Code)
	}
}

func TestKnowledgeEndpoint(t *testing.T) {
	s := newTestServer(t, 8)

	w := doRequest(t, s, http.MethodGet, "/knowledge", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got struct {
		TotalEntries int `json:"total_entries"`
	}
	if err := sonic.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalEntries != 20 {
		t.Fatalf("total_entries = %d, want 20", got.TotalEntries)
	}
}

func TestRootServiceInfo(t *testing.T) {
	s := newTestServer(t, 8)
	w := doRequest(t, s, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/chat") {
		t.Fatalf("body = %s", w.Body.String())
	}

	// The root pattern must not swallow unknown paths.
	if w := doRequest(t, s, http.MethodGet, "/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d, want 404", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 8)
	w := doRequest(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}
