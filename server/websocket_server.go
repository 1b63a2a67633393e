package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/room4-2/TableTalk/config"
	"github.com/room4-2/TableTalk/messages"
	"github.com/room4-2/TableTalk/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebsocketServer serves the chat dialogue over a websocket: one
// connection drives one session, one text message per turn.
type WebsocketServer struct {
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	config         *config.Config
}

func NewServerWebsocket(cfg *config.Config, sessionManager *session.Manager) *WebsocketServer {
	s := &WebsocketServer{
		sessionManager: sessionManager,
		config:         cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Check allowed origins
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.WebsocketPort),
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Start begins listening for connections
func (s *WebsocketServer) Start() error {
	log.Printf("🚀 WebSocket server starting on port %d", s.config.WebsocketPort)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%d/ws", s.config.WebsocketPort)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *WebsocketServer) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down WebSocket server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *WebsocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	log.Printf("✅ [%s] New websocket session", shortID(sessionID))

	_ = conn.WriteJSON(messages.NewStatusMessage(sessionID, "connected",
		"Hello! I can help you book a table. What date would you like to dine with us?"))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("🔌 [%s] WebSocket read error: %v", shortID(sessionID), err)
			}
			break
		}

		var msg messages.ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = conn.WriteJSON(messages.NewErrorMessage(sessionID, messages.ErrCodeInvalidMessage, "Invalid message format"))
			continue
		}

		switch msg.Type {
		case "text":
			var payload messages.TextPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Text == "" {
				_ = conn.WriteJSON(messages.NewErrorMessage(sessionID, messages.ErrCodeInvalidMessage, "Invalid text payload"))
				continue
			}
			s.handleTurn(r.Context(), conn, sessionID, payload.Text)

		case "control":
			var payload messages.ControlPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				_ = conn.WriteJSON(messages.NewErrorMessage(sessionID, messages.ErrCodeInvalidMessage, "Invalid control payload"))
				continue
			}
			s.handleControl(r.Context(), conn, sessionID, payload.Action)

		default:
			_ = conn.WriteJSON(messages.NewErrorMessage(sessionID, messages.ErrCodeInvalidMessage, "Unknown message type: "+msg.Type))
		}
	}

	log.Printf("🔌 [%s] Session closed", shortID(sessionID))
}

func (s *WebsocketServer) handleTurn(ctx context.Context, conn *websocket.Conn, sessionID, text string) {
	result, err := s.sessionManager.Turn(ctx, sessionID, text)
	if err != nil {
		code := messages.ErrCodeUpstreamError
		if errors.Is(err, session.ErrTooManySessions) {
			code = messages.ErrCodeRateLimited
		}
		log.Printf("❌ [%s] Turn failed: %v", shortID(sessionID), err)
		_ = conn.WriteJSON(messages.NewErrorMessage(sessionID, code, "something went wrong, please try again"))
		return
	}

	_ = conn.WriteJSON(messages.NewTextMessage(sessionID, result.Text,
		string(result.Decision.Stage), string(result.Decision.Kind)))
	_ = conn.WriteJSON(messages.NewStatusMessage(sessionID, "turn_complete", ""))
}

func (s *WebsocketServer) handleControl(ctx context.Context, conn *websocket.Conn, sessionID, action string) {
	switch action {
	case "ping":
		_ = conn.WriteJSON(messages.NewStatusMessage(sessionID, "pong", ""))
	case "reset":
		s.sessionManager.Delete(ctx, sessionID)
		_ = conn.WriteJSON(messages.NewStatusMessage(sessionID, "reset", "Session cleared"))
	default:
		_ = conn.WriteJSON(messages.NewErrorMessage(sessionID, messages.ErrCodeInvalidMessage, "Unknown control action: "+action))
	}
}

func (s *WebsocketServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, s.sessionManager.Count())
}
