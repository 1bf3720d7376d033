package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// Socket message types.
const (
	TypeAIResponse = "ai_response"
	TypeError      = "error"
)

// SocketRequest is one inbound chat frame.
type SocketRequest struct {
	Message string `json:"message"`
}

// SocketResponse is an answer frame.
type SocketResponse struct {
	Type string `json:"type"`
	models.ResponseEnvelope
}

// SocketError reports a frame that could not be answered.
type SocketError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type socket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *socket) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

// Hub tracks open chat sockets per session. Every socket of a session
// receives each answer for that session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*socket]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*socket]struct{})}
}

func (h *Hub) add(sessionID string, s *socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*socket]struct{})
	}
	h.sessions[sessionID][s] = struct{}{}
}

func (h *Hub) remove(sessionID string, s *socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions[sessionID], s)
	if len(h.sessions[sessionID]) == 0 {
		delete(h.sessions, sessionID)
	}
}

// Send writes v to every socket of sessionID and returns how many accepted
// it. The registry stays read-locked for the whole send, so a socket is never
// written after remove returns. Each write is bounded by writeWait.
func (h *Hub) Send(sessionID string, v any) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for s := range h.sessions[sessionID] {
		if err := s.writeJSON(v); err == nil {
			sent++
		}
	}
	return sent
}

// Connections returns the number of open sockets.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.sessions {
		n += len(set)
	}
	return n
}

// Sessions returns the number of sessions with an open socket.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// ChatSocket runs a chat session over a WebSocket. Each {"message": ...}
// frame is answered in order with an ai_response frame sent to every socket
// on the session; malformed frames get an error frame.
func (h *Handler) ChatSocket(c echo.Context) error {
	sessionID := c.Param("session_id")
	user := userID(c)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	if _, err := h.sessions.Ensure(ctx, sessionID, user); err != nil {
		return httpError(err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already replied.
		h.logger.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return nil
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	s := &socket{conn: conn}
	h.hub.add(sessionID, s)
	defer h.hub.remove(sessionID, s)
	h.logger.Info("websocket connected", "session_id", sessionID, "user_id", user)

	inbound := make(chan string)
	go h.readFrames(ctx, s, sessionID, inbound)

	err = h.orch.Serve(ctx, sessionID, user, inbound, func(env models.ResponseEnvelope) error {
		h.hub.Send(sessionID, SocketResponse{Type: TypeAIResponse, ResponseEnvelope: env})
		return nil
	})
	if err != nil && ctx.Err() == nil {
		h.logger.Warn("websocket session ended", "session_id", sessionID, "error", err)
	}
	h.logger.Info("websocket disconnected", "session_id", sessionID)
	return nil
}

// readFrames feeds chat messages to inbound until the peer goes away.
func (h *Handler) readFrames(ctx context.Context, s *socket, sessionID string, inbound chan<- string) {
	defer close(inbound)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "session_id", sessionID, "error", err)
			}
			return
		}

		var req SocketRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Message == "" {
			msg := "Error: message is required"
			if err != nil {
				msg = "Error: " + err.Error()
			}
			if werr := s.writeJSON(SocketError{Type: TypeError, Message: msg}); werr != nil {
				return
			}
			continue
		}

		select {
		case inbound <- req.Message:
		case <-ctx.Done():
			return
		}
	}
}
