package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// ChatRequest is the body of POST /api/chat-bot/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Chat answers one message. Unknown or missing sessions are created for the
// caller.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	ctx := c.Request().Context()
	user := userID(c)
	sess, err := h.sessions.Ensure(ctx, req.SessionID, user)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, h.orch.HandleMessage(ctx, req.Message, sess.SessionID, user))
}

// SessionCreated is the response of POST /api/chat-bot/sessions.
type SessionCreated struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSession opens a session for the caller.
func (h *Handler) CreateSession(c echo.Context) error {
	sess, err := h.sessions.Create(c.Request().Context(), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, SessionCreated{
		SessionID: sess.SessionID,
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt,
	})
}

// GetSession returns session info.
func (h *Handler) GetSession(c echo.Context) error {
	sess, err := h.sessions.Get(c.Request().Context(), c.Param("session_id"), userID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

// DeleteSession removes a session and its history.
func (h *Handler) DeleteSession(c echo.Context) error {
	if err := h.sessions.Delete(c.Request().Context(), c.Param("session_id"), userID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}

// SessionHistory is the response of GET /api/chat-bot/sessions/:id/history.
type SessionHistory struct {
	SessionID     string                `json:"session_id"`
	Messages      []models.HistoryEntry `json:"messages"`
	TotalMessages int                   `json:"total_messages"`
}

// SessionHistory returns up to ?limit= turns, oldest first.
func (h *Handler) SessionHistory(c echo.Context) error {
	limit := defaultHistoryLimit
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
	}

	sessionID := c.Param("session_id")
	msgs, err := h.sessions.History(c.Request().Context(), sessionID, userID(c), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, SessionHistory{
		SessionID:     sessionID,
		Messages:      msgs,
		TotalMessages: len(msgs),
	})
}
