// Package client talks to the assistant's HTTP and WebSocket API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

const (
	defaultBaseURL = "http://localhost:8000"
	headerUserID   = "X-User-ID"
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("server error")

// Client is an API client bound to one user id.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// New creates a client. An empty baseURL falls back to CHATBOT_SERVER_URL,
// then to localhost:8000. The timeout comes from CHATBOT_CLIENT_TIMEOUT
// (default 2m).
func New(baseURL, userID string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("CHATBOT_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("CHATBOT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// do sends a request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set(headerUserID, c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: %s - %s", ErrStatus, resp.Status, e.Message)
		}
		return fmt.Errorf("%w: %s - %s", ErrStatus, resp.Status, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// Chat sends one message. An empty sessionID starts a new session.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (*models.ResponseEnvelope, error) {
	var env models.ResponseEnvelope
	body := map[string]string{"message": message}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	if err := c.do(ctx, http.MethodPost, "/api/chat-bot/chat", body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Session is a created session.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSession opens a new session.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/chat-bot/sessions", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// History is a session transcript.
type History struct {
	SessionID     string                `json:"session_id"`
	Messages      []models.HistoryEntry `json:"messages"`
	TotalMessages int                   `json:"total_messages"`
}

// History returns up to limit turns of a session.
func (c *Client) History(ctx context.Context, sessionID string, limit int) (*History, error) {
	path := fmt.Sprintf("/api/chat-bot/sessions/%s/history?limit=%d", url.PathEscape(sessionID), limit)
	var h History
	if err := c.do(ctx, http.MethodGet, path, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Tool describes one tool.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools lists the server's tools.
func (c *Client) Tools(ctx context.Context) ([]Tool, error) {
	var out struct {
		Tools []Tool `json:"tools"`
	}
	if err := c.do(ctx, http.MethodGet, "/mcp/tools", nil, &out); err != nil {
		return nil, err
	}
	return out.Tools, nil
}

// ToolResult is a direct tool invocation outcome.
type ToolResult struct {
	ToolName      string          `json:"tool_name"`
	Result        json.RawMessage `json:"result"`
	ExecutionTime float64         `json:"execution_time"`
}

// Failed returns the tool's error message, if the result is an error.
func (r ToolResult) Failed() (string, bool) {
	var e struct {
		Error *string `json:"error"`
	}
	if json.Unmarshal(r.Result, &e) == nil && e.Error != nil {
		return *e.Error, true
	}
	return "", false
}

// InvokeTool runs a tool with raw JSON arguments.
func (c *Client) InvokeTool(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	var res ToolResult
	if err := c.do(ctx, http.MethodPost, "/mcp/tools/"+url.PathEscape(name), args, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MortgageRequest is a full-cost mortgage estimate request.
type MortgageRequest struct {
	PropertyPrice float64  `json:"property_price"`
	DownPayment   float64  `json:"down_payment"`
	InterestRate  *float64 `json:"interest_rate,omitempty"`
	LoanTermYears int      `json:"loan_term_years,omitempty"`
}

// Mortgage runs the calculator endpoint and returns the raw response.
func (c *Client) Mortgage(ctx context.Context, req MortgageRequest) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, "/api/calculator", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats is the server's metrics snapshot.
type Stats struct {
	metrics.Snapshot
	SocketConnections int `json:"socket_connections"`
	SocketSessions    int `json:"socket_sessions"`
}

// Stats fetches runtime statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Frame is one message from the chat socket.
type Frame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	models.ResponseEnvelope
}

// Conversation is an open chat socket.
type Conversation struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

// Dial opens the chat socket for sessionID.
func (c *Client) Dial(ctx context.Context, sessionID string) (*Conversation, error) {
	wsURL := strings.Replace(c.baseURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	u, err := url.Parse(wsURL + "/api/chat-bot/ws/" + url.PathEscape(sessionID))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	header := http.Header{}
	if c.userID != "" {
		header.Set(headerUserID, c.userID)
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}
	return &Conversation{conn: conn}, nil
}

// Ask sends a message and waits for the next frame. Error frames become
// errors.
func (cv *Conversation) Ask(ctx context.Context, message string) (*models.ResponseEnvelope, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cv.Close()
		case <-done:
		}
	}()

	if err := cv.conn.WriteJSON(map[string]string{"message": message}); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	var f Frame
	if err := cv.conn.ReadJSON(&f); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read message: %w", err)
	}
	if f.Type == "error" {
		return nil, fmt.Errorf("chat error: %s", f.Message)
	}
	return &f.ResponseEnvelope, nil
}

// Close closes the socket.
func (cv *Conversation) Close() error {
	var err error
	cv.closeOnce.Do(func() {
		_ = cv.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = cv.conn.Close()
	})
	return err
}
