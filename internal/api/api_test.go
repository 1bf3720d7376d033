package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rahul2317-NRK/chatbot9/internal/intent"
	"github.com/rahul2317-NRK/chatbot9/internal/lexicon"
	"github.com/rahul2317-NRK/chatbot9/internal/llm"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/policy"
	"github.com/rahul2317-NRK/chatbot9/internal/service"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e     *echo.Echo
	h     *Handler
	store *store.Memory
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	mc := metrics.NewCollector()
	vocab := lexicon.DefaultVocabulary()

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	exec := tools.NewExecutor(&tools.Dependencies{
		Store:   mem,
		Gate:    lexicon.NewGate(vocab),
		Policy:  engine,
		Logger:  logger,
		Metrics: mc,
	}, tools.Options{Timeout: 5 * time.Second, Parallel: true, FabricateDetails: true})

	orch := service.NewOrchestrator(exec, intent.NewKeywordClassifier(vocab), llm.NewMockClient(), mem, logger, mc, service.Options{
		HistoryLimit: 20,
		ContextTurns: 10,
		MaxTokens:    1000,
	})

	h := NewHandler(Deps{
		Orchestrator: orch,
		Sessions:     service.NewSessions(mem),
		Properties:   service.NewProperties(exec, mem, logger, mc),
		Executor:     exec,
		Metrics:      mc,
		Logger:       logger,
	})
	return testServer{e: NewServer(h), h: h, store: mem}
}

func (s testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestAnonymousID(t *testing.T) {
	id := AnonymousID()
	assert.True(t, strings.HasPrefix(id, "anonymous_"))
	assert.Len(t, id, len("anonymous_")+8)
	assert.NotEqual(t, id, AnonymousID())
}

func TestChatEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/chat-bot/chat", "user-1", ChatRequest{Message: "What are current mortgage rates?"})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[models.ResponseEnvelope](t, rec)
	assert.NotEmpty(t, env.SessionID)
	assert.Equal(t, []string{"validatePromptRelevance", "getUserChatHistory", "getInterestRates"}, env.ToolsUsed)
	assert.Contains(t, env.PropertyData, "interest_rates")

	sess, err := s.store.GetSession(context.Background(), env.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)

	rec = s.do(t, http.MethodGet, "/api/chat-bot/sessions/"+env.SessionID+"/history", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[SessionHistory](t, rec)
	assert.Equal(t, 2, hist.TotalMessages)
	assert.Equal(t, models.RoleUser, hist.Messages[0].Type)
}

func TestChatEndpointValidation(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/chat-bot/chat", "", ChatRequest{Message: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/chat-bot/sessions", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[SessionCreated](t, rec)
	assert.Equal(t, "user-1", created.UserID)

	path := "/api/chat-bot/sessions/" + created.SessionID
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, "user-1", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, "user-2", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path+"/history", "user-2", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path+"/history?limit=x", "user-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/chat-bot/sessions/nope", "user-1", nil).Code)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, path, "user-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, "user-1", nil).Code)
}

func TestAnonymousSessionCreate(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/chat-bot/sessions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, models.IsAnonymous(decode[SessionCreated](t, rec).UserID))
}

func TestToolEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/mcp/tools", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ToolList](t, rec)
	assert.Equal(t, 10, list.Total)
	assert.Equal(t, "validatePromptRelevance", list.Tools[0].Name)

	rec = s.do(t, http.MethodPost, "/mcp/tools/calculateMortgage", "user-1", map[string]any{
		"property_price": 450000, "down_payment": 90000, "interest_rate": 6.5, "loan_term_years": 30,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[map[string]any](t, rec)
	assert.Equal(t, "calculateMortgage", out["tool_name"])
	result := out["result"].(map[string]any)
	assert.InDelta(t, 2275.44, result["monthly_payment"], 0.001)

	rec = s.do(t, http.MethodPost, "/mcp/tools/nope", "", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	out = decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"error": "Tool 'nope' not found"}, out["result"])
}

func TestToolEndpointPolicyBlock(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/mcp/tools/getUserSavedProperties", "", map[string]any{"user_id": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[map[string]any](t, rec)
	result := out["result"].(map[string]any)
	assert.Contains(t, result["error"], "blocked by policy: anonymous users have no saved properties")
}

func TestCrossUserAccess(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/chat-bot/chat", "alice", ChatRequest{Message: "What are current mortgage rates?"})
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := decode[models.ResponseEnvelope](t, rec).SessionID
	require.NoError(t, s.store.SaveProperty(context.Background(), models.SavedProperty{UserID: "alice", PropertyID: "prop_001", SavedAt: time.Now()}))

	toolError := func(t *testing.T, rec *httptest.ResponseRecorder) string {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code)
		result := decode[map[string]any](t, rec)["result"].(map[string]any)
		msg, _ := result["error"].(string)
		return msg
	}

	t.Run("history endpoint", func(t *testing.T) {
		path := "/api/chat-bot/sessions/" + sessionID + "/history"
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, "alice", nil).Code)
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, "bob", nil).Code)
	})

	t.Run("history tool", func(t *testing.T) {
		body := map[string]any{"session_id": sessionID}
		assert.Empty(t, toolError(t, s.do(t, http.MethodPost, "/mcp/tools/getUserChatHistory", "alice", body)))
		assert.Equal(t, "access denied to this session", toolError(t, s.do(t, http.MethodPost, "/mcp/tools/getUserChatHistory", "bob", body)))
		assert.Equal(t, "access denied to this session", toolError(t, s.do(t, http.MethodPost, "/mcp/tools/getUserChatHistory", "", body)))
	})

	t.Run("saved properties tool", func(t *testing.T) {
		body := map[string]any{"user_id": "alice"}
		assert.Empty(t, toolError(t, s.do(t, http.MethodPost, "/mcp/tools/getUserSavedProperties", "alice", body)))
		assert.Contains(t, toolError(t, s.do(t, http.MethodPost, "/mcp/tools/getUserSavedProperties", "bob", body)),
			"blocked by policy: saved properties belong to another user")
	})

	t.Run("chat on another user's session", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/chat-bot/chat", "bob", ChatRequest{Message: "mortgage rates", SessionID: sessionID})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("socket on another user's session", func(t *testing.T) {
		srv := httptest.NewServer(s.e)
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat-bot/ws/" + sessionID
		header := http.Header{}
		header.Set(HeaderUserID, "bob")
		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		if conn != nil {
			conn.Close()
		}
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Zero(t, s.h.Hub().Connections())
	})
}

func TestPropertyEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/property-analysis?query=condo&location=Texas", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	analysis := decode[map[string]any](t, rec)
	assert.Equal(t, "Texas", analysis["location"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/property-analysis", "user-1", nil).Code)

	rec = s.do(t, http.MethodGet, "/api/property-analysis/prop_9", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[map[string]any](t, rec)
	data := details["property_data"].(map[string]any)
	assert.Equal(t, "prop_9", data["property_id"])
	assert.Contains(t, data, "mortgage_estimate")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/property-analysis/prop_9/save", "", SaveRequest{}).Code)
	rec = s.do(t, http.MethodPost, "/api/property-analysis/prop_9/save", "user-1", SaveRequest{Notes: "corner lot"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/saved-properties", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[tools.SavedPropertiesResult](t, rec)
	require.Equal(t, 1, saved.TotalCount)
	assert.Equal(t, "corner lot", saved.SavedProperties[0].Notes)

	rec = s.do(t, http.MethodGet, "/api/serviced-properties?property_type=condo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[tools.ServicedPropertiesResult](t, rec).TotalCount)
}

func TestCalculatorEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/calculator", "user-1", service.CalculatorRequest{PropertyPrice: 400000, DownPayment: 40000})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[map[string]any](t, rec)
	mortgage := out["mortgage_calculation"].(map[string]any)
	assert.Equal(t, 7.2, mortgage["interest_rate"])
	assert.Contains(t, out, "roi_estimate")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/calculator", "user-1", map[string]any{}).Code)

	rec = s.do(t, http.MethodGet, "/api/financial-calculator/cash_flow?monthly_rent=2500&monthly_expenses=1800", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fin := decode[map[string]any](t, rec)
	result := fin["result"].(map[string]any)
	assert.Equal(t, 700.0, result["monthly_cash_flow"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/financial-calculator/cash_flow?monthly_rent=2500", "user-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/financial-calculator/npv", "user-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/financial-calculator/roi?initial_investment=abc", "user-1", nil).Code)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/chat-bot/chat", "user-1", ChatRequest{Message: "What's the weather like today?"})

	rec := s.do(t, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap struct {
		Counters map[string]int64 `json:"counters"`
		Tools    map[string]any   `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.Counters[metrics.CounterOffTopic])
	assert.Contains(t, snap.Tools, "validatePromptRelevance")
}

func TestChatSocket(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat-bot/ws/sock-1"
	header := http.Header{}
	header.Set(HeaderUserID, "user-1")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var errFrame SocketError
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Equal(t, TypeError, errFrame.Type)
	assert.True(t, strings.HasPrefix(errFrame.Message, "Error: "))

	require.NoError(t, conn.WriteJSON(SocketRequest{Message: "What are current mortgage rates?"}))
	var frame SocketResponse
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, TypeAIResponse, frame.Type)
	assert.Equal(t, "sock-1", frame.SessionID)
	assert.Contains(t, frame.ToolsUsed, "getInterestRates")

	sess, err := s.store.GetSession(context.Background(), "sock-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, 1, s.h.Hub().Connections())
}

func TestHubSend(t *testing.T) {
	h := NewHub()
	assert.Equal(t, 0, h.Send("none", map[string]string{}))
	assert.Equal(t, 0, h.Sessions())
}
