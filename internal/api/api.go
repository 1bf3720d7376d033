// Package api serves the assistant over HTTP and WebSocket.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/service"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

const defaultHistoryLimit = 50

// Deps are the services behind the routes.
type Deps struct {
	Orchestrator *service.Orchestrator
	Sessions     *service.Sessions
	Properties   *service.Properties
	Executor     *tools.Executor
	Metrics      *metrics.Collector
	Logger       *slog.Logger
}

// Handler handles HTTP and WebSocket requests.
type Handler struct {
	orch     *service.Orchestrator
	sessions *service.Sessions
	props    *service.Properties
	exec     *tools.Executor
	metrics  *metrics.Collector
	logger   *slog.Logger
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a new handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		orch:     d.Orchestrator,
		sessions: d.Sessions,
		props:    d.Properties,
		exec:     d.Executor,
		metrics:  d.Metrics,
		logger:   logger,
		hub:      NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Hub returns the registry of open chat sockets.
func (h *Handler) Hub() *Hub { return h.hub }

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/stats", h.Stats)

	e.GET("/mcp/tools", h.ListTools)
	e.POST("/mcp/tools/:name", h.InvokeTool)

	chat := e.Group("/api/chat-bot")
	chat.POST("/chat", h.Chat)
	chat.POST("/sessions", h.CreateSession)
	chat.GET("/sessions/:session_id", h.GetSession)
	chat.DELETE("/sessions/:session_id", h.DeleteSession)
	chat.GET("/sessions/:session_id/history", h.SessionHistory)
	chat.GET("/ws/:session_id", h.ChatSocket)

	props := e.Group("/api")
	props.GET("/property-analysis", h.PropertyAnalysis)
	props.GET("/property-analysis/:property_id", h.PropertyDetails)
	props.POST("/property-analysis/:property_id/save", h.SaveProperty)
	props.GET("/saved-properties", h.SavedProperties)
	props.GET("/serviced-properties", h.ServicedProperties)
	props.POST("/calculator", h.Calculator)
	props.GET("/financial-calculator/:calculation_type", h.FinancialCalculator)
}

// NewServer builds the echo instance with request logging, panic recovery,
// CORS and caller identity in front of every route.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "duration", v.Latency}
			if v.Error != nil {
				h.logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			h.logger.Debug("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(Identity())

	h.RegisterRoutes(e)
	return e
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "real-estate-assistant",
	})
}

type statsResponse struct {
	metrics.Snapshot
	SocketConnections int `json:"socket_connections"`
	SocketSessions    int `json:"socket_sessions"`
}

// Stats returns the runtime metrics snapshot.
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, statsResponse{
		Snapshot:          h.metrics.Snapshot(),
		SocketConnections: h.hub.Connections(),
		SocketSessions:    h.hub.Sessions(),
	})
}
