package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

// ToolInfo describes one tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolList is the response of GET /mcp/tools.
type ToolList struct {
	Tools []ToolInfo `json:"tools"`
	Total int        `json:"total"`
}

// ListTools returns every tool in registration order.
func (h *Handler) ListTools(c echo.Context) error {
	names := tools.All()
	out := ToolList{Tools: make([]ToolInfo, 0, len(names)), Total: len(names)}
	for _, n := range names {
		out.Tools = append(out.Tools, ToolInfo{Name: string(n), Description: n.Description()})
	}
	return c.JSON(http.StatusOK, out)
}

// InvokeTool runs a tool with the JSON request body as arguments. Tool
// failures are reported in the result with status 200.
func (h *Handler) InvokeTool(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return echo.NewHTTPError(http.StatusBadRequest, "request body must be JSON")
	}

	ctx := tools.WithCaller(c.Request().Context(), userID(c))
	res, err := h.exec.ExecuteJSON(ctx, c.Param("name"), body)
	if errors.Is(err, tools.ErrUnknownTool) {
		return c.JSON(http.StatusNotFound, res)
	}
	return c.JSON(http.StatusOK, res)
}
