package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

const (
	maxArgLogLen         = 200
	slowRequestThreshold = 100 * time.Millisecond
)

// LoggingMiddleware logs every request with its duration. Requests slower
// than 100ms log at WARN; parameters are cut to 200 characters.
func LoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)

			attrs := []any{"method", method, "duration_ms", duration.Milliseconds()}
			if params := req.GetParams(); params != nil {
				attrs = append(attrs, "params", truncate(fmt.Sprintf("%+v", params), maxArgLogLen))
			}

			switch {
			case err != nil:
				logger.Error("mcp request failed", append(attrs, "error", err.Error())...)
			case duration > slowRequestThreshold:
				logger.Warn("slow mcp request", attrs...)
			default:
				logger.Debug("mcp request completed", attrs...)
			}
			return result, err
		}
	}
}

// CallerMiddleware attaches callerID to every request for policy checks.
func CallerMiddleware(callerID string) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			return next(tools.WithCaller(ctx, callerID), method, req)
		}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
