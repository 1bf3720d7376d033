// Package main provides the HTTP and WebSocket server for the assistant.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/api"
	"github.com/rahul2317-NRK/chatbot9/internal/app"
	"github.com/rahul2317-NRK/chatbot9/internal/config"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Dual output: stderr text + file JSON
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel, "chatbot-server")
	defer func() { _ = cleanup() }()

	logger.Info("starting chatbot-server",
		"version", version,
		"addr", cfg.Addr(),
		"store", cfg.Store,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close resources", "error", err)
		}
	}()

	e := api.NewServer(api.NewHandler(api.Deps{
		Orchestrator: a.Orchestrator,
		Sessions:     a.Sessions,
		Properties:   a.Properties,
		Executor:     a.Executor,
		Metrics:      a.Metrics,
		Logger:       logger,
	}))
	// No read/write timeouts: they would cut hijacked WebSocket connections.
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.IdleTimeout = 120 * time.Second

	go func() {
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}
