// Package main provides the MCP server exposing the assistant's tools over stdio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rahul2317-NRK/chatbot9/internal/app"
	"github.com/rahul2317-NRK/chatbot9/internal/config"
	"github.com/rahul2317-NRK/chatbot9/internal/server"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// stdout belongs to the protocol; logs go to stderr and the log file
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel, "chatbot-mcp")
	defer func() { _ = cleanup() }()

	callerID := os.Getenv("CHATBOT_MCP_USER_ID")
	logger.Info("chatbot-mcp starting",
		"version", version,
		"store", cfg.Store,
		"caller", callerID,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing resources")
		_ = a.Close()
	}()

	srv := server.New(version, a.Executor, callerID, logger)
	logger.Info("server ready, awaiting connections")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
