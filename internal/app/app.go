// Package app wires the assistant's components from configuration.
// Both the HTTP server and the MCP server start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rahul2317-NRK/chatbot9/internal/cache"
	"github.com/rahul2317-NRK/chatbot9/internal/config"
	"github.com/rahul2317-NRK/chatbot9/internal/intent"
	"github.com/rahul2317-NRK/chatbot9/internal/lexicon"
	"github.com/rahul2317-NRK/chatbot9/internal/llm"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/policy"
	"github.com/rahul2317-NRK/chatbot9/internal/search"
	"github.com/rahul2317-NRK/chatbot9/internal/service"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

// App holds every long-lived dependency.
type App struct {
	Config       config.Config
	Logger       *slog.Logger
	Metrics      *metrics.Collector
	Store        store.Store
	Cache        cache.Cache
	Executor     *tools.Executor
	Orchestrator *service.Orchestrator
	Sessions     *service.Sessions
	Properties   *service.Properties
}

// New connects storage, loads policy and vocabulary, and builds the
// pipeline. Call Close when done.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	mc := metrics.NewCollector()

	vocab := lexicon.DefaultVocabulary()
	if cfg.KeywordsFile != "" {
		v, err := lexicon.LoadVocabulary(cfg.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("load keywords: %w", err)
		}
		vocab = v
	}

	engine, err := policy.Load(ctx, cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	st, err := store.Open(ctx, cfg, logger, mc)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	c := cache.New(ctx, cfg, logger)

	var backend search.Backend
	if cfg.SearchConfigured() {
		google := search.NewGoogle(cfg.GoogleSearchAPIKey, cfg.GoogleSearchEngineID, cfg.SearchTimeout, cfg.SearchRatePerMinute)
		backend = search.NewCached(google, c, cfg.SearchCacheTTL, logger, mc)
	} else {
		logger.Info("web search not configured, serving placeholder results")
	}

	generator, err := llm.New(ctx, cfg, mc, logger)
	if err != nil {
		_ = c.Close()
		_ = st.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}

	exec := tools.NewExecutor(&tools.Dependencies{
		Store:   st,
		Search:  backend,
		Gate:    lexicon.NewGate(vocab),
		Policy:  engine,
		Logger:  logger,
		Metrics: mc,
	}, tools.Options{
		Timeout:          cfg.ToolTimeout,
		Parallel:         cfg.ToolsParallel,
		FabricateDetails: cfg.FabricateDetails,
	})

	orch := service.NewOrchestrator(exec, intent.NewKeywordClassifier(vocab), generator, st, logger, mc, service.Options{
		HistoryLimit:      cfg.HistoryMax,
		ContextTurns:      cfg.ContextTurn,
		MaxTokens:         cfg.LLMMaxTokens,
		Temperature:       cfg.LLMTemperature,
		GenerationTimeout: cfg.LLMTimeout,
	})

	return &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      mc,
		Store:        st,
		Cache:        c,
		Executor:     exec,
		Orchestrator: orch,
		Sessions:     service.NewSessions(st),
		Properties:   service.NewProperties(exec, st, logger, mc),
	}, nil
}

// Close releases the store and the cache.
func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.Store.Close())
}
