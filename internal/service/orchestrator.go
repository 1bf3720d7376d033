package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rahul2317-NRK/chatbot9/internal/intent"
	"github.com/rahul2317-NRK/chatbot9/internal/lexicon"
	"github.com/rahul2317-NRK/chatbot9/internal/llm"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

const (
	gateFailedMessage = "I can only help with property-related questions."

	generationFailedFormat = "I apologize, but I'm having trouble generating a response right now. Please try again later. Error: %v"
	pipelineFailedFormat   = "I apologize, but I encountered an error processing your request: %v"
)

// Interaction kinds written by the services.
const (
	InteractionChatMessage        = "chat_message"
	InteractionPropertyAnalysis   = "property_analysis"
	InteractionPropertyDetails    = "property_details_view"
	InteractionPropertySaved      = "property_saved"
	InteractionMortgage           = "mortgage_calculation"
	InteractionFinancial          = "financial_calculation"
	InteractionServicedProperties = "serviced_properties_view"
)

// propertyDataKeys maps tools whose results are echoed to clients.
var propertyDataKeys = []struct {
	tool tools.Name
	key  string
}{
	{tools.SearchPropertyInfo, "search_results"},
	{tools.GetPropertyDetails, "property_details"},
	{tools.CalculateMortgage, "mortgage_calculation"},
	{tools.GetInterestRates, "interest_rates"},
	{tools.GetFinancialCalculator, "financial_calculation"},
}

// Options tune the pipeline.
type Options struct {
	HistoryLimit      int
	ContextTurns      int
	MaxTokens         int
	Temperature       float64
	GenerationTimeout time.Duration
}

// Orchestrator answers one message at a time: gate, history, classify, run
// tools, generate, persist, respond.
type Orchestrator struct {
	exec       *tools.Executor
	classifier intent.TextClassifier
	assembler  *Assembler
	generator  llm.Generator
	store      store.Store
	logger     *slog.Logger
	metrics    *metrics.Collector
	opts       Options
	now        func() time.Time
}

// NewOrchestrator wires the pipeline.
func NewOrchestrator(
	exec *tools.Executor,
	classifier intent.TextClassifier,
	generator llm.Generator,
	st store.Store,
	logger *slog.Logger,
	mc *metrics.Collector,
	opts Options,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		exec:       exec,
		classifier: classifier,
		assembler:  NewAssembler(opts.ContextTurns),
		generator:  generator,
		store:      st,
		logger:     logger,
		metrics:    mc,
		opts:       opts,
		now:        time.Now,
	}
}

// HandleMessage answers text. It always returns a well-formed envelope.
func (o *Orchestrator) HandleMessage(ctx context.Context, text, sessionID, userID string) models.ResponseEnvelope {
	start := time.Now()
	defer func() { o.metrics.RecordTiming(metrics.OpPipeline, time.Since(start)) }()

	ctx = tools.WithCaller(ctx, userID)
	received := o.now()

	gate := o.exec.Execute(ctx, tools.Call{
		Name: tools.ValidatePromptRelevance,
		Args: tools.RelevanceArgs{Prompt: text},
	})
	if verdict, ok := gate.Data.(lexicon.Verdict); !ok || !verdict.IsValid {
		o.metrics.Increment(metrics.CounterOffTopic)
		reply := gateFailedMessage
		if ok && verdict.FilteredContent != nil {
			reply = *verdict.FilteredContent
		}
		o.logger.Info("message rejected by relevance gate", "session_id", sessionID)
		return o.envelope(reply, sessionID, []string{string(tools.ValidatePromptRelevance)}, nil)
	}

	env, err := o.answer(ctx, text, sessionID, userID, received)
	if err != nil {
		o.metrics.Increment(metrics.CounterPipelineFails)
		o.logger.Error("pipeline failed", "session_id", sessionID, "error", err)
		return o.envelope(fmt.Sprintf(pipelineFailedFormat, err), sessionID, []string{}, nil)
	}
	return env
}

// answer runs everything after the gate. A panic becomes an error.
func (o *Orchestrator) answer(ctx context.Context, text, sessionID, userID string, received time.Time) (env models.ResponseEnvelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	// A failed history lookup leaves the history empty.
	var history []models.HistoryEntry
	hist := o.exec.Execute(ctx, tools.Call{
		Name: tools.GetUserChatHistory,
		Args: tools.HistoryArgs{UserID: userID, SessionID: sessionID, Limit: o.opts.HistoryLimit},
	})
	if h, ok := hist.Data.(tools.HistoryResult); ok {
		history = h.History
	}

	plan := o.classifier.Classify(text)
	plan.BindUser(userID)

	toolsUsed := []string{string(tools.ValidatePromptRelevance), string(tools.GetUserChatHistory)}
	for _, name := range plan.Names() {
		toolsUsed = append(toolsUsed, string(name))
	}
	results := o.exec.ExecuteAll(ctx, plan)

	msgs, err := o.assembler.Build(text, history, results)
	if err != nil {
		return models.ResponseEnvelope{}, err
	}
	reply := o.generate(ctx, msgs, sessionID)

	o.persist(ctx, text, reply, sessionID, userID, received, toolsUsed)

	return o.envelope(reply, sessionID, toolsUsed, propertyData(results)), nil
}

func (o *Orchestrator) generate(ctx context.Context, msgs []llm.Message, sessionID string) string {
	if o.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.GenerationTimeout)
		defer cancel()
	}

	reply, err := o.generator.Complete(ctx, msgs, llm.Options{
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
	})
	if err != nil {
		o.metrics.Increment(metrics.CounterGenerationFails)
		o.logger.Warn("generation failed", "session_id", sessionID, "error", err)
		return fmt.Sprintf(generationFailedFormat, err)
	}
	return reply
}

// persist stores both turns and bumps the session. Failures are logged only.
func (o *Orchestrator) persist(ctx context.Context, text, reply, sessionID, userID string, received time.Time, toolsUsed []string) {
	turns := []models.ChatMessage{
		{ID: uuid.NewString(), Message: text, SessionID: sessionID, UserID: userID, Role: models.RoleUser, Timestamp: received},
		{ID: uuid.NewString(), Message: reply, SessionID: sessionID, UserID: userID, Role: models.RoleAssistant, Timestamp: o.now()},
	}
	for _, m := range turns {
		if err := o.store.AppendMessage(ctx, m); err != nil {
			o.persistFailed("append message", sessionID, err)
		}
	}
	if err := o.store.TouchSession(ctx, sessionID, o.now()); err != nil {
		o.persistFailed("touch session", sessionID, err)
	}

	err := o.store.LogInteraction(ctx, models.Interaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   InteractionChatMessage,
		Payload: map[string]any{
			"message":    text,
			"response":   reply,
			"tools_used": toolsUsed,
			"session_id": sessionID,
		},
		Timestamp: o.now(),
	})
	if err != nil {
		o.persistFailed("log interaction", sessionID, err)
	}
}

func (o *Orchestrator) persistFailed(op, sessionID string, err error) {
	o.metrics.Increment(metrics.CounterPersistFails)
	o.logger.Warn("persist failed", "op", op, "session_id", sessionID, "error", err)
}

func (o *Orchestrator) envelope(reply, sessionID string, toolsUsed []string, data map[string]any) models.ResponseEnvelope {
	return models.ResponseEnvelope{
		Response:     reply,
		SessionID:    sessionID,
		Timestamp:    o.now(),
		ToolsUsed:    toolsUsed,
		PropertyData: data,
	}
}

// propertyData copies well-known tool payloads, failures included. It is nil
// when none of those tools ran.
func propertyData(results []tools.Result) map[string]any {
	var data map[string]any
	for _, r := range results {
		for _, k := range propertyDataKeys {
			if r.Tool != k.tool {
				continue
			}
			if data == nil {
				data = make(map[string]any)
			}
			data[k.key] = r.Payload()
		}
	}
	return data
}

// Serve answers each inbound message in order and emits one envelope per
// message. It returns when inbound closes, ctx ends, or emit fails.
func (o *Orchestrator) Serve(
	ctx context.Context,
	sessionID, userID string,
	inbound <-chan string,
	emit func(models.ResponseEnvelope) error,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-inbound:
			if !ok {
				return nil
			}
			if err := emit(o.HandleMessage(ctx, text, sessionID, userID)); err != nil {
				return fmt.Errorf("emit response: %w", err)
			}
		}
	}
}
