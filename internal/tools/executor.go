package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/policy"
)

// ErrUnknownTool is returned by ExecuteJSON for names outside the tool set.
var ErrUnknownTool = errors.New("unknown tool")

// Call is one planned tool invocation. Args is the tool's argument struct, a
// pointer to it, raw JSON, or a JSON-shaped map.
type Call struct {
	Name Name
	Args any
}

type handler func(ctx context.Context, args any) (any, error)

// Executor runs tools by name. Execute never fails as a call: every failure
// is reported in the returned Result.
type Executor struct {
	deps     *Dependencies
	opts     Options
	handlers map[Name]handler
	logger   *slog.Logger
}

// NewExecutor builds the dispatch table over deps.
func NewExecutor(deps *Dependencies, opts Options) *Executor {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	e := &Executor{deps: deps, opts: opts, logger: deps.Logger}
	e.handlers = map[Name]handler{
		ValidatePromptRelevance:   typed(newRelevanceHandler(deps)),
		SearchPropertyInfo:        typed(newSearchHandler(deps)),
		GetUserChatHistory:        typed(newHistoryHandler(deps)),
		GetPropertyDetails:        typed(newPropertyDetailsHandler(deps, opts.FabricateDetails)),
		GetInterestRates:          typed(newInterestRatesHandler(deps)),
		CalculateMortgage:         typed(calculateMortgage),
		GetUserSavedProperties:    typed(newSavedPropertiesHandler(deps)),
		GetServicedProperties:     typed(servicedProperties),
		CalculateMortgageAdvanced: typed(calculateMortgageAdvanced),
		GetFinancialCalculator:    typed(financialCalculator),
	}
	return e
}

type callerKey struct{}

// WithCaller attaches the requesting user id for policy checks.
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

func callerFrom(ctx context.Context) string {
	id, _ := callerOf(ctx)
	return id
}

// callerOf reports the attached caller, and whether one was attached at all.
// In-process calls without WithCaller skip per-user checks.
func callerOf(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey{}).(string)
	return id, ok
}

// Execute runs one call.
func (e *Executor) Execute(ctx context.Context, call Call) Result {
	start := time.Now()
	res := e.run(ctx, call)
	res.Tool = call.Name
	res.Elapsed = time.Since(start)

	e.deps.Metrics.RecordTiming(metrics.ToolOp(string(call.Name)), res.Elapsed)
	if !res.OK() {
		e.deps.Metrics.Increment(metrics.CounterToolErrors)
		e.logger.Warn("tool failed", "tool", call.Name, "error", res.Err.Message, "duration", res.Elapsed)
	} else {
		e.logger.Debug("tool completed", "tool", call.Name, "duration", res.Elapsed)
	}
	return res
}

func (e *Executor) run(ctx context.Context, call Call) Result {
	h, ok := e.handlers[call.Name]
	if !ok {
		return failure(fmt.Sprintf("Tool '%s' not found", call.Name))
	}

	if reason, blocked := e.authorize(ctx, call); blocked {
		e.deps.Metrics.Increment(metrics.CounterPolicyBlocks)
		return failure(fmt.Sprintf("Tool '%s' blocked by policy: %s", call.Name, reason))
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- failure(fmt.Sprintf("Tool '%s' panicked: %v", call.Name, r))
			}
		}()
		data, err := h(ctx, call.Args)
		if err != nil {
			done <- Result{Err: asToolError(err)}
			return
		}
		done <- Result{Data: data}
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return failure(fmt.Sprintf("Tool '%s' timed out: %v", call.Name, ctx.Err()))
	}
}

// authorize consults the policy. An evaluation failure allows the call.
func (e *Executor) authorize(ctx context.Context, call Call) (string, bool) {
	if e.deps.Policy == nil {
		return "", false
	}
	d, err := e.deps.Policy.Evaluate(ctx, policy.Input{
		ToolName: string(call.Name),
		UserID:   callerFrom(ctx),
		Args:     call.Args,
	})
	if err != nil {
		e.logger.Warn("policy evaluation failed, allowing call", "tool", call.Name, "error", err)
		return "", false
	}
	return d.Reason, !d.Allow
}

// ExecuteAll runs calls and returns their results in call order.
func (e *Executor) ExecuteAll(ctx context.Context, calls []Call) []Result {
	results := make([]Result, len(calls))
	if !e.opts.Parallel || len(calls) < 2 {
		for i, c := range calls {
			results[i] = e.Execute(ctx, c)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, c := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.Execute(ctx, c)
		}()
	}
	wg.Wait()
	return results
}

// ExecuteJSON runs a tool named by a client with JSON arguments. Unknown
// names still yield a well-formed Result alongside ErrUnknownTool.
func (e *Executor) ExecuteJSON(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	call := Call{Name: Name(name), Args: args}
	res := e.Execute(ctx, call)
	if !call.Name.Valid() {
		return res, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return res, nil
}

func failure(msg string) Result {
	return Result{Err: &Error{Message: msg}}
}

func asToolError(err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{Message: err.Error()}
}

// typed adapts a handler over a concrete argument struct.
func typed[A any](fn func(ctx context.Context, args A) (any, error)) handler {
	return func(ctx context.Context, raw any) (any, error) {
		args, err := decodeArgs[A](raw)
		if err != nil {
			return nil, err
		}
		return fn(ctx, args)
	}
}

func decodeArgs[A any](raw any) (A, error) {
	var args A
	var data []byte

	switch v := raw.(type) {
	case nil:
		return args, nil
	case A:
		return v, nil
	case *A:
		if v != nil {
			args = *v
		}
		return args, nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return args, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return args, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}
