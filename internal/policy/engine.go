// Package policy decides, per call, whether a tool may run.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Input is the document a policy evaluates.
type Input struct {
	ToolName string `json:"tool_name"`
	UserID   string `json:"user_id"`
	Args     any    `json:"args,omitempty"`
}

// Decision is the policy outcome for one call.
type Decision struct {
	Allow  bool
	Reason string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares policyContent. The module must define
// data.tool_policy.decision as an object {allow, reason}.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Load reads the policy at path, or uses DefaultPolicy when path is empty.
func Load(ctx context.Context, path string) (*Engine, error) {
	content := DefaultPolicy
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy: %w", err)
		}
		content = string(data)
	}
	return NewEngine(ctx, content)
}

// Evaluate checks one call. No result allows the call.
func (e *Engine) Evaluate(ctx context.Context, in Input) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(in))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Allow: true, Reason: "default"}, nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return Decision{}, fmt.Errorf("policy returned %T, want object", results[0].Expressions[0].Value)
	}

	allow, ok := obj["allow"].(bool)
	if !ok {
		return Decision{}, fmt.Errorf("policy decision missing boolean allow")
	}
	reason, _ := obj["reason"].(string)
	return Decision{Allow: allow, Reason: reason}, nil
}

// DefaultPolicy blocks saved-property lookups for anonymous or missing
// callers, and lookups of another user's list.
const DefaultPolicy = `
package tool_policy

default decision := {"allow": true, "reason": ""}

anonymous if input.user_id == ""

anonymous if startswith(input.user_id, "anonymous_")

decision := {"allow": false, "reason": "anonymous users have no saved properties"} if {
	input.tool_name == "getUserSavedProperties"
	anonymous
}

decision := {"allow": false, "reason": "saved properties belong to another user"} if {
	input.tool_name == "getUserSavedProperties"
	not anonymous
	object.get(input, ["args", "user_id"], "") != input.user_id
}
`
