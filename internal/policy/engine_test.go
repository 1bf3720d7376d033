package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	e, err := Load(ctx, "")
	require.NoError(t, err)

	const anonReason = "anonymous users have no saved properties"
	own := map[string]any{"user_id": "user-1"}

	tests := []struct {
		name       string
		in         Input
		wantAllow  bool
		wantReason string
	}{
		{"anonymous saved lookup", Input{ToolName: "getUserSavedProperties", UserID: "anonymous_1a2b3c4d", Args: own}, false, anonReason},
		{"own saved lookup", Input{ToolName: "getUserSavedProperties", UserID: "user-1", Args: own}, true, ""},
		{"own saved lookup typed args", Input{ToolName: "getUserSavedProperties", UserID: "user-1", Args: struct {
			UserID string `json:"user_id"`
		}{"user-1"}}, true, ""},
		{"other user's saved lookup", Input{ToolName: "getUserSavedProperties", UserID: "user-2", Args: own}, false, "saved properties belong to another user"},
		{"saved lookup without user arg", Input{ToolName: "getUserSavedProperties", UserID: "user-2", Args: map[string]any{}}, false, "saved properties belong to another user"},
		{"anonymous rates lookup", Input{ToolName: "getInterestRates", UserID: "anonymous_1a2b3c4d"}, true, ""},
		{"no caller", Input{ToolName: "getUserSavedProperties", Args: own}, false, anonReason},
		{"no caller rates lookup", Input{ToolName: "getInterestRates"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Evaluate(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, d.Allow)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestCustomPolicyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policy.rego")
	require.NoError(t, os.WriteFile(path, []byte(`
package tool_policy

default decision := {"allow": true, "reason": ""}

decision := {"allow": false, "reason": "search disabled"} if {
	input.tool_name == "searchPropertyInfo"
}
`), 0o600))

	e, err := Load(ctx, path)
	require.NoError(t, err)

	d, err := e.Evaluate(ctx, Input{ToolName: "searchPropertyInfo", UserID: "u"})
	require.NoError(t, err)
	assert.False(t, d.Allow)
	assert.Equal(t, "search disabled", d.Reason)
}

func TestPolicyErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.rego"))
		assert.Error(t, err)
	})

	t.Run("invalid rego", func(t *testing.T) {
		_, err := NewEngine(ctx, "package tool_policy\ndecision := {")
		assert.Error(t, err)
	})

	t.Run("wrong shape", func(t *testing.T) {
		e, err := NewEngine(ctx, "package tool_policy\ndecision := \"allow\"\n")
		require.NoError(t, err)
		_, err = e.Evaluate(ctx, Input{ToolName: "x"})
		assert.Error(t, err)
	})

	t.Run("undefined decision allows", func(t *testing.T) {
		e, err := NewEngine(ctx, "package tool_policy\ndecision := {\"allow\": false} if { input.tool_name == \"never\" }\n")
		require.NoError(t, err)
		d, err := e.Evaluate(ctx, Input{ToolName: "x"})
		require.NoError(t, err)
		assert.True(t, d.Allow)
	})
}
