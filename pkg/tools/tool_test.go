package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name     string
	params   map[string]interface{}
	result   interface{}
	err      error
	lastArgs map[string]interface{}
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub" }

func (t *stubTool) Parameters() map[string]interface{} {
	return t.params
}

func (t *stubTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	t.lastArgs = args
	return t.result, t.err
}

func TestRegister(t *testing.T) {
	t.Run("should register a tool", func(t *testing.T) {
		r := NewRegistry()

		err := r.Register(&stubTool{name: "alpha"})

		require.NoError(t, err)
		assert.Equal(t, 1, r.Len())
		_, ok := r.Get("alpha")
		assert.True(t, ok)
	})

	t.Run("should reject a duplicate name", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&stubTool{name: "alpha"}))

		err := r.Register(&stubTool{name: "alpha"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("should reject a nil tool and an empty name", func(t *testing.T) {
		r := NewRegistry()

		assert.Error(t, r.Register(nil))
		assert.Error(t, r.Register(&stubTool{name: ""}))
	})
}

func TestNamesAndSpecs(t *testing.T) {
	t.Run("should preserve registration order", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&stubTool{name: "bravo"}))
		require.NoError(t, r.Register(&stubTool{name: "alpha"}))

		assert.Equal(t, []string{"bravo", "alpha"}, r.Names())

		specs := r.Specs()
		require.Len(t, specs, 2)
		assert.Equal(t, "bravo", specs[0].Name)
		assert.Equal(t, "alpha", specs[1].Name)
	})
}

func TestWithout(t *testing.T) {
	t.Run("should clone minus the named tools", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewCompletionTool()))
		require.NoError(t, r.Register(&stubTool{name: "alpha"}))

		clone := r.Without(CompletionToolName)

		assert.Equal(t, []string{"alpha"}, clone.Names())
		assert.Equal(t, 2, r.Len())
	})

	t.Run("should keep the clone usable for execution", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&stubTool{name: "alpha", result: "ok"}))

		clone := r.Without("missing")
		out, err := clone.Execute(context.Background(), "alpha", nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	})
}

func TestExecute(t *testing.T) {
	t.Run("should run a registered tool", func(t *testing.T) {
		stub := &stubTool{name: "alpha", result: map[string]string{"ok": "yes"}}
		r := NewRegistry()
		require.NoError(t, r.Register(stub))

		out, err := r.Execute(context.Background(), "alpha", map[string]interface{}{"k": "v"})

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"ok": "yes"}, out)
		assert.Equal(t, map[string]interface{}{"k": "v"}, stub.lastArgs)
	})

	t.Run("should return UnknownToolError for an unregistered name", func(t *testing.T) {
		r := NewRegistry()

		_, err := r.Execute(context.Background(), "ghost", nil)

		var unknown *UnknownToolError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Unknown tool: ghost", err.Error())
	})

	t.Run("should validate arguments against the schema", func(t *testing.T) {
		stub := &stubTool{
			name: "alpha",
			params: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"query"},
			},
		}
		r := NewRegistry()
		require.NoError(t, r.Register(stub))

		_, err := r.Execute(context.Background(), "alpha", map[string]interface{}{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid arguments")
		assert.Nil(t, stub.lastArgs)
	})

	t.Run("should propagate tool errors", func(t *testing.T) {
		stub := &stubTool{name: "alpha", err: errors.New("tool broke")}
		r := NewRegistry()
		require.NoError(t, r.Register(stub))

		_, err := r.Execute(context.Background(), "alpha", nil)

		assert.EqualError(t, err, "tool broke")
	})
}

func TestCompletionTool(t *testing.T) {
	t.Run("should echo the completion details", func(t *testing.T) {
		tool := NewCompletionTool()

		out, err := tool.Execute(context.Background(), map[string]interface{}{
			"task_summary":       "looked things up",
			"completion_message": "All done.",
		})

		require.NoError(t, err)
		payload, ok := out.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "completed", payload["status"])
		assert.Equal(t, "looked things up", payload["task_summary"])
		assert.Equal(t, "All done.", payload["completion_message"])
	})

	t.Run("should require task_summary via the registry schema", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(NewCompletionTool()))

		_, err := r.Execute(context.Background(), CompletionToolName, map[string]interface{}{})

		assert.Error(t, err)
	})
}
