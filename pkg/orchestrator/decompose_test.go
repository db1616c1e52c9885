package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubtasks(t *testing.T) {
	t.Run("should decode a bare JSON array", func(t *testing.T) {
		items, err := parseSubtasks(`["question one?", "question two?"]`)

		require.NoError(t, err)
		assert.Equal(t, []string{"question one?", "question two?"}, items)
	})

	t.Run("should recover an array embedded in prose", func(t *testing.T) {
		response := "Here are the questions:\n[\"first?\", \"second?\"]\nHope that helps."

		items, err := parseSubtasks(response)

		require.NoError(t, err)
		assert.Equal(t, []string{"first?", "second?"}, items)
	})

	t.Run("should coerce non-string entries", func(t *testing.T) {
		items, err := parseSubtasks(`["real question?", 42]`)

		require.NoError(t, err)
		assert.Equal(t, []string{"real question?", "42"}, items)
	})

	t.Run("should fail when no array can be found", func(t *testing.T) {
		_, err := parseSubtasks("I cannot answer in JSON, sorry.")

		assert.Error(t, err)
	})

	t.Run("should fail when the bracketed span is not valid JSON", func(t *testing.T) {
		_, err := parseSubtasks("list [not, valid, json] here")

		assert.Error(t, err)
	})
}

func TestFallbackQuestion(t *testing.T) {
	t.Run("should always end with a question mark", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			q := fallbackQuestion("quantum computing", i)
			assert.True(t, strings.HasSuffix(q, "?"), "question %d: %q", i, q)
			assert.Contains(t, q, "quantum computing")
		}
	})

	t.Run("should stay distinct after the rotation wraps", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 12; i++ {
			q := fallbackQuestion("a topic", i)
			assert.False(t, seen[q], "duplicate question %q at index %d", q, i)
			seen[q] = true
		}
	})

	t.Run("should add a perspective suffix on wrap", func(t *testing.T) {
		q := fallbackQuestion("a topic", len(fallbackQuestionTemplates))

		assert.True(t, strings.HasSuffix(q, "(perspective 2)?"), "got %q", q)
	})
}

func TestNormalizeSubtasks(t *testing.T) {
	t.Run("should keep exactly n items", func(t *testing.T) {
		for _, n := range []int{1, 4, 6} {
			out := normalizeSubtasks([]string{"one?", "two?"}, "topic", n)
			assert.Len(t, out, n, "n=%d", n)
		}
	})

	t.Run("should truncate extra items", func(t *testing.T) {
		out := normalizeSubtasks([]string{"a?", "b?", "c?"}, "topic", 2)

		assert.Equal(t, []string{"a?", "b?"}, out)
	})

	t.Run("should pad shortfalls with fallback questions", func(t *testing.T) {
		out := normalizeSubtasks([]string{"provided?"}, "topic", 4)

		require.Len(t, out, 4)
		assert.Equal(t, "provided?", out[0])
		for _, q := range out[1:] {
			assert.True(t, strings.HasSuffix(q, "?"), "got %q", q)
			assert.Contains(t, q, "topic")
		}
	})

	t.Run("should drop blank items before padding", func(t *testing.T) {
		out := normalizeSubtasks([]string{"", "  ", "real?"}, "topic", 2)

		require.Len(t, out, 2)
		assert.Equal(t, "real?", out[0])
	})

	t.Run("should fully synthesize when nothing was parsed", func(t *testing.T) {
		out := normalizeSubtasks(nil, "topic", 6)

		require.Len(t, out, 6)
		seen := make(map[string]bool)
		for _, q := range out {
			assert.True(t, strings.HasSuffix(q, "?"), "got %q", q)
			assert.False(t, seen[q], "duplicate %q", q)
			seen[q] = true
		}
	})
}
