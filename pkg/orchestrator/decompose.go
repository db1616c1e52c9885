package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// fallbackQuestionTemplates are rotated through when decomposition has to be
// synthesized without the model's help.
var fallbackQuestionTemplates = []string{
	"What are the most important facts and background about %s?",
	"What deeper analysis and insights can be drawn about %s?",
	"What alternative perspectives or dissenting views exist on %s?",
	"Which claims about %s should be verified, and what do reliable sources say?",
}

// parseSubtasks decodes a model response as a JSON array of subtask strings.
// If the response is not a bare array, it tries to recover an array embedded
// in surrounding text by locating the first '[' and the last ']'.
func parseSubtasks(response string) ([]string, error) {
	trimmed := strings.TrimSpace(response)

	items, err := decodeStringArray(trimmed)
	if err == nil {
		return items, nil
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start >= 0 && end > start {
		if items, recovered := decodeStringArray(trimmed[start : end+1]); recovered == nil {
			return items, nil
		}
	}
	return nil, err
}

func decodeStringArray(s string) ([]string, error) {
	var raw []interface{}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	items := make([]string, 0, len(raw))
	for _, value := range raw {
		var item string
		if str, ok := value.(string); ok {
			item = str
		} else {
			item = fmt.Sprint(value)
		}
		items = append(items, strings.TrimSpace(item))
	}
	return items, nil
}

// fallbackQuestion produces the index-th deterministic fallback question for
// a task. Once the template rotation wraps, a perspective suffix keeps the
// questions distinct.
func fallbackQuestion(userInput string, index int) string {
	tmpl := fallbackQuestionTemplates[index%len(fallbackQuestionTemplates)]
	question := fmt.Sprintf(tmpl, userInput)
	if wrap := index / len(fallbackQuestionTemplates); wrap > 0 {
		question = strings.TrimSuffix(question, "?") + fmt.Sprintf(" (perspective %d)?", wrap+1)
	}
	return question
}

// normalizeSubtasks shapes parsed items into exactly n well-formed subtasks:
// non-empty items are kept in order and truncated to n; any shortfall is
// padded with deterministic fallback questions.
func normalizeSubtasks(items []string, userInput string, n int) []string {
	subtasks := make([]string, 0, n)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		subtasks = append(subtasks, item)
		if len(subtasks) == n {
			break
		}
	}
	for i := 0; len(subtasks) < n; i++ {
		subtasks = append(subtasks, fallbackQuestion(userInput, i))
	}
	return subtasks
}
