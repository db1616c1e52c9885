package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Normalizer converts heterogeneous provider tool-call payloads into canonical
// ToolCalls. Providers disagree on shape: some nest name and arguments under a
// "function" key, some inline them; arguments may arrive as a string, an
// object, or be absent. A Normalizer instance also synthesizes collision-free
// placeholder IDs for calls that arrive without one, so use one instance per
// agent run.
type Normalizer struct {
	synthesized int
}

// Normalize converts a single provider tool-call value. It returns false for
// payloads with no resolvable name; such calls are dropped, not errored.
func (n *Normalizer) Normalize(raw interface{}) (ToolCall, bool) {
	if raw == nil {
		return ToolCall{}, false
	}

	m, ok := asMap(raw)
	if !ok {
		return ToolCall{}, false
	}

	// Field names may sit under a "function" key or at the top level.
	fields := m
	if fn, ok := asMap(m["function"]); ok {
		fields = fn
	}

	name, _ := fields["name"].(string)
	if name == "" {
		return ToolCall{}, false
	}

	id, _ := m["id"].(string)
	if id == "" {
		id = fmt.Sprintf("call_synthetic_%d", n.synthesized)
		n.synthesized++
	}

	return ToolCall{
		ID:        id,
		Name:      name,
		Arguments: canonicalArguments(fields["arguments"]),
	}, true
}

// NormalizeAll converts a batch, preserving input order and dropping only
// malformed entries.
func (n *Normalizer) NormalizeAll(raw []interface{}) []ToolCall {
	if len(raw) == 0 {
		return nil
	}
	calls := make([]ToolCall, 0, len(raw))
	for _, value := range raw {
		if call, ok := n.Normalize(value); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

// asMap coerces a value into a string-keyed map. SDK structs are converted
// through a JSON round trip so the rest of the pipeline never branches on
// concrete provider types.
func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		return v, true
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, false
		}
		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, false
		}
		return m, true
	}
}

// canonicalArguments renders an arguments value as a raw JSON-ish string.
func canonicalArguments(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "{}"
	case string:
		return v
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return "{}"
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// ParseToolArguments decodes a canonical arguments string into an object.
// Empty or whitespace-only input yields an empty object. Invalid JSON yields
// an ArgumentParseError; valid JSON that is not an object yields an
// ArgumentShapeError.
func ParseToolArguments(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]interface{}{}, nil
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ArgumentParseError{Err: err}
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, &ArgumentShapeError{Value: parsed}
	}
	return obj, nil
}

// coerceContent renders assistant content of any provider shape as a string.
func coerceContent(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
