package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mugenyume/make-it-heavy/internal/metrics"
)

// CompletionToolName is the designated completion signal. An agent calls it to
// declare that it has finished producing an answer.
const CompletionToolName = "mark_task_complete"

// Tool is an executable capability exposed to the model.
type Tool interface {
	// Name returns the unique tool name.
	Name() string

	// Description returns a short human-readable summary for the model.
	Description() string

	// Parameters returns the JSON Schema describing the arguments object.
	Parameters() map[string]interface{}

	// Execute runs the tool. The returned value must be JSON-serializable.
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Spec is the provider-facing description of a registered tool.
type Spec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// UnknownToolError reports a call to a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// Registry manages registered tools and validates their arguments.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*gojsonschema.Schema
	order   []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// Register adds a tool, compiling its parameter schema for argument validation.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is required")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	params := tool.Parameters()
	if params == nil {
		params = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(params))
	if err != nil {
		return fmt.Errorf("failed to compile schema for tool %s: %w", name, err)
	}

	r.tools[name] = tool
	r.schemas[name] = schema
	r.order = append(r.order, name)
	return nil
}

// Get returns a registered tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Specs returns provider-facing tool descriptions in registration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		specs = append(specs, Spec{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return specs
}

// Without returns a copy of the registry with the named tools removed. The
// receiver is left untouched.
func (r *Registry) Without(names ...string) *Registry {
	excluded := make(map[string]bool, len(names))
	for _, name := range names {
		excluded[name] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry()
	for _, name := range r.order {
		if excluded[name] {
			continue
		}
		clone.tools[name] = r.tools[name]
		clone.schemas[name] = r.schemas[name]
		clone.order = append(clone.order, name)
	}
	return clone
}

// Execute validates arguments against the tool's schema and runs the tool.
// An unregistered name yields an UnknownToolError.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	if err := validateArgs(schema, args); err != nil {
		metrics.RecordToolExecution(name, 0, false)
		return nil, err
	}

	start := time.Now()
	out, err := tool.Execute(ctx, args)
	metrics.RecordToolExecution(name, time.Since(start), err == nil)
	return out, err
}

func validateArgs(schema *gojsonschema.Schema, args map[string]interface{}) error {
	if schema == nil {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("argument validation failed: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("invalid arguments: %s", first.String())
	}
	return nil
}
