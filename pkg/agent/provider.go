package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/mugenyume/make-it-heavy/pkg/tools"
)

// Provider turns a conversation into a model response. Implementations must be
// safe for concurrent use; the orchestrator calls one provider from many
// agents at once.
type Provider interface {
	// CreateChatCompletion sends the full conversation and available tool
	// schemas to the model. An empty specs slice means no tools are offered.
	CreateChatCompletion(ctx context.Context, messages []Message, specs []tools.Spec) (*ModelResponse, error)

	// Info describes the configured provider for display and diagnostics.
	Info() ProviderInfo
}

// ProviderInfo describes a configured provider.
type ProviderInfo struct {
	Name        string
	DisplayName string
	Model       string
}

// ProviderOptions configure provider construction. Name selects a preset;
// BaseURL and Model override the preset's defaults.
type ProviderOptions struct {
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

type providerPreset struct {
	displayName  string
	baseURL      string
	defaultModel string
	keyPrefix    string
}

// Presets for OpenAI-compatible vendors, plus native Anthropic. The key
// prefixes feed auth failure diagnostics.
var providerPresets = map[string]providerPreset{
	"openai":     {displayName: "OpenAI", defaultModel: "gpt-4o-mini", keyPrefix: "sk-"},
	"openrouter": {displayName: "OpenRouter", baseURL: "https://openrouter.ai/api/v1", defaultModel: "openai/gpt-4o-mini", keyPrefix: "sk-or-"},
	"groq":       {displayName: "Groq", baseURL: "https://api.groq.com/openai/v1", defaultModel: "llama-3.3-70b-versatile", keyPrefix: "gsk_"},
	"cerebras":   {displayName: "Cerebras", baseURL: "https://api.cerebras.ai/v1", defaultModel: "llama-3.3-70b", keyPrefix: "csk-"},
	"sambanova":  {displayName: "SambaNova", baseURL: "https://api.sambanova.ai/v1", defaultModel: "Meta-Llama-3.3-70B-Instruct"},
	"nvidia":     {displayName: "NVIDIA NIM", baseURL: "https://integrate.api.nvidia.com/v1", defaultModel: "meta/llama-3.3-70b-instruct", keyPrefix: "nvapi-"},
	"mistral":    {displayName: "Mistral", baseURL: "https://api.mistral.ai/v1", defaultModel: "mistral-large-latest"},
	"ollama":     {displayName: "Ollama", baseURL: "http://localhost:11434/v1", defaultModel: "llama3.2"},
	"anthropic":  {displayName: "Anthropic", defaultModel: "claude-3-5-sonnet-20241022", keyPrefix: "sk-ant-"},
}

// NewProvider creates a provider from options. Unknown names are rejected.
func NewProvider(opts ProviderOptions) (Provider, error) {
	preset, ok := providerPresets[opts.Name]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", opts.Name)
	}

	model := opts.Model
	if model == "" {
		model = preset.defaultModel
	}
	info := ProviderInfo{
		Name:        opts.Name,
		DisplayName: preset.displayName,
		Model:       model,
	}

	if opts.Name == "anthropic" {
		return newAnthropicProvider(opts, info), nil
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = preset.baseURL
	}
	return newOpenAIProvider(opts, info, baseURL), nil
}

// AvailableProviders returns the supported provider names, sorted.
func AvailableProviders() []string {
	names := make([]string, 0, len(providerPresets))
	for name := range providerPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderDisplayName returns a provider's display name, or the raw name if it
// has no preset.
func ProviderDisplayName(name string) string {
	if preset, ok := providerPresets[name]; ok {
		return preset.displayName
	}
	return name
}

// AuthHint returns a provider-specific remediation hint for authentication
// failures, or empty if the provider has no known key format.
func AuthHint(name string) string {
	preset, ok := providerPresets[name]
	if !ok || preset.keyPrefix == "" {
		return ""
	}
	return fmt.Sprintf("check that your %s API key starts with %q", preset.displayName, preset.keyPrefix)
}
