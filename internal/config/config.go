// Package config provides the configuration schema, loader, and LLM
// provider registry for the InnerVoice resolution service.
package config

import "time"

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure, typically loaded from a YAML
// file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Engine    EngineConfig    `yaml:"engine"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g. ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// RequestTimeout is the wall-clock bound applied to each resolution
	// request, covering any in-flight LLM call. Zero means 15s.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ProvidersConfig declares the LLM backends: one primary plus optional
// fallbacks tried in order when the primary fails.
type ProvidersConfig struct {
	LLM       ProviderEntry   `yaml:"llm"`
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// ProviderEntry is the configuration block shared by all LLM backends. The
// Name field selects the constructor registered in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g. "openai",
	// "anthropic", "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key, if the backend needs one. Empty
	// falls back to the backend's environment variable.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model (e.g. "gpt-4o-mini").
	Model string `yaml:"model"`
}

// EngineConfig holds resolution-pipeline tuning knobs. Zero values take the
// engine defaults.
type EngineConfig struct {
	// ArbiterMaxTokens caps the arbiter completion length.
	ArbiterMaxTokens int `yaml:"arbiter_max_tokens"`

	// ArbiterTemperature is the arbiter sampling temperature.
	ArbiterTemperature float64 `yaml:"arbiter_temperature"`

	// FallbackMaxTokens caps the conversational fallback completion.
	FallbackMaxTokens int `yaml:"fallback_max_tokens"`

	// SuggestionLimit caps "did you mean" suggestion lists.
	SuggestionLimit int `yaml:"suggestion_limit"`

	// ExtraLanguages lists additional BCP 47 codes appended to the
	// default supported-language table.
	ExtraLanguages []string `yaml:"extra_languages"`
}
