package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidLLMProviderNames lists the backend names the built-in registry
// knows. [Validate] warns about anything else but does not fail, since
// callers may register their own factories.
var ValidLLMProviderNames = []string{
	"openai", "openai-native", "anthropic", "gemini", "ollama",
	"deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated
// [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every validation failure found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must not be negative"))
	}

	if cfg.Providers.LLM.Name == "" {
		slog.Warn("providers.llm is not configured; the arbiter and conversational fallback will be unavailable")
	} else {
		validateProviderName("providers.llm", cfg.Providers.LLM)
	}
	for i, entry := range cfg.Providers.Fallbacks {
		prefix := fmt.Sprintf("providers.fallbacks[%d]", i)
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name must not be empty", prefix))
			continue
		}
		validateProviderName(prefix, entry)
	}

	if cfg.Engine.ArbiterMaxTokens < 0 {
		errs = append(errs, fmt.Errorf("engine.arbiter_max_tokens must not be negative"))
	}
	if cfg.Engine.ArbiterTemperature < 0 || cfg.Engine.ArbiterTemperature > 2 {
		errs = append(errs, fmt.Errorf("engine.arbiter_temperature must be in [0.0, 2.0]"))
	}
	if cfg.Engine.FallbackMaxTokens < 0 {
		errs = append(errs, fmt.Errorf("engine.fallback_max_tokens must not be negative"))
	}
	if cfg.Engine.SuggestionLimit < 0 {
		errs = append(errs, fmt.Errorf("engine.suggestion_limit must not be negative"))
	}

	return errors.Join(errs...)
}

// validateProviderName warns about provider names the built-in registry
// does not know.
func validateProviderName(prefix string, entry ProviderEntry) {
	if !slices.Contains(ValidLLMProviderNames, entry.Name) {
		slog.Warn("unrecognised LLM provider name; a custom registration is required",
			"field", prefix, "name", entry.Name)
	}
	if entry.Model == "" {
		slog.Warn("provider has no model configured", "field", prefix, "name", entry.Name)
	}
}
