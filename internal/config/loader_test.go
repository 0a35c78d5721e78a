package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/iTherapyLLC/innervoice/internal/config"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: "debug"
  request_timeout: 10s
providers:
  llm:
    name: "openai"
    model: "gpt-4o-mini"
  fallbacks:
    - name: "ollama"
      base_url: "http://localhost:11434"
      model: "llama3.2"
engine:
  arbiter_max_tokens: 200
  arbiter_temperature: 0.2
  suggestion_limit: 5
  extra_languages: ["nl", "sv"]
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Providers.LLM.Name != "openai" || cfg.Providers.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM = %+v", cfg.Providers.LLM)
	}
	if len(cfg.Providers.Fallbacks) != 1 || cfg.Providers.Fallbacks[0].Name != "ollama" {
		t.Errorf("Fallbacks = %+v", cfg.Providers.Fallbacks)
	}
	if cfg.Engine.ArbiterMaxTokens != 200 || cfg.Engine.SuggestionLimit != 5 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if len(cfg.Engine.ExtraLanguages) != 2 {
		t.Errorf("ExtraLanguages = %v", cfg.Engine.ExtraLanguages)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
server:
  listen_addr: ":8080"
  lsiten_addr_typo: ":9090"
`))
	if err == nil {
		t.Error("expected strict decoding to reject an unknown field")
	}
}

func TestLoadFromReader_InvalidYAML(t *testing.T) {
	t.Parallel()

	if _, err := config.LoadFromReader(strings.NewReader("server: [not: a: mapping")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Server.LogLevel = "verbose"
	cfg.Server.RequestTimeout = -1
	cfg.Engine.ArbiterMaxTokens = -5
	cfg.Engine.ArbiterTemperature = 3.0
	cfg.Providers.Fallbacks = []config.ProviderEntry{{}}

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{
		"server.log_level",
		"server.request_timeout",
		"engine.arbiter_max_tokens",
		"engine.arbiter_temperature",
		"providers.fallbacks[0].name",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error missing %q:\n%v", want, err)
		}
	}
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	t.Parallel()

	// A missing provider is a warning, not an error: the engine can run
	// grammar-only.
	if err := config.Validate(&config.Config{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
