// Command innervoice is the entry point for the InnerVoice command
// resolution server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/iTherapyLLC/innervoice/internal/config"
	"github.com/iTherapyLLC/innervoice/internal/health"
	"github.com/iTherapyLLC/innervoice/internal/lang"
	"github.com/iTherapyLLC/innervoice/internal/observe"
	"github.com/iTherapyLLC/innervoice/internal/resilience"
	"github.com/iTherapyLLC/innervoice/internal/resolve"
	"github.com/iTherapyLLC/innervoice/internal/resolve/arbiter"
	"github.com/iTherapyLLC/innervoice/internal/resolve/composer"
	"github.com/iTherapyLLC/innervoice/internal/server"
	"github.com/iTherapyLLC/innervoice/pkg/provider/llm"
	"github.com/iTherapyLLC/innervoice/pkg/provider/llm/anyllm"
	oaillm "github.com/iTherapyLLC/innervoice/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "innervoice: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "innervoice: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("innervoice starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdownOtel, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "innervoice",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── LLM provider chain ────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := buildProvider(cfg, reg)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}

	// ── Language table ────────────────────────────────────────────────────────
	codes := append(lang.DefaultCodes(), cfg.Engine.ExtraLanguages...)
	languages, err := lang.NewTable(codes)
	if err != nil {
		slog.Error("invalid language configuration", "err", err)
		return 1
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	engine := buildEngine(cfg, provider, languages)

	// ── HTTP server ───────────────────────────────────────────────────────────
	checkers := []health.Checker{
		{
			Name: "llm",
			Check: func(ctx context.Context) error {
				if provider == nil {
					return errors.New("no LLM provider configured")
				}
				return nil
			},
		},
	}

	srv := server.New(engine, health.New(checkers...), observe.Default(), server.Config{
		ListenAddr:     cfg.Server.ListenAddr,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("shutdown complete")
	return 0
}

// buildProvider instantiates the primary LLM backend and wraps it with the
// configured fallbacks behind per-backend circuit breakers. Returns nil
// when no provider is configured; the engine then degrades every
// escalation to the fixed apology.
func buildProvider(cfg *config.Config, reg *config.Registry) (llm.Provider, error) {
	if cfg.Providers.LLM.Name == "" {
		return nil, nil
	}

	primary, err := reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	if len(cfg.Providers.Fallbacks) == 0 {
		return primary, nil
	}

	chain := resilience.NewLLMFallback(primary, cfg.Providers.LLM.Name, resilience.FallbackConfig{})
	for _, entry := range cfg.Providers.Fallbacks {
		p, err := reg.CreateLLM(entry)
		if err != nil {
			return nil, fmt.Errorf("fallback %q: %w", entry.Name, err)
		}
		chain.AddFallback(entry.Name, p)
	}
	return chain, nil
}

// buildEngine applies the engine tuning knobs from config.
func buildEngine(cfg *config.Config, provider llm.Provider, languages *lang.Table) *resolve.Engine {
	opts := []resolve.Option{
		resolve.WithLanguages(languages),
	}

	var arbOpts []arbiter.Option
	if cfg.Engine.ArbiterMaxTokens > 0 {
		arbOpts = append(arbOpts, arbiter.WithMaxTokens(cfg.Engine.ArbiterMaxTokens))
	}
	if cfg.Engine.ArbiterTemperature > 0 {
		arbOpts = append(arbOpts, arbiter.WithTemperature(cfg.Engine.ArbiterTemperature))
	}
	if len(arbOpts) > 0 {
		opts = append(opts, resolve.WithArbiter(arbiter.New(provider, arbOpts...)))
	}

	if cfg.Engine.FallbackMaxTokens > 0 {
		opts = append(opts, resolve.WithComposer(
			composer.New(provider, composer.WithFallbackMaxTokens(cfg.Engine.FallbackMaxTokens))))
	}
	if cfg.Engine.SuggestionLimit > 0 {
		opts = append(opts, resolve.WithSuggestionLimit(cfg.Engine.SuggestionLimit))
	}

	return resolve.New(provider, opts...)
}

// registerBuiltinProviders wires the provider names the config understands
// to their constructors. "openai-native" uses the dedicated OpenAI SDK;
// every other name goes through the any-llm-go universal backend.
func registerBuiltinProviders(reg *config.Registry) {
	anyNames := []string{
		"openai", "anthropic", "gemini", "ollama", "deepseek",
		"mistral", "groq", "llamacpp", "llamafile",
	}
	for _, name := range anyNames {
		name := name
		reg.RegisterLLM(name, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(name, entry.Model, opts...)
		})
	}

	reg.RegisterLLM("openai-native", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	})
}

// newLogger builds the default slog text logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
