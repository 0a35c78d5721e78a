// Package resolve implements the staged command resolution pipeline: an
// utterance is normalized, tried against the deterministic grammar table,
// escalated to the language-model arbiter when it looks like an unresolved
// delete or update, and finally handed to the conversational fallback.
//
// Every stage ends in a textual response. Grammar misses are not errors;
// arbiter failures fold into "no resolution"; and a failed fallback
// completion degrades to a fixed apology. The engine holds no mutable state
// across requests (the board arrives as a per-call snapshot), so
// concurrent Resolve calls are safe without locking.
package resolve

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/command"
	"github.com/iTherapyLLC/innervoice/internal/lang"
	"github.com/iTherapyLLC/innervoice/internal/observe"
	"github.com/iTherapyLLC/innervoice/internal/resolve/arbiter"
	"github.com/iTherapyLLC/innervoice/internal/resolve/composer"
	"github.com/iTherapyLLC/innervoice/internal/resolve/grammar"
	"github.com/iTherapyLLC/innervoice/internal/resolve/suggest"
	"github.com/iTherapyLLC/innervoice/pkg/provider/llm"
)

const defaultSuggestionLimit = 3

// Request is one utterance plus the board snapshot it applies to.
type Request struct {
	Utterance string
	Snapshot  board.Snapshot
}

// Result is the terminal outcome of one request: a resolved command (nil on
// conversational fallback or arbiter failure) and the response text. Text
// is never empty.
type Result struct {
	Command *command.Command
	Text    string
}

// Option is a functional option for an [Engine].
type Option func(*Engine)

// WithLanguages replaces the default supported-language table.
func WithLanguages(t *lang.Table) Option {
	return func(e *Engine) {
		e.langs = t
	}
}

// WithMetrics sets the metrics sink. Default: [observe.Default].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSuggestionLimit caps "did you mean" suggestion lists. Default: 3.
func WithSuggestionLimit(n int) Option {
	return func(e *Engine) {
		e.suggestionLimit = n
	}
}

// WithArbiter replaces the arbiter client, e.g. to tune its token budget.
func WithArbiter(c *arbiter.Client) Option {
	return func(e *Engine) {
		e.arbiter = c
	}
}

// WithComposer replaces the composer, e.g. to tune the fallback budget.
func WithComposer(c *composer.Composer) Option {
	return func(e *Engine) {
		e.composer = c
	}
}

// Engine is the staged resolution pipeline. It is read-only after
// construction and safe for concurrent use.
type Engine struct {
	grammar         *grammar.Matcher
	arbiter         *arbiter.Client
	composer        *composer.Composer
	langs           *lang.Table
	metrics         *observe.Metrics
	suggestionLimit int
}

// New builds an Engine around the given LLM provider, which backs both the
// arbiter and the conversational fallback.
func New(provider llm.Provider, opts ...Option) *Engine {
	e := &Engine{
		grammar:         grammar.New(),
		arbiter:         arbiter.New(provider),
		composer:        composer.New(provider),
		langs:           lang.Default(),
		suggestionLimit: defaultSuggestionLimit,
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.Default()
	}
	return e
}

// Resolve runs the full pipeline for one utterance.
func (e *Engine) Resolve(ctx context.Context, req Request) Result {
	ctx, span := observe.StartSpan(ctx, "resolve")
	defer span.End()
	start := time.Now()

	utterance := Normalize(req.Utterance)
	if utterance == "" {
		return Result{Text: "I didn't hear anything — could you try again?"}
	}

	// Stage 1: deterministic grammars.
	if cmd, rule := e.grammar.Match(utterance, req.Snapshot, e.langs); cmd != nil {
		e.metrics.RecordGrammarMatch(ctx, rule)
		e.metrics.RecordResolve(ctx, "grammar", time.Since(start).Seconds())
		if cmd.Failed() && len(cmd.Suggestions) == 0 {
			cmd.Suggestions = suggest.Labels(utterance, req.Snapshot.Buttons, e.suggestionLimit)
		}
		slog.Debug("grammar resolved utterance", "rule", rule, "kind", cmd.Kind)
		return Result{Command: cmd, Text: e.composer.Confirm(cmd)}
	}

	// Stage 2: arbiter, only for delete/update-shaped utterances.
	if intent := arbiter.DetectIntent(utterance); intent != arbiter.IntentNone {
		if res := e.runArbiter(ctx, utterance, req.Snapshot, intent); res != nil {
			e.metrics.RecordResolve(ctx, "arbiter", time.Since(start).Seconds())
			return *res
		}
	}

	// Stage 3: conversational fallback. The reply is returned verbatim
	// with a nil command.
	text := e.composer.Fallback(ctx, utterance, req.Snapshot)
	outcome := "completion"
	if text == "" {
		text = "I'm sorry, I didn't catch that. Could you try saying it another way?"
		outcome = "apology"
	}
	e.metrics.RecordFallback(ctx, outcome)
	e.metrics.RecordResolve(ctx, "conversation", time.Since(start).Seconds())
	return Result{Text: text}
}

// runArbiter performs one arbiter call and maps its outcome. A nil return
// means the arbiter could not help at all (transport or parse failure) and
// the pipeline should continue to the conversational fallback.
func (e *Engine) runArbiter(ctx context.Context, utterance string, snap board.Snapshot, intent arbiter.Intent) *Result {
	res, err := e.arbiter.Resolve(ctx, utterance, snap, intent)
	if err != nil {
		// Folded into "no resolution" — never a request-level error.
		slog.Warn("arbiter unavailable, continuing without it", "error", err)
		e.metrics.RecordArbiter(ctx, "error", 0)
		return nil
	}

	if res.Failed() {
		e.metrics.RecordArbiter(ctx, "failed", 0)
		suggestions := res.Suggestions
		if len(suggestions) == 0 {
			suggestions = suggest.Labels(utterance, snap.Buttons, e.suggestionLimit)
		}
		return &Result{Text: composer.FailureText(res.Err, suggestions)}
	}

	e.metrics.RecordArbiter(ctx, "resolved", res.Confidence)

	kind := command.KindDelete
	if intent == arbiter.IntentUpdate {
		kind = command.KindUpdate
	}
	cmd := &command.Command{
		Kind:              kind,
		TargetID:          res.ButtonID,
		ButtonLabel:       res.ButtonLabel,
		Confidence:        res.Confidence,
		Rationale:         res.Reason,
		ResolvedByArbiter: true,
	}
	return &Result{Command: cmd, Text: e.composer.Confirm(cmd)}
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize trims the utterance, collapses internal whitespace, and strips
// trailing sentence punctuation. Case is preserved because label fragments
// are extracted verbatim; the grammar patterns are case-insensitive.
func Normalize(utterance string) string {
	u := whitespace.ReplaceAllString(strings.TrimSpace(utterance), " ")
	return strings.TrimRight(u, ".!? ")
}
