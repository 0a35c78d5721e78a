// Package arbiter escalates utterances the deterministic grammars could not
// resolve to a language-model backend.
//
// The arbiter is only consulted for delete/update-shaped utterances (see
// [DetectIntent]). It serializes the whole grid (dimensions, a row-by-row
// visual layout, and per-button metadata) together with fixed spatial
// reasoning rules and fuzzy matching hints, and asks the model for a single
// JSON object naming the target button or an explicit failure. Replies are
// parsed defensively; the engine folds every arbiter error into "no
// resolution" so a flaky model can never fail a request.
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/pkg/provider/llm"
)

const (
	defaultMaxTokens   = 300
	defaultTemperature = 0.1
)

// ErrNoProvider is returned by [Client.Resolve] when the client was built
// without a backend. Grammar-only deployments hit this on every escalation.
var ErrNoProvider = errors.New("arbiter: no provider configured")

// Intent classifies what kind of mutation an unresolved utterance looks
// like. The arbiter is only called for IntentDelete and IntentUpdate.
type Intent int

const (
	IntentNone Intent = iota
	IntentDelete
	IntentUpdate
)

// String returns the intent name used in prompts and logs.
func (i Intent) String() string {
	switch i {
	case IntentDelete:
		return "delete"
	case IntentUpdate:
		return "update"
	default:
		return "none"
	}
}

var (
	deleteKeywords = regexp.MustCompile(`(?i)\b(?:delete|remove|get\s+rid\s+of|erase|take\s+away|trash|kill|destroy)\b`)
	updateKeywords = regexp.MustCompile(`(?i)\b(?:change|update|edit|modify)\b`)
	buttonWord     = regexp.MustCompile(`(?i)\bbuttons?\b`)
)

// DetectIntent applies the lexical trigger heuristic: deletion keywords
// alone suffice, update keywords only together with the word "button".
func DetectIntent(utterance string) Intent {
	switch {
	case deleteKeywords.MatchString(utterance):
		return IntentDelete
	case updateKeywords.MatchString(utterance) && buttonWord.MatchString(utterance):
		return IntentUpdate
	default:
		return IntentNone
	}
}

// systemPrompt carries the fixed reasoning rules appended to every grid
// description.
const systemPrompt = `You are a button-targeting assistant for a communication board used by people who rely on it to speak.

Given the board layout and a user request, identify the single button the user wants to act on.

Spatial rules:
- Row 1 is the TOP row; the highest row number is the BOTTOM row.
- Column 1 is the LEFTMOST position in a row.
- "next to X" means the adjacent column in the same row as X.
- "below X" means the same column, one row down. "above X" means one row up.

Matching hints:
- Match meaning, not just exact words: "the hungry button" means a button about being hungry.
- Labels may be abbreviations of the full spoken phrase.
- If several buttons could match, pick the most likely one and lower your confidence.

Respond with ONLY a JSON object, no markdown and no prose. On success:
{"buttonId": "<id>", "buttonLabel": "<label>", "confidence": <0.0-1.0>, "reason": "<one sentence>"}
If you cannot determine the target:
{"buttonId": null, "error": "<why>", "suggestions": ["<label>", "<label>"]}`

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithMaxTokens caps the completion length. Default: 300.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature. Default: 0.1.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// Client issues disambiguation requests against an [llm.Provider]. Safe for
// concurrent use.
type Client struct {
	llm         llm.Provider
	maxTokens   int
	temperature float64
}

// New returns a Client backed by provider.
func New(provider llm.Provider, opts ...Option) *Client {
	c := &Client{
		llm:         provider,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resolve asks the model which button the utterance targets. Any transport
// or parse failure is returned as an error; callers must treat it the same
// as an explicit arbiter failure and never surface it as a request error.
func (c *Client) Resolve(ctx context.Context, utterance string, snap board.Snapshot, intent Intent) (*Resolution, error) {
	if c.llm == nil {
		return nil, ErrNoProvider
	}

	userMsg := fmt.Sprintf("%s\n\nUser request (%s): %q\n\nWhich button does the user mean?",
		DescribeGrid(snap), intent, utterance)

	resp, err := c.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: userMsg},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("arbiter: complete: %w", err)
	}

	r, err := ParseResolution(resp.Content)
	if err != nil {
		slog.Debug("arbiter: unparseable reply", "error", err, "reply_len", len(resp.Content))
		return nil, err
	}
	return r, nil
}

// DescribeGrid serializes the board for the model: dimensions, a row-by-row
// left-to-right layout of labels, and a per-button detail list.
func DescribeGrid(snap board.Snapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Board: %d rows x %d columns, %d buttons total.\n\n",
		snap.Grid.Rows, snap.Grid.Columns, len(snap.Buttons))

	sb.WriteString("Visual layout (left to right):\n")
	for row := 1; row <= snap.Grid.Rows; row++ {
		labels := rowLabels(snap.Buttons, row)
		if len(labels) == 0 {
			fmt.Fprintf(&sb, "Row %d: (empty)\n", row)
			continue
		}
		fmt.Fprintf(&sb, "Row %d: %s\n", row, strings.Join(labels, " | "))
	}

	sb.WriteString("\nButton details:\n")
	for _, b := range snap.Buttons {
		fmt.Fprintf(&sb, "- id=%s label=%q row=%d col=%d", b.ID, b.Label, b.Row, b.Col)
		if b.Color != "" {
			fmt.Fprintf(&sb, " color=%s", b.Color)
		}
		if b.Category != "" {
			fmt.Fprintf(&sb, " category=%s", b.Category)
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// rowLabels returns the labels of one row sorted by column ascending.
func rowLabels(buttons []board.Button, row int) []string {
	var inRow []board.Button
	for _, b := range buttons {
		if b.Row == row {
			inRow = append(inRow, b)
		}
	}
	sort.Slice(inRow, func(i, j int) bool { return inRow[i].Col < inRow[j].Col })

	labels := make([]string, len(inRow))
	for i, b := range inRow {
		labels[i] = b.Label
	}
	return labels
}
