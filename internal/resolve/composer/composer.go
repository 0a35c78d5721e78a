// Package composer turns a resolved command into the confirmation text shown
// (and spoken) to the user, and handles the conversational fallback when
// nothing resolved at all.
//
// Confirmation templates are deterministic: one fixed template per command
// variant, interpolating only payload fields. Provenance flags never change
// the confirmation: how a delete target was found matters to the UI layer
// above, not to the sentence confirming it. Only the total-non-resolution
// path touches the language model.
package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/command"
	"github.com/iTherapyLLC/innervoice/internal/resolve/arbiter"
	"github.com/iTherapyLLC/innervoice/pkg/provider/llm"
)

const (
	defaultFallbackTokens = 250

	// apology is the terminal degradation when even the fallback
	// completion fails.
	apology = "I'm sorry, I didn't catch that. Could you try saying it another way?"
)

// fallbackSystemPrompt frames the open-ended completion used when no
// command resolved.
const fallbackSystemPrompt = `You are the helpful assistant inside a communication board app. The user speaks through buttons on a grid; you help them manage the board.

You can: create buttons, delete buttons (by name or grid position), change icons, switch languages, change the voice, show visual stories, focus the board on a single word, restore hidden buttons, and show usage stats.

The user's message did not match any of those actions. Reply in one or two short, warm sentences. If they seem to want one of your capabilities, tell them how to phrase it.`

// Option is a functional option for a [Composer].
type Option func(*Composer)

// WithFallbackMaxTokens caps the conversational fallback completion length.
// Default: 250.
func WithFallbackMaxTokens(n int) Option {
	return func(c *Composer) {
		c.fallbackTokens = n
	}
}

// Composer renders confirmations and conversational fallbacks. Safe for
// concurrent use.
type Composer struct {
	llm            llm.Provider
	fallbackTokens int
}

// New returns a Composer. provider is only used for the fallback path and
// may be nil in tests that never reach it.
func New(provider llm.Provider, opts ...Option) *Composer {
	c := &Composer{llm: provider, fallbackTokens: defaultFallbackTokens}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FailureText renders an explicit resolution failure: the message followed
// by its "did you mean" labels when any were found. Both failure surfaces
// (grammar-stage errors and arbiter misses) go through here so they read
// the same to the user.
func FailureText(msg string, suggestions []string) string {
	msg = strings.TrimSpace(msg)
	if len(suggestions) == 0 {
		return msg
	}
	return strings.TrimSpace(fmt.Sprintf("%s Did you mean: %s?", msg, strings.Join(suggestions, ", ")))
}

// Confirm maps a resolved command to its confirmation sentence. Explicit
// resolution errors surface their own message text plus any attached
// suggestions.
func (c *Composer) Confirm(cmd *command.Command) string {
	if cmd.Failed() {
		return FailureText(cmd.Error, cmd.Suggestions)
	}

	switch cmd.Kind {
	case command.KindCreate:
		return fmt.Sprintf("I made a button for %q. Tap it to say it out loud!", cmd.Phrase)
	case command.KindDelete:
		return fmt.Sprintf("Okay, I deleted the %q button.", cmd.ButtonLabel)
	case command.KindUpdate:
		return fmt.Sprintf("I updated the %q button.", cmd.ButtonLabel)
	case command.KindNavigate:
		return fmt.Sprintf("Taking you to %s.", cmd.Page)
	case command.KindChangeVoice:
		if cmd.Voice != "" {
			return fmt.Sprintf("Switched the voice to %s.", cmd.Voice)
		}
		return "Switched to the next voice."
	case command.KindChangeLanguage:
		return fmt.Sprintf("The board now speaks %s.", cmd.LanguageName)
	case command.KindChangeIcon:
		return fmt.Sprintf("Let's pick a new icon for the %q button.", cmd.ButtonLabel)
	case command.KindFocusOnWord:
		return fmt.Sprintf("Focusing the board on the word %q.", cmd.Word)
	case command.KindRestoreAll:
		return "All your buttons are back."
	case command.KindShowStory:
		return fmt.Sprintf("Here's a story about %s.", cmd.Topic)
	case command.KindToggleWatchFirst:
		return "Watch-first mode toggled."
	case command.KindToggleModelMode:
		return "Modeling mode toggled."
	case command.KindShowStats:
		return "Here are your stats."
	case command.KindShowMeHow:
		if cmd.Topic != "" {
			return fmt.Sprintf("Let me show you how to %s.", cmd.Topic)
		}
		return "Let me show you how."
	case command.KindGetSuggestion:
		return "Here's something you could say."
	case command.KindHelp:
		return "You can ask me to make buttons, delete buttons, switch languages, change the voice, tell stories, and more."
	case command.KindConversation:
		return ""
	default:
		return ""
	}
}

// Fallback produces the open-ended conversational reply for an utterance
// nothing could resolve. The grid context and capability list travel in the
// prompt so the model can steer the user toward a phrasing that works. A
// failed completion degrades to a fixed apology, never an error.
func (c *Composer) Fallback(ctx context.Context, utterance string, snap board.Snapshot) string {
	if c.llm == nil {
		return apology
	}

	var sb strings.Builder
	sb.WriteString(arbiter.DescribeGrid(snap))
	sb.WriteString("\nUser said: ")
	sb.WriteString(utterance)

	resp, err := c.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: fallbackSystemPrompt,
		MaxTokens:    c.fallbackTokens,
		Messages: []llm.Message{
			{Role: "user", Content: sb.String()},
		},
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return apology
	}
	return strings.TrimSpace(resp.Content)
}
