package composer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/command"
	"github.com/iTherapyLLC/innervoice/internal/resolve/composer"
	"github.com/iTherapyLLC/innervoice/pkg/provider/llm/mock"
)

func TestConfirm_Templates(t *testing.T) {
	t.Parallel()

	c := composer.New(nil)

	cases := []struct {
		cmd  command.Command
		want string
	}{
		{command.Command{Kind: command.KindCreate, Phrase: "I'm hungry"}, `I made a button for "I'm hungry". Tap it to say it out loud!`},
		{command.Command{Kind: command.KindDelete, TargetID: "x", ButtonLabel: "Water"}, `Okay, I deleted the "Water" button.`},
		{command.Command{Kind: command.KindChangeLanguage, LanguageCode: "es", LanguageName: "Spanish"}, "The board now speaks Spanish."},
		{command.Command{Kind: command.KindNavigate, Page: "feelings"}, "Taking you to feelings."},
		{command.Command{Kind: command.KindChangeVoice, Voice: "Samantha"}, "Switched the voice to Samantha."},
		{command.Command{Kind: command.KindChangeVoice}, "Switched to the next voice."},
		{command.Command{Kind: command.KindFocusOnWord, Word: "more"}, `Focusing the board on the word "more".`},
		{command.Command{Kind: command.KindShowMeHow, Topic: "ask for help"}, "Let me show you how to ask for help."},
	}

	for _, tc := range cases {
		if got := c.Confirm(&tc.cmd); got != tc.want {
			t.Errorf("Confirm(%s) = %q, want %q", tc.cmd.Kind, got, tc.want)
		}
	}
}

func TestConfirm_ProvenanceNeverChangesText(t *testing.T) {
	t.Parallel()

	c := composer.New(nil)

	base := command.Command{Kind: command.KindDelete, TargetID: "x", ButtonLabel: "Water"}
	want := c.Confirm(&base)

	variants := []command.Command{base, base, base}
	variants[0].FuzzyMatch = true
	variants[1].ResolvedByArbiter = true
	variants[2].FromConversation = true

	for i, v := range variants {
		if got := c.Confirm(&v); got != want {
			t.Errorf("variant %d: Confirm = %q, want %q", i, got, want)
		}
	}
}

func TestConfirm_FailedCommandSurfacesError(t *testing.T) {
	t.Parallel()

	c := composer.New(nil)
	cmd := command.Command{
		Kind:  command.KindDelete,
		Error: "There are no buttons in row 3 — the grid has 2 rows.",
	}

	if got := c.Confirm(&cmd); got != cmd.Error {
		t.Errorf("Confirm = %q, want the error text", got)
	}
}

func TestConfirm_FailedCommandAppendsSuggestions(t *testing.T) {
	t.Parallel()

	c := composer.New(nil)
	cmd := command.Command{
		Kind:        command.KindDelete,
		Error:       "No button matches that.",
		Suggestions: []string{"Water", "Juice"},
	}

	if got := c.Confirm(&cmd); got != "No button matches that. Did you mean: Water, Juice?" {
		t.Errorf("Confirm = %q", got)
	}
}

func TestFailureText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg         string
		suggestions []string
		want        string
	}{
		{"No button matches that.", []string{"Water"}, "No button matches that. Did you mean: Water?"},
		{"No button matches that.", nil, "No button matches that."},
		{"", []string{"Water", "Help"}, "Did you mean: Water, Help?"},
	}

	for _, tc := range cases {
		if got := composer.FailureText(tc.msg, tc.suggestions); got != tc.want {
			t.Errorf("FailureText(%q, %v) = %q, want %q", tc.msg, tc.suggestions, got, tc.want)
		}
	}
}

func TestConfirm_AllActionKindsDistinct(t *testing.T) {
	t.Parallel()

	c := composer.New(nil)

	kinds := []command.Kind{
		command.KindCreate, command.KindDelete, command.KindUpdate,
		command.KindNavigate, command.KindChangeVoice, command.KindChangeLanguage,
		command.KindChangeIcon, command.KindFocusOnWord, command.KindRestoreAll,
		command.KindShowStory, command.KindToggleWatchFirst, command.KindToggleModelMode,
		command.KindShowStats, command.KindShowMeHow, command.KindGetSuggestion,
		command.KindHelp,
	}

	seen := make(map[string]command.Kind, len(kinds))
	for _, k := range kinds {
		cmd := command.Command{
			Kind: k, Phrase: "p", ButtonLabel: "l", Page: "pg",
			Voice: "v", LanguageName: "L", Word: "w", Topic: "t",
		}
		got := c.Confirm(&cmd)
		if got == "" {
			t.Errorf("kind %s has no confirmation", k)
			continue
		}
		if prev, dup := seen[got]; dup {
			t.Errorf("kinds %s and %s share confirmation %q", prev, k, got)
		}
		seen[got] = k
	}
}

func TestFallback_UsesModelReply(t *testing.T) {
	t.Parallel()

	p := mock.New("  It sounds like you want a new button — try saying: make a button for pizza.  ")
	c := composer.New(p)

	got := c.Fallback(context.Background(), "I wish I had a pizza thing", board.Snapshot{})
	if got != "It sounds like you want a new button — try saying: make a button for pizza." {
		t.Errorf("Fallback = %q", got)
	}

	req, ok := p.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if !strings.Contains(req.Messages[0].Content, "I wish I had a pizza thing") {
		t.Error("prompt missing the utterance")
	}
	if req.MaxTokens != 250 {
		t.Errorf("MaxTokens = %d, want default 250", req.MaxTokens)
	}
}

func TestFallback_DegradesToApology(t *testing.T) {
	t.Parallel()

	const apology = "I'm sorry, I didn't catch that. Could you try saying it another way?"

	// Transport error.
	p := mock.New()
	p.Err = errors.New("backend down")
	if got := composer.New(p).Fallback(context.Background(), "hm", board.Snapshot{}); got != apology {
		t.Errorf("error path: %q", got)
	}

	// Empty completion.
	if got := composer.New(mock.New("   ")).Fallback(context.Background(), "hm", board.Snapshot{}); got != apology {
		t.Errorf("empty path: %q", got)
	}

	// No provider at all.
	if got := composer.New(nil).Fallback(context.Background(), "hm", board.Snapshot{}); got != apology {
		t.Errorf("nil provider path: %q", got)
	}
}
