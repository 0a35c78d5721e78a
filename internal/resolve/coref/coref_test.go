package coref_test

import (
	"testing"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/resolve/coref"
)

func snap(buttons ...board.Button) board.Snapshot {
	return board.Snapshot{Buttons: buttons}
}

func TestResolve_FromAnnouncement(t *testing.T) {
	t.Parallel()

	s := snap(
		board.Button{ID: "w", Label: "Water", Custom: true},
		board.Button{ID: "t", Label: "I'm thirsty", Custom: true},
	)
	history := []board.ConversationTurn{
		{Role: board.RoleUser, Content: "make a button that says I'm thirsty"},
		{Role: board.RoleAssistant, Content: `I made a button for "I'm thirsty"`},
	}

	r, ok := coref.Resolve(history, s)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if r.Button.ID != "t" {
		t.Errorf("resolved %q, want t", r.Button.ID)
	}
	if !r.FromConversation {
		t.Error("expected FromConversation to be set")
	}
}

func TestResolve_NewestAnnouncementWins(t *testing.T) {
	t.Parallel()

	s := snap(
		board.Button{ID: "old", Label: "Help", Custom: true},
		board.Button{ID: "new", Label: "More", Custom: true},
	)
	history := []board.ConversationTurn{
		{Role: board.RoleAssistant, Content: "Created a new button called Help"},
		{Role: board.RoleAssistant, Content: "Created a new button called More"},
	}

	r, ok := coref.Resolve(history, s)
	if !ok || r.Button.ID != "new" {
		t.Fatalf("resolved %+v, %v; want the most recent announcement (new)", r, ok)
	}
}

func TestResolve_AnnouncedLabelGoneFallsBack(t *testing.T) {
	t.Parallel()

	// The announced button was already renamed or deleted; resolution
	// falls back to the last custom button.
	s := snap(
		board.Button{ID: "keep", Label: "Keep me", Custom: true},
	)
	history := []board.ConversationTurn{
		{Role: board.RoleAssistant, Content: "I added a button saying vanished"},
	}

	r, ok := coref.Resolve(history, s)
	if !ok {
		t.Fatal("expected positional fallback to fire")
	}
	if r.Button.ID != "keep" {
		t.Errorf("resolved %q, want keep", r.Button.ID)
	}
	if r.FromConversation {
		t.Error("positional fallback must not claim a conversational source")
	}
}

func TestResolve_UserTurnsIgnored(t *testing.T) {
	t.Parallel()

	s := snap(
		board.Button{ID: "trap", Label: "Trap", Custom: true},
		board.Button{ID: "last", Label: "Last", Custom: true},
	)
	// Only the user mentions a creation; assistant never announced one.
	history := []board.ConversationTurn{
		{Role: board.RoleUser, Content: "you made a button for Trap, right?"},
	}

	r, ok := coref.Resolve(history, s)
	if !ok || r.Button.ID != "last" {
		t.Fatalf("resolved %+v, %v; want positional fallback to last", r, ok)
	}
}

func TestResolve_NoHistoryNoCustom(t *testing.T) {
	t.Parallel()

	s := snap(board.Button{ID: "builtin", Label: "Yes"})

	if _, ok := coref.Resolve(nil, s); ok {
		t.Error("expected no resolution with empty history and no custom buttons")
	}
}

func TestResolve_BuiltinsNeverEnterFallback(t *testing.T) {
	t.Parallel()

	s := snap(
		board.Button{ID: "b1", Label: "Yes"},
		board.Button{ID: "c1", Label: "Mine", Custom: true},
		board.Button{ID: "b2", Label: "No"},
	)

	r, ok := coref.Resolve(nil, s)
	if !ok || r.Button.ID != "c1" {
		t.Fatalf("resolved %+v, %v; want the only custom button c1", r, ok)
	}
}
