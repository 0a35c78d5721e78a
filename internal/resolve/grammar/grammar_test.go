package grammar_test

import (
	"testing"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/command"
	"github.com/iTherapyLLC/innervoice/internal/lang"
	"github.com/iTherapyLLC/innervoice/internal/resolve/grammar"
)

// snap2x3 is a 2-row, 3-column board labelled A..F in row-major order.
func snap2x3() board.Snapshot {
	return board.Snapshot{
		Buttons: []board.Button{
			{ID: "a", Label: "A", Row: 1, Col: 1, Index: 1},
			{ID: "b", Label: "B", Row: 1, Col: 2, Index: 2},
			{ID: "c", Label: "C", Row: 1, Col: 3, Index: 3},
			{ID: "d", Label: "D", Row: 2, Col: 1, Index: 4},
			{ID: "e", Label: "E", Row: 2, Col: 2, Index: 5},
			{ID: "f", Label: "F", Row: 2, Col: 3, Index: 6},
		},
		Grid: board.GridInfo{Rows: 2, Columns: 3, TotalButtons: 6},
	}
}

func match(t *testing.T, utterance string, snap board.Snapshot) (*command.Command, string) {
	t.Helper()
	return grammar.New().Match(utterance, snap, lang.Default())
}

func TestMatch_DeleteSecondButtonInLastRow(t *testing.T) {
	t.Parallel()

	cmd, rule := match(t, "delete the second button in the last row", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if rule != "delete-grid-position" {
		t.Errorf("rule = %q, want delete-grid-position", rule)
	}
	if cmd.Kind != command.KindDelete || cmd.TargetID != "e" {
		t.Errorf("resolved %q (%s), want button e", cmd.TargetID, cmd.Kind)
	}
	if cmd.Row != 2 || cmd.Col != 2 {
		t.Errorf("coordinates = (%d,%d), want (2,2)", cmd.Row, cmd.Col)
	}
	if !cmd.IsGridPosition {
		t.Error("expected IsGridPosition")
	}
}

func TestMatch_DeleteMiddleButtonInTopRow(t *testing.T) {
	t.Parallel()

	cmd, _ := match(t, "delete the middle button in the top row", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	// 3 buttons in row 1: middle is position 2.
	if cmd.TargetID != "b" {
		t.Errorf("resolved %q, want b", cmd.TargetID)
	}
}

func TestMatch_DeleteByPosition(t *testing.T) {
	t.Parallel()

	cmd, rule := match(t, "remove the button in position 5", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if rule != "delete-position" {
		t.Errorf("rule = %q, want delete-position", rule)
	}
	if cmd.TargetID != "e" || cmd.Position != 5 {
		t.Errorf("resolved %q at position %d, want e at 5", cmd.TargetID, cmd.Position)
	}
}

func TestMatch_DeleteRowColumn(t *testing.T) {
	t.Parallel()

	cmd, _ := match(t, "delete the button at row 2, column 3", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if cmd.TargetID != "f" {
		t.Errorf("resolved %q, want f", cmd.TargetID)
	}
}

func TestMatch_ColumnOutOfRangeErrors(t *testing.T) {
	t.Parallel()

	cmd, _ := match(t, "delete the fifth button in the first row", snap2x3())
	if cmd == nil {
		t.Fatal("expected an error command, not a miss")
	}
	if !cmd.Failed() {
		t.Fatalf("expected a failed command, got target %q", cmd.TargetID)
	}
	if cmd.Error != `Row 1 only has 3 buttons, so I can't find the "fifth" one.` {
		t.Errorf("error = %q", cmd.Error)
	}
}

func TestMatch_UnknownRowDefaultsToLast(t *testing.T) {
	t.Parallel()

	// "purple" is not a row descriptor; the grammar defaults to the last
	// row rather than failing.
	cmd, _ := match(t, "delete the first button in the purple row", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if cmd.TargetID != "d" {
		t.Errorf("resolved %q, want d (first button of last row)", cmd.TargetID)
	}
}

func TestMatch_GridRulesDeclineWithoutDimensions(t *testing.T) {
	t.Parallel()

	snap := board.Snapshot{
		Buttons: []board.Button{
			{ID: "w", Label: "Water", Row: 1, Col: 1, Index: 1},
			{ID: "h", Label: "Help", Row: 1, Col: 2, Index: 2},
		},
	}

	// Without valid dimensions the spatial rule declines; the trailing
	// delete-by-label rule then tries the whole fragment and misses.
	cmd, _ := match(t, "delete the second button in the last row", snap)
	if cmd != nil {
		t.Errorf("expected no match without grid dimensions, got %+v", cmd)
	}
}

func TestMatch_DeleteByLabelExact(t *testing.T) {
	t.Parallel()

	snap := board.Snapshot{
		Buttons: []board.Button{
			{ID: "w", Label: "Water", Text: "I want water"},
			{ID: "h", Label: "Help", Text: "I need help"},
		},
		Grid: board.GridInfo{Rows: 1, Columns: 2},
	}

	cmd, rule := match(t, `delete the "Water" button`, snap)
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if rule != "delete-by-label" {
		t.Errorf("rule = %q, want delete-by-label", rule)
	}
	if cmd.TargetID != "w" || cmd.FuzzyMatch {
		t.Errorf("resolved %q (fuzzy=%v), want exact w", cmd.TargetID, cmd.FuzzyMatch)
	}
}

func TestMatch_DeleteByLabelFuzzyFlagged(t *testing.T) {
	t.Parallel()

	snap := board.Snapshot{
		Buttons: []board.Button{
			{ID: "ty", Label: "Thank you very much"},
		},
		Grid: board.GridInfo{Rows: 1, Columns: 1},
	}

	cmd, _ := match(t, "get rid of the thank you button", snap)
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if cmd.TargetID != "ty" {
		t.Errorf("resolved %q, want ty", cmd.TargetID)
	}
	if !cmd.FuzzyMatch {
		t.Error("substring resolution must set FuzzyMatch")
	}
}

func TestMatch_DeleteContextual(t *testing.T) {
	t.Parallel()

	snap := board.Snapshot{
		Buttons: []board.Button{
			{ID: "w", Label: "Water"},
			{ID: "t", Label: "I'm thirsty", Custom: true},
		},
		Grid: board.GridInfo{Rows: 1, Columns: 2},
		History: []board.ConversationTurn{
			{Role: board.RoleAssistant, Content: `I made a button for "I'm thirsty"`},
		},
	}

	cmd, rule := match(t, "delete it", snap)
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if rule != "delete-contextual" {
		t.Errorf("rule = %q, want delete-contextual", rule)
	}
	if cmd.TargetID != "t" || !cmd.FromConversation {
		t.Errorf("resolved %q (conv=%v), want t from conversation", cmd.TargetID, cmd.FromConversation)
	}
}

func TestMatch_ContextualDeclinesWithNoTarget(t *testing.T) {
	t.Parallel()

	snap := board.Snapshot{
		Buttons: []board.Button{{ID: "b", Label: "Builtin"}},
		Grid:    board.GridInfo{Rows: 1, Columns: 1},
	}

	// No history and no custom buttons: the contextual rule declines, and
	// "it" falls through delete-by-label without a fuzzy hit.
	cmd, _ := match(t, "delete it", snap)
	if cmd != nil {
		t.Errorf("expected no match, got %+v", cmd)
	}
}

func TestMatch_CreateButton(t *testing.T) {
	t.Parallel()

	cases := []struct {
		utterance string
		phrase    string
	}{
		{`make a button that says I'm hungry`, "I'm hungry"},
		{`create a new button for "more juice"`, "more juice"},
		{`I need a button for goodbye`, "goodbye"},
	}

	for _, tc := range cases {
		cmd, _ := match(t, tc.utterance, snap2x3())
		if cmd == nil {
			t.Errorf("%q: expected a match", tc.utterance)
			continue
		}
		if cmd.Kind != command.KindCreate || cmd.Phrase != tc.phrase {
			t.Errorf("%q: got kind %s phrase %q, want create %q", tc.utterance, cmd.Kind, cmd.Phrase, tc.phrase)
		}
	}
}

func TestMatch_ChangeLanguage(t *testing.T) {
	t.Parallel()

	cmd, _ := match(t, "switch the language to Spanish", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if cmd.Kind != command.KindChangeLanguage || cmd.LanguageCode != "es" {
		t.Errorf("got kind %s code %q, want change-language es", cmd.Kind, cmd.LanguageCode)
	}
}

func TestMatch_UnknownLanguageFallsThrough(t *testing.T) {
	t.Parallel()

	cmd, _ := match(t, "switch to Klingon", snap2x3())
	if cmd != nil {
		t.Errorf("expected no grammar match for an unsupported language, got %+v", cmd)
	}
}

func TestMatch_ModeToggles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		utterance string
		kind      command.Kind
	}{
		{"watch me first", command.KindToggleWatchFirst},
		{"turn on modeling mode", command.KindToggleModelMode},
		{"show me my stats", command.KindShowStats},
		{"restore all my buttons", command.KindRestoreAll},
		{"what can you do", command.KindHelp},
	}

	for _, tc := range cases {
		cmd, _ := match(t, tc.utterance, snap2x3())
		if cmd == nil {
			t.Errorf("%q: expected a match", tc.utterance)
			continue
		}
		if cmd.Kind != tc.kind {
			t.Errorf("%q: kind = %s, want %s", tc.utterance, cmd.Kind, tc.kind)
		}
	}
}

func TestMatch_ShowMeHowCapturesTopic(t *testing.T) {
	t.Parallel()

	cmd, _ := match(t, "show me how to ask for help", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if cmd.Kind != command.KindShowMeHow || cmd.Topic != "ask for help" {
		t.Errorf("got kind %s topic %q", cmd.Kind, cmd.Topic)
	}
}

func TestMatch_Navigate(t *testing.T) {
	t.Parallel()

	cmd, _ := match(t, "go to the feelings page", snap2x3())
	if cmd == nil {
		t.Fatal("expected a match")
	}
	if cmd.Kind != command.KindNavigate || cmd.Page != "feelings" {
		t.Errorf("got kind %s page %q, want navigate feelings", cmd.Kind, cmd.Page)
	}

	cmd, _ = match(t, "go home", snap2x3())
	if cmd == nil || cmd.Page != "home" {
		t.Fatalf("go home: got %+v", cmd)
	}
}

func TestMatch_NoMatchPlainSpeech(t *testing.T) {
	t.Parallel()

	for _, utterance := range []string{
		"tell me about dinosaurs",
		"it is raining today",
		"",
	} {
		cmd, rule := match(t, utterance, snap2x3())
		if cmd != nil {
			t.Errorf("%q: matched rule %q, want no match", utterance, rule)
		}
	}
}
