// Package coref recovers "delete it" style references from recent
// conversation turns.
//
// The resolver walks the history newest to oldest looking for an assistant
// turn that announced a button creation ("I made a button for …") and maps
// the announced label back onto the live collection by exact label or
// spoken-text equality. When no conversational reference resolves, the most
// recently added custom button is used instead; built-in buttons never
// enter the fallback because they are not created through this path.
package coref

import (
	"regexp"
	"strings"

	"github.com/iTherapyLLC/innervoice/internal/board"
)

// creationPattern extracts the announced label from an assistant turn such
// as `I made a button for "I'm thirsty"` or "Created a new button that says
// help me". The capture stops at sentence punctuation.
// Apostrophes stay inside the capture so contractions ("I'm thirsty")
// survive; wrapping quotes are trimmed afterwards.
var creationPattern = regexp.MustCompile(
	`(?i)(?:made|created|added)(?:\s+(?:a|another|your))?(?:\s+new)?\s+button` +
		`(?:\s+(?:for|that\s+says|saying|called|labeled|labelled))?\s*[:"'\x60]?\s*([^".!?\x60]+)`)

// Result is a resolved coreference target.
type Result struct {
	Button board.Button

	// FromConversation is true when the target was recovered from an
	// assistant turn; false when the positional fallback fired.
	FromConversation bool
}

// Resolve finds the button an "it"/"that one" utterance refers to.
//
// Returns false when neither the conversation nor the custom-button
// collection yields a target; the caller must then treat the grammar as a
// miss and continue, never emit a partial command.
func Resolve(history []board.ConversationTurn, snap board.Snapshot) (Result, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != board.RoleAssistant {
			continue
		}
		m := creationPattern.FindStringSubmatch(turn.Content)
		if m == nil {
			continue
		}
		label := strings.Trim(strings.TrimSpace(m[1]), "'\"`")
		if label == "" {
			continue
		}
		if b, ok := byExactLabel(label, snap.Buttons); ok {
			return Result{Button: b, FromConversation: true}, true
		}
		// The announced button no longer exists under that label; keep
		// scanning older turns before giving up on the history.
	}

	custom := snap.CustomButtons()
	if len(custom) == 0 {
		return Result{}, false
	}
	return Result{Button: custom[len(custom)-1]}, true
}

// byExactLabel matches label against the collection by case-insensitive
// label or spoken-text equality only. Substring matching would risk
// deleting the wrong button off a vague announcement.
func byExactLabel(label string, buttons []board.Button) (board.Button, bool) {
	for _, b := range buttons {
		if strings.EqualFold(strings.TrimSpace(b.Label), label) ||
			strings.EqualFold(strings.TrimSpace(b.Text), label) {
			return b, true
		}
	}
	return board.Button{}, false
}
