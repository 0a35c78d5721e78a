// Package fuzzy resolves a free-text fragment to a single board button.
//
// Matching is intentionally cheap and explainable rather than a similarity
// metric: an exact case-insensitive comparison against label and spoken
// text wins outright, then bidirectional substring containment is tried in
// collection order. Ties resolve to the first occurrence. Substring hits
// are flagged so downstream UI can communicate lower confidence.
package fuzzy

import (
	"strings"

	"github.com/iTherapyLLC/innervoice/internal/board"
)

// Match is a resolved button plus how it was found.
type Match struct {
	Button board.Button

	// Fuzzy is true when the match came from substring containment rather
	// than exact equality.
	Fuzzy bool
}

// Find resolves query against buttons. The exact pass runs over the whole
// collection before any substring comparison, so an exact match always
// beats a substring match regardless of collection order.
func Find(query string, buttons []board.Button) (Match, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Match{}, false
	}

	for _, b := range buttons {
		if strings.EqualFold(strings.TrimSpace(b.Label), q) ||
			strings.EqualFold(strings.TrimSpace(b.Text), q) {
			return Match{Button: b}, true
		}
	}

	for _, b := range buttons {
		if contains(b.Label, q) || contains(b.Text, q) {
			return Match{Button: b, Fuzzy: true}, true
		}
	}

	return Match{}, false
}

// contains reports bidirectional substring containment between a candidate
// field and the lowercased query.
func contains(field, q string) bool {
	f := strings.ToLower(strings.TrimSpace(field))
	if f == "" {
		return false
	}
	return strings.Contains(f, q) || strings.Contains(q, f)
}
