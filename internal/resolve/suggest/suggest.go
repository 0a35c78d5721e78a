// Package suggest ranks candidate button labels for "did you mean"
// responses using Jaro-Winkler string similarity. It serves the failure
// surfaces only (arbiter misses and explicit resolution errors) and never
// participates in deterministic matching, which stays substring-based and
// explainable.
//
// Queries arrive as whole utterances ("get rid of the hungry one"), so
// command verbs and filler words are stripped and the remaining tokens are
// compared fragment-wise against each label. Whole-utterance similarity
// alone would rarely clear the floor for sentence-length input.
package suggest

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/iTherapyLLC/innervoice/internal/board"
)

// minScore is the Jaro-Winkler floor below which a label is not worth
// suggesting.
const minScore = 0.55

// stopwords are command verbs, articles, and fillers that never identify a
// button. They mirror the lexical triggers the escalation heuristic keys on.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "my": {}, "me": {}, "i": {}, "it": {}, "is": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"with": {}, "and": {}, "or": {}, "one": {}, "ones": {}, "thing": {},
	"things": {}, "some": {}, "want": {}, "need": {}, "like": {},
	"get": {}, "rid": {}, "take": {}, "away": {}, "erase": {},
	"delete": {}, "remove": {}, "trash": {}, "kill": {}, "destroy": {},
	"change": {}, "update": {}, "edit": {}, "modify": {},
	"button": {}, "buttons": {}, "please": {},
	"row": {}, "column": {}, "position": {},
}

// Labels returns up to max button labels ranked by similarity to query,
// best first. Duplicate labels collapse to their best-scoring occurrence.
func Labels(query string, buttons []board.Button, max int) []string {
	q := significant(query)
	if q == "" || max <= 0 {
		return nil
	}

	type scored struct {
		label string
		score float64
	}
	best := make(map[string]float64)
	for _, b := range buttons {
		label := strings.TrimSpace(b.Label)
		if label == "" {
			continue
		}
		s := score(q, label, b.Text)
		if s < minScore {
			continue
		}
		if s > best[label] {
			best[label] = s
		}
	}

	ranked := make([]scored, 0, len(best))
	for label, s := range best {
		ranked = append(ranked, scored{label, s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].label < ranked[j].label
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.label
	}
	return out
}

// score is the best fragment similarity of the query against the label and
// the spoken text.
func score(q, label, text string) float64 {
	s := fragmentScore(q, significant(label))
	if text != "" {
		if ts := fragmentScore(q, significant(text)); ts > s {
			s = ts
		}
	}
	return s
}

// fragmentScore slides a token window of the candidate's word count across
// the query and keeps the highest Jaro-Winkler similarity, so a
// sentence-length query is judged by its closest fragment rather than the
// whole phrase.
func fragmentScore(q, candidate string) float64 {
	if candidate == "" {
		return 0
	}
	s := matchr.JaroWinkler(q, candidate, false)

	words := strings.Fields(q)
	n := len(strings.Fields(candidate))
	for i := 0; i+n <= len(words); i++ {
		frag := strings.Join(words[i:i+n], " ")
		if fs := matchr.JaroWinkler(frag, candidate, false); fs > s {
			s = fs
		}
	}
	return s
}

// significant lowercases s and drops stopwords. When nothing survives the
// filter the lowercased original is returned, so short labels like "One"
// stay comparable.
func significant(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	kept := fields[:0]
	for _, f := range fields {
		if _, ok := stopwords[f]; !ok {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return strings.Join(fields, " ")
	}
	return strings.Join(kept, " ")
}
