package arbiter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when the reply contains no balanced JSON object.
var ErrNoJSON = errors.New("arbiter: no JSON object in reply")

// Resolution is the typed outcome of one arbiter call: either a resolved
// target (ButtonID non-empty) or an explicit failure (Err non-empty,
// optionally with candidate suggestions).
type Resolution struct {
	ButtonID    string
	ButtonLabel string
	Confidence  float64
	Reason      string

	Err         string
	Suggestions []string
}

// Failed reports whether the arbiter could not determine a target.
func (r *Resolution) Failed() bool {
	return r.ButtonID == ""
}

// wireResolution is the JSON shape the model is instructed to return.
// ButtonID is a pointer because the failure shape carries an explicit null.
type wireResolution struct {
	ButtonID    *string  `json:"buttonId"`
	ButtonLabel string   `json:"buttonLabel"`
	Confidence  float64  `json:"confidence"`
	Reason      string   `json:"reason"`
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions"`
}

// ParseResolution extracts the first balanced-brace substring from the raw
// model reply and decodes it. A reply with neither a buttonId nor an error
// field is a parse failure; callers treat any error identically to an
// explicit arbiter failure.
func ParseResolution(raw string) (*Resolution, error) {
	obj, ok := extractJSON(raw)
	if !ok {
		return nil, ErrNoJSON
	}

	var w wireResolution
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return nil, fmt.Errorf("arbiter: decode reply: %w", err)
	}

	r := &Resolution{
		ButtonLabel: w.ButtonLabel,
		Confidence:  w.Confidence,
		Reason:      w.Reason,
		Err:         w.Error,
		Suggestions: w.Suggestions,
	}
	if w.ButtonID != nil {
		r.ButtonID = strings.TrimSpace(*w.ButtonID)
	}

	if r.ButtonID == "" && r.Err == "" {
		return nil, fmt.Errorf("arbiter: reply has neither buttonId nor error")
	}
	return r, nil
}

// extractJSON returns the first balanced-brace substring of s. Models often
// wrap the object in prose or markdown fences; scanning for brace balance
// is more robust than trimming known decorations. Braces inside JSON
// strings are skipped.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
