// Package lang provides the supported-language table used to validate
// change-language utterances. Codes are canonicalized as BCP 47 tags and
// display names come from the Unicode CLDR data via golang.org/x/text, so
// "switch to Spanish", "switch to es" and "switch to ES" all resolve to the
// same entry while unknown tokens (e.g. "Klingon") match nothing.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// defaultCodes is the language set shipped with the board.
var defaultCodes = []string{
	"en", "es", "fr", "de", "it", "pt", "zh", "ja", "ko",
	"ar", "hi", "ru", "vi", "tl",
}

// Language is one supported language: a canonical BCP 47 code plus its
// English display name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Table is a case-insensitive lookup over supported languages. It is
// read-only after construction and safe for concurrent use.
type Table struct {
	langs []Language
	byKey map[string]Language
}

// NewTable builds a [Table] from BCP 47 codes. Codes that do not parse are
// rejected so a config typo fails loudly at startup rather than silently
// shrinking the table.
func NewTable(codes []string) (*Table, error) {
	t := &Table{byKey: make(map[string]Language, len(codes)*2)}
	namer := display.English.Languages()

	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("lang: parse %q: %w", code, err)
		}
		l := Language{Code: tag.String(), Name: namer.Name(tag)}
		if _, dup := t.byKey[strings.ToLower(l.Code)]; dup {
			continue
		}
		t.langs = append(t.langs, l)
		t.byKey[strings.ToLower(l.Code)] = l
		t.byKey[strings.ToLower(l.Name)] = l
	}
	return t, nil
}

// Default returns the table for [defaultCodes]. It panics on error because
// the default set is static and known to parse.
func Default() *Table {
	t, err := NewTable(defaultCodes)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultCodes returns a copy of the built-in language codes, e.g. for
// appending config-supplied extras before calling [NewTable].
func DefaultCodes() []string {
	out := make([]string, len(defaultCodes))
	copy(out, defaultCodes)
	return out
}

// Lookup resolves token to a supported language by case-insensitive code or
// display name. A miss means the change-language grammar must not match.
func (t *Table) Lookup(token string) (Language, bool) {
	l, ok := t.byKey[strings.ToLower(strings.TrimSpace(token))]
	return l, ok
}

// All returns the supported languages in table order.
func (t *Table) All() []Language {
	out := make([]Language, len(t.langs))
	copy(out, t.langs)
	return out
}
