// Package grammar implements deterministic utterance resolution: an ordered
// table of pattern/builder pairs tried in fixed priority order, where the
// first structural match wins.
//
// The order of the table is load-bearing. Mode toggles are checked before
// the generic help grammar because toggle phrasing can contain the word
// "help"; the contextual ("delete it") grammar runs before delete-by-label
// so that pronouns are never fuzzy-matched as labels; and the spatial
// grammars run before delete-by-label so "the second button in the bottom
// row" is resolved geometrically rather than treated as a label fragment.
package grammar

import (
	"regexp"
	"strings"

	"github.com/iTherapyLLC/innervoice/internal/board"
	"github.com/iTherapyLLC/innervoice/internal/command"
	"github.com/iTherapyLLC/innervoice/internal/lang"
	"github.com/iTherapyLLC/innervoice/internal/resolve/coref"
	"github.com/iTherapyLLC/innervoice/internal/resolve/fuzzy"
)

// Input is the per-utterance context handed to rule builders.
type Input struct {
	Utterance string
	Snapshot  board.Snapshot
	Index     *board.Index
	Languages *lang.Table
}

// Rule binds one or more surface patterns to a command builder. Build
// receives the submatch groups of whichever pattern hit; returning ok=false
// means the rule structurally matched but could not complete (e.g. an
// unknown language name), and the matcher continues with the next rule.
type Rule struct {
	Name     string
	Patterns []*regexp.Regexp
	Build    func(in Input, groups []string) (*command.Command, bool)
}

// Matcher evaluates the rule table. It is read-only after construction and
// safe for concurrent use.
type Matcher struct {
	rules []Rule
}

// New builds a Matcher with the default rule table.
func New() *Matcher {
	return &Matcher{rules: defaultRules()}
}

// Match tries every rule in priority order against the normalized utterance
// and returns the first command produced, along with the name of the rule
// that produced it for diagnostics. A nil command means no grammar matched
// and the caller should continue to the arbiter stage.
func (m *Matcher) Match(utterance string, snap board.Snapshot, langs *lang.Table) (*command.Command, string) {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return nil, ""
	}

	in := Input{
		Utterance: trimmed,
		Snapshot:  snap,
		Index:     board.NewIndex(snap.Buttons, snap.Grid),
		Languages: langs,
	}

	for _, r := range m.rules {
		for _, p := range r.Patterns {
			groups := p.FindStringSubmatch(trimmed)
			if groups == nil {
				continue
			}
			cmd, ok := r.Build(in, groups)
			if !ok {
				break // rule declined; try the next rule, not the next pattern
			}
			return cmd, r.Name
		}
	}
	return nil, ""
}

func defaultRules() []Rule {
	return []Rule{
		{
			Name: "toggle-watch-first",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bwatch\s*(?:me\s+)?first\b`),
				regexp.MustCompile(`(?i)\bshow\s+me\s+first\b`),
			},
			Build: func(_ Input, _ []string) (*command.Command, bool) {
				return &command.Command{Kind: command.KindToggleWatchFirst}, true
			},
		},
		{
			Name: "toggle-model-mode",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:turn\s+(?:on|off)\s+)?model(?:ing|ling)?\s+mode\b`),
				regexp.MustCompile(`(?i)\bturn\s+(?:on|off)\s+model(?:ing|ling)?\b`),
			},
			Build: func(_ Input, _ []string) (*command.Command, bool) {
				return &command.Command{Kind: command.KindToggleModelMode}, true
			},
		},
		{
			Name: "show-stats",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bshow\s+(?:me\s+)?(?:my\s+)?(?:stats|statistics|progress)\b`),
				regexp.MustCompile(`(?i)\bhow\s+(?:am\s+i|are\s+we)\s+doing\b`),
			},
			Build: func(_ Input, _ []string) (*command.Command, bool) {
				return &command.Command{Kind: command.KindShowStats}, true
			},
		},
		{
			Name: "show-me-how",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bshow\s+me\s+how(?:\s+(?:to|i)\s+(.+?))?[.?!]?$`),
			},
			Build: func(_ Input, groups []string) (*command.Command, bool) {
				return &command.Command{
					Kind:  command.KindShowMeHow,
					Topic: strings.TrimSpace(groups[1]),
				}, true
			},
		},
		{
			Name: "get-suggestion",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:give\s+me\s+a\s+)?suggest(?:ion)?s?\b`),
				regexp.MustCompile(`(?i)\bwhat\s+(?:should|can)\s+i\s+say\b`),
			},
			Build: func(_ Input, _ []string) (*command.Command, bool) {
				return &command.Command{Kind: command.KindGetSuggestion}, true
			},
		},
		{
			Name: "restore-all",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:restore|bring\s+back|show)\s+all(?:\s+(?:the|my))?\s+buttons\b`),
				regexp.MustCompile(`(?i)\bshow\s+everything\b`),
			},
			Build: func(_ Input, _ []string) (*command.Command, bool) {
				return &command.Command{Kind: command.KindRestoreAll}, true
			},
		},
		{
			Name: "focus-on-word",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:focus\s+on|show\s+only)\s+(?:the\s+word\s+)?["']?([\w' -]+?)["']?[.?!]?$`),
			},
			Build: func(_ Input, groups []string) (*command.Command, bool) {
				word := strings.TrimSpace(groups[1])
				if word == "" {
					return nil, false
				}
				return &command.Command{Kind: command.KindFocusOnWord, Word: word}, true
			},
		},
		{
			Name: "show-story",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:show|tell|make)\s+(?:me\s+)?a\s+(?:visual\s+)?story\s+about\s+(.+?)[.?!]?$`),
			},
			Build: func(_ Input, groups []string) (*command.Command, bool) {
				return &command.Command{
					Kind:  command.KindShowStory,
					Topic: strings.TrimSpace(groups[1]),
				}, true
			},
		},
		{
			Name: "change-language",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:switch|change)\s+(?:the\s+)?language\s+to\s+([A-Za-z-]+)\b`),
				regexp.MustCompile(`(?i)\bswitch\s+to\s+([A-Za-z-]+)\b`),
				regexp.MustCompile(`(?i)\bspeak\s+(?:in\s+)?([A-Za-z-]+)\s*(?:please)?[.?!]?$`),
			},
			Build: func(in Input, groups []string) (*command.Command, bool) {
				// An unrecognized token means this grammar does not match
				// at all; "switch to Klingon" falls through to later
				// stages instead of emitting an invalid command.
				l, ok := in.Languages.Lookup(groups[1])
				if !ok {
					return nil, false
				}
				return &command.Command{
					Kind:         command.KindChangeLanguage,
					LanguageCode: l.Code,
					LanguageName: l.Name,
				}, true
			},
		},
		{
			Name: "create-button",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:create|make|add)\s+(?:a\s+|another\s+)?(?:new\s+)?button\s+(?:for|that\s+says|saying|called|labeled|labelled)\s+["']?(.+?)["']?[.?!]?$`),
				regexp.MustCompile(`(?i)\bi\s+(?:need|want)\s+a\s+button\s+(?:for|that\s+says)\s+["']?(.+?)["']?[.?!]?$`),
			},
			Build: func(_ Input, groups []string) (*command.Command, bool) {
				phrase := strings.TrimSpace(groups[1])
				if phrase == "" {
					return nil, false
				}
				return &command.Command{Kind: command.KindCreate, Phrase: phrase}, true
			},
		},
		{
			Name: "delete-contextual",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:delete|remove)\s+(?:it|that(?:\s+one)?|this\s+one)\b`),
				regexp.MustCompile(`(?i)\b(?:delete|remove)\s+the\s+(?:one|button)\s+(?:i|you)\s+just\s+(?:made|created|added)\b`),
				regexp.MustCompile(`(?i)\b(?:delete|remove)\s+the\s+last\s+one(?:\s+(?:i|you)\s+(?:made|created|added))?\b`),
			},
			Build: func(in Input, _ []string) (*command.Command, bool) {
				res, ok := coref.Resolve(in.Snapshot.History, in.Snapshot)
				if !ok {
					return nil, false
				}
				return &command.Command{
					Kind:             command.KindDelete,
					TargetID:         res.Button.ID,
					ButtonLabel:      res.Button.Label,
					FromConversation: res.FromConversation,
					IsPositional:     !res.FromConversation,
				}, true
			},
		},
		{
			Name: "delete-grid-position",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:delete|remove)\s+the\s+([\w]+)\s+button\s+(?:in|on|of|from)\s+the\s+([\w]+)\s+row\b`),
				regexp.MustCompile(`(?i)\b(?:delete|remove)\s+the\s+([\w]+)\s+button\s+(?:in|on|from)\s+row\s+(\d+)\b`),
			},
			Build: func(in Input, groups []string) (*command.Command, bool) {
				return buildGridDelete(in, groups[1], groups[2])
			},
		},
		{
			Name: "delete-row-column",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:delete|remove)\s+(?:the\s+)?button\s+(?:in|at)\s+row\s+(\d+)\s*,?\s+column\s+(\d+)\b`),
			},
			Build: buildRowColDelete,
		},
		{
			Name: "delete-position",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:delete|remove)\s+(?:the\s+)?button\s+(?:in|at)\s+position\s+(\d+)\b`),
			},
			Build: buildPositionDelete,
		},
		{
			Name: "delete-by-label",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:delete|remove|get\s+rid\s+of|erase)\s+(?:the\s+)?["']?(.+?)["']?\s+button\b`),
				regexp.MustCompile(`(?i)\b(?:delete|remove|get\s+rid\s+of|erase)\s+["'](.+?)["']`),
				regexp.MustCompile(`(?i)^(?:delete|remove|get\s+rid\s+of|erase)\s+(.+?)[.?!]?$`),
			},
			Build: func(in Input, groups []string) (*command.Command, bool) {
				frag := cleanLabelFragment(groups[1])
				if frag == "" {
					return nil, false
				}
				m, ok := fuzzy.Find(frag, in.Snapshot.Buttons)
				if !ok {
					return nil, false
				}
				return &command.Command{
					Kind:        command.KindDelete,
					TargetID:    m.Button.ID,
					ButtonLabel: m.Button.Label,
					FuzzyMatch:  m.Fuzzy,
				}, true
			},
		},
		{
			Name: "change-icon",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:change|update)\s+(?:the\s+)?(?:icon|image|picture)\s+(?:for|on|of)\s+(?:the\s+)?["']?(.+?)["']?(?:\s+button)?[.?!]?$`),
			},
			Build: func(in Input, groups []string) (*command.Command, bool) {
				frag := cleanLabelFragment(groups[1])
				if frag == "" {
					return nil, false
				}
				cmd := &command.Command{Kind: command.KindChangeIcon, ButtonLabel: frag}
				if m, ok := fuzzy.Find(frag, in.Snapshot.Buttons); ok {
					cmd.TargetID = m.Button.ID
					cmd.ButtonLabel = m.Button.Label
					cmd.FuzzyMatch = m.Fuzzy
				}
				return cmd, true
			},
		},
		{
			Name: "navigate",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:go\s+to|open|take\s+me\s+to)\s+(?:the\s+)?([\w ]+?)\s+(?:page|board|tab|screen)\b`),
				regexp.MustCompile(`(?i)\bgo\s+(home|back)\b`),
			},
			Build: func(_ Input, groups []string) (*command.Command, bool) {
				page := strings.ToLower(strings.TrimSpace(groups[1]))
				if page == "" {
					return nil, false
				}
				return &command.Command{Kind: command.KindNavigate, Page: page}, true
			},
		},
		{
			Name: "change-voice",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:change|switch)\s+(?:the\s+)?voice(?:\s+to\s+(.+?))?[.?!]?$`),
				regexp.MustCompile(`(?i)\buse\s+a\s+different\s+voice\b()`),
			},
			Build: func(_ Input, groups []string) (*command.Command, bool) {
				return &command.Command{
					Kind:  command.KindChangeVoice,
					Voice: strings.TrimSpace(groups[1]),
				}, true
			},
		},
		{
			Name: "help",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:help|what\s+can\s+you\s+do|how\s+does\s+this\s+work)\b`),
			},
			Build: func(_ Input, _ []string) (*command.Command, bool) {
				return &command.Command{Kind: command.KindHelp}, true
			},
		},
	}
}

// cleanLabelFragment strips articles, quotes, and a trailing "button" noun
// from a captured label fragment before fuzzy matching.
func cleanLabelFragment(frag string) string {
	f := strings.TrimSpace(frag)
	f = strings.Trim(f, `"'`)
	lower := strings.ToLower(f)
	for _, prefix := range []string{"the ", "my ", "that ", "this "} {
		if strings.HasPrefix(lower, prefix) {
			f = strings.TrimSpace(f[len(prefix):])
			break
		}
	}
	if strings.HasSuffix(strings.ToLower(f), " button") {
		f = strings.TrimSpace(f[:len(f)-len(" button")])
	}
	return f
}
