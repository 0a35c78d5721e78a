// Package command defines the closed set of executable board commands that
// the resolution engine produces. A Command is constructed once per
// utterance, is immutable afterwards, and is consumed by the confirmation
// composer and the caller's UI executor. Nothing in this package is
// persisted.
package command

// Kind discriminates the command variants.
type Kind string

// All command variants. The set is closed: the grammar table, the arbiter,
// and the composer each handle exactly these.
const (
	KindCreate           Kind = "create"
	KindDelete           Kind = "delete"
	KindUpdate           Kind = "update"
	KindNavigate         Kind = "navigate"
	KindChangeVoice      Kind = "change-voice"
	KindChangeLanguage   Kind = "change-language"
	KindChangeIcon       Kind = "change-icon"
	KindFocusOnWord      Kind = "focus-on-word"
	KindRestoreAll       Kind = "restore-all"
	KindShowStory        Kind = "show-story"
	KindToggleWatchFirst Kind = "toggle-watch-first"
	KindToggleModelMode  Kind = "toggle-model-mode"
	KindShowStats        Kind = "show-stats"
	KindShowMeHow        Kind = "show-me-how"
	KindGetSuggestion    Kind = "get-suggestion"
	KindHelp             Kind = "help"
	KindConversation     Kind = "conversation-fallback"
)

// Command is the resolved, parameterized form of one utterance. Only the
// fields relevant to Kind are populated; the rest stay zero.
//
// A delete or update with an empty TargetID and a non-empty Error is an
// explicit resolution error (e.g. a grid position out of bounds): the
// command names what went wrong instead of silently doing nothing.
type Command struct {
	Kind Kind `json:"kind"`

	// TargetID identifies the button a delete/update/icon-change acts on.
	TargetID string `json:"targetId,omitempty"`

	// ButtonLabel is the display label of the targeted or created button.
	ButtonLabel string `json:"buttonLabel,omitempty"`

	// Phrase is the spoken phrase for a created button.
	Phrase string `json:"phrase,omitempty"`

	// Word is the focus word for focus-on-word.
	Word string `json:"word,omitempty"`

	// Topic is the subject of a show-story or show-me-how request.
	Topic string `json:"topic,omitempty"`

	// LanguageCode and LanguageName identify a validated target language.
	LanguageCode string `json:"languageCode,omitempty"`
	LanguageName string `json:"languageName,omitempty"`

	// Voice names the requested voice for change-voice. Empty means "next".
	Voice string `json:"voice,omitempty"`

	// Page is the navigation destination.
	Page string `json:"page,omitempty"`

	// Icon is the requested icon description for change-icon.
	Icon string `json:"icon,omitempty"`

	// Row, Col and Position are the resolved grid coordinates for
	// position-based deletes.
	Row      int `json:"row,omitempty"`
	Col      int `json:"col,omitempty"`
	Position int `json:"position,omitempty"`

	// Error carries the human-readable explanation of an explicit
	// resolution failure. Set only when TargetID is empty.
	Error string `json:"error,omitempty"`

	// Suggestions lists candidate button labels attached to a failed or
	// low-confidence resolution.
	Suggestions []string `json:"suggestions,omitempty"`

	// Confidence and Rationale are reported by the arbiter when it
	// resolved the target.
	Confidence float64 `json:"confidence,omitempty"`
	Rationale  string  `json:"rationale,omitempty"`

	// Provenance flags. They record how the target was resolved so the UI
	// can communicate confidence; they never change the confirmation text.
	ResolvedByArbiter bool `json:"resolvedByArbiter,omitempty"`
	IsGridPosition    bool `json:"isGridPosition,omitempty"`
	FuzzyMatch        bool `json:"fuzzyMatch,omitempty"`
	FromConversation  bool `json:"fromConversation,omitempty"`
	IsPositional      bool `json:"isPositional,omitempty"`
}

// Failed reports whether the command is an explicit resolution error rather
// than an executable action.
func (c *Command) Failed() bool {
	return c.Error != "" && c.TargetID == ""
}
