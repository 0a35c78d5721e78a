// Package board defines the read-only data model for an AAC communication
// board: the button collection, grid dimensions, and recent conversation
// turns that the resolution engine receives with every request.
//
// The engine never mutates these values. Button state, settings, and history
// live in the calling application and arrive as a fresh [Snapshot] per
// request, which is what makes concurrent resolution requests against the
// same board safe without locking.
package board

// Button is one communication button on the board. Coordinates are 1-based
// and supplied by the caller; Index follows row-major traversal of the grid
// at the time of resolution and is never recomputed here.
type Button struct {
	// ID is an opaque stable identifier assigned by the caller.
	ID string `json:"id"`

	// Label is the short display string shown on the button.
	Label string `json:"label"`

	// Text is the full phrase spoken when the button is pressed.
	Text string `json:"text"`

	// Row and Col are the button's 1-based grid coordinates.
	Row int `json:"row"`
	Col int `json:"col"`

	// Index is the 1-based linear position across the whole grid in
	// row-major order.
	Index int `json:"index"`

	// Color is an optional display colour name.
	Color string `json:"color,omitempty"`

	// Category is an optional semantic grouping (e.g. "feelings", "food").
	Category string `json:"category,omitempty"`

	// Custom marks buttons created by the user in this app, as opposed to
	// the built-in default set. Only custom buttons participate in the
	// "last one created" positional fallback.
	Custom bool `json:"custom,omitempty"`
}

// GridInfo describes the board's current dimensions. Grid-relative commands
// are only attempted when Rows and Columns are both at least 1.
type GridInfo struct {
	Rows         int `json:"rows"`
	Columns      int `json:"columns"`
	TotalButtons int `json:"totalButtons"`
}

// ConversationTurn is one prior chat message, ordered oldest to newest in a
// [Snapshot]. Used only for coreference resolution.
type ConversationTurn struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the raw message text.
	Content string `json:"content"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Snapshot is the immutable per-request view of the board supplied by the
// caller.
type Snapshot struct {
	Buttons []Button           `json:"buttons"`
	Grid    GridInfo           `json:"grid"`
	History []ConversationTurn `json:"history,omitempty"`
}

// CustomButtons returns the user-created buttons in collection order.
func (s Snapshot) CustomButtons() []Button {
	var custom []Button
	for _, b := range s.Buttons {
		if b.Custom {
			custom = append(custom, b)
		}
	}
	return custom
}
