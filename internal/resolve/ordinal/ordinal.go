// Package ordinal converts position words ("first", "3rd", "last", "middle",
// bare numerals) into grid positions.
//
// Parsing and resolution are deliberately split: [Parse] returns a position
// class, and the caller applies it to a concrete collection length at the
// point of use. "Last row" and "last button in that row" are different
// collections, and "middle" even resolves differently per axis, so binding
// the word to a number early would couple the resolver to one axis.
package ordinal

import (
	"regexp"
	"strconv"
	"strings"
)

// Class categorizes a parsed position word.
type Class int

const (
	// None means the token is not a recognized position word.
	None Class = iota

	// Literal means the token names a concrete 1-based position.
	Literal

	// Last defers to the final element of whatever sequence it is
	// applied to.
	Last

	// Middle defers to the midpoint of the sequence; the exact rounding
	// depends on the axis (see [Position.Rows] and [Position.Within]).
	Middle
)

// Position is a parsed position word: a class plus, for [Literal], the
// concrete 1-based value.
type Position struct {
	Class Class
	N     int
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12,
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12,
}

// suffixed matches "2nd", "11th" and similar.
var suffixed = regexp.MustCompile(`^(\d+)(?:st|nd|rd|th)$`)

// Parse classifies a single position token. Unrecognized input yields
// {Class: None}.
func Parse(token string) Position {
	tok := strings.ToLower(strings.TrimSpace(token))
	switch tok {
	case "":
		return Position{Class: None}
	case "last", "final", "bottom":
		return Position{Class: Last}
	case "middle", "center", "centre":
		return Position{Class: Middle}
	case "top":
		return Position{Class: Literal, N: 1}
	}

	if n, ok := ordinalWords[tok]; ok {
		return Position{Class: Literal, N: n}
	}
	if n, ok := numberWords[tok]; ok {
		return Position{Class: Literal, N: n}
	}
	if m := suffixed.FindStringSubmatch(tok); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Position{Class: Literal, N: n}
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return Position{Class: Literal, N: n}
	}
	return Position{Class: None}
}

// Rows resolves the position against a row count: "last" is the final row
// and "middle" rounds up (ceil(rows/2)), so a 3-row grid's middle is row 2
// and a 2-row grid's is row 1. Returns 0 for [None].
func (p Position) Rows(rows int) int {
	switch p.Class {
	case Literal:
		return p.N
	case Last:
		return rows
	case Middle:
		return (rows + 1) / 2
	default:
		return 0
	}
}

// Within resolves the position against the length of a within-row button
// list: "last" is the final element and "middle" is the element at the
// 0-based floor(count/2) offset, i.e. 1-based position count/2+1. Returns
// 0 for [None] or an empty list.
func (p Position) Within(count int) int {
	if count <= 0 {
		return 0
	}
	switch p.Class {
	case Literal:
		return p.N
	case Last:
		return count
	case Middle:
		return count/2 + 1
	default:
		return 0
	}
}
