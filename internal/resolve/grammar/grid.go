package grammar

import (
	"fmt"

	"github.com/iTherapyLLC/innervoice/internal/command"
	"github.com/iTherapyLLC/innervoice/internal/resolve/ordinal"
)

// buildGridDelete resolves "delete the <col> button in the <row> row".
//
// The row descriptor is clamped into bounds by construction: an
// unrecognized descriptor defaults to the last row rather than failing.
// That silently reinterprets the user's intent and is questionable UX, but
// it is the documented behavior of this grammar, so it is preserved rather
// than fixed here.
//
// The column descriptor, in contrast, resolves against the actual number of
// buttons in the chosen row (not the grid's column count, since trailing
// rows may be partial) and an out-of-range descriptor produces an explicit
// error payload naming that count.
func buildGridDelete(in Input, colTok, rowTok string) (*command.Command, bool) {
	if !in.Index.Valid() {
		return nil, false
	}
	rows := in.Index.Grid().Rows

	row := ordinal.Parse(rowTok).Rows(rows)
	if row == 0 || row > rows {
		row = rows
	}

	inRow := in.Index.RowButtons(row)
	if len(inRow) == 0 {
		return &command.Command{
			Kind:           command.KindDelete,
			Row:            row,
			IsGridPosition: true,
			Error:          fmt.Sprintf("There are no buttons in row %d — the grid has %d rows.", row, rows),
		}, true
	}

	col := ordinal.Parse(colTok).Within(len(inRow))
	if col < 1 || col > len(inRow) {
		return &command.Command{
			Kind:           command.KindDelete,
			Row:            row,
			IsGridPosition: true,
			Error:          fmt.Sprintf("Row %d only has %d buttons, so I can't find the %q one.", row, len(inRow), colTok),
		}, true
	}

	target := inRow[col-1]
	return &command.Command{
		Kind:           command.KindDelete,
		TargetID:       target.ID,
		ButtonLabel:    target.Label,
		Row:            row,
		Col:            col,
		IsGridPosition: true,
	}, true
}

// buildRowColDelete resolves a literal "row R, column C" numeral pair by
// direct coordinate lookup, with no ordinal resolution.
func buildRowColDelete(in Input, groups []string) (*command.Command, bool) {
	if !in.Index.Valid() {
		return nil, false
	}
	row := mustAtoi(groups[1])
	col := mustAtoi(groups[2])

	b, ok := in.Index.At(row, col)
	if !ok {
		return &command.Command{
			Kind:           command.KindDelete,
			Row:            row,
			Col:            col,
			IsGridPosition: true,
			Error: fmt.Sprintf("There is no button at row %d, column %d — the grid is %d rows by %d columns.",
				row, col, in.Index.Grid().Rows, in.Index.Grid().Columns),
		}, true
	}

	return &command.Command{
		Kind:           command.KindDelete,
		TargetID:       b.ID,
		ButtonLabel:    b.Label,
		Row:            row,
		Col:            col,
		IsGridPosition: true,
	}, true
}

// buildPositionDelete resolves "the button in position N" against the
// linear row-major index.
func buildPositionDelete(in Input, groups []string) (*command.Command, bool) {
	pos := mustAtoi(groups[1])

	b, ok := in.Index.ByLinear(pos)
	if !ok {
		return &command.Command{
			Kind:           command.KindDelete,
			Position:       pos,
			IsGridPosition: true,
			Error: fmt.Sprintf("There is no button in position %d — the grid has %d buttons.",
				pos, in.Index.Len()),
		}, true
	}

	return &command.Command{
		Kind:           command.KindDelete,
		TargetID:       b.ID,
		ButtonLabel:    b.Label,
		Row:            b.Row,
		Col:            b.Col,
		Position:       pos,
		IsGridPosition: true,
	}, true
}

// mustAtoi converts a digits-only regex capture. The patterns guarantee the
// capture is numeric.
func mustAtoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
