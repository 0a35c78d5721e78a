package board

import "sort"

// Index is a read-only coordinate view over a button collection. It offers
// O(1) lookup by linear index and O(n) row extraction. An Index never
// mutates the underlying collection.
type Index struct {
	buttons  []Button
	grid     GridInfo
	byLinear map[int]int // linear index -> position in buttons
}

// NewIndex builds an [Index] over buttons with the given grid dimensions.
func NewIndex(buttons []Button, grid GridInfo) *Index {
	byLinear := make(map[int]int, len(buttons))
	for i, b := range buttons {
		if b.Index > 0 {
			if _, seen := byLinear[b.Index]; !seen {
				byLinear[b.Index] = i
			}
		}
	}
	return &Index{buttons: buttons, grid: grid, byLinear: byLinear}
}

// Valid reports whether the grid dimensions permit spatial reasoning.
// Callers must skip all grid-relative operations when Valid is false.
func (x *Index) Valid() bool {
	return x.grid.Rows >= 1 && x.grid.Columns >= 1
}

// Grid returns the grid dimensions this index was built with.
func (x *Index) Grid() GridInfo {
	return x.grid
}

// Len returns the number of indexed buttons.
func (x *Index) Len() int {
	return len(x.buttons)
}

// ByLinear looks up the button whose 1-based linear index equals n.
func (x *Index) ByLinear(n int) (Button, bool) {
	i, ok := x.byLinear[n]
	if !ok {
		return Button{}, false
	}
	return x.buttons[i], true
}

// RowButtons returns all buttons in the given 1-based row, sorted by column
// ascending. The result is a fresh slice; callers may reorder it freely.
func (x *Index) RowButtons(row int) []Button {
	var out []Button
	for _, b := range x.buttons {
		if b.Row == row {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Col < out[j].Col })
	return out
}

// At looks up the button at the exact 1-based row/column coordinates.
func (x *Index) At(row, col int) (Button, bool) {
	for _, b := range x.buttons {
		if b.Row == row && b.Col == col {
			return b, true
		}
	}
	return Button{}, false
}
