package engine

import (
	"fmt"
	"strings"
)

// ParseOptions controls how a character layout becomes a grid.
type ParseOptions struct {
	// PadRaggedRows pads rows shorter than the widest row with Empty cells.
	// When false, cells past the end of a short row are out of bounds.
	PadRaggedRows bool
}

// ParseLayout builds the track grid and the initial carts from map lines.
// Cart markers leave straight track beneath them. Carts are numbered in
// reading order of their markers.
func ParseLayout(lines []string, opts ParseOptions) (*Grid, []Cart, error) {
	rows := make([][]Tile, 0, len(lines))
	var carts []Cart

	for y, line := range lines {
		row := make([]Tile, 0, len(line))
		for x, ch := range []rune(line) {
			tile, ok := tileFromRune(ch)
			if !ok {
				return nil, nil, fmt.Errorf("%w: unknown character %q at (%d,%d)", ErrInvalidTrack, ch, x, y)
			}
			if facing, isCart := DirectionFromMarker(ch); isCart {
				carts = append(carts, NewCart(len(carts), Position{X: x, Y: y}, facing))
			}
			row = append(row, tile)
		}
		rows = append(rows, row)
	}

	grid, err := NewGrid(rows, opts.PadRaggedRows)
	if err != nil {
		return nil, nil, err
	}
	return grid, carts, nil
}

// SplitLayout splits raw map text into lines, dropping a trailing newline and
// carriage returns. Leading spaces are significant and kept.
func SplitLayout(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func tileFromRune(r rune) (Tile, bool) {
	switch r {
	case ' ', '.':
		return Empty, true
	case '-', '<', '>':
		return Horizontal, true
	case '|', '^', 'v':
		return Vertical, true
	case '/':
		return CurveSlash, true
	case '\\':
		return CurveBackslash, true
	case '+':
		return Intersection, true
	}
	return Empty, false
}
