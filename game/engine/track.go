package engine

import "fmt"

// Tile is the static track kind of one grid cell
type Tile uint8

const (
	Empty Tile = iota
	Horizontal
	Vertical
	CurveSlash
	CurveBackslash
	Intersection
)

// String returns the tile name.
func (t Tile) String() string {
	switch t {
	case Empty:
		return "empty"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case CurveSlash:
		return "curve_slash"
	case CurveBackslash:
		return "curve_backslash"
	case Intersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// Rune returns the map character for the tile.
func (t Tile) Rune() rune {
	switch t {
	case Horizontal:
		return '-'
	case Vertical:
		return '|'
	case CurveSlash:
		return '/'
	case CurveBackslash:
		return '\\'
	case Intersection:
		return '+'
	default:
		return ' '
	}
}

// IsStraight reports whether the tile is straight track.
func (t Tile) IsStraight() bool {
	return t == Horizontal || t == Vertical
}

// Grid is the read-only track lookup. Rows may differ in length; a cell past
// the end of its row does not exist.
type Grid struct {
	rows  [][]Tile
	width int
}

// NewGrid builds a grid from rows of tiles. The rows are copied so the caller
// cannot mutate the grid afterwards. When pad is true, short rows are padded
// with Empty up to the widest row.
func NewGrid(rows [][]Tile, pad bool) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: grid has no rows", ErrInvalidTrack)
	}
	if len(rows) > MaxGridHeight {
		return nil, fmt.Errorf("%w: grid height %d exceeds %d", ErrInvalidTrack, len(rows), MaxGridHeight)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width > MaxGridWidth {
		return nil, fmt.Errorf("%w: grid width %d exceeds %d", ErrInvalidTrack, width, MaxGridWidth)
	}

	g := &Grid{rows: make([][]Tile, len(rows)), width: width}
	for y, row := range rows {
		n := len(row)
		if pad {
			n = width
		}
		g.rows[y] = make([]Tile, n)
		copy(g.rows[y], row)
	}
	return g, nil
}

// TileAt returns the tile at (x, y).
func (g *Grid) TileAt(x, y int) (Tile, error) {
	if y < 0 || y >= len(g.rows) || x < 0 || x >= len(g.rows[y]) {
		return Empty, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	return g.rows[y][x], nil
}

// Width returns the length of the widest row.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return len(g.rows)
}

// RowLen returns the number of cells in row y, or 0 outside the grid.
func (g *Grid) RowLen(y int) int {
	if y < 0 || y >= len(g.rows) {
		return 0
	}
	return len(g.rows[y])
}

// Count counts the cells holding tile t
func (g *Grid) Count(t Tile) int {
	count := 0
	for _, row := range g.rows {
		for _, tile := range row {
			if tile == t {
				count++
			}
		}
	}
	return count
}
