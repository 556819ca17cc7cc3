package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout_TilesAndCarts(t *testing.T) {
	grid, carts, err := ParseLayout(twoLoopsLayout, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, 13, grid.Width())
	assert.Equal(t, 6, grid.Height())
	require.Len(t, carts, 2)

	assert.Equal(t, Position{X: 2, Y: 0}, carts[0].Position)
	assert.Equal(t, Right, carts[0].Facing)
	assert.Equal(t, Position{X: 9, Y: 3}, carts[1].Position)
	assert.Equal(t, Down, carts[1].Facing)

	for i, c := range carts {
		assert.Equal(t, i, c.ID)
		assert.Equal(t, TurnLeft, c.Phase)
		assert.True(t, c.Alive)
	}

	tests := []struct {
		x, y int
		want Tile
	}{
		{0, 0, CurveSlash},
		{1, 0, Horizontal},
		{2, 0, Horizontal}, // under '>'
		{4, 0, CurveBackslash},
		{5, 0, Empty},
		{0, 1, Vertical},
		{4, 2, Intersection},
		{9, 3, Vertical}, // under 'v'
	}
	for _, tt := range tests {
		got, err := grid.TileAt(tt.x, tt.y)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "tile at (%d,%d)", tt.x, tt.y)
	}

	assert.Equal(t, 4, grid.Count(Intersection))
}

func TestParseLayout_DotIsEmpty(t *testing.T) {
	grid, _, err := ParseLayout([]string{"-.-"}, ParseOptions{})
	require.NoError(t, err)

	tile, err := grid.TileAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, Empty, tile)
}

func TestParseLayout_UnknownCharacter(t *testing.T) {
	_, _, err := ParseLayout([]string{"->-#"}, ParseOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTrack))
	assert.Contains(t, err.Error(), "(3,0)")
}

func TestParseLayout_Empty(t *testing.T) {
	_, _, err := ParseLayout(nil, ParseOptions{})
	assert.ErrorIs(t, err, ErrInvalidTrack)
}

func TestGrid_TileAtOutOfBounds(t *testing.T) {
	grid, _, err := ParseLayout([]string{"/-\\", "\\-/"}, ParseOptions{})
	require.NoError(t, err)

	for _, p := range []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		_, err := grid.TileAt(p.X, p.Y)
		assert.ErrorIs(t, err, ErrOutOfBounds, "position %v", p)
	}
}

func TestGrid_RaggedRows(t *testing.T) {
	layout := []string{"/--\\", "|", "\\--/"}

	t.Run("not padded", func(t *testing.T) {
		grid, _, err := ParseLayout(layout, ParseOptions{})
		require.NoError(t, err)

		assert.Equal(t, 4, grid.Width())
		assert.Equal(t, 1, grid.RowLen(1))
		_, err = grid.TileAt(3, 1)
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("padded", func(t *testing.T) {
		grid, _, err := ParseLayout(layout, ParseOptions{PadRaggedRows: true})
		require.NoError(t, err)

		assert.Equal(t, 4, grid.RowLen(1))
		tile, err := grid.TileAt(3, 1)
		require.NoError(t, err)
		assert.Equal(t, Empty, tile)
	})
}

func TestNewGrid_CopiesRows(t *testing.T) {
	rows := [][]Tile{{Horizontal, Horizontal}}
	grid, err := NewGrid(rows, false)
	require.NoError(t, err)

	rows[0][0] = Intersection

	tile, err := grid.TileAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Horizontal, tile)
}

func TestNewGrid_TooWide(t *testing.T) {
	_, err := NewGrid([][]Tile{make([]Tile, MaxGridWidth+1)}, false)
	assert.ErrorIs(t, err, ErrInvalidTrack)
}

func TestTile_RuneRoundTrip(t *testing.T) {
	for _, tile := range []Tile{Empty, Horizontal, Vertical, CurveSlash, CurveBackslash, Intersection} {
		got, ok := tileFromRune(tile.Rune())
		require.True(t, ok)
		assert.Equal(t, tile, got)
	}
}

func TestSplitLayout(t *testing.T) {
	lines := SplitLayout("  /-\\\r\n  \\-/\n")
	assert.Equal(t, []string{`  /-\`, `  \-/`}, lines)
	assert.Nil(t, SplitLayout(""))
}

func TestCountHelpers(t *testing.T) {
	assert.Equal(t, 2, CountCarts(twoLoopsLayout))
	assert.Equal(t, 9, CountCarts(lastCartLayout))

	counts := CountTiles(twoLoopsLayout)
	assert.Equal(t, 4, counts[Intersection])
	assert.Equal(t, 6, counts[CurveSlash])
	assert.Equal(t, 6, counts[CurveBackslash])
}
