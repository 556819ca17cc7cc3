package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection_Turns(t *testing.T) {
	tests := []struct {
		dir   Direction
		left  Direction
		right Direction
	}{
		{Up, Left, Right},
		{Left, Down, Up},
		{Down, Right, Left},
		{Right, Up, Down},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			assert.Equal(t, tt.left, tt.dir.TurnLeft())
			assert.Equal(t, tt.right, tt.dir.TurnRight())
			assert.Equal(t, tt.dir, tt.dir.TurnLeft().TurnRight())
			assert.Equal(t, tt.dir, tt.dir.TurnLeft().TurnLeft().TurnLeft().TurnLeft())
		})
	}
}

func TestDirection_Markers(t *testing.T) {
	for _, d := range []Direction{Up, Right, Down, Left} {
		got, ok := DirectionFromMarker(d.Marker())
		require.True(t, ok)
		assert.Equal(t, d, got)
	}

	_, ok := DirectionFromMarker('+')
	assert.False(t, ok)
}

func TestTurnPhase_Advance(t *testing.T) {
	assert.Equal(t, GoStraight, TurnLeft.Advance())
	assert.Equal(t, TurnRight, GoStraight.Advance())
	assert.Equal(t, TurnLeft, TurnRight.Advance())
}

func TestApplyTurn(t *testing.T) {
	assert.Equal(t, Left, ApplyTurn(Up, TurnLeft))
	assert.Equal(t, Up, ApplyTurn(Up, GoStraight))
	assert.Equal(t, Right, ApplyTurn(Up, TurnRight))
	assert.Equal(t, Down, ApplyTurn(Right, TurnRight))
}

func TestCartStep_Curves(t *testing.T) {
	tests := []struct {
		name   string
		tile   Tile
		facing Direction
		want   Direction
	}{
		{"slash moving right", CurveSlash, Right, Up},
		{"slash moving left", CurveSlash, Left, Down},
		{"slash moving up", CurveSlash, Up, Right},
		{"slash moving down", CurveSlash, Down, Left},
		{"backslash moving right", CurveBackslash, Right, Down},
		{"backslash moving left", CurveBackslash, Left, Up},
		{"backslash moving up", CurveBackslash, Up, Left},
		{"backslash moving down", CurveBackslash, Down, Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := intersectionField(3, tt.tile)
			cart := NewCart(0, Position{X: 1, Y: 1}, tt.facing)

			require.NoError(t, cart.Step(grid))

			assert.Equal(t, tt.want, cart.Facing)
			assert.Equal(t, Position{X: 1, Y: 1}.Step(tt.want), cart.Position)
			assert.Equal(t, TurnLeft, cart.Phase, "curves must not advance the turn phase")
		})
	}
}

func TestCartStep_IntersectionCycle(t *testing.T) {
	grid := intersectionField(9, Intersection)
	cart := NewCart(0, Position{X: 4, Y: 4}, Up)

	wantPhases := []TurnPhase{TurnLeft, GoStraight, TurnRight, TurnLeft, GoStraight, TurnRight}
	for i, want := range wantPhases {
		require.Equal(t, want, cart.Phase, "phase before crossing %d", i+1)

		before := cart
		require.NoError(t, cart.Step(grid))

		assert.Equal(t, ApplyTurn(before.Facing, want), cart.Facing)
		assert.Equal(t, before.Position.Step(cart.Facing), cart.Position)
	}
	assert.Equal(t, TurnLeft, cart.Phase)
	assert.Equal(t, Position{X: 0, Y: 2}, cart.Position)
}

func TestCartStep_StraightSegment(t *testing.T) {
	row := make([]Tile, 10)
	for i := range row {
		row[i] = Horizontal
	}
	grid, err := NewGrid([][]Tile{row}, false)
	require.NoError(t, err)

	cart := NewCart(0, Position{X: 0, Y: 0}, Right)
	for i := 1; i <= 9; i++ {
		require.NoError(t, cart.Step(grid))
		assert.Equal(t, Position{X: i, Y: 0}, cart.Position)
		assert.Equal(t, Right, cart.Facing)
		assert.Equal(t, TurnLeft, cart.Phase)
	}
}

func TestCartStep_StandingOnEmpty(t *testing.T) {
	grid := intersectionField(3, Empty)
	cart := NewCart(0, Position{X: 1, Y: 1}, Up)

	err := cart.Step(grid)
	assert.ErrorIs(t, err, ErrInvalidTrack)
}

func TestCartStep_OntoEmpty(t *testing.T) {
	grid, err := NewGrid([][]Tile{{Horizontal, Empty}}, false)
	require.NoError(t, err)

	cart := NewCart(0, Position{X: 0, Y: 0}, Right)
	err = cart.Step(grid)

	assert.ErrorIs(t, err, ErrInvalidTrack)
	assert.Equal(t, Position{X: 0, Y: 0}, cart.Position, "a failed step leaves the cart in place")
}

func TestCartStep_OffTheGrid(t *testing.T) {
	grid, err := NewGrid([][]Tile{{Horizontal}}, false)
	require.NoError(t, err)

	cart := NewCart(0, Position{X: 0, Y: 0}, Left)
	assert.ErrorIs(t, cart.Step(grid), ErrOutOfBounds)
}
