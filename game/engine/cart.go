package engine

import "fmt"

// Direction is the facing of a cart.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

// String returns the lower-case direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Delta returns the (dx, dy) offset for moving one step in this direction.
// Up decreases Y, Down increases Y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 0, 0
	}
}

// TurnLeft rotates the direction a quarter turn counter-clockwise.
func (d Direction) TurnLeft() Direction {
	switch d {
	case Up:
		return Left
	case Left:
		return Down
	case Down:
		return Right
	default:
		return Up
	}
}

// TurnRight rotates the direction a quarter turn clockwise.
func (d Direction) TurnRight() Direction {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	default:
		return Up
	}
}

// Horizontal reports whether the direction is Left or Right.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Marker returns the map character for a cart facing d.
func (d Direction) Marker() rune {
	switch d {
	case Up:
		return '^'
	case Right:
		return '>'
	case Down:
		return 'v'
	default:
		return '<'
	}
}

// DirectionFromMarker maps a cart marker to its facing.
func DirectionFromMarker(r rune) (Direction, bool) {
	switch r {
	case '^':
		return Up, true
	case 'v':
		return Down, true
	case '<':
		return Left, true
	case '>':
		return Right, true
	}
	return Up, false
}

// TurnPhase is the intersection decision a cart will take next.
type TurnPhase uint8

const (
	TurnLeft TurnPhase = iota
	GoStraight
	TurnRight
)

// String returns the phase name.
func (p TurnPhase) String() string {
	switch p {
	case TurnLeft:
		return "left"
	case GoStraight:
		return "straight"
	case TurnRight:
		return "right"
	default:
		return "unknown"
	}
}

// Advance returns the next phase in the Left, Straight, Right cycle.
func (p TurnPhase) Advance() TurnPhase {
	return (p + 1) % 3
}

// ApplyTurn returns the facing after taking the decision p at an intersection.
func ApplyTurn(d Direction, p TurnPhase) Direction {
	switch p {
	case TurnLeft:
		return d.TurnLeft()
	case TurnRight:
		return d.TurnRight()
	default:
		return d
	}
}

// Cart is a single mobile entity on the track
type Cart struct {
	ID       int       `json:"id"`
	Position Position  `json:"position"`
	Facing   Direction `json:"facing"`
	Phase    TurnPhase `json:"phase"`
	Alive    bool      `json:"alive"`
}

// NewCart creates an alive cart whose first intersection decision is a left turn.
func NewCart(id int, pos Position, facing Direction) Cart {
	return Cart{ID: id, Position: pos, Facing: facing, Phase: TurnLeft, Alive: true}
}

// Step moves the cart one cell according to the tile it currently stands on.
// It only mutates the cart itself.
func (c *Cart) Step(g *Grid) error {
	tile, err := g.TileAt(c.Position.X, c.Position.Y)
	if err != nil {
		return fmt.Errorf("cart %d: %w", c.ID, err)
	}

	facing := c.Facing
	phase := c.Phase
	switch tile {
	case Horizontal, Vertical:
	case CurveSlash:
		if facing.Horizontal() {
			facing = facing.TurnLeft()
		} else {
			facing = facing.TurnRight()
		}
	case CurveBackslash:
		if facing.Horizontal() {
			facing = facing.TurnRight()
		} else {
			facing = facing.TurnLeft()
		}
	case Intersection:
		facing = ApplyTurn(facing, phase)
		phase = phase.Advance()
	default:
		return fmt.Errorf("cart %d: %w: standing on %s tile at %s", c.ID, ErrInvalidTrack, tile, c.Position)
	}

	next := c.Position.Step(facing)
	nextTile, err := g.TileAt(next.X, next.Y)
	if err != nil {
		return fmt.Errorf("cart %d moving %s from %s: %w", c.ID, facing, c.Position, err)
	}
	if nextTile == Empty {
		return fmt.Errorf("cart %d: %w: moving %s from %s onto empty cell %s", c.ID, ErrInvalidTrack, facing, c.Position, next)
	}

	c.Position = next
	c.Facing = facing
	c.Phase = phase
	return nil
}
