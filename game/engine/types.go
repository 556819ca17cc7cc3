package engine

import (
	"errors"
	"fmt"
)

const (
	// Validation constants
	MinCarts        = 2
	MaxGridWidth    = 512
	MaxGridHeight   = 512
	MaxTicksPerCall = 10000
	DefaultMaxTicks = 1000000
)

var (
	ErrOutOfBounds       = errors.New("position out of bounds")
	ErrInvalidTrack      = errors.New("invalid track")
	ErrInsufficientCarts = errors.New("insufficient carts")
	ErrFinished          = errors.New("simulation already finished")
	ErrTickLimit         = errors.New("tick limit reached")
)

// Position represents x,y coordinates. X is the column, Y is the row, origin
// top-left.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// String formats the position the way results are reported: "x,y".
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Step returns the position one unit away in direction d.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Less reports whether p comes before o in reading order.
func (p Position) Less(o Position) bool {
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.X < o.X
}

// CollisionEvent records where and on which tick two carts crashed.
type CollisionEvent struct {
	Position Position `json:"position"`
	Tick     int      `json:"tick"`
	CartIDs  []int    `json:"cart_ids"`
}

// TrackConfig represents a track definition loaded from a JSON or YAML file
type TrackConfig struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Layout        []string `json:"layout" yaml:"layout"`
	PadRaggedRows bool     `json:"pad_ragged_rows,omitempty" yaml:"pad_ragged_rows,omitempty"`
	MaxTicks      int      `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
}

// TickResult describes what happened during a single tick.
type TickResult struct {
	Tick       int              `json:"tick"`
	Moved      int              `json:"moved"`
	Collisions []CollisionEvent `json:"collisions,omitempty"`
	Alive      int              `json:"alive"`
	Finished   bool             `json:"finished"`
}

// State is an immutable copy of a simulation at a tick boundary.
type State struct {
	Tick           int              `json:"tick"`
	Carts          []Cart           `json:"carts"`
	Alive          int              `json:"alive"`
	FirstCollision *CollisionEvent  `json:"first_collision,omitempty"`
	Collisions     []CollisionEvent `json:"collisions"`
	Finished       bool             `json:"finished"`
	Layout         []string         `json:"layout"`
	ConfigName     string           `json:"config_name,omitempty"`
}
