package service

import (
	"time"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
)

// SessionInfo provides information about a simulation session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	State          *engine.State       `json:"state"`
	TrackConfig    *engine.TrackConfig `json:"track_config"`
}

// TickResponse contains the result of advancing a session
type TickResponse struct {
	Requested int                 `json:"requested"`
	Executed  int                 `json:"executed"`
	Truncated bool                `json:"truncated,omitempty"`
	Limit     int                 `json:"limit,omitempty"`
	Ticks     []engine.TickResult `json:"ticks"`
	State     *engine.State       `json:"state"`
	Message   string              `json:"message"`
}

// RunResponse contains the result of running a session to completion
type RunResponse struct {
	Report  *engine.Report `json:"report"`
	State   *engine.State  `json:"state"`
	Message string         `json:"message"`
}

// CellInfo describes one grid cell of a session
type CellInfo struct {
	Position engine.Position `json:"position"`
	Tile     string          `json:"tile"`
	Char     string          `json:"char"`
	InBounds bool            `json:"in_bounds"`
	Carts    []engine.Cart   `json:"carts,omitempty"`
}

// SolveRequest is a stateless solve of a posted layout
type SolveRequest struct {
	Layout        []string `json:"layout" mapstructure:"layout"`
	PadRaggedRows bool     `json:"pad_ragged_rows,omitempty" mapstructure:"pad_ragged_rows"`
	MaxTicks      int      `json:"max_ticks,omitempty" mapstructure:"max_ticks"`
}

// SolveResponse holds both answers for a solved layout
type SolveResponse struct {
	FirstCollision string         `json:"first_collision"`
	LastCart       string         `json:"last_cart"`
	Report         *engine.Report `json:"report"`
}

// ConfigInfo provides information about a track configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Carts       int    `json:"carts"`
}
