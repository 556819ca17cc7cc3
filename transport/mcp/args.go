package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
	"github.com/wricardo/mcp-training/cartsim/game/service"
)

type sessionArgs struct {
	SessionID string `mapstructure:"session_id"`
}

type createSessionArgs struct {
	ConfigID string `mapstructure:"config_id"`
}

type tickArgs struct {
	SessionID string `mapstructure:"session_id"`
	Count     int    `mapstructure:"count"`
}

type describeCellArgs struct {
	SessionID string `mapstructure:"session_id"`
	X         *int   `mapstructure:"x"`
	Y         *int   `mapstructure:"y"`
}

type solveArgs struct {
	Layout        []string `mapstructure:"layout"`
	Text          string   `mapstructure:"text"`
	PadRaggedRows bool     `mapstructure:"pad_ragged_rows"`
	MaxTicks      int      `mapstructure:"max_ticks"`
}

func (a solveArgs) request() service.SolveRequest {
	layout := a.Layout
	if len(layout) == 0 && a.Text != "" {
		layout = engine.SplitLayout(a.Text)
	}
	return service.SolveRequest{
		Layout:        layout,
		PadRaggedRows: a.PadRaggedRows,
		MaxTicks:      a.MaxTicks,
	}
}

// required is implemented by argument structs with mandatory fields.
type required interface {
	check() error
}

func (a *sessionArgs) check() error {
	if a.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	return nil
}

func (a *tickArgs) check() error {
	if a.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	return nil
}

func (a *describeCellArgs) check() error {
	if a.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if a.X == nil || a.Y == nil {
		return fmt.Errorf("x and y are required")
	}
	return nil
}

// decodeArgs decodes the tool arguments into out. JSON numbers arrive as
// float64, so the decoder runs weakly typed.
func decodeArgs(request mcp.CallToolRequest, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(request.GetArguments()); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if r, ok := out.(required); ok {
		return r.check()
	}
	return nil
}
