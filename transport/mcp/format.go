package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
	"github.com/wricardo/mcp-training/cartsim/game/service"
)

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session: %s\n", session.ID))
	if session.ConfigName != "" {
		sb.WriteString(fmt.Sprintf("Track: %s\n", session.ConfigName))
	}
	if !session.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	if session.State != nil {
		sb.WriteString("\n")
		sb.WriteString(formatState(session.State))
	}
	return sb.String()
}

func formatSessionList(count int, sessions []service.SessionInfo) string {
	if count == 0 {
		return "No active sessions"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Active sessions (%d):\n", count))
	for _, s := range sessions {
		status := "running"
		tick := 0
		alive := 0
		if s.State != nil {
			tick = s.State.Tick
			alive = s.State.Alive
			if s.State.Finished {
				status = "finished"
			}
		}
		sb.WriteString(fmt.Sprintf("- %s [%s] track=%s tick=%d carts=%d\n", s.ID, status, s.ConfigName, tick, alive))
	}
	return sb.String()
}

func formatState(state *engine.State) string {
	if state == nil {
		return "No state"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tick: %d\n", state.Tick))
	sb.WriteString(fmt.Sprintf("Carts alive: %d\n", state.Alive))
	if state.FirstCollision != nil {
		sb.WriteString(fmt.Sprintf("First collision: %s (tick %d)\n", state.FirstCollision.Position, state.FirstCollision.Tick))
	}
	if state.Finished {
		sb.WriteString("Finished: yes\n")
	}

	sb.WriteString("\nCarts:\n")
	for _, c := range state.Carts {
		if !c.Alive {
			continue
		}
		sb.WriteString(fmt.Sprintf("  #%d at %s facing %s, next turn %s\n", c.ID, c.Position, c.Facing, c.Phase))
	}

	if len(state.Layout) > 0 {
		sb.WriteString("\nTrack:\n")
		for _, row := range state.Layout {
			sb.WriteString(row)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatTickResponse(resp *service.TickResponse) string {
	var sb strings.Builder
	sb.WriteString(resp.Message)
	sb.WriteString("\n")
	if resp.Truncated {
		sb.WriteString(fmt.Sprintf("Requested %d ticks, limited to %d per call\n", resp.Requested, resp.Limit))
	}
	for _, t := range resp.Ticks {
		for _, c := range t.Collisions {
			sb.WriteString(fmt.Sprintf("Crash at %s on tick %d (carts %v)\n", c.Position, c.Tick, c.CartIDs))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(formatState(resp.State))
	return sb.String()
}

func formatReport(report *engine.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("First collision: %s\n", report.FormatFirstCollision()))
	sb.WriteString(fmt.Sprintf("Last cart: %s\n", report.FormatSurvivor()))
	sb.WriteString(fmt.Sprintf("Ticks: %d\n", report.Ticks))
	sb.WriteString(fmt.Sprintf("Collisions: %d\n", len(report.Collisions)))
	if !report.Finished {
		sb.WriteString("Run has not finished yet\n")
	}
	return sb.String()
}

func formatSolveResponse(resp *service.SolveResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("First collision: %s\n", resp.FirstCollision))
	sb.WriteString(fmt.Sprintf("Last cart: %s\n", resp.LastCart))
	if resp.Report != nil {
		sb.WriteString(fmt.Sprintf("Ticks: %d\n", resp.Report.Ticks))
	}
	return sb.String()
}

func formatCell(cell *service.CellInfo) string {
	if !cell.InBounds {
		return fmt.Sprintf("Cell %s is outside the track", cell.Position)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cell %s: %s '%s'\n", cell.Position, cell.Tile, cell.Char))
	if len(cell.Carts) == 0 {
		sb.WriteString("No carts here\n")
	}
	for _, c := range cell.Carts {
		sb.WriteString(fmt.Sprintf("Cart #%d facing %s, next turn %s\n", c.ID, c.Facing, c.Phase))
	}
	return sb.String()
}

func formatConfigs(configs []service.ConfigInfo) string {
	if len(configs) == 0 {
		return "No track configurations available"
	}

	var sb strings.Builder
	sb.WriteString("Available tracks:\n")
	for _, c := range configs {
		sb.WriteString(fmt.Sprintf("- %s: %s (%dx%d, %d carts)\n", c.ConfigID, c.Name, c.Width, c.Height, c.Carts))
		if c.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", c.Description))
		}
	}
	return sb.String()
}

const instructions = `MINE CART MADNESS - RULES

TRACK
- '-' and '|' are straight track.
- '/' and '\' are curves.
- '+' is an intersection.
- Spaces are empty ground.
- '^', 'v', '<' and '>' are carts, standing on straight track.
- x is the column and y the row, both counted from 0 at the top-left corner.

MOVEMENT
- Every tick, each living cart moves one cell.
- Carts move in reading order: top row first, then left to right within a row.
  The order is recomputed at the start of every tick.
- A cart follows curves.
- At intersections a cart cycles through its choices: left, then straight,
  then right, then left again.

CRASHES
- When a cart moves onto a cell holding another cart, both are removed at once.
- A cart that has been removed does not move later in the same tick.
- The first crash is remembered as the first collision.

END
- A run finishes when at most one cart is left.
- The last cart's position is read after the tick that left it alone.

TIPS
- Use tick to watch a few steps, run to go to the end, report for the answers.
- solve_layout answers for any map without creating a session.`
