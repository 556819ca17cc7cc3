// Command analyze prints quick, human-readable heuristics about the track
// files in a configs directory. It summarizes dimensions, cart and tile
// counts, the earliest tick two carts could possibly meet, and the outcome of
// a bounded trial run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wricardo/mcp-training/cartsim/game/config"
	"github.com/wricardo/mcp-training/cartsim/game/engine"
)

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		fmt.Printf("Error opening configs: %v\n", err)
		os.Exit(1)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		fmt.Printf("Error listing configs: %v\n", err)
		os.Exit(1)
	}

	for _, info := range configs {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)
		track, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Printf("Error loading track: %v\n", err)
			continue
		}
		analyzeConfig(os.Stdout, track)
	}
}

func analyzeConfig(w io.Writer, track *engine.TrackConfig) {
	sim, err := engine.NewSimulationFromConfig(track)
	if err != nil {
		fmt.Fprintf(w, "Error building simulation: %v\n", err)
		return
	}

	carts := sim.Carts()
	tiles := engine.CountTiles(track.Layout)

	fmt.Fprintf(w, "Name: %s\n", track.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", sim.Grid().Width(), sim.Grid().Height())
	fmt.Fprintf(w, "Carts: %d\n", len(carts))
	fmt.Fprintf(w, "Intersections: %d\n", tiles[engine.Intersection])
	fmt.Fprintf(w, "Curves: %d\n", tiles[engine.CurveSlash]+tiles[engine.CurveBackslash])
	fmt.Fprintf(w, "Straight Track: %d\n", tiles[engine.Horizontal]+tiles[engine.Vertical])
	fmt.Fprintf(w, "Tick Budget: %d\n", track.TickBudget())

	facing := make(map[engine.Direction]int)
	for _, c := range carts {
		facing[c.Facing]++
	}
	fmt.Fprintf(w, "Facing: up=%d right=%d down=%d left=%d\n",
		facing[engine.Up], facing[engine.Right], facing[engine.Down], facing[engine.Left])

	// Two carts close a Manhattan gap by at most 2 cells per tick.
	if a, b, dist := closestPair(carts); dist > 0 {
		fmt.Fprintf(w, "Closest Carts: #%d at (%d, %d) and #%d at (%d, %d), distance %d\n",
			a.ID, a.Position.X, a.Position.Y, b.ID, b.Position.X, b.Position.Y, dist)
		fmt.Fprintf(w, "Earliest Possible Crash: tick %d\n", (dist+1)/2)
	}

	report, err := sim.Run(context.Background(), track.TickBudget())
	switch {
	case errors.Is(err, engine.ErrTickLimit):
		fmt.Fprintf(w, "⚠️  WARNING: %d carts still running after %d ticks\n", sim.AliveCount(), sim.CurrentTick())
		if first := sim.FirstCollision(); first != nil {
			fmt.Fprintf(w, "   First collision: (%d, %d) at tick %d\n", first.Position.X, first.Position.Y, first.Tick)
		}
	case err != nil:
		fmt.Fprintf(w, "⚠️  CRITICAL: run failed at tick %d: %v\n", sim.CurrentTick(), err)
	default:
		fmt.Fprintf(w, "✅ Solved in %d ticks: first collision %s, last cart %s\n",
			report.Ticks, report.FormatFirstCollision(), report.FormatSurvivor())
		fmt.Fprintf(w, "   Collisions: %d\n", len(report.Collisions))
	}
}

// closestPair returns the two carts with the smallest Manhattan distance.
// dist is 0 when there are fewer than two carts.
func closestPair(carts []engine.Cart) (a, b engine.Cart, dist int) {
	for i := range carts {
		for j := i + 1; j < len(carts); j++ {
			d := manhattan(carts[i].Position, carts[j].Position)
			if dist == 0 || d < dist {
				a, b, dist = carts[i], carts[j], d
			}
		}
	}
	return a, b, dist
}

func manhattan(p, q engine.Position) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
