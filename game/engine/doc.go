// Package engine provides the core simulation logic for Mine Cart Madness.
//
// The engine package implements:
//   - An immutable track grid built once from a character layout
//   - Carts that follow straight track, curves and intersections
//   - A tick loop that moves carts in reading order and removes crashed pairs
//   - A result report with the first collision and the last surviving cart
//   - Track configuration loading and validation
//
// Core Types:
//
// Grid is the read-only track lookup, Cart is a single mobile entity and
// Simulation owns the cart arena and runs ticks against a Grid. TrackConfig
// describes a track loaded from JSON or YAML files.
//
// Usage:
//
//	grid, carts, err := engine.ParseLayout(lines, engine.ParseOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sim, err := engine.NewSimulation(grid, carts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := sim.Run(ctx, 0)
//	fmt.Println(report.FormatFirstCollision(), report.FormatSurvivor())
//
// Rules:
//
// Carts move one cell per tick. Those on the top row move first, left to
// right, then the next row and so on. At '/' and '\' a cart turns with the
// curve; at '+' it turns left, goes straight, turns right, and repeats. Two
// carts on the same cell crash and are removed on the spot. The run ends as
// soon as a tick finishes with one cart or none left.
package engine
