// Package config provides track configuration management for the mine cart
// simulator.
//
// The config package handles:
//   - Loading track definitions from JSON and YAML files
//   - Validation through the engine parser
//   - Default track selection
//   - Track discovery and listing
//
// Track Format:
//
// A track file holds a name, a description and the map as a list of rows.
// Rows use the puzzle characters: '-' and '|' for straight track, '/' and
// '\' for curves, '+' for intersections and '^', 'v', '<', '>' for carts.
// Optional keys are pad_ragged_rows and max_ticks.
//
//	name: classic
//	description: Two loops joined by intersections
//	layout:
//	  - '/->-\        '
//	  - '|   |  /----\'
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	track, err := manager.LoadConfig("classic")
//	defaultTrack := manager.GetDefault()
//	tracks, err := manager.ListConfigs()
//
// The default track is classic when present, otherwise the first valid
// track in the directory, otherwise the built-in two-loop track.
package config
