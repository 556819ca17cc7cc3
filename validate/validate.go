// Command validate checks the track configuration files in a directory
// (default ../configs). It checks:
//   - JSON or YAML structure and required fields
//   - Allowed characters and at least two carts
//   - Rail continuity: straight track and intersections connect to
//     compatible neighbours
//   - A bounded trial run, reporting whether the track finishes
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single track file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.DecodeTrackConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid file: %v", err))
		return result
	}

	if err := engine.ValidateTrackConfig(config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	continuity := validateContinuity(config.Layout)
	if !continuity.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, continuity.Errors...)
		return result
	}
	result.Errors = append(result.Errors, continuity.Errors...)

	sim, err := engine.NewSimulationFromConfig(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	carts := sim.AliveCount()

	report, err := sim.Run(context.Background(), config.TickBudget())
	switch {
	case errors.Is(err, engine.ErrTickLimit):
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Trial run: still %d carts after %d ticks", sim.AliveCount(), sim.CurrentTick()))
	case err != nil:
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Trial run failed at tick %d: %v", sim.CurrentTick(), err))
		return result
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Trial run: first collision %s, last cart %s after %d ticks",
			report.FormatFirstCollision(), report.FormatSurvivor(), report.Ticks))
	}

	tiles := engine.CountTiles(config.Layout)
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Grid: %dx%d", sim.Grid().Width(), sim.Grid().Height()),
		fmt.Sprintf("✓ Carts: %d", carts),
		fmt.Sprintf("✓ Intersections: %d", tiles[engine.Intersection]),
		fmt.Sprintf("✓ Curves: %d", tiles[engine.CurveSlash]+tiles[engine.CurveBackslash]),
	)

	return result
}

// cellAt returns the character at (x, y), or a space outside the layout.
func cellAt(layout [][]rune, x, y int) rune {
	if y < 0 || y >= len(layout) || x < 0 || x >= len(layout[y]) {
		return ' '
	}
	return layout[y][x]
}

func acceptsHorizontal(r rune) bool {
	return strings.ContainsRune(`-+/\<>`, r)
}

func acceptsVertical(r rune) bool {
	return strings.ContainsRune(`|+/\^v`, r)
}

// validateContinuity checks that every straight piece and every intersection
// continues on both ends. Curves are skipped since either pairing of their
// ends is legal.
func validateContinuity(layout []string) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if len(layout) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Cannot validate continuity: empty layout")
		return result
	}

	grid := make([][]rune, len(layout))
	for y, row := range layout {
		grid[y] = []rune(row)
	}

	var broken []string
	for y, row := range grid {
		for x, ch := range row {
			left, right := cellAt(grid, x-1, y), cellAt(grid, x+1, y)
			up, down := cellAt(grid, x, y-1), cellAt(grid, x, y+1)

			ok := true
			switch ch {
			case '-', '<', '>':
				ok = acceptsHorizontal(left) && acceptsHorizontal(right)
			case '|', '^', 'v':
				ok = acceptsVertical(up) && acceptsVertical(down)
			case '+':
				ok = acceptsHorizontal(left) && acceptsHorizontal(right) &&
					acceptsVertical(up) && acceptsVertical(down)
			}
			if !ok {
				broken = append(broken, fmt.Sprintf("'%c' at (%d,%d)", ch, x, y))
			}
		}
	}

	if len(broken) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Continuity failure: %d broken rail pieces", len(broken)))
		for _, b := range broken {
			result.Errors = append(result.Errors, fmt.Sprintf("Broken: %s", b))
		}
	} else {
		result.Errors = append(result.Errors, "✓ Continuity: every rail piece connects")
	}

	return result
}

// trackFiles lists the JSON and YAML files of dir in name order.
func trackFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every track file of the directory given as the first
// argument (default ../configs), printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := trackFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
