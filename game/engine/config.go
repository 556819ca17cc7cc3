package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateTrackConfig validates a track configuration for correctness. It
// parses the layout and builds a simulation from it, so a config that passes
// can always be run.
func ValidateTrackConfig(config *TrackConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config cannot be nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if len(config.Layout) == 0 {
		return fmt.Errorf("config validation: layout is required")
	}
	if config.MaxTicks < 0 {
		return fmt.Errorf("config validation: max_ticks must not be negative, got %d", config.MaxTicks)
	}

	if _, err := NewSimulationFromLayout(config.Layout, config.ParseOptions()); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// ParseOptions returns the layout parsing options of the track.
func (c *TrackConfig) ParseOptions() ParseOptions {
	return ParseOptions{PadRaggedRows: c.PadRaggedRows}
}

// TickBudget returns the tick bound used when running the track to the end.
func (c *TrackConfig) TickBudget() int {
	if c.MaxTicks > 0 {
		return c.MaxTicks
	}
	return DefaultMaxTicks
}

// DecodeTrackConfig decodes a track config from JSON or YAML data. format is
// a file extension such as ".json", ".yaml" or ".yml".
func DecodeTrackConfig(data []byte, format string) (*TrackConfig, error) {
	var config TrackConfig
	switch strings.ToLower(format) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	}
	return &config, nil
}

// LoadTrackConfig loads a track configuration from a JSON or YAML file
func LoadTrackConfig(filename string) (*TrackConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := DecodeTrackConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, err
	}

	if err := ValidateTrackConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// NewSimulationFromConfig builds a simulation from a validated track config
func NewSimulationFromConfig(config *TrackConfig) (*Simulation, error) {
	if config == nil {
		config = DefaultTrackConfig()
	}
	return NewSimulationFromLayout(config.Layout, config.ParseOptions())
}

// DefaultTrackConfig returns the two-loop track from the puzzle description.
func DefaultTrackConfig() *TrackConfig {
	return &TrackConfig{
		Name:        "default",
		Description: "Two loops joined by intersections; first crash at 7,3",
		Layout: []string{
			`/->-\        `,
			`|   |  /----\`,
			`| /-+--+-\  |`,
			`| | |  | v  |`,
			`\-+-/  \-+--/`,
			`  \------/   `,
		},
	}
}
