package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createValidConfig() *TrackConfig {
	return &TrackConfig{
		Name:        "Test Track",
		Description: "A valid test track",
		Layout:      []string{"/->-<-\\", "\\-----/"},
	}
}

func TestValidateTrackConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *TrackConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(c *TrackConfig) {}},
		{name: "missing name", mutate: func(c *TrackConfig) { c.Name = "" }, wantErr: "name is required"},
		{name: "missing description", mutate: func(c *TrackConfig) { c.Description = "" }, wantErr: "description is required"},
		{name: "empty layout", mutate: func(c *TrackConfig) { c.Layout = nil }, wantErr: "layout is required"},
		{name: "negative max ticks", mutate: func(c *TrackConfig) { c.MaxTicks = -1 }, wantErr: "max_ticks"},
		{name: "unknown character", mutate: func(c *TrackConfig) { c.Layout = []string{"->#<-"} }, wantErr: "unknown character"},
		{name: "single cart", mutate: func(c *TrackConfig) { c.Layout = []string{"->--"} }, wantErr: "insufficient carts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.mutate(config)

			err := ValidateTrackConfig(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTrackConfig_Nil(t *testing.T) {
	assert.Error(t, ValidateTrackConfig(nil))
}

func TestValidateTrackConfig_RaggedRows(t *testing.T) {
	config := createValidConfig()
	config.Layout = []string{"->-<-", "--"}
	require.NoError(t, ValidateTrackConfig(config))

	config.PadRaggedRows = true
	assert.NoError(t, ValidateTrackConfig(config))
}

func TestDecodeTrackConfig(t *testing.T) {
	jsonData := `{
  "name": "json track",
  "description": "decoded from json",
  "layout": ["->-<-"],
  "max_ticks": 20
}`
	yamlData := `name: yaml track
description: decoded from yaml
pad_ragged_rows: true
layout:
  - "->-<-"
  - "--"
`

	config, err := DecodeTrackConfig([]byte(jsonData), ".json")
	require.NoError(t, err)
	assert.Equal(t, "json track", config.Name)
	assert.Equal(t, []string{"->-<-"}, config.Layout)
	assert.Equal(t, 20, config.TickBudget())
	assert.False(t, config.PadRaggedRows)

	config, err = DecodeTrackConfig([]byte(yamlData), ".YML")
	require.NoError(t, err)
	assert.Equal(t, "yaml track", config.Name)
	assert.Equal(t, []string{"->-<-", "--"}, config.Layout)
	assert.True(t, config.ParseOptions().PadRaggedRows)
	assert.Equal(t, DefaultMaxTicks, config.TickBudget())

	_, err = DecodeTrackConfig([]byte("{not json"), ".json")
	assert.Error(t, err)
	_, err = DecodeTrackConfig([]byte("layout: [unclosed"), ".yaml")
	assert.Error(t, err)
}

func TestLoadTrackConfig(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "track.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"loop","description":"d","layout":["/->-<-\\","\\-----/"]}`), 0o644))

	config, err := LoadTrackConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "loop", config.Name)

	yamlPath := filepath.Join(dir, "track.yaml")
	yamlData := strings.Join([]string{
		"name: yaml loop",
		"description: d",
		"layout:",
		`  - '/->-<-\'`,
		`  - '\-----/'`,
	}, "\n")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlData), 0o644))

	config, err = LoadTrackConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, `/->-<-\`, config.Layout[0])

	_, err = LoadTrackConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	invalidPath := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalidPath, []byte(`{"name":"x","description":"d","layout":["->--"]}`), 0o644))
	_, err = LoadTrackConfig(invalidPath)
	assert.ErrorIs(t, err, ErrInsufficientCarts)
}

func TestLoadTrackConfig_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	data := `{"name":"env","description":"d","layout":["->-<-"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env.json"), []byte(data), 0o644))

	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadTrackConfig("configs/env.json")
	require.NoError(t, err)
	assert.Equal(t, "env", config.Name)
}

func TestDefaultTrackConfig(t *testing.T) {
	config := DefaultTrackConfig()
	require.NoError(t, ValidateTrackConfig(config))

	sim, err := NewSimulationFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sim.AliveCount())

	report, err := sim.Run(t.Context(), config.TickBudget())
	require.NoError(t, err)
	assert.Equal(t, "7,3", report.FormatFirstCollision())
}
