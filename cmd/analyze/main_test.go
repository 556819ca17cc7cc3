package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
)

func TestAbs(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{5, 5},
		{-5, 5},
		{0, 0},
		{-10, 10},
		{100, 100},
	}

	for _, test := range tests {
		result := abs(test.input)
		if result != test.expected {
			t.Errorf("abs(%d) = %d, expected %d", test.input, result, test.expected)
		}
	}
}

func TestClosestPair(t *testing.T) {
	carts := []engine.Cart{
		engine.NewCart(0, engine.Position{X: 0, Y: 0}, engine.Right),
		engine.NewCart(1, engine.Position{X: 10, Y: 10}, engine.Left),
		engine.NewCart(2, engine.Position{X: 3, Y: 1}, engine.Up),
	}

	a, b, dist := closestPair(carts)
	if a.ID != 0 || b.ID != 2 || dist != 4 {
		t.Errorf("Expected carts 0 and 2 at distance 4, got %d and %d at %d", a.ID, b.ID, dist)
	}

	if _, _, dist := closestPair(carts[:1]); dist != 0 {
		t.Errorf("Expected distance 0 for a single cart, got %d", dist)
	}
}

func TestAnalyzeConfig_Solved(t *testing.T) {
	var out bytes.Buffer
	analyzeConfig(&out, engine.DefaultTrackConfig())

	result := out.String()
	for _, want := range []string{
		"Name: default",
		"Grid Size: 13 x 6",
		"Carts: 2",
		"Intersections: 4",
		"Facing: up=0 right=1 down=1 left=0",
		"✅ Solved in 14 ticks: first collision 7,3, last cart no survivor",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in output:\n%s", want, result)
		}
	}
}

func TestAnalyzeConfig_LastCart(t *testing.T) {
	track := &engine.TrackConfig{
		Name:        "Last Cart",
		Description: "d",
		Layout: []string{
			`/>-<\  `,
			`|   |  `,
			`| /<+-\`,
			`| | | v`,
			`\>+</ |`,
			`  |   ^`,
			`  \<->/`,
		},
	}

	var out bytes.Buffer
	analyzeConfig(&out, track)

	result := out.String()
	if !strings.Contains(result, "Earliest Possible Crash: tick 1") {
		t.Errorf("Expected earliest crash on tick 1:\n%s", result)
	}
	if !strings.Contains(result, "last cart 6,4") {
		t.Errorf("Expected survivor 6,4:\n%s", result)
	}
}

func TestAnalyzeConfig_TickLimit(t *testing.T) {
	track := &engine.TrackConfig{
		Name:        "Loops",
		Description: "d",
		Layout:      []string{`/>\/<\`, `\-/\-/`},
		MaxTicks:    12,
	}

	var out bytes.Buffer
	analyzeConfig(&out, track)

	if !strings.Contains(out.String(), "2 carts still running after 12 ticks") {
		t.Errorf("Expected tick limit warning:\n%s", out.String())
	}
}

func TestAnalyzeConfig_Invalid(t *testing.T) {
	var out bytes.Buffer
	analyzeConfig(&out, &engine.TrackConfig{Name: "x", Layout: []string{"->--"}})

	if !strings.Contains(out.String(), "Error building simulation") {
		t.Errorf("Expected build error:\n%s", out.String())
	}
}
