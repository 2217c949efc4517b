package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/wricardo/interstellar-mission/game/engine"
)

func testUniverse() *engine.UniverseConfig {
	return &engine.UniverseConfig{
		Name:          "render",
		Rows:          3,
		Cols:          4,
		Origin:        engine.Coord{Row: 0, Col: 0},
		Destination:   engine.Coord{Row: 2, Col: 3},
		InitialEnergy: 20,
		Costs: [][]int{
			{0, 1, 2, 3},
			{1, 5, 1, 1},
			{1, 1, 1, 0},
		},
		BlackHoles:     []engine.Coord{{Row: 1, Col: 1}},
		Stars:          []engine.Coord{{Row: 0, Col: 1}},
		Wormholes:      []engine.Wormhole{{Entrance: engine.Coord{Row: 0, Col: 2}, Exit: engine.Coord{Row: 2, Col: 1}}},
		RechargeZones:  []engine.RechargeZone{{At: engine.Coord{Row: 1, Col: 2}, Factor: 2}},
		AdmissionGates: []engine.AdmissionGate{{At: engine.Coord{Row: 1, Col: 3}, MinEnergy: 4}},
	}
}

func TestPNGDimensions(t *testing.T) {
	g, err := engine.NewGrid(testUniverse())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		cellSize int
		wantCell int
	}{
		{"default", 0, DefaultCellSize},
		{"explicit", 16, 16},
		{"too small", 2, MinCellSize},
		{"too large", 500, MaxCellSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := PNG(g, nil, Options{CellSize: tt.cellSize, Title: "universe"})
			if err != nil {
				t.Fatalf("PNG failed: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != 4*tt.wantCell || b.Dy() != 3*tt.wantCell+titleHeight {
				t.Errorf("bounds = %v, want %dx%d", b, 4*tt.wantCell, 3*tt.wantCell+titleHeight)
			}
		})
	}
}

func TestImageDrawsShip(t *testing.T) {
	e, err := engine.NewEngine(testUniverse())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Resolve(context.Background(), engine.DefaultSearchOptions()); err != nil {
		t.Fatal(err)
	}
	frame, err := e.Step(1)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	img := Image(e.Grid(), frame, Options{CellSize: 20})
	x, y := center(frame.Position, 20)
	if got := img.RGBAAt(x, y); got != palette["ship"] {
		t.Errorf("pixel at ship = %v, want %v", got, palette["ship"])
	}
}

func TestCostShade(t *testing.T) {
	cheap := costShade(0, 10)
	dear := costShade(10, 10)
	if cheap.R <= dear.R {
		t.Errorf("expensive cells should be darker: cheap=%v dear=%v", cheap, dear)
	}
}
