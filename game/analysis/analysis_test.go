package analysis

import (
	"strings"
	"testing"

	"github.com/wricardo/interstellar-mission/game/engine"
)

func universe(size, cost, energy int) *engine.UniverseConfig {
	costs := make([][]int, size)
	for r := range costs {
		costs[r] = make([]int, size)
		for c := range costs[r] {
			costs[r][c] = cost
		}
	}
	return &engine.UniverseConfig{
		Name:          "test",
		Rows:          size,
		Cols:          size,
		Origin:        engine.Coord{Row: 0, Col: 0},
		Destination:   engine.Coord{Row: size - 1, Col: size - 1},
		InitialEnergy: energy,
		Costs:         costs,
	}
}

// wall puts black holes down the middle column of a 3x3 universe.
func wall(cfg *engine.UniverseConfig) *engine.UniverseConfig {
	cfg.BlackHoles = []engine.Coord{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 1}}
	return cfg
}

func grid(t *testing.T, cfg *engine.UniverseConfig) *engine.Grid {
	t.Helper()
	g, err := engine.NewGrid(cfg)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

func TestCheckConnectivity(t *testing.T) {
	tests := []struct {
		name        string
		config      func() *engine.UniverseConfig
		reachable   int
		destination bool
		lostStars   int
	}{
		{
			name:        "open grid",
			config:      func() *engine.UniverseConfig { return universe(3, 1, 10) },
			reachable:   9,
			destination: true,
		},
		{
			name:        "black hole wall without stars",
			config:      func() *engine.UniverseConfig { return wall(universe(3, 1, 10)) },
			reachable:   3,
			destination: false,
		},
		{
			name: "black hole wall with a star",
			config: func() *engine.UniverseConfig {
				cfg := wall(universe(3, 1, 10))
				cfg.Stars = []engine.Coord{{Row: 1, Col: 0}}
				return cfg
			},
			reachable:   9,
			destination: true,
		},
		{
			name: "wormhole through the wall",
			config: func() *engine.UniverseConfig {
				cfg := wall(universe(3, 1, 10))
				cfg.Wormholes = []engine.Wormhole{{Entrance: engine.Coord{Row: 1, Col: 0}, Exit: engine.Coord{Row: 1, Col: 2}}}
				return cfg
			},
			reachable:   6,
			destination: true,
		},
		{
			name: "star behind the destination",
			config: func() *engine.UniverseConfig {
				return &engine.UniverseConfig{
					Name:          "corridor",
					Rows:          1,
					Cols:          3,
					Destination:   engine.Coord{Row: 0, Col: 1},
					InitialEnergy: 10,
					Costs:         [][]int{{0, 1, 1}},
					Stars:         []engine.Coord{{Row: 0, Col: 2}},
				}
			},
			// The destination is terminal, so the star past it is never reached.
			reachable:   2,
			destination: true,
			lostStars:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckConnectivity(grid(t, tt.config()))
			if got.Reachable != tt.reachable {
				t.Errorf("Reachable = %d, want %d", got.Reachable, tt.reachable)
			}
			if got.DestinationReached != tt.destination {
				t.Errorf("DestinationReached = %v, want %v", got.DestinationReached, tt.destination)
			}
			if len(got.UnreachableStars) != tt.lostStars {
				t.Errorf("UnreachableStars = %v, want %d", got.UnreachableStars, tt.lostStars)
			}
		})
	}
}

func TestCheapestCost(t *testing.T) {
	t.Run("uniform grid", func(t *testing.T) {
		cost, ok := CheapestCost(grid(t, universe(3, 2, 10)))
		if !ok || cost != 8 {
			t.Errorf("CheapestCost = %d, %v; want 8, true", cost, ok)
		}
	})

	t.Run("prefers the cheap detour", func(t *testing.T) {
		cfg := universe(3, 9, 100)
		// A cheap ring down the left column and along the bottom row.
		cfg.Costs[1][0], cfg.Costs[2][0], cfg.Costs[2][1], cfg.Costs[2][2] = 1, 1, 1, 1
		cost, ok := CheapestCost(grid(t, cfg))
		if !ok || cost != 4 {
			t.Errorf("CheapestCost = %d, %v; want 4, true", cost, ok)
		}
	})

	t.Run("wormhole shortcut", func(t *testing.T) {
		cfg := wall(universe(3, 1, 10))
		cfg.Wormholes = []engine.Wormhole{{Entrance: engine.Coord{Row: 1, Col: 0}, Exit: engine.Coord{Row: 1, Col: 2}}}
		cost, ok := CheapestCost(grid(t, cfg))
		if !ok || cost != 3 {
			t.Errorf("CheapestCost = %d, %v; want 3, true", cost, ok)
		}
	})

	t.Run("no route", func(t *testing.T) {
		if _, ok := CheapestCost(grid(t, wall(universe(3, 1, 10)))); ok {
			t.Error("expected no route through a starless wall")
		}
	})
}

func TestAnalyze(t *testing.T) {
	t.Run("healthy universe", func(t *testing.T) {
		report, err := Analyze(universe(4, 1, 20))
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if report.Manhattan != 6 || report.CheapestCost != 6 {
			t.Errorf("Manhattan = %d, CheapestCost = %d", report.Manhattan, report.CheapestCost)
		}
		if report.Features.Cells != 16 {
			t.Errorf("Cells = %d", report.Features.Cells)
		}
		if len(report.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", report.Warnings)
		}
	})

	t.Run("too little energy", func(t *testing.T) {
		report, err := Analyze(universe(3, 5, 10))
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if !hasWarning(report, "no recharge zone") {
			t.Errorf("expected energy warning, got %v", report.Warnings)
		}
	})

	t.Run("blocked", func(t *testing.T) {
		report, err := Analyze(wall(universe(3, 1, 10)))
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if !hasWarning(report, "unreachable") || !hasWarning(report, "no stars") {
			t.Errorf("expected reachability warnings, got %v", report.Warnings)
		}
	})

	t.Run("invalid universe", func(t *testing.T) {
		cfg := universe(3, 1, 10)
		cfg.Name = ""
		if _, err := Analyze(cfg); err == nil {
			t.Error("expected validation error")
		}
	})
}

func hasWarning(r *Report, fragment string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}
