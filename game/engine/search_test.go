package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// uniformUniverse builds a rows x cols universe with a constant cell cost,
// origin in the top-left corner and destination in the bottom-right.
func uniformUniverse(rows, cols, cost, energy int) *UniverseConfig {
	costs := make([][]int, rows)
	for r := range costs {
		costs[r] = make([]int, cols)
		for c := range costs[r] {
			costs[r][c] = cost
		}
	}
	return &UniverseConfig{
		Name:          "test",
		Description:   "uniform test universe",
		Rows:          rows,
		Cols:          cols,
		Origin:        Coord{0, 0},
		Destination:   Coord{rows - 1, cols - 1},
		InitialEnergy: energy,
		Costs:         costs,
	}
}

// createTestUniverse is a 4x4 map carrying every feature kind.
func createTestUniverse() *UniverseConfig {
	cfg := uniformUniverse(4, 4, 1, 20)
	cfg.Costs[1][2] = 3
	cfg.Costs[2][1] = 2
	cfg.BlackHoles = []Coord{{1, 1}}
	cfg.Stars = []Coord{{0, 2}}
	cfg.Wormholes = []Wormhole{{Entrance: Coord{0, 1}, Exit: Coord{2, 2}}}
	cfg.RechargeZones = []RechargeZone{{At: Coord{2, 0}, Factor: 2}}
	cfg.AdmissionGates = []AdmissionGate{{At: Coord{3, 1}, MinEnergy: 8}}
	return cfg
}

func mustSolver(t *testing.T, cfg *UniverseConfig, opts SearchOptions) *Solver {
	t.Helper()
	grid, err := NewGrid(cfg)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	solver, err := NewSolver(grid, opts)
	if err != nil {
		t.Fatalf("NewSolver failed: %v", err)
	}
	return solver
}

func mustResolve(t *testing.T, cfg *UniverseConfig, opts SearchOptions) (*SearchResult, *Solver) {
	t.Helper()
	solver := mustSolver(t, cfg, opts)
	result, err := solver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return result, solver
}

// checkSolution verifies the resource properties every returned path must hold.
func checkSolution(t *testing.T, g *Grid, opts SearchOptions, sol Solution) {
	t.Helper()
	n := len(sol.Path)
	if n == 0 || n != len(sol.EnergyTrace) || n != len(sol.StarsTrace) {
		t.Fatalf("path and traces differ in length: %d/%d/%d", n, len(sol.EnergyTrace), len(sol.StarsTrace))
	}
	if n > opts.MaxPathLength {
		t.Errorf("path has %d coordinates, cap is %d", n, opts.MaxPathLength)
	}
	if sol.Path[0] != g.Origin() || sol.Path[n-1] != g.Destination() {
		t.Errorf("path runs %v -> %v, want %v -> %v", sol.Path[0], sol.Path[n-1], g.Origin(), g.Destination())
	}
	for i := 0; i < n-1; i++ {
		if sol.EnergyTrace[i] <= 0 {
			t.Errorf("energy %d at intermediate step %d", sol.EnergyTrace[i], i)
		}
	}
	if sol.EnergyTrace[n-1] < g.DestinationMinEnergy() {
		t.Errorf("final energy %d below destination minimum %d", sol.EnergyTrace[n-1], g.DestinationMinEnergy())
	}

	collected := map[Coord]bool{}
	destroyed := map[Coord]bool{}
	teleported := map[Coord]bool{}
	for i := 1; i < n; i++ {
		prev, cell := sol.Path[i-1], sol.Path[i]
		if !Adjacent(prev, cell) {
			exit, ok := g.WormholeExit(prev)
			if !ok || exit != cell || teleported[prev] {
				t.Fatalf("step %d jumps %v -> %v without an unused wormhole", i, prev, cell)
			}
			teleported[prev] = true
		}
		if g.IsBlackHole(cell) && !destroyed[cell] {
			if sol.StarsTrace[i-1] <= 0 {
				t.Errorf("step %d enters black hole %v without a star", i, cell)
			}
			destroyed[cell] = true
		}
		if g.IsStar(cell) {
			if collected[cell] && sol.StarsTrace[i] > sol.StarsTrace[i-1] {
				t.Errorf("star %v counted twice", cell)
			}
			collected[cell] = true
		}
		if need, ok := g.AdmissionRequirement(cell); ok && !g.IsBlackHole(cell) && sol.EnergyTrace[i-1] < need {
			t.Errorf("step %d enters gate %v with %d energy, needs %d", i, cell, sol.EnergyTrace[i-1], need)
		}
	}
}

func TestResolveScenarios(t *testing.T) {
	tests := []struct {
		name       string
		config     func() *UniverseConfig
		opts       func() SearchOptions
		wantFound  bool
		wantPath   []Coord
		wantEnergy []int
		wantStars  []int
	}{
		{
			name:       "uniform 3x3 grid",
			config:     func() *UniverseConfig { return uniformUniverse(3, 3, 1, 10) },
			wantFound:  true,
			wantPath:   []Coord{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2}},
			wantEnergy: []int{10, 9, 8, 7, 6},
			wantStars:  []int{0, 0, 0, 0, 0},
		},
		{
			name: "black hole chokepoint without stars",
			config: func() *UniverseConfig {
				cfg := uniformUniverse(3, 3, 1, 10)
				cfg.BlackHoles = []Coord{{1, 1}}
				cfg.AdmissionGates = walls(Coord{1, 0}, Coord{0, 2}, Coord{1, 2}, Coord{2, 0})
				return cfg
			},
			wantFound: false,
		},
		{
			name: "star neutralizes black hole",
			config: func() *UniverseConfig {
				cfg := uniformUniverse(3, 3, 1, 10)
				cfg.BlackHoles = []Coord{{1, 1}}
				cfg.Stars = []Coord{{0, 1}}
				cfg.AdmissionGates = walls(Coord{1, 0}, Coord{0, 2}, Coord{1, 2}, Coord{2, 0})
				return cfg
			},
			wantFound:  true,
			wantPath:   []Coord{{0, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 2}},
			wantEnergy: []int{10, 9, 8, 7, 6},
			wantStars:  []int{0, 1, 0, 0, 0},
		},
		{
			name: "wormhole jumps to its exit",
			config: func() *UniverseConfig {
				cfg := uniformUniverse(3, 3, 1, 10)
				cfg.Wormholes = []Wormhole{{Entrance: Coord{0, 1}, Exit: Coord{2, 1}}}
				return cfg
			},
			wantFound:  true,
			wantPath:   []Coord{{0, 0}, {0, 1}, {2, 1}, {2, 2}},
			wantEnergy: []int{10, 9, 8, 7},
			wantStars:  []int{0, 0, 0, 0},
		},
		{
			name: "recharge multiplies instead of charging cost",
			config: func() *UniverseConfig {
				cfg := uniformUniverse(3, 1, 1, 2)
				cfg.Costs[1][0] = 4
				cfg.RechargeZones = []RechargeZone{{At: Coord{1, 0}, Factor: 3}}
				return cfg
			},
			wantFound:  true,
			wantPath:   []Coord{{0, 0}, {1, 0}, {2, 0}},
			wantEnergy: []int{2, 6, 5},
			wantStars:  []int{0, 0, 0},
		},
		{
			name:   "length cap shorter than the only path",
			config: func() *UniverseConfig { return uniformUniverse(1, 6, 1, 100) },
			opts: func() SearchOptions {
				opts := DefaultSearchOptions()
				opts.MaxPathLength = 3
				return opts
			},
			wantFound: false,
		},
		{
			name:       "landing on destination with zero energy",
			config:     func() *UniverseConfig { return uniformUniverse(1, 2, 5, 5) },
			wantFound:  true,
			wantPath:   []Coord{{0, 0}, {0, 1}},
			wantEnergy: []int{5, 0},
			wantStars:  []int{0, 0},
		},
		{
			name: "destination minimum energy not met",
			config: func() *UniverseConfig {
				cfg := uniformUniverse(1, 2, 5, 5)
				cfg.DestinationMinEnergy = 1
				return cfg
			},
			wantFound: false,
		},
		{
			name:      "energy floor kills intermediate cell",
			config:    func() *UniverseConfig { return uniformUniverse(1, 3, 5, 5) },
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultSearchOptions()
			if tt.opts != nil {
				opts = tt.opts()
			}
			result, solver := mustResolve(t, tt.config(), opts)

			if result.Found != tt.wantFound {
				t.Fatalf("Found = %v, want %v", result.Found, tt.wantFound)
			}
			if !tt.wantFound {
				if len(result.Solutions) != 0 {
					t.Errorf("expected no solutions, got %d", len(result.Solutions))
				}
				return
			}

			sol := result.Solutions[0]
			if !reflect.DeepEqual(sol.Path, tt.wantPath) {
				t.Errorf("path = %v, want %v", sol.Path, tt.wantPath)
			}
			if !reflect.DeepEqual(sol.EnergyTrace, tt.wantEnergy) {
				t.Errorf("energy trace = %v, want %v", sol.EnergyTrace, tt.wantEnergy)
			}
			if !reflect.DeepEqual(sol.StarsTrace, tt.wantStars) {
				t.Errorf("stars trace = %v, want %v", sol.StarsTrace, tt.wantStars)
			}
			if result.FinalEnergy != tt.wantEnergy[len(tt.wantEnergy)-1] {
				t.Errorf("FinalEnergy = %d, want %d", result.FinalEnergy, tt.wantEnergy[len(tt.wantEnergy)-1])
			}
			checkSolution(t, solver.grid, solver.Options(), sol)
		})
	}
}

func walls(at ...Coord) []AdmissionGate {
	gates := make([]AdmissionGate, len(at))
	for i, c := range at {
		gates[i] = AdmissionGate{At: c, MinEnergy: 1000}
	}
	return gates
}

func TestAdmissionGateUsesPreMoveEnergy(t *testing.T) {
	tests := []struct {
		name      string
		energy    int
		wantFound bool
	}{
		{"exactly enough", 5, true},
		{"one short", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := uniformUniverse(1, 3, 1, tt.energy)
			cfg.Costs[0][1] = 3
			cfg.AdmissionGates = []AdmissionGate{{At: Coord{0, 1}, MinEnergy: 5}}

			result, _ := mustResolve(t, cfg, DefaultSearchOptions())
			if result.Found != tt.wantFound {
				t.Errorf("Found = %v, want %v", result.Found, tt.wantFound)
			}
		})
	}
}

func TestBlackHoleTakesPrecedenceOverGate(t *testing.T) {
	cfg := uniformUniverse(1, 4, 1, 50)
	cfg.Stars = []Coord{{0, 1}}
	cfg.BlackHoles = []Coord{{0, 2}}
	cfg.AdmissionGates = []AdmissionGate{{At: Coord{0, 2}, MinEnergy: 1000}}

	result, _ := mustResolve(t, cfg, DefaultSearchOptions())
	if !result.Found {
		t.Fatal("expected the star to open the gated black hole")
	}
	want := []int{0, 1, 0, 0}
	if !reflect.DeepEqual(result.Solutions[0].StarsTrace, want) {
		t.Errorf("stars trace = %v, want %v", result.Solutions[0].StarsTrace, want)
	}
}

func TestWormholeFiresOncePerPath(t *testing.T) {
	// The corridor forces the ship back over the entrance after teleporting.
	cfg := uniformUniverse(1, 5, 0, 1)
	cfg.Origin = Coord{0, 1}
	cfg.Destination = Coord{0, 4}
	cfg.Wormholes = []Wormhole{{Entrance: Coord{0, 2}, Exit: Coord{0, 0}}}

	opts := DefaultSearchOptions()
	opts.ForbidRevisit = false
	opts.MaxPathLength = 10

	result, solver := mustResolve(t, cfg, opts)
	if !result.Found {
		t.Fatal("expected a path")
	}
	want := []Coord{{0, 1}, {0, 2}, {0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}
	if !reflect.DeepEqual(result.Solutions[0].Path, want) {
		t.Errorf("path = %v, want %v", result.Solutions[0].Path, want)
	}
	checkSolution(t, solver.grid, solver.Options(), result.Solutions[0])
}

func TestWormholeExitRespectsGates(t *testing.T) {
	cfg := uniformUniverse(3, 3, 1, 10)
	cfg.Wormholes = []Wormhole{{Entrance: Coord{0, 1}, Exit: Coord{2, 1}}}
	cfg.BlackHoles = []Coord{{2, 1}}

	result, _ := mustResolve(t, cfg, DefaultSearchOptions())
	if !result.Found {
		t.Fatal("expected a path that avoids the wormhole")
	}
	for _, c := range result.Solutions[0].Path {
		if c == (Coord{0, 1}) || c == (Coord{2, 1}) {
			t.Errorf("path %v should not use the blocked wormhole", result.Solutions[0].Path)
		}
	}
}

func TestExhaustiveMode(t *testing.T) {
	tests := []struct {
		name          string
		config        *UniverseConfig
		forbidRevisit bool
		maxLength     int
		wantPaths     [][]Coord
	}{
		{
			name:          "two routes around a 2x2 grid",
			config:        uniformUniverse(2, 2, 1, 10),
			forbidRevisit: true,
			maxLength:     DefaultMaxPathLength,
			wantPaths: [][]Coord{
				{{0, 0}, {0, 1}, {1, 1}},
				{{0, 0}, {1, 0}, {1, 1}},
			},
		},
		{
			name:          "corridor with revisits forbidden",
			config:        uniformUniverse(1, 3, 0, 1),
			forbidRevisit: true,
			maxLength:     5,
			wantPaths: [][]Coord{
				{{0, 0}, {0, 1}, {0, 2}},
			},
		},
		{
			name:          "corridor with revisits allowed",
			config:        uniformUniverse(1, 3, 0, 1),
			forbidRevisit: false,
			maxLength:     5,
			wantPaths: [][]Coord{
				{{0, 0}, {0, 1}, {0, 2}},
				{{0, 0}, {0, 1}, {0, 0}, {0, 1}, {0, 2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := SearchOptions{Mode: ModeAll, MaxPathLength: tt.maxLength, ForbidRevisit: tt.forbidRevisit}
			result, solver := mustResolve(t, tt.config, opts)

			if !result.Found {
				t.Fatal("expected solutions")
			}
			var got [][]Coord
			for _, sol := range result.Solutions {
				got = append(got, sol.Path)
				checkSolution(t, solver.grid, solver.Options(), sol)
			}
			if !reflect.DeepEqual(got, tt.wantPaths) {
				t.Errorf("paths = %v, want %v", got, tt.wantPaths)
			}

			// An exhaustive run unwinds completely.
			ship := solver.Ship()
			if ship.Position != tt.config.Origin || len(ship.Path) != 1 || ship.Energy != tt.config.InitialEnergy {
				t.Errorf("ship not restored after exhaustive run: %+v", ship)
			}
		})
	}
}

func TestExhaustiveModeSolutionCap(t *testing.T) {
	opts := SearchOptions{Mode: ModeAll, MaxPathLength: 20, ForbidRevisit: true, MaxSolutions: 3}
	result, _ := mustResolve(t, uniformUniverse(4, 4, 1, 50), opts)

	if len(result.Solutions) != 3 {
		t.Errorf("expected 3 solutions, got %d", len(result.Solutions))
	}
}

func TestRichUniverseProperties(t *testing.T) {
	for _, forbid := range []bool{true, false} {
		opts := SearchOptions{Mode: ModeAll, MaxPathLength: 9, ForbidRevisit: forbid}
		result, solver := mustResolve(t, createTestUniverse(), opts)
		if !result.Found {
			t.Fatalf("forbid=%v: expected solutions", forbid)
		}

		seen := map[string]bool{}
		for _, sol := range result.Solutions {
			checkSolution(t, solver.grid, solver.Options(), sol)
			ship := &ShipState{Path: sol.Path, EnergyTrace: sol.EnergyTrace, StarsTrace: sol.StarsTrace}
			key := solutionKey(ship)
			if seen[key] {
				t.Errorf("duplicate solution %v", sol.Path)
			}
			seen[key] = true
		}
	}
}

func TestFailedMoveRestoresState(t *testing.T) {
	ctx := context.Background()
	solver := mustSolver(t, createTestUniverse(), SearchOptions{Mode: ModeAll, MaxPathLength: 9, ForbidRevisit: true})

	beforeShip := solver.Ship()
	beforeFlags := append([]uint8(nil), solver.world.flags...)

	neighbors, n := orderedNeighbors(solver.grid, solver.grid.Origin())
	for i := 0; i < n; i++ {
		done, err := solver.tryMove(ctx, neighbors[i])
		if err != nil || done {
			t.Fatalf("tryMove(%v) = %v, %v; exhaustive mode should always backtrack", neighbors[i], done, err)
		}
		if got := solver.Ship(); !reflect.DeepEqual(got, beforeShip) {
			t.Errorf("ship after %v = %+v, want %+v", neighbors[i], got, beforeShip)
		}
		if !reflect.DeepEqual(solver.world.flags, beforeFlags) {
			t.Errorf("world flags changed after exploring %v", neighbors[i])
		}
	}
	if solver.agg.Len() == 0 {
		t.Error("expected the subtrees to contain solutions")
	}
}

func TestSnapshotRestoreTeleport(t *testing.T) {
	solver := mustSolver(t, createTestUniverse(), DefaultSearchOptions())
	g := solver.grid

	entrance := g.index(Coord{0, 1})
	exit := g.index(Coord{2, 2})

	beforeShip := solver.Ship()
	beforeFlags := append([]uint8(nil), solver.world.flags...)

	snap := takeSnapshot(solver.ship, solver.world, entrance, exit)
	solver.enter(entrance)
	solver.world.set(entrance, featureWormholeUsed)
	if !solver.teleport(exit) {
		t.Fatal("teleport should succeed")
	}
	if solver.ship.Position != (Coord{2, 2}) || len(solver.ship.Path) != 3 {
		t.Fatalf("unexpected ship after teleport: %+v", solver.ship)
	}

	restoreSnapshot(solver.ship, solver.world, snap)
	if got := solver.Ship(); !reflect.DeepEqual(got, beforeShip) {
		t.Errorf("ship = %+v, want %+v", got, beforeShip)
	}
	if !reflect.DeepEqual(solver.world.flags, beforeFlags) {
		t.Error("world flags not restored")
	}
}

func TestFailedResolveLeavesInitialState(t *testing.T) {
	cfg := uniformUniverse(3, 3, 1, 10)
	cfg.BlackHoles = []Coord{{1, 1}}
	cfg.AdmissionGates = walls(Coord{1, 0}, Coord{0, 2}, Coord{1, 2}, Coord{2, 0})

	result, solver := mustResolve(t, cfg, DefaultSearchOptions())
	if result.Found {
		t.Fatal("expected failure")
	}

	ship := solver.Ship()
	want := ShipState{
		Energy:      10,
		Position:    Coord{0, 0},
		Path:        []Coord{{0, 0}},
		EnergyTrace: []int{10},
		StarsTrace:  []int{0},
	}
	if !reflect.DeepEqual(ship, want) {
		t.Errorf("ship = %+v, want %+v", ship, want)
	}
	if got := solver.World().RemainingBlackHoles(); !reflect.DeepEqual(got, []Coord{{1, 1}}) {
		t.Errorf("remaining black holes = %v", got)
	}
	if got := solver.World().UsedWormholes(); len(got) != 0 {
		t.Errorf("used wormholes = %v", got)
	}
}

func TestSuccessfulResolveKeepsSolutionState(t *testing.T) {
	cfg := uniformUniverse(3, 3, 1, 10)
	cfg.Wormholes = []Wormhole{{Entrance: Coord{0, 1}, Exit: Coord{2, 1}}}

	_, solver := mustResolve(t, cfg, DefaultSearchOptions())
	if got := solver.World().UsedWormholes(); !reflect.DeepEqual(got, []Coord{{0, 1}}) {
		t.Errorf("used wormholes = %v, want [(0,1)]", got)
	}
	if solver.Ship().Position != (Coord{2, 2}) {
		t.Errorf("ship should rest on the destination, got %v", solver.Ship().Position)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	cfg := createTestUniverse()
	first, _ := mustResolve(t, cfg, DefaultSearchOptions())
	for i := 0; i < 5; i++ {
		again, _ := mustResolve(t, cfg, DefaultSearchOptions())
		if !reflect.DeepEqual(first.Solutions, again.Solutions) {
			t.Fatalf("run %d returned %v, first run returned %v", i, again.Solutions, first.Solutions)
		}
	}
}

func TestResolveResetsBetweenRuns(t *testing.T) {
	cfg := uniformUniverse(3, 3, 1, 10)
	cfg.Stars = []Coord{{0, 1}}
	solver := mustSolver(t, cfg, DefaultSearchOptions())

	first, err := solver.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := solver.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Solutions, second.Solutions) {
		t.Errorf("second run differs: %v vs %v", second.Solutions, first.Solutions)
	}
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solver := mustSolver(t, uniformUniverse(5, 5, 1, 100), SearchOptions{Mode: ModeAll, MaxPathLength: 30})
	_, err := solver.Resolve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ship := solver.Ship(); len(ship.Path) != 1 || ship.Energy != 100 {
		t.Errorf("ship not restored after cancellation: %+v", ship)
	}
}

func TestOrderedNeighbors(t *testing.T) {
	g, err := NewGrid(uniformUniverse(3, 3, 1, 10))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		from Coord
		want []Coord
	}{
		{Coord{0, 0}, []Coord{{0, 1}, {1, 0}}},
		{Coord{1, 1}, []Coord{{1, 2}, {2, 1}, {1, 0}, {0, 1}}},
		{Coord{2, 1}, []Coord{{2, 2}, {2, 0}, {1, 1}}},
	}

	for _, tt := range tests {
		out, n := orderedNeighbors(g, tt.from)
		if got := out[:n]; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("orderedNeighbors(%v) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestValidateSearchOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    SearchOptions
		wantErr bool
	}{
		{"defaults", DefaultSearchOptions(), false},
		{"exhaustive", SearchOptions{Mode: ModeAll, MaxPathLength: 50}, false},
		{"unknown mode", SearchOptions{Mode: "best", MaxPathLength: 50}, true},
		{"cap too small", SearchOptions{Mode: ModeFirst, MaxPathLength: 1}, true},
		{"negative cap", SearchOptions{Mode: ModeFirst, MaxPathLength: -1}, true},
		{"negative solution cap", SearchOptions{Mode: ModeAll, MaxPathLength: 10, MaxSolutions: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchOptions(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSearchOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestRechargeSaturates(t *testing.T) {
	if got := multiplyEnergy(MaxEnergy/2+1, 2); got != MaxEnergy {
		t.Errorf("multiplyEnergy overflow = %d, want %d", got, MaxEnergy)
	}
	if got := multiplyEnergy(7, 3); got != 21 {
		t.Errorf("multiplyEnergy(7,3) = %d", got)
	}
}
