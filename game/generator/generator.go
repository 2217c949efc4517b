// Package generator builds random universes for the mission engine.
//
// A generated universe has a random cost per cell and a fixed number of each
// special feature. Features never overlap each other or the origin and
// destination. The same Options (including Seed) always yield the same universe.
package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/interstellar-mission/game/engine"
)

// Options control the size and feature mix of a generated universe.
type Options struct {
	Name           string `json:"name,omitempty"`
	Rows           int    `json:"rows,omitempty"`
	Cols           int    `json:"cols,omitempty"`
	Seed           uint64 `json:"seed,omitempty"`
	InitialEnergy  int    `json:"initial_energy,omitempty"`
	MaxCost        int    `json:"max_cost,omitempty"`
	BlackHoles     int    `json:"black_holes,omitempty"`
	Stars          int    `json:"stars,omitempty"`
	Wormholes      int    `json:"wormholes,omitempty"`
	RechargeZones  int    `json:"recharge_zones,omitempty"`
	AdmissionGates int    `json:"admission_gates,omitempty"`
	MinFactor      int    `json:"min_factor,omitempty"`
	MaxFactor      int    `json:"max_factor,omitempty"`
	MinGate        int    `json:"min_gate,omitempty"`
	MaxGate        int    `json:"max_gate,omitempty"`
}

// DefaultOptions returns the classic 30x30 layout.
func DefaultOptions() Options {
	return Options{
		Name:           "generated",
		Rows:           30,
		Cols:           30,
		InitialEnergy:  200,
		MaxCost:        10,
		BlackHoles:     5,
		Stars:          5,
		Wormholes:      3,
		RechargeZones:  10,
		AdmissionGates: 3,
		MinFactor:      2,
		MaxFactor:      5,
		MinGate:        5,
		MaxGate:        15,
	}
}

// withDefaults fills zero dimensions and ranges. Feature counts stay as given
// so callers can ask for a universe with none of a feature.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Name == "" {
		o.Name = d.Name
	}
	if o.Rows == 0 {
		o.Rows = d.Rows
	}
	if o.Cols == 0 {
		o.Cols = d.Cols
	}
	if o.InitialEnergy == 0 {
		o.InitialEnergy = d.InitialEnergy
	}
	if o.MaxCost == 0 {
		o.MaxCost = d.MaxCost
	}
	if o.MinFactor == 0 {
		o.MinFactor = d.MinFactor
	}
	if o.MaxFactor == 0 {
		o.MaxFactor = d.MaxFactor
	}
	if o.MinGate == 0 {
		o.MinGate = d.MinGate
	}
	if o.MaxGate == 0 {
		o.MaxGate = d.MaxGate
	}
	return o
}

// validate bounds every option before anything is allocated or drawn from
// the random source.
func (o Options) validate() error {
	invalid := func(field, format string, args ...interface{}) error {
		return &engine.ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if o.Rows < engine.MinGridSize || o.Rows > engine.MaxGridSize {
		return invalid("rows", "must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, o.Rows)
	}
	if o.Cols < engine.MinGridSize || o.Cols > engine.MaxGridSize {
		return invalid("cols", "must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, o.Cols)
	}
	if o.Rows*o.Cols < 2 {
		return invalid("rows", "grid %dx%d has no room for distinct origin and destination", o.Rows, o.Cols)
	}
	if o.InitialEnergy < 0 || o.InitialEnergy > engine.MaxEnergy {
		return invalid("initial_energy", "must be between 0 and %d, got %d", engine.MaxEnergy, o.InitialEnergy)
	}
	if o.MaxCost < 0 || o.MaxCost > engine.MaxCellCost {
		return invalid("max_cost", "must be between 0 and %d, got %d", engine.MaxCellCost, o.MaxCost)
	}

	counts := []struct {
		field string
		n     int
	}{
		{"black_holes", o.BlackHoles},
		{"stars", o.Stars},
		{"wormholes", o.Wormholes},
		{"recharge_zones", o.RechargeZones},
		{"admission_gates", o.AdmissionGates},
	}
	cells := o.Rows * o.Cols
	needed := 0
	for _, c := range counts {
		if c.n < 0 || c.n > cells {
			return invalid(c.field, "must be between 0 and %d, got %d", cells, c.n)
		}
		needed += c.n
	}
	needed += o.Wormholes
	if free := cells - 2; needed > free {
		return invalid("features", "%d feature cells do not fit in %d free cells", needed, free)
	}

	if o.MinFactor < 1 || o.MaxFactor < o.MinFactor || o.MaxFactor > engine.MaxRechargeFactor {
		return invalid("max_factor", "recharge range [%d,%d] must lie within [1,%d]", o.MinFactor, o.MaxFactor, engine.MaxRechargeFactor)
	}
	if o.MinGate < 0 || o.MaxGate < o.MinGate || o.MaxGate > engine.MaxEnergy {
		return invalid("max_gate", "admission range [%d,%d] must lie within [0,%d]", o.MinGate, o.MaxGate, engine.MaxEnergy)
	}
	return nil
}

// Generate builds a universe. Origin is the top-left cell and destination the
// bottom-right one.
func Generate(opts Options) (*engine.UniverseConfig, error) {
	opts = opts.withDefaults()

	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	cfg := &engine.UniverseConfig{
		Name:          opts.Name,
		Description:   fmt.Sprintf("Generated %dx%d universe (seed %d)", opts.Rows, opts.Cols, opts.Seed),
		Rows:          opts.Rows,
		Cols:          opts.Cols,
		Origin:        engine.Coord{Row: 0, Col: 0},
		Destination:   engine.Coord{Row: opts.Rows - 1, Col: opts.Cols - 1},
		InitialEnergy: opts.InitialEnergy,
		Costs:         make([][]int, opts.Rows),
	}
	for r := range cfg.Costs {
		cfg.Costs[r] = make([]int, opts.Cols)
		for c := range cfg.Costs[r] {
			cfg.Costs[r][c] = rng.IntN(opts.MaxCost + 1)
		}
	}

	cells := make([]engine.Coord, 0, opts.Rows*opts.Cols-2)
	for r := 0; r < opts.Rows; r++ {
		for c := 0; c < opts.Cols; c++ {
			at := engine.Coord{Row: r, Col: c}
			if at != cfg.Origin && at != cfg.Destination {
				cells = append(cells, at)
			}
		}
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	next := 0
	take := func() engine.Coord {
		at := cells[next]
		next++
		return at
	}

	for i := 0; i < opts.BlackHoles; i++ {
		cfg.BlackHoles = append(cfg.BlackHoles, take())
	}
	for i := 0; i < opts.Stars; i++ {
		cfg.Stars = append(cfg.Stars, take())
	}
	for i := 0; i < opts.Wormholes; i++ {
		cfg.Wormholes = append(cfg.Wormholes, engine.Wormhole{Entrance: take(), Exit: take()})
	}
	for i := 0; i < opts.RechargeZones; i++ {
		cfg.RechargeZones = append(cfg.RechargeZones, engine.RechargeZone{
			At:     take(),
			Factor: between(rng, opts.MinFactor, opts.MaxFactor),
		})
	}
	for i := 0; i < opts.AdmissionGates; i++ {
		cfg.AdmissionGates = append(cfg.AdmissionGates, engine.AdmissionGate{
			At:        take(),
			MinEnergy: between(rng, opts.MinGate, opts.MaxGate),
		})
	}

	if err := engine.ValidateUniverseConfig(cfg); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return cfg, nil
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}
