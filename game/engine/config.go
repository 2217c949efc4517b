package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a universe file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension. Unknown extensions are JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ValidateUniverseConfig checks a universe for structural correctness.
// Every feature must lie inside the grid and off the origin and destination.
func ValidateUniverseConfig(config *UniverseConfig) error {
	if config == nil {
		return configErrorf("config", "is nil")
	}
	if config.Name == "" {
		return configErrorf("name", "is required")
	}

	if config.Rows < MinGridSize || config.Rows > MaxGridSize {
		return configErrorf("rows", "must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Rows)
	}
	if config.Cols < MinGridSize || config.Cols > MaxGridSize {
		return configErrorf("cols", "must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Cols)
	}
	if config.InitialEnergy < 0 {
		return configErrorf("initial_energy", "must be non-negative, got %d", config.InitialEnergy)
	}
	if config.DestinationMinEnergy < 0 {
		return configErrorf("destination_min_energy", "must be non-negative, got %d", config.DestinationMinEnergy)
	}

	inBounds := func(c Coord) bool {
		return c.Row >= 0 && c.Row < config.Rows && c.Col >= 0 && c.Col < config.Cols
	}

	if !inBounds(config.Origin) {
		return configErrorf("origin", "(%d,%d) is outside the %dx%d grid", config.Origin.Row, config.Origin.Col, config.Rows, config.Cols)
	}
	if !inBounds(config.Destination) {
		return configErrorf("destination", "(%d,%d) is outside the %dx%d grid", config.Destination.Row, config.Destination.Col, config.Rows, config.Cols)
	}
	if config.Origin == config.Destination {
		return configErrorf("destination", "must differ from origin")
	}

	if len(config.Costs) != config.Rows {
		return configErrorf("costs", "must have %d rows to match rows, got %d", config.Rows, len(config.Costs))
	}
	for r, row := range config.Costs {
		if len(row) != config.Cols {
			return configErrorf("costs", "row %d must have %d entries to match cols, got %d", r, config.Cols, len(row))
		}
		for c, cost := range row {
			if cost < 0 || cost > MaxCellCost {
				return configErrorf("costs", "cell (%d,%d) cost must be between 0 and %d, got %d", r, c, MaxCellCost, cost)
			}
		}
	}

	checkFeature := func(field string, at Coord) error {
		if !inBounds(at) {
			return configErrorf(field, "(%d,%d) is outside the grid", at.Row, at.Col)
		}
		if at == config.Origin || at == config.Destination {
			return configErrorf(field, "(%d,%d) overlaps the origin or destination", at.Row, at.Col)
		}
		return nil
	}

	for _, at := range config.BlackHoles {
		if err := checkFeature("black_holes", at); err != nil {
			return err
		}
	}
	for _, at := range config.Stars {
		if err := checkFeature("stars", at); err != nil {
			return err
		}
	}

	entrances := make(map[Coord]bool, len(config.Wormholes))
	for _, w := range config.Wormholes {
		if err := checkFeature("wormholes.entrance", w.Entrance); err != nil {
			return err
		}
		if err := checkFeature("wormholes.exit", w.Exit); err != nil {
			return err
		}
		if w.Entrance == w.Exit {
			return configErrorf("wormholes", "entrance and exit (%d,%d) must differ", w.Entrance.Row, w.Entrance.Col)
		}
		if entrances[w.Entrance] {
			return configErrorf("wormholes", "entrance (%d,%d) is used by more than one pair", w.Entrance.Row, w.Entrance.Col)
		}
		entrances[w.Entrance] = true
	}

	recharge := make(map[Coord]bool, len(config.RechargeZones))
	for _, z := range config.RechargeZones {
		if err := checkFeature("recharge_zones", z.At); err != nil {
			return err
		}
		if z.Factor < 1 || z.Factor > MaxRechargeFactor {
			return configErrorf("recharge_zones", "factor at (%d,%d) must be between 1 and %d, got %d", z.At.Row, z.At.Col, MaxRechargeFactor, z.Factor)
		}
		if recharge[z.At] {
			return configErrorf("recharge_zones", "(%d,%d) is listed twice", z.At.Row, z.At.Col)
		}
		recharge[z.At] = true
	}

	gates := make(map[Coord]bool, len(config.AdmissionGates))
	for _, g := range config.AdmissionGates {
		if err := checkFeature("admission_gates", g.At); err != nil {
			return err
		}
		if g.MinEnergy < 0 {
			return configErrorf("admission_gates", "min_energy at (%d,%d) must be non-negative, got %d", g.At.Row, g.At.Col, g.MinEnergy)
		}
		if gates[g.At] {
			return configErrorf("admission_gates", "(%d,%d) is listed twice", g.At.Row, g.At.Col)
		}
		gates[g.At] = true
	}

	return nil
}

// DecodeUniverseConfig parses and validates a universe from raw bytes.
func DecodeUniverseConfig(data []byte, format Format) (*UniverseConfig, error) {
	var config UniverseConfig
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse yaml universe: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse json universe: %w", err)
		}
	}

	if err := ValidateUniverseConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// EncodeUniverseConfig serializes a universe in the given format.
func EncodeUniverseConfig(config *UniverseConfig, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(config); err != nil {
			return nil, fmt.Errorf("encode yaml universe: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml universe: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json universe: %w", err)
		}
		return data, nil
	}
}

// LoadUniverseConfig loads a universe from a .json, .yaml or .yml file.
func LoadUniverseConfig(path string) (*UniverseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe %s: %w", path, err)
	}

	config, err := DecodeUniverseConfig(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("load universe %s: %w", path, err)
	}
	return config, nil
}

// CloneUniverseConfig returns a deep copy so callers can mutate freely.
func CloneUniverseConfig(config *UniverseConfig) *UniverseConfig {
	if config == nil {
		return nil
	}
	out := *config
	out.Costs = make([][]int, len(config.Costs))
	for i, row := range config.Costs {
		out.Costs[i] = append([]int(nil), row...)
	}
	out.BlackHoles = append([]Coord(nil), config.BlackHoles...)
	out.Stars = append([]Coord(nil), config.Stars...)
	out.Wormholes = append([]Wormhole(nil), config.Wormholes...)
	out.RechargeZones = append([]RechargeZone(nil), config.RechargeZones...)
	out.AdmissionGates = append([]AdmissionGate(nil), config.AdmissionGates...)
	return &out
}
