// Package engine provides the core navigation logic for the Interstellar Mission.
//
// The engine package implements:
//   - Universe loading and validation (JSON or YAML)
//   - An immutable Grid with per-cell costs and special features
//   - Resource-constrained depth-first backtracking search
//   - Exact snapshot/restore of ship and world state on backtrack
//   - Result aggregation and step-by-step playback of solutions
//
// Core Types:
//
// UniverseConfig is the static map. NewGrid turns it into a Grid. A Solver
// owns a private ShipState and WorldState and explores the grid; each
// Resolve starts from scratch. MissionEngine wraps a grid, keeps the last
// SearchResult, and exposes a playback cursor over its solutions.
//
// Usage:
//
//	config, err := engine.LoadUniverseConfig("universes/classic.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	missionEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := missionEngine.Resolve(ctx, engine.DefaultSearchOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if result.Found {
//		frame, _ := missionEngine.Step(1)
//		fmt.Println(frame.Position, frame.Energy)
//	}
//
// Mission Rules:
//
// The ship moves one cell at a time (no diagonals). Entering a cell costs its
// energy, or multiplies energy when the cell is a recharge zone. Gated cells
// demand a minimum energy before entry. A giant star is collected once; a
// black hole may only be entered while holding a star, which is spent
// destroying it. An unused wormhole entrance teleports the ship to its exit
// once per path. A branch dies when energy reaches zero before the
// destination or when the path reaches the configured length cap.
package engine
