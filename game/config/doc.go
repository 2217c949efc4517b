// Package config provides universe configuration management for the Interstellar Mission.
//
// The config package handles:
//   - Loading universes from JSON (.json) or YAML (.yaml, .yml) files
//   - Validation through the engine before anything is cached
//   - Default universe selection
//   - Configuration discovery, listing and saving
//
// Configuration Format:
//
// Each universe file describes the grid dimensions, origin and destination,
// a dense table of per-cell energy costs, the initial energy, and lists of
// black holes, giant stars, wormhole pairs, recharge zones and admission
// gates. The file name without extension is the config identifier used when
// creating sessions.
//
// Usage:
//
//	manager, err := config.NewManager("universes", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	universe, err := manager.LoadConfig("classic")
//	id, fallback := manager.GetDefault()
//	infos, err := manager.ListConfigs()
//
// When no classic universe exists the first valid file becomes the default,
// and an empty directory falls back to a small built-in universe.
package config
