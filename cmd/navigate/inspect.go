package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/interstellar-mission/game/analysis"
	"github.com/wricardo/interstellar-mission/game/engine"
)

// universeFiles expands directory arguments to the universe files inside them.
func universeFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one universe file or directory is required")
	}
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".json", ".yaml", ".yml":
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// validationResult captures the outcome of validating a single file.
type validationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func validateFile(path string) validationResult {
	result := validationResult{File: filepath.Base(path), Valid: true}

	config, err := engine.LoadUniverseConfig(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	grid, err := engine.NewGrid(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	conn := analysis.CheckConnectivity(grid)
	if !conn.DestinationReached {
		result.Valid = false
		result.Errors = append(result.Errors, "Connectivity failure: destination unreachable from origin")
	}
	for _, s := range conn.UnreachableStars {
		result.Info = append(result.Info, fmt.Sprintf("Unreachable star at (%d,%d)", s.Row, s.Col))
	}

	counts := engine.CountFeatures(config)
	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", config.Name),
		fmt.Sprintf("Grid: %dx%d", config.Rows, config.Cols),
		fmt.Sprintf("Energy: %d", config.InitialEnergy),
		fmt.Sprintf("Features: %d black holes, %d stars, %d wormholes, %d recharge zones, %d gates",
			counts.BlackHoles, counts.Stars, counts.Wormholes, counts.RechargeZones, counts.AdmissionGates),
		fmt.Sprintf("Connectivity: %d/%d cells reachable", conn.Reachable, counts.Cells),
	)
	return result
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check universe files for structural errors and an unreachable destination",
		ArgsUsage: "<file-or-dir>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := universeFiles(cmd.Args().Slice())
			if err != nil {
				return err
			}

			w := out(cmd)
			invalid := 0
			for _, file := range files {
				result := validateFile(file)
				fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
				if result.Valid {
					fmt.Fprintln(w, "✅ VALID")
					for _, info := range result.Info {
						fmt.Fprintln(w, "  ✓ "+info)
					}
					continue
				}
				invalid++
				fmt.Fprintln(w, "❌ INVALID")
				for _, e := range result.Errors {
					fmt.Fprintln(w, "  ❌ "+e)
				}
			}

			fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
			if invalid > 0 {
				return fmt.Errorf("%d of %d universes are invalid", invalid, len(files))
			}
			fmt.Fprintf(w, "✅ All %d universes are valid!\n", len(files))
			return nil
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print quick heuristics about universe files",
		ArgsUsage: "<file-or-dir>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print reports as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := universeFiles(cmd.Args().Slice())
			if err != nil {
				return err
			}

			reports := make([]*analysis.Report, 0, len(files))
			for _, file := range files {
				config, err := engine.LoadUniverseConfig(file)
				if err != nil {
					return err
				}
				report, err := analysis.Analyze(config)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				reports = append(reports, report)
			}

			w := out(cmd)
			if cmd.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			for i, report := range reports {
				fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(files[i]))
				printReport(w, report)
			}
			return nil
		},
	}
}

func printReport(w io.Writer, r *analysis.Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.Rows, r.Cols)
	fmt.Fprintf(w, "Initial Energy: %d\n", r.InitialEnergy)
	fmt.Fprintf(w, "Features: %d black holes, %d stars, %d wormholes, %d recharge zones, %d gates\n",
		r.Features.BlackHoles, r.Features.Stars, r.Features.Wormholes, r.Features.RechargeZones, r.Features.AdmissionGates)
	fmt.Fprintf(w, "Manhattan distance: %d\n", r.Manhattan)
	if r.CheapestFound {
		fmt.Fprintf(w, "Cheapest terrain cost: %d\n", r.CheapestCost)
	}
	fmt.Fprintf(w, "Reachable cells: %d/%d\n", r.Connectivity.Reachable, r.Features.Cells)

	if len(r.Warnings) == 0 {
		fmt.Fprintln(w, "✅ No obvious obstacles")
		return
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "⚠️  %s\n", warning)
	}
}
