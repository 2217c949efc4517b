package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/game/generator"
	"github.com/wricardo/interstellar-mission/game/render"
	"github.com/wricardo/interstellar-mission/game/render/terminal"
)

// newScreen is swapped in tests for a simulation screen.
var newScreen = tcell.NewScreen

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "all", Usage: "collect every solution instead of stopping at the first"},
		&cli.IntFlag{Name: "max-length", Value: engine.DefaultMaxPathLength, Usage: "longest path in cells, origin included"},
		&cli.BoolFlag{Name: "allow-revisit", Usage: "let a path enter the same cell twice"},
		&cli.IntFlag{Name: "max-solutions", Usage: "stop an --all search after this many solutions (0 = no limit)"},
		&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "abandon the search after this long"},
	}
}

func searchOptions(cmd *cli.Command) engine.SearchOptions {
	opts := engine.DefaultSearchOptions()
	if cmd.Bool("all") {
		opts.Mode = engine.ModeAll
	}
	opts.MaxPathLength = cmd.Int("max-length")
	opts.ForbidRevisit = !cmd.Bool("allow-revisit")
	opts.MaxSolutions = cmd.Int("max-solutions")
	return opts
}

// loadAndSolve reads a universe file and runs the search configured by cmd's flags.
func loadAndSolve(ctx context.Context, cmd *cli.Command) (*engine.MissionEngine, *engine.SearchResult, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, nil, fmt.Errorf("a universe file is required")
	}
	config, err := engine.LoadUniverseConfig(path)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, nil, err
	}

	opts := searchOptions(cmd)
	logger := newLogger(cmd)
	logger.Debug("solving",
		zap.String("universe", config.Name),
		zap.String("mode", string(opts.Mode)),
		zap.Int("max_path_length", opts.MaxPathLength))

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	result, err := eng.Resolve(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("search %s: %w", config.Name, err)
	}
	logger.Debug("search finished",
		zap.Bool("found", result.Found),
		zap.Int("solutions", len(result.Solutions)),
		zap.Int("nodes_visited", result.Stats.NodesVisited),
		zap.Duration("duration", result.Stats.Duration))
	return eng, result, nil
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "search a universe for a route to the destination",
		ArgsUsage: "<universe-file>",
		Flags: append(searchFlags(),
			&cli.BoolFlag{Name: "json", Usage: "print the full result as JSON"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, result, err := loadAndSolve(ctx, cmd)
			if err != nil {
				return err
			}
			w := out(cmd)
			if cmd.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(w, eng.Config(), result)
			return nil
		},
	}
}

func printResult(w io.Writer, config *engine.UniverseConfig, result *engine.SearchResult) {
	fmt.Fprintf(w, "Universe: %s (%dx%d, energy %d)\n", config.Name, config.Rows, config.Cols, config.InitialEnergy)
	fmt.Fprintf(w, "Search:   %s, max length %d, revisits %s\n",
		result.Options.Mode, result.Options.MaxPathLength, map[bool]string{true: "forbidden", false: "allowed"}[result.Options.ForbidRevisit])
	fmt.Fprintf(w, "Stats:    %d nodes, %d backtracks, %d gate rejections, %d length cutoffs in %s\n",
		result.Stats.NodesVisited, result.Stats.Backtracks, result.Stats.GateRejections, result.Stats.BoundHits, result.Stats.Duration)

	if !result.Found {
		fmt.Fprintln(w, "No route reaches the destination.")
		return
	}

	fmt.Fprintf(w, "Found %d solution(s). Final energy %d, stars %d.\n", len(result.Solutions), result.FinalEnergy, result.FinalStars)
	for i, sol := range result.Solutions {
		fmt.Fprintf(w, "\n#%d  %d steps, energy %d, stars %d\n", i+1, sol.Steps(), sol.FinalEnergy(), sol.FinalStars())
		fmt.Fprintf(w, "  path:   %s\n", formatPath(sol.Path))
		fmt.Fprintf(w, "  energy: %s\n", formatInts(sol.EnergyTrace))
	}
}

func formatPath(path []engine.Coord) string {
	parts := make([]string, len(path))
	for i, c := range path {
		parts[i] = fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return strings.Join(parts, " → ")
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

func generateCommand() *cli.Command {
	d := generator.DefaultOptions()
	return &cli.Command{
		Name:  "generate",
		Usage: "create a random universe",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Value: d.Name},
			&cli.IntFlag{Name: "seed", Usage: "random seed; the same seed yields the same universe"},
			&cli.IntFlag{Name: "rows", Value: d.Rows},
			&cli.IntFlag{Name: "cols", Value: d.Cols},
			&cli.IntFlag{Name: "energy", Value: d.InitialEnergy, Usage: "initial energy"},
			&cli.IntFlag{Name: "max-cost", Value: d.MaxCost},
			&cli.IntFlag{Name: "black-holes", Value: d.BlackHoles},
			&cli.IntFlag{Name: "stars", Value: d.Stars},
			&cli.IntFlag{Name: "wormholes", Value: d.Wormholes},
			&cli.IntFlag{Name: "recharge-zones", Value: d.RechargeZones},
			&cli.IntFlag{Name: "gates", Value: d.AdmissionGates, Usage: "admission gates"},
			&cli.StringFlag{Name: "out", Usage: "file to write (.json, .yaml); YAML to stdout when empty"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := generator.Options{
				Name:           cmd.String("name"),
				Seed:           uint64(cmd.Int("seed")),
				Rows:           cmd.Int("rows"),
				Cols:           cmd.Int("cols"),
				InitialEnergy:  cmd.Int("energy"),
				MaxCost:        cmd.Int("max-cost"),
				BlackHoles:     cmd.Int("black-holes"),
				Stars:          cmd.Int("stars"),
				Wormholes:      cmd.Int("wormholes"),
				RechargeZones:  cmd.Int("recharge-zones"),
				AdmissionGates: cmd.Int("gates"),
			}
			config, err := generator.Generate(opts)
			if err != nil {
				return err
			}

			path := cmd.String("out")
			format := engine.FormatYAML
			if path != "" {
				format = engine.FormatFromPath(path)
			}
			data, err := engine.EncodeUniverseConfig(config, format)
			if err != nil {
				return err
			}

			if path == "" {
				_, err = out(cmd).Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			newLogger(cmd).Info("universe written", zap.String("path", path), zap.Uint64("seed", opts.Seed))
			return nil
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "solve a universe and draw the route as a PNG",
		ArgsUsage: "<universe-file>",
		Flags: append(searchFlags(),
			&cli.StringFlag{Name: "out", Required: true, Usage: "PNG file to write"},
			&cli.IntFlag{Name: "solution", Usage: "solution index to draw"},
			&cli.IntFlag{Name: "step", Value: -1, Usage: "playback step to draw (-1 = arrival)"},
			&cli.IntFlag{Name: "cell-size", Value: render.DefaultCellSize},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, result, err := loadAndSolve(ctx, cmd)
			if err != nil {
				return err
			}

			var frame *engine.PlaybackFrame
			if result.Found {
				solution := cmd.Int("solution")
				sol, err := result.Solution(solution)
				if err != nil {
					return err
				}
				step := cmd.Int("step")
				if step < 0 {
					step = sol.Steps()
				}
				if frame, err = eng.Frame(solution, step); err != nil {
					return err
				}
			}

			data, err := render.PNG(eng.Grid(), frame, render.Options{
				CellSize: cmd.Int("cell-size"),
				Title:    eng.Config().Name,
			})
			if err != nil {
				return err
			}
			path := cmd.String("out")
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(out(cmd), "Wrote %s\n", path)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "solve a universe and replay the route in the terminal",
		ArgsUsage: "<universe-file>",
		Flags: append(searchFlags(),
			&cli.DurationFlag{Name: "interval", Value: 300 * time.Millisecond, Usage: "autoplay step interval"},
			&cli.BoolFlag{Name: "autoplay", Value: true},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, _, err := loadAndSolve(ctx, cmd)
			if err != nil {
				return err
			}

			screen, err := newScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			viewer := terminal.NewViewer(screen, eng, cmd.Duration("interval"))
			viewer.SetPlaying(cmd.Bool("autoplay"))
			err = viewer.Run(ctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
}
