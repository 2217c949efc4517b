// Command navigate solves, generates, renders, and inspects universe files
// without running the server.
//
//	navigate solve --all universes/classic.yaml
//	navigate generate --seed 7 --rows 12 --cols 12 --out universes/seven.yaml
//	navigate render --out classic.png universes/classic.yaml
//	navigate watch universes/classic.yaml
//	navigate validate universes
//	navigate analyze universes/classic.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/interstellar-mission/settings"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "navigate: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "navigate",
		Usage:   "plan spacecraft routes through grid universes",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			solveCommand(),
			generateCommand(),
			renderCommand(),
			watchCommand(),
			validateCommand(),
			analyzeCommand(),
		},
	}
}

// newLogger builds the CLI logger from the root --log-level flag.
func newLogger(cmd *cli.Command) *zap.Logger {
	logger, err := settings.NewLogger(settings.LoggingSettings{
		Level:  cmd.Root().String("log-level"),
		Format: "console",
	})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
