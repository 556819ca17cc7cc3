package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
)

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "print the first collision and the last cart of a raw track map",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pad",
				Usage: "pad short rows with empty cells",
			},
			&cli.IntFlag{
				Name:  "max-ticks",
				Value: engine.DefaultMaxTicks,
				Usage: "give up after this many ticks (0 for no bound)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("solve needs exactly one map file (use - for stdin)")
			}

			data, err := readInput(cmd.Args().First(), cmd.Root().Reader)
			if err != nil {
				return err
			}

			return solve(ctx, cmd.Root().Writer, data, engine.ParseOptions{PadRaggedRows: cmd.Bool("pad")}, int(cmd.Int("max-ticks")))
		},
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	return data, nil
}

// solve runs the map to completion and prints both answers.
func solve(ctx context.Context, w io.Writer, data []byte, opts engine.ParseOptions, maxTicks int) error {
	logger := loggerFrom(ctx)

	sim, err := engine.NewSimulationFromLayout(engine.SplitLayout(string(data)), opts)
	if err != nil {
		return err
	}
	logger.Debug("map parsed", "carts", sim.AliveCount(), "width", sim.Grid().Width(), "height", sim.Grid().Height())

	report, err := sim.Run(ctx, maxTicks)
	if err != nil {
		return err
	}
	logger.Debug("run finished", "ticks", report.Ticks, "collisions", len(report.Collisions))

	fmt.Fprintf(w, "first collision: %s\n", report.FormatFirstCollision())
	fmt.Fprintf(w, "last cart: %s\n", report.FormatSurvivor())
	return nil
}
