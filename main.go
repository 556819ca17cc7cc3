// Command cartsim simulates mine carts on a track and reports where they
// crash.
//
// Commands:
//  1. "solve" reads a raw track map and prints the first collision and the last cart
//  2. "server" (default) runs the HTTP server exposing the REST API, websocket updates and an /mcp endpoint
//  3. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  4. "version" prints the version
//
// Flags control host/port, config directory, log level and optional ngrok
// tunneling for easy external access during development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/cartsim/internal/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Mine Cart Madness"
)

// main loads .env, builds the command tree and runs it until a signal arrives.
func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.Before = func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		logger := newLogger(cmd)
		if envErr != nil && !os.IsNotExist(envErr) {
			logger.Warn("error loading .env file", "error", envErr)
		}
		return withLogger(ctx, logger), nil
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name, err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "cartsim",
		Usage:   "simulate mine carts and find where they crash",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "shorthand for --log-level debug",
			},
		},
		Commands: []*cli.Command{
			solveCommand(),
			serverCommand(),
			mcpCommand(),
			versionCommand(),
		},
		DefaultCommand: "server",
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
			return nil
		},
	}
}

// serviceFlags are shared by the commands that wire the full stack.
func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "config-dir",
			Value:   "configs",
			Usage:   "directory containing track configurations",
			Sources: cli.EnvVars("CONFIG_DIR"),
		},
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := logging.ParseLevel(cmd.String("log-level"))
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

type loggerKey struct{}

func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return logging.NewNop()
}
