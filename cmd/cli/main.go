package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/analytica/atomflow/internal/app"
	"github.com/analytica/atomflow/internal/cli"
)

// main is the entrypoint for the atomflow application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW, logW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// Module registration panics on duplicate or malformed atom specs;
	// recover here to turn a startup misconfiguration into a clean exit.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	atomflowApp := app.NewApp(outW, logW, appConfig)
	return atomflowApp.Run(context.Background(), appConfig)
}
