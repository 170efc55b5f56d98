package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avikko/labelrun-go/cmd"
	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/logging"
)

func main() {
	exitCode := mainWithExitCode()
	os.Exit(exitCode)
}

func mainWithExitCode() int {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 1
	}

	if settings.Main.Log.Enabled {
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.Main.Log.Path, "labelrun", slog.LevelInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		} else {
			slog.SetDefault(fileLogger)
			defer closeLogger() //nolint:errcheck
		}
	}

	// Cancel in-flight batches between labels on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}
