package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nstehr/skirmish/level"
)

const banner = `
███████╗██╗  ██╗██╗██████╗ ███╗   ███╗██╗███████╗██╗  ██╗
██╔════╝██║ ██╔╝██║██╔══██╗████╗ ████║██║██╔════╝██║  ██║
███████╗█████╔╝ ██║██████╔╝██╔████╔██║██║███████╗███████║
╚════██║██╔═██╗ ██║██╔══██╗██║╚██╔╝██║██║╚════██║██╔══██║
███████║██║  ██╗██║██║  ██║██║ ╚═╝ ██║██║███████║██║  ██║
╚══════╝╚═╝  ╚═╝╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝╚══════╝╚═╝  ╚═╝

Grid Tactics Rules Engine`

var (
	logLevel   string
	levelsFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skirmish",
		Short: "Turn-based grid tactics engine",
		Long: `Runs the tactics rules engine and its computer opponent, either as a
socket bridge for a rendering shell or as a headless match simulator.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&levelsFile, "levels", "", "YAML level file (defaults to the built-in campaign)")

	rootCmd.AddCommand(newServeCmd(), newSimulateCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return nil
}

func loadLevels() (*level.Set, error) {
	if levelsFile == "" {
		return level.Default(), nil
	}
	return level.Load(levelsFile)
}
