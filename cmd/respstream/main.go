// Command respstream reconstructs conversation state from a generation event
// stream: replay a captured stream, tail a live one, or serve the assembled
// snapshot over HTTP.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "respstream",
	Short: "Reconstruct session state from generation event streams",
	Long: `Respstream consumes the incremental event stream emitted during a model
generation and materializes it into a conversation transcript plus the
canonical response snapshot, from a captured file, a live NATS subject,
or behind an HTTP endpoint.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger creates a structured logger with the configured verbosity.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
