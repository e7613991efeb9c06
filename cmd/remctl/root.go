package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose  bool
	compress bool
)

var rootCmd = &cobra.Command{
	Use:   "remctl",
	Short: "Inspect and manipulate reminiscence string-array snapshots",
	Long: `remctl is a tool for inspecting and modifying snapshot files produced
by the reminiscence string-array library. It can report statistics, dump or
query individual strings, rewrite snapshots compacted, and validate that a
snapshot still loads cleanly.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&compress, "compress", false, "zstd-compress snapshots when writing")
	rootCmd.SilenceUsage = true
}

// initLogging configures the default logger: discarded unless --verbose.
func initLogging() {
	out := io.Writer(io.Discard)
	level := slog.LevelInfo
	if verbose {
		out = os.Stderr
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
