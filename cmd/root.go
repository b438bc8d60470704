package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVar(&debugTrace, "debug-trace", false, "Record engine decisions to a JSONL trace file")
}

var rootCmd = &cobra.Command{
	Use:   "term-transcript",
	Short: "Streaming transcript viewer that follows the bottom",
	Long: `term-transcript renders a live conversation transcript and keeps the
view pinned to the bottom while output streams in.

Scrolling up releases the pin; new content then raises a badge instead of
yanking the view around. ctrl+g jumps back down and re-pins.

Examples:
  term-transcript demo                  # run the scripted demo feed
  term-transcript demo --debug-trace    # record engine decisions
  term-transcript trace                 # list recorded traces
  term-transcript trace show 1          # inspect a trace

  term-transcript config                # view configuration`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var debugTrace bool

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
