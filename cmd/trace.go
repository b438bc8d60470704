package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/samsaffron/term-transcript/internal/tracelog"
)

var (
	traceDays         int
	traceShowFrames   bool
	traceCommandsOnly bool
	traceTimestamps   bool
	traceRaw          bool
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect recorded scroll traces",
	Long: `List and inspect scroll traces recorded with --debug-trace.

A trace is one JSONL file per viewer session holding every scroll frame,
content-size report and scroll command the engine saw, with the verdict
it reached for each.

Examples:
  term-transcript trace                   # list recent traces
  term-transcript trace show 1            # show the most recent trace
  term-transcript trace show 1 --frames   # include raw scroll frames
  term-transcript trace show 1 --raw      # dump the JSONL as-is`,
	Args: cobra.NoArgs,
	RunE: runTraceList,
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded traces",
	Args:  cobra.NoArgs,
	RunE:  runTraceList,
}

var traceShowCmd = &cobra.Command{
	Use:   "show <number-or-id>",
	Short: "Show one trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceShow,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.AddCommand(traceListCmd)
	traceCmd.AddCommand(traceShowCmd)

	traceCmd.PersistentFlags().IntVar(&traceDays, "days", 7, "Only consider traces from the last N days")
	traceShowCmd.Flags().BoolVar(&traceShowFrames, "frames", false, "Include raw scroll frames (high frequency)")
	traceShowCmd.Flags().BoolVar(&traceCommandsOnly, "commands-only", false, "Only show scroll commands and lifecycle calls")
	traceShowCmd.Flags().BoolVar(&traceTimestamps, "timestamps", false, "Show absolute timestamps instead of session offsets")
	traceShowCmd.Flags().BoolVar(&traceRaw, "raw", false, "Dump the raw JSONL entries")
}

func traceDir() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Trace.TraceDir()
}

func runTraceList(cmd *cobra.Command, args []string) error {
	dir, err := traceDir()
	if err != nil {
		return err
	}

	sessions, err := tracelog.ListSessions(dir)
	if err != nil {
		return fmt.Errorf("failed to list traces: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -traceDays)
	recent := sessions[:0]
	for _, s := range sessions {
		if s.StartTime.After(cutoff) {
			recent = append(recent, s)
		}
	}

	tracelog.FormatSessionList(os.Stdout, recent, traceDays)
	return nil
}

func runTraceShow(cmd *cobra.Command, args []string) error {
	dir, err := traceDir()
	if err != nil {
		return err
	}

	summary, err := tracelog.ResolveSession(dir, args[0])
	if err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("trace %q not found", args[0])
	}

	if traceRaw {
		lines, err := tracelog.ParseRawLines(summary.FilePath)
		if err != nil {
			return fmt.Errorf("failed to read trace: %w", err)
		}
		for _, line := range lines {
			fmt.Println(string(line))
		}
		return nil
	}

	session, err := tracelog.ParseSession(summary.FilePath)
	if err != nil {
		return fmt.Errorf("failed to parse trace: %w", err)
	}

	tracelog.FormatSession(os.Stdout, session, tracelog.FormatOptions{
		ShowFrames:    traceShowFrames,
		CommandsOnly:  traceCommandsOnly,
		ShowTimestamp: traceTimestamps,
	})
	return nil
}
