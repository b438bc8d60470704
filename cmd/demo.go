package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/samsaffron/term-transcript/internal/autoscroll"
	"github.com/samsaffron/term-transcript/internal/tui/transcript"
)

var (
	demoInterval   int
	demoNearBottom float64
	demoShowButton float64
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the transcript viewer against a scripted feed",
	Long: `Run the transcript viewer against a looping scripted conversation.

The feed streams chunks at a fixed interval so the bottom-follow behavior
can be exercised without a live backend. Scroll up mid-stream to see the
badge; press ctrl+g to jump back down.

Examples:
  term-transcript demo
  term-transcript demo --interval 100
  term-transcript demo --debug-trace --near-bottom 5`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoInterval, "interval", 0, "Milliseconds between streamed chunks (overrides config)")
	demoCmd.Flags().Float64Var(&demoNearBottom, "near-bottom", 0, "Rows from bottom that count as near (overrides config)")
	demoCmd.Flags().Float64Var(&demoShowButton, "show-button", 0, "Rows from bottom that show the jump hint (overrides config)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if demoInterval > 0 {
		cfg.Demo.IntervalMs = demoInterval
	}
	cfg.ApplyOverrides(demoNearBottom, demoShowButton)
	initThemeFromConfig(cfg)

	var trace *autoscroll.TraceLogger
	if debugTrace || cfg.Trace.Enabled {
		dir, err := cfg.Trace.TraceDir()
		if err != nil {
			return fmt.Errorf("failed to resolve trace dir: %w", err)
		}
		sessionID := time.Now().Format("20060102-150405")
		trace, err = autoscroll.NewTraceLogger(dir, sessionID)
		if err != nil {
			return fmt.Errorf("failed to open trace log: %w", err)
		}
		defer trace.Close()
		fmt.Fprintf(os.Stderr, "Recording scroll trace: %s\n", trace.Path())
	}

	model := transcript.New(cfg, trace)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}
