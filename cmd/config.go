package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samsaffron/term-transcript/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage term-transcript configuration",
	Long: `View or edit your term-transcript configuration.

Examples:
  term-transcript config              # show current config
  term-transcript config edit         # edit in $EDITOR
  term-transcript config path         # print config file path
  term-transcript config reset        # reset to defaults`,
	RunE: configShow, // Default to show
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file in $EDITOR",
	RunE:  configEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print configuration file path",
	RunE:  configPath,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long:  `Reset the configuration file to default values. This will overwrite any existing configuration.`,
	RunE:  configReset,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configResetCmd)
}

func configShow(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		fmt.Printf("# No config file (using defaults)\n")
		fmt.Printf("# Create one at: %s\n\n", configPath)
	} else {
		fmt.Printf("# %s\n\n", configPath)
	}

	fmt.Printf("scroll:\n")
	fmt.Printf("  near_bottom_threshold: %g\n", cfg.Scroll.NearBottomThreshold)
	fmt.Printf("  show_button_threshold: %g\n", cfg.Scroll.ShowButtonThreshold)
	fmt.Printf("  growth_noise_floor: %g\n", cfg.Scroll.GrowthNoiseFloor)
	fmt.Printf("  direction_noise_floor: %g\n", cfg.Scroll.DirectionNoiseFloor)
	fmt.Printf("  movement_noise_floor: %g\n", cfg.Scroll.MovementNoiseFloor)
	fmt.Printf("  user_scroll_cooldown_ms: %d\n", cfg.Scroll.UserScrollCooldownMs)
	fmt.Printf("  instant_scroll_window_ms: %d\n", cfg.Scroll.InstantScrollWindowMs)
	fmt.Printf("  animated_scroll_window_ms: %d\n", cfg.Scroll.AnimatedScrollWindowMs)
	fmt.Printf("  send_scroll_window_ms: %d\n", cfg.Scroll.SendScrollWindowMs)
	fmt.Printf("  send_scroll_delay_ms: %d\n", cfg.Scroll.SendScrollDelayMs)

	fmt.Printf("\ntrace:\n")
	fmt.Printf("  enabled: %v\n", cfg.Trace.Enabled)
	if cfg.Trace.Dir != "" {
		fmt.Printf("  dir: %s\n", cfg.Trace.Dir)
	} else if dir, err := cfg.Trace.TraceDir(); err == nil {
		fmt.Printf("  # dir: %s\n", dir)
	}

	fmt.Printf("\ndemo:\n")
	fmt.Printf("  interval_ms: %d\n", cfg.Demo.IntervalMs)

	return nil
}

func configPath(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

func configEdit(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create default config if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(defaultConfigContent()), 0644); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	// Get editor from environment
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}

	editCmd := exec.Command(editor, configPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}

func configReset(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfigContent()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Reset config: %s\n", configPath)
	return nil
}

func defaultConfigContent() string {
	return `# term-transcript configuration
#
# Distances are in terminal rows. The band between near_bottom_threshold
# and show_button_threshold is a dead zone where the pin state does not
# change, which keeps it from flickering at the boundary.

scroll:
  near_bottom_threshold: 3
  show_button_threshold: 5

  # Minimum deltas before an event counts at all.
  growth_noise_floor: 0.5
  direction_noise_floor: 1.5
  movement_noise_floor: 0.5

  # How long after a user scroll the engine holds off auto-scrolling.
  user_scroll_cooldown_ms: 500

  # How long scroll frames are attributed to the engine's own commands.
  instant_scroll_window_ms: 300
  animated_scroll_window_ms: 500
  send_scroll_window_ms: 600
  send_scroll_delay_ms: 50

trace:
  # Record engine decisions to JSONL (same as --debug-trace).
  enabled: false
  # dir: /path/to/traces

demo:
  interval_ms: 350

# theme:
#   primary: "#b8bb26"
#   muted: "#928374"
#   user_msg_bg: "#3c3836"
`
}
