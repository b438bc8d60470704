package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samsaffron/term-transcript/internal/autoscroll"
	"github.com/spf13/viper"
)

type Config struct {
	Scroll ScrollConfig `mapstructure:"scroll"`
	Trace  TraceConfig  `mapstructure:"trace"`
	Demo   DemoConfig   `mapstructure:"demo"`
	Theme  ThemeConfig  `mapstructure:"theme"`
}

// Row-scale defaults for the terminal host. The engine's built-in
// defaults target pixel geometries; a terminal row is a much coarser unit,
// so the bands here are proportionally tighter. Time-based tunables are
// unit-independent and keep the engine's values.
const (
	DefaultNearBottomRows     = 3.0
	DefaultShowButtonRows     = 5.0
	DefaultGrowthFloorRows    = 0.5
	DefaultDirectionFloorRows = 1.5
	DefaultMovementFloorRows  = 0.5
)

// ScrollConfig exposes every engine tunable. The distance units are
// terminal rows.
type ScrollConfig struct {
	NearBottomThreshold float64 `mapstructure:"near_bottom_threshold"` // rows from bottom that count as "near"
	ShowButtonThreshold float64 `mapstructure:"show_button_threshold"` // rows from bottom that show the jump button

	GrowthNoiseFloor    float64 `mapstructure:"growth_noise_floor"`    // min height delta that counts as growth
	DirectionNoiseFloor float64 `mapstructure:"direction_noise_floor"` // min upward delta that counts as intent
	MovementNoiseFloor  float64 `mapstructure:"movement_noise_floor"`  // min delta that counts as movement

	UserScrollCooldownMs   int `mapstructure:"user_scroll_cooldown_ms"`
	InstantScrollWindowMs  int `mapstructure:"instant_scroll_window_ms"`
	AnimatedScrollWindowMs int `mapstructure:"animated_scroll_window_ms"`
	SendScrollWindowMs     int `mapstructure:"send_scroll_window_ms"`
	SendScrollDelayMs      int `mapstructure:"send_scroll_delay_ms"`
}

// TraceConfig configures decision-trace recording
type TraceConfig struct {
	Enabled bool   `mapstructure:"enabled"` // Record engine decisions to JSONL
	Dir     string `mapstructure:"dir"`     // Override default trace directory
}

// DemoConfig configures the synthetic demo feed
type DemoConfig struct {
	IntervalMs int `mapstructure:"interval_ms"` // Delay between streamed chunks
}

// ThemeConfig allows customization of UI colors
// Colors can be ANSI color numbers (0-255) or hex codes (#RRGGBB)
type ThemeConfig struct {
	Primary   string `mapstructure:"primary"`   // main accent (badge, button hint)
	Secondary string `mapstructure:"secondary"` // secondary accent (headers, borders)
	Success   string `mapstructure:"success"`   // success states
	Error     string `mapstructure:"error"`     // error states
	Warning   string `mapstructure:"warning"`   // warnings
	Muted     string `mapstructure:"muted"`     // dimmed text
	Text      string `mapstructure:"text"`      // primary text
	Spinner   string `mapstructure:"spinner"`   // streaming spinner
	UserMsgBg string `mapstructure:"user_msg_bg"`
}

// Engine converts the scroll section into an engine configuration.
func (c ScrollConfig) Engine() autoscroll.Config {
	return autoscroll.Config{
		NearBottomThreshold:  c.NearBottomThreshold,
		ShowButtonThreshold:  c.ShowButtonThreshold,
		GrowthNoiseFloor:     c.GrowthNoiseFloor,
		DirectionNoiseFloor:  c.DirectionNoiseFloor,
		MovementNoiseFloor:   c.MovementNoiseFloor,
		UserScrollCooldown:   time.Duration(c.UserScrollCooldownMs) * time.Millisecond,
		InstantScrollWindow:  time.Duration(c.InstantScrollWindowMs) * time.Millisecond,
		AnimatedScrollWindow: time.Duration(c.AnimatedScrollWindowMs) * time.Millisecond,
		SendScrollWindow:     time.Duration(c.SendScrollWindowMs) * time.Millisecond,
		SendScrollDelay:      time.Duration(c.SendScrollDelayMs) * time.Millisecond,
	}
}

// TraceDir resolves the directory trace files are written to.
func (c TraceConfig) TraceDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "traces"), nil
}

// Default returns the built-in configuration, identical to what Load
// produces when no config file is present.
func Default() *Config {
	return &Config{
		Scroll: ScrollConfig{
			NearBottomThreshold:    DefaultNearBottomRows,
			ShowButtonThreshold:    DefaultShowButtonRows,
			GrowthNoiseFloor:       DefaultGrowthFloorRows,
			DirectionNoiseFloor:    DefaultDirectionFloorRows,
			MovementNoiseFloor:     DefaultMovementFloorRows,
			UserScrollCooldownMs:   int(autoscroll.DefaultUserScrollCooldown.Milliseconds()),
			InstantScrollWindowMs:  int(autoscroll.DefaultInstantScrollWindow.Milliseconds()),
			AnimatedScrollWindowMs: int(autoscroll.DefaultAnimatedScrollWindow.Milliseconds()),
			SendScrollWindowMs:     int(autoscroll.DefaultSendScrollWindow.Milliseconds()),
			SendScrollDelayMs:      int(autoscroll.DefaultSendScrollDelay.Milliseconds()),
		},
		Demo: DemoConfig{IntervalMs: 350},
	}
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	// Distance defaults are row-scaled for the terminal; timing defaults
	// come straight from the engine.
	viper.SetDefault("scroll.near_bottom_threshold", DefaultNearBottomRows)
	viper.SetDefault("scroll.show_button_threshold", DefaultShowButtonRows)
	viper.SetDefault("scroll.growth_noise_floor", DefaultGrowthFloorRows)
	viper.SetDefault("scroll.direction_noise_floor", DefaultDirectionFloorRows)
	viper.SetDefault("scroll.movement_noise_floor", DefaultMovementFloorRows)
	viper.SetDefault("scroll.user_scroll_cooldown_ms", int(autoscroll.DefaultUserScrollCooldown.Milliseconds()))
	viper.SetDefault("scroll.instant_scroll_window_ms", int(autoscroll.DefaultInstantScrollWindow.Milliseconds()))
	viper.SetDefault("scroll.animated_scroll_window_ms", int(autoscroll.DefaultAnimatedScrollWindow.Milliseconds()))
	viper.SetDefault("scroll.send_scroll_window_ms", int(autoscroll.DefaultSendScrollWindow.Milliseconds()))
	viper.SetDefault("scroll.send_scroll_delay_ms", int(autoscroll.DefaultSendScrollDelay.Milliseconds()))

	viper.SetDefault("trace.enabled", false)
	viper.SetDefault("demo.interval_ms", 350)

	// Read config file (optional - won't error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ApplyOverrides applies CLI flag overrides to the config. Zero values
// leave the config untouched.
func (c *Config) ApplyOverrides(nearBottom, showButton float64) {
	if nearBottom > 0 {
		c.Scroll.NearBottomThreshold = nearBottom
	}
	if showButton > 0 {
		c.Scroll.ShowButtonThreshold = showButton
	}
}

// GetConfigDir returns the directory where configuration is stored
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "term-transcript"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "term-transcript"), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
