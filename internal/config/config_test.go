package config

import (
	"testing"
	"time"

	"github.com/samsaffron/term-transcript/internal/autoscroll"
)

func TestScrollConfigEngine(t *testing.T) {
	sc := ScrollConfig{
		NearBottomThreshold:    80,
		ShowButtonThreshold:    140,
		GrowthNoiseFloor:       40,
		DirectionNoiseFloor:    4,
		MovementNoiseFloor:     1,
		UserScrollCooldownMs:   400,
		InstantScrollWindowMs:  250,
		AnimatedScrollWindowMs: 450,
		SendScrollWindowMs:     550,
		SendScrollDelayMs:      40,
	}

	ec := sc.Engine()
	if ec.NearBottomThreshold != 80 {
		t.Fatalf("NearBottomThreshold = %v, want 80", ec.NearBottomThreshold)
	}
	if ec.UserScrollCooldown != 400*time.Millisecond {
		t.Fatalf("UserScrollCooldown = %v, want 400ms", ec.UserScrollCooldown)
	}
	if ec.SendScrollDelay != 40*time.Millisecond {
		t.Fatalf("SendScrollDelay = %v, want 40ms", ec.SendScrollDelay)
	}
}

func TestZeroScrollConfigMatchesEngineDefaults(t *testing.T) {
	// An empty scroll section defers entirely to the engine's defaulting.
	e := autoscroll.New(ScrollConfig{}.Engine(), nil)

	if got := e.Config(); got != autoscroll.DefaultConfig() {
		t.Fatalf("effective config = %+v, want defaults", got)
	}
}

func TestDefaultUsesRowScaledDistances(t *testing.T) {
	cfg := Default()

	if cfg.Scroll.NearBottomThreshold != DefaultNearBottomRows {
		t.Fatalf("NearBottomThreshold = %v, want %v", cfg.Scroll.NearBottomThreshold, DefaultNearBottomRows)
	}
	if cfg.Scroll.ShowButtonThreshold <= cfg.Scroll.NearBottomThreshold {
		t.Fatalf("no hysteresis band: near=%v show=%v",
			cfg.Scroll.NearBottomThreshold, cfg.Scroll.ShowButtonThreshold)
	}

	// Timing values pass through from the engine untouched.
	ec := cfg.Scroll.Engine()
	if ec.UserScrollCooldown != autoscroll.DefaultUserScrollCooldown {
		t.Fatalf("UserScrollCooldown = %v, want %v", ec.UserScrollCooldown, autoscroll.DefaultUserScrollCooldown)
	}
	if ec.SendScrollDelay != autoscroll.DefaultSendScrollDelay {
		t.Fatalf("SendScrollDelay = %v, want %v", ec.SendScrollDelay, autoscroll.DefaultSendScrollDelay)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.Scroll.NearBottomThreshold = 100
	cfg.Scroll.ShowButtonThreshold = 150

	cfg.ApplyOverrides(120, 0)
	if cfg.Scroll.NearBottomThreshold != 120 {
		t.Fatalf("NearBottomThreshold = %v, want 120", cfg.Scroll.NearBottomThreshold)
	}
	if cfg.Scroll.ShowButtonThreshold != 150 {
		t.Fatalf("ShowButtonThreshold changed unexpectedly: %v", cfg.Scroll.ShowButtonThreshold)
	}
}

func TestTraceDirOverride(t *testing.T) {
	tc := TraceConfig{Dir: "/tmp/custom-traces"}
	dir, err := tc.TraceDir()
	if err != nil {
		t.Fatalf("TraceDir: %v", err)
	}
	if dir != "/tmp/custom-traces" {
		t.Fatalf("dir = %q, want override", dir)
	}
}
