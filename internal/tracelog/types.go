// Package tracelog parses and formats the JSONL decision traces the
// auto-scroll engine records, so a misbehaving scroll interaction can be
// reconstructed event by event after the fact.
package tracelog

import "time"

// FrameEntry is one processed scroll frame with the gate's classification.
type FrameEntry struct {
	Timestamp      time.Time
	ViewportHeight float64
	ContentHeight  float64
	ContentOffset  float64
	Distance       float64
	Delta          float64
	Programmatic   bool
	UserMoved      bool
	Upward         bool
	State          State
}

// SizeEntry is one content-size report with the reconciler's verdict.
type SizeEntry struct {
	Timestamp time.Time
	Width     float64
	Height    float64
	Grew      bool
	Verdict   string // "initial_jump", "badge", "auto_scroll" or "ignored"
	State     State
}

// CommandEntry is one scroll-to-end command issued to the host.
type CommandEntry struct {
	Timestamp   time.Time
	Animated    bool
	DelayMs     int64
	WindowUntil time.Time
}

// LifecycleEntry is one explicit lifecycle call.
type LifecycleEntry struct {
	Timestamp time.Time
	Op        string
	State     State
}

// State is the engine snapshot as recorded in the trace.
type State struct {
	IsNearBottom      bool `json:"is_near_bottom"`
	AutoScrollEnabled bool `json:"auto_scroll_enabled"`
	HasNewMessages    bool `json:"has_new_messages"`
	ShowScrollButton  bool `json:"show_scroll_button"`
	InitialScrollDone bool `json:"initial_scroll_done"`
}

// Session is a fully parsed trace file.
type Session struct {
	ID        string
	FilePath  string
	StartTime time.Time
	EndTime   time.Time

	// Entries in file order; each element is one of FrameEntry, SizeEntry,
	// CommandEntry or LifecycleEntry.
	Entries []any

	Frames       int
	SizeReports  int
	Commands     int
	UserGestures int
	Badges       int // size reports whose verdict was "badge"
}

// SessionSummary is the cheap listing view of a trace file.
type SessionSummary struct {
	ID        string
	FilePath  string
	FileSize  int64
	StartTime time.Time

	Frames       int
	SizeReports  int
	Commands     int
	UserGestures int
	Badges       int
}
