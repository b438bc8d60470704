package autoscroll

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TraceLogger records engine decisions to a JSONL file for debugging.
// Each session gets its own file based on the session ID. All methods are
// nil-safe so the engine can call through an absent logger.
type TraceLogger struct {
	baseDir   string
	sessionID string
	mu        sync.Mutex
	file      *os.File
	writer    *bufio.Writer
	closeOnce sync.Once
	closed    bool
}

// traceEntry is the common structure for all trace entries.
type traceEntry struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
	Type      string `json:"type"` // "scroll_frame", "content_size", "command" or "lifecycle"
}

type traceSnapshot struct {
	IsNearBottom      bool `json:"is_near_bottom"`
	AutoScrollEnabled bool `json:"auto_scroll_enabled"`
	HasNewMessages    bool `json:"has_new_messages"`
	ShowScrollButton  bool `json:"show_scroll_button"`
	InitialScrollDone bool `json:"initial_scroll_done"`
}

type traceScrollFrameEntry struct {
	traceEntry
	ViewportHeight float64       `json:"viewport_height"`
	ContentHeight  float64       `json:"content_height"`
	ContentOffset  float64       `json:"content_offset"`
	Distance       float64       `json:"distance"`
	Delta          float64       `json:"delta"`
	Programmatic   bool          `json:"programmatic"`
	UserMoved      bool          `json:"user_moved"`
	Upward         bool          `json:"upward"`
	State          traceSnapshot `json:"state"`
}

type traceContentSizeEntry struct {
	traceEntry
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Grew    bool          `json:"grew"`
	Verdict string        `json:"verdict"`
	State   traceSnapshot `json:"state"`
}

type traceCommandEntry struct {
	traceEntry
	Animated    bool   `json:"animated"`
	DelayMs     int64  `json:"delay_ms,omitempty"`
	WindowUntil string `json:"window_until"`
}

type traceLifecycleEntry struct {
	traceEntry
	Op    string        `json:"op"`
	State traceSnapshot `json:"state"`
}

// NewTraceLogger creates a trace logger writing under baseDir. Old trace
// files (>7 days) are cleaned up on open.
func NewTraceLogger(baseDir, sessionID string) (*TraceLogger, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}

	_ = CleanupOldTraces(baseDir, 7*24*time.Hour)

	filename := filepath.Join(baseDir, sessionID+".jsonl")
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &TraceLogger{
		baseDir:   baseDir,
		sessionID: sessionID,
		file:      file,
		writer:    bufio.NewWriter(file),
	}, nil
}

// Path returns the trace file location.
func (l *TraceLogger) Path() string {
	if l == nil {
		return ""
	}
	return filepath.Join(l.baseDir, l.sessionID+".jsonl")
}

func convertSnapshot(s Snapshot) traceSnapshot {
	return traceSnapshot{
		IsNearBottom:      s.IsNearBottom,
		AutoScrollEnabled: s.AutoScrollEnabled,
		HasNewMessages:    s.HasNewMessages,
		ShowScrollButton:  s.ShowScrollButton,
		InitialScrollDone: s.InitialScrollDone,
	}
}

func (l *TraceLogger) entry(now time.Time, typ string) traceEntry {
	return traceEntry{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		SessionID: l.sessionID,
		Type:      typ,
	}
}

func (l *TraceLogger) logScrollFrame(now time.Time, f ScrollFrame, distance, delta float64, programmatic, userMoved, upward bool, state Snapshot) {
	if l == nil {
		return
	}
	l.writeEntry(traceScrollFrameEntry{
		traceEntry:     l.entry(now, "scroll_frame"),
		ViewportHeight: f.ViewportHeight,
		ContentHeight:  f.ContentHeight,
		ContentOffset:  f.ContentOffset,
		Distance:       distance,
		Delta:          delta,
		Programmatic:   programmatic,
		UserMoved:      userMoved,
		Upward:         upward,
		State:          convertSnapshot(state),
	})
}

func (l *TraceLogger) logContentSize(now time.Time, s ContentSize, grew bool, verdict string, state Snapshot) {
	if l == nil {
		return
	}
	l.writeEntry(traceContentSizeEntry{
		traceEntry: l.entry(now, "content_size"),
		Width:      s.Width,
		Height:     s.Height,
		Grew:       grew,
		Verdict:    verdict,
		State:      convertSnapshot(state),
	})
}

func (l *TraceLogger) logCommand(now time.Time, req ScrollRequest, windowUntil time.Time) {
	if l == nil {
		return
	}
	l.writeEntry(traceCommandEntry{
		traceEntry:  l.entry(now, "command"),
		Animated:    req.Animated,
		DelayMs:     req.Delay.Milliseconds(),
		WindowUntil: windowUntil.UTC().Format(time.RFC3339Nano),
	})
}

func (l *TraceLogger) logLifecycle(now time.Time, op string, state Snapshot) {
	if l == nil {
		return
	}
	l.writeEntry(traceLifecycleEntry{
		traceEntry: l.entry(now, "lifecycle"),
		Op:         op,
		State:      convertSnapshot(state),
	})
	// Lifecycle calls are infrequent and usually mark the interesting
	// moments, flush so a crash right after still has them on disk.
	l.Flush()
}

// writeEntry writes a single entry as a JSON line. Does not flush; callers
// flush when appropriate so high-frequency scroll frames stay cheap.
func (l *TraceLogger) writeEntry(entry any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.writer.Write(data)
	l.writer.WriteString("\n")
}

// Flush flushes the buffered writer to disk.
func (l *TraceLogger) Flush() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.writer == nil {
		return
	}
	l.writer.Flush()
}

// Close closes the trace logger and flushes any buffered data. Close is
// idempotent and safe to call multiple times.
func (l *TraceLogger) Close() error {
	if l == nil {
		return nil
	}

	var closeErr error
	l.closeOnce.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		if l.file == nil {
			return
		}

		if err := l.writer.Flush(); err != nil {
			closeErr = err
		}
		if err := l.file.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
		l.closed = true
	})
	return closeErr
}

// CleanupOldTraces removes JSONL trace files older than maxAge from the
// specified directory.
func CleanupOldTraces(baseDir string, maxAge time.Duration) error {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(baseDir, entry.Name()))
		}
	}

	return nil
}
