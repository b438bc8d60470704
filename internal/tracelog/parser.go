package tracelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// rawEntry is the raw JSON structure for parsing. One shape covers every
// entry type; absent fields stay zero.
type rawEntry struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
	Type      string `json:"type"`

	// scroll_frame fields
	ViewportHeight float64 `json:"viewport_height,omitempty"`
	ContentHeight  float64 `json:"content_height,omitempty"`
	ContentOffset  float64 `json:"content_offset,omitempty"`
	Distance       float64 `json:"distance,omitempty"`
	Delta          float64 `json:"delta,omitempty"`
	Programmatic   bool    `json:"programmatic,omitempty"`
	UserMoved      bool    `json:"user_moved,omitempty"`
	Upward         bool    `json:"upward,omitempty"`

	// content_size fields
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Grew    bool    `json:"grew,omitempty"`
	Verdict string  `json:"verdict,omitempty"`

	// command fields
	Animated    bool   `json:"animated,omitempty"`
	DelayMs     int64  `json:"delay_ms,omitempty"`
	WindowUntil string `json:"window_until,omitempty"`

	// lifecycle fields
	Op string `json:"op,omitempty"`

	State *State `json:"state,omitempty"`
}

// ListSessions returns summaries of all traces in the directory, sorted by
// start time (most recent first).
func ListSessions(dir string) ([]SessionSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []SessionSummary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}

		filePath := filepath.Join(dir, entry.Name())
		summary, err := parseSessionSummary(filePath)
		if err != nil {
			continue // Skip malformed files
		}
		sessions = append(sessions, summary)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})

	return sessions, nil
}

// parseSessionSummary extracts summary info from a trace file
func parseSessionSummary(filePath string) (SessionSummary, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return SessionSummary{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return SessionSummary{}, err
	}

	summary := SessionSummary{
		ID:       strings.TrimSuffix(filepath.Base(filePath), ".jsonl"),
		FilePath: filePath,
		FileSize: info.Size(),
	}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		var entry rawEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			continue
		}

		if summary.StartTime.IsZero() || ts.Before(summary.StartTime) {
			summary.StartTime = ts
		}

		switch entry.Type {
		case "scroll_frame":
			summary.Frames++
			if entry.UserMoved {
				summary.UserGestures++
			}
		case "content_size":
			summary.SizeReports++
			if entry.Verdict == "badge" {
				summary.Badges++
			}
		case "command":
			summary.Commands++
		}
	}
	return summary, scanner.Err()
}

// ParseSession parses a full trace file into a Session struct.
func ParseSession(filePath string) (*Session, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	session := &Session{
		ID:       strings.TrimSuffix(filepath.Base(filePath), ".jsonl"),
		FilePath: filePath,
	}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		var entry rawEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			continue
		}

		if session.StartTime.IsZero() || ts.Before(session.StartTime) {
			session.StartTime = ts
		}
		if ts.After(session.EndTime) {
			session.EndTime = ts
		}

		switch entry.Type {
		case "scroll_frame":
			session.Frames++
			if entry.UserMoved {
				session.UserGestures++
			}
			session.Entries = append(session.Entries, FrameEntry{
				Timestamp:      ts,
				ViewportHeight: entry.ViewportHeight,
				ContentHeight:  entry.ContentHeight,
				ContentOffset:  entry.ContentOffset,
				Distance:       entry.Distance,
				Delta:          entry.Delta,
				Programmatic:   entry.Programmatic,
				UserMoved:      entry.UserMoved,
				Upward:         entry.Upward,
				State:          stateOrZero(entry.State),
			})

		case "content_size":
			session.SizeReports++
			if entry.Verdict == "badge" {
				session.Badges++
			}
			session.Entries = append(session.Entries, SizeEntry{
				Timestamp: ts,
				Width:     entry.Width,
				Height:    entry.Height,
				Grew:      entry.Grew,
				Verdict:   entry.Verdict,
				State:     stateOrZero(entry.State),
			})

		case "command":
			session.Commands++
			windowUntil, _ := time.Parse(time.RFC3339Nano, entry.WindowUntil)
			session.Entries = append(session.Entries, CommandEntry{
				Timestamp:   ts,
				Animated:    entry.Animated,
				DelayMs:     entry.DelayMs,
				WindowUntil: windowUntil,
			})

		case "lifecycle":
			session.Entries = append(session.Entries, LifecycleEntry{
				Timestamp: ts,
				Op:        entry.Op,
				State:     stateOrZero(entry.State),
			})
		}
	}

	return session, scanner.Err()
}

func stateOrZero(s *State) State {
	if s == nil {
		return State{}
	}
	return *s
}

// GetSessionByNumber returns the session at the given 1-based index
// (1 = most recent)
func GetSessionByNumber(dir string, num int) (*SessionSummary, error) {
	sessions, err := ListSessions(dir)
	if err != nil {
		return nil, err
	}

	if num < 1 || num > len(sessions) {
		return nil, nil
	}

	return &sessions[num-1], nil
}

// GetSessionByID returns the session with the given ID
func GetSessionByID(dir, id string) (*SessionSummary, error) {
	sessions, err := ListSessions(dir)
	if err != nil {
		return nil, err
	}

	for _, s := range sessions {
		if s.ID == id {
			return &s, nil
		}
	}

	return nil, nil
}

// ResolveSession resolves a session identifier (number or ID) to a summary
func ResolveSession(dir, identifier string) (*SessionSummary, error) {
	if num, ok := parsePositiveInt(identifier); ok {
		return GetSessionByNumber(dir, num)
	}

	return GetSessionByID(dir, identifier)
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, n > 0
}

// ParseRawLines parses a trace file and returns raw JSON lines
func ParseRawLines(filePath string) ([]json.RawMessage, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []json.RawMessage
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		// Make a copy since scanner reuses the buffer
		lineCopy := make([]byte, len(line))
		copy(lineCopy, line)
		lines = append(lines, json.RawMessage(lineCopy))
	}

	return lines, scanner.Err()
}
