package tracelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleTrace = `{"timestamp":"2026-03-14T09:30:00Z","session_id":"sess-a","type":"command","animated":false,"window_until":"2026-03-14T09:30:00.3Z"}
{"timestamp":"2026-03-14T09:30:00Z","session_id":"sess-a","type":"content_size","width":800,"height":900,"verdict":"initial_jump","state":{"is_near_bottom":true,"auto_scroll_enabled":true,"initial_scroll_done":true}}
not json at all
{"timestamp":"2026-03-14T09:30:01Z","session_id":"sess-a","type":"scroll_frame","viewport_height":600,"content_height":900,"content_offset":100,"distance":200,"delta":-200,"user_moved":true,"upward":true,"state":{"show_scroll_button":true}}
{"timestamp":"2026-03-14T09:30:02Z","session_id":"sess-a","type":"content_size","width":800,"height":1100,"grew":true,"verdict":"badge","state":{"has_new_messages":true,"show_scroll_button":true}}
{"timestamp":"2026-03-14T09:30:03Z","session_id":"sess-a","type":"lifecycle","op":"scroll_to_bottom","state":{"is_near_bottom":true,"auto_scroll_enabled":true,"initial_scroll_done":true}}
{"timestamp":"2026-03-14T09:30:03Z","session_id":"sess-a","type":"command","animated":true,"window_until":"2026-03-14T09:30:03.5Z"}
`

func writeSampleTrace(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+".jsonl")
	if err := os.WriteFile(path, []byte(sampleTrace), 0600); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return path
}

func TestParseSession(t *testing.T) {
	path := writeSampleTrace(t, t.TempDir(), "sess-a")

	session, err := ParseSession(path)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}

	if session.ID != "sess-a" {
		t.Fatalf("ID = %q, want %q", session.ID, "sess-a")
	}
	// The garbage line is skipped, everything else parses.
	if len(session.Entries) != 6 {
		t.Fatalf("entries = %d, want 6", len(session.Entries))
	}
	if session.Frames != 1 || session.SizeReports != 2 || session.Commands != 2 {
		t.Fatalf("counts = %d/%d/%d, want 1/2/2", session.Frames, session.SizeReports, session.Commands)
	}
	if session.UserGestures != 1 {
		t.Fatalf("UserGestures = %d, want 1", session.UserGestures)
	}
	if session.Badges != 1 {
		t.Fatalf("Badges = %d, want 1", session.Badges)
	}
	if got := session.EndTime.Sub(session.StartTime); got != 3*time.Second {
		t.Fatalf("duration = %v, want 3s", got)
	}

	frame, ok := session.Entries[2].(FrameEntry)
	if !ok {
		t.Fatalf("entry 2 = %T, want FrameEntry", session.Entries[2])
	}
	if !frame.Upward || frame.Delta != -200 {
		t.Fatalf("frame = %+v, want upward with delta -200", frame)
	}
	if !frame.State.ShowScrollButton {
		t.Fatalf("frame state = %+v, want show_scroll_button", frame.State)
	}

	size, ok := session.Entries[3].(SizeEntry)
	if !ok {
		t.Fatalf("entry 3 = %T, want SizeEntry", session.Entries[3])
	}
	if size.Verdict != "badge" || !size.State.HasNewMessages {
		t.Fatalf("size = %+v, want badge verdict with badge state", size)
	}
}

func TestListAndResolveSessions(t *testing.T) {
	dir := t.TempDir()
	writeSampleTrace(t, dir, "sess-a")

	other := filepath.Join(dir, "sess-b.jsonl")
	newer := strings.ReplaceAll(sampleTrace, "sess-a", "sess-b")
	newer = strings.ReplaceAll(newer, "2026-03-14T09:30", "2026-03-14T10:30")
	if err := os.WriteFile(other, []byte(newer), 0600); err != nil {
		t.Fatalf("write trace: %v", err)
	}

	sessions, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
	if sessions[0].ID != "sess-b" {
		t.Fatalf("most recent = %q, want sess-b", sessions[0].ID)
	}

	byNum, err := ResolveSession(dir, "2")
	if err != nil || byNum == nil {
		t.Fatalf("ResolveSession(2) = %v, %v", byNum, err)
	}
	if byNum.ID != "sess-a" {
		t.Fatalf("ResolveSession(2) = %q, want sess-a", byNum.ID)
	}

	byID, err := ResolveSession(dir, "sess-b")
	if err != nil || byID == nil {
		t.Fatalf("ResolveSession(sess-b) = %v, %v", byID, err)
	}
	if byID.ID != "sess-b" {
		t.Fatalf("ResolveSession(sess-b) = %q", byID.ID)
	}

	missing, err := ResolveSession(dir, "sess-z")
	if err != nil {
		t.Fatalf("ResolveSession(sess-z): %v", err)
	}
	if missing != nil {
		t.Fatalf("ResolveSession(sess-z) = %+v, want nil", missing)
	}
}

func TestListSessionsMissingDir(t *testing.T) {
	sessions, err := ListSessions(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if sessions != nil {
		t.Fatalf("sessions = %v, want nil", sessions)
	}
}

func TestParseRawLines(t *testing.T) {
	path := writeSampleTrace(t, t.TempDir(), "sess-a")

	lines, err := ParseRawLines(path)
	if err != nil {
		t.Fatalf("ParseRawLines: %v", err)
	}
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7 (raw mode keeps garbage lines)", len(lines))
	}
}
