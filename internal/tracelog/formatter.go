package tracelog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samsaffron/term-transcript/internal/ui"
)

// FormatOptions controls how trace output is formatted
type FormatOptions struct {
	ShowFrames    bool // Include raw scroll frames (high frequency)
	CommandsOnly  bool // Only show commands and lifecycle calls
	ShowTimestamp bool // Show absolute timestamp instead of session offset
}

// FormatSessionList formats a list of trace sessions as a table
func FormatSessionList(w io.Writer, sessions []SessionSummary, days int) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No scroll traces found.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Record one with: term-transcript demo --debug-trace")
		return
	}

	styles := ui.NewStyles(os.Stderr)

	fmt.Fprintf(w, "%s\n\n", styles.Muted.Render(fmt.Sprintf("Scroll traces (last %d days)", days)))

	for i, s := range sessions {
		num := i + 1

		badgeMark := " "
		if s.Badges > 0 {
			badgeMark = styles.Highlighted.Render("●")
		}

		timeStr := s.StartTime.Local().Format("Jan 02 15:04")
		fmt.Fprintf(w, "%s%2d. %s  %-24s  %s\n",
			badgeMark,
			num,
			styles.Muted.Render(timeStr),
			s.ID,
			formatCounts(s.Frames, s.SizeReports, s.Commands, s.UserGestures),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Muted.Render("Use `term-transcript trace show 1` to view a trace"))
}

func formatCounts(frames, sizes, commands, gestures int) string {
	return fmt.Sprintf("%d frames  %d sizes  %d cmds  %d gestures", frames, sizes, commands, gestures)
}

// FormatSession formats a full trace for display
func FormatSession(w io.Writer, session *Session, opts FormatOptions) {
	styles := ui.NewStyles(os.Stderr)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", styles.Highlighted.Render("Trace:"), session.ID)
	fmt.Fprintf(w, "%s %s\n",
		styles.Muted.Render("Started:"),
		session.StartTime.Local().Format("2006-01-02 15:04:05"),
	)
	if !session.EndTime.IsZero() && session.EndTime.After(session.StartTime) {
		duration := session.EndTime.Sub(session.StartTime).Round(time.Millisecond)
		fmt.Fprintf(w, "%s %s\n", styles.Muted.Render("Duration:"), duration)
	}
	fmt.Fprintf(w, "%s %s\n",
		styles.Muted.Render("Events:"),
		formatCounts(session.Frames, session.SizeReports, session.Commands, session.UserGestures),
	)
	if session.Badges > 0 {
		fmt.Fprintf(w, "%s %d\n", styles.Muted.Render("Badges:"), session.Badges)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Muted.Render(strings.Repeat("─", 78)))
	fmt.Fprintln(w)

	for _, entry := range session.Entries {
		switch e := entry.(type) {
		case FrameEntry:
			if opts.ShowFrames && !opts.CommandsOnly {
				formatFrameEntry(w, e, session.StartTime, opts, styles)
			}
		case SizeEntry:
			if !opts.CommandsOnly {
				formatSizeEntry(w, e, session.StartTime, opts, styles)
			}
		case CommandEntry:
			formatCommandEntry(w, e, session.StartTime, opts, styles)
		case LifecycleEntry:
			formatLifecycleEntry(w, e, session.StartTime, opts, styles)
		}
	}
}

// stamp renders either the session-relative offset or the wall-clock time.
func stamp(ts, start time.Time, opts FormatOptions) string {
	if opts.ShowTimestamp {
		return ts.Local().Format("15:04:05.000")
	}
	return fmt.Sprintf("+%8s", ts.Sub(start).Round(time.Millisecond))
}

func formatFrameEntry(w io.Writer, e FrameEntry, start time.Time, opts FormatOptions, styles *ui.Styles) {
	attribution := "user"
	if e.Programmatic {
		attribution = "engine"
	} else if !e.UserMoved {
		attribution = "noise"
	}
	direction := ""
	if e.Upward {
		direction = " " + styles.Highlighted.Render("↑")
	}

	fmt.Fprintf(w, "%s %s dist=%.0f Δ=%+.0f %s%s %s\n",
		styles.Muted.Render(stamp(e.Timestamp, start, opts)),
		styles.Subtitle.Render("FRAME  "),
		e.Distance,
		e.Delta,
		attribution,
		direction,
		formatState(e.State, styles),
	)
}

func formatSizeEntry(w io.Writer, e SizeEntry, start time.Time, opts FormatOptions, styles *ui.Styles) {
	verdict := e.Verdict
	switch e.Verdict {
	case "badge":
		verdict = styles.Highlighted.Render(verdict)
	case "auto_scroll", "initial_jump":
		verdict = styles.Success.Render(verdict)
	default:
		verdict = styles.Muted.Render(verdict)
	}

	fmt.Fprintf(w, "%s %s h=%.0f grew=%t %s %s\n",
		styles.Muted.Render(stamp(e.Timestamp, start, opts)),
		styles.Bold.Render("SIZE   "),
		e.Height,
		e.Grew,
		verdict,
		formatState(e.State, styles),
	)
}

func formatCommandEntry(w io.Writer, e CommandEntry, start time.Time, opts FormatOptions, styles *ui.Styles) {
	kind := "instant"
	if e.Animated {
		kind = "animated"
	}
	delay := ""
	if e.DelayMs > 0 {
		delay = fmt.Sprintf(" after %dms", e.DelayMs)
	}

	fmt.Fprintf(w, "%s %s scroll-to-end %s%s\n",
		styles.Muted.Render(stamp(e.Timestamp, start, opts)),
		styles.Success.Render("COMMAND"),
		kind,
		delay,
	)
}

func formatLifecycleEntry(w io.Writer, e LifecycleEntry, start time.Time, opts FormatOptions, styles *ui.Styles) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		styles.Muted.Render(stamp(e.Timestamp, start, opts)),
		styles.Highlighted.Render("CALL   "),
		e.Op,
		formatState(e.State, styles),
	)
}

// formatState renders the snapshot as a compact flag string: pinned, near,
// badge, button.
func formatState(s State, styles *ui.Styles) string {
	var flags []string
	if s.AutoScrollEnabled {
		flags = append(flags, "pinned")
	}
	if s.IsNearBottom {
		flags = append(flags, "near")
	}
	if s.HasNewMessages {
		flags = append(flags, "badge")
	}
	if s.ShowScrollButton {
		flags = append(flags, "button")
	}
	if len(flags) == 0 {
		flags = append(flags, "unpinned")
	}
	return styles.Muted.Render("[" + strings.Join(flags, " ") + "]")
}
