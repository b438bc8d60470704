package transcript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/samsaffron/term-transcript/internal/ui"
)

// rendererCache holds a glamour renderer built for one width. Glamour
// renderers are expensive, so we rebuild only when the width changes.
type rendererCache struct {
	width    int
	renderer *glamour.TermRenderer
}

func (m *Model) markdownRenderer() *glamour.TermRenderer {
	if m.rendererCache.renderer != nil && m.rendererCache.width == m.width {
		return m.rendererCache.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.width),
	)
	if err != nil {
		return nil
	}
	m.rendererCache = rendererCache{width: m.width, renderer: r}
	return r
}

// renderMessages builds the full transcript text for the viewport. User
// messages are plain wrapped text; assistant messages go through glamour.
func (m *Model) renderMessages() string {
	if len(m.messages) == 0 {
		return ""
	}

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.Role {
		case "user":
			b.WriteString(m.styles.UserMsg.Render("You"))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(msg.Content, m.width))
			b.WriteString("\n")
		default:
			b.WriteString(m.styles.AssistantLabel.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
		}
	}
	return b.String()
}

func (m *Model) renderMarkdown(content string) string {
	r := m.markdownRenderer()
	if r == nil {
		return wordwrap.String(content, m.width) + "\n"
	}
	out, err := r.Render(content)
	if err != nil {
		return wordwrap.String(content, m.width) + "\n"
	}
	return strings.TrimLeft(out, "\n")
}

// statusLine reflects the engine snapshot: the new-messages badge, the
// jump-to-bottom hint, and streaming activity.
func (m *Model) statusLine() string {
	snap := m.engine.Snapshot()

	var parts []string
	if m.streaming {
		parts = append(parts, m.spinner.View()+m.styles.Muted.Render("streaming"))
	}
	if snap.HasNewMessages {
		parts = append(parts, m.styles.Badge.Render("● new messages"))
	}
	if snap.ShowScrollButton {
		parts = append(parts, m.styles.ButtonHint.Render("↓ ctrl+g: jump to latest"))
	}
	if len(parts) == 0 {
		pin := "unpinned"
		if snap.AutoScrollEnabled {
			pin = "pinned"
		}
		line := fmt.Sprintf("session %d · %s · ctrl+n: new session · ctrl+c: quit", m.sessionSeq, pin)
		if ui.ANSILen(line) > m.width {
			line = fmt.Sprintf("session %d · %s", m.sessionSeq, pin)
		}
		parts = append(parts, m.styles.Muted.Render(line))
	}
	return m.styles.StatusLine.Render(strings.Join(parts, "  "))
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	separator := m.styles.Muted.Render(strings.Repeat("─", m.width))

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(separator)
	b.WriteString("\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}
