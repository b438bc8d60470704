// Package transcript hosts the auto-scroll engine inside a bubbletea view:
// a viewport showing a growing conversation, a one-line composer, and the
// badge/button chrome driven by the engine's snapshot.
package transcript

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/samsaffron/term-transcript/internal/autoscroll"
	"github.com/samsaffron/term-transcript/internal/config"
	"github.com/samsaffron/term-transcript/internal/ui"
)

// inputBlockHeight is the rows reserved below the viewport: separator,
// textarea and status line.
const inputBlockHeight = 3

// Model is the transcript TUI model
type Model struct {
	// Dimensions
	width  int
	height int

	// Components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	styles   *ui.Styles
	keyMap   KeyMap

	// Engine wiring. Commands the engine issues during an Update are
	// queued here and drained into viewport scrolls / tea.Tick timers.
	engine         *autoscroll.Engine
	pendingScrolls []autoscroll.ScrollRequest

	// Transcript state
	messages     []Message
	feed         *Feed
	feedInterval time.Duration
	streaming    bool
	sessionSeq   int
	contentLines int

	// Markdown renderer cache, invalidated on width change
	rendererCache rendererCache

	quitting bool
}

// Messages for tea.Program
type (
	feedTickMsg       time.Time
	deferredScrollMsg struct{}
)

// New creates a transcript model wired to a fresh engine. A nil trace
// logger disables decision tracing.
func New(cfg *config.Config, trace *autoscroll.TraceLogger) *Model {
	if cfg == nil {
		cfg = config.Default()
	}

	// Get terminal size
	width := 80
	height := 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	styles := ui.DefaultStyles()
	s.Style = styles.Spinner

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "❯ "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(width)
	ta.SetHeight(1)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(styles.Theme().Muted)
	ta.FocusedStyle.EndOfBuffer = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(styles.Theme().Primary).Bold(true)
	ta.BlurredStyle = ta.FocusedStyle
	ta.Focus()

	vp := viewport.New(width, height-inputBlockHeight)

	interval := 350 * time.Millisecond
	if cfg.Demo.IntervalMs > 0 {
		interval = time.Duration(cfg.Demo.IntervalMs) * time.Millisecond
	}

	m := &Model{
		width:        width,
		height:       height,
		viewport:     vp,
		textarea:     ta,
		spinner:      s,
		styles:       styles,
		keyMap:       DefaultKeyMap(),
		feed:         NewDemoFeed(),
		feedInterval: interval,
		sessionSeq:   1,
	}

	m.engine = autoscroll.New(cfg.Scroll.Engine(), nil)
	m.engine.SetTraceLogger(trace)
	m.engine.OnScrollToEnd = func(req autoscroll.ScrollRequest) {
		m.pendingScrolls = append(m.pendingScrolls, req)
	}

	return m
}

// Engine exposes the engine for the host application (session switching,
// external new-content signals).
func (m *Model) Engine() *autoscroll.Engine {
	return m.engine
}

// Init starts the spinner, cursor blink and the demo feed.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink, m.scheduleFeed())
}

func (m *Model) scheduleFeed() tea.Cmd {
	return tea.Tick(m.feedInterval, func(t time.Time) tea.Msg {
		return feedTickMsg(t)
	})
}

// Update handles bubbletea messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - inputBlockHeight
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}
		m.rendererCache = rendererCache{}
		m.refreshContent()
		return m, tea.Batch(m.drainScrolls()...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.syncScroll()
		return m, cmd

	case feedTickMsg:
		role, chunk, newMessage := m.feed.Next()
		if newMessage {
			m.messages = append(m.messages, Message{Role: role, Content: chunk})
		} else if len(m.messages) > 0 {
			m.messages[len(m.messages)-1].Content += chunk
		}
		m.streaming = m.feed.MidMessage()
		m.refreshContent()
		cmds := m.drainScrolls()
		cmds = append(cmds, m.scheduleFeed())
		return m, tea.Batch(cmds...)

	case deferredScrollMsg:
		m.gotoBottomNow()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.NewSession):
		m.switchSession()
		return m, tea.Batch(m.drainScrolls()...)

	case key.Matches(msg, m.keyMap.Send):
		return m.sendMessage()

	case key.Matches(msg, m.keyMap.LineUp):
		m.viewport.LineUp(1)
		m.syncScroll()
		return m, nil

	case key.Matches(msg, m.keyMap.LineDown):
		m.viewport.LineDown(1)
		m.syncScroll()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		m.syncScroll()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		m.syncScroll()
		return m, nil

	case key.Matches(msg, m.keyMap.JumpToBottom):
		m.engine.ScrollToBottom(true)
		return m, tea.Batch(m.drainScrolls()...)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// sendMessage appends the composed message. PrepareForSend runs first so
// the growth event the new message causes reads as "already pinned".
func (m *Model) sendMessage() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return m, nil
	}

	m.engine.PrepareForSend()
	m.messages = append(m.messages, Message{Role: "user", Content: text})
	m.textarea.SetValue("")
	m.refreshContent()

	return m, tea.Batch(m.drainScrolls()...)
}

// switchSession clears the transcript and resets the engine in place, the
// same way a real host rebinds the view to another conversation.
func (m *Model) switchSession() {
	m.sessionSeq++
	m.messages = nil
	m.feed.Reset()
	m.streaming = false
	m.contentLines = 0
	m.viewport.SetContent("")
	m.viewport.GotoTop()
	m.engine.ResetForSessionSwitch()
}

// refreshContent re-renders the transcript into the viewport and reports
// the new content height to the engine.
func (m *Model) refreshContent() {
	content := m.renderMessages()
	m.contentLines = lipgloss.Height(content)
	if content == "" {
		m.contentLines = 0
	}
	m.viewport.SetContent(content)
	m.engine.HandleContentSize(autoscroll.ContentSize{
		Width:  float64(m.width),
		Height: float64(m.contentLines),
	})
}

// syncScroll reports the viewport position to the engine as a scroll frame.
func (m *Model) syncScroll() {
	m.engine.HandleScroll(autoscroll.ScrollFrame{
		ViewportHeight: float64(m.viewport.Height),
		ContentHeight:  float64(m.contentLines),
		ContentOffset:  float64(m.viewport.YOffset),
	})
}

// drainScrolls converts queued engine commands into viewport movement.
// Delayed requests become tea.Tick timers; immediate ones execute now.
func (m *Model) drainScrolls() []tea.Cmd {
	var cmds []tea.Cmd
	for _, req := range m.pendingScrolls {
		if req.Delay > 0 {
			cmds = append(cmds, tea.Tick(req.Delay, func(time.Time) tea.Msg {
				return deferredScrollMsg{}
			}))
			continue
		}
		m.gotoBottomNow()
	}
	m.pendingScrolls = nil
	return cmds
}

// gotoBottomNow scrolls the viewport and feeds the resulting position back
// to the engine. The frame lands inside the programmatic window the engine
// opened when it issued the command, so it is attributed to the engine.
func (m *Model) gotoBottomNow() {
	m.viewport.GotoBottom()
	m.syncScroll()
}
