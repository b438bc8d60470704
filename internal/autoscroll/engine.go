// Package autoscroll reconciles scroll gestures, programmatic scroll
// animations and content growth into a single follow-the-bottom state for a
// live transcript view. The engine owns its state exclusively; the host
// feeds it scroll frames and content-size reports and executes the scroll
// commands it emits.
package autoscroll

import (
	"math"
	"time"
)

// Default thresholds and windows. These were tuned for touch-latency scroll
// input; hosts with very different input timing should re-tune via Config.
const (
	DefaultNearBottomThreshold  = 100.0
	DefaultShowButtonThreshold  = 150.0
	DefaultGrowthNoiseFloor     = 50.0
	DefaultDirectionNoiseFloor  = 5.0
	DefaultMovementNoiseFloor   = 2.0
	DefaultUserScrollCooldown   = 500 * time.Millisecond
	DefaultInstantScrollWindow  = 300 * time.Millisecond
	DefaultAnimatedScrollWindow = 500 * time.Millisecond
	DefaultSendScrollWindow     = 600 * time.Millisecond
	DefaultSendScrollDelay      = 50 * time.Millisecond
)

// Config holds the engine tunables. The zero value of any field falls back
// to the package default, so Engine{} callers only set what they override.
type Config struct {
	// NearBottomThreshold is the distance from the bottom below which the
	// view counts as "near bottom". ShowButtonThreshold is the distance
	// above which the scroll-to-bottom button shows; it must be >= the
	// near-bottom threshold, the gap between them is the hysteresis band.
	NearBottomThreshold float64
	ShowButtonThreshold float64

	// GrowthNoiseFloor is the minimum content-height delta that counts as
	// growth. DirectionNoiseFloor is the minimum upward offset delta that
	// counts as an upward gesture. MovementNoiseFloor is the minimum offset
	// delta that counts as any user movement at all.
	GrowthNoiseFloor    float64
	DirectionNoiseFloor float64
	MovementNoiseFloor  float64

	// UserScrollCooldown suppresses growth-triggered scrolling after a
	// genuine user gesture.
	UserScrollCooldown time.Duration

	// Programmatic windows: scroll frames arriving inside one are
	// attributed to the engine's own command rather than the user. Sized to
	// outlast the scroll animation each command triggers.
	InstantScrollWindow  time.Duration
	AnimatedScrollWindow time.Duration
	SendScrollWindow     time.Duration

	// SendScrollDelay is how long PrepareForSend asks the host to wait
	// before scrolling, so the outgoing message can lay out first.
	SendScrollDelay time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		NearBottomThreshold:  DefaultNearBottomThreshold,
		ShowButtonThreshold:  DefaultShowButtonThreshold,
		GrowthNoiseFloor:     DefaultGrowthNoiseFloor,
		DirectionNoiseFloor:  DefaultDirectionNoiseFloor,
		MovementNoiseFloor:   DefaultMovementNoiseFloor,
		UserScrollCooldown:   DefaultUserScrollCooldown,
		InstantScrollWindow:  DefaultInstantScrollWindow,
		AnimatedScrollWindow: DefaultAnimatedScrollWindow,
		SendScrollWindow:     DefaultSendScrollWindow,
		SendScrollDelay:      DefaultSendScrollDelay,
	}
}

// withDefaults fills zero-valued fields with package defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NearBottomThreshold <= 0 {
		c.NearBottomThreshold = d.NearBottomThreshold
	}
	if c.ShowButtonThreshold <= 0 {
		c.ShowButtonThreshold = d.ShowButtonThreshold
	}
	if c.ShowButtonThreshold < c.NearBottomThreshold {
		// Degenerate but not fatal: collapse the hysteresis band rather
		// than invert it.
		c.ShowButtonThreshold = c.NearBottomThreshold
	}
	if c.GrowthNoiseFloor <= 0 {
		c.GrowthNoiseFloor = d.GrowthNoiseFloor
	}
	if c.DirectionNoiseFloor <= 0 {
		c.DirectionNoiseFloor = d.DirectionNoiseFloor
	}
	if c.MovementNoiseFloor <= 0 {
		c.MovementNoiseFloor = d.MovementNoiseFloor
	}
	if c.UserScrollCooldown <= 0 {
		c.UserScrollCooldown = d.UserScrollCooldown
	}
	if c.InstantScrollWindow <= 0 {
		c.InstantScrollWindow = d.InstantScrollWindow
	}
	if c.AnimatedScrollWindow <= 0 {
		c.AnimatedScrollWindow = d.AnimatedScrollWindow
	}
	if c.SendScrollWindow <= 0 {
		c.SendScrollWindow = d.SendScrollWindow
	}
	if c.SendScrollDelay <= 0 {
		c.SendScrollDelay = d.SendScrollDelay
	}
	return c
}

// Clock supplies the current time. Tests inject a fake so the temporal
// windows can be exercised without real delays.
type Clock func() time.Time

// ScrollFrame is one tick of the host's scrollable container.
type ScrollFrame struct {
	ViewportHeight float64
	ContentHeight  float64
	ContentOffset  float64
}

// ContentSize reports the measured size of the transcript content.
type ContentSize struct {
	Width  float64
	Height float64
}

// ScrollRequest instructs the host to scroll its view to the end. When
// Delay is non-zero the host should wait that long before scrolling (used
// by PrepareForSend to let the new content lay out first).
type ScrollRequest struct {
	Animated bool
	Delay    time.Duration
}

// Snapshot is the engine state as read by the host each render.
type Snapshot struct {
	IsNearBottom      bool
	AutoScrollEnabled bool
	HasNewMessages    bool
	ShowScrollButton  bool
	InitialScrollDone bool
}

// Engine is the auto-scroll state holder. It is not safe for concurrent
// use: all events must arrive serially from the host's event loop, which is
// how bubbletea delivers them.
type Engine struct {
	cfg Config
	now Clock

	// OnScrollToEnd receives the engine's outbound scroll commands.
	// OnChange fires whenever the snapshot changed as a result of an event.
	// Either may be nil.
	OnScrollToEnd func(ScrollRequest)
	OnChange      func(Snapshot)

	isNearBottom      bool
	autoScrollEnabled bool
	hasNewMessages    bool
	showScrollButton  bool
	initialScrollDone bool

	lastContentHeight float64
	lastScrollOffset  float64

	programmaticUntil time.Time
	userCooldownUntil time.Time

	trace *TraceLogger
}

// New creates an engine with the given configuration. A nil clock uses
// time.Now.
func New(cfg Config, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	e := &Engine{cfg: cfg.withDefaults(), now: clock}
	e.resetState()
	return e
}

// SetTraceLogger attaches a decision trace logger. A nil logger disables
// tracing.
func (e *Engine) SetTraceLogger(t *TraceLogger) {
	e.trace = t
}

// Config returns the effective configuration after defaulting.
func (e *Engine) Config() Config {
	return e.cfg
}

// Snapshot returns the current state for rendering.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		IsNearBottom:      e.isNearBottom,
		AutoScrollEnabled: e.autoScrollEnabled,
		HasNewMessages:    e.hasNewMessages,
		ShowScrollButton:  e.showScrollButton,
		InitialScrollDone: e.initialScrollDone,
	}
}

// resetState restores initial values in place. A fresh view starts pinned
// at the bottom of (empty) content.
func (e *Engine) resetState() {
	e.isNearBottom = true
	e.autoScrollEnabled = true
	e.hasNewMessages = false
	e.showScrollButton = false
	e.initialScrollDone = false
	e.lastContentHeight = 0
	e.lastScrollOffset = 0
	e.programmaticUntil = time.Time{}
	e.userCooldownUntil = time.Time{}
}

// HandleScroll processes one scroll frame: position tracking, user/engine
// attribution, then the pin transition.
func (e *Engine) HandleScroll(f ScrollFrame) {
	before := e.Snapshot()
	now := e.now()

	// Negative distance means content shorter than the viewport; that is
	// "at bottom", not an error.
	distance := f.ContentHeight - f.ViewportHeight - f.ContentOffset
	delta := f.ContentOffset - e.lastScrollOffset
	e.lastScrollOffset = f.ContentOffset

	e.isNearBottom = distance < e.cfg.NearBottomThreshold
	e.showScrollButton = distance > e.cfg.ShowButtonThreshold

	// Frames inside the programmatic window were caused by our own scroll
	// command; their apparent direction means nothing.
	programmatic := now.Before(e.programmaticUntil)
	userMoved := !programmatic && math.Abs(delta) > e.cfg.MovementNoiseFloor
	if userMoved {
		e.userCooldownUntil = now.Add(e.cfg.UserScrollCooldown)
	}
	upward := userMoved && delta < -e.cfg.DirectionNoiseFloor

	switch {
	case upward:
		// Upward intent always wins, even inside the near-bottom zone.
		e.autoScrollEnabled = false
	case e.isNearBottom:
		e.autoScrollEnabled = true
		e.hasNewMessages = false
	case !programmatic && distance > e.cfg.ShowButtonThreshold:
		// Far from the bottom on the user's account. Mid-animation frames
		// also pass through here at large distances; they must not unpin.
		e.autoScrollEnabled = false
	default:
		// Hysteresis band: keep the current pin state so sub-pixel
		// oscillation around the midpoint cannot flap auto-scroll.
	}

	e.trace.logScrollFrame(now, f, distance, delta, programmatic, userMoved, upward, e.Snapshot())
	e.notifyIfChanged(before)
}

// HandleContentSize processes one content-size report and decides between
// the first-paint jump, the new-messages badge, an auto-scroll, or nothing.
func (e *Engine) HandleContentSize(s ContentSize) {
	before := e.Snapshot()
	now := e.now()

	grew := s.Height > e.lastContentHeight+e.cfg.GrowthNoiseFloor
	e.lastContentHeight = s.Height

	var verdict string
	switch {
	case !e.initialScrollDone && s.Height > 0:
		// First non-empty layout: jump straight to the bottom, skipping
		// growth and badge logic entirely.
		e.initialScrollDone = true
		verdict = "initial_jump"
		e.issueScroll(now, ScrollRequest{Animated: false}, e.cfg.InstantScrollWindow)
	case grew && !e.autoScrollEnabled:
		// Content arrived while the user reads elsewhere.
		e.hasNewMessages = true
		verdict = "badge"
	case grew && e.autoScrollEnabled && !now.Before(e.userCooldownUntil) && e.isNearBottom:
		verdict = "auto_scroll"
		e.issueScroll(now, ScrollRequest{Animated: true}, e.cfg.AnimatedScrollWindow)
	default:
		verdict = "ignored"
	}

	e.trace.logContentSize(now, s, grew, verdict, e.Snapshot())
	e.notifyIfChanged(before)
}

// ScrollToBottom forces the pinned state and scrolls the host view to the
// end. Explicit intent overrides the user-scroll cooldown.
func (e *Engine) ScrollToBottom(animated bool) {
	before := e.Snapshot()
	now := e.now()

	e.autoScrollEnabled = true
	e.isNearBottom = true
	e.hasNewMessages = false
	e.showScrollButton = false
	e.userCooldownUntil = time.Time{}

	window := e.cfg.InstantScrollWindow
	if animated {
		window = e.cfg.AnimatedScrollWindow
	}
	e.trace.logLifecycle(now, "scroll_to_bottom", e.Snapshot())
	e.issueScroll(now, ScrollRequest{Animated: animated}, window)
	e.notifyIfChanged(before)
}

// PrepareForSend pins the view ahead of the user's own message being
// appended, so the growth event it causes reads as "already pinned". The
// scroll command carries a short delay to let the message lay out, covered
// by a longer programmatic window.
func (e *Engine) PrepareForSend() {
	before := e.Snapshot()
	now := e.now()

	e.autoScrollEnabled = true
	e.isNearBottom = true
	e.hasNewMessages = false
	e.showScrollButton = false
	e.userCooldownUntil = time.Time{}

	e.trace.logLifecycle(now, "prepare_for_send", e.Snapshot())
	e.issueScroll(now, ScrollRequest{Animated: true, Delay: e.cfg.SendScrollDelay}, e.cfg.SendScrollWindow)
	e.notifyIfChanged(before)
}

// MarkNewMessages sets the badge for callers that learn of new content
// through a side channel rather than a content-size report. A view already
// at the bottom never gets a badge.
func (e *Engine) MarkNewMessages() {
	before := e.Snapshot()

	if !e.isNearBottom {
		e.hasNewMessages = true
	}

	e.trace.logLifecycle(e.now(), "mark_new_messages", e.Snapshot())
	e.notifyIfChanged(before)
}

// ResetForSessionSwitch restores all state to initial values in place when
// the bound session changes. Both temporal windows are cleared so nothing
// stale leaks into the new session's first events.
func (e *Engine) ResetForSessionSwitch() {
	before := e.Snapshot()

	e.resetState()

	e.trace.logLifecycle(e.now(), "reset_for_session_switch", e.Snapshot())
	e.notifyIfChanged(before)
}

// issueScroll opens the programmatic window and hands the command to the
// host. A new window unconditionally overwrites any prior one: animations
// cannot un-happen, so later deadlines win.
func (e *Engine) issueScroll(now time.Time, req ScrollRequest, window time.Duration) {
	e.programmaticUntil = now.Add(window)
	e.trace.logCommand(now, req, e.programmaticUntil)
	if e.OnScrollToEnd != nil {
		e.OnScrollToEnd(req)
	}
}

func (e *Engine) notifyIfChanged(before Snapshot) {
	if e.OnChange == nil {
		return
	}
	after := e.Snapshot()
	if after != before {
		e.OnChange(after)
	}
}
