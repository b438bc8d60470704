package autoscroll

import (
	"testing"
	"time"
)

// fakeClock lets tests drive the temporal windows deterministically.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine() (*Engine, *fakeClock, *[]ScrollRequest) {
	clock := newFakeClock()
	e := New(Config{}, clock.Now)
	var commands []ScrollRequest
	e.OnScrollToEnd = func(req ScrollRequest) {
		commands = append(commands, req)
	}
	return e, clock, &commands
}

// frame builds a scroll frame for a 600-unit viewport unless stated.
func frame(contentHeight, viewportHeight, offset float64) ScrollFrame {
	return ScrollFrame{
		ViewportHeight: viewportHeight,
		ContentHeight:  contentHeight,
		ContentOffset:  offset,
	}
}

// settle moves the engine past its first-paint jump so growth tests start
// from a known pinned-at-bottom state with the given content height.
func settle(e *Engine, clock *fakeClock, contentHeight float64) {
	e.HandleContentSize(ContentSize{Width: 800, Height: contentHeight})
	clock.Advance(time.Second)
	e.HandleScroll(frame(contentHeight, 600, contentHeight-600))
	clock.Advance(time.Second)
}

func TestNearBottomFrame(t *testing.T) {
	e, _, _ := newTestEngine()

	e.HandleScroll(frame(1000, 600, 350)) // distance 50

	snap := e.Snapshot()
	if !snap.IsNearBottom {
		t.Fatalf("IsNearBottom = false, want true")
	}
	if snap.ShowScrollButton {
		t.Fatalf("ShowScrollButton = true, want false")
	}
}

func TestFarFromBottomFrame(t *testing.T) {
	e, _, _ := newTestEngine()

	e.HandleScroll(frame(1000, 600, 100)) // distance 300

	snap := e.Snapshot()
	if snap.IsNearBottom {
		t.Fatalf("IsNearBottom = true, want false")
	}
	if !snap.ShowScrollButton {
		t.Fatalf("ShowScrollButton = false, want true")
	}
}

func TestShortContentCountsAsBottom(t *testing.T) {
	e, _, _ := newTestEngine()

	// Content shorter than the viewport yields a negative distance.
	e.HandleScroll(frame(200, 600, 0))

	snap := e.Snapshot()
	if !snap.IsNearBottom {
		t.Fatalf("IsNearBottom = false, want true for short content")
	}
	if snap.ShowScrollButton {
		t.Fatalf("ShowScrollButton = true, want false for short content")
	}
}

func TestAllZeroFrameIsHarmless(t *testing.T) {
	e, _, _ := newTestEngine()

	e.HandleScroll(ScrollFrame{})

	snap := e.Snapshot()
	if !snap.IsNearBottom || !snap.AutoScrollEnabled {
		t.Fatalf("zero frame snapshot = %+v, want near bottom and pinned", snap)
	}
}

func TestHysteresisBandRetainsPinnedState(t *testing.T) {
	e, clock, _ := newTestEngine()

	// Start pinned, then drift into the band without an upward gesture
	// that exceeds the direction floor.
	e.HandleScroll(frame(1000, 600, 350)) // distance 50, pinned
	clock.Advance(time.Second)

	offsets := []float64{280, 283, 279, 281, 278} // distances 120..122, all inside [100,150]
	for _, off := range offsets {
		e.HandleScroll(frame(1000, 600, off))
		clock.Advance(100 * time.Millisecond)
		if !e.Snapshot().AutoScrollEnabled {
			t.Fatalf("AutoScrollEnabled flipped inside hysteresis band at offset %v", off)
		}
	}
}

func TestHysteresisBandRetainsUnpinnedState(t *testing.T) {
	e, clock, _ := newTestEngine()

	e.HandleScroll(frame(1000, 600, 100)) // distance 300, unpinned
	clock.Advance(time.Second)

	// Drift back down into the band: still unpinned until truly near.
	for _, off := range []float64{270, 272, 271} { // distances 128..130
		e.HandleScroll(frame(1000, 600, off))
		clock.Advance(100 * time.Millisecond)
		if e.Snapshot().AutoScrollEnabled {
			t.Fatalf("AutoScrollEnabled flipped to true inside hysteresis band at offset %v", off)
		}
	}
}

func TestUpwardGestureWinsInsideNearBottomZone(t *testing.T) {
	e, clock, _ := newTestEngine()

	e.HandleScroll(frame(1000, 600, 390)) // distance 10, pinned
	clock.Advance(time.Second)

	e.HandleScroll(frame(1000, 600, 380)) // delta -10, still distance 20

	snap := e.Snapshot()
	if snap.AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = true, want false after upward gesture near bottom")
	}
	if !snap.IsNearBottom {
		t.Fatalf("IsNearBottom = false, want true")
	}
}

func TestUpwardJitterBelowDirectionFloorDoesNotUnpin(t *testing.T) {
	e, clock, _ := newTestEngine()

	e.HandleScroll(frame(1000, 600, 390))
	clock.Advance(time.Second)

	// -3 exceeds the movement floor (2) but not the direction floor (5):
	// it counts as user movement, not as upward intent.
	e.HandleScroll(frame(1000, 600, 387))

	if !e.Snapshot().AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = false, want true for sub-floor upward jitter")
	}
}

func TestProgrammaticSelfScrollImmunity(t *testing.T) {
	e, clock, _ := newTestEngine()

	e.HandleScroll(frame(1000, 600, 100)) // far away, unpinned
	clock.Advance(time.Second)

	e.ScrollToBottom(true)

	// The scroll event fired by our own command can carry any delta and
	// land at any distance; inside the window it must not be read as a
	// user gesture and must not unpin, however far from the bottom the
	// animation still is.
	clock.Advance(100 * time.Millisecond)
	e.HandleScroll(frame(1000, 600, 80)) // delta -20, distance 320

	if !e.Snapshot().AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = false, want true inside programmatic window")
	}

	// Once the window lapses the same far-away frame is the user's and
	// unpins via the distance rule.
	clock.Advance(600 * time.Millisecond)
	e.HandleScroll(frame(1000, 600, 80))

	if e.Snapshot().AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = true, want false far from bottom after window expiry")
	}
}

func TestLateUpwardScrollAfterWindowDisablesAutoScroll(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)

	e.ScrollToBottom(true)
	if len(*commands) != 2 { // settle's initial jump + this one
		t.Fatalf("commands = %d, want 2", len(*commands))
	}

	// Confirmation frame at the true bottom inside the window.
	clock.Advance(100 * time.Millisecond)
	e.HandleScroll(frame(1000, 600, 400))
	if !e.Snapshot().AutoScrollEnabled {
		t.Fatalf("confirmation frame flipped AutoScrollEnabled")
	}

	// 600ms later the window (500ms) has expired; a genuine 10-unit upward
	// flick now correctly disables auto-scroll.
	clock.Advance(600 * time.Millisecond)
	e.HandleScroll(frame(1000, 600, 390))
	if e.Snapshot().AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = true, want false after late upward scroll")
	}

	// Content growth while unpinned raises the badge, no scroll command.
	clock.Advance(time.Second)
	e.HandleContentSize(ContentSize{Width: 800, Height: 1200})
	snap := e.Snapshot()
	if !snap.HasNewMessages {
		t.Fatalf("HasNewMessages = false, want true")
	}
	if len(*commands) != 2 {
		t.Fatalf("commands = %d, want 2 (growth while unpinned must not scroll)", len(*commands))
	}
}

func TestGrowthNoiseFloorIgnoresSmallChanges(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)
	e.HandleScroll(frame(1000, 600, 100)) // unpin
	clock.Advance(time.Second)
	issued := len(*commands)

	e.HandleContentSize(ContentSize{Width: 800, Height: 1050}) // exactly +50: not growth

	snap := e.Snapshot()
	if snap.HasNewMessages {
		t.Fatalf("HasNewMessages = true, want false for sub-floor growth")
	}
	if len(*commands) != issued {
		t.Fatalf("commands = %d, want %d", len(*commands), issued)
	}
}

func TestShrinkageNeverSetsBadge(t *testing.T) {
	e, clock, _ := newTestEngine()
	settle(e, clock, 1200)
	e.HandleScroll(frame(1200, 600, 100)) // unpin
	clock.Advance(time.Second)

	e.HandleContentSize(ContentSize{Width: 800, Height: 800}) // message deleted

	if e.Snapshot().HasNewMessages {
		t.Fatalf("HasNewMessages = true, want false after shrinkage")
	}
}

func TestShrinkageRebasesGrowthDelta(t *testing.T) {
	e, clock, _ := newTestEngine()
	settle(e, clock, 1200)
	e.HandleScroll(frame(1200, 600, 100)) // unpin
	clock.Advance(time.Second)

	// lastContentHeight updates unconditionally, so growth after shrinkage
	// is measured against the shrunken height.
	e.HandleContentSize(ContentSize{Width: 800, Height: 800})
	e.HandleContentSize(ContentSize{Width: 800, Height: 860})

	if !e.Snapshot().HasNewMessages {
		t.Fatalf("HasNewMessages = false, want true for growth over the rebased height")
	}
}

func TestFirstContentJumpsToBottom(t *testing.T) {
	e, _, commands := newTestEngine()

	e.HandleContentSize(ContentSize{Width: 800, Height: 900})

	snap := e.Snapshot()
	if !snap.InitialScrollDone {
		t.Fatalf("InitialScrollDone = false, want true")
	}
	if snap.HasNewMessages {
		t.Fatalf("HasNewMessages = true, want false on first paint")
	}
	if len(*commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(*commands))
	}
	if (*commands)[0].Animated {
		t.Fatalf("first-paint jump should be instant, got animated")
	}
}

func TestEmptyContentDoesNotCompleteFirstPaint(t *testing.T) {
	e, _, commands := newTestEngine()

	e.HandleContentSize(ContentSize{Width: 800, Height: 0})

	if e.Snapshot().InitialScrollDone {
		t.Fatalf("InitialScrollDone = true, want false for empty content")
	}
	if len(*commands) != 0 {
		t.Fatalf("commands = %d, want 0", len(*commands))
	}
}

func TestBadgeThenReturnToBottomClearsAndRepins(t *testing.T) {
	e, clock, _ := newTestEngine()
	settle(e, clock, 1000)

	e.HandleScroll(frame(1000, 600, 100)) // distance 300, unpin
	clock.Advance(time.Second)

	e.HandleContentSize(ContentSize{Width: 800, Height: 1200})
	if !e.Snapshot().HasNewMessages {
		t.Fatalf("HasNewMessages = false, want true while unpinned")
	}

	// User scrolls back down to distance 50.
	clock.Advance(time.Second)
	e.HandleScroll(frame(1200, 600, 550))

	snap := e.Snapshot()
	if snap.HasNewMessages {
		t.Fatalf("HasNewMessages = true, want false back at bottom")
	}
	if !snap.AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = false, want true back at bottom")
	}
}

func TestGrowthWhilePinnedIssuesAnimatedScroll(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)
	issued := len(*commands)

	e.HandleContentSize(ContentSize{Width: 800, Height: 1100})

	if len(*commands) != issued+1 {
		t.Fatalf("commands = %d, want %d", len(*commands), issued+1)
	}
	last := (*commands)[len(*commands)-1]
	if !last.Animated {
		t.Fatalf("growth-triggered scroll should be animated")
	}
	if e.Snapshot().HasNewMessages {
		t.Fatalf("HasNewMessages = true, want false while pinned")
	}
}

func TestUserScrollCooldownSuppressesAutoScroll(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)

	// A 4-unit nudge: genuine movement (above the 2-unit floor) that is
	// not upward intent, so the view stays pinned but the cooldown arms.
	e.HandleScroll(frame(1000, 600, 396))
	issued := len(*commands)

	clock.Advance(200 * time.Millisecond)
	e.HandleContentSize(ContentSize{Width: 800, Height: 1100})
	if len(*commands) != issued {
		t.Fatalf("commands = %d, want %d (cooldown must suppress auto-scroll)", len(*commands), issued)
	}

	// Past the cooldown the next growth scrolls again.
	clock.Advance(400 * time.Millisecond)
	e.HandleContentSize(ContentSize{Width: 800, Height: 1200})
	if len(*commands) != issued+1 {
		t.Fatalf("commands = %d, want %d after cooldown expiry", len(*commands), issued+1)
	}
}

func TestBurstGrowthScrollsEachTime(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)
	issued := len(*commands)

	height := 1000.0
	for i := 0; i < 5; i++ {
		height += 100
		e.HandleContentSize(ContentSize{Width: 800, Height: height})
		clock.Advance(20 * time.Millisecond)
	}

	if len(*commands) != issued+5 {
		t.Fatalf("commands = %d, want %d for a streaming burst", len(*commands), issued+5)
	}
}

func TestScrollToBottomForcesPinnedState(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)

	e.HandleScroll(frame(1000, 600, 100)) // unpin, button shows
	clock.Advance(time.Second)
	e.HandleContentSize(ContentSize{Width: 800, Height: 1200}) // badge
	issued := len(*commands)

	e.ScrollToBottom(true)

	snap := e.Snapshot()
	if !snap.AutoScrollEnabled || !snap.IsNearBottom {
		t.Fatalf("snapshot = %+v, want pinned near bottom", snap)
	}
	if snap.HasNewMessages || snap.ShowScrollButton {
		t.Fatalf("snapshot = %+v, want badge and button cleared", snap)
	}
	if len(*commands) != issued+1 {
		t.Fatalf("commands = %d, want %d", len(*commands), issued+1)
	}
	if !(*commands)[len(*commands)-1].Animated {
		t.Fatalf("explicit jump should honor the animated flag")
	}
}

func TestScrollToBottomOverridesCooldown(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)

	e.HandleScroll(frame(1000, 600, 390)) // user movement arms the cooldown
	e.ScrollToBottom(false)
	issued := len(*commands)

	// Growth right after an explicit jump must follow even though the
	// gesture cooldown would still be running.
	clock.Advance(400 * time.Millisecond)
	e.HandleContentSize(ContentSize{Width: 800, Height: 1100})

	if len(*commands) != issued+1 {
		t.Fatalf("commands = %d, want %d (explicit jump overrides cooldown)", len(*commands), issued+1)
	}
}

func TestPrepareForSendDefersScrollAndExtendsWindow(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)

	e.PrepareForSend()

	last := (*commands)[len(*commands)-1]
	if last.Delay != DefaultSendScrollDelay {
		t.Fatalf("Delay = %v, want %v", last.Delay, DefaultSendScrollDelay)
	}

	// The send window (600ms) outlasts the animated window; a jumpy frame
	// at +550ms is still attributed to the engine.
	clock.Advance(550 * time.Millisecond)
	e.HandleScroll(frame(1000, 600, 350))
	if !e.Snapshot().AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = false, want true inside send window")
	}
}

func TestMarkNewMessagesOnlyAwayFromBottom(t *testing.T) {
	e, clock, _ := newTestEngine()
	settle(e, clock, 1000)

	e.MarkNewMessages()
	if e.Snapshot().HasNewMessages {
		t.Fatalf("HasNewMessages = true, want false when already at bottom")
	}

	e.HandleScroll(frame(1000, 600, 100))
	clock.Advance(time.Second)
	e.MarkNewMessages()
	if !e.Snapshot().HasNewMessages {
		t.Fatalf("HasNewMessages = false, want true when away from bottom")
	}
}

func TestResetForSessionSwitchRestoresDefaults(t *testing.T) {
	e, clock, _ := newTestEngine()
	settle(e, clock, 1000)

	e.HandleScroll(frame(1000, 600, 100))
	clock.Advance(time.Second)
	e.HandleContentSize(ContentSize{Width: 800, Height: 1200})

	e.ResetForSessionSwitch()

	want := Snapshot{IsNearBottom: true, AutoScrollEnabled: true}
	if got := e.Snapshot(); got != want {
		t.Fatalf("snapshot after reset = %+v, want %+v", got, want)
	}

	// The next non-empty content report is a first paint again.
	var commands []ScrollRequest
	e.OnScrollToEnd = func(req ScrollRequest) { commands = append(commands, req) }
	e.HandleContentSize(ContentSize{Width: 800, Height: 400})
	if len(commands) != 1 || commands[0].Animated {
		t.Fatalf("commands = %+v, want one instant first-paint jump", commands)
	}
}

func TestResetClearsProgrammaticWindow(t *testing.T) {
	e, clock, _ := newTestEngine()
	settle(e, clock, 1000)

	e.ScrollToBottom(true) // opens a 500ms window
	e.ResetForSessionSwitch()

	// Without the reset this upward frame would land inside the stale
	// window and be ignored.
	clock.Advance(100 * time.Millisecond)
	e.HandleScroll(frame(1000, 600, 300))
	clock.Advance(50 * time.Millisecond)
	e.HandleScroll(frame(1000, 600, 290))

	if e.Snapshot().AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = true, want false: reset must clear the programmatic window")
	}
}

func TestOnChangeFiresOnlyOnRealTransitions(t *testing.T) {
	e, clock, _ := newTestEngine()
	notifications := 0
	e.OnChange = func(Snapshot) { notifications++ }

	e.HandleScroll(frame(1000, 600, 350)) // no change: already near bottom and pinned
	if notifications != 0 {
		t.Fatalf("notifications = %d, want 0 for a frame that changes nothing", notifications)
	}

	clock.Advance(time.Second)
	e.HandleScroll(frame(1000, 600, 100)) // unpin + button
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1", notifications)
	}

	clock.Advance(time.Second)
	e.HandleScroll(frame(1000, 600, 100)) // same zone again
	if notifications != 1 {
		t.Fatalf("notifications = %d, want 1 after re-observing the same zone", notifications)
	}
}

func TestOrderingGrowthBeforeFrameForSameVisualFrame(t *testing.T) {
	e, clock, _ := newTestEngine()
	settle(e, clock, 1000)

	// Growth lands first and scrolls; the matching scroll frame arrives
	// afterwards inside the window and must not disturb the pin state,
	// whatever its delta looks like.
	e.HandleContentSize(ContentSize{Width: 800, Height: 1150})
	clock.Advance(50 * time.Millisecond)
	e.HandleScroll(frame(1150, 600, 550))

	if !e.Snapshot().AutoScrollEnabled {
		t.Fatalf("AutoScrollEnabled = false, want true under growth-then-frame ordering")
	}
}

func TestOrderingFrameBeforeGrowthForSameVisualFrame(t *testing.T) {
	e, clock, commands := newTestEngine()
	settle(e, clock, 1000)
	issued := len(*commands)

	// The frame for the new layout arrives before the size report. The
	// frame alone keeps us pinned near the bottom; the report then scrolls.
	e.HandleScroll(frame(1150, 600, 480)) // distance 70, programmatic window long expired
	clock.Advance(600 * time.Millisecond)
	e.HandleContentSize(ContentSize{Width: 800, Height: 1150})

	if len(*commands) != issued+1 {
		t.Fatalf("commands = %d, want %d under frame-then-growth ordering", len(*commands), issued+1)
	}
}

func TestConfigDefaultsAndClamping(t *testing.T) {
	e := New(Config{NearBottomThreshold: 200, ShowButtonThreshold: 120}, nil)

	cfg := e.Config()
	if cfg.ShowButtonThreshold != 200 {
		t.Fatalf("ShowButtonThreshold = %v, want clamped to 200", cfg.ShowButtonThreshold)
	}
	if cfg.UserScrollCooldown != DefaultUserScrollCooldown {
		t.Fatalf("UserScrollCooldown = %v, want default %v", cfg.UserScrollCooldown, DefaultUserScrollCooldown)
	}
}
