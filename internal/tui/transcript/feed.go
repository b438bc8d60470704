package transcript

// Message is one transcript entry.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// scriptStep is one scripted message; assistant steps stream chunk by chunk.
type scriptStep struct {
	role   string
	chunks []string
}

// Feed replays a scripted conversation so the follow-to-bottom behavior can
// be exercised without a live backend. The script loops forever, which
// keeps the transcript growing for as long as the demo runs.
type Feed struct {
	script []scriptStep
	step   int
	chunk  int
}

// NewDemoFeed returns a feed with a canned conversation of mixed-length
// messages, including fenced code so the markdown path gets exercised.
func NewDemoFeed() *Feed {
	return &Feed{script: demoScript}
}

// Next returns the next chunk of the scripted conversation. newMessage is
// true when the chunk starts a new transcript entry. The feed wraps around
// at the end of the script, so it never runs dry.
func (f *Feed) Next() (role, chunk string, newMessage bool) {
	if len(f.script) == 0 {
		return "", "", false
	}
	if f.step >= len(f.script) {
		f.step = 0
		f.chunk = 0
	}

	step := f.script[f.step]
	newMessage = f.chunk == 0
	chunk = step.chunks[f.chunk]

	f.chunk++
	if f.chunk >= len(step.chunks) {
		f.step++
		f.chunk = 0
	}

	return step.role, chunk, newMessage
}

// MidMessage reports whether the feed is partway through streaming a
// message, used to keep the spinner up between chunks.
func (f *Feed) MidMessage() bool {
	return f.chunk > 0
}

// Reset rewinds the feed for a fresh session.
func (f *Feed) Reset() {
	f.step = 0
	f.chunk = 0
}

var demoScript = []scriptStep{
	{role: "user", chunks: []string{"How do I keep a terminal transcript pinned to the bottom while output streams in?"}},
	{role: "assistant", chunks: []string{
		"The trick is to treat \"follow the bottom\" as state you *reconcile*, not something you recompute from scratch on every event.\n\n",
		"Three event streams matter:\n\n1. user scroll gestures\n2. your own programmatic scrolls\n3. content growth\n\n",
		"If you conflate the first two, your own scroll-to-bottom fires a scroll event that looks like the user scrolling, and you end up disabling follow mode right after enabling it.",
	}},
	{role: "user", chunks: []string{"So how do you tell your own scrolls apart from the user's?"}},
	{role: "assistant", chunks: []string{
		"Timestamp windows. Each programmatic scroll opens a short window:\n\n",
		"```go\ne.programmaticUntil = now.Add(window)\n```\n\n",
		"Any scroll frame arriving inside the window is attributed to the engine, whatever its direction looks like. ",
		"Outside the window, real movement arms a cooldown so growth events stop yanking the view around right after the user moved it.",
	}},
	{role: "user", chunks: []string{"What about jitter? Terminals love to emit one-cell scroll noise."}},
	{role: "assistant", chunks: []string{
		"Noise floors on everything: a couple of units before movement counts at all, ",
		"a slightly larger floor before it counts as upward *intent*, and a chunky floor on content growth so sub-line layout shifts never raise the new-messages badge.\n\n",
		"Between the near-bottom and show-button thresholds there is a deliberate dead zone where the pin state simply does not change. That hysteresis band is what stops flicker.",
	}},
	{role: "user", chunks: []string{"And when content shrinks, say after a deletion?"}},
	{role: "assistant", chunks: []string{
		"Ignore it entirely. Shrinkage is never \"new content\", so no badge and no scroll. ",
		"You still record the new height though, so the next growth is measured against what is actually on screen.",
	}},
}
