package tracker

import (
	"log"
	"strings"
	"sync"
	"time"

	"rpascribe/internal/action"
	"rpascribe/internal/dom"
	"rpascribe/internal/selector"
)

// Sink receives normalized actions. The session implements it: Append
// discards while paused, StageBlur holds the single-slot pending input.
type Sink interface {
	Append(a action.Action) bool
	StageBlur(a action.Action)
	DiscardStaged()
}

// Settings tunes the debounce windows and extends the sensitive-keyword
// list. Zero durations fall back to the defaults.
type Settings struct {
	InputDebounce     time.Duration
	ScrollDebounce    time.Duration
	HoverDebounce     time.Duration
	SensitiveKeywords []string
}

func DefaultSettings() Settings {
	return Settings{
		InputDebounce:  1000 * time.Millisecond,
		ScrollDebounce: 500 * time.Millisecond,
		HoverDebounce:  2000 * time.Millisecond,
	}
}

func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if s.InputDebounce <= 0 {
		s.InputDebounce = def.InputDebounce
	}
	if s.ScrollDebounce <= 0 {
		s.ScrollDebounce = def.ScrollDebounce
	}
	if s.HoverDebounce <= 0 {
		s.HoverDebounce = def.HoverDebounce
	}
	return s
}

type pendingInput struct {
	sel       selector.Result
	content   string
	timestamp int64
}

type pendingScroll struct {
	x, y      int
	delta     int
	direction string
	timestamp int64
}

type pendingHover struct {
	sel       selector.Result
	tag       string
	text      string
	timestamp int64
}

// Tracker normalizes raw page events into typed actions. One tracker per
// page context; constructed by the owning recorder (ownership is checked by
// the recorder registry, there is no page-global instance flag).
type Tracker struct {
	mu       sync.Mutex
	sink     Sink
	doc      selector.Document
	settings Settings
	active   bool

	lastScrollY   int
	hasLastScroll bool

	input  *pendingInput
	scroll *pendingScroll
	hover  *pendingHover

	inputTimer  *time.Timer
	scrollTimer *time.Timer
	hoverTimer  *time.Timer

	// Generation counters invalidate timer fires that lost a race with a
	// reset or a newer event.
	inputGen, scrollGen, hoverGen uint64
}

func New(sink Sink, doc selector.Document, settings Settings) *Tracker {
	return &Tracker{sink: sink, doc: doc, settings: settings.normalized()}
}

// Attach transitions the tracker to Active. Attaching twice is a no-op.
func (t *Tracker) Attach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = true
}

// Detach stops all listeners and timers; pending debounced actions are
// dropped.
func (t *Tracker) Detach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
	t.resetLocked()
}

// Reset clears debounce timers, pending state and the staged blur content.
// Used on session restart/stop.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.resetLocked()
	t.mu.Unlock()
	t.sink.DiscardStaged()
}

func (t *Tracker) resetLocked() {
	if t.inputTimer != nil {
		t.inputTimer.Stop()
		t.inputTimer = nil
	}
	if t.scrollTimer != nil {
		t.scrollTimer.Stop()
		t.scrollTimer = nil
	}
	if t.hoverTimer != nil {
		t.hoverTimer.Stop()
		t.hoverTimer = nil
	}
	t.input, t.scroll, t.hover = nil, nil, nil
	t.inputGen++
	t.scrollGen++
	t.hoverGen++
	t.hasLastScroll = false
}

// UpdateSettings swaps the debounce/sensitivity settings, e.g. on a
// settings-file hot reload. In-flight timers keep their original delay.
func (t *Tracker) UpdateSettings(s Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings = s.normalized()
}

// HandleEvent routes one raw page event. Unknown kinds are ignored.
func (t *Tracker) HandleEvent(ev dom.RawEvent) {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	switch ev.Kind {
	case dom.EventClick:
		t.handleClick(ev)
	case dom.EventInput:
		t.handleInput(ev)
	case dom.EventKeydown:
		t.handleKeydown(ev)
	case dom.EventScroll:
		t.handleScroll(ev)
	case dom.EventMouseEnter:
		t.handleMouseEnter(ev)
	case dom.EventBlur:
		t.handleBlur(ev)
	case dom.EventSubmit:
		t.handleSubmit(ev)
	default:
		log.Printf("tracker: ignoring unknown event kind %q", ev.Kind)
	}
}

// handleClick emits immediately; clicks are atomic.
func (t *Tracker) handleClick(ev dom.RawEvent) {
	sel := selector.Generate(ev.Element, t.doc)
	cfg := action.ClickConfig{
		Selector:  sel.Value,
		Text:      elementText(ev.Element),
		AriaLabel: sel.AriaLabel,
		Context:   classifyClick(ev.Element),
		X:         ev.ClientX,
		Y:         ev.ClientY,
	}
	if ev.Element != nil {
		cfg.Tag = ev.Element.Tag
		cfg.RectX = ev.Element.Rect.X
		cfg.RectY = ev.Element.Rect.Y
		cfg.RectW = ev.Element.Rect.Width
		cfg.RectH = ev.Element.Rect.Height
	}
	t.sink.Append(action.New(ev.Timestamp, cfg))
}

// handleInput applies the trailing input debounce: only the final value
// after a quiet period is recorded, and it supersedes any blur-staged
// content for the field.
func (t *Tracker) handleInput(ev dom.RawEvent) {
	if !isInputSurface(ev.Element) {
		return
	}

	t.mu.Lock()
	if isSensitive(ev.Element, t.settings.SensitiveKeywords) {
		t.mu.Unlock()
		return
	}
	sel := selector.Generate(ev.Element, t.doc)
	t.input = &pendingInput{sel: sel, content: ev.Value, timestamp: ev.Timestamp}
	t.inputGen++
	gen := t.inputGen
	if t.inputTimer != nil {
		t.inputTimer.Stop()
	}
	t.inputTimer = time.AfterFunc(t.settings.InputDebounce, func() { t.flushInput(gen) })
	t.mu.Unlock()
}

func (t *Tracker) flushInput(gen uint64) {
	t.mu.Lock()
	if gen != t.inputGen || t.input == nil {
		t.mu.Unlock()
		return
	}
	p := t.input
	t.input = nil
	t.inputTimer = nil
	t.mu.Unlock()

	// The debounced value supersedes anything blur staged for the field.
	t.sink.DiscardStaged()
	t.sink.Append(action.New(p.timestamp, action.InputContentConfig{
		Selector: p.sel.Value,
		Content:  p.content,
	}))
}

func (t *Tracker) handleKeydown(ev dom.RawEvent) {
	if !isSpecialKey(ev.Key) {
		return
	}
	t.sink.Append(action.New(ev.Timestamp, action.KeyboardConfig{
		Key:   ev.Key,
		Ctrl:  ev.Ctrl,
		Shift: ev.Shift,
		Alt:   ev.Alt,
		Meta:  ev.Meta,
	}))
}

// handleScroll coalesces scroll bursts into one action carrying the final
// position.
func (t *Tracker) handleScroll(ev dom.RawEvent) {
	t.mu.Lock()
	prevY := t.lastScrollY
	if !t.hasLastScroll {
		prevY = 0
	}
	direction := "up"
	if ev.ScrollY > prevY {
		direction = "down"
	}
	t.scroll = &pendingScroll{
		x:         ev.ScrollX,
		y:         ev.ScrollY,
		delta:     ev.ScrollY - prevY,
		direction: direction,
		timestamp: ev.Timestamp,
	}
	t.scrollGen++
	gen := t.scrollGen
	if t.scrollTimer != nil {
		t.scrollTimer.Stop()
	}
	t.scrollTimer = time.AfterFunc(t.settings.ScrollDebounce, func() { t.flushScroll(gen) })
	t.mu.Unlock()
}

func (t *Tracker) flushScroll(gen uint64) {
	t.mu.Lock()
	if gen != t.scrollGen || t.scroll == nil {
		t.mu.Unlock()
		return
	}
	p := t.scroll
	t.scroll = nil
	t.scrollTimer = nil
	t.lastScrollY = p.y
	t.hasLastScroll = true
	t.mu.Unlock()

	t.sink.Append(action.New(p.timestamp, action.ScrollPageConfig{
		X:         p.x,
		Y:         p.y,
		Delta:     p.delta,
		Direction: p.direction,
	}))
}

func (t *Tracker) handleMouseEnter(ev dom.RawEvent) {
	if !isInteractive(ev.Element) {
		return
	}
	t.mu.Lock()
	sel := selector.Generate(ev.Element, t.doc)
	t.hover = &pendingHover{
		sel:       sel,
		tag:       ev.Element.Tag,
		text:      elementText(ev.Element),
		timestamp: ev.Timestamp,
	}
	t.hoverGen++
	gen := t.hoverGen
	if t.hoverTimer != nil {
		t.hoverTimer.Stop()
	}
	t.hoverTimer = time.AfterFunc(t.settings.HoverDebounce, func() { t.flushHover(gen) })
	t.mu.Unlock()
}

func (t *Tracker) flushHover(gen uint64) {
	t.mu.Lock()
	if gen != t.hoverGen || t.hover == nil {
		t.mu.Unlock()
		return
	}
	p := t.hover
	t.hover = nil
	t.hoverTimer = nil
	t.mu.Unlock()

	t.sink.Append(action.New(p.timestamp, action.HoverConfig{
		Selector: p.sel.Value,
		Tag:      p.tag,
		Text:     p.text,
	}))
}

// handleBlur stages the field's current value so a navigation before the
// input debounce fires cannot lose it.
func (t *Tracker) handleBlur(ev dom.RawEvent) {
	if !isInputSurface(ev.Element) || strings.TrimSpace(ev.Value) == "" {
		return
	}
	t.mu.Lock()
	if isSensitive(ev.Element, t.settings.SensitiveKeywords) {
		t.mu.Unlock()
		return
	}
	sel := selector.Generate(ev.Element, t.doc)
	t.mu.Unlock()

	t.sink.StageBlur(action.New(ev.Timestamp, action.InputContentConfig{
		Selector: sel.Value,
		Content:  ev.Value,
	}))
}

func (t *Tracker) handleSubmit(ev dom.RawEvent) {
	target := ev.FormAction
	if target == "" {
		target = ev.URL
	}
	method := strings.ToUpper(ev.FormMethod)
	if method == "" {
		method = "GET"
	}
	t.sink.Append(action.New(ev.Timestamp, action.FormSubmitConfig{
		URL:    target,
		Method: method,
	}))
}
