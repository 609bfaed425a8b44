package session

import (
	"sync"

	"rpascribe/internal/action"
)

// Dedup thresholds for the type-specific equality checks applied against
// the immediately preceding logged action.
const (
	dupClickWindowMillis = 500
	dupScrollMinDelta    = 50
)

// Log is the ordered append-only action sequence of one session. Appends
// are serialized; insertion order is the replay order.
type Log struct {
	mu         sync.Mutex
	actions    []action.Action
	suppressed int
}

func NewLog() *Log {
	return &Log{actions: make([]action.Action, 0)}
}

// Append adds a to the log unless it duplicates the previous entry under
// the type-specific equality rules, in which case it is silently dropped.
// Reports whether the action was kept.
func (l *Log) Append(a action.Action) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.actions); n > 0 && isDuplicate(l.actions[n-1], a) {
		l.suppressed++
		return false
	}
	l.actions = append(l.actions, a)
	return true
}

// Snapshot returns a copy of the current sequence.
func (l *Log) Snapshot() []action.Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]action.Action(nil), l.actions...)
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.actions)
}

// Suppressed counts actions dropped by deduplication since the last reset.
func (l *Log) Suppressed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.suppressed
}

func (l *Log) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = l.actions[:0]
	l.suppressed = 0
}

// isDuplicate absorbs duplicate event firings from bubbling/capture
// overlap: same type plus a per-type closeness check.
func isDuplicate(prev, cand action.Action) bool {
	if prev.Type != cand.Type {
		return false
	}
	switch pc := prev.Config.(type) {
	case action.ClickConfig:
		cc := cand.Config.(action.ClickConfig)
		return pc.Selector == cc.Selector && cand.Timestamp-prev.Timestamp <= dupClickWindowMillis
	case action.InputContentConfig:
		cc := cand.Config.(action.InputContentConfig)
		return pc.Selector == cc.Selector && pc.Content == cc.Content
	case action.ScrollPageConfig:
		cc := cand.Config.(action.ScrollPageConfig)
		d := cc.Y - pc.Y
		if d < 0 {
			d = -d
		}
		return d < dupScrollMinDelta
	}
	return false
}
