package session

import (
	"fmt"
	"sync"
	"time"

	"rpascribe/internal/action"
)

// State is the recording lifecycle of a session.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// SubState is the transient navigation marker within the Recording state.
type SubState string

const (
	SubRecording SubState = "recording"
	SubWaiting   SubState = "waiting"
)

// Session owns exactly one action log for one recording lifetime. All state
// transitions and appends go through its mutex, which serializes writers
// from the event poll loop, lifecycle listeners and debounce timers.
type Session struct {
	ID        string
	TargetURL string

	mu           sync.Mutex
	state        State
	substate     SubState
	log          *Log
	staged       *action.Action // pending blur content, single slot, last write wins
	subs         map[int]chan action.Action
	nextSub      int
	createdAt    time.Time
	lastActivity time.Time
}

func New(id, targetURL string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		TargetURL:    targetURL,
		state:        StateIdle,
		substate:     SubRecording,
		log:          NewLog(),
		subs:         make(map[int]chan action.Action),
		createdAt:    now,
		lastActivity: now,
	}
}

// Start transitions Idle -> Recording and seeds the log with the page-open
// and initial-navigation actions.
func (s *Session) Start(now int64) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("session %s already started", s.ID)
	}
	s.state = StateRecording
	s.substate = SubRecording
	s.mu.Unlock()

	s.Append(action.New(now, action.NewPageConfig{URL: s.TargetURL}))
	s.Append(action.New(now, action.GotoURLConfig{URL: s.TargetURL}))
	return nil
}

// Append adds an action to the log. While the session is not recording it
// is discarded at this boundary; debounce timers firing during a pause land
// here and are dropped without disturbing tracker state. Reports whether
// the action was logged.
func (s *Session) Append(a action.Action) bool {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return false
	}
	s.lastActivity = time.Now()
	s.mu.Unlock()

	if !s.log.Append(a) {
		return false
	}
	s.broadcast(a)
	return true
}

// StageBlur holds a not-yet-confirmed input action so a navigation cannot
// lose a field's final value before the input debounce fires. Last write
// wins; a later debounce flush supersedes it via DiscardStaged.
func (s *Session) StageBlur(a action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = &a
}

// FlushStaged appends the staged input action if one is present and the
// session is recording, then clears the slot.
func (s *Session) FlushStaged() {
	s.mu.Lock()
	staged := s.staged
	s.staged = nil
	s.mu.Unlock()
	if staged != nil {
		s.Append(*staged)
	}
}

func (s *Session) DiscardStaged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return fmt.Errorf("session %s is %s, cannot pause", s.ID, s.state)
	}
	s.state = StatePaused
	return nil
}

func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return fmt.Errorf("session %s is %s, cannot resume", s.ID, s.state)
	}
	s.state = StateRecording
	return nil
}

// Complete stops the session for good; the log remains readable.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateCompleted
	s.staged = nil
}

// Restart clears the log and staged content and begins a fresh recording.
func (s *Session) Restart(now int64) {
	s.mu.Lock()
	s.log.reset()
	s.staged = nil
	s.state = StateRecording
	s.substate = SubRecording
	s.mu.Unlock()

	s.Append(action.New(now, action.NewPageConfig{URL: s.TargetURL}))
	s.Append(action.New(now, action.GotoURLConfig{URL: s.TargetURL}))
}

// SetWaiting flips the transient navigation substate.
func (s *Session) SetWaiting(waiting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if waiting {
		s.substate = SubWaiting
	} else {
		s.substate = SubRecording
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SubState() SubState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.substate
}

func (s *Session) Snapshot() []action.Action { return s.log.Snapshot() }
func (s *Session) Len() int                  { return s.log.Len() }
func (s *Session) Suppressed() int           { return s.log.Suppressed() }

// LastActivity is used by the janitor to find abandoned sessions.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Subscribe returns a channel receiving every logged action and a cancel
// function. Slow consumers are skipped rather than blocking the log.
func (s *Session) Subscribe() (<-chan action.Action, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan action.Action, 64)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Session) broadcast(a action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- a:
		default:
		}
	}
}
