package recorder

import (
	"fmt"
	"log"
	"sync"
	"time"

	"rpascribe/internal/session"
	"rpascribe/internal/tracker"
)

// Manager is the session-keyed recorder registry. It enforces the one
// recorder per session invariant and the concurrent-session cap.
type Manager struct {
	mu          sync.RWMutex
	recorders   map[string]*Recorder
	maxSessions int
	headless    bool
	settings    tracker.Settings
}

// Default is the process-wide registry the API handlers talk to.
var Default = NewManager()

func NewManager() *Manager {
	return &Manager{
		recorders: make(map[string]*Recorder),
		settings:  tracker.DefaultSettings(),
	}
}

// Configure sets the concurrency cap, headless mode and initial capture
// settings. Called once at startup before any session starts.
func (m *Manager) Configure(maxSessions int, headless bool, settings tracker.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = maxSessions
	m.headless = headless
	m.settings = settings
}

// StartSession creates a session, launches its recorder and registers it.
func (m *Manager) StartSession(sessionID, targetURL string, vp Viewport) (*Recorder, error) {
	m.mu.Lock()
	if _, exists := m.recorders[sessionID]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("recording session %s already exists", sessionID)
	}
	if m.maxSessions > 0 && len(m.recorders) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("maximum concurrent recording sessions reached (%d)", m.maxSessions)
	}
	settings := m.settings
	headless := m.headless
	m.mu.Unlock()

	sess := session.New(sessionID, targetURL)
	rec := New(sess, settings, vp, headless)
	if err := rec.Start(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.recorders[sessionID] = rec
	m.mu.Unlock()
	return rec, nil
}

func (m *Manager) Get(sessionID string) (*Recorder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recorders[sessionID]
	return rec, ok
}

// StopSession completes the recording but keeps the entry registered so the
// finished log can still be read and exported.
func (m *Manager) StopSession(sessionID string) error {
	rec, ok := m.Get(sessionID)
	if !ok {
		return fmt.Errorf("recording session %s not found", sessionID)
	}
	return rec.Stop()
}

// Remove drops a session from the registry, stopping it first if needed.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	rec, ok := m.recorders[sessionID]
	delete(m.recorders, sessionID)
	m.mu.Unlock()

	if ok && rec.Session().State() != session.StateCompleted {
		if err := rec.Stop(); err != nil {
			log.Printf("recorder: stop during removal of session %s: %v", sessionID, err)
		}
	}
}

// UpdateSettings propagates hot-reloaded capture settings to every active
// recorder and to recorders started afterwards.
func (m *Manager) UpdateSettings(s tracker.Settings) {
	m.mu.Lock()
	m.settings = s
	recs := make([]*Recorder, 0, len(m.recorders))
	for _, rec := range m.recorders {
		recs = append(recs, rec)
	}
	m.mu.Unlock()

	for _, rec := range recs {
		rec.UpdateSettings(s)
	}
}

// SweepIdle stops sessions with no activity for maxAge and unregisters
// completed ones past the same age. Returns the IDs it touched.
func (m *Manager) SweepIdle(maxAge time.Duration) []string {
	cutoff := time.Now().Add(-maxAge)

	m.mu.RLock()
	stale := make(map[string]*Recorder)
	for id, rec := range m.recorders {
		if rec.Session().LastActivity().Before(cutoff) {
			stale[id] = rec
		}
	}
	m.mu.RUnlock()

	var swept []string
	for id, rec := range stale {
		if rec.Session().State() == session.StateCompleted {
			m.mu.Lock()
			delete(m.recorders, id)
			m.mu.Unlock()
		} else {
			if err := rec.Stop(); err != nil {
				log.Printf("recorder: sweep stop of session %s: %v", id, err)
				continue
			}
			log.Printf("recorder: stopped abandoned session %s", id)
		}
		swept = append(swept, id)
	}
	return swept
}

// Count reports the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recorders)
}
