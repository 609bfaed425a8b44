package navigation

import (
	"time"

	"rpascribe/internal/action"
	"rpascribe/internal/session"
)

// Post-navigation settle wait: nominal 5s replayed from a 3-8s band.
const (
	settleNominalMillis = 5000
	settleMinMillis     = 3000
	settleMaxMillis     = 8000
)

// Observer reacts to page lifecycle signals and injects synthetic cleanup
// and settle actions into the session log at transition boundaries.
type Observer struct {
	sess *session.Session
}

func NewObserver(sess *session.Session) *Observer {
	return &Observer{sess: sess}
}

// BeforeNavigate flushes any blur-staged input into the log (the flush is a
// no-op while paused) and marks the session as waiting for the page.
func (o *Observer) BeforeNavigate() {
	o.sess.FlushStaged()
	o.sess.SetWaiting(true)
}

// NavigationCompleted handles a finished load. Only top-level frame
// completions count; sub-frames settle on their own and get no synthetic
// actions. Appends a tab-cleanup action followed by a randomized-interval
// settle wait, then returns the session to recording.
func (o *Observer) NavigationCompleted(topFrame bool) {
	if !topFrame {
		return
	}
	now := time.Now().UnixMilli()

	o.sess.Append(action.New(now, action.CloseOtherPagesConfig{}))
	o.sess.Append(action.New(now, action.WaitTimeConfig{
		Duration: settleNominalMillis,
		Min:      settleMinMillis,
		Max:      settleMaxMillis,
		Random:   true,
	}))

	o.sess.SetWaiting(false)
}
