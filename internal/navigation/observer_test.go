package navigation

import (
	"testing"

	"rpascribe/internal/action"
	"rpascribe/internal/session"
)

func recordingSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New("s1", "https://example.com")
	if err := s.Start(1000); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestBeforeNavigateFlushesStagedInput(t *testing.T) {
	s := recordingSession(t)
	o := NewObserver(s)

	s.StageBlur(action.New(2000, action.InputContentConfig{Selector: "#q", Content: "draft"}))
	o.BeforeNavigate()

	actions := s.Snapshot()
	last := actions[len(actions)-1]
	if last.Type != action.TypeInputContent {
		t.Errorf("staged input not flushed, last action %v", last.Type)
	}
	if s.SubState() != session.SubWaiting {
		t.Errorf("substate = %v, want waiting", s.SubState())
	}
}

func TestNavigationCompletedAppendsSynthetics(t *testing.T) {
	s := recordingSession(t)
	o := NewObserver(s)

	o.BeforeNavigate()
	o.NavigationCompleted(true)

	actions := s.Snapshot()
	if len(actions) != 4 {
		t.Fatalf("expected 2 seeds + 2 synthetics, got %d", len(actions))
	}
	if actions[2].Type != action.TypeCloseOtherPages {
		t.Errorf("expected tab cleanup, got %v", actions[2].Type)
	}
	wait, ok := actions[3].Config.(action.WaitTimeConfig)
	if !ok {
		t.Fatalf("expected wait config, got %T", actions[3].Config)
	}
	if !wait.Random || wait.Min != 3000 || wait.Max != 8000 || wait.Duration != 5000 {
		t.Errorf("settle wait band = %+v", wait)
	}
	if s.SubState() != session.SubRecording {
		t.Errorf("substate = %v, want recording", s.SubState())
	}
}

func TestNavigationCompletedIgnoresSubFrames(t *testing.T) {
	s := recordingSession(t)
	o := NewObserver(s)

	before := s.Len()
	o.NavigationCompleted(false)
	if s.Len() != before {
		t.Error("sub-frame completion must not append synthetics")
	}
}

func TestNavigationSyntheticsDroppedWhilePaused(t *testing.T) {
	s := recordingSession(t)
	o := NewObserver(s)
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	before := s.Len()
	o.BeforeNavigate()
	o.NavigationCompleted(true)
	if s.Len() != before {
		t.Error("synthetics must be discarded at the log boundary while paused")
	}
}
