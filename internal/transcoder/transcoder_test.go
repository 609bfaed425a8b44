package transcoder

import (
	"testing"

	"rpascribe/internal/action"
)

func TestTranscodeEmptyLog(t *testing.T) {
	got := NewWithSeed(1).Transcode(nil)
	if got == nil {
		t.Fatal("empty log must yield an empty array, not nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no target actions, got %d", len(got))
	}
}

func TestTranscodeAppendsFinalWait(t *testing.T) {
	actions := []action.Action{
		action.New(1000, action.NewPageConfig{URL: "https://example.com"}),
	}
	got := NewWithSeed(1).Transcode(actions)

	last := got[len(got)-1]
	if last.Type != TargetWaitTime {
		t.Fatalf("expected trailing wait, got %q", last.Type)
	}
	cfg := last.Config.(WaitTimeConfig)
	if cfg.TimeoutType != WaitRandomInterval || cfg.TimeoutMin != 3000 || cfg.TimeoutMax != 8000 {
		t.Errorf("final wait = %+v", cfg)
	}
	if cfg.Timeout < cfg.TimeoutMin || cfg.Timeout > cfg.TimeoutMax {
		t.Errorf("drawn timeout %d outside band [%d, %d]", cfg.Timeout, cfg.TimeoutMin, cfg.TimeoutMax)
	}
}

func TestTranscodeLoginScenario(t *testing.T) {
	actions := []action.Action{
		action.New(0, action.NewPageConfig{URL: "https://shop.example.com"}),
		action.New(0, action.GotoURLConfig{URL: "https://shop.example.com"}),
		action.New(6000, action.ClickConfig{Selector: "#login", Tag: "a", Text: "Log in", Context: action.ContextNavigation}),
		action.New(6500, action.InputContentConfig{Selector: `[name="user"]`, Content: "alice"}),
		action.New(7000, action.FormSubmitConfig{URL: "https://shop.example.com/login", Method: "POST"}),
	}

	got := NewWithSeed(42).Transcode(actions)

	wantTypes := []string{
		TargetNewPage,
		TargetGotoURL,
		TargetWaitTime, // 6s gap after navigation
		TargetClickElement,
		TargetInputContent,
		TargetKeyboard, // form submit -> Enter
		TargetWaitTime, // form processing wait
		TargetWaitTime, // final settle wait
	}
	if len(got) != len(wantTypes) {
		t.Fatalf("expected %d target actions, got %d: %+v", len(wantTypes), len(got), got)
	}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].Type, want)
		}
	}

	// The 6s navigation gap becomes a random-interval wait around it.
	gap := got[2].Config.(WaitTimeConfig)
	if gap.TimeoutType != WaitRandomInterval {
		t.Errorf("gap wait type = %q", gap.TimeoutType)
	}
	if gap.TimeoutMin != 6000*7/10 || gap.TimeoutMax != 6000*14/10 {
		t.Errorf("gap band = [%d, %d]", gap.TimeoutMin, gap.TimeoutMax)
	}

	submitKey := got[5].Config.(KeyboardConfig)
	if submitKey.Key != "Enter" {
		t.Errorf("form submit key = %q", submitKey.Key)
	}
	formWait := got[6].Config.(WaitTimeConfig)
	if formWait.TimeoutMin != 5000 || formWait.TimeoutMax != 12000 {
		t.Errorf("form wait band = [%d, %d]", formWait.TimeoutMin, formWait.TimeoutMax)
	}
}

func TestGapWaitThreshold(t *testing.T) {
	tr := NewWithSeed(1)
	click := func(ts int64) action.Action {
		return action.New(ts, action.ClickConfig{Selector: "#a", Tag: "button"})
	}

	if _, ok := tr.gapWait(click(0), click(2000)); ok {
		t.Error("gaps at the threshold must not synthesize a wait")
	}
	w, ok := tr.gapWait(click(0), click(2500))
	if !ok {
		t.Fatal("gap above the threshold must synthesize a wait")
	}
	// 2.5s stays below the random cutoff: fixed wait with padding.
	cfg := w.Config.(WaitTimeConfig)
	if cfg.TimeoutType != WaitFixed || cfg.Timeout != 3000 {
		t.Errorf("short gap wait = %+v", cfg)
	}
}

func TestGapWaitClampAndContextMinimums(t *testing.T) {
	tr := NewWithSeed(1)

	// Giant gaps clamp to 30s.
	w, _ := tr.gapWait(
		action.New(0, action.ClickConfig{Selector: "#a"}),
		action.New(120000, action.ClickConfig{Selector: "#b"}),
	)
	cfg := w.Config.(WaitTimeConfig)
	if cfg.TimeoutMin != 30000*7/10 || cfg.TimeoutMax != 30000*14/10 {
		t.Errorf("clamped band = [%d, %d]", cfg.TimeoutMin, cfg.TimeoutMax)
	}

	// Click -> input raises the nominal to 2s... which stays fixed, but a
	// 2.1s real gap already exceeds it; use a navigation minimum instead.
	w, _ = tr.gapWait(
		action.New(0, action.GotoURLConfig{URL: "https://x"}),
		action.New(2500, action.ClickConfig{Selector: "#a"}),
	)
	cfg = w.Config.(WaitTimeConfig)
	if cfg.TimeoutType != WaitRandomInterval {
		t.Fatalf("post-navigation wait should be a random interval, got %+v", cfg)
	}
	if cfg.TimeoutMin != 5000*7/10 || cfg.TimeoutMax != 5000*14/10 {
		t.Errorf("post-navigation band = [%d, %d]", cfg.TimeoutMin, cfg.TimeoutMax)
	}

	// Scroll settling raises a small gap to 1.5s, still fixed.
	w, _ = tr.gapWait(
		action.New(0, action.ScrollPageConfig{Y: 400}),
		action.New(2200, action.ClickConfig{Selector: "#a"}),
	)
	cfg = w.Config.(WaitTimeConfig)
	if cfg.TimeoutType != WaitFixed || cfg.Timeout != 2200+500 {
		t.Errorf("post-scroll wait = %+v", cfg)
	}
}

func TestClickTargetingPrefersText(t *testing.T) {
	tr := NewWithSeed(1)

	got := tr.clickConfig(action.ClickConfig{Selector: "#go", Text: "Checkout"})
	if got.SelectorType != SelectText || got.Selector != "Checkout" {
		t.Errorf("short text should win: %+v", got)
	}

	long := ""
	for i := 0; i < 6; i++ {
		long += "0123456789"
	}
	got = tr.clickConfig(action.ClickConfig{Selector: "#go", Text: long})
	if got.SelectorType != SelectCSS || got.Selector != "#go" {
		t.Errorf("long text must fall back to css: %+v", got)
	}

	got = tr.clickConfig(action.ClickConfig{Selector: "#go", AriaLabel: "Close dialog"})
	if got.SelectorType != SelectAria || got.Selector != "Close dialog" {
		t.Errorf("aria label should stand in for missing text: %+v", got)
	}
}

func TestScrollConfigBounds(t *testing.T) {
	tr := NewWithSeed(1)

	got := tr.scrollConfig(action.ScrollPageConfig{Y: 0, Direction: "down"})
	if got.Distance != 300 {
		t.Errorf("zero distance should default, got %d", got.Distance)
	}

	got = tr.scrollConfig(action.ScrollPageConfig{Y: 40, Direction: "down"})
	if got.Distance != 100 {
		t.Errorf("tiny distance should floor at 100, got %d", got.Distance)
	}

	got = tr.scrollConfig(action.ScrollPageConfig{Y: 900, Direction: "down"})
	if got.WheelDistance < 80 || got.WheelDistance > 120 {
		t.Errorf("wheel distance %d outside 80-120", got.WheelDistance)
	}
}

func TestTypingInterval(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"short", 50},
		{"twenty characters ok", 100},
		{string(make([]byte, 60)), 150},
		{string(make([]byte, 150)), 200},
	}
	for _, tc := range cases {
		if got := typingInterval(tc.content); got != tc.want {
			t.Errorf("typingInterval(len %d) = %d, want %d", len(tc.content), got, tc.want)
		}
	}
}

func TestKeyChord(t *testing.T) {
	got := keyChord(action.KeyboardConfig{Key: "s", Ctrl: true, Shift: true})
	if got != "Ctrl+Shift+s" {
		t.Errorf("chord = %q", got)
	}
	if got := keyChord(action.KeyboardConfig{Key: "Enter"}); got != "Enter" {
		t.Errorf("bare key = %q", got)
	}
}

func TestHoverIsDropped(t *testing.T) {
	actions := []action.Action{
		action.New(0, action.ClickConfig{Selector: "#a", Tag: "button"}),
		action.New(100, action.HoverConfig{Selector: ".menu", Tag: "a"}),
		action.New(200, action.ClickConfig{Selector: "#b", Tag: "button"}),
	}
	got := NewWithSeed(1).Transcode(actions)
	for _, ta := range got {
		if ta.Type != TargetClickElement && ta.Type != TargetWaitTime {
			t.Errorf("unexpected target type %q", ta.Type)
		}
	}
}

func TestCapturedWaitBandsAreRedrawn(t *testing.T) {
	actions := []action.Action{
		action.New(0, action.WaitTimeConfig{Duration: 5000, Min: 3000, Max: 8000, Random: true}),
	}
	got := NewWithSeed(7).Transcode(actions)
	cfg := got[0].Config.(WaitTimeConfig)
	if cfg.TimeoutType != WaitRandomInterval {
		t.Fatalf("expected random interval, got %+v", cfg)
	}
	if cfg.Timeout < 3000 || cfg.Timeout > 8000 {
		t.Errorf("drawn timeout %d outside declared band", cfg.Timeout)
	}
}

func TestTranscodeIsRepeatableWithSeed(t *testing.T) {
	actions := []action.Action{
		action.New(0, action.NewPageConfig{URL: "https://x"}),
		action.New(8000, action.ClickConfig{Selector: "#a", Tag: "button"}),
	}
	a := NewWithSeed(99).Transcode(actions)
	b := NewWithSeed(99).Transcode(actions)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("position %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestInsertSmartWaitsIdempotent(t *testing.T) {
	tr := NewWithSeed(1)
	actions := []action.Action{
		action.New(0, action.NewPageConfig{URL: "https://x"}),
		action.New(100, action.ClickConfig{Selector: "#a", Tag: "button"}),
		action.New(200, action.InputContentConfig{Selector: "#q", Content: "hi"}),
	}

	base := tr.Transcode(actions)
	once := tr.InsertSmartWaits(base)
	if len(once) <= len(base) {
		t.Fatal("smart waits should add separators to bare boundaries")
	}

	twice := tr.InsertSmartWaits(once)
	if len(twice) != len(once) {
		t.Errorf("second pass changed length: %d vs %d", len(twice), len(once))
	}
}

func TestInsertSmartWaitsSkipsExistingWaits(t *testing.T) {
	tr := NewWithSeed(1)
	targets := []TargetAction{
		{Type: TargetClickElement, Config: ClickElementConfig{Selector: "#a"}},
		{Type: TargetWaitTime, Config: WaitTimeConfig{TimeoutType: WaitFixed, Timeout: 1000}},
		{Type: TargetInputContent, Config: InputContentConfig{Selector: "#q"}},
	}
	got := tr.InsertSmartWaits(targets)
	if len(got) != 3 {
		t.Errorf("already separated boundary padded again: %d actions", len(got))
	}
}
