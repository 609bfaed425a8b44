package transcoder

import (
	"math/rand"
	"time"

	"rpascribe/internal/action"
)

// Timing constants of the export transform.
const (
	gapThresholdMillis = 2000 // real gaps above this get a synthetic wait
	gapClampMinMillis  = 1000
	gapClampMaxMillis  = 30000

	minAfterNavigationMillis = 5000 // page load / navigation settling
	minClickToInputMillis    = 2000 // focus settling before typing
	minAfterScrollMillis     = 1500

	fixedWaitCutoffMillis  = 3000 // above this, waits become random intervals
	fixedWaitPaddingMillis = 500

	pageLoadTimeoutMillis = 30000
	clickPreWaitMillis    = 500
	clickRetryCount       = 2
	navigateRetryCount    = 2

	keyIntervalMillis  = 100
	keyAfterWaitMillis = 500

	defaultScrollDistance = 300
	minScrollDistance     = 100

	formSubmitWaitMinMillis = 5000
	formSubmitWaitMaxMillis = 12000

	finalWaitMinMillis = 3000
	finalWaitMaxMillis = 8000

	maxTextTargeting = 50 // click text longer than this falls back to CSS
)

// Transcoder rewrites a captured action log into the RPA player schema. It
// is a pure function of the log: it never mutates it, and every export is
// recomputed fresh. The only nondeterminism is the drawn value of
// random-interval waits, which always stays inside the declared band.
type Transcoder struct {
	rng *rand.Rand
}

func New() *Transcoder {
	return &Transcoder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSeed fixes the drawn wait values for reproducible output.
func NewWithSeed(seed int64) *Transcoder {
	return &Transcoder{rng: rand.New(rand.NewSource(seed))}
}

// Transcode maps the full log to target actions, inserting synthetic waits
// for real time gaps and a final settle wait. An empty log yields an empty
// (non-nil) array.
func (t *Transcoder) Transcode(actions []action.Action) []TargetAction {
	out := make([]TargetAction, 0, len(actions)+4)
	if len(actions) == 0 {
		return out
	}

	var prev *action.Action
	for i := range actions {
		a := actions[i]
		if prev != nil {
			if w, ok := t.gapWait(*prev, a); ok {
				out = append(out, w)
			}
		}
		out = append(out, t.mapAction(a)...)
		prev = &actions[i]
	}

	out = append(out, t.waitBand(finalWaitMinMillis, finalWaitMaxMillis, "Wait for the page to settle"))
	return out
}

// gapWait synthesizes an intermediate wait when the real elapsed time
// between two source actions exceeds the gap threshold. The nominal
// duration is the elapsed time clamped to [1s, 30s] and raised to a
// context-sensitive minimum.
func (t *Transcoder) gapWait(prev, cur action.Action) (TargetAction, bool) {
	elapsed := cur.Timestamp - prev.Timestamp
	if elapsed <= gapThresholdMillis {
		return TargetAction{}, false
	}

	nominal := int(elapsed)
	if nominal < gapClampMinMillis {
		nominal = gapClampMinMillis
	}
	if nominal > gapClampMaxMillis {
		nominal = gapClampMaxMillis
	}

	switch {
	case prev.Type == action.TypeNewPage || prev.Type == action.TypeGotoURL:
		if nominal < minAfterNavigationMillis {
			nominal = minAfterNavigationMillis
		}
	case prev.Type == action.TypeClick && cur.Type == action.TypeInputContent:
		if nominal < minClickToInputMillis {
			nominal = minClickToInputMillis
		}
	case prev.Type == action.TypeScrollPage:
		if nominal < minAfterScrollMillis {
			nominal = minAfterScrollMillis
		}
	}

	if nominal > fixedWaitCutoffMillis {
		// -30%/+40% band around the nominal value to emulate human
		// variability.
		return t.waitBand(nominal*7/10, nominal*14/10, remarkWait(nominal)), true
	}
	return TargetAction{
		Type: TargetWaitTime,
		Config: WaitTimeConfig{
			TimeoutType: WaitFixed,
			Timeout:     nominal + fixedWaitPaddingMillis,
			Remark:      remarkWait(nominal),
		},
	}, true
}

// mapAction projects one source action onto zero or more target actions.
// The switch is exhaustive over the capture action set; hover records carry
// no replay semantics in the target schema and are dropped.
func (t *Transcoder) mapAction(a action.Action) []TargetAction {
	switch cfg := a.Config.(type) {
	case action.NewPageConfig:
		return []TargetAction{{
			Type: TargetNewPage,
			Config: OpenTabConfig{
				URL:             cfg.URL,
				Timeout:         pageLoadTimeoutMillis,
				WaitForComplete: true,
				Remark:          remarkOpenTab(cfg.URL),
			},
		}}

	case action.GotoURLConfig:
		return []TargetAction{{
			Type: TargetGotoURL,
			Config: NavigateConfig{
				URL:         cfg.URL,
				Timeout:     pageLoadTimeoutMillis,
				WaitForLoad: true,
				RetryCount:  navigateRetryCount,
				Remark:      remarkNavigate(cfg.URL),
			},
		}}

	case action.ClickConfig:
		return []TargetAction{{Type: TargetClickElement, Config: t.clickConfig(cfg)}}

	case action.InputContentConfig:
		return []TargetAction{{
			Type: TargetInputContent,
			Config: InputContentConfig{
				Selector:    cfg.Selector,
				Content:     cfg.Content,
				Interval:    typingInterval(cfg.Content),
				ClearBefore: true,
				HumanLike:   true,
				Remark:      remarkInput(cfg),
			},
		}}

	case action.KeyboardConfig:
		return []TargetAction{{
			Type: TargetKeyboard,
			Config: KeyboardConfig{
				Key:       keyChord(cfg),
				Interval:  keyIntervalMillis,
				AfterWait: keyAfterWaitMillis,
				Remark:    remarkKey(keyChord(cfg)),
			},
		}}

	case action.ScrollPageConfig:
		return []TargetAction{{Type: TargetScrollPage, Config: t.scrollConfig(cfg)}}

	case action.FormSubmitConfig:
		// A submit replays as an Enter key press followed by a
		// form-processing wait.
		return []TargetAction{
			{
				Type: TargetKeyboard,
				Config: KeyboardConfig{
					Key:       "Enter",
					Interval:  keyIntervalMillis,
					AfterWait: keyAfterWaitMillis,
					Remark:    remarkSubmit(cfg.URL),
				},
			},
			t.waitBand(formSubmitWaitMinMillis, formSubmitWaitMaxMillis, "Wait for form processing"),
		}

	case action.CloseOtherPagesConfig:
		return []TargetAction{{
			Type: TargetCloseOtherPage,
			Config: CloseOtherPageConfig{
				ExcludeCurrent: true,
				Remark:         "Close other tabs",
			},
		}}

	case action.WaitTimeConfig:
		if cfg.Random && cfg.Max > cfg.Min {
			return []TargetAction{t.waitBand(cfg.Min, cfg.Max, remarkWait(cfg.Duration))}
		}
		return []TargetAction{{
			Type: TargetWaitTime,
			Config: WaitTimeConfig{
				TimeoutType: WaitFixed,
				Timeout:     cfg.Duration,
				Remark:      remarkWait(cfg.Duration),
			},
		}}

	case action.HoverConfig:
		return nil
	}
	// Unrecognized source types are dropped, not an error.
	return nil
}

func (t *Transcoder) clickConfig(cfg action.ClickConfig) ClickElementConfig {
	out := ClickElementConfig{
		SelectorType:   SelectCSS,
		Selector:       cfg.Selector,
		Button:         "left",
		PreWait:        clickPreWaitMillis,
		RetryCount:     clickRetryCount,
		ScrollIntoView: true,
		Remark:         remarkClick(cfg),
	}
	// Text targeting is sturdier than generated CSS when the label is
	// short and present; ARIA label stands in when the text is missing.
	switch {
	case cfg.Text != "" && len(cfg.Text) < maxTextTargeting:
		out.SelectorType = SelectText
		out.Selector = cfg.Text
	case cfg.AriaLabel != "":
		out.SelectorType = SelectAria
		out.Selector = cfg.AriaLabel
	}
	return out
}

func (t *Transcoder) scrollConfig(cfg action.ScrollPageConfig) ScrollPageConfig {
	distance := cfg.Y
	if distance <= 0 {
		distance = defaultScrollDistance
	}
	if distance < minScrollDistance {
		distance = minScrollDistance
	}
	return ScrollPageConfig{
		Distance:      distance,
		ScrollType:    "smooth",
		WheelDistance: 80 + t.rng.Intn(41), // 80-120 px per tick
		SleepMin:      50,
		SleepMax:      200,
		Remark:        remarkScroll(cfg.Direction, distance),
	}
}

// typingInterval picks a per-character delay from the content length:
// short values are typed briskly, long ones more deliberately.
func typingInterval(content string) int {
	switch n := len(content); {
	case n < 10:
		return 50
	case n < 30:
		return 100
	case n < 100:
		return 150
	default:
		return 200
	}
}

func keyChord(cfg action.KeyboardConfig) string {
	chord := ""
	if cfg.Ctrl {
		chord += "Ctrl+"
	}
	if cfg.Alt {
		chord += "Alt+"
	}
	if cfg.Shift {
		chord += "Shift+"
	}
	if cfg.Meta {
		chord += "Meta+"
	}
	return chord + cfg.Key
}

// waitBand builds a random-interval wait whose drawn timeout lies inside
// [min, max].
func (t *Transcoder) waitBand(min, max int, remark string) TargetAction {
	if max < min {
		max = min
	}
	return TargetAction{
		Type: TargetWaitTime,
		Config: WaitTimeConfig{
			TimeoutType: WaitRandomInterval,
			Timeout:     min + t.rng.Intn(max-min+1),
			TimeoutMin:  min,
			TimeoutMax:  max,
			Remark:      remark,
		},
	}
}
