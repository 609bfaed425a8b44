package transcoder

// Target action type discriminators of the RPA player schema.
const (
	TargetNewPage        = "newPage"
	TargetGotoURL        = "gotoUrl"
	TargetClickElement   = "clickElement"
	TargetInputContent   = "inputContent"
	TargetKeyboard       = "keyboard"
	TargetScrollPage     = "scrollPage"
	TargetCloseOtherPage = "closeOtherPage"
	TargetWaitTime       = "waitTime"
)

// TargetAction is one unit of the exported script: a type discriminator
// plus a schema-specific config. The export document is an ordered array of
// these.
type TargetAction struct {
	Type   string `json:"type"`
	Config any    `json:"config"`
}

// Selector strategies for click targeting.
const (
	SelectCSS  = "css"
	SelectText = "text"
	SelectAria = "aria"
)

// Wait timeout modes.
const (
	WaitFixed          = "fixed"
	WaitRandomInterval = "randomInterval"
)

type OpenTabConfig struct {
	URL             string `json:"url"`
	Timeout         int    `json:"timeout"` // millis
	WaitForComplete bool   `json:"wait_for_complete"`
	Remark          string `json:"remark"`
}

type NavigateConfig struct {
	URL         string `json:"url"`
	Timeout     int    `json:"timeout"` // millis
	WaitForLoad bool   `json:"wait_for_load"`
	RetryCount  int    `json:"retry_count"`
	Remark      string `json:"remark"`
}

type ClickElementConfig struct {
	SelectorType   string `json:"selector_type"` // css | text | aria
	Selector       string `json:"selector"`
	Button         string `json:"button"`
	PreWait        int    `json:"pre_wait"` // millis before the click
	RetryCount     int    `json:"retry_count"`
	ScrollIntoView bool   `json:"scroll_into_view"`
	Remark         string `json:"remark"`
}

type InputContentConfig struct {
	Selector    string `json:"selector"`
	Content     string `json:"content"`
	Interval    int    `json:"interval"` // per-character millis
	ClearBefore bool   `json:"clear_before"`
	HumanLike   bool   `json:"human_like"`
	Remark      string `json:"remark"`
}

type KeyboardConfig struct {
	Key       string `json:"key"`
	Interval  int    `json:"interval"`   // inter-key millis
	AfterWait int    `json:"after_wait"` // millis after the key
	Remark    string `json:"remark"`
}

type ScrollPageConfig struct {
	Distance      int    `json:"distance"` // px
	ScrollType    string `json:"scroll_type"`
	WheelDistance int    `json:"wheel_distance"` // px per wheel tick hint
	SleepMin      int    `json:"sleep_min"`      // millis between ticks
	SleepMax      int    `json:"sleep_max"`
	Remark        string `json:"remark"`
}

type CloseOtherPageConfig struct {
	ExcludeCurrent bool   `json:"exclude_current"`
	Remark         string `json:"remark"`
}

type WaitTimeConfig struct {
	TimeoutType string `json:"timeout_type"` // fixed | randomInterval
	Timeout     int    `json:"timeout"`      // millis; drawn within the band for randomInterval
	TimeoutMin  int    `json:"timeout_min,omitempty"`
	TimeoutMax  int    `json:"timeout_max,omitempty"`
	Remark      string `json:"remark"`
}
