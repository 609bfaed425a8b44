package action

import (
	"encoding/json"
	"fmt"
)

// Type identifies one variant of the closed capture-action set.
type Type string

const (
	TypeNewPage         Type = "newPage"
	TypeGotoURL         Type = "gotoUrl"
	TypeClick           Type = "click"
	TypeInputContent    Type = "inputContent"
	TypeKeyboard        Type = "keyboard"
	TypeScrollPage      Type = "scrollPage"
	TypeFormSubmit      Type = "formSubmit"
	TypeCloseOtherPages Type = "closeOtherPages"
	TypeHover           Type = "hover"
	TypeWaitTime        Type = "waitTime"
)

// Config is the variant-specific attribute bag of an Action. Exactly one
// concrete config type exists per action type, so a type switch over Config
// is exhaustive over the action set.
type Config interface {
	ActionType() Type
}

// Action is the atomic unit of the session log. Immutable once appended.
type Action struct {
	Type      Type   `json:"type"`
	Timestamp int64  `json:"timestamp"` // epoch millis at capture time
	Config    Config `json:"config"`
}

// ClickContext classifies what a click is for, derived from the target
// element at capture time.
type ClickContext string

const (
	ContextNavigation    ClickContext = "navigation"
	ContextAction        ClickContext = "action"
	ContextFormSubmit    ClickContext = "formSubmit"
	ContextFocus         ClickContext = "focus"
	ContextMenuSelection ClickContext = "menuSelection"
)

type NewPageConfig struct {
	URL string `json:"url"`
}

type GotoURLConfig struct {
	URL string `json:"url"`
}

type ClickConfig struct {
	Selector  string       `json:"selector"`
	Tag       string       `json:"tag"`
	Text      string       `json:"text,omitempty"`
	AriaLabel string       `json:"aria_label,omitempty"`
	Context   ClickContext `json:"context"`
	X         int          `json:"x"`
	Y         int          `json:"y"`
	RectX     float64      `json:"rect_x"`
	RectY     float64      `json:"rect_y"`
	RectW     float64      `json:"rect_w"`
	RectH     float64      `json:"rect_h"`
}

type InputContentConfig struct {
	Selector string `json:"selector"`
	Content  string `json:"content"`
}

type KeyboardConfig struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
}

type ScrollPageConfig struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Delta     int    `json:"delta"`
	Direction string `json:"direction"` // up | down
}

type FormSubmitConfig struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

type CloseOtherPagesConfig struct{}

type HoverConfig struct {
	Selector string `json:"selector"`
	Tag      string `json:"tag"`
	Text     string `json:"text,omitempty"`
}

// WaitTimeConfig models a synthetic settle wait. When Random is set the
// replay duration is drawn from [Min, Max]; Duration is the nominal value.
type WaitTimeConfig struct {
	Duration int  `json:"duration"` // millis
	Min      int  `json:"min,omitempty"`
	Max      int  `json:"max,omitempty"`
	Random   bool `json:"random,omitempty"`
}

func (NewPageConfig) ActionType() Type         { return TypeNewPage }
func (GotoURLConfig) ActionType() Type         { return TypeGotoURL }
func (ClickConfig) ActionType() Type           { return TypeClick }
func (InputContentConfig) ActionType() Type    { return TypeInputContent }
func (KeyboardConfig) ActionType() Type        { return TypeKeyboard }
func (ScrollPageConfig) ActionType() Type      { return TypeScrollPage }
func (FormSubmitConfig) ActionType() Type      { return TypeFormSubmit }
func (CloseOtherPagesConfig) ActionType() Type { return TypeCloseOtherPages }
func (HoverConfig) ActionType() Type           { return TypeHover }
func (WaitTimeConfig) ActionType() Type        { return TypeWaitTime }

// New builds an action from its config, stamping the type from the config
// itself so the two can never disagree.
func New(ts int64, cfg Config) Action {
	return Action{Type: cfg.ActionType(), Timestamp: ts, Config: cfg}
}

type actionJSON struct {
	Type      Type            `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Config    json.RawMessage `json:"config"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	cfg, err := json.Marshal(a.Config)
	if err != nil {
		return nil, err
	}
	return json.Marshal(actionJSON{Type: a.Type, Timestamp: a.Timestamp, Config: cfg})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cfg, err := configFor(raw.Type)
	if err != nil {
		return err
	}
	if len(raw.Config) > 0 {
		if err := json.Unmarshal(raw.Config, cfg); err != nil {
			return err
		}
	}
	a.Type = raw.Type
	a.Timestamp = raw.Timestamp
	a.Config = deref(cfg)
	return nil
}

func configFor(t Type) (Config, error) {
	switch t {
	case TypeNewPage:
		return &NewPageConfig{}, nil
	case TypeGotoURL:
		return &GotoURLConfig{}, nil
	case TypeClick:
		return &ClickConfig{}, nil
	case TypeInputContent:
		return &InputContentConfig{}, nil
	case TypeKeyboard:
		return &KeyboardConfig{}, nil
	case TypeScrollPage:
		return &ScrollPageConfig{}, nil
	case TypeFormSubmit:
		return &FormSubmitConfig{}, nil
	case TypeCloseOtherPages:
		return &CloseOtherPagesConfig{}, nil
	case TypeHover:
		return &HoverConfig{}, nil
	case TypeWaitTime:
		return &WaitTimeConfig{}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", t)
	}
}

func deref(cfg Config) Config {
	switch c := cfg.(type) {
	case *NewPageConfig:
		return *c
	case *GotoURLConfig:
		return *c
	case *ClickConfig:
		return *c
	case *InputContentConfig:
		return *c
	case *KeyboardConfig:
		return *c
	case *ScrollPageConfig:
		return *c
	case *FormSubmitConfig:
		return *c
	case *CloseOtherPagesConfig:
		return *c
	case *HoverConfig:
		return *c
	case *WaitTimeConfig:
		return *c
	}
	return cfg
}

// MarshalLog serializes a full action sequence for persistence.
func MarshalLog(actions []Action) (string, error) {
	b, err := json.Marshal(actions)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalLog restores an action sequence persisted by MarshalLog.
func UnmarshalLog(s string) ([]Action, error) {
	if s == "" {
		return nil, nil
	}
	var actions []Action
	if err := json.Unmarshal([]byte(s), &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
