package dom

// Rect is an element's bounding box in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Ancestor is one level of an element's ancestor chain, nearest first.
// SameTagSiblings counts siblings sharing the tag under the same parent,
// NthOfType is the 1-based position among them.
type Ancestor struct {
	Tag             string   `json:"tag"`
	Classes         []string `json:"classes"`
	NthOfType       int      `json:"nth_of_type"`
	SameTagSiblings int      `json:"same_tag_siblings"`
}

// Element is a snapshot of the DOM attributes needed to derive a selector
// and classify an interaction. It is captured in-page at event time and is
// never persisted; once the owning action is built it is discarded.
type Element struct {
	Tag             string            `json:"tag"`
	ID              string            `json:"id"`
	Classes         []string          `json:"classes"`
	Name            string            `json:"name"`
	Type            string            `json:"type"` // input type attribute
	Role            string            `json:"role"`
	AriaLabel       string            `json:"aria_label"`
	DataAttrs       map[string]string `json:"data_attrs"`
	Placeholder     string            `json:"placeholder"`
	Value           string            `json:"value"`
	Text            string            `json:"text"`
	ContentEditable bool              `json:"content_editable"`
	Visible         bool              `json:"visible"`
	HasClickHandler bool              `json:"has_click_handler"`
	PointerCursor   bool              `json:"pointer_cursor"`
	InForm          bool              `json:"in_form"`
	InMenu          bool              `json:"in_menu"`
	Rect            Rect              `json:"rect"`
	Ancestors       []Ancestor        `json:"ancestors"`

	// NthOfType/SameTagSiblings for the element itself, used by the
	// structural fallback selector.
	NthOfType       int `json:"nth_of_type"`
	SameTagSiblings int `json:"same_tag_siblings"`
}

// Event kinds delivered by the in-page capture script.
const (
	EventClick      = "click"
	EventInput      = "input"
	EventKeydown    = "keydown"
	EventScroll     = "scroll"
	EventMouseEnter = "mouseenter"
	EventBlur       = "blur"
	EventSubmit     = "submit"
)

// RawEvent is one untyped page event drained from the capture script's
// buffer. Element is nil for page-level events (scroll).
type RawEvent struct {
	Kind      string   `json:"kind"`
	Timestamp int64    `json:"timestamp"` // epoch millis, page clock
	Element   *Element `json:"element,omitempty"`

	// Pointer events
	ClientX int `json:"client_x,omitempty"`
	ClientY int `json:"client_y,omitempty"`

	// Scroll
	ScrollX int `json:"scroll_x,omitempty"`
	ScrollY int `json:"scroll_y,omitempty"`

	// Keyboard
	Key   string `json:"key,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Meta  bool   `json:"meta,omitempty"`

	// Input / blur
	Value string `json:"value,omitempty"`

	// Form submit
	FormAction string `json:"form_action,omitempty"`
	FormMethod string `json:"form_method,omitempty"`

	// Page URL at event time
	URL string `json:"url,omitempty"`
}
