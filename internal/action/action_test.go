package action

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewStampsTypeFromConfig(t *testing.T) {
	a := New(42, ClickConfig{Selector: "#go"})
	if a.Type != TypeClick {
		t.Errorf("expected %q, got %q", TypeClick, a.Type)
	}
	if a.Timestamp != 42 {
		t.Errorf("expected timestamp 42, got %d", a.Timestamp)
	}
}

func TestActionJSONRoundTrip(t *testing.T) {
	actions := []Action{
		New(1000, NewPageConfig{URL: "https://example.com"}),
		New(1000, GotoURLConfig{URL: "https://example.com"}),
		New(2500, ClickConfig{
			Selector: "#login",
			Tag:      "button",
			Text:     "Log in",
			Context:  ContextFormSubmit,
			X:        120, Y: 340,
		}),
		New(4000, InputContentConfig{Selector: `[name="q"]`, Content: "hello"}),
		New(4200, KeyboardConfig{Key: "Enter", Ctrl: true}),
		New(5000, ScrollPageConfig{X: 0, Y: 600, Delta: 600, Direction: "down"}),
		New(6000, FormSubmitConfig{URL: "https://example.com/search", Method: "GET"}),
		New(6100, CloseOtherPagesConfig{}),
		New(6200, HoverConfig{Selector: ".menu", Tag: "a", Text: "Products"}),
		New(6300, WaitTimeConfig{Duration: 5000, Min: 3000, Max: 8000, Random: true}),
	}

	encoded, err := MarshalLog(actions)
	if err != nil {
		t.Fatalf("MarshalLog: %v", err)
	}

	decoded, err := UnmarshalLog(encoded)
	if err != nil {
		t.Fatalf("UnmarshalLog: %v", err)
	}

	if diff := cmp.Diff(actions, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	var a Action
	err := json.Unmarshal([]byte(`{"type":"teleport","timestamp":1,"config":{}}`), &a)
	if err == nil || !strings.Contains(err.Error(), "unknown action type") {
		t.Errorf("expected unknown type error, got %v", err)
	}
}

func TestUnmarshalLogEmpty(t *testing.T) {
	actions, err := UnmarshalLog("")
	if err != nil {
		t.Fatalf("UnmarshalLog(\"\"): %v", err)
	}
	if actions != nil {
		t.Errorf("expected nil for empty input, got %v", actions)
	}
}

func TestMarshalUsesTypeDiscriminator(t *testing.T) {
	b, err := json.Marshal(New(1, WaitTimeConfig{Duration: 5000}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"type":"waitTime"`) {
		t.Errorf("missing discriminator: %s", s)
	}
	if !strings.Contains(s, `"duration":5000`) {
		t.Errorf("missing config payload: %s", s)
	}
}
