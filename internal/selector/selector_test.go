package selector

import (
	"testing"

	"rpascribe/internal/dom"
)

// fakeDoc answers Count from a fixed selector -> match-count table; unknown
// selectors match nothing.
type fakeDoc map[string]int

func (d fakeDoc) Count(sel string) int { return d[sel] }

func TestGenerate_PrefersUniqueID(t *testing.T) {
	el := &dom.Element{
		Tag:     "button",
		ID:      "login-btn",
		Classes: []string{"btn", "primary"},
	}
	doc := fakeDoc{"#login-btn": 1, ".btn.primary": 1}

	got := Generate(el, doc)
	if got.Value != "#login-btn" {
		t.Errorf("expected id selector, got %q", got.Value)
	}
	if got.Strategy != StrategyCSS {
		t.Errorf("expected css strategy, got %q", got.Strategy)
	}
}

func TestGenerate_SkipsNonUniqueID(t *testing.T) {
	el := &dom.Element{
		Tag:       "input",
		ID:        "field",
		DataAttrs: map[string]string{"data-testid": "email-input"},
	}
	// Duplicate ids happen on real pages.
	doc := fakeDoc{
		"#field":                      3,
		`[data-testid="email-input"]`: 1,
	}

	got := Generate(el, doc)
	if want := `[data-testid="email-input"]`; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_TestAttributeOrder(t *testing.T) {
	el := &dom.Element{
		Tag: "div",
		DataAttrs: map[string]string{
			"data-cy":   "checkout",
			"data-test": "checkout-box",
		},
	}
	doc := fakeDoc{
		`[data-test="checkout-box"]`: 1,
		`[data-cy="checkout"]`:       1,
	}

	// data-test outranks data-cy.
	got := Generate(el, doc)
	if want := `[data-test="checkout-box"]`; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_NameAttribute(t *testing.T) {
	el := &dom.Element{Tag: "input", Name: "email"}
	doc := fakeDoc{`[name="email"]`: 1}

	got := Generate(el, doc)
	if want := `[name="email"]`; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_FullClassJoinBeforeSingle(t *testing.T) {
	el := &dom.Element{Tag: "button", Classes: []string{"btn", "btn-primary"}}
	doc := fakeDoc{".btn.btn-primary": 1, ".btn": 7}

	got := Generate(el, doc)
	if want := ".btn.btn-primary"; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_MeaningfulSingleClass(t *testing.T) {
	el := &dom.Element{Tag: "button", Classes: []string{"css-1a2b3c", "checkout"}}
	doc := fakeDoc{".checkout": 1}

	// The hashed framework class is skipped; the meaningful one wins.
	got := Generate(el, doc)
	if want := ".checkout"; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_AriaAndRole(t *testing.T) {
	el := &dom.Element{Tag: "button", AriaLabel: "Close dialog", Role: "button"}
	doc := fakeDoc{`[aria-label="Close dialog"]`: 1}

	got := Generate(el, doc)
	if want := `[aria-label="Close dialog"]`; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
	if got.AriaLabel != "Close dialog" {
		t.Errorf("aria hint not carried: %q", got.AriaLabel)
	}
}

func TestGenerate_AncestorPathFallback(t *testing.T) {
	el := &dom.Element{
		Tag:             "li",
		Classes:         []string{"item"},
		NthOfType:       2,
		SameTagSiblings: 5,
		Ancestors: []dom.Ancestor{
			{Tag: "ul", Classes: []string{"results"}, NthOfType: 1, SameTagSiblings: 1},
			{Tag: "div", Classes: []string{"_x9f"}, NthOfType: 3, SameTagSiblings: 4},
		},
	}
	// Nothing is unique, so the structural path is used as-is.
	doc := fakeDoc{}

	got := Generate(el, doc)
	want := "div:nth-of-type(3) > ul.results > li.item:nth-of-type(2)"
	if got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_PathStopsAtBody(t *testing.T) {
	el := &dom.Element{
		Tag: "span",
		Ancestors: []dom.Ancestor{
			{Tag: "p", NthOfType: 1, SameTagSiblings: 1},
			{Tag: "body"},
			{Tag: "html"},
		},
	}

	got := Generate(el, fakeDoc{})
	if want := "p > span"; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_NilElement(t *testing.T) {
	got := Generate(nil, fakeDoc{})
	if got.Value != "" {
		t.Errorf("nil element should yield empty value, got %q", got.Value)
	}
}

func TestGenerate_NilDocumentAcceptsFirstCandidate(t *testing.T) {
	el := &dom.Element{Tag: "button", ID: "go"}
	got := Generate(el, nil)
	if want := "#go"; got.Value != want {
		t.Errorf("expected %q, got %q", want, got.Value)
	}
}

func TestGenerate_TextHint(t *testing.T) {
	el := &dom.Element{Tag: "button", ID: "go", Text: "  Submit order  "}
	got := Generate(el, nil)
	if got.Text != "Submit order" {
		t.Errorf("expected trimmed text hint, got %q", got.Text)
	}

	long := &dom.Element{Tag: "button", ID: "go"}
	for i := 0; i < 10; i++ {
		long.Text += "abcdefghij"
	}
	if got := Generate(long, nil); got.Text != "" {
		t.Errorf("overlong text should not become a hint, got %q", got.Text)
	}
}

func TestMeaningfulClass(t *testing.T) {
	cases := []struct {
		class string
		want  bool
	}{
		{"checkout", true},
		{"btn-primary", true},
		{"ab", false},         // too short
		{"_generated", false}, // leading underscore
		{"css-1x2y3z", false}, // framework prefix
		{"jss374", false},     // digit run
		{"sc-bdVaJa", false},  // styled-components
		{"item2", true},       // single digit is fine
		{"col-12", false},     // digit run
		{"v-btn", false},      // vuetify prefix
	}
	for _, tc := range cases {
		if got := meaningfulClass(tc.class); got != tc.want {
			t.Errorf("meaningfulClass(%q) = %v, want %v", tc.class, got, tc.want)
		}
	}
}

func TestEscape(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"simple", "simple"},
		{"with space", `with\ space`},
		{"a.b:c", `a\.b\:c`},
		{"under_score-ok", "under_score-ok"},
	}
	for _, tc := range cases {
		if got := Escape(tc.in); got != tc.want {
			t.Errorf("Escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
