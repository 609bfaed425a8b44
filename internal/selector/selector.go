package selector

import (
	"fmt"
	"regexp"
	"strings"

	"rpascribe/internal/dom"
)

// Strategy says how a locator value should be interpreted at replay time.
type Strategy string

const (
	StrategyCSS  Strategy = "css"
	StrategyText Strategy = "text"
)

// Result is a generated locator plus the text hints the transcoder may use
// to prefer text-based targeting over the CSS value.
type Result struct {
	Strategy  Strategy `json:"strategy"`
	Value     string   `json:"value"`
	Text      string   `json:"text,omitempty"`
	AriaLabel string   `json:"aria_label,omitempty"`
}

// Document answers how many elements a CSS selector matches in the live
// page. The capture agent backs it with querySelectorAll; tests use a fake.
type Document interface {
	Count(selector string) int
}

// maxTextHint is the longest visible text kept as a targeting hint.
const maxTextHint = 50

// testAttrs are checked in order; the first present wins.
var testAttrs = []string{"data-testid", "data-test", "data-cy", "data-automation"}

// Generate derives a durable locator for el, trying strategies from most to
// least specific and accepting the first that matches exactly one element.
// A nil element yields an empty result; Generate never fails.
func Generate(el *dom.Element, doc Document) Result {
	if el == nil || el.Tag == "" {
		return Result{Strategy: StrategyCSS}
	}

	res := Result{Strategy: StrategyCSS}
	if t := strings.TrimSpace(el.Text); t != "" && len(t) < maxTextHint {
		res.Text = t
	}
	res.AriaLabel = el.AriaLabel

	if sel := uniqueCandidate(el, doc); sel != "" {
		res.Value = sel
		return res
	}

	// Structural fallback: a short ancestor path. Best effort, returned
	// even when not provably unique.
	res.Value = ancestorPath(el)
	return res
}

func uniqueCandidate(el *dom.Element, doc Document) string {
	if el.ID != "" {
		if sel := "#" + Escape(el.ID); unique(doc, sel) {
			return sel
		}
	}

	for _, attr := range testAttrs {
		if v, ok := el.DataAttrs[attr]; ok && v != "" {
			if sel := fmt.Sprintf("[%s=%q]", attr, v); unique(doc, sel) {
				return sel
			}
		}
	}

	if el.Name != "" {
		if sel := fmt.Sprintf("[name=%q]", el.Name); unique(doc, sel) {
			return sel
		}
	}

	if len(el.Classes) > 0 {
		all := "." + joinEscaped(el.Classes, ".")
		if unique(doc, all) {
			return all
		}
		for _, c := range el.Classes {
			if !meaningfulClass(c) {
				continue
			}
			if sel := "." + Escape(c); unique(doc, sel) {
				return sel
			}
		}
	}

	if el.AriaLabel != "" {
		if sel := fmt.Sprintf("[aria-label=%q]", el.AriaLabel); unique(doc, sel) {
			return sel
		}
	}

	if el.Role != "" {
		if sel := fmt.Sprintf("[role=%q]", el.Role); unique(doc, sel) {
			return sel
		}
		if el.AriaLabel != "" {
			sel := fmt.Sprintf("[role=%q][aria-label=%q]", el.Role, el.AriaLabel)
			if unique(doc, sel) {
				return sel
			}
		}
	}

	return ""
}

func unique(doc Document, sel string) bool {
	if doc == nil {
		// No live document to verify against; accept the candidate.
		return true
	}
	return doc.Count(sel) == 1
}

// maxPathDepth bounds the ancestor walk of the structural fallback.
const maxPathDepth = 5

func ancestorPath(el *dom.Element) string {
	segments := []string{pathSegment(el.Tag, el.Classes, el.NthOfType, el.SameTagSiblings)}
	for i, anc := range el.Ancestors {
		if i >= maxPathDepth || anc.Tag == "body" || anc.Tag == "html" {
			break
		}
		segments = append(segments, pathSegment(anc.Tag, anc.Classes, anc.NthOfType, anc.SameTagSiblings))
	}
	// Ancestors are nearest-first; the selector reads root-first.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, " > ")
}

func pathSegment(tag string, classes []string, nth, siblings int) string {
	seg := tag
	for _, c := range classes {
		if meaningfulClass(c) {
			seg += "." + Escape(c)
			break
		}
	}
	if siblings > 1 && nth > 0 {
		seg += fmt.Sprintf(":nth-of-type(%d)", nth)
	}
	return seg
}

var (
	frameworkClass = regexp.MustCompile(`^(css|jss|jsx|sc|svelte|ng|v)-`)
	digitRun       = regexp.MustCompile(`[0-9]{2,}`)
)

// meaningfulClass rejects class names that look generated or hashed:
// leading underscore, framework prefixes, embedded digit runs, or too short
// to identify anything.
func meaningfulClass(c string) bool {
	if len(c) <= 2 {
		return false
	}
	if strings.HasPrefix(c, "_") {
		return false
	}
	if frameworkClass.MatchString(c) {
		return false
	}
	if digitRun.MatchString(c) {
		return false
	}
	return true
}

func joinEscaped(parts []string, sep string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = Escape(p)
	}
	return strings.Join(escaped, sep)
}

// Escape backslash-escapes every character outside [A-Za-z0-9_-] so an
// arbitrary attribute value is safe inside a selector.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
