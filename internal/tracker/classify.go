package tracker

import (
	"strings"

	"rpascribe/internal/action"
	"rpascribe/internal/dom"
)

// classifyClick derives the click-context from the target element: base
// classification by tag, refined by menu/dropdown ancestry, button-like
// classes or roles, and form ancestry.
func classifyClick(el *dom.Element) action.ClickContext {
	if el == nil {
		return action.ContextAction
	}
	if el.InMenu {
		return action.ContextMenuSelection
	}

	switch el.Tag {
	case "a":
		if buttonLike(el) {
			return action.ContextAction
		}
		return action.ContextNavigation
	case "button":
		if el.Type == "submit" || (el.InForm && el.Type == "") {
			return action.ContextFormSubmit
		}
		return action.ContextAction
	case "input":
		switch el.Type {
		case "submit":
			return action.ContextFormSubmit
		case "button", "reset":
			return action.ContextAction
		default:
			return action.ContextFocus
		}
	}

	if buttonLike(el) {
		if el.InForm {
			return action.ContextFormSubmit
		}
		return action.ContextAction
	}
	return action.ContextFocus
}

var buttonClassHints = []string{"btn", "button", "submit"}

func buttonLike(el *dom.Element) bool {
	if el.Role == "button" {
		return true
	}
	for _, c := range el.Classes {
		lc := strings.ToLower(c)
		for _, hint := range buttonClassHints {
			if strings.Contains(lc, hint) {
				return true
			}
		}
	}
	return false
}

// isInputSurface reports whether el accepts text/content input.
func isInputSurface(el *dom.Element) bool {
	if el == nil {
		return false
	}
	switch el.Tag {
	case "input", "textarea", "select":
		return true
	}
	return el.ContentEditable
}

// isInteractive gates hover capture to elements a user plausibly targets.
func isInteractive(el *dom.Element) bool {
	if el == nil {
		return false
	}
	switch el.Tag {
	case "a", "button", "input", "select", "textarea":
		return true
	}
	return el.HasClickHandler || el.Role == "button" || el.PointerCursor
}

// maxClickText bounds the visible text recorded with a click.
const maxClickText = 100

// elementText derives the visible text for a click record: form controls
// report their value or placeholder, everything else its trimmed text.
func elementText(el *dom.Element) string {
	if el == nil {
		return ""
	}
	var t string
	switch el.Tag {
	case "input", "textarea", "select":
		t = el.Value
		if t == "" {
			t = el.Placeholder
		}
	default:
		t = strings.TrimSpace(el.Text)
	}
	if len(t) > maxClickText {
		t = t[:maxClickText]
	}
	return t
}

// specialKeys is the fixed allow-list of non-printable keys worth
// recording.
var specialKeys = map[string]bool{
	"Enter": true, "Tab": true, "Escape": true,
	"ArrowUp": true, "ArrowDown": true, "ArrowLeft": true, "ArrowRight": true,
	"Home": true, "End": true, "PageUp": true, "PageDown": true,
	"Delete": true, "Backspace": true,
	"F1": true, "F2": true, "F3": true, "F4": true, "F5": true, "F6": true,
	"F7": true, "F8": true, "F9": true, "F10": true, "F11": true, "F12": true,
}

func isSpecialKey(key string) bool { return specialKeys[key] }
