package tracker

import (
	"strings"

	"rpascribe/internal/dom"
)

// defaultSensitiveKeywords flags credential and payment fields. Matched
// case-insensitively as substrings of name, id and placeholder.
var defaultSensitiveKeywords = []string{
	"password", "pass", "pwd", "secret", "token", "key",
	"credit", "card", "cvv", "ssn",
}

// isSensitive decides whether an input element must never produce a logged
// value. Password and email inputs are always excluded; otherwise the
// element's identifying attributes are scanned for sensitive keywords.
func isSensitive(el *dom.Element, extraKeywords []string) bool {
	if el == nil {
		return false
	}
	switch el.Type {
	case "password", "email":
		return true
	}

	haystacks := []string{
		strings.ToLower(el.Name),
		strings.ToLower(el.ID),
		strings.ToLower(el.Placeholder),
	}
	match := func(kw string) bool {
		for _, h := range haystacks {
			if h != "" && strings.Contains(h, kw) {
				return true
			}
		}
		return false
	}

	for _, kw := range defaultSensitiveKeywords {
		if match(kw) {
			return true
		}
	}
	for _, kw := range extraKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && match(kw) {
			return true
		}
	}
	return false
}
