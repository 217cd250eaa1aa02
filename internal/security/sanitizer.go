// Package security sanitises upstream text before it is handed to clients.
//
// Titles, channel names and descriptions come from arbitrary uploaders and
// end up embedded in HTML by the presentation layer. TextSanitizer strips
// every tag and escapes what remains using bluemonday's strict policy.
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer is safe for concurrent use.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer builds a sanitizer on bluemonday.StrictPolicy.
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize removes all markup from s. Empty input returns empty output.
func (s *TextSanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(s.policy.Sanitize(text))
}
