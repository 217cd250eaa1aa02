// Package duration converts the ISO 8601 durations used by the YouTube Data
// API (e.g. PT1H2M5S) to seconds and formats seconds for display.
package duration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unknown is rendered for zero or negative durations. A real video is never
// zero seconds long, so zero means a live stream or an unparseable token.
const Unknown = "–"

var tokenPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// unitSeconds lines up with the capture groups of tokenPattern.
var unitSeconds = [...]int{86400, 3600, 60, 1}

// Parse converts a duration token to seconds.
// Empty or malformed input returns 0; it never fails.
func Parse(raw string) int {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return 0
	}

	m := tokenPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}

	total := 0
	for i, mult := range unitSeconds {
		group := m[i+1]
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil || n > (math.MaxInt-total)/mult {
			return 0
		}
		total += n * mult
	}
	return total
}

// Format renders seconds as M:SS below one hour and H:MM:SS otherwise.
func Format(seconds int) string {
	if seconds <= 0 {
		return Unknown
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Token encodes seconds in the canonical form the API emits, so that
// Parse(Token(d)) == d for every d >= 0.
func Token(seconds int) string {
	if seconds <= 0 {
		return "PT0S"
	}

	days := seconds / 86400
	rem := seconds % 86400

	var b strings.Builder
	b.WriteString("P")
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if rem == 0 {
		return b.String()
	}

	b.WriteString("T")
	if h := rem / 3600; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m := (rem % 3600) / 60; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s := rem % 60; s > 0 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
