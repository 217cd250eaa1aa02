// Package stats derives the per-video metrics shown next to each trending
// item: age, velocity and human-readable counts. Everything here is pure.
package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FloorHours bounds the age used for velocity so a video published seconds
// before the fetch does not divide by zero.
const FloorHours = 1.0 / 60.0

// Ellipsis marks a truncated description.
const Ellipsis = "…"

var viewUnits = []struct {
	threshold float64
	suffix    string
}{
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// FormatViewCount renders 1.5K, 2.3M, 1.2B style counts. Below 1,000 the
// exact number is printed.
func FormatViewCount(n int64) string {
	if n < 0 {
		n = 0
	}

	v := float64(n)
	for i, u := range viewUnits {
		if v < u.threshold {
			continue
		}
		s := strconv.FormatFloat(v/u.threshold, 'f', 1, 64)
		// 999,999 rounds to 1000.0K; promote to the next larger unit.
		if s == "1000.0" && i > 0 {
			return strconv.FormatFloat(v/viewUnits[i-1].threshold, 'f', 1, 64) + viewUnits[i-1].suffix
		}
		return s + u.suffix
	}
	return FormatThousands(n)
}

// FormatThousands inserts comma separators: 1234567 -> "1,234,567".
func FormatThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// FormatAge renders the time between publishedAt and now as "3 hours ago".
// A zero publishedAt means the API did not report one.
func FormatAge(publishedAt, now time.Time) string {
	if publishedAt.IsZero() {
		return "unknown"
	}

	age := now.Sub(publishedAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return ago(int(age/time.Minute), "min")
	case age < 24*time.Hour:
		return ago(int(age/time.Hour), "hour")
	case age < 7*24*time.Hour:
		return ago(int(age/(24*time.Hour)), "day")
	default:
		return ago(int(age/(7*24*time.Hour)), "week")
	}
}

func ago(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateDescription collapses whitespace and cuts text at a word boundary
// so the result, ellipsis included, is at most maxChars runes long.
func TruncateDescription(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := string(runes[:maxChars-1])
	if runes[maxChars-1] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ") + Ellipsis
}

// AgeSeconds is fetchedAt - publishedAt, clamped at zero for clock skew.
func AgeSeconds(publishedAt, fetchedAt time.Time) int64 {
	age := int64(fetchedAt.Sub(publishedAt) / time.Second)
	if age < 0 {
		return 0
	}
	return age
}

// ViewsPerHour is the view velocity since upload.
func ViewsPerHour(views, ageSeconds int64) float64 {
	if views <= 0 {
		return 0
	}
	hours := math.Max(float64(ageSeconds)/3600, FloorHours)
	return float64(views) / hours
}

// FormatViewsPerHour renders a velocity as "1,200 views/hr".
func FormatViewsPerHour(v float64) string {
	return FormatThousands(int64(math.Round(v))) + " views/hr"
}

// Badges shown next to a ranked entry.
const (
	BadgeTopRank = "⭐"
	BadgeMillion = "🔥"
)

// Badges returns the badges earned by the entry at 1-based rank.
func Badges(rank int, views int64) []string {
	var out []string
	if rank >= 1 && rank <= 3 {
		out = append(out, BadgeTopRank)
	}
	if views >= 1_000_000 {
		out = append(out, BadgeMillion)
	}
	return out
}
