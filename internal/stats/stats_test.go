package stats

import (
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFormatViewCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{999_999, "1.0M"},
		{1_500_000, "1.5M"},
		{12_340_000, "12.3M"},
		{999_999_999, "1.0B"},
		{1_200_000_000, "1.2B"},
		{-10, "0"},
	}

	for _, tt := range tests {
		if got := FormatViewCount(tt.n); got != tt.want {
			t.Errorf("FormatViewCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{100000, "100,000"},
		{-4321, "-4,321"},
	}

	for _, tt := range tests {
		if got := FormatThousands(tt.n); got != tt.want {
			t.Errorf("FormatThousands(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{-5 * time.Minute, "just now"},
		{time.Minute, "1 min ago"},
		{30 * time.Minute, "30 mins ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{7 * 24 * time.Hour, "1 week ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
	}

	for _, tt := range tests {
		if got := FormatAge(now.Add(-tt.age), now); got != tt.want {
			t.Errorf("FormatAge(-%v) = %q, want %q", tt.age, got, tt.want)
		}
	}

	if got := FormatAge(time.Time{}, now); got != "unknown" {
		t.Errorf("FormatAge(zero) = %q, want unknown", got)
	}
}

func TestTruncateDescription(t *testing.T) {
	t.Run("short text is only whitespace-collapsed", func(t *testing.T) {
		got := TruncateDescription("  Breaking\n\n news   today ", 50)
		if got != "Breaking news today" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("long text cut at word boundary with ellipsis", func(t *testing.T) {
		got := TruncateDescription("The quick brown fox jumps over the lazy dog", 20)
		if got != "The quick brown fox…" {
			t.Errorf("got %q", got)
		}
		if utf8.RuneCountInString(got) > 20 {
			t.Errorf("result %q exceeds 20 runes", got)
		}
	})

	t.Run("exact fit is not truncated", func(t *testing.T) {
		got := TruncateDescription("exactly ten", 11)
		if got != "exactly ten" {
			t.Errorf("got %q", got)
		}
		if strings.HasSuffix(got, Ellipsis) {
			t.Error("ellipsis only when truncated")
		}
	})

	t.Run("single long word is hard cut", func(t *testing.T) {
		got := TruncateDescription("supercalifragilistic", 8)
		if got != "superca…" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("multibyte text counts runes", func(t *testing.T) {
		got := TruncateDescription("élection fédérale résultats", 12)
		if utf8.RuneCountInString(got) > 12 || !strings.HasSuffix(got, Ellipsis) {
			t.Errorf("got %q", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := TruncateDescription("", 10); got != "" {
			t.Errorf("got %q", got)
		}
	})
}

func TestAgeSeconds_ClampsClockSkew(t *testing.T) {
	fetched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if got := AgeSeconds(fetched.Add(-90*time.Second), fetched); got != 90 {
		t.Errorf("AgeSeconds = %d, want 90", got)
	}
	if got := AgeSeconds(fetched.Add(time.Minute), fetched); got != 0 {
		t.Errorf("future publish time should clamp to 0, got %d", got)
	}
}

func TestViewsPerHour(t *testing.T) {
	if got := ViewsPerHour(600, 30*60); math.Abs(got-1200) > 1e-9 {
		t.Errorf("30 min old with 600 views = %v, want 1200", got)
	}

	got := ViewsPerHour(600, 0)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("age 0 must stay finite, got %v", got)
	}
	if math.Abs(got-600/FloorHours) > 1e-6 {
		t.Errorf("age 0 = %v, want %v", got, 600/FloorHours)
	}

	if got := ViewsPerHour(5000, 5*3600); math.Abs(got-1000) > 1e-9 {
		t.Errorf("5h old with 5000 views = %v, want 1000", got)
	}
	if got := ViewsPerHour(0, 3600); got != 0 {
		t.Errorf("no views = %v, want 0", got)
	}
}

func TestFormatViewsPerHour(t *testing.T) {
	if got := FormatViewsPerHour(1234.6); got != "1,235 views/hr" {
		t.Errorf("got %q", got)
	}
}

func TestBadges(t *testing.T) {
	tests := []struct {
		rank  int
		views int64
		want  string
	}{
		{1, 10, "⭐"},
		{3, 2_000_000, "⭐🔥"},
		{4, 1_000_000, "🔥"},
		{4, 999_999, ""},
		{0, 5, ""},
	}
	for _, tt := range tests {
		if got := strings.Join(Badges(tt.rank, tt.views), ""); got != tt.want {
			t.Errorf("Badges(%d, %d) = %q, want %q", tt.rank, tt.views, got, tt.want)
		}
	}
}
