package display

import (
	"strings"
	"testing"
	"time"

	"github.com/gauthierbraillon/trendmix/internal/aggregator"
	"github.com/gauthierbraillon/trendmix/internal/origin"
)

func sampleRecord() aggregator.VideoRecord {
	return aggregator.VideoRecord{
		ID:           "abc123",
		Title:        "Question Period highlights",
		URL:          aggregator.WatchURLPrefix + "abc123",
		ChannelID:    "UCcpac",
		ChannelTitle: "CPAC",
		Origin:       origin.LabelLocal,
		ViewCount:    2_500_000,
		ViewsText:    "2.5M",
		DurationText: "12:34",
		AgeText:      "3 hours ago",
		ViewsPerHour: 833_333.4,
		Snippet:      "Members debate the housing bill…",
	}
}

func TestAC600_TerminalView_ShowsTitleAndRank(t *testing.T) {
	output := NewTerminalFormatter("CA", nil).FormatItem(4, sampleRecord(), aggregator.ViewRegular)

	if !strings.HasPrefix(output, "#4 ") {
		t.Errorf("user should see the rank first, got: %q", output)
	}
	if !strings.Contains(output, "Question Period highlights") {
		t.Error("user should see video title in terminal output")
	}
}

func TestAC601_TerminalView_ShowsStatsLine(t *testing.T) {
	output := NewTerminalFormatter("CA", nil).FormatItem(1, sampleRecord(), aggregator.ViewRegular)

	if !strings.Contains(output, "2.5M views • 12:34 • 3 hours ago") {
		t.Errorf("user should see views, duration and age, got: %q", output)
	}
}

func TestAC602_TerminalView_ShowsChannelAndOrigin(t *testing.T) {
	f := NewTerminalFormatter("CA", nil)

	tests := []struct {
		label origin.Label
		want  string
	}{
		{origin.LabelLocal, "CPAC • CA outlet"},
		{origin.LabelForeign, "CPAC • Non-CA outlet"},
		{origin.LabelUnknown, "CPAC • Origin unknown"},
	}
	for _, tt := range tests {
		rec := sampleRecord()
		rec.Origin = tt.label
		if output := f.FormatItem(5, rec, aggregator.ViewRegular); !strings.Contains(output, tt.want) {
			t.Errorf("origin %s: want %q in %q", tt.label, tt.want, output)
		}
	}
}

func TestAC602_TerminalView_FallsBackToChannelID(t *testing.T) {
	rec := sampleRecord()
	rec.ChannelTitle = ""

	output := NewTerminalFormatter("CA", nil).FormatItem(5, rec, aggregator.ViewRegular)
	if !strings.Contains(output, "UCcpac • CA outlet") {
		t.Errorf("user should see the channel id when the title is missing, got: %q", output)
	}
}

func TestAC603_TerminalView_ShowsBadges(t *testing.T) {
	f := NewTerminalFormatter("CA", nil)

	top := f.FormatItem(1, sampleRecord(), aggregator.ViewRegular)
	if !strings.HasPrefix(top, "#1 ⭐ 🔥 ") {
		t.Errorf("top-ranked million-view entry should carry both badges, got: %q", top)
	}

	rec := sampleRecord()
	rec.ViewCount = 10_000
	plain := f.FormatItem(7, rec, aggregator.ViewRegular)
	if strings.Contains(plain, "⭐") || strings.Contains(plain, "🔥") {
		t.Errorf("rank 7 with 10K views should carry no badge, got: %q", plain)
	}
}

func TestAC604_TerminalView_VelocityOnlyForRising(t *testing.T) {
	f := NewTerminalFormatter("CA", nil)

	rising := f.FormatItem(1, sampleRecord(), aggregator.ViewRising)
	if !strings.Contains(rising, "833,333 views/hr") {
		t.Errorf("rising view should show velocity, got: %q", rising)
	}

	regular := f.FormatItem(1, sampleRecord(), aggregator.ViewRegular)
	if strings.Contains(regular, "views/hr") {
		t.Errorf("regular view should not show velocity, got: %q", regular)
	}
}

func TestAC605_TerminalView_ShowsSnippetAndURL(t *testing.T) {
	output := NewTerminalFormatter("CA", nil).FormatItem(1, sampleRecord(), aggregator.ViewRegular)

	if !strings.Contains(output, "Members debate the housing bill…") {
		t.Error("user should see the description snippet")
	}
	if !strings.Contains(output, "https://www.youtube.com/watch?v=abc123") {
		t.Error("user should see clickable video URL in terminal output")
	}
}

func TestAC606_TerminalView_ShowsMultipleItemsInOrder(t *testing.T) {
	first, second := sampleRecord(), sampleRecord()
	first.Title, second.Title = "First Video", "Second Video"

	output := NewTerminalFormatter("CA", nil).FormatView([]aggregator.VideoRecord{first, second}, aggregator.ViewRegular)

	i, j := strings.Index(output, "#1 "), strings.Index(output, "#2 ")
	if i < 0 || j < 0 || i > j {
		t.Fatalf("user should see entries ranked 1 then 2, got: %q", output)
	}
	if !strings.Contains(output, "First Video") || !strings.Contains(output, "Second Video") {
		t.Error("user should see both videos")
	}
}

func TestAC607_TerminalView_ShowsEmptyMessage(t *testing.T) {
	output := NewTerminalFormatter("CA", nil).FormatView(nil, aggregator.ViewShorts)

	if !strings.Contains(strings.ToLower(output), "no videos") {
		t.Error("user should see message indicating no content available")
	}
}

func TestAC608_TerminalView_LastUpdatedInDisplayZone(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	fetchedAt := time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)

	f := NewTerminalFormatter("CA", est)
	if got, want := f.FormatUpdated(fetchedAt, false), "Last updated: Fri Mar 1, 2024 12:30 PM EST\n"; got != want {
		t.Errorf("FormatUpdated() = %q, want %q", got, want)
	}
	if got := f.FormatUpdated(fetchedAt, true); !strings.Contains(got, "stale") {
		t.Errorf("stale snapshot should be flagged, got %q", got)
	}
}

func TestAC608_TerminalView_DefaultsToUTC(t *testing.T) {
	fetchedAt := time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)

	got := NewTerminalFormatter("CA", nil).FormatUpdated(fetchedAt, false)
	if !strings.Contains(got, "5:30 PM UTC") {
		t.Errorf("nil location should render UTC, got %q", got)
	}
}
