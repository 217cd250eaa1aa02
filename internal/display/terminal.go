// Package display provides terminal output formatting for trendmix.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/gauthierbraillon/trendmix/internal/aggregator"
	"github.com/gauthierbraillon/trendmix/internal/origin"
	"github.com/gauthierbraillon/trendmix/internal/stats"
)

const separator = " • "

// UpdatedLayout is the layout of the "Last updated" line.
const UpdatedLayout = "Mon Jan 2, 2006 3:04 PM MST"

// TerminalFormatter formats ranked trending views for terminal display.
type TerminalFormatter struct {
	homeRegion string
	loc        *time.Location
}

// NewTerminalFormatter creates a formatter that describes origins relative
// to homeRegion and prints timestamps in loc (UTC when nil).
func NewTerminalFormatter(homeRegion string, loc *time.Location) *TerminalFormatter {
	if loc == nil {
		loc = time.UTC
	}
	return &TerminalFormatter{homeRegion: homeRegion, loc: loc}
}

// FormatItem formats one ranked record.
func (f *TerminalFormatter) FormatItem(rank int, rec aggregator.VideoRecord, kind aggregator.ViewKind) string {
	var lines []string

	header := fmt.Sprintf("#%d", rank)
	if badges := stats.Badges(rank, rec.ViewCount); len(badges) > 0 {
		header += " " + strings.Join(badges, " ")
	}
	lines = append(lines, header+" "+rec.Title)

	lines = append(lines, "  "+strings.Join([]string{
		rec.ViewsText + " views",
		rec.DurationText,
		rec.AgeText,
	}, separator))

	channel := rec.ChannelTitle
	if channel == "" {
		channel = rec.ChannelID
	}
	lines = append(lines, "  "+channel+separator+origin.Describe(rec.Origin, f.homeRegion))

	if kind == aggregator.ViewRising {
		lines = append(lines, "  "+stats.FormatViewsPerHour(rec.ViewsPerHour))
	}
	if rec.Snippet != "" {
		lines = append(lines, "  "+rec.Snippet)
	}
	if rec.URL != "" {
		lines = append(lines, "  "+rec.URL)
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatView formats a selected view in rank order.
func (f *TerminalFormatter) FormatView(records []aggregator.VideoRecord, kind aggregator.ViewKind) string {
	if len(records) == 0 {
		return "No videos to display.\n"
	}

	formatted := make([]string, 0, len(records))
	for i, rec := range records {
		formatted = append(formatted, f.FormatItem(i+1, rec, kind))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatUpdated renders the "Last updated" footer in the display time zone.
func (f *TerminalFormatter) FormatUpdated(fetchedAt time.Time, stale bool) string {
	line := "Last updated: " + fetchedAt.In(f.loc).Format(UpdatedLayout)
	if stale {
		line += " (stale, refresh failed)"
	}
	return line + "\n"
}
