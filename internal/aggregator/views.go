package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gauthierbraillon/trendmix/internal/origin"
	"github.com/gauthierbraillon/trendmix/internal/stats"
)

// ViewKind selects which records a view contains and how they are ranked.
type ViewKind string

const (
	ViewRegular ViewKind = "regular"
	ViewShorts  ViewKind = "shorts"
	ViewRecent  ViewKind = "recent"
	ViewRising  ViewKind = "rising"
)

// OriginFilter restricts a view by publisher origin.
type OriginFilter string

const (
	OriginAll     OriginFilter = "all"
	OriginLocal   OriginFilter = "local"
	OriginForeign OriginFilter = "foreign"
)

const (
	DefaultRecentWindow = 24 * time.Hour
	DefaultRisingWindow = 8 * time.Hour
)

// ViewOptions configures SelectView. Zero windows use the defaults; a Limit
// of zero or less returns every match.
type ViewOptions struct {
	Kind         ViewKind
	Origin       OriginFilter
	Limit        int
	RecentWindow time.Duration
	RisingWindow time.Duration
}

// ParseViewKind accepts the CLI and HTTP spellings of a view kind.
func ParseViewKind(s string) (ViewKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "regular", "videos":
		return ViewRegular, nil
	case "shorts", "short":
		return ViewShorts, nil
	case "recent", "24h":
		return ViewRecent, nil
	case "rising", "hot":
		return ViewRising, nil
	default:
		return "", fmt.Errorf("unknown view %q (want regular, shorts, recent or rising)", s)
	}
}

// ParseOriginFilter accepts the CLI and HTTP spellings of an origin filter.
func ParseOriginFilter(s string) (OriginFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return OriginAll, nil
	case "local":
		return OriginLocal, nil
	case "foreign", "global":
		return OriginForeign, nil
	default:
		return "", fmt.Errorf("unknown origin filter %q (want all, local or foreign)", s)
	}
}

// View selects from the snapshot's own records and publishers.
func (s *Snapshot) View(opts ViewOptions) []VideoRecord {
	return SelectView(s.Records, s.Publishers, opts)
}

// SelectView filters by origin and kind, sorts descending by view count
// (views per hour for rising) and then applies the limit. Ties keep input
// order. records is never modified.
func SelectView(records []VideoRecord, publishers map[string]origin.Publisher, opts ViewOptions) []VideoRecord {
	recent := opts.RecentWindow
	if recent <= 0 {
		recent = DefaultRecentWindow
	}
	rising := opts.RisingWindow
	if rising <= 0 {
		rising = DefaultRisingWindow
	}

	out := make([]VideoRecord, 0, len(records))
	for _, r := range records {
		if !matchesOrigin(labelOf(r, publishers), opts.Origin) {
			continue
		}
		if !matchesKind(r, opts.Kind, recent, rising) {
			continue
		}
		out = append(out, r)
	}

	if opts.Kind == ViewRising {
		for i := range out {
			out[i].ViewsPerHour = stats.ViewsPerHour(out[i].ViewCount, out[i].AgeSeconds)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ViewsPerHour > out[j].ViewsPerHour
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ViewCount > out[j].ViewCount
		})
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func labelOf(r VideoRecord, publishers map[string]origin.Publisher) origin.Label {
	if p, ok := publishers[r.ChannelID]; ok {
		return p.Label
	}
	if r.Origin != "" {
		return r.Origin
	}
	return origin.LabelUnknown
}

// matchesOrigin treats UNKNOWN as foreign: only confirmed local publishers
// are excluded from the foreign filter.
func matchesOrigin(label origin.Label, f OriginFilter) bool {
	switch f {
	case OriginLocal:
		return label == origin.LabelLocal
	case OriginForeign:
		return label != origin.LabelLocal
	default:
		return true
	}
}

func matchesKind(r VideoRecord, kind ViewKind, recent, rising time.Duration) bool {
	switch kind {
	case ViewShorts:
		return r.IsShortForm
	case ViewRecent:
		return within(r, recent)
	case ViewRising:
		return !r.IsShortForm && within(r, rising)
	default:
		return !r.IsShortForm
	}
}

func within(r VideoRecord, window time.Duration) bool {
	return r.HasPublishedAt() && r.AgeSeconds <= int64(window/time.Second)
}
