package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gauthierbraillon/trendmix/internal/classify"
	"github.com/gauthierbraillon/trendmix/internal/duration"
	"github.com/gauthierbraillon/trendmix/internal/origin"
	"github.com/gauthierbraillon/trendmix/internal/stats"
	"github.com/gauthierbraillon/trendmix/internal/youtube"
)

// DefaultSnippetChars is the description snippet length.
const DefaultSnippetChars = 260

// PublisherResolver maps channel ids to publishers. *origin.Resolver
// implements it.
type PublisherResolver interface {
	Resolve(ctx context.Context, ids []string) (map[string]origin.Publisher, error)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithChart records which chart the snapshots come from.
func WithChart(region, category string) Option {
	return func(a *Aggregator) {
		a.region = region
		a.category = category
	}
}

// WithSnippetChars sets the description snippet length.
func WithSnippetChars(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.snippetChars = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// Aggregator builds snapshots from chart items.
type Aggregator struct {
	resolver     PublisherResolver
	region       string
	category     string
	snippetChars int
	logger       *slog.Logger
}

// New creates a new Aggregator instance.
func New(resolver PublisherResolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver:     resolver,
		snippetChars: DefaultSnippetChars,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate extracts a record per item, resolves all channels in a single
// resolver call and derives every field relative to fetchedAt.
func (a *Aggregator) Aggregate(ctx context.Context, items []youtube.VideoItem, fetchedAt time.Time) (*Snapshot, error) {
	fetchedAt = fetchedAt.UTC()

	records := make([]VideoRecord, 0, len(items))
	seenVideos := make(map[string]bool, len(items))
	var channelIDs []string
	seenChannels := make(map[string]bool)

	for _, item := range items {
		if item.ID == "" || seenVideos[item.ID] {
			continue
		}
		seenVideos[item.ID] = true

		rec := a.extract(item, fetchedAt)
		records = append(records, rec)

		if rec.ChannelID != "" && !seenChannels[rec.ChannelID] {
			seenChannels[rec.ChannelID] = true
			channelIDs = append(channelIDs, rec.ChannelID)
		}
	}

	publishers, err := a.resolver.Resolve(ctx, channelIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trending chart: %w", err)
	}
	if publishers == nil {
		publishers = make(map[string]origin.Publisher)
	}

	for i := range records {
		rec := &records[i]
		p, ok := publishers[rec.ChannelID]
		if !ok {
			p = origin.Publisher{ID: rec.ChannelID, Label: origin.LabelUnknown}
			publishers[rec.ChannelID] = p
		}
		rec.ChannelCountry = p.CountryCode
		rec.ChannelLogo = p.LogoURL
		rec.Origin = p.Label
		if rec.ChannelTitle == "" {
			rec.ChannelTitle = p.Title
		}
	}

	snap := &Snapshot{
		ID:         uuid.NewString(),
		Records:    records,
		Publishers: publishers,
		FetchedAt:  fetchedAt,
		Region:     a.region,
		Category:   a.category,
	}

	a.logger.Info("snapshot aggregated",
		slog.String("snapshot_id", snap.ID),
		slog.String("region", a.region),
		slog.String("category", a.category),
		slog.Int("records", len(records)),
		slog.Int("publishers", len(publishers)),
	)

	return snap, nil
}

func (a *Aggregator) extract(item youtube.VideoItem, fetchedAt time.Time) VideoRecord {
	rec := VideoRecord{
		ID:  item.ID,
		URL: WatchURLPrefix + item.ID,
	}

	if s := item.Snippet; s != nil {
		rec.Title = s.Title
		rec.Description = s.Description
		rec.ChannelID = s.ChannelID
		rec.ChannelTitle = s.ChannelTitle
		rec.PublishedAt = parsePublishedAt(s.PublishedAt)
		rec.Thumbnail = bestThumbnail(s.Thumbnails)
	}
	if st := item.Statistics; st != nil {
		rec.ViewCount = parseCount(st.ViewCount)
	}
	if cd := item.ContentDetails; cd != nil {
		rec.DurationSeconds = duration.Parse(cd.Duration)
	}

	rec.IsVertical = classify.IsVertical(rec.Thumbnail.Width, rec.Thumbnail.Height)
	rec.IsShortForm = classify.IsShortForm(classify.Signals{
		DurationSeconds: rec.DurationSeconds,
		Title:           rec.Title,
		Description:     rec.Description,
		ThumbnailWidth:  rec.Thumbnail.Width,
		ThumbnailHeight: rec.Thumbnail.Height,
	})

	if rec.HasPublishedAt() {
		rec.AgeSeconds = stats.AgeSeconds(rec.PublishedAt, fetchedAt)
		rec.ViewsPerHour = stats.ViewsPerHour(rec.ViewCount, rec.AgeSeconds)
	}

	rec.ViewsText = stats.FormatViewCount(rec.ViewCount)
	rec.DurationText = duration.Format(rec.DurationSeconds)
	rec.AgeText = stats.FormatAge(rec.PublishedAt, fetchedAt)
	rec.Snippet = stats.TruncateDescription(rec.Description, a.snippetChars)

	return rec
}

// bestThumbnail picks the first tier with a URL: medium, high, standard,
// default, maxres.
func bestThumbnail(t *youtube.Thumbnails) Thumbnail {
	if t == nil {
		return Thumbnail{}
	}
	for _, tier := range []*youtube.Thumbnail{t.Medium, t.High, t.Standard, t.Default, t.Maxres} {
		if tier != nil && tier.URL != "" {
			return Thumbnail{URL: tier.URL, Width: tier.Width, Height: tier.Height}
		}
	}
	return Thumbnail{}
}

func parsePublishedAt(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseCount(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
