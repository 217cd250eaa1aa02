package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gauthierbraillon/trendmix/internal/youtube"
)

// TrendingSource lists a most-popular chart. *youtube.Client implements it.
type TrendingSource interface {
	FetchMostPopular(ctx context.Context, q youtube.ChartQuery) ([]youtube.VideoItem, error)
}

// Loader fetches the chart and aggregates it into a snapshot.
type Loader struct {
	source TrendingSource
	agg    *Aggregator
	query  youtube.ChartQuery
	now    func() time.Time
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithClock replaces time.Now as the fetch timestamp source.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader for one chart query.
func NewLoader(source TrendingSource, agg *Aggregator, query youtube.ChartQuery, opts ...LoaderOption) *Loader {
	l := &Loader{
		source: source,
		agg:    agg,
		query:  query,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load lists every configured page, then aggregates. The fetch timestamp is
// taken once the listing has completed so ages reflect the data returned.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	items, err := l.source.FetchMostPopular(ctx, l.query)
	if err != nil {
		return nil, fmt.Errorf("failed to list trending chart: %w", err)
	}

	snap, err := l.agg.Aggregate(ctx, items, l.now())
	if err != nil {
		return nil, err
	}

	l.logger.Debug("trending chart loaded",
		slog.String("region", l.query.RegionCode),
		slog.String("category", l.query.CategoryID),
		slog.Int("items", len(items)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return snap, nil
}
