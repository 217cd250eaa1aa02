// Package cache holds the single trending snapshot between fetches.
//
// One entry, no key: the chart is fixed by configuration. Callers are
// serialised on a mutex, so while a refresh is running everyone else waits
// and then sees its result. A failed refresh never replaces the last good
// snapshot.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gauthierbraillon/trendmix/internal/aggregator"
)

const (
	DefaultTTL          = 4 * time.Hour
	DefaultRetryBackoff = time.Minute
)

// Cache result labels passed to Recorder.RecordCacheResult.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
)

// ErrNoData means no fetch has succeeded yet.
var ErrNoData = errors.New("no trending data available yet")

// StaleError accompanies a previous snapshot returned because the refresh
// failed.
type StaleError struct {
	FetchedAt time.Time
	Cause     error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("serving snapshot from %s: refresh failed: %v", e.FetchedAt.Format(time.RFC3339), e.Cause)
}

func (e *StaleError) Unwrap() error {
	return e.Cause
}

// Loader produces a fresh snapshot. *aggregator.Loader implements it.
type Loader interface {
	Load(ctx context.Context) (*aggregator.Snapshot, error)
}

// Recorder observes cache activity. The metrics collector implements it.
type Recorder interface {
	RecordFetch(err error, latency time.Duration)
	RecordCacheResult(result string)
	RecordSnapshot(regular, shorts int)
}

type nopRecorder struct{}

func (nopRecorder) RecordFetch(error, time.Duration) {}
func (nopRecorder) RecordCacheResult(string)         {}
func (nopRecorder) RecordSnapshot(int, int)          {}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a snapshot is served before a refresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRetryBackoff sets how long a failure is replayed before upstream is
// tried again. Zero retries on every call.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.retryBackoff = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Cache) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Cache is a TTL cache around a Loader.
type Cache struct {
	loader       Loader
	ttl          time.Duration
	retryBackoff time.Duration
	now          func() time.Time
	logger       *slog.Logger
	recorder     Recorder

	mu          sync.Mutex
	snap        *aggregator.Snapshot
	loadedAt    time.Time
	invalidated bool
	lastErr     error
	failedAt    time.Time
}

// New creates a Cache. Nothing is loaded until the first Get.
func New(loader Loader, opts ...Option) *Cache {
	c := &Cache{
		loader:       loader,
		ttl:          DefaultTTL,
		retryBackoff: DefaultRetryBackoff,
		now:          time.Now,
		logger:       slog.Default(),
		recorder:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot while it is fresh and loads otherwise.
//
// On failure it returns the previous snapshot with a *StaleError, or nil and
// an error wrapping ErrNoData when there has never been a good fetch.
func (c *Cache) Get(ctx context.Context) (*aggregator.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if c.fresh(now) {
		c.recorder.RecordCacheResult(ResultHit)
		return c.snap, nil
	}

	if c.lastErr != nil && now.Sub(c.failedAt) < c.retryBackoff {
		return c.failure(c.lastErr)
	}

	start := time.Now()
	snap, err := c.loader.Load(ctx)
	c.recorder.RecordFetch(err, time.Since(start))

	if err != nil {
		// A caller giving up is not an upstream failure worth replaying.
		if ctx.Err() == nil {
			c.lastErr = err
			c.failedAt = now
		}
		c.logger.Error("trending fetch failed",
			slog.String("error", err.Error()),
			slog.Bool("has_snapshot", c.snap != nil),
		)
		return c.failure(err)
	}

	c.snap = snap
	c.loadedAt = now
	c.invalidated = false
	c.lastErr = nil
	c.failedAt = time.Time{}

	regular, shorts := snap.Counts()
	c.recorder.RecordSnapshot(regular, shorts)
	c.recorder.RecordCacheResult(ResultMiss)
	c.logger.Info("trending snapshot refreshed",
		slog.String("snapshot_id", snap.ID),
		slog.Int("records", len(snap.Records)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return snap, nil
}

// Fetch is Get preceded by Invalidate when forceRefresh is set.
func (c *Cache) Fetch(ctx context.Context, forceRefresh bool) (*aggregator.Snapshot, error) {
	if forceRefresh {
		c.Invalidate()
	}
	return c.Get(ctx)
}

// Invalidate makes the next Get load regardless of TTL or failure backoff.
// The current snapshot stays available as a stale fallback.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidated = true
	c.lastErr = nil
	c.failedAt = time.Time{}
}

// Expiry reports when the current snapshot stops being fresh. The zero time
// means nothing is cached.
func (c *Cache) Expiry() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap == nil {
		return time.Time{}
	}
	return c.loadedAt.Add(c.ttl)
}

func (c *Cache) fresh(now time.Time) bool {
	return c.snap != nil && !c.invalidated && now.Sub(c.loadedAt) < c.ttl
}

func (c *Cache) failure(err error) (*aggregator.Snapshot, error) {
	if c.snap == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	c.recorder.RecordCacheResult(ResultStale)
	return c.snap, &StaleError{FetchedAt: c.snap.FetchedAt, Cause: err}
}
