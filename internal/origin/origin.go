// Package origin resolves the registered country of publishing channels and
// labels each channel relative to a home region.
package origin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gauthierbraillon/trendmix/internal/youtube"
)

// MaxIDsPerLookup is the largest id list the channel lookup accepts.
const MaxIDsPerLookup = youtube.MaxIDsPerRequest

// Label classifies a publisher against the home region.
type Label string

const (
	LabelLocal   Label = "LOCAL"
	LabelForeign Label = "FOREIGN"
	LabelUnknown Label = "UNKNOWN"
)

// Publisher is the resolved metadata for one channel.
type Publisher struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	CountryCode string `json:"country_code"`
	LogoURL     string `json:"logo_url,omitempty"`
	Label       Label  `json:"label"`
}

// ChannelLookup fetches channel snippets for at most MaxIDsPerLookup ids.
type ChannelLookup interface {
	FetchChannels(ctx context.Context, ids []string) ([]youtube.ChannelItem, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBatchSize overrides the chunk size. Values outside 1..MaxIDsPerLookup
// are ignored.
func WithBatchSize(n int) Option {
	return func(r *Resolver) {
		if n > 0 && n <= MaxIDsPerLookup {
			r.batchSize = n
		}
	}
}

// WithLogger sets the logger used for per-chunk diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver maps channel ids to publishers through a chunked lookup.
type Resolver struct {
	lookup     ChannelLookup
	homeRegion string
	batchSize  int
	logger     *slog.Logger
}

// NewResolver returns a Resolver labelling channels against homeRegion.
func NewResolver(lookup ChannelLookup, homeRegion string, opts ...Option) *Resolver {
	r := &Resolver{
		lookup:     lookup,
		homeRegion: homeRegion,
		batchSize:  MaxIDsPerLookup,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HomeRegion returns the region publishers are labelled against.
func (r *Resolver) HomeRegion() string {
	return r.homeRegion
}

// Resolve returns a publisher for every distinct non-empty id. Chunks are
// looked up sequentially in first-seen order; ids the lookup does not return
// are labelled UNKNOWN. Any lookup error fails the whole call.
func (r *Resolver) Resolve(ctx context.Context, ids []string) (map[string]Publisher, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	publishers := make(map[string]Publisher, len(unique))

	for i := 0; i < len(unique); i += r.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := i + r.batchSize
		if end > len(unique) {
			end = len(unique)
		}
		chunk := unique[i:end]

		start := time.Now()
		channels, err := r.lookup.FetchChannels(ctx, chunk)
		if err != nil {
			r.logger.Error("channel lookup failed",
				slog.Int("chunk_size", len(chunk)),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("failed to resolve channel origins: %w", err)
		}
		r.logger.Debug("channel lookup completed",
			slog.Int("chunk_size", len(chunk)),
			slog.Int("returned", len(channels)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)

		for _, ch := range channels {
			if ch.ID == "" || !seen[ch.ID] {
				continue
			}
			publishers[ch.ID] = r.publisherFrom(ch)
		}
	}

	for _, id := range unique {
		if _, ok := publishers[id]; !ok {
			publishers[id] = Publisher{ID: id, Label: LabelUnknown}
		}
	}

	return publishers, nil
}

func (r *Resolver) publisherFrom(ch youtube.ChannelItem) Publisher {
	p := Publisher{ID: ch.ID}
	if ch.Snippet != nil {
		p.Title = ch.Snippet.Title
		p.CountryCode = strings.ToUpper(strings.TrimSpace(ch.Snippet.Country))
		if t := ch.Snippet.Thumbnails; t != nil && t.Default != nil {
			p.LogoURL = t.Default.URL
		}
	}
	p.Label = LabelFor(p.CountryCode, r.homeRegion)
	return p
}

// LabelFor compares a country code with the home region, ignoring case.
func LabelFor(country, home string) Label {
	country = strings.TrimSpace(country)
	switch {
	case country == "":
		return LabelUnknown
	case strings.EqualFold(country, strings.TrimSpace(home)):
		return LabelLocal
	default:
		return LabelForeign
	}
}

// Describe renders a label for people, e.g. "CA outlet".
func Describe(label Label, home string) string {
	home = strings.ToUpper(strings.TrimSpace(home))
	switch label {
	case LabelLocal:
		return home + " outlet"
	case LabelForeign:
		return "Non-" + home + " outlet"
	default:
		return "Origin unknown"
	}
}
