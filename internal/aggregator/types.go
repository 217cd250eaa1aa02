// Package aggregator turns a raw trending chart into an immutable snapshot of
// classified, origin-labelled video records and selects ranked views over it.
//
// This package enables trendmix to:
// - Extract typed records from API payloads with explicit defaults
// - Resolve every publishing channel once per fetch
// - Rank regular, short-form, recent and rising views per origin filter
package aggregator

import (
	"time"

	"github.com/gauthierbraillon/trendmix/internal/origin"
)

// WatchURLPrefix is prepended to a video id to build its watch link.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

// Thumbnail is the chosen preview image. Zero width or height means the API
// did not report it.
type Thumbnail struct {
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// VideoRecord is one trending video with everything derived at fetch time.
type VideoRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`

	ChannelID      string       `json:"channel_id"`
	ChannelTitle   string       `json:"channel_title"`
	ChannelCountry string       `json:"channel_country,omitempty"`
	ChannelLogo    string       `json:"channel_logo,omitempty"`
	Origin         origin.Label `json:"origin"`

	PublishedAt     time.Time `json:"published_at"`
	DurationSeconds int       `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	Thumbnail       Thumbnail `json:"thumbnail"`

	IsShortForm bool `json:"is_short_form"`
	IsVertical  bool `json:"is_vertical"`

	AgeSeconds   int64   `json:"age_seconds"`
	ViewsPerHour float64 `json:"views_per_hour"`

	ViewsText    string `json:"views_text"`
	DurationText string `json:"duration_text"`
	AgeText      string `json:"age_text"`
	Snippet      string `json:"snippet"`
}

// HasPublishedAt reports whether the API supplied a usable publish time.
func (r VideoRecord) HasPublishedAt() bool {
	return !r.PublishedAt.IsZero()
}

// Snapshot is the result of one fetch. It is never modified once built.
type Snapshot struct {
	ID         string                      `json:"id"`
	Records    []VideoRecord               `json:"records"`
	Publishers map[string]origin.Publisher `json:"publishers"`
	FetchedAt  time.Time                   `json:"fetched_at"`
	Region     string                      `json:"region"`
	Category   string                      `json:"category"`
}

// Counts returns the number of regular and short-form records.
func (s *Snapshot) Counts() (regular, shorts int) {
	for _, r := range s.Records {
		if r.IsShortForm {
			shorts++
		} else {
			regular++
		}
	}
	return regular, shorts
}
