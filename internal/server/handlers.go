package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gauthierbraillon/trendmix/internal/aggregator"
	"github.com/gauthierbraillon/trendmix/internal/origin"
	"github.com/gauthierbraillon/trendmix/internal/stats"
)

type errorBody struct {
	Error string `json:"error"`
}

type snapshotBody struct {
	ID         string    `json:"id"`
	FetchedAt  time.Time `json:"fetched_at"`
	Region     string    `json:"region"`
	Category   string    `json:"category"`
	Records    int       `json:"records"`
	Regular    int       `json:"regular"`
	Shorts     int       `json:"shorts"`
	Publishers int       `json:"publishers"`
	Stale      bool      `json:"stale"`
	Error      string    `json:"error,omitempty"`
}

type videoBody struct {
	Rank             int          `json:"rank"`
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	URL              string       `json:"url"`
	ChannelID        string       `json:"channel_id"`
	ChannelTitle     string       `json:"channel_title"`
	ChannelLogo      string       `json:"channel_logo,omitempty"`
	ChannelCountry   string       `json:"channel_country,omitempty"`
	Origin           origin.Label `json:"origin"`
	OriginText       string       `json:"origin_text"`
	ThumbnailURL     string       `json:"thumbnail_url,omitempty"`
	PublishedAt      *time.Time   `json:"published_at,omitempty"`
	ViewCount        int64        `json:"view_count"`
	ViewsText        string       `json:"views_text"`
	DurationSeconds  int          `json:"duration_seconds"`
	DurationText     string       `json:"duration_text"`
	AgeText          string       `json:"age_text"`
	ViewsPerHour     float64      `json:"views_per_hour"`
	ViewsPerHourText string       `json:"views_per_hour_text,omitempty"`
	IsShortForm      bool         `json:"is_short_form"`
	Snippet          string       `json:"snippet"`
	Badges           []string     `json:"badges,omitempty"`
}

type videosBody struct {
	SnapshotID string                  `json:"snapshot_id"`
	FetchedAt  time.Time               `json:"fetched_at"`
	View       aggregator.ViewKind     `json:"view"`
	Origin     aggregator.OriginFilter `json:"origin"`
	Stale      bool                    `json:"stale"`
	Count      int                     `json:"count"`
	Videos     []videoBody             `json:"videos"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Fetch(r.Context(), false)
	if snap == nil {
		s.writeNoData(w, err)
		return
	}
	s.markStale(w, err)
	writeJSON(w, http.StatusOK, summarize(snap, err))
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	kind, err := aggregator.ParseViewKind(q.Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := aggregator.ParseOriginFilter(q.Get("origin"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
	}

	snap, fetchErr := s.source.Fetch(r.Context(), false)
	if snap == nil {
		s.writeNoData(w, fetchErr)
		return
	}

	records := snap.View(aggregator.ViewOptions{
		Kind:         kind,
		Origin:       filter,
		Limit:        limit,
		RecentWindow: s.opts.RecentWindow,
		RisingWindow: s.opts.RisingWindow,
	})

	body := videosBody{
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
		View:       kind,
		Origin:     filter,
		Stale:      fetchErr != nil,
		Count:      len(records),
		Videos:     make([]videoBody, 0, len(records)),
	}
	for i, rec := range records {
		body.Videos = append(body.Videos, s.videoFrom(i+1, rec, kind))
	}

	s.markStale(w, fetchErr)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.refresh.Allow() {
		retryAfter := int(math.Ceil(s.refreshEvery.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeError(w, http.StatusTooManyRequests, "refresh rate limit exceeded")
		s.logger.Warn("rate limit exceeded", slog.String("limit_type", "refresh"))
		return
	}

	snap, err := s.source.Fetch(r.Context(), true)
	if snap == nil {
		s.writeNoData(w, err)
		return
	}
	if err != nil {
		s.markStale(w, err)
		writeJSON(w, http.StatusBadGateway, summarize(snap, err))
		return
	}
	writeJSON(w, http.StatusOK, summarize(snap, nil))
}

func (s *Server) videoFrom(rank int, rec aggregator.VideoRecord, kind aggregator.ViewKind) videoBody {
	v := videoBody{
		Rank:            rank,
		ID:              rec.ID,
		Title:           s.sanitizer.Sanitize(rec.Title),
		URL:             rec.URL,
		ChannelID:       rec.ChannelID,
		ChannelTitle:    s.sanitizer.Sanitize(rec.ChannelTitle),
		ChannelLogo:     rec.ChannelLogo,
		ChannelCountry:  rec.ChannelCountry,
		Origin:          rec.Origin,
		OriginText:      origin.Describe(rec.Origin, s.opts.HomeRegion),
		ThumbnailURL:    rec.Thumbnail.URL,
		ViewCount:       rec.ViewCount,
		ViewsText:       rec.ViewsText,
		DurationSeconds: rec.DurationSeconds,
		DurationText:    rec.DurationText,
		AgeText:         rec.AgeText,
		ViewsPerHour:    rec.ViewsPerHour,
		IsShortForm:     rec.IsShortForm,
		Snippet:         s.sanitizer.Sanitize(rec.Snippet),
		Badges:          stats.Badges(rank, rec.ViewCount),
	}
	if rec.HasPublishedAt() {
		published := rec.PublishedAt
		v.PublishedAt = &published
	}
	if kind == aggregator.ViewRising {
		v.ViewsPerHourText = stats.FormatViewsPerHour(rec.ViewsPerHour)
	}
	return v
}

func summarize(snap *aggregator.Snapshot, err error) snapshotBody {
	regular, shorts := snap.Counts()
	body := snapshotBody{
		ID:         snap.ID,
		FetchedAt:  snap.FetchedAt,
		Region:     snap.Region,
		Category:   snap.Category,
		Records:    len(snap.Records),
		Regular:    regular,
		Shorts:     shorts,
		Publishers: len(snap.Publishers),
		Stale:      err != nil,
	}
	if err != nil {
		body.Error = err.Error()
	}
	return body
}

func (s *Server) markStale(w http.ResponseWriter, err error) {
	if err != nil {
		w.Header().Set(StaleHeader, "true")
	}
}

func (s *Server) writeNoData(w http.ResponseWriter, err error) {
	msg := "no trending data available yet"
	if err != nil {
		msg = err.Error()
	}
	writeError(w, http.StatusServiceUnavailable, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
