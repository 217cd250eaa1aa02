// Package youtube provides a client for the YouTube Data API v3.
//
// This package enables trendmix to:
// - List the most-popular chart for a region and category
// - Look up channel snippets (country, logo) in batches
//
// Response types mirror the API payloads. Nested objects are pointers so a
// missing or null object is distinguishable from an empty one; callers apply
// their own defaults.
package youtube

// VideoItem is one entry of a videos.list response.
type VideoItem struct {
	ID             string          `json:"id"`
	Snippet        *VideoSnippet   `json:"snippet"`
	Statistics     *Statistics     `json:"statistics"`
	ContentDetails *ContentDetails `json:"contentDetails"`
}

// VideoSnippet carries the descriptive part of a video.
type VideoSnippet struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	ChannelID    string      `json:"channelId"`
	ChannelTitle string      `json:"channelTitle"`
	PublishedAt  string      `json:"publishedAt"`
	Thumbnails   *Thumbnails `json:"thumbnails"`
}

// Statistics holds counters. The API encodes them as strings.
type Statistics struct {
	ViewCount string `json:"viewCount"`
	LikeCount string `json:"likeCount"`
}

// ContentDetails holds the ISO 8601 duration token.
type ContentDetails struct {
	Duration string `json:"duration"`
}

// Thumbnails lists the quality tiers the API may return.
type Thumbnails struct {
	Default  *Thumbnail `json:"default"`
	Medium   *Thumbnail `json:"medium"`
	High     *Thumbnail `json:"high"`
	Standard *Thumbnail `json:"standard"`
	Maxres   *Thumbnail `json:"maxres"`
}

// Thumbnail is a single image variant. Width and height may be absent.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ChannelItem is one entry of a channels.list response.
type ChannelItem struct {
	ID      string          `json:"id"`
	Snippet *ChannelSnippet `json:"snippet"`
}

// ChannelSnippet carries channel metadata. Country is optional.
type ChannelSnippet struct {
	Title      string      `json:"title"`
	Country    string      `json:"country"`
	Thumbnails *Thumbnails `json:"thumbnails"`
}

// ChartQuery selects a most-popular chart.
type ChartQuery struct {
	RegionCode string
	CategoryID string
	// MaxResults is the page size, clamped to 1..50.
	MaxResults int
	// MaxPages bounds pagination; values below 1 fetch a single page.
	MaxPages int
}

type videosResponse struct {
	NextPageToken string      `json:"nextPageToken"`
	Items         []VideoItem `json:"items"`
}

type channelsResponse struct {
	Items []ChannelItem `json:"items"`
}
