package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com"

	// DefaultTimeout bounds every upstream request.
	DefaultTimeout = 15 * time.Second

	// MaxIDsPerRequest is the API ceiling for id lists and page sizes.
	MaxIDsPerRequest = 50

	endpointVideos   = "videos"
	endpointChannels = "channels"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder observes every API call. The metrics collector implements it.
type Recorder interface {
	RecordAPICall(endpoint string, statusCode int, latency time.Duration)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit paces requests through a token bucket. A nil limiter
// disables pacing.
func WithRateLimit(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithRecorder attaches a call observer.
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = r
	}
}

// Client is a YouTube Data API client authenticated with an API key.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient HTTPClient
	limiter    *rate.Limiter
	recorder   Recorder
}

// NewClient creates a new YouTube API client with the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// FetchMostPopular lists the most-popular chart. Pages are requested in
// order and concatenated; the first failing page fails the whole call.
func (c *Client) FetchMostPopular(ctx context.Context, q ChartQuery) ([]VideoItem, error) {
	pageSize := q.MaxResults
	if pageSize <= 0 || pageSize > MaxIDsPerRequest {
		pageSize = MaxIDsPerRequest
	}
	maxPages := q.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	items := make([]VideoItem, 0, pageSize)
	pageToken := ""
	for page := 0; page < maxPages; page++ {
		params := url.Values{}
		params.Set("part", "snippet,statistics,contentDetails")
		params.Set("chart", "mostPopular")
		params.Set("maxResults", strconv.Itoa(pageSize))
		if q.RegionCode != "" {
			params.Set("regionCode", q.RegionCode)
		}
		if q.CategoryID != "" {
			params.Set("videoCategoryId", q.CategoryID)
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		body, err := c.doRequest(ctx, endpointVideos, params)
		if err != nil {
			return nil, err
		}

		var response videosResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("failed to parse videos response: %w", err)
		}

		items = append(items, response.Items...)

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return items, nil
}

// FetchChannels looks up channel snippets. At most MaxIDsPerRequest ids are
// accepted per call; batching is the caller's job.
func (c *Client) FetchChannels(ctx context.Context, ids []string) ([]ChannelItem, error) {
	if len(ids) == 0 {
		return []ChannelItem{}, nil
	}
	if len(ids) > MaxIDsPerRequest {
		return nil, fmt.Errorf("too many channel ids: %d > %d", len(ids), MaxIDsPerRequest)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", strings.Join(ids, ","))
	params.Set("maxResults", strconv.Itoa(MaxIDsPerRequest))

	body, err := c.doRequest(ctx, endpointChannels, params)
	if err != nil {
		return nil, err
	}

	var response channelsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse channels response: %w", err)
	}

	if response.Items == nil {
		return []ChannelItem{}, nil
	}
	return response.Items, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("YouTube API request not sent: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/youtube/v3/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("YouTube API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	c.record(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

func (c *Client) record(endpoint string, status int, latency time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordAPICall(endpoint, status, latency)
	}
}
