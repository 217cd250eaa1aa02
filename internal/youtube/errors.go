package youtube

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	// Reason is the first error reason reported by Google, e.g. "quotaExceeded".
	Reason  string
	message string
}

func (e *APIError) Error() string {
	return e.message
}

type googleErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func newAPIError(statusCode int, body []byte) *APIError {
	var parsed googleErrorBody
	_ = json.Unmarshal(body, &parsed)

	reason := ""
	if len(parsed.Error.Errors) > 0 {
		reason = parsed.Error.Errors[0].Reason
	}

	return &APIError{
		StatusCode: statusCode,
		Reason:     reason,
		message:    apiErrorMessage(statusCode, reason),
	}
}

func apiErrorMessage(statusCode int, reason string) string {
	switch {
	case reason == "quotaExceeded" || reason == "dailyLimitExceeded":
		return "YouTube API quota exceeded - try again after the daily quota resets"
	case reason == "keyInvalid":
		return "YouTube API rejected the request - check the API key (TRENDMIX_API_KEY)"
	}

	switch statusCode {
	case http.StatusBadRequest:
		return "YouTube API rejected the request - check the API key and chart parameters"
	case http.StatusUnauthorized:
		return "YouTube API authentication failed - check the API key (TRENDMIX_API_KEY)"
	case http.StatusForbidden:
		return "YouTube API access denied - the API key may lack YouTube Data API access or the quota is exhausted"
	case http.StatusNotFound:
		return "YouTube API endpoint not found - check the API base URL"
	case http.StatusTooManyRequests:
		return "YouTube API rate limit exceeded - please try again later"
	case http.StatusServiceUnavailable:
		return "YouTube API temporarily unavailable - please try again in a few minutes"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return "YouTube API server error - please try again later"
	default:
		return fmt.Sprintf("YouTube API error (status %d) - please try again", statusCode)
	}
}
