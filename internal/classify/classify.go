// Package classify labels trending videos as short-form or regular.
//
// Three independent signals are OR-combined: duration, a #shorts hashtag in
// the title or description, and a taller-than-wide thumbnail. None of them is
// reliable alone, so any one is enough. Some regular uploads (very short news
// clips, oddly cropped thumbnails, live streams whose duration reads as zero)
// are knowingly labelled short-form; the shorts tab is exploratory, so recall
// wins over precision. Tighten thresholds only with product input.
package classify

import "regexp"

const (
	// ShortFormMaxSeconds is the longest duration still treated as short-form.
	ShortFormMaxSeconds = 75

	// VerticalAspectRatio is the width/height ratio below which a thumbnail
	// counts as vertical.
	VerticalAspectRatio = 0.9
)

var shortsTag = regexp.MustCompile(`(?i)#shorts|#short\b`)

// Signals holds the raw inputs the classifier looks at.
// Zero width or height means the thumbnail geometry is unknown.
type Signals struct {
	DurationSeconds int
	Title           string
	Description     string
	ThumbnailWidth  int
	ThumbnailHeight int
}

// IsShortForm reports whether any short-form signal fires.
func IsShortForm(s Signals) bool {
	return s.DurationSeconds <= ShortFormMaxSeconds ||
		HasShortsTag(s.Title, s.Description) ||
		IsVertical(s.ThumbnailWidth, s.ThumbnailHeight)
}

// HasShortsTag reports whether title or description carries #short or a
// #shorts tag in any letter case. #shorts also matches as a prefix
// (#shortsfeed); #short must end the word, so #shortcut does not match.
func HasShortsTag(title, description string) bool {
	return shortsTag.MatchString(title) || shortsTag.MatchString(description)
}

// IsVertical reports whether the thumbnail is taller than wide. Missing
// dimensions are never vertical.
func IsVertical(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	return float64(width)/float64(height) < VerticalAspectRatio
}
