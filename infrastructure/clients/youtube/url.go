package youtube

import "regexp"

// Matches watch, embed, /v/ and youtu.be links followed by an 11 character video ID.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?.*v=|embed/|v/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID returns the video ID referenced by rawURL.
func ExtractVideoID(rawURL string) (string, bool) {
	match := videoIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// IsYouTubeURL reports whether rawURL references a recognizable YouTube video.
func IsYouTubeURL(rawURL string) bool {
	_, ok := ExtractVideoID(rawURL)
	return ok
}
