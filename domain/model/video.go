package model

import "time"

// VideoRecord is one entry of the watched-video log. Records are created once
// resolution succeeds and are never mutated in place.
type VideoRecord struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	DurationSeconds int       `json:"duration"` // in seconds
	AddedAt         time.Time `json:"addedAt"`
}

// VideoCandidate carries the caller supplied fields of a new VideoRecord.
// ID and AddedAt are assigned by the store.
type VideoCandidate struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	DurationSeconds int    `json:"duration"`
}

// ResolvedVideo is the metadata returned by the video lookup.
type ResolvedVideo struct {
	VideoID         string `json:"videoId"`
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	DurationSeconds int    `json:"duration"`
}
