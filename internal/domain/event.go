package domain

import "time"

// NormalizedEvent is a competition or hackathon listing converted from any
// source-specific shape into one common schema. Events are rebuilt on every
// aggregation pass; identity for deduplication is URL when present, else
// title.
type NormalizedEvent struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Source      string     `json:"source"`
	Location    string     `json:"location,omitempty"`
	Tags        []string   `json:"tags"`
}

// Key returns the deduplication key for the event.
func (e *NormalizedEvent) Key() string {
	if e.URL != "" {
		return e.URL
	}
	return e.Title
}
