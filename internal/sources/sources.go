// Package sources loads and validates the static list of external event
// sources that drive the aggregator.
package sources

import (
	"errors"
	"fmt"
)

// Source types.
const (
	TypeRSS  = "rss"
	TypeHTML = "html"
)

// Selectors define per-source CSS selector overrides for the generic HTML
// extractor. Empty fields fall back to the extractor's generic candidates.
type Selectors struct {
	// Container is the selector for event item containers
	Container string `yaml:"container"`
	// Title is the selector for the event title within a container
	Title string `yaml:"title"`
	// Link is the selector for the event link within a container
	Link string `yaml:"link"`
	// Description is the selector for the event description
	Description string `yaml:"description"`
	// Image is the selector for the event image
	Image string `yaml:"image"`
	// Date is the selector for the event date
	Date string `yaml:"date"`
}

// Source describes one external event source. Sources are loaded once at
// startup and immutable for the process lifetime.
type Source struct {
	// ID is the unique identifier for the source
	ID string `yaml:"id"`
	// Name is the human-readable source name
	Name string `yaml:"name"`
	// Type selects the parse strategy: "rss" or "html"
	Type string `yaml:"type"`
	// URL is the location fetched each aggregation pass
	URL string `yaml:"url"`
	// Parser optionally names a registered source-specific parser
	Parser string `yaml:"parser"`
	// Selectors hold CSS selector overrides for the generic extractor
	Selectors Selectors `yaml:"selectors"`
}

// Validate validates the source configuration.
func (s *Source) Validate() error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.URL == "" {
		return errors.New("url is required")
	}
	if s.Type != TypeRSS && s.Type != TypeHTML {
		return fmt.Errorf("type must be %q or %q, got %q", TypeRSS, TypeHTML, s.Type)
	}
	return nil
}
