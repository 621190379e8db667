// Package parser converts fetched source bodies into normalized events:
// RSS/Atom feeds via gofeed, and HTML pages via named parsers or a generic
// selector-based extractor.
package parser

import (
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate. The list favors formats seen
// in competition listings.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/2006",
	"01/02/2006",
}

// ParseDate parses a date string permissively. An unparseable or empty
// string yields nil rather than an error; a missing date must never fail
// the item it belongs to.
func ParseDate(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}

	return nil
}
