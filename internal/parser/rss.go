package parser

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/sources"
)

// ParseRSS parses an RSS or Atom body into normalized events. Items without
// a title and link are skipped. An empty feed returns a non-nil empty slice.
func ParseRSS(body []byte, src sources.Source) ([]domain.NormalizedEvent, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	events := make([]domain.NormalizedEvent, 0, len(parsed.Items))

	for _, entry := range parsed.Items {
		if entry.Title == "" && entry.Link == "" {
			continue
		}

		event := domain.NormalizedEvent{
			Title:       entry.Title,
			URL:         entry.Link,
			Description: entry.Description,
			Source:      src.Name,
			Tags:        append([]string(nil), entry.Categories...),
		}

		if entry.PublishedParsed != nil {
			t := *entry.PublishedParsed
			event.StartDate = &t
		} else {
			event.StartDate = ParseDate(entry.Published)
		}

		events = append(events, event)
	}

	return events, nil
}
