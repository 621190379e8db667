package aggregator

import (
	"time"

	"github.com/google/uuid"

	"github.com/SVatsa12/teamforge/internal/domain"
)

// Merge combines per-source batches into one list keyed by url-or-title.
// On collision, tag sets are unioned and the earliest non-nil start date
// wins; first-seen order is preserved.
func Merge(batches [][]domain.NormalizedEvent) []domain.NormalizedEvent {
	index := make(map[string]int)
	merged := make([]domain.NormalizedEvent, 0)

	for _, batch := range batches {
		for i := range batch {
			event := batch[i]
			assignID(&event)

			key := event.Key()
			if key == "" {
				key = event.ID
			}

			pos, exists := index[key]
			if !exists {
				index[key] = len(merged)
				merged = append(merged, event)
				continue
			}

			existing := &merged[pos]
			existing.Tags = unionTags(existing.Tags, event.Tags)
			if earlier(event.StartDate, existing.StartDate) {
				existing.StartDate = event.StartDate
			}
		}
	}

	return merged
}

// assignID fills the event id via the fallback chain: explicit id, url,
// freshly generated unique id.
func assignID(e *domain.NormalizedEvent) {
	if e.ID != "" {
		return
	}
	if e.URL != "" {
		e.ID = e.URL
		return
	}
	e.ID = uuid.New().String()
}

// earlier reports whether a is a non-nil date before b (or b is nil).
func earlier(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}

func unionTags(a, b []string) []string {
	if len(b) == 0 {
		return a
	}

	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))

	for _, lists := range [][]string{a, b} {
		for _, tag := range lists {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}

	return out
}
