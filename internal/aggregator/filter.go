package aggregator

import (
	"sort"
	"strings"
	"time"

	"github.com/SVatsa12/teamforge/internal/domain"
)

// Query holds the caller-supplied filters for an events request.
type Query struct {
	// Q is a case-insensitive substring match over title, description, and
	// tags.
	Q string
	// UpcomingOnly keeps events whose start date is unset or in the future.
	UpcomingOnly bool
	// Limit caps the result count; zero means no cap.
	Limit int
}

// ApplyQuery filters, sorts, and limits a merged event set. Sorting is
// stable ascending by start date with nil dates last, so ties keep their
// merge order.
func ApplyQuery(events []domain.NormalizedEvent, q Query) []domain.NormalizedEvent {
	out := make([]domain.NormalizedEvent, 0, len(events))

	needle := strings.ToLower(strings.TrimSpace(q.Q))
	now := time.Now()

	for i := range events {
		e := events[i]
		if needle != "" && !matchesQuery(&e, needle) {
			continue
		}
		if q.UpcomingOnly && e.StartDate != nil && e.StartDate.Before(now) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StartDate, out[j].StartDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	return out
}

func matchesQuery(e *domain.NormalizedEvent, needle string) bool {
	if strings.Contains(strings.ToLower(e.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Description), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
