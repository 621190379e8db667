package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/fetcher"
	"github.com/SVatsa12/teamforge/internal/logger"
	"github.com/SVatsa12/teamforge/internal/parser"
	"github.com/SVatsa12/teamforge/internal/sources"
)

// Result sources, reported to callers so they can tell cache hits from live
// aggregation passes.
const (
	ResultCache = "cache"
	ResultLive  = "live"
)

// EventsResult is the response of an events query.
type EventsResult struct {
	Source string                   `json:"source"`
	Count  int                      `json:"count"`
	Items  []domain.NormalizedEvent `json:"items"`
}

// Service aggregates events across the configured sources.
type Service struct {
	sources  []sources.Source
	chain    []fetcher.Strategy
	registry *parser.Registry
	cache    *Cache
	logger   logger.Logger
}

// NewService creates an aggregator service. The cache is injected so callers
// (and tests) own its lifecycle.
func NewService(
	srcs []sources.Source,
	chain []fetcher.Strategy,
	registry *parser.Registry,
	cache *Cache,
	log logger.Logger,
) *Service {
	return &Service{
		sources:  srcs,
		chain:    chain,
		registry: registry,
		cache:    cache,
		logger:   log,
	}
}

// Sources returns the configured source descriptors.
func (s *Service) Sources() []sources.Source {
	out := make([]sources.Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Events returns the merged event set, refreshed when the cache slot has
// expired, with the query applied. The call never fails outright: a total
// failure of every source yields an empty list.
func (s *Service) Events(ctx context.Context, q Query) *EventsResult {
	merged, cached := s.cache.Get()
	origin := ResultCache

	if !cached {
		merged = s.Refresh(ctx)
		origin = ResultLive
	}

	items := ApplyQuery(merged, q)

	return &EventsResult{
		Source: origin,
		Count:  len(items),
		Items:  items,
	}
}

// Refresh fetches every source concurrently, merges the results, and
// repopulates the cache slot. Individual source failures are isolated and
// logged; they never abort the pass.
func (s *Service) Refresh(ctx context.Context) []domain.NormalizedEvent {
	batches := make([][]domain.NormalizedEvent, len(s.sources))

	var wg sync.WaitGroup

	for i := range s.sources {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			src := s.sources[idx]

			events, err := s.collectSource(ctx, src)
			if err != nil {
				s.logger.Warn("Source aggregation failed",
					logger.String("source_id", src.ID),
					logger.Error(err),
				)
				return
			}

			batches[idx] = events
		}(i)
	}

	wg.Wait()

	merged := Merge(batches)
	s.cache.Set(merged)

	s.logger.Info("Aggregation pass completed",
		logger.Int("sources", len(s.sources)),
		logger.Int("events", len(merged)),
	)

	return merged
}

// collectSource walks the fetch chain for one source: each tier's body is
// handed to the parse dispatch, and either a fetch failure or a parse
// failure escalates to the next tier. A tier whose Applicable gate rejects
// the previous error is passed over; the proxy tier only engages when the
// direct tier hit a challenge page.
func (s *Service) collectSource(ctx context.Context, src sources.Source) ([]domain.NormalizedEvent, error) {
	var lastErr error

	for _, strategy := range s.chain {
		if !strategy.Applicable(lastErr) {
			s.logger.Debug("Fetch tier not applicable, skipping",
				logger.String("source_id", src.ID),
				logger.String("tier", strategy.Name()),
			)
			continue
		}

		body, err := strategy.Fetch(ctx, src.URL)
		if errors.Is(err, fetcher.ErrTierUnavailable) {
			continue
		}
		if err != nil {
			lastErr = err
			s.logger.Debug("Fetch tier failed",
				logger.String("source_id", src.ID),
				logger.String("tier", strategy.Name()),
				logger.Error(err),
			)
			continue
		}

		events, parseErr := s.parse(body, src)
		if parseErr != nil {
			lastErr = parseErr
			s.logger.Debug("Parse failed, trying next tier",
				logger.String("source_id", src.ID),
				logger.String("tier", strategy.Name()),
				logger.Error(parseErr),
			)
			continue
		}

		return events, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no fetch tier available")
	}

	return nil, fmt.Errorf("source %s exhausted all tiers: %w", src.ID, lastErr)
}

// parse dispatches a fetched body by source type: rss to the feed parser,
// html to the named parser when registered, else the generic extractor.
func (s *Service) parse(body []byte, src sources.Source) ([]domain.NormalizedEvent, error) {
	if src.Type == sources.TypeRSS {
		return parser.ParseRSS(body, src)
	}

	if src.Parser != "" {
		if fn, ok := s.registry.Lookup(src.Parser); ok {
			return fn(body, src)
		}
		s.logger.Debug("Named parser not registered, using generic extractor",
			logger.String("source_id", src.ID),
			logger.String("parser", src.Parser),
		)
	}

	return parser.ExtractHTML(body, src)
}
