package aggregator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SVatsa12/teamforge/internal/aggregator"
	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/fetcher"
	"github.com/SVatsa12/teamforge/internal/logger"
	"github.com/SVatsa12/teamforge/internal/parser"
	"github.com/SVatsa12/teamforge/internal/sources"
)

// stubStrategy serves canned bodies per URL and fails everything else. With
// gated set it mimics the proxy tier and engages only after a challenge.
type stubStrategy struct {
	name   string
	bodies map[string]string
	err    error
	gated  bool
	calls  atomic.Int32
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Applicable(prev error) bool {
	return !s.gated || errors.Is(prev, fetcher.ErrChallenged)
}

func (s *stubStrategy) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.bodies[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return []byte(body), nil
}

const stubListHTML = `<html><body>
  <div class="event"><h2>Stub Hackathon</h2><a href="/hack">go</a></div>
</body></html>`

const stubFeedXML = `<?xml version="1.0"?><rss version="2.0"><channel>
  <item><title>Feed Event</title><link>https://feeds.example.com/1</link></item>
</channel></rss>`

func testSources() []sources.Source {
	return []sources.Source{
		{ID: "html-src", Name: "HTML Source", Type: sources.TypeHTML, URL: "https://html.example.com"},
		{ID: "rss-src", Name: "RSS Source", Type: sources.TypeRSS, URL: "https://rss.example.com/feed"},
	}
}

func newTestService(t *testing.T, chain []fetcher.Strategy, ttl time.Duration) (*aggregator.Service, *aggregator.Cache) {
	t.Helper()

	cache := aggregator.NewCache(ttl)
	svc := aggregator.NewService(testSources(), chain, parser.NewRegistry(), cache, logger.NewNopLogger())
	return svc, cache
}

func TestEvents_LiveThenCache(t *testing.T) {
	t.Parallel()

	chain := []fetcher.Strategy{&stubStrategy{
		name: "direct",
		bodies: map[string]string{
			"https://html.example.com":     stubListHTML,
			"https://rss.example.com/feed": stubFeedXML,
		},
	}}

	svc, _ := newTestService(t, chain, time.Minute)

	first := svc.Events(context.Background(), aggregator.Query{})
	require.Equal(t, aggregator.ResultLive, first.Source)
	assert.Equal(t, 2, first.Count)

	second := svc.Events(context.Background(), aggregator.Query{})
	assert.Equal(t, aggregator.ResultCache, second.Source)
	assert.Equal(t, first.Items, second.Items, "cached call returns the identical item set")
}

func TestEvents_FailedSourceIsIsolated(t *testing.T) {
	t.Parallel()

	// Only the RSS source resolves; the HTML source fails every tier.
	chain := []fetcher.Strategy{&stubStrategy{
		name: "direct",
		bodies: map[string]string{
			"https://rss.example.com/feed": stubFeedXML,
		},
	}}

	svc, _ := newTestService(t, chain, time.Minute)

	result := svc.Events(context.Background(), aggregator.Query{})

	require.Equal(t, aggregator.ResultLive, result.Source)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "Feed Event", result.Items[0].Title)
}

func TestEvents_AllSourcesFailedStillSucceeds(t *testing.T) {
	t.Parallel()

	chain := []fetcher.Strategy{&stubStrategy{name: "direct", err: errors.New("timeout")}}

	svc, _ := newTestService(t, chain, time.Minute)

	result := svc.Events(context.Background(), aggregator.Query{})

	assert.Equal(t, aggregator.ResultLive, result.Source)
	assert.Zero(t, result.Count)
	assert.Empty(t, result.Items)
}

func TestCollect_ParseFailureEscalatesTier(t *testing.T) {
	t.Parallel()

	// First tier returns a body the RSS parser rejects; the second tier
	// returns a valid feed.
	chain := []fetcher.Strategy{
		&stubStrategy{
			name: "direct",
			bodies: map[string]string{
				"https://rss.example.com/feed": "<html>challenge interstitial content</html>",
				"https://html.example.com":     stubListHTML,
			},
		},
		&stubStrategy{
			name: "browser",
			bodies: map[string]string{
				"https://rss.example.com/feed": stubFeedXML,
			},
		},
	}

	svc, _ := newTestService(t, chain, time.Minute)

	result := svc.Events(context.Background(), aggregator.Query{})

	require.Equal(t, 2, result.Count)

	titles := []string{result.Items[0].Title, result.Items[1].Title}
	assert.Contains(t, titles, "Feed Event")
	assert.Contains(t, titles, "Stub Hackathon")
}

func TestCollect_UnavailableTierSkipped(t *testing.T) {
	t.Parallel()

	chain := []fetcher.Strategy{
		&stubStrategy{name: "proxy", err: fetcher.ErrTierUnavailable},
		&stubStrategy{
			name: "browser",
			bodies: map[string]string{
				"https://html.example.com":     stubListHTML,
				"https://rss.example.com/feed": stubFeedXML,
			},
		},
	}

	svc, _ := newTestService(t, chain, time.Minute)

	result := svc.Events(context.Background(), aggregator.Query{})
	assert.Equal(t, 2, result.Count)
}

func TestCollect_ProxyTierRequiresChallenge(t *testing.T) {
	t.Parallel()

	// Plain network failure on the direct tier must not reach the proxy;
	// escalation goes straight to the browser tier.
	proxy := &stubStrategy{name: "proxy:scraperapi", gated: true}

	chain := []fetcher.Strategy{
		&stubStrategy{name: "direct", err: errors.New("connection reset by peer")},
		proxy,
		&stubStrategy{
			name: "browser",
			bodies: map[string]string{
				"https://rss.example.com/feed": stubFeedXML,
			},
		},
	}

	srcs := []sources.Source{
		{ID: "rss-src", Name: "RSS Source", Type: sources.TypeRSS, URL: "https://rss.example.com/feed"},
	}

	cache := aggregator.NewCache(time.Minute)
	svc := aggregator.NewService(srcs, chain, parser.NewRegistry(), cache, logger.NewNopLogger())

	result := svc.Events(context.Background(), aggregator.Query{})

	require.Equal(t, 1, result.Count)
	assert.Equal(t, "Feed Event", result.Items[0].Title)
	assert.Zero(t, proxy.calls.Load(), "proxy tier consulted without a challenge")
}

func TestCollect_ChallengeEngagesProxy(t *testing.T) {
	t.Parallel()

	proxy := &stubStrategy{
		name:  "proxy:scraperapi",
		gated: true,
		bodies: map[string]string{
			"https://rss.example.com/feed": stubFeedXML,
		},
	}

	chain := []fetcher.Strategy{
		&stubStrategy{name: "direct", err: fetcher.ErrChallenged},
		proxy,
	}

	srcs := []sources.Source{
		{ID: "rss-src", Name: "RSS Source", Type: sources.TypeRSS, URL: "https://rss.example.com/feed"},
	}

	cache := aggregator.NewCache(time.Minute)
	svc := aggregator.NewService(srcs, chain, parser.NewRegistry(), cache, logger.NewNopLogger())

	result := svc.Events(context.Background(), aggregator.Query{})

	require.Equal(t, 1, result.Count)
	assert.Equal(t, "Feed Event", result.Items[0].Title)
	assert.Equal(t, int32(1), proxy.calls.Load())
}

func TestEvents_CacheExpiryTriggersRefetch(t *testing.T) {
	t.Parallel()

	chain := []fetcher.Strategy{&stubStrategy{
		name: "direct",
		bodies: map[string]string{
			"https://html.example.com":     stubListHTML,
			"https://rss.example.com/feed": stubFeedXML,
		},
	}}

	svc, cache := newTestService(t, chain, time.Minute)

	first := svc.Events(context.Background(), aggregator.Query{})
	require.Equal(t, aggregator.ResultLive, first.Source)

	cache.Reset()

	second := svc.Events(context.Background(), aggregator.Query{})
	assert.Equal(t, aggregator.ResultLive, second.Source)
}

func TestNamedParserDispatch(t *testing.T) {
	t.Parallel()

	registry := parser.NewRegistry()
	registry.Register("custom", func(_ []byte, src sources.Source) ([]domain.NormalizedEvent, error) {
		return []domain.NormalizedEvent{{Title: "From Custom Parser", Source: src.Name}}, nil
	})

	srcs := []sources.Source{{
		ID:     "custom-src",
		Name:   "Custom",
		Type:   sources.TypeHTML,
		URL:    "https://custom.example.com",
		Parser: "custom",
	}}

	chain := []fetcher.Strategy{&stubStrategy{
		name:   "direct",
		bodies: map[string]string{"https://custom.example.com": "<html></html>"},
	}}

	cache := aggregator.NewCache(time.Minute)
	svc := aggregator.NewService(srcs, chain, registry, cache, logger.NewNopLogger())

	result := svc.Events(context.Background(), aggregator.Query{})

	require.Equal(t, 1, result.Count)
	assert.Equal(t, "From Custom Parser", result.Items[0].Title)
}
