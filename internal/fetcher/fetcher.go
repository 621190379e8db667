// Package fetcher implements the tiered page-fetch chain used by the
// aggregator: direct HTTP, anti-bot render proxy, and headless browser.
// Each tier is a Strategy; callers iterate the chain in order until one
// succeeds or all are exhausted.
package fetcher

import (
	"context"
	"errors"

	"github.com/SVatsa12/teamforge/internal/config"
	"github.com/SVatsa12/teamforge/internal/logger"
)

// Sentinel errors classifying fetch failures.
var (
	// ErrChallenged marks a response identified as an anti-bot challenge
	// page rather than real content.
	ErrChallenged = errors.New("challenge page detected")

	// ErrTierUnavailable marks a strategy that is not configured for this
	// process (missing proxy credentials, browser disabled). The chain
	// skips it silently.
	ErrTierUnavailable = errors.New("fetch tier unavailable")
)

// maxResponseBodyBytes limits the size of fetched responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// Strategy is one tier of the fetch chain.
type Strategy interface {
	// Name identifies the tier in logs.
	Name() string
	// Applicable reports whether this tier should run given the previous
	// tier's error. The proxy tier only engages after a challenge.
	Applicable(prev error) bool
	// Fetch retrieves the raw body for url. A failure returns an error the
	// chain uses to decide whether to escalate to the next tier.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// NewChain builds the ordered strategy list from configuration. The direct
// tier is always present; the proxy and browser tiers are appended only when
// configured, preserving the strict direct -> proxy -> browser order. Order
// alone does not admit a tier: each strategy's Applicable gate is consulted
// against the previous tier's error.
func NewChain(cfg config.AggregatorConfig, log logger.Logger) []Strategy {
	chain := []Strategy{
		NewDirectStrategy(cfg.Fetch, log),
	}

	if proxy := NewProxyStrategy(cfg.Proxy, cfg.Fetch, log); proxy != nil {
		chain = append(chain, proxy)
	}

	if cfg.Browser.Enabled {
		chain = append(chain, NewBrowserStrategy(cfg.Browser, cfg.Fetch.UserAgent, log))
	}

	return chain
}
