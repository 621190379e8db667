package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SVatsa12/teamforge/internal/config"
	"github.com/SVatsa12/teamforge/internal/logger"
)

// retryBackoffStep is multiplied by the attempt number between retries.
const retryBackoffStep = 300 * time.Millisecond

// DirectStrategy fetches a URL with a realistic browser profile and retries.
type DirectStrategy struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	logger     logger.Logger
}

// NewDirectStrategy creates the direct HTTP tier.
func NewDirectStrategy(cfg config.FetchConfig, log logger.Logger) *DirectStrategy {
	return &DirectStrategy{
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		logger:     log,
	}
}

// Name implements Strategy.
func (s *DirectStrategy) Name() string { return "direct" }

// Applicable implements Strategy. The direct tier always runs first.
func (s *DirectStrategy) Applicable(_ error) bool { return true }

// Fetch performs the request with up to maxRetries attempts and linear
// backoff. A response classified as a challenge page fails immediately with
// ErrChallenged so the chain can escalate instead of retrying.
func (s *DirectStrategy) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		body, err := s.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("direct fetch %s: %w", url, ctxErr)
		}
		if errors.Is(err, ErrChallenged) {
			return nil, err
		}

		lastErr = err
		s.logger.Debug("Direct fetch attempt failed",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)

		if attempt < s.maxRetries {
			if !sleepOrCancel(ctx, retryBackoffStep*time.Duration(attempt)) {
				return nil, fmt.Errorf("direct fetch %s: %w", url, ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("direct fetch %s: %w", url, lastErr)
}

func (s *DirectStrategy) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	setBrowserHeaders(req, s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes)

	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if IsChallenge(resp.StatusCode, body) {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, ErrChallenged)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected http status %d", resp.StatusCode)
	}

	return body, nil
}

// setBrowserHeaders applies a realistic browser header profile.
func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept",
		"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
}

// sleepOrCancel waits for d or returns false if the context is cancelled.
func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
