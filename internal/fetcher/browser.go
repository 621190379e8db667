package fetcher

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/SVatsa12/teamforge/internal/config"
	"github.com/SVatsa12/teamforge/internal/logger"
)

// BrowserStrategy renders a page in a headless browser and returns the
// resulting HTML. The last resort of the chain, for sources that only
// render via JavaScript or block non-browser clients outright.
type BrowserStrategy struct {
	cfg       config.BrowserConfig
	userAgent string
	logger    logger.Logger
}

// NewBrowserStrategy creates the headless-browser tier.
func NewBrowserStrategy(cfg config.BrowserConfig, userAgent string, log logger.Logger) *BrowserStrategy {
	return &BrowserStrategy{
		cfg:       cfg,
		userAgent: userAgent,
		logger:    log,
	}
}

// Name implements Strategy.
func (s *BrowserStrategy) Name() string { return "browser" }

// Applicable implements Strategy. The browser handles any prior failure,
// challenge or otherwise.
func (s *BrowserStrategy) Applicable(_ error) bool { return true }

// Fetch renders the URL with up to MaxRetries attempts. Every attempt runs
// in its own browser session which is torn down on all exit paths.
func (s *BrowserStrategy) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		html, err := s.render(ctx, url)
		if err == nil {
			return []byte(html), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("browser fetch %s: %w", url, ctxErr)
		}

		lastErr = err
		s.logger.Debug("Browser render attempt failed",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
	}

	return nil, fmt.Errorf("browser fetch %s: %w", url, lastErr)
}

// render performs one navigate-and-extract pass in a fresh session. The
// body-ready wait plus the settle delay stands in for a true network-idle
// signal; SettleDelay must cover the slowest expected XHR tail.
func (s *BrowserStrategy) render(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browserOptions(s.userAgent)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.cfg.NavTimeout)
	defer cancelRun()

	var html string

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	return html, nil
}

// browserOptions configures a stealth-leaning headless session.
func browserOptions(userAgent string) []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)
}
