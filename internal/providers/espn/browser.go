package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const scoreboardScript = `JSON.stringify((window.espn && window.espn.scoreboardData) || null)`

// BrowserClient loads the scoreboard page in headless Chrome and reads the
// embedded data object from the page's JavaScript context. Used when plain
// HTTP requests get blocked.
type BrowserClient struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
}

// NewBrowser creates a headless-browser scoreboard client
func NewBrowser(cfg Config) *BrowserClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &BrowserClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
}

// FetchScoreboard implements Fetcher
func (b *BrowserClient) FetchScoreboard(ctx context.Context, path string) (map[string]interface{}, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	var raw string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(b.baseURL+path),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(scoreboardScript, &raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: browser: %v", ErrTransport, err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, ErrMarkerNotFound
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return result, nil
}
