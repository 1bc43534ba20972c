package ss

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"

	"ss-scraper/utils"
)

// Fetcher retrieves the raw markup of one listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Close() error
}

const (
	FetcherStatic  = "static"
	FetcherBrowser = "browser"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FetcherConfig holds the settings shared by all fetcher kinds.
type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
}

func (c FetcherConfig) withDefaults() FetcherConfig {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// NewFetcher builds the fetcher named by kind.
func NewFetcher(kind string, cfg FetcherConfig, logger *utils.Logger) (Fetcher, error) {
	switch kind {
	case "", FetcherStatic:
		return NewStaticFetcher(cfg, logger), nil
	case FetcherBrowser:
		return NewBrowserFetcher(cfg, logger), nil
	default:
		return nil, fmt.Errorf("fetcher: unknown kind %q", kind)
	}
}

// StaticFetcher downloads pages over plain HTTP with colly.
type StaticFetcher struct {
	cfg    FetcherConfig
	logger *utils.Logger
}

func NewStaticFetcher(cfg FetcherConfig, logger *utils.Logger) *StaticFetcher {
	return &StaticFetcher{cfg: cfg.withDefaults(), logger: logger}
}

// Fetch visits url with a fresh collector, so no session state is shared
// between pages.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.cfg.Timeout)

	var body []byte
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		f.logger.Debug("[fetch] %s -> %d (%d bytes)", url, r.StatusCode, len(r.Body))
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", url, status, err)
	})

	if err := c.Visit(url); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}

func (f *StaticFetcher) Close() error { return nil }

// BrowserFetcher renders pages in a headless Chrome through chromedp. The
// browser is started lazily on the first fetch and shared by later ones.
type BrowserFetcher struct {
	cfg    FetcherConfig
	logger *utils.Logger

	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

func NewBrowserFetcher(cfg FetcherConfig, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg.withDefaults(), logger: logger}
}

func (b *BrowserFetcher) start() error {
	chromeBin := findChromeBinary()
	b.logger.Info("[fetch] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// launch the browser now so that every tab context shares it
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return fmt.Errorf("fetch: start browser: %w", err)
	}

	b.browserCtx = browserCtx
	b.cancelAlloc = cancelAlloc
	b.cancelBrowser = cancelBrowser
	return nil
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if b.browserCtx == nil {
		if err := b.start(); err != nil {
			return nil, err
		}
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.cfg.Timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
		}
		return nil, fmt.Errorf("fetch %s: chromedp: %w", url, err)
	}
	b.logger.Debug("[fetch] %s rendered (%d bytes)", url, len(html))
	return []byte(html), nil
}

func (b *BrowserFetcher) Close() error {
	if b.browserCtx == nil {
		return nil
	}
	b.cancelBrowser()
	b.cancelAlloc()
	b.browserCtx = nil
	return nil
}

// findChromeBinary locates a Chrome/Chromium executable on the system.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
