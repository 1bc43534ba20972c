package ss

import (
	"context"
	"fmt"
	"time"

	"ss-scraper/models"
	"ss-scraper/services"
	"ss-scraper/utils"
)

// Pipeline fetches every page of a category one after another.
type Pipeline struct {
	fetcher  Fetcher
	throttle *utils.Throttle
	logger   *utils.Logger
}

// NewPipeline creates a Pipeline. A nil throttle fetches without delay.
func NewPipeline(f Fetcher, throttle *utils.Throttle, logger *utils.Logger) *Pipeline {
	if throttle == nil {
		throttle = utils.NewThrottle(0)
	}
	return &Pipeline{fetcher: f, throttle: throttle, logger: logger}
}

// Fetch implements Fetcher, waiting on the throttle before every request.
func (p *Pipeline) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := p.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return p.fetcher.Fetch(ctx, url)
}

func (p *Pipeline) Close() error {
	return p.fetcher.Close()
}

// Scrape discovers all pages of v's category, extracts and normalizes every
// listing row and returns them in page order. Every record is stamped with
// now. The first failing page aborts the whole run.
func Scrape[T models.Record](ctx context.Context, p *Pipeline, v services.Vertical[T], now time.Time) ([]T, error) {
	name := v.Category.Name
	p.logger.Info("[pipeline] %s: discovering pages from %s", name, v.Category.BaseURL)

	urls, err := Discover(ctx, p, v.Category.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: discover pages: %w", name, err)
	}
	p.logger.Info("[pipeline] %s: %d page(s) to scrape", name, len(urls))

	var records []T
	for i, url := range urls {
		page, err := scrapePage(ctx, p, v, url, now)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: page %d: %w", name, i+1, err)
		}
		records = append(records, page...)
		p.logger.Debug("[pipeline] %s: page %d/%d -> %d rows (%d total)", name, i+1, len(urls), len(page), len(records))
	}

	p.logger.Info("[pipeline] %s: scraped %d listings", name, len(records))
	return records, nil
}

func scrapePage[T models.Record](ctx context.Context, p *Pipeline, v services.Vertical[T], url string, now time.Time) ([]T, error) {
	body, err := p.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := ParsePage(body)
	if err != nil {
		return nil, err
	}

	var out []T
	for raw := range Rows(doc) {
		if _, ok := raw.Named(v.Category.Fields); !ok {
			p.logger.Debug("[pipeline] skipping row with %d cells on %s", len(raw.Cells), url)
			continue
		}
		out = append(out, v.Normalize(raw, now))
	}
	return out, nil
}
