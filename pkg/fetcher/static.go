package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/narrate/internal/logger"
)

// StaticFetcher fetches raw HTML with colly.
type StaticFetcher struct {
	opts Options
}

var _ Fetcher = (*StaticFetcher)(nil)

// NewStatic creates a static fetcher.
func NewStatic(opts Options) *StaticFetcher {
	return &StaticFetcher{opts: opts.withDefaults()}
}

// Fetch retrieves the page. Non-HTML responses fail with ErrNotHTML so that
// binary downloads are never narrated.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	page := &Page{URL: targetURL, FetchedAt: time.Now()}

	c := colly.NewCollector(colly.UserAgent(f.opts.UserAgent))
	c.SetRequestTimeout(f.opts.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for k, v := range f.opts.Headers {
			r.Headers.Set(k, v)
		}
	})

	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.ContentType = r.Headers.Get("Content-Type")
		page.HTML = string(r.Body)
		page.URL = r.Request.URL.String()
		logger.Debug("static fetch response",
			"status", r.StatusCode,
			"content_type", page.ContentType,
			"bytes", len(r.Body))
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			page.StatusCode = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch %s: %w", targetURL, err)
	})

	logger.Debug("static fetch", "url", targetURL)
	if err := c.Visit(targetURL); err != nil {
		if ctx.Err() != nil {
			return page, ctx.Err()
		}
		return page, fmt.Errorf("visit %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return page, fetchErr
	}

	if ct := page.ContentType; ct != "" && !strings.Contains(ct, "html") {
		return page, fmt.Errorf("%w: %s", ErrNotHTML, ct)
	}

	page.Title = pageTitle(page.HTML)
	if challenge := detectChallenge(page.Title, page.HTML); challenge != "" {
		return page, fmt.Errorf("%w: %s", ErrAntiBot, challenge)
	}
	return page, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}
