// Package fetcher retrieves web pages for narration.
//
// Two strategies are provided: StaticFetcher requests the raw HTML with
// colly, DynamicFetcher renders the page in headless Chrome for sites that
// build their content with JavaScript.
package fetcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/narrate/internal/version"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves the page at url.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns "static" or "dynamic".
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// WaitForSelector is the CSS selector a dynamic fetch waits for.
	// Empty waits for body.
	WaitForSelector string
	// WaitDuration is an extra pause after the page is ready.
	WaitDuration time.Duration
	Headers      map[string]string
}

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Page is a fetched document.
type Page struct {
	URL         string
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

var (
	// ErrAntiBot indicates the site served a bot challenge instead of content.
	ErrAntiBot = errors.New("anti-bot protection detected")
	// ErrChallengeTimeout indicates the page never became ready.
	ErrChallengeTimeout = errors.New("challenge timeout")
	// ErrNotHTML indicates the response is not an HTML document.
	ErrNotHTML = errors.New("response is not HTML")
)

// New returns a DynamicFetcher when dynamic is set, otherwise a StaticFetcher.
func New(dynamic bool, opts Options) Fetcher {
	if dynamic {
		return NewDynamic(opts)
	}
	return NewStatic(opts)
}

// pageTitle returns the document title, or "" when html does not parse.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// detectChallenge returns the kind of bot challenge the page shows, or "".
func detectChallenge(title, html string) string {
	titleLower := strings.ToLower(title)
	htmlLower := strings.ToLower(html)

	switch {
	case strings.Contains(titleLower, "just a moment"),
		strings.Contains(titleLower, "attention required"),
		strings.Contains(htmlLower, "cf-challenge"),
		strings.Contains(htmlLower, "cf_chl_opt"):
		return "cloudflare"
	case strings.Contains(htmlLower, "challenges.cloudflare.com/turnstile"),
		strings.Contains(htmlLower, "cf-turnstile"):
		return "cloudflare-turnstile"
	case strings.Contains(htmlLower, "hcaptcha.com"),
		strings.Contains(htmlLower, "h-captcha"):
		return "hcaptcha"
	case strings.Contains(htmlLower, "google.com/recaptcha"),
		strings.Contains(htmlLower, "g-recaptcha"):
		return "recaptcha"
	case strings.Contains(titleLower, "access denied"),
		strings.Contains(titleLower, "bot detection"),
		strings.Contains(htmlLower, "robot or human"):
		return "anti-bot"
	}
	return ""
}
