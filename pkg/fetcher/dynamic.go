package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/narrate/internal/logger"
)

// chromeBinaryNames are tried in order by FindChromePath.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/snap/bin/chromium",
}

// FindChromePath returns the first Chrome or Chromium binary found, or "".
func FindChromePath() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// DynamicFetcher renders pages in headless Chrome via chromedp.
// The browser is started lazily on the first Fetch.
type DynamicFetcher struct {
	opts      Options
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

var _ Fetcher = (*DynamicFetcher)(nil)

// NewDynamic creates a dynamic fetcher.
func NewDynamic(opts Options) *DynamicFetcher {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1024),
		chromedp.UserAgent(opts.UserAgent),
	)
	if path := FindChromePath(); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	} else {
		logger.Warn("no Chrome binary found, dynamic fetch may fail")
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &DynamicFetcher{opts: opts, allocCtx: allocCtx, cancelCtx: cancel}
}

// Fetch renders the page and returns its final HTML.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	page := &Page{URL: targetURL, FetchedAt: time.Now()}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, f.opts.Timeout)
	defer cancelTimeout()

	// Stop the browser when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	ready := f.opts.WaitForSelector
	if ready == "" {
		ready = "body"
	}

	actions := []chromedp.Action{
		chromedp.Navigate(targetURL),
		chromedp.WaitReady(ready),
	}
	if f.opts.WaitDuration > 0 {
		actions = append(actions, chromedp.Sleep(f.opts.WaitDuration))
	}
	actions = append(actions,
		chromedp.OuterHTML("html", &page.HTML),
		chromedp.Title(&page.Title),
	)

	logger.Debug("dynamic fetch", "url", targetURL, "wait_for", ready, "timeout", f.opts.Timeout)
	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return page, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return page, fmt.Errorf("%w: %v", ErrChallengeTimeout, err)
		}
		return page, fmt.Errorf("browser fetch %s: %w", targetURL, err)
	}

	// chromedp does not expose the navigation status.
	page.StatusCode = 200
	page.ContentType = "text/html"

	if challenge := detectChallenge(page.Title, page.HTML); challenge != "" {
		return page, fmt.Errorf("%w: %s", ErrAntiBot, challenge)
	}
	return page, nil
}

// Close shuts the browser down.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
