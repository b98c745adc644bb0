package cleaner

import (
	"bytes"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
)

// ReadabilityCleaner keeps only the main article of a web page using the
// Readability algorithm. It outputs HTML, so chain it before HTMLCleaner:
//
//	cleaner.NewChain(cleaner.NewReadability(pageURL), cleaner.NewHTML())
//
// When no article can be found the page is returned unchanged.
type ReadabilityCleaner struct {
	parser  readability.Parser
	baseURL *url.URL
}

// NewReadability creates a Readability cleaner. baseURL resolves relative
// links and may be empty.
func NewReadability(baseURL string) *ReadabilityCleaner {
	c := &ReadabilityCleaner{parser: readability.NewParser()}
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			c.baseURL = u
		}
	}
	return c
}

// Clean extracts the main content.
func (c *ReadabilityCleaner) Clean(htmlContent string) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", nil
	}

	article, err := c.parser.Parse(strings.NewReader(htmlContent), c.baseURL)
	if err != nil {
		return "", err
	}
	if article.Node == nil {
		return htmlContent, nil
	}

	var buf bytes.Buffer
	if err := article.RenderHTML(&buf); err != nil {
		// Render the node directly.
		buf.Reset()
		if err := html.Render(&buf, article.Node); err != nil {
			return htmlContent, nil
		}
	}
	if buf.Len() == 0 {
		return htmlContent, nil
	}
	return buf.String(), nil
}

// Name returns the cleaner type.
func (c *ReadabilityCleaner) Name() string {
	return "readability"
}
