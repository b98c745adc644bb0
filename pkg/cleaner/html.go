package cleaner

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// nonContentSelector matches page furniture that never belongs in narration.
const nonContentSelector = "script, style, noscript, template, svg, iframe, nav, header, footer, aside, form, button"

// HTMLCleaner converts an HTML page or fragment into Markdown so that the
// speech pipeline sees headings, paragraphs and fenced code blocks instead
// of raw markup. Navigation and other page furniture is dropped first.
type HTMLCleaner struct {
	config htmlConfig
}

// HTMLOption configures the HTML cleaner.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	// Selector restricts conversion to the first matching element
	// (e.g. "article", "main"). Empty means the whole body.
	Selector string
	// KeepFurniture disables removal of nav/header/footer and friends.
	KeepFurniture bool
}

// WithSelector restricts conversion to the first element matching selector.
func WithSelector(selector string) HTMLOption {
	return func(c *htmlConfig) {
		c.Selector = selector
	}
}

// WithKeepFurniture keeps navigation, headers, footers and forms.
func WithKeepFurniture(keep bool) HTMLOption {
	return func(c *htmlConfig) {
		c.KeepFurniture = keep
	}
}

// NewHTML creates a new HTML to Markdown cleaner.
func NewHTML(opts ...HTMLOption) *HTMLCleaner {
	cfg := htmlConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HTMLCleaner{config: cfg}
}

// Clean converts HTML to Markdown.
func (c *HTMLCleaner) Clean(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	if !c.config.KeepFurniture {
		doc.Find(nonContentSelector).Remove()
	}

	root := doc.Find("body")
	if c.config.Selector != "" {
		if sel := doc.Find(c.config.Selector).First(); sel.Length() > 0 {
			root = sel
		}
	}

	fragment, err := goquery.OuterHtml(root)
	if err != nil {
		return "", err
	}

	markdown, err := md.ConvertString(fragment)
	if err != nil {
		return "", err
	}

	return collapseBlankLines(markdown), nil
}

// Name returns the cleaner type.
func (c *HTMLCleaner) Name() string {
	return "html"
}

// collapseBlankLines keeps at most one blank line between blocks.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var result []string
	blankCount := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankCount++
			if blankCount <= 1 {
				result = append(result, "")
			}
			continue
		}
		blankCount = 0
		result = append(result, strings.TrimRight(line, " \t"))
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
