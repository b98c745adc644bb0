package speech

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRegex = regexp.MustCompile("(?s)```.*?```")
	tagRegex         = regexp.MustCompile(`<[^>]*>`)
	urlRegex         = regexp.MustCompile(`https?://\S+`)
	// A rooted path needs a root marker ("/", "~/", "C:\") and at least one
	// more separator. The leading group keeps the preceding whitespace.
	pathRegex       = regexp.MustCompile(`(^|\s)(?:[A-Za-z]:[\\/]|~?/)[^\s\\/]+[\\/]\S*`)
	camelRegex      = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// symbolNoise is removed character by character after humanization.
var symbolNoise = strings.NewReplacer(
	"{", "", "}", "",
	"(", "", ")", "",
	"[", "", "]", "",
	"#", "", "*", "",
	"<", "", ">", "",
	";", "", "|", "",
	`\`, "", "/", "",
)

const (
	webAddressPhrase = "a web address"
	filePathPhrase   = "a file path"
)

// Structural strips structure and symbols that would be read out literally:
// fenced code, inline code markers, tags, URLs, paths and programming
// punctuation. It also splits camelCase and snake_case identifiers into words.
type Structural struct{}

// NewStructural creates the structural stripping stage.
func NewStructural() *Structural {
	return &Structural{}
}

// Name returns the stage name.
func (s *Structural) Name() string {
	return "structural"
}

// Clean applies the structural transformations in order. It never fails.
func (s *Structural) Clean(text string) (string, error) {
	text = fencedBlockRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "`", "")
	text = tagRegex.ReplaceAllString(text, "")
	text = urlRegex.ReplaceAllString(text, webAddressPhrase)
	text = pathRegex.ReplaceAllString(text, "${1}"+filePathPhrase)
	text = camelRegex.ReplaceAllString(text, "$1 $2")
	text = strings.ReplaceAll(text, "_", " ")
	text = symbolNoise.Replace(text)
	return collapseSpaces(text), nil
}

// collapseSpaces folds every whitespace run, newlines included, into a
// single space and trims the ends.
func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
