package speech

import (
	"strings"
)

// codeKeywords mark a line as source code when it starts with one of them.
var codeKeywords = []string{
	"def ", "class ", "import ", "from ",
	"try:", "except:", "finally:",
	"with ", "if ", "elif ", "else:",
	"for ", "while ", "return ",
}

// Comments is the last line-oriented pass. It keeps comments and narrative
// lines and drops lines that look like residual source code.
type Comments struct {
	minCommentChars int
	maxCallWords    int
}

// NewComments creates the comment filter stage. A nil cfg uses DefaultConfig.
func NewComments(cfg *Config) *Comments {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Comments{
		minCommentChars: cfg.MinCommentChars,
		maxCallWords:    cfg.MaxCallWords,
	}
}

// Name returns the stage name.
func (c *Comments) Name() string {
	return "comments"
}

// Clean classifies each line and joins the kept ones with single spaces.
// It never fails.
func (c *Comments) Clean(text string) (string, error) {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if s, ok := c.classify(line); ok {
			kept = append(kept, s)
		}
	}
	return collapseSpaces(strings.Join(kept, " ")), nil
}

// classify returns the speakable form of line and whether to keep it.
// The first matching rule wins.
func (c *Comments) classify(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return "", false

	case strings.HasPrefix(trimmed, "#"):
		comment := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		meaningful := strings.Trim(comment, "#-= \t")
		if len([]rune(meaningful)) < c.minCommentChars {
			return "", false
		}
		return comment, true

	case hasKeywordPrefix(trimmed):
		return "", false

	case strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t"):
		return "", false

	case c.looksLikeCall(trimmed):
		return "", false

	case strings.Contains(trimmed, "print(") && strings.ContainsAny(trimmed, "#*"):
		return "", false
	}
	return line, true
}

// looksLikeCall reports whether a short line has assignment or attribute
// access together with call parentheses. Longer lines are presumed prose.
func (c *Comments) looksLikeCall(line string) bool {
	if !strings.ContainsAny(line, "=.") {
		return false
	}
	if !strings.Contains(line, "(") || !strings.Contains(line, ")") {
		return false
	}
	return len(strings.Fields(line)) < c.maxCallWords
}

func hasKeywordPrefix(line string) bool {
	for _, kw := range codeKeywords {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}
