package speech

import (
	"regexp"
	"strings"
)

var (
	artifactWordRegex  = regexp.MustCompile(`\bcontent_copy\b`)
	artifactLineRegex  = regexp.MustCompile(`(?m)^[ \t]*download[ \t]*$`)
	permissionRegex    = regexp.MustCompile(`(?m)^[d-][rwxsStT-]{9}.*$`)
	generatedRegex     = regexp.MustCompile(`(?ms)^Generated (?:bash|code)[ \t]*\n(.*?)(?:\n[ \t]*\n|\z)`)
	repeatedNewlines   = regexp.MustCompile(`\n{2,}`)
	artifactPhrase     = "Use code with caution."
	transcriptReplacer = strings.NewReplacer(artifactPhrase, "")
)

// Transcript removes interactive tutorial artifacts (copy guards, UI words,
// directory listings) and rewrites "Generated bash" blocks as spoken
// instructions.
type Transcript struct {
	copyGuard *regexp.Regexp
}

// NewTranscript creates the transcript stage. A nil cfg uses DefaultConfig.
func NewTranscript(cfg *Config) *Transcript {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	guard := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(cfg.CopyGuardStart) + `.*?` + regexp.QuoteMeta(cfg.CopyGuardEnd))
	return &Transcript{copyGuard: guard}
}

// Name returns the stage name.
func (t *Transcript) Name() string {
	return "transcript"
}

// Clean returns single-line text with artifacts removed and generated
// command blocks translated. It never fails.
func (t *Transcript) Clean(text string) (string, error) {
	text = t.copyGuard.ReplaceAllString(text, "")

	text = artifactWordRegex.ReplaceAllString(text, "")
	text = transcriptReplacer.Replace(text)
	text = artifactLineRegex.ReplaceAllString(text, "")

	text = permissionRegex.ReplaceAllString(text, "")

	text = generatedRegex.ReplaceAllStringFunc(text, func(block string) string {
		m := generatedRegex.FindStringSubmatch(block)
		if m == nil {
			return block
		}
		return translateLines(m[1]) + "\n"
	})

	text = repeatedNewlines.ReplaceAllString(text, "\n")
	return collapseSpaces(text), nil
}

// translateLines paraphrases every non-blank line of a command body and
// joins the sentences with spaces.
func translateLines(body string) string {
	var sentences []string
	for _, line := range strings.Split(body, "\n") {
		if s := TranslateCommand(line); s != "" {
			sentences = append(sentences, s)
		}
	}
	return strings.Join(sentences, " ")
}
