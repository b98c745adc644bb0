package speech

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// commentDelimiters are trimmed from the start of every comment line.
const commentDelimiters = "/*#;-!<{%"

// Document parses text as markdown and keeps only the speakable parts:
// prose, paraphrased shell fences and the comments of other fenced code.
type Document struct {
	cfg *Config
	md  goldmark.Markdown
}

// NewDocument creates the document stage. A nil cfg uses DefaultConfig.
func NewDocument(cfg *Config) *Document {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Document{
		cfg: cfg,
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Name returns the stage name.
func (d *Document) Name() string {
	return "document"
}

// Clean walks the parsed document and joins the speakable parts with single
// spaces. It never fails; unparseable constructs are read as paragraphs.
func (d *Document) Clean(content string) (string, error) {
	source := []byte(content)
	doc := d.md.Parser().Parse(text.NewReader(source))

	var (
		parts []string
		prose strings.Builder
	)
	flush := func() {
		if s := stripTags(prose.String()); strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
		prose.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if entering {
				if s := d.fence(node, source); s != "" {
					parts = append(parts, s)
				}
			}
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock, *ast.HTMLBlock, *ast.ThematicBreak, *east.Table,
			*ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if !entering {
				flush()
			}

		case *ast.Text:
			if entering {
				prose.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					prose.WriteByte(' ')
				}
			}

		case *ast.String:
			if entering {
				prose.Write(node.Value)
			}

		case *ast.AutoLink:
			if entering {
				prose.Write(node.Label(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	flush()

	return collapseSpaces(strings.Join(parts, " ")), nil
}

// fence renders one fenced code block: shell fences are paraphrased line by
// line, other known languages contribute their comments, anything else is
// dropped.
func (d *Document) fence(node *ast.FencedCodeBlock, source []byte) string {
	var code strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lang := strings.ToLower(string(node.Language(source)))
	if lang == "" {
		return ""
	}
	if d.cfg.isShell(lang) {
		return translateLines(code.String())
	}
	return extractComments(lang, code.String())
}

// extractComments tokenizes code with the lexer registered for lang and
// returns the text of its comment tokens. Unknown languages yield "".
func extractComments(lang, code string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return ""
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return ""
	}

	var comments []string
	for _, tok := range it.Tokens() {
		if !isNarrativeComment(tok.Type) {
			continue
		}
		if s := stripCommentDelimiters(tok.Value); s != "" {
			comments = append(comments, s)
		}
	}
	return strings.Join(comments, " ")
}

// isNarrativeComment reports whether a token is a human-authored comment.
// Preprocessor directives and hashbangs are tokenized as comments but are code.
func isNarrativeComment(t chroma.TokenType) bool {
	if !t.InCategory(chroma.Comment) {
		return false
	}
	return t != chroma.CommentHashbang && !t.InSubCategory(chroma.CommentPreproc)
}

func stripCommentDelimiters(comment string) string {
	var out []string
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSuffix(line, "-->")
		line = strings.TrimSuffix(line, "-}")
		line = strings.TrimSpace(strings.TrimLeft(line, commentDelimiters))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, " ")
}

// stripTags drops closed markup tags with the same rule the structural stage
// uses. Entities are left encoded and a lone "<" is kept, so no markup is
// rebuilt from text.
func stripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}
