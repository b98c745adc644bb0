package cleaner

import (
	"strings"
	"testing"
)

func TestHTMLCleaner_Name(t *testing.T) {
	if got := NewHTML().Name(); got != "html" {
		t.Errorf("Name() = %q, want %q", got, "html")
	}
}

func TestHTMLCleaner_Clean(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		opts     []HTMLOption
		contains []string
		excludes []string
	}{
		{
			name:     "heading and paragraph",
			html:     `<html><body><h1>Title</h1><p>Some content here.</p></body></html>`,
			contains: []string{"# Title", "Some content here."},
		},
		{
			name:     "drops scripts and navigation",
			html:     `<html><body><nav><a href="/">Home</a></nav><script>alert('x')</script><p>Body text</p><footer>Copyright</footer></body></html>`,
			contains: []string{"Body text"},
			excludes: []string{"alert", "Home", "Copyright"},
		},
		{
			name:     "keeps furniture when asked",
			html:     `<html><body><nav>Menu</nav><p>Body text</p></body></html>`,
			opts:     []HTMLOption{WithKeepFurniture(true)},
			contains: []string{"Menu", "Body text"},
		},
		{
			name:     "code becomes fenced block",
			html:     `<html><body><pre><code class="language-python"># say hi
print("hi")</code></pre></body></html>`,
			contains: []string{"```", "# say hi"},
		},
		{
			name:     "selector restricts output",
			html:     `<html><body><div>Sidebar junk</div><article><p>The article.</p></article></body></html>`,
			opts:     []HTMLOption{WithSelector("article")},
			contains: []string{"The article."},
			excludes: []string{"Sidebar junk"},
		},
		{
			name:     "missing selector falls back to body",
			html:     `<html><body><p>Only body.</p></body></html>`,
			opts:     []HTMLOption{WithSelector("main")},
			contains: []string{"Only body."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewHTML(tt.opts...).Clean(tt.html)
			if err != nil {
				t.Fatalf("Clean() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got %q", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("expected output to exclude %q, got %q", bad, got)
				}
			}
		})
	}
}

func TestHTMLCleaner_Empty(t *testing.T) {
	got, err := NewHTML().Clean("   ")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got != "" {
		t.Errorf("Clean() = %q, want empty", got)
	}
}

func TestCollapseBlankLines(t *testing.T) {
	got := collapseBlankLines("a\n\n\n\nb  \n\n\nc\n\n")
	want := "a\n\nb\n\nc"
	if got != want {
		t.Errorf("collapseBlankLines() = %q, want %q", got, want)
	}
}
