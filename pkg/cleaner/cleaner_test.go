package cleaner

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// --- NoopCleaner Tests ---

func TestNoopCleaner_Clean(t *testing.T) {
	c := NewNoop()

	tests := []struct {
		name  string
		input string
	}{
		{"empty_string", ""},
		{"plain_text", "Hello, World!"},
		{"markdown_content", "# Title\n\n```go\nfmt.Println()\n```"},
		{"whitespace", "  \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Clean(tt.input)
			if err != nil {
				t.Errorf("Clean() error = %v, want nil", err)
			}
			if got != tt.input {
				t.Errorf("Clean() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestNoopCleaner_Name(t *testing.T) {
	c := NewNoop()
	if got := c.Name(); got != "noop" {
		t.Errorf("Name() = %q, want %q", got, "noop")
	}
}

// --- ChainCleaner Tests ---

// funcCleaner adapts a plain function for chain tests.
type funcCleaner struct {
	name string
	fn   func(string) string
}

func (c *funcCleaner) Clean(content string) (string, error) {
	return c.fn(content), nil
}

func (c *funcCleaner) Name() string {
	return c.name
}

func TestChainCleaner_Empty(t *testing.T) {
	c := NewChain()

	input := "unchanged content"
	got, err := c.Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if got != input {
		t.Errorf("Clean() = %q, want %q", got, input)
	}
}

func TestChainCleaner_SingleCleaner(t *testing.T) {
	c := NewChain(NewNoop())

	input := "test content"
	got, err := c.Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if got != input {
		t.Errorf("Clean() = %q, want %q", got, input)
	}
}

func TestChainCleaner_Order(t *testing.T) {
	upper := &funcCleaner{name: "upper", fn: strings.ToUpper}
	suffix := &funcCleaner{name: "suffix", fn: func(s string) string { return s + "!" }}

	got, err := NewChain(upper, suffix).Clean("hi")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got != "HI!" {
		t.Errorf("Clean() = %q, want %q", got, "HI!")
	}

	got, err = NewChain(suffix, upper).Clean("hi")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got != "HI!" {
		t.Errorf("Clean() = %q, want %q", got, "HI!")
	}

	wrap := &funcCleaner{name: "wrap", fn: func(s string) string { return "[" + s + "]" }}
	got, _ = NewChain(wrap, suffix).Clean("x")
	if got != "[x]!" {
		t.Errorf("wrap->suffix = %q, want %q", got, "[x]!")
	}
	got, _ = NewChain(suffix, wrap).Clean("x")
	if got != "[x!]" {
		t.Errorf("suffix->wrap = %q, want %q", got, "[x!]")
	}
}

func TestChainCleaner_CleanEach(t *testing.T) {
	upper := &funcCleaner{name: "upper", fn: strings.ToUpper}
	trim := &funcCleaner{name: "trim", fn: strings.TrimSpace}

	var steps []string
	got, err := NewChain(trim, upper).CleanEach("  hello ", func(stage Cleaner, in, out string, took time.Duration) {
		if took < 0 {
			t.Errorf("negative duration for %s", stage.Name())
		}
		steps = append(steps, stage.Name()+":"+in+"=>"+out)
	})
	if err != nil {
		t.Fatalf("CleanEach() error = %v", err)
	}
	if got != "HELLO" {
		t.Errorf("CleanEach() = %q, want %q", got, "HELLO")
	}

	want := []string{"trim:  hello =>hello", "upper:hello=>HELLO"}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, steps[i], want[i])
		}
	}
}

// errorCleaner is a test cleaner that always returns an error
type errorCleaner struct{}

func (c *errorCleaner) Clean(string) (string, error) {
	return "", errors.New("test error")
}

func (c *errorCleaner) Name() string {
	return "error"
}

func TestChainCleaner_ErrorPropagation(t *testing.T) {
	called := false
	after := &funcCleaner{name: "after", fn: func(s string) string {
		called = true
		return s
	}}
	c := NewChain(NewNoop(), &errorCleaner{}, after)

	got, err := c.Clean("test")
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if got != "" {
		t.Errorf("expected empty output on error, got %q", got)
	}
	if called {
		t.Error("stages after a failing stage must not run")
	}
	if !strings.Contains(err.Error(), "test error") {
		t.Errorf("expected error containing 'test error', got %v", err)
	}
}

func TestChainCleaner_Name(t *testing.T) {
	tests := []struct {
		name     string
		cleaners []Cleaner
		want     string
	}{
		{"empty", []Cleaner{}, "chain()"},
		{"single", []Cleaner{NewNoop()}, "chain(noop)"},
		{"double", []Cleaner{NewNoop(), NewHTML()}, "chain(noop->html)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain(tt.cleaners...)
			if got := c.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChainCleaner_StagesIsCopy(t *testing.T) {
	c := NewChain(NewNoop(), NewHTML())
	stages := c.Stages()
	stages[0] = &errorCleaner{}

	if _, err := c.Clean("x"); err != nil {
		t.Errorf("mutating Stages() result changed the chain: %v", err)
	}
}

// --- Option Tests ---

func TestWithSelector(t *testing.T) {
	cfg := &htmlConfig{}
	WithSelector("article")(cfg)

	if cfg.Selector != "article" {
		t.Errorf("WithSelector did not set Selector, got %q", cfg.Selector)
	}
}

func TestWithKeepFurniture(t *testing.T) {
	cfg := &htmlConfig{}
	WithKeepFurniture(true)(cfg)

	if !cfg.KeepFurniture {
		t.Error("WithKeepFurniture(true) did not set KeepFurniture")
	}
}
