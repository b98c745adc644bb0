package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/narrate/pkg/synth"
)

var defaultStopwords = []string{"das", "ist", "ein", "mit", "und", "a", "is", "with", "the"}

func TestSlugger_Slug(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short words dropped", "Hello World, this is a quick test", "hello world quick"},
		{"stopwords dropped", "The weather with sunshine", "weather sunshine"},
		{"german umlauts transliterated", "Schöne Grüße aus München", "schone grusse munchen"},
		{"symbols only", "!!! ??? ...", ""},
		{"empty", "", ""},
	}

	s := NewSlugger(5, 80, defaultStopwords)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := strings.ReplaceAll(tt.want, " ", "-")
			if got := s.Slug(tt.text); got != want {
				t.Errorf("Slug(%q) = %q, want %q", tt.text, got, want)
			}
		})
	}
}

func TestSlugger_MaxLength(t *testing.T) {
	s := NewSlugger(0, 20, nil)
	got := s.Slug(strings.Repeat("alphabet ", 10))
	if len(got) > 20 {
		t.Errorf("len(Slug()) = %d, want <= 20: %q", len(got), got)
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Errorf("slug has dangling hyphen: %q", got)
	}
}

func TestArchive_BaseName(t *testing.T) {
	a, err := New(Options{Dir: t.TempDir(), MinWordLen: 5, MaxLength: 80, Stopwords: defaultStopwords})
	if err != nil {
		t.Fatal(err)
	}
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	if got := a.BaseName("Reading the manual carefully", ts); got != "2025-03-04_05-06-07_reading-manual-carefully" {
		t.Errorf("BaseName() = %q", got)
	}
	if got := a.BaseName("ok", ts); got != "2025-03-04_05-06-07" {
		t.Errorf("BaseName() with empty slug = %q", got)
	}
}

func TestArchive_Save(t *testing.T) {
	dir := t.TempDir()
	a, err := New(Options{Dir: dir, MinWordLen: 5, MaxLength: 80})
	if err != nil {
		t.Fatal(err)
	}
	a.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local) }

	original := "Install `flask` first, then restart"
	audio := &synth.Audio{PCM: []byte{1, 0, 2, 0}, SampleRate: 22050, Channels: 1}

	entry, err := a.Save(original, audio)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	base := filepath.Join(dir, "2025-01-02_03-04-05_install-flask-first-restart")
	if entry.TextPath != base+".txt" || entry.AudioPath != base+".wav" {
		t.Errorf("unexpected paths: %+v", entry)
	}

	text, err := os.ReadFile(entry.TextPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != original {
		t.Errorf("text file = %q, want original %q", text, original)
	}

	wav, err := os.ReadFile(entry.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(wav) != 48 || string(wav[:4]) != "RIFF" {
		t.Errorf("unexpected wav file: %d bytes", len(wav))
	}
	if entry.Bytes != int64(len(original)+len(wav)) {
		t.Errorf("Bytes = %d", entry.Bytes)
	}
}

func TestArchive_SaveTextOnly(t *testing.T) {
	a, _ := New(Options{Dir: t.TempDir(), MinWordLen: 5, MaxLength: 80})

	entry, err := a.Save("nothing synthesized yet", nil)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if entry.AudioPath != "" || entry.TextPath == "" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestNew_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := New(Options{Dir: dir}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("archive dir not created: %v", err)
	}
}
