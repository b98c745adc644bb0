// Package archive saves every spoken utterance next to its synthesized audio.
//
// Each utterance produces two files sharing one base name,
// <YYYY-MM-DD_HH-MM-SS>_<slug>:
//
//	.txt  the original, uncleaned text
//	.wav  the synthesized audio
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/pkg/synth"
)

// TimestampLayout formats the time prefix of archive file names.
const TimestampLayout = "2006-01-02_15-04-05"

// Options configures an Archive.
type Options struct {
	Dir        string
	MinWordLen int
	MaxLength  int
	Stopwords  []string
}

// Entry describes the files written for one utterance. A path is empty
// when that file was not written.
type Entry struct {
	TextPath  string
	AudioPath string
	Bytes     int64
}

// Archive writes utterance files into a directory.
type Archive struct {
	dir     string
	slugger *Slugger
	now     func() time.Time
}

// New creates an Archive, creating the directory if needed.
func New(opts Options) (*Archive, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create dir: %w", err)
	}
	return &Archive{
		dir:     dir,
		slugger: NewSlugger(opts.MinWordLen, opts.MaxLength, opts.Stopwords),
		now:     time.Now,
	}, nil
}

// BaseName returns the file name, without extension, for text spoken at t.
func (a *Archive) BaseName(text string, t time.Time) string {
	name := t.Format(TimestampLayout)
	if s := a.slugger.Slug(text); s != "" {
		name += "_" + s
	}
	return name
}

// Save writes the original text and, when audio is non-nil, the WAV file.
// The text is written first so it survives an audio write failure; the
// returned Entry reflects what was written even when err is non-nil.
func (a *Archive) Save(original string, audio *synth.Audio) (*Entry, error) {
	base := filepath.Join(a.dir, a.BaseName(original, a.now()))
	entry := &Entry{}

	textPath := base + ".txt"
	if err := os.WriteFile(textPath, []byte(original), 0o644); err != nil {
		return entry, fmt.Errorf("archive: write text: %w", err)
	}
	entry.TextPath = textPath
	entry.Bytes += int64(len(original))

	if audio == nil {
		return entry, nil
	}

	wav := audio.WAV()
	audioPath := base + ".wav"
	if err := os.WriteFile(audioPath, wav, 0o644); err != nil {
		return entry, fmt.Errorf("archive: write audio: %w", err)
	}
	entry.AudioPath = audioPath
	entry.Bytes += int64(len(wav))

	logger.Debug("archived utterance",
		"audio", audioPath,
		"size", humanize.Bytes(uint64(entry.Bytes)),
		"duration", audio.Duration())
	return entry, nil
}
