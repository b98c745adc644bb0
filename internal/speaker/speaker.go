// Package speaker turns raw text into played, archived speech.
//
// A Service runs clean, synthesize, play and archive for one utterance at a
// time. Cleaning happens outside the lock so concurrent requests only queue
// for the audio device.
package speaker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jmylchreest/narrate/internal/archive"
	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/internal/observe"
	"github.com/jmylchreest/narrate/internal/playback"
	"github.com/jmylchreest/narrate/pkg/cleaner"
	"github.com/jmylchreest/narrate/pkg/cleaner/speech"
	"github.com/jmylchreest/narrate/pkg/synth"
)

// ErrNothingToSay is returned when cleaning leaves no speakable text.
var ErrNothingToSay = errors.New("speaker: no speakable text")

// Archiver persists an utterance. *archive.Archive implements it.
type Archiver interface {
	Save(original string, audio *synth.Audio) (*archive.Entry, error)
}

// Result describes one spoken utterance.
type Result struct {
	// Spoken is the cleaned text that was synthesized.
	Spoken string `json:"spoken" yaml:"spoken"`
	// AudioPath is the archived WAV file, empty when archiving is off or failed.
	AudioPath string `json:"file_saved" yaml:"file_saved"`
	// TextPath is the archived original text file.
	TextPath string `json:"text_saved,omitempty" yaml:"text_saved,omitempty"`
	// Duration is the length of the synthesized audio.
	Duration time.Duration `json:"duration" yaml:"duration"`
	// Played is false when the player failed; the utterance is still archived.
	Played bool `json:"played" yaml:"played"`
}

// Option configures a Service.
type Option func(*Service)

// WithCleaner replaces the default speech pipeline.
func WithCleaner(c cleaner.Cleaner) Option {
	return func(s *Service) { s.cleaner = c }
}

// WithPlayer sets the audio player. The default discards audio.
func WithPlayer(p playback.Player) Option {
	return func(s *Service) { s.player = p }
}

// WithArchive enables saving utterances. A nil Archiver disables it.
func WithArchive(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

// WithMetrics records utterance metrics to m.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service speaks text. It is safe for concurrent use.
type Service struct {
	cleaner cleaner.Cleaner
	synth   synth.Synthesizer
	player  playback.Player
	archive Archiver
	metrics *observe.Metrics

	mu sync.Mutex
}

// New creates a Service around a synthesizer.
func New(s synth.Synthesizer, opts ...Option) *Service {
	svc := &Service{
		cleaner: speech.New(nil),
		synth:   s,
		player:  playback.Discard{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Clean runs only the cleaning stage.
func (s *Service) Clean(raw string) (string, error) {
	out, err := s.cleaner.Clean(raw)
	if err != nil {
		return "", fmt.Errorf("speaker: clean: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Speak cleans raw, synthesizes and plays it, then archives the original
// text with the audio. Playback and archive failures are logged and do not
// fail the call.
func (s *Service) Speak(ctx context.Context, raw string) (*Result, error) {
	start := time.Now()
	text, err := s.Clean(raw)
	s.metrics.RecordClean(ctx, time.Since(start))
	if err != nil {
		s.metrics.RecordUtterance(ctx, "error", 0)
		return nil, err
	}
	if text == "" {
		s.metrics.RecordUtterance(ctx, "empty", 0)
		return nil, ErrNothingToSay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Info("speaking", "chars", utf8.RuneCountInString(text), "backend", s.synth.Name())

	start = time.Now()
	audio, err := s.synth.Synthesize(ctx, text)
	if err == nil && (audio == nil || len(audio.PCM) == 0) {
		err = synth.ErrEmptyAudio
	}
	s.metrics.RecordSynth(ctx, s.synth.Name(), time.Since(start), err)
	if err != nil {
		s.metrics.RecordUtterance(ctx, "error", 0)
		return nil, fmt.Errorf("speaker: synthesize: %w", err)
	}

	result := &Result{Spoken: text, Duration: audio.Duration(), Played: true}

	start = time.Now()
	if err := s.player.Play(ctx, audio); err != nil {
		logger.Warn("playback failed", "error", err)
		result.Played = false
	}
	s.metrics.RecordPlayback(ctx, time.Since(start))

	if s.archive != nil {
		entry, err := s.archive.Save(raw, audio)
		if err != nil {
			logger.Warn("archive failed", "error", err)
		}
		if entry != nil {
			result.AudioPath = entry.AudioPath
			result.TextPath = entry.TextPath
		}
	}

	s.metrics.RecordUtterance(ctx, "success", utf8.RuneCountInString(text))
	logger.Debug("utterance done", "audio", result.Duration, "saved", result.AudioPath)
	return result, nil
}
