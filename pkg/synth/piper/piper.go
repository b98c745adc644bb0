// Package piper provides a Synthesizer that runs the local piper-tts binary.
//
// Text is written to the process's stdin and raw PCM is read from stdout
// (piper's --output-raw mode).
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jmylchreest/narrate/pkg/synth"
)

// Compile-time interface assertion.
var _ synth.Synthesizer = (*Synthesizer)(nil)

const (
	defaultBinary     = "piper-tts"
	defaultSampleRate = 22050

	// stderrTail bounds how much of piper's stderr ends up in an error.
	stderrTail = 512
)

// Option is a functional option for Synthesizer.
type Option func(*Synthesizer)

// WithBinary overrides the piper executable (default "piper-tts").
func WithBinary(path string) Option {
	return func(s *Synthesizer) {
		s.binary = path
	}
}

// WithSampleRate sets the sample rate of the voice model (default 22050).
// It must match the model's config; piper does not report it in raw mode.
func WithSampleRate(rate int) Option {
	return func(s *Synthesizer) {
		s.sampleRate = rate
	}
}

// WithArgs appends extra command-line arguments, e.g. --speaker.
func WithArgs(args ...string) Option {
	return func(s *Synthesizer) {
		s.extraArgs = append(s.extraArgs, args...)
	}
}

// Synthesizer runs one piper process per utterance.
type Synthesizer struct {
	binary     string
	model      string
	sampleRate int
	extraArgs  []string
}

// New creates a piper Synthesizer for the given voice model file.
func New(model string, opts ...Option) (*Synthesizer, error) {
	if model == "" {
		return nil, errors.New("piper: model must not be empty")
	}
	s := &Synthesizer{
		binary:     defaultBinary,
		model:      model,
		sampleRate: defaultSampleRate,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Name implements synth.Synthesizer.
func (s *Synthesizer) Name() string {
	return "piper"
}

// Args returns the command-line arguments passed to the binary.
func (s *Synthesizer) Args() []string {
	args := []string{"--model", s.model, "--output-raw"}
	return append(args, s.extraArgs...)
}

// Synthesize implements synth.Synthesizer. Cancelling ctx kills the process.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*synth.Audio, error) {
	cmd := exec.CommandContext(ctx, s.binary, s.Args()...)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("piper: %w", ctx.Err())
		}
		return nil, fmt.Errorf("piper: %s: %w: %s", s.binary, err, tail(stderr.String()))
	}

	if stdout.Len() == 0 {
		return nil, synth.ErrEmptyAudio
	}

	return &synth.Audio{
		PCM:        stdout.Bytes(),
		SampleRate: s.sampleRate,
		Channels:   1,
	}, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = "..." + s[len(s)-stderrTail:]
	}
	return s
}
