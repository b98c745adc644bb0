// Package openai provides a Synthesizer backed by the OpenAI speech API.
//
// Audio is requested in the "pcm" response format, which the API documents
// as 24 kHz signed 16-bit little-endian mono.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jmylchreest/narrate/pkg/synth"
)

// Compile-time interface assertion.
var _ synth.Synthesizer = (*Synthesizer)(nil)

const (
	// DefaultModel is the default speech model.
	DefaultModel = "tts-1"

	// DefaultVoice is the default voice.
	DefaultVoice = "alloy"

	// SampleRate is the rate of the pcm response format.
	SampleRate = 24000
)

type config struct {
	baseURL string
	voice   string
	speed   float64
	timeout time.Duration
}

// Option is a functional option for Synthesizer.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithVoice selects the voice (default "alloy").
func WithVoice(voice string) Option {
	return func(c *config) {
		c.voice = voice
	}
}

// WithSpeed sets the speaking rate, 0.25 to 4.0 (default 1.0).
func WithSpeed(speed float64) Option {
	return func(c *config) {
		c.speed = speed
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// Synthesizer implements synth.Synthesizer using the OpenAI API.
type Synthesizer struct {
	client oai.Client
	model  string
	voice  string
	speed  float64
}

// New constructs an OpenAI Synthesizer. If model is empty, DefaultModel is used.
func New(apiKey, model string, opts ...Option) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai tts: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &config{voice: DefaultVoice, speed: 1.0}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Synthesizer{
		client: oai.NewClient(reqOpts...),
		model:  model,
		voice:  cfg.voice,
		speed:  cfg.speed,
	}, nil
}

// Name implements synth.Synthesizer.
func (s *Synthesizer) Name() string {
	return "openai"
}

// Synthesize implements synth.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*synth.Audio, error) {
	resp, err := s.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Input:          text,
		Model:          oai.SpeechModel(s.model),
		Voice:          oai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatPCM,
		Speed:          oai.Float(s.speed),
	})
	if err != nil {
		return nil, fmt.Errorf("openai tts: speech: %w", err)
	}
	defer resp.Body.Close()

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai tts: read audio: %w", err)
	}
	if len(pcm) == 0 {
		return nil, synth.ErrEmptyAudio
	}

	return &synth.Audio{
		PCM:        pcm,
		SampleRate: SampleRate,
		Channels:   1,
	}, nil
}
