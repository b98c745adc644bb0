package commands

import (
	"fmt"

	"github.com/jmylchreest/narrate/internal/archive"
	"github.com/jmylchreest/narrate/internal/config"
	"github.com/jmylchreest/narrate/internal/observe"
	"github.com/jmylchreest/narrate/internal/playback"
	"github.com/jmylchreest/narrate/internal/speaker"
	"github.com/jmylchreest/narrate/pkg/cleaner"
	"github.com/jmylchreest/narrate/pkg/cleaner/speech"
	"github.com/jmylchreest/narrate/pkg/synth"
	"github.com/jmylchreest/narrate/pkg/synth/openai"
	"github.com/jmylchreest/narrate/pkg/synth/piper"
)

// newSynthesizer builds the configured synthesis backend.
func newSynthesizer(cfg config.SynthConfig) (synth.Synthesizer, error) {
	switch cfg.Backend {
	case "openai":
		opts := []openai.Option{
			openai.WithVoice(cfg.OpenAI.Voice),
			openai.WithSpeed(cfg.OpenAI.Speed),
		}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, opts...)
	case "piper", "":
		return piper.New(cfg.Piper.Model,
			piper.WithBinary(cfg.Piper.Binary),
			piper.WithSampleRate(cfg.Piper.SampleRate))
	default:
		return nil, fmt.Errorf("unknown synth backend: %s (use 'piper' or 'openai')", cfg.Backend)
	}
}

// newCleaner returns the speech pipeline, or a pass-through cleaner when
// cleaning is disabled.
func newCleaner(cfg config.CleaningConfig) cleaner.Cleaner {
	if !cfg.Enabled {
		return cleaner.NewNoop()
	}
	return speech.New(&cfg.Speech)
}

// newSpeaker wires a speaker.Service from configuration.
func newSpeaker(cfg *config.Config, metrics *observe.Metrics) (*speaker.Service, error) {
	s, err := newSynthesizer(cfg.Synth)
	if err != nil {
		return nil, err
	}

	opts := []speaker.Option{
		speaker.WithCleaner(newCleaner(cfg.Cleaning)),
		speaker.WithMetrics(metrics),
	}

	if cfg.Playback.Enabled {
		opts = append(opts, speaker.WithPlayer(playback.NewCommand(cfg.Playback.Command)))
	}

	if cfg.Archive.Enabled {
		a, err := archive.New(archive.Options{
			Dir:        cfg.Archive.Dir,
			MinWordLen: cfg.Archive.MinWordLen,
			MaxLength:  cfg.Archive.MaxLength,
			Stopwords:  cfg.Archive.Stopwords,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, speaker.WithArchive(a))
	}

	return speaker.New(s, opts...), nil
}

// htmlIngest converts a page to markdown. With readable set and no
// selector, the main article is extracted first.
func htmlIngest(pageURL, selector string, readable bool) cleaner.Cleaner {
	toMarkdown := cleaner.NewHTML(cleaner.WithSelector(selector))
	if !readable || selector != "" {
		return toMarkdown
	}
	return cleaner.NewChain(cleaner.NewReadability(pageURL), toMarkdown)
}
