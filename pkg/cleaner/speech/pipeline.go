package speech

import (
	"time"

	"github.com/jmylchreest/narrate/pkg/cleaner"
)

// Pipeline runs the four speech stages in their fixed order:
// structural, transcript, document, comments.
type Pipeline struct {
	chain *cleaner.ChainCleaner
}

// New builds the speech pipeline. A nil cfg uses DefaultConfig.
func New(cfg *Config) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Pipeline{
		chain: cleaner.NewChain(
			NewStructural(),
			NewTranscript(cfg),
			NewDocument(cfg),
			NewComments(cfg),
		),
	}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return "speech"
}

// Clean runs every stage on text. Empty output means nothing was speakable.
func (p *Pipeline) Clean(text string) (string, error) {
	return p.chain.Clean(text)
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []cleaner.Cleaner {
	return p.chain.Stages()
}

// CleanWithStats runs the pipeline and records what every stage did.
func (p *Pipeline) CleanWithStats(text string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	out, err := p.chain.CleanEach(text, func(stage cleaner.Cleaner, in, out string, took time.Duration) {
		result.Stages = append(result.Stages, StageStats{
			Name:        stage.Name(),
			InputBytes:  len(in),
			OutputBytes: len(out),
			Duration:    took,
			Output:      out,
		})
	})
	if err != nil {
		return nil, err
	}

	result.Content = out
	result.TotalDuration = time.Since(start)
	return result, nil
}

var defaultPipeline = New(nil)

// Clean runs the default pipeline on text.
func Clean(text string) string {
	// Stages never fail.
	out, _ := defaultPipeline.Clean(text)
	return out
}

// AsText returns v when it is a string and "" for any other value, such as
// a JSON number or null. Non-text input therefore cleans to nothing.
func AsText(v any) string {
	s, _ := v.(string)
	return s
}
