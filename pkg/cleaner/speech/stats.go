package speech

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// StageStats captures what one stage did to the text.
type StageStats struct {
	Name        string        `json:"name" yaml:"name"`
	InputBytes  int           `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int           `json:"output_bytes" yaml:"output_bytes"`
	Duration    time.Duration `json:"duration_ns" yaml:"duration_ns"`

	// Output is the stage result, the input of the next stage.
	Output string `json:"output" yaml:"output"`
}

// ReductionPercent returns the percentage of input removed by the stage.
func (s StageStats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// Result contains the output of a pipeline run and per-stage diagnostics.
type Result struct {
	// Content is the final narration. Empty means nothing was speakable.
	Content string `json:"content" yaml:"content"`

	Stages        []StageStats  `json:"stages" yaml:"stages"`
	TotalDuration time.Duration `json:"total_duration_ns" yaml:"total_duration_ns"`
}

// Speakable reports whether the run produced anything to say.
func (r *Result) Speakable() bool {
	return strings.TrimSpace(r.Content) != ""
}

// String returns a human-readable summary, one line per stage.
func (r *Result) String() string {
	var sb strings.Builder
	for _, s := range r.Stages {
		sb.WriteString(fmt.Sprintf("%-10s %8s -> %-8s (%.1f%% reduction) %v\n",
			s.Name,
			humanize.Bytes(uint64(s.InputBytes)),
			humanize.Bytes(uint64(s.OutputBytes)),
			s.ReductionPercent(),
			s.Duration.Round(time.Microsecond)))
	}
	sb.WriteString(fmt.Sprintf("total      %v\n", r.TotalDuration.Round(time.Microsecond)))
	return sb.String()
}
