// Package observe provides narrate's OpenTelemetry metrics and the HTTP
// middleware that records them.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported
// in Prometheus text format by the handler that [InitProvider] returns.
// Tests should use [NewMetrics] with their own [metric.MeterProvider].
//
// A nil *Metrics is valid and records nothing.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jmylchreest/narrate"

// Metrics holds every instrument narrate records.
type Metrics struct {
	// Utterances counts speak attempts by outcome. Attributes: status.
	Utterances metric.Int64Counter

	// SpokenChars counts characters handed to the synthesizer.
	SpokenChars metric.Int64Counter

	// CleanDuration tracks speech pipeline latency.
	CleanDuration metric.Float64Histogram

	// SynthDuration tracks synthesis latency. Attributes: backend.
	SynthDuration metric.Float64Histogram

	// PlaybackDuration tracks time spent in the audio player.
	PlaybackDuration metric.Float64Histogram

	// SynthErrors counts synthesis failures. Attributes: backend.
	SynthErrors metric.Int64Counter

	// HTTPRequestDuration tracks request latency. Attributes: method, path, status.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets covers sub-millisecond cleaning up to minute-long playback.
var latencyBuckets = []float64{
	0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Utterances, err = m.Int64Counter("narrate.utterances",
		metric.WithDescription("Speak requests by outcome."),
	); err != nil {
		return nil, err
	}
	if met.SpokenChars, err = m.Int64Counter("narrate.spoken.chars",
		metric.WithDescription("Characters sent to the synthesizer."),
		metric.WithUnit("{char}"),
	); err != nil {
		return nil, err
	}
	if met.CleanDuration, err = m.Float64Histogram("narrate.clean.duration",
		metric.WithDescription("Latency of the speech cleaning pipeline."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthDuration, err = m.Float64Histogram("narrate.synth.duration",
		metric.WithDescription("Latency of speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PlaybackDuration, err = m.Float64Histogram("narrate.playback.duration",
		metric.WithDescription("Time spent playing audio."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthErrors, err = m.Int64Counter("narrate.synth.errors",
		metric.WithDescription("Synthesis failures by backend."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("narrate.http.request.duration",
		metric.WithDescription("HTTP request latency by method, path and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordUtterance counts one speak attempt with the given status
// ("success", "empty", "error").
func (m *Metrics) RecordUtterance(ctx context.Context, status string, chars int) {
	if m == nil {
		return
	}
	m.Utterances.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if chars > 0 {
		m.SpokenChars.Add(ctx, int64(chars))
	}
}

// RecordClean records pipeline latency.
func (m *Metrics) RecordClean(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.CleanDuration.Record(ctx, d.Seconds())
}

// RecordSynth records synthesis latency and, when err is non-nil, a failure.
func (m *Metrics) RecordSynth(ctx context.Context, backend string, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("backend", backend))
	m.SynthDuration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		m.SynthErrors.Add(ctx, 1, attrs)
	}
}

// RecordPlayback records playback time.
func (m *Metrics) RecordPlayback(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.PlaybackDuration.Record(ctx, d.Seconds())
}
