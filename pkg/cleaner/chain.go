package cleaner

import (
	"strings"
	"time"
)

// StepFunc observes one stage of a chain run: the stage that ran, its input,
// its output and how long it took.
type StepFunc func(stage Cleaner, in, out string, took time.Duration)

// ChainCleaner applies multiple cleaners in sequence.
// Each stage's output is the next stage's input.
type ChainCleaner struct {
	cleaners []Cleaner
}

// NewChain creates a new cleaner that applies multiple cleaners in sequence.
// Cleaners are applied in the order provided.
//
// Example:
//
//	chain := cleaner.NewChain(
//	    cleaner.NewHTML(),
//	    speech.New(nil),
//	)
func NewChain(cleaners ...Cleaner) *ChainCleaner {
	return &ChainCleaner{
		cleaners: cleaners,
	}
}

// Clean applies all cleaners in sequence.
func (c *ChainCleaner) Clean(content string) (string, error) {
	return c.CleanEach(content, nil)
}

// CleanEach applies all cleaners in sequence and reports every step to fn.
// A nil fn behaves like Clean. The first failing stage aborts the chain.
func (c *ChainCleaner) CleanEach(content string, fn StepFunc) (string, error) {
	for _, stage := range c.cleaners {
		start := time.Now()
		out, err := stage.Clean(content)
		if err != nil {
			return "", err
		}
		if fn != nil {
			fn(stage, content, out, time.Since(start))
		}
		content = out
	}
	return content, nil
}

// Stages returns the chained cleaners in execution order.
func (c *ChainCleaner) Stages() []Cleaner {
	out := make([]Cleaner, len(c.cleaners))
	copy(out, c.cleaners)
	return out
}

// Name returns the names of all chained cleaners.
func (c *ChainCleaner) Name() string {
	names := make([]string, len(c.cleaners))
	for i, cleaner := range c.cleaners {
		names[i] = cleaner.Name()
	}
	return "chain(" + strings.Join(names, "->") + ")"
}
