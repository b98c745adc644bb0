// Package speech turns mixed written content (markdown, code snippets, shell
// transcripts, HTML fragments) into plain narration for a text-to-speech
// engine.
//
// The work is split into four stateless stages that always run in the same
// order:
//
//  1. Structural strips fences, inline code markers, tags, URLs and paths and
//     humanizes identifiers.
//  2. Transcript removes tutorial export artifacts and paraphrases shell
//     commands.
//  3. Document parses the text as markdown and keeps only speakable parts:
//     prose, translated shell fences and code comments.
//  4. Comments drops residual source-code lines line by line.
//
// Every stage is a cleaner.Cleaner, never fails, and is safe for concurrent
// use. Empty output means nothing was speakable.
package speech

import (
	"github.com/go-playground/validator/v10"
)

// Config defines the static tables and thresholds the stages use.
// A Config must not be modified after it has been passed to New.
type Config struct {
	// ShellLanguages are fence language tags whose lines are paraphrased
	// as shell commands instead of being mined for comments.
	ShellLanguages []string `json:"shell_languages" yaml:"shell_languages" mapstructure:"shell_languages" validate:"min=1,dive,required"`

	// CopyGuardStart and CopyGuardEnd wrap clipboard-helper UI artifacts in
	// tutorial exports. Everything between them, markers included, is removed.
	CopyGuardStart string `json:"copy_guard_start" yaml:"copy_guard_start" mapstructure:"copy_guard_start" validate:"required"`
	CopyGuardEnd   string `json:"copy_guard_end" yaml:"copy_guard_end" mapstructure:"copy_guard_end" validate:"required"`

	// MinCommentChars is the minimum number of meaningful characters a
	// '#' comment line must keep to count as narration.
	MinCommentChars int `json:"min_comment_chars" yaml:"min_comment_chars" mapstructure:"min_comment_chars" validate:"gte=0"`

	// MaxCallWords is the word count below which a line that looks like a
	// call or assignment is treated as code.
	MaxCallWords int `json:"max_call_words" yaml:"max_call_words" mapstructure:"max_call_words" validate:"gte=1"`
}

// DefaultConfig returns the configuration used by the narrate server.
func DefaultConfig() *Config {
	return &Config{
		ShellLanguages:  []string{"bash", "sh", "shell", "zsh"},
		CopyGuardStart:  "IGNORE_WHEN_COPYING_START",
		CopyGuardEnd:    "IGNORE_WHEN_COPYING_END",
		MinCommentChars: 3,
		MaxCallWords:    5,
	}
}

// Validate checks the configuration for missing or out-of-range values.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// isShell reports whether lang names a shell dialect.
func (c *Config) isShell(lang string) bool {
	for _, l := range c.ShellLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
