// Package playback plays synthesized audio through an external player
// process that reads raw PCM on stdin.
package playback

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmylchreest/narrate/pkg/synth"
)

// Player plays audio and returns when playback has finished.
type Player interface {
	Play(ctx context.Context, audio *synth.Audio) error
}

// argBuilders maps known player binaries to their raw-PCM arguments.
var argBuilders = map[string]func(a *synth.Audio) []string{
	"aplay": func(a *synth.Audio) []string {
		return []string{
			"-q",
			"-r", strconv.Itoa(a.SampleRate),
			"-f", "S16_LE",
			"-t", "raw",
			"-c", strconv.Itoa(a.Channels),
			"-",
		}
	},
	"paplay": func(a *synth.Audio) []string {
		return []string{
			"--raw",
			"--format=s16le",
			"--rate=" + strconv.Itoa(a.SampleRate),
			"--channels=" + strconv.Itoa(a.Channels),
		}
	},
	"pw-play": func(a *synth.Audio) []string {
		return []string{
			"--format=s16",
			"--rate=" + strconv.Itoa(a.SampleRate),
			"--channels=" + strconv.Itoa(a.Channels),
			"-",
		}
	},
}

// Command plays audio by piping PCM into a player process.
type Command struct {
	path string
	args func(a *synth.Audio) []string
}

// NewCommand creates a player for the given binary. aplay, paplay and
// pw-play are recognized by name; any other binary gets aplay's arguments.
func NewCommand(path string) *Command {
	args, ok := argBuilders[filepath.Base(path)]
	if !ok {
		args = argBuilders["aplay"]
	}
	return &Command{path: path, args: args}
}

// CommandLine returns the full command line used for audio, for logging.
func (c *Command) CommandLine(audio *synth.Audio) string {
	return strings.Join(append([]string{c.path}, c.args(audio)...), " ")
}

// Play implements Player. Cancelling ctx stops playback.
func (c *Command) Play(ctx context.Context, audio *synth.Audio) error {
	cmd := exec.CommandContext(ctx, c.path, c.args(audio)...)
	cmd.Stdin = bytes.NewReader(audio.PCM)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("playback: %w", ctx.Err())
		}
		return fmt.Errorf("playback: %s: %w: %s", filepath.Base(c.path), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Discard is a Player that drops audio, used when playback is disabled.
type Discard struct{}

// Play implements Player.
func (Discard) Play(context.Context, *synth.Audio) error {
	return nil
}
