package playback

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/narrate/pkg/synth"
)

func fakePlayer(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandLine(t *testing.T) {
	audio := &synth.Audio{SampleRate: 22050, Channels: 1}

	tests := []struct {
		path string
		want string
	}{
		{"aplay", "aplay -q -r 22050 -f S16_LE -t raw -c 1 -"},
		{"/usr/bin/paplay", "/usr/bin/paplay --raw --format=s16le --rate=22050 --channels=1"},
		{"pw-play", "pw-play --format=s16 --rate=22050 --channels=1 -"},
		{"myplayer", "myplayer -q -r 22050 -f S16_LE -t raw -c 1 -"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NewCommand(tt.path).CommandLine(audio); got != tt.want {
				t.Errorf("CommandLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlay_PipesPCM(t *testing.T) {
	out := filepath.Join(t.TempDir(), "played.raw")
	bin := fakePlayer(t, "aplay", "cat > "+out)

	audio := &synth.Audio{PCM: []byte("raw-pcm"), SampleRate: 22050, Channels: 1}
	if err := NewCommand(bin).Play(context.Background(), audio); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "raw-pcm" {
		t.Errorf("player received %q, want %q", got, "raw-pcm")
	}
}

func TestPlay_Failure(t *testing.T) {
	bin := fakePlayer(t, "aplay", "cat >/dev/null\necho 'no soundcards found' >&2\nexit 1")

	err := NewCommand(bin).Play(context.Background(), &synth.Audio{PCM: []byte{0}, SampleRate: 1, Channels: 1})
	if err == nil || !strings.Contains(err.Error(), "no soundcards found") {
		t.Errorf("Play() error = %v, want stderr in error", err)
	}
}

func TestPlay_Cancelled(t *testing.T) {
	bin := fakePlayer(t, "aplay", "sleep 5")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewCommand(bin).Play(ctx, &synth.Audio{SampleRate: 1, Channels: 1})
	if err == nil {
		t.Fatal("expected error on cancellation")
	}
	if time.Since(start) > 4*time.Second {
		t.Error("Play() did not stop on cancellation")
	}
}

func TestDiscard(t *testing.T) {
	var p Player = Discard{}
	if err := p.Play(context.Background(), &synth.Audio{}); err != nil {
		t.Errorf("Discard.Play() error = %v", err)
	}
}
