package piper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jmylchreest/narrate/pkg/synth"
)

// fakeBinary writes a shell script standing in for piper-tts.
func fakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "piper-tts")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_RequiresModel(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestArgs(t *testing.T) {
	s, err := New("voice.onnx", WithArgs("--speaker", "2"))
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(s.Args(), " ")
	want := "--model voice.onnx --output-raw --speaker 2"
	if got != want {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestSynthesize(t *testing.T) {
	bin := fakeBinary(t, "cat")
	s, _ := New("voice.onnx", WithBinary(bin), WithSampleRate(16000))

	audio, err := s.Synthesize(context.Background(), "pcm-bytes")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio.PCM) != "pcm-bytes" {
		t.Errorf("PCM = %q, want stdin echoed", audio.PCM)
	}
	if audio.SampleRate != 16000 || audio.Channels != 1 {
		t.Errorf("format = %d Hz x%d, want 16000 Hz mono", audio.SampleRate, audio.Channels)
	}
}

func TestSynthesize_Empty(t *testing.T) {
	bin := fakeBinary(t, "cat >/dev/null")
	s, _ := New("voice.onnx", WithBinary(bin))

	_, err := s.Synthesize(context.Background(), "hello")
	if !errors.Is(err, synth.ErrEmptyAudio) {
		t.Errorf("Synthesize() error = %v, want ErrEmptyAudio", err)
	}
}

func TestSynthesize_Failure(t *testing.T) {
	bin := fakeBinary(t, "cat >/dev/null\necho 'model not found' >&2\nexit 3")
	s, _ := New("voice.onnx", WithBinary(bin))

	_, err := s.Synthesize(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error should carry stderr, got %v", err)
	}
}

func TestSynthesize_MissingBinary(t *testing.T) {
	s, _ := New("voice.onnx", WithBinary(filepath.Join(t.TempDir(), "nope")))
	if _, err := s.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestTail(t *testing.T) {
	long := strings.Repeat("x", stderrTail+10)
	got := tail(long)
	if !strings.HasPrefix(got, "...") || len(got) != stderrTail+3 {
		t.Errorf("tail() length = %d", len(got))
	}
}
