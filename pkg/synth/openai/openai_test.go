package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmylchreest/narrate/pkg/synth"
)

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New("", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestSynthesize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("path = %q, want /audio/speech", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0, 1, 2, 3})
	}))
	defer srv.Close()

	s, err := New("sk-test", "", WithBaseURL(srv.URL), WithVoice("nova"), WithSpeed(1.25))
	if err != nil {
		t.Fatal(err)
	}

	audio, err := s.Synthesize(context.Background(), "Hello there.")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(audio.PCM) != 4 || audio.SampleRate != SampleRate || audio.Channels != 1 {
		t.Errorf("unexpected audio: %d bytes, %d Hz x%d", len(audio.PCM), audio.SampleRate, audio.Channels)
	}

	want := map[string]any{
		"input":           "Hello there.",
		"model":           DefaultModel,
		"voice":           "nova",
		"response_format": "pcm",
		"speed":           1.25,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("request %s = %v, want %v", k, got[k], v)
		}
	}
}

func TestSynthesize_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, _ := New("sk-test", "", WithBaseURL(srv.URL))
	if _, err := s.Synthesize(context.Background(), "hi"); !errors.Is(err, synth.ErrEmptyAudio) {
		t.Errorf("Synthesize() error = %v, want ErrEmptyAudio", err)
	}
}

func TestSynthesize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad voice","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	s, _ := New("sk-test", "", WithBaseURL(srv.URL))
	if _, err := s.Synthesize(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}
}
