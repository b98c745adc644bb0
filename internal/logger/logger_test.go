package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// resetLogger resets the logger to default state for test isolation
func resetLogger() {
	_ = Init(Options{})
}

func initBuffer(t *testing.T, opts Options) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	opts.Output = buf
	if err := Init(opts); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(resetLogger)
	return buf
}

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		logged   []string
		filtered []string
	}{
		{
			name:     "default is info",
			opts:     Options{},
			logged:   []string{"info msg", "warn msg", "error msg"},
			filtered: []string{"debug msg"},
		},
		{
			name:   "debug",
			opts:   Options{Debug: true},
			logged: []string{"debug msg", "info msg", "warn msg", "error msg"},
		},
		{
			name:     "quiet",
			opts:     Options{Quiet: true},
			logged:   []string{"error msg"},
			filtered: []string{"debug msg", "info msg", "warn msg"},
		},
		{
			name:     "quiet overrides debug",
			opts:     Options{Debug: true, Quiet: true},
			logged:   []string{"error msg"},
			filtered: []string{"debug msg", "info msg"},
		},
		{
			name:     "explicit level overrides debug",
			opts:     Options{Debug: true, Level: "warn"},
			logged:   []string{"warn msg", "error msg"},
			filtered: []string{"debug msg", "info msg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := initBuffer(t, tt.opts)

			Debug("debug msg")
			Info("info msg")
			Warn("warn msg")
			Error("error msg")

			output := buf.String()
			for _, want := range tt.logged {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q to be logged, got %q", want, output)
				}
			}
			for _, bad := range tt.filtered {
				if strings.Contains(output, bad) {
					t.Errorf("expected %q to be filtered, got %q", bad, output)
				}
			}
		})
	}
}

func TestInit_UnknownLevel(t *testing.T) {
	defer resetLogger()
	if err := Init(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := initBuffer(t, Options{JSON: true})

	Info("test message")

	output := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("expected JSON output, got %q", output)
	}
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Errorf("JSON output should contain the message, got %q", output)
	}
}

func TestInit_TextFormat(t *testing.T) {
	buf := initBuffer(t, Options{})

	Info("test message")

	output := buf.String()
	if !strings.Contains(output, "level=INFO") {
		t.Errorf("text output should contain level=INFO, got %q", output)
	}
}

func TestInit_CustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, nil))
	if err := Init(Options{Logger: custom, Quiet: true}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer resetLogger()

	if Get() != custom {
		t.Error("Get() should return the custom logger")
	}
	Info("through custom")
	if !strings.Contains(buf.String(), "through custom") {
		t.Error("custom logger ignored its own level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if err != nil {
				t.Fatalf("ParseLevel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWith_ReturnsLoggerWithAttrs(t *testing.T) {
	buf := initBuffer(t, Options{})

	With("component", "server").Info("test with attrs")

	output := buf.String()
	if !strings.Contains(output, "component=server") {
		t.Errorf("expected attributes in output, got %q", output)
	}
}

func TestStdLogger(t *testing.T) {
	buf := initBuffer(t, Options{})

	StdLogger(slog.LevelError).Print("tls handshake error")

	output := buf.String()
	if !strings.Contains(output, "tls handshake error") || !strings.Contains(output, "level=ERROR") {
		t.Errorf("expected error-level record, got %q", output)
	}
}

func TestContextHelpers(t *testing.T) {
	buf := initBuffer(t, Options{Debug: true})
	ctx := context.Background()

	DebugContext(ctx, "debug with context")
	InfoContext(ctx, "info with context")
	WarnContext(ctx, "warn with context")
	ErrorContext(ctx, "error with context")

	for _, want := range []string{"debug with context", "info with context", "warn with context", "error with context"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestInfo_WithStructuredArgs(t *testing.T) {
	buf := initBuffer(t, Options{})

	Info("structured log", "count", 42, "name", "test")

	output := buf.String()
	if !strings.Contains(output, "count=42") || !strings.Contains(output, "name=test") {
		t.Errorf("expected structured attributes, got %q", output)
	}
}
