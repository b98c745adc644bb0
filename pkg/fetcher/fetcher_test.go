package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticFetch(t *testing.T) {
	var gotUA, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotHeader = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head><title> Release Notes </title></head><body><p>New things.</p></body></html>"))
	}))
	defer srv.Close()

	f := NewStatic(Options{Headers: map[string]string{"X-Test": "yes"}})
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if page.Title != "Release Notes" {
		t.Errorf("Title = %q", page.Title)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", page.StatusCode)
	}
	if !strings.Contains(page.HTML, "New things.") {
		t.Errorf("HTML missing body: %q", page.HTML)
	}
	if !strings.HasPrefix(gotUA, "narrate/") {
		t.Errorf("User-Agent = %q, want narrate/...", gotUA)
	}
	if gotHeader != "yes" {
		t.Errorf("custom header not sent")
	}
}

func TestStaticFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ctype   string
		status  int
		body    string
		wantErr error
	}{
		{"not html", "application/pdf", http.StatusOK, "%PDF-1.7", ErrNotHTML},
		{"cloudflare", "text/html", http.StatusOK, "<title>Just a moment...</title>", ErrAntiBot},
		{"not found", "text/html", http.StatusNotFound, "gone", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewStatic(Options{}).Fetch(context.Background(), srv.URL)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		title string
		html  string
		want  string
	}{
		{"Just a moment...", "", "cloudflare"},
		{"", `<div class="cf-turnstile"></div>`, "cloudflare-turnstile"},
		{"", `<div class="h-captcha"></div>`, "hcaptcha"},
		{"", `<script src="https://www.google.com/recaptcha/api.js">`, "recaptcha"},
		{"Access Denied", "", "anti-bot"},
		{"Blocked roads in winter", "<p>travel news</p>", ""},
		{"Docs", "<p>hello</p>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title+tt.want, func(t *testing.T) {
			if got := detectChallenge(tt.title, tt.html); got != tt.want {
				t.Errorf("detectChallenge(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	static := New(false, Options{})
	if static.Type() != "static" {
		t.Errorf("Type() = %q", static.Type())
	}

	dynamic := New(true, Options{})
	defer dynamic.Close()
	if dynamic.Type() != "dynamic" {
		t.Errorf("Type() = %q", dynamic.Type())
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Timeout != DefaultTimeout || o.UserAgent == "" {
		t.Errorf("unexpected defaults %+v", o)
	}
}
