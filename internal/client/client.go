// Package client implements the trigger side of narrate: it stages text in
// the inbox, finds the running server (HTTPS first, then HTTP), starts one
// if asked to, and requests playback.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/jmylchreest/narrate/internal/inbox"
	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/internal/version"
)

// DefaultMessage is spoken when the speak command is given no input.
const DefaultMessage = "Hello! You could also send text files to me."

const (
	probeTimeout  = time.Second
	probeInterval = 500 * time.Millisecond
)

// ErrUnreachable is returned when no server answers on either scheme.
var ErrUnreachable = errors.New("client: server unreachable")

// Response is the server's reply to POST /speak.
type Response struct {
	Status    string `json:"status"`
	FileSaved string `json:"file_saved"`
	Spoken    string `json:"spoken"`
	Source    string `json:"source"`
	Played    bool   `json:"played"`
	Message   string `json:"message,omitempty"`
}

// Options configures a Client.
type Options struct {
	// Addr is the server's host:port.
	Addr string
	// Inbox, when set, receives the text before the request is sent.
	Inbox *inbox.Inbox
	// Wait bounds how long to wait for a freshly started server.
	Wait time.Duration
	// Start launches a server when none is reachable. Nil disables starting.
	Start func(ctx context.Context) error
	// HTTPClient overrides the default client, which accepts the
	// self-signed localhost certificate.
	HTTPClient *http.Client
}

// Client talks to a narrate server.
type Client struct {
	opts Options
	http *http.Client
}

// New creates a Client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // localhost self-signed cert
			},
		}
	}
	return &Client{opts: opts, http: hc}
}

// Probe returns the base URL of a reachable server, trying HTTPS first.
func (c *Client) Probe(ctx context.Context) (string, error) {
	var lastErr error
	for _, scheme := range []string{"https", "http"} {
		base := scheme + "://" + c.opts.Addr
		if err := c.head(ctx, base+"/speak"); err != nil {
			logger.Debug("probe failed", "url", base, "error", err)
			lastErr = err
			continue
		}
		return base, nil
	}
	return "", fmt.Errorf("%w at %s: %v", ErrUnreachable, c.opts.Addr, lastErr)
}

func (c *Client) head(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WaitReady polls Probe until a server answers or Wait elapses.
func (c *Client) WaitReady(ctx context.Context) (string, error) {
	deadline := time.Now().Add(c.opts.Wait)
	for {
		base, err := c.Probe(ctx)
		if err == nil {
			return base, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("server did not become ready within %s: %w", c.opts.Wait, err)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(probeInterval):
		}
	}
}

// Speak asks the server to speak text, starting the server first when it
// is unreachable and Start is set. The text is staged in the inbox only once
// a server answers, so a failed call leaves nothing behind for the next
// request to pick up.
func (c *Client) Speak(ctx context.Context, text string) (*Response, error) {
	base, err := c.Probe(ctx)
	if err != nil {
		if c.opts.Start == nil {
			return nil, err
		}
		logger.Info("server not running, starting it", "addr", c.opts.Addr)
		if err := c.opts.Start(ctx); err != nil {
			return nil, fmt.Errorf("client: start server: %w", err)
		}
		if base, err = c.WaitReady(ctx); err != nil {
			return nil, err
		}
	}

	if c.opts.Inbox != nil {
		if err := c.opts.Inbox.Put(text); err != nil {
			return nil, err
		}
	}

	logger.Debug("sending speak request", "url", base)
	resp, err := c.post(ctx, base+"/speak", text)
	if err != nil && resp == nil {
		c.discardStaged()
	}
	return resp, err
}

// discardStaged removes staged text the server never consumed.
func (c *Client) discardStaged() {
	if c.opts.Inbox == nil {
		return
	}
	if _, err := c.opts.Inbox.Take(); err == nil {
		logger.Debug("discarded staged text", "path", c.opts.Inbox.Path())
	}
}

func (c *Client) post(ctx context.Context, url, text string) (*Response, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: speak request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("client: decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &out, fmt.Errorf("client: server returned %d: %s", resp.StatusCode, out.Message)
	}
	return &out, nil
}

// StartDetached runs name with args in the background, sending its output
// to logPath. The process outlives the caller.
func StartDetached(name string, args []string, logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	cmd := exec.Command(name, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		return err
	}
	logger.Debug("started server", "pid", cmd.Process.Pid, "log", logPath)
	return cmd.Process.Release()
}
