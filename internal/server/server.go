// Package server exposes the speaker over HTTP.
//
// Routes:
//
//	POST /speak    speak staged inbox text, or {"text": "..."} from the body
//	HEAD /speak    readiness probe used by the trigger client
//	POST /clean    run the speech pipeline without speaking
//	GET  /healthz  liveness
//	GET  /version  build information
//	GET  /metrics  Prometheus scrape, when enabled
//
// All routes allow cross-origin requests so browser userscripts can post
// selected text from any page.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/jmylchreest/narrate/internal/inbox"
	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/internal/observe"
	"github.com/jmylchreest/narrate/internal/speaker"
	"github.com/jmylchreest/narrate/pkg/cleaner/speech"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr     string
	CertFile string
	KeyFile  string

	// MaxBodyBytes limits request bodies. Zero means 1MB.
	MaxBodyBytes int64
	// RequestTimeout bounds synthesis and playback of one request.
	// Zero means no limit beyond the client connection.
	RequestTimeout time.Duration

	// Inbox, when set, is checked before the request body on POST /speak.
	Inbox *inbox.Inbox
	// Pipeline serves POST /clean. Nil uses the default speech pipeline.
	Pipeline *speech.Pipeline

	// Metrics records request latency. Nil disables recording.
	Metrics *observe.Metrics
	// MetricsHandler serves GET /metrics. Nil leaves the route out.
	MetricsHandler http.Handler
}

// Server is the narrate HTTP server.
type Server struct {
	speaker *speaker.Service
	opts    Options
	handler http.Handler
}

// New creates a Server for svc.
func New(svc *speaker.Service, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Pipeline == nil {
		opts.Pipeline = speech.New(nil)
	}
	s := &Server{speaker: svc, opts: opts}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/speak", s.handleSpeak).Methods(http.MethodPost)
	router.HandleFunc("/speak", s.handleReady).Methods(http.MethodHead)
	router.HandleFunc("/clean", s.handleClean).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	if s.opts.MetricsHandler != nil {
		router.Handle("/metrics", s.opts.MetricsHandler).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(observe.Middleware(s.opts.Metrics)(router))
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// TLSEnabled reports whether both certificate files exist.
func (s *Server) TLSEnabled() bool {
	return s.opts.CertFile != "" && s.opts.KeyFile != "" &&
		fileExists(s.opts.CertFile) && fileExists(s.opts.KeyFile)
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. It serves HTTPS when the
// certificate and key exist and falls back to plain HTTP with a warning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          logger.StdLogger(slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	tls := s.TLSEnabled()
	errCh := make(chan error, 1)
	go func() {
		if tls {
			logger.Info("server listening", "url", "https://"+ln.Addr().String())
			errCh <- srv.ServeTLS(ln, s.opts.CertFile, s.opts.KeyFile)
			return
		}
		if s.opts.CertFile != "" || s.opts.KeyFile != "" {
			logger.Warn("certificate files not found, serving unencrypted",
				"cert", s.opts.CertFile, "key", s.opts.KeyFile)
		}
		logger.Info("server listening", "url", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
