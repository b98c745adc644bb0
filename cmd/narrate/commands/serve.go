package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/narrate/internal/inbox"
	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/internal/observe"
	"github.com/jmylchreest/narrate/internal/server"
	"github.com/jmylchreest/narrate/internal/version"
	"github.com/jmylchreest/narrate/pkg/cleaner/speech"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the speech server",
	Long: `Run the HTTP server that cleans, synthesizes and plays text.

POST /speak with {"text": "..."} to speak. When the inbox file exists its
content is spoken instead of the request body, and the file is removed.

The server uses HTTPS when the certificate and key files exist and falls
back to plain HTTP otherwise.

Examples:
  narrate serve
  narrate serve --port 5003 --no-save
  NARRATE_SYNTH_BACKEND=openai narrate serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("host", "", "listen address (default 127.0.0.1)")
	flags.Int("port", 0, "listen port (default 5002)")
	flags.String("cert", "", "TLS certificate file (default cert.pem)")
	flags.String("key", "", "TLS key file (default key.pem)")
	flags.Bool("no-save", false, "do not save audio and text files")
	flags.Bool("no-play", false, "synthesize without playing")
	flags.Bool("no-clean", false, "speak text as received")
	flags.String("backend", "", "synthesis backend: piper, openai")
	flags.String("model", "", "piper voice model (.onnx)")
	flags.String("out-dir", "", "directory for saved files (default .)")

	_ = viper.BindPFlag("server.host", flags.Lookup("host"))
	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("server.cert_file", flags.Lookup("cert"))
	_ = viper.BindPFlag("server.key_file", flags.Lookup("key"))
	_ = viper.BindPFlag("synth.backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("synth.piper.model", flags.Lookup("model"))
	_ = viper.BindPFlag("archive.dir", flags.Lookup("out-dir"))
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if noSave, _ := flags.GetBool("no-save"); noSave {
		viper.Set("archive.enabled", false)
	}
	if noPlay, _ := flags.GetBool("no-play"); noPlay {
		viper.Set("playback.enabled", false)
	}
	if noClean, _ := flags.GetBool("no-clean"); noClean {
		viper.Set("cleaning.enabled", false)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var provider *observe.Provider
	if cfg.Metrics.Enabled {
		provider, err = observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version.String()})
		if err != nil {
			return err
		}
	}

	opts := server.Options{
		Addr:           cfg.Server.Addr(),
		CertFile:       cfg.Server.CertFile,
		KeyFile:        cfg.Server.KeyFile,
		RequestTimeout: cfg.Server.RequestTimeout,
		Inbox:          inbox.New(cfg.Inbox.Path),
		Pipeline:       speech.New(&cfg.Cleaning.Speech),
	}
	opts.MaxBodyBytes, _ = cfg.Server.MaxBodyBytes()
	if provider != nil {
		opts.Metrics = provider.Metrics
		opts.MetricsHandler = provider.Handler()
	}

	svc, err := newSpeaker(cfg, opts.Metrics)
	if err != nil {
		logger.Error("failed to set up speaker", "error", err)
		return err
	}

	logger.Info("narrate server starting",
		"version", version.String(),
		"backend", cfg.Synth.Backend,
		"playback", cfg.Playback.Enabled,
		"archive", cfg.Archive.Enabled,
		"cleaning", cfg.Cleaning.Enabled,
		"inbox", cfg.Inbox.Path)

	srv := server.New(svc, opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	if provider != nil {
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return provider.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
