package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/narrate/internal/client"
	"github.com/jmylchreest/narrate/internal/inbox"
	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/pkg/fetcher"
)

var speakCmd = &cobra.Command{
	Use:   "speak [file]",
	Short: "Send text to the speech server",
	Long: `Stage text in the inbox file and ask the running server to speak it.

The text comes from a file, stdin ("-"), the clipboard or a web page. With no
input a short greeting is spoken. The server is tried over HTTPS first and
then plain HTTP; with --start a server is launched in the background when
none answers, logging to server.log.

Examples:
  narrate speak notes.md
  narrate speak --clipboard --start
  narrate speak --url https://go.dev/blog/ --selector article
  narrate speak --url https://example.com/app --dynamic --wait-for "#content"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)

	flags := speakCmd.Flags()
	flags.Bool("clipboard", false, "speak the clipboard contents")
	flags.StringP("url", "u", "", "fetch and speak a web page")
	flags.Bool("dynamic", false, "render the page in headless Chrome (with --url)")
	flags.String("selector", "", "only speak the first element matching this CSS selector (with --url)")
	flags.Bool("readable", true, "keep only the main article of the page (ignored with --selector)")
	flags.String("wait-for", "", "CSS selector to wait for before reading a dynamic page")
	flags.Duration("timeout", fetcher.DefaultTimeout, "page fetch timeout")
	flags.Bool("start", false, "start the server when it is not running")
	flags.Duration("wait", 0, "how long to wait for a started server (default 10s)")
	flags.String("server-log", "server.log", "log file for a started server")

	_ = viper.BindPFlag("client.wait", flags.Lookup("wait"))
}

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := speakInput(ctx, cmd, args)
	if err != nil {
		logger.Error("no input", "error", err)
		return err
	}
	if strings.TrimSpace(text) == "" {
		logInfo("Info: input is empty.")
	}

	opts := client.Options{
		Addr:  cfg.Server.Addr(),
		Inbox: inbox.New(cfg.Inbox.Path),
		Wait:  cfg.Client.Wait,
	}
	if start, _ := cmd.Flags().GetBool("start"); start {
		logPath, _ := cmd.Flags().GetString("server-log")
		opts.Start = func(context.Context) error {
			return startServer(logPath)
		}
	}

	resp, err := client.New(opts).Speak(ctx, text)
	if err != nil {
		if errors.Is(err, client.ErrUnreachable) {
			logError("no server at %s; run 'narrate serve' or pass --start", cfg.Server.Addr())
		}
		return err
	}

	logger.Debug("server response", "source", resp.Source, "played", resp.Played)
	if resp.FileSaved != "" {
		logInfo("Saved %s", resp.FileSaved)
	}
	return nil
}

// speakInput resolves the text to speak from flags and arguments.
func speakInput(ctx context.Context, cmd *cobra.Command, args []string) (string, error) {
	flags := cmd.Flags()
	useClipboard, _ := flags.GetBool("clipboard")
	pageURL, _ := flags.GetString("url")

	switch {
	case useClipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		return text, nil

	case pageURL != "":
		return fetchPage(ctx, cmd, pageURL)

	case len(args) == 1:
		text, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return "", err
		}
		if text == "" {
			logInfo("Info: file '%s' exists but is empty.", args[0])
		}
		return text, nil

	default:
		return client.DefaultMessage, nil
	}
}

// fetchPage downloads a page and converts its main content to markdown,
// which the server then cleans for speech.
func fetchPage(ctx context.Context, cmd *cobra.Command, pageURL string) (string, error) {
	flags := cmd.Flags()
	dynamic, _ := flags.GetBool("dynamic")
	selector, _ := flags.GetString("selector")
	waitFor, _ := flags.GetString("wait-for")
	timeout, _ := flags.GetDuration("timeout")

	f := fetcher.New(dynamic, fetcher.Options{
		Timeout:         timeout,
		WaitForSelector: waitFor,
	})
	defer f.Close()

	start := time.Now()
	page, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	logger.Info("page fetched",
		"url", page.URL,
		"title", page.Title,
		"mode", f.Type(),
		"duration", time.Since(start).Round(time.Millisecond))

	readable, _ := flags.GetBool("readable")
	md, err := htmlIngest(page.URL, selector, readable).Clean(page.HTML)
	if err != nil {
		return "", fmt.Errorf("convert page: %w", err)
	}
	if page.Title != "" && !strings.Contains(md, page.Title) {
		md = "# " + page.Title + "\n\n" + md
	}
	return md, nil
}

// startServer launches "narrate serve" in the background with the same
// config file.
func startServer(logPath string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	args := []string{"serve"}
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		abs, err := filepath.Abs(cfgFile)
		if err == nil {
			cfgFile = abs
		}
		args = append(args, "--config", cfgFile)
	}
	logInfo("Server not running. Starting it now (log: %s)...", logPath)
	return client.StartDetached(exe, args, logPath)
}
