package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/narrate/internal/logger"
	"github.com/jmylchreest/narrate/internal/output"
	"github.com/jmylchreest/narrate/pkg/cleaner"
	"github.com/jmylchreest/narrate/pkg/cleaner/speech"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file...]",
	Short: "Print the speakable text for files or stdin",
	Long: `Run the speech cleaning pipeline locally and print what would be spoken.

With no file, or "-", the text is read from stdin. Nothing is synthesized.

Examples:
  narrate clean answer.md
  pbpaste | narrate clean --stages
  narrate clean page.html --html --format json`,
	RunE: runClean,
}

// cleanRecord is one cleaned input.
type cleanRecord struct {
	Source string              `json:"source" yaml:"source"`
	Spoken string              `json:"text" yaml:"text"`
	Stages []speech.StageStats `json:"stages,omitempty" yaml:"stages,omitempty"`

	summary string
}

// Text implements output.Texter.
func (r cleanRecord) Text() string {
	if r.summary == "" {
		return r.Spoken
	}
	return r.summary + "\n" + r.Spoken
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.Bool("stages", false, "include per-stage statistics")
	flags.String("format", "text", "output format: text, json, jsonl, yaml")
	flags.Bool("html", false, "treat input as HTML and convert it to markdown first")
	flags.Bool("readable", false, "with --html, keep only the main article")
	flags.String("selector", "", "with --html, only narrate the first element matching this CSS selector")
}

func runClean(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	withStages, _ := flags.GetBool("stages")
	formatName, _ := flags.GetString("format")
	asHTML, _ := flags.GetBool("html")
	selector, _ := flags.GetString("selector")
	readable, _ := flags.GetBool("readable")

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	// Clean honours the speech settings but never the cleaning.enabled switch.
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pipeline := speech.New(&cfg.Cleaning.Speech)

	var pre cleaner.Cleaner = cleaner.NewNoop()
	if asHTML {
		pre = htmlIngest("", selector, readable)
	}

	if len(args) == 0 {
		args = []string{"-"}
	}

	w, err := output.NewWriter(cmd.OutOrStdout(), format)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, src := range args {
		raw, err := readInput(cmd.InOrStdin(), src)
		if err != nil {
			logger.Error("failed to read input", "source", src, "error", err)
			return err
		}

		raw, err = pre.Clean(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}

		result, err := pipeline.CleanWithStats(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
		if !result.Speakable() {
			logger.Warn("nothing speakable", "source", src)
		}

		rec := cleanRecord{Source: src, Spoken: result.Content}
		if withStages {
			rec.Stages = result.Stages
			rec.summary = strings.TrimRight(result.String(), "\n")
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	return w.Flush()
}

// readInput reads a file, or r when name is "-".
func readInput(r io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(r)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}
