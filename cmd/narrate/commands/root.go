// Package commands implements the CLI commands for narrate.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/narrate/internal/config"
	"github.com/jmylchreest/narrate/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "narrate",
	Short: "Read text aloud, skipping the parts nobody wants to hear",
	Long: `Narrate turns chat answers, READMEs, shell transcripts and web pages
into speakable text and reads it aloud through a local speech synthesizer.

Code blocks, markup, URLs and file paths are removed or replaced with
short phrases; shell commands are paraphrased and code comments are kept.

Examples:
  # Run the speech server (HTTPS when cert.pem/key.pem exist)
  narrate serve

  # Speak a file, starting the server if needed
  narrate speak notes.md --start

  # Speak whatever is on the clipboard
  narrate speak --clipboard

  # See what the cleaner would say, stage by stage
  narrate clean README.md --stages`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log.json"),
			Level: viper.GetString("log.level"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.narrate.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.json", flags.Lookup("log-json"))

	config.SetDefaults(viper.GetViper())
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".narrate")
		viper.SetConfigType("yaml")
	}

	config.ConfigureEnv(viper.GetViper())

	// A missing config file is fine; defaults apply.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && viper.GetString("config") != "" {
			logError("reading config: %v", err)
		}
	}
}

// loadConfig decodes and validates the merged configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "file", used)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
