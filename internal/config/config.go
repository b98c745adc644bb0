// Package config loads narrate's configuration from defaults, the config
// file, NARRATE_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/narrate/pkg/cleaner/speech"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "NARRATE"

// Config is the full narrate configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Synth    SynthConfig    `mapstructure:"synth" yaml:"synth"`
	Playback PlaybackConfig `mapstructure:"playback" yaml:"playback"`
	Archive  ArchiveConfig  `mapstructure:"archive" yaml:"archive"`
	Inbox    InboxConfig    `mapstructure:"inbox" yaml:"inbox"`
	Cleaning CleaningConfig `mapstructure:"cleaning" yaml:"cleaning"`
	Client   ClientConfig   `mapstructure:"client" yaml:"client"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host" validate:"required"`
	Port           int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	CertFile       string        `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile        string        `mapstructure:"key_file" yaml:"key_file"`
	MaxBody        string        `mapstructure:"max_body" yaml:"max_body" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gt=0"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// MaxBodyBytes parses MaxBody ("1MB", "512 KiB").
func (s ServerConfig) MaxBodyBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxBody)
	if err != nil {
		return 0, fmt.Errorf("config: server.max_body: %w", err)
	}
	return int64(n), nil
}

// SynthConfig selects and configures the speech synthesis backend.
type SynthConfig struct {
	Backend string       `mapstructure:"backend" yaml:"backend" validate:"oneof=piper openai"`
	Piper   PiperConfig  `mapstructure:"piper" yaml:"piper"`
	OpenAI  OpenAIConfig `mapstructure:"openai" yaml:"openai"`
}

// PiperConfig configures the local piper-tts process.
type PiperConfig struct {
	Binary     string `mapstructure:"binary" yaml:"binary" validate:"required"`
	Model      string `mapstructure:"model" yaml:"model"`
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate" validate:"gt=0"`
}

// OpenAIConfig configures the OpenAI speech endpoint.
type OpenAIConfig struct {
	APIKey  string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string  `mapstructure:"base_url" yaml:"base_url"`
	Model   string  `mapstructure:"model" yaml:"model" validate:"required"`
	Voice   string  `mapstructure:"voice" yaml:"voice" validate:"required"`
	Speed   float64 `mapstructure:"speed" yaml:"speed" validate:"gte=0.25,lte=4"`
}

// PlaybackConfig configures the audio player process.
type PlaybackConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Command string `mapstructure:"command" yaml:"command" validate:"required_if=Enabled true"`
}

// ArchiveConfig configures saving of audio and original text.
type ArchiveConfig struct {
	Enabled    bool     `mapstructure:"enabled" yaml:"enabled"`
	Dir        string   `mapstructure:"dir" yaml:"dir" validate:"required_if=Enabled true"`
	MinWordLen int      `mapstructure:"min_word_len" yaml:"min_word_len" validate:"gte=0"`
	MaxLength  int      `mapstructure:"max_length" yaml:"max_length" validate:"gt=0"`
	Stopwords  []string `mapstructure:"stopwords" yaml:"stopwords"`
}

// InboxConfig locates the pre-staged text handoff file.
type InboxConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// CleaningConfig toggles the speech pipeline.
type CleaningConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Speech  speech.Config `mapstructure:"speech" yaml:"speech"`
}

// ClientConfig configures the trigger client.
type ClientConfig struct {
	Wait time.Duration `mapstructure:"wait" yaml:"wait" validate:"gte=0"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5002)
	v.SetDefault("server.cert_file", "cert.pem")
	v.SetDefault("server.key_file", "key.pem")
	v.SetDefault("server.max_body", "1MB")
	v.SetDefault("server.request_timeout", 2*time.Minute)

	v.SetDefault("synth.backend", "piper")
	v.SetDefault("synth.piper.binary", "piper-tts")
	v.SetDefault("synth.piper.model", "de_DE-kerstin-low.onnx")
	v.SetDefault("synth.piper.sample_rate", 22050)
	v.SetDefault("synth.openai.model", "tts-1")
	v.SetDefault("synth.openai.voice", "alloy")
	v.SetDefault("synth.openai.speed", 1.0)

	v.SetDefault("playback.enabled", true)
	v.SetDefault("playback.command", "aplay")

	v.SetDefault("archive.enabled", true)
	v.SetDefault("archive.dir", ".")
	v.SetDefault("archive.min_word_len", 5)
	v.SetDefault("archive.max_length", 80)
	v.SetDefault("archive.stopwords", []string{"das", "ist", "ein", "mit", "und", "a", "is", "with", "the"})

	v.SetDefault("inbox.path", "/tmp/speak_server_input.txt")

	sc := speech.DefaultConfig()
	v.SetDefault("cleaning.enabled", true)
	v.SetDefault("cleaning.speech.shell_languages", sc.ShellLanguages)
	v.SetDefault("cleaning.speech.copy_guard_start", sc.CopyGuardStart)
	v.SetDefault("cleaning.speech.copy_guard_end", sc.CopyGuardEnd)
	v.SetDefault("cleaning.speech.min_comment_chars", sc.MinCommentChars)
	v.SetDefault("cleaning.speech.max_call_words", sc.MaxCallWords)

	v.SetDefault("client.wait", 10*time.Second)

	v.SetDefault("metrics.enabled", true)
}

// ConfigureEnv makes v read NARRATE_SERVER_PORT style variables and binds
// the usual OpenAI key variable.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("synth.openai.api_key", EnvPrefix+"_SYNTH_OPENAI_API_KEY", "OPENAI_API_KEY")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Server.MaxBodyBytes(); err != nil {
		return err
	}
	if c.Synth.Backend == "piper" && c.Synth.Piper.Model == "" {
		return errors.New("config: synth.piper.model is required for the piper backend")
	}
	return nil
}
