package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/example/go-script-tts/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Scripts   ScriptsConfig   `mapstructure:"scripts"`
	TTS       TTSConfig       `mapstructure:"tts"`
	Output    OutputConfig    `mapstructure:"output"`
	FFmpeg    FFmpegConfig    `mapstructure:"ffmpeg"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ScriptsConfig struct {
	Dir      string   `mapstructure:"dir"`
	Patterns []string `mapstructure:"patterns"`
}

type TTSConfig struct {
	Voice         string `mapstructure:"voice"`
	Model         string `mapstructure:"model"`
	FallbackModel string `mapstructure:"fallback_model"`
	MaxChunkChars int    `mapstructure:"max_chunk_chars"`
	Concurrency   int    `mapstructure:"concurrency"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type FFmpegConfig struct {
	Path string `mapstructure:"path"`
}

type TelemetryConfig struct {
	Exporter     string `mapstructure:"exporter"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	// EnvFile is a dotenv file whose variables are exported before the
	// environment is read. Variables already set in the process win. A
	// missing file is ignored.
	EnvFile  string
	Defaults Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	settings := pipeline.DefaultSettings()

	return Config{
		LogLevel: "info",
		Scripts: ScriptsConfig{
			Dir:      "scripts",
			Patterns: []string{"*.md"},
		},
		TTS: TTSConfig{
			Voice:         settings.Voice,
			Model:         settings.PrimaryModel,
			FallbackModel: settings.FallbackModel,
			MaxChunkChars: settings.MaxChunkChars,
			Concurrency:   settings.Concurrency,
		},
		Output: OutputConfig{
			Format: settings.Format,
		},
		FFmpeg: FFmpegConfig{
			Path: "ffmpeg",
		},
		Telemetry: TelemetryConfig{
			Exporter: "none",
		},
	}
}

// flagKeys maps each command-line flag to its configuration key.
var flagKeys = map[string]string{
	"log-level":               "log_level",
	"scripts-dir":             "scripts.dir",
	"scripts-patterns":        "scripts.patterns",
	"voice":                   "tts.voice",
	"model":                   "tts.model",
	"fallback-model":          "tts.fallback_model",
	"max-chunk-chars":         "tts.max_chunk_chars",
	"concurrency":             "tts.concurrency",
	"base-url":                "tts.base_url",
	"format":                  "output.format",
	"ffmpeg-path":             "ffmpeg.path",
	"telemetry-exporter":      "telemetry.exporter",
	"telemetry-otlp-endpoint": "telemetry.otlp_endpoint",
	"telemetry-otlp-insecure": "telemetry.otlp_insecure",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("scripts-dir", defaults.Scripts.Dir, "Directory containing script documents")
	fs.StringSlice("scripts-patterns", defaults.Scripts.Patterns, "Glob patterns selecting script documents")
	fs.String("voice", defaults.TTS.Voice, "Provider voice")
	fs.String("model", defaults.TTS.Model, "Primary synthesis model")
	fs.String("fallback-model", defaults.TTS.FallbackModel, "Model retried once when the primary model is unavailable")
	fs.Int("max-chunk-chars", defaults.TTS.MaxChunkChars, "Maximum characters per provider request")
	fs.Int("concurrency", defaults.TTS.Concurrency, "Maximum in-flight provider requests")
	fs.String("base-url", defaults.TTS.BaseURL, "Override the provider API base URL")
	fs.String("format", defaults.Output.Format, "Output format (wav|mp3)")
	fs.String("ffmpeg-path", defaults.FFmpeg.Path, "ffmpeg executable name or path")
	fs.String("telemetry-exporter", defaults.Telemetry.Exporter, "Trace exporter (none|stdout|otlp)")
	fs.String("telemetry-otlp-endpoint", defaults.Telemetry.OTLPEndpoint, "OTLP gRPC collector endpoint")
	fs.Bool("telemetry-otlp-insecure", defaults.Telemetry.OTLPInsecure, "Disable TLS for the OTLP exporter")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	v.SetEnvPrefix("SCRIPTTTS")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("tts.api_key", "SCRIPTTTS_TTS_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind api key env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("scripttts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// PipelineSettings returns the conversion settings described by c.
func (c Config) PipelineSettings() pipeline.Settings {
	return pipeline.Settings{
		MaxChunkChars: c.TTS.MaxChunkChars,
		Concurrency:   c.TTS.Concurrency,
		Voice:         c.TTS.Voice,
		PrimaryModel:  c.TTS.Model,
		FallbackModel: c.TTS.FallbackModel,
		Format:        strings.ToLower(strings.TrimSpace(c.Output.Format)),
	}
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("scripts.dir", c.Scripts.Dir)
	v.SetDefault("scripts.patterns", c.Scripts.Patterns)
	v.SetDefault("tts.voice", c.TTS.Voice)
	v.SetDefault("tts.model", c.TTS.Model)
	v.SetDefault("tts.fallback_model", c.TTS.FallbackModel)
	v.SetDefault("tts.max_chunk_chars", c.TTS.MaxChunkChars)
	v.SetDefault("tts.concurrency", c.TTS.Concurrency)
	v.SetDefault("tts.api_key", c.TTS.APIKey)
	v.SetDefault("tts.base_url", c.TTS.BaseURL)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("ffmpeg.path", c.FFmpeg.Path)
	v.SetDefault("telemetry.exporter", c.Telemetry.Exporter)
	v.SetDefault("telemetry.otlp_endpoint", c.Telemetry.OTLPEndpoint)
	v.SetDefault("telemetry.otlp_insecure", c.Telemetry.OTLPInsecure)
}

// bindFlags binds registered flags under their nested keys. Flags that
// were never registered on fs are ignored.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	return nil
}
