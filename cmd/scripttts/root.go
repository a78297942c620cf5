package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-script-tts/internal/config"
	"github.com/example/go-script-tts/internal/telemetry"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile   string
	activeCfg config.Config
	loaded    bool

	telemetryShutdown telemetry.ShutdownFunc
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "scripttts",
		Short:         "Compile annotated text scripts into spoken audio files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				EnvFile:    ".env",
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = cfg
			loaded = true
			setupLogger(cfg.LogLevel)

			shutdown, err := telemetry.Setup(cmd.Context(), cfg.Telemetry, telemetry.Options{
				Version: version,
				Logger:  slog.Default(),
			})
			if err != nil {
				return err
			}
			telemetryShutdown = shutdown

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newSegmentsCmd())
	cmd.AddCommand(newVoicesCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if !loaded {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

func shutdownTelemetry(ctx context.Context) error {
	if telemetryShutdown == nil {
		return nil
	}
	err := telemetryShutdown(ctx)
	telemetryShutdown = nil

	return err
}
