package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/go-script-tts/internal/audio"
	"github.com/example/go-script-tts/internal/config"
	"github.com/example/go-script-tts/internal/doctor"
	"github.com/example/go-script-tts/internal/tts"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check ffmpeg, credentials and the scripts directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			format, err := audio.NormalizeFormat(cfg.Output.Format)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "output format: %s\n", format)

			result := doctor.Run(doctorConfig(cmd.Context(), cfg, format), w)

			if err := cfg.PipelineSettings().Validate(); err != nil {
				for _, line := range strings.Split(err.Error(), "\n") {
					result.AddFailure("settings: " + line)
					_, _ = fmt.Fprintf(w, "%s settings: %s\n", doctor.FailMark, line)
				}
			} else {
				_, _ = fmt.Fprintf(w, "%s settings: ok\n", doctor.PassMark)
			}

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(w, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

func doctorConfig(ctx context.Context, cfg config.Config, format string) doctor.Config {
	return doctor.Config{
		FFmpegVersion: func() (string, error) {
			return queryFFmpegVersion(ctx, cfg.FFmpeg.Path)
		},
		FFmpegRequired: format != audio.FormatWAV,
		APIKeySet:      strings.TrimSpace(cfg.TTS.APIKey) != "",
		Voice:          cfg.TTS.Voice,
		KnownVoice:     tts.KnownVoice,
		ScriptsDir:     cfg.Scripts.Dir,
	}
}

// queryFFmpegVersion resolves ffmpeg and returns the first line of
// `ffmpeg -version`.
func queryFFmpegVersion(ctx context.Context, exe string) (string, error) {
	ff, err := audio.LookupFFmpeg(exe)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return ff.Version(ctx)
}

