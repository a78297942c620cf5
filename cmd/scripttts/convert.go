package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-script-tts/internal/audio"
	"github.com/example/go-script-tts/internal/batch"
	"github.com/example/go-script-tts/internal/config"
	"github.com/example/go-script-tts/internal/pipeline"
	"github.com/example/go-script-tts/internal/tts"
	"github.com/spf13/cobra"
)

const ffmpegInstallHint = `ffmpeg is needed for mp3 output.
Install it with:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg
  macOS:         brew install ffmpeg
  Windows:       https://ffmpeg.org/download.html`

func newConvertCmd() *cobra.Command {
	var report string

	cmd := &cobra.Command{
		Use:   "convert [script...]",
		Short: "Convert scripts into audio files",
		Long: `Without arguments, convert every script in the scripts directory that has
no audio file yet. With arguments, convert exactly the given scripts and
overwrite their audio files.

A script counts as converted when an audio file with the configured output
format exists next to it. The default format is wav, so scripts that only
have an .mp3 from an earlier run are converted again unless --format mp3
(or output.format: mp3) is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if report != "" && report != "table" && report != "json" {
				return fmt.Errorf("--report must be 'table' or 'json'")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conv, err := buildConverter(cfg, slog.Default())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var sum batch.Summary
			if len(args) > 0 {
				sum, err = convertDocuments(ctx, conv, args, out)
			} else {
				driver := &batch.Driver{
					Dir:       cfg.Scripts.Dir,
					Patterns:  cfg.Scripts.Patterns,
					Format:    conv.Settings().Format,
					Voice:     conv.Settings().Voice,
					Converter: conv,
					Out:       out,
					Logger:    slog.Default().With(slog.String("component", "batch")),
				}
				sum, err = driver.Run(ctx)
			}
			if err != nil {
				return err
			}

			switch report {
			case "table":
				batch.WriteTable(out, sum)
			case "json":
				if err := batch.WriteJSON(out, sum); err != nil {
					return err
				}
			}

			if sum.Failed > 0 {
				return fmt.Errorf("%d document(s) failed", sum.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&report, "report", "", "Print a run report after converting: table|json")

	return cmd
}

// buildConverter wires the configured provider and ffmpeg into a converter.
// ffmpeg is mandatory only for non-WAV output; otherwise it is used when
// present to decode non-WAV includes.
func buildConverter(cfg config.Config, logger *slog.Logger) (*pipeline.Converter, error) {
	settings := cfg.PipelineSettings()
	format, err := audio.NormalizeFormat(settings.Format)
	if err != nil {
		return nil, err
	}
	settings.Format = format

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	ff, ffErr := audio.LookupFFmpeg(cfg.FFmpeg.Path)
	switch {
	case ffErr == nil:
		opts = append(opts, pipeline.WithFileDecoder(ff), pipeline.WithTranscoder(ff))
	case format != audio.FormatWAV:
		return nil, fmt.Errorf("%w\n%s", ffErr, ffmpegInstallHint)
	default:
		logger.Debug("ffmpeg not found, non-WAV includes will be skipped", slog.String("error", ffErr.Error()))
	}

	var providerOpts []tts.OpenAIOption
	if cfg.TTS.BaseURL != "" {
		providerOpts = append(providerOpts, tts.WithBaseURL(cfg.TTS.BaseURL))
	}
	provider, err := tts.NewOpenAI(cfg.TTS.APIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w (set OPENAI_API_KEY)", err)
	}

	return pipeline.NewConverter(settings, provider, opts...)
}

// convertDocuments converts explicitly named documents, overwriting any
// existing output.
func convertDocuments(ctx context.Context, conv *pipeline.Converter, docs []string, out io.Writer) (batch.Summary, error) {
	sum := batch.Summary{Candidates: len(docs)}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fmt.Fprintf(out, "[%d/%d] Converting: %s\n", i+1, len(docs), doc)
		start := time.Now()
		res, err := conv.Convert(ctx, doc)
		rec := batch.Record{Document: doc, Chunks: res.Chunks, Elapsed: time.Since(start)}
		switch {
		case err == nil:
			sum.Converted++
			rec.Status = batch.StatusConverted
			rec.Output = res.Output
			fmt.Fprintf(out, "  - wrote: %s\n", res.Output)
		case errors.Is(err, pipeline.ErrEmptyDocument):
			sum.Empty++
			rec.Status = batch.StatusEmpty
			fmt.Fprintln(out, "  - document is empty, skipping")
		case ctx.Err() != nil:
			return sum, ctx.Err()
		default:
			sum.Failed++
			rec.Status = batch.StatusFailed
			rec.Err = err
			fmt.Fprintf(out, "  - ERROR: %v\n", err)
		}
		sum.Records = append(sum.Records, rec)
	}

	return sum, nil
}
