package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/example/go-script-tts/internal/audio"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errNoSamples = errors.New("decoded to no audio samples")

// AssembleOptions configures Assemble.
type AssembleOptions struct {
	// Format is the output container (audio.FormatWAV or audio.FormatMP3).
	Format string
	// ScratchDir is removed after assembly once it is empty.
	ScratchDir string
	// Decoder is tried for external files that are not pipeline-format WAV.
	Decoder audio.FileDecoder
	// Transcoder converts the merged WAV when Format is not WAV.
	Transcoder audio.Transcoder
	Logger     *slog.Logger
}

// Assemble merges the slots in order into one file at out and returns the
// external references that were skipped because they could not be decoded.
//
// The final name only appears once the file is complete. On success every
// transient artifact is deleted; on failure they are left in place.
func Assemble(ctx context.Context, slots []Slot, out string, opts AssembleOptions) ([]string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.assemble", trace.WithAttributes(
		attribute.String("output", out),
	))
	defer span.End()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var flat []Artifact
	for _, slot := range slots {
		flat = append(flat, slot...)
	}
	span.SetAttributes(attribute.Int("artifacts", len(flat)))

	if len(flat) == 0 {
		return nil, ErrEmptyDocument
	}

	format := opts.Format
	if format == "" {
		format = audio.FormatWAV
	}

	if len(flat) == 1 && flat[0].Transient() && format == audio.FormatWAV {
		if err := os.Rename(flat[0].Path, out); err != nil {
			return nil, fmt.Errorf("move %s to %s: %w", flat[0].Path, out, err)
		}
		removeScratch(opts.ScratchDir, logger)

		return nil, nil
	}

	var (
		tracks  [][]float32
		skipped []string
	)
	for _, a := range flat {
		if err := ctx.Err(); err != nil {
			return skipped, err
		}

		if a.Transient() {
			samples, err := audio.DecodeWAVFile(a.Path)
			if err != nil {
				return skipped, fmt.Errorf("%s artifact: %w", a.Origin, err)
			}
			if len(samples) == 0 && a.Origin == Synthesized {
				return skipped, fmt.Errorf("%s artifact %s: %w", a.Origin, a.Path, errNoSamples)
			}
			tracks = append(tracks, samples)
			continue
		}

		samples, err := decodeExternal(ctx, a.Path, opts.Decoder)
		if err != nil {
			logger.Warn("skipping undecodable include", slog.String("path", a.Path), slog.String("error", err.Error()))
			skipped = append(skipped, a.Path)
			continue
		}
		tracks = append(tracks, samples)
	}

	if len(tracks) == 0 {
		return skipped, ErrEmptyDocument
	}

	data, err := audio.EncodeWAV(audio.Concat(tracks...))
	if err != nil {
		return skipped, fmt.Errorf("encode output: %w", err)
	}
	if format != audio.FormatWAV {
		if opts.Transcoder == nil {
			return skipped, fmt.Errorf("%w: no transcoder for %s output", audio.ErrMissingDependency, format)
		}
		data, err = opts.Transcoder.Transcode(ctx, data, format)
		if err != nil {
			return skipped, err
		}
	}

	if err := writeFileAtomic(out, data); err != nil {
		return skipped, err
	}

	for _, a := range flat {
		if !a.Transient() {
			continue
		}
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("remove artifact", slog.String("path", a.Path), slog.String("error", err.Error()))
		}
	}
	removeScratch(opts.ScratchDir, logger)

	return skipped, nil
}

func decodeExternal(ctx context.Context, path string, decoder audio.FileDecoder) ([]float32, error) {
	samples, err := audio.DecodeWAVFile(path)
	if err == nil {
		return samples, nil
	}
	if decoder == nil || errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return decoder.DecodeFile(ctx, path)
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".partial-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}

	return nil
}

func removeScratch(dir string, logger *slog.Logger) {
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil {
		logger.Debug("remove scratch dir", slog.String("dir", dir), slog.String("error", err.Error()))
	}
}
