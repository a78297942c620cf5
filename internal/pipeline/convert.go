package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-script-tts/internal/audio"
	"github.com/example/go-script-tts/internal/script"
	"github.com/example/go-script-tts/internal/text"
	"github.com/example/go-script-tts/internal/tts"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/example/go-script-tts/internal/pipeline")

// ErrEmptyDocument is returned when a document has nothing to convert.
var ErrEmptyDocument = errors.New("document has no usable content")

// Result describes a finished conversion.
type Result struct {
	Output   string
	Segments script.Counts
	Chunks   int
	// Skipped lists include references that were missing or undecodable.
	Skipped []string
}

// Converter turns script files into audio files. One Converter may convert
// many documents, one at a time.
type Converter struct {
	settings   Settings
	provider   tts.Provider
	decoder    audio.FileDecoder
	transcoder audio.Transcoder
	logger     *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithFileDecoder sets the decoder used for includes that are not
// pipeline-format WAV.
func WithFileDecoder(d audio.FileDecoder) Option {
	return func(c *Converter) { c.decoder = d }
}

// WithTranscoder sets the transcoder for non-WAV output formats.
func WithTranscoder(t audio.Transcoder) Option {
	return func(c *Converter) { c.transcoder = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// NewConverter validates settings and builds a Converter.
func NewConverter(settings Settings, provider tts.Provider, opts ...Option) (*Converter, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	format, err := audio.NormalizeFormat(settings.Format)
	if err != nil {
		return nil, err
	}
	settings.Format = format
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	c := &Converter{
		settings: settings,
		provider: provider,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if settings.Format != audio.FormatWAV && c.transcoder == nil {
		return nil, fmt.Errorf("%w: %s output needs a transcoder (ffmpeg)", audio.ErrMissingDependency, settings.Format)
	}
	c.logger = c.logger.With(slog.String("component", "converter"))

	return c, nil
}

// Settings returns the converter's settings.
func (c *Converter) Settings() Settings { return c.settings }

// OutputPath returns the output file for docPath: same directory and base
// name, with the format as extension.
func OutputPath(docPath, format string) string {
	return strings.TrimSuffix(docPath, filepath.Ext(docPath)) + "." + format
}

// Convert compiles the document at docPath into OutputPath(docPath).
//
// Returns ErrEmptyDocument when nothing usable remains. A provider failure
// aborts the whole document and no output is written; scratch artifacts of
// a failed or cancelled conversion are left behind.
func (c *Converter) Convert(ctx context.Context, docPath string) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "pipeline.convert", trace.WithAttributes(
		attribute.String("document", docPath),
	))
	defer func() {
		if err != nil && !errors.Is(err, ErrEmptyDocument) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	raw, err := os.ReadFile(docPath)
	if err != nil {
		return Result{}, fmt.Errorf("read document: %w", err)
	}

	doc, err := text.NormalizeDocument(string(raw))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEmptyDocument, err)
	}

	segments := script.Parse(doc)
	res.Segments = script.Count(segments)
	if len(segments) == 0 {
		return res, ErrEmptyDocument
	}
	span.SetAttributes(attribute.Int("segments", len(segments)))

	res.Output = OutputPath(docPath, c.settings.Format)
	logger := c.logger.With(slog.String("document", filepath.Base(docPath)))
	logger.Info("parsed document",
		slog.Int("speech", res.Segments.Speech),
		slog.Int("pauses", res.Segments.Silence),
		slog.Int("includes", res.Segments.Includes),
	)

	work := newScratch(filepath.Dir(res.Output))
	slots, chunks, skipped, err := c.produce(ctx, filepath.Dir(docPath), segments, work, logger)
	res.Chunks = chunks
	res.Skipped = skipped
	if err != nil {
		if work.created {
			logger.Warn("conversion aborted, scratch artifacts left in place", slog.String("scratch", work.dir))
		}
		return res, err
	}

	undecodable, err := Assemble(ctx, slots, res.Output, AssembleOptions{
		Format:     c.settings.Format,
		ScratchDir: work.dir,
		Decoder:    c.decoder,
		Transcoder: c.transcoder,
		Logger:     logger,
	})
	res.Skipped = append(res.Skipped, undecodable...)
	if err != nil {
		if errors.Is(err, ErrEmptyDocument) {
			removeScratch(work.dir, logger)
			return res, err
		}
		return res, fmt.Errorf("assemble %s: %w", res.Output, err)
	}

	logger.Info("wrote output", slog.String("output", res.Output), slog.Int("chunks", res.Chunks))

	return res, nil
}

// produce builds one slot per segment in document order. Speech chunks are
// synthesized on a pool bounded by Settings.Concurrency; every task writes
// to its own pre-assigned path, so completion order does not matter.
func (c *Converter) produce(
	ctx context.Context,
	docDir string,
	segments []script.Segment,
	work *scratch,
	logger *slog.Logger,
) ([]Slot, int, []string, error) {
	dispatcher := &tts.Dispatcher{
		Provider:      c.provider,
		Voice:         c.settings.Voice,
		PrimaryModel:  c.settings.PrimaryModel,
		FallbackModel: c.settings.FallbackModel,
		Format:        audio.FormatWAV,
		Logger:        logger,
	}

	if err := work.ensure(); err != nil {
		return nil, 0, nil, err
	}

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(c.settings.Concurrency).
		WithCancelOnError().
		WithFirstError()

	var (
		slots    = make([]Slot, len(segments))
		chunks   int
		skipped  []string
		localErr error
	)

produceLoop:
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			localErr = err
			break
		}

		switch s := seg.(type) {
		case script.Speech:
			parts := text.ChunkForProvider(s.Text, c.settings.MaxChunkChars)
			slot := make(Slot, len(parts))
			for j, part := range parts {
				path := work.chunkPath(i, j)
				slot[j] = Artifact{Path: path, Origin: Synthesized}
				p.Go(func(ctx context.Context) error {
					if err := ctx.Err(); err != nil {
						return err
					}
					data, err := dispatcher.Synthesize(ctx, part)
					if err != nil {
						return fmt.Errorf("segment %d chunk %d: %w", i, j, err)
					}
					return os.WriteFile(path, data, 0o644)
				})
			}
			slots[i] = slot
			chunks += len(parts)

		case script.Silence:
			data, err := audio.SilenceWAV(s.Seconds)
			if err != nil {
				localErr = fmt.Errorf("segment %d silence: %w", i, err)
				break produceLoop
			}
			path := work.pausePath(i)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				localErr = err
				break produceLoop
			}
			slots[i] = Slot{{Path: path, Origin: GeneratedSilence}}

		case script.Include:
			path := s.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(docDir, path)
			}
			if _, err := os.Stat(path); err != nil {
				logger.Warn("include not found, skipping", slog.String("include", s.Path), slog.String("error", err.Error()))
				skipped = append(skipped, s.Path)
				continue
			}
			slots[i] = Slot{{Path: path, Origin: ExternalReference}}
		}
	}

	if err := p.Wait(); err != nil {
		return nil, chunks, skipped, err
	}
	if localErr != nil {
		return nil, chunks, skipped, localErr
	}

	return slots, chunks, skipped, nil
}
