package tts

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/example/go-script-tts/internal/tts")

var errEmptyAudio = errors.New("provider returned no audio")

// Dispatcher synthesizes chunks with a primary model and retries a chunk
// exactly once with FallbackModel when the provider rejects the primary
// model. It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	Provider      Provider
	Voice         string
	PrimaryModel  string
	FallbackModel string
	Format        string
	Logger        *slog.Logger
}

// Synthesize converts text to audio bytes. Failures are returned as
// *ProviderError.
func (d *Dispatcher) Synthesize(ctx context.Context, text string) ([]byte, error) {
	models := []string{d.PrimaryModel}
	if d.FallbackModel != "" && d.FallbackModel != d.PrimaryModel {
		models = append(models, d.FallbackModel)
	}

	var lastErr error
	for attempt, model := range models {
		data, err := d.attempt(ctx, model, text)
		if err == nil {
			return data, nil
		}
		lastErr = &ProviderError{Model: model, Err: err}

		last := attempt == len(models)-1
		if last || ctx.Err() != nil || !errors.Is(err, ErrModelUnavailable) {
			break
		}
		d.logger().Warn("model unavailable, falling back",
			slog.String("model", model),
			slog.String("fallback", models[attempt+1]),
			slog.String("error", err.Error()),
		)
	}

	return nil, lastErr
}

func (d *Dispatcher) attempt(ctx context.Context, model, text string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "tts.synthesize", trace.WithAttributes(
		attribute.String("tts.model", model),
		attribute.String("tts.voice", d.Voice),
		attribute.Int("tts.chars", utf8.RuneCountInString(text)),
	))
	defer span.End()

	data, err := d.Provider.Synthesize(ctx, Request{
		Model:  model,
		Voice:  d.Voice,
		Text:   text,
		Format: d.Format,
	})
	if err == nil && len(data) == 0 {
		err = errEmptyAudio
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("tts.bytes", len(data)))

	return data, nil
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
