// Package tts turns text chunks into audio through a speech synthesis
// provider, with a one-step fallback to a second model.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelUnavailable is wrapped by providers when they reject the requested
// model as unknown or unsupported.
var ErrModelUnavailable = errors.New("model unavailable")

// Request is one synthesis call.
type Request struct {
	Model  string
	Voice  string
	Text   string
	Format string
}

// Provider synthesizes speech. Implementations must be safe for concurrent use.
type Provider interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) ([]byte, error)

func (f ProviderFunc) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// ProviderError reports a failed synthesis after the fallback policy was
// applied. Model is the model of the last attempt.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("synthesis with model %s failed: %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
