// Package pipeline compiles one script document into one audio file:
// parse, synthesize speech chunks under a concurrency cap, generate
// silences, and assemble everything in document order.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/example/go-script-tts/internal/audio"
	"github.com/example/go-script-tts/internal/tts"
)

// Settings are the immutable knobs of a conversion.
type Settings struct {
	MaxChunkChars int
	Concurrency   int
	Voice         string
	PrimaryModel  string
	FallbackModel string
	Format        string
}

// DefaultSettings returns the production defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxChunkChars: 4000,
		Concurrency:   5,
		Voice:         "nova",
		PrimaryModel:  tts.ModelGPT4oMiniTTS,
		FallbackModel: tts.ModelTTS1,
		Format:        audio.FormatWAV,
	}
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error
	if s.MaxChunkChars < 1 || s.MaxChunkChars > tts.MaxInputChars {
		errs = append(errs, fmt.Errorf("max chunk chars %d out of range [1, %d]", s.MaxChunkChars, tts.MaxInputChars))
	}
	if s.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency))
	}
	if s.Voice == "" {
		errs = append(errs, errors.New("voice is required"))
	}
	if s.PrimaryModel == "" {
		errs = append(errs, errors.New("primary model is required"))
	}
	if _, err := audio.NormalizeFormat(s.Format); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
