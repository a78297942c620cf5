package tts

import "slices"

// Voice is a built-in OpenAI speech voice.
type Voice struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
}

var builtinVoices = []Voice{
	{ID: "alloy", Description: "neutral, balanced"},
	{ID: "ash", Description: "clear, direct"},
	{ID: "ballad", Description: "soft, melodic"},
	{ID: "coral", Description: "warm, friendly"},
	{ID: "echo", Description: "calm, measured"},
	{ID: "fable", Description: "expressive storyteller"},
	{ID: "nova", Description: "bright, motivating"},
	{ID: "onyx", Description: "deep, authoritative"},
	{ID: "sage", Description: "gentle, thoughtful"},
	{ID: "shimmer", Description: "light, upbeat"},
}

// ListVoices returns the built-in voices.
func ListVoices() []Voice {
	return slices.Clone(builtinVoices)
}

// KnownVoice reports whether id names a built-in voice. Unknown voices are
// still passed through to the provider, which has the final say.
func KnownVoice(id string) bool {
	return slices.ContainsFunc(builtinVoices, func(v Voice) bool { return v.ID == id })
}
