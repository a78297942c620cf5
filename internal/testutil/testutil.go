// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    ffmpeg := testutil.RequireFFmpeg(t)
//	    key := testutil.RequireOpenAIKey(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"testing"
)

// RequireFFmpeg skips the test if the ffmpeg binary is not found in PATH or
// at the path given by SCRIPTTTS_FFMPEG_PATH. It returns the resolved path.
func RequireFFmpeg(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("SCRIPTTTS_FFMPEG_PATH")
	if exe == "" {
		exe = "ffmpeg"
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("ffmpeg not available (%q not in PATH); set SCRIPTTTS_FFMPEG_PATH to override", exe)
		return ""
	}

	return path
}

// RequireOpenAIKey skips the test unless live provider tests are enabled
// with SCRIPTTTS_LIVE=1 and an API key is present. It returns the key.
func RequireOpenAIKey(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SCRIPTTTS_LIVE") != "1" {
		tb.Skip("live provider tests disabled; set SCRIPTTTS_LIVE=1 to enable")
		return ""
	}

	for _, env := range []string{"SCRIPTTTS_TTS_API_KEY", "OPENAI_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}

	tb.Skip("no API key; set OPENAI_API_KEY or SCRIPTTTS_TTS_API_KEY")
	return ""
}
