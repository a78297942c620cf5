// Package doctor provides environment preflight checks for scripttts.
package doctor

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// PassMark, WarnMark and FailMark are the prefix symbols printed for each
// check result. Warnings do not fail the run.
const (
	PassMark = "✓"
	WarnMark = "!"
	FailMark = "✗"
)

// minFFmpegMajor is the oldest ffmpeg release with the codecs and pipe
// handling the converter relies on.
const minFFmpegMajor = 4

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// FFmpegVersion returns the first line of `ffmpeg -version`.
	FFmpegVersion VersionFunc
	// FFmpegRequired makes a missing ffmpeg a failure instead of a warning
	// (mp3 output).
	FFmpegRequired bool
	// APIKeySet reports whether a provider API key is configured.
	APIKeySet bool
	// Voice is checked against the provider's voice list when non-empty.
	Voice string
	// KnownVoice reports whether the provider offers a voice.
	KnownVoice func(string) bool
	// ScriptsDir is the directory scanned for script documents.
	ScriptsDir string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
	warnings []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// Warnings returns the list of warning messages.
func (r *Result) Warnings() []string { return append([]string(nil), r.warnings...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) warn(msg string) { r.warnings = append(r.warnings, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark, WarnMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ffmpeg -----------------------------------------------------------
	checkFFmpeg(cfg, w, &res)

	// ---- API key ----------------------------------------------------------
	if cfg.APIKeySet {
		fmt.Fprintf(w, "%s api key: set\n", PassMark)
	} else {
		res.fail("api key: not set (OPENAI_API_KEY or SCRIPTTTS_TTS_API_KEY)")
		fmt.Fprintf(w, "%s api key: not set (export OPENAI_API_KEY)\n", FailMark)
	}

	// ---- voice ------------------------------------------------------------
	if cfg.Voice != "" && cfg.KnownVoice != nil {
		if cfg.KnownVoice(cfg.Voice) {
			fmt.Fprintf(w, "%s voice: %s\n", PassMark, cfg.Voice)
		} else {
			res.warn(fmt.Sprintf("voice %q: not in the built-in voice list", cfg.Voice))
			fmt.Fprintf(w, "%s voice %s: not in the built-in voice list\n", WarnMark, cfg.Voice)
		}
	}

	// ---- scripts directory ------------------------------------------------
	if cfg.ScriptsDir != "" {
		info, err := os.Stat(cfg.ScriptsDir)
		switch {
		case os.IsNotExist(err):
			res.warn(fmt.Sprintf("scripts dir %q: missing, created on first convert", cfg.ScriptsDir))
			fmt.Fprintf(w, "%s scripts dir %s: missing (created on first convert)\n", WarnMark, cfg.ScriptsDir)
		case err != nil:
			res.fail(fmt.Sprintf("scripts dir %q: %v", cfg.ScriptsDir, err))
			fmt.Fprintf(w, "%s scripts dir %s: %v\n", FailMark, cfg.ScriptsDir, err)
		case !info.IsDir():
			res.fail(fmt.Sprintf("scripts dir %q: not a directory", cfg.ScriptsDir))
			fmt.Fprintf(w, "%s scripts dir %s: not a directory\n", FailMark, cfg.ScriptsDir)
		default:
			fmt.Fprintf(w, "%s scripts dir: %s\n", PassMark, cfg.ScriptsDir)
		}
	}

	return res
}

func checkFFmpeg(cfg Config, w io.Writer, res *Result) {
	if cfg.FFmpegVersion == nil {
		fmt.Fprintf(w, "%s ffmpeg: skipped\n", PassMark)
		return
	}

	line, err := cfg.FFmpegVersion()
	if err != nil {
		if cfg.FFmpegRequired {
			res.fail(fmt.Sprintf("ffmpeg: %v", err))
			fmt.Fprintf(w, "%s ffmpeg: not found (%v)\n", FailMark, err)
		} else {
			res.warn(fmt.Sprintf("ffmpeg: %v", err))
			fmt.Fprintf(w, "%s ffmpeg: not found, only needed for mp3 output and non-WAV includes\n", WarnMark)
		}
		return
	}

	ver := ffmpegVersion(line)
	major, _, perr := parseMajorMinor(ver)
	switch {
	case perr != nil:
		// Git builds report versions like "N-113348-g0a5813fc68".
		fmt.Fprintf(w, "%s ffmpeg: %s\n", PassMark, line)
	case major < minFFmpegMajor && cfg.FFmpegRequired:
		res.fail(fmt.Sprintf("ffmpeg: requires >= %d, got %s", minFFmpegMajor, ver))
		fmt.Fprintf(w, "%s ffmpeg %s: requires >= %d\n", FailMark, ver, minFFmpegMajor)
	case major < minFFmpegMajor:
		res.warn(fmt.Sprintf("ffmpeg: %s is older than %d", ver, minFFmpegMajor))
		fmt.Fprintf(w, "%s ffmpeg %s: older than %d\n", WarnMark, ver, minFFmpegMajor)
	default:
		fmt.Fprintf(w, "%s ffmpeg: %s\n", PassMark, ver)
	}
}

// ffmpegVersion extracts the version token from a line such as
// "ffmpeg version n6.1.1-3ubuntu5 Copyright (c) 2000-2023".
func ffmpegVersion(line string) string {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "version" && i+1 < len(fields) {
			return strings.TrimPrefix(fields[i+1], "n")
		}
	}

	return strings.TrimSpace(line)
}

func parseMajorMinor(ver string) (major, minor int, err error) {
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unexpected version format %q", ver)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad major in %q: %w", ver, err)
	}
	minorDigits := parts[1]
	if i := strings.IndexFunc(minorDigits, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		minorDigits = minorDigits[:i]
	}
	minor, err = strconv.Atoi(minorDigits)
	if err != nil {
		return 0, 0, fmt.Errorf("bad minor in %q: %w", ver, err)
	}
	return major, minor, nil
}
