package doctor_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-script-tts/internal/doctor"
)

func ffmpegOK() (string, error) {
	return "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers", nil
}

func ffmpegMissing() (string, error) { return "", errBinaryNotFound }

// ---------------------------------------------------------------------------
// all-pass scenario
// ---------------------------------------------------------------------------

func TestRun_AllChecksPass(t *testing.T) {
	cfg := doctor.Config{
		FFmpegVersion:  ffmpegOK,
		FFmpegRequired: true,
		APIKeySet:      true,
		Voice:          "nova",
		KnownVoice:     func(string) bool { return true },
		ScriptsDir:     t.TempDir(),
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v", result.Failures())
	}

	if len(result.Warnings()) != 0 {
		t.Errorf("expected no warnings; got %v", result.Warnings())
	}

	if !strings.Contains(out.String(), "ffmpeg: 6.1.1") {
		t.Errorf("output should report the ffmpeg version; got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// ffmpeg
// ---------------------------------------------------------------------------

func TestRun_FFmpeg(t *testing.T) {
	tests := []struct {
		name     string
		version  doctor.VersionFunc
		required bool
		wantFail bool
		wantWarn bool
	}{
		{"missing and required", ffmpegMissing, true, true, false},
		{"missing for wav output", ffmpegMissing, false, false, true},
		{"too old and required", func() (string, error) { return "ffmpeg version 3.4.8", nil }, true, true, false},
		{"too old for wav output", func() (string, error) { return "ffmpeg version 3.4.8", nil }, false, false, true},
		{"git build", func() (string, error) { return "ffmpeg version N-113348-g0a5813fc68", nil }, true, false, false},
		{"recent", ffmpegOK, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := doctor.Config{
				FFmpegVersion:  tt.version,
				FFmpegRequired: tt.required,
				APIKeySet:      true,
			}

			var out strings.Builder
			result := doctor.Run(cfg, &out)

			if result.Failed() != tt.wantFail {
				t.Errorf("Failed() = %v; want %v (failures %v)", result.Failed(), tt.wantFail, result.Failures())
			}

			if got := hasFailureContaining(result.Warnings(), "ffmpeg"); got != tt.wantWarn {
				t.Errorf("ffmpeg warning = %v; want %v (warnings %v)", got, tt.wantWarn, result.Warnings())
			}
		})
	}
}

func TestRun_SkipFFmpeg(t *testing.T) {
	var out strings.Builder

	result := doctor.Run(doctor.Config{APIKeySet: true}, &out)
	if result.Failed() {
		t.Fatalf("expected no failures when ffmpeg check is skipped, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "ffmpeg: skipped") {
		t.Fatalf("expected ffmpeg skipped output, got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// API key
// ---------------------------------------------------------------------------

func TestRun_MissingAPIKeyFails(t *testing.T) {
	var out strings.Builder
	result := doctor.Run(doctor.Config{FFmpegVersion: ffmpegOK}, &out)

	if !result.Failed() {
		t.Fatal("expected failure without an API key")
	}

	if !hasFailureContaining(result.Failures(), "api key") {
		t.Errorf("expected failure mentioning api key, got: %v", result.Failures())
	}
}

// ---------------------------------------------------------------------------
// voice
// ---------------------------------------------------------------------------

func TestRun_UnknownVoiceWarns(t *testing.T) {
	cfg := doctor.Config{
		APIKeySet:  true,
		Voice:      "robot",
		KnownVoice: func(v string) bool { return v == "nova" },
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("unknown voice should not fail; failures: %v", result.Failures())
	}

	if !hasFailureContaining(result.Warnings(), "robot") {
		t.Errorf("expected warning mentioning the voice, got: %v", result.Warnings())
	}
}

// ---------------------------------------------------------------------------
// scripts directory
// ---------------------------------------------------------------------------

func TestRun_ScriptsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		wantFail bool
		wantWarn bool
	}{
		{"exists", dir, false, false},
		{"missing", filepath.Join(dir, "nope"), false, true},
		{"is a file", file, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			result := doctor.Run(doctor.Config{APIKeySet: true, ScriptsDir: tt.path}, &out)

			if result.Failed() != tt.wantFail {
				t.Errorf("Failed() = %v; want %v (failures %v)", result.Failed(), tt.wantFail, result.Failures())
			}

			if got := hasFailureContaining(result.Warnings(), "scripts dir"); got != tt.wantWarn {
				t.Errorf("scripts dir warning = %v; want %v", got, tt.wantWarn)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// colour-coded output
// ---------------------------------------------------------------------------

func TestRun_OutputContainsPassAndFailMarkers(t *testing.T) {
	cfg := doctor.Config{
		FFmpegVersion: ffmpegOK,
		APIKeySet:     false,
	}

	var out strings.Builder
	doctor.Run(cfg, &out)

	body := out.String()
	if !strings.Contains(body, doctor.PassMark) {
		t.Errorf("output missing pass marker %q:\n%s", doctor.PassMark, body)
	}

	if !strings.Contains(body, doctor.FailMark) {
		t.Errorf("output missing fail marker %q:\n%s", doctor.FailMark, body)
	}
}

func TestResult_AddFailure(t *testing.T) {
	result := doctor.Run(doctor.Config{APIKeySet: true}, &strings.Builder{})
	result.AddFailure("provider: unreachable")

	if !result.Failed() {
		t.Fatal("expected Failed() after AddFailure")
	}

	failures := result.Failures()
	failures[0] = "mutated"
	if result.Failures()[0] != "provider: unreachable" {
		t.Error("Failures() should return a copy")
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

var errBinaryNotFound = sentinelError("binary not found")

func hasFailureContaining(failures []string, substr string) bool {
	substr = strings.ToLower(substr)
	for _, f := range failures {
		if strings.Contains(strings.ToLower(f), substr) {
			return true
		}
	}

	return false
}
