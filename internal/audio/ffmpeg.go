package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrMissingDependency is returned when a required external tool is absent.
var ErrMissingDependency = errors.New("missing dependency")

// Output formats.
const (
	FormatWAV = "wav"
	FormatMP3 = "mp3"
)

// NormalizeFormat validates an output format name.
func NormalizeFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "":
		return FormatWAV, nil
	case FormatWAV, FormatMP3:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected %s|%s)", raw, FormatWAV, FormatMP3)
	}
}

// FileDecoder decodes an arbitrary audio file into a pipeline-format track.
type FileDecoder interface {
	DecodeFile(ctx context.Context, path string) ([]float32, error)
}

// Transcoder converts pipeline WAV bytes into another container format.
type Transcoder interface {
	Transcode(ctx context.Context, wavData []byte, format string) ([]byte, error)
}

// FFmpeg runs the ffmpeg executable for decoding and transcoding.
type FFmpeg struct {
	Path string
}

var (
	_ FileDecoder = (*FFmpeg)(nil)
	_ Transcoder  = (*FFmpeg)(nil)
)

// LookupFFmpeg resolves name (a command or a path) to an executable.
func LookupFFmpeg(name string) (*FFmpeg, error) {
	if name == "" {
		name = "ffmpeg"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg (%q) not found: %v", ErrMissingDependency, name, err)
	}

	return &FFmpeg{Path: path}, nil
}

// Version returns the first line of `ffmpeg -version`.
func (f *FFmpeg) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, f.Path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version failed: %w", f.Path, err)
	}

	line, _, _ := strings.Cut(string(out), "\n")

	return strings.TrimSpace(line), nil
}

// DecodeFile resamples any ffmpeg-readable file to 24 kHz mono.
func (f *FFmpeg) DecodeFile(ctx context.Context, path string) ([]float32, error) {
	out, err := f.run(ctx, nil,
		"-i", path,
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(Channels), "-ar", strconv.Itoa(SampleRate),
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return DecodePCM16LE(out), nil
}

// Transcode converts WAV bytes to format. WAV input is returned unchanged
// when format is wav.
func (f *FFmpeg) Transcode(ctx context.Context, wavData []byte, format string) ([]byte, error) {
	if format == FormatWAV {
		return wavData, nil
	}

	out, err := f.run(ctx, wavData, "-f", "wav", "-i", "pipe:0", "-f", format, "pipe:1")
	if err != nil {
		return nil, fmt.Errorf("transcode to %s: %w", format, err)
	}

	return out, nil
}

func (f *FFmpeg) run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	args = append([]string{"-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.CommandContext(ctx, f.Path, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}

	return stdout.Bytes(), nil
}
