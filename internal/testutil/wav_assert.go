package testutil

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"
	"time"
)

// Pipeline audio format: 24 kHz mono 16-bit PCM.
const (
	wavSampleRate = 24000
	wavChannels   = 1
	wavBitDepth   = 16
)

// AssertValidWAV checks that data is a PCM WAV file in the pipeline format
// (RIFF header, 24000 Hz, mono, 16-bit) and returns its sample count.
// Zero-length audio is accepted; use AssertWAVDurationApprox to bound it.
func AssertValidWAV(tb testing.TB, data []byte) int {
	tb.Helper()

	if len(data) < 44 {
		tb.Fatalf("WAV data too short: %d bytes", len(data))
	}

	if string(data[0:4]) != "RIFF" {
		tb.Fatalf("WAV: missing RIFF header (got %q)", string(data[0:4]))
	}

	if string(data[8:12]) != "WAVE" {
		tb.Fatalf("WAV: missing WAVE marker (got %q)", string(data[8:12]))
	}

	if string(data[12:16]) != "fmt " {
		tb.Fatalf("WAV: missing fmt chunk (got %q)", string(data[12:16]))
	}

	// fmt chunk fields (little-endian).
	if audioFmt := binary.LittleEndian.Uint16(data[20:22]); audioFmt != 1 {
		tb.Fatalf("WAV: expected PCM format (1), got %d", audioFmt)
	}

	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != wavChannels {
		tb.Fatalf("WAV: expected %d channel(s), got %d", wavChannels, channels)
	}

	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != wavSampleRate {
		tb.Fatalf("WAV: expected sample rate %d, got %d", wavSampleRate, rate)
	}

	if depth := binary.LittleEndian.Uint16(data[34:36]); depth != wavBitDepth {
		tb.Fatalf("WAV: expected %d-bit depth, got %d", wavBitDepth, depth)
	}

	dataSize, err := findDataChunkSize(data)
	if err != nil {
		tb.Fatalf("WAV: %v", err)
	}

	return int(dataSize) / (wavBitDepth / 8)
}

// AssertWAVFile reads path, checks it with AssertValidWAV and returns the
// file contents.
func AssertWAVFile(tb testing.TB, path string) []byte {
	tb.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read WAV %s: %v", path, err)
	}
	AssertValidWAV(tb, data)

	return data
}

// AssertWAVDurationApprox asserts that the WAV audio duration falls within
// [lo, hi].
func AssertWAVDurationApprox(tb testing.TB, data []byte, lo, hi time.Duration) {
	tb.Helper()

	dataSize, err := findDataChunkSize(data)
	if err != nil {
		tb.Fatalf("WAV duration check: %v", err)
	}
	samples := int64(dataSize) / (wavBitDepth / 8)

	d := time.Duration(samples) * time.Second / wavSampleRate
	if d < lo || d > hi {
		tb.Fatalf("WAV duration %v out of expected range [%v, %v]", d, lo, hi)
	}
}

// findDataChunkSize walks the WAV chunk list to locate the "data" sub-chunk
// and returns its size in bytes.
func findDataChunkSize(data []byte) (uint32, error) {
	// Start after the 12-byte RIFF/WAVE header.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])

		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		if id == "data" {
			return size, nil
		}

		offset += 8 + int(size)
		// Pad to even boundary.
		if size%2 != 0 {
			offset++
		}
	}

	return 0, errors.New("data chunk not found in WAV")
}
