// Package audio holds the pipeline's audio codec: every track is 24 kHz mono
// float32 PCM, stored on disk as 16-bit WAV.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
)

// Pipeline track format. OpenAI speech synthesis returns WAV in this format.
const (
	SampleRate = 24000
	Channels   = 1
	BitDepth   = 16
)

// unboundedSize is the chunk size streaming encoders write when the length
// is not known up front.
const unboundedSize = 0xFFFFFFFF

// ErrFormatMismatch is returned when a WAV file is valid but not in the
// pipeline format.
var ErrFormatMismatch = errors.New("WAV format mismatch")

// DecodeWAV decodes WAV bytes in the pipeline format into float32 samples.
// A data chunk whose size is unbounded or runs past the end of data is read
// to the end of the input.
func DecodeWAV(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, errors.New("empty WAV input")
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	if dec.SampleRate != SampleRate {
		return nil, fmt.Errorf("%w: sample rate %d, want %d", ErrFormatMismatch, dec.SampleRate, SampleRate)
	}
	if dec.NumChans != Channels {
		return nil, fmt.Errorf("%w: channels %d, want %d", ErrFormatMismatch, dec.NumChans, Channels)
	}
	if dec.BitDepth != BitDepth {
		return nil, fmt.Errorf("%w: bit depth %d, want %d", ErrFormatMismatch, dec.BitDepth, BitDepth)
	}

	if off, size, ok := findDataChunk(data); ok && (size == unboundedSize || int64(size) > int64(len(data)-off)) {
		return DecodePCM16LE(data[off:]), nil
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	return buf.Data, nil
}

// findDataChunk walks the RIFF chunk list and returns the offset of the
// data chunk payload and its declared size.
func findDataChunk(data []byte) (offset int, size uint32, ok bool) {
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size = binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		if id == "data" {
			return pos + 8, size, true
		}
		if size == unboundedSize {
			return 0, 0, false
		}

		next := int64(pos) + 8 + int64(size) + int64(size&1)
		if next > int64(len(data)) {
			return 0, 0, false
		}
		pos = int(next)
	}

	return 0, 0, false
}

// DecodeWAVFile reads and decodes the WAV file at path.
func DecodeWAVFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	samples, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return samples, nil
}
