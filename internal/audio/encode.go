package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

// EncodeWAV encodes float32 samples as a 24 kHz mono 16-bit WAV.
// Every track the pipeline writes, including the merged output, goes
// through here.
func EncodeWAV(samples []float32) ([]byte, error) {
	var buf bytes.Buffer

	// wav.NewEncoder needs an io.WriteSeeker to patch the header sizes.
	sw := &seekBuffer{buf: &buf}
	enc := wav.NewEncoder(sw, SampleRate, BitDepth, Channels, 1) // 1 = PCM

	pcmBuf := &goaudio.Float32Buffer{
		Data:           samples,
		Format:         &goaudio.Format{SampleRate: SampleRate, NumChannels: Channels},
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(pcmBuf); err != nil {
		return nil, fmt.Errorf("writing PCM: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// seekBuffer is an in-memory io.WriteSeeker. The encoder writes the header
// with placeholder sizes, appends the PCM data and then seeks back to patch
// the RIFF and data sizes on Close.
type seekBuffer struct {
	buf *bytes.Buffer
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	// A seek past the end leaves a gap that reads as zeros.
	if gap := s.pos - s.buf.Len(); gap > 0 {
		s.buf.Write(make([]byte, gap))
	}

	// Appending at the end.
	if s.pos == s.buf.Len() {
		n, err := s.buf.Write(p)
		s.pos += n
		return n, err
	}

	// Overwriting in place, growing the buffer for any remainder.
	data := s.buf.Bytes()
	n := copy(data[s.pos:], p)
	if n < len(p) {
		s.buf.Write(p[n:])
		n = len(p)
	}
	s.pos += n

	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case io.SeekStart:
		newPos = int(offset)
	case io.SeekCurrent:
		newPos = s.pos + int(offset)
	case io.SeekEnd:
		newPos = s.buf.Len() + int(offset)
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("seek before start")
	}
	s.pos = newPos

	return int64(newPos), nil
}
