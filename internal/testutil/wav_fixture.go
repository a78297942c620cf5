package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeWAVPCM16 writes a canonical 44-byte-header mono 16-bit WAV without
// going through the encoder library. Samples are clamped to [-1, 1].
func EncodeWAVPCM16(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	const channels = 1
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(samples) * 2
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataSize)
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	pcm := make([]byte, dataSize)
	for i, s := range samples {
		clamped := math.Max(-1.0, math.Min(1.0, float64(s)))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(clamped*32767)))
	}
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// UnboundedWAV returns a copy of a canonical 44-byte-header WAV with the
// RIFF and data sizes set to 0xFFFFFFFF, the way streaming encoders write
// them when the length is unknown.
func UnboundedWAV(data []byte) []byte {
	out := bytes.Clone(data)
	binary.LittleEndian.PutUint32(out[4:8], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(out[40:44], 0xFFFFFFFF)

	return out
}
