package audio

import "encoding/binary"

// DecodePCM16LE converts raw little-endian signed 16-bit samples to float32.
// A trailing odd byte is ignored.
func DecodePCM16LE(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(v) / 32768
	}

	return out
}
