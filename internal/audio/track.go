package audio

import "time"

// Silence returns a silent track of duration d, rounded down to whole
// milliseconds.
func Silence(d time.Duration) []float32 {
	return make([]float32, d.Milliseconds()*SampleRate/1000)
}

// SilenceWAV returns an encoded silent track of the given number of seconds.
func SilenceWAV(seconds int) ([]byte, error) {
	return EncodeWAV(Silence(time.Duration(seconds) * time.Second))
}

// Concat joins tracks in order.
func Concat(tracks ...[]float32) []float32 {
	n := 0
	for _, t := range tracks {
		n += len(t)
	}

	out := make([]float32, 0, n)
	for _, t := range tracks {
		out = append(out, t...)
	}

	return out
}

// Duration returns the playback length of a pipeline-format track.
func Duration(samples []float32) time.Duration {
	return time.Duration(len(samples)) * time.Second / SampleRate
}
