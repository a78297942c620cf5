package testutil_test

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/go-script-tts/internal/testutil"
)

func TestRequireFFmpeg_SkipsWhenAbsent(t *testing.T) {
	t.Setenv("SCRIPTTTS_FFMPEG_PATH", filepath.Join(t.TempDir(), "no-ffmpeg"))

	skipped := false
	fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
	if got := testutil.RequireFFmpeg(fakeT); got != "" {
		t.Errorf("RequireFFmpeg() = %q; want empty path", got)
	}
	if !skipped {
		t.Error("expected RequireFFmpeg to skip when binary is absent")
	}
}

func TestRequireOpenAIKey(t *testing.T) {
	tests := []struct {
		name     string
		live     string
		key      string
		wantSkip bool
	}{
		{"live disabled", "", "sk-test", true},
		{"no key", "1", "", true},
		{"enabled", "1", "sk-test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SCRIPTTTS_LIVE", tt.live)
			t.Setenv("SCRIPTTTS_TTS_API_KEY", "")
			t.Setenv("OPENAI_API_KEY", tt.key)

			skipped := false
			fakeT := &skipTracker{TB: t, onSkip: func() { skipped = true }}
			got := testutil.RequireOpenAIKey(fakeT)

			if skipped != tt.wantSkip {
				t.Errorf("skipped = %v; want %v", skipped, tt.wantSkip)
			}
			if !tt.wantSkip && got != tt.key {
				t.Errorf("RequireOpenAIKey() = %q; want %q", got, tt.key)
			}
		})
	}
}

func TestAssertValidWAV(t *testing.T) {
	data := pcmWAV(24000, 1, 16, 12000)

	if got := testutil.AssertValidWAV(t, data); got != 12000 {
		t.Errorf("AssertValidWAV() = %d samples; want 12000", got)
	}
	testutil.AssertWAVDurationApprox(t, data, 490*time.Millisecond, 510*time.Millisecond)
}

func TestAssertValidWAV_RejectsWrongFormat(t *testing.T) {
	tests := map[string][]byte{
		"stereo":      pcmWAV(24000, 2, 16, 10),
		"44.1 kHz":    pcmWAV(44100, 1, 16, 10),
		"8-bit depth": pcmWAV(24000, 1, 8, 10),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			failed := false
			fakeT := &skipTracker{TB: t, onFatal: func() { failed = true }}
			testutil.AssertValidWAV(fakeT, data)
			if !failed {
				t.Error("expected AssertValidWAV to fail")
			}
		})
	}
}

func TestEncodeWAVPCM16(t *testing.T) {
	data, err := testutil.EncodeWAVPCM16([]float32{2, -2, 0.5}, 24000)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16() error = %v", err)
	}
	if got := testutil.AssertValidWAV(t, data); got != 3 {
		t.Fatalf("AssertValidWAV() = %d samples; want 3", got)
	}

	want := []int16{32767, -32767, 16383}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(data[44+i*2:])); got != w {
			t.Errorf("pcm[%d] = %d; want %d", i, got, w)
		}
	}

	if _, err := testutil.EncodeWAVPCM16(nil, 0); err == nil {
		t.Error("EncodeWAVPCM16(rate=0) = nil error; want error")
	}
}

func TestUnboundedWAV(t *testing.T) {
	data := pcmWAV(24000, 1, 16, 10)
	got := testutil.UnboundedWAV(data)

	if riff := binary.LittleEndian.Uint32(got[4:8]); riff != 0xFFFFFFFF {
		t.Errorf("RIFF size = %#x; want 0xffffffff", riff)
	}
	if size := binary.LittleEndian.Uint32(got[40:44]); size != 0xFFFFFFFF {
		t.Errorf("data size = %#x; want 0xffffffff", size)
	}
	if !bytes.Equal(got[44:], data[44:]) {
		t.Error("payload changed")
	}
	if binary.LittleEndian.Uint32(data[40:44]) != 20 {
		t.Error("input was modified")
	}
}

// pcmWAV builds a minimal PCM WAV with numSamples zero frames.
func pcmWAV(sampleRate uint32, channels, bitDepth uint16, numSamples int) []byte {
	blockAlign := channels * bitDepth / 8
	dataSize := uint32(numSamples) * uint32(blockAlign)

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 4+(8+16)+(8+dataSize))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, channels)
	_ = binary.Write(buf, binary.LittleEndian, sampleRate)
	_ = binary.Write(buf, binary.LittleEndian, sampleRate*uint32(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, bitDepth)
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))

	return buf.Bytes()
}

// skipTracker is a minimal testing.TB implementation that intercepts Skip
// and Fatal calls.
type skipTracker struct {
	testing.TB
	onSkip  func()
	onFatal func()
	stopped bool
}

func (s *skipTracker) Helper() {}

// Do NOT forward to s.TB: that would actually skip or fail the outer test.
func (s *skipTracker) Skip(_ ...any) { s.Skipf("") }

func (s *skipTracker) Skipf(_ string, _ ...any) {
	if s.onSkip != nil && !s.stopped {
		s.onSkip()
	}
	s.stopped = true
}

func (s *skipTracker) Fatal(_ ...any) { s.Fatalf("") }

func (s *skipTracker) Fatalf(_ string, _ ...any) {
	if s.onFatal != nil && !s.stopped {
		s.onFatal()
	}
	s.stopped = true
}
