package text

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkForProvider(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{
			name:     "under the limit is returned unchanged",
			text:     "Hello.\n\nWorld.",
			maxChars: 100,
			want:     []string{"Hello.\n\nWorld."},
		},
		{
			name:     "exactly at the limit",
			text:     "abcde",
			maxChars: 5,
			want:     []string{"abcde"},
		},
		{
			name:     "zero limit disables chunking",
			text:     "Hello. World.",
			maxChars: 0,
			want:     []string{"Hello. World."},
		},
		{
			name:     "paragraphs packed greedily",
			text:     "aaaa\n\nbbbb\n\ncccc",
			maxChars: 10,
			want:     []string{"aaaa\n\nbbbb", "cccc"},
		},
		{
			name:     "blank line with spaces separates paragraphs",
			text:     "aaaa\n  \nbbbb\n\ncccc",
			maxChars: 10,
			want:     []string{"aaaa\n\nbbbb", "cccc"},
		},
		{
			name:     "oversized paragraph split into sentences",
			text:     "One one. Two two. Three three.",
			maxChars: 18,
			want:     []string{"One one. Two two.", "Three three."},
		},
		{
			name:     "pending buffer flushed before a long paragraph",
			text:     "Hi.\n\nOne one. Two two. Three three.",
			maxChars: 18,
			want:     []string{"Hi.", "One one. Two two.", "Three three."},
		},
		{
			name:     "single oversized sentence emitted verbatim",
			text:     "Short.\n\nThisSentenceIsFarTooLongToFit",
			maxChars: 10,
			want:     []string{"Short.", "ThisSentenceIsFarTooLongToFit"},
		},
		{
			name:     "limit counts runes not bytes",
			text:     "äöü äöü\n\näöü",
			maxChars: 9,
			want:     []string{"äöü äöü", "äöü"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkForProvider(tt.text, tt.maxChars)
			if len(got) != len(tt.want) {
				t.Fatalf("ChunkForProvider() = %q (len %d); want %q (len %d)", got, len(got), tt.want, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("chunk[%d] = %q; want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkForProvider_LosslessAndBounded(t *testing.T) {
	var b strings.Builder
	for p := range 12 {
		for s := range 3 + p%4 {
			b.WriteString(strings.Repeat("word ", 3+s))
			b.WriteString("end. ")
		}
		b.WriteString("\n\n")
	}
	input := b.String()

	for _, limit := range []int{40, 80, 200, 1000} {
		chunks := ChunkForProvider(input, limit)

		for i, c := range chunks {
			if c == "" {
				t.Errorf("limit %d: chunk %d is empty", limit, i)
			}
			if n := utf8.RuneCountInString(c); n > limit && strings.Contains(c, ". ") {
				t.Errorf("limit %d: chunk %d has %d runes and is splittable", limit, i, n)
			}
		}

		if got, want := CollapseSpace(strings.Join(chunks, " ")), CollapseSpace(input); got != want {
			t.Errorf("limit %d: concatenation differs from input\n got: %q\nwant: %q", limit, got, want)
		}
	}
}
