package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	paragraphSep = "\n\n"
	sentenceSep  = " "
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// ChunkForProvider splits text into chunks of at most maxChars runes for a
// synthesis provider with an input size limit. Text within the limit is
// returned unchanged as a single chunk.
//
// Paragraphs (separated by blank lines) are packed greedily. A paragraph
// that alone exceeds the limit is split after each ". " and its sentences
// are packed the same way. A single sentence over the limit is emitted as is.
// Chunks are trimmed and never empty.
func ChunkForProvider(text string, maxChars int) []string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	p := packer{max: maxChars}
	for _, para := range blankLine.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= maxChars {
			p.add(para, paragraphSep)
			continue
		}

		p.flush()
		for _, sentence := range splitAtPeriods(para) {
			p.add(sentence, sentenceSep)
		}
	}
	p.flush()

	return p.chunks
}

// splitAtPeriods splits a paragraph after every literal ". ", keeping the
// period on its sentence.
func splitAtPeriods(para string) []string {
	parts := strings.SplitAfter(para, ". ")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

type packer struct {
	max     int
	chunks  []string
	current strings.Builder
	runes   int
}

// add appends piece to the running chunk, flushing first when the separator
// plus piece would push the chunk over the limit.
func (p *packer) add(piece, sep string) {
	n := utf8.RuneCountInString(piece)
	if p.runes > 0 && p.runes+len(sep)+n > p.max {
		p.flush()
	}
	if p.runes > 0 {
		p.current.WriteString(sep)
		p.runes += len(sep)
	}
	p.current.WriteString(piece)
	p.runes += n
}

func (p *packer) flush() {
	if s := strings.TrimSpace(p.current.String()); s != "" {
		p.chunks = append(p.chunks, s)
	}
	p.current.Reset()
	p.runes = 0
}
