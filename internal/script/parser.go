package script

import "strings"

// Segment is one ordered unit of a parsed script: Speech, Silence or Include.
type Segment interface {
	segment()
}

// Speech is non-empty text to synthesize.
type Speech struct {
	Text string
}

// Silence is a pause of a positive number of seconds.
type Silence struct {
	Seconds int
}

// Include references an external audio file relative to the script.
type Include struct {
	Path string
}

func (Speech) segment()  {}
func (Silence) segment() {}
func (Include) segment() {}

// Counts holds per-kind segment totals.
type Counts struct {
	Speech   int `yaml:"speech"`
	Silence  int `yaml:"silence"`
	Includes int `yaml:"includes"`
}

// Total returns the number of segments.
func (c Counts) Total() int { return c.Speech + c.Silence + c.Includes }

// Parse lexes doc and builds its segment list. A document without usable
// content yields an empty list.
func Parse(doc string) []Segment {
	return ParseLexed(Lex(doc))
}

// ParseLexed builds the segment list from an already lexed document.
func ParseLexed(l Lexed) []Segment {
	var segments []Segment
	spans := l.Spans()

	for i, d := range l.Directives {
		segments = appendSpeech(segments, l.Text[spans[i].Start:spans[i].End])

		switch d.Kind {
		case KindPause:
			if d.Seconds > 0 {
				segments = append(segments, Silence{Seconds: d.Seconds})
			}
		case KindInclude:
			segments = append(segments, Include{Path: d.Path})
		case KindStart:
			// only the first #START is honored; later ones are dropped
		}
	}

	last := spans[len(spans)-1]

	return appendSpeech(segments, l.Text[last.Start:last.End])
}

func appendSpeech(segments []Segment, raw string) []Segment {
	text := strings.TrimSpace(raw)
	if text == "" {
		return segments
	}

	return append(segments, Speech{Text: text})
}

// Count tallies segments per kind.
func Count(segments []Segment) Counts {
	var c Counts
	for _, s := range segments {
		switch s.(type) {
		case Speech:
			c.Speech++
		case Silence:
			c.Silence++
		case Include:
			c.Includes++
		}
	}

	return c
}
