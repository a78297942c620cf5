// Package script turns a raw script document into an ordered list of typed
// segments. Directives occupy a full line each and are matched
// case-insensitively:
//
//	#START            content before this line is ignored
//	#PAUSE 3          three seconds of silence
//	#INCLUDE jingle.wav
//
// Lines that do not match a directive pattern are plain text.
package script

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies a directive form.
type Kind int

const (
	KindStart Kind = iota
	KindPause
	KindInclude
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindPause:
		return "pause"
	case KindInclude:
		return "include"
	default:
		return "unknown"
	}
}

var (
	startPattern   = regexp.MustCompile(`(?im)^#START[ \t\r]*$`)
	pausePattern   = regexp.MustCompile(`(?im)^#PAUSE[ \t]+(\d+)[ \t\r]*$`)
	includePattern = regexp.MustCompile(`(?im)^#INCLUDE[ \t]+(\S[^\r\n]*?)[ \t\r]*$`)
)

// Directive is one recognized control line. Start and End are byte offsets
// into Lexed.Text.
type Directive struct {
	Kind    Kind
	Start   int
	End     int
	Seconds int
	Path    string
}

// Span is a plain-text gap between directives.
type Span struct {
	Start int
	End   int
}

// Lexed is the effective document text and its directive timeline.
type Lexed struct {
	Text       string
	Directives []Directive
}

// Lex locates all directives in doc. If doc contains a #START line, only the
// text after the first one is scanned and returned.
func Lex(doc string) Lexed {
	if loc := startPattern.FindStringIndex(doc); loc != nil {
		end := loc[1]
		if end < len(doc) && doc[end] == '\n' {
			end++
		}
		doc = doc[end:]
	}

	var directives []Directive
	for _, loc := range startPattern.FindAllStringIndex(doc, -1) {
		directives = append(directives, Directive{Kind: KindStart, Start: loc[0], End: loc[1]})
	}
	for _, m := range pausePattern.FindAllStringSubmatchIndex(doc, -1) {
		seconds, err := strconv.Atoi(doc[m[2]:m[3]])
		if err != nil {
			// out of range for int: leave the line as plain text
			continue
		}
		directives = append(directives, Directive{Kind: KindPause, Start: m[0], End: m[1], Seconds: seconds})
	}
	for _, m := range includePattern.FindAllStringSubmatchIndex(doc, -1) {
		directives = append(directives, Directive{
			Kind:  KindInclude,
			Start: m[0],
			End:   m[1],
			Path:  strings.TrimSpace(doc[m[2]:m[3]]),
		})
	}

	sort.SliceStable(directives, func(i, j int) bool {
		return directives[i].Start < directives[j].Start
	})

	return Lexed{Text: doc, Directives: directives}
}

// Spans returns the plain-text gaps around the directives, including empty
// ones, in document order. There is always len(Directives)+1 spans.
func (l Lexed) Spans() []Span {
	spans := make([]Span, 0, len(l.Directives)+1)
	prev := 0
	for _, d := range l.Directives {
		start := d.Start
		if start < prev {
			start = prev
		}
		spans = append(spans, Span{Start: prev, End: start})
		if d.End > prev {
			prev = d.End
		}
	}
	spans = append(spans, Span{Start: prev, End: len(l.Text)})

	return spans
}
