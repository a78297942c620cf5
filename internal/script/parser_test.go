package script

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Segment
	}{
		{
			name: "empty document",
			doc:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			doc:  " \n\n\t ",
			want: nil,
		},
		{
			name: "no directives yields one trimmed speech segment",
			doc:  "\n  Hello there.\n\nSecond paragraph.  \n",
			want: []Segment{Speech{Text: "Hello there.\n\nSecond paragraph."}},
		},
		{
			name: "pause between speech",
			doc:  "Hello.\n\n#PAUSE 3\n\nWorld.",
			want: []Segment{Speech{Text: "Hello."}, Silence{Seconds: 3}, Speech{Text: "World."}},
		},
		{
			name: "zero pause is dropped",
			doc:  "Hello.\n#PAUSE 0\nWorld.",
			want: []Segment{Speech{Text: "Hello."}, Speech{Text: "World."}},
		},
		{
			name: "start marker hides earlier content",
			doc:  "Intro\n#START\nReal content",
			want: []Segment{Speech{Text: "Real content"}},
		},
		{
			name: "directives before start never produce segments",
			doc:  "#PAUSE 5\n#INCLUDE a.wav\nIntro\n#START\n#PAUSE 1\nGo",
			want: []Segment{Silence{Seconds: 1}, Speech{Text: "Go"}},
		},
		{
			name: "include between speech",
			doc:  "Warm up.\n#INCLUDE warmup.mp3\nStretch.",
			want: []Segment{Speech{Text: "Warm up."}, Include{Path: "warmup.mp3"}, Speech{Text: "Stretch."}},
		},
		{
			name: "include payload is not parsed",
			doc:  "#INCLUDE #PAUSE 3",
			want: []Segment{Include{Path: "#PAUSE 3"}},
		},
		{
			name: "adjacent directives",
			doc:  "#PAUSE 1\n#PAUSE 2\n#INCLUDE x.wav",
			want: []Segment{Silence{Seconds: 1}, Silence{Seconds: 2}, Include{Path: "x.wav"}},
		},
		{
			name: "later start markers are dropped",
			doc:  "#START\nA\n#START\nB",
			want: []Segment{Speech{Text: "A"}, Speech{Text: "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.doc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v; want %#v", tt.doc, got, tt.want)
			}
		})
	}
}

func TestParse_PauseDurations(t *testing.T) {
	for _, secs := range []string{"1", "7", "120"} {
		got := Parse("#PAUSE " + secs)
		if len(got) != 1 {
			t.Fatalf("Parse(#PAUSE %s) = %d segments; want 1", secs, len(got))
		}

		s, ok := got[0].(Silence)
		if !ok {
			t.Fatalf("segment = %T; want Silence", got[0])
		}

		if want := map[string]int{"1": 1, "7": 7, "120": 120}[secs]; s.Seconds != want {
			t.Errorf("Seconds = %d; want %d", s.Seconds, want)
		}
	}
}

func TestCount(t *testing.T) {
	c := Count(Parse("a\n#PAUSE 1\nb\n#INCLUDE x.wav\n#PAUSE 2"))
	want := Counts{Speech: 2, Silence: 2, Includes: 1}
	if c != want {
		t.Errorf("Count = %+v; want %+v", c, want)
	}

	if c.Total() != 5 {
		t.Errorf("Total = %d; want 5", c.Total())
	}
}
