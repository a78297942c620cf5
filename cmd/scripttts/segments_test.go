package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDumpSegments(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bell.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := filepath.Join(dir, "s.md")
	content := "Ignored intro\n#START\nFirst part.\n#PAUSE 5\n#INCLUDE bell.wav\n#INCLUDE gone.wav\nLast part."
	if err := os.WriteFile(doc, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dump, err := dumpSegments(doc, 4000)
	if err != nil {
		t.Fatalf("dumpSegments() error = %v", err)
	}

	kinds := make([]string, len(dump.Segments))
	for i, s := range dump.Segments {
		kinds[i] = s.Kind
	}
	if got := strings.Join(kinds, ","); got != "speech,pause,include,include,speech" {
		t.Fatalf("segment kinds = %s", got)
	}
	if dump.Counts.Speech != 2 || dump.Counts.Silence != 1 || dump.Counts.Includes != 2 || dump.Chunks != 2 {
		t.Errorf("counts = %+v, chunks %d", dump.Counts, dump.Chunks)
	}
	if dump.Segments[1].Seconds != 5 {
		t.Errorf("pause seconds = %d; want 5", dump.Segments[1].Seconds)
	}
	if !*dump.Segments[2].Exists || *dump.Segments[3].Exists {
		t.Errorf("include existence = %v, %v; want true, false", *dump.Segments[2].Exists, *dump.Segments[3].Exists)
	}
	if dump.Segments[0].Chunks[0] != len("First part.") {
		t.Errorf("chunk chars = %v", dump.Segments[0].Chunks)
	}
}

func TestSegmentsCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	doc := filepath.Join(t.TempDir(), "s.md")
	if err := os.WriteFile(doc, []byte("Hello.\n#PAUSE 2\nWorld."), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("yaml", func(t *testing.T) {
		out, err := runCLI(t, "segments", doc)
		if err != nil {
			t.Fatalf("segments: %v", err)
		}

		var dump segmentDump
		if err := yaml.Unmarshal([]byte(out), &dump); err != nil {
			t.Fatalf("output is not YAML: %v\n%s", err, out)
		}
		if len(dump.Segments) != 3 || dump.Segments[2].Text != "World." {
			t.Errorf("decoded dump = %+v", dump)
		}
	})

	t.Run("text", func(t *testing.T) {
		out, err := runCLI(t, "segments", "-o", "text", doc)
		if err != nil {
			t.Fatalf("segments: %v", err)
		}
		for _, want := range []string{"3 segments (2 speech, 1 pauses, 0 includes)", "pause    2s"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty document", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.md")
		if err := os.WriteFile(empty, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := runCLI(t, "segments", empty); err != nil {
			t.Fatalf("segments on empty document: %v", err)
		}
	})

	t.Run("bad output flag", func(t *testing.T) {
		if _, err := runCLI(t, "segments", "-o", "xml", doc); err == nil {
			t.Error("expected error for unknown output format")
		}
	})
}

func TestVoicesCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := runCLI(t, "voices", "--voice", "onyx")
	if err != nil {
		t.Fatalf("voices: %v", err)
	}
	if !strings.Contains(out, "* onyx") {
		t.Errorf("configured voice not marked:\n%s", out)
	}
	if !strings.Contains(out, "  nova") {
		t.Errorf("voice list incomplete:\n%s", out)
	}

	out, err = runCLI(t, "voices", "-o", "yaml")
	if err != nil {
		t.Fatalf("voices -o yaml: %v", err)
	}
	var voices []map[string]string
	if err := yaml.Unmarshal([]byte(out), &voices); err != nil || len(voices) == 0 {
		t.Errorf("yaml voices = %v, %v", voices, err)
	}
}
