package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/example/go-script-tts/internal/script"
	"github.com/example/go-script-tts/internal/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type segmentDump struct {
	Document string         `yaml:"document"`
	Counts   script.Counts  `yaml:"counts"`
	Chunks   int            `yaml:"chunks"`
	Segments []segmentEntry `yaml:"segments"`
}

type segmentEntry struct {
	Index   int    `yaml:"index"`
	Kind    string `yaml:"kind"`
	Text    string `yaml:"text,omitempty"`
	Chunks  []int  `yaml:"chunk_chars,omitempty"`
	Seconds int    `yaml:"seconds,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Exists  *bool  `yaml:"exists,omitempty"`
}

func newSegmentsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "segments <script>",
		Short: "Show how a script is split into segments and provider chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if output != "yaml" && output != "text" {
				return fmt.Errorf("--output must be 'yaml' or 'text'")
			}

			dump, err := dumpSegments(args[0], cfg.TTS.MaxChunkChars)
			if err != nil {
				return err
			}

			if output == "yaml" {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(dump); err != nil {
					return err
				}
				return enc.Close()
			}
			writeSegmentsText(cmd.OutOrStdout(), dump)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml|text")

	return cmd
}

// dumpSegments parses docPath without calling the provider.
func dumpSegments(docPath string, maxChunkChars int) (segmentDump, error) {
	raw, err := os.ReadFile(docPath)
	if err != nil {
		return segmentDump{}, fmt.Errorf("read document: %w", err)
	}

	dump := segmentDump{Document: docPath}
	doc, err := text.NormalizeDocument(string(raw))
	if err != nil {
		// Empty documents produce an empty dump.
		return dump, nil //nolint:nilerr
	}

	segments := script.Parse(doc)
	dump.Counts = script.Count(segments)
	for i, seg := range segments {
		entry := segmentEntry{Index: i}
		switch s := seg.(type) {
		case script.Speech:
			entry.Kind = "speech"
			entry.Text = s.Text
			for _, chunk := range text.ChunkForProvider(s.Text, maxChunkChars) {
				entry.Chunks = append(entry.Chunks, utf8.RuneCountInString(chunk))
			}
			dump.Chunks += len(entry.Chunks)
		case script.Silence:
			entry.Kind = "pause"
			entry.Seconds = s.Seconds
		case script.Include:
			entry.Kind = "include"
			entry.Path = s.Path
			path := s.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(filepath.Dir(docPath), path)
			}
			_, statErr := os.Stat(path)
			exists := statErr == nil
			entry.Exists = &exists
		}
		dump.Segments = append(dump.Segments, entry)
	}

	return dump, nil
}

func writeSegmentsText(w io.Writer, dump segmentDump) {
	fmt.Fprintf(w, "%s: %d segments (%d speech, %d pauses, %d includes), %d chunks\n",
		dump.Document, dump.Counts.Total(), dump.Counts.Speech, dump.Counts.Silence, dump.Counts.Includes, dump.Chunks)

	for _, e := range dump.Segments {
		switch e.Kind {
		case "speech":
			fmt.Fprintf(w, "%4d  speech   %d chunk(s) %v  %q\n", e.Index, len(e.Chunks), e.Chunks, preview(e.Text, 48))
		case "pause":
			fmt.Fprintf(w, "%4d  pause    %ds\n", e.Index, e.Seconds)
		case "include":
			status := "found"
			if e.Exists != nil && !*e.Exists {
				status = "missing"
			}
			fmt.Fprintf(w, "%4d  include  %s (%s)\n", e.Index, e.Path, status)
		}
	}
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
