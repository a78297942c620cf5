// Package batch converts every script in a directory that has no output
// yet, one document at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/example/go-script-tts/internal/pipeline"
)

// Converter converts one document. *pipeline.Converter implements it.
type Converter interface {
	Convert(ctx context.Context, docPath string) (pipeline.Result, error)
}

// Summary counts the outcome of a batch run. Candidates equals
// AlreadyConverted + Converted + Empty + Failed when the run completes.
type Summary struct {
	Candidates       int
	AlreadyConverted int
	Converted        int
	Empty            int
	Failed           int
	// Records holds one entry per attempted document in processing order.
	Records []Record
}

// Driver runs a batch over Dir.
type Driver struct {
	Dir       string
	Patterns  []string
	Format    string
	Voice     string
	Converter Converter
	// Out receives human-readable progress. Nil discards it.
	Out    io.Writer
	Logger *slog.Logger
}

// Discover returns the sorted documents in Dir matching any pattern. A
// missing Dir is created and yields no documents.
func (d *Driver) Discover() ([]string, error) {
	info, err := os.Stat(d.Dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(d.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create scripts dir: %w", err)
		}
		d.logger().Info("created scripts directory", slog.String("dir", d.Dir))
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("stat scripts dir: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("scripts dir %s is not a directory", d.Dir)
	}

	patterns := d.Patterns
	if len(patterns) == 0 {
		patterns = []string{"*.md"}
	}

	var docs []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(d.Dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
				docs = append(docs, m)
			}
		}
	}
	slices.Sort(docs)

	return slices.Compact(docs), nil
}

// Missing returns the documents whose output file does not exist yet.
func (d *Driver) Missing(docs []string) []string {
	var missing []string
	for _, doc := range docs {
		if _, err := os.Stat(pipeline.OutputPath(doc, d.Format)); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, doc)
		}
	}

	return missing
}

// Run converts every missing document sequentially. A failing document is
// counted and reported; the batch continues with the next one. Cancelling
// ctx stops the batch and Run returns the context error with the summary so
// far.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if d.Converter == nil {
		return sum, errors.New("batch: converter is required")
	}

	out := d.Out
	if out == nil {
		out = io.Discard
	}
	logger := d.logger()

	fmt.Fprintf(out, "Searching for scripts in %s/...\n", filepath.Base(d.Dir))
	docs, err := d.Discover()
	if err != nil {
		return sum, err
	}
	if len(docs) == 0 {
		fmt.Fprintln(out, "No scripts found.")
		fmt.Fprintf(out, "Place scripts in %s.\n", d.Dir)
		return sum, nil
	}

	missing := d.Missing(docs)
	sum.Candidates = len(docs)
	sum.AlreadyConverted = len(docs) - len(missing)

	fmt.Fprintf(out, "Found: %d script(s)\n", sum.Candidates)
	fmt.Fprintf(out, "Already converted: %d file(s)\n", sum.AlreadyConverted)
	fmt.Fprintf(out, "To convert: %d file(s)\n", len(missing))
	if len(missing) == 0 {
		fmt.Fprintln(out, "\nAll scripts are already converted.")
		return sum, nil
	}
	fmt.Fprintln(out)

	for i, doc := range missing {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		fmt.Fprintf(out, "[%d/%d] Converting: %s\n", i+1, len(missing), filepath.Base(doc))
		start := time.Now()
		res, err := d.Converter.Convert(ctx, doc)
		rec := Record{Document: doc, Chunks: res.Chunks, Elapsed: time.Since(start)}

		switch {
		case err == nil:
			rec.Status = StatusConverted
			rec.Output = res.Output
			sum.Converted++
			fmt.Fprintf(out, "  - segments: %d (%d speech, %d pauses, %d includes)\n",
				res.Segments.Total(), res.Segments.Speech, res.Segments.Silence, res.Segments.Includes)
			if d.Voice != "" {
				fmt.Fprintf(out, "  - voice: %s\n", d.Voice)
			}
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "  - skipped include: %s\n", s)
			}
			fmt.Fprintf(out, "  - wrote: %s\n", filepath.Base(res.Output))
		case errors.Is(err, pipeline.ErrEmptyDocument):
			rec.Status = StatusEmpty
			sum.Empty++
			fmt.Fprintln(out, "  - document is empty, skipping")
		case ctx.Err() != nil:
			rec.Status = StatusFailed
			rec.Err = err
			sum.Failed++
			sum.Records = append(sum.Records, rec)
			return sum, ctx.Err()
		default:
			rec.Status = StatusFailed
			rec.Err = err
			sum.Failed++
			fmt.Fprintf(out, "  - ERROR: %v\n", err)
			logger.Error("conversion failed", slog.String("document", doc), slog.String("error", err.Error()))
		}
		sum.Records = append(sum.Records, rec)
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Done! %d file(s) converted.\n", sum.Converted)

	return sum, nil
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
