package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Status is the outcome of one document.
type Status string

const (
	StatusConverted Status = "converted"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// Record is the outcome of one attempted document.
type Record struct {
	Document string
	Output   string
	Status   Status
	Chunks   int
	Elapsed  time.Duration
	Err      error
}

// Stats holds aggregate timing over converted documents.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean elapsed time over the converted
// records. It returns the zero Stats when nothing was converted.
func ComputeStats(records []Record) Stats {
	var (
		st    Stats
		sum   time.Duration
		count int
	)
	for _, r := range records {
		if r.Status != StatusConverted {
			continue
		}
		if count == 0 || r.Elapsed < st.Min {
			st.Min = r.Elapsed
		}
		if r.Elapsed > st.Max {
			st.Max = r.Elapsed
		}
		sum += r.Elapsed
		count++
	}
	if count > 0 {
		st.Mean = sum / time.Duration(count)
	}

	return st
}

// WriteTable writes a human-readable ASCII table of the batch to w.
func WriteTable(w io.Writer, sum Summary) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-32s  %-9s  %6s  %10s\n", "Document", "Status", "Chunks", "MS")
	fmt.Fprintln(sb, strings.Repeat("-", 63))

	for _, r := range sum.Records {
		fmt.Fprintf(sb, "%-32s  %-9s  %6d  %10.1f\n",
			filepath.Base(r.Document),
			r.Status,
			r.Chunks,
			float64(r.Elapsed.Milliseconds()),
		)
	}

	stats := ComputeStats(sum.Records)
	fmt.Fprintln(sb, strings.Repeat("-", 63))
	fmt.Fprintf(sb, "%-32s  %-9s  %6s  %10.1f  (min)\n", "", "", "", float64(stats.Min.Milliseconds()))
	fmt.Fprintf(sb, "%-32s  %-9s  %6s  %10.1f  (mean)\n", "", "", "", float64(stats.Mean.Milliseconds()))
	fmt.Fprintf(sb, "%-32s  %-9s  %6s  %10.1f  (max)\n", "", "", "", float64(stats.Max.Milliseconds()))
	fmt.Fprintf(sb, "candidates=%d already=%d converted=%d empty=%d failed=%d\n",
		sum.Candidates, sum.AlreadyConverted, sum.Converted, sum.Empty, sum.Failed)

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by WriteJSON.
type jsonReport struct {
	Candidates       int          `json:"candidates"`
	AlreadyConverted int          `json:"already_converted"`
	Converted        int          `json:"converted"`
	Empty            int          `json:"empty"`
	Failed           int          `json:"failed"`
	Documents        []jsonRecord `json:"documents"`
	Stats            jsonStats    `json:"stats"`
}

type jsonRecord struct {
	Document  string  `json:"document"`
	Output    string  `json:"output,omitempty"`
	Status    Status  `json:"status"`
	Chunks    int     `json:"chunks"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// WriteJSON writes a JSON report of the batch to w.
func WriteJSON(w io.Writer, sum Summary) error {
	stats := ComputeStats(sum.Records)
	jr := jsonReport{
		Candidates:       sum.Candidates,
		AlreadyConverted: sum.AlreadyConverted,
		Converted:        sum.Converted,
		Empty:            sum.Empty,
		Failed:           sum.Failed,
		Documents:        make([]jsonRecord, len(sum.Records)),
		Stats: jsonStats{
			MinMS:  float64(stats.Min.Milliseconds()),
			MeanMS: float64(stats.Mean.Milliseconds()),
			MaxMS:  float64(stats.Max.Milliseconds()),
		},
	}
	for i, r := range sum.Records {
		jr.Documents[i] = jsonRecord{
			Document:  r.Document,
			Output:    r.Output,
			Status:    r.Status,
			Chunks:    r.Chunks,
			ElapsedMS: float64(r.Elapsed.Milliseconds()),
		}
		if r.Err != nil {
			jr.Documents[i].Error = r.Err.Error()
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(jr)
}
