package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Origin tells who produced an artifact and therefore who owns it.
type Origin int

const (
	Synthesized Origin = iota
	GeneratedSilence
	ExternalReference
)

func (o Origin) String() string {
	switch o {
	case Synthesized:
		return "synthesized"
	case GeneratedSilence:
		return "silence"
	case ExternalReference:
		return "external"
	default:
		return "unknown"
	}
}

// Artifact is one decodable audio file destined for assembly.
type Artifact struct {
	Path   string
	Origin Origin
}

// Transient reports whether the pipeline owns the file and deletes it after
// assembly. External references belong to the caller.
func (a Artifact) Transient() bool {
	return a.Origin != ExternalReference
}

// Slot holds the artifacts of one segment in playback order. A speech
// segment has one artifact per chunk; a skipped include has none.
type Slot []Artifact

// scratch is the per-document working directory for transient artifacts.
// It is created on first use, next to the output so moves stay atomic.
type scratch struct {
	dir     string
	created bool
}

func newScratch(parent string) *scratch {
	return &scratch{dir: filepath.Join(parent, ".scripttts-"+uuid.NewString())}
}

func (s *scratch) chunkPath(segment, chunk int) string {
	return filepath.Join(s.dir, fmt.Sprintf("segment_%04d_chunk_%04d.wav", segment, chunk))
}

func (s *scratch) pausePath(segment int) string {
	return filepath.Join(s.dir, fmt.Sprintf("segment_%04d_pause.wav", segment))
}

func (s *scratch) ensure() error {
	if s.created {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	s.created = true

	return nil
}
