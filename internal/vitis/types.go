package vitis

import (
	"fmt"
	"strings"

	"github.com/vk/xclgen/internal/address"
)

// ArtifactKind tags a generated path with what lives there.
type ArtifactKind string

const (
	KindObject    ArtifactKind = "object"
	KindBitstream ArtifactKind = "bitstream"
	KindScratch   ArtifactKind = "scratch"
)

// ArtifactPath is a generated, deterministic path. It is never user supplied.
type ArtifactPath struct {
	Kind ArtifactKind
	Path string
}

// SourcePath lets a planned path feed a later stage directly.
func (p ArtifactPath) SourcePath() (string, error) {
	if p.Path == "" {
		return "", fmt.Errorf("%w: empty %s path", ErrInvalidSource, p.Kind)
	}
	return p.Path, nil
}

func (p ArtifactPath) String() string {
	return p.Path
}

// SourceRef references a source artifact: a literal path or the output of an
// earlier task. It resolves to a concrete path at generation time.
type SourceRef interface {
	SourcePath() (string, error)
}

// PathSource is a literal source path as written in a declaration.
type PathSource string

// SourcePath returns the path itself, rejecting blank values.
func (p PathSource) SourcePath() (string, error) {
	if strings.TrimSpace(string(p)) == "" {
		return "", fmt.Errorf("%w: empty source path", ErrInvalidSource)
	}
	return string(p), nil
}

// Paths converts plain strings into source references.
func Paths(paths ...string) []SourceRef {
	refs := make([]SourceRef, len(paths))
	for i, p := range paths {
		refs[i] = PathSource(p)
	}
	return refs
}

// Artifact is the host's handle to a registered task output. It can be used
// as a source of a later declaration.
type Artifact struct {
	// Producer is the address of the task that writes Output.
	Producer address.Address
	Output   ArtifactPath
}

// SourcePath returns the artifact's output path.
func (a *Artifact) SourcePath() (string, error) {
	if a == nil {
		return "", fmt.Errorf("%w: nil artifact", ErrInvalidSource)
	}
	return a.Output.SourcePath()
}

func (a *Artifact) String() string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%s)", a.Producer, a.Output.Path)
}

// ToolHandle is the resolved location of the external compiler. It is never
// mutated after resolution.
type ToolHandle struct {
	Name string
	Path string
}

// StageCommand is the ordered argument vector of one stage plus the flags the
// host needs to schedule it.
type StageCommand struct {
	Args           []string
	Console        bool
	BuildByDefault bool
	AlwaysStale    bool
}

// BuildTask is the unit handed to the host build engine.
type BuildTask struct {
	ID         address.Address
	Command    StageCommand
	Inputs     []SourceRef
	Outputs    []ArtifactPath
	WorkingDir ArtifactPath
}

// InputPaths resolves every input to its path.
func (t *BuildTask) InputPaths() ([]string, error) {
	paths := make([]string, 0, len(t.Inputs))
	for i, in := range t.Inputs {
		p, err := sourcePath(in)
		if err != nil {
			return nil, fmt.Errorf("task %s input %d: %w", t.ID, i, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// sourcePath resolves a reference, treating nil and typed-nil values as invalid.
func sourcePath(ref SourceRef) (string, error) {
	switch r := ref.(type) {
	case nil:
		return "", fmt.Errorf("%w: nil source", ErrInvalidSource)
	case *Artifact:
		if r == nil {
			return "", fmt.Errorf("%w: nil artifact", ErrInvalidSource)
		}
	}
	return ref.SourcePath()
}
