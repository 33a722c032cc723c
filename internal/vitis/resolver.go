package vitis

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/xclgen/internal/ctxlog"
)

// ProgramFinder is the host's program-search facility.
type ProgramFinder interface {
	FindProgram(name string) (string, error)
}

// Dirs exposes the host's directory roots.
type Dirs interface {
	BuildDir() string
	ScratchDir() string
	PrivateDir() string
}

// Environment is everything the generator needs from the host.
type Environment interface {
	Dirs
	ProgramFinder
}

// ToolResolver locates external tools and caches the result for its own
// lifetime. Each name is looked up at most once, including lookups that fail.
type ToolResolver struct {
	finder ProgramFinder

	mu    sync.Mutex
	tools map[string]*toolSlot
}

type toolSlot struct {
	once   sync.Once
	handle *ToolHandle
	err    error
}

// NewToolResolver creates a resolver backed by the given finder.
func NewToolResolver(finder ProgramFinder) *ToolResolver {
	return &ToolResolver{
		finder: finder,
		tools:  make(map[string]*toolSlot),
	}
}

// Resolve returns the handle for name. The first caller performs the lookup;
// concurrent callers block until it finishes and then share its result.
func (r *ToolResolver) Resolve(ctx context.Context, name string) (*ToolHandle, error) {
	if name == "" {
		return nil, missingf("tool name is required")
	}

	r.mu.Lock()
	slot, ok := r.tools[name]
	if !ok {
		slot = &toolSlot{}
		r.tools[name] = slot
	}
	r.mu.Unlock()

	slot.once.Do(func() {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("Looking up external tool.", "tool", name)

		path, err := r.finder.FindProgram(name)
		if err != nil {
			slot.err = fmt.Errorf("%w: %s: %v", ErrToolNotFound, name, err)
			logger.Error("External tool not found.", "tool", name, "error", err)
			return
		}
		if path == "" {
			slot.err = fmt.Errorf("%w: %s", ErrToolNotFound, name)
			logger.Error("External tool not found.", "tool", name)
			return
		}
		slot.handle = &ToolHandle{Name: name, Path: path}
		logger.Info("Resolved external tool.", "tool", name, "path", path)
	})

	return slot.handle, slot.err
}
