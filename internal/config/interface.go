package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/vitis"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter evaluates the raw attribute expressions of a declaration once
// the artifacts it references are known.
type Converter interface {
	// EvalContext exposes registered artifacts to expressions under their
	// declaration addresses.
	EvalContext(artifacts map[address.Address]*vitis.Artifact) *hcl.EvalContext

	// DecodeString evaluates a string attribute. A nil expression decodes
	// to the empty string.
	DecodeString(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error)

	// DecodeSources evaluates a list of sources. Strings become literal
	// paths and artifact values become artifact handles.
	DecodeSources(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) ([]vitis.SourceRef, error)
}
