package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/config"
	"github.com/vk/xclgen/internal/ctxlog"
	"github.com/vk/xclgen/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths and merges their
// declarations into one model. Declaring one address twice is an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	model := &config.Model{}
	declared := make(map[address.Address]hcl.Range)

	add := func(decl *config.Declaration) error {
		if prev, ok := declared[decl.Address]; ok {
			return fmt.Errorf("duplicate declaration %s at %s, first declared at %s", decl.Address, decl.Range, prev)
		}
		declared[decl.Address] = decl.Range
		model.Declarations = append(model.Declarations, decl)
		return nil
	}

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.XOs {
			decl, err := translateXO(ctx, block)
			if err != nil {
				return nil, nil, err
			}
			if err := add(decl); err != nil {
				return nil, nil, err
			}
		}
		for _, block := range root.Bitstreams {
			decl, err := translateBitstream(ctx, block)
			if err != nil {
				return nil, nil, err
			}
			if err := add(decl); err != nil {
				return nil, nil, err
			}
		}
	}

	model.Sort()
	logger.Debug("HCL loading complete.", "files", len(hclFiles), "declarations", len(model.Declarations))
	return model, NewConverter(), nil
}

func translateXO(ctx context.Context, b *xoBlock) (*config.Declaration, error) {
	addr := address.New(address.KindXO, b.Name)
	logger := ctxlog.FromContext(ctx).With("declaration", addr.String())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL block to internal config model.")

	decl := &config.Declaration{
		Address:      addr,
		Range:        b.DeclRange,
		Kernel:       definedOrNil(ctx, b.Kernel, "kernel"),
		Sources:      definedOrNil(ctx, b.Sources, "sources"),
		Inputs:       definedOrNil(ctx, b.Inputs, "inputs"),
		Platform:     definedOrNil(ctx, b.Platform, "platform"),
		BuildTarget:  definedOrNil(ctx, b.BuildTarget, "build_target"),
		KernelSrcDir: definedOrNil(ctx, b.KernelSrcDir, "kernel_src_dir"),
	}
	return withReferences(decl)
}

func translateBitstream(ctx context.Context, b *bitstreamBlock) (*config.Declaration, error) {
	addr := address.New(address.KindBitstream, b.Name)
	logger := ctxlog.FromContext(ctx).With("declaration", addr.String())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL block to internal config model.")

	decl := &config.Declaration{
		Address:     addr,
		Range:       b.DeclRange,
		Sources:     definedOrNil(ctx, b.Sources, "sources"),
		Inputs:      definedOrNil(ctx, b.Inputs, "inputs"),
		Platform:    definedOrNil(ctx, b.Platform, "platform"),
		BuildTarget: definedOrNil(ctx, b.BuildTarget, "build_target"),
	}
	return withReferences(decl)
}

func withReferences(decl *config.Declaration) (*config.Declaration, error) {
	if !address.ValidName(decl.Address.Name) {
		return nil, fmt.Errorf("%s: invalid declaration name %q", decl.Range, decl.Address.Name)
	}
	for _, expr := range []hcl.Expression{decl.Kernel, decl.Platform, decl.BuildTarget, decl.KernelSrcDir} {
		if expr != nil && len(expr.Variables()) > 0 {
			return nil, fmt.Errorf("%s: only sources and inputs may reference other declarations", expr.Range())
		}
	}

	refs, err := references(decl.Inputs, decl.Sources)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", decl.Address, err)
	}
	decl.References = refs
	return decl, nil
}
