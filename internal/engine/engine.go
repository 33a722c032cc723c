package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/config"
	"github.com/vk/xclgen/internal/ctxlog"
	"github.com/vk/xclgen/internal/vitis"
	"golang.org/x/sync/errgroup"
)

// Engine generates the tasks of every declaration in a model.
type Engine struct {
	model     *config.Model
	converter config.Converter
	generator *vitis.Generator
	workers   int
}

// New creates an engine. A worker count below one means one worker.
func New(model *config.Model, converter config.Converter, generator *vitis.Generator, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		model:     model,
		converter: converter,
		generator: generator,
		workers:   workers,
	}
}

// Result reports what a run produced.
type Result struct {
	// Artifacts maps each declaration to the handle of its final artifact.
	Artifacts map[address.Address]*vitis.Artifact
	// Levels lists declaration addresses in the order they were generated.
	Levels [][]address.Address
}

// Validate checks references and cycles without generating anything.
func (e *Engine) Validate(ctx context.Context) error {
	g, err := buildGraph(e.model)
	if err != nil {
		return err
	}
	_, err = levels(e.model, g)
	return err
}

// Run generates every declaration. The first failure cancels the remaining
// work of its level and no further level is started.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	g, err := buildGraph(e.model)
	if err != nil {
		return nil, err
	}
	lvls, err := levels(e.model, g)
	if err != nil {
		return nil, err
	}
	logger.Debug("Declaration graph built.", "declarations", len(e.model.Declarations), "levels", len(lvls))

	result := &Result{Artifacts: make(map[address.Address]*vitis.Artifact, len(e.model.Declarations))}
	var mu sync.Mutex

	for i, level := range lvls {
		// Members of one level never reference each other, so one snapshot
		// of earlier artifacts serves the whole level.
		evalCtx := e.converter.EvalContext(result.Artifacts)
		logger.Debug("Generating level.", "level", i, "declarations", len(level))

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(e.workers)
		addrs := make([]address.Address, len(level))
		for j, decl := range level {
			addrs[j] = decl.Address
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				artifact, err := e.generate(egCtx, decl, evalCtx)
				if err != nil {
					return &DeclarationError{Address: decl.Address, Range: decl.Range, Err: err}
				}
				mu.Lock()
				result.Artifacts[decl.Address] = artifact
				mu.Unlock()
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		result.Levels = append(result.Levels, addrs)
	}

	logger.Info("Generation finished.", "declarations", len(result.Artifacts))
	return result, nil
}

func (e *Engine) generate(ctx context.Context, decl *config.Declaration, evalCtx *hcl.EvalContext) (*vitis.Artifact, error) {
	ctx, logger := ctxlog.With(ctx, "declaration", decl.Address.String())
	logger.Debug("Generating declaration.")

	positional, err := e.converter.DecodeSources(ctx, decl.Inputs, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	sources, err := e.converter.DecodeSources(ctx, decl.Sources, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	platform, err := e.converter.DecodeString(ctx, decl.Platform, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("platform: %w", err)
	}
	buildTarget, err := e.converter.DecodeString(ctx, decl.BuildTarget, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("build_target: %w", err)
	}

	switch decl.Address.Kind {
	case address.KindXO:
		kernel, err := e.converter.DecodeString(ctx, decl.Kernel, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("kernel: %w", err)
		}
		if decl.Kernel == nil {
			kernel = decl.Address.Name
		}
		srcDir, err := e.converter.DecodeString(ctx, decl.KernelSrcDir, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("kernel_src_dir: %w", err)
		}
		return e.generator.GenerateXO(ctx, vitis.XOOptions{
			Sources:      sources,
			Platform:     platform,
			BuildTarget:  buildTarget,
			Kernel:       kernel,
			KernelSrcDir: srcDir,
		}, positional...)

	case address.KindBitstream:
		return e.generator.Bitstream(ctx, vitis.BitstreamOptions{
			BitstreamName: decl.Address.Name,
			Sources:       sources,
			Platform:      platform,
			BuildTarget:   buildTarget,
		}, positional...)

	default:
		return nil, fmt.Errorf("unsupported declaration kind %q", decl.Address.Kind)
	}
}
