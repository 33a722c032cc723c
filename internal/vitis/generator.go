package vitis

import (
	"context"
	"fmt"

	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/ctxlog"
)

// TaskSink is the host's task-registration facility. Register must accept or
// reject the whole batch; on success it returns one handle per task, in order.
type TaskSink interface {
	Register(ctx context.Context, tasks ...*BuildTask) ([]*Artifact, error)
}

// Option configures a Generator.
type Option func(*Generator)

// WithTool overrides the compiler executable name.
func WithTool(name string) Option {
	return func(g *Generator) {
		g.tool = name
	}
}

// Generator exposes the declarative entry points. One Generator resolves its
// tool at most once, however many kernels and bitstreams it generates.
type Generator struct {
	tool      string
	assembler *PipelineAssembler
	sink      TaskSink
}

// NewGenerator creates a generator for one host environment.
func NewGenerator(env Environment, sink TaskSink, opts ...Option) *Generator {
	g := &Generator{tool: DefaultTool, sink: sink}
	for _, opt := range opts {
		opt(g)
	}
	g.assembler = NewPipelineAssembler(env, g.tool)
	return g
}

// Assembler returns the generator's pipeline assembler.
func (g *Generator) Assembler() *PipelineAssembler {
	return g.assembler
}

// XOOptions are the named options of GenerateXO.
type XOOptions struct {
	Sources      []SourceRef
	Platform     string
	BuildTarget  string
	Kernel       string
	KernelSrcDir string
}

// BitstreamOptions are the named options of Bitstream.
type BitstreamOptions struct {
	BitstreamName string
	Sources       []SourceRef
	Platform      string
	BuildTarget   string
}

// GenerateXO registers the compile task of one kernel and returns the handle
// of its .xo object.
func (g *Generator) GenerateXO(ctx context.Context, opts XOOptions, positional ...SourceRef) (*Artifact, error) {
	sources, err := Aggregate(positional, opts.Sources)
	if err != nil {
		return nil, failed(err, address.New(address.KindXO, opts.Kernel).String(), PhaseReceived)
	}

	task, release, err := g.assembler.assembleXO(ctx, BuildRequest{
		Kernel:       opts.Kernel,
		Platform:     opts.Platform,
		BuildTarget:  opts.BuildTarget,
		Sources:      sources,
		KernelSrcDir: opts.KernelSrcDir,
	})
	if err != nil {
		return nil, err
	}

	artifacts, err := g.register(ctx, task)
	if err != nil {
		release()
		return nil, err
	}
	return artifacts[0], nil
}

// Bitstream registers the compile and link tasks of one bitstream and returns
// the handle of its .xclbin.
func (g *Generator) Bitstream(ctx context.Context, opts BitstreamOptions, positional ...SourceRef) (*Artifact, error) {
	sources, err := Aggregate(positional, opts.Sources)
	if err != nil {
		return nil, failed(err, address.New(address.KindBitstream, opts.BitstreamName).String(), PhaseReceived)
	}

	tasks, release, err := g.assembler.assembleBitstream(ctx, BuildRequest{
		BitstreamName: opts.BitstreamName,
		Platform:      opts.Platform,
		BuildTarget:   opts.BuildTarget,
		Sources:       sources,
	})
	if err != nil {
		return nil, err
	}

	artifacts, err := g.register(ctx, tasks[0], tasks[1])
	if err != nil {
		release()
		return nil, err
	}
	return artifacts[1], nil
}

func (g *Generator) register(ctx context.Context, tasks ...*BuildTask) ([]*Artifact, error) {
	artifacts, err := g.sink.Register(ctx, tasks...)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", tasks[0].ID.Declaration(), err)
	}
	if len(artifacts) != len(tasks) {
		return nil, fmt.Errorf("registering %s: host returned %d handles for %d tasks", tasks[0].ID.Declaration(), len(artifacts), len(tasks))
	}
	ctxlog.FromContext(ctx).Debug("Tasks registered with host.", "declaration", tasks[0].ID.Declaration().String(), "count", len(tasks))
	return artifacts, nil
}
