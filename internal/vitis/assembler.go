package vitis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/ctxlog"
)

// Phase is the progress of one request through its pipeline.
type Phase int

const (
	PhaseReceived Phase = iota
	PhaseValidated
	PhasePlanned
	PhaseToolResolved
	PhaseEmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseReceived:
		return "received"
	case PhaseValidated:
		return "validated"
	case PhasePlanned:
		return "planned"
	case PhaseToolResolved:
		return "tool_resolved"
	case PhaseEmitted:
		return "emitted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// PipelineAssembler turns requests into build tasks. One assembler owns one
// tool cache and one table of claimed output paths; it is safe for
// concurrent use.
type PipelineAssembler struct {
	tool     string
	resolver *ToolResolver
	planner  ArtifactPlanner

	mu     sync.Mutex
	claims map[string]string // output path -> owner
}

// NewPipelineAssembler creates an assembler that invokes the named tool.
func NewPipelineAssembler(env Environment, tool string) *PipelineAssembler {
	if tool == "" {
		tool = DefaultTool
	}
	return &PipelineAssembler{
		tool:     tool,
		resolver: NewToolResolver(env),
		planner:  NewArtifactPlanner(env),
		claims:   make(map[string]string),
	}
}

// Planner returns the assembler's artifact planner.
func (a *PipelineAssembler) Planner() ArtifactPlanner {
	return a.planner
}

// Tool resolves the assembler's compiler through its cache.
func (a *PipelineAssembler) Tool(ctx context.Context) (*ToolHandle, error) {
	return a.resolver.Resolve(ctx, a.tool)
}

// pipeline tracks one request while it is assembled.
type pipeline struct {
	id     address.Address
	owner  string
	phase  Phase
	logger *slog.Logger
}

func (a *PipelineAssembler) start(ctx context.Context, kind address.Kind, name string, req BuildRequest) (context.Context, *pipeline) {
	if name == "" {
		name = "_"
	}
	id := address.New(kind, name)
	ctx, logger := ctxlog.With(ctx, "request", id.String())
	logger.Debug("Pipeline phase reached.", "phase", PhaseReceived)
	return ctx, &pipeline{
		id:     id,
		owner:  fmt.Sprintf("%s[%s/%s]", id, req.BuildTarget, req.Platform),
		phase:  PhaseReceived,
		logger: logger,
	}
}

func (p *pipeline) advance(to Phase) {
	p.phase = to
	p.logger.Debug("Pipeline phase reached.", "phase", to)
}

func (p *pipeline) fail(err error) error {
	p.logger.Debug("Pipeline aborted.", "phase", p.phase, "error", err)
	return failed(err, p.id.String(), p.phase)
}

// AssembleXO emits the single compile task of a kernel-object request.
func (a *PipelineAssembler) AssembleXO(ctx context.Context, req BuildRequest) (*BuildTask, error) {
	task, _, err := a.assembleXO(ctx, req)
	return task, err
}

// assembleXO is AssembleXO returning a release func that gives back the
// outputs this call claimed.
func (a *PipelineAssembler) assembleXO(ctx context.Context, req BuildRequest) (*BuildTask, func(), error) {
	ctx, p := a.start(ctx, address.KindXO, req.Kernel, req)

	if err := req.validateXO(); err != nil {
		return nil, nil, p.fail(err)
	}
	p.advance(PhaseValidated)

	object := a.planner.ObjectPath(req.Kernel)
	workDir := a.planner.WorkingDir(req.BuildTarget, req.Platform)
	if _, err := a.claim(p.owner, false, object); err != nil {
		return nil, nil, p.fail(err)
	}
	p.advance(PhasePlanned)

	tool, err := a.Tool(ctx)
	if err != nil {
		return nil, nil, p.fail(err)
	}
	p.advance(PhaseToolResolved)

	compile, err := a.compileTask(p.id, tool, req, req.Kernel, object, workDir)
	if err != nil {
		return nil, nil, p.fail(err)
	}
	fresh, err := a.claim(p.owner, true, object)
	if err != nil {
		return nil, nil, p.fail(err)
	}
	p.advance(PhaseEmitted)
	return compile, func() { a.release(p.owner, fresh) }, nil
}

// AssembleBitstream emits the compile and link tasks of a bitstream request,
// in that order. The link task consumes the compile task's object.
func (a *PipelineAssembler) AssembleBitstream(ctx context.Context, req BuildRequest) ([2]*BuildTask, error) {
	tasks, _, err := a.assembleBitstream(ctx, req)
	return tasks, err
}

func (a *PipelineAssembler) assembleBitstream(ctx context.Context, req BuildRequest) ([2]*BuildTask, func(), error) {
	var none [2]*BuildTask
	name := req.BitstreamName
	if name == "" {
		name = req.Kernel
	}
	ctx, p := a.start(ctx, address.KindBitstream, name, req)

	if err := req.validateBitstream(); err != nil {
		return none, nil, p.fail(err)
	}
	kernel, bitstream, _ := req.bitstreamNames()
	p.advance(PhaseValidated)

	object := a.planner.ObjectPath(kernel)
	xclbin := a.planner.BitstreamPath(bitstream)
	workDir := a.planner.WorkingDir(req.BuildTarget, req.Platform)
	if _, err := a.claim(p.owner, false, object, xclbin); err != nil {
		return none, nil, p.fail(err)
	}
	p.advance(PhasePlanned)

	tool, err := a.Tool(ctx)
	if err != nil {
		return none, nil, p.fail(err)
	}
	p.advance(PhaseToolResolved)

	compile, err := a.compileTask(p.id, tool, req, kernel, object, workDir)
	if err != nil {
		return none, nil, p.fail(err)
	}
	// Only the bitstream is a default target; the object is built on demand.
	compile.Command.BuildByDefault = false

	linkCmd, err := LinkCommand(tool, LinkParams{
		Object:      object.Path,
		BuildTarget: req.BuildTarget,
		Platform:    req.Platform,
		WorkDir:     workDir.Path,
		Output:      xclbin.Path,
	})
	if err != nil {
		return none, nil, p.fail(err)
	}
	link := &BuildTask{
		ID:         p.id.WithStage(address.StageLink),
		Command:    linkCmd,
		Inputs:     []SourceRef{object},
		Outputs:    []ArtifactPath{xclbin},
		WorkingDir: workDir,
	}

	fresh, err := a.claim(p.owner, true, object, xclbin)
	if err != nil {
		return none, nil, p.fail(err)
	}
	p.advance(PhaseEmitted)
	return [2]*BuildTask{compile, link}, func() { a.release(p.owner, fresh) }, nil
}

func (a *PipelineAssembler) compileTask(id address.Address, tool *ToolHandle, req BuildRequest, kernel string, object, workDir ArtifactPath) (*BuildTask, error) {
	sources := make([]string, 0, len(req.Sources))
	for i, src := range req.Sources {
		path, err := sourcePath(src)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		sources = append(sources, path)
	}

	cmd, err := CompileCommand(tool, CompileParams{
		Kernel:      kernel,
		Sources:     sources,
		BuildTarget: req.BuildTarget,
		Platform:    req.Platform,
		IncludeDir:  a.planner.IncludeDir(req.KernelSrcDir),
		WorkDir:     workDir.Path,
		Output:      object.Path,
	})
	if err != nil {
		return nil, err
	}

	inputs := make([]SourceRef, len(req.Sources))
	copy(inputs, req.Sources)
	return &BuildTask{
		ID:         id.WithStage(address.StageCompile),
		Command:    cmd,
		Inputs:     inputs,
		Outputs:    []ArtifactPath{object},
		WorkingDir: workDir,
	}, nil
}

// claim checks that no other owner planned the same outputs. With commit set
// the outputs are recorded and the paths that were not already held by owner
// are returned; the check is repeated under the same lock so two concurrent
// requests cannot both win.
func (a *PipelineAssembler) claim(owner string, commit bool, outputs ...ArtifactPath) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, out := range outputs {
		if prev, ok := a.claims[out.Path]; ok && prev != owner {
			return nil, collisionf("%s output %s is already produced by %s", out.Kind, out.Path, prev)
		}
	}
	if !commit {
		return nil, nil
	}
	var fresh []string
	for _, out := range outputs {
		if _, ok := a.claims[out.Path]; !ok {
			a.claims[out.Path] = owner
			fresh = append(fresh, out.Path)
		}
	}
	return fresh, nil
}

// release drops claims recorded by owner on the given paths.
func (a *PipelineAssembler) release(owner string, paths []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, path := range paths {
		if a.claims[path] == owner {
			delete(a.claims, path)
		}
	}
}
