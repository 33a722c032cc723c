package vitis

// argv accumulates command tokens. Value-bearing flags always go through opt
// so that flag and value stay two separate tokens.
type argv []string

func (a *argv) flag(names ...string) {
	*a = append(*a, names...)
}

func (a *argv) opt(name, value string) {
	*a = append(*a, name, value)
}

// CompileParams are the inputs of the compile-to-object stage.
type CompileParams struct {
	Kernel      string
	Sources     []string
	BuildTarget string
	Platform    string
	IncludeDir  string
	WorkDir     string
	Output      string
}

// CompileCommand builds:
//
//	<tool> -c -g -t <target> --platform <platform> -k <kernel> -I <include> --temp_dir <work> -o <output> <sources...>
func CompileCommand(tool *ToolHandle, p CompileParams) (StageCommand, error) {
	if err := requireTool(tool); err != nil {
		return StageCommand{}, err
	}
	if err := requireValues(
		"kernel", p.Kernel,
		"build_target", p.BuildTarget,
		"platform", p.Platform,
		"include_dir", p.IncludeDir,
		"temp_dir", p.WorkDir,
		"output", p.Output,
	); err != nil {
		return StageCommand{}, err
	}
	if len(p.Sources) == 0 {
		return StageCommand{}, missingf("compile stage needs at least one source")
	}

	args := argv{tool.Path}
	args.flag("-c", "-g")
	args.opt("-t", p.BuildTarget)
	args.opt("--platform", p.Platform)
	args.opt("-k", p.Kernel)
	args.opt("-I", p.IncludeDir)
	args.opt("--temp_dir", p.WorkDir)
	args.opt("-o", p.Output)
	args.flag(p.Sources...)

	return StageCommand{Args: args, BuildByDefault: true}, nil
}

// LinkParams are the inputs of the link-to-bitstream stage.
type LinkParams struct {
	Object      string
	BuildTarget string
	Platform    string
	WorkDir     string
	Output      string
}

// LinkCommand builds:
//
//	<tool> -l -g --save-temps -t <target> --platform <platform> --temp_dir <work> -o <output> <object>
//
// Linking takes long and reports progress, so the task runs on the console.
func LinkCommand(tool *ToolHandle, p LinkParams) (StageCommand, error) {
	if err := requireTool(tool); err != nil {
		return StageCommand{}, err
	}
	if err := requireValues(
		"object", p.Object,
		"build_target", p.BuildTarget,
		"platform", p.Platform,
		"temp_dir", p.WorkDir,
		"output", p.Output,
	); err != nil {
		return StageCommand{}, err
	}

	args := argv{tool.Path}
	args.flag("-l", "-g", "--save-temps")
	args.opt("-t", p.BuildTarget)
	args.opt("--platform", p.Platform)
	args.opt("--temp_dir", p.WorkDir)
	args.opt("-o", p.Output)
	args.flag(p.Object)

	return StageCommand{Args: args, Console: true, BuildByDefault: true}, nil
}

func requireTool(tool *ToolHandle) error {
	if tool == nil || tool.Path == "" {
		return missingf("tool handle is required")
	}
	return nil
}

// requireValues takes name/value pairs and reports the first empty value.
func requireValues(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return missingf("%s is required", pairs[i])
		}
	}
	return nil
}
