package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/xclgen/internal/app"
	"github.com/vk/xclgen/internal/vitis"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

type options struct {
	buildDir   string
	scratchDir string
	privateDir string
	tool       string
	searchPath []string
	format     string
	logFormat  string
	logLevel   string
	workers    int
	watch      bool
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	var (
		opts   options
		parsed *app.Config
	)

	root := &cobra.Command{
		Use:   "xclgen",
		Short: "Generate v++ build tasks for FPGA kernels and bitstreams.",
		Long: `xclgen reads xo and bitstream declarations from HCL files and emits the
v++ compile and link tasks that build them. It never runs the compiler itself.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.buildDir, "build-dir", "build", "Build root; bitstreams are written here.")
	flags.StringVar(&opts.scratchDir, "scratch-dir", "", "Directory for kernel objects. Defaults to <build-dir>/scratch.")
	flags.StringVar(&opts.privateDir, "private-dir", "", "Directory for compiler work dirs. Defaults to <build-dir>/private.")
	flags.StringVar(&opts.tool, "tool", vitis.DefaultTool, "Name or path of the compiler executable.")
	flags.StringArrayVar(&opts.searchPath, "search-path", nil, "Extra directory searched for the compiler before PATH. Repeatable.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.IntVar(&opts.workers, "workers", 4, "Number of declarations generated concurrently.")

	planCmd := &cobra.Command{
		Use:   "plan [PATH...]",
		Short: "Generate the build plan and print it.",
		Long:  "Each PATH is a single .hcl file or a directory searched recursively for .hcl files. Defaults to the current directory.",
		RunE: func(cmd *cobra.Command, paths []string) error {
			cfg, err := opts.config(app.CommandPlan, paths)
			parsed = cfg
			return err
		},
	}
	planCmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Plan output format. Options: 'json', 'yaml' or 'hcl'.")
	planCmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-generate the plan whenever a .hcl file changes.")

	validateCmd := &cobra.Command{
		Use:   "validate [PATH...]",
		Short: "Check declarations and their references without generating tasks.",
		RunE: func(cmd *cobra.Command, paths []string) error {
			cfg, err := opts.config(app.CommandValidate, paths)
			parsed = cfg
			return err
		},
	}

	root.AddCommand(planCmd, validateCmd)

	if err := root.Execute(); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			return nil, false, exitErr
		}
		return nil, false, usageError("%v", err)
	}
	if parsed == nil {
		// Help was requested or no subcommand was given.
		return nil, true, nil
	}
	return parsed, false, nil
}

func (o *options) config(command app.Command, paths []string) (*app.Config, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	logFormat := strings.ToLower(o.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(o.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	cfg, err := app.NewConfig(app.Config{
		Command:     command,
		Paths:       paths,
		BuildDir:    o.buildDir,
		ScratchDir:  o.scratchDir,
		PrivateDir:  o.privateDir,
		Tool:        o.tool,
		SearchPath:  o.searchPath,
		Format:      o.format,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		WorkerCount: o.workers,
		Watch:       o.watch,
	})
	if err != nil {
		return nil, usageError("%v", err)
	}
	return cfg, nil
}
