package app

import (
	"errors"
	"fmt"

	"github.com/vk/xclgen/internal/plan"
)

// Command selects what a run does with the loaded declarations.
type Command string

const (
	// CommandPlan generates every task and prints the plan.
	CommandPlan Command = "plan"
	// CommandValidate checks the declarations without generating tasks.
	CommandValidate Command = "validate"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command Command
	Paths   []string // hcl files or directories

	BuildDir   string
	ScratchDir string
	PrivateDir string
	Tool       string
	SearchPath []string

	Format      string
	LogFormat   string
	LogLevel    string
	WorkerCount int
	Watch       bool
}

// NewConfig validates cfg and returns a copy with defaults applied.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandPlan, CommandValidate:
	case "":
		cfg.Command = CommandPlan
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	if cfg.BuildDir == "" {
		return nil, errors.New("BuildDir is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}

	if cfg.Format == "" {
		cfg.Format = string(plan.FormatJSON)
	}
	format, err := plan.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	cfg.Format = string(format)

	cfg.Paths = append([]string(nil), cfg.Paths...)
	cfg.SearchPath = append([]string(nil), cfg.SearchPath...)
	return &cfg, nil
}
