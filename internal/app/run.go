package app

import (
	"context"
	"fmt"

	"github.com/vk/xclgen/internal/ctxlog"
	"github.com/vk/xclgen/internal/engine"
	"github.com/vk/xclgen/internal/plan"
	"github.com/vk/xclgen/internal/vitis"
)

// Run executes the configured command once, or keeps re-running it on every
// configuration change when watch mode is on.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	info := vitis.Info
	if info.Unstable {
		a.logger.Warn("Module is unstable.", "module", info.Name, "since", info.Since)
	} else {
		a.logger.Info("Module loaded.", "module", info.Name, "since", info.Since)
	}

	if a.config.Watch {
		return a.watch(ctx)
	}
	return a.runOnce(ctx)
}

func (a *App) runOnce(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	model, converter, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.", "declarations", len(model.Declarations))

	switch a.config.Command {
	case CommandValidate:
		if err := engine.New(model, converter, nil, a.config.WorkerCount).Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(a.outW, "ok: %d declarations\n", len(model.Declarations))
		return nil

	case CommandPlan:
		if len(model.Declarations) == 0 {
			logger.Warn("No declarations found, nothing to generate.")
		}
		p := plan.New()
		gen := vitis.NewGenerator(a.env, p, vitis.WithTool(a.config.Tool))
		if _, err := engine.New(model, converter, gen, a.config.WorkerCount).Run(ctx); err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		logger.Info("Plan generated.", "tasks", p.Len())
		return p.Render(a.outW, plan.Format(a.config.Format))

	default:
		return fmt.Errorf("unknown command %q", a.config.Command)
	}
}
