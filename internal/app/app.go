package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vk/xclgen/internal/config"
	"github.com/vk/xclgen/internal/ctxlog"
	"github.com/vk/xclgen/internal/host"
	"github.com/vk/xclgen/internal/vitis"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	env      vitis.Environment
	debounce time.Duration
}

// NewApp is the constructor for the main application. Plans are written to
// outW and logs to logW, through an isolated logger.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	env, err := host.NewLocal(host.Config{
		BuildDir:   cfg.BuildDir,
		ScratchDir: cfg.ScratchDir,
		PrivateDir: cfg.PrivateDir,
		SearchPath: cfg.SearchPath,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring host environment: %w", err)
	}
	logger.Debug("Host environment configured.",
		"build_dir", env.BuildDir(),
		"scratch_dir", env.ScratchDir(),
		"private_dir", env.PrivateDir(),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		env:      env,
		debounce: 200 * time.Millisecond,
	}, nil
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
