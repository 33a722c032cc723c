package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/xclgen/internal/ctxlog"
)

// watch runs the command once and again after every settled change to an
// .hcl file under the configured paths. Failures of individual runs are
// logged and do not stop the loop; it ends when ctx is cancelled.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(a.config.Paths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		logger.Debug("Watching directory.", "path", dir)
	}

	a.rerun(ctx)
	logger.Info("Watching for configuration changes.", "directories", len(dirs))

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("Could not watch new directory.", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !strings.HasSuffix(event.Name, ".hcl") || event.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("Configuration changed.", "path", event.Name, "op", event.Op.String())
			settle = time.After(a.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			logger.Error("File watcher error.", "error", err)

		case <-settle:
			settle = nil
			a.rerun(ctx)
		}
	}
}

func (a *App) rerun(ctx context.Context) {
	if err := a.runOnce(ctx); err != nil {
		ctxlog.FromContext(ctx).Error("Run failed.", "error", err)
	}
}

// watchDirs returns every directory that holds or may hold configuration:
// each configured directory with its subdirectories, and the parent of each
// configured file.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", p, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
