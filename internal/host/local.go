package host

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotExecutable is returned when a candidate program exists but cannot be
// executed.
var ErrNotExecutable = errors.New("not executable")

// Config holds the directory roots and extra program directories of a Local
// environment.
type Config struct {
	BuildDir   string
	ScratchDir string
	PrivateDir string
	// SearchPath lists directories checked, in order, before PATH.
	SearchPath []string
}

// Local is an environment backed by the local filesystem.
type Local struct {
	build   string
	scratch string
	private string
	search  []string
	// lookPath is exec.LookPath outside of tests.
	lookPath func(string) (string, error)
}

// NewLocal validates cfg and returns a Local environment. Scratch and private
// roots default to subdirectories of the build root.
func NewLocal(cfg Config) (*Local, error) {
	if strings.TrimSpace(cfg.BuildDir) == "" {
		return nil, fmt.Errorf("build directory is required")
	}
	build := filepath.Clean(cfg.BuildDir)

	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = filepath.Join(build, "scratch")
	}
	private := cfg.PrivateDir
	if private == "" {
		private = filepath.Join(build, "private")
	}

	search := make([]string, 0, len(cfg.SearchPath))
	for _, dir := range cfg.SearchPath {
		if dir = strings.TrimSpace(dir); dir != "" {
			search = append(search, filepath.Clean(dir))
		}
	}

	return &Local{
		build:    build,
		scratch:  filepath.Clean(scratch),
		private:  filepath.Clean(private),
		search:   search,
		lookPath: exec.LookPath,
	}, nil
}

func (l *Local) BuildDir() string   { return l.build }
func (l *Local) ScratchDir() string { return l.scratch }
func (l *Local) PrivateDir() string { return l.private }

// FindProgram locates an executable by name. A name containing a path
// separator is checked as given; otherwise the configured search directories
// are tried before PATH.
func (l *Local) FindProgram(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("program name is required")
	}

	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		if err := executable(name); err != nil {
			return "", err
		}
		return filepath.Clean(name), nil
	}

	for _, dir := range l.search {
		candidate := filepath.Join(dir, name)
		if err := executable(candidate); err == nil {
			return candidate, nil
		}
	}

	path, err := l.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("looking up %q: %w", name, err)
	}
	return path, nil
}

func executable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s: is a directory: %w", path, ErrNotExecutable)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	return nil
}
