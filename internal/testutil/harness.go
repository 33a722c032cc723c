package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/xclgen/internal/app"
	"github.com/vk/xclgen/internal/hcl_adapter"
	"github.com/vk/xclgen/internal/plan"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Options tune one harness run. The zero value plans as JSON with a fake
// v++ on the search path.
type Options struct {
	Command app.Command
	Format  plan.Format
	Tool    string
	// NoTool leaves the search path without a compiler.
	NoTool  bool
	Workers int
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	// Root is the temporary directory holding conf/, build/ and bin/.
	Root string
}

// BuildDir returns the build root used by the run.
func (r *HarnessResult) BuildDir() string { return filepath.Join(r.Root, "build") }

// BinDir returns the directory holding the fake compiler.
func (r *HarnessResult) BinDir() string { return filepath.Join(r.Root, "bin") }

// Plan decodes a JSON plan from the run output.
func (r *HarnessResult) Plan(t *testing.T) *plan.Document {
	t.Helper()
	var doc plan.Document
	require.NoError(t, json.Unmarshal([]byte(r.Output), &doc), "output is not a JSON plan:\n%s", r.Output)
	return &doc
}

// RunIntegrationTest plans the given files with default options.
func RunIntegrationTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithOptions(context.Background(), t, files, Options{})
}

// RunIntegrationTestWithOptions writes files under a temporary conf/
// directory, runs the application against it and captures its output.
func RunIntegrationTestWithOptions(ctx context.Context, t *testing.T, files map[string]string, opts Options) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	confDir := filepath.Join(root, "conf")
	binDir := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	WriteFiles(t, confDir, files)

	tool := opts.Tool
	if tool == "" {
		tool = "v++"
	}
	if !opts.NoTool {
		FakeProgram(t, binDir, tool)
	}

	workers := opts.Workers
	if workers == 0 {
		workers = 4
	}
	cfg, err := app.NewConfig(app.Config{
		Command:     opts.Command,
		Paths:       []string{confDir},
		BuildDir:    filepath.Join(root, "build"),
		Tool:        tool,
		SearchPath:  []string{binDir},
		Format:      string(opts.Format),
		LogLevel:    "debug",
		LogFormat:   "text",
		WorkerCount: workers,
	})
	require.NoError(t, err)

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	a, err := app.NewApp(outBuffer, logBuffer, cfg, hcl_adapter.NewLoader())
	require.NoError(t, err)

	runErr := a.Run(ctx)

	if os.Getenv("XCLGEN_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Output:    outBuffer.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		Root:      root,
	}
}

// WriteFiles writes each file relative to dir, creating subdirectories.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// FakeProgram creates an executable stub named name in dir.
func FakeProgram(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}
