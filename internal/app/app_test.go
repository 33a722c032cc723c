package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xclgen/internal/hcl_adapter"
	"github.com/vk/xclgen/internal/vitis"
)

// lockedBuffer guards a buffer written by the watch loop and read by the test.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

const kernelHCL = `
xo "vadd" {
  sources      = ["vadd.cpp"]
  platform     = "p1"
  build_target = "hw"
}
`

func newTestApp(t *testing.T, mutate func(c *Config)) (*App, *lockedBuffer, *lockedBuffer, string) {
	t.Helper()
	root := t.TempDir()
	conf := filepath.Join(root, "conf")
	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(conf, 0o755))
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "v++"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(conf, "main.hcl"), []byte(kernelHCL), 0o644))

	in := Config{
		Paths:       []string{conf},
		BuildDir:    filepath.Join(root, "build"),
		SearchPath:  []string{bin},
		LogLevel:    "debug",
		WorkerCount: 2,
	}
	if mutate != nil {
		mutate(&in)
	}
	cfg, err := NewConfig(in)
	require.NoError(t, err)

	out, logs := &lockedBuffer{}, &lockedBuffer{}
	a, err := NewApp(out, logs, cfg, hcl_adapter.NewLoader())
	require.NoError(t, err)
	return a, out, logs, conf
}

func TestRunPlan(t *testing.T) {
	a, out, logs, _ := newTestApp(t, nil)

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), `"id": "xo.vadd.compile"`)
	assert.Contains(t, logs.String(), vitis.Info.Name)
	assert.Contains(t, logs.String(), "Plan generated.")
}

func TestRunLoadFailure(t *testing.T) {
	a, _, _, conf := newTestApp(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(conf, "broken.hcl"), []byte(`xo "x" {`), 0o644))

	err := a.Run(context.Background())
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestRunGenerationFailure(t *testing.T) {
	a, out, _, _ := newTestApp(t, func(c *Config) { c.Tool = "xclgen-test-missing-tool" })

	err := a.Run(context.Background())
	require.ErrorIs(t, err, vitis.ErrToolNotFound)
	assert.ErrorContains(t, err, "generation failed")
	assert.Empty(t, out.String(), "no partial plan is printed")
}

func TestNewAppRejectsBadHost(t *testing.T) {
	_, err := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, &Config{LogLevel: "info"}, hcl_adapter.NewLoader())
	assert.ErrorContains(t, err, "configuring host environment")
}

func TestWatchRegeneratesOnChange(t *testing.T) {
	a, out, logs, conf := newTestApp(t, func(c *Config) { c.Watch = true })
	a.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Watching for configuration changes.")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "xo.vadd.compile")

	require.NoError(t, os.WriteFile(filepath.Join(conf, "more.hcl"), []byte(`
xo "vmul" {
  sources      = ["vmul.cpp"]
  platform     = "p1"
  build_target = "hw"
}
`), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "xo.vmul.compile")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
