package vitis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

const (
	testBuildDir   = "/work/build"
	testScratchDir = "/work/scratch"
	testPrivateDir = "/work/private"
)

// stubEnv is a host environment with fixed roots and a counting program lookup.
type stubEnv struct {
	programs map[string]string
	lookups  atomic.Int32
}

func newStubEnv(programs map[string]string) *stubEnv {
	return &stubEnv{programs: programs}
}

func (e *stubEnv) BuildDir() string   { return testBuildDir }
func (e *stubEnv) ScratchDir() string { return testScratchDir }
func (e *stubEnv) PrivateDir() string { return testPrivateDir }

func (e *stubEnv) FindProgram(name string) (string, error) {
	e.lookups.Add(1)
	if p, ok := e.programs[name]; ok {
		return p, nil
	}
	return "", errors.New("not on PATH")
}

// recordingSink stores every registered task and hands back simple handles.
type recordingSink struct {
	mu    sync.Mutex
	tasks []*BuildTask
	err   error
}

func (s *recordingSink) Register(_ context.Context, tasks ...*BuildTask) ([]*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	artifacts := make([]*Artifact, len(tasks))
	for i, t := range tasks {
		s.tasks = append(s.tasks, t)
		artifacts[i] = &Artifact{Producer: t.ID, Output: t.Outputs[0]}
	}
	return artifacts, nil
}

func (s *recordingSink) registered() []*BuildTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*BuildTask(nil), s.tasks...)
}

// valueFlags lists every flag of the v++ grammar that takes a value.
var valueFlags = map[string]bool{
	"-t":         true,
	"--platform": true,
	"-k":         true,
	"-I":         true,
	"--temp_dir": true,
	"-o":         true,
}

// parseFlagPairs reads an argument vector back into flag/value pairs.
func parseFlagPairs(args []string) map[string]string {
	pairs := make(map[string]string)
	for i := 1; i < len(args); i++ {
		if valueFlags[args[i]] && i+1 < len(args) {
			pairs[args[i]] = args[i+1]
			i++
		}
	}
	return pairs
}
