package plan

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vk/xclgen/internal/ctxlog"
	"github.com/vk/xclgen/internal/dag"
	"github.com/vk/xclgen/internal/vitis"
)

// ErrConflict is returned when a task ID is registered twice with different
// contents. It is a kind of vitis.ErrNameCollision.
var ErrConflict = fmt.Errorf("conflicting task: %w", vitis.ErrNameCollision)

// Plan is a vitis.TaskSink that keeps every registered task in memory.
// It is safe for concurrent use.
type Plan struct {
	mu        sync.RWMutex
	graph     *dag.Graph
	tasks     map[string]*entry
	producers map[string]string   // output path -> task ID
	consumers map[string][]string // input path -> task IDs
}

type entry struct {
	task     *vitis.BuildTask
	inputs   []string
	outputs  []string
	artifact *vitis.Artifact
}

var _ vitis.TaskSink = (*Plan)(nil)

// New creates an empty plan.
func New() *Plan {
	return &Plan{
		graph:     dag.New(),
		tasks:     make(map[string]*entry),
		producers: make(map[string]string),
		consumers: make(map[string][]string),
	}
}

// Register records a batch of tasks and returns one handle per task. The
// handle points at the task's first output. Registering a task identical to
// one already recorded returns the existing handle.
func (p *Plan) Register(ctx context.Context, tasks ...*vitis.BuildTask) ([]*vitis.Artifact, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("empty task batch")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	batch := make([]*entry, len(tasks))
	fresh := make(map[string]*entry)
	claimed := make(map[string]string)
	for i, task := range tasks {
		e, err := newEntry(task)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		id := task.ID.String()

		if prev, ok := p.tasks[id]; ok {
			if !prev.sameAs(e) {
				return nil, fmt.Errorf("%w: %s differs from the registered task", ErrConflict, id)
			}
			batch[i] = prev
			continue
		}
		if prev, ok := fresh[id]; ok {
			if !prev.sameAs(e) {
				return nil, fmt.Errorf("%w: %s appears twice in one batch", ErrConflict, id)
			}
			batch[i] = prev
			continue
		}

		for _, out := range e.outputs {
			owner, ok := p.producers[out]
			if !ok {
				owner, ok = claimed[out]
			}
			if ok && owner != id {
				return nil, fmt.Errorf("%w: output %s of %s is already produced by %s", vitis.ErrNameCollision, out, id, owner)
			}
			claimed[out] = id
		}
		fresh[id] = e
		batch[i] = e
	}

	logger := ctxlog.FromContext(ctx)
	artifacts := make([]*vitis.Artifact, len(batch))
	for i, e := range batch {
		artifacts[i] = e.artifact
		id := e.task.ID.String()
		if fresh[id] != e {
			continue
		}
		if err := p.commit(id, e); err != nil {
			return nil, fmt.Errorf("registering %s: %w", id, err)
		}
		delete(fresh, id)
		logger.Debug("Task registered.", "task", id, "outputs", e.outputs)
	}
	return artifacts, nil
}

// commit records e and wires it to every known producer and consumer.
// Callers must hold the write lock.
func (p *Plan) commit(id string, e *entry) error {
	p.tasks[id] = e
	p.graph.AddNode(id)

	for _, out := range e.outputs {
		p.producers[out] = id
		for _, consumer := range p.consumers[out] {
			if consumer == id {
				continue
			}
			if err := p.graph.AddEdge(id, consumer); err != nil {
				return fmt.Errorf("linking %s to consumer %s: %w", id, consumer, err)
			}
		}
	}
	for _, in := range e.inputs {
		p.consumers[in] = append(p.consumers[in], id)
		if producer, ok := p.producers[in]; ok && producer != id {
			if err := p.graph.AddEdge(producer, id); err != nil {
				return fmt.Errorf("linking producer %s to %s: %w", producer, id, err)
			}
		}
	}
	return nil
}

// Len returns the number of registered tasks.
func (p *Plan) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tasks)
}

// Task returns the registered task with the given ID.
func (p *Plan) Task(id string) (*vitis.BuildTask, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.tasks[id]
	if !ok {
		return nil, false
	}
	return e.task, true
}

// Tasks returns every registered task in dependency order.
func (p *Plan) Tasks() ([]*vitis.BuildTask, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	order, err := p.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("ordering tasks: %w", err)
	}
	tasks := make([]*vitis.BuildTask, len(order))
	for i, id := range order {
		tasks[i] = p.tasks[id].task
	}
	return tasks, nil
}

// DependsOn returns the IDs of the tasks producing the inputs of the given task.
func (p *Plan) DependsOn(id string) ([]string, error) {
	return p.graph.Dependencies(id)
}

func newEntry(task *vitis.BuildTask) (*entry, error) {
	if task == nil {
		return nil, fmt.Errorf("nil task")
	}
	if task.ID.IsZero() {
		return nil, fmt.Errorf("task without an ID")
	}
	if len(task.Outputs) == 0 {
		return nil, fmt.Errorf("task %s declares no outputs", task.ID)
	}
	if len(task.Command.Args) == 0 {
		return nil, fmt.Errorf("task %s has an empty command", task.ID)
	}

	inputs, err := task.InputPaths()
	if err != nil {
		return nil, err
	}
	outputs := make([]string, len(task.Outputs))
	for i, out := range task.Outputs {
		path, err := out.SourcePath()
		if err != nil {
			return nil, fmt.Errorf("task %s output %d: %w", task.ID, i, err)
		}
		outputs[i] = path
	}

	return &entry{
		task:    task,
		inputs:  inputs,
		outputs: outputs,
		artifact: &vitis.Artifact{
			Producer: task.ID,
			Output:   task.Outputs[0],
		},
	}, nil
}

func (e *entry) sameAs(o *entry) bool {
	a, b := e.task, o.task
	return a.ID.Equal(b.ID) &&
		slices.Equal(a.Command.Args, b.Command.Args) &&
		a.Command.Console == b.Command.Console &&
		a.Command.BuildByDefault == b.Command.BuildByDefault &&
		a.Command.AlwaysStale == b.Command.AlwaysStale &&
		a.WorkingDir == b.WorkingDir &&
		slices.Equal(e.inputs, o.inputs) &&
		slices.Equal(e.outputs, o.outputs)
}
