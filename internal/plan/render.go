package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Format selects the plan encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatHCL}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown plan format %q (want json, yaml or hcl)", s)
}

// Document is the rendered form of a plan.
type Document struct {
	Tasks []TaskView `json:"tasks" yaml:"tasks"`
}

// TaskView is the rendered form of one task.
type TaskView struct {
	ID             string   `json:"id" yaml:"id"`
	Command        []string `json:"command" yaml:"command"`
	Inputs         []string `json:"inputs" yaml:"inputs"`
	Outputs        []string `json:"outputs" yaml:"outputs"`
	WorkingDir     string   `json:"working_dir" yaml:"working_dir"`
	Console        bool     `json:"console" yaml:"console"`
	BuildByDefault bool     `json:"build_by_default" yaml:"build_by_default"`
	AlwaysStale    bool     `json:"always_stale" yaml:"always_stale"`
	DependsOn      []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Document snapshots the plan in dependency order.
func (p *Plan) Document() (*Document, error) {
	tasks, err := p.Tasks()
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	doc := &Document{Tasks: make([]TaskView, 0, len(tasks))}
	for _, task := range tasks {
		id := task.ID.String()
		e := p.tasks[id]
		deps, err := p.graph.Dependencies(id)
		if err != nil {
			return nil, err
		}
		if len(deps) == 0 {
			deps = nil
		}
		doc.Tasks = append(doc.Tasks, TaskView{
			ID:             id,
			Command:        append([]string(nil), task.Command.Args...),
			Inputs:         append([]string{}, e.inputs...),
			Outputs:        append([]string{}, e.outputs...),
			WorkingDir:     task.WorkingDir.Path,
			Console:        task.Command.Console,
			BuildByDefault: task.Command.BuildByDefault,
			AlwaysStale:    task.Command.AlwaysStale,
			DependsOn:      deps,
		})
	}
	return doc, nil
}

// Render writes the plan to w in the given format.
func (p *Plan) Render(w io.Writer, format Format) error {
	doc, err := p.Document()
	if err != nil {
		return err
	}
	return doc.Encode(w, format)
}

// Encode writes the document to w in the given format.
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encoding yaml plan: %w", err)
		}
		return enc.Close()
	case FormatHCL:
		_, err := d.hclFile().WriteTo(w)
		return err
	default:
		return fmt.Errorf("unknown plan format %q", format)
	}
}

func (d *Document) hclFile() *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	for i, t := range d.Tasks {
		if i > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock("task", []string{t.ID}).Body()
		body.SetAttributeValue("command", stringList(t.Command))
		body.SetAttributeValue("inputs", stringList(t.Inputs))
		body.SetAttributeValue("outputs", stringList(t.Outputs))
		body.SetAttributeValue("working_dir", cty.StringVal(t.WorkingDir))
		body.SetAttributeValue("console", cty.BoolVal(t.Console))
		body.SetAttributeValue("build_by_default", cty.BoolVal(t.BuildByDefault))
		body.SetAttributeValue("always_stale", cty.BoolVal(t.AlwaysStale))
		if len(t.DependsOn) > 0 {
			body.SetAttributeValue("depends_on", stringList(t.DependsOn))
		}
	}
	return f
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
