package hcl_adapter

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/config"
	"github.com/vk/xclgen/internal/ctxlog"
	"github.com/vk/xclgen/internal/vitis"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ArtifactType is the cty type of artifact handles inside expressions.
var ArtifactType = cty.Capsule("artifact", reflect.TypeOf(vitis.Artifact{}))

// ArtifactVal wraps a handle as a cty value.
func ArtifactVal(a *vitis.Artifact) cty.Value {
	return cty.CapsuleVal(ArtifactType, a)
}

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

var _ config.Converter = (*Converter)(nil)

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// EvalContext builds the variables `xo` and `bitstream`, each an object of
// the artifacts registered so far keyed by declaration name.
func (c *Converter) EvalContext(artifacts map[address.Address]*vitis.Artifact) *hcl.EvalContext {
	byKind := make(map[address.Kind]map[string]cty.Value, len(address.Kinds))
	for _, kind := range address.Kinds {
		byKind[kind] = make(map[string]cty.Value)
	}
	for addr, artifact := range artifacts {
		if objs, ok := byKind[addr.Kind]; ok && artifact != nil {
			objs[addr.Name] = ArtifactVal(artifact)
		}
	}

	vars := make(map[string]cty.Value, len(byKind))
	for kind, objs := range byKind {
		vars[string(kind)] = cty.ObjectVal(objs)
	}
	return &hcl.EvalContext{Variables: vars}
}

// DecodeString evaluates expr and converts the result to a Go string.
// Numbers and bools are converted the way HCL converts them.
func (c *Converter) DecodeString(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	if expr == nil {
		return "", nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluating %s: %w", expr.Range(), diags)
	}
	if val.IsNull() {
		return "", nil
	}
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("%s: value is not known", expr.Range())
	}

	strVal, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: expected a string: %w", expr.Range(), err)
	}
	var s string
	if err := gocty.FromCtyValue(strVal, &s); err != nil {
		return "", fmt.Errorf("%s: %w", expr.Range(), err)
	}
	return s, nil
}

// DecodeSources evaluates expr into source references. A single value is
// treated as a one-element list. Elements must be strings or artifacts, and
// sets are rejected because they lose declared order and duplicates.
func (c *Converter) DecodeSources(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) ([]vitis.SourceRef, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: evaluating %s: %v", vitis.ErrInvalidSource, expr.Range(), diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("%w: %s: value is not known", vitis.ErrInvalidSource, expr.Range())
	}

	ty := val.Type()
	if ty.IsSetType() {
		return nil, fmt.Errorf("%w: %s: sources must be a list, not a set", vitis.ErrInvalidSource, expr.Range())
	}
	if !ty.IsListType() && !ty.IsTupleType() {
		ref, err := sourceRef(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", expr.Range(), err)
		}
		return []vitis.SourceRef{ref}, nil
	}

	refs := make([]vitis.SourceRef, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		ref, err := sourceRef(elem)
		if err != nil {
			return nil, fmt.Errorf("%s: element %d: %w", expr.Range(), len(refs), err)
		}
		refs = append(refs, ref)
	}
	ctxlog.FromContext(ctx).Debug("Decoded sources.", "range", expr.Range().String(), "count", len(refs))
	return refs, nil
}

func sourceRef(val cty.Value) (vitis.SourceRef, error) {
	if val.IsNull() {
		return nil, fmt.Errorf("%w: null source", vitis.ErrInvalidSource)
	}
	if val.Type().Equals(ArtifactType) {
		return val.EncapsulatedValue().(*vitis.Artifact), nil
	}
	if val.Type() != cty.String {
		return nil, fmt.Errorf("%w: %s is neither a path nor an artifact", vitis.ErrInvalidSource, val.Type().FriendlyName())
	}
	return vitis.PathSource(val.AsString()), nil
}
