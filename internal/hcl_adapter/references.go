package hcl_adapter

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/vitis"
	"github.com/zclconf/go-cty/cty"
)

// references collects the declarations named by the given expressions. Both
// `xo.mm` and `xo["mm"]` forms are accepted; any other variable is an
// invalid source.
func references(exprs ...hcl.Expression) ([]address.Address, error) {
	seen := make(map[address.Address]struct{})
	var refs []address.Address

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		for _, traversal := range expr.Variables() {
			addr, err := traversalAddress(traversal)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			refs = append(refs, addr)
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs, nil
}

func traversalAddress(traversal hcl.Traversal) (address.Address, error) {
	root := traversal.RootName()
	kind := address.Kind(root)
	if !kind.Known() {
		return address.Address{}, fmt.Errorf("%w: %s: unknown reference %q", vitis.ErrInvalidSource, traversal.SourceRange(), root)
	}
	if len(traversal) < 2 {
		return address.Address{}, fmt.Errorf("%w: %s: reference to %q needs a declaration name", vitis.ErrInvalidSource, traversal.SourceRange(), root)
	}

	var name string
	switch step := traversal[1].(type) {
	case hcl.TraverseAttr:
		name = step.Name
	case hcl.TraverseIndex:
		if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
			name = step.Key.AsString()
		}
	}
	if name == "" {
		return address.Address{}, fmt.Errorf("%w: %s: malformed %s reference", vitis.ErrInvalidSource, traversal.SourceRange(), root)
	}
	if len(traversal) > 2 {
		return address.Address{}, fmt.Errorf("%w: %s: %s.%s is an artifact and has no attributes", vitis.ErrInvalidSource, traversal.SourceRange(), root, name)
	}
	return address.New(kind, name), nil
}
