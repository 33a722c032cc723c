package config

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/xclgen/internal/address"
)

// Model is the unified, format-agnostic representation of a build
// description.
type Model struct {
	// Declarations is sorted by address.
	Declarations []*Declaration
}

// Declaration is one `xo` or `bitstream` block. Attribute expressions are
// nil when the attribute was not written.
type Declaration struct {
	Address address.Address
	Range   hcl.Range

	Kernel       hcl.Expression
	Sources      hcl.Expression
	Inputs       hcl.Expression
	Platform     hcl.Expression
	BuildTarget  hcl.Expression
	KernelSrcDir hcl.Expression

	// References lists the declarations named in Sources and Inputs, sorted
	// and without duplicates.
	References []address.Address
}

// Lookup returns the declaration with the given address.
func (m *Model) Lookup(addr address.Address) (*Declaration, bool) {
	i := sort.Search(len(m.Declarations), func(i int) bool {
		return !m.Declarations[i].Address.Less(addr)
	})
	if i < len(m.Declarations) && m.Declarations[i].Address.Equal(addr) {
		return m.Declarations[i], true
	}
	return nil, false
}

// Sort orders declarations by address.
func (m *Model) Sort() {
	sort.Slice(m.Declarations, func(i, j int) bool {
		return m.Declarations[i].Address.Less(m.Declarations[j].Address)
	})
}
