package engine

import (
	"fmt"

	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/config"
	"github.com/vk/xclgen/internal/dag"
	"github.com/vk/xclgen/internal/vitis"
)

// buildGraph links every declaration to the declarations it references.
func buildGraph(model *config.Model) (*dag.Graph, error) {
	g := dag.New()
	for _, decl := range model.Declarations {
		g.AddNode(decl.Address.String())
	}

	for _, decl := range model.Declarations {
		for _, ref := range decl.References {
			if ref.Equal(decl.Address) {
				return nil, &DeclarationError{
					Address: decl.Address,
					Range:   decl.Range,
					Err:     fmt.Errorf("%w: %s references itself", ErrCycle, decl.Address),
				}
			}
			if _, ok := model.Lookup(ref); !ok {
				return nil, &DeclarationError{
					Address: decl.Address,
					Range:   decl.Range,
					Err:     fmt.Errorf("%w: reference to undeclared %s", vitis.ErrInvalidSource, ref),
				}
			}
			if err := g.AddEdge(ref.String(), decl.Address.String()); err != nil {
				return nil, err
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	return g, nil
}

// levels returns the declarations grouped by dependency level.
func levels(model *config.Model, g *dag.Graph) ([][]*config.Declaration, error) {
	idLevels, err := g.Levels()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}

	out := make([][]*config.Declaration, len(idLevels))
	for i, ids := range idLevels {
		out[i] = make([]*config.Declaration, len(ids))
		for j, id := range ids {
			addr, err := address.Parse(id)
			if err != nil {
				return nil, err
			}
			decl, ok := model.Lookup(addr)
			if !ok {
				return nil, fmt.Errorf("graph node %s has no declaration", id)
			}
			out[i][j] = decl
		}
	}
	return out, nil
}
