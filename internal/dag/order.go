package dag

import (
	"fmt"
	"sort"
)

// Levels groups nodes into dependency levels: level 0 has no dependencies and
// every node sits one level after its deepest dependency. Nodes within a level
// are independent of each other and sorted by ID. A cyclic graph is an error.
func (g *Graph) Levels() ([][]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	var ready []string
	for id, n := range g.nodes {
		pending[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, id)
		}
	}

	var levels [][]string
	placed := 0
	for len(ready) > 0 {
		sort.Strings(ready)
		levels = append(levels, ready)
		placed += len(ready)

		var next []string
		for _, id := range ready {
			for depID := range g.nodes[id].dependents {
				pending[depID]--
				if pending[depID] == 0 {
					next = append(next, depID)
				}
			}
		}
		ready = next
	}

	if placed != len(g.nodes) {
		var stuck []string
		for id, count := range pending {
			if count > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("cycle detected involving node '%s'", stuck[0])
	}
	return levels, nil
}

// TopologicalOrder flattens Levels into one dependency-respecting order.
func (g *Graph) TopologicalOrder() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}
