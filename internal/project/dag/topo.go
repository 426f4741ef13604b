package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []DocID   // линейный порядок: импортирующие раньше импортируемых
	Batches [][]DocID // волны независимых документов
	Cyclic  bool
	Cycles  []DocID // узлы, оставшиеся в цикле
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]DocID, 0, nodeCount),
		Batches: make([][]DocID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]DocID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		if indeg[i] == 0 {
			current = append(current, toDocID(i))
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]DocID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]DocID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, toDocID(i))
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}

// EmitOrder lists documents dependencies first; cyclic documents follow in
// identity order.
func (t *Topo) EmitOrder() []DocID {
	out := make([]DocID, 0, len(t.Order)+len(t.Cycles))
	for i := len(t.Order) - 1; i >= 0; i-- {
		out = append(out, t.Order[i])
	}
	return append(out, t.Cycles...)
}

func toDocID(i int) DocID {
	id, err := safecast.Conv[DocID](i)
	if err != nil {
		panic(fmt.Errorf("document id overflow: %w", err))
	}
	return id
}
