package dag

import (
	"fmt"
	"slices"
	"strings"

	"wlbind/internal/diag"
	"wlbind/internal/project"
)

type Graph struct {
	Edges   [][]DocID // Edges[from] = []to, from импортирует to
	Indeg   []int     // входящие степени для Kahn (учитывает только присутствующие документы)
	Present []bool    // признак, что документ реально загружен (а не только упомянут)
}

type DocNode struct {
	Meta     project.DocumentMeta
	Reporter diag.Reporter
}

type DocSlot struct {
	Meta     project.DocumentMeta
	Reporter diag.Reporter
	Present  bool
}

func BuildGraph(idx DocIndex, nodes []DocNode) (Graph, []DocSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]DocID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]DocSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Path = name
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta.Path == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Path]
		if !ok {
			// не должно происходить, индекс строится на тех же метаданных
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			b := diag.ReportError(node.Reporter, diag.ProjDuplicateDocument, meta.Span,
				fmt.Sprintf("duplicate document %q", meta.Path))
			if !slot.Meta.Span.IsZero() {
				b = b.WithNote(slot.Meta.Span, fmt.Sprintf("previous declaration of %q", slot.Meta.Path))
			}
			b.Emit()
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[DocID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			toID, ok := idx.NameToID[dep.Path]
			if !ok || int(toID) == from {
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[int(toID)] {
				g.Indeg[int(toID)]++
			}
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

// ReportCycles warns every document taking part in an import cycle. Cycles
// are legal between protocol documents; they only lose a stable emission order.
func ReportCycles(idx DocIndex, slots []DocSlot, topo Topo) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present || slot.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("document %q participates in an import cycle: %s", slot.Meta.Path, summary)
		diag.ReportWarning(slot.Reporter, diag.ProjImportCycle, slot.Meta.Span, msg).
			WithWhere(diag.Coords{Protocol: slot.Meta.Protocol}).
			Emit()
	}
}

// ComputeHashes fills DocHash of every present document, dependencies first.
// Documents on a cycle hash their own content only.
func ComputeHashes(slots []DocSlot, g Graph, topo *Topo) {
	done := make([]bool, len(slots))
	order := topo.Order
	for i := len(order) - 1; i >= 0; i-- {
		id := int(order[i])
		slot := &slots[id]
		deps := make([]project.Digest, 0, len(g.Edges[id]))
		for _, to := range g.Edges[id] {
			if done[int(to)] {
				deps = append(deps, slots[int(to)].Meta.DocHash)
			}
		}
		slot.Meta.DocHash = project.Combine(slot.Meta.ContentHash, deps...)
		done[id] = true
	}
	for _, id := range topo.Cycles {
		slot := &slots[int(id)]
		slot.Meta.DocHash = project.Combine(slot.Meta.ContentHash)
	}
}
