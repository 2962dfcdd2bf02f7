package layout

import (
	"sort"

	"github.com/mark/erd-diagram-tool/pkg/ir"
)

// calculateEdgeAnchors assigns each edge a slot on the shared boundary of the
// node(s) it touches, then reorders those slots so that parallel edges exit
// and enter in the same left-to-right order as their destinations, reducing
// avoidable crossings near the node itself.
func calculateEdgeAnchors(
	graph ir.GraphIR,
	nodePositions map[string]LayoutNode,
	nodeLevelOf map[string]int64,
	edgeGapIndex map[int]int,
	layoutNodes []LayoutNode,
	levels byLevel,
	entityMargin, anchorSpacing float64,
) map[nodeDirKey][]exitEntry {
	nodeExits := make(map[nodeDirKey][]exitEntry)

	for idx, e := range graph.Edges {
		if e.From == e.To {
			continue
		}
		fromNode, ok := nodePositions[e.From]
		if !ok {
			continue
		}
		toNode, ok := nodePositions[e.To]
		if !ok {
			continue
		}

		fromLevel := nodeLevelOf[e.From]
		toLevel := nodeLevelOf[e.To]
		goingDown := toLevel >= fromLevel
		isMultiLevel := abs64(toLevel-fromLevel) > 1
		step := int64(1)
		if !goingDown {
			step = -1
		}

		sortKeyX := toNode.X + toNode.Width/2.0
		if isMultiLevel {
			if gapIdx, ok := edgeGapIndex[idx]; ok {
				sortKeyX = findGapCenterX(layoutNodes, levels, fromLevel+step, gapIdx, entityMargin)
			}
		}
		exitKey := nodeDirKey{NodeID: e.From, Down: goingDown}
		nodeExits[exitKey] = append(nodeExits[exitKey], exitEntry{EdgeIndex: idx, SortKeyX: sortKeyX})

		entrySortKeyX := fromNode.X + fromNode.Width/2.0
		if isMultiLevel {
			if gapIdx, ok := edgeGapIndex[idx]; ok {
				entrySortKeyX = findGapCenterX(layoutNodes, levels, toLevel-step, gapIdx, entityMargin)
			}
		}
		entryKey := nodeDirKey{NodeID: e.To, Down: !goingDown}
		nodeExits[entryKey] = append(nodeExits[entryKey], exitEntry{EdgeIndex: idx, SortKeyX: entrySortKeyX})
	}

	for key, edges := range nodeExits {
		sort.SliceStable(edges, func(i, j int) bool { return edges[i].SortKeyX < edges[j].SortKeyX })
		nodeExits[key] = edges
	}

	optimizeExitsByDestination(graph, nodePositions, nodeExits)
	optimizeEntriesBySource(graph, nodePositions, nodeExits)

	return nodeExits
}

// optimizeExitsByDestination reorders each node's downward exits to match
// the left-to-right order of the nodes those edges terminate at.
func optimizeExitsByDestination(graph ir.GraphIR, nodePositions map[string]LayoutNode, nodeExits map[nodeDirKey][]exitEntry) {
	for key, edges := range nodeExits {
		if len(edges) < 2 || !key.Down {
			continue
		}
		destX := make(map[int]float64, len(edges))
		for _, ee := range edges {
			e := graph.Edges[ee.EdgeIndex]
			if n, ok := nodePositions[e.To]; ok {
				destX[ee.EdgeIndex] = n.X + n.Width/2.0
			}
		}
		sort.SliceStable(edges, func(i, j int) bool {
			a, aok := destX[edges[i].EdgeIndex]
			if !aok {
				a = edges[i].SortKeyX
			}
			b, bok := destX[edges[j].EdgeIndex]
			if !bok {
				b = edges[j].SortKeyX
			}
			return a < b
		})
	}
}

// optimizeEntriesBySource reorders each node's upward entries to match the
// left-to-right order of the nodes those edges originate from.
func optimizeEntriesBySource(graph ir.GraphIR, nodePositions map[string]LayoutNode, nodeExits map[nodeDirKey][]exitEntry) {
	for key, edges := range nodeExits {
		if len(edges) < 2 || key.Down {
			continue
		}
		srcX := make(map[int]float64, len(edges))
		for _, ee := range edges {
			e := graph.Edges[ee.EdgeIndex]
			if n, ok := nodePositions[e.From]; ok {
				srcX[ee.EdgeIndex] = n.X + n.Width/2.0
			}
		}
		sort.SliceStable(edges, func(i, j int) bool {
			a, aok := srcX[edges[i].EdgeIndex]
			if !aok {
				a = edges[i].SortKeyX
			}
			b, bok := srcX[edges[j].EdgeIndex]
			if !bok {
				b = edges[j].SortKeyX
			}
			return a < b
		})
	}
}
