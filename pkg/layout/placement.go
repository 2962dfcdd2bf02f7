package layout

import (
	"sort"

	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/measure"
)

type nodeSize struct {
	Width, Height float64
}

// calculateNodeSizes measures each node's content box and widens it when
// enough parallel edges need their own anchor slot along its boundary.
func calculateNodeSizes(graph ir.GraphIR, edgeCountPerNode map[nodeDirKey]int, metrics measure.TextMetrics, anchorSpacing float64) map[string]nodeSize {
	sizes := make(map[string]nodeSize, len(graph.Nodes))

	for _, n := range graph.Nodes {
		columns := make([]measure.Column, len(n.Columns))
		for i, c := range n.Columns {
			columns[i] = measure.Column{Name: c.Name, Type: c.Type}
		}
		contentW, h := metrics.NodeSize(n.Label, columns)

		downEdges := edgeCountPerNode[nodeDirKey{NodeID: n.ID, Down: true}]
		upEdges := edgeCountPerNode[nodeDirKey{NodeID: n.ID, Down: false}]
		maxEdges := downEdges
		if upEdges > maxEdges {
			maxEdges = upEdges
		}

		anchorWidth := 0.0
		if maxEdges > 1 {
			anchorWidth = float64(maxEdges-1)*anchorSpacing + anchorSpacing
		}

		w := contentW
		if anchorWidth > w {
			w = anchorWidth
		}
		sizes[n.ID] = nodeSize{Width: w, Height: h}
	}

	return sizes
}

// groupNodesByLevel buckets nodes by level and sorts each bucket by order
// (nodes without an explicit order sort last, stable on input position).
func groupNodesByLevel(graph ir.GraphIR) (byLevel, []int64) {
	levels := make(byLevel)
	for _, n := range graph.Nodes {
		level := nodeLevel(n)
		levels[level] = append(levels[level], n)
	}

	for level, nodes := range levels {
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodeOrderOrMax(nodes[i]) < nodeOrderOrMax(nodes[j])
		})
		levels[level] = nodes
	}

	levelKeys := make([]int64, 0, len(levels))
	for level := range levels {
		levelKeys = append(levelKeys, level)
	}
	sort.Slice(levelKeys, func(i, j int) bool { return levelKeys[i] < levelKeys[j] })

	return levels, levelKeys
}

// placeNodes lays out each level left-to-right and stacks levels top to
// bottom, widening gaps that corridor edges or dynamic channels need.
func placeNodes(
	levels byLevel,
	levelKeys []int64,
	nodeSizes map[string]nodeSize,
	gapExtraWidth map[int]float64,
	dynamicChannelGap map[int64]float64,
	nodeGapX, nodeGapY, baseChannelGap float64,
) nodePlacement {
	var layoutNodes []LayoutNode
	levelBottomY := make(map[int64]float64)
	channelY := make(map[int64]float64)
	y := 40.0
	maxWidth := 0.0

	for i, level := range levelKeys {
		nodesInLevel := levels[level]
		x := 40.0 + gapExtraWidth[0]
		maxHeight := 0.0

		for nodeIdx, n := range nodesInLevel {
			size := nodeSizes[n.ID]
			layoutNodes = append(layoutNodes, LayoutNode{ID: n.ID, X: x, Y: y, Width: size.Width, Height: size.Height})

			nextGapIdx := nodeIdx + 1
			effectiveGapX := nodeGapX + gapExtraWidth[nextGapIdx]

			x += size.Width + effectiveGapX
			if size.Height > maxHeight {
				maxHeight = size.Height
			}
		}

		if candidate := x - nodeGapX + 40.0; candidate > maxWidth {
			maxWidth = candidate
		}
		levelBottomY[level] = y + maxHeight

		if i < len(levelKeys)-1 {
			gap, ok := dynamicChannelGap[level]
			if !ok {
				gap = baseChannelGap
			}
			totalSpace := nodeGapY + gap
			channelCenter := y + maxHeight + totalSpace/2.0
			channelY[level] = channelCenter
			y += maxHeight + totalSpace
		} else {
			y += maxHeight + nodeGapY
		}
	}

	totalHeight := y - nodeGapY + 40.0

	return nodePlacement{
		layoutNodes:  layoutNodes,
		levelBottomY: levelBottomY,
		channelY:     channelY,
		maxWidth:     maxWidth,
		totalHeight:  totalHeight,
	}
}

// buildNodePositions indexes layout nodes by id for O(1) lookup by later
// phases.
func buildNodePositions(layoutNodes []LayoutNode) map[string]LayoutNode {
	return nodePositionIndex(layoutNodes)
}
