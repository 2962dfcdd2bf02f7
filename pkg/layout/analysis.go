package layout

import (
	"github.com/mark/erd-diagram-tool/pkg/ir"
)

// buildNodeLevelLookup maps every node id to its level, defaulting absent
// levels to 0.
func buildNodeLevelLookup(graph ir.GraphIR) map[string]int64 {
	levels := make(map[string]int64, len(graph.Nodes))
	for _, n := range graph.Nodes {
		levels[n.ID] = nodeLevel(n)
	}
	return levels
}

func nodeLevel(n ir.Node) int64 {
	if n.Level != nil {
		return *n.Level
	}
	return 0
}

func nodeOrderOrMax(n ir.Node) int64 {
	if n.Order != nil {
		return *n.Order
	}
	return int64(^uint64(0) >> 1) // math.MaxInt64, kept local to avoid an import for one constant
}

// countEdgesPerNode counts, per node and per vertical direction, how many
// edges exit that node going down vs. going up. Self-loops are excluded.
func countEdgesPerNode(graph ir.GraphIR, nodeLevelOf map[string]int64) map[nodeDirKey]int {
	counts := make(map[nodeDirKey]int)
	for _, e := range graph.Edges {
		if e.From == e.To {
			continue
		}
		fromLevel := nodeLevelOf[e.From]
		toLevel := nodeLevelOf[e.To]
		goingDown := toLevel >= fromLevel

		counts[nodeDirKey{NodeID: e.From, Down: goingDown}]++
		counts[nodeDirKey{NodeID: e.To, Down: !goingDown}]++
	}
	return counts
}

// analyzeChannelEdges finds which edges pass through which inter-level
// channel. Channel N sits between level N and level N+1.
func analyzeChannelEdges(graph ir.GraphIR, nodeLevelOf map[string]int64) (map[int64][]int, map[int64]int) {
	channelEdges := make(map[int64][]int)

	for idx, e := range graph.Edges {
		if e.From == e.To {
			continue
		}
		fromLevel := nodeLevelOf[e.From]
		toLevel := nodeLevelOf[e.To]
		if fromLevel == toLevel {
			continue
		}

		minLevel, maxLevel := fromLevel, toLevel
		if minLevel > maxLevel {
			minLevel, maxLevel = maxLevel, minLevel
		}

		for level := minLevel; level < maxLevel; level++ {
			channelEdges[level] = append(channelEdges[level], idx)
		}
	}

	channelEdgeCount := make(map[int64]int, len(channelEdges))
	for level, edges := range channelEdges {
		channelEdgeCount[level] = len(edges)
	}

	return channelEdges, channelEdgeCount
}

// calculateDynamicChannelGaps widens a channel's base gap when enough edges
// cross it to need their own vertical lanes.
func calculateDynamicChannelGaps(levelKeys []int64, channelEdgeCount map[int64]int, entityMargin, laneSpacing, baseChannelGap float64) map[int64]float64 {
	gaps := make(map[int64]float64)

	for i, level := range levelKeys {
		if i >= len(levelKeys)-1 {
			continue
		}
		edgeCount := channelEdgeCount[level]
		extraLanes := edgeCount - 1
		if extraLanes < 0 {
			extraLanes = 0
		}
		needed := entityMargin*2.0 + float64(extraLanes)*laneSpacing
		gap := needed
		if baseChannelGap > gap {
			gap = baseChannelGap
		}
		gaps[level] = gap
	}

	return gaps
}

// buildNodeOrder maps each node id to its 0-based position within its level.
func buildNodeOrder(levels byLevel) map[string]int {
	order := make(map[string]int)
	for _, nodesInLevel := range levels {
		for idx, n := range nodesInLevel {
			order[n.ID] = idx
		}
	}
	return order
}

// analyzeCorridors identifies edges spanning more than one level — these
// need a dedicated vertical corridor rather than routing through a single
// inter-level channel.
func analyzeCorridors(graph ir.GraphIR, nodeLevelOf map[string]int64, nodeOrder map[string]int, laneSpacing float64) corridorAnalysis {
	corridorEdges := make(map[int][]int)
	edgeGapIndex := make(map[int]int)

	for idx, e := range graph.Edges {
		if e.From == e.To {
			continue
		}
		fromLevel := nodeLevelOf[e.From]
		toLevel := nodeLevelOf[e.To]
		if abs64(toLevel-fromLevel) <= 1 {
			continue
		}

		fromOrder := nodeOrder[e.From]
		toOrder := nodeOrder[e.To]

		var gapIndex int
		if fromOrder <= toOrder {
			gapIndex = fromOrder + 1
			if toOrder < gapIndex {
				gapIndex = toOrder
			}
		} else {
			gapIndex = toOrder + 1
			if fromOrder > gapIndex {
				gapIndex = fromOrder
			}
		}

		edgeGapIndex[idx] = gapIndex
		corridorEdges[gapIndex] = append(corridorEdges[gapIndex], idx)
	}

	gapExtraWidth := make(map[int]float64, len(corridorEdges))
	for gapIdx, edges := range corridorEdges {
		gapExtraWidth[gapIdx] = float64(len(edges)) * laneSpacing
	}

	return corridorAnalysis{
		corridorEdges: corridorEdges,
		edgeGapIndex:  edgeGapIndex,
		gapExtraWidth: gapExtraWidth,
	}
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
