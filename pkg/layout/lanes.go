package layout

import (
	"sort"

	"github.com/mark/erd-diagram-tool/pkg/ir"
)

type channelEdgeInfo struct {
	EdgeIndex int
	FromCx    float64
	IsGoingUp bool
}

// assignChannelLanes orders every edge crossing a given inter-level channel
// into a lane, then separately lanes same-level edges that bypass their
// neighbor corridor.
func assignChannelLanes(
	graph ir.GraphIR,
	channelEdgesList map[int64][]int,
	nodePositions map[string]LayoutNode,
	nodeLevelOf map[string]int64,
	nodeExits map[nodeDirKey][]exitEntry,
	edgeGapIndex map[int]int,
	layoutNodes []LayoutNode,
	levels byLevel,
	anchorSpacing, entityMargin, nodeGapX, laneSpacing float64,
) (map[chanLaneKey]int, map[int]int) {
	channelLaneAssignments := make(map[chanLaneKey]int)
	sameLevelLaneAssignments := make(map[int]int)

	channelEdgesWithInfo := make(map[int64][]channelEdgeInfo)

	for channelLevel, edgeIndices := range channelEdgesList {
		for _, idx := range edgeIndices {
			e := graph.Edges[idx]
			fromNode, ok := nodePositions[e.From]
			if !ok {
				continue
			}

			fromLevel := nodeLevelOf[e.From]
			toLevel := nodeLevelOf[e.To]
			goingDown := toLevel >= fromLevel
			isGoingUp := toLevel <= channelLevel

			fromCx := fromNode.X + fromNode.Width/2.0
			if exits, ok := nodeExits[nodeDirKey{NodeID: e.From, Down: goingDown}]; ok {
				pos := positionOf(exits, idx)
				fromCx = distributeAnchor(fromNode, pos, len(exits), anchorSpacing)
			}

			channelEdgesWithInfo[channelLevel] = append(channelEdgesWithInfo[channelLevel], channelEdgeInfo{
				EdgeIndex: idx,
				FromCx:    fromCx,
				IsGoingUp: isGoingUp,
			})
		}
	}

	for channelLevel, edges := range channelEdgesWithInfo {
		sortChannelEdges(edges, graph, nodeLevelOf, nodePositions, edgeGapIndex, layoutNodes, levels, channelLevel, entityMargin)
		for lane, ce := range edges {
			channelLaneAssignments[chanLaneKey{ChannelLevel: channelLevel, EdgeIndex: ce.EdgeIndex}] = lane
		}
	}

	assignSameLevelLanes(graph, nodePositions, nodeLevelOf, nodeGapX, sameLevelLaneAssignments)

	return channelLaneAssignments, sameLevelLaneAssignments
}

func positionOf(exits []exitEntry, edgeIdx int) int {
	for i, ee := range exits {
		if ee.EdgeIndex == edgeIdx {
			return i
		}
	}
	return 0
}

type sameLevelEdge struct {
	EdgeIndex int
	FromCx    float64
}

// assignSameLevelLanes lanes edges that connect two nodes on the same level
// but with a wide-enough gap between them to route a dedicated corridor
// rather than hugging their sides.
func assignSameLevelLanes(
	graph ir.GraphIR,
	nodePositions map[string]LayoutNode,
	nodeLevelOf map[string]int64,
	nodeGapX float64,
	sameLevelLaneAssignments map[int]int,
) {
	sameLevelEdges := make(map[int64][]sameLevelEdge)

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
		if fromLevel != toLevel {
			continue
		}

		left, right := fromNode, toNode
		if toNode.X < fromNode.X {
			left, right = toNode, fromNode
		}
		gapBetween := right.X - (left.X + left.Width)

		if gapBetween > nodeGapX*1.5 {
			fromCx := fromNode.X + fromNode.Width/2.0
			sameLevelEdges[fromLevel] = append(sameLevelEdges[fromLevel], sameLevelEdge{EdgeIndex: idx, FromCx: fromCx})
		}
	}

	for _, edges := range sameLevelEdges {
		sort.SliceStable(edges, func(i, j int) bool {
			if edges[i].FromCx != edges[j].FromCx {
				return edges[i].FromCx > edges[j].FromCx
			}
			return edges[i].EdgeIndex < edges[j].EdgeIndex
		})
		for lane, se := range edges {
			sameLevelLaneAssignments[se.EdgeIndex] = lane
		}
	}
}

// sortChannelEdges orders the edges sharing one inter-level channel so that
// edges descending and ascending through it are grouped, multi-level
// corridor edges line up with their corridor, and same-distance edges sort
// by destination X — minimizing avoidable crossings within the channel.
func sortChannelEdges(
	edges []channelEdgeInfo,
	graph ir.GraphIR,
	nodeLevelOf map[string]int64,
	nodePositions map[string]LayoutNode,
	edgeGapIndex map[int]int,
	layoutNodes []LayoutNode,
	levels byLevel,
	channelLevel int64,
	entityMargin float64,
) {
	getCorridorX := func(edgeIdx int) float64 {
		if gapIdx, ok := edgeGapIndex[edgeIdx]; ok {
			return findGapCenterX(layoutNodes, levels, channelLevel+1, gapIdx, entityMargin)
		}
		e := graph.Edges[edgeIdx]
		if n, ok := nodePositions[e.From]; ok {
			return n.X + n.Width/2.0
		}
		return 0.0
	}

	getToX := func(e ir.Edge) float64 {
		if n, ok := nodePositions[e.To]; ok {
			return n.X + n.Width/2.0
		}
		return 0.0
	}

	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		edgeA := graph.Edges[a.EdgeIndex]
		edgeB := graph.Edges[b.EdgeIndex]
		fromLevelA := nodeLevelOf[edgeA.From]
		fromLevelB := nodeLevelOf[edgeB.From]
		toLevelA := nodeLevelOf[edgeA.To]
		toLevelB := nodeLevelOf[edgeB.To]
		isDownA := toLevelA > channelLevel
		isDownB := toLevelB > channelLevel

		if isDownA != isDownB {
			// going-down edges sort before going-up edges
			return isDownA
		}

		aMulti := abs64(toLevelA-fromLevelA) > 1
		bMulti := abs64(toLevelB-fromLevelB) > 1

		if aMulti || bMulti {
			corridorXA := getCorridorX(a.EdgeIndex)
			corridorXB := getCorridorX(b.EdgeIndex)
			corridorDiff := corridorXA - corridorXB
			if corridorDiff < 0 {
				corridorDiff = -corridorDiff
			}

			if corridorDiff > 1.0 {
				if isDownA {
					return corridorXA < corridorXB
				}
				return corridorXB < corridorXA
			}

			toXA := getToX(edgeA)
			toXB := getToX(edgeB)
			avgToX := (toXA + toXB) / 2.0
			if corridorXA < avgToX {
				return toXA < toXB
			}
			return toXB < toXA
		}

		var distLess bool
		if isDownA {
			distLess = toLevelA < toLevelB
		} else {
			distLess = toLevelB < toLevelA
		}
		sameDist := toLevelA == toLevelB

		if !sameDist {
			return distLess
		}

		toXA := getToX(edgeA)
		toXB := getToX(edgeB)
		fromXA := 0.0
		if n, ok := nodePositions[edgeA.From]; ok {
			fromXA = n.X + n.Width/2.0
		}
		avgToX := (toXA + toXB) / 2.0
		if fromXA > avgToX {
			return toXB < toXA
		}
		return toXA < toXB
	})
}

type corridorEdgeX struct {
	EdgeIndex int
	FromCx    float64
}

// assignCorridorLanes lanes edges sharing one multi-level corridor gap by
// their source X position.
func assignCorridorLanes(corridorEdges map[int][]int, graph ir.GraphIR, nodePositions map[string]LayoutNode) (map[corridorLaneKey]int, map[int]int) {
	corridorLaneAssignments := make(map[corridorLaneKey]int)
	corridorTotalEdges := make(map[int]int)

	for gapIdx, edgeIndices := range corridorEdges {
		var edgesWithX []corridorEdgeX
		for _, idx := range edgeIndices {
			e := graph.Edges[idx]
			fromNode, ok := nodePositions[e.From]
			if !ok {
				continue
			}
			edgesWithX = append(edgesWithX, corridorEdgeX{EdgeIndex: idx, FromCx: fromNode.X + fromNode.Width/2.0})
		}

		sort.SliceStable(edgesWithX, func(i, j int) bool { return edgesWithX[i].FromCx < edgesWithX[j].FromCx })

		corridorTotalEdges[gapIdx] = len(edgesWithX)
		for lane, ce := range edgesWithX {
			corridorLaneAssignments[corridorLaneKey{GapIndex: gapIdx, EdgeIndex: ce.EdgeIndex}] = lane
		}
	}

	swapCrossingPairs(corridorEdges, corridorLaneAssignments, graph, nodePositions)

	return corridorLaneAssignments, corridorTotalEdges
}

// swapCrossingPairs runs a single greedy pass over each corridor's lane
// assignment, swapping any adjacent pair of lanes whose edges would
// otherwise cross based on the X position of what each edge connects to at
// the far end of the corridor. One pass only: repeated sweeps to a fixed
// point aren't guaranteed to terminate for corridors with three or more
// edges whose endpoints interleave, and a single pass already resolves the
// common two-edge case this is meant to catch.
func swapCrossingPairs(corridorEdges map[int][]int, laneAssignments map[corridorLaneKey]int, graph ir.GraphIR, nodePositions map[string]LayoutNode) {
	gapIndices := make([]int, 0, len(corridorEdges))
	for gapIdx := range corridorEdges {
		gapIndices = append(gapIndices, gapIdx)
	}
	sort.Ints(gapIndices)

	for _, gapIdx := range gapIndices {
		edgeIndices := append([]int(nil), corridorEdges[gapIdx]...)
		sort.Slice(edgeIndices, func(i, j int) bool {
			return laneAssignments[corridorLaneKey{GapIndex: gapIdx, EdgeIndex: edgeIndices[i]}] <
				laneAssignments[corridorLaneKey{GapIndex: gapIdx, EdgeIndex: edgeIndices[j]}]
		})

		for i := 0; i+1 < len(edgeIndices); i++ {
			a, b := edgeIndices[i], edgeIndices[i+1]
			if crossesAtFarEnd(graph, nodePositions, a, b) {
				keyA := corridorLaneKey{GapIndex: gapIdx, EdgeIndex: a}
				keyB := corridorLaneKey{GapIndex: gapIdx, EdgeIndex: b}
				laneAssignments[keyA], laneAssignments[keyB] = laneAssignments[keyB], laneAssignments[keyA]
				edgeIndices[i], edgeIndices[i+1] = edgeIndices[i+1], edgeIndices[i]
			}
		}
	}
}

// crossesAtFarEnd reports whether two edges sharing one corridor lane
// ordering would cross given where they land: a is in the lower lane
// (closer to the source side by construction), so if its destination sits
// to the right of b's destination, the two lines cross.
func crossesAtFarEnd(graph ir.GraphIR, nodePositions map[string]LayoutNode, a, b int) bool {
	edgeA := graph.Edges[a]
	edgeB := graph.Edges[b]

	toXA, okA := destinationX(nodePositions, edgeA.To)
	toXB, okB := destinationX(nodePositions, edgeB.To)
	if !okA || !okB {
		return false
	}

	return toXA > toXB
}

func destinationX(nodePositions map[string]LayoutNode, nodeID string) (float64, bool) {
	n, ok := nodePositions[nodeID]
	if !ok {
		return 0, false
	}
	return n.X + n.Width/2.0, true
}

// calculateMultiLevelCorridorX groups multi-level edges sharing a (minLevel,
// maxLevel, corridor) triple and assigns each group's edges a lane within
// the corridor's X span closest to the straight line between their
// endpoints.
func calculateMultiLevelCorridorX(
	graph ir.GraphIR,
	nodeLevelOf map[string]int64,
	nodePositions map[string]LayoutNode,
	layoutNodes []LayoutNode,
	levels byLevel,
	edgeGapIndex map[int]int,
	corridorLaneAssignments map[corridorLaneKey]int,
	entityMargin, laneSpacing float64,
) map[int]float64 {
	multiLevelCorridorX := make(map[int]float64)

	type groupKey struct {
		MinLevel, MaxLevel int64
		CorridorIdx        int
	}
	corridorGroups := make(map[groupKey][]int)

	for idx, e := range graph.Edges {
		if e.From == e.To {
			continue
		}
		fromLevel := nodeLevelOf[e.From]
		toLevel := nodeLevelOf[e.To]
		if abs64(toLevel-fromLevel) <= 1 {
			continue
		}

		minLevel, maxLevel := fromLevel, toLevel
		if minLevel > maxLevel {
			minLevel, maxLevel = maxLevel, minLevel
		}

		safeCorridors := findSafeCorridors(layoutNodes, levels, minLevel, maxLevel, entityMargin)

		fromNode, ok := nodePositions[e.From]
		if !ok {
			continue
		}
		toNode, ok := nodePositions[e.To]
		if !ok {
			continue
		}
		targetX := (fromNode.X + fromNode.Width/2.0 + toNode.X + toNode.Width/2.0) / 2.0

		bestCorridorIdx := 0
		bestDist := -1.0
		for i, c := range safeCorridors {
			right := c.Right
			if right > 5000.0 {
				right = 5000.0
			}
			center := (c.Left + right) / 2.0
			dist := center - targetX
			if dist < 0 {
				dist = -dist
			}
			if bestDist < 0 || dist < bestDist {
				bestDist = dist
				bestCorridorIdx = i
			}
		}

		key := groupKey{MinLevel: minLevel, MaxLevel: maxLevel, CorridorIdx: bestCorridorIdx}
		corridorGroups[key] = append(corridorGroups[key], idx)
	}

	for key, edgeIndices := range corridorGroups {
		safeCorridors := findSafeCorridors(layoutNodes, levels, key.MinLevel, key.MaxLevel, entityMargin)
		corridorLeft, corridorRight := 40.0, 200.0
		if key.CorridorIdx < len(safeCorridors) {
			corridorLeft = safeCorridors[key.CorridorIdx].Left
			corridorRight = safeCorridors[key.CorridorIdx].Right
		}

		totalLanes := len(edgeIndices)
		corridorCenter := (corridorLeft + corridorRight) / 2.0

		var edgesSorted []corridorEdgeX
		for _, idx := range edgeIndices {
			e := graph.Edges[idx]
			if fromNode, ok := nodePositions[e.From]; ok {
				edgesSorted = append(edgesSorted, corridorEdgeX{EdgeIndex: idx, FromCx: fromNode.X + fromNode.Width/2.0})
			}
		}

		// Order within the corridor by the swap-corrected lane (when the edge
		// belongs to a placement-time gap, so crossesAtFarEnd's correction
		// actually changes which lane sits closest to which side of the
		// corridor), falling back to source X for edges with no gap lane.
		laneOf := func(idx int) (int, bool) {
			gapIdx, ok := edgeGapIndex[idx]
			if !ok {
				return 0, false
			}
			lane, ok := corridorLaneAssignments[corridorLaneKey{GapIndex: gapIdx, EdgeIndex: idx}]
			return lane, ok
		}
		sort.SliceStable(edgesSorted, func(i, j int) bool {
			laneI, okI := laneOf(edgesSorted[i].EdgeIndex)
			laneJ, okJ := laneOf(edgesSorted[j].EdgeIndex)
			if okI && okJ {
				return laneI < laneJ
			}
			return edgesSorted[i].FromCx < edgesSorted[j].FromCx
		})

		for lane, ce := range edgesSorted {
			laneOffset := calculateLaneOffset(lane, totalLanes, laneSpacing)
			multiLevelCorridorX[ce.EdgeIndex] = corridorCenter + laneOffset
		}
	}

	return multiLevelCorridorX
}
