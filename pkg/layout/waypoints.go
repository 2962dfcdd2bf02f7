package layout

import "github.com/mark/erd-diagram-tool/pkg/ir"

// routeEdges produces the final polyline for every edge in the graph,
// dispatching self-loops to their fixed geometry and everything else to
// calculateWaypoints. Each edge's anchor X on its endpoints is pulled from
// the slot calculateEdgeAnchors gave it in nodeExits, so parallel edges
// leaving or entering the same node fan out across the boundary instead of
// sharing one center point.
func routeEdges(
	graph ir.GraphIR,
	nodePositions map[string]LayoutNode,
	nodeLevelOf map[string]int64,
	nodeOrder map[string]int,
	nodeExits map[nodeDirKey][]exitEntry,
	channelLaneAssignments map[chanLaneKey]int,
	channelEdgesList map[int64][]int,
	sameLevelLaneAssignments map[int]int,
	edgeGapIndex map[int]int,
	multiLevelCorridorX map[int]float64,
	channelY map[int64]float64,
	layoutNodes []LayoutNode,
	levels byLevel,
	laneSpacing, channelGap, entityMargin, anchorSpacing float64,
) []LayoutEdge {
	edges := make([]LayoutEdge, 0, len(graph.Edges))

	for idx, e := range graph.Edges {
		if e.From == e.To {
			node, ok := nodePositions[e.From]
			if !ok {
				continue
			}
			edges = append(edges, LayoutEdge{
				From: e.From, To: e.To,
				Waypoints: routeSelfRef(node),
				IsSelfRef: true,
				EdgeIndex: idx,
			})
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

		fromCx := fromNode.X + fromNode.Width/2.0
		if exits, ok := nodeExits[nodeDirKey{NodeID: e.From, Down: goingDown}]; ok {
			pos := positionOf(exits, idx)
			fromCx = distributeAnchor(fromNode, pos, len(exits), anchorSpacing)
		}

		toCx := toNode.X + toNode.Width/2.0
		if exits, ok := nodeExits[nodeDirKey{NodeID: e.To, Down: !goingDown}]; ok {
			pos := positionOf(exits, idx)
			toCx = distributeAnchor(toNode, pos, len(exits), anchorSpacing)
		}

		waypoints := calculateWaypoints(
			idx, e, fromNode, toNode, fromCx, toCx, fromLevel, toLevel, nodeOrder,
			channelLaneAssignments, channelEdgesList, sameLevelLaneAssignments,
			edgeGapIndex, multiLevelCorridorX, channelY, layoutNodes, levels,
			laneSpacing, channelGap, entityMargin,
		)

		edges = append(edges, LayoutEdge{
			From: e.From, To: e.To,
			Waypoints: waypoints,
			IsSelfRef: false,
			EdgeIndex: idx,
		})
	}

	return edges
}

// calculateWaypoints routes one non-self-referential edge according to the
// level relationship between its endpoints.
func calculateWaypoints(
	idx int,
	e ir.Edge,
	fromNode, toNode LayoutNode,
	fromCx, toCx float64,
	fromLevel, toLevel int64,
	nodeOrder map[string]int,
	channelLaneAssignments map[chanLaneKey]int,
	channelEdgesList map[int64][]int,
	sameLevelLaneAssignments map[int]int,
	edgeGapIndex map[int]int,
	multiLevelCorridorX map[int]float64,
	channelY map[int64]float64,
	layoutNodes []LayoutNode,
	levels byLevel,
	laneSpacing, channelGap, entityMargin float64,
) []Point {
	if fromLevel == toLevel {
		return routeSameLevel(idx, e, fromNode, toNode, fromCx, toCx, fromLevel, nodeOrder, sameLevelLaneAssignments, layoutNodes, levels, laneSpacing, channelGap, entityMargin, channelY)
	}

	if abs64(toLevel-fromLevel) == 1 {
		return routeAdjacentLevel(idx, fromLevel, toLevel, fromNode, toNode, fromCx, toCx, channelLaneAssignments, channelEdgesList, channelY, laneSpacing)
	}

	return routeMultiLevel(idx, fromLevel, toLevel, fromNode, toNode, fromCx, toCx, edgeGapIndex, multiLevelCorridorX, channelLaneAssignments, channelEdgesList, channelY, layoutNodes, levels, laneSpacing, entityMargin)
}

// routeSameLevel routes an edge between two nodes at the same level: either
// directly between adjacent neighbors, or down into the level's shared
// channel and across to a dedicated corridor gap for nodes separated by a
// wide span, so the path never clips an intermediate same-level node.
func routeSameLevel(
	idx int,
	e ir.Edge,
	fromNode, toNode LayoutNode,
	fromCx, toCx float64,
	fromLevel int64,
	nodeOrder map[string]int,
	sameLevelLaneAssignments map[int]int,
	layoutNodes []LayoutNode,
	levels byLevel,
	laneSpacing, channelGap, entityMargin float64,
	channelY map[int64]float64,
) []Point {
	lane, isLaned := sameLevelLaneAssignments[idx]
	if !isLaned {
		return routeSameLevelAdjacent(fromNode, toNode)
	}

	sameLevelLaneOffset := float64(lane) * laneSpacing

	fromOrder := nodeOrder[e.From]
	toOrder := nodeOrder[e.To]
	corridorGap := toOrder + 1
	if fromOrder < toOrder {
		corridorGap = fromOrder + 1
	}

	corridorX := findGapCenterX(layoutNodes, levels, fromLevel, corridorGap, entityMargin) + sameLevelLaneOffset

	chY, hasChannel := channelY[fromLevel]
	if !hasChannel {
		chY = fromNode.Y + fromNode.Height + channelGap/2.0
	}

	return []Point{
		{fromCx, fromNode.Y + fromNode.Height},
		{fromCx, chY},
		{corridorX, chY},
		{corridorX, toNode.Y + toNode.Height},
		{toCx, toNode.Y + toNode.Height},
	}
}

// routeAdjacentLevel routes an edge between two nodes one level apart,
// either as a straight vertical drop when their anchor X values already
// align, or through the shared horizontal channel otherwise.
func routeAdjacentLevel(
	idx int,
	fromLevel, toLevel int64,
	fromNode, toNode LayoutNode,
	fromCx, toCx float64,
	channelLaneAssignments map[chanLaneKey]int,
	channelEdgesList map[int64][]int,
	channelY map[int64]float64,
	laneSpacing float64,
) []Point {
	goingDown := toLevel > fromLevel

	diff := fromCx - toCx
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1.0 {
		return routeAdjacentLevelDirect(fromNode, toNode, fromCx, toCx, goingDown)
	}

	channelLevel := fromLevel
	if !goingDown {
		channelLevel = toLevel
	}

	chY, hasChannel := channelY[channelLevel]
	if !hasChannel {
		return routeAdjacentLevelDirect(fromNode, toNode, fromCx, toCx, goingDown)
	}

	lane, hasLane := channelLaneAssignments[chanLaneKey{ChannelLevel: channelLevel, EdgeIndex: idx}]
	laneY := chY
	if hasLane {
		total := len(channelEdgesList[channelLevel])
		laneY = chY + calculateLaneOffset(lane, total, laneSpacing)
	}

	return routeAdjacentLevelWithChannel(fromNode, toNode, fromCx, toCx, laneY, goingDown)
}

// routeMultiLevel routes an edge spanning more than one level through every
// intermediate inter-level channel, following the corridor X assigned to
// it and never repeating a Y coordinate already on the path.
func routeMultiLevel(
	idx int,
	fromLevel, toLevel int64,
	fromNode, toNode LayoutNode,
	fromCx, toCx float64,
	edgeGapIndex map[int]int,
	multiLevelCorridorX map[int]float64,
	channelLaneAssignments map[chanLaneKey]int,
	channelEdgesList map[int64][]int,
	channelY map[int64]float64,
	layoutNodes []LayoutNode,
	levels byLevel,
	laneSpacing, entityMargin float64,
) []Point {
	goingDown := toLevel > fromLevel

	corridorX, hasCorridorX := multiLevelCorridorX[idx]
	if !hasCorridorX {
		if gapIdx, ok := edgeGapIndex[idx]; ok {
			midLevel := fromLevel + 1
			if !goingDown {
				midLevel = toLevel + 1
			}
			corridorX = findGapCenterX(layoutNodes, levels, midLevel, gapIdx, entityMargin)
		} else {
			corridorX = (fromCx + toCx) / 2.0
		}
	}

	minLevel, maxLevel := fromLevel, toLevel
	if minLevel > maxLevel {
		minLevel, maxLevel = maxLevel, minLevel
	}

	points := []Point{{fromCx, fromNode.Y + fromNode.Height}}
	if !goingDown {
		points = []Point{{fromCx, fromNode.Y}}
	}
	lastY := points[0].Y

	appendLevelY := func(level int64) {
		chY, ok := channelY[level]
		if !ok {
			return
		}
		y := chY
		if lane, hasLane := channelLaneAssignments[chanLaneKey{ChannelLevel: level, EdgeIndex: idx}]; hasLane {
			total := len(channelEdgesList[level])
			y = chY + calculateLaneOffset(lane, total, laneSpacing)
		}
		if y == lastY {
			return
		}
		if len(points) == 1 && fromCx != corridorX {
			points = append(points, Point{fromCx, y})
		}
		points = append(points, Point{corridorX, y})
		lastY = y
	}

	if goingDown {
		for level := minLevel; level < maxLevel; level++ {
			appendLevelY(level)
		}
	} else {
		for level := maxLevel - 1; level >= minLevel; level-- {
			appendLevelY(level)
		}
	}

	if points[len(points)-1].X != corridorX {
		points = append(points, Point{corridorX, lastY})
	}

	if goingDown {
		points = append(points, Point{toCx, lastY}, Point{toCx, toNode.Y})
	} else {
		points = append(points, Point{toCx, lastY}, Point{toCx, toNode.Y + toNode.Height})
	}

	return points
}
