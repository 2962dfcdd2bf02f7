package layout

import (
	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/measure"
)

// LayoutEngine holds the tunable geometry constants that every phase of the
// pipeline reads from. Construct one with DefaultLayoutEngine unless a
// caller needs to override spacing.
type LayoutEngine struct {
	NodeGapX      float64
	NodeGapY      float64
	ChannelGap    float64
	LaneSpacing   float64
	AnchorSpacing float64
	CornerRadius  float64
	EntityMargin  float64
}

// DefaultLayoutEngine returns a LayoutEngine configured with the engine's
// standard spacing constants.
func DefaultLayoutEngine() LayoutEngine {
	return LayoutEngine{
		NodeGapX:      100,
		NodeGapY:      30,
		ChannelGap:    50,
		LaneSpacing:   24,
		AnchorSpacing: 40,
		CornerRadius:  32,
		EntityMargin:  30,
	}
}

// Layout runs the full nine-phase pipeline over graph and returns a
// deterministic, fully routed Layout. Calling Layout twice on an
// equal GraphIR always produces byte-identical output: every map built from
// graph.Nodes/graph.Edges is either consumed in that same index order or
// explicitly sorted before it can influence geometry.
func (e LayoutEngine) Layout(graph ir.GraphIR) Layout {
	metrics := measure.DefaultMetrics()

	// Phase 1: edge analysis.
	nodeLevelOf := buildNodeLevelLookup(graph)
	edgeCountPerNode := countEdgesPerNode(graph, nodeLevelOf)
	channelEdgesList, channelEdgeCount := analyzeChannelEdges(graph, nodeLevelOf)

	// Phase 2: node grouping.
	levels, levelKeys := groupNodesByLevel(graph)
	nodeOrder := buildNodeOrder(levels)

	// Phase 3: corridor analysis.
	corridor := analyzeCorridors(graph, nodeLevelOf, nodeOrder, e.LaneSpacing)

	// Phase 4: dynamic channel gap sizing.
	dynamicChannelGap := calculateDynamicChannelGaps(levelKeys, channelEdgeCount, e.EntityMargin, e.LaneSpacing, e.ChannelGap)

	// Phases 5-6: sizing + placement.
	nodeSizes := calculateNodeSizes(graph, edgeCountPerNode, metrics, e.AnchorSpacing)
	placement := placeNodes(levels, levelKeys, nodeSizes, corridor.gapExtraWidth, dynamicChannelGap, e.NodeGapX, e.NodeGapY, e.ChannelGap)
	nodePositions := buildNodePositions(placement.layoutNodes)

	// Phase 7: anchor distribution.
	nodeExits := calculateEdgeAnchors(graph, nodePositions, nodeLevelOf, corridor.edgeGapIndex, placement.layoutNodes, levels, e.EntityMargin, e.AnchorSpacing)

	// Phase 8a: corridor lane assignment (crossing-pair swap applied here) and
	// the multi-level corridor X positions that swap feeds into.
	corridorLaneAssignments, _ := assignCorridorLanes(corridor.corridorEdges, graph, nodePositions)
	multiLevelCorridorX := calculateMultiLevelCorridorX(
		graph, nodeLevelOf, nodePositions, placement.layoutNodes, levels,
		corridor.edgeGapIndex, corridorLaneAssignments, e.EntityMargin, e.LaneSpacing,
	)

	// Phase 8b: channel and same-level lane assignment.
	channelLaneAssignments, sameLevelLaneAssignments := assignChannelLanes(
		graph, channelEdgesList, nodePositions, nodeLevelOf, nodeExits, corridor.edgeGapIndex,
		placement.layoutNodes, levels, e.AnchorSpacing, e.EntityMargin, e.NodeGapX, e.LaneSpacing,
	)

	// Phase 9: waypoint routing.
	layoutEdges := routeEdges(
		graph, nodePositions, nodeLevelOf, nodeOrder, nodeExits,
		channelLaneAssignments, channelEdgesList, sameLevelLaneAssignments,
		corridor.edgeGapIndex, multiLevelCorridorX, placement.channelY,
		placement.layoutNodes, levels, e.LaneSpacing, e.ChannelGap, e.EntityMargin, e.AnchorSpacing,
	)

	return Layout{
		Nodes:        placement.layoutNodes,
		Edges:        layoutEdges,
		Width:        placement.maxWidth,
		Height:       placement.totalHeight,
		ChannelGap:   e.ChannelGap,
		CornerRadius: e.CornerRadius,
	}
}
