// Package layout implements the deterministic node-placement and
// orthogonal-edge-routing pipeline that turns a Graph IR into a drawable
// Layout.
package layout

import "github.com/mark/erd-diagram-tool/pkg/ir"

// Point is a single 2-D waypoint. Consecutive points in a LayoutEdge's
// Waypoints differ in exactly one coordinate, so every segment is
// axis-aligned.
type Point struct {
	X, Y float64
}

// LayoutNode is a positioned, sized entity box.
type LayoutNode struct {
	ID     string
	X, Y   float64
	Width  float64
	Height float64
}

// LayoutEdge is a routed relationship: an ordered sequence of waypoints
// through which the renderer draws a polyline.
type LayoutEdge struct {
	From      string
	To        string
	Waypoints []Point
	IsSelfRef bool
	// EdgeIndex is this edge's position in the source GraphIR.Edges, for
	// looking up its cardinalities/label/role at render time.
	EdgeIndex int
}

// Layout is the engine's complete output.
type Layout struct {
	Nodes        []LayoutNode
	Edges        []LayoutEdge
	Width        float64
	Height       float64
	ChannelGap   float64
	CornerRadius float64
}

// edgeAnalysis is the result of phase 1.
type edgeAnalysis struct {
	nodeLevel         map[string]int64
	edgeCountPerNode  map[nodeDirKey]int
	channelEdges      map[int64][]int
	channelEdgeCount  map[int64]int
}

// nodeDirKey identifies the edges attached to one side of a node: its bottom
// side (Down=true: downward exits and upward entries) or its top side
// (Down=false: upward exits and downward entries).
type nodeDirKey struct {
	NodeID string
	Down   bool
}

// corridorAnalysis is the result of phase 3.
type corridorAnalysis struct {
	corridorEdges  map[int][]int
	edgeGapIndex   map[int]int
	gapExtraWidth  map[int]float64
}

// nodePlacement is the result of phases 5-6 (sizing + placement).
type nodePlacement struct {
	layoutNodes   []LayoutNode
	levelBottomY  map[int64]float64
	channelY      map[int64]float64
	maxWidth      float64
	totalHeight   float64
}

// chanLaneKey indexes a lane assignment within one inter-level channel.
type chanLaneKey struct {
	ChannelLevel int64
	EdgeIndex    int
}

// corridorLaneKey indexes a lane assignment within one multi-level corridor.
type corridorLaneKey struct {
	GapIndex  int
	EdgeIndex int
}

// exitEntry is one edge occupying an anchor slot on a node's boundary, kept
// alongside the X coordinate it was sorted by.
type exitEntry struct {
	EdgeIndex int
	SortKeyX  float64
}

// byLevel groups IR nodes by their (possibly arrangement-assigned) level.
type byLevel map[int64][]ir.Node
