package layout

// calculateLaneOffset centers `total` parallel lanes around zero and returns
// the offset for lane number `lane`.
func calculateLaneOffset(lane, total int, laneSpacing float64) float64 {
	if total <= 1 {
		return 0.0
	}
	return (float64(lane) - float64(total-1)/2.0) * laneSpacing
}

// routeSelfRef produces the fixed 4-point loop used for a self-referential
// edge, bowing out to the right of the node.
func routeSelfRef(node LayoutNode) []Point {
	x := node.X + node.Width
	yTop := node.Y + node.Height*0.3
	yBottom := node.Y + node.Height*0.7
	loopOffset := 25.0

	return []Point{
		{x, yTop},
		{x + loopOffset, yTop},
		{x + loopOffset, yBottom},
		{x, yBottom},
	}
}

// routeSameLevelAdjacent routes a short horizontal S-curve between two
// neighboring same-level nodes through the midpoint of the gap separating
// them.
func routeSameLevelAdjacent(fromNode, toNode LayoutNode) []Point {
	left, right := fromNode, toNode
	if toNode.X < fromNode.X {
		left, right = toNode, fromNode
	}
	gapBetween := right.X - (left.X + left.Width)
	midX := left.X + left.Width + gapBetween/2.0
	fromY := fromNode.Y + fromNode.Height/2.0
	toY := toNode.Y + toNode.Height/2.0

	if fromNode.X < toNode.X {
		return []Point{
			{fromNode.X + fromNode.Width, fromY},
			{midX, fromY},
			{midX, toY},
			{toNode.X, toY},
		}
	}
	return []Point{
		{fromNode.X, fromY},
		{midX, fromY},
		{midX, toY},
		{toNode.X + toNode.Width, toY},
	}
}

// routeAdjacentLevelDirect connects two nodes one level apart with a single
// straight vertical drop/rise, used when their anchor X coordinates already
// line up.
func routeAdjacentLevelDirect(fromNode, toNode LayoutNode, fromCx, toCx float64, goingDown bool) []Point {
	if goingDown {
		return []Point{
			{fromCx, fromNode.Y + fromNode.Height},
			{toCx, toNode.Y},
		}
	}
	return []Point{
		{fromCx, fromNode.Y},
		{toCx, toNode.Y + toNode.Height},
	}
}

// routeAdjacentLevelWithChannel connects two nodes one level apart by way of
// the horizontal channel between their levels.
func routeAdjacentLevelWithChannel(fromNode, toNode LayoutNode, fromCx, toCx, chY float64, goingDown bool) []Point {
	if goingDown {
		return []Point{
			{fromCx, fromNode.Y + fromNode.Height},
			{fromCx, chY},
			{toCx, chY},
			{toCx, toNode.Y},
		}
	}
	return []Point{
		{fromCx, fromNode.Y},
		{fromCx, chY},
		{toCx, chY},
		{toCx, toNode.Y + toNode.Height},
	}
}

// distributeAnchor spreads `total` anchor points evenly along a node's
// horizontal centerline and returns the one at `position`.
func distributeAnchor(node LayoutNode, position, total int, anchorSpacing float64) float64 {
	cx := node.X + node.Width/2.0
	if total <= 1 {
		return cx
	}
	offset := (float64(position) - float64(total-1)/2.0) * anchorSpacing
	return cx + offset
}
