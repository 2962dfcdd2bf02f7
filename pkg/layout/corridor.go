package layout

import "sort"

type xrange struct {
	Left, Right float64
}

// findSafeCorridors returns the horizontal gaps, across all intermediate
// levels between minLevel and maxLevel, that no entity at those levels
// occupies — the candidate vertical lanes for a multi-level edge.
func findSafeCorridors(layoutNodes []LayoutNode, levels byLevel, minLevel, maxLevel int64, entityMargin float64) []xrange {
	positions := nodePositionIndex(layoutNodes)

	var boundaries []xrange
	for level := minLevel + 1; level < maxLevel; level++ {
		for _, n := range levels[level] {
			if ln, ok := positions[n.ID]; ok {
				boundaries = append(boundaries, xrange{
					Left:  ln.X - entityMargin,
					Right: ln.X + ln.Width + entityMargin,
				})
			}
		}
	}

	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Left < boundaries[j].Left })

	var merged []xrange
	for _, b := range boundaries {
		if len(merged) > 0 && b.Left <= merged[len(merged)-1].Right {
			if b.Right > merged[len(merged)-1].Right {
				merged[len(merged)-1].Right = b.Right
			}
			continue
		}
		merged = append(merged, b)
	}

	var gaps []xrange
	if len(merged) > 0 {
		if merged[0].Left > 40.0 {
			gaps = append(gaps, xrange{40.0, merged[0].Left})
		}
	} else {
		gaps = append(gaps, xrange{40.0, 10000.0})
	}

	for i := 0; i+1 < len(merged); i++ {
		gapLeft := merged[i].Right
		gapRight := merged[i+1].Left
		if gapRight > gapLeft {
			gaps = append(gaps, xrange{gapLeft, gapRight})
		}
	}

	if len(merged) > 0 {
		gaps = append(gaps, xrange{merged[len(merged)-1].Right, 10000.0})
	}

	return gaps
}

// findGapCenterX returns the X coordinate centered within the gapIndex'th
// gap among the entities placed at level (0 = left of the first entity).
func findGapCenterX(layoutNodes []LayoutNode, levels byLevel, level int64, gapIndex int, entityMargin float64) float64 {
	nodesAtLevel, ok := levels[level]
	if !ok {
		return 100.0
	}

	positions := nodePositionIndex(layoutNodes)

	var boundaries []xrange
	for _, n := range nodesAtLevel {
		if ln, ok := positions[n.ID]; ok {
			boundaries = append(boundaries, xrange{ln.X, ln.X + ln.Width})
		}
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Left < boundaries[j].Left })

	if len(boundaries) == 0 {
		return 100.0
	}

	if gapIndex == 0 {
		return (40.0 + boundaries[0].Left) / 2.0
	}

	if gapIndex >= len(boundaries) {
		return boundaries[len(boundaries)-1].Right + entityMargin + 50.0
	}

	if gapIndex > 0 && gapIndex < len(boundaries) {
		leftEntityRight := boundaries[gapIndex-1].Right
		rightEntityLeft := boundaries[gapIndex].Left
		return (leftEntityRight + rightEntityLeft) / 2.0
	}

	if gapIndex < len(boundaries)-1 {
		leftEntityRight := boundaries[gapIndex].Right
		rightEntityLeft := boundaries[gapIndex+1].Left
		return (leftEntityRight + rightEntityLeft) / 2.0
	}

	return 100.0
}

func nodePositionIndex(layoutNodes []LayoutNode) map[string]LayoutNode {
	idx := make(map[string]LayoutNode, len(layoutNodes))
	for _, n := range layoutNodes {
		idx[n.ID] = n
	}
	return idx
}
