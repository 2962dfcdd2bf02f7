package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mark/erd-diagram-tool/pkg/ir"
	"github.com/mark/erd-diagram-tool/pkg/layout"
)

const (
	headerHeight = 28.0
	fontSize     = 14.0
	labelMargin  = 6.0
)

// renderSVG draws graph's layout l to w as a single SVG document of exact
// l.Width x l.Height, in three passes: edges behind nodes, node boxes, then
// edge labels and cardinality glyphs on top.
func renderSVG(w io.Writer, graph ir.GraphIR, l layout.Layout) {
	width := l.Width
	height := l.Height

	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		width, height, width, height)
	io.WriteString(w, svgStyle)

	nodeByID := make(map[string]ir.Node, len(graph.Nodes))
	for _, n := range graph.Nodes {
		nodeByID[n.ID] = n
	}

	for _, e := range l.Edges {
		renderEdgePath(w, e, l.CornerRadius)
	}
	for _, n := range l.Nodes {
		renderNode(w, n, nodeByID[n.ID])
	}
	for _, e := range l.Edges {
		renderEdgeLabels(w, graph, e)
	}

	io.WriteString(w, "</svg>\n")
}

const svgStyle = `<style>
.entity-bg { fill: #ffffff; }
.entity-header { fill: #e8eaed; }
.entity-border { fill: none; stroke: #5f6368; stroke-width: 1.5; }
.entity-name { font: bold 14px monospace; fill: #202124; text-anchor: middle; }
.column-text { font: 13px monospace; fill: #3c4043; }
.pk { font-weight: bold; }
.fk { font-style: italic; }
.edge { fill: none; stroke: #5f6368; stroke-width: 1.5; }
.edge-label-bg { fill: #ffffff; fill-opacity: 0.85; }
.edge-label { font: 11px monospace; fill: #3c4043; text-anchor: middle; }
.cardinality-bg { fill: #ffffff; fill-opacity: 0.85; }
.cardinality { font: bold 11px monospace; fill: #5f6368; text-anchor: middle; }
</style>
`

// renderNode draws one entity box: a white background rect, a grey header
// band (square-bottomed when columns follow, full-height when there are
// none), the bold centered name, a separating line, and per-column rows
// prefixed with a diamond for primary keys. The border is drawn last so it
// sits on top of the header/background fills.
func renderNode(w io.Writer, n layout.LayoutNode, node ir.Node) {
	if len(node.Columns) == 0 {
		fmt.Fprintf(w, `<rect class="entity-bg" x="%g" y="%g" width="%g" height="%g" rx="4"/>`+"\n",
			n.X, n.Y, n.Width, n.Height)
		fmt.Fprintf(w, `<rect class="entity-header" x="%g" y="%g" width="%g" height="%g" rx="4"/>`+"\n",
			n.X, n.Y, n.Width, n.Height)
	} else {
		fmt.Fprintf(w, `<rect class="entity-bg" x="%g" y="%g" width="%g" height="%g" rx="4"/>`+"\n",
			n.X, n.Y, n.Width, n.Height)
		fmt.Fprintf(w, `<rect class="entity-header" x="%g" y="%g" width="%g" height="%g" rx="4"/>`+"\n",
			n.X, n.Y, n.Width, headerHeight)
		fmt.Fprintf(w, `<rect class="entity-header" x="%g" y="%g" width="%g" height="%g"/>`+"\n",
			n.X, n.Y+headerHeight/2, n.Width, headerHeight/2)
	}

	fmt.Fprintf(w, `<text class="entity-name" x="%g" y="%g">%s</text>`+"\n",
		n.X+n.Width/2, n.Y+headerHeight/2+fontSize/3, escapeXML(node.Label))

	if len(node.Columns) > 0 {
		fmt.Fprintf(w, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#5f6368" stroke-width="1"/>`+"\n",
			n.X, n.Y+headerHeight, n.X+n.Width, n.Y+headerHeight)

		rowHeight := (n.Height - headerHeight) / float64(len(node.Columns))
		for i, c := range node.Columns {
			y := n.Y + headerHeight + rowHeight*float64(i) + rowHeight/2 + fontSize/3
			prefix := "  "
			if c.IsPK {
				prefix = "◆ "
			}
			class := "column-text"
			if c.IsPK {
				class += " pk"
			}
			if c.IsFK {
				class += " fk"
			}
			fmt.Fprintf(w, `<text class="%s" x="%g" y="%g">%s%s: %s</text>`+"\n",
				class, n.X+8, y, prefix, escapeXML(c.Name), escapeXML(c.Type))
		}
	}

	fmt.Fprintf(w, `<rect class="entity-border" x="%g" y="%g" width="%g" height="%g" rx="4"/>`+"\n",
		n.X, n.Y, n.Width, n.Height)
}

// renderEdgePath draws one routed relationship as a polyline, rounding each
// interior corner with a quadratic Bezier of radius r clamped to half the
// shorter of its two adjacent segments so the curve never overshoots a short
// leg.
func renderEdgePath(w io.Writer, e layout.LayoutEdge, r float64) {
	pts := e.Waypoints
	if len(pts) < 2 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %g %g", pts[0].X, pts[0].Y)

	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := pts[i-1], pts[i], pts[i+1]
		len1 := segmentLength(prev, cur)
		len2 := segmentLength(cur, next)
		if len1 == 0 || len2 == 0 {
			fmt.Fprintf(&b, " L %g %g", cur.X, cur.Y)
			continue
		}
		effectiveR := math.Min(r, math.Min(len1/2, len2/2))
		p1 := pointToward(cur, prev, effectiveR)
		p2 := pointToward(cur, next, effectiveR)
		fmt.Fprintf(&b, " L %g %g Q %g %g %g %g", p1.X, p1.Y, cur.X, cur.Y, p2.X, p2.Y)
	}

	last := pts[len(pts)-1]
	fmt.Fprintf(&b, " L %g %g", last.X, last.Y)

	fmt.Fprintf(w, `<path class="edge" d="%s"/>`+"\n", b.String())
}

func segmentLength(a, b layout.Point) float64 {
	if a.X != b.X {
		return math.Abs(a.X - b.X)
	}
	return math.Abs(a.Y - b.Y)
}

// pointToward returns the point dist along the segment from from toward to.
func pointToward(from, to layout.Point, dist float64) layout.Point {
	length := segmentLength(from, to)
	if length == 0 {
		return from
	}
	t := dist / length
	return layout.Point{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}

// renderEdgeLabels draws the cardinality glyphs at each endpoint and, if
// present, the relationship label near the midpoint of the edge's dominant
// horizontal segment. Self-referencing edges place both cardinalities beside
// the loop and the label centered on it.
func renderEdgeLabels(w io.Writer, graph ir.GraphIR, e layout.LayoutEdge) {
	edge := graph.Edges[e.EdgeIndex]
	pts := e.Waypoints
	if len(pts) == 0 {
		return
	}

	if e.IsSelfRef {
		renderCardinality(w, pts[0].X+labelMargin, pts[0].Y, edge.FromCardinality.Glyph(), "start")
		last := pts[len(pts)-1]
		renderCardinality(w, last.X+labelMargin, last.Y, edge.ToCardinality.Glyph(), "start")
		if edge.HasLabel {
			mid := pts[len(pts)/2]
			renderEdgeLabel(w, mid.X+labelMargin*3, mid.Y, edge.Label)
		}
		return
	}

	from := pts[0]
	to := pts[len(pts)-1]
	renderCardinality(w, offsetFromSegment(from, pts, true), edge.FromCardinality.Glyph(), "middle")
	renderCardinality(w, offsetFromSegment(to, pts, false), edge.ToCardinality.Glyph(), "middle")

	if edge.HasLabel {
		mx, my := midpointOfDominantSegment(pts)
		renderEdgeLabel(w, mx, my, edge.Label)
	}
}

// offsetFromSegment nudges a cardinality glyph off the node boundary: along Y
// when the adjoining segment runs vertically, along X when it runs
// horizontally, matching whichever axis the edge departs the node on.
func offsetFromSegment(p layout.Point, pts []layout.Point, fromEnd bool) (x, y float64) {
	var other layout.Point
	if fromEnd {
		if len(pts) > 1 {
			other = pts[1]
		} else {
			other = p
		}
	} else {
		if len(pts) > 1 {
			other = pts[len(pts)-2]
		} else {
			other = p
		}
	}

	dx := other.X - p.X
	dy := other.Y - p.Y
	if math.Abs(dy) > math.Abs(dx) {
		sign := 1.0
		if dy < 0 {
			sign = -1.0
		}
		return p.X, p.Y + sign*(labelMargin+fontSize/2)
	}
	sign := 1.0
	if dx < 0 {
		sign = -1.0
	}
	return p.X + sign*(labelMargin+fontSize/2), p.Y
}

// midpointOfDominantSegment finds the horizontal middle run of a >=4-waypoint
// route (the corridor leg most routes cross through) or falls back to the
// overall midpoint for short routes.
func midpointOfDominantSegment(pts []layout.Point) (x, y float64) {
	if len(pts) >= 4 {
		a, b := pts[1], pts[2]
		return (a.X + b.X) / 2, (a.Y + b.Y) / 2
	}
	a, b := pts[0], pts[len(pts)-1]
	return (a.X + b.X) / 2, (a.Y + b.Y) / 2
}

func renderCardinality(w io.Writer, x, y float64, text, anchor string) {
	renderLabelBox(w, x, y, text, anchor, "cardinality-bg", "cardinality")
}

func renderEdgeLabel(w io.Writer, x, y float64, text string) {
	renderLabelBox(w, x, y, text, "middle", "edge-label-bg", "edge-label")
}

// renderLabelBox draws a translucent background rect sized from an
// approximate character-width estimate, centered under the text, so labels
// stay legible over crossing edge lines.
func renderLabelBox(w io.Writer, x, y float64, text, anchor, bgClass, textClass string) {
	charWidth := fontSize * 0.6
	boxWidth := float64(len([]rune(text)))*charWidth + 6
	boxHeight := fontSize + 4

	left := x - boxWidth/2
	if anchor == "start" {
		left = x - 3
	}

	fmt.Fprintf(w, `<rect class="%s" x="%g" y="%g" width="%g" height="%g" rx="8"/>`+"\n",
		bgClass, left, y-boxHeight/2, boxWidth, boxHeight)
	fmt.Fprintf(w, `<text class="%s" x="%g" y="%g" text-anchor="%s">%s</text>`+"\n",
		textClass, x, y+fontSize/3, anchor, escapeXML(text))
}

// escapeXML replaces the four characters that must never appear literally
// inside SVG text or attribute content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
