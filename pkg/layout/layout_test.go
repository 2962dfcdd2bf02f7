package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
	"github.com/mark/erd-diagram-tool/pkg/ir"
)

func int64p(v int64) *int64 { return &v }

func rectanglesOverlap(a, b LayoutNode) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

func TestLayoutNodesDoNotOverlap(t *testing.T) {
	graph := ir.GraphIR{
		Nodes: []ir.Node{
			{ID: "users", Label: "users", Columns: []ir.Column{{Name: "id", Type: "int", IsPK: true}}},
			{ID: "posts", Label: "posts", Columns: []ir.Column{{Name: "id", Type: "int", IsPK: true}, {Name: "user_id", Type: "int", IsFK: true}}},
			{ID: "comments", Label: "comments", Columns: []ir.Column{{Name: "id", Type: "int", IsPK: true}}},
		},
		Edges: []ir.Edge{
			{From: "users", To: "posts", FromCardinality: dsl.CardinalityOne, ToCardinality: dsl.CardinalityMany},
			{From: "posts", To: "comments", FromCardinality: dsl.CardinalityOne, ToCardinality: dsl.CardinalityMany},
		},
	}

	layout := DefaultLayoutEngine().Layout(graph)

	for i := 0; i < len(layout.Nodes); i++ {
		for j := i + 1; j < len(layout.Nodes); j++ {
			assert.False(t, rectanglesOverlap(layout.Nodes[i], layout.Nodes[j]),
				"nodes %s and %s overlap", layout.Nodes[i].ID, layout.Nodes[j].ID)
		}
	}
}

func TestLayoutSelfLoopGeometry(t *testing.T) {
	graph := ir.GraphIR{
		Nodes: []ir.Node{
			{ID: "employees", Label: "employees", Columns: []ir.Column{{Name: "id", Type: "int", IsPK: true}, {Name: "manager_id", Type: "int", IsFK: true}}},
		},
		Edges: []ir.Edge{
			{From: "employees", To: "employees", FromCardinality: dsl.CardinalityOne, ToCardinality: dsl.CardinalityMany},
		},
	}

	layout := DefaultLayoutEngine().Layout(graph)

	require.Len(t, layout.Edges, 1)
	edge := layout.Edges[0]
	assert.True(t, edge.IsSelfRef)
	require.Len(t, edge.Waypoints, 4)

	node := layout.Nodes[0]
	for _, wp := range edge.Waypoints {
		assert.GreaterOrEqual(t, wp.X, node.X+node.Width)
		assert.LessOrEqual(t, wp.X, node.X+node.Width+25.0)
		assert.GreaterOrEqual(t, wp.Y, node.Y+node.Height*0.3-0.001)
		assert.LessOrEqual(t, wp.Y, node.Y+node.Height*0.7+0.001)
	}
}

func TestLayoutViewFiltering(t *testing.T) {
	schema, err := dsl.Parse(`
entity A { id int pk }
entity B { id int pk a_id int fk -> A.id }
entity C { id int pk b_id int fk -> B.id }
rel {
  A 1 -- * B
  B 1 -- * C
}
view core { include A, B }
`)
	require.NoError(t, err)

	graph := ir.FromSchema(schema, "core", ir.DetailAll)
	layout := DefaultLayoutEngine().Layout(graph)

	assert.Len(t, layout.Nodes, 2)
	for _, e := range layout.Edges {
		assert.NotEqual(t, "C", e.From)
		assert.NotEqual(t, "C", e.To)
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	schema, err := dsl.Parse(`
entity A { id int pk }
entity B { id int pk a_id int fk -> A.id }
entity C { id int pk a_id int fk -> A.id }
entity D { id int pk b_id int fk -> B.id c_id int fk -> C.id }
rel {
  A 1 -- * B
  A 1 -- * C
  B 1 -- * D
  C 1 -- * D
}
`)
	require.NoError(t, err)

	graph := ir.FromSchema(schema, "", ir.DetailAll)
	engine := DefaultLayoutEngine()

	first := engine.Layout(graph)
	second := engine.Layout(graph)

	assert.Equal(t, first, second)
}

func TestLayoutOrdersNodesByLevelThenOrder(t *testing.T) {
	graph := ir.GraphIR{
		Nodes: []ir.Node{
			{ID: "z", Label: "z", Level: int64p(0), Order: int64p(1)},
			{ID: "a", Label: "a", Level: int64p(0), Order: int64p(0)},
			{ID: "m", Label: "m", Level: int64p(1), Order: int64p(0)},
		},
	}

	layout := DefaultLayoutEngine().Layout(graph)

	byID := make(map[string]LayoutNode, len(layout.Nodes))
	for _, n := range layout.Nodes {
		byID[n.ID] = n
	}

	assert.Less(t, byID["a"].X, byID["z"].X)
	assert.Equal(t, byID["a"].Y, byID["z"].Y)
	assert.Less(t, byID["a"].Y, byID["m"].Y)
}

func TestLayoutMultiLevelEdgeReachesDestination(t *testing.T) {
	graph := ir.GraphIR{
		Nodes: []ir.Node{
			{ID: "root", Label: "root", Level: int64p(0)},
			{ID: "mid", Label: "mid", Level: int64p(1)},
			{ID: "leaf", Label: "leaf", Level: int64p(2)},
		},
		Edges: []ir.Edge{
			{From: "root", To: "mid", FromCardinality: dsl.CardinalityOne, ToCardinality: dsl.CardinalityMany},
			{From: "root", To: "leaf", FromCardinality: dsl.CardinalityOne, ToCardinality: dsl.CardinalityMany},
		},
	}

	layout := DefaultLayoutEngine().Layout(graph)

	var multiLevel LayoutEdge
	for _, e := range layout.Edges {
		if e.From == "root" && e.To == "leaf" {
			multiLevel = e
		}
	}
	require.NotEmpty(t, multiLevel.Waypoints)

	first := multiLevel.Waypoints[0]
	last := multiLevel.Waypoints[len(multiLevel.Waypoints)-1]

	var rootNode, leafNode LayoutNode
	for _, n := range layout.Nodes {
		if n.ID == "root" {
			rootNode = n
		}
		if n.ID == "leaf" {
			leafNode = n
		}
	}

	assert.InDelta(t, rootNode.Y+rootNode.Height, first.Y, 0.001)
	assert.InDelta(t, leafNode.Y, last.Y, 0.001)
}
