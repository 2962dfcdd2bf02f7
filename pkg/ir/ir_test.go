package ir

import (
	"testing"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) dsl.Schema {
	t.Helper()
	schema, err := dsl.Parse(input)
	require.NoError(t, err)
	return schema
}

func TestIRAllDetail(t *testing.T) {
	schema := mustParse(t, `
		entity User {
			id int pk
			name string
			email string
		}
	`)
	graph := FromSchema(schema, "", DetailAll)

	require.Len(t, graph.Nodes, 1)
	assert.Len(t, graph.Nodes[0].Columns, 3)
}

func TestIRPkDetail(t *testing.T) {
	schema := mustParse(t, `
		entity User {
			id int pk
			name string
			email string
		}
	`)
	graph := FromSchema(schema, "", DetailPk)

	require.Len(t, graph.Nodes[0].Columns, 1)
	assert.Equal(t, "id", graph.Nodes[0].Columns[0].Name)
}

func TestIRTablesDetail(t *testing.T) {
	schema := mustParse(t, `
		entity User {
			id int pk
			name string
		}
	`)
	graph := FromSchema(schema, "", DetailTables)

	assert.Len(t, graph.Nodes[0].Columns, 0)
}

func TestIRWithView(t *testing.T) {
	schema := mustParse(t, `
		entity User { id int pk }
		entity Order { id int pk }
		entity Product { id int pk }

		view core {
			include User, Order
		}
	`)
	graph := FromSchema(schema, "core", DetailAll)

	assert.Len(t, graph.Nodes, 2)
}

func TestIRArrangementAssignsLevelAndOrder(t *testing.T) {
	schema := mustParse(t, `
		@hint.arrangement = {
			A B;
			C
		}

		entity A { id int pk }
		entity B { id int pk }
		entity C { id int pk }
	`)
	graph := FromSchema(schema, "", DetailAll)

	byID := map[string]Node{}
	for _, n := range graph.Nodes {
		byID[n.ID] = n
	}

	require.NotNil(t, byID["A"].Level)
	require.NotNil(t, byID["A"].Order)
	assert.Equal(t, int64(0), *byID["A"].Level)
	assert.Equal(t, int64(0), *byID["A"].Order)
	assert.Equal(t, int64(0), *byID["B"].Level)
	assert.Equal(t, int64(1), *byID["B"].Order)
	assert.Equal(t, int64(1), *byID["C"].Level)
}

func TestIREdgesFilteredByView(t *testing.T) {
	schema := mustParse(t, `
		entity User { id int pk }
		entity Order { id int pk }
		entity Product { id int pk }

		rel {
			User 1 -- * Order
			Order 1 -- * Product
		}

		view core {
			include User, Order
		}
	`)
	graph := FromSchema(schema, "core", DetailAll)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "User", graph.Edges[0].From)
}

func TestValidateDetectsUnknownEdgeEndpoint(t *testing.T) {
	graph := GraphIR{
		Nodes: []Node{{ID: "A"}},
		Edges: []Edge{{From: "A", To: "B"}},
	}
	err := graph.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-existent target node")
}

func TestValidateDetectsDuplicateNodeID(t *testing.T) {
	graph := GraphIR{Nodes: []Node{{ID: "A"}, {ID: "A"}}}
	err := graph.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id")
}

func TestValidatePasses(t *testing.T) {
	graph := GraphIR{
		Nodes: []Node{{ID: "A"}, {ID: "B"}},
		Edges: []Edge{{From: "A", To: "B"}},
	}
	assert.NoError(t, graph.Validate())
}
