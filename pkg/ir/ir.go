// Package ir builds the layout engine's Graph IR from a parsed DSL schema,
// applying view filtering and column detail-level reduction.
package ir

import "github.com/mark/erd-diagram-tool/pkg/dsl"

// DetailLevel controls which columns are retained on each node.
type DetailLevel int

const (
	DetailTables DetailLevel = iota
	DetailPk
	DetailPkFk
	DetailAll
)

// ParseDetailLevel maps a CLI/config string onto a DetailLevel.
func ParseDetailLevel(s string) (DetailLevel, bool) {
	switch s {
	case "tables":
		return DetailTables, true
	case "pk":
		return DetailPk, true
	case "pk_fk":
		return DetailPkFk, true
	case "all":
		return DetailAll, true
	default:
		return 0, false
	}
}

// Node is one entity box in the Graph IR.
type Node struct {
	ID      string
	Label   string
	Columns []Column
	Level   *int64
	Order   *int64
	Group   *string
}

// Column is a single displayed row inside a Node.
type Column struct {
	Name string
	Type string
	IsPK bool
	IsFK bool
}

// Edge is a relationship between two nodes, cardinality-annotated on both
// ends and optionally labeled.
type Edge struct {
	From            string
	To              string
	FromCardinality dsl.Cardinality
	ToCardinality   dsl.Cardinality
	Label           string
	HasLabel        bool
	Role            string
	HasRole         bool
}

// GraphIR is the layout engine's sole input: a read-only node/edge graph.
type GraphIR struct {
	Nodes []Node
	Edges []Edge
}

// FromSchema projects a parsed dsl.Schema into a GraphIR, restricting nodes
// to the named view (all entities if view is empty) and columns to those
// surviving detail. Edges whose endpoints fall outside the resulting node
// set are dropped.
func FromSchema(schema dsl.Schema, view string, detail DetailLevel) GraphIR {
	included := map[string]bool{}
	if view != "" {
		for _, v := range schema.Views {
			if v.Name == view {
				for _, name := range v.Includes {
					included[name] = true
				}
				break
			}
		}
	} else {
		for _, e := range schema.Entities {
			included[e.Name] = true
		}
	}

	var nodes []Node
	for _, e := range schema.Entities {
		if !included[e.Name] {
			continue
		}
		nodes = append(nodes, nodeFromEntity(e, detail))
	}

	nodeIDs := map[string]bool{}
	for _, n := range nodes {
		nodeIDs[n.ID] = true
	}

	var edges []Edge
	for _, r := range schema.Relationships {
		if !nodeIDs[r.Left] || !nodeIDs[r.Right] {
			continue
		}
		edges = append(edges, Edge{
			From:            r.Left,
			To:              r.Right,
			FromCardinality: r.LeftCardinality,
			ToCardinality:   r.RightCardinality,
			Label:           r.Label,
			HasLabel:        r.HasLabel,
			Role:            r.Role,
			HasRole:         r.HasRole,
		})
	}

	applyArrangement(nodes, schema.Arrangement)

	return GraphIR{Nodes: nodes, Edges: edges}
}

// applyArrangement assigns each node its arrangement row as Level and its
// column position within that row as Order, overriding any @hint.level the
// entity also carried — the grid is the more specific placement directive.
func applyArrangement(nodes []Node, arrangement [][]string) {
	if len(arrangement) == 0 {
		return
	}
	byID := make(map[string]*Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}
	for row, names := range arrangement {
		for col, name := range names {
			n, ok := byID[name]
			if !ok {
				continue
			}
			level := int64(row)
			order := int64(col)
			n.Level = &level
			n.Order = &order
		}
	}
}

func nodeFromEntity(e dsl.Entity, detail DetailLevel) Node {
	var columns []Column
	for _, c := range e.Columns {
		isPK := c.HasModifier(dsl.ModPk)
		isFK := c.HasModifier(dsl.ModFk)

		include := false
		switch detail {
		case DetailTables:
			include = false
		case DetailPk:
			include = isPK
		case DetailPkFk:
			include = isPK || isFK
		case DetailAll:
			include = true
		}

		if include {
			columns = append(columns, Column{Name: c.Name, Type: c.Type, IsPK: isPK, IsFK: isFK})
		}
	}

	node := Node{ID: e.Name, Label: e.Name, Columns: columns}

	for _, h := range e.Hints {
		switch {
		case h.Key == "hint.level" && h.Value.Kind == dsl.HintInt:
			v := h.Value.Int
			node.Level = &v
		case h.Key == "hint.group":
			switch h.Value.Kind {
			case dsl.HintStr:
				v := h.Value.Str
				node.Group = &v
			case dsl.HintIdent:
				v := h.Value.Ident
				node.Group = &v
			}
		}
	}

	return node
}
