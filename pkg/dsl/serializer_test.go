package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeSimpleEntity(t *testing.T) {
	schema := Schema{
		Entities: []Entity{
			{
				Name: "User",
				Columns: []Column{
					{Name: "id", Type: "int", Modifiers: []ColumnModifier{{Kind: ModPk}}},
					{Name: "email", Type: "string", Modifiers: []ColumnModifier{{Kind: ModNotNull}, {Kind: ModUnique}}},
				},
			},
		},
	}

	result := Serialize(schema)
	assert.Contains(t, result, "entity User {")
	assert.Contains(t, result, "id int pk")
	assert.Contains(t, result, "email string unique not null")
}

func TestSerializeWithFk(t *testing.T) {
	schema := Schema{
		Entities: []Entity{
			{
				Name: "Order",
				Columns: []Column{
					{Name: "id", Type: "int", Modifiers: []ColumnModifier{{Kind: ModPk}}},
					{
						Name: "user_id",
						Type: "int",
						Modifiers: []ColumnModifier{
							{Kind: ModNotNull},
							{Kind: ModFk, FkTarget: "User", FkColumn: "id"},
						},
					},
				},
			},
		},
	}

	result := Serialize(schema)
	assert.Contains(t, result, "user_id int not null fk -> User.id")
}

func TestSerializeRelationship(t *testing.T) {
	schema := Schema{
		Relationships: []Relationship{
			{
				Left:             "User",
				LeftCardinality:  CardinalityOne,
				Right:            "Order",
				RightCardinality: CardinalityMany,
				Label:            "places",
				HasLabel:         true,
			},
		},
	}

	result := Serialize(schema)
	assert.Contains(t, result, "rel {")
	assert.Contains(t, result, `User 1 -- * Order : "places"`)
}

func TestGenerateArrangementOrdersByDependency(t *testing.T) {
	schema := Schema{
		Entities: []Entity{
			{Name: "User"},
			{Name: "Order"},
		},
		Relationships: []Relationship{
			{Left: "User", LeftCardinality: CardinalityOne, Right: "Order", RightCardinality: CardinalityMany},
		},
	}

	result := Serialize(schema)
	assert.Contains(t, result, "@hint.arrangement = {")
	arrangementIdx := indexOf(result, "@hint.arrangement")
	userRowIdx := indexOf(result[arrangementIdx:], "User")
	orderRowIdx := indexOf(result[arrangementIdx:], "Order")
	assert.Greater(t, userRowIdx, 0)
	assert.Greater(t, orderRowIdx, userRowIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
