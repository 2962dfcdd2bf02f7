package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntity(t *testing.T) {
	input := `
		entity User {
			id int pk
			name string not null
			email string unique
		}
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, schema.Entities, 1)
	assert.Equal(t, "User", schema.Entities[0].Name)
	assert.Len(t, schema.Entities[0].Columns, 3)
	assert.True(t, schema.Entities[0].Columns[0].HasModifier(ModPk))
}

func TestParseRelationship(t *testing.T) {
	input := `
		rel {
			User 1 -- * Order : "places"
			User 0..1 -- 1..* Post as author
		}
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, schema.Relationships, 2)
	assert.Equal(t, "User", schema.Relationships[0].Left)
	assert.True(t, schema.Relationships[0].HasLabel)
	assert.Equal(t, "places", schema.Relationships[0].Label)
	assert.True(t, schema.Relationships[1].HasRole)
	assert.Equal(t, "author", schema.Relationships[1].Role)
}

func TestParseView(t *testing.T) {
	input := `
		view core {
			include User, Order, Product
		}
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, schema.Views, 1)
	assert.Equal(t, []string{"User", "Order", "Product"}, schema.Views[0].Includes)
}

func TestParseUnicode(t *testing.T) {
	input := `
		entity ユーザー {
			名前 文字列 not null
		}
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, "ユーザー", schema.Entities[0].Name)
	assert.Equal(t, "名前", schema.Entities[0].Columns[0].Name)
}

func TestParseArrangement(t *testing.T) {
	input := `
		@hint.arrangement = {
			Category Address Customer;
			Product Order Review Cart;
			ProductImage OrderItem CartItem Payment
		}

		entity Category { id int pk }
		entity Address { id int pk }
		entity Customer { id int pk }
		entity Product { id int pk }
		entity Order { id int pk }
		entity Review { id int pk }
		entity Cart { id int pk }
		entity ProductImage { id int pk }
		entity OrderItem { id int pk }
		entity CartItem { id int pk }
		entity Payment { id int pk }
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	require.NotNil(t, schema.Arrangement)
	require.Len(t, schema.Arrangement, 3)
	assert.Equal(t, []string{"Category", "Address", "Customer"}, schema.Arrangement[0])
	assert.Equal(t, []string{"Product", "Order", "Review", "Cart"}, schema.Arrangement[1])
	assert.Equal(t, []string{"ProductImage", "OrderItem", "CartItem", "Payment"}, schema.Arrangement[2])
}

func TestParseForeignKeyColumn(t *testing.T) {
	input := `
		entity Order {
			id int pk
			user_id int fk->User.id
		}
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	mods := schema.Entities[0].Columns[1].Modifiers
	require.Len(t, mods, 1)
	assert.Equal(t, ModFk, mods[0].Kind)
	assert.Equal(t, "User", mods[0].FkTarget)
	assert.Equal(t, "id", mods[0].FkColumn)
}

func TestParseForeignKeyConstraint(t *testing.T) {
	input := `
		entity Order {
			id int pk
			user_id int
			foreign_key(user_id) references User(id) on delete cascade
		}
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, schema.Entities[0].Constraints, 1)
	c := schema.Entities[0].Constraints[0]
	assert.Equal(t, ConstraintForeignKey, c.Kind)
	assert.Equal(t, "User", c.Target)
	assert.Equal(t, "cascade", c.OnDelete)
}

func TestParseHintLevels(t *testing.T) {
	input := `
		entity User {
			@hint.level = 1
			id int pk
		}
	`
	schema, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, schema.Entities[0].Hints, 1)
	h := schema.Entities[0].Hints[0]
	assert.Equal(t, "hint.level", h.Key)
	assert.Equal(t, int64(1), h.Value.Int)
}
