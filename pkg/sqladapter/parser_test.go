package sqladapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
)

func TestParseSimpleTable(t *testing.T) {
	sql := `
		CREATE TABLE users (
			id INT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE
		);
	`

	schema, err := Parse(sql, DialectGeneric)
	require.NoError(t, err)
	require.Len(t, schema.Entities, 1)

	user := schema.Entities[0]
	assert.Equal(t, "users", user.Name)
	require.Len(t, user.Columns, 2)

	assert.Equal(t, "id", user.Columns[0].Name)
	assert.True(t, user.Columns[0].HasModifier(dsl.ModPk))

	assert.Equal(t, "email", user.Columns[1].Name)
	assert.True(t, user.Columns[1].HasModifier(dsl.ModNotNull))
	assert.True(t, user.Columns[1].HasModifier(dsl.ModUnique))
}

func TestParseWithForeignKey(t *testing.T) {
	sql := `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE orders (
			id INT PRIMARY KEY,
			user_id INT REFERENCES users(id)
		);
	`

	schema, err := Parse(sql, DialectGeneric)
	require.NoError(t, err)
	require.Len(t, schema.Entities, 2)
	require.Len(t, schema.Relationships, 1)

	rel := schema.Relationships[0]
	assert.Equal(t, "users", rel.Left)
	assert.Equal(t, "orders", rel.Right)
}

func TestParsePostgresSerial(t *testing.T) {
	sql := `
		CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			name TEXT
		);
	`

	schema, err := Parse(sql, DialectPostgreSQL)
	require.NoError(t, err)

	user := schema.Entities[0]
	assert.Equal(t, "int", user.Columns[0].Type)
}

func TestParseMySQLAutoIncrement(t *testing.T) {
	sql := `
		CREATE TABLE users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255)
		) ENGINE=InnoDB;
	`

	schema, err := Parse(sql, DialectMySQL)
	require.NoError(t, err)

	user := schema.Entities[0]
	assert.Equal(t, "id", user.Columns[0].Name)
	assert.True(t, user.Columns[0].HasModifier(dsl.ModPk))
}

func TestParseTableLevelForeignKeyConstraint(t *testing.T) {
	sql := `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE posts (
			id INT PRIMARY KEY,
			user_id INT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
	`

	schema, err := Parse(sql, DialectGeneric)
	require.NoError(t, err)
	require.Len(t, schema.Relationships, 1)
	assert.Equal(t, "users", schema.Relationships[0].Left)
	assert.Equal(t, "posts", schema.Relationships[0].Right)
}

func TestParseAlterTableAddForeignKey(t *testing.T) {
	sql := `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE posts (id INT PRIMARY KEY, user_id INT);
		ALTER TABLE ONLY posts
			ADD CONSTRAINT posts_user_id_fkey FOREIGN KEY (user_id) REFERENCES users(id);
	`

	schema, err := Parse(sql, DialectPostgreSQL)
	require.NoError(t, err)
	require.Len(t, schema.Relationships, 1)
	assert.Equal(t, "users", schema.Relationships[0].Left)
	assert.Equal(t, "posts", schema.Relationships[0].Right)
}

func TestParseCompositePrimaryKey(t *testing.T) {
	sql := `
		CREATE TABLE memberships (
			org_id INT,
			user_id INT,
			PRIMARY KEY (org_id, user_id)
		);
	`

	schema, err := Parse(sql, DialectGeneric)
	require.NoError(t, err)
	require.Len(t, schema.Entities[0].Constraints, 1)
	assert.Equal(t, dsl.ConstraintPrimaryKey, schema.Entities[0].Constraints[0].Kind)
	assert.ElementsMatch(t, []string{"org_id", "user_id"}, schema.Entities[0].Constraints[0].Columns)
}
