package dsl

import (
	"fmt"
	"sort"
	"strings"
)

// Serialize renders schema back to ER-DSL source, auto-generating an
// arrangement hint from the foreign-key dependency graph when the schema
// doesn't already carry one explicitly.
func Serialize(schema Schema) string {
	var b strings.Builder

	for i, entity := range schema.Entities {
		if i > 0 {
			b.WriteByte('\n')
		}
		serializeEntity(&b, entity)
	}

	if len(schema.Relationships) > 0 {
		b.WriteString("\nrel {\n")
		for _, rel := range schema.Relationships {
			serializeRelationship(&b, rel)
		}
		b.WriteString("}\n")
	}

	arrangement := schema.Arrangement
	if len(arrangement) == 0 {
		arrangement = generateArrangement(schema)
	}
	if len(arrangement) > 0 {
		b.WriteString("\n@hint.arrangement = {\n")
		for i, row := range arrangement {
			b.WriteString("    ")
			b.WriteString(strings.Join(row, " "))
			if i < len(arrangement)-1 {
				b.WriteByte(';')
			}
			b.WriteByte('\n')
		}
		b.WriteString("}\n")
	}

	return b.String()
}

// generateArrangement derives a row-per-level grid from FK dependencies:
// parent tables (relationship "1" side) land on earlier rows than the
// children that reference them, with circular chains pushed past the deepest
// resolved level and rows sorted alphabetically for determinism.
func generateArrangement(schema Schema) [][]string {
	if len(schema.Entities) == 0 {
		return nil
	}

	names := make(map[string]bool, len(schema.Entities))
	for _, e := range schema.Entities {
		names[e.Name] = true
	}

	parents := make(map[string]map[string]bool, len(schema.Entities))
	for _, e := range schema.Entities {
		parents[e.Name] = map[string]bool{}
	}

	for _, rel := range schema.Relationships {
		if names[rel.Left] && names[rel.Right] {
			parents[rel.Right][rel.Left] = true
		}
	}

	levels := make(map[string]int, len(schema.Entities))
	for entity, deps := range parents {
		if len(deps) == 0 {
			levels[entity] = 0
		}
	}

	for changed := true; changed; {
		changed = false
		for entity, deps := range parents {
			if _, done := levels[entity]; done {
				continue
			}
			maxParentLevel := -1
			resolved := 0
			for p := range deps {
				if lv, ok := levels[p]; ok {
					resolved++
					if lv > maxParentLevel {
						maxParentLevel = lv
					}
				}
			}
			if resolved == len(deps) {
				levels[entity] = maxParentLevel + 1
				changed = true
			}
		}
	}

	maxLevel := 0
	for _, lv := range levels {
		if lv > maxLevel {
			maxLevel = lv
		}
	}
	for name := range names {
		if _, ok := levels[name]; !ok {
			levels[name] = maxLevel + 1
		}
	}

	finalMax := 0
	for _, lv := range levels {
		if lv > finalMax {
			finalMax = lv
		}
	}

	rows := make([][]string, finalMax+1)
	for entity, lv := range levels {
		rows[lv] = append(rows[lv], entity)
	}

	result := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		sort.Strings(row)
		result = append(result, row)
	}
	return result
}

func serializeEntity(b *strings.Builder, entity Entity) {
	fmt.Fprintf(b, "entity %s {\n", entity.Name)

	compositePK := map[string]bool{}
	for _, c := range entity.Constraints {
		if c.Kind == ConstraintPrimaryKey && len(c.Columns) > 1 {
			for _, col := range c.Columns {
				compositePK[col] = true
			}
		}
	}

	for _, col := range entity.Columns {
		serializeColumn(b, col, compositePK)
	}

	for _, c := range entity.Constraints {
		serializeConstraint(b, c)
	}

	b.WriteString("}\n")
}

func serializeColumn(b *strings.Builder, col Column, compositePK map[string]bool) {
	fmt.Fprintf(b, "    %s %s", col.Name, col.Type)

	if col.HasModifier(ModPk) && !compositePK[col.Name] {
		b.WriteString(" pk")
	}
	if col.HasModifier(ModUnique) {
		b.WriteString(" unique")
	}
	if col.HasModifier(ModNotNull) {
		b.WriteString(" not null")
	}

	for _, m := range col.Modifiers {
		if m.Kind == ModFk {
			fmt.Fprintf(b, " fk -> %s.%s", m.FkTarget, m.FkColumn)
		}
	}

	for _, m := range col.Modifiers {
		if m.Kind == ModDefault {
			val := m.DefaultValue
			isFunctionCall := strings.Contains(val, "(") && strings.HasSuffix(val, ")")
			needsQuote := !isFunctionCall && (strings.Contains(val, " ") || strings.HasPrefix(val, "'"))
			if needsQuote {
				fmt.Fprintf(b, " default \"%s\"", val)
			} else {
				fmt.Fprintf(b, " default %s", val)
			}
		}
	}

	b.WriteByte('\n')
}

func serializeConstraint(b *strings.Builder, c Constraint) {
	switch c.Kind {
	case ConstraintPrimaryKey:
		if len(c.Columns) > 1 {
			fmt.Fprintf(b, "    primary_key(%s)\n", strings.Join(c.Columns, ", "))
		}
	case ConstraintForeignKey:
		fmt.Fprintf(b, "    foreign_key(%s) references %s(%s)",
			strings.Join(c.Columns, ", "), c.Target, strings.Join(c.TargetColumns, ", "))
		if c.OnDelete != "" {
			fmt.Fprintf(b, " on delete %s", c.OnDelete)
		}
		if c.OnUpdate != "" {
			fmt.Fprintf(b, " on update %s", c.OnUpdate)
		}
		b.WriteByte('\n')
	case ConstraintIndex:
		fmt.Fprintf(b, "    index(%s)", strings.Join(c.Columns, ", "))
		if c.Name != "" {
			fmt.Fprintf(b, " [name = %s]", c.Name)
		}
		b.WriteByte('\n')
	}
}

func serializeRelationship(b *strings.Builder, rel Relationship) {
	fmt.Fprintf(b, "    %s %s -- %s %s", rel.Left, rel.LeftCardinality, rel.RightCardinality, rel.Right)

	if rel.HasLabel {
		fmt.Fprintf(b, " : \"%s\"", rel.Label)
	}
	if rel.HasRole {
		fmt.Fprintf(b, " as %s", rel.Role)
	}

	b.WriteByte('\n')
}
