package sqladapter

import (
	"fmt"

	"github.com/mark/erd-diagram-tool/pkg/dsl"
)

// ParseError reports a SQL dump token the parser couldn't make sense of.
type ParseError struct {
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sql: %s", e.Context)
}

// fkInfo is a foreign-key constraint collected while scanning a table body,
// resolved into a dsl.Relationship once every table name is known.
type fkInfo struct {
	target string
}

// Parse converts SQL dump text into a DSL schema. dialect resolves to a
// concrete dialect via content sniffing when DialectAuto.
func Parse(input string, dialect Dialect) (dsl.Schema, error) {
	dialect = dialect.Resolve(input)
	tokens := newSQLLexer(input).tokenize()
	p := &sqlParser{tokens: tokens, dialect: dialect}
	return p.parse()
}

type sqlParser struct {
	tokens  []sqlToken
	pos     int
	dialect Dialect
}

func (p *sqlParser) current() sqlToken {
	if p.pos >= len(p.tokens) {
		return sqlToken{Kind: sqlEOF}
	}
	return p.tokens[p.pos]
}

func (p *sqlParser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

type fkConstraint struct {
	sourceTable string
	target      string
}

func (p *sqlParser) parse() (dsl.Schema, error) {
	var entities []dsl.Entity
	var fkConstraints []fkConstraint

	for p.current().Kind != sqlEOF {
		switch p.current().Kind {
		case sqlCreate:
			p.advance()

			if p.current().Kind == sqlIf {
				p.skipUntilKind(sqlTable)
			}

			if p.current().Kind == sqlTable {
				p.advance()

				if p.current().Kind == sqlIf {
					p.advance() // IF
					if p.current().Kind == sqlNot {
						p.advance()
					}
					if p.current().Kind == sqlExists {
						p.advance()
					}
				}

				entity, fks, err := p.parseCreateTable()
				if err != nil {
					return dsl.Schema{}, err
				}
				if entity != nil {
					entities = append(entities, *entity)
					for _, fk := range fks {
						fkConstraints = append(fkConstraints, fkConstraint{sourceTable: entity.Name, target: fk.target})
					}
				}
			} else {
				p.skipStatement()
			}

		case sqlAlter:
			fk, err := p.parseAlterTableFK()
			if err != nil {
				return dsl.Schema{}, err
			}
			if fk != nil {
				fkConstraints = append(fkConstraints, *fk)
			}

		default:
			p.advance()
		}
	}

	relationships := generateRelationships(entities, fkConstraints)

	return dsl.Schema{
		Entities:      entities,
		Relationships: relationships,
	}, nil
}

func (p *sqlParser) parseCreateTable() (*dsl.Entity, []fkInfo, error) {
	if p.current().Kind != sqlIdent {
		p.skipStatement()
		return nil, nil, nil
	}
	tableName := p.current().Text
	p.advance()

	if p.current().Kind == sqlDot {
		p.advance()
		if p.current().Kind != sqlIdent {
			p.skipStatement()
			return nil, nil, nil
		}
		tableName = p.current().Text
		p.advance()
	}

	return p.parseTableBody(tableName)
}

func (p *sqlParser) parseTableBody(tableName string) (*dsl.Entity, []fkInfo, error) {
	if p.current().Kind != sqlLParen {
		p.skipStatement()
		return nil, nil, nil
	}
	p.advance()

	var columns []dsl.Column
	var constraints []dsl.Constraint
	var fkInfos []fkInfo
	var pkColumns []string

loop:
	for {
		switch p.current().Kind {
		case sqlRParen:
			p.advance()
			break loop

		case sqlComma:
			p.advance()

		case sqlPrimary:
			p.advance()
			if p.current().Kind == sqlKey {
				p.advance()
				cols := p.parseColumnList()
				pkColumns = append(pkColumns, cols...)
				if len(cols) > 1 {
					constraints = append(constraints, dsl.Constraint{Kind: dsl.ConstraintPrimaryKey, Columns: cols})
				}
			}

		case sqlForeign:
			fk, err := p.parseForeignKeyConstraint()
			if err != nil {
				return nil, nil, err
			}
			if fk != nil {
				fkInfos = append(fkInfos, *fk)
			}

		case sqlUnique:
			p.advance()
			if p.current().Kind == sqlKey {
				p.advance()
			}
			if p.current().Kind == sqlLParen {
				p.parseColumnList()
			}

		case sqlConstraint:
			p.advance()
			if p.current().Kind == sqlIdent {
				p.advance()
			}

		case sqlIndex, sqlKey:
			p.skipUntilAny(sqlComma, sqlRParen)

		case sqlCheck:
			p.skipParenthesized()

		case sqlIdent:
			col, err := p.parseColumn()
			if err != nil {
				return nil, nil, err
			}
			if col != nil {
				columns = append(columns, *col)
			}

		case sqlEOF:
			break loop

		default:
			p.advance()
		}
	}

	p.skipStatement()

	for i, col := range columns {
		if containsStr(pkColumns, col.Name) && !col.HasModifier(dsl.ModPk) {
			columns[i].Modifiers = append([]dsl.ColumnModifier{{Kind: dsl.ModPk}}, col.Modifiers...)
		}
	}

	return &dsl.Entity{
		Name:        tableName,
		Columns:     columns,
		Constraints: constraints,
	}, fkInfos, nil
}

func (p *sqlParser) parseColumn() (*dsl.Column, error) {
	if p.current().Kind != sqlIdent {
		return nil, nil
	}
	name := p.current().Text
	p.advance()

	var rawType string
	parenDepth := 0

loop:
	for {
		switch p.current().Kind {
		case sqlIdent:
			rawType += p.current().Text
			p.advance()
		case sqlSerial:
			rawType += "SERIAL"
			p.advance()
		case sqlLParen:
			parenDepth++
			rawType += "("
			p.advance()
		case sqlRParen:
			if parenDepth == 0 {
				break loop
			}
			parenDepth--
			rawType += ")"
			p.advance()
		case sqlNum:
			rawType += p.current().Text
			p.advance()
		case sqlComma:
			if parenDepth == 0 {
				break loop
			}
			rawType += ","
			p.advance()
		default:
			break loop
		}
	}

	if rawType == "" {
		return nil, nil
	}

	typ := MapType(rawType, p.dialect)

	var modifiers []dsl.ColumnModifier
	isPK := false

modloop:
	for {
		switch p.current().Kind {
		case sqlPrimary:
			p.advance()
			if p.current().Kind == sqlKey {
				p.advance()
			}
			isPK = true

		case sqlNot:
			p.advance()
			if p.current().Kind == sqlNull {
				p.advance()
				modifiers = append(modifiers, dsl.ColumnModifier{Kind: dsl.ModNotNull})
			}

		case sqlNull:
			p.advance()

		case sqlUnique:
			p.advance()
			if p.current().Kind == sqlKey {
				p.advance()
			}
			modifiers = append(modifiers, dsl.ColumnModifier{Kind: dsl.ModUnique})

		case sqlDefault:
			p.advance()
			modifiers = append(modifiers, dsl.ColumnModifier{Kind: dsl.ModDefault, DefaultValue: p.parseDefaultValue()})

		case sqlReferences:
			p.advance()
			target, col, err := p.parseReference()
			if err != nil {
				return nil, err
			}
			modifiers = append(modifiers, dsl.ColumnModifier{Kind: dsl.ModFk, FkTarget: target, FkColumn: col})
			p.skipOnActions()

		case sqlIncrement, sqlAuto:
			p.advance()
			if p.current().Kind == sqlIncrement {
				p.advance()
			}

		case sqlSerial:
			p.advance()

		case sqlCheck:
			p.skipParenthesized()

		case sqlComma, sqlRParen, sqlEOF:
			break modloop

		case sqlConstraint:
			p.advance()
			if p.current().Kind == sqlIdent {
				p.advance()
			}

		case sqlOn:
			p.skipOnActions()

		default:
			p.advance()
		}
	}

	if isPK {
		modifiers = append([]dsl.ColumnModifier{{Kind: dsl.ModPk}}, modifiers...)
	}

	return &dsl.Column{Name: name, Type: typ, Modifiers: modifiers}, nil
}

func (p *sqlParser) parseDefaultValue() string {
	switch p.current().Kind {
	case sqlStr:
		val := p.current().Text
		p.advance()
		return val

	case sqlNum:
		val := p.current().Text
		p.advance()
		return val

	case sqlNull:
		p.advance()
		return "NULL"

	case sqlIdent:
		val := p.current().Text
		p.advance()
		if p.current().Kind == sqlLParen {
			val += "("
			p.advance()
			if p.current().Kind == sqlRParen {
				val += ")"
				p.advance()
			} else {
				val += p.collectUntilParen() + ")"
			}
		}
		return val

	case sqlLParen:
		p.advance()
		return "(" + p.collectUntilParen() + ")"

	default:
		return ""
	}
}

func (p *sqlParser) collectUntilParen() string {
	var parts []string
	depth := 1

	for {
		switch p.current().Kind {
		case sqlLParen:
			depth++
			parts = append(parts, "(")
			p.advance()
		case sqlRParen:
			depth--
			if depth == 0 {
				p.advance()
				return joinSpace(parts)
			}
			parts = append(parts, ")")
			p.advance()
		case sqlIdent:
			parts = append(parts, p.current().Text)
			p.advance()
		case sqlNum:
			parts = append(parts, p.current().Text)
			p.advance()
		case sqlStr:
			parts = append(parts, "'"+p.current().Text+"'")
			p.advance()
		case sqlComma:
			parts = append(parts, ",")
			p.advance()
		case sqlEOF:
			return joinSpace(parts)
		default:
			p.advance()
		}
	}
}

func (p *sqlParser) parseReference() (string, string, error) {
	if p.current().Kind != sqlIdent {
		return "", "", &ParseError{Context: "expected referenced table name"}
	}
	target := p.current().Text
	p.advance()

	if p.current().Kind == sqlDot {
		p.advance()
		if p.current().Kind == sqlIdent {
			target = p.current().Text
			p.advance()
		}
	}

	col := "id"
	if p.current().Kind == sqlLParen {
		p.advance()
		if p.current().Kind == sqlIdent {
			col = p.current().Text
		}
		p.advance()
		if p.current().Kind == sqlRParen {
			p.advance()
		}
	}

	return target, col, nil
}

func (p *sqlParser) parseForeignKeyConstraint() (*fkInfo, error) {
	p.advance() // FOREIGN
	if p.current().Kind != sqlKey {
		return nil, nil
	}
	p.advance() // KEY

	p.parseColumnList()

	if p.current().Kind != sqlReferences {
		return nil, nil
	}
	p.advance()

	target, _, err := p.parseReference()
	if err != nil {
		return nil, err
	}
	p.skipOnActions()

	return &fkInfo{target: target}, nil
}

func (p *sqlParser) parseColumnList() []string {
	var cols []string

	if p.current().Kind != sqlLParen {
		return cols
	}
	p.advance()

	for {
		switch p.current().Kind {
		case sqlIdent:
			cols = append(cols, p.current().Text)
			p.advance()
		case sqlComma:
			p.advance()
		case sqlRParen:
			p.advance()
			return cols
		case sqlEOF:
			return cols
		default:
			p.advance()
		}
	}
}

func (p *sqlParser) skipOnActions() {
	for p.current().Kind == sqlOn {
		p.advance()
		if p.current().Kind == sqlDelete || p.current().Kind == sqlUpdate {
			p.advance()
		}
		switch {
		case p.current().Kind == sqlCascade || p.current().Kind == sqlRestrict:
			p.advance()
		case p.current().Kind == sqlIdent && upperASCII(p.current().Text) == "SET":
			p.advance()
			if p.current().Kind == sqlNull || p.current().Kind == sqlDefault {
				p.advance()
			}
		case p.current().Kind == sqlIdent && upperASCII(p.current().Text) == "NO":
			p.advance()
			if p.current().Kind == sqlIdent && upperASCII(p.current().Text) == "ACTION" {
				p.advance()
			}
		}
	}
}

func (p *sqlParser) skipParenthesized() {
	if p.current().Kind != sqlLParen {
		p.advance()
		return
	}
	p.advance()
	depth := 1
	for depth > 0 {
		switch p.current().Kind {
		case sqlLParen:
			depth++
			p.advance()
		case sqlRParen:
			depth--
			p.advance()
		case sqlEOF:
			return
		default:
			p.advance()
		}
	}
}

func (p *sqlParser) skipStatement() {
	for p.current().Kind != sqlSemicolon && p.current().Kind != sqlEOF {
		p.advance()
	}
	if p.current().Kind == sqlSemicolon {
		p.advance()
	}
}

func (p *sqlParser) skipUntilAny(kinds ...sqlTokenKind) {
	for !kindIn(p.current().Kind, kinds) && p.current().Kind != sqlEOF {
		if p.current().Kind == sqlLParen {
			p.skipParenthesized()
		} else {
			p.advance()
		}
	}
}

func (p *sqlParser) skipUntilKind(kind sqlTokenKind) {
	for p.current().Kind != kind && p.current().Kind != sqlEOF {
		p.advance()
	}
}

// parseAlterTableFK handles `ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY`,
// the form pg_dump emits instead of an inline or table-level FK clause.
func (p *sqlParser) parseAlterTableFK() (*fkConstraint, error) {
	p.advance() // ALTER

	if p.current().Kind != sqlTable {
		p.skipStatement()
		return nil, nil
	}
	p.advance() // TABLE

	if p.current().Kind == sqlOnly {
		p.advance()
	}

	if p.current().Kind != sqlIdent {
		p.skipStatement()
		return nil, nil
	}
	tableName := p.current().Text
	p.advance()

	if p.current().Kind == sqlDot {
		p.advance()
		if p.current().Kind != sqlIdent {
			p.skipStatement()
			return nil, nil
		}
		tableName = p.current().Text
		p.advance()
	}

	if p.current().Kind != sqlAdd {
		p.skipStatement()
		return nil, nil
	}
	p.advance() // ADD

	if p.current().Kind != sqlConstraint {
		p.skipStatement()
		return nil, nil
	}
	p.advance() // CONSTRAINT

	if p.current().Kind == sqlIdent {
		p.advance()
	}

	if p.current().Kind != sqlForeign {
		p.skipStatement()
		return nil, nil
	}

	fk, err := p.parseForeignKeyConstraint()
	if err != nil {
		return nil, err
	}
	if fk == nil {
		p.skipStatement()
		return nil, nil
	}

	return &fkConstraint{sourceTable: tableName, target: fk.target}, nil
}

// generateRelationships turns every foreign key whose target table actually
// exists in the dump into a one-to-many relationship, preferring the
// table-level/ALTER-derived constraints but also picking up inline column
// FK modifiers the table-body parse recorded directly on the column.
func generateRelationships(entities []dsl.Entity, fkConstraints []fkConstraint) []dsl.Relationship {
	entityNames := make(map[string]bool, len(entities))
	for _, e := range entities {
		entityNames[e.Name] = true
	}

	var relationships []dsl.Relationship

	for _, fk := range fkConstraints {
		if !entityNames[fk.target] {
			continue
		}
		relationships = append(relationships, dsl.Relationship{
			Left:             fk.target,
			LeftCardinality:  dsl.CardinalityOne,
			Right:            fk.sourceTable,
			RightCardinality: dsl.CardinalityMany,
		})
	}

	for _, e := range entities {
		for _, col := range e.Columns {
			for _, mod := range col.Modifiers {
				if mod.Kind != dsl.ModFk || !entityNames[mod.FkTarget] {
					continue
				}
				exists := false
				for _, r := range relationships {
					if r.Left == mod.FkTarget && r.Right == e.Name {
						exists = true
						break
					}
				}
				if !exists {
					relationships = append(relationships, dsl.Relationship{
						Left:             mod.FkTarget,
						LeftCardinality:  dsl.CardinalityOne,
						Right:            e.Name,
						RightCardinality: dsl.CardinalityMany,
					})
				}
			}
		}
	}

	return relationships
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func kindIn(k sqlTokenKind, kinds []sqlTokenKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
