package dsl

import "fmt"

// ParseError reports a syntax error encountered while parsing a token stream.
type ParseError struct {
	Token    Token
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected token %v, expected %s", e.Token, e.Expected)
}

// Parser turns a pre-tokenized ER-DSL document into a Schema.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser lexes input in full and returns a Parser positioned at its start.
func NewParser(input string) (*Parser, error) {
	toks, err := NewLexer(input).Tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: toks}, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *Parser) expectIdent() (string, error) {
	tok := p.advance()
	if tok.Kind != TokIdent {
		return "", &ParseError{Token: tok, Expected: "identifier"}
	}
	return tok.Text, nil
}

func (p *Parser) expect(kind TokenKind, what string) error {
	tok := p.advance()
	if tok.Kind != kind {
		return &ParseError{Token: tok, Expected: what}
	}
	return nil
}

func (p *Parser) checkIdent(name string) bool {
	tok := p.peek()
	return tok.Kind == TokIdent && tok.Text == name
}

// Parse consumes the full token stream and returns the parsed Schema.
func (p *Parser) Parse() (Schema, error) {
	var schema Schema
	var arrangement [][]string
	haveArrangement := false

	for p.peek().Kind != TokEOF {
		switch {
		case p.peek().Kind == TokAt:
			ok, err := p.tryParseArrangement()
			if err != nil {
				return Schema{}, err
			}
			if !ok {
				return Schema{}, &ParseError{Token: p.peek(), Expected: "entity, rel, view, or @hint.arrangement"}
			}
			rows, err := p.parseArrangementBlock()
			if err != nil {
				return Schema{}, err
			}
			arrangement = rows
			haveArrangement = true
		case p.checkIdent("entity"):
			p.advance()
			ent, err := p.parseEntity()
			if err != nil {
				return Schema{}, err
			}
			schema.Entities = append(schema.Entities, ent)
		case p.checkIdent("rel"):
			p.advance()
			rels, err := p.parseRelBlock()
			if err != nil {
				return Schema{}, err
			}
			schema.Relationships = append(schema.Relationships, rels...)
		case p.checkIdent("view"):
			p.advance()
			v, err := p.parseView()
			if err != nil {
				return Schema{}, err
			}
			schema.Views = append(schema.Views, v)
		default:
			return Schema{}, &ParseError{Token: p.peek(), Expected: "entity, rel, view, or @hint.arrangement"}
		}
	}

	if haveArrangement {
		schema.Arrangement = arrangement
	}

	return schema, nil
}

// tryParseArrangement looks ahead for `@ hint . arrangement =` and consumes
// those tokens if found, restoring position otherwise.
func (p *Parser) tryParseArrangement() (bool, error) {
	if p.peek().Kind != TokAt {
		return false, nil
	}
	start := p.pos

	p.advance() // @
	if !p.checkIdent("hint") {
		p.pos = start
		return false, nil
	}
	p.advance() // hint

	if p.peek().Kind != TokDot {
		p.pos = start
		return false, nil
	}
	p.advance() // .

	if !p.checkIdent("arrangement") {
		p.pos = start
		return false, nil
	}
	p.advance() // arrangement

	if p.peek().Kind != TokEq {
		p.pos = start
		return false, nil
	}
	p.advance() // =

	return true, nil
}

func (p *Parser) parseArrangementBlock() ([][]string, error) {
	if err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}

	var rows [][]string
	var current []string

	for p.peek().Kind != TokRBrace {
		tok := p.peek()
		switch tok.Kind {
		case TokIdent:
			p.advance()
			current = append(current, tok.Text)
		case TokSemicolon:
			p.advance()
			if len(current) > 0 {
				rows = append(rows, current)
				current = nil
			}
		default:
			return nil, &ParseError{Token: tok, Expected: "entity name or semicolon"}
		}
	}

	if len(current) > 0 {
		rows = append(rows, current)
	}

	if err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *Parser) parseEntity() (Entity, error) {
	name, err := p.expectIdent()
	if err != nil {
		return Entity{}, err
	}
	if err := p.expect(TokLBrace, "{"); err != nil {
		return Entity{}, err
	}

	var ent Entity
	ent.Name = name

	for p.peek().Kind != TokRBrace {
		switch {
		case p.peek().Kind == TokAt:
			h, err := p.parseHint()
			if err != nil {
				return Entity{}, err
			}
			ent.Hints = append(ent.Hints, h)
		case p.checkIdent("primary_key"):
			p.advance()
			c, err := p.parsePrimaryKey()
			if err != nil {
				return Entity{}, err
			}
			ent.Constraints = append(ent.Constraints, c)
		case p.checkIdent("foreign_key"):
			p.advance()
			c, err := p.parseForeignKey()
			if err != nil {
				return Entity{}, err
			}
			ent.Constraints = append(ent.Constraints, c)
		case p.checkIdent("index"):
			p.advance()
			c, err := p.parseIndex()
			if err != nil {
				return Entity{}, err
			}
			ent.Constraints = append(ent.Constraints, c)
		default:
			col, err := p.parseColumn()
			if err != nil {
				return Entity{}, err
			}
			ent.Columns = append(ent.Columns, col)
		}
	}

	if err := p.expect(TokRBrace, "}"); err != nil {
		return Entity{}, err
	}
	return ent, nil
}

func (p *Parser) parseColumn() (Column, error) {
	name, err := p.expectIdent()
	if err != nil {
		return Column{}, err
	}
	typ, err := p.expectIdent()
	if err != nil {
		return Column{}, err
	}

	col := Column{Name: name, Type: typ}

	for {
		switch {
		case p.checkIdent("pk"):
			p.advance()
			col.Modifiers = append(col.Modifiers, ColumnModifier{Kind: ModPk})
		case p.checkIdent("not"):
			p.advance()
			if p.checkIdent("null") {
				p.advance()
				col.Modifiers = append(col.Modifiers, ColumnModifier{Kind: ModNotNull})
			}
		case p.checkIdent("unique"):
			p.advance()
			col.Modifiers = append(col.Modifiers, ColumnModifier{Kind: ModUnique})
		case p.checkIdent("default"):
			p.advance()
			val, err := p.parseDefaultValue()
			if err != nil {
				return Column{}, err
			}
			col.Modifiers = append(col.Modifiers, ColumnModifier{Kind: ModDefault, DefaultValue: val})
		case p.checkIdent("fk"):
			p.advance()
			if err := p.expect(TokArrow, "->"); err != nil {
				return Column{}, err
			}
			target, err := p.expectIdent()
			if err != nil {
				return Column{}, err
			}
			if err := p.expect(TokDot, "."); err != nil {
				return Column{}, err
			}
			fkCol, err := p.expectIdent()
			if err != nil {
				return Column{}, err
			}
			col.Modifiers = append(col.Modifiers, ColumnModifier{Kind: ModFk, FkTarget: target, FkColumn: fkCol})
		default:
			return col, nil
		}
	}
}

func (p *Parser) parseDefaultValue() (string, error) {
	tok := p.advance()
	switch tok.Kind {
	case TokIdent:
		if p.peek().Kind == TokLParen {
			p.advance()
			args := ""
			for {
				switch p.peek().Kind {
				case TokRParen:
					p.advance()
					return tok.Text + "(" + args + ")", nil
				case TokEOF:
					return tok.Text + "(" + args + ")", nil
				default:
					a := p.advance()
					switch a.Kind {
					case TokIdent:
						args += a.Text
					case TokNum:
						args += fmt.Sprintf("%d", a.Num)
					case TokStr:
						args += "\"" + a.Text + "\""
					case TokComma:
						args += ", "
					}
				}
			}
		}
		return tok.Text, nil
	case TokStr:
		return "\"" + tok.Text + "\"", nil
	case TokNum:
		return fmt.Sprintf("%d", tok.Num), nil
	default:
		return "", &ParseError{Token: tok, Expected: "default value"}
	}
}

func (p *Parser) parseHint() (Hint, error) {
	if err := p.expect(TokAt, "@"); err != nil {
		return Hint{}, err
	}
	key, err := p.expectIdent()
	if err != nil {
		return Hint{}, err
	}

	for p.peek().Kind == TokDot {
		p.advance()
		sub, err := p.expectIdent()
		if err != nil {
			return Hint{}, err
		}
		key += "." + sub
	}

	if err := p.expect(TokEq, "="); err != nil {
		return Hint{}, err
	}

	tok := p.advance()
	var val HintValue
	switch tok.Kind {
	case TokNum:
		val = HintValue{Kind: HintInt, Int: tok.Num}
	case TokStr:
		val = HintValue{Kind: HintStr, Str: tok.Text}
	case TokIdent:
		val = HintValue{Kind: HintIdent, Ident: tok.Text}
	default:
		return Hint{}, &ParseError{Token: tok, Expected: "hint value"}
	}

	return Hint{Key: key, Value: val}, nil
}

func (p *Parser) parsePrimaryKey() (Constraint, error) {
	if err := p.expect(TokLParen, "("); err != nil {
		return Constraint{}, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return Constraint{}, err
	}
	if err := p.expect(TokRParen, ")"); err != nil {
		return Constraint{}, err
	}
	return Constraint{Kind: ConstraintPrimaryKey, Columns: cols}, nil
}

func (p *Parser) parseForeignKey() (Constraint, error) {
	if err := p.expect(TokLParen, "("); err != nil {
		return Constraint{}, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return Constraint{}, err
	}
	if err := p.expect(TokRParen, ")"); err != nil {
		return Constraint{}, err
	}

	if !p.checkIdent("references") {
		return Constraint{}, &ParseError{Token: p.peek(), Expected: "references"}
	}
	p.advance()

	target, err := p.expectIdent()
	if err != nil {
		return Constraint{}, err
	}
	if err := p.expect(TokLParen, "("); err != nil {
		return Constraint{}, err
	}
	targetCols, err := p.parseIdentList()
	if err != nil {
		return Constraint{}, err
	}
	if err := p.expect(TokRParen, ")"); err != nil {
		return Constraint{}, err
	}

	c := Constraint{Kind: ConstraintForeignKey, Columns: cols, Target: target, TargetColumns: targetCols}

	for p.checkIdent("on") {
		p.advance()
		switch {
		case p.checkIdent("delete"):
			p.advance()
			v, err := p.expectIdent()
			if err != nil {
				return Constraint{}, err
			}
			c.OnDelete = v
		case p.checkIdent("update"):
			p.advance()
			v, err := p.expectIdent()
			if err != nil {
				return Constraint{}, err
			}
			c.OnUpdate = v
		}
	}

	return c, nil
}

func (p *Parser) parseIndex() (Constraint, error) {
	if err := p.expect(TokLParen, "("); err != nil {
		return Constraint{}, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return Constraint{}, err
	}
	if err := p.expect(TokRParen, ")"); err != nil {
		return Constraint{}, err
	}

	c := Constraint{Kind: ConstraintIndex, Columns: cols}

	if p.peek().Kind == TokLBracket {
		p.advance()
		if p.checkIdent("name") {
			p.advance()
			if err := p.expect(TokEq, "="); err != nil {
				return Constraint{}, err
			}
			name, err := p.expectIdent()
			if err != nil {
				return Constraint{}, err
			}
			c.Name = name
		}
		if err := p.expect(TokRBracket, "]"); err != nil {
			return Constraint{}, err
		}
	}

	return c, nil
}

func (p *Parser) parseIdentList() ([]string, error) {
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	list := []string{first}
	for p.peek().Kind == TokComma {
		p.advance()
		next, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		list = append(list, next)
	}
	return list, nil
}

func (p *Parser) parseRelBlock() ([]Relationship, error) {
	if err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	var rels []Relationship
	for p.peek().Kind != TokRBrace {
		r, err := p.parseRelationship()
		if err != nil {
			return nil, err
		}
		rels = append(rels, r)
	}
	if err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	return rels, nil
}

func (p *Parser) parseRelationship() (Relationship, error) {
	left, err := p.expectIdent()
	if err != nil {
		return Relationship{}, err
	}
	leftCard, err := p.parseCardinality()
	if err != nil {
		return Relationship{}, err
	}
	if err := p.expect(TokDash, "--"); err != nil {
		return Relationship{}, err
	}
	rightCard, err := p.parseCardinality()
	if err != nil {
		return Relationship{}, err
	}
	right, err := p.expectIdent()
	if err != nil {
		return Relationship{}, err
	}

	rel := Relationship{
		Left:             left,
		LeftCardinality:  leftCard,
		Right:            right,
		RightCardinality: rightCard,
	}

	if p.peek().Kind == TokColon {
		p.advance()
		tok := p.advance()
		if tok.Kind != TokStr {
			return Relationship{}, &ParseError{Token: tok, Expected: "string label"}
		}
		rel.Label = tok.Text
		rel.HasLabel = true
	}

	if p.checkIdent("as") {
		p.advance()
		role, err := p.expectIdent()
		if err != nil {
			return Relationship{}, err
		}
		rel.Role = role
		rel.HasRole = true
	}

	return rel, nil
}

func (p *Parser) parseCardinality() (Cardinality, error) {
	tok := p.peek()
	switch {
	case tok.Kind == TokStar:
		p.advance()
		return CardinalityMany, nil
	case tok.Kind == TokNum && tok.Num == 0:
		p.advance()
		if err := p.expect(TokDotDot, ".."); err != nil {
			return 0, err
		}
		n := p.advance()
		if n.Kind != TokNum || n.Num != 1 {
			return 0, &ParseError{Token: n, Expected: "1 after 0.."}
		}
		return CardinalityZeroOrOne, nil
	case tok.Kind == TokNum && tok.Num == 1:
		p.advance()
		if p.peek().Kind == TokDotDot {
			p.advance()
			if err := p.expect(TokStar, "*"); err != nil {
				return 0, err
			}
			return CardinalityOneOrMore, nil
		}
		return CardinalityOne, nil
	default:
		return 0, &ParseError{Token: tok, Expected: "cardinality (1, 0..1, *, 1..*)"}
	}
}

func (p *Parser) parseView() (View, error) {
	name, err := p.expectIdent()
	if err != nil {
		return View{}, err
	}
	if err := p.expect(TokLBrace, "{"); err != nil {
		return View{}, err
	}

	var v View
	v.Name = name

	for p.peek().Kind != TokRBrace {
		if !p.checkIdent("include") {
			return View{}, &ParseError{Token: p.peek(), Expected: "include"}
		}
		p.advance()
		ids, err := p.parseIdentList()
		if err != nil {
			return View{}, err
		}
		v.Includes = append(v.Includes, ids...)
	}

	if err := p.expect(TokRBrace, "}"); err != nil {
		return View{}, err
	}
	return v, nil
}

// Parse is a convenience wrapper over NewParser(input).Parse().
func Parse(input string) (Schema, error) {
	p, err := NewParser(input)
	if err != nil {
		return Schema{}, err
	}
	return p.Parse()
}
