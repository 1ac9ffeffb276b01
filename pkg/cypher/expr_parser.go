package cypher

import (
	"strconv"
	"strings"
)

// parseExpr is the entry point for expression parsing, starting at the
// lowest precedence level (OR).
func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseXor()
	if err != nil {
		return Expr{}, err
	}
	for p.atKeyword("OR") {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseXor()
		if err != nil {
			return Expr{}, err
		}
		left = Expr{Kind: ExprBinary, Pos: pos, Binary: &BinaryExpr{Left: left, Operator: "OR", Right: right}}
	}
	return left, nil
}

func (p *Parser) parseXor() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return Expr{}, err
	}
	for p.atKeyword("XOR") {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return Expr{}, err
		}
		left = Expr{Kind: ExprBinary, Pos: pos, Binary: &BinaryExpr{Left: left, Operator: "XOR", Right: right}}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return Expr{}, err
	}
	for p.atKeyword("AND") {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return Expr{}, err
		}
		left = Expr{Kind: ExprBinary, Pos: pos, Binary: &BinaryExpr{Left: left, Operator: "AND", Right: right}}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.atKeyword("NOT") {
		pos := p.cur().Pos
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprUnary, Pos: pos, Unary: &UnaryExpr{Operator: "NOT", Operand: operand}}, nil
	}
	return p.parseComparison()
}

// parseComparison handles =, <>, <, <=, >, >=, STARTS WITH, ENDS WITH,
// CONTAINS, IN, and the postfix IS NULL / IS NOT NULL forms. openCypher
// allows chained comparisons (a < b < c); this builds them as the AND of
// adjacent pairs, (a < b) AND (b < c).
func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return Expr{}, err
	}
	var chainRight *Expr // right operand of the previous =, <>, <, <=, >, >=
	for {
		op, ok, err := p.tryComparisonOperator()
		if err != nil {
			return Expr{}, err
		}
		if !ok {
			break
		}
		if op == "IS NULL" || op == "IS NOT NULL" {
			left = Expr{Kind: ExprUnary, Unary: &UnaryExpr{Operator: op, Operand: left}}
			chainRight = nil
			continue
		}
		right, err := p.parseAdditive()
		if err != nil {
			return Expr{}, err
		}
		isCmp := op == "=" || op == "<>" || op == "<" || op == "<=" || op == ">" || op == ">="
		cmp := Expr{Kind: ExprBinary, Binary: &BinaryExpr{Left: left, Operator: op, Right: right}}
		if isCmp && chainRight != nil {
			cmp.Binary.Left = *chainRight
			cmp = Expr{Kind: ExprBinary, Binary: &BinaryExpr{Left: left, Operator: "AND", Right: cmp}}
		}
		left = cmp
		chainRight = nil
		if isCmp {
			chainRight = cloneExpr(right)
		}
	}
	return left, nil
}

func (p *Parser) tryComparisonOperator() (string, bool, error) {
	switch {
	case p.at(TokEquals):
		p.advance()
		return "=", true, nil
	case p.at(TokNotEquals):
		p.advance()
		return "<>", true, nil
	case p.at(TokLess):
		p.advance()
		return "<", true, nil
	case p.at(TokLessEquals):
		p.advance()
		return "<=", true, nil
	case p.at(TokGreater):
		p.advance()
		return ">", true, nil
	case p.at(TokGreaterEquals):
		p.advance()
		return ">=", true, nil
	case p.atKeyword("STARTS"):
		p.advance()
		if err := p.expectKeyword("WITH"); err != nil {
			return "", false, err
		}
		return "STARTS WITH", true, nil
	case p.atKeyword("ENDS"):
		p.advance()
		if err := p.expectKeyword("WITH"); err != nil {
			return "", false, err
		}
		return "ENDS WITH", true, nil
	case p.atKeyword("CONTAINS"):
		p.advance()
		return "CONTAINS", true, nil
	case p.atKeyword("IN"):
		p.advance()
		return "IN", true, nil
	case p.atKeyword("IS"):
		p.advance()
		if p.atKeyword("NOT") {
			p.advance()
			if err := p.expectKeyword("NULL"); err != nil {
				return "", false, err
			}
			return "IS NOT NULL", true, nil
		}
		if err := p.expectKeyword("NULL"); err != nil {
			return "", false, err
		}
		return "IS NULL", true, nil
	default:
		return "", false, nil
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return Expr{}, err
	}
	for p.at(TokPlus) || p.at(TokDash) {
		op := "+"
		if p.at(TokDash) {
			op = "-"
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return Expr{}, err
		}
		left = Expr{Kind: ExprBinary, Binary: &BinaryExpr{Left: left, Operator: op, Right: right}}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parsePower()
	if err != nil {
		return Expr{}, err
	}
	for p.at(TokStar) || p.at(TokSlash) || p.at(TokPercent) {
		var op string
		switch {
		case p.at(TokStar):
			op = "*"
		case p.at(TokSlash):
			op = "/"
		default:
			op = "%"
		}
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return Expr{}, err
		}
		left = Expr{Kind: ExprBinary, Binary: &BinaryExpr{Left: left, Operator: op, Right: right}}
	}
	return left, nil
}

// parsePower handles ^, right-associative.
func (p *Parser) parsePower() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return Expr{}, err
	}
	if p.at(TokCaret) {
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprBinary, Binary: &BinaryExpr{Left: left, Operator: "^", Right: right}}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.at(TokDash) {
		pos := p.cur().Pos
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprUnary, Pos: pos, Unary: &UnaryExpr{Operator: "-", Operand: operand}}, nil
	}
	if p.at(TokPlus) {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePostfix()
}

// parsePostfix handles property access, map/list indexing and slicing,
// and label-check predicates chained onto a primary expression.
func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return Expr{}, err
	}
	for {
		switch {
		case p.at(TokDot):
			p.advance()
			propTok, err := p.expect(TokIdent)
			if err != nil {
				return Expr{}, err
			}
			expr = Expr{Kind: ExprProperty, Property: &PropertyAccess{Base: cloneExpr(expr), Property: propTok.Text}}
		case p.at(TokColon):
			p.advance()
			var labels []string
			for {
				lbl, err := p.expect(TokIdent)
				if err != nil {
					return Expr{}, err
				}
				labels = append(labels, lbl.Text)
				if p.at(TokColon) {
					p.advance()
					continue
				}
				break
			}
			variable := ""
			if expr.Kind == ExprVariable {
				variable = expr.Variable
			}
			expr = Expr{Kind: ExprLabelCheck, LabelCheck: &LabelCheckExpr{Variable: variable, Labels: labels}}
		case p.at(TokLBracket):
			p.advance()
			if p.at(TokDotDot) {
				p.advance()
				if p.at(TokRBracket) {
					p.advance()
					expr = Expr{Kind: ExprSlice, Slice: &SliceAccess{Base: cloneExpr(expr)}}
					continue
				}
				to, err := p.parseExpr()
				if err != nil {
					return Expr{}, err
				}
				if _, err := p.expect(TokRBracket); err != nil {
					return Expr{}, err
				}
				expr = Expr{Kind: ExprSlice, Slice: &SliceAccess{Base: cloneExpr(expr), To: cloneExpr(to)}}
				continue
			}
			idx, err := p.parseExpr()
			if err != nil {
				return Expr{}, err
			}
			if p.at(TokDotDot) {
				p.advance()
				var to *Expr
				if !p.at(TokRBracket) {
					t, err := p.parseExpr()
					if err != nil {
						return Expr{}, err
					}
					to = cloneExpr(t)
				}
				if _, err := p.expect(TokRBracket); err != nil {
					return Expr{}, err
				}
				expr = Expr{Kind: ExprSlice, Slice: &SliceAccess{Base: cloneExpr(expr), From: cloneExpr(idx), To: to}}
				continue
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return Expr{}, err
			}
			expr = Expr{Kind: ExprIndex, Index: &IndexAccess{Base: cloneExpr(expr), Index: cloneExpr(idx)}}
		default:
			return expr, nil
		}
	}
}

func cloneExpr(e Expr) *Expr {
	cp := e
	return &cp
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch {
	case tok.Kind == TokInt:
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitInt, I: mustAtoi64(tok.Text)}}, nil
	case tok.Kind == TokFloat:
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitFloat, F: mustAtof(tok.Text)}}, nil
	case tok.Kind == TokString:
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitString, S: tok.Text}}, nil
	case tok.Kind == TokParam:
		p.advance()
		return Expr{Kind: ExprParameter, Parameter: tok.Text}, nil
	case tok.Kind == TokKeyword && tok.Text == "TRUE":
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitBool, B: true}}, nil
	case tok.Kind == TokKeyword && tok.Text == "FALSE":
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitBool, B: false}}, nil
	case tok.Kind == TokKeyword && tok.Text == "NULL":
		p.advance()
		return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LitNull}}, nil
	case tok.Kind == TokStar:
		p.advance()
		return Expr{Kind: ExprStar}, nil
	case tok.Kind == TokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return Expr{}, err
		}
		return inner, nil
	case tok.Kind == TokLBracket:
		return p.parseListLiteralOrComprehension()
	case tok.Kind == TokLBrace:
		props, err := p.parseMapLiteralBody()
		if err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprMap, Map: props}, nil
	case tok.Kind == TokKeyword && tok.Text == "CASE":
		return p.parseCase()
	case tok.Kind == TokKeyword && (tok.Text == "ALL" || tok.Text == "ANY" || tok.Text == "NONE" || tok.Text == "SINGLE"):
		return p.parseQuantifier()
	case tok.Kind == TokKeyword && (tok.Text == "COUNT" || tok.Text == "EXISTS") && p.peekKind(1) == TokLParen:
		fn, err := p.parseVariableOrFunctionCall()
		if err != nil {
			return Expr{}, err
		}
		fn.Function.Name = strings.ToLower(tok.Text)
		return fn, nil
	case tok.Kind == TokKeyword && tok.Text == "EXISTS":
		return p.parseExistsOrCountSubquery(SubqueryExists)
	case tok.Kind == TokKeyword && tok.Text == "COUNT" && p.peekKind(1) == TokLBrace:
		p.advance()
		return p.parseExistsOrCountSubqueryBody(SubqueryCount)
	case tok.Kind == TokIdent:
		return p.parseVariableOrFunctionCall()
	default:
		return Expr{}, p.errorf("unexpected token %q in expression", tok.Text)
	}
}

func (p *Parser) peekKind(ahead int) TokenKind {
	idx := p.pos + ahead
	if idx >= len(p.toks) {
		return TokEOF
	}
	return p.toks[idx].Kind
}

func (p *Parser) parseVariableOrFunctionCall() (Expr, error) {
	tok := p.advance()
	name := tok.Text
	for p.at(TokDot) && p.peekKind(1) == TokIdent && p.peekKind(2) == TokLParen {
		// qualified function name, e.g. apoc.create.node(...)
		p.advance()
		part := p.advance()
		name += "." + part.Text
	}
	if p.at(TokLParen) {
		p.advance()
		fc := &FunctionCall{Name: name}
		if p.atKeyword("DISTINCT") {
			p.advance()
			fc.Distinct = true
		}
		if !p.at(TokRParen) {
			for {
				if p.at(TokStar) {
					p.advance()
					fc.Arguments = append(fc.Arguments, Expr{Kind: ExprStar})
				} else {
					arg, err := p.parseExpr()
					if err != nil {
						return Expr{}, err
					}
					fc.Arguments = append(fc.Arguments, arg)
				}
				if p.at(TokComma) {
					p.advance()
					continue
				}
				break
			}
		}
		if _, err := p.expect(TokRParen); err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprFunction, Function: fc}, nil
	}
	return Expr{Kind: ExprVariable, Variable: name}, nil
}

// parseListLiteralOrComprehension disambiguates [1,2,3] from
// [x IN list WHERE cond | projection] by looking for IN after the
// opening identifier.
func (p *Parser) parseListLiteralOrComprehension() (Expr, error) {
	p.advance() // consume '['
	if p.at(TokRBracket) {
		p.advance()
		return Expr{Kind: ExprList}, nil
	}
	if p.at(TokIdent) && p.peekKind(1) == TokKeyword && p.toks[p.pos+1].Text == "IN" {
		variable := p.advance().Text
		p.advance() // IN
		listExpr, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		lc := &ListComprehension{Variable: variable, List: listExpr}
		if p.atKeyword("WHERE") {
			p.advance()
			cond, err := p.parseExpr()
			if err != nil {
				return Expr{}, err
			}
			lc.Where = cloneExpr(cond)
		}
		if p.at(TokPipe) {
			p.advance()
			proj, err := p.parseExpr()
			if err != nil {
				return Expr{}, err
			}
			lc.Projection = cloneExpr(proj)
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return Expr{}, err
		}
		return Expr{Kind: ExprListComprehension, Comprehension: lc}, nil
	}

	var items []Expr
	for {
		item, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		items = append(items, item)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBracket); err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprList, List: items}, nil
}

func (p *Parser) parseCase() (Expr, error) {
	p.advance() // CASE
	ce := &CaseExpr{}
	if !p.atKeyword("WHEN") {
		input, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		ce.Input = cloneExpr(input)
	}
	for p.atKeyword("WHEN") {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		if err := p.expectKeyword("THEN"); err != nil {
			return Expr{}, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		ce.Whens = append(ce.Whens, CaseWhen{Condition: cond, Result: result})
	}
	if p.atKeyword("ELSE") {
		p.advance()
		def, err := p.parseExpr()
		if err != nil {
			return Expr{}, err
		}
		ce.Default = cloneExpr(def)
	}
	if err := p.expectKeyword("END"); err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprCase, Case: ce}, nil
}

func (p *Parser) parseQuantifier() (Expr, error) {
	var kind QuantifierKind
	switch p.advance().Text {
	case "ALL":
		kind = QuantAll
	case "ANY":
		kind = QuantAny
	case "NONE":
		kind = QuantNone
	case "SINGLE":
		kind = QuantSingle
	}
	if _, err := p.expect(TokLParen); err != nil {
		return Expr{}, err
	}
	varTok, err := p.expect(TokIdent)
	if err != nil {
		return Expr{}, err
	}
	if err := p.expectKeyword("IN"); err != nil {
		return Expr{}, err
	}
	listExpr, err := p.parseExpr()
	if err != nil {
		return Expr{}, err
	}
	if err := p.expectKeyword("WHERE"); err != nil {
		return Expr{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return Expr{}, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprQuantifier, Quantifier: &QuantifierExpr{
		Kind: kind, Variable: varTok.Text, List: listExpr, Where: cond,
	}}, nil
}

func (p *Parser) parseExistsOrCountSubquery(kind SubqueryKind) (Expr, error) {
	p.advance() // EXISTS
	return p.parseExistsOrCountSubqueryBody(kind)
}

func (p *Parser) parseExistsOrCountSubqueryBody(kind SubqueryKind) (Expr, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return Expr{}, err
	}
	q := &Query{}
	for !p.at(TokRBrace) {
		c, err := p.parseClause()
		if err != nil {
			return Expr{}, err
		}
		q.Clauses = append(q.Clauses, c)
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return Expr{}, err
	}
	return Expr{Kind: ExprSubquery, Subquery: &SubqueryExpr{Kind: kind, Query: q}}, nil
}

// mustAtoi64/mustAtof assume the lexer already validated the literal
// text, so a parse error here would mean a lexer bug rather than bad
// input.
func mustAtoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func mustAtof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
