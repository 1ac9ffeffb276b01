package cypher

import (
	"fmt"
	"strconv"
)

// Parser turns a token stream into a Statement. One Parser handles one
// query; construct a fresh one per Parse call.
type Parser struct {
	toks []Token
	pos  int
}

// Parse lexes and parses a full Cypher statement, including UNION
// combinations of multiple query branches.
func Parse(src string) (*Statement, error) {
	lx := NewLexer(src)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if !p.at(TokEOF) {
		return nil, p.errorf("unexpected trailing input")
	}
	return stmt, nil
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) at(k TokenKind) bool { return p.cur().Kind == k }

func (p *Parser) atKeyword(kw string) bool {
	return p.cur().Kind == TokKeyword && p.cur().Text == kw
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k TokenKind) (Token, error) {
	if !p.at(k) {
		return Token{}, p.errorf("expected token kind %d, got %q", k, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return p.errorf("expected keyword %s, got %q", kw, p.cur().Text)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("cypher: %s (at position %d)", msg, p.cur().Pos)
}

func (p *Parser) parseStatement() (*Statement, error) {
	stmt := &Statement{}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	stmt.Branches = append(stmt.Branches, *q)

	for p.atKeyword("UNION") {
		p.advance()
		all := false
		if p.atKeyword("ALL") {
			p.advance()
			all = true
		}
		next, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, *next)
		stmt.UnionAll = append(stmt.UnionAll, all)
	}
	return stmt, nil
}

func (p *Parser) parseQuery() (*Query, error) {
	q := &Query{}
	for {
		if p.at(TokEOF) || p.atKeyword("UNION") {
			break
		}
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	return q, nil
}

func (p *Parser) parseClause() (Clause, error) {
	switch {
	case p.atKeyword("OPTIONAL"):
		p.advance()
		if err := p.expectKeyword("MATCH"); err != nil {
			return nil, err
		}
		return p.parseMatchBody(true)
	case p.atKeyword("MATCH"):
		p.advance()
		return p.parseMatchBody(false)
	case p.atKeyword("CREATE"):
		p.advance()
		patterns, err := p.parsePatternList()
		if err != nil {
			return nil, err
		}
		return &CreateClause{Patterns: patterns}, nil
	case p.atKeyword("MERGE"):
		p.advance()
		return p.parseMerge()
	case p.atKeyword("SET"):
		p.advance()
		items, err := p.parseSetItems()
		if err != nil {
			return nil, err
		}
		return &SetClause{Items: items}, nil
	case p.atKeyword("REMOVE"):
		p.advance()
		return p.parseRemove()
	case p.atKeyword("DETACH"):
		p.advance()
		if err := p.expectKeyword("DELETE"); err != nil {
			return nil, err
		}
		vars, err := p.parseVarList()
		if err != nil {
			return nil, err
		}
		return &DeleteClause{Variables: vars, Detach: true}, nil
	case p.atKeyword("DELETE"):
		p.advance()
		vars, err := p.parseVarList()
		if err != nil {
			return nil, err
		}
		return &DeleteClause{Variables: vars}, nil
	case p.atKeyword("WITH"):
		p.advance()
		return p.parseWith()
	case p.atKeyword("RETURN"):
		p.advance()
		return p.parseReturn()
	case p.atKeyword("UNWIND"):
		p.advance()
		return p.parseUnwind()
	case p.atKeyword("CALL"):
		p.advance()
		return p.parseCall()
	case p.atKeyword("FOREACH"):
		p.advance()
		return p.parseForeach()
	default:
		return nil, p.errorf("unexpected token %q, expected a clause keyword", p.cur().Text)
	}
}

func (p *Parser) parseMatchBody(optional bool) (Clause, error) {
	patterns, err := p.parsePatternList()
	if err != nil {
		return nil, err
	}
	mc := &MatchClause{Patterns: patterns, Optional: optional}
	if p.atKeyword("WHERE") {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		mc.Where = &expr
	}
	return mc, nil
}

func (p *Parser) parseMerge() (Clause, error) {
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	mc := &MergeClause{Pattern: pattern}
	for p.atKeyword("ON") {
		p.advance()
		switch {
		case p.atKeyword("CREATE"):
			p.advance()
			if err := p.expectKeyword("SET"); err != nil {
				return nil, err
			}
			items, err := p.parseSetItems()
			if err != nil {
				return nil, err
			}
			mc.OnCreate = append(mc.OnCreate, items...)
		case p.atKeyword("MATCH"):
			p.advance()
			if err := p.expectKeyword("SET"); err != nil {
				return nil, err
			}
			items, err := p.parseSetItems()
			if err != nil {
				return nil, err
			}
			mc.OnMatch = append(mc.OnMatch, items...)
		default:
			return nil, p.errorf("expected CREATE or MATCH after ON")
		}
	}
	return mc, nil
}

func (p *Parser) parseSetItems() ([]SetItem, error) {
	var items []SetItem
	for {
		item, err := p.parseSetItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

func (p *Parser) parseSetItem() (SetItem, error) {
	varTok, err := p.expect(TokIdent)
	if err != nil {
		return SetItem{}, err
	}
	variable := varTok.Text

	if p.at(TokColon) {
		// n:Label:Label2  (label addition)
		var labels []string
		for p.at(TokColon) {
			p.advance()
			lbl, err := p.expect(TokIdent)
			if err != nil {
				return SetItem{}, err
			}
			labels = append(labels, lbl.Text)
		}
		return SetItem{Kind: SetLabels, Variable: variable, Labels: labels}, nil
	}

	if p.at(TokDot) {
		p.advance()
		prop, err := p.expect(TokIdent)
		if err != nil {
			return SetItem{}, err
		}
		if _, err := p.expect(TokEquals); err != nil {
			return SetItem{}, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return SetItem{}, err
		}
		return SetItem{Kind: SetProperty, Variable: variable, Property: prop.Text, Value: val}, nil
	}

	if p.at(TokPlusEquals) {
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return SetItem{}, err
		}
		return SetItem{Kind: SetMerge, Variable: variable, Value: val}, nil
	}

	if _, err := p.expect(TokEquals); err != nil {
		return SetItem{}, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return SetItem{}, err
	}
	return SetItem{Kind: SetReplace, Variable: variable, Value: val}, nil
}

func (p *Parser) parseRemove() (Clause, error) {
	var items []RemoveItem
	for {
		varTok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		item := RemoveItem{Variable: varTok.Text}
		if p.at(TokColon) {
			for p.at(TokColon) {
				p.advance()
				lbl, err := p.expect(TokIdent)
				if err != nil {
					return nil, err
				}
				item.Labels = append(item.Labels, lbl.Text)
			}
		} else if p.at(TokDot) {
			p.advance()
			prop, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			item.Property = prop.Text
		}
		items = append(items, item)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	return &RemoveClause{Items: items}, nil
}

func (p *Parser) parseVarList() ([]string, error) {
	var vars []string
	for {
		tok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		vars = append(vars, tok.Text)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	return vars, nil
}

func (p *Parser) parseProjectItems() ([]ProjectItem, bool, error) {
	distinct := false
	if p.atKeyword("DISTINCT") {
		p.advance()
		distinct = true
	}
	var items []ProjectItem
	for {
		if p.at(TokStar) {
			p.advance()
			items = append(items, ProjectItem{Expression: Expr{Kind: ExprStar}})
		} else {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, false, err
			}
			alias := ""
			if p.atKeyword("AS") {
				p.advance()
				tok, err := p.expect(TokIdent)
				if err != nil {
					return nil, false, err
				}
				alias = tok.Text
			}
			items = append(items, ProjectItem{Expression: expr, Alias: alias})
		}
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	return items, distinct, nil
}

func (p *Parser) parseOrderSkipLimit() ([]OrderItem, *Expr, *Expr, error) {
	var order []OrderItem
	if p.atKeyword("ORDER") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, nil, nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, nil, nil, err
			}
			desc := false
			if p.atKeyword("DESC") {
				p.advance()
				desc = true
			} else if p.atKeyword("ASC") {
				p.advance()
			}
			order = append(order, OrderItem{Expression: expr, Descending: desc})
			if p.at(TokComma) {
				p.advance()
				continue
			}
			break
		}
	}
	var skip, limit *Expr
	if p.atKeyword("SKIP") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, nil, nil, err
		}
		skip = &e
	}
	if p.atKeyword("LIMIT") {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, nil, nil, err
		}
		limit = &e
	}
	return order, skip, limit, nil
}

func (p *Parser) parseReturn() (Clause, error) {
	items, distinct, err := p.parseProjectItems()
	if err != nil {
		return nil, err
	}
	order, skip, limit, err := p.parseOrderSkipLimit()
	if err != nil {
		return nil, err
	}
	return &ReturnClause{Items: items, Distinct: distinct, OrderBy: order, Skip: skip, Limit: limit}, nil
}

func (p *Parser) parseWith() (Clause, error) {
	items, distinct, err := p.parseProjectItems()
	if err != nil {
		return nil, err
	}
	order, skip, limit, err := p.parseOrderSkipLimit()
	if err != nil {
		return nil, err
	}
	wc := &WithClause{Items: items, Distinct: distinct, OrderBy: order, Skip: skip, Limit: limit}
	if p.atKeyword("WHERE") {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		wc.Where = &expr
	}
	return wc, nil
}

func (p *Parser) parseUnwind() (Clause, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	tok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	return &UnwindClause{Expression: expr, Variable: tok.Text}, nil
}

func (p *Parser) parseCall() (Clause, error) {
	if p.at(TokLBrace) {
		return p.parseCallSubquery()
	}
	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	name := nameTok.Text
	for p.at(TokDot) {
		p.advance()
		part, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		name += "." + part.Text
	}
	cc := &CallClause{Procedure: name}
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	if !p.at(TokRParen) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			cc.Arguments = append(cc.Arguments, arg)
			if p.at(TokComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	if p.atKeyword("YIELD") {
		p.advance()
		vars, err := p.parseVarList()
		if err != nil {
			return nil, err
		}
		cc.Yield = vars
	}
	return cc, nil
}

// parseCallSubquery parses the CALL { <query> } form: a nested, brace-
// delimited clause sequence rather than a procedure invocation. Mirrors
// parseExistsOrCountSubqueryBody's brace-delimited clause loop.
func (p *Parser) parseCallSubquery() (Clause, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	q := &Query{}
	for !p.at(TokRBrace) {
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, c)
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return &CallClause{Subquery: q}, nil
}

func (p *Parser) parseForeach() (Clause, error) {
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	varTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("IN"); err != nil {
		return nil, err
	}
	listExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPipe); err != nil {
		return nil, err
	}
	var body []Clause
	for !p.at(TokRParen) {
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		switch c.(type) {
		case *CreateClause, *MergeClause, *SetClause, *RemoveClause, *DeleteClause:
		default:
			return nil, p.errorf("FOREACH body may only contain CREATE, MERGE, SET, REMOVE or DELETE")
		}
		body = append(body, c)
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return &ForeachClause{Variable: varTok.Text, List: listExpr, Body: body}, nil
}

// parsePatternList parses one or more comma-separated patterns, as used
// by MATCH and CREATE.
func (p *Parser) parsePatternList() ([]Pattern, error) {
	var patterns []Pattern
	for {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pat)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	return patterns, nil
}

// parsePattern parses one path pattern: optionally `var =` then
// (node)-[rel]->(node)-[rel]->(node)...
func (p *Parser) parsePattern() (Pattern, error) {
	var pat Pattern
	if p.at(TokIdent) && p.peekIsEquals() {
		pat.Variable = p.advance().Text
		p.advance() // consume '='
	}

	node, err := p.parseNodePattern()
	if err != nil {
		return pat, err
	}
	pat.Nodes = append(pat.Nodes, node)

	for p.at(TokDash) || p.at(TokArrowLeft) {
		rel, err := p.parseRelPattern()
		if err != nil {
			return pat, err
		}
		pat.Edges = append(pat.Edges, rel)

		next, err := p.parseNodePattern()
		if err != nil {
			return pat, err
		}
		pat.Nodes = append(pat.Nodes, next)
	}
	return pat, nil
}

func (p *Parser) peekIsEquals() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Kind == TokEquals
}

func (p *Parser) parseNodePattern() (NodePattern, error) {
	if _, err := p.expect(TokLParen); err != nil {
		return NodePattern{}, err
	}
	var np NodePattern
	if p.at(TokIdent) {
		np.Variable = p.advance().Text
	}
	for p.at(TokColon) {
		p.advance()
		lbl, err := p.expect(TokIdent)
		if err != nil {
			return np, err
		}
		np.Labels = append(np.Labels, lbl.Text)
	}
	if p.at(TokLBrace) {
		props, err := p.parseMapLiteralBody()
		if err != nil {
			return np, err
		}
		np.Properties = props
	}
	if _, err := p.expect(TokRParen); err != nil {
		return np, err
	}
	return np, nil
}

// parseRelPattern parses a relationship including its surrounding arrows:
// -[r:TYPE*1..3 {p: v}]-> or <-[r]- or -[r]-.
func (p *Parser) parseRelPattern() (RelPattern, error) {
	var rel RelPattern
	leftArrow := false
	if p.at(TokArrowLeft) {
		leftArrow = true
		p.advance()
	} else {
		if _, err := p.expect(TokDash); err != nil {
			return rel, err
		}
	}

	if p.at(TokLBracket) {
		p.advance()
		if p.at(TokIdent) {
			rel.Variable = p.advance().Text
		}
		if p.at(TokColon) {
			for {
				p.advance()
				tTok, err := p.expect(TokIdent)
				if err != nil {
					return rel, err
				}
				rel.Types = append(rel.Types, tTok.Text)
				if p.at(TokPipe) {
					continue
				}
				break
			}
		}
		if p.at(TokStar) {
			p.advance()
			rel.VarLength = true
			min, max, err := p.parseHopRange()
			if err != nil {
				return rel, err
			}
			rel.MinHops, rel.MaxHops = min, max
		}
		if p.at(TokLBrace) {
			props, err := p.parseMapLiteralBody()
			if err != nil {
				return rel, err
			}
			rel.Properties = props
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return rel, err
		}
	}

	rightArrow := false
	if p.at(TokArrowRight) {
		rightArrow = true
		p.advance()
	} else {
		if _, err := p.expect(TokDash); err != nil {
			return rel, err
		}
	}

	switch {
	case leftArrow && !rightArrow:
		rel.Direction = EdgeIncoming
	case rightArrow && !leftArrow:
		rel.Direction = EdgeOutgoing
	default:
		rel.Direction = EdgeBoth
	}
	return rel, nil
}

// parseHopRange parses the portion after `*` in a variable-length
// relationship: nothing (unbounded), `n`, `n..m`, `n..`, `..m`, or `..`.
func (p *Parser) parseHopRange() (*int, *int, error) {
	if !p.at(TokInt) && !p.at(TokDotDot) {
		return nil, nil, nil
	}
	var min, max *int
	if p.at(TokInt) {
		n := mustAtoi(p.advance().Text)
		min = &n
	}
	if p.at(TokDotDot) {
		p.advance()
		if p.at(TokInt) {
			n := mustAtoi(p.advance().Text)
			max = &n
		}
	} else if min != nil {
		max = min
	}
	return min, max, nil
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// parseMapLiteralBody parses {k: expr, k2: expr2} into a map[string]Expr,
// assuming the opening '{' has not yet been consumed.
func (p *Parser) parseMapLiteralBody() (map[string]Expr, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	m := make(map[string]Expr)
	if p.at(TokRBrace) {
		p.advance()
		return m, nil
	}
	for {
		key, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m[key.Text] = val
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return m, nil
}
