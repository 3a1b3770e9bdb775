package parser

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/token"
)

// parseVirtualResource handles the '@'/'@@' prefix on a resource
// declaration: `@file { ... }` (virtual) / `@@file { ... }` (exported).
func (p *Parser) parseVirtualResource() (ast.Expression, error) {
	start := p.curToken.Range.Start
	exported := p.curTokenIs(token.ATAT)
	if !p.expectPeek(token.IDENT) && !p.curTokenIs(token.CLASSREF) {
		return nil, fmt.Errorf("expected resource type name after %s", p.curToken.Literal)
	}
	typeName := p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { after resource type %s", typeName)
	}
	return p.finishResourceExpr(typeName, true, exported, start)
}

// resourceHeadToken reports whether curToken can start a bareword/type
// resource head (`file { ... }`, `File { ... }`, `File <| ... |>`).
func (p *Parser) resourceHeadToken() bool {
	return p.curTokenIs(token.IDENT) || p.curTokenIs(token.CLASSREF) || p.curTokenIs(token.CLASS)
}

// tryParseResourceHead recognizes, at statement level, the three
// head-triggered forms that are not ordinary expressions: a resource
// declaration/defaults block (`Type { ... }`) and a collector
// (`Type <| query |>` / `Type <<| query |>>`). It reports ok=false
// (without consuming anything but the head token it already peeked at)
// when the next token doesn't confirm one of these shapes.
func (p *Parser) tryParseResourceHead() (ast.Expression, bool, error) {
	if !p.resourceHeadToken() {
		return nil, false, nil
	}
	typeName := p.curToken.Literal
	start := p.curToken.Range.Start
	switch p.peekToken.Type {
	case token.LBRACE:
		p.nextToken() // consume to '{'
		expr, err := p.finishResourceExpr(typeName, false, false, start)
		return expr, true, err
	case token.LCOLLECT, token.LLCOLLECT:
		exported := p.peekTokenIs(token.LLCOLLECT)
		p.nextToken() // consume to collect delimiter
		expr, err := p.finishCollector(typeName, exported, start)
		return expr, true, err
	default:
		return nil, false, nil
	}
}

// finishResourceExpr decides, from the shape of the first body, between
// a resource-defaults block (`Type { attr => val }`, no title) and an
// ordinary resource declaration (`Type { 'title': attr => val }`, one or
// more titled bodies, any of which may use `default:` to set per-call
// defaults shared across the other titles).
func (p *Parser) finishResourceExpr(typeName string, virtual, exported bool, start token.Position) (ast.Expression, error) {
	p.nextToken() // consume '{'
	if p.isAttributeStart() {
		attrs, err := p.parseAttributeList()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(token.RBRACE) {
			p.errorf(p.curToken.Range, "expected } to close resource defaults, got %s", p.curToken.Type)
			return nil, fmt.Errorf("expected }")
		}
		n := &ast.ResourceDefaultsExpr{TypeName: typeName, Attributes: attrs}
		n.Base = p.spanFrom(start)
		return n, nil
	}

	var bodies []ast.ResourceBody
	for !p.curTokenIs(token.RBRACE) {
		body, err := p.parseResourceBody()
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
		if p.curTokenIs(token.SEMI) {
			p.nextToken()
		}
	}
	n := &ast.ResourceExpr{TypeName: typeName, Virtual: virtual, Exported: exported, Bodies: bodies}
	n.Base = p.spanFrom(start)
	return n, nil
}

// isAttributeStart reports whether curToken begins `name => value` (or
// `name +> value`) rather than a title expression.
func (p *Parser) isAttributeStart() bool {
	if p.curTokenIs(token.STAR) && (p.peekTokenIs(token.FARROW) || p.peekTokenIs(token.PARROW)) {
		return true
	}
	if p.curTokenIs(token.IDENT) && (p.peekTokenIs(token.FARROW) || p.peekTokenIs(token.PARROW)) {
		return true
	}
	return false
}

func (p *Parser) parseResourceBody() (ast.ResourceBody, error) {
	if p.curTokenIs(token.DEFAULT) && p.peekTokenIs(token.COLON) {
		d := &ast.DefaultLiteral{}
		d.Base = p.spanFrom(p.curToken.Range.Start)
		p.nextToken() // consume 'default'
		p.nextToken() // consume ':'
		attrs, err := p.parseAttributeList()
		return ast.ResourceBody{Titles: []ast.Expression{d}, Attributes: attrs}, err
	}

	var titles []ast.Expression
	for {
		t, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ResourceBody{}, err
		}
		titles = append(titles, t)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.COLON) {
		return ast.ResourceBody{}, fmt.Errorf("expected : after resource title")
	}
	p.nextToken()
	attrs, err := p.parseAttributeList()
	return ast.ResourceBody{Titles: titles, Attributes: attrs}, err
}

// parseAttributeList parses a comma/semicolon-separated attribute list up
// to (but not consuming) the closing '}'; curToken starts on the first
// attribute name or already on '}' for an empty body.
func (p *Parser) parseAttributeList() ([]ast.Attribute, error) {
	var attrs []ast.Attribute
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.SEMI) {
			p.nextToken()
			continue
		}
		nameRange := p.curToken.Range
		name := p.curToken.Literal
		if !p.peekTokenIs(token.FARROW) && !p.peekTokenIs(token.PARROW) {
			p.errorf(p.peekToken.Range, "expected => or +> after attribute name %q", name)
			return nil, fmt.Errorf("expected attribute arrow")
		}
		add := p.peekTokenIs(token.PARROW)
		p.nextToken() // consume to arrow
		p.nextToken() // consume arrow
		val, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, ast.Attribute{Name: name, NameRange: nameRange, Value: val, AddAttribute: add})
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	return attrs, nil
}

// tryParseOverride folds a trailing `{ attrs }` onto an already-parsed
// reference-shaped expression (a resource reference or an array of
// them) into a ResourceOverrideExpr, the way `File['x'] { mode => ... }`
// modifies a previously declared resource.
func (p *Parser) tryParseOverride(ref ast.Expression) (ast.Expression, bool, error) {
	if !isReferenceShaped(ref) || !p.peekTokenIs(token.LBRACE) {
		return ref, false, nil
	}
	start := ref.Range().Start
	p.nextToken() // consume to '{'
	p.nextToken() // consume '{'
	attrs, err := p.parseAttributeList()
	if err != nil {
		return nil, true, err
	}
	n := &ast.ResourceOverrideExpr{Reference: ref, Attributes: attrs}
	n.Base = p.spanFrom(start)
	return n, true, nil
}

func isReferenceShaped(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.AccessExpr:
		return true
	case *ast.TypeReferenceExpr:
		return len(v.Parameters) > 0
	case *ast.ArrayExpr:
		for _, el := range v.Elements {
			if !isReferenceShaped(el) {
				return false
			}
		}
		return len(v.Elements) > 0
	default:
		return false
	}
}

func (p *Parser) finishCollector(typeName string, exported bool, start token.Position) (ast.Expression, error) {
	p.nextToken() // consume collect delimiter
	var query *ast.QueryExpr
	closing := token.RCOLLECT
	if exported {
		closing = token.RRCOLLECT
	}
	if !p.curTokenIs(closing) {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		query = q
	}
	if !p.curTokenIs(closing) {
		p.errorf(p.curToken.Range, "expected %s to close collector, got %s", closing, p.curToken.Type)
		return nil, fmt.Errorf("expected collector close")
	}
	n := &ast.CollectorExpr{TypeName: typeName, Exported: exported, Query: query}
	n.Base = p.spanFrom(start)
	return n, nil
}

// parseQuery parses a collector query: `attr == val`, optionally chained
// with `and`/`or`, leaving curToken on the closing delimiter.
func (p *Parser) parseQuery() (*ast.QueryExpr, error) {
	leaf, err := p.parseQueryLeaf()
	if err != nil {
		return nil, err
	}
	p.nextToken()
	switch p.curToken.Type {
	case token.AND:
		p.nextToken()
		rest, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		leaf.And = rest
	case token.OR:
		p.nextToken()
		rest, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		leaf.Or = rest
	}
	return leaf, nil
}

func (p *Parser) parseQueryLeaf() (*ast.QueryExpr, error) {
	if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.VARIABLE) {
		p.errorf(p.curToken.Range, "expected attribute name in collector query, got %s", p.curToken.Type)
		return nil, fmt.Errorf("expected query attribute")
	}
	attr := p.curToken.Literal
	negate := false
	switch p.peekToken.Type {
	case token.EQ:
		p.nextToken()
	case token.NEQ:
		negate = true
		p.nextToken()
	default:
		p.errorf(p.peekToken.Range, "expected == or != in collector query, got %s", p.peekToken.Type)
		return nil, fmt.Errorf("expected comparison operator")
	}
	p.nextToken()
	val, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.QueryExpr{Attribute: attr, Negate: negate, Value: val}, nil
}
