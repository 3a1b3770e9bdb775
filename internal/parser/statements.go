package parser

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/token"
)

// parseStatementsUntil parses statements until curToken is end or EOF,
// recovering from a syntax error by skipping to the next plausible
// statement boundary so one bad statement doesn't abort the whole file.
func (p *Parser) parseStatementsUntil(end token.Type) []ast.Statement {
	var stmts []ast.Statement
	for !p.curTokenIs(end) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMI) {
			p.nextToken()
			continue
		}
		before := p.curToken
		more, err := p.parseStatement()
		if err != nil {
			p.synchronize()
			if p.curToken == before {
				p.nextToken() // guarantee forward progress
			}
			continue
		}
		stmts = append(stmts, more...)
		p.nextToken()
	}
	return stmts
}

// parseStatement parses one source statement, returning one or more
// ast.Statement (a relationship chain `a -> b -> c` expands to multiple
// RelationshipStatements sharing one parse).
func (p *Parser) parseStatement() ([]ast.Statement, error) {
	switch p.curToken.Type {
	case token.CLASS:
		if p.peekTokenIs(token.IDENT) || p.peekTokenIs(token.CLASSREF) {
			s, err := p.parseClassStatement()
			return wrap(s, err)
		}
	case token.DEFINE:
		s, err := p.parseDefinedTypeStatement()
		return wrap(s, err)
	case token.NODE:
		s, err := p.parseNodeStatement()
		return wrap(s, err)
	case token.FUNCTION:
		s, err := p.parseFunctionStatement()
		return wrap(s, err)
	case token.TYPE:
		s, err := p.parseTypeAliasStatement()
		return wrap(s, err)
	case token.BREAK:
		start := p.curToken.Range.Start
		p.skipOptionalEmptyCall()
		n := &ast.BreakStatement{}
		n.Base = p.spanFrom(start)
		return wrap(n, nil)
	case token.NEXT:
		return p.parseNextOrReturn(true)
	case token.RETURN:
		return p.parseNextOrReturn(false)
	case token.IDENT:
		switch p.curToken.Literal {
		case "produces":
			if p.peekTokenIs(token.CLASSREF) {
				s, err := p.parseProducesStatement()
				return wrap(s, err)
			}
		case "consumes":
			if p.peekTokenIs(token.CLASSREF) {
				s, err := p.parseConsumesStatement()
				return wrap(s, err)
			}
		case "application":
			if p.peekTokenIs(token.IDENT) {
				s, err := p.parseApplicationStatement()
				return wrap(s, err)
			}
		case "site":
			if p.peekTokenIs(token.LBRACE) {
				s, err := p.parseSiteStatement()
				return wrap(s, err)
			}
		}
	}
	return p.parseExpressionOrRelationshipStatement()
}

func wrap(s ast.Statement, err error) ([]ast.Statement, error) {
	if err != nil {
		return nil, err
	}
	return []ast.Statement{s}, nil
}

// skipOptionalEmptyCall consumes an optional `()` after a bare
// break keyword, leaving curToken on its closing ')' (or on the break
// keyword when there is no `()`).
func (p *Parser) skipOptionalEmptyCall() {
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		p.nextToken()
	}
}

func (p *Parser) parseNextOrReturn(isNext bool) ([]ast.Statement, error) {
	start := p.curToken.Range.Start
	var value ast.Expression
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken() // consume to '('
		p.nextToken() // consume '('
		if !p.curTokenIs(token.RPAREN) {
			v, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			value = v
			if !p.expectPeek(token.RPAREN) {
				return nil, fmt.Errorf("expected )")
			}
		}
	}
	if isNext {
		n := &ast.NextStatement{Value: value}
		n.Base = p.spanFrom(start)
		return wrap(n, nil)
	}
	n := &ast.ReturnStatement{Value: value}
	n.Base = p.spanFrom(start)
	return wrap(n, nil)
}

// parseExpressionOrRelationshipStatement handles everything not covered
// by a keyword-led statement form: resource declarations/collectors
// (sniffed from a bareword/type head), plain expressions, overrides
// folded onto a reference expression, and `->`/`~>`/`<-`/`<~` chains.
func (p *Parser) parseExpressionOrRelationshipStatement() ([]ast.Statement, error) {
	expr, err := p.parseStatementExpression()
	if err != nil {
		return nil, err
	}
	if !isRelationshipToken(p.peekToken.Type) {
		n := &ast.ExpressionStatement{Expr: expr}
		n.Base = ast.Base{Rng: expr.Range(), Tree: p.tree}
		return wrap(n, nil)
	}

	var stmts []ast.Statement
	left := expr
	for isRelationshipToken(p.peekToken.Type) {
		kind := relationshipKind(p.peekToken.Type)
		p.nextToken() // consume to operator
		p.nextToken() // consume operator
		right, err := p.parseStatementExpression()
		if err != nil {
			return nil, err
		}
		n := &ast.RelationshipStatement{Left: left, Kind: kind, Right: right}
		n.Base = ast.Base{Rng: token.Range{Start: left.Range().Start, End: right.Range().End}, Tree: p.tree}
		stmts = append(stmts, n)
		left = right
	}
	return stmts, nil
}

// parseStatementExpression parses one operand of a statement: a resource
// head form if the tokens match one, else a generic expression with a
// trailing `{ attrs }` folded into a ResourceOverrideExpr when shaped
// like a resource reference.
func (p *Parser) parseStatementExpression() (ast.Expression, error) {
	if head, ok, err := p.tryParseResourceHead(); ok {
		return head, err
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if override, ok, err := p.tryParseOverride(expr); ok {
		return override, err
	}
	return expr, nil
}

func isRelationshipToken(t token.Type) bool {
	switch t {
	case token.ARROW, token.TILDE, token.LARROW, token.LTILDE:
		return true
	default:
		return false
	}
}

func relationshipKind(t token.Type) ast.RelationshipKind {
	switch t {
	case token.ARROW:
		return ast.RelBefore
	case token.TILDE:
		return ast.RelNotify
	case token.LARROW:
		return ast.RelRequire
	case token.LTILDE:
		return ast.RelSubscribe
	default:
		return ast.RelBefore
	}
}

func (p *Parser) parseClassStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'class'
	name := p.curToken.Literal
	n := &ast.ClassStatement{Name: name}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, err := p.parseParameterList(token.LPAREN, token.RPAREN)
		if err != nil {
			return nil, err
		}
		n.Parameters = params
	}
	if p.peekTokenIs(token.INHERITS) {
		p.nextToken()
		if !p.peekTokenIs(token.CLASSREF) && !p.peekTokenIs(token.IDENT) {
			p.errorf(p.peekToken.Range, "expected parent class name after inherits, got %s", p.peekToken.Type)
			return nil, fmt.Errorf("expected parent class name after inherits")
		}
		p.nextToken()
		n.Parent = p.curToken.Literal
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { to start class %s body", name)
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n.Body = body
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseDefinedTypeStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'define'
	name := p.curToken.Literal
	n := &ast.DefinedTypeStatement{Name: name}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, err := p.parseParameterList(token.LPAREN, token.RPAREN)
		if err != nil {
			return nil, err
		}
		n.Parameters = params
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { to start define %s body", name)
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n.Body = body
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseNodeStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	n := &ast.NodeStatement{}
	for {
		p.nextToken()
		var name ast.NodeName
		switch p.curToken.Type {
		case token.DEFAULT:
			name.IsDefault = true
		case token.REGEX:
			name.IsRegex = true
			name.Literal = p.curToken.Literal
		case token.STRING, token.DQSTRING:
			name.Literal = p.curToken.Literal
		default:
			name.Literal = p.curToken.Literal
		}
		n.Names = append(n.Names, name)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { to start node body")
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n.Body = body
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseFunctionStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'function'
	name := p.curToken.Literal
	n := &ast.FunctionStatement{Name: name}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, err := p.parseParameterList(token.LPAREN, token.RPAREN)
		if err != nil {
			return nil, err
		}
		n.Parameters = params
	}
	if p.peekTokenIs(token.CLASSREF) {
		p.nextToken()
		rt, err := p.parseTypeReferenceOrClassref()
		if err != nil {
			return nil, err
		}
		n.ReturnType = rt
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { to start function %s body", name)
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n.Body = body
	n.Base = p.spanFrom(start)
	return n, nil
}

// parseProducesStatement and parseConsumesStatement handle the
// application-orchestration capability declarations; the evaluator does
// not execute orchestration, so their bodies are kept only for grammar
// completeness and a faithful re-print of the source.
func (p *Parser) parseProducesStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'produces'
	capType := p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { after produces %s", capType)
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.ProducesStatement{CapabilityType: capType, Body: body}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseConsumesStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'consumes'
	capType := p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { after consumes %s", capType)
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.ConsumesStatement{CapabilityType: capType, Body: body}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseApplicationStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'application'
	name := p.curToken.Literal
	n := &ast.ApplicationStatement{Name: name}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, err := p.parseParameterList(token.LPAREN, token.RPAREN)
		if err != nil {
			return nil, err
		}
		n.Parameters = params
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { to start application %s body", name)
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n.Body = body
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseSiteStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'site'
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.SiteStatement{Body: body}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseTypeAliasStatement() (ast.Statement, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume 'type'
	name := p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil, fmt.Errorf("expected = in type alias %s", name)
	}
	p.nextToken()
	typeExpr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	n := &ast.TypeAliasStatement{Name: name, Type: typeExpr}
	n.Base = p.spanFrom(start)
	return n, nil
}
