package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/lexer"
	"github.com/puppetlabs/go-puppet/internal/token"
)

func (p *Parser) registerExpressionParsers() {
	p.prefixFns[token.INT] = p.parseIntLiteral
	p.prefixFns[token.FLOAT] = p.parseFloatLiteral
	p.prefixFns[token.STRING] = p.parseSingleQuotedString
	p.prefixFns[token.DQSTRING] = p.parseInterpolatedString
	p.prefixFns[token.HEREDOC] = p.parseInterpolatedHeredoc
	p.prefixFns[token.REGEX] = p.parseRegexLiteral
	p.prefixFns[token.TRUE] = p.parseBoolLiteral
	p.prefixFns[token.FALSE] = p.parseBoolLiteral
	p.prefixFns[token.UNDEF] = p.parseUndefLiteral
	p.prefixFns[token.DEFAULT] = p.parseDefaultLiteral
	p.prefixFns[token.VARIABLE] = p.parseVariable
	p.prefixFns[token.IDENT] = p.parseIdentOrCall
	p.prefixFns[token.CLASSREF] = p.parseTypeReferenceOrClassref
	p.prefixFns[token.LPAREN] = p.parseGroupedExpr
	p.prefixFns[token.LBRACKET] = p.parseArrayExpr
	p.prefixFns[token.LBRACE] = p.parseHashExpr
	p.prefixFns[token.NOT] = p.parseUnaryExpr
	p.prefixFns[token.MINUS] = p.parseUnaryExpr
	p.prefixFns[token.STAR] = p.parseUnaryExpr
	p.prefixFns[token.IF] = p.parseIfExpr
	p.prefixFns[token.UNLESS] = p.parseIfExpr
	p.prefixFns[token.CASE] = p.parseCaseExpr
	p.prefixFns[token.PIPE] = p.parseLambda
	p.prefixFns[token.AT] = p.parseVirtualResource
	p.prefixFns[token.ATAT] = p.parseVirtualResource

	binOp := func(op ast.BinaryOp) infixParseFn {
		return func(left ast.Expression) (ast.Expression, error) { return p.parseBinaryExpr(left, op) }
	}
	p.infixFns[token.PLUS] = binOp(ast.OpAdd)
	p.infixFns[token.MINUS] = binOp(ast.OpSub)
	p.infixFns[token.STAR] = binOp(ast.OpMul)
	p.infixFns[token.SLASH] = binOp(ast.OpDiv)
	p.infixFns[token.PERCENT] = binOp(ast.OpMod)
	p.infixFns[token.EQ] = binOp(ast.OpEq)
	p.infixFns[token.NEQ] = binOp(ast.OpNeq)
	p.infixFns[token.LT] = binOp(ast.OpLt)
	p.infixFns[token.LTE] = binOp(ast.OpLte)
	p.infixFns[token.GT] = binOp(ast.OpGt)
	p.infixFns[token.GTE] = binOp(ast.OpGte)
	p.infixFns[token.AND] = binOp(ast.OpAnd)
	p.infixFns[token.OR] = binOp(ast.OpOr)
	p.infixFns[token.MATCH] = binOp(ast.OpMatch)
	p.infixFns[token.NOMATCH] = binOp(ast.OpNoMatch)
	p.infixFns[token.IN] = binOp(ast.OpIn)
	p.infixFns[token.RSHIFT] = binOp(ast.OpRshift)
	p.infixFns[token.LSHIFT] = p.parseLshiftOrAppend
	p.infixFns[token.LPAREN] = p.parseCallArgsInfix
	p.infixFns[token.LBRACKET] = p.parseAccessInfix
	p.infixFns[token.DOT] = p.parseMethodCallInfix
	p.infixFns[token.ASSIGN] = p.parseAssignInfix
	p.infixFns[token.QUESTION] = p.parseSelectorInfix
}

// parseExpression is the Pratt-parser core: parse one prefix term, then
// repeatedly fold in infix/postfix operators whose precedence exceeds
// precedence.
func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix, ok := p.prefixFns[p.curToken.Type]
	if !ok {
		p.errorf(p.curToken.Range, "unexpected token %s (%q) in expression", p.curToken.Type, p.curToken.Literal)
		return nil, fmt.Errorf("unexpected token %s", p.curToken.Type)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}
	for precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekToken.Type]
		if !ok {
			return left, nil
		}
		p.nextToken()
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseIntLiteral() (ast.Expression, error) {
	start := p.curToken.Range.Start
	lit := p.curToken.Literal
	base := 10
	text := lit
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		base, text = 16, lit[2:]
	case len(lit) > 1 && lit[0] == '0':
		base, text = 8, lit[1:]
	}
	v, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		p.errorf(p.curToken.Range, "invalid integer literal %q", lit)
		return nil, err
	}
	n := &ast.IntLiteral{Value: v}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseFloatLiteral() (ast.Expression, error) {
	start := p.curToken.Range.Start
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(p.curToken.Range, "invalid float literal %q", p.curToken.Literal)
		return nil, err
	}
	n := &ast.FloatLiteral{Value: v}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseSingleQuotedString() (ast.Expression, error) {
	start := p.curToken.Range.Start
	n := &ast.StringLiteral{Parts: []ast.StringPart{{Literal: p.curToken.Literal}}}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseRegexLiteral() (ast.Expression, error) {
	start := p.curToken.Range.Start
	n := &ast.RegexLiteral{Pattern: p.curToken.Literal}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseBoolLiteral() (ast.Expression, error) {
	start := p.curToken.Range.Start
	n := &ast.BoolLiteral{Value: p.curTokenIs(token.TRUE)}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseUndefLiteral() (ast.Expression, error) {
	n := &ast.UndefLiteral{}
	n.Base = p.spanFrom(p.curToken.Range.Start)
	return n, nil
}

func (p *Parser) parseDefaultLiteral() (ast.Expression, error) {
	n := &ast.DefaultLiteral{}
	n.Base = p.spanFrom(p.curToken.Range.Start)
	return n, nil
}

func (p *Parser) parseVariable() (ast.Expression, error) {
	n := &ast.VariableExpr{Name: p.curToken.Literal}
	n.Base = p.spanFrom(p.curToken.Range.Start)
	return n, nil
}

// parseIdentOrCall handles a bare lowercase identifier: a plain name
// value, a `name(args) |lambda| {...}` call, or Puppet's parenthesis-free
// command-call form (`include foo::bar`, `notice 'hi'`).
func (p *Parser) parseIdentOrCall() (ast.Expression, error) {
	start := p.curToken.Range.Start
	name := p.curToken.Literal

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken() // consume to '('
		return p.finishCallParens(name, start)
	}
	if p.startsCommandArg() {
		return p.finishCommandCall(name, start)
	}
	n := &ast.NameExpr{Value: name}
	n.Base = p.spanFrom(start)
	return n, nil
}

// startsCommandArg reports whether peekToken can begin an argument to a
// parenthesis-free function call, i.e. the bareword is being used as a
// command name rather than a value.
func (p *Parser) startsCommandArg() bool {
	switch p.peekToken.Type {
	case token.STRING, token.DQSTRING, token.HEREDOC, token.VARIABLE, token.INT,
		token.FLOAT, token.LBRACKET, token.CLASSREF, token.TRUE, token.FALSE, token.UNDEF:
		return true
	case token.IDENT:
		return true
	default:
		return false
	}
}

func (p *Parser) finishCallParens(name string, start token.Position) (ast.Expression, error) {
	p.nextToken() // consume '('
	var args []ast.Expression
	for !p.curTokenIs(token.RPAREN) {
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, fmt.Errorf("expected )")
	}
	call := &ast.FunctionCallExpr{Name: name, Arguments: args}
	if p.peekTokenIs(token.PIPE) {
		p.nextToken()
		lambda, err := p.parseLambda()
		if err != nil {
			return nil, err
		}
		call.Lambda = lambda.(*ast.Lambda)
	}
	call.Base = p.spanFrom(start)
	return call, nil
}

func (p *Parser) finishCommandCall(name string, start token.Position) (ast.Expression, error) {
	var args []ast.Expression
	for {
		p.nextToken()
		arg, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	call := &ast.FunctionCallExpr{Name: name, Arguments: args}
	call.Base = p.spanFrom(start)
	return call, nil
}

// parseTypeReferenceOrClassref handles a CLASSREF token: `File`,
// `Array[String]`, `My::Thing['title']`. Bracketed parameters are
// consumed here into TypeReferenceExpr.Parameters rather than left to
// the postfix [] handler; the evaluator passes them to types.Build.
func (p *Parser) parseTypeReferenceOrClassref() (ast.Expression, error) {
	start := p.curToken.Range.Start
	name := p.curToken.Literal
	if !p.peekTokenIs(token.LBRACKET) {
		n := &ast.TypeReferenceExpr{Name: name}
		n.Base = p.spanFrom(start)
		return n, nil
	}
	p.nextToken() // consume to '['
	p.nextToken() // consume '['
	var params []ast.Expression
	for !p.curTokenIs(token.RBRACKET) {
		param, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil, fmt.Errorf("expected ]")
	}
	n := &ast.TypeReferenceExpr{Name: name, Parameters: params}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseGroupedExpr() (ast.Expression, error) {
	p.nextToken() // consume '('
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, fmt.Errorf("expected )")
	}
	return expr, nil
}

func (p *Parser) parseArrayExpr() (ast.Expression, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume '['
	var elems []ast.Expression
	for !p.curTokenIs(token.RBRACKET) {
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil, fmt.Errorf("expected ]")
	}
	n := &ast.ArrayExpr{Elements: elems}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseHashExpr() (ast.Expression, error) {
	start := p.curToken.Range.Start
	p.nextToken() // consume '{'
	var entries []ast.HashEntry
	for !p.curTokenIs(token.RBRACE) {
		key, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if !p.expectPeek(token.FARROW) {
			return nil, fmt.Errorf("expected =>")
		}
		p.nextToken()
		val, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.HashEntry{Key: key, Value: val})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACE) {
		return nil, fmt.Errorf("expected }")
	}
	n := &ast.HashExpr{Entries: entries}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseUnaryExpr() (ast.Expression, error) {
	start := p.curToken.Range.Start
	var op ast.UnaryOp
	switch p.curToken.Type {
	case token.NOT:
		op = ast.UnaryNot
	case token.MINUS:
		op = ast.UnaryNegate
	case token.STAR:
		op = ast.UnarySplat
	}
	p.nextToken()
	operand, err := p.parseExpression(UNARY)
	if err != nil {
		return nil, err
	}
	n := &ast.UnaryExpr{Op: op, Operand: operand}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseBinaryExpr(left ast.Expression, op ast.BinaryOp) (ast.Expression, error) {
	start := left.Range().Start
	precedence := p.curPrecedence()
	p.nextToken()
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	n := &ast.BinaryExpr{Left: left, Op: op, Right: right}
	n.Base = p.spanFrom(start)
	return n, nil
}

// parseLshiftOrAppend disambiguates `<<` the shift operator from `<<`
// array-append purely at evaluation time (internal/operators dispatches
// on operand type); the parser always produces OpLshift and the
// evaluator's operator table recognizes both shapes under the same `<<`
// symbol.
func (p *Parser) parseLshiftOrAppend(left ast.Expression) (ast.Expression, error) {
	return p.parseBinaryExpr(left, ast.OpLshift)
}

func (p *Parser) parseAssignInfix(left ast.Expression) (ast.Expression, error) {
	start := left.Range().Start
	p.nextToken()
	val, err := p.parseExpression(ASSIGN - 1) // right-associative
	if err != nil {
		return nil, err
	}
	n := &ast.AssignmentExpr{Target: left, Value: val}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseCallArgsInfix(left ast.Expression) (ast.Expression, error) {
	name := exprAsCallName(left)
	return p.finishCallParens(name, left.Range().Start)
}

// exprAsCallName extracts a bare name for `expr(args)` postfix-call
// sugar; this only arises when a NameExpr was first parsed as a plain
// value and then immediately followed by '(' at a precedence boundary
// the prefix handler didn't consume (e.g. inside a larger expression).
func exprAsCallName(e ast.Expression) string {
	if n, ok := e.(*ast.NameExpr); ok {
		return n.Value
	}
	return e.String()
}

func (p *Parser) parseAccessInfix(left ast.Expression) (ast.Expression, error) {
	start := left.Range().Start
	p.nextToken() // consume '['
	var args []ast.Expression
	for !p.curTokenIs(token.RBRACKET) {
		a, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil, fmt.Errorf("expected ]")
	}
	n := &ast.AccessExpr{Target: left, Arguments: args}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseMethodCallInfix(left ast.Expression) (ast.Expression, error) {
	start := left.Range().Start
	if !p.expectPeek(token.IDENT) {
		return nil, fmt.Errorf("expected method name after .")
	}
	name := p.curToken.Literal
	var args []ast.Expression
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken() // '('
		p.nextToken()
		for !p.curTokenIs(token.RPAREN) {
			a, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		if !p.expectPeek(token.RPAREN) {
			return nil, fmt.Errorf("expected )")
		}
	}
	m := &ast.MethodCallExpr{Receiver: left, Name: name, Arguments: args}
	if p.peekTokenIs(token.PIPE) {
		p.nextToken()
		lambda, err := p.parseLambda()
		if err != nil {
			return nil, err
		}
		m.Lambda = lambda.(*ast.Lambda)
	}
	m.Base = p.spanFrom(start)
	return m, nil
}

func (p *Parser) parseLambda() (ast.Expression, error) {
	start := p.curToken.Range.Start
	params, err := p.parseParameterList(token.PIPE, token.PIPE)
	if err != nil {
		return nil, err
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { for lambda body")
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.Lambda{Parameters: params, Body: body}
	n.Base = p.spanFrom(start)
	return n, nil
}

// parseParameterList parses `open $a, Type $b = default, *$rest close`,
// where open/close are already-consumed-compatible delimiters (PIPE for
// lambdas, LPAREN/RPAREN for class/define/function parameter lists).
func (p *Parser) parseParameterList(open, closeTok token.Type) ([]*ast.Parameter, error) {
	if !p.curTokenIs(open) {
		if !p.expectPeek(open) {
			return nil, fmt.Errorf("expected parameter list")
		}
	}
	p.nextToken()
	var params []*ast.Parameter
	if p.curTokenIs(closeTok) {
		return params, nil
	}
	for !p.curTokenIs(closeTok) {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(closeTok) {
		return nil, fmt.Errorf("expected end of parameter list")
	}
	return params, nil
}

func (p *Parser) parseParameter() (*ast.Parameter, error) {
	start := p.curToken.Range.Start
	param := &ast.Parameter{}
	if p.curTokenIs(token.CLASSREF) {
		t, err := p.parseTypeReferenceOrClassref()
		if err != nil {
			return nil, err
		}
		param.TypeExpr = t
		p.nextToken()
	}
	if p.curTokenIs(token.STAR) {
		param.Captures = true
		p.nextToken()
	}
	if !p.curTokenIs(token.VARIABLE) {
		p.errorf(p.curToken.Range, "expected $parameter, got %s", p.curToken.Type)
		return nil, fmt.Errorf("expected parameter")
	}
	param.Name = p.curToken.Literal
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		def, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, err
		}
		param.Default = def
	}
	param.Base = p.spanFrom(start)
	return param, nil
}

// parseBraceBlock parses `{ stmt* }`, curToken starting on the '{'.
func (p *Parser) parseBraceBlock() ([]ast.Statement, error) {
	p.nextToken() // consume '{'
	stmts := p.parseStatementsUntil(token.RBRACE)
	if !p.curTokenIs(token.RBRACE) {
		p.errorf(p.curToken.Range, "expected } to close block, got %s", p.curToken.Type)
		return stmts, fmt.Errorf("unterminated block")
	}
	return stmts, nil
}

func (p *Parser) parseIfExpr() (ast.Expression, error) {
	start := p.curToken.Range.Start
	unless := p.curTokenIs(token.UNLESS)
	p.nextToken()
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { after if/unless condition")
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.IfExpr{Unless: unless, Clauses: []ast.IfClause{{Condition: cond, Body: body}}}
	for p.peekTokenIs(token.ELSIF) {
		p.nextToken()
		p.nextToken()
		c, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if !p.expectPeek(token.LBRACE) {
			return nil, fmt.Errorf("expected { after elsif condition")
		}
		b, err := p.parseBraceBlock()
		if err != nil {
			return nil, err
		}
		n.Clauses = append(n.Clauses, ast.IfClause{Condition: c, Body: b})
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil, fmt.Errorf("expected { after else")
		}
		b, err := p.parseBraceBlock()
		if err != nil {
			return nil, err
		}
		n.Else = b
	}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseCaseExpr() (ast.Expression, error) {
	start := p.curToken.Range.Start
	p.nextToken()
	subject, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { after case subject")
	}
	p.nextToken()
	n := &ast.CaseExpr{Subject: subject}
	for !p.curTokenIs(token.RBRACE) {
		opt, err := p.parseCaseOption()
		if err != nil {
			return nil, err
		}
		n.Options = append(n.Options, opt)
		if p.curTokenIs(token.SEMI) {
			p.nextToken()
		}
	}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseCaseOption() (ast.CaseOption, error) {
	var opt ast.CaseOption
	if p.curTokenIs(token.DEFAULT) {
		opt.IsDefault = true
		p.nextToken()
	} else {
		for {
			v, err := p.parseExpression(LOWEST)
			if err != nil {
				return opt, err
			}
			opt.Values = append(opt.Values, v)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.COLON) {
		p.errorf(p.curToken.Range, "expected : in case option, got %s", p.curToken.Type)
		return opt, fmt.Errorf("expected :")
	}
	if !p.expectPeek(token.LBRACE) {
		return opt, fmt.Errorf("expected { in case option body")
	}
	body, err := p.parseBraceBlock()
	if err != nil {
		return opt, err
	}
	opt.Body = body
	p.nextToken() // past '}'
	return opt, nil
}

func (p *Parser) parseSelectorInfix(subject ast.Expression) (ast.Expression, error) {
	start := subject.Range().Start
	if !p.expectPeek(token.LBRACE) {
		return nil, fmt.Errorf("expected { after ?")
	}
	p.nextToken()
	n := &ast.SelectorExpr{Subject: subject}
	for !p.curTokenIs(token.RBRACE) {
		var opt ast.SelectorOption
		if p.curTokenIs(token.DEFAULT) {
			opt.IsDefault = true
		} else {
			v, err := p.parseExpression(LOWEST)
			if err != nil {
				return nil, err
			}
			opt.Value = v
		}
		if !p.expectPeek(token.FARROW) {
			return nil, fmt.Errorf("expected => in selector option")
		}
		p.nextToken()
		res, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		opt.Result = res
		n.Options = append(n.Options, opt)
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	n.Base = p.spanFrom(start)
	return n, nil
}

// --- String interpolation -------------------------------------------------

// parseInterpolatedString splits a double-quoted string's raw text
// (escapes already resolved by the lexer) on $var and ${expr} markers,
// recursively re-lexing/parsing each embedded expression.
func (p *Parser) parseInterpolatedString() (ast.Expression, error) {
	start := p.curToken.Range.Start
	raw := p.curToken.Literal
	parts, interpolated, err := p.splitInterpolation(raw)
	if err != nil {
		return nil, err
	}
	n := &ast.StringLiteral{Parts: parts, Interpolated: interpolated}
	n.Base = p.spanFrom(start)
	return n, nil
}

func (p *Parser) parseInterpolatedHeredoc() (ast.Expression, error) {
	return p.parseInterpolatedString()
}

func (p *Parser) splitInterpolation(raw string) ([]ast.StringPart, bool, error) {
	var parts []ast.StringPart
	var lit strings.Builder
	interpolated := false
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '$' || i+1 >= len(runes) {
			lit.WriteRune(ch)
			continue
		}
		if runes[i+1] == '{' {
			end := matchingBrace(runes, i+2)
			if end < 0 {
				lit.WriteRune(ch)
				continue
			}
			if lit.Len() > 0 {
				parts = append(parts, ast.StringPart{Literal: lit.String()})
				lit.Reset()
			}
			exprSrc := string(runes[i+2 : end])
			expr, err := p.parseSubExpression(exprSrc)
			if err != nil {
				return nil, false, err
			}
			parts = append(parts, ast.StringPart{Expr: expr})
			interpolated = true
			i = end
			continue
		}
		if isIdentStart(runes[i+1]) {
			j := i + 1
			for j < len(runes) && isIdentCont(runes[j]) {
				j++
			}
			if lit.Len() > 0 {
				parts = append(parts, ast.StringPart{Literal: lit.String()})
				lit.Reset()
			}
			name := string(runes[i+1 : j])
			v := &ast.VariableExpr{Name: name}
			v.Base = ast.Base{Tree: p.tree}
			parts = append(parts, ast.StringPart{Expr: v})
			interpolated = true
			i = j - 1
			continue
		}
		lit.WriteRune(ch)
	}
	if lit.Len() > 0 || len(parts) == 0 {
		parts = append(parts, ast.StringPart{Literal: lit.String()})
	}
	return parts, interpolated, nil
}

func matchingBrace(runes []rune, start int) int {
	depth := 1
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentStart(r rune) bool { return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == ':'
}

// parseSubExpression parses a standalone expression embedded in an
// interpolated string, running a fresh lexer/parser over just that text
// but sharing this parser's reporter and tree back-pointer.
func (p *Parser) parseSubExpression(src string) (ast.Expression, error) {
	sub := &Parser{
		lex:       lexer.New(src),
		tree:      p.tree,
		reporter:  p.reporter,
		prefixFns: p.prefixFns,
		infixFns:  p.infixFns,
	}
	sub.nextToken()
	sub.nextToken()
	return sub.parseExpression(LOWEST)
}
