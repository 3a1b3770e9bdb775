// Package parser builds an internal/ast.Tree from a token stream.
//
// It is a classic hand-written Pratt parser: a single token of lookahead
// (curToken/peekToken), a table of prefix and infix parse functions keyed
// by token type, and a precedence-climbing parseExpression loop, with
// resource bodies, selectors, and case/if statement blocks as Puppet's
// own grammar additions on top of that shape.
package parser

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/lexer"
	"github.com/puppetlabs/go-puppet/internal/token"
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGN   // = (right-associative)
	SELECTOR // ?
	LOGICOR  // or
	LOGICAND // and
	EQUALITY // == !=
	RELATION // < <= > >= in
	MATCHOP  // =~ !~
	SHIFT    // << >>
	ADDITIVE // + -
	MULT     // * / %
	UNARY    // ! - (prefix) *
	POSTFIX  // () [] . call/access/method
)

var precedences = map[token.Type]int{
	token.ASSIGN:   ASSIGN,
	token.QUESTION: SELECTOR,
	token.OR:       LOGICOR,
	token.AND:      LOGICAND,
	token.EQ:       EQUALITY,
	token.NEQ:      EQUALITY,
	token.LT:       RELATION,
	token.LTE:      RELATION,
	token.GT:       RELATION,
	token.GTE:      RELATION,
	token.IN:       RELATION,
	token.MATCH:    MATCHOP,
	token.NOMATCH:  MATCHOP,
	token.LSHIFT:   SHIFT,
	token.RSHIFT:   SHIFT,
	token.PLUS:     ADDITIVE,
	token.MINUS:    ADDITIVE,
	token.STAR:     MULT,
	token.SLASH:    MULT,
	token.PERCENT:  MULT,
	token.LPAREN:   POSTFIX,
	token.LBRACKET: POSTFIX,
	token.DOT:      POSTFIX,
}

type (
	prefixParseFn func() (ast.Expression, error)
	infixParseFn  func(left ast.Expression) (ast.Expression, error)
)

// Parser holds the token cursor and the tree under construction. It is
// not safe for concurrent use.
type Parser struct {
	lex  *lexer.Lexer
	tree *ast.Tree

	curToken  token.Token
	peekToken token.Token

	reporter *diagnostics.Reporter

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New builds a Parser over source, reporting syntax errors into reporter.
func New(path, source string, reporter *diagnostics.Reporter) *Parser {
	p := &Parser{
		lex:      lexer.New(source),
		tree:     &ast.Tree{Path: path, Source: source},
		reporter: reporter,
	}
	p.prefixFns = make(map[token.Type]prefixParseFn)
	p.infixFns = make(map[token.Type]infixParseFn)
	p.registerExpressionParsers()

	// Prime curToken/peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse lexes and parses source into a Tree. The Tree is always
// returned, even when errors were reported, so callers can inspect as
// much structure as was recovered; err is non-nil iff the reporter
// recorded at least one error during this call.
func Parse(path, source string, reporter *diagnostics.Reporter) (*ast.Tree, error) {
	p := New(path, source, reporter)
	p.tree.Statements = p.parseStatementsUntil(token.EOF)
	if reporter.HasErrors() {
		return p.tree, fmt.Errorf("%s: %d syntax error(s)", path, reporter.ErrorCount())
	}
	return p.tree, nil
}

// ParseExpression parses source as a single standalone expression, used
// by the EPP renderer for `<%= ... %>` output tags.
func ParseExpression(path, source string, reporter *diagnostics.Reporter) (ast.Expression, error) {
	p := New(path, source, reporter)
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if reporter.HasErrors() {
		return expr, fmt.Errorf("%s: %d syntax error(s)", path, reporter.ErrorCount())
	}
	return expr, nil
}

// ParseStatements parses source as a sequence of statements, used by the
// EPP renderer for `<% ... %>` code tags.
func ParseStatements(path, source string, reporter *diagnostics.Reporter) ([]ast.Statement, error) {
	p := New(path, source, reporter)
	stmts := p.parseStatementsUntil(token.EOF)
	if reporter.HasErrors() {
		return stmts, fmt.Errorf("%s: %d syntax error(s)", path, reporter.ErrorCount())
	}
	return stmts, nil
}

// ParseParameterHeader parses a `| $a, Type $b = default |` parameter
// list, used by the EPP renderer for a template's leading parameter tag.
func ParseParameterHeader(path, source string, reporter *diagnostics.Reporter) ([]*ast.Parameter, error) {
	p := New(path, source, reporter)
	params, err := p.parseParameterList(token.PIPE, token.PIPE)
	if err != nil {
		return nil, err
	}
	if reporter.HasErrors() {
		return params, fmt.Errorf("%s: %d syntax error(s)", path, reporter.ErrorCount())
	}
	return params, nil
}

// nextToken advances the lookahead window, transparently skipping
// NEWLINE and COMMENT tokens: Puppet's grammar has no newline-sensitive
// statement termination, so the parser never needs to see either.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.rawNextSignificant()
}

func (p *Parser) rawNextSignificant() token.Token {
	for {
		tok := p.lex.NextToken()
		if tok.Type == token.NEWLINE || tok.Type == token.COMMENT {
			continue
		}
		return tok
	}
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

// expectPeek asserts peekToken is t, advancing and returning true on
// success; otherwise it reports an error and returns false without
// advancing.
func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken.Range, "expected %s, got %s (%q)", t, p.peekToken.Type, p.peekToken.Literal)
	return false
}

func (p *Parser) errorf(rng token.Range, format string, args ...interface{}) {
	p.reporter.Errorf(p.tree.Path, rng, p.tree.Source, format, args...)
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// spanFrom builds a Base with the given starting position, ending at the
// token just consumed.
func (p *Parser) spanFrom(start token.Position) ast.Base {
	return ast.Base{Rng: token.Range{Start: start, End: p.curToken.Range.End}, Tree: p.tree}
}

// synchronize skips tokens until a plausible statement boundary (a ';',
// a '}', or the first token on a later line), used to keep parsing (and
// collecting further diagnostics) after a syntax error instead of
// aborting the whole file.
func (p *Parser) synchronize() {
	line := p.curToken.Range.Start.Line
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMI) || p.curTokenIs(token.RBRACE) {
			return
		}
		p.nextToken()
		if p.curToken.Range.Start.Line > line {
			return
		}
	}
}
