// Package ast defines the abstract syntax tree produced by internal/parser.
//
// Every node is an immutable tagged-variant value: a plain struct listing
// exactly the fields of its shape, carrying a source Range and a weak
// back-pointer to the Tree it was parsed from. Consumers
// (the evaluator, the pretty-printer) switch on the concrete Go type
// rather than going through a double-dispatch Visitor — the Go standard
// library's own go/ast takes the same approach, and it reads more
// naturally here than a hand-rolled Accept(Visitor) scheme would.
package ast

import "github.com/puppetlabs/go-puppet/internal/token"

// Tree owns one parsed source file: its path, its full text, and its
// top-level statements.
type Tree struct {
	Path       string
	Source     string
	Statements []Statement
}

// Base is embedded by every concrete node and supplies Range() and the
// back-pointer to the owning Tree.
type Base struct {
	Rng  token.Range
	Tree *Tree
}

// Range returns the node's source range.
func (b Base) Range() token.Range { return b.Rng }

// SourceTree returns the tree that owns this node, or nil for a node
// constructed outside of parsing (e.g. in tests).
func (b Base) SourceTree() *Tree { return b.Tree }

// Node is satisfied by every statement and expression.
type Node interface {
	Range() token.Range
	SourceTree() *Tree
	String() string
}

// Statement is a top-level or block-level construct that does not by
// itself produce a value (though its evaluation may, via ExpressionStatement).
type Statement interface {
	Node
	statementNode()
}

// Expression is any construct that evaluates to a Value.
type Expression interface {
	Node
	expressionNode()
}

// Parameter is a class/defined-type/function/lambda parameter: an
// optional type constraint, an optional capture (splat) flag, the bound
// variable, and an optional default value expression.
type Parameter struct {
	Base
	TypeExpr Expression // may be nil
	Captures bool        // `*$rest`
	Name     string      // without leading '$'
	Default  Expression  // may be nil
}

func (p *Parameter) String() string {
	s := ""
	if p.TypeExpr != nil {
		s += p.TypeExpr.String() + " "
	}
	if p.Captures {
		s += "*"
	}
	s += "$" + p.Name
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}
