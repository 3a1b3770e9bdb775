package evaluator

import (
	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/operators"
	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func (ev *Evaluator) evalUnary(u *ast.UnaryExpr) (types.Value, error) {
	v, err := ev.evalExpr(u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case ast.UnaryNot:
		return operators.Dispatch("!", []types.Value{v}, []token.Range{u.Operand.Range()})
	case ast.UnaryNegate:
		return operators.Dispatch("-@", []types.Value{v}, []token.Range{u.Operand.Range()})
	case ast.UnarySplat:
		// Splat only has meaning inside an argument list or array
		// literal; evaluated bare, it is simply its operand's value.
		return v, nil
	default:
		return nil, ev.fail(u.Range(), nil)
	}
}

func (ev *Evaluator) evalBinary(b *ast.BinaryExpr) (types.Value, error) {
	// && / || short-circuit and are never registered in the operator
	// table (see operators/logical_match.go).
	switch b.Op {
	case ast.OpAnd:
		left, err := ev.evalExpr(b.Left)
		if err != nil {
			return nil, err
		}
		if !types.Truthy(left) {
			return types.Boolean(false), nil
		}
		right, err := ev.evalExpr(b.Right)
		if err != nil {
			return nil, err
		}
		return types.Boolean(types.Truthy(right)), nil
	case ast.OpOr:
		left, err := ev.evalExpr(b.Left)
		if err != nil {
			return nil, err
		}
		if types.Truthy(left) {
			return types.Boolean(true), nil
		}
		right, err := ev.evalExpr(b.Right)
		if err != nil {
			return nil, err
		}
		return types.Boolean(types.Truthy(right)), nil
	}

	left, err := ev.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.evalExpr(b.Right)
	if err != nil {
		return nil, err
	}

	// Both `<<` overloads (array-append, integer left-shift) share one
	// descriptor keyed "<<"; pattern matching alone tells them apart.
	sym := b.Op.String()
	operands := []types.Value{left, right}
	ranges := []token.Range{b.Left.Range(), b.Right.Range()}

	d := operators.Lookup(sym)
	if d == nil {
		return nil, ev.fail(b.Range(), &operators.TypeError{Operator: sym, Operands: operands})
	}
	cc, err := d.DispatchWithCaptures(operands, ranges)
	if err != nil {
		return nil, ev.fail(b.Range(), err)
	}
	if cc.Captures != nil {
		ev.Ctx.PushMatches(cc.Captures)
	}
	return cc.Result, nil
}
