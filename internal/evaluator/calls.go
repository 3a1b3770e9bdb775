package evaluator

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/functions"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func (ev *Evaluator) evalFunctionCall(f *ast.FunctionCallExpr) (types.Value, error) {
	args := make([]types.Value, len(f.Arguments))
	ranges := make([]token.Range, len(f.Arguments))
	for i, a := range f.Arguments {
		v, err := ev.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
		ranges[i] = a.Range()
	}
	return ev.callNamed(f.Name, f.Range(), args, ranges, f.Lambda)
}

// evalMethodCall treats `$receiver.name(args) |lambda| {...}` as an
// ordinary call to `name` with the receiver prepended as the first
// positional argument.
func (ev *Evaluator) evalMethodCall(m *ast.MethodCallExpr) (types.Value, error) {
	recv, err := ev.evalExpr(m.Receiver)
	if err != nil {
		return nil, err
	}
	args := make([]types.Value, len(m.Arguments)+1)
	ranges := make([]token.Range, len(m.Arguments)+1)
	args[0] = recv
	ranges[0] = m.Receiver.Range()
	for i, a := range m.Arguments {
		v, err := ev.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i+1] = v
		ranges[i+1] = a.Range()
	}
	return ev.callNamed(m.Name, m.Range(), args, ranges, m.Lambda)
}

// callNamed dispatches to a built-in (internal/functions), falling back
// to a user-defined `function` statement if no built-in of that name is
// registered.
func (ev *Evaluator) callNamed(name string, rng token.Range, args []types.Value, ranges []token.Range, lambda *ast.Lambda) (types.Value, error) {
	if functions.Lookup(name) != nil {
		cc := ev.buildCallContext(name, rng, args, ranges, lambda)
		v, err := functions.Dispatch(name, cc)
		if err != nil {
			return nil, ev.fail(rng, err)
		}
		return v, nil
	}
	def, ok := ev.funcs[name]
	if !ok && ev.autoload(name) {
		def, ok = ev.funcs[name]
	}
	if ok {
		return ev.callUserFunction(def, rng, args, ranges)
	}
	return nil, ev.fail(rng, fmt.Errorf("unknown function %q", name))
}

func (ev *Evaluator) buildCallContext(name string, rng token.Range, args []types.Value, ranges []token.Range, lambda *ast.Lambda) *functions.CallContext {
	cc := &functions.CallContext{
		Eval:      ev.Ctx,
		Name:      name,
		NameRange: rng,
		Args:      args,
		ArgRanges: ranges,
		Lambda:    lambda,
	}
	if lambda != nil {
		cc.Yield = ev.makeYield(lambda, true)
		cc.YieldWithoutCatch = ev.makeYield(lambda, false)
	}
	cc.DeclareClass = func(className, relationship string) error {
		return ev.declareClassByName(className, nil, relationship)
	}
	cc.Realize = ev.realizeRefs
	cc.CurrentResource = func() interface{} { return ev.currentScope().Resource() }
	cc.CallingResource = func() interface{} { return ev.callingScope().Resource() }
	cc.EvalEPP = ev.evalEPP
	return cc
}

// makeYield builds the closure a built-in function calls to invoke its
// trailing lambda. catching controls whether a parameter-count mismatch
// is translated into an ordinary error (Yield) or returned raw
// (YieldWithoutCatch).
func (ev *Evaluator) makeYield(lambda *ast.Lambda, catching bool) func([]types.Value) (types.Value, error) {
	return func(args []types.Value) (types.Value, error) {
		if err := checkBlockArity(lambda, len(args)); err != nil {
			if catching {
				return nil, fmt.Errorf("yield: %w", err)
			}
			return nil, err
		}
		child := scope.NewChild(ev.currentScope())
		if err := ev.bindParameters(child, lambda.Parameters, args, ev.currentScope()); err != nil {
			return nil, err
		}
		frameTok := ev.Ctx.PushFrame(evalctx.Frame{Name: "lambda", Range: lambda.Range(), Scope: ev.currentScope()})
		defer frameTok.Unwind()
		scopeTok := ev.Ctx.PushScope(child)
		defer scopeTok.Unwind()
		matchTok := ev.Ctx.PushMatches(nil)
		defer matchTok.Unwind()
		result, err := ev.evalStatements(lambda.Body)
		if err != nil {
			return nil, err
		}
		if ret, ok := result.(types.Return); ok {
			return ret.Value, nil
		}
		return result, nil
	}
}

// checkBlockArity validates a lambda call's argument count against its
// declared parameters, accounting for a trailing `*$rest` capture.
func checkBlockArity(lambda *ast.Lambda, got int) error {
	min := len(lambda.Parameters)
	hasCapture := false
	if min > 0 && lambda.Parameters[min-1].Captures {
		hasCapture = true
		min--
	}
	if got < min || (!hasCapture && got > min) {
		return fmt.Errorf("block expects %d argument(s), got %d", min, got)
	}
	return nil
}

// bindParameters assigns positional args to parameters, evaluating
// defaults (in defaultScope, typically the calling scope) for any
// trailing parameters omitted by the caller, and capturing surplus
// arguments into the final `*$rest` parameter if one is declared.
func (ev *Evaluator) bindParameters(target *scope.Scope, params []*ast.Parameter, args []types.Value, defaultScope *scope.Scope) error {
	for i, p := range params {
		if p.Captures {
			rest := args[min(i, len(args)):]
			v := make([]types.Value, len(rest))
			copy(v, rest)
			if err := target.Set(p.Name, types.Array{Elements: v}, p.Range(), ev.Ctx.Source); err != nil {
				return err
			}
			return nil
		}
		var value types.Value
		if i < len(args) {
			value = args[i]
		} else if p.Default != nil {
			tok := ev.Ctx.PushScope(defaultScope)
			v, err := ev.evalExpr(p.Default)
			tok.Unwind()
			if err != nil {
				return err
			}
			value = v
		} else {
			value = types.UndefV
		}
		if p.TypeExpr != nil {
			t, err := ev.evalTypeExpr(p.TypeExpr)
			if err != nil {
				return err
			}
			if !types.IsInstance(t, value) {
				return fmt.Errorf("parameter $%s: expected %s, got %s", p.Name, t.String(), types.Infer(value).String())
			}
		}
		if err := target.Set(p.Name, value, p.Range(), ev.Ctx.Source); err != nil {
			return err
		}
	}
	return nil
}

// callUserFunction evaluates a `function name(...) { ... }` body in a
// fresh scope rooted at the global top scope.
func (ev *Evaluator) callUserFunction(def *FuncDef, rng token.Range, args []types.Value, ranges []token.Range) (types.Value, error) {
	child := scope.NewChild(ev.Ctx.Root)
	if err := ev.bindParameters(child, def.Stmt.Parameters, args, ev.Ctx.Root); err != nil {
		return nil, ev.fail(rng, err)
	}
	frameTok := ev.Ctx.PushFrame(evalctx.Frame{Name: def.Stmt.Name, Range: rng, Scope: ev.currentScope()})
	defer frameTok.Unwind()
	scopeTok := ev.Ctx.PushScope(child)
	defer scopeTok.Unwind()
	matchTok := ev.Ctx.PushMatches(nil)
	defer matchTok.Unwind()

	result, err := ev.evalStatements(def.Stmt.Body)
	if err != nil {
		return nil, err
	}
	if ret, ok := result.(types.Return); ok {
		return ret.Value, nil
	}
	if def.Stmt.ReturnType != nil {
		t, err := ev.evalTypeExpr(def.Stmt.ReturnType)
		if err != nil {
			return nil, ev.fail(rng, err)
		}
		if !types.IsInstance(t, result) {
			return nil, ev.fail(rng, fmt.Errorf("function %q: return value does not match declared return type %s", def.Stmt.Name, t.String()))
		}
	}
	return result, nil
}
