// Package evaluator walks the AST depth-first, producing values and
// declaring catalog entries: a long-lived Evaluator struct carrying
// name tables and a recursion-depth guard, with one central Eval
// dispatcher delegating to per-node-kind helpers spread across sibling
// files in the same package. It only ever interprets the tree directly
// — a Puppet compiler builds a catalog once per run, not a program it
// runs repeatedly, so there is no reuse to amortize a compile step
// against.
package evaluator

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// maxEvalDepth bounds Eval recursion, guarding against stack overflow
// from pathological or mutually-recursive user manifests.
const maxEvalDepth = 10000

// ClassDef and DefineDef are registered definitions: a later declaration
// looks one up by name and instantiates it.
type ClassDef struct {
	Stmt   *ast.ClassStatement
	Parent *ClassDef
}

type DefineDef struct {
	Stmt *ast.DefinedTypeStatement
}

type FuncDef struct {
	Stmt *ast.FunctionStatement
}

// Loader resolves a qualified class, defined-type, or function name to
// the tree of the manifest that should declare it, autoloading a module
// on demand the first time something outside the already-loaded trees
// references it. A nil Loader means every class and defined type must
// already have been registered by an explicit LoadTree call.
type Loader func(qualifiedName string) (*ast.Tree, error)

// Evaluator owns the name tables populated by class/define/function/type
// declarations across every loaded manifest, plus the per-compilation
// evaluation context it threads through Eval.
type Evaluator struct {
	Ctx    *evalctx.Context
	Loader Loader

	classes     map[string]*ClassDef
	defines     map[string]*DefineDef
	funcs       map[string]*FuncDef
	typeAlias   map[string]types.Type
	nodes       []*ast.NodeStatement
	declared    map[catalog.Key]bool // classes already instantiated, for idempotency
	classScopes map[string]*scope.Scope
	autoloaded  map[string]bool // names already handed to Loader, successfully or not
	evalDepth   int
}

// New builds an Evaluator bound to ctx.
func New(ctx *evalctx.Context) *Evaluator {
	return &Evaluator{
		Ctx:        ctx,
		classes:    make(map[string]*ClassDef),
		defines:    make(map[string]*DefineDef),
		funcs:      make(map[string]*FuncDef),
		typeAlias:  make(map[string]types.Type),
		declared:   make(map[catalog.Key]bool),
		autoloaded: make(map[string]bool),
	}
}

// autoload asks the Loader for the manifest that should declare name,
// parses and registers its top-level declarations, and reports whether
// that made name available. Each name is only ever handed to the Loader
// once per compile, so a genuinely missing class fails fast instead of
// re-reading the filesystem on every reference.
func (ev *Evaluator) autoload(name string) bool {
	if ev.Loader == nil || ev.autoloaded[name] {
		return false
	}
	ev.autoloaded[name] = true
	tree, err := ev.Loader(name)
	if err != nil || tree == nil {
		return false
	}
	return ev.registerDeclarations(tree.Statements) == nil
}

// EvalError wraps any failure raised during evaluation with the source
// range active at the point of failure.
type EvalError struct {
	Range token.Range
	Stack []types.FrameSnapshot
	Err   error
}

func (e *EvalError) Error() string { return e.Err.Error() }
func (e *EvalError) Unwrap() error { return e.Err }

func (ev *Evaluator) fail(rng token.Range, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*EvalError); ok {
		return err
	}
	return &EvalError{Range: rng, Stack: ev.Ctx.Frames(), Err: err}
}

// LoadTree registers every top-level declaration in tree (classes,
// defines, nodes, functions, type aliases) without evaluating anything
// else, then evaluates its remaining top-level statements in order. A
// class or defined type referenced later but not found in any
// already-loaded tree is resolved through Loader, if one is set.
func (ev *Evaluator) LoadTree(tree *ast.Tree) (types.Value, error) {
	ev.Ctx.Source = tree.Path
	if err := ev.registerDeclarations(tree.Statements); err != nil {
		return nil, err
	}
	return ev.evalTopLevel(tree.Statements)
}

func (ev *Evaluator) registerDeclarations(stmts []ast.Statement) error {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.ClassStatement:
			ev.classes[st.Name] = &ClassDef{Stmt: st}
		case *ast.DefinedTypeStatement:
			ev.defines[st.Name] = &DefineDef{Stmt: st}
		case *ast.FunctionStatement:
			ev.funcs[st.Name] = &FuncDef{Stmt: st}
		case *ast.NodeStatement:
			ev.nodes = append(ev.nodes, st)
		case *ast.TypeAliasStatement:
			t, err := ev.evalTypeExpr(st.Type)
			if err != nil {
				return ev.fail(st.Range(), err)
			}
			ev.typeAlias[st.Name] = t
		}
	}
	// Resolve "inherits" after every class is registered, since a parent
	// may be declared later in the same file.
	for _, def := range ev.classes {
		if def.Stmt.Parent != "" {
			def.Parent = ev.classes[def.Stmt.Parent]
		}
	}
	return nil
}

// evalTopLevel evaluates every statement that is not itself a
// class/define/node/function/type-alias declaration (those were handled
// by registerDeclarations), returning the value of the last one.
func (ev *Evaluator) evalTopLevel(stmts []ast.Statement) (types.Value, error) {
	var last types.Value = types.UndefV
	for _, s := range stmts {
		switch s.(type) {
		case *ast.ClassStatement, *ast.DefinedTypeStatement, *ast.FunctionStatement,
			*ast.NodeStatement, *ast.TypeAliasStatement:
			continue
		}
		v, err := ev.evalStatement(s)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// evalStatements evaluates a block, returning the value of its last
// statement.
func (ev *Evaluator) evalStatements(stmts []ast.Statement) (types.Value, error) {
	var last types.Value = types.UndefV
	for _, s := range stmts {
		v, err := ev.evalStatement(s)
		if err != nil {
			return nil, err
		}
		last = v
		switch last.(type) {
		case types.Break, types.Next, types.Return:
			return last, nil
		}
	}
	return last, nil
}

func (ev *Evaluator) evalStatement(s ast.Statement) (types.Value, error) {
	ev.evalDepth++
	defer func() { ev.evalDepth-- }()
	if ev.evalDepth > maxEvalDepth {
		return nil, ev.fail(s.Range(), fmt.Errorf("maximum evaluation depth exceeded"))
	}
	ev.Ctx.UpdateTopFrameRange(s.Range())

	switch st := s.(type) {
	case *ast.ExpressionStatement:
		return ev.evalExpr(st.Expr)
	case *ast.RelationshipStatement:
		return ev.evalRelationshipStatement(st)
	case *ast.BreakStatement:
		return types.Break{Stack: ev.Ctx.Frames()}, nil
	case *ast.NextStatement:
		var val types.Value
		if st.Value != nil {
			v, err := ev.evalExpr(st.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return types.Next{Value: val, Stack: ev.Ctx.Frames()}, nil
	case *ast.ReturnStatement:
		var val types.Value
		if st.Value != nil {
			v, err := ev.evalExpr(st.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return types.Return{Value: val, Stack: ev.Ctx.Frames()}, nil
	case *ast.ClassStatement, *ast.DefinedTypeStatement, *ast.FunctionStatement,
		*ast.NodeStatement, *ast.TypeAliasStatement:
		// Declarations were hoisted by registerDeclarations; a nested
		// occurrence (inside a class/define body) registers here instead.
		return types.UndefV, ev.registerDeclarations([]ast.Statement{s})
	case *ast.ProducesStatement, *ast.ConsumesStatement, *ast.ApplicationStatement, *ast.SiteStatement:
		return types.UndefV, nil
	default:
		return nil, ev.fail(s.Range(), fmt.Errorf("internal: unhandled statement %T", s))
	}
}

// currentScope and callingScope expose the active scope chain for
// functions/operators bridges in sibling files.
func (ev *Evaluator) currentScope() *scope.Scope { return ev.Ctx.Current() }
func (ev *Evaluator) callingScope() *scope.Scope { return ev.Ctx.Calling() }
