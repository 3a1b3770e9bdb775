package evaluator

import (
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func (ev *Evaluator) evalExpr(e ast.Expression) (types.Value, error) {
	ev.evalDepth++
	defer func() { ev.evalDepth-- }()
	if ev.evalDepth > maxEvalDepth {
		return nil, ev.fail(e.Range(), fmt.Errorf("maximum evaluation depth exceeded"))
	}

	switch ex := e.(type) {
	case *ast.UndefLiteral:
		return types.UndefV, nil
	case *ast.DefaultLiteral:
		return types.DefaultValue{}, nil
	case *ast.BoolLiteral:
		return types.Boolean(ex.Value), nil
	case *ast.IntLiteral:
		return types.Integer(ex.Value), nil
	case *ast.FloatLiteral:
		return types.Float(ex.Value), nil
	case *ast.StringLiteral:
		return ev.evalStringLiteral(ex)
	case *ast.RegexLiteral:
		re, err := types.NewRegex(ex.Pattern)
		if err != nil {
			return nil, ev.fail(e.Range(), err)
		}
		return re, nil
	case *ast.BareWord:
		return types.String(ex.Value), nil
	case *ast.NameExpr:
		return types.String(ex.Value), nil
	case *ast.VariableExpr:
		return ev.evalVariable(ex)
	case *ast.TypeReferenceExpr:
		return ev.evalTypeReference(ex)
	case *ast.ArrayExpr:
		return ev.evalArray(ex)
	case *ast.HashExpr:
		return ev.evalHash(ex)
	case *ast.IfExpr:
		return ev.evalIf(ex)
	case *ast.CaseExpr:
		return ev.evalCase(ex)
	case *ast.SelectorExpr:
		return ev.evalSelector(ex)
	case *ast.FunctionCallExpr:
		return ev.evalFunctionCall(ex)
	case *ast.MethodCallExpr:
		return ev.evalMethodCall(ex)
	case *ast.AccessExpr:
		return ev.evalAccess(ex)
	case *ast.UnaryExpr:
		return ev.evalUnary(ex)
	case *ast.BinaryExpr:
		return ev.evalBinary(ex)
	case *ast.AssignmentExpr:
		return ev.evalAssignment(ex)
	case *ast.ResourceExpr:
		return ev.evalResourceExpr(ex)
	case *ast.ResourceDefaultsExpr:
		return ev.evalResourceDefaults(ex)
	case *ast.ResourceOverrideExpr:
		return ev.evalResourceOverride(ex)
	case *ast.CollectorExpr:
		return ev.evalCollector(ex)
	case *ast.Lambda:
		return nil, ev.fail(e.Range(), fmt.Errorf("a lambda may only appear as a trailing block of a function call"))
	default:
		return nil, ev.fail(e.Range(), fmt.Errorf("internal: unhandled expression %T", e))
	}
}

func (ev *Evaluator) evalStringLiteral(s *ast.StringLiteral) (types.Value, error) {
	if !s.Interpolated && len(s.Parts) == 1 && s.Parts[0].Expr == nil {
		return types.String(s.Parts[0].Literal), nil
	}
	var sb strings.Builder
	for _, p := range s.Parts {
		if p.Expr == nil {
			sb.WriteString(p.Literal)
			continue
		}
		v, err := ev.evalExpr(p.Expr)
		if err != nil {
			return nil, err
		}
		sb.WriteString(interpolate(v))
	}
	return types.String(sb.String()), nil
}

// interpolate renders a value the way an embedded `${...}` expression is
// spliced into a double-quoted string: undef vanishes, everything else
// uses its ordinary textual form.
func interpolate(v types.Value) string {
	if _, ok := v.(types.Undef); ok {
		return ""
	}
	return v.Inspect()
}

func (ev *Evaluator) evalVariable(v *ast.VariableExpr) (types.Value, error) {
	name := v.Name
	if strings.HasPrefix(name, "::") {
		val, ok := ev.currentScope().GetQualified(name)
		if !ok {
			return types.UndefV, nil
		}
		return val, nil
	}
	if idx, ok := matchIndex(name); ok {
		return ev.Ctx.Match(idx), nil
	}
	val, ok := ev.currentScope().Get(name)
	if !ok {
		return types.UndefV, nil
	}
	return val, nil
}

// matchIndex reports whether name is a bare non-negative integer, the
// shape of the $0, $1, ... regexp-capture variables.
func matchIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func (ev *Evaluator) evalTypeReference(t *ast.TypeReferenceExpr) (types.Value, error) {
	built, err := ev.evalTypeExpr(t)
	if err != nil {
		return nil, ev.fail(t.Range(), err)
	}
	return types.TypeRef{Type: built}, nil
}

// evalTypeExpr builds a types.Type from a type-reference expression,
// evaluating its bracketed parameters as ordinary values first.
func (ev *Evaluator) evalTypeExpr(e ast.Expression) (types.Type, error) {
	t, ok := e.(*ast.TypeReferenceExpr)
	if !ok {
		v, err := ev.evalExpr(e)
		if err != nil {
			return nil, err
		}
		if tr, ok := v.(types.TypeRef); ok {
			return tr.Type, nil
		}
		return nil, fmt.Errorf("expected a type expression, got %s", types.Infer(v).String())
	}
	if alias, ok := ev.typeAlias[t.Name]; ok && len(t.Parameters) == 0 {
		return alias, nil
	}
	params := make([]types.Value, len(t.Parameters))
	for i, p := range t.Parameters {
		v, err := ev.evalExpr(p)
		if err != nil {
			return nil, err
		}
		params[i] = v
	}
	return types.Build(t.Name, params)
}

func (ev *Evaluator) evalArray(a *ast.ArrayExpr) (types.Value, error) {
	elems := make([]types.Value, 0, len(a.Elements))
	for _, e := range a.Elements {
		if u, ok := e.(*ast.UnaryExpr); ok && u.Op == ast.UnarySplat {
			v, err := ev.evalExpr(u.Operand)
			if err != nil {
				return nil, err
			}
			if arr, ok := v.(types.Array); ok {
				elems = append(elems, arr.Elements...)
				continue
			}
			elems = append(elems, v)
			continue
		}
		v, err := ev.evalExpr(e)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return types.Array{Elements: elems}, nil
}

func (ev *Evaluator) evalHash(h *ast.HashExpr) (types.Value, error) {
	out := types.NewHash()
	for _, entry := range h.Entries {
		k, err := ev.evalExpr(entry.Key)
		if err != nil {
			return nil, err
		}
		v, err := ev.evalExpr(entry.Value)
		if err != nil {
			return nil, err
		}
		out.Set(k, v)
	}
	return out, nil
}

func (ev *Evaluator) evalIf(i *ast.IfExpr) (types.Value, error) {
	for idx, clause := range i.Clauses {
		cond, err := ev.evalExpr(clause.Condition)
		if err != nil {
			return nil, err
		}
		truthy := types.Truthy(cond)
		if i.Unless && idx == 0 {
			truthy = !truthy
		}
		if truthy {
			return ev.evalBlock(clause.Body)
		}
	}
	return ev.evalBlock(i.Else)
}

// evalBlock runs a nested block in its own match scope (new matches made
// inside do not leak past the block) but the current lexical scope:
// if/unless/case/selector bodies do not introduce a new variable scope.
func (ev *Evaluator) evalBlock(stmts []ast.Statement) (types.Value, error) {
	tok := ev.Ctx.PushMatches(nil)
	defer tok.Unwind()
	return ev.evalStatements(stmts)
}

func (ev *Evaluator) evalCase(c *ast.CaseExpr) (types.Value, error) {
	subject, err := ev.evalExpr(c.Subject)
	if err != nil {
		return nil, err
	}
	var defaultOpt *ast.CaseOption
	for i := range c.Options {
		opt := &c.Options[i]
		if opt.IsDefault {
			defaultOpt = opt
			continue
		}
		for _, ve := range opt.Values {
			candidate, err := ev.evalExpr(ve)
			if err != nil {
				return nil, err
			}
			matched, err := ev.caseEqual(subject, candidate)
			if err != nil {
				return nil, err
			}
			if matched {
				return ev.evalBlock(opt.Body)
			}
		}
	}
	if defaultOpt != nil {
		return ev.evalBlock(defaultOpt.Body)
	}
	return types.UndefV, nil
}

func (ev *Evaluator) evalSelector(s *ast.SelectorExpr) (types.Value, error) {
	subject, err := ev.evalExpr(s.Subject)
	if err != nil {
		return nil, err
	}
	var defaultResult ast.Expression
	for _, opt := range s.Options {
		if opt.IsDefault {
			defaultResult = opt.Result
			continue
		}
		candidate, err := ev.evalExpr(opt.Value)
		if err != nil {
			return nil, err
		}
		matched, err := ev.caseEqual(subject, candidate)
		if err != nil {
			return nil, err
		}
		if matched {
			return ev.evalExpr(opt.Result)
		}
	}
	if defaultResult != nil {
		return ev.evalExpr(defaultResult)
	}
	return types.UndefV, nil
}

// caseEqual implements the case-equality case/selector arms use: a
// Regexp candidate matches a String subject (and installs captures), a
// Type candidate tests is_instance, everything else falls back to `==`.
func (ev *Evaluator) caseEqual(subject, candidate types.Value) (bool, error) {
	switch cand := candidate.(type) {
	case types.Regex:
		s, ok := subject.(types.String)
		if !ok {
			return false, nil
		}
		m := cand.Compiled.FindStringSubmatch(string(s))
		if m != nil {
			captures := make([]types.Value, len(m))
			for i, g := range m {
				captures[i] = types.String(g)
			}
			ev.Ctx.PushMatches(captures)
		}
		return m != nil, nil
	case types.TypeRef:
		return types.IsInstance(cand.Type, subject), nil
	default:
		return types.Equal(subject, candidate), nil
	}
}
