package evaluator

import (
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/epp"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/parser"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// evalEPP renders source as an embedded Puppet template: its leading
// `<%- | ... | -%>` header (if any) is bound from args the way a class's
// parameters are bound from a declaration hash, every `<%= expr %>` tag
// is evaluated and spliced into the output, every `<% stmts %>` tag is
// executed for side effects only, and everything outside a tag is
// copied through verbatim. It is handed to internal/functions as the
// CallContext.EvalEPP closure so that package never has to import this
// one.
func (ev *Evaluator) evalEPP(source string, args *types.Hash) (string, error) {
	parsed, err := epp.Parse(ev.Ctx.Source, source)
	if err != nil {
		return "", err
	}

	tmplScope := scope.NewChild(ev.callingScope())
	if err := ev.bindEPPParameters(tmplScope, parsed.Params, args); err != nil {
		return "", err
	}

	var buf strings.Builder
	scopeTok := ev.Ctx.PushScope(tmplScope)
	defer scopeTok.Unwind()
	outTok := ev.Ctx.PushOut(&buf)
	defer outTok.Unwind()
	frameTok := ev.Ctx.PushFrame(evalctx.Frame{Name: "epp", Scope: tmplScope})
	defer frameTok.Unwind()

	for _, t := range parsed.Tags {
		switch t.Kind {
		case epp.Text:
			buf.WriteString(t.Content)
		case epp.Expr:
			reporter := diagnostics.NewReporter()
			expr, err := parser.ParseExpression(ev.Ctx.Source, t.Content, reporter)
			if err != nil {
				return "", fmt.Errorf("epp expression tag: %w", err)
			}
			v, err := ev.evalExpr(expr)
			if err != nil {
				return "", err
			}
			buf.WriteString(interpolate(v))
		case epp.Code:
			reporter := diagnostics.NewReporter()
			stmts, err := parser.ParseStatements(ev.Ctx.Source, t.Content, reporter)
			if err != nil {
				return "", fmt.Errorf("epp code tag: %w", err)
			}
			if _, err := ev.evalStatements(stmts); err != nil {
				return "", err
			}
		}
	}
	return buf.String(), nil
}

// bindEPPParameters binds a template's declared parameters from args,
// falling back to each parameter's default expression (evaluated in the
// template's own scope); a required parameter with neither an argument
// nor a default is an error.
func (ev *Evaluator) bindEPPParameters(tmplScope *scope.Scope, params []*ast.Parameter, args *types.Hash) error {
	for _, p := range params {
		var value types.Value
		var found bool
		if args != nil {
			if v, ok := args.Get(types.String(p.Name)); ok {
				value, found = v, true
			}
		}
		if !found && p.Default != nil {
			tok := ev.Ctx.PushScope(tmplScope)
			v, err := ev.evalExpr(p.Default)
			tok.Unwind()
			if err != nil {
				return err
			}
			value, found = v, true
		}
		if !found {
			return fmt.Errorf("epp: missing required template parameter $%s", p.Name)
		}
		if p.TypeExpr != nil {
			t, err := ev.evalTypeExpr(p.TypeExpr)
			if err != nil {
				return err
			}
			if !types.IsInstance(t, value) {
				return fmt.Errorf("epp parameter $%s: expected %s, got %s", p.Name, t.String(), types.Infer(value).String())
			}
		}
		if err := tmplScope.Set(p.Name, value, p.Range(), ev.Ctx.Source); err != nil {
			return err
		}
	}
	return nil
}
