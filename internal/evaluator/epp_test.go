package evaluator

import (
	"io"
	"testing"

	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/facts"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func newTestEvaluator() *Evaluator {
	provider := facts.NewStatic(nil)
	root := scope.NewRoot(provider)
	cat := catalog.New("test.example.com")
	logger := diagnostics.NewLogger(io.Discard)
	ctx := evalctx.New(root, cat, provider, logger)
	ctx.Source = "epp_test.epp"
	return New(ctx)
}

func TestEvalEPPLiteralText(t *testing.T) {
	ev := newTestEvaluator()
	out, err := ev.evalEPP("hello, world\n", nil)
	if err != nil {
		t.Fatalf("evalEPP: %v", err)
	}
	if out != "hello, world\n" {
		t.Fatalf("evalEPP = %q, want %q", out, "hello, world\n")
	}
}

func TestEvalEPPExprTag(t *testing.T) {
	ev := newTestEvaluator()
	out, err := ev.evalEPP("count: <%= 1 + 1 %>\n", nil)
	if err != nil {
		t.Fatalf("evalEPP: %v", err)
	}
	if out != "count: 2\n" {
		t.Fatalf("evalEPP = %q, want %q", out, "count: 2\n")
	}
}

func TestEvalEPPParameterFromArgs(t *testing.T) {
	ev := newTestEvaluator()
	args := types.NewHash()
	args.Set(types.String("name"), types.String("db01"))
	out, err := ev.evalEPP("<%- | String $name | -%>host <%= $name %>", args)
	if err != nil {
		t.Fatalf("evalEPP: %v", err)
	}
	if out != "host db01" {
		t.Fatalf("evalEPP = %q, want %q", out, "host db01")
	}
}

func TestEvalEPPMissingRequiredParameterIsError(t *testing.T) {
	ev := newTestEvaluator()
	_, err := ev.evalEPP("<%- | String $name | -%>host <%= $name %>", nil)
	if err == nil {
		t.Fatalf("expected an error for a missing required template parameter")
	}
}

func TestEvalEPPDefaultParameter(t *testing.T) {
	ev := newTestEvaluator()
	out, err := ev.evalEPP("<%- | String $name = 'anon' | -%>host <%= $name %>", nil)
	if err != nil {
		t.Fatalf("evalEPP: %v", err)
	}
	if out != "host anon" {
		t.Fatalf("evalEPP = %q, want %q", out, "host anon")
	}
}

func TestEvalEPPCodeTagSideEffectOnly(t *testing.T) {
	ev := newTestEvaluator()
	out, err := ev.evalEPP("before<% $x = 1 %>after", nil)
	if err != nil {
		t.Fatalf("evalEPP: %v", err)
	}
	if out != "beforeafter" {
		t.Fatalf("evalEPP = %q, want %q", out, "beforeafter")
	}
}
