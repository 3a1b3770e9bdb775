package parser_test

import (
	"testing"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/parser"
)

func mustParse(t *testing.T, source string) *ast.Tree {
	t.Helper()
	reporter := diagnostics.NewReporter()
	tree, err := parser.Parse("test.pp", source, reporter)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return tree
}

func TestParseVariableAssignment(t *testing.T) {
	tree := mustParse(t, "$x = 1 + 2\n")
	if len(tree.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(tree.Statements))
	}
	es, ok := tree.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ExpressionStatement", tree.Statements[0])
	}
	assign, ok := es.Expr.(*ast.AssignmentExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.AssignmentExpr", es.Expr)
	}
	v, ok := assign.Target.(*ast.VariableExpr)
	if !ok || v.Name != "x" {
		t.Fatalf("assignment target = %#v, want $x", assign.Target)
	}
	bin, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("assignment value = %#v, want 1 + 2", assign.Value)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	tree := mustParse(t, "$x = 1 + 2 * 3\n")
	assign := tree.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.AssignmentExpr)
	top, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || top.Op != ast.OpAdd {
		t.Fatalf("top-level op = %#v, want +", assign.Value)
	}
	right, ok := top.Right.(*ast.BinaryExpr)
	if !ok || right.Op != ast.OpMul {
		t.Fatalf("right-hand side = %#v, want 2 * 3 grouped by precedence", top.Right)
	}
}

func TestParseClassWithParamsAndInherits(t *testing.T) {
	tree := mustParse(t, "class apache(String $port = '80') inherits apache::base {\n}\n")
	if len(tree.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(tree.Statements))
	}
	c, ok := tree.Statements[0].(*ast.ClassStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ClassStatement", tree.Statements[0])
	}
	if c.Name != "apache" {
		t.Fatalf("Name = %q, want apache", c.Name)
	}
	if c.Parent != "apache::base" {
		t.Fatalf("Parent = %q, want apache::base", c.Parent)
	}
	if len(c.Parameters) != 1 || c.Parameters[0].Name != "port" {
		t.Fatalf("Parameters = %+v", c.Parameters)
	}
}

func TestParseDefinedType(t *testing.T) {
	tree := mustParse(t, "define webapp::vhost($port) {\n}\n")
	d, ok := tree.Statements[0].(*ast.DefinedTypeStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.DefinedTypeStatement", tree.Statements[0])
	}
	if d.Name != "webapp::vhost" {
		t.Fatalf("Name = %q, want webapp::vhost", d.Name)
	}
	if len(d.Parameters) != 1 || d.Parameters[0].Name != "port" {
		t.Fatalf("Parameters = %+v", d.Parameters)
	}
}

func TestParseNodeStatementMultipleNames(t *testing.T) {
	tree := mustParse(t, "node 'web01', default {\n}\n")
	n, ok := tree.Statements[0].(*ast.NodeStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.NodeStatement", tree.Statements[0])
	}
	if len(n.Names) != 2 {
		t.Fatalf("Names = %+v, want 2 entries", n.Names)
	}
	if !n.Names[1].IsDefault {
		t.Fatalf("second node name should be the default node, got %+v", n.Names[1])
	}
}

func TestParseResourceDeclaration(t *testing.T) {
	tree := mustParse(t, "file { '/tmp/x':\n  ensure => present,\n  mode   => '0644',\n}\n")
	r, ok := tree.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.ResourceExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.ResourceExpr", tree.Statements[0].(*ast.ExpressionStatement).Expr)
	}
	if r.TypeName != "file" {
		t.Fatalf("TypeName = %q, want file", r.TypeName)
	}
	if len(r.Bodies) != 1 || len(r.Bodies[0].Attributes) != 2 {
		t.Fatalf("Bodies = %+v", r.Bodies)
	}
}

func TestParseCollectorExpression(t *testing.T) {
	tree := mustParse(t, "File <| tag == 'web' |>\n")
	c, ok := tree.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.CollectorExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.CollectorExpr", tree.Statements[0].(*ast.ExpressionStatement).Expr)
	}
	if c.TypeName != "File" || c.Exported {
		t.Fatalf("CollectorExpr = %+v", c)
	}
	if c.Query == nil || c.Query.Attribute != "tag" {
		t.Fatalf("Query = %+v", c.Query)
	}
}

func TestParseRelationshipChainExpandsToMultipleStatements(t *testing.T) {
	tree := mustParse(t, "Package['httpd'] -> Service['httpd'] ~> Notify['done']\n")
	if len(tree.Statements) != 2 {
		t.Fatalf("expected 2 relationship statements, got %d: %+v", len(tree.Statements), tree.Statements)
	}
	first, ok := tree.Statements[0].(*ast.RelationshipStatement)
	if !ok || first.Kind != ast.RelBefore {
		t.Fatalf("first statement = %#v, want a RelBefore relationship", tree.Statements[0])
	}
	second, ok := tree.Statements[1].(*ast.RelationshipStatement)
	if !ok || second.Kind != ast.RelNotify {
		t.Fatalf("second statement = %#v, want a RelNotify relationship", tree.Statements[1])
	}
}

func TestParseBreakStatement(t *testing.T) {
	tree := mustParse(t, "function f() {\n  break()\n}\n")
	fn := tree.Statements[0].(*ast.FunctionStatement)
	if len(fn.Body) != 1 {
		t.Fatalf("function body = %+v, want 1 statement", fn.Body)
	}
	if _, ok := fn.Body[0].(*ast.BreakStatement); !ok {
		t.Fatalf("body statement = %T, want *ast.BreakStatement", fn.Body[0])
	}
}

func TestParseReturnWithValue(t *testing.T) {
	tree := mustParse(t, "function f() {\n  return(1)\n}\n")
	fn := tree.Statements[0].(*ast.FunctionStatement)
	ret, ok := fn.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("body statement = %T, want *ast.ReturnStatement", fn.Body[0])
	}
	if ret.Value == nil {
		t.Fatalf("expected a return value")
	}
}

func TestParseTypeAlias(t *testing.T) {
	tree := mustParse(t, "type Port = Integer[0, 65535]\n")
	ta, ok := tree.Statements[0].(*ast.TypeAliasStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.TypeAliasStatement", tree.Statements[0])
	}
	if ta.Name != "Port" {
		t.Fatalf("Name = %q, want Port", ta.Name)
	}
}

func TestParseProducesStatement(t *testing.T) {
	tree := mustParse(t, "produces Http {\n}\n")
	p, ok := tree.Statements[0].(*ast.ProducesStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ProducesStatement", tree.Statements[0])
	}
	if p.CapabilityType != "Http" {
		t.Fatalf("CapabilityType = %q, want Http", p.CapabilityType)
	}
}

func TestParseFunctionCallNamedSiteIsNotASiteStatement(t *testing.T) {
	tree := mustParse(t, "site(1)\n")
	es, ok := tree.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ExpressionStatement", tree.Statements[0])
	}
	call, ok := es.Expr.(*ast.FunctionCallExpr)
	if !ok || call.Name != "site" {
		t.Fatalf("expression is %#v, want a call to the function named site (site(1) is not the site{} keyword form)", es.Expr)
	}
}

func TestParseSiteStatement(t *testing.T) {
	tree := mustParse(t, "site {\n}\n")
	if _, ok := tree.Statements[0].(*ast.SiteStatement); !ok {
		t.Fatalf("statement is %T, want *ast.SiteStatement", tree.Statements[0])
	}
}

func TestParseRecoversFromSyntaxError(t *testing.T) {
	reporter := diagnostics.NewReporter()
	tree, err := parser.Parse("test.pp", "$x = )\n$y = 2\n", reporter)
	if err == nil {
		t.Fatalf("expected a syntax error to be reported")
	}
	if !reporter.HasErrors() {
		t.Fatalf("expected the reporter to have recorded an error")
	}
	found := false
	for _, s := range tree.Statements {
		if es, ok := s.(*ast.ExpressionStatement); ok {
			if assign, ok := es.Expr.(*ast.AssignmentExpr); ok {
				if v, ok := assign.Target.(*ast.VariableExpr); ok && v.Name == "y" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("expected parsing to recover and still find $y = 2, statements: %+v", tree.Statements)
	}
}

func TestParseExpressionEntrypoint(t *testing.T) {
	reporter := diagnostics.NewReporter()
	expr, err := parser.ParseExpression("test.pp", "1 + 1", reporter)
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if _, ok := expr.(*ast.BinaryExpr); !ok {
		t.Fatalf("expr = %T, want *ast.BinaryExpr", expr)
	}
}

func TestParseStatementsEntrypoint(t *testing.T) {
	reporter := diagnostics.NewReporter()
	stmts, err := parser.ParseStatements("test.pp", "$x = 1\n$y = 2\n", reporter)
	if err != nil {
		t.Fatalf("ParseStatements: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
}

func TestParseParameterHeaderEntrypoint(t *testing.T) {
	reporter := diagnostics.NewReporter()
	params, err := parser.ParseParameterHeader("test.epp", "| String $name, Integer $port = 80 |", reporter)
	if err != nil {
		t.Fatalf("ParseParameterHeader: %v", err)
	}
	if len(params) != 2 || params[0].Name != "name" || params[1].Name != "port" {
		t.Fatalf("params = %+v", params)
	}
	if params[1].Default == nil {
		t.Fatalf("expected port to have a default expression")
	}
}
