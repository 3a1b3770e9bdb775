package evaluator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// EvalNode selects the node definition matching the compiling host's
// identity and evaluates its body at top scope. A manifest with no node
// statements at all leaves the catalog untouched by this call.
func (ev *Evaluator) EvalNode() (types.Value, error) {
	if len(ev.nodes) == 0 {
		return types.UndefV, nil
	}
	certname := ev.nodeIdentity()
	n := ev.selectNode(certname)
	if n == nil {
		return nil, fmt.Errorf("no matching node definition for %q", certname)
	}
	frameTok := ev.Ctx.PushFrame(evalctx.Frame{Name: "node", Range: n.Range(), Scope: ev.currentScope()})
	defer frameTok.Unwind()
	matchTok := ev.Ctx.PushMatches(nil)
	defer matchTok.Unwind()
	return ev.evalStatements(n.Body)
}

// nodeIdentity asks the fact provider for the name the compiling host is
// known by, trying the usual certname-ish facts in order of preference.
func (ev *Evaluator) nodeIdentity() string {
	for _, name := range []string{"certname", "fqdn", "hostname"} {
		if v, ok := ev.Ctx.Facts.Fact(name); ok {
			if s, ok := v.(types.String); ok && s != "" {
				return string(s)
			}
		}
	}
	return ""
}

// selectNode implements node name matching: exact literal names win over
// regexes, which win over `default`; exact names compare
// case-insensitively, regexes do not.
func (ev *Evaluator) selectNode(certname string) *ast.NodeStatement {
	for _, n := range ev.nodes {
		for _, name := range n.Names {
			if !name.IsRegex && !name.IsDefault && strings.EqualFold(name.Literal, certname) {
				return n
			}
		}
	}
	for _, n := range ev.nodes {
		for _, name := range n.Names {
			if name.IsRegex {
				re, err := regexp.Compile(name.Literal)
				if err != nil {
					continue
				}
				if re.MatchString(certname) {
					return n
				}
			}
		}
	}
	for _, n := range ev.nodes {
		for _, name := range n.Names {
			if name.IsDefault {
				return n
			}
		}
	}
	return nil
}
