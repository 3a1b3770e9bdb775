package evaluator

import (
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// evalAssignment requires the left side to be a bare
// `$name`; the name may not contain `::` (only the top scope's own
// variables are locally assignable) or begin with a digit, and a second
// assignment to the same name in the same scope is an error (enforced
// by scope.Scope.Set itself).
func (ev *Evaluator) evalAssignment(a *ast.AssignmentExpr) (types.Value, error) {
	target, ok := a.Target.(*ast.VariableExpr)
	if !ok {
		return nil, ev.fail(a.Range(), fmt.Errorf("illegal assignment target: only a bare $variable may be assigned"))
	}
	if err := validateAssignmentName(target.Name); err != nil {
		return nil, ev.fail(target.Range(), err)
	}
	value, err := ev.evalExpr(a.Value)
	if err != nil {
		return nil, err
	}
	if err := ev.currentScope().Set(target.Name, value, a.Range(), ev.Ctx.Source); err != nil {
		return nil, ev.fail(a.Range(), err)
	}
	return value, nil
}

func validateAssignmentName(name string) error {
	if name == "" {
		return fmt.Errorf("cannot assign to an empty variable name")
	}
	if strings.Contains(name, "::") {
		return fmt.Errorf("cannot assign to out-of-scope variable $%s", name)
	}
	if name[0] >= '0' && name[0] <= '9' {
		return fmt.Errorf("cannot assign to $%s: the name is reserved as a match variable.", name)
	}
	return nil
}
