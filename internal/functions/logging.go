package functions

import (
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/types"
)

// emergencyClass functions record against the calling scope rather than
// the current scope.
var emergencyClass = map[string]bool{
	"err": true, "alert": true, "emerg": true, "crit": true,
}

func init() {
	for _, level := range []string{"alert", "emerg", "err", "info", "notice", "warning", "debug", "crit"} {
		level := level
		register(level, Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
			return types.UndefV, logFn(c, level)
		}})
	}
}

// logFn formats its arguments with a single space and emits them at
// the named severity through the logger of the evaluation context.
func logFn(c *CallContext, level string) error {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.Inspect()
	}
	message := strings.Join(parts, " ")

	var resource interface{}
	if emergencyClass[level] {
		if c.CallingResource != nil {
			resource = c.CallingResource()
		}
	} else if c.CurrentResource != nil {
		resource = c.CurrentResource()
	}

	scopeName := ""
	if resource != nil {
		scopeName = fmt.Sprintf("%v", resource)
	}
	if c.Eval != nil && c.Eval.Logger != nil {
		c.Eval.Logger.Log(level, scopeName, message)
	}
	return nil
}
