package epp

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/parser"
)

// Parsed is a template's source split into tags, with the leading
// parameter header (if any) already parsed out of the tag stream.
type Parsed struct {
	Params []*ast.Parameter
	Tags   []Tag
}

// Parse scans source and parses any embedded Puppet source it contains:
// the parameter header (if the template opens with one) and each
// expression/code tag's content. path is used only to label diagnostics.
func Parse(path, source string) (*Parsed, error) {
	tags := Scan(source)
	out := &Parsed{}
	for _, t := range tags {
		if t.Kind == Params {
			reporter := diagnostics.NewReporter()
			params, err := parser.ParseParameterHeader(path, t.Content, reporter)
			if err != nil {
				return nil, fmt.Errorf("epp parameter header: %w", err)
			}
			out.Params = params
			continue
		}
		out.Tags = append(out.Tags, t)
	}
	return out, nil
}
