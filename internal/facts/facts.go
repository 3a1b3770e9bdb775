// Package facts models the external fact provider the compiler depends
// on but does not itself gather: it defines the Provider interface the
// core depends on and one concrete, file-backed implementation for the
// common case of a pre-loaded facts file.
package facts

import (
	"os"

	"github.com/puppetlabs/go-puppet/internal/types"
	"gopkg.in/yaml.v3"
)

// Provider delivers a flat map of host attributes on demand. A real
// deployment would back this with Facter; the core only depends on this
// interface.
type Provider interface {
	Fact(name string) (types.Value, bool)
	Names() []string
}

// StaticProvider is a Provider backed by an in-memory map, used directly
// by tests and returned by LoadFile once it has read a facts file.
type StaticProvider struct {
	values map[string]types.Value
}

// NewStatic builds a StaticProvider from a plain Go map, converting each
// entry to a runtime Value via FromGo.
func NewStatic(raw map[string]interface{}) *StaticProvider {
	values := make(map[string]types.Value, len(raw))
	for k, v := range raw {
		values[k] = FromGo(v)
	}
	return &StaticProvider{values: values}
}

func (p *StaticProvider) Fact(name string) (types.Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *StaticProvider) Names() []string {
	names := make([]string, 0, len(p.values))
	for k := range p.values {
		names = append(names, k)
	}
	return names
}

// LoadFile reads a YAML-formatted facts file (Facter's on-disk cache
// format) at path, as named by the `facts` setting.
func LoadFile(path string) (Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return NewStatic(raw), nil
}

// FromGo converts a plain Go value (as produced by yaml/json unmarshal
// into interface{}) into a runtime Value.
func FromGo(v interface{}) types.Value {
	switch val := v.(type) {
	case nil:
		return types.UndefV
	case bool:
		return types.Boolean(val)
	case int:
		return types.Integer(int64(val))
	case int64:
		return types.Integer(val)
	case float64:
		if val == float64(int64(val)) {
			return types.Integer(int64(val))
		}
		return types.Float(val)
	case string:
		return types.String(val)
	case []interface{}:
		elems := make([]types.Value, len(val))
		for i, e := range val {
			elems[i] = FromGo(e)
		}
		return types.Array{Elements: elems}
	case map[string]interface{}:
		h := types.NewHash()
		for k, e := range val {
			h.Set(types.String(k), FromGo(e))
		}
		return h
	case map[interface{}]interface{}:
		h := types.NewHash()
		for k, e := range val {
			h.Set(FromGo(k), FromGo(e))
		}
		return h
	default:
		return types.UndefV
	}
}
