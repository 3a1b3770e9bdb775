package evaluator

import (
	"testing"

	"github.com/puppetlabs/go-puppet/internal/types"
)

func TestMultiTitleRefsFlattensStringArgs(t *testing.T) {
	v, ok := multiTitleRefs("File", []types.Value{types.String("a"), types.String("b")})
	if !ok {
		t.Fatalf("expected multiTitleRefs to accept two String titles")
	}
	arr, ok := v.(types.Array)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("expected a 2-element Array, got %#v", v)
	}
	for i, title := range []string{"a", "b"} {
		ref, ok := arr.Elements[i].(types.TypeRef)
		if !ok {
			t.Fatalf("element %d is not a TypeRef: %#v", i, arr.Elements[i])
		}
		rt, ok := ref.Type.(types.ResourceType)
		if !ok || rt.TypeName != "File" || rt.Title != title {
			t.Fatalf("element %d: got %#v, want File[%s]", i, ref.Type, title)
		}
	}
}

func TestMultiTitleRefsRejectsSingleTitle(t *testing.T) {
	if _, ok := multiTitleRefs("File", []types.Value{types.String("a")}); ok {
		t.Fatalf("a single title must fall through to types.Build, not multiTitleRefs")
	}
}

func TestMultiTitleRefsRejectsNonStringArg(t *testing.T) {
	if _, ok := multiTitleRefs("File", []types.Value{types.String("a"), types.Integer(1)}); ok {
		t.Fatalf("a non-String argument must fall through to types.Build")
	}
}

func TestIsBuiltinTypeNameDistinguishesPlainResourceTypes(t *testing.T) {
	for _, name := range []string{"Integer", "Hash", "Variant", "Optional"} {
		if !types.IsBuiltinTypeName(name) {
			t.Errorf("%s should be a recognized built-in type name", name)
		}
	}
	for _, name := range []string{"File", "Service", "My::DefinedType"} {
		if types.IsBuiltinTypeName(name) {
			t.Errorf("%s is a plain resource type, not a built-in", name)
		}
	}
}
