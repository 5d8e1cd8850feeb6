package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/relaygraph/internal/language"
)

// BuildFromSDL loads SDL, validates it with gqlparser and converts it to a
// Schema. Root types default to Query and Mutation when the SDL has no schema
// definition. Interfaces, unions and subscriptions are rejected.
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := language.LoadSchema("schema.graphql", sdl)
	if err != nil {
		return nil, fmt.Errorf("load sdl: %w", err)
	}
	if doc.Subscription != nil {
		return nil, errors.New("load sdl: subscriptions are not supported")
	}

	s := NewSchema("")
	AddBuiltins(s)
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}

	names := make([]string, 0, len(doc.Types))
	for name, def := range doc.Types {
		if !def.BuiltIn {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		t, err := convertDefinition(doc.Types[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.AddType(t)
	}
	for _, dir := range doc.Directives {
		if dir.Position != nil && dir.Position.Src != nil && dir.Position.Src.BuiltIn {
			continue
		}
		s.AddDirective(convertDirective(dir))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("load sdl: %w", err)
	}
	return s, nil
}

func convertDefinition(def *ast.Definition) (*Type, error) {
	t := NewType(def.Name, "", def.Description)
	switch def.Kind {
	case ast.Scalar:
		t.Kind = TypeKindScalar
	case ast.Object:
		t.Kind = TypeKindObject
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			field := NewField(f.Name, f.Description, convertType(f.Type))
			if reason, ok := deprecation(f.Directives); ok {
				field.Deprecate(reason)
			}
			for _, arg := range f.Arguments {
				field.AddArgument(convertInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives))
			}
			t.AddField(field)
		}
	case ast.InputObject:
		t.Kind = TypeKindInputObject
		for _, f := range def.Fields {
			t.AddInputField(convertInputValue(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
		}
	case ast.Enum:
		t.Kind = TypeKindEnum
		for _, v := range def.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.AddEnumValue(ev)
		}
	default:
		return nil, fmt.Errorf("type %s: %s types are not supported", def.Name, strings.ToLower(string(def.Kind)))
	}
	return t, nil
}

func convertDirective(dir *ast.DirectiveDefinition) *Directive {
	d := NewDirective(dir.Name, dir.Description)
	d.IsRepeatable = dir.IsRepeatable
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		d.AddArgument(convertInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives))
	}
	return d
}

func convertInputValue(name, description string, typ *ast.Type, def *ast.Value, dirs ast.DirectiveList) *InputValue {
	in := NewInputValue(name, description, convertType(typ))
	if def != nil {
		if v, err := def.Value(nil); err == nil {
			in.SetDefault(v)
		}
	}
	if reason, ok := deprecation(dirs); ok {
		in.Deprecate(reason)
	}
	return in
}

func convertType(t *ast.Type) *TypeRef {
	ref := NamedType(t.NamedType)
	if t.Elem != nil {
		ref = ListType(convertType(t.Elem))
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return DefaultDeprecationReason, true
}
