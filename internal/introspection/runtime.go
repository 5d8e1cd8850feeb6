// Package introspection answers the __schema and __type meta fields and the
// fields of the __ meta types. Every other field goes to the wrapped runtime.
package introspection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	executor "github.com/hanpama/relaygraph/internal/executor"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// Wrapped is a schema extended with the meta types together with the runtime
// that resolves them.
type Wrapped struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap adds introspection to base. sch is not modified.
func Wrap(base executor.Runtime, sch *schema.Schema) *Wrapped {
	extended := extend(sch)
	return &Wrapped{
		Runtime: &runtime{base: base, schema: extended},
		Schema:  extended,
	}
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

// typeView is the __Type source. Named types carry def; LIST and NON_NULL
// wrappers carry ref.
type typeView struct {
	def *schema.Type
	ref *schema.TypeRef
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return &typeView{def: t}, nil
			}
			return nil, nil
		}
	}
	if !strings.HasPrefix(objectType, "__") {
		return r.base.ResolveSync(ctx, objectType, field, source, args)
	}

	var (
		value any
		ok    bool
	)
	switch src := source.(type) {
	case *schema.Schema:
		value, ok = r.schemaField(src, field)
	case *typeView:
		value, ok = r.typeField(src, field, args)
	case *schema.Field:
		value, ok = fieldField(src, field, args)
	case *schema.InputValue:
		value, ok = inputValueField(src, field)
	case *schema.EnumValue:
		value, ok = enumValueField(src, field)
	case *schema.Directive:
		value, ok = directiveField(src, field, args)
	default:
		return nil, fmt.Errorf("introspection: unexpected %T source for %s.%s", source, objectType, field)
	}
	if !ok {
		// Meta fields this server has no data for, such as specifiedByURL.
		return nil, nil
	}
	if ref, isRef := value.(*schema.TypeRef); isRef {
		return r.view(ref), nil
	}
	return value, nil
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

// SerializeLeafValue passes __TypeKind and __DirectiveLocation through and
// leaves every other leaf to base.
func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	if strings.HasPrefix(typ, "__") {
		return value, nil
	}
	return r.base.SerializeLeafValue(ctx, typ, value)
}

func (r *runtime) view(ref *schema.TypeRef) *typeView {
	if ref.Kind != schema.TypeRefKindNamed {
		return &typeView{ref: ref}
	}
	if t := r.schema.Types[ref.Named]; t != nil {
		return &typeView{def: t}
	}
	return nil
}

func (r *runtime) schemaField(s *schema.Schema, field string) (any, bool) {
	switch field {
	case "description":
		return optString(s.Description), true
	case "types":
		names := make([]string, 0, len(s.Types))
		for name := range s.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]*typeView, len(names))
		for i, name := range names {
			out[i] = &typeView{def: s.Types[name]}
		}
		return out, true
	case "queryType":
		return &typeView{def: s.GetQueryType()}, true
	case "mutationType":
		if t := s.GetMutationType(); t != nil {
			return &typeView{def: t}, true
		}
		return nil, true
	case "directives":
		out := make([]*schema.Directive, 0, len(s.Directives))
		for _, d := range s.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, true
	}
	return nil, false
}

func (r *runtime) typeField(v *typeView, field string, args map[string]any) (any, bool) {
	if v.def == nil {
		switch field {
		case "kind":
			return string(v.ref.Kind), true
		case "ofType":
			return r.view(v.ref.OfType), true
		}
		return nil, false
	}

	t := v.def
	switch field {
	case "kind":
		return string(t.Kind), true
	case "name":
		return t.Name, true
	case "description":
		return optString(t.Description), true
	case "fields":
		if t.Kind != schema.TypeKindObject {
			return nil, true
		}
		var out []*schema.Field
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, "__") || (f.IsDeprecated && !includeDeprecated(args)) {
				continue
			}
			out = append(out, f)
		}
		return nonNilSlice(out), true
	case "interfaces":
		if t.Kind != schema.TypeKindObject {
			return nil, true
		}
		return []*typeView{}, true
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, true
		}
		var out []*schema.EnumValue
		for _, ev := range t.EnumValues {
			if !ev.IsDeprecated || includeDeprecated(args) {
				out = append(out, ev)
			}
		}
		return nonNilSlice(out), true
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return inputValues(t.InputFields, args), true
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return false, true
	}
	return nil, false
}

func fieldField(f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return optString(f.Description), true
	case "args":
		return inputValues(f.Arguments, args), true
	case "type":
		return f.Type, true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), true
	}
	return nil, false
}

func inputValueField(v *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "description":
		return optString(v.Description), true
	case "type":
		return v.Type, true
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, true
		}
		return schema.FormatValue(v.DefaultValue), true
	case "isDeprecated":
		return v.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), true
	}
	return nil, false
}

func enumValueField(v *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "description":
		return optString(v.Description), true
	case "isDeprecated":
		return v.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), true
	}
	return nil, false
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return optString(d.Description), true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		return d.Locations, true
	case "args":
		return inputValues(d.Arguments, args), true
	}
	return nil, false
}

func inputValues(values []*schema.InputValue, args map[string]any) []*schema.InputValue {
	var out []*schema.InputValue
	for _, v := range values {
		if !v.IsDeprecated || includeDeprecated(args) {
			out = append(out, v)
		}
	}
	return nonNilSlice(out)
}

func includeDeprecated(args map[string]any) bool {
	v, _ := args["includeDeprecated"].(bool)
	return v
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

// optString maps an empty description to null.
func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
