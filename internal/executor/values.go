package executor

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	language "github.com/hanpama/relaygraph/internal/language"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// coerceVariableValues coerces the provided variables against the
// operation's definitions. Omitted variables take their default; omitted
// nullable variables without one stay absent.
func coerceVariableValues(sch *schema.Schema, op *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		raw, ok := provided[def.Variable]
		if !ok {
			switch {
			case def.DefaultValue != nil:
				raw = valueFromAST(def.DefaultValue, nil)
			case def.Type.NonNull:
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", def.Variable, def.Type.String())
			default:
				continue
			}
		}
		v, err := coerceValue(sch, raw, typeRefFromAST(def.Type))
		if err != nil {
			return nil, fmt.Errorf("variable $%s got invalid value: %w", def.Variable, err)
		}
		out[def.Variable] = v
	}
	return out, nil
}

// coerceArguments coerces the arguments of one field. Failures are recorded as
// field errors at path and reported through ok.
func (ex *execution) coerceArguments(def *schema.Field, args language.ArgumentList, path Path) (_ map[string]any, ok bool) {
	out := make(map[string]any, len(def.Arguments))
	ok = true
	for _, argDef := range def.Arguments {
		raw, present := ex.argumentValue(args.ForName(argDef.Name))
		if !present {
			switch {
			case argDef.DefaultValue != nil:
				out[argDef.Name] = argDef.DefaultValue
			case schema.IsNonNull(argDef.Type):
				ex.addError(fmt.Sprintf("argument '%s' of required type %s was not provided", argDef.Name, argDef.Type), path)
				ok = false
			}
			continue
		}
		v, err := coerceValue(ex.schema, raw, argDef.Type)
		if err != nil {
			ex.addError(fmt.Sprintf("argument '%s' cannot be coerced: %v", argDef.Name, err), path)
			ok = false
			continue
		}
		out[argDef.Name] = v
	}
	return out, ok
}

// argumentValue reads a literal argument. An argument bound to a variable
// that was not provided counts as absent.
func (ex *execution) argumentValue(arg *language.Argument) (any, bool) {
	if arg == nil {
		return nil, false
	}
	if arg.Value.Kind == language.Variable {
		v, ok := ex.variables[arg.Value.Raw]
		return v, ok
	}
	return valueFromAST(arg.Value, ex.variables), true
}

// valueFromAST converts a literal to Go values, substituting variables.
// Object fields bound to missing variables are left out.
func valueFromAST(v *language.Value, variables map[string]any) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case language.Variable:
		return variables[v.Raw]
	case language.IntValue:
		n, _ := strconv.Atoi(v.Raw)
		return n
	case language.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case language.BooleanValue:
		return v.Raw == "true"
	case language.StringValue, language.BlockValue, language.EnumValue:
		return v.Raw
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = valueFromAST(c.Value, variables)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			if c.Value.Kind == language.Variable {
				if _, ok := variables[c.Value.Raw]; !ok {
					continue
				}
			}
			out[c.Name] = valueFromAST(c.Value, variables)
		}
		return out
	}
	return nil
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	ref := schema.NamedType(t.NamedType)
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}

// coerceValue coerces an input value to typ. Input objects are checked
// field by field; recursion follows the value, so recursive input types
// terminate.
func coerceValue(sch *schema.Schema, value any, typ *schema.TypeRef) (any, error) {
	if schema.IsNonNull(typ) {
		if value == nil {
			return nil, fmt.Errorf("null given for non-null type %s", typ)
		}
		return coerceValue(sch, value, typ.OfType)
	}
	if value == nil {
		return nil, nil
	}
	if typ.Kind == schema.TypeRefKindList {
		items, ok := value.([]any)
		if !ok {
			// A single value is accepted as a list of one.
			items = []any{value}
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := coerceValue(sch, item, typ.OfType)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}

	if coerce, ok := builtinScalars[typ.Named]; ok {
		return coerce(value)
	}
	var def *schema.Type
	if sch != nil {
		def = sch.Types[typ.Named]
	}
	switch {
	case def == nil:
		return nil, fmt.Errorf("unknown type %s", typ.Named)
	case def.Kind == schema.TypeKindInputObject:
		return coerceInputObject(sch, value, def)
	case def.Kind == schema.TypeKindEnum:
		name, ok := value.(string)
		if !ok || def.EnumValue(name) == nil {
			return nil, fmt.Errorf("%s has no value %v", def.Name, value)
		}
		return name, nil
	case def.Kind == schema.TypeKindScalar:
		return value, nil
	}
	return nil, fmt.Errorf("%s is not an input type", def.Name)
}

// coerceInputObject keeps omitted fields without a default absent so that
// resolvers can tell "omitted" from an explicit null.
func coerceInputObject(sch *schema.Schema, value any, def *schema.Type) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected input object %s, got %T", def.Name, value)
	}
	for name := range obj {
		if def.InputField(name) == nil {
			return nil, fmt.Errorf("field '%s' is not defined by type %s", name, def.Name)
		}
	}
	out := make(map[string]any, len(obj))
	for _, field := range def.InputFields {
		raw, present := obj[field.Name]
		if !present {
			if field.DefaultValue != nil {
				out[field.Name] = field.DefaultValue
			} else if schema.IsNonNull(field.Type) {
				return nil, fmt.Errorf("required field '%s' of type %s was not provided", field.Name, def.Name)
			}
			continue
		}
		v, err := coerceValue(sch, raw, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s' of type %s: %w", field.Name, def.Name, err)
		}
		out[field.Name] = v
	}
	return out, nil
}

var builtinScalars = map[string]func(any) (any, error){
	"Int":     coerceInt,
	"Float":   coerceFloat,
	"String":  coerceString,
	"Boolean": coerceBoolean,
	"ID":      coerceID,
}

func coerceInt(value any) (any, error) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("Int cannot represent non-integer value %v", v)
		}
		n = int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent %s", v)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("cannot coerce %v (%T) to Int", value, value)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value %d", n)
	}
	return int(n), nil
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Float", value, value)
}

func coerceString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to String", value, value)
}

func coerceBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", value, value)
}

func coerceID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), nil
		}
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return v.String(), nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to ID", value, value)
}
