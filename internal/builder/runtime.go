package builder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	eventbus "github.com/hanpama/relaygraph/internal/eventbus"
	events "github.com/hanpama/relaygraph/internal/events"
	executor "github.com/hanpama/relaygraph/internal/executor"
	"github.com/hanpama/relaygraph/internal/globalid"
)

// runtime resolves fields declared through a Builder. It is immutable once
// ToSchema returns and safe for concurrent use.
type runtime struct {
	codec        globalid.Codec
	concurrency  int
	mutationType string
	objects      map[string]map[string]*Field
	inputs       map[string][]*InputField
}

var _ executor.Runtime = (*runtime)(nil)

func (r *runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return r.resolve(ctx, objectType, field, source, args)
}

// errMutationSkipped fills the results of mutation root fields left unrun
// after an earlier Non-Null root field came back null.
var errMutationSkipped = errors.New("mutation skipped after an earlier root field failed")

// BatchResolveAsync runs mutation root tasks one after another in task order
// and every other batch concurrently, bounded by the configured concurrency.
// A null from a Non-Null mutation root field nulls the whole response, so the
// serial loop stops there.
func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if r.serial(tasks) {
		stopped := false
		for i, task := range tasks {
			if stopped {
				results[i] = executor.AsyncResolveResult{Error: errMutationSkipped}
				continue
			}
			v, err := r.resolve(ctx, task.ObjectType, task.Field, task.Source, task.Args)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
			stopped = (err != nil || v == nil) && !r.nullable(task)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			v, err := r.resolve(ctx, task.ObjectType, task.Field, task.Source, task.Args)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *runtime) nullable(task executor.AsyncResolveTask) bool {
	field, ok := r.objects[task.ObjectType][task.Field]
	return !ok || field.nullable
}

func (r *runtime) serial(tasks []executor.AsyncResolveTask) bool {
	if r.mutationType == "" {
		return false
	}
	for _, task := range tasks {
		if task.ObjectType == r.mutationType && task.Source == nil {
			return true
		}
	}
	return false
}

func (r *runtime) SerializeLeafValue(_ context.Context, typeName string, value any) (any, error) {
	value = indirect(value)
	if value == nil {
		return nil, nil
	}
	switch ScalarRef(typeName) {
	case String:
		switch v := value.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}
		return nil, fmt.Errorf("String cannot represent value: %v", value)
	case ID:
		switch v := value.(type) {
		case string:
			return v, nil
		case globalid.ID:
			return r.codec.Encode(v.Typename, v.ID), nil
		}
		if n, ok := toInt64(value); ok {
			return strconv.FormatInt(n, 10), nil
		}
		return nil, fmt.Errorf("ID cannot represent value: %v", value)
	case Boolean:
		if v, ok := value.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", value)
	case Int:
		if n, ok := toInt64(value); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int(n), nil
		}
		if f, ok := value.(float64); ok && f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			return int(f), nil
		}
		return nil, fmt.Errorf("Int cannot represent value: %v", value)
	case Float:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		}
		if n, ok := toInt64(value); ok {
			return float64(n), nil
		}
		return nil, fmt.Errorf("Float cannot represent value: %v", value)
	}
	return value, nil
}

func (r *runtime) resolve(ctx context.Context, objectType, fieldName string, source any, raw map[string]any) (any, error) {
	field := r.objects[objectType][fieldName]
	if field == nil {
		return nil, fmt.Errorf("no resolver for %s.%s", objectType, fieldName)
	}
	args, err := r.decodeArgs(field.args, raw)
	if err != nil {
		return nil, err
	}
	if p, ok := source.(*relayPayload); ok && !field.rawParent {
		source = p.value
	}

	var value any
	if field.resolve == nil {
		value = property(source, fieldName)
	} else {
		eventbus.Publish(ctx, events.FieldResolveStart{ObjectType: objectType, Field: fieldName, Async: field.async})
		start := time.Now()
		value, err = field.resolve(ctx, source, args)
		eventbus.Publish(ctx, events.FieldResolveFinish{
			ObjectType: objectType,
			Field:      fieldName,
			Async:      field.async,
			Err:        err,
			Start:      start,
			Duration:   time.Since(start),
		})
		if err != nil {
			return nil, err
		}
	}
	if field.globalID {
		return r.encodeGlobalIDs(value)
	}
	return value, nil
}

// decodeArgs converts coerced executor values into Args, decoding global IDs
// and nested input objects. Recursion follows the supplied value, so
// self-referencing input types terminate with the input.
func (r *runtime) decodeArgs(defs []*InputField, raw map[string]any) (Args, error) {
	args := make(Args, len(raw))
	for _, def := range defs {
		v, ok := raw[def.name]
		if !ok {
			continue
		}
		decoded, err := r.decodeInput(def, v)
		if err != nil {
			return nil, err
		}
		args[def.name] = decoded
	}
	return args, nil
}

func (r *runtime) decodeInput(def *InputField, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if !def.list {
		return r.decodeItem(def, v)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, NewInputError(fmt.Sprintf("expected a list for %s, got %T", def.name, v))
	}
	out := make([]any, len(items))
	for i, item := range items {
		decoded, err := r.decodeItem(def, item)
		if err != nil {
			return nil, err
		}
		out[i] = decoded
	}
	return out, nil
}

func (r *runtime) decodeItem(def *InputField, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if def.globalID {
		token, ok := v.(string)
		if !ok {
			return nil, NewInputError(fmt.Sprintf("expected a global ID for %s, got %T", def.name, v))
		}
		id, err := r.codec.Decode(token)
		if err != nil {
			return nil, NewInputError(fmt.Sprintf("%s: %v", def.name, err))
		}
		return id, nil
	}
	fields, ok := r.inputs[def.typ.TypeName()]
	if !ok {
		return v, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, NewInputError(fmt.Sprintf("expected an input object for %s, got %T", def.name, v))
	}
	return r.decodeArgs(fields, obj)
}

func (r *runtime) encodeGlobalIDs(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case globalid.ID:
		return r.codec.Encode(v.Typename, v.ID), nil
	case *globalid.ID:
		if v == nil {
			return nil, nil
		}
		return r.codec.Encode(v.Typename, v.ID), nil
	case string:
		return v, nil
	case []globalid.ID:
		out := make([]any, len(v))
		for i, id := range v {
			out[i] = r.codec.Encode(id.Typename, id.ID)
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			encoded, err := r.encodeGlobalIDs(item)
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot encode %T as a global ID", value)
}

// property reads name from a map or struct parent. Struct fields match by
// json tag first, then case-insensitively by field name.
func property(source any, name string) any {
	switch s := source.(type) {
	case nil:
		return nil
	case map[string]any:
		return s[name]
	case Args:
		return s[name]
	}
	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if tag == name {
				return rv.Field(i).Interface()
			}
		}
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if sf.IsExported() && strings.EqualFold(sf.Name, name) {
				return rv.Field(i).Interface()
			}
		}
	}
	return nil
}

func indirect(value any) any {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}
