package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	language "github.com/hanpama/relaygraph/internal/language"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// ExecuteRequest runs one operation of document. operationName may be empty
// when the document holds a single operation. initialValue is the source of
// the root fields.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	op, err := selectOperation(document, operationName)
	if err != nil {
		return requestError(err.Error())
	}
	root, err := e.rootType(op.Operation)
	if err != nil {
		return requestError(err.Error())
	}
	variables, err := coerceVariableValues(e.schema, op, variableValues)
	if err != nil {
		return requestError(err.Error())
	}

	ex := &execution{
		ctx:       ctx,
		runtime:   e.runtime,
		schema:    e.schema,
		document:  document,
		variables: variables,
		data:      make(map[string]any),
	}
	rootSlot := &slot{set: func(any) { ex.data = nil }}
	ex.executeSelectionSet(root, op.SelectionSet, initialValue, nil, rootSlot, ex.data)
	for len(ex.pending) > 0 {
		ex.flush()
	}

	res := &ExecutionResult{Errors: ex.errors}
	if ex.data != nil {
		res.Data = ex.data
	}
	return res
}

func (e *Executor) rootType(op language.Operation) (*schema.Type, error) {
	var t *schema.Type
	switch op {
	case language.Query:
		t = e.schema.GetQueryType()
	case language.Mutation:
		t = e.schema.GetMutationType()
	default:
		return nil, fmt.Errorf("%s operations are not supported", op)
	}
	if t == nil {
		return nil, fmt.Errorf("schema is not configured for %s operations", op)
	}
	return t, nil
}

func selectOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name != "" {
		if op := doc.Operations.ForName(name); op != nil {
			return op, nil
		}
		return nil, fmt.Errorf("unknown operation named %q", name)
	}
	switch len(doc.Operations) {
	case 0:
		return nil, errors.New("document does not contain an operation")
	case 1:
		return doc.Operations[0], nil
	}
	return nil, errors.New("must provide operation name if query contains multiple operations")
}

// execution is the state of one ExecuteRequest call.
type execution struct {
	ctx       context.Context
	runtime   Runtime
	schema    *schema.Schema
	document  *language.QueryDocument
	variables map[string]any

	data    map[string]any
	pending []*pendingField
	errors  []GraphQLError
}

// slot is a position in the response tree that receives one value: a field
// of a result object, a list item or the data root. Slots form a tree so that
// a null in a Non-Null position can be moved to the nearest nullable
// ancestor.
type slot struct {
	parent  *slot
	set     func(v any)
	nonNull bool
	dead    bool
}

// alive reports whether the value written to s can still reach the response.
func (s *slot) alive() bool {
	for ; s != nil; s = s.parent {
		if s.dead {
			return false
		}
	}
	return true
}

// pendingField is an async field waiting for the next batch.
type pendingField struct {
	task   AsyncResolveTask
	typ    *schema.TypeRef
	fields []*language.Field
	path   Path
	slot   *slot
}

func (ex *execution) executeSelectionSet(objectType *schema.Type, selections language.SelectionSet, source any, path Path, parent *slot, out map[string]any) {
	for _, group := range ex.collectFields(objectType, selections) {
		key := group.responseName
		if group.fields[0].Name == "__typename" {
			out[key] = objectType.Name
			continue
		}
		fieldPath := path.append(key)
		def := objectType.Field(group.fields[0].Name)
		if def == nil {
			ex.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", group.fields[0].Name, objectType.Name), fieldPath)
			continue
		}
		s := &slot{parent: parent, nonNull: schema.IsNonNull(def.Type), set: func(v any) { out[key] = v }}
		out[key] = nil
		ex.executeField(objectType, def, group.fields, source, fieldPath, s)
		if !parent.alive() {
			return
		}
	}
}

func (ex *execution) executeField(objectType *schema.Type, def *schema.Field, fields []*language.Field, source any, path Path, s *slot) {
	args, ok := ex.coerceArguments(def, fields[0].Arguments, path)
	if !ok {
		// Argument errors are field errors; the resolver never runs.
		ex.null(s)
		return
	}
	if def.Async {
		ex.pending = append(ex.pending, &pendingField{
			task:   AsyncResolveTask{ObjectType: objectType.Name, Field: def.Name, Source: source, Args: args},
			typ:    def.Type,
			fields: fields,
			path:   path,
			slot:   s,
		})
		return
	}
	value, err := ex.runtime.ResolveSync(ex.ctx, objectType.Name, def.Name, source, args)
	if err != nil {
		ex.addResolverError(err, path)
		ex.null(s)
		return
	}
	ex.complete(def.Type, fields, value, path, s)
}

// flush resolves the queued async fields as one batch and completes them.
// Fields whose position was nullified meanwhile are dropped.
func (ex *execution) flush() {
	batch := make([]*pendingField, 0, len(ex.pending))
	for _, p := range ex.pending {
		if p.slot.alive() {
			batch = append(batch, p)
		}
	}
	ex.pending = nil
	if len(batch) == 0 {
		return
	}

	tasks := make([]AsyncResolveTask, len(batch))
	for i, p := range batch {
		tasks[i] = p.task
	}
	results := ex.runtime.BatchResolveAsync(ex.ctx, tasks)

	for i, p := range batch {
		if !p.slot.alive() {
			continue
		}
		if i >= len(results) {
			ex.addError(fmt.Sprintf("no result for %s.%s", p.task.ObjectType, p.task.Field), p.path)
			ex.null(p.slot)
			continue
		}
		if err := results[i].Error; err != nil {
			ex.addResolverError(err, p.path)
			ex.null(p.slot)
			continue
		}
		ex.complete(p.typ, p.fields, results[i].Value, p.path, p.slot)
	}
}

// complete writes the completed form of value into s.
func (ex *execution) complete(typ *schema.TypeRef, fields []*language.Field, value any, path Path, s *slot) {
	if isNullish(value) {
		if schema.IsNonNull(typ) {
			ex.addError("Cannot return null for non-nullable field "+path.String(), path)
		}
		ex.null(s)
		return
	}
	if schema.IsNonNull(typ) {
		typ = typ.OfType
	}
	if typ.Kind == schema.TypeRefKindList {
		ex.completeList(typ.OfType, fields, value, path, s)
		return
	}

	named := ex.schema.Types[typ.Named]
	switch {
	case named == nil:
		ex.addError("Unknown type "+typ.Named, path)
		ex.null(s)
	case named.IsLeaf():
		v, err := ex.runtime.SerializeLeafValue(ex.ctx, named.Name, value)
		if err != nil {
			ex.addError(err.Error(), path)
			ex.null(s)
			return
		}
		s.set(v)
	case named.Kind == schema.TypeKindObject:
		obj := make(map[string]any)
		s.set(obj)
		ex.executeSelectionSet(named, subSelections(fields), value, path, s, obj)
	default:
		ex.addError(fmt.Sprintf("%s is not an output type", named.Name), path)
		ex.null(s)
	}
}

func (ex *execution) completeList(itemType *schema.TypeRef, fields []*language.Field, value any, path Path, s *slot) {
	items, ok := listItems(value)
	if !ok {
		ex.addError(fmt.Sprintf("Expected a list, got %T", value), path)
		ex.null(s)
		return
	}
	list := make([]any, len(items))
	s.set(list)
	for i, item := range items {
		is := &slot{parent: s, nonNull: schema.IsNonNull(itemType), set: func(v any) { list[i] = v }}
		ex.complete(itemType, fields, item, path.append(i), is)
		if !s.alive() {
			return
		}
	}
}

// null writes null into s. A Non-Null position passes the null on to its
// parent until a nullable position (or the data root) takes it.
func (ex *execution) null(s *slot) {
	for s.nonNull && s.parent != nil {
		s.dead = true
		s = s.parent
	}
	s.dead = true
	s.set(nil)
}

func (ex *execution) addError(msg string, path Path) {
	ex.errors = append(ex.errors, GraphQLError{Message: msg, Path: path})
}

// addResolverError records a resolver failure, keeping the extensions of
// errors that carry them.
func (ex *execution) addResolverError(err error, path Path) {
	gqlErr := GraphQLError{Message: err.Error(), Path: path}
	var ext ExtendedError
	if errors.As(err, &ext) {
		gqlErr.Extensions = ext.Extensions()
	}
	ex.errors = append(ex.errors, gqlErr)
}

func subSelections(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func listItems(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isNullish reports nil and typed nil pointers, maps, slices and interfaces.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
