package builder

import (
	"context"
	"errors"
	"fmt"

	executor "github.com/hanpama/relaygraph/internal/executor"
	language "github.com/hanpama/relaygraph/internal/language"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// Executable is an assembled schema together with the runtime that resolves
// its fields.
type Executable struct {
	Schema  *schema.Schema
	Runtime executor.Runtime
}

// Execute parses and runs a single operation. It is a convenience for tests
// and tools; servers use executor.Executor directly.
func (e *Executable) Execute(ctx context.Context, query string, variables map[string]any) *executor.ExecutionResult {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return &executor.ExecutionResult{Errors: []executor.GraphQLError{{Message: err.Error()}}}
	}
	return executor.NewExecutor(e.Runtime, e.Schema).ExecuteRequest(ctx, doc, "", variables, nil)
}

// ToSchema runs every field callback and assembles the schema. It fails when
// a declared type was never implemented, a referenced type does not exist,
// or names collide. ToSchema may be called repeatedly; every call builds a
// fresh, structurally identical schema.
func (b *Builder) ToSchema() (*Executable, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if _, ok := b.types[defaultQueryType]; !ok {
		return nil, errors.New("query type is not defined")
	}

	sch := schema.NewSchema(b.opts.Description)
	schema.AddBuiltins(sch)
	sch.SetQueryType(defaultQueryType)

	rt := &runtime{
		codec:       b.opts.GlobalIDs,
		concurrency: b.opts.AsyncConcurrency,
		objects:     make(map[string]map[string]*Field),
		inputs:      make(map[string][]*InputField),
	}
	if _, ok := b.types[defaultMutationType]; ok {
		sch.SetMutationType(defaultMutationType)
		rt.mutationType = defaultMutationType
	}

	var errs []error
	for _, name := range b.order {
		cfg := b.types[name]
		if !cfg.implemented && !b.isRoot(cfg) {
			errs = append(errs, fmt.Errorf("type %s was referenced but never implemented", name))
			continue
		}
		switch cfg.kind {
		case kindInput:
			t, fields, err := buildInputType(cfg)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			sch.AddType(t)
			rt.inputs[name] = fields
		case kindObject:
			t, fields, err := buildObjectType(cfg)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			sch.AddType(t)
			rt.objects[name] = fields
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := checkReferences(sch); err != nil {
		return nil, err
	}
	return &Executable{Schema: sch, Runtime: rt}, nil
}

// isRoot reports whether cfg is a root type that only received fields
// through QueryField or MutationField.
func (b *Builder) isRoot(cfg *typeConfig) bool {
	return cfg.kind == kindObject && (cfg.name == defaultQueryType || cfg.name == defaultMutationType) && len(cfg.fields) > 0
}

func buildInputType(cfg *typeConfig) (*schema.Type, []*InputField, error) {
	t := schema.NewType(cfg.name, schema.TypeKindInputObject, cfg.description)
	var fields []*InputField
	for _, fn := range cfg.inputFields {
		fields = append(fields, fn(&InputFieldBuilder{})...)
	}
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("input type %s must define one or more fields", cfg.name)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.name] {
			return nil, nil, fmt.Errorf("input type %s defines field %s more than once", cfg.name, f.name)
		}
		seen[f.name] = true
		t.AddInputField(f.inputValue())
	}
	return t, fields, nil
}

func buildObjectType(cfg *typeConfig) (*schema.Type, map[string]*Field, error) {
	t := schema.NewType(cfg.name, schema.TypeKindObject, cfg.description)
	var fields []*Field
	for _, fn := range cfg.fields {
		fields = append(fields, fn(newObjectFieldBuilder())...)
	}
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("object type %s must define one or more fields", cfg.name)
	}
	byName := make(map[string]*Field, len(fields))
	for _, f := range fields {
		if _, ok := byName[f.name]; ok {
			return nil, nil, fmt.Errorf("object type %s defines field %s more than once", cfg.name, f.name)
		}
		byName[f.name] = f
		seen := make(map[string]bool, len(f.args))
		for _, arg := range f.args {
			if seen[arg.name] {
				return nil, nil, fmt.Errorf("field %s.%s defines argument %s more than once", cfg.name, f.name, arg.name)
			}
			seen[arg.name] = true
		}
		t.AddField(f.schemaField())
	}
	return t, byName, nil
}

// checkReferences verifies that every field, argument and input field names
// a type of the right kind.
func checkReferences(sch *schema.Schema) error {
	var errs []error
	check := func(owner string, ref *schema.TypeRef, input bool) {
		name := schema.GetNamedType(ref)
		t := sch.Types[name]
		switch {
		case t == nil:
			errs = append(errs, fmt.Errorf("%s refers to unknown type %s", owner, name))
		case input && t.Kind != schema.TypeKindInputObject && t.Kind != schema.TypeKindScalar:
			errs = append(errs, fmt.Errorf("%s must be an input type, got %s", owner, name))
		case !input && t.Kind == schema.TypeKindInputObject:
			errs = append(errs, fmt.Errorf("%s must be an output type, got %s", owner, name))
		}
	}
	for _, t := range sch.Types {
		for _, f := range t.Fields {
			owner := t.Name + "." + f.Name
			check(owner, f.Type, false)
			for _, arg := range f.Arguments {
				check(owner+"("+arg.Name+")", arg.Type, true)
			}
		}
		for _, f := range t.InputFields {
			check(t.Name+"."+f.Name, f.Type, true)
		}
	}
	return errors.Join(errs...)
}
