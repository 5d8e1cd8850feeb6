// Package builder is a code-first GraphQL schema builder with Relay helpers.
//
// Types are registered in two phases. Refs (InputRef, ObjectRef) are declared
// first and may be used immediately; their field callbacks only run when
// ToSchema assembles the schema. Declaration order therefore never matters and
// input types may reference themselves or each other.
//
//	b := builder.New(builder.Options{})
//	user := b.InputRef("UserInput")
//	user.Implement(builder.InputTypeOptions{
//		Fields: func(t *builder.InputFieldBuilder) []*builder.InputField {
//			return []*builder.InputField{
//				t.GlobalID("id", builder.InputFieldOptions{Required: true}),
//				t.Field("manager", user, builder.InputFieldOptions{}),
//			}
//		},
//	})
//
// Global ID arguments and input fields are exposed as ID in the schema and
// decoded into globalid.ID values before resolvers run. RelayMutationField
// generates the input and payload types of a Relay-style mutation, including
// clientMutationId plumbing.
package builder

import (
	"fmt"

	"github.com/hanpama/relaygraph/internal/globalid"
)

const (
	defaultQueryType    = "Query"
	defaultMutationType = "Mutation"
	defaultConcurrency  = 8
)

// Options configures a Builder.
type Options struct {
	// Description is the schema description.
	Description string

	// GlobalIDs encodes and decodes global identifiers. Defaults to
	// globalid.Base64.
	GlobalIDs globalid.Codec

	// AsyncConcurrency bounds how many async resolvers of one non-mutation
	// batch run at the same time. Defaults to 8.
	AsyncConcurrency int
}

type typeKind int

const (
	kindInput typeKind = iota + 1
	kindObject
)

func (k typeKind) String() string {
	switch k {
	case kindInput:
		return "input object"
	case kindObject:
		return "object"
	}
	return "unknown"
}

// typeConfig is the registry entry of a declared type. Field callbacks are
// stored, not run, until ToSchema.
type typeConfig struct {
	name        string
	kind        typeKind
	description string
	implemented bool
	inputFields []func(t *InputFieldBuilder) []*InputField
	fields      []func(t *ObjectFieldBuilder) []*Field
}

// Builder collects type declarations and assembles them into an executable
// schema. A Builder is not safe for concurrent use; build schemas at startup.
type Builder struct {
	opts  Options
	order []string
	types map[string]*typeConfig
	errs  []error

	queryType    string
	mutationType string
}

// New returns an empty Builder.
func New(opts Options) *Builder {
	if opts.GlobalIDs == nil {
		opts.GlobalIDs = globalid.Base64
	}
	if opts.AsyncConcurrency <= 0 {
		opts.AsyncConcurrency = defaultConcurrency
	}
	return &Builder{opts: opts, types: make(map[string]*typeConfig)}
}

// InputRef declares an input object type by name.
func (b *Builder) InputRef(name string) *InputRef {
	b.declare(name, kindInput)
	return &InputRef{name: name, b: b}
}

// ObjectRef declares an object type by name.
func (b *Builder) ObjectRef(name string) *ObjectRef {
	b.declare(name, kindObject)
	return &ObjectRef{name: name, b: b}
}

// ObjectType declares and implements an object type in one call.
func (b *Builder) ObjectType(name string, opts ObjectTypeOptions) *ObjectRef {
	return b.ObjectRef(name).Implement(opts)
}

// QueryType implements the query root type.
func (b *Builder) QueryType(opts ObjectTypeOptions) *ObjectRef {
	b.queryType = defaultQueryType
	return b.ObjectType(defaultQueryType, opts)
}

// MutationType implements the mutation root type. Fields may be empty here
// and contributed later through MutationField or RelayMutationField.
func (b *Builder) MutationType(opts ObjectTypeOptions) *ObjectRef {
	b.mutationType = defaultMutationType
	return b.ObjectType(defaultMutationType, opts)
}

// QueryField adds a single field to the query root type.
func (b *Builder) QueryField(fn func(t *ObjectFieldBuilder) *Field) {
	b.addRootField(defaultQueryType, fn)
}

// MutationField adds a single field to the mutation root type.
func (b *Builder) MutationField(fn func(t *ObjectFieldBuilder) *Field) {
	b.addRootField(defaultMutationType, fn)
}

func (b *Builder) addRootField(root string, fn func(t *ObjectFieldBuilder) *Field) {
	cfg := b.declare(root, kindObject)
	if cfg == nil {
		return
	}
	cfg.fields = append(cfg.fields, func(t *ObjectFieldBuilder) []*Field {
		return []*Field{fn(t)}
	})
}

// declare registers name with the given kind, or returns the existing entry.
// Declaring one name with two kinds is recorded as an error for ToSchema.
func (b *Builder) declare(name string, kind typeKind) *typeConfig {
	if cfg, ok := b.types[name]; ok {
		if cfg.kind != kind {
			b.errs = append(b.errs, fmt.Errorf("type %s declared as both %s and %s", name, cfg.kind, kind))
			return nil
		}
		return cfg
	}
	if isBuiltinScalar(name) {
		b.errs = append(b.errs, fmt.Errorf("type %s conflicts with a built-in scalar", name))
		return nil
	}
	cfg := &typeConfig{name: name, kind: kind}
	b.types[name] = cfg
	b.order = append(b.order, name)
	return cfg
}

func (b *Builder) implement(name string, kind typeKind, description string, apply func(cfg *typeConfig)) {
	cfg := b.declare(name, kind)
	if cfg == nil {
		return
	}
	if cfg.implemented {
		b.errs = append(b.errs, fmt.Errorf("type %s implemented more than once", name))
		return
	}
	cfg.implemented = true
	cfg.description = description
	apply(cfg)
}

func isBuiltinScalar(name string) bool {
	switch ScalarRef(name) {
	case String, ID, Boolean, Int, Float:
		return true
	}
	return false
}
