package builder

import (
	"context"

	schema "github.com/hanpama/relaygraph/internal/schema"
)

// Resolver produces the value of a field. parent is the resolved parent value
// (nil for root fields); args holds the coerced and decoded arguments.
type Resolver func(ctx context.Context, parent any, args Args) (any, error)

// Field is an object field declaration.
type Field struct {
	name              string
	description       string
	typ               OutputTypeRef
	list              bool
	nullable          bool
	nullableItems     bool
	args              []*InputField
	resolve           Resolver
	async             bool
	globalID          bool
	deprecationReason string

	// rawParent fields receive relay payload parents without unwrapping.
	rawParent bool
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// FieldOptions configures an object field. Fields are non-null unless
// Nullable is set. Fields without Resolve read the property of the same name
// from the parent value.
type FieldOptions struct {
	Description       string
	Nullable          bool
	List              bool
	NullableItems     bool
	Args              []*InputField
	Resolve           Resolver
	Async             bool
	DeprecationReason string
}

// ObjectFieldBuilder declares object fields. Arg declares their arguments.
type ObjectFieldBuilder struct {
	Arg *InputFieldBuilder
}

func newObjectFieldBuilder() *ObjectFieldBuilder {
	return &ObjectFieldBuilder{Arg: &InputFieldBuilder{}}
}

// Field declares a field of any output type.
func (*ObjectFieldBuilder) Field(name string, typ OutputTypeRef, opts FieldOptions) *Field {
	return &Field{
		name:              name,
		description:       opts.Description,
		typ:               typ,
		list:              opts.List,
		nullable:          opts.Nullable,
		nullableItems:     opts.NullableItems,
		args:              opts.Args,
		resolve:           opts.Resolve,
		async:             opts.Async,
		deprecationReason: opts.DeprecationReason,
	}
}

func (t *ObjectFieldBuilder) String(name string, opts FieldOptions) *Field {
	return t.Field(name, String, opts)
}

func (t *ObjectFieldBuilder) Boolean(name string, opts FieldOptions) *Field {
	return t.Field(name, Boolean, opts)
}

func (t *ObjectFieldBuilder) ID(name string, opts FieldOptions) *Field {
	return t.Field(name, ID, opts)
}

func (t *ObjectFieldBuilder) Int(name string, opts FieldOptions) *Field {
	return t.Field(name, Int, opts)
}

func (t *ObjectFieldBuilder) Float(name string, opts FieldOptions) *Field {
	return t.Field(name, Float, opts)
}

// GlobalID declares an ID field whose resolved globalid.ID (or list of them,
// with List set) is encoded into an opaque token.
func (t *ObjectFieldBuilder) GlobalID(name string, opts FieldOptions) *Field {
	f := t.Field(name, ID, opts)
	f.globalID = true
	return f
}

func (f *Field) typeRef() *schema.TypeRef {
	ref := schema.NamedType(f.typ.TypeName())
	if f.list {
		if !f.nullableItems {
			ref = schema.NonNullType(ref)
		}
		ref = schema.ListType(ref)
	}
	if !f.nullable {
		ref = schema.NonNullType(ref)
	}
	return ref
}

func (f *Field) schemaField() *schema.Field {
	sf := schema.NewField(f.name, f.description, f.typeRef()).SetAsync(f.async)
	for _, arg := range f.args {
		sf.AddArgument(arg.inputValue())
	}
	if f.deprecationReason != "" {
		sf.Deprecate(f.deprecationReason)
	}
	return sf
}
