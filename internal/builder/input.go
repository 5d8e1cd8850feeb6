package builder

import (
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// InputField is an argument or input object field declaration.
type InputField struct {
	name              string
	description       string
	typ               InputTypeRef
	list              bool
	required          bool
	requiredItems     bool
	globalID          bool
	defaultValue      any
	deprecationReason string
}

// Name returns the field or argument name.
func (f *InputField) Name() string { return f.name }

// InputFieldOptions configures an argument or input field. Inputs are nullable
// unless Required is set; for lists RequiredItems makes the items non-null.
type InputFieldOptions struct {
	Description       string
	Required          bool
	RequiredItems     bool
	DefaultValue      any
	DeprecationReason string
}

// InputFieldBuilder declares input object fields. The same builder declares
// field arguments through ObjectFieldBuilder.Arg.
type InputFieldBuilder struct{}

func newInputField(name string, typ InputTypeRef, list bool, opts InputFieldOptions) *InputField {
	return &InputField{
		name:              name,
		description:       opts.Description,
		typ:               typ,
		list:              list,
		required:          opts.Required,
		requiredItems:     opts.RequiredItems,
		defaultValue:      opts.DefaultValue,
		deprecationReason: opts.DeprecationReason,
	}
}

// Field declares an input of any input type, including forward-declared
// input objects.
func (*InputFieldBuilder) Field(name string, typ InputTypeRef, opts InputFieldOptions) *InputField {
	return newInputField(name, typ, false, opts)
}

// List declares a list input of the given item type.
func (*InputFieldBuilder) List(name string, typ InputTypeRef, opts InputFieldOptions) *InputField {
	return newInputField(name, typ, true, opts)
}

func (t *InputFieldBuilder) ID(name string, opts InputFieldOptions) *InputField {
	return t.Field(name, ID, opts)
}

func (t *InputFieldBuilder) String(name string, opts InputFieldOptions) *InputField {
	return t.Field(name, String, opts)
}

func (t *InputFieldBuilder) Boolean(name string, opts InputFieldOptions) *InputField {
	return t.Field(name, Boolean, opts)
}

func (t *InputFieldBuilder) Int(name string, opts InputFieldOptions) *InputField {
	return t.Field(name, Int, opts)
}

func (t *InputFieldBuilder) Float(name string, opts InputFieldOptions) *InputField {
	return t.Field(name, Float, opts)
}

// GlobalID declares an ID input whose value is decoded into a globalid.ID
// before it reaches resolvers.
func (t *InputFieldBuilder) GlobalID(name string, opts InputFieldOptions) *InputField {
	f := t.Field(name, ID, opts)
	f.globalID = true
	return f
}

// GlobalIDList declares a list of global IDs; every item is decoded.
func (t *InputFieldBuilder) GlobalIDList(name string, opts InputFieldOptions) *InputField {
	f := t.List(name, ID, opts)
	f.globalID = true
	return f
}

func (f *InputField) typeRef() *schema.TypeRef {
	ref := schema.NamedType(f.typ.TypeName())
	if f.list {
		if f.requiredItems {
			ref = schema.NonNullType(ref)
		}
		ref = schema.ListType(ref)
	}
	if f.required {
		ref = schema.NonNullType(ref)
	}
	return ref
}

func (f *InputField) inputValue() *schema.InputValue {
	v := schema.NewInputValue(f.name, f.description, f.typeRef()).SetDefault(f.defaultValue)
	if f.deprecationReason != "" {
		v.Deprecate(f.deprecationReason)
	}
	return v
}
