package builder

// Ref names a type registered with a Builder or one of the built-in scalars.
type Ref interface {
	TypeName() string
}

// InputTypeRef is a Ref usable in argument and input field positions.
type InputTypeRef interface {
	Ref
	inputType()
}

// OutputTypeRef is a Ref usable as the type of an object field.
type OutputTypeRef interface {
	Ref
	outputType()
}

// ScalarRef refers to a built-in scalar.
type ScalarRef string

const (
	String  ScalarRef = "String"
	ID      ScalarRef = "ID"
	Boolean ScalarRef = "Boolean"
	Int     ScalarRef = "Int"
	Float   ScalarRef = "Float"
)

func (s ScalarRef) TypeName() string { return string(s) }
func (ScalarRef) inputType()         {}
func (ScalarRef) outputType()        {}

// InputRef is a forward reference to an input object type. It can be used in
// field declarations before Implement is called, which is what makes self and
// mutually recursive input types possible.
type InputRef struct {
	name string
	b    *Builder
}

func (r *InputRef) TypeName() string { return r.name }
func (*InputRef) inputType()         {}

// Implement attaches the description and fields of the input type.
func (r *InputRef) Implement(opts InputTypeOptions) *InputRef {
	r.b.implement(r.name, kindInput, opts.Description, func(cfg *typeConfig) {
		if opts.Fields != nil {
			cfg.inputFields = append(cfg.inputFields, opts.Fields)
		}
	})
	return r
}

// ObjectRef is a forward reference to an object type.
type ObjectRef struct {
	name string
	b    *Builder
}

func (r *ObjectRef) TypeName() string { return r.name }
func (*ObjectRef) outputType()        {}

// Implement attaches the description and fields of the object type.
func (r *ObjectRef) Implement(opts ObjectTypeOptions) *ObjectRef {
	r.b.implement(r.name, kindObject, opts.Description, func(cfg *typeConfig) {
		if opts.Fields != nil {
			cfg.fields = append(cfg.fields, opts.Fields)
		}
	})
	return r
}

// InputTypeOptions configures an input object type.
type InputTypeOptions struct {
	Description string
	Fields      func(t *InputFieldBuilder) []*InputField
}

// ObjectTypeOptions configures an object type, including the root types.
type ObjectTypeOptions struct {
	Description string
	Fields      func(t *ObjectFieldBuilder) []*Field
}
