// Package schema is the in-memory GraphQL type system shared by the builder,
// the executor, introspection and the HTTP server.
//
// The model covers what the code-first builder produces: objects, input
// objects, scalars and enums. Abstract types and subscriptions are not
// represented.
package schema

// Schema is a complete type system with its root operation types.
type Schema struct {
	Description  string
	QueryType    string
	MutationType string
	Types        map[string]*Type
	Directives   map[string]*Directive
}

// GetQueryType returns the query root, or nil.
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the mutation root, or nil when the schema has none.
func (s *Schema) GetMutationType() *Type {
	if s.MutationType == "" {
		return nil
	}
	return s.Types[s.MutationType]
}

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named type. Which slice is populated depends on Kind.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	Fields      []*Field      // OBJECT
	InputFields []*InputValue // INPUT_OBJECT
	EnumValues  []*EnumValue  // ENUM

	// BuiltIn types come from the GraphQL prelude and are never rendered.
	BuiltIn bool
}

// IsInputType reports whether values of t may appear in arguments.
func (t *Type) IsInputType() bool {
	return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum || t.Kind == TypeKindInputObject
}

// IsLeaf reports whether t serializes directly to a JSON value.
func (t *Type) IsLeaf() bool { return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum }

// DefaultDeprecationReason is the reason of a bare @deprecated.
const DefaultDeprecationReason = "No longer supported"

// Field is an object field. Async fields are resolved in depth-wide batches.
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Async             bool
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
	BuiltIn      bool
}
