package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Executable documents.
type (
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	Operation           = ast.Operation
	SelectionSet        = ast.SelectionSet
	Field               = ast.Field
	InlineFragment      = ast.InlineFragment
	FragmentSpread      = ast.FragmentSpread
	DirectiveList       = ast.DirectiveList
	Directive           = ast.Directive
	ArgumentList        = ast.ArgumentList
	Argument            = ast.Argument
	Type                = ast.Type
)

const (
	Query    = ast.Query
	Mutation = ast.Mutation
)

// Literal values.
type Value = ast.Value

const (
	Variable     = ast.Variable
	IntValue     = ast.IntValue
	FloatValue   = ast.FloatValue
	StringValue  = ast.StringValue
	BlockValue   = ast.BlockValue
	BooleanValue = ast.BooleanValue
	EnumValue    = ast.EnumValue
	ListValue    = ast.ListValue
	ObjectValue  = ast.ObjectValue
)

// ValidatedSchema is gqlparser's schema, used only for validation.
type ValidatedSchema = ast.Schema

type (
	Error     = gqlerror.Error
	ErrorList = gqlerror.List
)
