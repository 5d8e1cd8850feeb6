// Package language is the GraphQL parsing and validation layer. It wraps
// gqlparser so the rest of the module does not depend on its package layout.
package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ParseQuery parses an executable document without validating it.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses SDL together with gqlparser's prelude and validates it.
func LoadSchema(name, source string) (*ValidatedSchema, error) {
	sch, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return sch, nil
}

// Validate runs the standard validation rules. A nil result means doc is
// valid against sch.
func Validate(sch *ValidatedSchema, doc *QueryDocument) ErrorList {
	return validator.Validate(sch, doc)
}
