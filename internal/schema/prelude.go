package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// preludeDirectives are the directives every schema supports.
var preludeDirectives = []string{"include", "skip", "deprecated", "specifiedBy"}

type prelude struct {
	scalars    []*Type
	meta       []*Type
	directives []*Directive
}

// loadPrelude converts gqlparser's prelude, the same definitions the
// validator checks operations against.
var loadPrelude = sync.OnceValue(func() *prelude {
	doc, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		panic(fmt.Sprintf("schema: parse prelude: %v", err))
	}
	p := &prelude{}
	for _, def := range doc.Definitions {
		t, err := convertDefinition(def)
		if err != nil {
			panic(fmt.Sprintf("schema: prelude: %v", err))
		}
		t.BuiltIn = true
		switch {
		case strings.HasPrefix(def.Name, "__"):
			p.meta = append(p.meta, t)
		case t.Kind == TypeKindScalar:
			p.scalars = append(p.scalars, t)
		}
	}
	for _, name := range preludeDirectives {
		if dir := doc.Directives.ForName(name); dir != nil {
			d := convertDirective(dir)
			d.BuiltIn = true
			p.directives = append(p.directives, d)
		}
	}
	return p
})

// AddBuiltins registers the built-in scalars and directives.
func AddBuiltins(s *Schema) {
	p := loadPrelude()
	for _, t := range p.scalars {
		s.AddType(t)
	}
	for _, d := range p.directives {
		s.AddDirective(d)
	}
}

// MetaTypes returns the introspection types (__Schema, __Type and friends).
// The returned types are shared and must not be modified.
func MetaTypes() []*Type {
	return loadPrelude().meta
}
