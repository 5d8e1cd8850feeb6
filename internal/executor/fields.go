package executor

import (
	language "github.com/hanpama/relaygraph/internal/language"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// fieldGroup is every selection of one response key, in document order.
type fieldGroup struct {
	responseName string
	fields       []*language.Field
}

// collectFields flattens fragments and applies @skip/@include. Type conditions
// match the object type by name.
func (ex *execution) collectFields(objectType *schema.Type, selections language.SelectionSet) []*fieldGroup {
	var groups []*fieldGroup
	index := make(map[string]*fieldGroup)
	visited := make(map[string]bool)

	var walk func(language.SelectionSet)
	walk = func(set language.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *language.Field:
				if !ex.included(sel.Directives) {
					continue
				}
				name := sel.Alias
				if name == "" {
					name = sel.Name
				}
				if g, ok := index[name]; ok {
					g.fields = append(g.fields, sel)
					continue
				}
				g := &fieldGroup{responseName: name, fields: []*language.Field{sel}}
				index[name] = g
				groups = append(groups, g)
			case *language.InlineFragment:
				if ex.included(sel.Directives) && matchesType(sel.TypeCondition, objectType) {
					walk(sel.SelectionSet)
				}
			case *language.FragmentSpread:
				if visited[sel.Name] || !ex.included(sel.Directives) {
					continue
				}
				visited[sel.Name] = true
				frag := ex.document.Fragments.ForName(sel.Name)
				if frag != nil && matchesType(frag.TypeCondition, objectType) {
					walk(frag.SelectionSet)
				}
			}
		}
	}
	walk(selections)
	return groups
}

func matchesType(condition string, objectType *schema.Type) bool {
	return condition == "" || condition == objectType.Name
}

// included evaluates @skip and @include.
func (ex *execution) included(directives language.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil && ex.directiveIf(d) {
		return false
	}
	if d := directives.ForName("include"); d != nil && !ex.directiveIf(d) {
		return false
	}
	return true
}

func (ex *execution) directiveIf(d *language.Directive) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, _ := valueFromAST(arg.Value, ex.variables).(bool)
	return v
}
