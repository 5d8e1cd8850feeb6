package introspection

import (
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// extend returns a copy of sch that also holds the meta types and whose query
// type carries __schema and __type. sch itself is left untouched.
func extend(sch *schema.Schema) *schema.Schema {
	out := *sch
	out.Types = make(map[string]*schema.Type, len(sch.Types)+8)
	for name, t := range sch.Types {
		out.Types[name] = t
	}
	for _, t := range schema.MetaTypes() {
		out.Types[t.Name] = t
	}

	query := sch.GetQueryType()
	if query == nil {
		return &out
	}
	q := *query
	q.Fields = append(append([]*schema.Field(nil), query.Fields...),
		schema.NewField("__schema", "Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))),
		schema.NewField("__type", "Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))),
	)
	out.Types[q.Name] = &q
	return &out
}
