package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/relaygraph/internal/example"
	executor "github.com/hanpama/relaygraph/internal/executor"
	language "github.com/hanpama/relaygraph/internal/language"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// noopRuntime implements executor.Runtime with no behaviour.
type noopRuntime struct{}

func (noopRuntime) ResolveSync(context.Context, string, string, any, map[string]any) (any, error) {
	return nil, nil
}

func (noopRuntime) BatchResolveAsync(context.Context, []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return nil
}

func (noopRuntime) SerializeLeafValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(`type Query { hello: String }`)
	require.NoError(t, err)
	return sch
}

func execute(t *testing.T, rt executor.Runtime, sch *schema.Schema, query string) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.NewExecutor(rt, sch).ExecuteRequest(context.Background(), doc, "", nil, nil)
}

func TestIntrospectionEnabled(t *testing.T) {
	wrapper := Wrap(noopRuntime{}, buildSchema(t))
	res := execute(t, wrapper.Runtime, wrapper.Schema, "{__schema{queryType{name}}}")
	require.Empty(t, res.Errors)

	want := map[string]any{"__schema": map[string]any{"queryType": map[string]any{"name": "Query"}}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestTypenameField(t *testing.T) {
	// __typename works without the introspection wrapper
	res := execute(t, noopRuntime{}, buildSchema(t), "{__typename}")
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"__typename": "Query"}, res.Data)
}

func TestWrapLeavesOriginalSchemaUntouched(t *testing.T) {
	sch := buildSchema(t)
	wrapper := Wrap(noopRuntime{}, sch)

	require.Nil(t, sch.Types["__Schema"])
	require.Nil(t, sch.GetQueryType().Field("__schema"))
	require.NotNil(t, wrapper.Schema.Types["__Schema"])
	require.NotNil(t, wrapper.Schema.GetQueryType().Field("__schema"))
}

func TestIntrospectFixtureNamesAndDescriptions(t *testing.T) {
	exe, err := example.NewSchema()
	require.NoError(t, err)
	wrapper := Wrap(exe.Runtime, exe.Schema)

	res := execute(t, wrapper.Runtime, wrapper.Schema, `{
		input: __type(name: "CustomInputName") { kind name description inputFields { name type { kind name ofType { kind name } } } }
		output: __type(name: "CustomOutputName") { kind description fields { name } }
		mutation: __type(name: "Mutation") { fields { name description args { name type { kind ofType { kind name } } } } }
	}`)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"input": map[string]any{
			"kind":        "INPUT_OBJECT",
			"name":        "CustomInputName",
			"description": "input type",
			"inputFields": []any{
				map[string]any{"name": "id", "type": map[string]any{"kind": "NON_NULL", "name": nil, "ofType": map[string]any{"kind": "SCALAR", "name": "ID"}}},
				map[string]any{"name": "clientMutationId", "type": map[string]any{"kind": "SCALAR", "name": "ID", "ofType": nil}},
			},
		},
		"output": map[string]any{
			"kind":        "OBJECT",
			"description": "output type",
			"fields": []any{
				map[string]any{"name": "itWorked"},
				map[string]any{"name": "clientMutationId"},
			},
		},
		"mutation": map[string]any{
			"fields": []any{
				map[string]any{"name": "exampleMutation", "description": nil, "args": []any{
					map[string]any{"name": "input", "type": map[string]any{"kind": "NON_NULL", "ofType": map[string]any{"kind": "INPUT_OBJECT", "name": "ExampleMutationInput"}}},
				}},
				map[string]any{"name": "exampleMutationReUse", "description": nil, "args": []any{
					map[string]any{"name": "input", "type": map[string]any{"kind": "NON_NULL", "ofType": map[string]any{"kind": "INPUT_OBJECT", "name": "ExampleMutationInput"}}},
				}},
				map[string]any{"name": "exampleWithDescriptions", "description": "mutation field", "args": []any{
					map[string]any{"name": "customInput", "type": map[string]any{"kind": "NON_NULL", "ofType": map[string]any{"kind": "INPUT_OBJECT", "name": "CustomInputName"}}},
				}},
			},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestIntrospectionHidesMetaFields(t *testing.T) {
	exe, err := example.NewSchema()
	require.NoError(t, err)
	wrapper := Wrap(exe.Runtime, exe.Schema)

	res := execute(t, wrapper.Runtime, wrapper.Schema, `{ __type(name: "Query") { fields { name } } }`)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{
		"__type": map[string]any{"fields": []any{map[string]any{"name": "inputGlobalID"}}},
	}, res.Data)
}

func TestIntrospectWrappedTypes(t *testing.T) {
	exe, err := example.NewSchema()
	require.NoError(t, err)
	wrapper := Wrap(exe.Runtime, exe.Schema)

	res := execute(t, wrapper.Runtime, wrapper.Schema, `{
		__type(name: "GlobalIDInput") {
			inputFields { name defaultValue type { kind name ofType { kind name ofType { kind name ofType { kind name } } } } }
		}
	}`)
	require.Empty(t, res.Errors)

	named := func(kind, name string) map[string]any {
		return map[string]any{"kind": kind, "name": name, "ofType": nil}
	}
	want := map[string]any{"__type": map[string]any{"inputFields": []any{
		map[string]any{"name": "circularWithoutGlobalIds", "defaultValue": nil, "type": named("INPUT_OBJECT", "NoGlobalIDInput")},
		map[string]any{"name": "circular", "defaultValue": nil, "type": named("INPUT_OBJECT", "GlobalIDInput")},
		map[string]any{"name": "id", "defaultValue": nil, "type": map[string]any{
			"kind": "NON_NULL", "name": nil, "ofType": named("SCALAR", "ID"),
		}},
		map[string]any{"name": "idList", "defaultValue": nil, "type": map[string]any{
			"kind": "NON_NULL", "name": nil, "ofType": map[string]any{
				"kind": "LIST", "name": nil, "ofType": map[string]any{
					"kind": "NON_NULL", "name": nil, "ofType": map[string]any{"kind": "SCALAR", "name": "ID"},
				},
			},
		}},
	}}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestIntrospectSchemaTypesAndDirectives(t *testing.T) {
	wrapper := Wrap(noopRuntime{}, buildSchema(t))

	res := execute(t, wrapper.Runtime, wrapper.Schema, `{
		__schema { mutationType { name } types { name } directives { name locations args { name } } }
	}`)
	require.Empty(t, res.Errors)

	data := res.Data.(map[string]any)["__schema"].(map[string]any)
	require.Nil(t, data["mutationType"])

	var names []string
	for _, typ := range data["types"].([]any) {
		names = append(names, typ.(map[string]any)["name"].(string))
	}
	require.IsIncreasing(t, names)
	for _, name := range []string{"Query", "String", "Boolean", "__Schema", "__Type", "__TypeKind"} {
		require.Contains(t, names, name)
	}

	var skip map[string]any
	for _, d := range data["directives"].([]any) {
		if d.(map[string]any)["name"] == "skip" {
			skip = d.(map[string]any)
		}
	}
	require.NotNil(t, skip)
	require.Equal(t, []any{map[string]any{"name": "if"}}, skip["args"])
	require.ElementsMatch(t, []any{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"}, skip["locations"])
}

func TestIntrospectDeprecations(t *testing.T) {
	sch, err := schema.BuildFromSDL(`
		type Query {
			current(limit: Int = 10): String
			old: String @deprecated(reason: "use current")
		}
		enum Color { RED BLUE @deprecated }
	`)
	require.NoError(t, err)
	wrapper := Wrap(noopRuntime{}, sch)

	res := execute(t, wrapper.Runtime, wrapper.Schema, `{
		query: __type(name: "Query") {
			active: fields { name args { name defaultValue } }
			all: fields(includeDeprecated: true) { name isDeprecated deprecationReason }
		}
		color: __type(name: "Color") {
			enumValues { name }
			all: enumValues(includeDeprecated: true) { name isDeprecated }
			fields { name }
		}
	}`)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"query": map[string]any{
			"active": []any{
				map[string]any{"name": "current", "args": []any{map[string]any{"name": "limit", "defaultValue": "10"}}},
			},
			"all": []any{
				map[string]any{"name": "current", "isDeprecated": false, "deprecationReason": nil},
				map[string]any{"name": "old", "isDeprecated": true, "deprecationReason": "use current"},
			},
		},
		"color": map[string]any{
			"enumValues": []any{map[string]any{"name": "RED"}},
			"all": []any{
				map[string]any{"name": "RED", "isDeprecated": false},
				map[string]any{"name": "BLUE", "isDeprecated": true},
			},
			"fields": nil,
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownTypeIsNull(t *testing.T) {
	wrapper := Wrap(noopRuntime{}, buildSchema(t))
	res := execute(t, wrapper.Runtime, wrapper.Schema, `{ __type(name: "Missing") { name } }`)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"__type": nil}, res.Data)
}
