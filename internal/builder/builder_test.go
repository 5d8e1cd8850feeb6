package builder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/relaygraph/internal/eventbus"
	events "github.com/hanpama/relaygraph/internal/events"
	executor "github.com/hanpama/relaygraph/internal/executor"
	"github.com/hanpama/relaygraph/internal/globalid"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

func helloQuery(b *Builder) {
	b.QueryType(ObjectTypeOptions{
		Fields: func(t *ObjectFieldBuilder) []*Field {
			return []*Field{
				t.String("hello", FieldOptions{
					Resolve: func(context.Context, any, Args) (any, error) { return "world", nil },
				}),
			}
		},
	})
}

func mustSchema(t *testing.T, b *Builder) *Executable {
	t.Helper()
	exe, err := b.ToSchema()
	require.NoError(t, err)
	return exe
}

func TestToSchema_ForwardAndSelfReferences(t *testing.T) {
	b := New(Options{})
	// Node is used before it is implemented and refers to itself.
	node := b.InputRef("Node")
	b.QueryType(ObjectTypeOptions{
		Fields: func(t *ObjectFieldBuilder) []*Field {
			return []*Field{
				t.Int("depth", FieldOptions{
					Args: []*InputField{t.Arg.Field("node", node, InputFieldOptions{Required: true})},
					Resolve: func(_ context.Context, _ any, args Args) (any, error) {
						depth := 0
						for n := args.Input("node"); n != nil; n = n.Input("next") {
							depth++
						}
						return depth, nil
					},
				}),
			}
		},
	})
	node.Implement(InputTypeOptions{
		Fields: func(t *InputFieldBuilder) []*InputField {
			return []*InputField{
				t.String("label", InputFieldOptions{}),
				t.Field("next", node, InputFieldOptions{}),
			}
		},
	})

	exe := mustSchema(t, b)
	res := exe.Execute(context.Background(), `{ depth(node: {next: {next: {label: "x"}}}) }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"depth": 3}, res.Data)
}

func TestToSchema_Errors(t *testing.T) {
	tests := []struct {
		name    string
		declare func(b *Builder)
		wantErr string
	}{
		{
			name:    "missing query type",
			declare: func(b *Builder) {},
			wantErr: "query type is not defined",
		},
		{
			name: "unimplemented ref",
			declare: func(b *Builder) {
				helloQuery(b)
				b.InputRef("Pending")
			},
			wantErr: "type Pending was referenced but never implemented",
		},
		{
			name: "implemented twice",
			declare: func(b *Builder) {
				helloQuery(b)
				helloQuery(b)
			},
			wantErr: "type Query implemented more than once",
		},
		{
			name: "kind conflict",
			declare: func(b *Builder) {
				helloQuery(b)
				b.InputRef("Thing")
				b.ObjectRef("Thing")
			},
			wantErr: "type Thing declared as both input object and object",
		},
		{
			name: "built-in scalar name",
			declare: func(b *Builder) {
				helloQuery(b)
				b.InputRef("String")
			},
			wantErr: "type String conflicts with a built-in scalar",
		},
		{
			name: "duplicate field",
			declare: func(b *Builder) {
				helloQuery(b)
				b.QueryField(func(t *ObjectFieldBuilder) *Field { return t.String("hello", FieldOptions{}) })
			},
			wantErr: "object type Query defines field hello more than once",
		},
		{
			name: "duplicate argument",
			declare: func(b *Builder) {
				b.QueryField(func(t *ObjectFieldBuilder) *Field {
					return t.String("echo", FieldOptions{Args: []*InputField{
						t.Arg.String("v", InputFieldOptions{}),
						t.Arg.String("v", InputFieldOptions{}),
					}})
				})
			},
			wantErr: "field Query.echo defines argument v more than once",
		},
		{
			name: "empty input type",
			declare: func(b *Builder) {
				helloQuery(b)
				b.InputRef("Empty").Implement(InputTypeOptions{})
			},
			wantErr: "input type Empty must define one or more fields",
		},
		{
			name: "relay mutation without resolver",
			declare: func(b *Builder) {
				helloQuery(b)
				b.RelayMutationField("noop", RelayInputOptions{}, RelayFieldOptions{}, RelayPayloadOptions{})
			},
			wantErr: "relay mutation noop has no resolver",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(Options{})
			tt.declare(b)
			_, err := b.ToSchema()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToSchema_Deterministic(t *testing.T) {
	declare := func() *Builder {
		b := New(Options{Description: "test"})
		in := b.InputRef("In")
		in.Implement(InputTypeOptions{Fields: func(t *InputFieldBuilder) []*InputField {
			return []*InputField{t.GlobalID("id", InputFieldOptions{Required: true}), t.Field("self", in, InputFieldOptions{})}
		}})
		helloQuery(b)
		b.RelayMutationField("doThing",
			RelayInputOptions{InputFields: func(t *InputFieldBuilder) []*InputField {
				return []*InputField{t.Field("in", in, InputFieldOptions{})}
			}},
			RelayFieldOptions{Resolve: func(context.Context, any, Args) (any, error) { return nil, nil }},
			RelayPayloadOptions{OutputFields: func(t *ObjectFieldBuilder) []*Field {
				return []*Field{t.Boolean("ok", FieldOptions{})}
			}},
		)
		return b
	}

	b := declare()
	first := mustSchema(t, b)
	second := mustSchema(t, b)
	third := mustSchema(t, declare())
	require.Equal(t, schema.Render(first.Schema), schema.Render(second.Schema))
	require.Equal(t, schema.Render(first.Schema), schema.Render(third.Schema))
	if diff := cmp.Diff(first.Schema, third.Schema); diff != "" {
		t.Fatalf("schemas differ (-first +third):\n%s", diff)
	}
}

func TestTypeRefs(t *testing.T) {
	b := New(Options{})
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.ID("ids", FieldOptions{
			List:          true,
			NullableItems: true,
			Nullable:      true,
			Args: []*InputField{
				t.Arg.GlobalIDList("a", InputFieldOptions{Required: true, RequiredItems: true}),
				t.Arg.List("b", Int, InputFieldOptions{}),
				t.Arg.Float("c", InputFieldOptions{DefaultValue: 1.5}),
			},
		})
	})
	exe := mustSchema(t, b)

	want := "type Query {\n  ids(a: [ID!]!, b: [Int], c: Float = 1.5): [ID]\n}\n"
	require.Equal(t, want, schema.Render(exe.Schema))
}

func TestGlobalIDArgumentsAreDecoded(t *testing.T) {
	b := New(Options{})
	var got Args
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.Boolean("check", FieldOptions{
			Args: []*InputField{
				t.Arg.GlobalID("id", InputFieldOptions{Required: true}),
				t.Arg.GlobalIDList("ids", InputFieldOptions{}),
				t.Arg.ID("plain", InputFieldOptions{}),
			},
			Resolve: func(_ context.Context, _ any, args Args) (any, error) {
				got = args
				return true, nil
			},
		})
	})
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `query ($ids: [ID!]) { check(id: $id, ids: $ids, plain: "raw") }`, nil)
	require.NotEmpty(t, res.Errors) // $id is not declared

	res = exe.Execute(context.Background(), `query ($ids: [ID]) { check(id: "VXNlcjox", ids: $ids, plain: "raw") }`, map[string]any{
		"ids": []any{globalid.Encode("Post", "7"), nil},
	})
	require.Empty(t, res.Errors)

	id, ok := got.GlobalID("id")
	require.True(t, ok)
	require.Equal(t, globalid.ID{Typename: "User", ID: "1"}, id)
	require.Equal(t, []globalid.ID{{Typename: "Post", ID: "7"}}, got.GlobalIDList("ids"))
	plain, _ := got.String("plain")
	require.Equal(t, "raw", plain)
}

func TestInvalidGlobalIDIsInputError(t *testing.T) {
	b := New(Options{})
	called := false
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.Boolean("check", FieldOptions{
			Nullable: true,
			Args:     []*InputField{t.Arg.GlobalID("id", InputFieldOptions{Required: true})},
			Resolve: func(context.Context, any, Args) (any, error) {
				called = true
				return true, nil
			},
		})
	})
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `{ check(id: "not a global id") }`, nil)
	require.False(t, called)
	require.Equal(t, map[string]any{"check": nil}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "invalid global ID")
	require.Equal(t, map[string]any{"code": "BAD_USER_INPUT"}, res.Errors[0].Extensions)
	require.Equal(t, executor.Path{"check"}, res.Errors[0].Path)
}

func TestGlobalIDOutputIsEncoded(t *testing.T) {
	type user struct {
		Key  globalid.ID   `json:"key"`
		Refs []globalid.ID `json:"refs"`
		Name string
	}
	b := New(Options{})
	userRef := b.ObjectType("User", ObjectTypeOptions{
		Fields: func(t *ObjectFieldBuilder) []*Field {
			return []*Field{
				t.GlobalID("key", FieldOptions{}),
				t.GlobalID("refs", FieldOptions{List: true}),
				t.String("name", FieldOptions{}),
			}
		},
	})
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.Field("me", userRef, FieldOptions{
			Resolve: func(context.Context, any, Args) (any, error) {
				return &user{
					Key:  globalid.ID{Typename: "User", ID: "1"},
					Refs: []globalid.ID{{Typename: "Post", ID: "2"}},
					Name: "ada",
				}, nil
			},
		})
	})
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `{ me { key refs name } }`, nil)
	require.Empty(t, res.Errors)
	want := map[string]any{"me": map[string]any{
		"key":  globalid.Encode("User", "1"),
		"refs": []any{globalid.Encode("Post", "2")},
		"name": "ada",
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestRelayMutationField(t *testing.T) {
	b := New(Options{})
	helloQuery(b)
	b.MutationType(ObjectTypeOptions{})
	input, payload := b.RelayMutationField("renameThing",
		RelayInputOptions{InputFields: func(t *InputFieldBuilder) []*InputField {
			return []*InputField{t.String("name", InputFieldOptions{Required: true})}
		}},
		RelayFieldOptions{Resolve: func(_ context.Context, _ any, args Args) (any, error) {
			name, _ := args.Input("input").String("name")
			return map[string]any{"newName": name + "!"}, nil
		}},
		RelayPayloadOptions{OutputFields: func(t *ObjectFieldBuilder) []*Field {
			return []*Field{t.String("newName", FieldOptions{})}
		}},
	)
	require.Equal(t, "RenameThingInput", input.TypeName())
	require.Equal(t, "RenameThingPayload", payload.TypeName())

	exe := mustSchema(t, b)
	wantSDL := `input RenameThingInput {
  name: String!
  clientMutationId: ID
}

type RenameThingPayload {
  newName: String!
  clientMutationId: ID
}
`
	require.Contains(t, schema.Render(exe.Schema), wantSDL)
	require.Contains(t, schema.Render(exe.Schema), "renameThing(input: RenameThingInput!): RenameThingPayload!")

	res := exe.Execute(context.Background(), `mutation { renameThing(input: {name: "a", clientMutationId: "m1"}) { newName clientMutationId } }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"renameThing": map[string]any{"newName": "a!", "clientMutationId": "m1"}}, res.Data)

	res = exe.Execute(context.Background(), `mutation { renameThing(input: {name: "b"}) { clientMutationId } }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"renameThing": map[string]any{"clientMutationId": nil}}, res.Data)
}

func TestMutationRootRunsSerially(t *testing.T) {
	b := New(Options{AsyncConcurrency: 4})
	helloQuery(b)
	var mu sync.Mutex
	var order []string
	running := 0
	overlap := false
	for _, name := range []string{"first", "second", "third"} {
		b.MutationField(func(t *ObjectFieldBuilder) *Field {
			return t.String(name, FieldOptions{
				Async: true,
				Resolve: func(context.Context, any, Args) (any, error) {
					mu.Lock()
					running++
					overlap = overlap || running > 1
					mu.Unlock()
					time.Sleep(5 * time.Millisecond)
					mu.Lock()
					running--
					order = append(order, name)
					mu.Unlock()
					return name, nil
				},
			})
		})
	}
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `mutation { third first second }`, nil)
	require.Empty(t, res.Errors)
	require.False(t, overlap)
	require.Equal(t, []string{"third", "first", "second"}, order)
}

func TestMutationRootStopsAfterNonNullFailure(t *testing.T) {
	b := New(Options{})
	helloQuery(b)
	var mu sync.Mutex
	var called []string
	failures := map[string]error{"first": errors.New("boom")}
	for _, name := range []string{"first", "second"} {
		b.MutationField(func(t *ObjectFieldBuilder) *Field {
			return t.String(name, FieldOptions{
				Async: true,
				Resolve: func(context.Context, any, Args) (any, error) {
					mu.Lock()
					called = append(called, name)
					mu.Unlock()
					if err := failures[name]; err != nil {
						return nil, err
					}
					return name, nil
				},
			})
		})
	}
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `mutation { first second }`, nil)
	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "boom", res.Errors[0].Message)
	if diff := cmp.Diff([]string{"first"}, called); diff != "" {
		t.Fatalf("called mismatch (-want +got):\n%s", diff)
	}
}

func TestMutationRootContinuesAfterNullableFailure(t *testing.T) {
	b := New(Options{})
	helloQuery(b)
	var called []string
	b.MutationField(func(t *ObjectFieldBuilder) *Field {
		return t.String("first", FieldOptions{
			Async:    true,
			Nullable: true,
			Resolve: func(context.Context, any, Args) (any, error) {
				called = append(called, "first")
				return nil, errors.New("boom")
			},
		})
	})
	b.MutationField(func(t *ObjectFieldBuilder) *Field {
		return t.String("second", FieldOptions{
			Async: true,
			Resolve: func(context.Context, any, Args) (any, error) {
				called = append(called, "second")
				return "second", nil
			},
		})
	})
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `mutation { first second }`, nil)
	require.Len(t, res.Errors, 1)
	require.Equal(t, map[string]any{"first": nil, "second": "second"}, res.Data)
	require.Equal(t, []string{"first", "second"}, called)
}

func TestQueryBatchRunsConcurrently(t *testing.T) {
	b := New(Options{AsyncConcurrency: 2})
	ready := make(chan struct{})
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.String("waiter", FieldOptions{
			Async: true,
			Resolve: func(context.Context, any, Args) (any, error) {
				select {
				case <-ready:
					return "done", nil
				case <-time.After(time.Second):
					return nil, errors.New("signal never arrived")
				}
			},
		})
	})
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.String("signal", FieldOptions{
			Async: true,
			Resolve: func(context.Context, any, Args) (any, error) {
				close(ready)
				return "sent", nil
			},
		})
	})
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `{ waiter signal }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"waiter": "done", "signal": "sent"}, res.Data)
}

func TestDefaultResolverReadsParent(t *testing.T) {
	type pet struct {
		Name    string `json:"nickname"`
		Age     int
		private string
	}
	b := New(Options{})
	petRef := b.ObjectType("Pet", ObjectTypeOptions{
		Fields: func(t *ObjectFieldBuilder) []*Field {
			return []*Field{
				t.String("nickname", FieldOptions{}),
				t.Int("age", FieldOptions{}),
				t.String("private", FieldOptions{Nullable: true}),
			}
		},
	})
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.Field("pets", petRef, FieldOptions{
			List: true,
			Resolve: func(context.Context, any, Args) (any, error) {
				return []any{
					pet{Name: "rex", Age: 3, private: "x"},
					map[string]any{"nickname": "tom", "age": 5},
				}, nil
			},
		})
	})
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `{ pets { nickname age private } }`, nil)
	require.Empty(t, res.Errors)
	want := map[string]any{"pets": []any{
		map[string]any{"nickname": "rex", "age": 3, "private": nil},
		map[string]any{"nickname": "tom", "age": 5, "private": nil},
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverEventsArePublished(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var finished []events.FieldResolveFinish
	defer eventbus.Subscribe(func(_ context.Context, e events.FieldResolveFinish) {
		finished = append(finished, e)
	})()

	b := New(Options{})
	boom := errors.New("boom")
	b.QueryField(func(t *ObjectFieldBuilder) *Field {
		return t.String("fail", FieldOptions{
			Nullable: true,
			Resolve:  func(context.Context, any, Args) (any, error) { return nil, boom },
		})
	})
	exe := mustSchema(t, b)

	res := exe.Execute(context.Background(), `{ fail }`, nil)
	require.Len(t, res.Errors, 1)
	require.Nil(t, res.Errors[0].Extensions)
	require.Len(t, finished, 1)
	require.Equal(t, "Query", finished[0].ObjectType)
	require.Equal(t, "fail", finished[0].Field)
	require.ErrorIs(t, finished[0].Err, boom)
}

func TestSerializeLeafValue(t *testing.T) {
	rt := &runtime{codec: globalid.Base64}
	ctx := context.Background()
	name := "ada"

	tests := []struct {
		typ     string
		in      any
		want    any
		wantErr bool
	}{
		{typ: "String", in: "x", want: "x"},
		{typ: "String", in: &name, want: "ada"},
		{typ: "String", in: 1, wantErr: true},
		{typ: "ID", in: 42, want: "42"},
		{typ: "ID", in: globalid.ID{Typename: "T", ID: "1"}, want: globalid.Encode("T", "1")},
		{typ: "Boolean", in: true, want: true},
		{typ: "Boolean", in: "true", wantErr: true},
		{typ: "Int", in: int64(7), want: 7},
		{typ: "Int", in: 2.0, want: 2},
		{typ: "Int", in: 2.5, wantErr: true},
		{typ: "Int", in: int64(1) << 40, wantErr: true},
		{typ: "Float", in: 3, want: 3.0},
		{typ: "Float", in: 1.25, want: 1.25},
		{typ: "CustomEnum", in: "A", want: "A"},
	}
	for _, tt := range tests {
		got, err := rt.SerializeLeafValue(ctx, tt.typ, tt.in)
		if tt.wantErr {
			require.Error(t, err, "%s %v", tt.typ, tt.in)
			continue
		}
		require.NoError(t, err, "%s %v", tt.typ, tt.in)
		require.Equal(t, tt.want, got, "%s %v", tt.typ, tt.in)
	}
}
