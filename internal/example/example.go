// Package example declares the relay fixture schema: two mutually recursive
// input types carrying global IDs, a query field echoing its decoded
// arguments, and three Relay mutations.
package example

import (
	"context"
	"encoding/json"

	"github.com/hanpama/relaygraph/internal/builder"
	"github.com/hanpama/relaygraph/internal/globalid"
)

// ErrMissingClientMutationID is returned by every mutation when the caller
// omitted clientMutationId. The generated input types keep the field
// nullable; the requirement is enforced by the resolvers only.
var ErrMissingClientMutationID = builder.NewInputError("clientMutationId is missing")

// mutationResult is the value the mutation resolvers hand to their payloads.
type mutationResult struct {
	Status int
}

type echo struct {
	Normal   string      `json:"normal"`
	InputObj inputEcho   `json:"inputObj"`
	ID       globalid.ID `json:"id"`
}

type inputEcho struct {
	Circular *circularEcho `json:"circular,omitempty"`
	ID       globalid.ID   `json:"id"`
	IDList   []globalid.ID `json:"idList"`
}

type circularEcho struct {
	ID       globalid.ID     `json:"id"`
	IDList   []globalid.ID   `json:"idList"`
	Circular json.RawMessage `json:"circular,omitempty"`
}

// globalIDInputEcho and noGlobalIDInputEcho mirror the input types in
// declaration order. A nil RawMessage drops an absent field; an explicit
// null is kept as "null".
type globalIDInputEcho struct {
	CircularWithoutGlobalIds json.RawMessage `json:"circularWithoutGlobalIds,omitempty"`
	Circular                 json.RawMessage `json:"circular,omitempty"`
	ID                       json.RawMessage `json:"id,omitempty"`
	IDList                   json.RawMessage `json:"idList,omitempty"`
}

type noGlobalIDInputEcho struct {
	Circular json.RawMessage `json:"circular,omitempty"`
	ID       json.RawMessage `json:"id,omitempty"`
}

// NewSchema declares the fixture on a fresh builder and assembles it.
func NewSchema() (*builder.Executable, error) {
	return Declare(builder.New(builder.Options{})).ToSchema()
}

// Declare adds the fixture types and fields to b and returns it.
func Declare(b *builder.Builder) *builder.Builder {
	globalIDInput := b.InputRef("GlobalIDInput")
	noGlobalIDInput := b.InputRef("NoGlobalIDInput")

	globalIDInput.Implement(builder.InputTypeOptions{
		Fields: func(t *builder.InputFieldBuilder) []*builder.InputField {
			return []*builder.InputField{
				t.Field("circularWithoutGlobalIds", noGlobalIDInput, builder.InputFieldOptions{}),
				t.Field("circular", globalIDInput, builder.InputFieldOptions{}),
				t.GlobalID("id", builder.InputFieldOptions{Required: true}),
				t.GlobalIDList("idList", builder.InputFieldOptions{Required: true, RequiredItems: true}),
			}
		},
	})

	noGlobalIDInput.Implement(builder.InputTypeOptions{
		Fields: func(t *builder.InputFieldBuilder) []*builder.InputField {
			return []*builder.InputField{
				t.Field("circular", noGlobalIDInput, builder.InputFieldOptions{}),
				t.ID("id", builder.InputFieldOptions{}),
			}
		},
	})

	b.QueryType(builder.ObjectTypeOptions{
		Fields: func(t *builder.ObjectFieldBuilder) []*builder.Field {
			return []*builder.Field{
				t.String("inputGlobalID", builder.FieldOptions{
					Args: []*builder.InputField{
						t.Arg.GlobalID("id", builder.InputFieldOptions{Required: true}),
						t.Arg.ID("normalId", builder.InputFieldOptions{Required: true}),
						t.Arg.Field("inputObj", globalIDInput, builder.InputFieldOptions{Required: true}),
					},
					Resolve: resolveInputGlobalID,
				}),
			}
		},
	})

	b.MutationType(builder.ObjectTypeOptions{})

	inputType, payloadType := b.RelayMutationField("exampleMutation",
		builder.RelayInputOptions{InputFields: idInputFields},
		builder.RelayFieldOptions{Resolve: mutationResolver("input")},
		builder.RelayPayloadOptions{OutputFields: itWorkedFields},
	)

	b.MutationField(func(t *builder.ObjectFieldBuilder) *builder.Field {
		return t.Field("exampleMutationReUse", payloadType, builder.FieldOptions{
			Args: []*builder.InputField{
				t.Arg.Field("input", inputType, builder.InputFieldOptions{Required: true}),
			},
			Async:   true,
			Resolve: mutationResolver("input"),
		})
	})

	b.RelayMutationField("exampleWithDescriptions",
		builder.RelayInputOptions{
			Name:        "CustomInputName",
			ArgName:     "customInput",
			Description: "input type",
			InputFields: idInputFields,
		},
		builder.RelayFieldOptions{
			Description: "mutation field",
			Resolve:     mutationResolver("customInput"),
		},
		builder.RelayPayloadOptions{
			Name:         "CustomOutputName",
			Description:  "output type",
			OutputFields: itWorkedFields,
		},
	)

	return b
}

func resolveInputGlobalID(_ context.Context, _ any, args builder.Args) (any, error) {
	id, _ := args.GlobalID("id")
	normal, _ := args.String("normalId")
	obj := args.Input("inputObj")
	objID, _ := obj.GlobalID("id")

	out := echo{
		Normal: normal,
		InputObj: inputEcho{
			ID:     objID,
			IDList: obj.GlobalIDList("idList"),
		},
		ID: id,
	}
	if circular := obj.Input("circular"); circular != nil {
		circularID, _ := circular.GlobalID("id")
		nested, err := echoField(circular, "circular", echoGlobalIDInput)
		if err != nil {
			return nil, err
		}
		out.InputObj.Circular = &circularEcho{
			ID:       circularID,
			IDList:   circular.GlobalIDList("idList"),
			Circular: nested,
		}
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// echoField encodes args[name] with enc. It returns nil when the field is
// absent and "null" when it was given as null.
func echoField(args builder.Args, name string, enc func(builder.Args) (json.RawMessage, error)) (json.RawMessage, error) {
	if !args.Has(name) {
		return nil, nil
	}
	nested := args.Input(name)
	if nested == nil {
		return json.RawMessage("null"), nil
	}
	return enc(nested)
}

func echoValue(args builder.Args, name string) (json.RawMessage, error) {
	if !args.Has(name) {
		return nil, nil
	}
	return json.Marshal(args[name])
}

func echoGlobalIDInput(args builder.Args) (json.RawMessage, error) {
	var (
		out globalIDInputEcho
		err error
	)
	if out.CircularWithoutGlobalIds, err = echoField(args, "circularWithoutGlobalIds", echoNoGlobalIDInput); err != nil {
		return nil, err
	}
	if out.Circular, err = echoField(args, "circular", echoGlobalIDInput); err != nil {
		return nil, err
	}
	if out.ID, err = echoValue(args, "id"); err != nil {
		return nil, err
	}
	if out.IDList, err = echoValue(args, "idList"); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func echoNoGlobalIDInput(args builder.Args) (json.RawMessage, error) {
	var (
		out noGlobalIDInputEcho
		err error
	)
	if out.Circular, err = echoField(args, "circular", echoNoGlobalIDInput); err != nil {
		return nil, err
	}
	if out.ID, err = echoValue(args, "id"); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func idInputFields(t *builder.InputFieldBuilder) []*builder.InputField {
	return []*builder.InputField{
		t.ID("id", builder.InputFieldOptions{Required: true}),
	}
}

func itWorkedFields(t *builder.ObjectFieldBuilder) []*builder.Field {
	return []*builder.Field{
		t.Boolean("itWorked", builder.FieldOptions{
			Resolve: func(_ context.Context, parent any, _ builder.Args) (any, error) {
				res, _ := parent.(*mutationResult)
				return res != nil && res.Status == 200, nil
			},
		}),
	}
}

// mutationResolver returns the resolver shared by every fixture mutation.
// argName is the name of the input argument.
func mutationResolver(argName string) builder.Resolver {
	return func(_ context.Context, _ any, args builder.Args) (any, error) {
		input := args.Input(argName)
		if cmid, _ := input.String("clientMutationId"); cmid == "" {
			return nil, ErrMissingClientMutationID
		}
		status := 500
		if id, _ := input.String("id"); id == "123" {
			status = 200
		}
		return &mutationResult{Status: status}, nil
	}
}
