package builder

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	clientMutationIDField = "clientMutationId"
	defaultRelayArgName   = "input"
)

// RelayInputOptions configures the generated input type of a Relay mutation.
// Name defaults to the capitalized field name followed by "Input" and ArgName
// to "input".
type RelayInputOptions struct {
	Name        string
	ArgName     string
	Description string
	InputFields func(t *InputFieldBuilder) []*InputField
}

// RelayFieldOptions configures the mutation field itself. Resolve receives the
// decoded arguments; the input object, including clientMutationId, is
// available through args.Input(argName).
type RelayFieldOptions struct {
	Description       string
	DeprecationReason string
	Resolve           Resolver
}

// RelayPayloadOptions configures the generated payload type. Name defaults to
// the capitalized field name followed by "Payload". Output fields resolve
// against the value returned by the mutation resolver.
type RelayPayloadOptions struct {
	Name         string
	Description  string
	OutputFields func(t *ObjectFieldBuilder) []*Field
}

// relayPayload is the value a Relay mutation field resolves to. Payload fields
// other than clientMutationId see value as their parent.
type relayPayload struct {
	value            any
	clientMutationID any
}

// RelayMutationField adds a Relay-style mutation field named name. It
// generates an input type carrying the declared input fields plus a nullable
// clientMutationId, and a payload type carrying the declared output fields
// plus clientMutationId echoed from the input. The generated refs are ordinary
// type references and may be used by other fields.
func (b *Builder) RelayMutationField(name string, input RelayInputOptions, field RelayFieldOptions, payload RelayPayloadOptions) (*InputRef, *ObjectRef) {
	inputName := input.Name
	if inputName == "" {
		inputName = capitalize(name) + "Input"
	}
	payloadName := payload.Name
	if payloadName == "" {
		payloadName = capitalize(name) + "Payload"
	}
	argName := input.ArgName
	if argName == "" {
		argName = defaultRelayArgName
	}

	inputRef := b.InputRef(inputName).Implement(InputTypeOptions{
		Description: input.Description,
		Fields: func(t *InputFieldBuilder) []*InputField {
			var fields []*InputField
			if input.InputFields != nil {
				fields = input.InputFields(t)
			}
			return append(fields, t.ID(clientMutationIDField, InputFieldOptions{}))
		},
	})

	payloadRef := b.ObjectRef(payloadName).Implement(ObjectTypeOptions{
		Description: payload.Description,
		Fields: func(t *ObjectFieldBuilder) []*Field {
			var fields []*Field
			if payload.OutputFields != nil {
				fields = payload.OutputFields(t)
			}
			echo := t.ID(clientMutationIDField, FieldOptions{
				Nullable: true,
				Resolve: func(_ context.Context, parent any, _ Args) (any, error) {
					if p, ok := parent.(*relayPayload); ok {
						return p.clientMutationID, nil
					}
					return nil, nil
				},
			})
			echo.rawParent = true
			return append(fields, echo)
		},
	})

	if field.Resolve == nil {
		b.errs = append(b.errs, fmt.Errorf("relay mutation %s has no resolver", name))
	}
	resolve := field.Resolve

	b.MutationField(func(t *ObjectFieldBuilder) *Field {
		return t.Field(name, payloadRef, FieldOptions{
			Description:       field.Description,
			DeprecationReason: field.DeprecationReason,
			Async:             true,
			Args: []*InputField{
				t.Arg.Field(argName, inputRef, InputFieldOptions{Required: true}),
			},
			Resolve: func(ctx context.Context, parent any, args Args) (any, error) {
				if resolve == nil {
					return nil, fmt.Errorf("relay mutation %s has no resolver", name)
				}
				v, err := resolve(ctx, parent, args)
				if err != nil {
					return nil, err
				}
				var cmid any
				if in := args.Input(argName); in != nil {
					cmid = in[clientMutationIDField]
				}
				return &relayPayload{value: v, clientMutationID: cmid}, nil
			},
		})
	})

	return inputRef, payloadRef
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
