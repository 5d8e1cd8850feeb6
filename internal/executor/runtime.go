package executor

import "context"

// Runtime resolves fields for the Executor.
//
// At each depth the Executor drains every synchronous field through
// ResolveSync, then hands every async field found at that depth to a single
// BatchResolveAsync call. The next depth starts only after the batch returns.
//
// objectType is the parent type name ("Mutation" for mutation root fields),
// source the parent value (nil at the root) and args the coerced arguments.
// Nullable arguments that were omitted and have no default are absent.
// Implementations must be safe for concurrent operations and must not mutate
// source or args.
type Runtime interface {
	// ResolveSync resolves one field. (nil, nil) is a GraphQL null.
	ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of async fields. results[i] belongs
	// to tasks[i]; a failing task does not fail its neighbours. Mutation root
	// tasks must run in task order, one after another.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// SerializeLeafValue converts a scalar or enum value to its JSON form.
	SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error)
}

type AsyncResolveTask struct {
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

type AsyncResolveResult struct {
	Value any
	Error error
}
