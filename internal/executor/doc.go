// Package executor runs GraphQL operations breadth-first against a
// schema.Schema, delegating field resolution to a Runtime.
//
// # Preparation
//
// The operation is chosen by name, or the only one when no name is given.
// Variables are coerced against their definitions and any failure stops the
// request before a resolver runs. Subscriptions are not supported.
//
// Input coercion follows the supplied value: input objects are checked field
// by field (unknown and missing required fields are errors) and fields that
// were omitted without a default stay absent, so recursive input types need no
// special handling.
//
// # Execution
//
// Synchronous fields are resolved through Runtime.ResolveSync and expanded in
// place. Async fields (schema.Field.Async) found at one depth are queued and
// handed to Runtime.BatchResolveAsync in one call; their async children form
// the next batch. A graph with async depth d costs exactly d batch calls.
//
// Results are written into a tree of slots as they complete. A null in a
// Non-Null position is moved to the nearest nullable ancestor, or to the data
// root, and queued fields under a nullified position are dropped.
//
// # Errors
//
// Field errors are recorded with their response path and execution continues
// where the schema allows it. Resolver errors implementing ExtendedError keep
// their extensions. Argument coercion failures are field errors and the
// resolver is not called.
package executor
