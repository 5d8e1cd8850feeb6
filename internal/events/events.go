// Package events declares the values published on the event bus while a
// request is served. Subscribers receive the request context, which carries
// the request ID.
package events

import (
	"net/http"
	"time"
)

type (
	// HTTPStart is published when the handler receives a request.
	HTTPStart struct {
		Request *http.Request
	}

	// HTTPFinish is published once the response is written.
	HTTPFinish struct {
		Request  *http.Request
		Status   int
		Duration time.Duration
	}
)

type (
	// GraphQLStart is published after validation, before execution.
	GraphQLStart struct {
		Query         string
		OperationName string
		OperationType string
	}

	GraphQLFinish struct {
		Query         string
		OperationName string
		OperationType string
		Errors        []error
		Duration      time.Duration
	}
)

type (
	// FieldResolveStart is published before a declared resolver runs.
	// Fields read straight from their parent publish nothing.
	FieldResolveStart struct {
		ObjectType string
		Field      string
		Async      bool
	}

	// FieldResolveFinish carries the start time so that overlapping async
	// resolvers can be recorded after the fact.
	FieldResolveFinish struct {
		ObjectType string
		Field      string
		Async      bool
		Err        error
		Start      time.Time
		Duration   time.Duration
	}
)
