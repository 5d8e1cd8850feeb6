// Package server exposes an executor over HTTP: GET and POST requests,
// batched POST bodies, operation validation and an optional GraphiQL page.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc/metadata"

	eventbus "github.com/hanpama/relaygraph/internal/eventbus"
	events "github.com/hanpama/relaygraph/internal/events"
	executor "github.com/hanpama/relaygraph/internal/executor"
	language "github.com/hanpama/relaygraph/internal/language"
	reqid "github.com/hanpama/relaygraph/internal/reqid"
	schema "github.com/hanpama/relaygraph/internal/schema"
)

// RequestIDMetadataKey carries the request ID in the outgoing metadata that
// resolvers see.
//
// The handler only fills the outgoing metadata. Nothing in this module reads
// it back: resolvers that call gRPC services pass their ctx to the client
// call and the metadata goes along with it. Read it with
// metadata.FromOutgoingContext.
const RequestIDMetadataKey = "graphql-request-id"

// Handler serves one GraphQL endpoint.
type Handler struct {
	exec      *executor.Executor
	validator *language.ValidatedSchema
	opts      Options
	forward   map[string]bool
}

type Options struct {
	// Timeout bounds requests whose context has no deadline. Zero disables it.
	Timeout time.Duration
	// Pretty indents responses.
	Pretty bool
	// MaxBodyBytes caps POST bodies. Zero means unlimited.
	MaxBodyBytes int64
	// CORSOrigins enables CORS for the listed origins; "*" allows any.
	CORSOrigins []string
	// MetadataHeaders are copied from the request into outgoing gRPC
	// metadata so resolvers calling other services can forward them.
	MetadataHeaders []string
	GraphiQL        bool
	// Validate checks every operation against the schema before execution.
	Validate bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option  { return func(o *Options) { o.CORSOrigins = origins } }
func WithGraphiQL(enable bool) Option    { return func(o *Options) { o.GraphiQL = enable } }
func WithValidation(enable bool) Option  { return func(o *Options) { o.Validate = enable } }
func WithMetadataHeaders(h ...string) Option {
	return func(o *Options) { o.MetadataHeaders = h }
}

// New builds a Handler for sch. With validation on, the schema is rendered
// to SDL and loaded into gqlparser once; New fails if gqlparser rejects it.
func New(runtime executor.Runtime, sch *schema.Schema, opts ...Option) (*Handler, error) {
	o := Options{Timeout: 10 * time.Second, GraphiQL: true, Validate: true}
	for _, opt := range opts {
		opt(&o)
	}
	h := &Handler{
		exec:    executor.NewExecutor(runtime, sch),
		opts:    o,
		forward: make(map[string]bool, len(o.MetadataHeaders)),
	}
	for _, name := range o.MetadataHeaders {
		h.forward[strings.ToLower(name)] = true
	}
	if o.Validate {
		v, err := language.LoadSchema("schema.graphql", schema.Render(sch))
		if err != nil {
			return nil, fmt.Errorf("load schema for validation: %w", err)
		}
		h.validator = v
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}
	ctx, rid := reqid.WithID(ctx, r.Header.Get(reqid.Header))
	w.Header().Set(reqid.Header, rid)

	rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: rw.status, Duration: time.Since(start)})
	}()

	cors := h.allowOrigin(rw, r)
	switch {
	case r.Method == http.MethodOptions:
		if cors {
			preflight(rw, r)
		}
		rw.WriteHeader(http.StatusNoContent)
		return
	case r.Method != http.MethodGet && r.Method != http.MethodPost:
		h.write(rw, http.StatusMethodNotAllowed, requestFailure("method not allowed"))
		return
	case r.Method == http.MethodGet && h.opts.GraphiQL && r.URL.Query().Get("query") == "" && acceptsHTML(r.Header.Get("Accept")):
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = rw.Write(graphiqlPage)
		return
	}

	reqs, batched, err := parseRequest(r, h.opts.MaxBodyBytes)
	if err != nil {
		h.write(rw, err.status, requestFailure(err.message))
		return
	}

	ctx = metadata.NewOutgoingContext(ctx, h.metadata(r, rid))
	if !batched {
		h.write(rw, http.StatusOK, h.execute(ctx, reqs[0]))
		return
	}
	out := make([]any, len(reqs))
	for i, req := range reqs {
		out[i] = h.execute(ctx, req)
	}
	h.write(rw, http.StatusOK, out)
}

// metadata selects the forwarded headers and adds the request ID.
func (h *Handler) metadata(r *http.Request, rid string) metadata.MD {
	md := metadata.MD{}
	for name, values := range r.Header {
		if key := strings.ToLower(name); h.forward[key] {
			md[key] = values
		}
	}
	md[RequestIDMetadataKey] = []string{rid}
	return md
}

func (h *Handler) execute(ctx context.Context, req Request) any {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return syntaxFailure(err)
	}
	if h.validator != nil {
		if errs := language.Validate(h.validator, doc); len(errs) > 0 {
			return validationFailure(errs)
		}
	}

	opType := ""
	if op := pickOperation(doc, req.OperationName); op != nil {
		opType = string(op.Operation)
	}
	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	res := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)
	errs := make([]error, len(res.Errors))
	for i, e := range res.Errors {
		errs[i] = e
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        errs,
		Duration:      time.Since(start),
	})
	return res
}

func pickOperation(doc *language.QueryDocument, name string) *language.OperationDefinition {
	if op := doc.Operations.ForName(name); op != nil {
		return op
	}
	if name == "" && len(doc.Operations) == 1 {
		return doc.Operations[0]
	}
	return nil
}

// statusWriter remembers the status code for the finish event.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
