// Package otel turns bus events into OpenTelemetry spans: one http.request
// span per request, a graphql.operation span under it and a graphql.resolve
// span per resolver call.
package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	eventbus "github.com/hanpama/relaygraph/internal/eventbus"
	events "github.com/hanpama/relaygraph/internal/events"
	reqid "github.com/hanpama/relaygraph/internal/reqid"
)

const tracerName = "relaygraph"

// Setup exports spans over OTLP/gRPC to endpoint and subscribes to the bus.
// An empty endpoint disables tracing. The returned func unsubscribes and
// flushes the exporter.
func Setup(endpoint, service string) (shutdown func(context.Context) error, err error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(service))),
	)
	otel.SetTracerProvider(tp)
	unsubscribe := Register(tp.Tracer(tracerName))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register records spans for bus events with tracer. Events of one request
// are tied together by the request ID in their context.
func Register(tracer trace.Tracer) (unsubscribe func()) {
	r := &recorder{tracer: tracer, open: make(map[string]*requestSpans)}
	unsubs := []func(){
		eventbus.Subscribe(r.httpStart),
		eventbus.Subscribe(r.httpFinish),
		eventbus.Subscribe(r.operationStart),
		eventbus.Subscribe(r.operationFinish),
		eventbus.Subscribe(r.resolveFinish),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// requestSpans are the spans still open for one request.
type requestSpans struct {
	http      trace.Span
	operation trace.Span
}

type recorder struct {
	tracer trace.Tracer
	mu     sync.Mutex
	open   map[string]*requestSpans
}

func (r *recorder) spans(ctx context.Context, create bool) *requestSpans {
	rid, _ := reqid.FromContext(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.open[rid]
	if s == nil && create {
		s = &requestSpans{}
		r.open[rid] = s
	}
	return s
}

func (r *recorder) httpStart(ctx context.Context, e events.HTTPStart) {
	_, span := r.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.HTTPMethodKey.String(e.Request.Method),
			attribute.String("http.target", e.Request.URL.Path),
		))
	r.spans(ctx, true).http = span
}

func (r *recorder) httpFinish(ctx context.Context, e events.HTTPFinish) {
	rid, _ := reqid.FromContext(ctx)
	r.mu.Lock()
	s := r.open[rid]
	delete(r.open, rid)
	r.mu.Unlock()
	if s == nil || s.http == nil {
		return
	}
	s.http.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
	if e.Status >= 500 {
		s.http.SetStatus(codes.Error, "")
	}
	s.http.End()
}

func (r *recorder) operationStart(ctx context.Context, e events.GraphQLStart) {
	s := r.spans(ctx, true)
	parent := ctx
	if s.http != nil {
		parent = trace.ContextWithSpan(ctx, s.http)
	}
	_, s.operation = r.tracer.Start(parent, "graphql.operation", trace.WithAttributes(
		attribute.String("graphql.operation.name", e.OperationName),
		attribute.String("graphql.operation.type", e.OperationType),
	))
}

func (r *recorder) operationFinish(ctx context.Context, e events.GraphQLFinish) {
	s := r.spans(ctx, false)
	if s == nil || s.operation == nil {
		return
	}
	span := s.operation
	s.operation = nil
	span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
	for _, err := range e.Errors {
		span.AddEvent("graphql.error", trace.WithAttributes(attribute.String("message", err.Error())))
	}
	span.End()
}

// resolveFinish records a finished resolver call after the fact. Async
// resolvers of one batch overlap, so no span is held open for them.
func (r *recorder) resolveFinish(ctx context.Context, e events.FieldResolveFinish) {
	parent := ctx
	if s := r.spans(ctx, false); s != nil {
		if s.operation != nil {
			parent = trace.ContextWithSpan(ctx, s.operation)
		} else if s.http != nil {
			parent = trace.ContextWithSpan(ctx, s.http)
		}
	}
	_, span := r.tracer.Start(parent, "graphql.resolve",
		trace.WithTimestamp(e.Start),
		trace.WithAttributes(
			attribute.String("graphql.field.parent", e.ObjectType),
			attribute.String("graphql.field.name", e.Field),
			attribute.Bool("graphql.field.async", e.Async),
		))
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End(trace.WithTimestamp(e.Start.Add(e.Duration)))
}
