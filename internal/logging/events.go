package logging

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	eventbus "github.com/hanpama/relaygraph/internal/eventbus"
	events "github.com/hanpama/relaygraph/internal/events"
	reqid "github.com/hanpama/relaygraph/internal/reqid"
)

// Subscribe logs finished HTTP requests, GraphQL operations and failed
// resolvers from the global bus.
func Subscribe(logger logrus.FieldLogger) (unsubscribe func()) {
	entry := func(ctx context.Context) logrus.FieldLogger {
		if rid, ok := reqid.FromContext(ctx); ok {
			return logger.WithField("request_id", rid)
		}
		return logger
	}

	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			l := entry(ctx).WithFields(logrus.Fields{
				"method":      e.Request.Method,
				"path":        e.Request.URL.Path,
				"status":      e.Status,
				"duration_ms": e.Duration.Milliseconds(),
			})
			if e.Status >= http.StatusInternalServerError {
				l.Error("HTTP request failed")
				return
			}
			l.Info("HTTP request")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			l := entry(ctx).WithFields(logrus.Fields{
				"operation_name": e.OperationName,
				"operation_type": e.OperationType,
				"error_count":    len(e.Errors),
				"duration_ms":    e.Duration.Milliseconds(),
			})
			if len(e.Errors) > 0 {
				l.WithError(e.Errors[0]).Warn("GraphQL operation finished with errors")
				return
			}
			l.Debug("GraphQL operation")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.FieldResolveFinish) {
			if e.Err == nil {
				return
			}
			entry(ctx).WithFields(logrus.Fields{
				"field":       e.ObjectType + "." + e.Field,
				"async":       e.Async,
				"duration_ms": e.Duration.Milliseconds(),
			}).WithError(e.Err).Warn("Resolver failed")
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
