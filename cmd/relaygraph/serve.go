package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hanpama/relaygraph/internal/config"
	"github.com/hanpama/relaygraph/internal/eventbus"
	"github.com/hanpama/relaygraph/internal/example"
	"github.com/hanpama/relaygraph/internal/introspection"
	"github.com/hanpama/relaygraph/internal/logging"
	"github.com/hanpama/relaygraph/internal/otel"
	"github.com/hanpama/relaygraph/internal/server"
)

type serveOptions struct {
	addr            string
	pretty          bool
	timeout         time.Duration
	maxBodyBytes    int64
	metadataHeaders []string
	introspection   bool
	graphiql        bool
	otelEndpoint    string
	otelService     string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP GraphQL server",
		Long: `Run the HTTP GraphQL server.

The GraphQL endpoint is mounted at /graphql. Browsers requesting it with
GET are served GraphiQL.

Examples:
  relaygraph serve --server.addr :9000
  RELAYGRAPH_PRETTY=true relaygraph serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyServeEnv(cmd, opts)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ln, err := net.Listen("tcp", opts.addr)
			if err != nil {
				return err
			}
			return serve(ctx, root, opts, ln)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "server.addr", ":8080", "HTTP listen address")
	f.BoolVar(&opts.pretty, "server.pretty", false, "Pretty-print JSON responses")
	f.DurationVar(&opts.timeout, "server.timeout", 10*time.Second, "Per-request timeout")
	f.Int64Var(&opts.maxBodyBytes, "server.max-body-bytes", 1<<20, "Maximum request body size")
	f.StringSliceVar(&opts.metadataHeaders, "server.metadata-header", nil, "Copy HTTP header into request metadata. Repeatable")
	f.BoolVar(&opts.introspection, "graphql.introspection", true, "Enable GraphQL introspection")
	f.BoolVar(&opts.graphiql, "graphql.graphiql", true, "Serve GraphiQL to browsers")
	f.StringVar(&opts.otelEndpoint, "otel.endpoint", "", "OTLP collector endpoint")
	f.StringVar(&opts.otelService, "otel.service", "relaygraph", "OpenTelemetry service name")
	return cmd
}

// applyServeEnv fills flags the user did not set from the environment.
func applyServeEnv(cmd *cobra.Command, opts *serveOptions) {
	f := cmd.Flags()
	if !f.Changed("server.addr") {
		opts.addr = config.GetEnv(config.EnvAddr, opts.addr)
	}
	if !f.Changed("server.pretty") {
		opts.pretty = config.GetEnvBool(config.EnvPretty, opts.pretty)
	}
	if !f.Changed("server.timeout") {
		opts.timeout = config.GetEnvDuration(config.EnvTimeout, opts.timeout)
	}
	if !f.Changed("graphql.introspection") {
		opts.introspection = config.GetEnvBool(config.EnvIntrospection, opts.introspection)
	}
	if !f.Changed("otel.endpoint") {
		opts.otelEndpoint = config.GetEnv(config.EnvOTelEndpoint, opts.otelEndpoint)
	}
	if !f.Changed("otel.service") {
		opts.otelService = config.GetEnv(config.EnvOTelService, opts.otelService)
	}
}

func newHandler(opts *serveOptions) (http.Handler, error) {
	exe, err := example.NewSchema()
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	runtime, sch := exe.Runtime, exe.Schema
	if opts.introspection {
		w := introspection.Wrap(runtime, sch)
		runtime, sch = w.Runtime, w.Schema
	}

	sopts := []server.Option{server.WithGraphiQL(opts.graphiql)}
	if opts.pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if opts.timeout > 0 {
		sopts = append(sopts, server.WithTimeout(opts.timeout))
	}
	if opts.maxBodyBytes > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(opts.maxBodyBytes))
	}
	if len(opts.metadataHeaders) > 0 {
		sopts = append(sopts, server.WithMetadataHeaders(opts.metadataHeaders...))
	}
	h, err := server.New(runtime, sch, sopts...)
	if err != nil {
		return nil, fmt.Errorf("server init: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	return mux, nil
}

// serve runs the server on ln until ctx is cancelled.
func serve(ctx context.Context, root *rootOptions, opts *serveOptions, ln net.Listener) error {
	log := root.logger

	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	defer logging.Subscribe(log)()

	shutdownOTel, err := otel.Setup(opts.otelEndpoint, opts.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.WithError(err).Warn("OpenTelemetry shutdown failed")
		}
	}()

	handler, err := newHandler(opts)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("GraphQL server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
