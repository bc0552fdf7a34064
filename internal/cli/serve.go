package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/rulebook/pkg/adapters/http"
	mcpadapter "github.com/aretw0/rulebook/pkg/adapters/mcp"
	"github.com/aretw0/rulebook/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may take after a stop signal.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	EngineOptions
	Addr string
	Log  LogOptions
}

// NewHTTPHandler wires the engine, request logging and a private metrics registry.
func NewHTTPHandler(opts ServeOptions) (http.Handler, error) {
	logger := createLogger(opts.Log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	engine := createEngine(opts.EngineOptions, logger, metrics.Hooks(), observability.LogHooks(logger))
	return httpadapter.NewHandler(engine,
		httpadapter.WithLogger(logger),
		httpadapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	), nil
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions, out io.Writer) error {
	handler, err := NewHTTPHandler(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSystemMessage(out, "Starting rulebook server on %s", srv.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if sig := interruptedBy(ctx); sig != nil {
			printSystemMessage(out, "Received %v, shutting down...", sig)
		} else {
			printSystemMessage(out, "Shutting down...")
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Join(fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err), srv.Close())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	printSystemMessage(out, "Server stopped gracefully")
	return nil
}

// MCPOptions configures the MCP stdio server.
type MCPOptions struct {
	SourceOptions
	EngineOptions
	// WithSources exposes run_rulebook and the rules resource over the configured files.
	WithSources bool
	Log         LogOptions
}

// ServeMCP runs the MCP server over stdio. Logs go to Stderr so they never
// corrupt the JSON-RPC stream on Stdout.
func ServeMCP(opts MCPOptions) error {
	logger := createLogger(opts.Log)
	engine := createEngine(opts.EngineOptions, logger, observability.LogHooks(logger))

	mcpOpts := []mcpadapter.Option{mcpadapter.WithLogger(logger)}
	if opts.WithSources {
		rules, err := newRuleLoader(opts.Rules)
		if err != nil {
			return err
		}
		facts, _, closeFacts := newFactStore(opts.SourceOptions)
		defer closeFacts()
		mcpOpts = append(mcpOpts, mcpadapter.WithSources(rules, facts))
	}

	logger.Info("Starting rulebook MCP server (stdio)")
	return mcpadapter.NewServer(engine, mcpOpts...).ServeStdio()
}
