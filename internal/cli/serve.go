package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellmap/pkg/api"
	"github.com/matzehuels/cellmap/pkg/cache"
	"github.com/matzehuels/cellmap/pkg/observability"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		opts    api.Options
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Routes:
  POST /v1/layouts      config document -> layout JSON
  POST /v1/layouts/svg  config document -> SVG
  GET  /healthz         build information
  GET  /metrics         Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, opts, metrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "concurrent site layouts per request (default: number of CPUs)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "per-request timeout")
	cmd.Flags().Int64Var(&opts.MaxBodyBytes, "max-body", api.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, opts api.Options, metrics bool) error {
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := observability.NewMetrics(reg)
		observability.SetPipelineHooks(m)
		observability.SetCacheHooks(m)
		observability.SetHTTPHooks(m)
		defer observability.Reset()
		opts.Gatherer = reg
	}

	runner, err := c.newRunner(ctx, cache.NewScopedKeyer(nil, "api:"))
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(runner, c.Logger, opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr, "metrics", metrics)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
