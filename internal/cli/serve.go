package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree over HTTP",
		Long: `Serve the tree over HTTP.

The API lists and edits members, serves the layout as JSON or SVG, accepts
drag updates, and exposes Prometheus metrics on /metrics. The acting user is
read from the X-Actor header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, listen string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	svc, err := c.openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Store.Close()

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sess, err := c.openSession(ctx, cfg, runner)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	metrics := observability.NewMetrics(appName)
	observability.Register(metrics)
	defer observability.Reset()

	srv := server.New(server.Config{
		Service:     svc,
		Runner:      runner,
		Session:     sess,
		Metrics:     metrics,
		Logger:      c.Logger,
		Layout:      layoutOptions(cfg),
		Listen:      cfg.Server.Listen,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	printSuccess("Serving tree %s", StyleHighlight.Render(cfg.Tree))
	printKeyValue("Listen", cfg.Server.Listen)
	printKeyValue("Store", cfg.Store.Driver)
	printKeyValue("Cache", cfg.Cache.Driver)
	return srv.Run(ctx)
}
