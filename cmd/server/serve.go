package main

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voluntr/internal/platform/httpserver"
	"voluntr/internal/platform/postgres"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(c *cli) *cobra.Command {
	var migrate, seedDemo bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the audit relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), c, migrate, seedDemo)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	cmd.Flags().BoolVar(&seedDemo, "seed", false, "load the built-in demo fixtures before serving")
	return cmd
}

func serve(ctx context.Context, c *cli, migrate, seedDemo bool) error {
	a, err := newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrate && a.db != nil {
		if err := postgres.Migrate(a.db, c.logger); err != nil {
			return err
		}
	}

	if seedDemo {
		f, err := parseFixtures(bytes.NewReader(demoFixtures))
		if err != nil {
			return err
		}
		n, err := a.seed(ctx, f, time.Now())
		if err != nil {
			return err
		}
		c.logger.Info("demo fixtures loaded", "organizations", n.orgs, "events", n.events, "volunteers", n.volunteers)
	}

	router, err := a.router()
	if err != nil {
		return err
	}
	srv := httpserver.New(c.cfg.Addr, router, c.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.logger.Info("starting voluntr", "env", c.cfg.Environment)
		return httpserver.Serve(ctx, srv, shutdownTimeout, c.logger)
	})
	if relay := a.relay(); relay != nil {
		g.Go(func() error {
			if err := a.producer.EnsureTopic(ctx, 3, 1); err != nil {
				c.logger.Warn("audit topic not ensured", "error", err)
			}
			return relay.Run(ctx)
		})
	}

	return g.Wait()
}
