package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voluntr/internal/platform/config"
	"voluntr/internal/platform/logger"
)

// cli carries what the root command loads before any subcommand runs.
type cli struct {
	cfg    config.Server
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "voluntr:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "voluntr",
		Short:         "Volunteer and NGO matching service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.New(cfg.Environment, cfg.LogLevel)
			slog.SetDefault(c.logger)
			return nil
		},
	}
	root.AddCommand(
		serveCmd(c),
		migrateCmd(c),
		seedCmd(c),
		organizationsCmd(c),
	)
	return root
}
