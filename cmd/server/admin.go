package main

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/tenant-dashboard/internal/config"
	"github.com/jrsteele09/tenant-dashboard/server"
	"github.com/jrsteele09/tenant-dashboard/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.GetStoreDriver() != config.StoreDriverPostgres {
				return errors.New("migrate needs STORE_DRIVER=postgres")
			}
			ctx := cmd.Context()
			repos, err := store.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer repos.Close()
			return repos.Migrate(ctx)
		},
	}
}

func newSeedCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo tenant, its admin and thirty days of metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cfg.GetDemoSeedEnabled() {
				return errors.New("demo seeding is disabled")
			}
			ctx := cmd.Context()
			repos, err := store.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			if err := repos.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			srv, err := server.New(cfg, repos)
			if err != nil {
				return err
			}
			res, err := srv.Dashboard().SeedDemoData(ctx)
			if err != nil {
				return err
			}
			log.Info().Str("tenant", res.TenantID).Msg(res.Message)
			return nil
		},
	}
}
