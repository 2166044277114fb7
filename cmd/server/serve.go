package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/tenant-dashboard/internal/config"
	"github.com/jrsteele09/tenant-dashboard/server"
	"github.com/jrsteele09/tenant-dashboard/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	migrate    bool
	seed       bool
	sweepEvery time.Duration
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.migrate, "migrate", true, "apply database migrations before serving")
	cmd.Flags().BoolVar(&o.seed, "seed", false, "create the demo tenant before serving")
	cmd.Flags().DurationVar(&o.sweepEvery, "session-sweep", 0, "interval for deleting expired sessions, 0 keeps them")
}

func newServeCmd(cfg config.Config) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, cfg config.Config, opts *serveOptions) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	displayAppname(cfg.GetAppName())

	repos, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	if opts.migrate {
		if err := repos.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	srv, err := server.New(cfg, repos)
	if err != nil {
		return err
	}

	if opts.seed && cfg.GetDemoSeedEnabled() {
		res, err := srv.Dashboard().SeedDemoData(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info().Str("tenant", res.TenantID).Msg(res.Message)
	}

	httpServer := &http.Server{
		Addr:              cfg.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()
	go sweepSessions(ctx, repos, opts.sweepEvery)

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	if err := shutdown(httpServer); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

// sweepSessions periodically removes expired sessions until ctx is done.
func sweepSessions(ctx context.Context, repos *store.Repos, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repos.SweepExpiredSessions(ctx, now.UTC())
			if err != nil {
				log.Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("expired sessions removed")
			}
		}
	}
}
