// Package store assembles the repositories the services run on, either in
// memory or on PostgreSQL with optional Redis sessions.
package store

import (
	"context"
	"time"

	"github.com/jrsteele09/tenant-dashboard/clients"
	"github.com/jrsteele09/tenant-dashboard/internal/config"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/sessions"
	"github.com/jrsteele09/tenant-dashboard/store/postgres"
	"github.com/jrsteele09/tenant-dashboard/store/redisstore"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Pinger is a backend that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Repos holds all repository dependencies of the dashboard services.
type Repos struct {
	Tenants  tenants.Repo
	Clients  clients.Repo
	Sessions sessions.Repo
	Metrics  metrics.Repo

	// Checks are the backends reported by the health endpoint, by name.
	Checks map[string]Pinger

	postgres *postgres.Store
	closers  []func()
}

// NewInMemory returns empty in-memory repositories.
func NewInMemory() *Repos {
	return &Repos{
		Tenants:  tenants.NewInMemoryRepo(),
		Clients:  clients.NewInMemoryRepo(),
		Sessions: sessions.NewInMemoryRepo(),
		Metrics:  metrics.NewInMemoryRepo(),
		Checks:   map[string]Pinger{},
	}
}

// Open builds the repositories selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (*Repos, error) {
	repos := NewInMemory()

	if cfg.GetStoreDriver() == config.StoreDriverPostgres {
		pg, err := postgres.Open(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, errors.Wrap(err, "[store.Open] postgres")
		}
		repos.postgres = pg
		repos.Tenants = pg.Tenants
		repos.Clients = pg.Clients
		repos.Sessions = pg.Sessions
		repos.Metrics = pg.Metrics
		repos.Checks["postgres"] = pg
		repos.closers = append(repos.closers, pg.Close)
	}

	if cfg.GetSessionStore() == config.SessionStoreRedis {
		client, err := redisstore.Open(ctx, cfg.GetRedisURL())
		if err != nil {
			repos.Close()
			return nil, errors.Wrap(err, "[store.Open] redis")
		}
		sessionRepo := redisstore.NewSessionRepo(client)
		repos.Sessions = sessionRepo
		repos.Checks["redis"] = sessionRepo
		repos.closers = append(repos.closers, func() { _ = client.Close() })
	}

	log.Info().
		Str("driver", cfg.GetStoreDriver()).
		Str("sessions", cfg.GetSessionStore()).
		Msg("store opened")
	return repos, nil
}

// Migrate applies the database migrations. It does nothing for the in-memory store.
func (r *Repos) Migrate(ctx context.Context) error {
	if r.postgres == nil {
		return nil
	}
	return r.postgres.Migrate(ctx)
}

// expirer is a session repo that can purge expired rows. Redis expires
// sessions by TTL and does not implement it.
type expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SweepExpiredSessions deletes sessions expired at now, when the session
// store needs it, and returns how many were removed.
func (r *Repos) SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	e, ok := r.Sessions.(expirer)
	if !ok {
		return 0, nil
	}
	n, err := e.DeleteExpired(ctx, now)
	if err != nil {
		return 0, errors.Wrap(err, "[SweepExpiredSessions] sessions.DeleteExpired")
	}
	return n, nil
}

// Ping checks every backend and returns the failures by name.
func (r *Repos) Ping(ctx context.Context) map[string]error {
	failed := map[string]error{}
	for name, p := range r.Checks {
		if err := p.Ping(ctx); err != nil {
			failed[name] = err
		}
	}
	return failed
}

func (r *Repos) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}
