package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/tenant-dashboard/clients"
	"github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/internal/utils"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/sessions"
	"github.com/jrsteele09/tenant-dashboard/store/postgres"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL and applies the migrations.
// Records use random domains so runs do not collide.
func setupTestDB(t *testing.T) *postgres.Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := postgres.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.Migrate(ctx))
	// Migrating twice is a no-op
	require.NoError(t, store.Migrate(ctx))
	return store
}

func newTenant(t *testing.T, store *postgres.Store) *tenants.Tenant {
	t.Helper()
	tenant := &tenants.Tenant{
		Name:                      "Acme",
		Domain:                    uuid.NewString() + ".example.com",
		GoogleAnalyticsPropertyID: "123",
		IsActive:                  true,
		CreatedAt:                 time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Tenants.Insert(context.Background(), tenant))
	return tenant
}

func TestTenantRepo(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	tenant := newTenant(t, store)

	got, err := store.Tenants.GetByDomain(ctx, tenant.Domain)
	require.NoError(t, err)
	require.Equal(t, tenant.ID, got.ID)
	require.Equal(t, "123", got.GoogleAnalyticsPropertyID)
	require.Equal(t, tenant.CreatedAt, got.CreatedAt)
	require.True(t, got.Google.IsZero())

	t.Run("duplicate domain", func(t *testing.T) {
		err := store.Tenants.Insert(ctx, &tenants.Tenant{Name: "Copy", Domain: tenant.Domain})
		require.ErrorIs(t, err, errors.ErrDuplicateDomain)
	})

	t.Run("google token lifecycle", func(t *testing.T) {
		expires := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
		require.NoError(t, store.Tenants.SetGoogleTokens(ctx, tenant.ID, tenants.GoogleTokens{
			AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires, AccountEmail: "owner@acme.test",
		}))
		got, err := store.Tenants.Get(ctx, tenant.ID)
		require.NoError(t, err)
		require.True(t, got.IsGoogleConnected)
		require.Equal(t, expires, got.Google.ExpiresAt)

		later := expires.Add(time.Hour)
		require.NoError(t, store.Tenants.UpdateAccessToken(ctx, tenant.ID, "a2", later))
		got, err = store.Tenants.Get(ctx, tenant.ID)
		require.NoError(t, err)
		require.Equal(t, "a2", got.Google.AccessToken)
		require.Equal(t, "r1", got.Google.RefreshToken)
		require.Equal(t, later, got.Google.ExpiresAt)

		require.NoError(t, store.Tenants.ClearGoogleTokens(ctx, tenant.ID))
		got, err = store.Tenants.Get(ctx, tenant.ID)
		require.NoError(t, err)
		require.False(t, got.IsGoogleConnected)
		require.True(t, got.Google.IsZero())
	})

	t.Run("deactivate", func(t *testing.T) {
		require.NoError(t, store.Tenants.SetActive(ctx, tenant.ID, false))
		got, err := store.Tenants.Get(ctx, tenant.ID)
		require.NoError(t, err)
		require.False(t, got.IsActive)

		require.NoError(t, store.Tenants.SetActive(ctx, tenant.ID, true))
		require.ErrorIs(t, store.Tenants.SetActive(ctx, uuid.NewString(), false), errors.ErrTenantNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.Tenants.Get(ctx, uuid.NewString())
		require.ErrorIs(t, err, errors.ErrTenantNotFound)
		require.ErrorIs(t, store.Tenants.ClearGoogleTokens(ctx, uuid.NewString()), errors.ErrTenantNotFound)
	})
}

func TestClientAndSessionRepos(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	tenant := newTenant(t, store)

	client := &clients.Client{TenantID: tenant.ID, Email: "admin@acme.test", Name: "Admin", Password: "pw", Role: clients.RoleAdmin, IsActive: true}
	require.NoError(t, store.Clients.Insert(ctx, client))
	require.ErrorIs(t, store.Clients.Insert(ctx, &clients.Client{TenantID: tenant.ID, Email: "admin@acme.test", Password: "x", Role: clients.RoleViewer}),
		errors.ErrDuplicateClient)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, store.Clients.SetLastLogin(ctx, client.ID, at))
	got, err := store.Clients.GetByEmail(ctx, tenant.ID, "admin@acme.test")
	require.NoError(t, err)
	require.Equal(t, clients.RoleAdmin, got.Role)
	require.Equal(t, at, *got.LastLoginAt)

	_, err = store.Clients.GetByEmail(ctx, tenant.ID, "nobody@acme.test")
	require.ErrorIs(t, err, errors.ErrClientNotFound)

	err = store.Clients.Insert(ctx, &clients.Client{TenantID: tenant.ID, Email: "owner@acme.test", Password: "x", Role: "owner"})
	require.ErrorIs(t, err, errors.ErrInvalidRequest)

	require.NoError(t, store.Clients.SetActive(ctx, client.ID, false))
	got, err = store.Clients.Get(ctx, client.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
	require.NoError(t, store.Clients.SetActive(ctx, client.ID, true))
	require.ErrorIs(t, store.Clients.SetActive(ctx, uuid.NewString(), false), errors.ErrClientNotFound)

	session := &sessions.Session{
		ClientID:  client.ID,
		TenantID:  tenant.ID,
		Token:     uuid.NewString(),
		CreatedAt: at,
		ExpiresAt: at.Add(24 * time.Hour),
	}
	require.NoError(t, store.Sessions.Insert(ctx, session))

	s, err := store.Sessions.GetByToken(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, session.ExpiresAt, s.ExpiresAt)

	require.NoError(t, store.Sessions.DeleteByToken(ctx, session.Token))
	require.NoError(t, store.Sessions.DeleteByToken(ctx, session.Token))
	_, err = store.Sessions.GetByToken(ctx, session.Token)
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestMetricRepo(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	tenant := newTenant(t, store)

	upsert := func(date string, source metrics.Source, data metrics.Data) *metrics.Metric {
		m := &metrics.Metric{TenantID: tenant.ID, Date: date, Source: source, Data: data, UpdatedAt: time.Now().UTC()}
		require.NoError(t, store.Metrics.Upsert(ctx, m))
		return m
	}

	first := upsert("2026-04-30", metrics.SourceSearchConsole, metrics.Data{Clicks: utils.Ptr(int64(5))})
	second := upsert("2026-04-30", metrics.SourceSearchConsole, metrics.Data{Clicks: utils.Ptr(int64(9)), CTR: utils.Ptr(3.5)})
	require.Equal(t, first.ID, second.ID)

	got, err := store.Metrics.Get(ctx, tenant.ID, "2026-04-30", metrics.SourceSearchConsole)
	require.NoError(t, err)
	require.Equal(t, int64(9), *got.Data.Clicks)
	require.Equal(t, 3.5, *got.Data.CTR)
	require.Nil(t, got.Data.Sessions)

	upsert("2026-04-30", metrics.SourceAnalytics, metrics.Data{Sessions: utils.Ptr(int64(1))})
	upsert("2026-04-01", metrics.SourceAnalytics, metrics.Data{Sessions: utils.Ptr(int64(2))})

	rows, err := store.Metrics.ListSince(ctx, tenant.ID, "2026-04-15")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, metrics.SourceAnalytics, rows[0].Source)
	require.Equal(t, metrics.SourceSearchConsole, rows[1].Source)
	require.Equal(t, "2026-04-30", rows[0].Date)

	_, err = store.Metrics.Get(ctx, tenant.ID, "2026-01-01", metrics.SourceAnalytics)
	require.ErrorIs(t, err, errors.ErrMetricNotFound)
}
