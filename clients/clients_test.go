package clients_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/tenant-dashboard/clients"
	"github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	t.Run("plain stored value", func(t *testing.T) {
		require.True(t, clients.CheckPassword("demo123", "demo123"))
		require.False(t, clients.CheckPassword("demo123", "demo124"))
		require.False(t, clients.CheckPassword("demo123", ""))
	})

	t.Run("bcrypt stored value", func(t *testing.T) {
		hash, err := clients.HashPassword("s3cret-Pass")
		require.NoError(t, err)
		require.True(t, clients.CheckPassword(hash, "s3cret-Pass"))
		require.False(t, clients.CheckPassword(hash, "wrong"))
		require.False(t, clients.CheckPassword(hash, hash))
	})
}

func TestValidRole(t *testing.T) {
	require.True(t, clients.ValidRole(clients.RoleAdmin))
	require.True(t, clients.ValidRole(clients.RoleViewer))
	require.False(t, clients.ValidRole("owner"))
}

func TestInMemoryRepo_RejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	repo := clients.NewInMemoryRepo()

	for _, role := range []clients.RoleType{"", "owner"} {
		err := repo.Insert(ctx, &clients.Client{TenantID: "t1", Email: "ann@example.com", Role: role})
		require.ErrorIs(t, err, errors.ErrInvalidRequest)
	}
	_, err := repo.GetByEmail(ctx, "t1", "ann@example.com")
	require.ErrorIs(t, err, errors.ErrClientNotFound)
}

func TestInMemoryRepo_EmailUniquePerTenant(t *testing.T) {
	ctx := context.Background()
	repo := clients.NewInMemoryRepo()

	a := &clients.Client{TenantID: "t1", Email: "ann@example.com", Role: clients.RoleAdmin, IsActive: true}
	require.NoError(t, repo.Insert(ctx, a))
	require.NotEmpty(t, a.ID)

	err := repo.Insert(ctx, &clients.Client{TenantID: "t1", Email: "ann@example.com", Role: clients.RoleViewer})
	require.ErrorIs(t, err, errors.ErrDuplicateClient)

	// Same email in another tenant is a different client
	b := &clients.Client{TenantID: "t2", Email: "ann@example.com", Role: clients.RoleViewer}
	require.NoError(t, repo.Insert(ctx, b))
	require.NotEqual(t, a.ID, b.ID)

	got, err := repo.GetByEmail(ctx, "t2", "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
	require.Equal(t, clients.RoleViewer, got.Role)

	_, err = repo.GetByEmail(ctx, "t3", "ann@example.com")
	require.ErrorIs(t, err, errors.ErrClientNotFound)
}

func TestInMemoryRepo_SetLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := clients.NewInMemoryRepo()
	c := &clients.Client{TenantID: "t1", Email: "ann@example.com", Role: clients.RoleViewer}
	require.NoError(t, repo.Insert(ctx, c))

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastLogin(ctx, c.ID, at))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	require.Equal(t, at, *got.LastLoginAt)

	require.ErrorIs(t, repo.SetLastLogin(ctx, "missing", at), errors.ErrClientNotFound)
}
