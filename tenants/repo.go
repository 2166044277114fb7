package tenants

import (
	"context"
	"time"
)

// Repo stores tenants. Missing tenants are reported with errors.ErrTenantNotFound.
type Repo interface {
	// Insert adds a tenant, assigning an ID when empty. Fails with ErrDuplicateDomain if the domain is taken.
	Insert(ctx context.Context, tenant *Tenant) error

	Get(ctx context.Context, tenantID string) (*Tenant, error)

	GetByDomain(ctx context.Context, domain string) (*Tenant, error)

	// SetGoogleTokens stores a full credential set and marks the tenant connected.
	SetGoogleTokens(ctx context.Context, tenantID string, tokens GoogleTokens) error

	// UpdateAccessToken replaces only the access token and its expiry after a refresh.
	UpdateAccessToken(ctx context.Context, tenantID, accessToken string, expiresAt time.Time) error

	// ClearGoogleTokens removes all credentials and marks the tenant disconnected.
	ClearGoogleTokens(ctx context.Context, tenantID string) error
}
