package tenants

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/tenant-dashboard/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu      sync.RWMutex
	tenants map[string]*Tenant
	domains map[string]string // domain to tenant id
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tenants: make(map[string]*Tenant),
		domains: make(map[string]string),
	}
}

func (r *InMemoryRepo) Insert(_ context.Context, tenant *Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.domains[tenant.Domain]; ok {
		return errors.ErrDuplicateDomain
	}
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	t := *tenant
	r.tenants[t.ID] = &t
	r.domains[t.Domain] = t.ID
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, tenantID string) (*Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, errors.ErrTenantNotFound
	}
	// Return a copy to prevent external modifications
	c := *t
	return &c, nil
}

func (r *InMemoryRepo) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	r.mu.RLock()
	id, ok := r.domains[domain]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrTenantNotFound
	}
	return r.Get(ctx, id)
}

func (r *InMemoryRepo) SetGoogleTokens(_ context.Context, tenantID string, tokens GoogleTokens) error {
	return r.patch(tenantID, func(t *Tenant) {
		t.Google = tokens
		t.IsGoogleConnected = true
	})
}

func (r *InMemoryRepo) UpdateAccessToken(_ context.Context, tenantID, accessToken string, expiresAt time.Time) error {
	return r.patch(tenantID, func(t *Tenant) {
		t.Google.AccessToken = accessToken
		t.Google.ExpiresAt = expiresAt
	})
}

func (r *InMemoryRepo) ClearGoogleTokens(_ context.Context, tenantID string) error {
	return r.patch(tenantID, func(t *Tenant) {
		t.Google = GoogleTokens{}
		t.IsGoogleConnected = false
	})
}

// SetActive flips the active flag. Not part of Repo; used to set up fixtures.
func (r *InMemoryRepo) SetActive(tenantID string, active bool) error {
	return r.patch(tenantID, func(t *Tenant) {
		t.IsActive = active
	})
}

func (r *InMemoryRepo) patch(tenantID string, fn func(*Tenant)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tenants[tenantID]
	if !ok {
		return errors.ErrTenantNotFound
	}
	fn(t)
	return nil
}
