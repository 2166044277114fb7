package tenantrepofakes

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/tenant-dashboard/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

// FakeTenantRepo wraps a tenants.Repo and fails chosen methods with an
// injected error. Methods without an injected error pass through.
type FakeTenantRepo struct {
	tenants.Repo

	lock   sync.RWMutex
	errors map[string]error
}

func NewFakeTenantRepo(inner tenants.Repo) *FakeTenantRepo {
	return &FakeTenantRepo{
		Repo:   inner,
		errors: make(map[string]error),
	}
}

// FailOn makes method return err until cleared with a nil err.
func (tr *FakeTenantRepo) FailOn(method string, err error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if err == nil {
		delete(tr.errors, method)
		return
	}
	tr.errors[method] = err
}

func (tr *FakeTenantRepo) fault(method string) error {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.errors[method]
}

func (tr *FakeTenantRepo) Insert(ctx context.Context, tenant *tenants.Tenant) error {
	if err := tr.fault("Insert"); err != nil {
		return err
	}
	return tr.Repo.Insert(ctx, tenant)
}

func (tr *FakeTenantRepo) Get(ctx context.Context, tenantID string) (*tenants.Tenant, error) {
	if err := tr.fault("Get"); err != nil {
		return nil, err
	}
	return tr.Repo.Get(ctx, tenantID)
}

func (tr *FakeTenantRepo) GetByDomain(ctx context.Context, domain string) (*tenants.Tenant, error) {
	if err := tr.fault("GetByDomain"); err != nil {
		return nil, err
	}
	return tr.Repo.GetByDomain(ctx, domain)
}

func (tr *FakeTenantRepo) SetGoogleTokens(ctx context.Context, tenantID string, tokens tenants.GoogleTokens) error {
	if err := tr.fault("SetGoogleTokens"); err != nil {
		return err
	}
	return tr.Repo.SetGoogleTokens(ctx, tenantID, tokens)
}

func (tr *FakeTenantRepo) UpdateAccessToken(ctx context.Context, tenantID, accessToken string, expiresAt time.Time) error {
	if err := tr.fault("UpdateAccessToken"); err != nil {
		return err
	}
	return tr.Repo.UpdateAccessToken(ctx, tenantID, accessToken, expiresAt)
}

func (tr *FakeTenantRepo) ClearGoogleTokens(ctx context.Context, tenantID string) error {
	if err := tr.fault("ClearGoogleTokens"); err != nil {
		return err
	}
	return tr.Repo.ClearGoogleTokens(ctx, tenantID)
}
