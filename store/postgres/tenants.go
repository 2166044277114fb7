package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/tenants"
)

var _ tenants.Repo = (*TenantRepo)(nil)

type TenantRepo struct {
	pool *pgxpool.Pool
}

const tenantColumns = `id, name, domain, google_analytics_property_id, search_console_url, created_at, is_active,
	google_access_token, google_refresh_token, google_token_expires_at, google_account_email, is_google_connected`

func (r *TenantRepo) Insert(ctx context.Context, tenant *tenants.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tenant.ID,
		tenant.Name,
		tenant.Domain,
		tenant.GoogleAnalyticsPropertyID,
		tenant.SearchConsoleURL,
		tenant.CreatedAt,
		tenant.IsActive,
		tenant.Google.AccessToken,
		tenant.Google.RefreshToken,
		nullTime(tenant.Google.ExpiresAt),
		tenant.Google.AccountEmail,
		tenant.IsGoogleConnected,
	)
	if isUniqueViolation(err, "tenants_domain_key") {
		return apperrors.ErrDuplicateDomain
	}
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

func (r *TenantRepo) Get(ctx context.Context, tenantID string) (*tenants.Tenant, error) {
	return r.getBy(ctx, "id", tenantID)
}

func (r *TenantRepo) GetByDomain(ctx context.Context, domain string) (*tenants.Tenant, error) {
	return r.getBy(ctx, "domain", domain)
}

func (r *TenantRepo) getBy(ctx context.Context, column, value string) (*tenants.Tenant, error) {
	var (
		t         tenants.Tenant
		expiresAt *time.Time
	)
	err := r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE `+column+` = $1`, value).Scan(
		&t.ID,
		&t.Name,
		&t.Domain,
		&t.GoogleAnalyticsPropertyID,
		&t.SearchConsoleURL,
		&t.CreatedAt,
		&t.IsActive,
		&t.Google.AccessToken,
		&t.Google.RefreshToken,
		&expiresAt,
		&t.Google.AccountEmail,
		&t.IsGoogleConnected,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant by %s: %w", column, err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.Google.ExpiresAt = fromNullTime(expiresAt)
	return &t, nil
}

func (r *TenantRepo) SetGoogleTokens(ctx context.Context, tenantID string, tokens tenants.GoogleTokens) error {
	return r.update(ctx, tenantID, `UPDATE tenants SET
		google_access_token = $2,
		google_refresh_token = $3,
		google_token_expires_at = $4,
		google_account_email = $5,
		is_google_connected = TRUE
	WHERE id = $1`,
		tokens.AccessToken, tokens.RefreshToken, nullTime(tokens.ExpiresAt), tokens.AccountEmail)
}

func (r *TenantRepo) UpdateAccessToken(ctx context.Context, tenantID, accessToken string, expiresAt time.Time) error {
	return r.update(ctx, tenantID, `UPDATE tenants SET
		google_access_token = $2,
		google_token_expires_at = $3
	WHERE id = $1`,
		accessToken, nullTime(expiresAt))
}

func (r *TenantRepo) ClearGoogleTokens(ctx context.Context, tenantID string) error {
	return r.update(ctx, tenantID, `UPDATE tenants SET
		google_access_token = '',
		google_refresh_token = '',
		google_token_expires_at = NULL,
		google_account_email = '',
		is_google_connected = FALSE
	WHERE id = $1`)
}

// SetActive flips the active flag. Not part of tenants.Repo.
func (r *TenantRepo) SetActive(ctx context.Context, tenantID string, active bool) error {
	return r.update(ctx, tenantID, `UPDATE tenants SET is_active = $2 WHERE id = $1`, active)
}

func (r *TenantRepo) update(ctx context.Context, tenantID, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, append([]any{tenantID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTenantNotFound
	}
	return nil
}
