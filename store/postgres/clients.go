package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/tenant-dashboard/clients"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
)

var _ clients.Repo = (*ClientRepo)(nil)

type ClientRepo struct {
	pool *pgxpool.Pool
}

const clientColumns = `id, tenant_id, email, name, password, role, last_login_at, is_active`

func (r *ClientRepo) Insert(ctx context.Context, client *clients.Client) error {
	if !clients.ValidRole(client.Role) {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown role %q", client.Role)
	}
	if client.ID == "" {
		client.ID = uuid.New().String()
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		client.ID,
		client.TenantID,
		client.Email,
		client.Name,
		client.Password,
		string(client.Role),
		client.LastLoginAt,
		client.IsActive,
	)
	if isUniqueViolation(err, "clients_tenant_email_key") {
		return apperrors.ErrDuplicateClient
	}
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (r *ClientRepo) Get(ctx context.Context, clientID string) (*clients.Client, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, clientID))
}

func (r *ClientRepo) GetByEmail(ctx context.Context, tenantID, email string) (*clients.Client, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE tenant_id = $1 AND email = $2`, tenantID, email))
}

func (r *ClientRepo) SetLastLogin(ctx context.Context, clientID string, at time.Time) error {
	return r.update(ctx, clientID, `UPDATE clients SET last_login_at = $2 WHERE id = $1`, at)
}

// SetActive flips the active flag. Not part of clients.Repo.
func (r *ClientRepo) SetActive(ctx context.Context, clientID string, active bool) error {
	return r.update(ctx, clientID, `UPDATE clients SET is_active = $2 WHERE id = $1`, active)
}

func (r *ClientRepo) scan(row pgx.Row) (*clients.Client, error) {
	var (
		c    clients.Client
		role string
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.Email, &c.Name, &c.Password, &role, &c.LastLoginAt, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	c.Role = clients.RoleType(role)
	if c.LastLoginAt != nil {
		utc := c.LastLoginAt.UTC()
		c.LastLoginAt = &utc
	}
	return &c, nil
}

func (r *ClientRepo) update(ctx context.Context, clientID, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, append([]any{clientID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClientNotFound
	}
	return nil
}
