package clients

import (
	"context"
	"time"
)

// Repo stores dashboard clients. Missing clients are reported with errors.ErrClientNotFound.
type Repo interface {
	// Insert adds a client, assigning an ID when empty. Fails with ErrDuplicateClient when the email is taken in the tenant.
	Insert(ctx context.Context, client *Client) error
	Get(ctx context.Context, clientID string) (*Client, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*Client, error)
	SetLastLogin(ctx context.Context, clientID string, at time.Time) error
}
