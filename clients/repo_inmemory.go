package clients

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/tenant-dashboard/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type emailKey struct {
	tenantID string
	email    string
}

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	emailIDs map[emailKey]string
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		clients:  make(map[string]*Client),
		emailIDs: make(map[emailKey]string),
	}
}

func (r *InMemoryRepo) Insert(_ context.Context, client *Client) error {
	if !ValidRole(client.Role) {
		return errors.Wrapf(errors.ErrInvalidRequest, "unknown role %q", client.Role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey{client.TenantID, client.Email}
	if _, ok := r.emailIDs[key]; ok {
		return errors.ErrDuplicateClient
	}
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	c := *client
	r.clients[c.ID] = &c
	r.emailIDs[key] = c.ID
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, clientID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[clientID]
	if !ok {
		return nil, errors.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryRepo) GetByEmail(ctx context.Context, tenantID, email string) (*Client, error) {
	r.mu.RLock()
	id, ok := r.emailIDs[emailKey{tenantID, email}]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ErrClientNotFound
	}
	return r.Get(ctx, id)
}

func (r *InMemoryRepo) SetLastLogin(_ context.Context, clientID string, at time.Time) error {
	return r.patch(clientID, func(c *Client) {
		c.LastLoginAt = &at
	})
}

// SetActive flips the active flag. Not part of Repo; used to set up fixtures.
func (r *InMemoryRepo) SetActive(clientID string, active bool) error {
	return r.patch(clientID, func(c *Client) {
		c.IsActive = active
	})
}

func (r *InMemoryRepo) patch(clientID string, fn func(*Client)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[clientID]
	if !ok {
		return errors.ErrClientNotFound
	}
	fn(c)
	return nil
}
