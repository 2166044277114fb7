// Package redisstore keeps dashboard sessions in Redis. Keys expire with the
// session, so expired sessions disappear without a cleanup job.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/sessions"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

var _ sessions.Repo = (*SessionRepo)(nil)

// Open parses a redis:// URL and checks the connection.
func Open(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

type SessionRepo struct {
	client  *redis.Client
	nowFunc func() time.Time
}

type RepoOption func(*SessionRepo)

func WithNowFunc(now func() time.Time) RepoOption {
	return func(r *SessionRepo) {
		r.nowFunc = now
	}
}

func NewSessionRepo(client *redis.Client, options ...RepoOption) *SessionRepo {
	r := &SessionRepo{client: client, nowFunc: time.Now}
	for _, opt := range options {
		opt(r)
	}
	return r
}

type sessionRecord struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Insert stores the session under its token with a TTL ending at ExpiresAt.
// An empty token or an already expired session is rejected.
func (r *SessionRepo) Insert(ctx context.Context, session *sessions.Session) error {
	if session.Token == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "session token cannot be empty")
	}
	ttl := session.ExpiresAt.Sub(r.nowFunc())
	if ttl <= 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "session already expired")
	}

	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	data, err := json.Marshal(sessionRecord{
		ID:        session.ID,
		ClientID:  session.ClientID,
		TenantID:  session.TenantID,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, keyPrefix+session.Token, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set session in redis: %w", err)
	}
	if !ok {
		return fmt.Errorf("session token already in use")
	}
	return nil
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*sessions.Session, error) {
	data, err := r.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sessions.Session{
		ID:        rec.ID,
		ClientID:  rec.ClientID,
		TenantID:  rec.TenantID,
		Token:     token,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
