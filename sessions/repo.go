package sessions

import "context"

// Repo defines the interface for session storage operations.
// Reads never delete expired rows; expiry is checked by the caller.
type Repo interface {
	// Insert stores a new session, assigning an ID when empty
	Insert(ctx context.Context, session *Session) error

	// GetByToken retrieves a session by its bearer token, or errors.ErrSessionNotFound
	GetByToken(ctx context.Context, token string) (*Session, error)

	// DeleteByToken removes a session. Deleting an unknown token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}
