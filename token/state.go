package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// StateClaims is the payload of the OAuth state parameter. It ties the
// Google redirect back to the dashboard session that started it.
type StateClaims struct {
	SessionToken string `json:"sid"`
	jwt.RegisteredClaims
}

// StateSigner signs and verifies OAuth state values with HMAC-SHA256.
type StateSigner struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewStateSigner creates a new HMAC state signer with the given secret
func NewStateSigner(secret string, expiry time.Duration, now func() time.Time) *StateSigner {
	if now == nil {
		now = time.Now
	}
	return &StateSigner{secret: []byte(secret), expiry: expiry, now: now}
}

// Sign issues a state carrying sessionToken.
func (s *StateSigner) Sign(sessionToken string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("state secret is empty")
	}
	now := s.now()
	claims := StateClaims{
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign state with HMAC")
	}
	return signed, nil
}

// Parse verifies the signature and expiry of a state.
func (s *StateSigner) Parse(raw string) (*StateClaims, error) {
	claims := &StateClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.SessionToken == "" || claims.ID == "" {
		return nil, errors.New("state is missing claims")
	}
	return claims, nil
}
