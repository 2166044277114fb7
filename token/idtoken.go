package token

import (
	"context"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/tenant-dashboard/internal/config"
	"github.com/pkg/errors"
)

// NewGoogleVerifier verifies Google ID tokens against the configured JWKS URL.
func NewGoogleVerifier(ctx context.Context, cfg config.GoogleConfig, now func() time.Time) *oidc.IDTokenVerifier {
	keySet := oidc.NewRemoteKeySet(ctx, cfg.GetGoogleJWKSURL())
	return oidc.NewVerifier(cfg.GetGoogleIssuer(), keySet, &oidc.Config{
		ClientID: cfg.GetGoogleClientID(),
		Now:      now,
	})
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// accountEmail verifies rawIDToken and returns its email claim.
func accountEmail(ctx context.Context, verifier *oidc.IDTokenVerifier, rawIDToken string) (string, error) {
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", errors.Wrap(err, "verify id_token")
	}
	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return "", errors.Wrap(err, "decode id_token claims")
	}
	return claims.Email, nil
}
