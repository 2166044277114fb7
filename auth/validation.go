package auth

import (
	"strings"

	"github.com/jrsteele09/tenant-dashboard/internal/errors"
)

// maxSessionTokenLength bounds the two base-36 fragments of a session token.
const maxSessionTokenLength = 64

// LoginParameters are the normalised inputs of a login attempt.
type LoginParameters struct {
	Email        string
	Password     string
	TenantDomain string
}

// Validator keeps the input checks of the auth flows in one place.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin trims the email and domain and checks nothing is empty.
// The password is used as given.
func (v *Validator) ValidateLogin(email, password, tenantDomain string) (*LoginParameters, error) {
	params := &LoginParameters{
		Email:        strings.TrimSpace(email),
		Password:     password,
		TenantDomain: strings.TrimSpace(tenantDomain),
	}

	var missing []string
	if params.TenantDomain == "" {
		missing = append(missing, "tenantDomain")
	}
	if params.Email == "" {
		missing = append(missing, "email")
	}
	if params.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "%s required", strings.Join(missing, ", "))
	}
	return params, nil
}

// ValidateSessionToken rejects tokens that could never have been issued.
func (v *Validator) ValidateSessionToken(token string) error {
	if token == "" || len(token) > maxSessionTokenLength {
		return errors.ErrInvalidSession
	}
	for _, r := range token {
		if (r < '0' || r > '9') && (r < 'a' || r > 'z') {
			return errors.ErrInvalidSession
		}
	}
	return nil
}
