package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard service. Their messages are shown to
// dashboard users as-is, so keep them short and free of internal detail.
var (
	// Authentication errors
	ErrInvalidTenantDomain = errors.New("invalid tenant domain")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidSession      = errors.New("invalid session")

	// Authorization errors
	ErrConnectGoogleForbidden    = errors.New("only admins can connect Google services")
	ErrDisconnectGoogleForbidden = errors.New("only admins can disconnect Google services")
	ErrAdminRequired             = errors.New("only admins can perform this action")
	ErrTenantMismatch            = errors.New("session does not belong to tenant")

	// Google errors
	ErrGoogleNotConfigured  = errors.New("google OAuth not configured")
	ErrGoogleNotConnected   = errors.New("google not connected for this tenant")
	ErrGoogleReauthRequired = errors.New("google authentication expired, please reconnect")
	ErrTokenExchange        = errors.New("failed to exchange code for tokens")
	ErrInvalidState         = errors.New("invalid state parameter")

	// Record errors
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrMetricNotFound  = errors.New("metric not found")
	ErrDuplicateDomain = errors.New("tenant domain already exists")
	ErrDuplicateClient = errors.New("client email already exists for tenant")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsForbidden reports whether err is one of the role errors.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrConnectGoogleForbidden) ||
		errors.Is(err, ErrDisconnectGoogleForbidden) ||
		errors.Is(err, ErrAdminRequired) ||
		errors.Is(err, ErrTenantMismatch)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrMetricNotFound)
}
