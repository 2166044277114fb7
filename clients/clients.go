package clients

import (
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is a client's role within its tenant
type RoleType string

const (
	RoleAdmin  RoleType = "admin"  // Can connect and disconnect Google and manage metrics
	RoleViewer RoleType = "viewer" // Read-only dashboard access
)

// Client is a dashboard login. It belongs to exactly one tenant.
type Client struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenantId"`
	Email       string     `json:"email"` // Unique within the tenant
	Name        string     `json:"name"`
	Password    string     `json:"-"` // Stored credential, never serialise
	Role        RoleType   `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	IsActive    bool       `json:"isActive"`
}

// IsAdmin returns true if the client holds the admin role
func (c *Client) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// ValidRole reports whether r is a known role.
func ValidRole(r RoleType) bool {
	return r == RoleAdmin || r == RoleViewer
}

// CheckPassword compares a supplied password with the stored credential.
// Stored bcrypt hashes are verified with bcrypt; anything else is compared
// directly, which is how seeded demo clients are stored.
func CheckPassword(stored, supplied string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
