package tenants

import "time"

// Tenant is an organisation boundary. Every client, session and metric row
// belongs to exactly one tenant.
type Tenant struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Domain                    string    `json:"domain"` // Globally unique login domain (e.g. "demo.example.com")
	GoogleAnalyticsPropertyID string    `json:"googleAnalyticsPropertyId,omitempty"`
	SearchConsoleURL          string    `json:"searchConsoleUrl,omitempty"`
	CreatedAt                 time.Time `json:"createdAt"`
	IsActive                  bool      `json:"isActive"`

	Google            GoogleTokens `json:"-"` // Never serialise OAuth credentials
	IsGoogleConnected bool         `json:"isGoogleConnected"`
}

// GoogleTokens are the OAuth credentials a tenant admin granted to the dashboard.
type GoogleTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	AccountEmail string // From the verified ID token, when Google sent one
}

// IsZero reports whether no token material is stored.
func (g GoogleTokens) IsZero() bool {
	return g.AccessToken == "" && g.RefreshToken == "" && g.ExpiresAt.IsZero() && g.AccountEmail == ""
}

// Expired reports whether the access token is past its expiry at now.
func (g GoogleTokens) Expired(now time.Time) bool {
	return !g.ExpiresAt.IsZero() && !now.Before(g.ExpiresAt)
}
