package config

import "time"

const (
	googleClientIDVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretVar = "GOOGLE_CLIENT_SECRET"
	oauthStateSecretVar   = "OAUTH_STATE_SECRET"
)

type GoogleConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURL() string
	GetGoogleAuthURL() string
	GetGoogleTokenURL() string
	GetGoogleIssuer() string
	GetGoogleJWKSURL() string
	GetAnalyticsEndpoint() string
	GetSearchConsoleEndpoint() string
	GetOAuthStateSecret() string
	GetOAuthStateExpiry() time.Duration
	GetReportWindow() time.Duration
}

type Google struct{}

var _ GoogleConfig = Google{}

func (Google) GetGoogleClientID() string {
	return GetEnv(googleClientIDVar, "")
}

func (Google) GetGoogleClientSecret() string {
	return GetEnv(googleClientSecretVar, "")
}

// GetGoogleRedirectURL is the OAuth callback registered with Google.
func (Google) GetGoogleRedirectURL() string {
	return (EnvVars{}).GetSiteURL() + "/google/callback"
}

func (Google) GetGoogleAuthURL() string {
	return GetEnv("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth")
}

func (Google) GetGoogleTokenURL() string {
	return GetEnv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")
}

func (Google) GetGoogleIssuer() string {
	return GetEnv("GOOGLE_ISSUER", "https://accounts.google.com")
}

func (Google) GetGoogleJWKSURL() string {
	return GetEnv("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs")
}

// GetAnalyticsEndpoint overrides the Analytics Data API base path. Empty means the library default.
func (Google) GetAnalyticsEndpoint() string {
	return GetEnv("GOOGLE_ANALYTICS_ENDPOINT", "")
}

// GetSearchConsoleEndpoint overrides the Search Console API base path. Empty means the library default.
func (Google) GetSearchConsoleEndpoint() string {
	return GetEnv("GOOGLE_SEARCH_CONSOLE_ENDPOINT", "")
}

// GetOAuthStateSecret is the HMAC key for the OAuth state parameter.
func (g Google) GetOAuthStateSecret() string {
	return GetEnv(oauthStateSecretVar, g.GetGoogleClientSecret())
}

func (Google) GetOAuthStateExpiry() time.Duration {
	return 15 * time.Minute
}

// GetReportWindow is how far back each Google fetch reaches.
func (Google) GetReportWindow() time.Duration {
	return 30 * 24 * time.Hour
}
