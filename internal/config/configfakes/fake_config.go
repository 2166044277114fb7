package configfakes

import (
	"time"

	"github.com/jrsteele09/tenant-dashboard/internal/config"
)

var _ config.Config = (*FakeConfig)(nil)

// FakeConfig is a config.Config with fixed values, for tests. Zero fields
// fall back to the same defaults the environment config uses.
type FakeConfig struct {
	Port                  string
	SiteURL               string
	Env                   string
	AllowedOrigins        []string
	GoogleClientID        string
	GoogleClientSecret    string
	GoogleAuthURL         string
	GoogleTokenURL        string
	GoogleIssuer          string
	GoogleJWKSURL         string
	AnalyticsEndpoint     string
	SearchConsoleEndpoint string
	StateSecret           string
	StateExpiry           time.Duration
	ReportWindow          time.Duration
	SessionTTL            time.Duration
	DemoSeedDisabled      bool
	StoreDriver           string
	DatabaseURL           string
	SessionStore          string
	RedisURL              string
}

// NewFakeConfig returns a config suitable for in-memory tests.
func NewFakeConfig() *FakeConfig {
	return &FakeConfig{
		SiteURL:            "https://dash.example.test",
		GoogleClientID:     "google-client-id",
		GoogleClientSecret: "google-client-secret",
		GoogleAuthURL:      "https://accounts.example.test/o/oauth2/v2/auth",
		GoogleIssuer:       "https://accounts.example.test",
		StateSecret:        "state-secret",
		StoreDriver:        config.StoreDriverMemory,
	}
}

func (c *FakeConfig) GetPort() string     { return or(c.Port, ":8080") }
func (c *FakeConfig) GetAppName() string  { return "Tenant Dashboard" }
func (c *FakeConfig) GetSiteURL() string  { return c.SiteURL }
func (c *FakeConfig) GetLogLevel() string { return "debug" }
func (c *FakeConfig) GetEnv() string      { return or(c.Env, "TEST") }

func (c *FakeConfig) GetAllowedOrigins() config.AllowedOrigins {
	origins := config.AllowedOrigins{}
	for _, o := range append(c.AllowedOrigins, c.SiteURL) {
		if o != "" {
			origins[o] = struct{}{}
		}
	}
	return origins
}
func (c *FakeConfig) GetAllowedMethods() []string { return []string{"GET", "POST", "OPTIONS"} }
func (c *FakeConfig) GetAllowedHeaders() []string { return []string{"Content-Type", "Authorization"} }

func (c *FakeConfig) GetGoogleClientID() string          { return c.GoogleClientID }
func (c *FakeConfig) GetGoogleClientSecret() string      { return c.GoogleClientSecret }
func (c *FakeConfig) GetGoogleRedirectURL() string       { return c.SiteURL + "/google/callback" }
func (c *FakeConfig) GetGoogleAuthURL() string           { return or(c.GoogleAuthURL, "https://accounts.google.com/o/oauth2/v2/auth") }
func (c *FakeConfig) GetGoogleTokenURL() string          { return or(c.GoogleTokenURL, "https://oauth2.googleapis.com/token") }
func (c *FakeConfig) GetGoogleIssuer() string            { return or(c.GoogleIssuer, "https://accounts.google.com") }
func (c *FakeConfig) GetGoogleJWKSURL() string           { return c.GoogleJWKSURL }
func (c *FakeConfig) GetAnalyticsEndpoint() string       { return c.AnalyticsEndpoint }
func (c *FakeConfig) GetSearchConsoleEndpoint() string   { return c.SearchConsoleEndpoint }
func (c *FakeConfig) GetOAuthStateSecret() string        { return or(c.StateSecret, c.GoogleClientSecret) }
func (c *FakeConfig) GetOAuthStateExpiry() time.Duration { return orDuration(c.StateExpiry, 15*time.Minute) }
func (c *FakeConfig) GetReportWindow() time.Duration     { return orDuration(c.ReportWindow, 30*24*time.Hour) }

func (c *FakeConfig) GetSessionTTL() time.Duration { return orDuration(c.SessionTTL, 24*time.Hour) }
func (c *FakeConfig) GetDemoSeedEnabled() bool     { return !c.DemoSeedDisabled }

func (c *FakeConfig) GetStoreDriver() string  { return or(c.StoreDriver, config.StoreDriverMemory) }
func (c *FakeConfig) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *FakeConfig) GetSessionStore() string { return or(c.SessionStore, config.SessionStoreDefault) }
func (c *FakeConfig) GetRedisURL() string     { return c.RedisURL }

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orDuration(v, fallback time.Duration) time.Duration {
	if v == 0 {
		return fallback
	}
	return v
}
