package config

import "time"

type SecurityConfig interface {
	GetSessionTTL() time.Duration
	GetDemoSeedEnabled() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionTTL is the absolute lifetime of a dashboard session.
func (Security) GetSessionTTL() time.Duration {
	return GetEnvDuration("SESSION_TTL", 24*time.Hour)
}

func (Security) GetDemoSeedEnabled() bool {
	return GetEnvBool("DEMO_SEED_ENABLED", true)
}
