package config

import (
	"fmt"
	"strings"
)

// MissingVarsError lists every required environment variable that was not set.
type MissingVarsError struct {
	Vars []string
}

func (e *MissingVarsError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Vars, ", "))
}

// Validate checks the configuration once at startup and reports all problems together.
func Validate(c Config) error {
	var missing []string
	if c.GetGoogleClientID() == "" {
		missing = append(missing, googleClientIDVar)
	}
	if c.GetGoogleClientSecret() == "" {
		missing = append(missing, googleClientSecretVar)
	}
	if c.GetSiteURL() == "" {
		missing = append(missing, siteURLVar)
	}
	if c.GetStoreDriver() == StoreDriverPostgres && c.GetDatabaseURL() == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.GetSessionStore() == SessionStoreRedis && c.GetRedisURL() == "" {
		missing = append(missing, "REDIS_URL")
	}

	var problems []string
	switch c.GetStoreDriver() {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_DRIVER %q", c.GetStoreDriver()))
	}
	switch c.GetSessionStore() {
	case SessionStoreDefault, SessionStoreRedis:
	default:
		problems = append(problems, fmt.Sprintf("unknown SESSION_STORE %q", c.GetSessionStore()))
	}

	if len(missing) > 0 {
		err := &MissingVarsError{Vars: missing}
		if len(problems) > 0 {
			return fmt.Errorf("%w; %s", err, strings.Join(problems, "; "))
		}
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
