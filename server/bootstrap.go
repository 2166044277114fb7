package server

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/tenant-dashboard/auth"
	"github.com/jrsteele09/tenant-dashboard/dashboard"
	"github.com/jrsteele09/tenant-dashboard/internal/telemetry"
	"github.com/jrsteele09/tenant-dashboard/reporting"
	"github.com/jrsteele09/tenant-dashboard/token"
	"github.com/pkg/errors"
)

type options struct {
	nowFunc      func() time.Time
	googleClient *http.Client
	verifier     *oidc.IDTokenVerifier
	rand         *rand.Rand
	telemetry    *telemetry.Metrics
}

func defaultOptions() *options {
	return &options{
		nowFunc:   time.Now,
		telemetry: telemetry.New(),
	}
}

type Option func(*options)

// WithNowFunc sets the clock every service reads.
func WithNowFunc(now func() time.Time) Option {
	return func(o *options) {
		o.nowFunc = now
	}
}

// WithGoogleHTTPClient sets the client used for the Google token endpoint.
func WithGoogleHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.googleClient = c
	}
}

// WithIDTokenVerifier replaces the verifier built from GOOGLE_JWKS_URL.
func WithIDTokenVerifier(v *oidc.IDTokenVerifier) Option {
	return func(o *options) {
		o.verifier = v
	}
}

// WithRand sets the random source for demo data.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

func WithTelemetry(m *telemetry.Metrics) Option {
	return func(o *options) {
		o.telemetry = m
	}
}

// initServices wires the services onto the repositories.
func (s *Server) initServices(o *options) error {
	if s.repos == nil {
		return errors.New("[initServices] repos are required")
	}

	var err error
	s.auth, err = auth.NewService(
		auth.Repos{Tenants: s.repos.Tenants, Clients: s.repos.Clients, Sessions: s.repos.Sessions},
		auth.WithNowTime(o.nowFunc),
		auth.WithSessionTTL(s.config.GetSessionTTL()),
		auth.WithMetrics(o.telemetry),
	)
	if err != nil {
		return errors.Wrap(err, "[initServices] auth")
	}

	verifier := o.verifier
	if verifier == nil && s.config.GetGoogleJWKSURL() != "" {
		verifier = token.NewGoogleVerifier(context.Background(), s.config, o.nowFunc)
	}
	tokenOpts := []token.ManagerOption{
		token.WithNowFunc(o.nowFunc),
		token.WithMetrics(o.telemetry),
	}
	if verifier != nil {
		tokenOpts = append(tokenOpts, token.WithIDTokenVerifier(verifier))
	}
	if o.googleClient != nil {
		tokenOpts = append(tokenOpts, token.WithHTTPClient(o.googleClient))
	}
	s.tokens, err = token.New(s.config, s.auth, s.repos.Tenants, tokenOpts...)
	if err != nil {
		return errors.Wrap(err, "[initServices] token")
	}

	s.fetcher = reporting.NewFetcher(s.config, s.auth, s.tokens, s.repos.Metrics,
		reporting.WithNowFunc(o.nowFunc),
		reporting.WithTelemetry(o.telemetry),
	)

	dashOpts := []dashboard.ServiceOption{dashboard.WithNowFunc(o.nowFunc)}
	if o.rand != nil {
		dashOpts = append(dashOpts, dashboard.WithRand(o.rand))
	}
	s.dashboard, err = dashboard.NewService(
		dashboard.Repos{Tenants: s.repos.Tenants, Clients: s.repos.Clients, Metrics: s.repos.Metrics},
		s.auth,
		dashOpts...,
	)
	if err != nil {
		return errors.Wrap(err, "[initServices] dashboard")
	}
	return nil
}
