package token

import (
	"context"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/tenant-dashboard/auth"
	"github.com/jrsteele09/tenant-dashboard/internal/config"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/internal/telemetry"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultExpiresIn is assumed when Google omits expires_in from a token response.
const DefaultExpiresIn int64 = 3600

// Google API scopes requested on connect. openid and email make Google
// return an ID token naming the connected account.
var Scopes = []string{
	"https://www.googleapis.com/auth/analytics.readonly",
	"https://www.googleapis.com/auth/webmasters.readonly",
	oidc.ScopeOpenID,
	"email",
}

// SessionResolver is the part of the auth service the token manager needs.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
	RequireAdmin(ctx context.Context, token string, forbidden error) (*auth.Principal, error)
}

// Grant is the result of a code exchange.
type Grant struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // Seconds
	AccountEmail string `json:"accountEmail,omitempty"`
}

// Manager owns the Google OAuth token lifecycle of every tenant: consent
// URL, code exchange, storage, refresh and disconnect.
type Manager struct {
	oauth      *oauth2.Config
	sessions   SessionResolver
	tenantRepo tenants.Repo
	state      *StateSigner
	usedStates UsedStateCache
	verifier   *oidc.IDTokenVerifier // nil skips ID token checks
	httpClient *http.Client          // Transport for Google token calls, nil for http.DefaultClient
	metrics    *telemetry.Metrics
	nowFunc    func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithHTTPClient sets the client used to reach the Google token endpoint.
func WithHTTPClient(c *http.Client) ManagerOption {
	return func(m *Manager) {
		m.httpClient = c
	}
}

// WithIDTokenVerifier enables verification of the id_token returned on exchange.
func WithIDTokenVerifier(v *oidc.IDTokenVerifier) ManagerOption {
	return func(m *Manager) {
		m.verifier = v
	}
}

func WithUsedStateCache(cache UsedStateCache) ManagerOption {
	return func(m *Manager) {
		m.usedStates = cache
	}
}

func WithMetrics(metrics *telemetry.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func New(cfg config.GoogleConfig, sessions SessionResolver, tenantRepo tenants.Repo, options ...ManagerOption) (*Manager, error) {
	if sessions == nil {
		return nil, errors.New("[token.New] session resolver is required")
	}
	if tenantRepo == nil {
		return nil, errors.New("[token.New] tenant repo is required")
	}

	m := &Manager{
		oauth: &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			RedirectURL:  cfg.GetGoogleRedirectURL(),
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.GetGoogleAuthURL(),
				TokenURL:  cfg.GetGoogleTokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		sessions:   sessions,
		tenantRepo: tenantRepo,
		usedStates: NewInMemoryUsedStateCache(),
	}

	for _, opt := range options {
		opt(m)
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	m.state = NewStateSigner(cfg.GetOAuthStateSecret(), cfg.GetOAuthStateExpiry(), m.nowFunc)
	return m, nil
}

// GenerateAuthURL returns the Google consent URL for an admin session.
func (m *Manager) GenerateAuthURL(ctx context.Context, sessionToken string) (string, error) {
	if m.oauth.ClientID == "" {
		return "", apperrors.ErrGoogleNotConfigured
	}
	if _, err := m.sessions.RequireAdmin(ctx, sessionToken, apperrors.ErrConnectGoogleForbidden); err != nil {
		return "", err
	}

	state, err := m.state.Sign(sessionToken)
	if err != nil {
		return "", errors.Wrap(err, "[GenerateAuthURL] sign state")
	}
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// ParseState verifies a state from the OAuth callback and returns the session
// token it carries. Each state can be consumed once.
func (m *Manager) ParseState(raw string) (string, error) {
	claims, err := m.state.Parse(raw)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "%v", err)
	}

	now := m.nowFunc()
	m.usedStates.Cleanup(now)
	if !m.usedStates.Use(claims.ID, claims.ExpiresAt.Time) {
		return "", apperrors.Wrapf(apperrors.ErrInvalidState, "state already used")
	}
	return claims.SessionToken, nil
}

// Exchange trades an authorization code for tokens.
func (m *Manager) Exchange(ctx context.Context, code string) (*Grant, error) {
	ctx = m.clientContext(ctx)

	tok, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrTokenExchange, "%v", err)
	}

	grant := &Grant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    m.expiresIn(tok),
	}

	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" && m.verifier != nil {
		email, err := accountEmail(ctx, m.verifier, raw)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrTokenExchange, "%v", err)
		}
		grant.AccountEmail = email
	}
	return grant, nil
}

// StoreGoogleTokens saves a grant on the tenant of a valid session and marks
// it connected. An empty refresh token keeps the one already stored, since
// Google only sends it on first consent.
func (m *Manager) StoreGoogleTokens(ctx context.Context, sessionToken string, grant Grant) error {
	p, err := m.sessions.Resolve(ctx, sessionToken)
	if err != nil {
		return err
	}

	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		refreshToken = p.Tenant.Google.RefreshToken
	}
	accountEmail := grant.AccountEmail
	if accountEmail == "" {
		accountEmail = p.Tenant.Google.AccountEmail
	}

	err = m.tenantRepo.SetGoogleTokens(ctx, p.Tenant.ID, tenants.GoogleTokens{
		AccessToken:  grant.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    m.expiresAt(grant.ExpiresIn),
		AccountEmail: accountEmail,
	})
	if err != nil {
		return errors.Wrap(err, "[StoreGoogleTokens] tenants.SetGoogleTokens")
	}
	return nil
}

// UpdateGoogleTokens replaces the access token of a tenant after a refresh.
func (m *Manager) UpdateGoogleTokens(ctx context.Context, tenantID, accessToken string, expiresIn int64) error {
	if err := m.tenantRepo.UpdateAccessToken(ctx, tenantID, accessToken, m.expiresAt(expiresIn)); err != nil {
		return errors.Wrap(err, "[UpdateGoogleTokens] tenants.UpdateAccessToken")
	}
	return nil
}

// Disconnect removes the Google credentials of the session's tenant. Admin only.
func (m *Manager) Disconnect(ctx context.Context, sessionToken string) error {
	p, err := m.sessions.RequireAdmin(ctx, sessionToken, apperrors.ErrDisconnectGoogleForbidden)
	if err != nil {
		return err
	}
	if err := m.tenantRepo.ClearGoogleTokens(ctx, p.Tenant.ID); err != nil {
		return errors.Wrap(err, "[Disconnect] tenants.ClearGoogleTokens")
	}
	log.Info().Str("tenant", p.Tenant.ID).Str("client", p.Client.ID).Msg("google disconnected")
	return nil
}

// Refresh uses the tenant's refresh token to obtain a new access token,
// stores it and returns it. Any failure is ErrGoogleReauthRequired.
func (m *Manager) Refresh(ctx context.Context, tenant *tenants.Tenant) (accessToken string, err error) {
	defer func() { m.metrics.ObserveTokenRefresh(err) }()

	if tenant.Google.RefreshToken == "" {
		return "", apperrors.Wrapf(apperrors.ErrGoogleReauthRequired, "no refresh token")
	}

	// An already expired token forces the source to use the refresh grant.
	expired := &oauth2.Token{RefreshToken: tenant.Google.RefreshToken, Expiry: time.Unix(1, 0)}
	tok, err := m.oauth.TokenSource(m.clientContext(ctx), expired).Token()
	if err != nil {
		log.Err(err).Str("tenant", tenant.ID).Msg("google token refresh failed")
		return "", apperrors.Wrapf(apperrors.ErrGoogleReauthRequired, "%v", err)
	}

	if err := m.UpdateGoogleTokens(ctx, tenant.ID, tok.AccessToken, m.expiresIn(tok)); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// HTTPClient returns a client that sends accessToken as a bearer token. It
// never refreshes on its own; callers handle 401 responses explicitly.
func (m *Manager) HTTPClient(ctx context.Context, accessToken string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return oauth2.NewClient(m.clientContext(ctx), src)
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func (m *Manager) expiresIn(tok *oauth2.Token) int64 {
	if tok.ExpiresIn > 0 {
		return tok.ExpiresIn
	}
	if !tok.Expiry.IsZero() {
		if secs := int64(tok.Expiry.Sub(m.nowFunc()).Seconds()); secs > 0 {
			return secs
		}
	}
	return DefaultExpiresIn
}

func (m *Manager) expiresAt(expiresIn int64) time.Time {
	return m.nowFunc().Add(time.Duration(expiresIn) * time.Second)
}
