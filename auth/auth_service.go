package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/tenant-dashboard/clients"
	"github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/internal/telemetry"
	"github.com/jrsteele09/tenant-dashboard/sessions"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultSessionTTL is the absolute lifetime of a dashboard session.
const DefaultSessionTTL = 24 * time.Hour

// Repos holds all repository dependencies for the Service
type Repos struct {
	Tenants  tenants.Repo  // Repository for tenant data
	Clients  clients.Repo  // Repository for dashboard logins
	Sessions sessions.Repo // Repository for session data
}

// ClientView is the part of a client that is returned to the browser.
type ClientView struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Role  clients.RoleType `json:"role"`
}

// TenantView is the part of a tenant that is returned to the browser.
type TenantView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Domain            string `json:"domain"`
	IsGoogleConnected bool   `json:"isGoogleConnected"`
}

// SessionInfo is the projection of a valid session.
type SessionInfo struct {
	Client ClientView `json:"client"`
	Tenant TenantView `json:"tenant"`
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	SessionToken string     `json:"sessionToken"`
	Client       ClientView `json:"client"`
	Tenant       TenantView `json:"tenant"`
}

// Principal is a resolved, valid session together with its records.
type Principal struct {
	Session *sessions.Session
	Client  *clients.Client
	Tenant  *tenants.Tenant
}

// Info projects the principal for the browser.
func (p *Principal) Info() *SessionInfo {
	return &SessionInfo{Client: viewClient(p.Client), Tenant: viewTenant(p.Tenant)}
}

// Service authenticates dashboard clients and resolves their sessions.
type Service struct {
	repos      Repos
	validator  *Validator
	metrics    *telemetry.Metrics
	sessionTTL time.Duration
	newToken   func() (string, error)
	nowTime    func() time.Time // injectable for testing
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithTokenGenerator replaces the session token generator.
func WithTokenGenerator(gen func() (string, error)) ServiceOption {
	return func(s *Service) {
		s.newToken = gen
	}
}

func WithMetrics(m *telemetry.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(repos Repos, options ...ServiceOption) (*Service, error) {
	if repos.Tenants == nil {
		return nil, pkgerrors.New("[auth.NewService] Tenants repo is required")
	}
	if repos.Clients == nil {
		return nil, pkgerrors.New("[auth.NewService] Clients repo is required")
	}
	if repos.Sessions == nil {
		return nil, pkgerrors.New("[auth.NewService] Sessions repo is required")
	}

	s := &Service{
		repos:      repos,
		validator:  NewValidator(),
		sessionTTL: DefaultSessionTTL,
		newToken:   NewSessionToken,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Authenticate checks the credentials of a client within the tenant owning
// tenantDomain and opens a new session. An unknown email, an inactive client
// and a wrong password all fail with the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password, tenantDomain string) (result *AuthResult, err error) {
	defer func() { s.metrics.ObserveLogin(err) }()

	params, err := s.validator.ValidateLogin(email, password, tenantDomain)
	if err != nil {
		return nil, err
	}

	tenant, err := s.repos.Tenants.GetByDomain(ctx, params.TenantDomain)
	if errors.Is(err, errors.ErrTenantNotFound) || (err == nil && !tenant.IsActive) {
		return nil, errors.ErrInvalidTenantDomain
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Authenticate] tenants.GetByDomain")
	}

	client, err := s.repos.Clients.GetByEmail(ctx, tenant.ID, params.Email)
	if errors.Is(err, errors.ErrClientNotFound) {
		return nil, errors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Authenticate] clients.GetByEmail")
	}
	if !client.IsActive || !clients.CheckPassword(client.Password, params.Password) {
		return nil, errors.ErrInvalidCredentials
	}

	token, err := s.newToken()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Authenticate] generate session token")
	}

	now := s.nowTime()
	session := &sessions.Session{
		ID:        uuid.New().String(),
		ClientID:  client.ID,
		TenantID:  tenant.ID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repos.Sessions.Insert(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(err, "[Authenticate] sessions.Insert")
	}

	if err := s.repos.Clients.SetLastLogin(ctx, client.ID, now); err != nil {
		log.Err(err).Str("client", client.ID).Msg("failed to stamp last login")
	}

	return &AuthResult{
		SessionToken: token,
		Client:       viewClient(client),
		Tenant:       viewTenant(tenant),
	}, nil
}

// ValidateSession returns the projection of a valid session or ErrInvalidSession.
func (s *Service) ValidateSession(ctx context.Context, token string) (*SessionInfo, error) {
	p, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return p.Info(), nil
}

// Resolve looks up a session and its client and tenant. The session is valid
// only while unexpired and while both its client and tenant are active; every
// other outcome short of a store failure is ErrInvalidSession.
func (s *Service) Resolve(ctx context.Context, token string) (*Principal, error) {
	if err := s.validator.ValidateSessionToken(token); err != nil {
		return nil, err
	}

	session, err := s.repos.Sessions.GetByToken(ctx, token)
	if errors.Is(err, errors.ErrSessionNotFound) {
		return nil, errors.ErrInvalidSession
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Resolve] sessions.GetByToken")
	}
	if session.Expired(s.nowTime()) {
		return nil, errors.ErrInvalidSession
	}

	client, err := s.repos.Clients.Get(ctx, session.ClientID)
	if errors.Is(err, errors.ErrClientNotFound) {
		return nil, errors.ErrInvalidSession
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Resolve] clients.Get")
	}

	tenant, err := s.repos.Tenants.Get(ctx, session.TenantID)
	if errors.Is(err, errors.ErrTenantNotFound) {
		return nil, errors.ErrInvalidSession
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Resolve] tenants.Get")
	}

	if !client.IsActive || !tenant.IsActive || client.TenantID != tenant.ID {
		return nil, errors.ErrInvalidSession
	}
	return &Principal{Session: session, Client: client, Tenant: tenant}, nil
}

// Logout deletes the session if it exists. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repos.Sessions.DeleteByToken(ctx, token); err != nil {
		return pkgerrors.Wrap(err, "[Logout] sessions.DeleteByToken")
	}
	return nil
}

// RequireAdmin resolves the session and checks that its client is an admin.
// forbidden is returned for non-admins so callers keep their specific message.
func (s *Service) RequireAdmin(ctx context.Context, token string, forbidden error) (*Principal, error) {
	p, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !p.Client.IsAdmin() {
		if forbidden == nil {
			forbidden = errors.ErrAdminRequired
		}
		return nil, forbidden
	}
	return p, nil
}

// RequireTenantAdmin is RequireAdmin plus a check that the session belongs to tenantID.
func (s *Service) RequireTenantAdmin(ctx context.Context, token, tenantID string) (*Principal, error) {
	p, err := s.RequireAdmin(ctx, token, errors.ErrAdminRequired)
	if err != nil {
		return nil, err
	}
	if p.Tenant.ID != tenantID {
		return nil, errors.ErrTenantMismatch
	}
	return p, nil
}

// NewSessionToken returns two concatenated base-36 fragments of 64 random bits each.
func NewSessionToken() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(buf[:8]), 36) +
		strconv.FormatUint(binary.BigEndian.Uint64(buf[8:]), 36), nil
}

func viewClient(c *clients.Client) ClientView {
	return ClientView{ID: c.ID, Name: c.Name, Email: c.Email, Role: c.Role}
}

func viewTenant(t *tenants.Tenant) TenantView {
	return TenantView{ID: t.ID, Name: t.Name, Domain: t.Domain, IsGoogleConnected: t.IsGoogleConnected}
}
