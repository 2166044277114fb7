package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/token"
)

type authenticateRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	TenantDomain string `json:"tenantDomain"`
}

// sessionRequest is the body of every procedure that only needs a session.
type sessionRequest struct {
	SessionToken string `json:"sessionToken"`
}

type dashboardMetricsRequest struct {
	SessionToken string `json:"sessionToken"`
	DateRange    int    `json:"dateRange"` // Days back, 0 for the default
}

type storeGoogleTokensRequest struct {
	SessionToken string `json:"sessionToken"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type updateGoogleTokensRequest struct {
	SessionToken string `json:"sessionToken"`
	TenantID     string `json:"tenantId"`
	AccessToken  string `json:"accessToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type upsertMetricRequest struct {
	SessionToken string       `json:"sessionToken"`
	TenantID     string       `json:"tenantId"`
	Date         string       `json:"date"`
	Source       string       `json:"source"`
	Data         metrics.Data `json:"data"`
}

type authURLResponse struct {
	AuthURL string `json:"authUrl"`
}

// Authenticate logs a client in and returns a new session token.
func (s *Server) Authenticate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authenticateRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		res, err := s.auth.Authenticate(r.Context(), req.Email, req.Password, req.TenantDomain)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ValidateSession answers null for an invalid session rather than an error,
// so the browser can tell "logged out" from a failure.
func (s *Server) ValidateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		info, err := s.auth.ValidateSession(r.Context(), sessionToken(r, req.SessionToken))
		if apperrors.Is(err, apperrors.ErrInvalidSession) {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func (s *Server) LogoutClient() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.auth.Logout(r.Context(), sessionToken(r, req.SessionToken)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func (s *Server) GetDashboardMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dashboardMetricsRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		res, err := s.dashboard.GetDashboardMetrics(r.Context(), sessionToken(r, req.SessionToken), req.DateRange)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// UpsertMetric writes one metric row. The caller must be an admin of the tenant.
func (s *Server) UpsertMetric() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertMetricRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		ctx := r.Context()
		if _, err := s.auth.RequireTenantAdmin(ctx, sessionToken(r, req.SessionToken), req.TenantID); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.dashboard.UpsertMetric(ctx, req.TenantID, req.Date, metrics.Source(req.Source), req.Data); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func (s *Server) SeedDemoData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.config.GetDemoSeedEnabled() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "demo seeding is disabled"})
			return
		}

		res, err := s.dashboard.SeedDemoData(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) GenerateGoogleAuthURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		authURL, err := s.tokens.GenerateAuthURL(r.Context(), sessionToken(r, req.SessionToken))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authURLResponse{AuthURL: authURL})
	}
}

func (s *Server) StoreGoogleTokens() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req storeGoogleTokensRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.AccessToken == "" {
			writeError(w, r, apperrors.Wrapf(apperrors.ErrInvalidRequest, "accessToken required"))
			return
		}

		err := s.tokens.StoreGoogleTokens(r.Context(), sessionToken(r, req.SessionToken), token.Grant{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
			ExpiresIn:    expiresInOrDefault(req.ExpiresIn),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// UpdateGoogleTokens replaces a tenant's access token. The caller must be an
// admin of that tenant.
func (s *Server) UpdateGoogleTokens() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateGoogleTokensRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.AccessToken == "" {
			writeError(w, r, apperrors.Wrapf(apperrors.ErrInvalidRequest, "accessToken required"))
			return
		}

		ctx := r.Context()
		if _, err := s.auth.RequireTenantAdmin(ctx, sessionToken(r, req.SessionToken), req.TenantID); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.tokens.UpdateGoogleTokens(ctx, req.TenantID, req.AccessToken, expiresInOrDefault(req.ExpiresIn)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func (s *Server) DisconnectGoogle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.tokens.Disconnect(r.Context(), sessionToken(r, req.SessionToken)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func (s *Server) FetchGoogleData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := decodeRequest(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.fetcher.FetchGoogleData(r.Context(), sessionToken(r, req.SessionToken)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func expiresInOrDefault(expiresIn int64) int64 {
	if expiresIn <= 0 {
		return token.DefaultExpiresIn
	}
	return expiresIn
}
