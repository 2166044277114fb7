package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/tenant-dashboard/auth"
	"github.com/jrsteele09/tenant-dashboard/clients"
	"github.com/jrsteele09/tenant-dashboard/dashboard"
	"github.com/jrsteele09/tenant-dashboard/internal/config/configfakes"
	"github.com/jrsteele09/tenant-dashboard/internal/telemetry"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/server"
	"github.com/jrsteele09/tenant-dashboard/store"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	tenantrepofakes "github.com/jrsteele09/tenant-dashboard/tenants/repofakes"
	"github.com/stretchr/testify/require"
)

const (
	acmeDomain  = "acme.example.com"
	otherDomain = "other.example.com"
	password    = "correct-horse"
)

// googleStub stands in for the Google token endpoint and both reporting APIs.
func googleStub(t *testing.T) *httptest.Server {
	t.Helper()
	stub := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/token" {
			_ = r.ParseForm()
			if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","expires_in":3599,"token_type":"Bearer"}`))
			return
		}

		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"unauthenticated"}}`))
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, ":runReport"):
			_, _ = w.Write([]byte(`{"rows":[{"dimensionValues":[{"value":"20260430"}],"metricValues":[{"value":"42"},{"value":"40"},{"value":"90"},{"value":"0.5"},{"value":"61"}]}]}`))
		case strings.HasSuffix(r.URL.Path, "/searchAnalytics/query"):
			_, _ = w.Write([]byte(`{"rows":[{"keys":["2026-04-30"],"clicks":7,"impressions":300,"ctr":0.02,"position":9.5}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(stub))
	t.Cleanup(srv.Close)
	return srv
}

// clock is read by server goroutines while tests move it.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testFixture holds all test dependencies
type testFixture struct {
	clock     *clock
	cfg       *configfakes.FakeConfig
	repos     *store.Repos
	faults    *tenantrepofakes.FakeTenantRepo
	telemetry *telemetry.Metrics
	srv       *httptest.Server
	acme      *tenants.Tenant
	other     *tenants.Tenant
}

func setupTestFixture(t *testing.T, configure ...func(*configfakes.FakeConfig)) *testFixture {
	t.Helper()
	ctx := context.Background()

	google := googleStub(t)
	f := &testFixture{
		clock:     &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		cfg:       configfakes.NewFakeConfig(),
		repos:     store.NewInMemory(),
		telemetry: telemetry.New(),
	}
	f.faults = tenantrepofakes.NewFakeTenantRepo(f.repos.Tenants)
	f.repos.Tenants = f.faults
	f.cfg.GoogleTokenURL = google.URL + "/token"
	f.cfg.AnalyticsEndpoint = google.URL + "/"
	f.cfg.SearchConsoleEndpoint = google.URL + "/"
	for _, fn := range configure {
		fn(f.cfg)
	}

	f.acme = &tenants.Tenant{Name: "Acme", Domain: acmeDomain, IsActive: true, GoogleAnalyticsPropertyID: "123456", SearchConsoleURL: "https://acme.example.com/"}
	f.other = &tenants.Tenant{Name: "Other", Domain: otherDomain, IsActive: true}
	for _, tenant := range []*tenants.Tenant{f.acme, f.other} {
		require.NoError(t, f.repos.Tenants.Insert(ctx, tenant))
	}
	for _, c := range []*clients.Client{
		{TenantID: f.acme.ID, Email: "admin@acme.test", Name: "Ada", Password: password, Role: clients.RoleAdmin, IsActive: true},
		{TenantID: f.acme.ID, Email: "viewer@acme.test", Name: "Vic", Password: password, Role: clients.RoleViewer, IsActive: true},
		{TenantID: f.other.ID, Email: "admin@other.test", Name: "Olga", Password: password, Role: clients.RoleAdmin, IsActive: true},
	} {
		require.NoError(t, f.repos.Clients.Insert(ctx, c))
	}

	s, err := server.New(f.cfg, f.repos,
		server.WithNowFunc(f.clock.Now),
		server.WithRand(rand.New(rand.NewPCG(1, 2))),
		server.WithTelemetry(f.telemetry),
	)
	require.NoError(t, err)

	f.srv = httptest.NewServer(s)
	t.Cleanup(f.srv.Close)
	return f
}

// call posts body to a procedure route and returns the status and raw body.
func (f *testFixture) call(t *testing.T, route string, body any, bearer string) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+route, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (f *testFixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.srv.Client().Get(f.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func (f *testFixture) login(t *testing.T, email, domain string) string {
	t.Helper()
	return f.loginWith(t, email, password, domain)
}

func (f *testFixture) loginWith(t *testing.T, email, pw, domain string) string {
	t.Helper()
	status, body := f.call(t, server.RouteAuthenticate, map[string]string{
		"email": email, "password": pw, "tenantDomain": domain,
	}, "")
	require.Equal(t, http.StatusOK, status, string(body))

	var res auth.AuthResult
	require.NoError(t, json.Unmarshal(body, &res))
	return res.SessionToken
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var res struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &res), string(body))
	return res.Error
}

func TestAuthenticate(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("success", func(t *testing.T) {
		status, body := f.call(t, server.RouteAuthenticate, map[string]string{
			"email": "admin@acme.test", "password": password, "tenantDomain": acmeDomain,
		}, "")
		require.Equal(t, http.StatusOK, status)

		var res auth.AuthResult
		require.NoError(t, json.Unmarshal(body, &res))
		require.NotEmpty(t, res.SessionToken)
		require.Equal(t, "Ada", res.Client.Name)
		require.Equal(t, clients.RoleAdmin, res.Client.Role)
		require.Equal(t, acmeDomain, res.Tenant.Domain)
		require.NotContains(t, string(body), password)
	})

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"wrong password", map[string]string{"email": "admin@acme.test", "password": "nope", "tenantDomain": acmeDomain}, http.StatusUnauthorized, "invalid credentials"},
		{"unknown email", map[string]string{"email": "ghost@acme.test", "password": password, "tenantDomain": acmeDomain}, http.StatusUnauthorized, "invalid credentials"},
		{"other tenant", map[string]string{"email": "admin@acme.test", "password": password, "tenantDomain": otherDomain}, http.StatusUnauthorized, "invalid credentials"},
		{"unknown domain", map[string]string{"email": "admin@acme.test", "password": password, "tenantDomain": "nope.example.com"}, http.StatusUnauthorized, "invalid tenant domain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.call(t, server.RouteAuthenticate, tt.body, "")
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.message, errorMessage(t, body))
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		status, _ := f.call(t, server.RouteAuthenticate, map[string]string{"email": "admin@acme.test"}, "")
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := f.srv.Client().Post(f.srv.URL+server.RouteAuthenticate, "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, _ := f.get(t, server.RouteAuthenticate)
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestValidateSessionAndLogout(t *testing.T) {
	f := setupTestFixture(t)
	token := f.login(t, "viewer@acme.test", acmeDomain)

	status, body := f.call(t, server.RouteValidateSession, map[string]string{"sessionToken": token}, "")
	require.Equal(t, http.StatusOK, status)
	var info auth.SessionInfo
	require.NoError(t, json.Unmarshal(body, &info))
	require.Equal(t, "viewer@acme.test", info.Client.Email)
	require.Equal(t, f.acme.ID, info.Tenant.ID)

	// The bearer header works as well
	status, body = f.call(t, server.RouteValidateSession, map[string]string{}, token)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), "viewer@acme.test")

	status, body = f.call(t, server.RouteValidateSession, map[string]string{"sessionToken": "unknown"}, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "null", strings.TrimSpace(string(body)))

	status, _ = f.call(t, server.RouteLogoutClient, map[string]string{"sessionToken": token}, "")
	require.Equal(t, http.StatusOK, status)
	status, body = f.call(t, server.RouteValidateSession, map[string]string{"sessionToken": token}, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "null", strings.TrimSpace(string(body)))

	t.Run("expired after a day", func(t *testing.T) {
		token := f.login(t, "viewer@acme.test", acmeDomain)
		f.clock.Advance(24*time.Hour + time.Second)
		defer f.clock.Advance(-24*time.Hour - time.Second)

		_, body := f.call(t, server.RouteValidateSession, map[string]string{"sessionToken": token}, "")
		require.Equal(t, "null", strings.TrimSpace(string(body)))

		status, body := f.call(t, server.RouteGetDashboardMetrics, map[string]any{"sessionToken": token}, "")
		require.Equal(t, http.StatusUnauthorized, status)
		require.Equal(t, "invalid session", errorMessage(t, body))
	})
}

func TestDashboardMetrics(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.call(t, server.RouteSeedDemoData, map[string]any{}, "")
	require.Equal(t, http.StatusOK, status)
	var seed dashboard.SeedResult
	require.NoError(t, json.Unmarshal(body, &seed))
	require.Equal(t, "Demo data created", seed.Message)

	token := f.loginWith(t, dashboard.DemoEmail, dashboard.DemoPassword, dashboard.DemoDomain)

	status, body = f.call(t, server.RouteGetDashboardMetrics, map[string]any{"sessionToken": token}, "")
	require.Equal(t, http.StatusOK, status)
	var got dashboard.Metrics
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.ChartData, 60)
	require.Positive(t, got.Analytics.Sessions)
	require.Positive(t, got.SearchConsole.Impressions)
	require.Equal(t, dashboard.DemoPropertyID, got.GoogleAnalyticsPropertyID)
	require.False(t, got.IsGoogleConnected)

	status, body = f.call(t, server.RouteGetDashboardMetrics, map[string]any{"sessionToken": token, "dateRange": 7}, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.ChartData, 16)

	t.Run("seeding twice", func(t *testing.T) {
		status, body := f.call(t, server.RouteSeedDemoData, map[string]any{}, "")
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, string(body), "Demo data already exists")
	})

	t.Run("tenant isolation", func(t *testing.T) {
		other := f.login(t, "admin@other.test", otherDomain)
		status, body := f.call(t, server.RouteGetDashboardMetrics, map[string]any{"sessionToken": other}, "")
		require.Equal(t, http.StatusOK, status)
		var got dashboard.Metrics
		require.NoError(t, json.Unmarshal(body, &got))
		require.Empty(t, got.ChartData)
	})
}

func TestSeedDemoData_Disabled(t *testing.T) {
	f := setupTestFixture(t, func(c *configfakes.FakeConfig) { c.DemoSeedDisabled = true })

	status, _ := f.call(t, server.RouteSeedDemoData, map[string]any{}, "")
	require.Equal(t, http.StatusForbidden, status)
	_, err := f.repos.Tenants.GetByDomain(context.Background(), dashboard.DemoDomain)
	require.Error(t, err)
}

func TestUpsertMetric(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.login(t, "admin@acme.test", acmeDomain)
	viewer := f.login(t, "viewer@acme.test", acmeDomain)
	otherAdmin := f.login(t, "admin@other.test", otherDomain)

	body := func(token, date, source string) map[string]any {
		return map[string]any{
			"sessionToken": token,
			"tenantId":     f.acme.ID,
			"date":         date,
			"source":       source,
			"data":         map[string]any{"sessions": 12, "bounceRate": 0.5},
		}
	}

	status, res := f.call(t, server.RouteUpsertMetric, body(admin, "2026-04-30", "analytics"), "")
	require.Equal(t, http.StatusOK, status, string(res))
	m, err := f.repos.Metrics.Get(context.Background(), f.acme.ID, "2026-04-30", metrics.SourceAnalytics)
	require.NoError(t, err)
	require.Equal(t, int64(12), *m.Data.Sessions)

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"viewer", body(viewer, "2026-04-30", "analytics"), http.StatusForbidden, "only admins can perform this action"},
		{"admin of another tenant", body(otherAdmin, "2026-04-30", "analytics"), http.StatusForbidden, "session does not belong to tenant"},
		{"no session", body("", "2026-04-30", "analytics"), http.StatusUnauthorized, "invalid session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := f.call(t, server.RouteUpsertMetric, tt.body, "")
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.message, errorMessage(t, res))
		})
	}

	t.Run("invalid input", func(t *testing.T) {
		status, _ := f.call(t, server.RouteUpsertMetric, body(admin, "30-04-2026", "analytics"), "")
		require.Equal(t, http.StatusBadRequest, status)
		status, _ = f.call(t, server.RouteUpsertMetric, body(admin, "2026-04-30", "adwords"), "")
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("fractional count", func(t *testing.T) {
		b := body(admin, "2026-04-29", "analytics")
		b["data"] = map[string]any{"sessions": 12.5}
		status, res := f.call(t, server.RouteUpsertMetric, b, "")
		require.Equal(t, http.StatusBadRequest, status)
		require.Contains(t, errorMessage(t, res), "sessions must be a whole number")

		_, err := f.repos.Metrics.Get(context.Background(), f.acme.ID, "2026-04-29", metrics.SourceAnalytics)
		require.Error(t, err)
	})
}

func TestGoogleTokenProcedures(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	admin := f.login(t, "admin@acme.test", acmeDomain)
	viewer := f.login(t, "viewer@acme.test", acmeDomain)

	t.Run("auth url is admin only", func(t *testing.T) {
		status, body := f.call(t, server.RouteGenerateGoogleAuthURL, map[string]string{"sessionToken": viewer}, "")
		require.Equal(t, http.StatusForbidden, status)
		require.Equal(t, "only admins can connect Google services", errorMessage(t, body))

		status, body = f.call(t, server.RouteGenerateGoogleAuthURL, map[string]string{"sessionToken": admin}, "")
		require.Equal(t, http.StatusOK, status)
		var res struct {
			AuthURL string `json:"authUrl"`
		}
		require.NoError(t, json.Unmarshal(body, &res))
		u, err := url.Parse(res.AuthURL)
		require.NoError(t, err)
		require.Equal(t, "google-client-id", u.Query().Get("client_id"))
		require.Equal(t, "offline", u.Query().Get("access_type"))
		require.NotEmpty(t, u.Query().Get("state"))
	})

	t.Run("fetch needs a connection", func(t *testing.T) {
		status, body := f.call(t, server.RouteFetchGoogleData, map[string]string{"sessionToken": admin}, "")
		require.Equal(t, http.StatusConflict, status)
		require.Equal(t, "google not connected for this tenant", errorMessage(t, body))
	})

	t.Run("store, update and disconnect", func(t *testing.T) {
		status, body := f.call(t, server.RouteStoreGoogleTokens, map[string]any{
			"sessionToken": admin, "accessToken": "access-1", "refreshToken": "refresh-1", "expiresIn": 3600,
		}, "")
		require.Equal(t, http.StatusOK, status, string(body))

		tenant, err := f.repos.Tenants.Get(ctx, f.acme.ID)
		require.NoError(t, err)
		require.True(t, tenant.IsGoogleConnected)
		require.Equal(t, f.clock.Now().Add(time.Hour), tenant.Google.ExpiresAt)

		status, _ = f.call(t, server.RouteUpdateGoogleTokens, map[string]any{
			"tenantId": f.acme.ID, "accessToken": "access-2", "expiresIn": 0,
		}, admin)
		require.Equal(t, http.StatusOK, status)
		tenant, err = f.repos.Tenants.Get(ctx, f.acme.ID)
		require.NoError(t, err)
		require.Equal(t, "access-2", tenant.Google.AccessToken)
		require.Equal(t, "refresh-1", tenant.Google.RefreshToken)

		status, _ = f.call(t, server.RouteUpdateGoogleTokens, map[string]any{
			"tenantId": f.acme.ID, "accessToken": "access-3", "expiresIn": 60,
		}, viewer)
		require.Equal(t, http.StatusForbidden, status)

		status, body = f.call(t, server.RouteDisconnectGoogle, map[string]string{"sessionToken": viewer}, "")
		require.Equal(t, http.StatusForbidden, status)
		require.Equal(t, "only admins can disconnect Google services", errorMessage(t, body))

		status, _ = f.call(t, server.RouteDisconnectGoogle, map[string]string{"sessionToken": admin}, "")
		require.Equal(t, http.StatusOK, status)
		tenant, err = f.repos.Tenants.Get(ctx, f.acme.ID)
		require.NoError(t, err)
		require.False(t, tenant.IsGoogleConnected)
		require.Empty(t, tenant.Google.RefreshToken)
	})
}

func TestGoogleCallback(t *testing.T) {
	ctx := context.Background()

	authState := func(t *testing.T, f *testFixture, token string) string {
		t.Helper()
		_, body := f.call(t, server.RouteGenerateGoogleAuthURL, map[string]string{"sessionToken": token}, "")
		var res struct {
			AuthURL string `json:"authUrl"`
		}
		require.NoError(t, json.Unmarshal(body, &res))
		u, err := url.Parse(res.AuthURL)
		require.NoError(t, err)
		return u.Query().Get("state")
	}

	t.Run("connects and fetches", func(t *testing.T) {
		f := setupTestFixture(t)
		admin := f.login(t, "admin@acme.test", acmeDomain)
		state := authState(t, f, admin)

		resp, page := f.get(t, server.RouteGoogleCallback+"?code=good-code&state="+url.QueryEscape(state))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		require.Contains(t, page, "window.close()")
		require.Contains(t, page, "Successfully connected to Google!")

		tenant, err := f.repos.Tenants.Get(ctx, f.acme.ID)
		require.NoError(t, err)
		require.True(t, tenant.IsGoogleConnected)
		require.Equal(t, "refresh-1", tenant.Google.RefreshToken)

		ga, err := f.repos.Metrics.Get(ctx, f.acme.ID, "2026-04-30", metrics.SourceAnalytics)
		require.NoError(t, err)
		require.Equal(t, int64(42), *ga.Data.Sessions)
		sc, err := f.repos.Metrics.Get(ctx, f.acme.ID, "2026-04-30", metrics.SourceSearchConsole)
		require.NoError(t, err)
		require.InDelta(t, 2.0, *sc.Data.CTR, 1e-9)

		// The state cannot be replayed
		resp, page = f.get(t, server.RouteGoogleCallback+"?code=good-code&state="+url.QueryEscape(state))
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.Contains(t, page, "Failed to connect to Google")
	})

	tests := []struct {
		name    string
		query   func(t *testing.T, f *testFixture) string
		status  int
		message string
	}{
		{
			name:    "provider error",
			query:   func(*testing.T, *testFixture) string { return "?error=access_denied" },
			status:  http.StatusBadRequest,
			message: "Authorization failed: access_denied",
		},
		{
			name:    "error is escaped",
			query:   func(*testing.T, *testFixture) string { return "?error=" + url.QueryEscape("<script>alert(1)</script>") },
			status:  http.StatusBadRequest,
			message: "Authorization failed: &lt;script&gt;alert(1)&lt;/script&gt;",
		},
		{
			name:    "missing code",
			query:   func(*testing.T, *testFixture) string { return "?state=abc" },
			status:  http.StatusBadRequest,
			message: "Missing authorization code or state",
		},
		{
			name:    "forged state",
			query:   func(*testing.T, *testFixture) string { return "?code=good-code&state=forged" },
			status:  http.StatusInternalServerError,
			message: "Failed to connect to Google",
		},
		{
			name: "bad code",
			query: func(t *testing.T, f *testFixture) string {
				return "?code=bad-code&state=" + url.QueryEscape(authState(t, f, f.login(t, "admin@acme.test", acmeDomain)))
			},
			status:  http.StatusInternalServerError,
			message: "Failed to connect to Google",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			resp, page := f.get(t, server.RouteGoogleCallback+tt.query(t, f))
			require.Equal(t, tt.status, resp.StatusCode)
			require.Contains(t, page, "window.close()")
			require.Contains(t, page, tt.message)
			require.NotContains(t, page, "<script>alert(1)")
		})
	}
}

func TestStoreFailures(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.login(t, "admin@acme.test", acmeDomain)

	t.Run("login", func(t *testing.T) {
		f.faults.FailOn("GetByDomain", errors.New("connection reset by peer"))
		defer f.faults.FailOn("GetByDomain", nil)

		status, body := f.call(t, server.RouteAuthenticate, map[string]string{
			"email": "admin@acme.test", "password": password, "tenantDomain": acmeDomain,
		}, "")
		require.Equal(t, http.StatusInternalServerError, status)
		require.Equal(t, "internal error", errorMessage(t, body))
	})

	t.Run("storing tokens", func(t *testing.T) {
		f.faults.FailOn("SetGoogleTokens", errors.New("disk full"))
		defer f.faults.FailOn("SetGoogleTokens", nil)

		status, body := f.call(t, server.RouteStoreGoogleTokens, map[string]any{
			"sessionToken": admin, "accessToken": "access-1",
		}, "")
		require.Equal(t, http.StatusInternalServerError, status)
		require.NotContains(t, string(body), "disk full")
	})

	_, body := f.get(t, server.RouteMetrics)
	require.Contains(t, body, `dashboard_auth_logins_total{outcome="error"} 1`)
}

func TestOperationalEndpoints(t *testing.T) {
	f := setupTestFixture(t)

	resp, body := f.get(t, server.RouteHealth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)

	f.login(t, "admin@acme.test", acmeDomain)
	resp, body = f.get(t, server.RouteMetrics)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, fmt.Sprintf(`dashboard_http_requests_total{method="POST",route="POST %s",status="200"} 1`, server.RouteAuthenticate))
	require.Contains(t, body, `dashboard_auth_logins_total{outcome="success"} 1`)

	t.Run("request id and security headers", func(t *testing.T) {
		resp, _ := f.get(t, server.RouteHealth)
		require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	})
}

func TestCORS(t *testing.T) {
	f := setupTestFixture(t, func(c *configfakes.FakeConfig) {
		c.AllowedOrigins = []string{"https://app.example.test"}
	})

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, f.srv.URL+server.RouteAuthenticate, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		resp, err := f.srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := preflight("https://app.example.test")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "https://app.example.test", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	// The site URL is always allowed
	resp = preflight("https://dash.example.test")
	require.Equal(t, "https://dash.example.test", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = preflight("https://evil.example.test")
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
