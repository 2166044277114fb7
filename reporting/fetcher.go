package reporting

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/tenant-dashboard/auth"
	"github.com/jrsteele09/tenant-dashboard/internal/config"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/internal/telemetry"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// SessionResolver resolves a dashboard session to its tenant.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// TokenSource supplies Google credentials for a tenant.
type TokenSource interface {
	// Refresh obtains and stores a new access token for the tenant.
	Refresh(ctx context.Context, tenant *tenants.Tenant) (string, error)
	// HTTPClient returns a client authorised with accessToken.
	HTTPClient(ctx context.Context, accessToken string) *http.Client
}

// Fetcher pulls Google Analytics and Search Console reports into the metric store.
type Fetcher struct {
	sessions  SessionResolver
	tokens    TokenSource
	metrics   metrics.Repo
	cfg       config.GoogleConfig
	telemetry *telemetry.Metrics
	nowFunc   func() time.Time
}

type FetcherOption func(*Fetcher)

func WithNowFunc(now func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		f.nowFunc = now
	}
}

func WithTelemetry(m *telemetry.Metrics) FetcherOption {
	return func(f *Fetcher) {
		f.telemetry = m
	}
}

func NewFetcher(cfg config.GoogleConfig, sessions SessionResolver, tokens TokenSource, metricRepo metrics.Repo, options ...FetcherOption) *Fetcher {
	f := &Fetcher{
		sessions: sessions,
		tokens:   tokens,
		metrics:  metricRepo,
		cfg:      cfg,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// window is an inclusive YYYY-MM-DD date range.
type window struct {
	start, end string
}

// FetchGoogleData refreshes the metric rows of the session's tenant from
// Google. A 401 from either API triggers exactly one token refresh and one
// retry of the whole fetch; if that fails the tenant has to reconnect.
func (f *Fetcher) FetchGoogleData(ctx context.Context, sessionToken string) error {
	p, err := f.sessions.Resolve(ctx, sessionToken)
	if err != nil {
		return err
	}
	tenant := p.Tenant
	if tenant.Google.AccessToken == "" {
		return apperrors.ErrGoogleNotConnected
	}

	err = f.fetchAll(ctx, tenant, tenant.Google.AccessToken)
	if err == nil {
		return nil
	}
	if !isUnauthorized(err) {
		log.Err(err).Str("tenant", tenant.ID).Msg("error fetching google data")
		return err
	}

	log.Info().Str("tenant", tenant.ID).Msg("google access token rejected, refreshing")
	accessToken, err := f.tokens.Refresh(ctx, tenant)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrGoogleReauthRequired) {
			return err
		}
		return apperrors.Wrapf(apperrors.ErrGoogleReauthRequired, "%v", err)
	}

	if err := f.fetchAll(ctx, tenant, accessToken); err != nil {
		log.Err(err).Str("tenant", tenant.ID).Msg("google fetch failed after token refresh")
		return apperrors.Wrapf(apperrors.ErrGoogleReauthRequired, "%v", err)
	}
	return nil
}

// fetchAll fetches each configured source in turn and upserts its rows.
// The first failure aborts the rest.
func (f *Fetcher) fetchAll(ctx context.Context, tenant *tenants.Tenant, accessToken string) error {
	client := f.tokens.HTTPClient(ctx, accessToken)
	w := f.window()

	if tenant.GoogleAnalyticsPropertyID != "" {
		rows, err := fetchAnalytics(ctx, client, f.cfg.GetAnalyticsEndpoint(), tenant, w)
		f.telemetry.ObserveFetch(string(metrics.SourceAnalytics), err)
		if err != nil {
			return errors.Wrap(err, "[fetchAll] analytics")
		}
		if err := f.store(ctx, rows); err != nil {
			return err
		}
	}

	if tenant.SearchConsoleURL != "" {
		rows, err := fetchSearchConsole(ctx, client, f.cfg.GetSearchConsoleEndpoint(), tenant, w)
		f.telemetry.ObserveFetch(string(metrics.SourceSearchConsole), err)
		if err != nil {
			return errors.Wrap(err, "[fetchAll] search console")
		}
		if err := f.store(ctx, rows); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) store(ctx context.Context, rows []*metrics.Metric) error {
	now := f.nowFunc()
	for _, m := range rows {
		m.UpdatedAt = now
		if err := f.metrics.Upsert(ctx, m); err != nil {
			return errors.Wrap(err, "[store] metrics.Upsert")
		}
	}
	return nil
}

func (f *Fetcher) window() window {
	now := f.nowFunc()
	days := int(f.cfg.GetReportWindow() / (24 * time.Hour))
	return window{
		start: metrics.StartDate(now, days),
		end:   metrics.FormatDate(now),
	}
}

func isUnauthorized(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized
}
