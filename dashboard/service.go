package dashboard

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jrsteele09/tenant-dashboard/auth"
	"github.com/jrsteele09/tenant-dashboard/clients"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/pkg/errors"
)

// DefaultDaysBack is the dashboard window when none is requested.
const DefaultDaysBack = 30

// SessionResolver resolves a dashboard session to its client and tenant.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// Repos holds all repository dependencies for the Service
type Repos struct {
	Tenants tenants.Repo
	Clients clients.Repo
	Metrics metrics.Repo
}

// Metrics is the dashboard payload for one tenant and window.
type Metrics struct {
	Analytics                 metrics.AnalyticsSummary     `json:"analytics"`
	SearchConsole             metrics.SearchConsoleSummary `json:"searchConsole"`
	ChartData                 []metrics.ChartPoint         `json:"chartData"`
	IsGoogleConnected         bool                         `json:"isGoogleConnected"`
	GoogleAnalyticsPropertyID string                       `json:"googleAnalyticsPropertyId,omitempty"`
	SearchConsoleURL          string                       `json:"searchConsoleUrl,omitempty"`
}

// Service answers dashboard queries and maintains metric rows.
type Service struct {
	repos    Repos
	sessions SessionResolver
	nowFunc  func() time.Time

	seedMu sync.Mutex // guards rand and serialises seeding
	rand   *rand.Rand
}

type ServiceOption func(*Service)

func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// WithRand sets the random source used for demo data.
func WithRand(r *rand.Rand) ServiceOption {
	return func(s *Service) {
		s.rand = r
	}
}

func NewService(repos Repos, sessions SessionResolver, options ...ServiceOption) (*Service, error) {
	if repos.Tenants == nil || repos.Clients == nil || repos.Metrics == nil {
		return nil, errors.New("[dashboard.NewService] tenants, clients and metrics repos are required")
	}
	if sessions == nil {
		return nil, errors.New("[dashboard.NewService] session resolver is required")
	}

	s := &Service{
		repos:    repos,
		sessions: sessions,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s, nil
}

// GetDashboardMetrics aggregates the session tenant's rows dated on or after
// today minus daysBack. A non-positive daysBack means DefaultDaysBack.
func (s *Service) GetDashboardMetrics(ctx context.Context, sessionToken string, daysBack int) (*Metrics, error) {
	p, err := s.sessions.Resolve(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}

	rows, err := s.repos.Metrics.ListSince(ctx, p.Tenant.ID, metrics.StartDate(s.nowFunc(), daysBack))
	if err != nil {
		return nil, errors.Wrap(err, "[GetDashboardMetrics] metrics.ListSince")
	}

	summary := metrics.Aggregate(rows)
	return &Metrics{
		Analytics:                 summary.Analytics,
		SearchConsole:             summary.SearchConsole,
		ChartData:                 metrics.ChartData(rows),
		IsGoogleConnected:         p.Tenant.IsGoogleConnected,
		GoogleAnalyticsPropertyID: p.Tenant.GoogleAnalyticsPropertyID,
		SearchConsoleURL:          p.Tenant.SearchConsoleURL,
	}, nil
}

// UpsertMetric inserts the (tenant, date, source) row or replaces its data.
func (s *Service) UpsertMetric(ctx context.Context, tenantID, date string, source metrics.Source, data metrics.Data) error {
	if tenantID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "tenantId required")
	}
	if err := metrics.ValidateDate(date); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "%v", err)
	}
	if _, err := metrics.ParseSource(string(source)); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "%v", err)
	}
	if _, err := s.repos.Tenants.Get(ctx, tenantID); err != nil {
		return err
	}

	err := s.repos.Metrics.Upsert(ctx, &metrics.Metric{
		TenantID:  tenantID,
		Date:      date,
		Source:    source,
		Data:      data,
		UpdatedAt: s.nowFunc(),
	})
	if err != nil {
		return errors.Wrap(err, "[UpsertMetric] metrics.Upsert")
	}
	return nil
}
