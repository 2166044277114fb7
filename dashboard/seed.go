package dashboard

import (
	"context"

	"github.com/jrsteele09/tenant-dashboard/clients"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/internal/utils"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Demo tenant fixtures.
const (
	DemoDomain     = "demo.example.com"
	DemoTenantName = "Demo Company"
	DemoPropertyID = "GA_DEMO_123"
	DemoSiteURL    = "https://demo.example.com"
	DemoEmail      = "demo@example.com"
	DemoPassword   = "demo123"
	DemoClientName = "Demo User"
	demoDays       = 30
)

// SeedResult reports what SeedDemoData did.
type SeedResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TenantID string `json:"tenantId"`
}

// SeedDemoData creates the demo tenant, its admin and thirty days of random
// metrics. It does nothing when the demo tenant already exists.
func (s *Service) SeedDemoData(ctx context.Context) (*SeedResult, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	existing, err := s.repos.Tenants.GetByDomain(ctx, DemoDomain)
	if err == nil {
		return &SeedResult{Success: true, Message: "Demo data already exists", TenantID: existing.ID}, nil
	}
	if !apperrors.Is(err, apperrors.ErrTenantNotFound) {
		return nil, errors.Wrap(err, "[SeedDemoData] tenants.GetByDomain")
	}

	now := s.nowFunc()
	tenant := &tenants.Tenant{
		Name:                      DemoTenantName,
		Domain:                    DemoDomain,
		GoogleAnalyticsPropertyID: DemoPropertyID,
		SearchConsoleURL:          DemoSiteURL,
		CreatedAt:                 now,
		IsActive:                  true,
	}
	if err := s.repos.Tenants.Insert(ctx, tenant); err != nil {
		return nil, errors.Wrap(err, "[SeedDemoData] tenants.Insert")
	}

	err = s.repos.Clients.Insert(ctx, &clients.Client{
		TenantID: tenant.ID,
		Email:    DemoEmail,
		Name:     DemoClientName,
		Password: DemoPassword,
		Role:     clients.RoleAdmin,
		IsActive: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[SeedDemoData] clients.Insert")
	}

	for i := 0; i < demoDays; i++ {
		date := metrics.FormatDate(now.AddDate(0, 0, -i))
		for _, m := range []*metrics.Metric{
			{TenantID: tenant.ID, Date: date, Source: metrics.SourceAnalytics, Data: s.demoAnalytics(), UpdatedAt: now},
			{TenantID: tenant.ID, Date: date, Source: metrics.SourceSearchConsole, Data: s.demoSearchConsole(), UpdatedAt: now},
		} {
			if err := s.repos.Metrics.Upsert(ctx, m); err != nil {
				return nil, errors.Wrap(err, "[SeedDemoData] metrics.Upsert")
			}
		}
	}

	log.Info().Str("tenant", tenant.ID).Msg("demo data seeded")
	return &SeedResult{Success: true, Message: "Demo data created", TenantID: tenant.ID}, nil
}

func (s *Service) demoAnalytics() metrics.Data {
	return metrics.Data{
		Sessions:           utils.Ptr(s.rand.Int64N(1000) + 500),
		Users:              utils.Ptr(s.rand.Int64N(800) + 400),
		Pageviews:          utils.Ptr(s.rand.Int64N(2000) + 1000),
		BounceRate:         utils.Ptr(s.rand.Float64()*0.3 + 0.4),
		AvgSessionDuration: utils.Ptr(float64(s.rand.Int64N(300) + 120)),
	}
}

func (s *Service) demoSearchConsole() metrics.Data {
	return metrics.Data{
		Clicks:      utils.Ptr(s.rand.Int64N(200) + 50),
		Impressions: utils.Ptr(s.rand.Int64N(5000) + 2000),
		CTR:         utils.Ptr(s.rand.Float64()*0.05 + 0.02),
		Position:    utils.Ptr(s.rand.Float64()*20 + 10),
	}
}
