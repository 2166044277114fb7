package reporting

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jrsteele09/tenant-dashboard/internal/utils"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/pkg/errors"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// Report columns, in the order the values come back.
var analyticsMetrics = []string{
	"sessions",
	"totalUsers",
	"screenPageViews",
	"bounceRate",
	"averageSessionDuration",
}

// fetchAnalytics runs a per-day GA4 report for the tenant's property.
func fetchAnalytics(ctx context.Context, client *http.Client, endpoint string, tenant *tenants.Tenant, w window) ([]*metrics.Metric, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "analyticsdata.NewService")
	}

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: w.start, EndDate: w.end}},
		Dimensions: []*analyticsdata.Dimension{{Name: "date"}},
	}
	for _, name := range analyticsMetrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: name})
	}

	resp, err := svc.Properties.RunReport("properties/"+tenant.GoogleAnalyticsPropertyID, req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make([]*metrics.Metric, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) == 0 || row.DimensionValues[0].Value == "" {
			continue
		}
		value := func(i int) float64 {
			if i >= len(row.MetricValues) {
				return 0
			}
			v, err := strconv.ParseFloat(row.MetricValues[i].Value, 64)
			if err != nil {
				return 0
			}
			return v
		}
		rows = append(rows, &metrics.Metric{
			TenantID: tenant.ID,
			Date:     metrics.NormalizeDate(row.DimensionValues[0].Value),
			Source:   metrics.SourceAnalytics,
			Data: metrics.Data{
				Sessions:           utils.Ptr(int64(value(0))),
				Users:              utils.Ptr(int64(value(1))),
				Pageviews:          utils.Ptr(int64(value(2))),
				BounceRate:         utils.Ptr(value(3)),
				AvgSessionDuration: utils.Ptr(value(4)),
			},
		})
	}
	return rows, nil
}
