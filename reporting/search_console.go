package reporting

import (
	"context"
	"net/http"

	"github.com/jrsteele09/tenant-dashboard/internal/utils"
	"github.com/jrsteele09/tenant-dashboard/metrics"
	"github.com/jrsteele09/tenant-dashboard/tenants"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"
)

const searchConsoleRowLimit = 1000

// fetchSearchConsole queries per-day search analytics for the tenant's site.
// CTR is stored as a percentage.
func fetchSearchConsole(ctx context.Context, client *http.Client, endpoint string, tenant *tenants.Tenant, w window) ([]*metrics.Metric, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := searchconsole.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "searchconsole.NewService")
	}

	resp, err := svc.Searchanalytics.Query(tenant.SearchConsoleURL, &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  w.start,
		EndDate:    w.end,
		Dimensions: []string{"date"},
		RowLimit:   searchConsoleRowLimit,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make([]*metrics.Metric, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 || row.Keys[0] == "" {
			continue
		}
		rows = append(rows, &metrics.Metric{
			TenantID: tenant.ID,
			Date:     metrics.NormalizeDate(row.Keys[0]),
			Source:   metrics.SourceSearchConsole,
			Data: metrics.Data{
				Clicks:      utils.Ptr(int64(row.Clicks)),
				Impressions: utils.Ptr(int64(row.Impressions)),
				CTR:         utils.Ptr(row.Ctr * 100),
				Position:    utils.Ptr(row.Position),
			},
		})
	}
	return rows, nil
}
