package metrics

import "context"

// Repo stores metric rows, unique per (tenant, date, source).
type Repo interface {
	// Upsert inserts the row, or replaces Data and UpdatedAt of the existing row with the same key.
	Upsert(ctx context.Context, metric *Metric) error

	// ListSince returns every row of the tenant with Date >= startDate, ordered by date then source.
	ListSince(ctx context.Context, tenantID, startDate string) ([]*Metric, error)

	// Get returns a single row, or errors.ErrMetricNotFound.
	Get(ctx context.Context, tenantID, date string, source Source) (*Metric, error)
}
